// Package main provides the entry point for the product label server.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/productlabel/productlabel-server/internal/di"
	"github.com/productlabel/productlabel-server/internal/logger"
)

func main() {
	injector := di.NewContainer()

	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap server: %v\n", err)
		os.Exit(1)
	}

	log := do.MustInvoke[*logger.Logger](injector)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	// The container stops the HTTP server before closing the cache and database.
	if report := injector.Shutdown(); report != nil && !report.Succeed {
		log.Error("Shutdown error", "error", report.Error())
	}

	log.Info("Server stopped")
}
