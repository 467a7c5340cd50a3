// Package main provides a tool to seed the database with demo stores,
// attributes, products and labels.
//
// Usage:
//
//	DATA_PATH=~/ProductLabel/data go run ./cmd/seed
//	DATA_PATH=~/ProductLabel/data go run ./cmd/seed --products 200
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"

	"github.com/productlabel/productlabel-server/internal/domain"
	"github.com/productlabel/productlabel-server/internal/store"
	"github.com/productlabel/productlabel-server/internal/store/sqlite"
)

var productCount = flag.Int("products", 50, "Number of demo products to create")

var demoStores = []*domain.Store{
	{ID: 1, Code: "default", Name: "Default Store View"},
	{ID: 2, Code: "french", Name: "French Store View"},
	{ID: 3, Code: "german", Name: "German Store View"},
}

var demoAttributes = []*domain.Attribute{
	{Code: "color", Label: "Color"},
	{Code: "badges", Label: "Badges"},
}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/ProductLabel/data")
	}
	if err := os.MkdirAll(dataPath, 0o755); err != nil {
		log.Fatalf("Failed to create data path: %v", err)
	}
	dbPath := filepath.Join(dataPath, "productlabel.db")

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := sqlite.Open(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	for _, st := range demoStores {
		if err := s.CreateStore(ctx, st); err != nil && !errors.Is(err, store.ErrAlreadyExists) {
			log.Fatalf("Failed to create store %s: %v", st.Code, err)
		}
	}
	fmt.Printf("Stores ready: %d\n", len(demoStores))

	for _, attr := range demoAttributes {
		if err := s.CreateAttribute(ctx, attr); err != nil {
			log.Fatalf("Failed to create attribute %s (seed an empty database): %v", attr.Code, err)
		}
	}
	color, badges := demoAttributes[0], demoAttributes[1]

	rng := rand.New(rand.NewSource(42))
	for n := range *productCount {
		p := &domain.Product{
			SKU: fmt.Sprintf("DEMO-%04d", n+1),
			Values: map[string]domain.OptionValues{
				"color":  {strconv.Itoa(1 + rng.Intn(5))},
				"badges": randomOptions(rng, 10, 3),
			},
		}
		if err := s.CreateProduct(ctx, p); err != nil {
			log.Fatalf("Failed to create product %s: %v", p.SKU, err)
		}
		// Every fourth product shows a different color in the french store.
		if n%4 == 0 {
			value := strconv.Itoa(1 + rng.Intn(5))
			if err := s.SetProductAttributeValue(ctx, p.ID, color.ID, 2, value); err != nil {
				log.Fatalf("Failed to set store value for %s: %v", p.SKU, err)
			}
		}
	}
	fmt.Printf("Products created: %d\n", *productCount)

	labels := []*domain.Label{
		demoLabel("Red", color.ID, 1, "top-left", "top-right", domain.DefaultStoreID),
		demoLabel("Blue", color.ID, 2, "top-left", "top-right", 1, 3),
		demoLabel("Bleu", color.ID, 2, "top-left", "top-right", 2),
		demoLabel("New", badges.ID, 3, "bottom-left", "bottom-left", domain.DefaultStoreID),
		demoLabel("Sale", badges.ID, 5, "top-right", "bottom-right", 1),
		demoLabel("Soldes", badges.ID, 5, "top-right", "bottom-right", 2),
		demoLabel("Eco", badges.ID, 7, "bottom-right", "top-left", domain.DefaultStoreID),
	}
	for _, l := range labels {
		if err := s.SaveLabel(ctx, l); err != nil {
			log.Fatalf("Failed to create label %s: %v", l.Name, err)
		}
		fmt.Printf("  label %-6s attribute=%s option=%d stores=%s\n",
			l.Name, attributeCode(l.AttributeID), l.OptionID, l.Stores)
	}

	fmt.Printf("\nSeeded %d labels\n", len(labels))
}

func demoLabel(name string, attributeID, optionID int64, listing, product string, stores ...int64) *domain.Label {
	return &domain.Label{
		Name:                 name,
		Active:               true,
		AttributeID:          attributeID,
		OptionID:             optionID,
		Image:                "/" + name + ".png",
		Alt:                  name,
		PositionCategoryList: listing,
		PositionProductView:  product,
		DisplayOn:            domain.NewDisplaySet(domain.DisplayListing, domain.DisplayProduct),
		Stores:               domain.NewStoreSet(stores...),
	}
}

func randomOptions(rng *rand.Rand, options, limit int) domain.OptionValues {
	picked := domain.OptionValues{}
	for i := 1; i <= options; i++ {
		if len(picked) < limit && rng.Intn(options) < limit {
			picked = append(picked, strconv.Itoa(i))
		}
	}
	return picked
}

func attributeCode(id int64) string {
	for _, a := range demoAttributes {
		if a.ID == id {
			return a.Code
		}
	}
	return strconv.FormatInt(id, 10)
}
