package providers

import (
	"github.com/samber/do/v2"

	"github.com/productlabel/productlabel-server/internal/config"
	"github.com/productlabel/productlabel-server/internal/logger"
	"github.com/productlabel/productlabel-server/internal/service"
	"github.com/productlabel/productlabel-server/internal/validation"
)

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideLabelCatalog provides the cached per-store active label catalog.
func ProvideLabelCatalog(i do.Injector) (*service.LabelCatalog, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLabelCatalog(storeHandle.Store, cacheHandle.BadgerCache, cfg.Labels.CacheNamespace, log.Logger), nil
}

// ProvideLabelMatcher provides the product label matcher.
func ProvideLabelMatcher(i do.Injector) (*service.LabelMatcher, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	catalog := do.MustInvoke[*service.LabelCatalog](i)
	log := do.MustInvoke[*logger.Logger](i)

	resolver := service.NewAttributeResolver(storeHandle.Store, log.Logger)
	return service.NewLabelMatcher(catalog, resolver, cfg.Labels.MediaBaseURL, log.Logger), nil
}

// ProvideLabelService provides the admin label service.
func ProvideLabelService(i do.Injector) (*service.LabelService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	catalog := do.MustInvoke[*service.LabelCatalog](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLabelService(
		storeHandle.Store,
		storeHandle.Store,
		catalog,
		validator,
		cfg.Labels.SingleStoreMode,
		log.Logger,
	), nil
}

// ProvideStorefrontService provides the storefront label service.
func ProvideStorefrontService(i do.Injector) (*service.StorefrontService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	matcher := do.MustInvoke[*service.LabelMatcher](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewStorefrontService(storeHandle.Store, matcher, log.Logger), nil
}
