package lookup

import (
	"time"

	"github.com/berge472/izzymart/core/pool"
	"github.com/berge472/izzymart/feature/assets"
	"github.com/berge472/izzymart/feature/catalog"
	"github.com/berge472/izzymart/feature/lookup/sources"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface. It wires the upstream
// adapters, the enrichment chain with its worker pool, and the resolver.
type Feature struct {
	service *Service
	handler *Handler
	pool    *pool.Pool
}

// NewFeature creates the lookup feature.
func NewFeature(cfg Config, cat *catalog.Service, store *assets.Service, logger *zap.Logger) *Feature {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	ua := cfg.EffectiveUserAgent()
	preferred := cfg.PreferredStoreList()

	p := pool.New(cfg.Workers, cfg.QueueSize)

	retailers := []sources.Searcher{
		sources.NewShopping(timeout, ua, preferred),
		sources.NewAmazon(timeout, ua),
		sources.NewTarget(timeout, ua),
		sources.NewPublix(timeout, ua),
		sources.NewCostco(timeout, ua),
	}
	chain := NewChain(retailers, sources.NewImageSearch(timeout, ua), p, timeout, logger)

	svc := NewService(cfg, cat, store,
		sources.NewOpenFoodFacts(timeout, ua),
		sources.NewBooks(timeout, ua),
		chain, logger)

	return &Feature{
		service: svc,
		handler: NewHandler(svc, logger),
		pool:    p,
	}
}

// Service exposes the resolver to other features.
func (f *Feature) Service() *Service {
	return f.service
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "lookup"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

// Close stops the enrichment worker pool.
func (f *Feature) Close() {
	f.pool.Close()
}
