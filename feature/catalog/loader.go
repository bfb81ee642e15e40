package catalog

import (
	"github.com/berge472/izzymart/feature/assets"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the catalog feature.
func NewFeature(db *gorm.DB, store *assets.Service, logger *zap.Logger) *Feature {
	svc := NewService(db, store, logger)
	h := NewHandler(svc, logger)
	return &Feature{service: svc, handler: h}
}

// Service exposes the catalog to other features.
func (f *Feature) Service() *Service {
	return f.service
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "catalog"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load migrates the schema and registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	if err := f.service.Migrate(); err != nil {
		return err
	}
	f.handler.RegisterRoutes(app)
	return nil
}
