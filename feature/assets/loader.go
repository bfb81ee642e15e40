package assets

import (
	"github.com/berge472/izzymart/core/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the asset store feature.
func NewFeature(db *gorm.DB, client storage.Client, bucket string, logger *zap.Logger) *Feature {
	svc := NewService(db, client, bucket, logger)
	h := NewHandler(svc)
	return &Feature{service: svc, handler: h}
}

// Service exposes the asset store to other features.
func (f *Feature) Service() *Service {
	return f.service
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "assets"
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
