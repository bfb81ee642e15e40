package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/berge472/izzymart/feature/assets"
	"github.com/berge472/izzymart/feature/catalog/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a product is absent from the catalog.
var ErrNotFound = errors.New("product not found")

// ErrValidation is returned for malformed caller input.
var ErrValidation = errors.New("invalid product")

// Service provides catalog CRUD with asset reference bookkeeping.
type Service struct {
	db     *gorm.DB
	store  *assets.Service
	logger *zap.Logger
}

// NewService creates a new catalog service.
func NewService(db *gorm.DB, store *assets.Service, logger *zap.Logger) *Service {
	return &Service{db: db, store: store, logger: logger}
}

// Migrate creates the product table.
func (s *Service) Migrate() error {
	return s.db.AutoMigrate(&models.Product{})
}

func validatePrice(p *float64) error {
	if p == nil {
		return nil
	}
	if math.IsNaN(*p) || math.IsInf(*p, 0) || *p < 0 {
		return fmt.Errorf("%w: price must be a finite non-negative amount", ErrValidation)
	}
	return nil
}

// Create inserts a product and attaches it as an owner of every listed asset.
func (s *Service) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	if err := validatePrice(p.Price); err != nil {
		return nil, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.ProductType == "" {
		p.ProductType = models.TypeGeneric
	}

	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}

	for _, assetID := range p.Images {
		if err := s.store.AddReference(ctx, assetID, p.ID); err != nil {
			s.logger.Warn("Failed to reference asset",
				zap.String("asset_id", assetID),
				zap.String("product_id", p.ID),
				zap.Error(err))
		}
	}
	return p, nil
}

// GetAll returns every catalog entry.
func (s *Service) GetAll(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	if err := s.db.WithContext(ctx).Order("created_at").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns one product by its ID.
func (s *Service) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetByUPC returns one product by its identifier.
func (s *Service) GetByUPC(ctx context.Context, upc string) (*models.Product, error) {
	var p models.Product
	if err := s.db.WithContext(ctx).First(&p, "upc = ?", upc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Update overwrites a product's mutable fields. When the image list changes,
// the symmetric difference between the old and new asset sets drives the
// reference bookkeeping so no asset is orphaned or leaked.
func (s *Service) Update(ctx context.Context, id string, updated *models.Product) (*models.Product, error) {
	if err := validatePrice(updated.Price); err != nil {
		return nil, err
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldSet := make(map[string]struct{}, len(existing.Images))
	for _, a := range existing.Images {
		oldSet[a] = struct{}{}
	}
	newSet := make(map[string]struct{}, len(updated.Images))
	for _, a := range updated.Images {
		newSet[a] = struct{}{}
	}

	updated.ID = existing.ID
	updated.UPC = existing.UPC // identifier is immutable
	updated.CreatedAt = existing.CreatedAt

	if err := s.db.WithContext(ctx).Save(updated).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	for a := range newSet {
		if _, ok := oldSet[a]; !ok {
			if err := s.store.AddReference(ctx, a, existing.ID); err != nil {
				s.logger.Warn("Failed to add asset reference", zap.String("asset_id", a), zap.Error(err))
			}
		}
	}
	for a := range oldSet {
		if _, ok := newSet[a]; !ok {
			if err := s.store.RemoveReference(ctx, a, existing.ID); err != nil {
				s.logger.Warn("Failed to remove asset reference", zap.String("asset_id", a), zap.Error(err))
			}
		}
	}

	return updated, nil
}

// Upsert inserts the product or overwrites the entry with the same UPC
// (last write wins). Used by the resolver's write-through path.
func (s *Service) Upsert(ctx context.Context, p *models.Product) (*models.Product, error) {
	existing, err := s.GetByUPC(ctx, p.UPC)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return s.Create(ctx, p)
	}
	p.ID = existing.ID
	return s.Update(ctx, existing.ID, p)
}

// Delete removes a product and detaches it from all referenced assets.
// Assets still referenced elsewhere survive; unreferenced ones are destroyed
// by the asset store.
func (s *Service) Delete(ctx context.Context, id string) error {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	for _, assetID := range p.Images {
		if err := s.store.RemoveReference(ctx, assetID, p.ID); err != nil {
			s.logger.Warn("Failed to dereference asset",
				zap.String("asset_id", assetID),
				zap.String("product_id", p.ID),
				zap.Error(err))
		}
	}

	return s.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id).Error
}

// Image returns the raw bytes and content type of a product's first image.
func (s *Service) Image(ctx context.Context, upc string) ([]byte, string, error) {
	p, err := s.GetByUPC(ctx, upc)
	if err != nil {
		return nil, "", err
	}
	if len(p.Images) == 0 {
		return nil, "", ErrNotFound
	}

	data, asset, err := s.store.Get(ctx, p.Images[0])
	if err != nil {
		if errors.Is(err, assets.ErrNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}

	contentType := asset.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return data, contentType, nil
}
