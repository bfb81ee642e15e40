package assets

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/berge472/izzymart/core/storage"
	"github.com/berge472/izzymart/feature/assets/models"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNotFound is returned when an asset or its backing object is missing.
var ErrNotFound = errors.New("asset not found")

const objectPrefix = "assets/"

// Service implements the content-addressed, reference-counted asset store.
type Service struct {
	db     *gorm.DB
	client storage.Client
	bucket string
	logger *zap.Logger

	// locks serializes reference mutations per asset so the empty-set
	// deletion invariant holds under concurrent editors.
	locks sync.Map // asset ID -> *sync.Mutex
}

// NewService creates a new asset store service.
func NewService(db *gorm.DB, client storage.Client, bucket string, logger *zap.Logger) *Service {
	return &Service{
		db:     db,
		client: client,
		bucket: bucket,
		logger: logger,
	}
}

// Migrate creates the asset metadata table.
func (s *Service) Migrate() error {
	return s.db.AutoMigrate(&models.Asset{})
}

func (s *Service) lock(assetID string) func() {
	m, _ := s.locks.LoadOrStore(assetID, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Put stores a payload and returns its asset record. Payloads are
// deduplicated by MD5: if an asset with the same hash exists its record is
// returned without touching storage. The returned asset has no owner yet;
// callers must attach one with AddReference.
func (s *Service) Put(ctx context.Context, data []byte, displayName, contentType string) (*models.Asset, error) {
	sum := md5.Sum(data)
	hash := hex.EncodeToString(sum[:])

	var existing models.Asset
	err := s.db.WithContext(ctx).Where("md5 = ?", hash).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check for existing asset: %w", err)
	}

	objectKey := objectPrefix + hash
	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := s.client.PutObject(ctx, s.bucket, objectKey, bytes.NewReader(data), int64(len(data)), opts); err != nil {
		return nil, fmt.Errorf("failed to store object: %w", err)
	}

	asset := models.Asset{
		ID:          uuid.NewString(),
		Name:        displayName,
		MD5:         hash,
		ObjectKey:   objectKey,
		ContentType: contentType,
		Size:        int64(len(data)),
		References:  nil,
	}
	if err := s.db.WithContext(ctx).Create(&asset).Error; err != nil {
		return nil, fmt.Errorf("failed to create asset record: %w", err)
	}

	s.logger.Debug("Stored new asset",
		zap.String("asset_id", asset.ID),
		zap.String("md5", hash),
		zap.Int("size", len(data)))

	return &asset, nil
}

// AddReference records ownerID as an owner of the asset. Adding the same
// owner twice is a no-op.
func (s *Service) AddReference(ctx context.Context, assetID, ownerID string) error {
	unlock := s.lock(assetID)
	defer unlock()

	var asset models.Asset
	if err := s.db.WithContext(ctx).First(&asset, "id = ?", assetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if asset.References.Contains(ownerID) {
		return nil
	}

	asset.References = append(asset.References, ownerID)
	return s.db.WithContext(ctx).Model(&asset).Update("references", asset.References).Error
}

// RemoveReference removes ownerID from the asset's owner set. Removing an
// owner that is not present is a no-op. When the last owner is removed the
// asset's bytes and metadata are deleted before the call returns.
func (s *Service) RemoveReference(ctx context.Context, assetID, ownerID string) error {
	unlock := s.lock(assetID)
	defer unlock()

	var asset models.Asset
	if err := s.db.WithContext(ctx).First(&asset, "id = ?", assetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if !asset.References.Contains(ownerID) {
		return nil
	}

	remaining := asset.References[:0]
	for _, ref := range asset.References {
		if ref != ownerID {
			remaining = append(remaining, ref)
		}
	}

	if len(remaining) > 0 {
		return s.db.WithContext(ctx).Model(&asset).Update("references", remaining).Error
	}

	// Last owner gone: destroy the object and the record synchronously.
	if err := s.client.RemoveObject(ctx, s.bucket, asset.ObjectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object for asset %s: %w", assetID, err)
	}
	if err := s.db.WithContext(ctx).Delete(&models.Asset{}, "id = ?", assetID).Error; err != nil {
		return fmt.Errorf("failed to delete asset record %s: %w", assetID, err)
	}
	s.locks.Delete(assetID)

	s.logger.Info("Deleted unreferenced asset",
		zap.String("asset_id", assetID),
		zap.String("md5", asset.MD5))
	return nil
}

// Get returns the asset's raw bytes and metadata.
func (s *Service) Get(ctx context.Context, assetID string) ([]byte, *models.Asset, error) {
	asset, err := s.GetInfo(ctx, assetID)
	if err != nil {
		return nil, nil, err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, asset.ObjectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch object: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read object: %w", err)
	}
	if len(data) == 0 && asset.Size > 0 {
		return nil, nil, ErrNotFound
	}
	return data, asset, nil
}

// GetInfo returns the asset's metadata record.
func (s *Service) GetInfo(ctx context.Context, assetID string) (*models.Asset, error) {
	var asset models.Asset
	if err := s.db.WithContext(ctx).First(&asset, "id = ?", assetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &asset, nil
}

// List returns all asset records.
func (s *Service) List(ctx context.Context) ([]models.Asset, error) {
	var out []models.Asset
	if err := s.db.WithContext(ctx).Order("created_at").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Delete force-removes an asset regardless of references. Used by
// administrative tooling; normal lifecycle goes through RemoveReference.
func (s *Service) Delete(ctx context.Context, assetID string) error {
	unlock := s.lock(assetID)
	defer unlock()

	var asset models.Asset
	if err := s.db.WithContext(ctx).First(&asset, "id = ?", assetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := s.client.RemoveObject(ctx, s.bucket, asset.ObjectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object: %w", err)
	}
	if err := s.db.WithContext(ctx).Delete(&models.Asset{}, "id = ?", assetID).Error; err != nil {
		return err
	}
	s.locks.Delete(assetID)
	return nil
}
