package catalog

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/berge472/izzymart/core/database"
	"github.com/berge472/izzymart/core/storage/mocks"
	"github.com/berge472/izzymart/feature/assets"
	"github.com/berge472/izzymart/feature/catalog/models"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func setupService(t *testing.T) (*Service, *assets.Service, *mocks.Client) {
	t.Helper()

	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	assert.NoError(t, err)

	mockClient := new(mocks.Client)
	store := assets.NewService(db, mockClient, "test-bucket", zap.NewNop())
	assert.NoError(t, store.Migrate())

	svc := NewService(db, store, zap.NewNop())
	assert.NoError(t, svc.Migrate())
	return svc, store, mockClient
}

func putAsset(t *testing.T, store *assets.Service, mockClient *mocks.Client, payload []byte) string {
	t.Helper()
	mockClient.On("PutObject", mock.Anything, "test-bucket", mock.Anything, mock.Anything, int64(len(payload)), mock.Anything).
		Return(minio.UploadInfo{}, nil).Once()
	asset, err := store.Put(context.Background(), payload, "image.jpg", "image/jpeg")
	assert.NoError(t, err)
	return asset.ID
}

func TestService_CreateAndGet(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	price := 2.49
	created, err := svc.Create(ctx, &models.Product{
		UPC:   "041303001776",
		Name:  "Strawberry Jam",
		Brand: "Essential Everyday",
		Price: &price,
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.TypeGeneric, created.ProductType)

	byID, err := svc.GetByID(ctx, created.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Strawberry Jam", byID.Name)

	byUPC, err := svc.GetByUPC(ctx, "041303001776")
	assert.NoError(t, err)
	assert.Equal(t, created.ID, byUPC.ID)

	_, err = svc.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_CreateRejectsBadPrice(t *testing.T) {
	svc, _, _ := setupService(t)

	price := -1.0
	_, err := svc.Create(context.Background(), &models.Product{
		UPC:   "000000000001",
		Name:  "Bad Price",
		Price: &price,
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_SharedAssetSurvivesDelete(t *testing.T) {
	svc, store, mockClient := setupService(t)
	ctx := context.Background()

	assetID := putAsset(t, store, mockClient, []byte("shared label art"))

	x, err := svc.Create(ctx, &models.Product{UPC: "000000000010", Name: "Variant X", Images: []string{assetID}})
	assert.NoError(t, err)
	y, err := svc.Create(ctx, &models.Product{UPC: "000000000011", Name: "Variant Y", Images: []string{assetID}})
	assert.NoError(t, err)

	info, err := store.GetInfo(ctx, assetID)
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{x.ID, y.ID}, []string(info.References))

	// First delete leaves the asset alive for the surviving product.
	assert.NoError(t, svc.Delete(ctx, x.ID))
	info, err = store.GetInfo(ctx, assetID)
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{y.ID}, []string(info.References))
	mockClient.AssertNotCalled(t, "RemoveObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	// Deleting the last owner destroys the asset.
	mockClient.On("RemoveObject", mock.Anything, "test-bucket", mock.Anything, mock.Anything).
		Return(nil).Once()
	assert.NoError(t, svc.Delete(ctx, y.ID))
	_, err = store.GetInfo(ctx, assetID)
	assert.ErrorIs(t, err, assets.ErrNotFound)
	mockClient.AssertExpectations(t)
}

func TestService_UpdateAdjustsImageReferences(t *testing.T) {
	svc, store, mockClient := setupService(t)
	ctx := context.Background()

	oldImage := putAsset(t, store, mockClient, []byte("old packaging"))
	newImage := putAsset(t, store, mockClient, []byte("new packaging"))

	p, err := svc.Create(ctx, &models.Product{UPC: "000000000020", Name: "Cereal", Images: []string{oldImage}})
	assert.NoError(t, err)

	// Swapping the image dereferences the old one, which had no other owner.
	mockClient.On("RemoveObject", mock.Anything, "test-bucket", mock.Anything, mock.Anything).
		Return(nil).Once()

	p.Images = []string{newImage}
	updated, err := svc.Update(ctx, p.ID, p)
	assert.NoError(t, err)
	assert.Equal(t, []string{newImage}, []string(updated.Images))

	_, err = store.GetInfo(ctx, oldImage)
	assert.ErrorIs(t, err, assets.ErrNotFound)

	info, err := store.GetInfo(ctx, newImage)
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{p.ID}, []string(info.References))
}

func TestService_UpdatePreservesIdentity(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, &models.Product{UPC: "000000000030", Name: "Original"})
	assert.NoError(t, err)

	updated, err := svc.Update(ctx, p.ID, &models.Product{
		ID:   "attacker-chosen",
		UPC:  "999999999999",
		Name: "Renamed",
	})
	assert.NoError(t, err)
	assert.Equal(t, p.ID, updated.ID)
	assert.Equal(t, "000000000030", updated.UPC)
	assert.Equal(t, "Renamed", updated.Name)
}

func TestService_Upsert(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	first, err := svc.Upsert(ctx, &models.Product{UPC: "000000000040", Name: "First Pass"})
	assert.NoError(t, err)

	second, err := svc.Upsert(ctx, &models.Product{UPC: "000000000040", Name: "Second Pass"})
	assert.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Second Pass", second.Name)

	all, err := svc.GetAll(ctx)
	assert.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestService_Image(t *testing.T) {
	svc, store, mockClient := setupService(t)
	ctx := context.Background()

	payload := []byte("jpeg bytes")
	assetID := putAsset(t, store, mockClient, payload)

	_, err := svc.Create(ctx, &models.Product{UPC: "000000000050", Name: "Pictured", Images: []string{assetID}})
	assert.NoError(t, err)

	mockClient.On("GetObject", mock.Anything, "test-bucket", mock.Anything, mock.Anything).
		Return(io.NopCloser(bytes.NewReader(payload)), nil).Once()

	data, contentType, err := svc.Image(ctx, "000000000050")
	assert.NoError(t, err)
	assert.Equal(t, payload, data)
	assert.Equal(t, "image/jpeg", contentType)

	// Products without an image report not found.
	_, err = svc.Create(ctx, &models.Product{UPC: "000000000051", Name: "Pictureless"})
	assert.NoError(t, err)
	_, _, err = svc.Image(ctx, "000000000051")
	assert.ErrorIs(t, err, ErrNotFound)
}
