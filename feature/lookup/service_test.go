package lookup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/berge472/izzymart/core/database"
	"github.com/berge472/izzymart/core/storage/mocks"
	"github.com/berge472/izzymart/feature/assets"
	"github.com/berge472/izzymart/feature/catalog"
	"github.com/berge472/izzymart/feature/catalog/models"
	"github.com/berge472/izzymart/feature/lookup/sources"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type stubFood struct {
	res   *sources.Result
	err   error
	calls int
}

func (s *stubFood) LookupUPC(ctx context.Context, upc string) (*sources.Result, error) {
	s.calls++
	return s.res, s.err
}

type stubBooks struct {
	res   *sources.Result
	err   error
	calls int
}

func (s *stubBooks) LookupISBN(ctx context.Context, isbn string) (*sources.Result, error) {
	s.calls++
	return s.res, s.err
}

type stubEnricher struct {
	out      Enrichment
	calls    int
	gotQuery string
	gotHints []string
	gotGoals map[Goal]bool
}

func (s *stubEnricher) Enrich(ctx context.Context, query string, hints []string, goals map[Goal]bool) Enrichment {
	s.calls++
	s.gotQuery = query
	s.gotHints = hints
	s.gotGoals = goals
	return s.out
}

type resolverFixture struct {
	svc     *Service
	catalog *catalog.Service
	store   *assets.Service
	client  *mocks.Client
	food    *stubFood
	books   *stubBooks
	chain   *stubEnricher
}

func setupResolver(t *testing.T) *resolverFixture {
	t.Helper()

	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	assert.NoError(t, err)

	client := new(mocks.Client)
	store := assets.NewService(db, client, "test-bucket", zap.NewNop())
	assert.NoError(t, store.Migrate())

	cat := catalog.NewService(db, store, zap.NewNop())
	assert.NoError(t, cat.Migrate())

	f := &resolverFixture{
		catalog: cat,
		store:   store,
		client:  client,
		food:    &stubFood{},
		books:   &stubBooks{},
		chain:   &stubEnricher{},
	}

	cfg := Config{DefaultPrice: 4.04, TimeoutSeconds: 5}
	f.svc = NewService(cfg, cat, store, f.food, f.books, f.chain, zap.NewNop())
	return f
}

func TestResolve_FoodCacheOffDefaultsPrice(t *testing.T) {
	f := setupResolver(t)
	f.food.res = &sources.Result{Name: "Test Snack"}

	p, err := f.svc.Resolve(context.Background(), "0000000000000", false, "")
	assert.NoError(t, err)
	assert.Empty(t, p.ID, "nothing persisted means no catalog ID")
	assert.Equal(t, models.TypeFood, p.ProductType)
	assert.Equal(t, "Test Snack", p.Name)
	assert.NotNil(t, p.Price)
	assert.InDelta(t, 4.04, *p.Price, 0.001)
	assert.Equal(t, "default", p.Metadata[models.MetaPriceSource])

	// Record must not have been written through to the catalog.
	_, err = f.catalog.GetByUPC(context.Background(), "0000000000000")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestResolve_BookCacheOnPersistsCover(t *testing.T) {
	cover := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("cover bytes"))
	}))
	defer cover.Close()

	f := setupResolver(t)
	f.books.res = &sources.Result{
		Name:     "Effective Java",
		ImageURL: cover.URL + "/cover.jpg",
		Book:     &models.BookInfo{ISBN: "9780134685991", Author: "Joshua Bloch"},
	}
	f.client.On("PutObject", mock.Anything, "test-bucket", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil).Once()

	p, err := f.svc.Resolve(context.Background(), "9780134685991", true, "")
	assert.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, models.TypeBook, p.ProductType)
	assert.Equal(t, "Joshua Bloch", p.Book.Author)
	assert.Len(t, p.Images, 1)
	assert.Equal(t, 0, f.chain.calls, "enrichment never runs for books")

	// The persisted record owns exactly one reference to the cover asset.
	info, err := f.store.GetInfo(context.Background(), p.Images[0])
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{p.ID}, []string(info.References))
	assert.Equal(t, "image/jpeg", info.ContentType)

	stored, err := f.catalog.GetByUPC(context.Background(), "9780134685991")
	assert.NoError(t, err)
	assert.Equal(t, p.ID, stored.ID)
}

func TestResolve_CacheHitSkipsUpstream(t *testing.T) {
	f := setupResolver(t)

	price := 1.99
	existing, err := f.catalog.Create(context.Background(), &models.Product{
		UPC:   "041303001776",
		Name:  "Cached Jam",
		Price: &price,
	})
	assert.NoError(t, err)

	p, err := f.svc.Resolve(context.Background(), "041303001776", true, "")
	assert.NoError(t, err)
	assert.Equal(t, existing.ID, p.ID)
	assert.Equal(t, "Cached Jam", p.Name)
	assert.Equal(t, 0, f.food.calls)
	assert.Equal(t, 0, f.chain.calls)
}

func TestResolve_FoodEnrichment(t *testing.T) {
	f := setupResolver(t)

	price := 2.79
	f.food.res = &sources.Result{
		Name:     "Goldfish Crackers",
		Brand:    "Pepperidge Farm",
		Metadata: map[string]any{"stores_mentioned": "Publix, Target"},
	}
	f.chain.out = Enrichment{
		Price:       &price,
		PriceSource: "Publix",
		ImageURL:    "https://cdn.example/goldfish.jpg",
		ImageSource: "Publix",
	}

	p, err := f.svc.Resolve(context.Background(), "014100085478", false, "")
	assert.NoError(t, err)
	assert.InDelta(t, 2.79, *p.Price, 0.001)
	assert.Equal(t, "Publix", p.Metadata[models.MetaPriceSource])
	assert.Equal(t, "Publix", p.Metadata[models.MetaImageSource])
	assert.Equal(t, "https://cdn.example/goldfish.jpg", p.Metadata["image_url"])
	assert.Empty(t, p.Images, "cache off stores no asset")

	// Query text and hints come from the food record.
	assert.Equal(t, "Pepperidge Farm Goldfish Crackers", f.chain.gotQuery)
	assert.Equal(t, []string{"Publix", "Target"}, f.chain.gotHints)
	assert.True(t, f.chain.gotGoals[GoalPrice])
	assert.True(t, f.chain.gotGoals[GoalImage])
}

func TestResolve_FoodWithOwnImageSkipsImageGoal(t *testing.T) {
	f := setupResolver(t)
	f.food.res = &sources.Result{
		Name:     "Strawberry Jam",
		ImageURL: "https://images.example/jam.jpg",
	}

	_, err := f.svc.Resolve(context.Background(), "041303001776", false, "")
	assert.NoError(t, err)
	assert.True(t, f.chain.gotGoals[GoalPrice])
	assert.False(t, f.chain.gotGoals[GoalImage])
}

func TestResolve_NotFoundPropagates(t *testing.T) {
	f := setupResolver(t)
	f.food.err = sources.ErrNotFound

	_, err := f.svc.Resolve(context.Background(), "0000000000000", false, "")
	assert.ErrorIs(t, err, sources.ErrNotFound)
}

func TestResolve_KindOverride(t *testing.T) {
	f := setupResolver(t)
	f.books.res = &sources.Result{Name: "Forced Book"}

	// A food-looking code resolved as a book via the override.
	p, err := f.svc.Resolve(context.Background(), "041303001776", false, models.TypeBook)
	assert.NoError(t, err)
	assert.Equal(t, models.TypeBook, p.ProductType)
	assert.Equal(t, 1, f.books.calls)
	assert.Equal(t, 0, f.food.calls)

	_, err = f.svc.Resolve(context.Background(), "041303001776", false, "toys")
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestResolve_ImageDownloadFailureDegrades(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	f := setupResolver(t)
	f.books.res = &sources.Result{Name: "No Cover", ImageURL: broken.URL + "/cover.jpg"}

	p, err := f.svc.Resolve(context.Background(), "9780000000002", true, "")
	assert.NoError(t, err, "image failure must not fail the resolution")
	assert.NotEmpty(t, p.ID)
	assert.Empty(t, p.Images)
	f.client.AssertNotCalled(t, "PutObject",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
