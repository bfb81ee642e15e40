package lookup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/berge472/izzymart/feature/assets"
	"github.com/berge472/izzymart/feature/catalog"
	"github.com/berge472/izzymart/feature/catalog/models"
	"github.com/berge472/izzymart/feature/lookup/sources"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrInvalidKind is returned when the caller supplies a type override other
// than food or book.
var ErrInvalidKind = errors.New("invalid product type override")

// maxImageBytes caps how much of a product image we are willing to download.
const maxImageBytes = 10 << 20

// FoodSource resolves a barcode against a food database.
type FoodSource interface {
	LookupUPC(ctx context.Context, upc string) (*sources.Result, error)
}

// BookSource resolves an ISBN against a book registry.
type BookSource interface {
	LookupISBN(ctx context.Context, isbn string) (*sources.Result, error)
}

// Enricher fills price and image gaps from retail sources.
type Enricher interface {
	Enrich(ctx context.Context, query string, preferredStores []string, goals map[Goal]bool) Enrichment
}

// Service resolves scanned identifiers to catalog records. A cache hit is
// served straight from the catalog; a miss fans out to the domain adapter
// and, for food, the enrichment chain, then optionally writes the assembled
// record back through the catalog.
type Service struct {
	cfg     Config
	catalog *catalog.Service
	store   *assets.Service
	food    FoodSource
	books   BookSource
	chain   Enricher
	httpc   *http.Client
	group   singleflight.Group
	logger  *zap.Logger
}

// NewService creates the resolver.
func NewService(cfg Config, cat *catalog.Service, store *assets.Service, food FoodSource, books BookSource, chain Enricher, logger *zap.Logger) *Service {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{
		cfg:     cfg,
		catalog: cat,
		store:   store,
		food:    food,
		books:   books,
		chain:   chain,
		httpc:   &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Resolve looks up an identifier and returns a normalized product record.
// With useCache the record is persisted and returned with its catalog ID;
// without it the record is assembled fresh, nothing is stored, and the ID is
// left empty. kindOverride bypasses classification when set to food or book.
//
// Concurrent resolutions of the same identifier are coalesced so a burst of
// scans produces one upstream fan-out.
func (s *Service) Resolve(ctx context.Context, identifier string, useCache bool, kindOverride string) (*models.Product, error) {
	kind, err := resolveKind(identifier, kindOverride)
	if err != nil {
		return nil, err
	}

	if useCache {
		p, err := s.catalog.GetByUPC(ctx, identifier)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, catalog.ErrNotFound) {
			return nil, err
		}
	}

	key := identifier + "|" + kind + "|" + strconv.FormatBool(useCache)
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.resolveMiss(ctx, identifier, useCache, kind)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Product), nil
}

func resolveKind(identifier, override string) (string, error) {
	switch override {
	case "":
		return Classify(identifier), nil
	case models.TypeFood, models.TypeBook:
		return override, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, override)
	}
}

func (s *Service) resolveMiss(ctx context.Context, identifier string, useCache bool, kind string) (*models.Product, error) {
	var (
		product  *models.Product
		imageURL string
		err      error
	)

	switch kind {
	case models.TypeBook:
		product, imageURL, err = s.resolveBook(ctx, identifier)
	default:
		product, imageURL, err = s.resolveFood(ctx, identifier)
	}
	if err != nil {
		return nil, err
	}

	if imageURL != "" {
		s.attachImage(ctx, product, imageURL, useCache)
	}

	if !useCache {
		return product, nil
	}

	persisted, err := s.catalog.Upsert(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("failed to persist resolved product: %w", err)
	}
	s.logger.Info("Resolved product persisted",
		zap.String("upc", identifier),
		zap.String("product_id", persisted.ID),
		zap.String("product_type", persisted.ProductType))
	return persisted, nil
}

func (s *Service) resolveBook(ctx context.Context, isbn string) (*models.Product, string, error) {
	res, err := s.books.LookupISBN(ctx, isbn)
	if err != nil {
		return nil, "", err
	}

	p := &models.Product{
		UPC:         isbn,
		ProductType: models.TypeBook,
		Name:        res.Name,
		Description: res.Description,
		Tags:        res.Tags,
		Book:        res.Book,
		Metadata:    res.Metadata,
	}
	if p.Metadata == nil {
		p.Metadata = map[string]any{}
	}
	return p, res.ImageURL, nil
}

func (s *Service) resolveFood(ctx context.Context, upc string) (*models.Product, string, error) {
	res, err := s.food.LookupUPC(ctx, upc)
	if err != nil {
		return nil, "", err
	}

	p := &models.Product{
		UPC:         upc,
		ProductType: models.TypeFood,
		Name:        res.Name,
		Brand:       res.Brand,
		Description: res.Description,
		Tags:        res.Tags,
		Allergens:   res.Allergens,
		Nutrition:   res.Nutrition,
		Metadata:    res.Metadata,
	}
	if p.Metadata == nil {
		p.Metadata = map[string]any{}
	}

	goals := map[Goal]bool{GoalPrice: true}
	if res.ImageURL == "" {
		goals[GoalImage] = true
	}

	query := strings.TrimSpace(res.Brand + " " + res.Name)
	enriched := s.chain.Enrich(ctx, query, storesHint(res.Metadata), goals)

	if enriched.Price != nil {
		p.Price = enriched.Price
		p.Metadata[models.MetaPriceSource] = enriched.PriceSource
	} else {
		price := s.cfg.DefaultPrice
		p.Price = &price
		p.Metadata[models.MetaPriceSource] = "default"
	}
	if enriched.ProductURL != "" {
		p.Metadata["product_url"] = enriched.ProductURL
	}

	imageURL := res.ImageURL
	if imageURL == "" && enriched.ImageURL != "" {
		imageURL = enriched.ImageURL
		p.Metadata[models.MetaImageSource] = enriched.ImageSource
	}
	return p, imageURL, nil
}

// storesHint turns the food database's free-form stores field into the
// preferred-retailer hint for the enrichment chain.
func storesHint(metadata map[string]any) []string {
	raw, _ := metadata["stores_mentioned"].(string)
	if raw == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// attachImage materializes the product image. With caching on, the bytes are
// downloaded into the asset store and the product references the asset; the
// reference itself is attached when the catalog persists the record. With
// caching off nothing is stored and the raw URL is carried in the metadata.
// Download failures degrade to an imageless record.
func (s *Service) attachImage(ctx context.Context, p *models.Product, imageURL string, useCache bool) {
	if !useCache {
		p.Metadata["image_url"] = imageURL
		return
	}

	data, contentType, err := s.downloadImage(ctx, imageURL)
	if err != nil {
		s.logger.Warn("Product image download failed",
			zap.String("upc", p.UPC),
			zap.String("image_url", imageURL),
			zap.Error(err))
		return
	}

	asset, err := s.store.Put(ctx, data, p.UPC+"-image", contentType)
	if err != nil {
		s.logger.Warn("Failed to store product image",
			zap.String("upc", p.UPC),
			zap.Error(err))
		return
	}
	p.Images = []string{asset.ID}
}

func (s *Service) downloadImage(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("User-Agent", s.cfg.EffectiveUserAgent())

	resp, err := s.httpc.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: status %d fetching image", sources.ErrUpstream, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, "", err
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}
