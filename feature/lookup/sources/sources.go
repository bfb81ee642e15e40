package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/berge472/izzymart/feature/catalog/models"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

// Error taxonomy shared by all adapters. Timeouts surface as the context
// error from the request.
var (
	// ErrNotFound means the upstream answered but has no matching product.
	ErrNotFound = errors.New("product not found")
	// ErrUpstream means the upstream refused or failed the request.
	ErrUpstream = errors.New("upstream request failed")
	// ErrDecode means the upstream payload could not be parsed.
	ErrDecode = errors.New("failed to decode upstream payload")
)

// Result is a partial product assembled from one upstream source. Adapters
// fill whatever fields the source actually supplied and leave the rest zero.
type Result struct {
	Name        string
	Brand       string
	Description string
	Ingredients string
	Price       *float64
	ImageURL    string
	ProductURL  string
	Store       string
	Tags        []string
	Allergens   []string
	Nutrition   *models.Nutrition
	Book        *models.BookInfo
	Metadata    map[string]any
}

// Searcher locates a retail offer for a free text query.
type Searcher interface {
	// Name identifies the source for provenance and preferred-store matching.
	Name() string
	// Search returns the best offer for the query, ErrNotFound when the
	// source has nothing usable.
	Search(ctx context.Context, query string) (*Result, error)
}

// fetcher is the shared HTTP plumbing for adapters: one client with a
// bounded timeout and a polite per-source rate limit.
type fetcher struct {
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
}

func newFetcher(timeout time.Duration, userAgent string) *fetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &fetcher{
		http:      &http.Client{Timeout: timeout},
		limiter:   rate.NewLimiter(rate.Every(time.Second), 2),
		userAgent: userAgent,
	}
}

func (f *fetcher) get(ctx context.Context, url string) (*http.Response, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: status %d from %s", ErrUpstream, resp.StatusCode, url)
	}
	return resp, nil
}

// getJSON fetches a URL and decodes the JSON body into target.
func (f *fetcher) getJSON(ctx context.Context, url string, target any) error {
	resp, err := f.get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

// getDocument fetches a URL and parses the HTML body.
func (f *fetcher) getDocument(ctx context.Context, url string) (*goquery.Document, error) {
	resp, err := f.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return doc, nil
}

// absolutize resolves a scraped href or image src against the site base.
func absolutize(base, ref string) string {
	switch {
	case ref == "":
		return ""
	case strings.HasPrefix(ref, "//"):
		return "https:" + ref
	case strings.HasPrefix(ref, "/"):
		return strings.TrimSuffix(base, "/") + ref
	default:
		return ref
	}
}

// usableImageURL rejects inline data URIs and obvious placeholder assets.
func usableImageURL(src string) bool {
	if src == "" {
		return false
	}
	if strings.Contains(src, "data:image") || strings.Contains(src, "base64") {
		return false
	}
	lower := strings.ToLower(src)
	for _, marker := range []string{"logo", "icon", "1x1", "pixel"} {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}
