package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Retailer scrapes one store's search page for the first matching offer.
// Structured JSON-LD metadata is tried first; the card selectors are the
// fallback for pages without it. Selector lists are ordered by how current
// the layout is.
type Retailer struct {
	fetch    *fetcher
	name     string
	baseURL  string
	searchFn func(base, query string) string

	cardSel  string
	titleSel string
	priceSel string
	linkSel  string
}

// Name identifies the store for provenance and preferred-store matching.
func (r *Retailer) Name() string { return r.name }

// Search fetches the store's search results for the query and extracts the
// first product offer.
func (r *Retailer) Search(ctx context.Context, query string) (*Result, error) {
	doc, err := r.fetch.getDocument(ctx, r.searchFn(r.baseURL, query))
	if err != nil {
		return nil, err
	}

	if res := productFromJSONLD(doc, r.name, r.baseURL); res != nil {
		return res, nil
	}

	card := doc.Find(r.cardSel).First()
	if card.Length() == 0 {
		return nil, fmt.Errorf("%w: no %s results for %q", ErrNotFound, r.name, query)
	}

	res := &Result{
		Name:     strings.TrimSpace(card.Find(r.titleSel).First().Text()),
		Store:    r.name,
		ImageURL: firstImage(card, r.baseURL),
	}

	res.Price = parsePrice(card.Find(r.priceSel).First().Text())
	if res.Price == nil {
		// Some layouts render the price as loose text inside the card.
		res.Price = parsePrice(card.Text())
	}

	if href, ok := card.Find(r.linkSel).First().Attr("href"); ok {
		res.ProductURL = absolutize(r.baseURL, href)
	}

	if res.Name == "" && res.Price == nil {
		return nil, fmt.Errorf("%w: unparseable %s card for %q", ErrNotFound, r.name, query)
	}
	return res, nil
}

// NewAmazon creates the Amazon search scraper.
func NewAmazon(timeout time.Duration, userAgent string) *Retailer {
	return &Retailer{
		fetch:   newFetcher(timeout, userAgent),
		name:    "Amazon",
		baseURL: "https://www.amazon.com",
		searchFn: func(base, q string) string {
			return base + "/s?k=" + url.QueryEscape(q)
		},
		cardSel:  `[data-component-type="s-search-result"], .s-result-item[data-asin]`,
		titleSel: `h2 a span, h2 span`,
		priceSel: `.a-price .a-offscreen, span.a-price-whole`,
		linkSel:  `h2 a, a.a-link-normal`,
	}
}

// NewTarget creates the Target search scraper.
func NewTarget(timeout time.Duration, userAgent string) *Retailer {
	return &Retailer{
		fetch:   newFetcher(timeout, userAgent),
		name:    "Target",
		baseURL: "https://www.target.com",
		searchFn: func(base, q string) string {
			return base + "/s?searchTerm=" + url.QueryEscape(q)
		},
		cardSel:  `div[data-test="product-grid"] > div, section[data-test="@web/ProductCard/ProductCardWrapper"]`,
		titleSel: `a[data-test="product-title"], .h-text-bold`,
		priceSel: `span[data-test="current-price"], .h-text-md`,
		linkSel:  `a[data-test="product-title"], a`,
	}
}

// NewPublix creates the Publix search scraper.
func NewPublix(timeout time.Duration, userAgent string) *Retailer {
	return &Retailer{
		fetch:   newFetcher(timeout, userAgent),
		name:    "Publix",
		baseURL: "https://www.publix.com",
		searchFn: func(base, q string) string {
			return base + "/shop/search?query=" + url.QueryEscape(q)
		},
		cardSel:  `div[data-testid="product-card"], div.product-item`,
		titleSel: `h2, .product-name`,
		priceSel: `span[data-testid="product-price"], .price`,
		linkSel:  `a`,
	}
}

// NewCostco creates the Costco search scraper.
func NewCostco(timeout time.Duration, userAgent string) *Retailer {
	return &Retailer{
		fetch:   newFetcher(timeout, userAgent),
		name:    "Costco",
		baseURL: "https://www.costco.com",
		searchFn: func(base, q string) string {
			return base + "/s?dept=All&keyword=" + url.QueryEscape(q)
		},
		cardSel:  `div.product, div[automation-id="productList"] > div`,
		titleSel: `span.description a, .product-title`,
		priceSel: `div.price, span.price`,
		linkSel:  `a.description, a.product-title, a`,
	}
}
