package sources

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ImageSearch finds candidate product images via Google Images. It is the
// last-resort image source and never supplies a price.
type ImageSearch struct {
	fetch   *fetcher
	baseURL string
}

// NewImageSearch creates the image search adapter.
func NewImageSearch(timeout time.Duration, userAgent string) *ImageSearch {
	return &ImageSearch{
		fetch:   newFetcher(timeout, userAgent),
		baseURL: "https://www.google.com/search",
	}
}

// Name identifies the source for provenance.
func (s *ImageSearch) Name() string { return "Google Images" }

var imageSelectors = []string{
	"div[data-id] img",
	"img.rg_i",
	"img.yWs4tf",
	"img[data-src]",
}

// SearchURLs returns up to max candidate image URLs for the query. Inline
// data URIs and placeholder assets are filtered out.
func (s *ImageSearch) SearchURLs(ctx context.Context, query string, max int) ([]string, error) {
	doc, err := s.fetch.getDocument(ctx, s.baseURL+"?q="+url.QueryEscape(query)+"&tbm=isch&hl=en")
	if err != nil {
		return nil, err
	}

	var images *goquery.Selection
	for _, sel := range imageSelectors {
		images = doc.Find(sel)
		if images.Length() > 0 {
			break
		}
	}
	if images == nil || images.Length() == 0 {
		return nil, fmt.Errorf("%w: no image results for %q", ErrNotFound, query)
	}

	seen := map[string]bool{}
	var urls []string
	images.EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src, _ := img.Attr("src")
		if src == "" {
			src, _ = img.Attr("data-src")
		}
		if src == "" {
			src, _ = img.Attr("data-iurl")
		}
		src = absolutize("https://www.google.com", src)
		if usableImageURL(src) && !seen[src] {
			seen[src] = true
			urls = append(urls, src)
		}
		return len(urls) < max
	})

	if len(urls) == 0 {
		return nil, fmt.Errorf("%w: no usable image urls for %q", ErrNotFound, query)
	}
	return urls, nil
}

// Search adapts the image lookup to the Searcher contract, returning the
// first candidate as the result image.
func (s *ImageSearch) Search(ctx context.Context, query string) (*Result, error) {
	urls, err := s.SearchURLs(ctx, query, 1)
	if err != nil {
		return nil, err
	}
	return &Result{ImageURL: urls[0], Store: s.Name()}, nil
}
