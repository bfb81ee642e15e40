package sources

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var domainRe = regexp.MustCompile(`https?://(?:www\.)?([^/?.]+)`)

// Shopping aggregates offers across stores via Google Shopping. It is the
// first enrichment candidate because a single fetch covers every retailer.
type Shopping struct {
	fetch           *fetcher
	baseURL         string
	preferredStores []string
}

// NewShopping creates the shopping aggregator adapter. preferredStores is an
// ordered list of store names favored when several offers carry a price.
func NewShopping(timeout time.Duration, userAgent string, preferredStores []string) *Shopping {
	return &Shopping{
		fetch:           newFetcher(timeout, userAgent),
		baseURL:         "https://www.google.com/search",
		preferredStores: preferredStores,
	}
}

// Name identifies the source for provenance.
func (s *Shopping) Name() string { return "Google Shopping" }

// The result grid has gone through several layouts; try them newest first.
var shoppingCardSelectors = []string{
	"div.sh-dgr__content",
	"div[data-docid]",
	"div.KZmu8e",
	"div.sh-np__product-grid-item",
	"div.xcR77",
	"div[data-hveid]",
}

// Search fetches the shopping results for the query and picks the best
// priced offer, favoring the configured preferred stores.
func (s *Shopping) Search(ctx context.Context, query string) (*Result, error) {
	doc, err := s.fetch.getDocument(ctx, s.baseURL+"?q="+url.QueryEscape(query)+"&tbm=shop&hl=en&gl=us")
	if err != nil {
		return nil, err
	}

	var cards *goquery.Selection
	for _, sel := range shoppingCardSelectors {
		cards = doc.Find(sel)
		if cards.Length() > 0 {
			break
		}
	}
	if cards == nil || cards.Length() == 0 {
		return nil, fmt.Errorf("%w: no shopping results for %q", ErrNotFound, query)
	}

	var offers []*Result
	cards.EachWithBreak(func(i int, card *goquery.Selection) bool {
		if r := s.extractOffer(card); r != nil && r.Price != nil {
			offers = append(offers, r)
		}
		return i < 9
	})
	if len(offers) == 0 {
		return nil, fmt.Errorf("%w: no priced shopping offers for %q", ErrNotFound, query)
	}

	for _, preferred := range s.preferredStores {
		p := strings.ToLower(preferred)
		for _, offer := range offers {
			if strings.Contains(strings.ToLower(offer.Store), p) {
				return offer, nil
			}
		}
	}
	return offers[0], nil
}

func (s *Shopping) extractOffer(card *goquery.Selection) *Result {
	r := &Result{}

	for _, sel := range []string{"h3", "h4", `div[role="heading"]`, "div.tAxDx", "span.translate-content"} {
		if t := strings.TrimSpace(card.Find(sel).First().Text()); t != "" {
			r.Name = t
			break
		}
	}
	if r.Name == "" {
		if title, ok := card.Find("a[title]").First().Attr("title"); ok {
			r.Name = title
		}
	}

	for _, sel := range []string{"span.a8Pemb", `span[aria-label*="$"]`, "div.a8Pemb", "b", "span.HRLxBb"} {
		if r.Price = parsePrice(card.Find(sel).First().Text()); r.Price != nil {
			break
		}
	}
	if r.Price == nil {
		r.Price = parsePrice(card.Text())
	}

	for _, sel := range []string{"div.aULzUe", "div.IuHnof", "span.E5ocAb", "div.a1B3Mb", "span.dD8iuc"} {
		if t := strings.TrimSpace(card.Find(sel).First().Text()); t != "" {
			r.Store = strings.NewReplacer("from ", "", "From ", "", "at ", "").Replace(t)
			break
		}
	}

	if href, ok := card.Find("a[href]").First().Attr("href"); ok {
		r.ProductURL = href
		if r.Store == "" {
			if m := domainRe.FindStringSubmatch(href); m != nil {
				r.Store = capitalize(m[1])
			}
		}
	}

	if img := firstImage(card, "https://www.google.com"); img != "" {
		r.ImageURL = img
	}

	if r.Name == "" || r.Price == nil {
		return nil
	}
	return r
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
