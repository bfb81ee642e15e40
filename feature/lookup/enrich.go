package lookup

import (
	"context"
	"strings"
	"time"

	"github.com/berge472/izzymart/core/pool"
	"github.com/berge472/izzymart/feature/lookup/sources"

	"go.uber.org/zap"
)

// Goal names one piece of information the enrichment chain is asked to find.
type Goal string

const (
	GoalPrice Goal = "price"
	GoalImage Goal = "image"
)

// Enrichment is the chain's outcome: the values it found plus the name of
// the source that supplied each one.
type Enrichment struct {
	Price       *float64
	PriceSource string
	ImageURL    string
	ImageSource string
	ProductURL  string
	Store       string
}

// Chain queries retail sources in a fixed priority order until every
// requested goal is satisfied. The order is [shopping aggregator, Amazon,
// Target, Publix, Costco], with image search appended as a last resort when
// an image is wanted. Sources run sequentially through the shared worker
// pool; a source that errors is logged and skipped.
type Chain struct {
	retailers []sources.Searcher
	images    sources.Searcher
	pool      *pool.Pool
	timeout   time.Duration
	logger    *zap.Logger
}

// NewChain builds the chain over the given retail searchers (in priority
// order) and the last-resort image searcher, which may be nil.
func NewChain(retailers []sources.Searcher, images sources.Searcher, p *pool.Pool, timeout time.Duration, logger *zap.Logger) *Chain {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Chain{
		retailers: retailers,
		images:    images,
		pool:      p,
		timeout:   timeout,
		logger:    logger,
	}
}

// Enrich works through the sources until the requested goals are met or the
// chain is exhausted. Preferred store names act as a soft override: matching
// retailers move to the front, relative order otherwise preserved.
func (c *Chain) Enrich(ctx context.Context, query string, preferredStores []string, goals map[Goal]bool) Enrichment {
	var out Enrichment

	want := make(map[Goal]bool, len(goals))
	for g, on := range goals {
		if on {
			want[g] = true
		}
	}
	if len(want) == 0 || query == "" {
		return out
	}

	order := reorderPreferred(c.retailers, preferredStores)
	if c.images != nil {
		order = append(order, c.images)
	}

	for _, src := range order {
		if len(want) == 0 {
			return out
		}
		// Image search cannot satisfy a price goal; consult it only when an
		// image is still missing.
		if src == c.images && !want[GoalImage] {
			continue
		}

		res, err := c.search(ctx, src, query)
		if err != nil {
			c.logger.Debug("Enrichment source failed",
				zap.String("source", src.Name()),
				zap.String("query", query),
				zap.Error(err))
			continue
		}

		if want[GoalPrice] && res.Price != nil {
			out.Price = res.Price
			out.PriceSource = pickSource(src.Name(), res.Store)
			delete(want, GoalPrice)
		}
		if want[GoalImage] && res.ImageURL != "" {
			out.ImageURL = res.ImageURL
			out.ImageSource = pickSource(src.Name(), res.Store)
			delete(want, GoalImage)
		}
		if out.ProductURL == "" && res.ProductURL != "" {
			out.ProductURL = res.ProductURL
		}
		if out.Store == "" && res.Store != "" {
			out.Store = res.Store
		}
	}
	return out
}

func (c *Chain) search(ctx context.Context, src sources.Searcher, query string) (*sources.Result, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	v, err := c.pool.Run(attemptCtx, func(ctx context.Context) (any, error) {
		return src.Search(ctx, query)
	})
	if err != nil {
		return nil, err
	}
	return v.(*sources.Result), nil
}

// reorderPreferred moves retailers whose name matches a hint to the front,
// hint order first, everything else in original order behind them.
func reorderPreferred(retailers []sources.Searcher, hints []string) []sources.Searcher {
	if len(hints) == 0 {
		return retailers
	}

	out := make([]sources.Searcher, 0, len(retailers))
	taken := make(map[int]bool, len(retailers))

	for _, hint := range hints {
		h := strings.ToLower(strings.TrimSpace(hint))
		if h == "" {
			continue
		}
		for i, r := range retailers {
			if !taken[i] && strings.Contains(strings.ToLower(r.Name()), h) {
				out = append(out, r)
				taken[i] = true
			}
		}
	}
	for i, r := range retailers {
		if !taken[i] {
			out = append(out, r)
		}
	}
	return out
}

// pickSource prefers the store carried on the result, falling back to the
// adapter's own name. The aggregator reports the store it matched on.
func pickSource(adapter, store string) string {
	if store != "" {
		return store
	}
	return adapter
}
