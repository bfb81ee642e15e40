package lookup

import "strings"

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Config holds configuration for the product resolver and its upstream
// adapters.
type Config struct {
	// DefaultPrice is assigned to resolved food products whose price could
	// not be determined from any retail source.
	DefaultPrice float64 `mapstructure:"default_price" default:"4.04"`
	// Workers is the size of the worker pool that runs enrichment fetches.
	Workers int `mapstructure:"workers" default:"4"`
	// QueueSize bounds the number of enrichment fetches waiting for a worker.
	QueueSize int `mapstructure:"queue_size" default:"16"`
	// TimeoutSeconds is the per-request timeout for upstream adapters.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"10"`
	// UserAgent is sent on requests to retail sites. Defaults to a browser
	// user agent because several retailers reject obvious bot traffic.
	UserAgent string `mapstructure:"user_agent" default:""`
	// PreferredStores is a comma separated, ordered list of retailer names
	// favored when the shopping aggregator returns multiple offers.
	PreferredStores string `mapstructure:"preferred_stores" default:"publix,target,costco"`
}

// EffectiveUserAgent returns the configured user agent or the browser default.
func (c Config) EffectiveUserAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return browserUserAgent
}

// PreferredStoreList splits the preferred store setting into names.
func (c Config) PreferredStoreList() []string {
	var out []string
	for _, s := range strings.Split(c.PreferredStores, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
