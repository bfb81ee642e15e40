// Package sources contains the upstream adapters the resolver draws from:
// the Open Food Facts database, the Open Library / Google Books registries,
// retail search scrapers (Amazon, Target, Publix, Costco), the Google
// Shopping aggregator, and Google Images as a last-resort image source.
//
// Adapters share a small error taxonomy (ErrNotFound, ErrUpstream,
// ErrDecode) and return partial products as Result values; assembling them
// into catalog entries is the resolver's job.
package sources
