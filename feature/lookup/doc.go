// Package lookup resolves scanned identifiers (UPC, EAN, ISBN) to catalog
// records.
//
// A resolution first checks the catalog cache, then classifies the
// identifier (ISBN prefixes mean book, everything else food), queries the
// matching domain source, and for food products runs the enrichment chain
// across retail sources to fill in price and image. Resolved records are
// written back to the catalog when caching is enabled, with product images
// downloaded into the asset store.
//
// Concurrent resolutions of the same identifier are coalesced; enrichment
// fetches run through a bounded worker pool so a burst of scans cannot open
// an unbounded number of upstream connections.
package lookup
