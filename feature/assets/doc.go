// Package assets implements the content-addressed, reference-counted asset store.
//
// Binary payloads (product images) are stored in object storage keyed by their
// MD5 content hash; metadata rows live in the catalog database. Two uploads
// with identical bytes resolve to the same asset, so storage never holds
// duplicates.
//
// # Reference Counting
//
// Each asset tracks the IDs of the documents that embed it. Products (and any
// future entity kind) attach themselves with AddReference and detach with
// RemoveReference. When the last reference is removed the asset's object and
// metadata are deleted synchronously, which prevents both orphaned files and
// premature destruction of shared images.
//
// # Components
//
//   - Service: Put/Get/AddReference/RemoveReference with per-asset locking.
//   - Handler: HTTP endpoints under /files for list, inspect, upload, download, delete.
//   - Loader: Registers the feature with the application.
package assets
