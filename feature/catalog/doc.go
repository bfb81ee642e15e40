// Package catalog implements CRUD for product records.
//
// A product is identified internally by a generated ID and externally by its
// UPC, which is unique and immutable once created. Products reference their
// images by asset ID; the catalog keeps the asset store's reference counts in
// sync on every create, update, and delete so shared images are never
// destroyed while another product still uses them.
//
// # Components
//
//   - Service: Create/Get/Update/Upsert/Delete plus image retrieval by UPC.
//   - Handler: HTTP endpoints under /products.
//   - Loader: Registers the feature with the application.
package catalog
