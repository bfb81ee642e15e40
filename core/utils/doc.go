// Package utils provides common utility functions for the izzymart service.
// It includes helper functions for type conversion used when traversing
// loosely-typed JSON blobs extracted from retailer pages.
package utils
