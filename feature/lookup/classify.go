package lookup

import (
	"strings"

	"github.com/berge472/izzymart/feature/catalog/models"
)

// Classify maps a scanned identifier to a product type. ISBN-13 codes carry
// the 978/979 Bookland prefix and ISBN-10 codes are ten characters; anything
// else is treated as a food barcode. No checksum validation, scanners
// already did that.
func Classify(identifier string) string {
	id := strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return -1
		}
		return r
	}, identifier)

	switch {
	case len(id) == 13 && (strings.HasPrefix(id, "978") || strings.HasPrefix(id, "979")):
		return models.TypeBook
	case len(id) == 10:
		return models.TypeBook
	default:
		return models.TypeFood
	}
}
