package lookup

import (
	"testing"

	"github.com/berge472/izzymart/feature/catalog/models"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := map[string]string{
		"9780134685991":     models.TypeBook,
		"9791234567896":     models.TypeBook,
		"978-0-13-468599-1": models.TypeBook,
		"0134685997":        models.TypeBook,
		"0 13468599 7":      models.TypeBook,
		"041303001776":      models.TypeFood,
		"0000000000000":     models.TypeFood,
		"4011":              models.TypeFood,
		"":                  models.TypeFood,
	}
	for id, want := range cases {
		assert.Equal(t, want, Classify(id), id)
	}
}
