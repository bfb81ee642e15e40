package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/berge472/izzymart/feature/catalog/models"
)

// OpenFoodFacts looks up food products in the Open Food Facts database.
type OpenFoodFacts struct {
	fetch   *fetcher
	baseURL string
}

// NewOpenFoodFacts creates the food database adapter.
func NewOpenFoodFacts(timeout time.Duration, userAgent string) *OpenFoodFacts {
	return &OpenFoodFacts{
		fetch:   newFetcher(timeout, userAgent),
		baseURL: "https://world.openfoodfacts.org/api/v2",
	}
}

type offNutriments struct {
	EnergyKcal100g *float64 `json:"energy-kcal_100g"`
	Energy100g     *float64 `json:"energy_100g"`
	Fat            *float64 `json:"fat_100g"`
	SaturatedFat   *float64 `json:"saturated-fat_100g"`
	TransFat       *float64 `json:"trans-fat_100g"`
	Cholesterol    *float64 `json:"cholesterol_100g"`
	Sodium         *float64 `json:"sodium_100g"`
	Carbohydrates  *float64 `json:"carbohydrates_100g"`
	Fiber          *float64 `json:"fiber_100g"`
	Sugars         *float64 `json:"sugars_100g"`
	Proteins       *float64 `json:"proteins_100g"`
}

type offProduct struct {
	ID               string        `json:"_id"`
	ProductName      string        `json:"product_name"`
	ProductNameEn    string        `json:"product_name_en"`
	Brands           string        `json:"brands"`
	GenericName      string        `json:"generic_name"`
	GenericNameEn    string        `json:"generic_name_en"`
	IngredientsText  string        `json:"ingredients_text"`
	IngredientsEn    string        `json:"ingredients_text_en"`
	CategoriesTags   []string      `json:"categories_tags"`
	AllergensTags    []string      `json:"allergens_tags"`
	Nutriments       offNutriments `json:"nutriments"`
	ServingSize      string        `json:"serving_size"`
	NutritionGradeFr string        `json:"nutrition_grade_fr"`
	NutriscoreGrade  string        `json:"nutriscore_grade"`
	ImageURL         string        `json:"image_url"`
	ImageFrontURL    string        `json:"image_front_url"`
	EcoscoreGrade    string        `json:"ecoscore_grade"`
	NovaGroup        any           `json:"nova_group"`
	Packaging        string        `json:"packaging"`
	Stores           string        `json:"stores"`
}

type offResponse struct {
	Status  int        `json:"status"`
	Product offProduct `json:"product"`
}

// LookupUPC fetches a food product by its barcode. A status other than 1
// means the database has no entry for the code.
func (o *OpenFoodFacts) LookupUPC(ctx context.Context, upc string) (*Result, error) {
	url := fmt.Sprintf("%s/product/%s.json", o.baseURL, upc)

	var resp offResponse
	if err := o.fetch.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}
	if resp.Status != 1 {
		return nil, fmt.Errorf("%w: upc %s not in open food facts", ErrNotFound, upc)
	}

	p := resp.Product
	r := &Result{
		Name:        firstNonEmpty(p.ProductName, p.ProductNameEn),
		Brand:       p.Brands,
		Description: firstNonEmpty(p.GenericName, p.GenericNameEn),
		Ingredients: firstNonEmpty(p.IngredientsText, p.IngredientsEn),
		ImageURL:    firstNonEmpty(p.ImageURL, p.ImageFrontURL),
		Tags:        stripLanguagePrefix(p.CategoriesTags),
		Allergens:   stripLanguagePrefix(p.AllergensTags),
		Nutrition:   extractNutrition(p),
		Metadata:    map[string]any{},
	}

	if p.ID != "" {
		r.Metadata["openfoodfacts_id"] = p.ID
	}
	if p.EcoscoreGrade != "" {
		r.Metadata["ecoscore_grade"] = p.EcoscoreGrade
	}
	if p.NovaGroup != nil {
		r.Metadata["nova_group"] = p.NovaGroup
	}
	if p.Packaging != "" {
		r.Metadata["packaging"] = p.Packaging
	}
	if p.Stores != "" {
		r.Metadata["stores_mentioned"] = p.Stores
	}

	return r, nil
}

func extractNutrition(p offProduct) *models.Nutrition {
	n := &models.Nutrition{
		ServingSize:    p.ServingSize,
		Fat:            p.Nutriments.Fat,
		SaturatedFat:   p.Nutriments.SaturatedFat,
		TransFat:       p.Nutriments.TransFat,
		Cholesterol:    p.Nutriments.Cholesterol,
		Sodium:         p.Nutriments.Sodium,
		Carbohydrates:  p.Nutriments.Carbohydrates,
		Fiber:          p.Nutriments.Fiber,
		Sugars:         p.Nutriments.Sugars,
		Protein:        p.Nutriments.Proteins,
		NutritionGrade: firstNonEmpty(p.NutritionGradeFr, p.NutriscoreGrade),
	}

	switch {
	case p.Nutriments.EnergyKcal100g != nil:
		n.Calories = p.Nutriments.EnergyKcal100g
	case p.Nutriments.Energy100g != nil:
		// Upstream reports kJ when no kcal figure exists.
		kcal := *p.Nutriments.Energy100g / 4.184
		n.Calories = &kcal
	}

	if *n == (models.Nutrition{}) {
		return nil
	}
	return n
}

func stripLanguagePrefix(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, strings.TrimPrefix(t, "en:"))
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
