package models

import (
	"time"

	"github.com/berge472/izzymart/core/database"
)

// Product types stored in the catalog.
const (
	TypeFood    = "food"
	TypeBook    = "book"
	TypeGeneric = "generic"
)

// Metadata keys under which enrichment provenance is recorded.
const (
	MetaPriceSource = "price_source"
	MetaImageSource = "image_source"
)

// Nutrition holds the per-100g nutrition facts extracted from the food
// database. All values are optional; absent facts are omitted from JSON.
type Nutrition struct {
	ServingSize    string   `json:"serving_size,omitempty"`
	Calories       *float64 `json:"calories,omitempty"`
	Fat            *float64 `json:"fat,omitempty"`
	SaturatedFat   *float64 `json:"saturated_fat,omitempty"`
	TransFat       *float64 `json:"trans_fat,omitempty"`
	Cholesterol    *float64 `json:"cholesterol,omitempty"`
	Sodium         *float64 `json:"sodium,omitempty"`
	Carbohydrates  *float64 `json:"carbohydrates,omitempty"`
	Fiber          *float64 `json:"fiber,omitempty"`
	Sugars         *float64 `json:"sugars,omitempty"`
	Protein        *float64 `json:"protein,omitempty"`
	NutritionGrade string   `json:"nutrition_grade,omitempty"`
}

// BookInfo holds the registry fields specific to book products.
type BookInfo struct {
	ISBN            string   `json:"isbn,omitempty"`
	Author          string   `json:"author,omitempty"`
	Publisher       string   `json:"publisher,omitempty"`
	PublicationDate string   `json:"publication_date,omitempty"`
	PageCount       int      `json:"page_count,omitempty"`
	Language        string   `json:"language,omitempty"`
	Categories      []string `json:"categories,omitempty"`
}

// Product is one catalog entry, keyed by its UPC/EAN/ISBN identifier.
// The UPC is immutable once persisted and unique across the catalog.
// Images holds asset IDs in display order; the asset store tracks the
// reverse references.
type Product struct {
	ID          string              `gorm:"primaryKey;size:36" json:"id,omitempty"`
	UPC         string              `gorm:"size:20;uniqueIndex" json:"upc,omitempty"`
	ProductType string              `gorm:"size:16" json:"product_type,omitempty"`
	Name        string              `gorm:"size:255" json:"name,omitempty"`
	Description string              `gorm:"type:text" json:"description,omitempty"`
	Brand       string              `gorm:"size:255" json:"brand,omitempty"`
	Price       *float64            `json:"price,omitempty"`
	Tags        database.StringList `gorm:"type:text" json:"tags,omitempty"`
	Allergens   database.StringList `gorm:"type:text" json:"allergens,omitempty"`
	Images      database.StringList `gorm:"type:text" json:"images,omitempty"`
	Nutrition   *Nutrition          `gorm:"serializer:json" json:"nutrition,omitempty"`
	Book        *BookInfo           `gorm:"serializer:json" json:"book,omitempty"`
	Metadata    database.JSONMap    `gorm:"type:text" json:"metadata,omitempty"`
	CreatedAt   time.Time           `json:"created_at,omitempty"`
	UpdatedAt   time.Time           `json:"updated_at,omitempty"`
}
