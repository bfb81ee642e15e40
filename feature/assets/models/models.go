package models

import (
	"time"

	"github.com/berge472/izzymart/core/database"
)

// Asset is the metadata record for one stored binary payload.
//
// The payload itself lives in object storage under ObjectKey. Assets are
// deduplicated by content hash: two uploads with the same MD5 resolve to the
// same row. References lists the IDs of the documents (products, and
// potentially other entity kinds) that embed this asset; an asset whose
// reference list becomes empty is deleted together with its object.
type Asset struct {
	ID          string              `gorm:"primaryKey;size:36" json:"id"`
	Name        string              `gorm:"size:255" json:"name"`
	MD5         string              `gorm:"size:32;uniqueIndex" json:"md5"`
	ObjectKey   string              `gorm:"size:255" json:"-"`
	ContentType string              `gorm:"size:100" json:"content_type,omitempty"`
	Size        int64               `json:"size"`
	References  database.StringList `gorm:"type:text" json:"references"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}
