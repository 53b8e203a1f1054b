package models

import "gorm.io/datatypes"

type Listing struct {
	BaseModel
	UploadedByID string      `gorm:"type:uuid;not null;index"`
	Title        string      `gorm:"type:varchar(255);not null"`
	Description  string      `gorm:"type:text"`
	Category     Category    `gorm:"type:varchar(32);not null;index"`
	ListingType  ListingType `gorm:"type:varchar(16);not null;index"`

	UploadedBy User              `gorm:"foreignKey:UploadedByID;constraint:OnDelete:RESTRICT"`
	Photos     []ListingPhoto    `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE"`
	Rates      []ListingRate     `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE"`
	Locations  []ListingLocation `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE"`
}

type ListingRate struct {
	BaseModel
	ListingID string   `gorm:"type:uuid;not null;index"`
	TimeUnit  TimeUnit `gorm:"type:varchar(2);not null"`
	Rate      float64  `gorm:"type:numeric(10,2);not null"`
}

type ListingLocation struct {
	BaseModel
	ListingID string  `gorm:"type:uuid;not null;index"`
	Latitude  float64 `gorm:"not null"`
	Longitude float64 `gorm:"not null"`
	Query     string  `gorm:"type:varchar(255)"`
	Notes     string  `gorm:"type:text"`
}

type ListingPhoto struct {
	BaseModel
	ListingID string `gorm:"type:uuid;not null;index"`
	ImageURL  string `gorm:"not null"`
	// storage key of the original, used to delete the object with the listing
	ImageKey string
	// variant name -> {"url", "key"}
	Variants datatypes.JSONMap `gorm:"type:jsonb"`
}

func (p *ListingPhoto) VariantURL(name string) string {
	v, ok := p.Variants[name].(map[string]interface{})
	if !ok {
		return ""
	}
	url, _ := v["url"].(string)
	return url
}

// StorageKeys lists every stored object belonging to the photo.
func (p *ListingPhoto) StorageKeys() []string {
	var keys []string
	if p.ImageKey != "" {
		keys = append(keys, p.ImageKey)
	}
	for _, raw := range p.Variants {
		if v, ok := raw.(map[string]interface{}); ok {
			if key, _ := v["key"].(string); key != "" {
				keys = append(keys, key)
			}
		}
	}
	return keys
}

// HasRate reports whether the listing is priced in the given unit.
func (l *Listing) HasRate(unit TimeUnit) bool {
	for _, r := range l.Rates {
		if r.TimeUnit == unit {
			return true
		}
	}
	return false
}
