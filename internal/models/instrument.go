package models

import "gorm.io/gorm"

// Instrument represents a tradable catalog entry. Prices are static seed
// values unless the quote feed refresh is enabled.
type Instrument struct {
	gorm.Model
	Symbol string  `gorm:"uniqueIndex;not null" json:"symbol"`
	Name   string  `gorm:"not null" json:"name"`
	Price  float64 `gorm:"not null" json:"price"`
	About  string  `json:"about"`
	Logo   string  `json:"logo"`
}
