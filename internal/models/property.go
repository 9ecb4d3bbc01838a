package models

import (
	"slices"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"propsearch/server/internal/catalog"
)

type Property struct {
	PropertyID         int64                    `json:"property_id" gorm:"primaryKey;column:property_id;autoIncrement:false"`
	Title              string                   `json:"title"`
	Description        string                   `json:"description"`
	Slug               string                   `json:"slug"`
	URL                string                   `json:"url" gorm:"column:url"`
	Thumbnail          string                   `json:"thumbnail"`
	Zona               string                   `json:"zona"`
	ZonaKey            string                   `json:"-" gorm:"column:zona_key;index"`
	Barrio             string                   `json:"barrio"`
	Bedrooms           int                      `json:"bedrooms"`
	Bathrooms          int                      `json:"bathrooms"`
	Pax                int                      `json:"pax"`
	MtsCubiertos       float64                  `json:"mts_cubiertos"`
	AceptaMascota      bool                     `json:"acepta_mascota"`
	TienePiscina       bool                     `json:"tiene_piscina"`
	CategoryIDs        datatypes.JSONSlice[int] `json:"category_ids" gorm:"column:category_ids"`
	TypeIDs            datatypes.JSONSlice[int] `json:"type_ids" gorm:"column:type_ids"`
	StatusIDs          datatypes.JSONSlice[int] `json:"status_ids" gorm:"column:status_ids"`
	Price              int64                    `json:"price"`
	PriceNote          string                   `json:"price_note"`
	EsPropertyPriceARS int64                    `json:"es_property_price_ars" gorm:"column:es_property_price_ars"`
	FTS                string                   `json:"fts" gorm:"column:fts"`
	Latitude           *float64                 `json:"latitude"`
	Longitude          *float64                 `json:"longitude"`
	UpdatedAt          time.Time                `json:"updated_at"`
}

func (Property) TableName() string {
	return "properties"
}

// BeforeSave stores the catalog key of Zona so region lookups match any
// accent or case spelling of the name.
func (p *Property) BeforeSave(tx *gorm.DB) error {
	p.ZonaKey = catalog.Key(p.Zona)
	return nil
}

// IsActive reports whether the listing is in the active lifecycle state.
// An empty status set counts as active.
func (p *Property) IsActive(activeCode int) bool {
	return len(p.StatusIDs) == 0 || slices.Contains(p.StatusIDs, activeCode)
}

// HasAnyCategory reports whether the property carries at least one of ids.
func (p *Property) HasAnyCategory(ids ...int) bool {
	for _, id := range ids {
		if slices.Contains(p.CategoryIDs, id) {
			return true
		}
	}
	return false
}

// HasType reports whether the property is classified with the type code.
func (p *Property) HasType(id int) bool {
	return slices.Contains(p.TypeIDs, id)
}
