package model

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CatalogEntry is a festival in the shared catalog. It is not scoped to a
// group.
type CatalogEntry struct {
	ID          uuid.UUID        `db:"id" json:"id"`                     // festival_catalog.id
	Name        string           `db:"name" json:"name"`                 // festival_catalog.name
	Location    *string          `db:"location" json:"location"`         // festival_catalog.location
	DatesStart  *Date            `db:"dates_start" json:"dates_start"`   // festival_catalog.dates_start
	DatesEnd    *Date            `db:"dates_end" json:"dates_end"`       // festival_catalog.dates_end
	TicketPrice *decimal.Decimal `db:"ticket_price" json:"ticket_price"` // festival_catalog.ticket_price
	OnSaleDate  *Date            `db:"on_sale_date" json:"on_sale_date"` // festival_catalog.on_sale_date
	Latitude    *float64         `db:"latitude" json:"latitude"`         // festival_catalog.latitude
	Longitude   *float64         `db:"longitude" json:"longitude"`       // festival_catalog.longitude
}

// CatalogEntryCreate is the body accepted by POST /festival-catalog.
type CatalogEntryCreate struct {
	Name        string           `json:"name" validate:"required"`
	Location    *string          `json:"location"`
	DatesStart  *Date            `json:"dates_start"`
	DatesEnd    *Date            `json:"dates_end"`
	TicketPrice *decimal.Decimal `json:"ticket_price" validate:"omitempty,gte=0"`
	OnSaleDate  *Date            `json:"on_sale_date"`
	Latitude    *float64         `json:"latitude" validate:"omitempty,latitude"`
	Longitude   *float64         `json:"longitude" validate:"omitempty,longitude"`
}

func (in *CatalogEntryCreate) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
}
