package model

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Festival is a festival a group has adopted into its own plan, distinct
// from the shared catalog.
//
// Fields:
//
//	ID          – primary key.
//	GroupID     – owning group (nullable).
//	Name        – required.
//	Location    – free-form place name (nullable).
//	DatesStart  – first day (nullable).
//	DatesEnd    – last day (nullable, not checked against DatesStart).
//	TicketPrice – per-person price, never negative (nullable).
//	OnSaleDate  – ticket sale opening (nullable).
//	Status      – considering, committed or passed.
//	Latitude    – WGS84 latitude (nullable).
//	Longitude   – WGS84 longitude (nullable).
type Festival struct {
	ID          uuid.UUID        `db:"id" json:"id"`                     // festivals.id
	GroupID     *uuid.UUID       `db:"group_id" json:"group_id"`         // festivals.group_id
	Name        string           `db:"name" json:"name"`                 // festivals.name
	Location    *string          `db:"location" json:"location"`         // festivals.location
	DatesStart  *Date            `db:"dates_start" json:"dates_start"`   // festivals.dates_start
	DatesEnd    *Date            `db:"dates_end" json:"dates_end"`       // festivals.dates_end
	TicketPrice *decimal.Decimal `db:"ticket_price" json:"ticket_price"` // festivals.ticket_price
	OnSaleDate  *Date            `db:"on_sale_date" json:"on_sale_date"` // festivals.on_sale_date
	Status      FestivalStatus   `db:"status" json:"status"`             // festivals.status
	Latitude    *float64         `db:"latitude" json:"latitude"`         // festivals.latitude
	Longitude   *float64         `db:"longitude" json:"longitude"`       // festivals.longitude
}

// FestivalWithArtists is a festival plus its own artists, as returned by
// GET /groups/{id}/festivals.
type FestivalWithArtists struct {
	Festival
	Artists []Artist `json:"artists"`
}

// FestivalCreate is the body accepted by POST /festivals.
type FestivalCreate struct {
	GroupID     uuid.UUID        `json:"group_id" validate:"required"`
	Name        string           `json:"name" validate:"required"`
	Location    *string          `json:"location"`
	DatesStart  *Date            `json:"dates_start"`
	DatesEnd    *Date            `json:"dates_end"`
	TicketPrice *decimal.Decimal `json:"ticket_price" validate:"omitempty,gte=0"`
	OnSaleDate  *Date            `json:"on_sale_date"`
	Status      FestivalStatus   `json:"status" validate:"omitempty,oneof=considering committed passed"`
	Latitude    *float64         `json:"latitude" validate:"omitempty,latitude"`
	Longitude   *float64         `json:"longitude" validate:"omitempty,longitude"`
}

// Normalize trims the name and applies the status default.
func (in *FestivalCreate) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	if in.Status == "" {
		in.Status = FestivalConsidering
	}
}

// FestivalUpdate rewrites planning details of an existing festival. It is
// used by the lineup importer; there is no public route for it.
type FestivalUpdate struct {
	Location   *string         `json:"location"`
	DatesStart *Date           `json:"dates_start"`
	DatesEnd   *Date           `json:"dates_end"`
	Status     *FestivalStatus `json:"status" validate:"omitempty,oneof=considering committed passed"`
}

func (in FestivalUpdate) IsEmpty() bool {
	return in.Location == nil && in.DatesStart == nil && in.DatesEnd == nil && in.Status == nil
}
