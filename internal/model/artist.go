package model

import (
	"strings"

	"github.com/google/uuid"
)

// Artist is an act playing at a festival, with the group's interest level.
type Artist struct {
	ID         uuid.UUID      `db:"id" json:"id"`
	FestivalID *uuid.UUID     `db:"festival_id" json:"festival_id"`
	Name       string         `db:"name" json:"name"`
	Priority   ArtistPriority `db:"priority" json:"priority"`
}

// ArtistCreate is the body accepted by POST /artists.
type ArtistCreate struct {
	FestivalID uuid.UUID      `json:"festival_id" validate:"required"`
	Name       string         `json:"name" validate:"required"`
	Priority   ArtistPriority `json:"priority" validate:"omitempty,oneof=must_see want_to_see nice_to_have"`
}

func (in *ArtistCreate) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	if in.Priority == "" {
		in.Priority = PriorityWantToSee
	}
}
