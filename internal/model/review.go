package model

import (
	"time"

	"github.com/google/uuid"
)

// Review is a member's rating of a festival. It is removed together with
// either parent.
type Review struct {
	ID         uuid.UUID `db:"id" json:"id"`
	UserID     uuid.UUID `db:"user_id" json:"user_id"`
	FestivalID uuid.UUID `db:"festival_id" json:"festival_id"`
	Stars      int16     `db:"stars" json:"stars"`
	Text       *string   `db:"text" json:"text"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ReviewCreate is the body accepted by POST /reviews. Stars is required but
// its range is not restricted.
type ReviewCreate struct {
	UserID     uuid.UUID `json:"user_id" validate:"required"`
	FestivalID uuid.UUID `json:"festival_id" validate:"required"`
	Stars      *int16    `json:"stars" validate:"required"`
	Text       *string   `json:"text"`
}
