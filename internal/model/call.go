package model

import (
	"time"

	"github.com/google/uuid"
)

// Call records one conversation between a group and the voice assistant.
// EndedAt and Summary are written exactly once, when the call terminates.
type Call struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	GroupID    *uuid.UUID `db:"group_id" json:"group_id"`
	StartedAt  time.Time  `db:"started_at" json:"started_at"`
	EndedAt    *time.Time `db:"ended_at" json:"ended_at"`
	Summary    *string    `db:"summary" json:"summary"`
	Transcript RawJSON    `db:"transcript" json:"transcript"`
	FromNumber *string    `db:"from_number" json:"from_number"`
}

// Ended reports whether the call has already been terminated.
func (c Call) Ended() bool { return c.EndedAt != nil }

// CallCreate is the body accepted by POST /calls. StartedAt defaults to the
// server clock when omitted.
type CallCreate struct {
	GroupID    uuid.UUID  `json:"group_id" validate:"required"`
	StartedAt  *time.Time `json:"started_at"`
	Summary    *string    `json:"summary"`
	Transcript RawJSON    `json:"transcript" validate:"omitempty,jsoncontainer"`
	FromNumber *string    `json:"from_number"`
}

// CallEnd terminates a call. The summary is stored verbatim.
type CallEnd struct {
	Summary    string  `json:"summary"`
	Transcript RawJSON `json:"transcript" validate:"omitempty,jsoncontainer"`
}
