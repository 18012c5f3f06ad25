package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Group is a set of friends planning trips together. Deleting a group
// cascades to its members, calls and festivals.
//
// Fields:
//
//	ID          – primary key.
//	Name        – display name (nullable).
//	Description – free text (nullable).
//	CreatedAt   – server-assigned creation timestamp.
type Group struct {
	ID          uuid.UUID `db:"id" json:"id"`                   // groups.id
	Name        *string   `db:"name" json:"name"`               // groups.name (nullable)
	Description *string   `db:"description" json:"description"` // groups.description (nullable)
	CreatedAt   time.Time `db:"created_at" json:"created_at"`   // groups.created_at
}

// GroupCreate is the body accepted by POST /groups. Every field is optional.
type GroupCreate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Normalize trims the name; a blank name is stored as NULL.
func (in *GroupCreate) Normalize() {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			in.Name = nil
		} else {
			in.Name = &name
		}
	}
}
