package model

import (
	"strings"

	"github.com/google/uuid"
)

// Member is a friend belonging to a group. Phone doubles as the caller
// identity key for inbound calls.
//
// Fields:
//
//	ID      – primary key.
//	GroupID – owning group (nullable).
//	Name    – required, never blank.
//	City    – home city (nullable).
//	Phone   – phone number (nullable).
//	Status  – active, pending or inactive; defaults to active.
type Member struct {
	ID      uuid.UUID    `db:"id" json:"id"`             // members.id
	GroupID *uuid.UUID   `db:"group_id" json:"group_id"` // members.group_id (nullable)
	Name    string       `db:"name" json:"name"`         // members.name
	City    *string      `db:"city" json:"city"`         // members.city (nullable)
	Phone   *string      `db:"phone" json:"phone"`       // members.phone (nullable)
	Status  MemberStatus `db:"status" json:"status"`     // members.status
}

// MemberCreate is the body accepted by POST /members.
type MemberCreate struct {
	GroupID uuid.UUID `json:"group_id" validate:"required"`
	Name    string    `json:"name" validate:"required"`
	City    *string   `json:"city"`
	Phone   *string   `json:"phone"`
}

func (in *MemberCreate) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
}

// MemberUpdate is the body accepted by PATCH /members/{id}. Only non-nil
// fields are written.
type MemberUpdate struct {
	Name   *string       `json:"name" validate:"omitempty,min=1"`
	City   *string       `json:"city"`
	Phone  *string       `json:"phone"`
	Status *MemberStatus `json:"status" validate:"omitempty,oneof=active pending inactive"`
}

func (in *MemberUpdate) Normalize() {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
	}
}

// IsEmpty reports whether the update carries no fields at all.
func (in MemberUpdate) IsEmpty() bool {
	return in.Name == nil && in.City == nil && in.Phone == nil && in.Status == nil
}
