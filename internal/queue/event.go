// Package queue defines the call lifecycle events exchanged over RabbitMQ,
// the publisher used by the assistant operations and the consumer that
// writes them to the call log.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// EventType names a call lifecycle transition.
type EventType string

const (
	CallStarted EventType = "call.started"
	CallEnded   EventType = "call.ended"
)

// CallEventsQueue is the durable queue carrying every CallEvent.
const CallEventsQueue = "call.events"

// CallEvent is published when a call starts and when it ends. It holds
// enough for downstream consumers to log or notify without querying the
// primary database.
type CallEvent struct {
	Type          EventType  `json:"type"`
	CallID        uuid.UUID  `json:"call_id"`
	GroupID       *uuid.UUID `json:"group_id"`
	GroupName     string     `json:"group_name,omitempty"`
	FromNumber    string     `json:"from_number,omitempty"`
	StartedAt     time.Time  `json:"started_at"`
	EndedAt       *time.Time `json:"ended_at,omitempty"`
	Summary       string     `json:"summary,omitempty"`
	CorrelationID string     `json:"correlation_id,omitempty"`
}
