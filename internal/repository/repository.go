package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/iliyamo/festival-coordinator/internal/model"
	"github.com/iliyamo/festival-coordinator/internal/query"
)

// Gateway opens one unit of work per request. WithSession commits when work
// returns nil, rolls back when it returns an error or panics, and always
// releases the session. Backends that cannot offer transactions document
// how they deviate.
type Gateway interface {
	WithSession(ctx context.Context, work func(ctx context.Context, s Session) error) error
	Ping(ctx context.Context) error
	Close() error
}

// Session is the set of typed repositories bound to one unit of work.
type Session interface {
	Groups() GroupRepository
	Members() MemberRepository
	Calls() CallRepository
	Festivals() FestivalRepository
	Artists() ArtistRepository
	Catalog() CatalogRepository
	Reviews() ReviewRepository
}

// GroupRepository persists groups. Delete cascades to members, calls and
// festivals.
type GroupRepository interface {
	Create(ctx context.Context, in model.GroupCreate) (*model.Group, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Group, error)
	List(ctx context.Context, f query.GroupFilter) ([]model.Group, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// MemberRepository persists members. List applies query.SortMembers.
type MemberRepository interface {
	Create(ctx context.Context, in model.MemberCreate) (*model.Member, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Member, error)
	List(ctx context.Context, f query.MemberFilter) ([]model.Member, error)
	Update(ctx context.Context, id uuid.UUID, in model.MemberUpdate) (*model.Member, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CallRepository persists calls. End sets ended_at, summary and
// optionally the transcript, once.
type CallRepository interface {
	Create(ctx context.Context, in model.CallCreate) (*model.Call, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Call, error)
	List(ctx context.Context, f query.CallFilter) ([]model.Call, error)
	End(ctx context.Context, id uuid.UUID, in model.CallEnd) (*model.Call, error)
}

type FestivalRepository interface {
	Create(ctx context.Context, in model.FestivalCreate) (*model.Festival, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Festival, error)
	List(ctx context.Context, f query.FestivalFilter) ([]model.Festival, error)
	Update(ctx context.Context, id uuid.UUID, in model.FestivalUpdate) (*model.Festival, error)
}

type ArtistRepository interface {
	Create(ctx context.Context, in model.ArtistCreate) (*model.Artist, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Artist, error)
	List(ctx context.Context, f query.ArtistFilter) ([]model.Artist, error)
	// DeleteByFestival removes every artist of a festival and reports how
	// many rows went away.
	DeleteByFestival(ctx context.Context, festivalID uuid.UUID) (int64, error)
}

type CatalogRepository interface {
	Create(ctx context.Context, in model.CatalogEntryCreate) (*model.CatalogEntry, error)
	List(ctx context.Context, f query.CatalogFilter) ([]model.CatalogEntry, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, in model.ReviewCreate) (*model.Review, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Review, error)
	List(ctx context.Context, f query.ReviewFilter) ([]model.Review, error)
}

// Updatable is implemented by update shapes.
type Updatable interface {
	IsEmpty() bool
}

// CheckUpdate rejects an empty update before any storage call is made.
func CheckUpdate(in Updatable) error {
	if in.IsEmpty() {
		return ErrNoFieldsToUpdate
	}
	return nil
}
