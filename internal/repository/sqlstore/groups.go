package sqlstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/iliyamo/festival-coordinator/internal/model"
	"github.com/iliyamo/festival-coordinator/internal/query"
	"github.com/iliyamo/festival-coordinator/internal/repository"
)

const groupColumns = "id, name, description, created_at"

type groupRepo struct{ s *session }

func (r groupRepo) Create(ctx context.Context, in model.GroupCreate) (*model.Group, error) {
	id := uuid.New()
	if err := r.s.insert(ctx, "groups", repository.GroupFields(id, in)); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r groupRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Group, error) {
	var g model.Group
	if err := r.s.get(ctx, &g, "groups", groupColumns, id, repository.ErrGroupNotFound); err != nil {
		return nil, err
	}
	return &g, nil
}

func (r groupRepo) List(ctx context.Context, f query.GroupFilter) ([]model.Group, error) {
	var b query.Builder
	if f.Name != nil {
		b.Eq("name", *f.Name)
	}
	b.OrderBy(query.SQL(query.GroupOrder))
	out := []model.Group{}
	if err := r.s.selectAll(ctx, &out, &b, "groups", groupColumns); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the group. Members, calls and festivals go with it
// through ON DELETE CASCADE.
func (r groupRepo) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := r.s.delete(ctx, "groups", "id", id)
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrGroupNotFound
	}
	return nil
}
