package sqlstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/iliyamo/festival-coordinator/internal/model"
	"github.com/iliyamo/festival-coordinator/internal/query"
	"github.com/iliyamo/festival-coordinator/internal/repository"
)

const callColumns = "id, group_id, started_at, ended_at, summary, transcript, from_number"

type callRepo struct{ s *session }

func (r callRepo) Create(ctx context.Context, in model.CallCreate) (*model.Call, error) {
	id := uuid.New()
	if err := r.s.insert(ctx, "calls", repository.CallFields(id, in)); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r callRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Call, error) {
	var c model.Call
	if err := r.s.get(ctx, &c, "calls", callColumns, id, repository.ErrCallNotFound); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r callRepo) List(ctx context.Context, f query.CallFilter) ([]model.Call, error) {
	var b query.Builder
	if f.GroupID != nil {
		b.Eq("group_id", *f.GroupID)
	}
	order := query.SQL(query.CallOrder)
	if f.Limit > 0 {
		b.OrderBy(order+" LIMIT ?", f.Limit)
	} else {
		b.OrderBy(order)
	}
	out := []model.Call{}
	if err := r.s.selectAll(ctx, &out, &b, "calls", callColumns); err != nil {
		return nil, err
	}
	return out, nil
}

// End terminates a call that has not ended yet. The guard on ended_at
// makes a second End fail with ErrCallAlreadyEnded.
func (r callRepo) End(ctx context.Context, id uuid.UUID, in model.CallEnd) (*model.Call, error) {
	n, err := r.s.update(ctx, "calls", id, repository.CallEndFields(in, r.s.now()), "ended_at IS NULL")
	if err != nil {
		return nil, err
	}
	if n == 0 {
		c, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if c.Ended() {
			return nil, repository.ErrCallAlreadyEnded
		}
		return nil, fmt.Errorf("call %s was not updated: %w", id, repository.ErrConflict)
	}
	return r.GetByID(ctx, id)
}
