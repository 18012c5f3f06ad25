package sqlstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/iliyamo/festival-coordinator/internal/model"
	"github.com/iliyamo/festival-coordinator/internal/query"
	"github.com/iliyamo/festival-coordinator/internal/repository"
)

const memberColumns = "id, group_id, name, city, phone, status"

type memberRepo struct{ s *session }

func (r memberRepo) Create(ctx context.Context, in model.MemberCreate) (*model.Member, error) {
	id := uuid.New()
	if err := r.s.insert(ctx, "members", repository.MemberFields(id, in)); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r memberRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Member, error) {
	var m model.Member
	if err := r.s.get(ctx, &m, "members", memberColumns, id, repository.ErrMemberNotFound); err != nil {
		return nil, err
	}
	return &m, nil
}

// List orders by name in SQL and then by status rank in Go.
func (r memberRepo) List(ctx context.Context, f query.MemberFilter) ([]model.Member, error) {
	var b query.Builder
	if f.GroupID != nil {
		b.Eq("group_id", *f.GroupID)
	}
	if f.Phone != nil {
		b.Eq("phone", *f.Phone)
	}
	b.OrderBy(query.SQL(query.MemberOrder))
	out := []model.Member{}
	if err := r.s.selectAll(ctx, &out, &b, "members", memberColumns); err != nil {
		return nil, err
	}
	query.SortMembers(out)
	return out, nil
}

func (r memberRepo) Update(ctx context.Context, id uuid.UUID, in model.MemberUpdate) (*model.Member, error) {
	if err := repository.CheckUpdate(in); err != nil {
		return nil, err
	}
	// MySQL reports zero affected rows when nothing changed, so existence
	// is checked up front instead.
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if _, err := r.s.update(ctx, "members", id, repository.MemberUpdateFields(in)); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r memberRepo) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := r.s.delete(ctx, "members", "id", id)
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrMemberNotFound
	}
	return nil
}
