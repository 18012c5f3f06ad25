package sqlstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/iliyamo/festival-coordinator/internal/model"
	"github.com/iliyamo/festival-coordinator/internal/query"
	"github.com/iliyamo/festival-coordinator/internal/repository"
)

const festivalColumns = "id, group_id, name, location, dates_start, dates_end, ticket_price, on_sale_date, status, latitude, longitude"

type festivalRepo struct{ s *session }

func (r festivalRepo) Create(ctx context.Context, in model.FestivalCreate) (*model.Festival, error) {
	id := uuid.New()
	if err := r.s.insert(ctx, "festivals", repository.FestivalFields(id, in)); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r festivalRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Festival, error) {
	var f model.Festival
	if err := r.s.get(ctx, &f, "festivals", festivalColumns, id, repository.ErrFestivalNotFound); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r festivalRepo) List(ctx context.Context, f query.FestivalFilter) ([]model.Festival, error) {
	var b query.Builder
	if f.GroupID != nil {
		b.Eq("group_id", *f.GroupID)
	}
	if f.Name != nil {
		b.Eq("name", *f.Name)
	}
	b.OrderBy(query.SQL(query.FestivalOrder))
	out := []model.Festival{}
	if err := r.s.selectAll(ctx, &out, &b, "festivals", festivalColumns); err != nil {
		return nil, err
	}
	return out, nil
}

func (r festivalRepo) Update(ctx context.Context, id uuid.UUID, in model.FestivalUpdate) (*model.Festival, error) {
	if err := repository.CheckUpdate(in); err != nil {
		return nil, err
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if _, err := r.s.update(ctx, "festivals", id, repository.FestivalUpdateFields(in)); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}
