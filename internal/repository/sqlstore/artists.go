package sqlstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/festival-coordinator/internal/model"
	"github.com/iliyamo/festival-coordinator/internal/query"
	"github.com/iliyamo/festival-coordinator/internal/repository"
)

const artistColumns = "id, festival_id, name, priority"

type artistRepo struct{ s *session }

func (r artistRepo) Create(ctx context.Context, in model.ArtistCreate) (*model.Artist, error) {
	id := uuid.New()
	if err := r.s.insert(ctx, "artists", repository.ArtistFields(id, in)); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r artistRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Artist, error) {
	var a model.Artist
	if err := r.s.get(ctx, &a, "artists", artistColumns, id, repository.ErrArtistNotFound); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r artistRepo) List(ctx context.Context, f query.ArtistFilter) ([]model.Artist, error) {
	out := []model.Artist{}
	var b query.Builder
	if f.FestivalID != nil {
		b.Eq("festival_id", *f.FestivalID)
	}
	if f.FestivalIDs != nil {
		if len(f.FestivalIDs) == 0 {
			return out, nil
		}
		ids := make([]string, len(f.FestivalIDs))
		for i, id := range f.FestivalIDs {
			ids[i] = id.String()
		}
		// sqlx.In expands the slice into one placeholder per id.
		cond, args, err := sqlx.In("festival_id IN (?)", ids)
		if err != nil {
			return nil, fmt.Errorf("could not expand festival ids: %w", err)
		}
		b.Where(cond, args...)
	}
	b.OrderBy(query.SQL(query.ArtistOrder))
	if err := r.s.selectAll(ctx, &out, &b, "artists", artistColumns); err != nil {
		return nil, err
	}
	return out, nil
}

func (r artistRepo) DeleteByFestival(ctx context.Context, festivalID uuid.UUID) (int64, error) {
	return r.s.delete(ctx, "artists", "festival_id", festivalID)
}
