package sqlstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/iliyamo/festival-coordinator/internal/model"
	"github.com/iliyamo/festival-coordinator/internal/query"
	"github.com/iliyamo/festival-coordinator/internal/repository"
)

const reviewColumns = "id, user_id, festival_id, stars, text, created_at"

type reviewRepo struct{ s *session }

func (r reviewRepo) Create(ctx context.Context, in model.ReviewCreate) (*model.Review, error) {
	id := uuid.New()
	if err := r.s.insert(ctx, "reviews", repository.ReviewFields(id, in)); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r reviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	var rv model.Review
	if err := r.s.get(ctx, &rv, "reviews", reviewColumns, id, repository.ErrReviewNotFound); err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r reviewRepo) List(ctx context.Context, f query.ReviewFilter) ([]model.Review, error) {
	var b query.Builder
	if f.FestivalID != nil {
		b.Eq("festival_id", *f.FestivalID)
	}
	if f.UserID != nil {
		b.Eq("user_id", *f.UserID)
	}
	b.OrderBy(query.SQL(query.ReviewOrder))
	out := []model.Review{}
	if err := r.s.selectAll(ctx, &out, &b, "reviews", reviewColumns); err != nil {
		return nil, err
	}
	return out, nil
}
