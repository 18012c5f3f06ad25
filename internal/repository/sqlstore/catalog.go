package sqlstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/iliyamo/festival-coordinator/internal/model"
	"github.com/iliyamo/festival-coordinator/internal/query"
	"github.com/iliyamo/festival-coordinator/internal/repository"
)

const catalogColumns = "id, name, location, dates_start, dates_end, ticket_price, on_sale_date, latitude, longitude"

type catalogRepo struct{ s *session }

func (r catalogRepo) Create(ctx context.Context, in model.CatalogEntryCreate) (*model.CatalogEntry, error) {
	id := uuid.New()
	if err := r.s.insert(ctx, "festival_catalog", repository.CatalogFields(id, in)); err != nil {
		return nil, err
	}
	var e model.CatalogEntry
	if err := r.s.get(ctx, &e, "festival_catalog", catalogColumns, id, repository.ErrCatalogNotFound); err != nil {
		return nil, err
	}
	return &e, nil
}

// List applies the name search and, when f.Near is set, orders by
// great-circle distance after dropping rows without coordinates.
func (r catalogRepo) List(ctx context.Context, f query.CatalogFilter) ([]model.CatalogEntry, error) {
	var b query.Builder
	if term := f.NameTerm(); term != "" {
		b.Contains("name", term)
	}
	if f.Near != nil {
		b.NotNull("latitude", "longitude")
		expr, args := query.NearestFirstSQL(*f.Near)
		b.OrderBy(expr, args...)
	} else {
		b.OrderBy(query.SQL(query.CatalogOrder))
	}
	out := []model.CatalogEntry{}
	if err := r.s.selectAll(ctx, &out, &b, "festival_catalog", catalogColumns); err != nil {
		return nil, err
	}
	return out, nil
}
