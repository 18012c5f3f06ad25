package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/festival-coordinator/internal/model"
	"github.com/iliyamo/festival-coordinator/internal/query"
	"github.com/iliyamo/festival-coordinator/internal/repository"
)

// ListCatalog handles GET /festival-catalog ordered by start date.
func (h *Handler) ListCatalog(c echo.Context) error {
	return h.listCatalog(c, query.CatalogFilter{})
}

// SearchCatalog handles GET /festival-catalog/search. name is a
// case-insensitive substring. With both latitude and longitude, entries
// without coordinates are dropped and the rest come back nearest first;
// with only one of them the coordinate is ignored.
func (h *Handler) SearchCatalog(c echo.Context) error {
	f := query.CatalogFilter{Name: c.QueryParam("name")}
	lat, err := queryFloat(c, "latitude")
	if err != nil {
		return respondError(c, err)
	}
	lon, err := queryFloat(c, "longitude")
	if err != nil {
		return respondError(c, err)
	}
	if lat != nil && (*lat < -90 || *lat > 90) {
		return respondError(c, &invalidParamError{name: "latitude", want: "value in [-90, 90]"})
	}
	if lon != nil && (*lon < -180 || *lon > 180) {
		return respondError(c, &invalidParamError{name: "longitude", want: "value in [-180, 180]"})
	}
	if lat != nil && lon != nil {
		f.Near = &query.GeoPoint{Lat: *lat, Lon: *lon}
	}
	return h.listCatalog(c, f)
}

func (h *Handler) listCatalog(c echo.Context, f query.CatalogFilter) error {
	var out []model.CatalogEntry
	err := h.session(c, func(ctx context.Context, s repository.Session) error {
		var err error
		out, err = s.Catalog().List(ctx, f)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, nonNil(out))
}

func (h *Handler) CreateCatalogEntry(c echo.Context) error {
	var in model.CatalogEntryCreate
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	var e *model.CatalogEntry
	err := h.session(c, func(ctx context.Context, s repository.Session) error {
		var err error
		e, err = s.Catalog().Create(ctx, in)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, e)
}
