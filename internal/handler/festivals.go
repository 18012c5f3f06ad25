package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/festival-coordinator/internal/model"
	"github.com/iliyamo/festival-coordinator/internal/query"
	"github.com/iliyamo/festival-coordinator/internal/repository"
)

// ListFestivals handles GET /festivals ordered by start date, undated last.
func (h *Handler) ListFestivals(c echo.Context) error {
	groupID, err := queryID(c, "group_id")
	if err != nil {
		return respondError(c, err)
	}
	var out []model.Festival
	err = h.session(c, func(ctx context.Context, s repository.Session) error {
		out, err = s.Festivals().List(ctx, query.FestivalFilter{GroupID: groupID})
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, nonNil(out))
}

func (h *Handler) GetFestival(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	var f *model.Festival
	err = h.session(c, func(ctx context.Context, s repository.Session) error {
		f, err = s.Festivals().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) CreateFestival(c echo.Context) error {
	var in model.FestivalCreate
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	var f *model.Festival
	err := h.session(c, func(ctx context.Context, s repository.Session) error {
		var err error
		f, err = s.Festivals().Create(ctx, in)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, f)
}
