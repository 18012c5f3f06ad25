package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/festival-coordinator/internal/model"
	"github.com/iliyamo/festival-coordinator/internal/query"
	"github.com/iliyamo/festival-coordinator/internal/repository"
)

func (h *Handler) ListArtists(c echo.Context) error {
	festivalID, err := queryID(c, "festival_id")
	if err != nil {
		return respondError(c, err)
	}
	var out []model.Artist
	err = h.session(c, func(ctx context.Context, s repository.Session) error {
		out, err = s.Artists().List(ctx, query.ArtistFilter{FestivalID: festivalID})
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, nonNil(out))
}

func (h *Handler) GetArtist(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	var a *model.Artist
	err = h.session(c, func(ctx context.Context, s repository.Session) error {
		a, err = s.Artists().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) CreateArtist(c echo.Context) error {
	var in model.ArtistCreate
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	var a *model.Artist
	err := h.session(c, func(ctx context.Context, s repository.Session) error {
		var err error
		a, err = s.Artists().Create(ctx, in)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, a)
}
