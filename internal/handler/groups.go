package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/festival-coordinator/internal/model"
	"github.com/iliyamo/festival-coordinator/internal/query"
	"github.com/iliyamo/festival-coordinator/internal/repository"
)

// ListGroups handles GET /groups, newest first.
func (h *Handler) ListGroups(c echo.Context) error {
	var out []model.Group
	err := h.session(c, func(ctx context.Context, s repository.Session) error {
		var err error
		out, err = s.Groups().List(ctx, query.GroupFilter{})
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, nonNil(out))
}

func (h *Handler) GetGroup(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	var g *model.Group
	err = h.session(c, func(ctx context.Context, s repository.Session) error {
		g, err = s.Groups().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, g)
}

func (h *Handler) CreateGroup(c echo.Context) error {
	var in model.GroupCreate
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	var g *model.Group
	err := h.session(c, func(ctx context.Context, s repository.Session) error {
		var err error
		g, err = s.Groups().Create(ctx, in)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, g)
}

// ListGroupMembers handles GET /groups/:id/members. Members come back by
// status (active, pending, inactive) and then by name.
func (h *Handler) ListGroupMembers(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	var out []model.Member
	err = h.session(c, func(ctx context.Context, s repository.Session) error {
		if _, err := s.Groups().GetByID(ctx, id); err != nil {
			return err
		}
		out, err = s.Members().List(ctx, query.MemberFilter{GroupID: &id})
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, nonNil(out))
}

// ListGroupFestivals handles GET /groups/:id/festivals. Each festival
// carries its own artists.
func (h *Handler) ListGroupFestivals(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	var out []model.FestivalWithArtists
	err = h.session(c, func(ctx context.Context, s repository.Session) error {
		if _, err := s.Groups().GetByID(ctx, id); err != nil {
			return err
		}
		out, err = repository.FestivalsWithArtists(ctx, s, query.FestivalFilter{GroupID: &id})
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, nonNil(out))
}

// nonNil keeps empty lists encoded as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
