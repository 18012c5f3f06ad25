package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/festival-coordinator/internal/model"
	"github.com/iliyamo/festival-coordinator/internal/query"
	"github.com/iliyamo/festival-coordinator/internal/repository"
)

// ListMembers handles GET /members. group_id and phone narrow the list;
// phone is how callers are identified.
func (h *Handler) ListMembers(c echo.Context) error {
	groupID, err := queryID(c, "group_id")
	if err != nil {
		return respondError(c, err)
	}
	f := query.MemberFilter{GroupID: groupID, Phone: queryString(c, "phone")}
	var out []model.Member
	err = h.session(c, func(ctx context.Context, s repository.Session) error {
		out, err = s.Members().List(ctx, f)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, nonNil(out))
}

func (h *Handler) GetMember(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	var m *model.Member
	err = h.session(c, func(ctx context.Context, s repository.Session) error {
		m, err = s.Members().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) CreateMember(c echo.Context) error {
	var in model.MemberCreate
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	var m *model.Member
	err := h.session(c, func(ctx context.Context, s repository.Session) error {
		var err error
		m, err = s.Members().Create(ctx, in)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

// UpdateMember handles PATCH /members/:id. An empty body is rejected with
// 400 before storage is touched.
func (h *Handler) UpdateMember(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	var in model.MemberUpdate
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	if err := repository.CheckUpdate(in); err != nil {
		return respondError(c, err)
	}
	var m *model.Member
	err = h.session(c, func(ctx context.Context, s repository.Session) error {
		m, err = s.Members().Update(ctx, id, in)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) DeleteMember(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	err = h.session(c, func(ctx context.Context, s repository.Session) error {
		return s.Members().Delete(ctx, id)
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
