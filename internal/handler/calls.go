package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/festival-coordinator/internal/logging"
	"github.com/iliyamo/festival-coordinator/internal/model"
	"github.com/iliyamo/festival-coordinator/internal/query"
	"github.com/iliyamo/festival-coordinator/internal/queue"
	"github.com/iliyamo/festival-coordinator/internal/repository"
)

// ListCalls handles GET /calls, most recent first. group_id and limit are
// optional.
func (h *Handler) ListCalls(c echo.Context) error {
	groupID, err := queryID(c, "group_id")
	if err != nil {
		return respondError(c, err)
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return respondError(c, err)
	}
	var out []model.Call
	err = h.session(c, func(ctx context.Context, s repository.Session) error {
		out, err = s.Calls().List(ctx, query.CallFilter{GroupID: groupID, Limit: limit})
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, nonNil(out))
}

func (h *Handler) GetCall(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	var call *model.Call
	err = h.session(c, func(ctx context.Context, s repository.Session) error {
		call, err = s.Calls().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, call)
}

// CreateCall handles POST /calls and announces the call on the event queue.
func (h *Handler) CreateCall(c echo.Context) error {
	var in model.CallCreate
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	var call *model.Call
	err := h.session(c, func(ctx context.Context, s repository.Session) error {
		var err error
		call, err = s.Calls().Create(ctx, in)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}

	ctx := c.Request().Context()
	ev := queue.CallEvent{Type: queue.CallStarted, CallID: call.ID, GroupID: call.GroupID, StartedAt: call.StartedAt}
	if call.FromNumber != nil {
		ev.FromNumber = *call.FromNumber
	}
	if err := h.events.PublishCallEvent(ctx, ev); err != nil {
		logging.FromContext(ctx).WithError(err).Warn("call.started not published")
	}
	return c.JSON(http.StatusCreated, call)
}
