package handler // handler holds the HTTP handlers of the festival API

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/festival-coordinator/internal/logging"
	"github.com/iliyamo/festival-coordinator/internal/queue"
	"github.com/iliyamo/festival-coordinator/internal/repository"
	"github.com/iliyamo/festival-coordinator/internal/validation"
)

// Handler serves every route of the API. Each request runs in one gateway
// session.
type Handler struct {
	gw     repository.Gateway
	events queue.Publisher
}

// New panics if gw is nil. A nil publisher drops call events.
func New(gw repository.Gateway, events queue.Publisher) *Handler {
	if gw == nil {
		panic("nil gateway passed to handler.New")
	}
	if events == nil {
		events = queue.NopPublisher{}
	}
	return &Handler{gw: gw, events: events}
}

func (h *Handler) session(c echo.Context, work func(ctx context.Context, s repository.Session) error) error {
	return h.gw.WithSession(c.Request().Context(), work)
}

// errBadBody is returned when the body cannot be decoded into the input
// shape.
var errBadBody = errors.New("invalid request body")

// invalidParamError reports a path or query parameter that failed to parse.
type invalidParamError struct {
	name string
	want string
}

func (e *invalidParamError) Error() string {
	return "invalid " + e.name + ": expected " + e.want
}

type normalizer interface{ Normalize() }

// bind decodes the body, normalizes it when the shape knows how and runs
// struct validation.
func bind(c echo.Context, dst any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		return errBadBody
	}
	if n, ok := dst.(normalizer); ok {
		n.Normalize()
	}
	return c.Validate(dst)
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, &invalidParamError{name: "id", want: "UUID"}
	}
	return id, nil
}

// queryID parses an optional UUID query parameter; absent or blank is nil.
func queryID(c echo.Context, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, &invalidParamError{name: name, want: "UUID"}
	}
	return &id, nil
}

func queryFloat(c echo.Context, name string) (*float64, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &invalidParamError{name: name, want: "number"}
	}
	return &v, nil
}

func queryInt(c echo.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, &invalidParamError{name: name, want: "non-negative integer"}
	}
	return v, nil
}

func queryString(c echo.Context, name string) *string {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil
	}
	return &raw
}

// respondError maps gateway and validation errors to a status and a
// {"error": ...} body.
func respondError(c echo.Context, err error) error {
	var verr *validation.Error
	var perr *invalidParamError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": verr.Error(), "fields": verr.Fields})
	case errors.As(err, &perr):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": perr.Error()})
	case errors.Is(err, errBadBody):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrNoFieldsToUpdate):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fields to update"})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrConstraint), errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrInvalidInput):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	}
	logging.FromContext(c.Request().Context()).WithError(err).Error("request failed")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
