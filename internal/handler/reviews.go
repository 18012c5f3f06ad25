package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/festival-coordinator/internal/model"
	"github.com/iliyamo/festival-coordinator/internal/query"
	"github.com/iliyamo/festival-coordinator/internal/repository"
)

// ListReviews handles GET /reviews?festival_id&user_id, newest first.
func (h *Handler) ListReviews(c echo.Context) error {
	festivalID, err := queryID(c, "festival_id")
	if err != nil {
		return respondError(c, err)
	}
	userID, err := queryID(c, "user_id")
	if err != nil {
		return respondError(c, err)
	}
	var out []model.Review
	err = h.session(c, func(ctx context.Context, s repository.Session) error {
		out, err = s.Reviews().List(ctx, query.ReviewFilter{FestivalID: festivalID, UserID: userID})
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, nonNil(out))
}

func (h *Handler) GetReview(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	var r *model.Review
	err = h.session(c, func(ctx context.Context, s repository.Session) error {
		r, err = s.Reviews().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) CreateReview(c echo.Context) error {
	var in model.ReviewCreate
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	var r *model.Review
	err := h.session(c, func(ctx context.Context, s repository.Session) error {
		var err error
		r, err = s.Reviews().Create(ctx, in)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, r)
}
