package dataapi

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/festival-coordinator/internal/query"
	"github.com/iliyamo/festival-coordinator/internal/repository"
)

func eq(v string) string { return "eq." + v }

func inList(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return "in.(" + strings.Join(parts, ",") + ")"
}

// ilike builds a case-insensitive substring pattern. PostgREST reads every
// '*' as '%', so a literal '*' in the term is sent as the single-character
// wildcard '_' and callers must re-check matches with the exact term.
func ilike(term string) string {
	return "ilike.*" + strings.ReplaceAll(query.EscapeLike(term), "*", "_") + "*"
}

// orderParam renders orderings in PostgREST syntax, e.g. dates_start.asc.nullslast.
func orderParam(orders []query.Order) string {
	parts := make([]string, len(orders))
	for i, o := range orders {
		p := o.Column + ".asc"
		if o.Desc {
			p = o.Column + ".desc"
		}
		if o.NullsLast {
			p += ".nullslast"
		}
		parts[i] = p
	}
	return strings.Join(parts, ",")
}

func byID(id uuid.UUID) url.Values { return url.Values{"id": {eq(id.String())}} }

func getOne[T any](ctx context.Context, c *Client, table string, id uuid.UUID, notFound error) (*T, error) {
	var rows []T
	if err := c.do(ctx, http.MethodGet, table, byID(id), nil, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, notFound
	}
	return &rows[0], nil
}

func list[T any](ctx context.Context, c *Client, table string, params url.Values) ([]T, error) {
	rows := []T{}
	if err := c.do(ctx, http.MethodGet, table, params, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func insertOne[T any](ctx context.Context, c *Client, table string, f repository.Fields) (*T, error) {
	var rows []T
	if err := c.do(ctx, http.MethodPost, table, nil, f.Map(), &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, repository.InvalidInput("data api returned no row for insert into " + table)
	}
	return &rows[0], nil
}

// patch updates the rows matched by params and returns them.
func patch[T any](ctx context.Context, c *Client, table string, params url.Values, f repository.Fields) ([]T, error) {
	var rows []T
	if err := c.do(ctx, http.MethodPatch, table, params, f.Map(), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// remove deletes the rows matched by params and returns them.
func remove[T any](ctx context.Context, c *Client, table string, params url.Values) ([]T, error) {
	var rows []T
	if err := c.do(ctx, http.MethodDelete, table, params, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
