package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/festival-coordinator/internal/query"
	"github.com/iliyamo/festival-coordinator/internal/repository"
)

// insert writes one row. Defaults assigned by the database are read back
// by the caller with get.
func (s *session) insert(ctx context.Context, table string, f repository.Fields) error {
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.dialect.table(table), strings.Join(f.Columns(), ", "), placeholders(len(f)))
	_, err := s.tx.ExecContext(ctx, s.tx.Rebind(q), f.Values()...)
	return mapError(err)
}

// get loads a row by id into dest, returning notFound when it is absent.
func (s *session) get(ctx context.Context, dest any, table, columns string, id uuid.UUID, notFound error) error {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", columns, s.dialect.table(table))
	err := s.tx.GetContext(ctx, dest, s.tx.Rebind(q), id)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return mapError(err)
}

// update applies f to the row with the given id plus any extra conditions
// and reports the number of rows changed.
func (s *session) update(ctx context.Context, table string, id uuid.UUID, f repository.Fields, extra ...string) (int64, error) {
	sets := make([]string, len(f))
	for i, col := range f.Columns() {
		sets[i] = col + " = ?"
	}
	q := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", s.dialect.table(table), strings.Join(sets, ", "))
	for _, cond := range extra {
		q += " AND " + cond
	}
	args := append(f.Values(), id)
	res, err := s.tx.ExecContext(ctx, s.tx.Rebind(q), args...)
	if err != nil {
		return 0, mapError(err)
	}
	return res.RowsAffected()
}

func (s *session) delete(ctx context.Context, table, column string, v any) (int64, error) {
	q := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", s.dialect.table(table), column)
	res, err := s.tx.ExecContext(ctx, s.tx.Rebind(q), v)
	if err != nil {
		return 0, mapError(err)
	}
	return res.RowsAffected()
}

// selectAll runs the builder's statement into dest, a pointer to a slice.
func (s *session) selectAll(ctx context.Context, dest any, b *query.Builder, table, columns string) error {
	q, args := b.Select(columns, s.dialect.table(table))
	return mapError(s.tx.SelectContext(ctx, dest, s.tx.Rebind(q), args...))
}
