// Package sqlstore implements the persistence gateway on a relational
// database through sqlx. MySQL and PostgreSQL are supported; statements
// are written with '?' placeholders and rebound for the active driver.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/festival-coordinator/internal/repository"
)

// Store is a repository.Gateway backed by a SQL connection pool.
type Store struct {
	db      *sqlx.DB
	dialect dialect
	now     func() time.Time
}

// New wraps an open pool. The dialect follows the pool's driver name.
func New(db *sqlx.DB) (*Store, error) {
	d, err := dialectFor(db.DriverName())
	if err != nil {
		return nil, err
	}
	return &Store{db: db, dialect: d, now: time.Now}, nil
}

// WithSession runs work inside one read-committed transaction.
func (s *Store) WithSession(ctx context.Context, work func(ctx context.Context, sess repository.Session) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("could not begin session: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("could not commit session: %w", cerr)
		}
	}()
	return work(ctx, &session{tx: tx, dialect: s.dialect, now: s.now})
}

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close() error { return s.db.Close() }

type session struct {
	tx      *sqlx.Tx
	dialect dialect
	now     func() time.Time
}

func (s *session) Groups() repository.GroupRepository       { return groupRepo{s} }
func (s *session) Members() repository.MemberRepository     { return memberRepo{s} }
func (s *session) Calls() repository.CallRepository         { return callRepo{s} }
func (s *session) Festivals() repository.FestivalRepository { return festivalRepo{s} }
func (s *session) Artists() repository.ArtistRepository     { return artistRepo{s} }
func (s *session) Catalog() repository.CatalogRepository    { return catalogRepo{s} }
func (s *session) Reviews() repository.ReviewRepository     { return reviewRepo{s} }
