// Package memstore is an in-process repository.Gateway. Sessions are
// serialised by a mutex and rolled back by restoring a snapshot, which
// gives the same commit-or-nothing behaviour as the SQL store. Foreign
// keys and cascades mirror the relational schema.
package memstore

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/iliyamo/festival-coordinator/internal/model"
	"github.com/iliyamo/festival-coordinator/internal/repository"
)

type tables struct {
	groups    []model.Group
	members   []model.Member
	calls     []model.Call
	festivals []model.Festival
	artists   []model.Artist
	catalog   []model.CatalogEntry
	reviews   []model.Review
}

func (t *tables) snapshot() tables {
	return tables{
		groups:    slices.Clone(t.groups),
		members:   slices.Clone(t.members),
		calls:     slices.Clone(t.calls),
		festivals: slices.Clone(t.festivals),
		artists:   slices.Clone(t.artists),
		catalog:   slices.Clone(t.catalog),
		reviews:   slices.Clone(t.reviews),
	}
}

// Store keeps every table in memory.
type Store struct {
	mu   sync.Mutex
	data tables
	now  func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the clock used for server-assigned timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithSession runs work with exclusive access to the tables. Any error or
// panic restores the state captured when the session began.
func (s *Store) WithSession(ctx context.Context, work func(ctx context.Context, sess repository.Session) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.data.snapshot()
	defer func() {
		if p := recover(); p != nil {
			s.data = before
			panic(p)
		}
		if err != nil {
			s.data = before
		}
	}()
	return work(ctx, &session{st: s})
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Close() error { return nil }

type session struct{ st *Store }

func (s *session) Groups() repository.GroupRepository       { return groupRepo{s.st} }
func (s *session) Members() repository.MemberRepository     { return memberRepo{s.st} }
func (s *session) Calls() repository.CallRepository         { return callRepo{s.st} }
func (s *session) Festivals() repository.FestivalRepository { return festivalRepo{s.st} }
func (s *session) Artists() repository.ArtistRepository     { return artistRepo{s.st} }
func (s *session) Catalog() repository.CatalogRepository    { return catalogRepo{s.st} }
func (s *session) Reviews() repository.ReviewRepository     { return reviewRepo{s.st} }

func (s *Store) timestamp() time.Time { return s.now().UTC() }

// find returns the index of the first row whose id matches, or -1.
func find[T any](rows []T, match func(T) bool) int {
	return slices.IndexFunc(rows, match)
}

func filter[T any](rows []T, keep func(T) bool) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
