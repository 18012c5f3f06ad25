package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/festival-coordinator/internal/model"
	"github.com/iliyamo/festival-coordinator/internal/queue"
	"github.com/iliyamo/festival-coordinator/internal/repository"
	"github.com/iliyamo/festival-coordinator/internal/repository/memstore"
	"github.com/iliyamo/festival-coordinator/internal/router"
)

type server struct {
	t      *testing.T
	e      *echo.Echo
	store  *memstore.Store
	events *recorder
}

type recorder struct {
	mu     sync.Mutex
	events []queue.CallEvent
}

func (r *recorder) PublishCallEvent(_ context.Context, ev queue.CallEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func newServer(t *testing.T) *server {
	t.Helper()
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		start = start.Add(time.Second)
		return start
	}
	store := memstore.New(memstore.WithClock(clock))
	events := &recorder{}
	return &server{t: t, e: router.New(router.Deps{Gateway: store, Events: events}), store: store, events: events}
}

func (s *server) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(s.t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

// create posts body and decodes the 201 response.
func create[T any](s *server, path string, body any) T {
	s.t.Helper()
	rec := s.do(http.MethodPost, path, body)
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[T](s.t, rec)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]any](t, rec)["error"].(string)
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	rec := s.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGroups(t *testing.T) {
	s := newServer(t)

	first := create[model.Group](s, "/groups", map[string]any{"name": " Austin squad ", "description": "ACL regulars"})
	require.NotNil(t, first.Name)
	assert.Equal(t, "Austin squad", *first.Name)
	second := create[model.Group](s, "/groups", map[string]any{})
	assert.Nil(t, second.Name)

	rec := s.do(http.MethodGet, "/groups", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	groups := decode[[]model.Group](t, rec)
	require.Len(t, groups, 2)
	assert.Equal(t, second.ID, groups[0].ID, "newest first")

	rec = s.do(http.MethodGet, "/groups/"+first.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ACL regulars", *decode[model.Group](t, rec).Description)

	rec = s.do(http.MethodGet, "/groups/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "group not found", errorOf(t, rec))

	rec = s.do(http.MethodGet, "/groups/not-a-uuid", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(http.MethodGet, "/groups/"+uuid.NewString()+"/members", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEmptyListsAreArrays(t *testing.T) {
	s := newServer(t)
	for _, path := range []string{"/groups", "/members", "/calls", "/festivals", "/artists", "/festival-catalog", "/reviews"} {
		rec := s.do(http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.JSONEq(t, `[]`, rec.Body.String(), path)
	}
}

func TestGroupMembersOrderedByStatusThenName(t *testing.T) {
	s := newServer(t)
	g := create[model.Group](s, "/groups", map[string]any{"name": "crew"})

	ids := map[string]uuid.UUID{}
	for _, name := range []string{"Zoe", "Ben", "Amy", "Carl", "Dana"} {
		m := create[model.Member](s, "/members", map[string]any{"group_id": g.ID, "name": name})
		assert.Equal(t, model.MemberActive, m.Status)
		ids[name] = m.ID
	}
	for name, status := range map[string]string{"Amy": "inactive", "Ben": "pending", "Dana": "pending"} {
		rec := s.do(http.MethodPatch, "/members/"+ids[name].String(), map[string]any{"status": status})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := s.do(http.MethodGet, "/groups/"+g.ID.String()+"/members", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var names []string
	for _, m := range decode[[]model.Member](t, rec) {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"Carl", "Zoe", "Ben", "Dana", "Amy"}, names)
}

func TestMemberLifecycle(t *testing.T) {
	s := newServer(t)
	g := create[model.Group](s, "/groups", map[string]any{"name": "crew"})
	m := create[model.Member](s, "/members", map[string]any{"group_id": g.ID, "name": "Jake", "phone": "+15125550100"})
	path := "/members/" + m.ID.String()

	// empty updates are rejected and change nothing
	for _, body := range []any{nil, map[string]any{}} {
		rec := s.do(http.MethodPatch, path, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "no fields to update", errorOf(t, rec))
	}
	rec := s.do(http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, m, decode[model.Member](t, rec))

	rec = s.do(http.MethodPatch, path, map[string]any{"city": "Austin, TX"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[model.Member](t, rec)
	assert.Equal(t, "Austin, TX", *updated.City)
	assert.Equal(t, "Jake", updated.Name)

	rec = s.do(http.MethodPatch, path, map[string]any{"status": "banned"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(http.MethodPatch, "/members/"+uuid.NewString(), map[string]any{"city": "Austin"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// caller identification by phone
	rec = s.do(http.MethodGet, "/members?phone=%2B15125550100", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	found := decode[[]model.Member](t, rec)
	require.Len(t, found, 1)
	assert.Equal(t, m.ID, found[0].ID)

	rec = s.do(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, path, nil).Code)
}

func TestCreateValidation(t *testing.T) {
	s := newServer(t)
	g := create[model.Group](s, "/groups", map[string]any{"name": "crew"})

	cases := []struct {
		name string
		path string
		body any
		want int
	}{
		{"member without name", "/members", map[string]any{"group_id": g.ID}, http.StatusUnprocessableEntity},
		{"member blank name", "/members", map[string]any{"group_id": g.ID, "name": "   "}, http.StatusUnprocessableEntity},
		{"member without group", "/members", map[string]any{"name": "Jake"}, http.StatusUnprocessableEntity},
		{"member malformed group id", "/members", map[string]any{"group_id": "abc", "name": "Jake"}, http.StatusUnprocessableEntity},
		{"member unknown group", "/members", map[string]any{"group_id": uuid.New(), "name": "Jake"}, http.StatusConflict},
		{"festival bad status", "/festivals", map[string]any{"group_id": g.ID, "name": "EDC", "status": "maybe"}, http.StatusUnprocessableEntity},
		{"festival negative price", "/festivals", map[string]any{"group_id": g.ID, "name": "EDC", "ticket_price": -1}, http.StatusUnprocessableEntity},
		{"festival bad date", "/festivals", map[string]any{"group_id": g.ID, "name": "EDC", "dates_start": "15/05/2026"}, http.StatusUnprocessableEntity},
		{"festival latitude out of range", "/festivals", map[string]any{"group_id": g.ID, "name": "EDC", "latitude": 91}, http.StatusUnprocessableEntity},
		{"artist unknown festival", "/artists", map[string]any{"festival_id": uuid.New(), "name": "Fisher"}, http.StatusConflict},
		{"artist bad priority", "/artists", map[string]any{"festival_id": uuid.New(), "name": "Fisher", "priority": "maybe"}, http.StatusUnprocessableEntity},
		{"call transcript not a container", "/calls", map[string]any{"group_id": g.ID, "transcript": "hello"}, http.StatusUnprocessableEntity},
		{"catalog without name", "/festival-catalog", map[string]any{"location": "Indio, CA"}, http.StatusUnprocessableEntity},
		{"review without stars", "/reviews", map[string]any{"user_id": uuid.New(), "festival_id": uuid.New()}, http.StatusUnprocessableEntity},
		{"malformed json", "/groups", `{"name":`, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(http.MethodPost, tc.path, tc.body)
			assert.Equal(t, tc.want, rec.Code, rec.Body.String())
		})
	}
}

func TestFestivalRoundTrip(t *testing.T) {
	s := newServer(t)
	g := create[model.Group](s, "/groups", map[string]any{"name": "crew"})

	rec := s.do(http.MethodPost, "/festivals", `{"group_id":"`+g.ID.String()+`","name":"Coachella","dates_start":"2026-04-10","dates_end":"2026-04-12","ticket_price":549.00}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	assert.Equal(t, "considering", created["status"])

	rec = s.do(http.MethodGet, "/festivals/"+created["id"].(string), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[map[string]any](t, rec)
	assert.Equal(t, "Coachella", got["name"])
	assert.Equal(t, "2026-04-10", got["dates_start"])
	assert.Equal(t, "2026-04-12", got["dates_end"])
	assert.InDelta(t, 549.0, got["ticket_price"], 1e-9)
	assert.Equal(t, g.ID.String(), got["group_id"])
	assert.Nil(t, got["location"])
	assert.Equal(t, created, got)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/festivals/"+uuid.NewString(), nil).Code)
}

func TestGroupFestivalsNestArtists(t *testing.T) {
	s := newServer(t)
	g := create[model.Group](s, "/groups", map[string]any{"name": "crew"})
	other := create[model.Group](s, "/groups", map[string]any{"name": "others"})

	edc := create[model.Festival](s, "/festivals", map[string]any{"group_id": g.ID, "name": "EDC", "dates_start": "2026-05-15"})
	coachella := create[model.Festival](s, "/festivals", map[string]any{"group_id": g.ID, "name": "Coachella", "dates_start": "2026-04-10"})
	undated := create[model.Festival](s, "/festivals", map[string]any{"group_id": g.ID, "name": "Secret rave"})
	create[model.Festival](s, "/festivals", map[string]any{"group_id": other.ID, "name": "Ultra"})

	create[model.Artist](s, "/artists", map[string]any{"festival_id": edc.ID, "name": "Fisher", "priority": "must_see"})
	create[model.Artist](s, "/artists", map[string]any{"festival_id": edc.ID, "name": "Tiesto"})
	a := create[model.Artist](s, "/artists", map[string]any{"festival_id": coachella.ID, "name": "Lady Gaga"})
	assert.Equal(t, model.PriorityWantToSee, a.Priority)

	rec := s.do(http.MethodGet, "/groups/"+g.ID.String()+"/festivals", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	festivals := decode[[]model.FestivalWithArtists](t, rec)
	require.Len(t, festivals, 3)

	assert.Equal(t, coachella.ID, festivals[0].ID)
	require.Len(t, festivals[0].Artists, 1)
	assert.Equal(t, "Lady Gaga", festivals[0].Artists[0].Name)

	assert.Equal(t, edc.ID, festivals[1].ID)
	require.Len(t, festivals[1].Artists, 2)
	for _, artist := range festivals[1].Artists {
		assert.Equal(t, edc.ID, *artist.FestivalID)
	}

	assert.Equal(t, undated.ID, festivals[2].ID)
	assert.NotNil(t, festivals[2].Artists)
	assert.Empty(t, festivals[2].Artists)

	rec = s.do(http.MethodGet, "/artists?festival_id="+edc.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Artist](t, rec), 2)
}

func TestGroupDeleteCascades(t *testing.T) {
	s := newServer(t)
	g := create[model.Group](s, "/groups", map[string]any{"name": "crew"})
	m := create[model.Member](s, "/members", map[string]any{"group_id": g.ID, "name": "Jake"})
	c := create[model.Call](s, "/calls", map[string]any{"group_id": g.ID, "summary": "planned EDC"})
	f := create[model.Festival](s, "/festivals", map[string]any{"group_id": g.ID, "name": "EDC"})
	a := create[model.Artist](s, "/artists", map[string]any{"festival_id": f.ID, "name": "Fisher"})
	r := create[model.Review](s, "/reviews", map[string]any{"user_id": m.ID, "festival_id": f.ID, "stars": 4})

	err := s.store.WithSession(context.Background(), func(ctx context.Context, tx repository.Session) error {
		return tx.Groups().Delete(ctx, g.ID)
	})
	require.NoError(t, err)

	for _, path := range []string{
		"/groups/" + g.ID.String(),
		"/members/" + m.ID.String(),
		"/calls/" + c.ID.String(),
		"/festivals/" + f.ID.String(),
		"/artists/" + a.ID.String(),
		"/reviews/" + r.ID.String(),
	} {
		assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, path, nil).Code, path)
	}
}

func TestCalls(t *testing.T) {
	s := newServer(t)
	g := create[model.Group](s, "/groups", map[string]any{"name": "crew"})

	first := create[model.Call](s, "/calls", map[string]any{"group_id": g.ID, "from_number": "+15125550100"})
	assert.Nil(t, first.EndedAt)
	assert.Nil(t, first.Transcript)
	second := create[model.Call](s, "/calls", map[string]any{
		"group_id":   g.ID,
		"transcript": []map[string]string{{"role": "user", "content": "hi"}},
	})
	assert.JSONEq(t, `[{"role":"user","content":"hi"}]`, string(second.Transcript))

	require.Len(t, s.events.events, 2)
	assert.Equal(t, queue.CallStarted, s.events.events[0].Type)
	assert.Equal(t, first.ID, s.events.events[0].CallID)
	assert.Equal(t, "+15125550100", s.events.events[0].FromNumber)

	rec := s.do(http.MethodGet, "/calls?group_id="+g.ID.String()+"&limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	calls := decode[[]model.Call](t, rec)
	require.Len(t, calls, 1)
	assert.Equal(t, second.ID, calls[0].ID)

	assert.Equal(t, http.StatusUnprocessableEntity, s.do(http.MethodGet, "/calls?limit=ten", nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, s.do(http.MethodGet, "/calls?group_id=x", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/calls/"+first.ID.String(), nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/calls/"+uuid.NewString(), nil).Code)
}

func TestCatalogSearch(t *testing.T) {
	s := newServer(t)
	entries := []map[string]any{
		{"name": "Tomorrowland 2026", "dates_start": "2026-07-17", "latitude": 51.0916, "longitude": 4.3817},
		{"name": "EDC Las Vegas 2026", "dates_start": "2026-05-15", "latitude": 36.2719, "longitude": -115.0104},
		{"name": "Coachella 2026", "dates_start": "2026-04-10", "latitude": 33.6803, "longitude": -116.2378, "ticket_price": 549},
		{"name": "Secret Garden Party", "dates_start": "2026-03-01"},
		{"name": "Undated fest"},
	}
	for _, e := range entries {
		create[model.CatalogEntry](s, "/festival-catalog", e)
	}

	names := func(rec *httptest.ResponseRecorder) []string {
		t.Helper()
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var out []string
		for _, e := range decode[[]model.CatalogEntry](t, rec) {
			out = append(out, e.Name)
		}
		return out
	}

	byDate := []string{"Secret Garden Party", "Coachella 2026", "EDC Las Vegas 2026", "Tomorrowland 2026", "Undated fest"}
	assert.Equal(t, byDate, names(s.do(http.MethodGet, "/festival-catalog", nil)))

	assert.Equal(t,
		[]string{"Coachella 2026", "EDC Las Vegas 2026", "Tomorrowland 2026"},
		names(s.do(http.MethodGet, "/festival-catalog/search?latitude=33.68&longitude=-116.24", nil)))

	// one coordinate alone falls back to date order
	assert.Equal(t, byDate, names(s.do(http.MethodGet, "/festival-catalog/search?latitude=33.68", nil)))

	assert.Equal(t,
		[]string{"Coachella 2026", "EDC Las Vegas 2026", "Tomorrowland 2026"},
		names(s.do(http.MethodGet, "/festival-catalog/search?name=+2026+", nil)))
	assert.Equal(t,
		[]string{"EDC Las Vegas 2026"},
		names(s.do(http.MethodGet, "/festival-catalog/search?name=vegas", nil)))
	assert.Empty(t, names(s.do(http.MethodGet, "/festival-catalog/search?name=100%25", nil)))

	assert.Equal(t, http.StatusUnprocessableEntity, s.do(http.MethodGet, "/festival-catalog/search?latitude=north&longitude=1", nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, s.do(http.MethodGet, "/festival-catalog/search?latitude=95&longitude=1", nil).Code)
}

func TestReviews(t *testing.T) {
	s := newServer(t)
	g := create[model.Group](s, "/groups", map[string]any{"name": "crew"})
	m := create[model.Member](s, "/members", map[string]any{"group_id": g.ID, "name": "Jake"})
	f := create[model.Festival](s, "/festivals", map[string]any{"group_id": g.ID, "name": "EDC"})

	r := create[model.Review](s, "/reviews", map[string]any{"user_id": m.ID, "festival_id": f.ID, "stars": 5, "text": "Unreal"})
	assert.EqualValues(t, 5, r.Stars)

	rec := s.do(http.MethodGet, "/reviews?festival_id="+f.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	reviews := decode[[]model.Review](t, rec)
	require.Len(t, reviews, 1)
	assert.Equal(t, r.ID, reviews[0].ID)

	rec = s.do(http.MethodGet, "/reviews?user_id="+uuid.NewString(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]model.Review](t, rec))

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/reviews/"+r.ID.String(), nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/reviews/"+uuid.NewString(), nil).Code)

	rec = s.do(http.MethodPost, "/reviews", map[string]any{"user_id": uuid.New(), "festival_id": f.ID, "stars": 3})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

type failingGateway struct{ err error }

func (g failingGateway) WithSession(context.Context, func(context.Context, repository.Session) error) error {
	return g.err
}
func (g failingGateway) Ping(context.Context) error { return g.err }
func (g failingGateway) Close() error               { return nil }

func TestStorageFailures(t *testing.T) {
	e := router.New(router.Deps{Gateway: failingGateway{err: errors.New("connection refused")}})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/groups", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
