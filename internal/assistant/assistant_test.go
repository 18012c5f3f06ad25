package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/festival-coordinator/internal/model"
	"github.com/iliyamo/festival-coordinator/internal/queue"
	"github.com/iliyamo/festival-coordinator/internal/repository"
	"github.com/iliyamo/festival-coordinator/internal/repository/memstore"
	"github.com/iliyamo/festival-coordinator/internal/validation"
)

type recorder struct {
	mu     sync.Mutex
	events []queue.CallEvent
	err    error
}

func (r *recorder) PublishCallEvent(_ context.Context, ev queue.CallEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

type fakeSummarizer struct {
	calls int
	got   string
	reply string
	err   error
}

func (f *fakeSummarizer) Summarize(_ context.Context, transcript string) (string, error) {
	f.calls++
	f.got = transcript
	return f.reply, f.err
}

func clock() func() time.Time {
	t := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Minute)
		return t
	}
}

func newService(t *testing.T) (*Service, *fakeSummarizer, *recorder) {
	t.Helper()
	sum := &fakeSummarizer{reply: "- Jake and Priya want EDC"}
	rec := &recorder{}
	return NewService(memstore.New(memstore.WithClock(clock())), sum, rec), sum, rec
}

func TestStartSession(t *testing.T) {
	svc, _, rec := newService(t)
	ctx := context.Background()

	sess, err := svc.StartSession(ctx, "  Austin squad ", "+15125550100")
	require.NoError(t, err)
	require.NotNil(t, sess.Group.Name)
	assert.Equal(t, "Austin squad", *sess.Group.Name)
	assert.Equal(t, sess.Group.ID, *sess.Call.GroupID)
	assert.False(t, sess.Call.Ended())

	require.Len(t, rec.events, 1)
	assert.Equal(t, queue.CallStarted, rec.events[0].Type)
	assert.Equal(t, "Austin squad", rec.events[0].GroupName)
	assert.Equal(t, "+15125550100", rec.events[0].FromNumber)

	_, err = svc.StartSession(ctx, "   ", "")
	assert.ErrorIs(t, err, ErrNoGroup)
	assert.ErrorIs(t, err, repository.ErrInvalidInput)
}

func TestAddOperationsValidate(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.AddMember(ctx, model.MemberCreate{GroupID: uuid.New(), Name: "  "})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Fields[0].Field)

	_, err = svc.AddMember(ctx, model.MemberCreate{GroupID: uuid.New(), Name: "Jake"})
	assert.ErrorIs(t, err, repository.ErrConstraint)

	_, err = svc.AddFestival(ctx, model.FestivalCreate{GroupID: uuid.New(), Name: "EDC", Status: "maybe"})
	require.ErrorAs(t, err, &verr)
}

func TestGroupSnapshot(t *testing.T) {
	svc, sum, _ := newService(t)
	ctx := context.Background()

	g, err := svc.CreateGroup(ctx, model.GroupCreate{})
	require.NoError(t, err)

	city := "Austin, TX"
	_, err = svc.AddMember(ctx, model.MemberCreate{GroupID: g.ID, Name: "Priya", City: &city})
	require.NoError(t, err)
	_, err = svc.AddMember(ctx, model.MemberCreate{GroupID: g.ID, Name: "Jake"})
	require.NoError(t, err)

	edc, err := svc.AddFestival(ctx, model.FestivalCreate{GroupID: g.ID, Name: "EDC Las Vegas 2026"})
	require.NoError(t, err)
	assert.Equal(t, model.FestivalConsidering, edc.Status)
	_, err = svc.AddFestival(ctx, model.FestivalCreate{GroupID: g.ID, Name: "Coachella 2026"})
	require.NoError(t, err)
	a, err := svc.AddArtist(ctx, model.ArtistCreate{FestivalID: edc.ID, Name: "Fisher"})
	require.NoError(t, err)
	assert.Equal(t, model.PriorityWantToSee, a.Priority)

	// four calls, three of them summarised; only the three most recent are read
	for i := 0; i < 4; i++ {
		c, err := svc.BeginCall(ctx, g.ID, "")
		require.NoError(t, err)
		if i == 2 {
			continue
		}
		sum.reply = "summary " + string(rune('A'+i))
		_, err = svc.EndCall(ctx, c.ID, []Turn{{Role: "user", Content: "hi"}})
		require.NoError(t, err)
	}

	snap, err := svc.GroupSnapshot(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, snap.Members, 2)
	assert.Equal(t, "Jake", snap.Members[0].Name)
	require.Len(t, snap.Festivals, 2)
	for _, f := range snap.Festivals {
		if f.ID == edc.ID {
			require.Len(t, f.Artists, 1)
			assert.Equal(t, "Fisher", f.Artists[0].Name)
		} else {
			assert.Empty(t, f.Artists)
		}
	}
	require.Len(t, snap.RecentCallSummaries, 2)
	assert.Equal(t, "summary D", snap.RecentCallSummaries[0].Summary)
	assert.Equal(t, "summary B", snap.RecentCallSummaries[1].Summary)

	_, err = svc.GroupSnapshot(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrGroupNotFound)
}

func TestEndCall(t *testing.T) {
	svc, sum, rec := newService(t)
	ctx := context.Background()

	sess, err := svc.StartSession(ctx, "Desert crew", "")
	require.NoError(t, err)

	turns := []Turn{
		{Role: "system", Content: "You are Sophie."},
		{Role: "assistant", Content: "Hey, who's coming?"},
		{Role: "user", Content: "Me and Jake."},
	}
	c, err := svc.EndCall(ctx, sess.Call.ID, turns)
	require.NoError(t, err)
	assert.Equal(t, "Sophie: Hey, who's coming?\nUser: Me and Jake.", sum.got)
	require.NotNil(t, c.Summary)
	assert.Equal(t, "- Jake and Priya want EDC", *c.Summary)
	require.NotNil(t, c.EndedAt)

	var stored []Turn
	require.NoError(t, json.Unmarshal(c.Transcript, &stored))
	assert.Len(t, stored, 3)

	require.Len(t, rec.events, 2)
	assert.Equal(t, queue.CallEnded, rec.events[1].Type)
	assert.Equal(t, *c.Summary, rec.events[1].Summary)

	_, err = svc.EndCall(ctx, sess.Call.ID, turns)
	assert.ErrorIs(t, err, repository.ErrCallAlreadyEnded)
	assert.Equal(t, 1, sum.calls)

	_, err = svc.EndCall(ctx, uuid.New(), nil)
	assert.ErrorIs(t, err, repository.ErrCallNotFound)
}

func TestEndCallWithoutContent(t *testing.T) {
	svc, sum, _ := newService(t)
	ctx := context.Background()

	sess, err := svc.StartSession(ctx, "Quiet ones", "")
	require.NoError(t, err)

	c, err := svc.EndCall(ctx, sess.Call.ID, []Turn{{Role: "system", Content: "greet"}, {Role: "user"}})
	require.NoError(t, err)
	assert.Equal(t, EmptySummary, *c.Summary)
	assert.Zero(t, sum.calls)
}

func TestEndCallSummarizerFailureLeavesCallOpen(t *testing.T) {
	svc, sum, _ := newService(t)
	ctx := context.Background()

	sess, err := svc.StartSession(ctx, "Crew", "")
	require.NoError(t, err)

	sum.err = errors.New("model unavailable")
	_, err = svc.EndCall(ctx, sess.Call.ID, []Turn{{Role: "user", Content: "bye"}})
	require.Error(t, err)

	sum.err = nil
	c, err := svc.EndCall(ctx, sess.Call.ID, []Turn{{Role: "user", Content: "bye"}})
	require.NoError(t, err)
	assert.True(t, c.Ended())
}

func TestPublishFailureIsNotFatal(t *testing.T) {
	svc, _, rec := newService(t)
	rec.err = errors.New("broker down")

	_, err := svc.StartSession(context.Background(), "Crew", "")
	assert.NoError(t, err)
}

func TestWritesRunHook(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	writes := 0
	svc.OnWrite(func(context.Context) error {
		writes++
		return errors.New("redis down")
	})

	sess, err := svc.StartSession(ctx, "Crew", "")
	require.NoError(t, err)
	assert.Equal(t, 1, writes)

	_, err = svc.AddMember(ctx, model.MemberCreate{GroupID: sess.Group.ID, Name: "Priya"})
	require.NoError(t, err)
	assert.Equal(t, 2, writes)

	// rejected writes and reads leave the hook alone
	_, err = svc.AddMember(ctx, model.MemberCreate{GroupID: uuid.New(), Name: "Jake"})
	require.Error(t, err)
	_, err = svc.GroupSnapshot(ctx, sess.Group.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, writes)

	_, err = svc.EndCall(ctx, sess.Call.ID, []Turn{{Role: "user", Content: "EDC please"}})
	require.NoError(t, err)
	assert.Equal(t, 3, writes)
}

func TestIdentifyCaller(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	g, err := svc.CreateGroup(ctx, model.GroupCreate{Name: ptr("Austin squad")})
	require.NoError(t, err)
	_, err = svc.AddMember(ctx, model.MemberCreate{GroupID: g.ID, Name: "Jake", Phone: ptr("+15125550100")})
	require.NoError(t, err)

	caller, err := svc.IdentifyCaller(ctx, "+15125550100")
	require.NoError(t, err)
	require.NotNil(t, caller)
	assert.Equal(t, "Jake", caller.Member.Name)
	require.NotNil(t, caller.Group)
	assert.Equal(t, g.ID, caller.Group.ID)

	caller, err = svc.IdentifyCaller(ctx, "+15125559999")
	assert.NoError(t, err)
	assert.Nil(t, caller)
}

func TestRenderTranscript(t *testing.T) {
	assert.Equal(t, "", RenderTranscript(nil))
	assert.Equal(t, "User: a\nSophie: b", RenderTranscript([]Turn{
		{Role: "user", Content: "a"},
		{Role: "tool", Content: ""},
		{Role: "assistant", Content: "b"},
	}))

	raw, err := Transcript(nil)
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func ptr[T any](v T) *T { return &v }
