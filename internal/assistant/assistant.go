// Package assistant exposes the operations the voice layer invokes
// in-process during a planning call. Every operation runs in its own
// gateway session and validates its input the same way the HTTP handlers
// do.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/festival-coordinator/internal/logging"
	"github.com/iliyamo/festival-coordinator/internal/model"
	"github.com/iliyamo/festival-coordinator/internal/query"
	"github.com/iliyamo/festival-coordinator/internal/queue"
	"github.com/iliyamo/festival-coordinator/internal/repository"
	"github.com/iliyamo/festival-coordinator/internal/validation"
)

// RecentSummaries is how many past call summaries a snapshot carries.
const RecentSummaries = 3

// ErrNoGroup is returned by StartSession when the group name is blank.
var ErrNoGroup = fmt.Errorf("%w: group name is required", repository.ErrInvalidInput)

// Service holds the collaborators of the assistant operations.
type Service struct {
	gw         repository.Gateway
	validate   *validation.Validator
	summarizer Summarizer
	events     queue.Publisher
	onWrite    func(context.Context) error
}

// NewService wires the operations. A nil publisher disables call events.
func NewService(gw repository.Gateway, summarizer Summarizer, events queue.Publisher) *Service {
	if gw == nil {
		panic("gateway is required")
	}
	if summarizer == nil {
		panic("summarizer is required")
	}
	if events == nil {
		events = queue.NopPublisher{}
	}
	return &Service{gw: gw, validate: validation.New(), summarizer: summarizer, events: events}
}

// OnWrite registers a callback run after every committed write, typically
// the HTTP read cache invalidator. A failing callback is logged.
func (s *Service) OnWrite(fn func(context.Context) error) *Service {
	s.onWrite = fn
	return s
}

// write runs work in a gateway session and reports the change once it
// has committed.
func (s *Service) write(ctx context.Context, work func(ctx context.Context, tx repository.Session) error) error {
	if err := s.gw.WithSession(ctx, work); err != nil {
		return err
	}
	if s.onWrite != nil {
		if err := s.onWrite(ctx); err != nil {
			logging.FromContext(ctx).WithError(err).Warn("write hook failed")
		}
	}
	return nil
}

// Session is the state the voice layer keeps for one conversation.
type Session struct {
	Group model.Group
	Call  model.Call
}

// StartSession creates the group named by the caller and opens a call for
// it in one unit of work.
func (s *Service) StartSession(ctx context.Context, groupName, fromNumber string) (*Session, error) {
	in := model.GroupCreate{Name: &groupName}
	in.Normalize()
	if in.Name == nil {
		return nil, ErrNoGroup
	}

	var out Session
	err := s.write(ctx, func(ctx context.Context, tx repository.Session) error {
		g, err := tx.Groups().Create(ctx, in)
		if err != nil {
			return fmt.Errorf("could not create group: %w", err)
		}
		c, err := tx.Calls().Create(ctx, model.CallCreate{GroupID: g.ID, FromNumber: optional(fromNumber)})
		if err != nil {
			return fmt.Errorf("could not start call: %w", err)
		}
		out = Session{Group: *g, Call: *c}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).WithFields(logrus.Fields{
		"group_id": out.Group.ID,
		"call_id":  out.Call.ID,
	}).Info("session started")
	s.publish(ctx, startedEvent(out.Call, deref(out.Group.Name)))
	return &out, nil
}

func (s *Service) CreateGroup(ctx context.Context, in model.GroupCreate) (*model.Group, error) {
	in.Normalize()
	var g *model.Group
	err := s.write(ctx, func(ctx context.Context, tx repository.Session) error {
		var err error
		g, err = tx.Groups().Create(ctx, in)
		return err
	})
	return g, err
}

func (s *Service) AddMember(ctx context.Context, in model.MemberCreate) (*model.Member, error) {
	in.Normalize()
	if err := s.validate.Validate(in); err != nil {
		return nil, err
	}
	var m *model.Member
	err := s.write(ctx, func(ctx context.Context, tx repository.Session) error {
		var err error
		m, err = tx.Members().Create(ctx, in)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("could not add member: %w", err)
	}
	return m, nil
}

func (s *Service) AddFestival(ctx context.Context, in model.FestivalCreate) (*model.Festival, error) {
	in.Normalize()
	if err := s.validate.Validate(in); err != nil {
		return nil, err
	}
	var f *model.Festival
	err := s.write(ctx, func(ctx context.Context, tx repository.Session) error {
		var err error
		f, err = tx.Festivals().Create(ctx, in)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("could not add festival: %w", err)
	}
	return f, nil
}

func (s *Service) AddArtist(ctx context.Context, in model.ArtistCreate) (*model.Artist, error) {
	in.Normalize()
	if err := s.validate.Validate(in); err != nil {
		return nil, err
	}
	var a *model.Artist
	err := s.write(ctx, func(ctx context.Context, tx repository.Session) error {
		var err error
		a, err = tx.Artists().Create(ctx, in)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("could not add artist: %w", err)
	}
	return a, nil
}

// Snapshot is everything saved for a group, used to bring the assistant up
// to speed at the start of a returning call.
type Snapshot struct {
	GroupID             uuid.UUID                   `json:"group_id"`
	Members             []model.Member              `json:"members"`
	Festivals           []model.FestivalWithArtists `json:"festivals"`
	RecentCallSummaries []CallSummary               `json:"recent_call_summaries"`
}

type CallSummary struct {
	Date    time.Time `json:"date"`
	Summary string    `json:"summary"`
}

// GroupSnapshot reads the group's members, festivals with artists and the
// summaries of its most recent calls. Calls without a summary are skipped.
func (s *Service) GroupSnapshot(ctx context.Context, groupID uuid.UUID) (*Snapshot, error) {
	out := Snapshot{GroupID: groupID}
	err := s.gw.WithSession(ctx, func(ctx context.Context, tx repository.Session) error {
		if _, err := tx.Groups().GetByID(ctx, groupID); err != nil {
			return err
		}
		var err error
		if out.Members, err = tx.Members().List(ctx, query.MemberFilter{GroupID: &groupID}); err != nil {
			return fmt.Errorf("could not list members: %w", err)
		}
		if out.Festivals, err = repository.FestivalsWithArtists(ctx, tx, query.FestivalFilter{GroupID: &groupID}); err != nil {
			return fmt.Errorf("could not list festivals: %w", err)
		}
		calls, err := tx.Calls().List(ctx, query.CallFilter{GroupID: &groupID, Limit: RecentSummaries})
		if err != nil {
			return fmt.Errorf("could not list calls: %w", err)
		}
		out.RecentCallSummaries = make([]CallSummary, 0, len(calls))
		for _, c := range calls {
			if c.Summary != nil && *c.Summary != "" {
				out.RecentCallSummaries = append(out.RecentCallSummaries, CallSummary{Date: c.StartedAt, Summary: *c.Summary})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// BeginCall opens a call for an existing group.
func (s *Service) BeginCall(ctx context.Context, groupID uuid.UUID, fromNumber string) (*model.Call, error) {
	var c *model.Call
	var groupName string
	err := s.write(ctx, func(ctx context.Context, tx repository.Session) error {
		g, err := tx.Groups().GetByID(ctx, groupID)
		if err != nil {
			return err
		}
		if g.Name != nil {
			groupName = *g.Name
		}
		c, err = tx.Calls().Create(ctx, model.CallCreate{GroupID: groupID, FromNumber: optional(fromNumber)})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("could not begin call: %w", err)
	}
	s.publish(ctx, startedEvent(*c, groupName))
	return c, nil
}

// EndCall summarises the conversation and closes the call. The summary is
// stored verbatim and the turns are kept as the transcript. A call can be
// ended once; a second attempt fails with repository.ErrCallAlreadyEnded
// and the summariser is not consulted again.
func (s *Service) EndCall(ctx context.Context, callID uuid.UUID, turns []Turn) (*model.Call, error) {
	err := s.gw.WithSession(ctx, func(ctx context.Context, tx repository.Session) error {
		c, err := tx.Calls().GetByID(ctx, callID)
		if err != nil {
			return err
		}
		if c.Ended() {
			return repository.ErrCallAlreadyEnded
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary, err := Summarize(ctx, s.summarizer, turns)
	if err != nil {
		return nil, fmt.Errorf("could not summarize call %s: %w", callID, err)
	}
	transcript, err := Transcript(turns)
	if err != nil {
		return nil, err
	}

	var c *model.Call
	err = s.write(ctx, func(ctx context.Context, tx repository.Session) error {
		var err error
		c, err = tx.Calls().End(ctx, callID, model.CallEnd{Summary: summary, Transcript: transcript})
		return err
	})
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).WithField("call_id", callID).Info("call summary saved")
	s.publish(ctx, queue.CallEvent{
		Type:       queue.CallEnded,
		CallID:     c.ID,
		GroupID:    c.GroupID,
		FromNumber: deref(c.FromNumber),
		StartedAt:  c.StartedAt,
		EndedAt:    c.EndedAt,
		Summary:    summary,
	})
	return c, nil
}

// Caller is a member recognised by phone number, with their group.
type Caller struct {
	Member model.Member
	Group  *model.Group
}

// IdentifyCaller looks a phone number up against member phones. No match
// is not an error: it returns nil, nil.
func (s *Service) IdentifyCaller(ctx context.Context, phone string) (*Caller, error) {
	if phone == "" {
		return nil, nil
	}
	var out *Caller
	err := s.gw.WithSession(ctx, func(ctx context.Context, tx repository.Session) error {
		members, err := tx.Members().List(ctx, query.MemberFilter{Phone: &phone})
		if err != nil {
			return err
		}
		if len(members) == 0 {
			return nil
		}
		out = &Caller{Member: members[0]}
		if gid := members[0].GroupID; gid != nil {
			g, err := tx.Groups().GetByID(ctx, *gid)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			out.Group = g
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not identify caller: %w", err)
	}
	return out, nil
}

func (s *Service) publish(ctx context.Context, ev queue.CallEvent) {
	if err := s.events.PublishCallEvent(ctx, ev); err != nil {
		logging.FromContext(ctx).WithError(err).WithField("event", ev.Type).Warn("call event not published")
	}
}

func startedEvent(c model.Call, groupName string) queue.CallEvent {
	return queue.CallEvent{
		Type:       queue.CallStarted,
		CallID:     c.ID,
		GroupID:    c.GroupID,
		GroupName:  groupName,
		FromNumber: deref(c.FromNumber),
		StartedAt:  c.StartedAt,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
