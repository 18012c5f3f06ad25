package memstore

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/iliyamo/festival-coordinator/internal/model"
	"github.com/iliyamo/festival-coordinator/internal/query"
	"github.com/iliyamo/festival-coordinator/internal/repository"
)

type groupRepo struct{ st *Store }

func (r groupRepo) Create(_ context.Context, in model.GroupCreate) (*model.Group, error) {
	g := model.Group{ID: uuid.New(), Name: in.Name, Description: in.Description, CreatedAt: r.st.timestamp()}
	r.st.data.groups = append(r.st.data.groups, g)
	return &g, nil
}

func (r groupRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Group, error) {
	i := find(r.st.data.groups, func(g model.Group) bool { return g.ID == id })
	if i < 0 {
		return nil, repository.ErrGroupNotFound
	}
	g := r.st.data.groups[i]
	return &g, nil
}

func (r groupRepo) List(_ context.Context, f query.GroupFilter) ([]model.Group, error) {
	out := filter(r.st.data.groups, f.Match)
	query.SortGroups(out)
	return out, nil
}

// Delete cascades to members, calls and festivals, and from there to
// artists and reviews.
func (r groupRepo) Delete(_ context.Context, id uuid.UUID) error {
	d := &r.st.data
	i := find(d.groups, func(g model.Group) bool { return g.ID == id })
	if i < 0 {
		return repository.ErrGroupNotFound
	}
	d.groups = slices.Delete(d.groups, i, i+1)

	owned := func(gid *uuid.UUID) bool { return gid != nil && *gid == id }
	for _, m := range d.members {
		if owned(m.GroupID) {
			d.removeMember(m.ID)
		}
	}
	d.calls = filter(d.calls, func(c model.Call) bool { return !owned(c.GroupID) })
	for _, f := range d.festivals {
		if owned(f.GroupID) {
			d.removeFestival(f.ID)
		}
	}
	return nil
}

func (t *tables) removeMember(id uuid.UUID) {
	t.members = filter(t.members, func(m model.Member) bool { return m.ID != id })
	t.reviews = filter(t.reviews, func(rv model.Review) bool { return rv.UserID != id })
}

func (t *tables) removeFestival(id uuid.UUID) {
	t.festivals = filter(t.festivals, func(f model.Festival) bool { return f.ID != id })
	t.artists = filter(t.artists, func(a model.Artist) bool { return a.FestivalID == nil || *a.FestivalID != id })
	t.reviews = filter(t.reviews, func(rv model.Review) bool { return rv.FestivalID != id })
}

func (t *tables) hasGroup(id uuid.UUID) bool {
	return find(t.groups, func(g model.Group) bool { return g.ID == id }) >= 0
}

func (t *tables) hasFestival(id uuid.UUID) bool {
	return find(t.festivals, func(f model.Festival) bool { return f.ID == id }) >= 0
}

func (t *tables) hasMember(id uuid.UUID) bool {
	return find(t.members, func(m model.Member) bool { return m.ID == id }) >= 0
}

type memberRepo struct{ st *Store }

func (r memberRepo) Create(_ context.Context, in model.MemberCreate) (*model.Member, error) {
	if !r.st.data.hasGroup(in.GroupID) {
		return nil, repository.Constraint("members.group_id references a missing group")
	}
	gid := in.GroupID
	m := model.Member{ID: uuid.New(), GroupID: &gid, Name: in.Name, City: in.City, Phone: in.Phone, Status: model.MemberActive}
	r.st.data.members = append(r.st.data.members, m)
	return &m, nil
}

func (r memberRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Member, error) {
	i := find(r.st.data.members, func(m model.Member) bool { return m.ID == id })
	if i < 0 {
		return nil, repository.ErrMemberNotFound
	}
	m := r.st.data.members[i]
	return &m, nil
}

func (r memberRepo) List(_ context.Context, f query.MemberFilter) ([]model.Member, error) {
	out := filter(r.st.data.members, f.Match)
	query.SortMembers(out)
	return out, nil
}

func (r memberRepo) Update(_ context.Context, id uuid.UUID, in model.MemberUpdate) (*model.Member, error) {
	if err := repository.CheckUpdate(in); err != nil {
		return nil, err
	}
	i := find(r.st.data.members, func(m model.Member) bool { return m.ID == id })
	if i < 0 {
		return nil, repository.ErrMemberNotFound
	}
	m := r.st.data.members[i]
	if in.Name != nil {
		m.Name = *in.Name
	}
	if in.City != nil {
		m.City = in.City
	}
	if in.Phone != nil {
		m.Phone = in.Phone
	}
	if in.Status != nil {
		m.Status = *in.Status
	}
	r.st.data.members[i] = m
	return &m, nil
}

func (r memberRepo) Delete(_ context.Context, id uuid.UUID) error {
	if !r.st.data.hasMember(id) {
		return repository.ErrMemberNotFound
	}
	r.st.data.removeMember(id)
	return nil
}

type callRepo struct{ st *Store }

func (r callRepo) Create(_ context.Context, in model.CallCreate) (*model.Call, error) {
	if !r.st.data.hasGroup(in.GroupID) {
		return nil, repository.Constraint("calls.group_id references a missing group")
	}
	gid := in.GroupID
	c := model.Call{ID: uuid.New(), GroupID: &gid, StartedAt: r.st.timestamp(), Summary: in.Summary, Transcript: in.Transcript, FromNumber: in.FromNumber}
	if in.StartedAt != nil {
		c.StartedAt = in.StartedAt.UTC()
	}
	r.st.data.calls = append(r.st.data.calls, c)
	return &c, nil
}

func (r callRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Call, error) {
	i := find(r.st.data.calls, func(c model.Call) bool { return c.ID == id })
	if i < 0 {
		return nil, repository.ErrCallNotFound
	}
	c := r.st.data.calls[i]
	return &c, nil
}

func (r callRepo) List(_ context.Context, f query.CallFilter) ([]model.Call, error) {
	out := filter(r.st.data.calls, f.Match)
	query.SortCalls(out)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r callRepo) End(_ context.Context, id uuid.UUID, in model.CallEnd) (*model.Call, error) {
	i := find(r.st.data.calls, func(c model.Call) bool { return c.ID == id })
	if i < 0 {
		return nil, repository.ErrCallNotFound
	}
	c := r.st.data.calls[i]
	if c.Ended() {
		return nil, repository.ErrCallAlreadyEnded
	}
	now := r.st.timestamp()
	summary := in.Summary
	c.EndedAt, c.Summary = &now, &summary
	if len(in.Transcript) > 0 {
		c.Transcript = in.Transcript
	}
	r.st.data.calls[i] = c
	return &c, nil
}

type festivalRepo struct{ st *Store }

func (r festivalRepo) Create(_ context.Context, in model.FestivalCreate) (*model.Festival, error) {
	if !r.st.data.hasGroup(in.GroupID) {
		return nil, repository.Constraint("festivals.group_id references a missing group")
	}
	gid := in.GroupID
	f := model.Festival{
		ID:          uuid.New(),
		GroupID:     &gid,
		Name:        in.Name,
		Location:    in.Location,
		DatesStart:  in.DatesStart,
		DatesEnd:    in.DatesEnd,
		TicketPrice: roundPrice(in.TicketPrice),
		OnSaleDate:  in.OnSaleDate,
		Status:      in.Status,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
	}
	if f.Status == "" {
		f.Status = model.FestivalConsidering
	}
	r.st.data.festivals = append(r.st.data.festivals, f)
	return &f, nil
}

func (r festivalRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Festival, error) {
	i := find(r.st.data.festivals, func(f model.Festival) bool { return f.ID == id })
	if i < 0 {
		return nil, repository.ErrFestivalNotFound
	}
	f := r.st.data.festivals[i]
	return &f, nil
}

func (r festivalRepo) List(_ context.Context, f query.FestivalFilter) ([]model.Festival, error) {
	out := filter(r.st.data.festivals, f.Match)
	query.SortFestivals(out)
	return out, nil
}

func (r festivalRepo) Update(_ context.Context, id uuid.UUID, in model.FestivalUpdate) (*model.Festival, error) {
	if err := repository.CheckUpdate(in); err != nil {
		return nil, err
	}
	i := find(r.st.data.festivals, func(f model.Festival) bool { return f.ID == id })
	if i < 0 {
		return nil, repository.ErrFestivalNotFound
	}
	f := r.st.data.festivals[i]
	if in.Location != nil {
		f.Location = in.Location
	}
	if in.DatesStart != nil {
		f.DatesStart = in.DatesStart
	}
	if in.DatesEnd != nil {
		f.DatesEnd = in.DatesEnd
	}
	if in.Status != nil {
		f.Status = *in.Status
	}
	r.st.data.festivals[i] = f
	return &f, nil
}

type artistRepo struct{ st *Store }

func (r artistRepo) Create(_ context.Context, in model.ArtistCreate) (*model.Artist, error) {
	if !r.st.data.hasFestival(in.FestivalID) {
		return nil, repository.Constraint("artists.festival_id references a missing festival")
	}
	fid := in.FestivalID
	a := model.Artist{ID: uuid.New(), FestivalID: &fid, Name: in.Name, Priority: in.Priority}
	if a.Priority == "" {
		a.Priority = model.PriorityWantToSee
	}
	r.st.data.artists = append(r.st.data.artists, a)
	return &a, nil
}

func (r artistRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Artist, error) {
	i := find(r.st.data.artists, func(a model.Artist) bool { return a.ID == id })
	if i < 0 {
		return nil, repository.ErrArtistNotFound
	}
	a := r.st.data.artists[i]
	return &a, nil
}

func (r artistRepo) List(_ context.Context, f query.ArtistFilter) ([]model.Artist, error) {
	out := filter(r.st.data.artists, f.Match)
	query.SortArtists(out)
	return out, nil
}

func (r artistRepo) DeleteByFestival(_ context.Context, festivalID uuid.UUID) (int64, error) {
	before := len(r.st.data.artists)
	r.st.data.artists = filter(r.st.data.artists, func(a model.Artist) bool {
		return a.FestivalID == nil || *a.FestivalID != festivalID
	})
	return int64(before - len(r.st.data.artists)), nil
}

type catalogRepo struct{ st *Store }

func (r catalogRepo) Create(_ context.Context, in model.CatalogEntryCreate) (*model.CatalogEntry, error) {
	e := model.CatalogEntry{
		ID:          uuid.New(),
		Name:        in.Name,
		Location:    in.Location,
		DatesStart:  in.DatesStart,
		DatesEnd:    in.DatesEnd,
		TicketPrice: roundPrice(in.TicketPrice),
		OnSaleDate:  in.OnSaleDate,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
	}
	r.st.data.catalog = append(r.st.data.catalog, e)
	return &e, nil
}

func (r catalogRepo) List(_ context.Context, f query.CatalogFilter) ([]model.CatalogEntry, error) {
	out := filter(r.st.data.catalog, f.Match)
	if f.Near != nil {
		query.SortCatalogByDistance(out, *f.Near)
	} else {
		query.SortCatalog(out)
	}
	return out, nil
}

type reviewRepo struct{ st *Store }

func (r reviewRepo) Create(_ context.Context, in model.ReviewCreate) (*model.Review, error) {
	if !r.st.data.hasMember(in.UserID) {
		return nil, repository.Constraint("reviews.user_id references a missing member")
	}
	if !r.st.data.hasFestival(in.FestivalID) {
		return nil, repository.Constraint("reviews.festival_id references a missing festival")
	}
	rv := model.Review{ID: uuid.New(), UserID: in.UserID, FestivalID: in.FestivalID, Text: in.Text, CreatedAt: r.st.timestamp()}
	if in.Stars != nil {
		rv.Stars = *in.Stars
	}
	r.st.data.reviews = append(r.st.data.reviews, rv)
	return &rv, nil
}

func (r reviewRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Review, error) {
	i := find(r.st.data.reviews, func(rv model.Review) bool { return rv.ID == id })
	if i < 0 {
		return nil, repository.ErrReviewNotFound
	}
	rv := r.st.data.reviews[i]
	return &rv, nil
}

func (r reviewRepo) List(_ context.Context, f query.ReviewFilter) ([]model.Review, error) {
	out := filter(r.st.data.reviews, f.Match)
	query.SortReviews(out)
	return out, nil
}
