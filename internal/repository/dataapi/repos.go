package dataapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/festival-coordinator/internal/model"
	"github.com/iliyamo/festival-coordinator/internal/query"
	"github.com/iliyamo/festival-coordinator/internal/repository"
)

type session struct{ c *Client }

func (s session) Groups() repository.GroupRepository       { return groupRepo{s.c} }
func (s session) Members() repository.MemberRepository     { return memberRepo{s.c} }
func (s session) Calls() repository.CallRepository         { return callRepo{s.c} }
func (s session) Festivals() repository.FestivalRepository { return festivalRepo{s.c} }
func (s session) Artists() repository.ArtistRepository     { return artistRepo{s.c} }
func (s session) Catalog() repository.CatalogRepository    { return catalogRepo{s.c} }
func (s session) Reviews() repository.ReviewRepository     { return reviewRepo{s.c} }

type groupRepo struct{ c *Client }

func (r groupRepo) Create(ctx context.Context, in model.GroupCreate) (*model.Group, error) {
	return insertOne[model.Group](ctx, r.c, "groups", repository.GroupFields(uuid.New(), in))
}

func (r groupRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Group, error) {
	return getOne[model.Group](ctx, r.c, "groups", id, repository.ErrGroupNotFound)
}

func (r groupRepo) List(ctx context.Context, f query.GroupFilter) ([]model.Group, error) {
	params := url.Values{"order": {orderParam(query.GroupOrder)}}
	if f.Name != nil {
		params.Set("name", eq(*f.Name))
	}
	return list[model.Group](ctx, r.c, "groups", params)
}

func (r groupRepo) Delete(ctx context.Context, id uuid.UUID) error {
	rows, err := remove[model.Group](ctx, r.c, "groups", byID(id))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return repository.ErrGroupNotFound
	}
	return nil
}

type memberRepo struct{ c *Client }

func (r memberRepo) Create(ctx context.Context, in model.MemberCreate) (*model.Member, error) {
	return insertOne[model.Member](ctx, r.c, "members", repository.MemberFields(uuid.New(), in))
}

func (r memberRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Member, error) {
	return getOne[model.Member](ctx, r.c, "members", id, repository.ErrMemberNotFound)
}

func (r memberRepo) List(ctx context.Context, f query.MemberFilter) ([]model.Member, error) {
	params := url.Values{"order": {orderParam(query.MemberOrder)}}
	if f.GroupID != nil {
		params.Set("group_id", eq(f.GroupID.String()))
	}
	if f.Phone != nil {
		params.Set("phone", eq(*f.Phone))
	}
	out, err := list[model.Member](ctx, r.c, "members", params)
	if err != nil {
		return nil, err
	}
	query.SortMembers(out)
	return out, nil
}

func (r memberRepo) Update(ctx context.Context, id uuid.UUID, in model.MemberUpdate) (*model.Member, error) {
	if err := repository.CheckUpdate(in); err != nil {
		return nil, err
	}
	rows, err := patch[model.Member](ctx, r.c, "members", byID(id), repository.MemberUpdateFields(in))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, repository.ErrMemberNotFound
	}
	return &rows[0], nil
}

func (r memberRepo) Delete(ctx context.Context, id uuid.UUID) error {
	rows, err := remove[model.Member](ctx, r.c, "members", byID(id))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return repository.ErrMemberNotFound
	}
	return nil
}

type callRepo struct{ c *Client }

func (r callRepo) Create(ctx context.Context, in model.CallCreate) (*model.Call, error) {
	return insertOne[model.Call](ctx, r.c, "calls", repository.CallFields(uuid.New(), in))
}

func (r callRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Call, error) {
	return getOne[model.Call](ctx, r.c, "calls", id, repository.ErrCallNotFound)
}

func (r callRepo) List(ctx context.Context, f query.CallFilter) ([]model.Call, error) {
	params := url.Values{"order": {orderParam(query.CallOrder)}}
	if f.GroupID != nil {
		params.Set("group_id", eq(f.GroupID.String()))
	}
	if f.Limit > 0 {
		params.Set("limit", strconv.Itoa(f.Limit))
	}
	return list[model.Call](ctx, r.c, "calls", params)
}

// End patches only a call whose ended_at is still null.
func (r callRepo) End(ctx context.Context, id uuid.UUID, in model.CallEnd) (*model.Call, error) {
	params := byID(id)
	params.Set("ended_at", "is.null")
	rows, err := patch[model.Call](ctx, r.c, "calls", params, repository.CallEndFields(in, r.c.now()))
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		return &rows[0], nil
	}
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Ended() {
		return nil, repository.ErrCallAlreadyEnded
	}
	return nil, fmt.Errorf("call %s was not updated: %w", id, repository.ErrConflict)
}

type festivalRepo struct{ c *Client }

func (r festivalRepo) Create(ctx context.Context, in model.FestivalCreate) (*model.Festival, error) {
	return insertOne[model.Festival](ctx, r.c, "festivals", repository.FestivalFields(uuid.New(), in))
}

func (r festivalRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Festival, error) {
	return getOne[model.Festival](ctx, r.c, "festivals", id, repository.ErrFestivalNotFound)
}

func (r festivalRepo) List(ctx context.Context, f query.FestivalFilter) ([]model.Festival, error) {
	params := url.Values{"order": {orderParam(query.FestivalOrder)}}
	if f.GroupID != nil {
		params.Set("group_id", eq(f.GroupID.String()))
	}
	if f.Name != nil {
		params.Set("name", eq(*f.Name))
	}
	return list[model.Festival](ctx, r.c, "festivals", params)
}

func (r festivalRepo) Update(ctx context.Context, id uuid.UUID, in model.FestivalUpdate) (*model.Festival, error) {
	if err := repository.CheckUpdate(in); err != nil {
		return nil, err
	}
	rows, err := patch[model.Festival](ctx, r.c, "festivals", byID(id), repository.FestivalUpdateFields(in))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, repository.ErrFestivalNotFound
	}
	return &rows[0], nil
}

type artistRepo struct{ c *Client }

func (r artistRepo) Create(ctx context.Context, in model.ArtistCreate) (*model.Artist, error) {
	return insertOne[model.Artist](ctx, r.c, "artists", repository.ArtistFields(uuid.New(), in))
}

func (r artistRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Artist, error) {
	return getOne[model.Artist](ctx, r.c, "artists", id, repository.ErrArtistNotFound)
}

func (r artistRepo) List(ctx context.Context, f query.ArtistFilter) ([]model.Artist, error) {
	params := url.Values{"order": {orderParam(query.ArtistOrder)}}
	if f.FestivalID != nil {
		params.Set("festival_id", eq(f.FestivalID.String()))
	}
	if f.FestivalIDs != nil {
		if len(f.FestivalIDs) == 0 {
			return []model.Artist{}, nil
		}
		// A second festival_id key combines with the first using AND.
		params.Add("festival_id", inList(f.FestivalIDs))
	}
	return list[model.Artist](ctx, r.c, "artists", params)
}

func (r artistRepo) DeleteByFestival(ctx context.Context, festivalID uuid.UUID) (int64, error) {
	rows, err := remove[model.Artist](ctx, r.c, "artists", url.Values{"festival_id": {eq(festivalID.String())}})
	if err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

type catalogRepo struct{ c *Client }

func (r catalogRepo) Create(ctx context.Context, in model.CatalogEntryCreate) (*model.CatalogEntry, error) {
	return insertOne[model.CatalogEntry](ctx, r.c, "festival_catalog", repository.CatalogFields(uuid.New(), in))
}

// List filters on the server. The API has no trigonometry, so distance
// ordering happens here after the coordinate filter.
func (r catalogRepo) List(ctx context.Context, f query.CatalogFilter) ([]model.CatalogEntry, error) {
	params := url.Values{"order": {orderParam(query.CatalogOrder)}}
	if term := f.NameTerm(); term != "" {
		params.Set("name", ilike(term))
	}
	if f.Near != nil {
		params.Set("latitude", "not.is.null")
		params.Set("longitude", "not.is.null")
	}
	out, err := list[model.CatalogEntry](ctx, r.c, "festival_catalog", params)
	if err != nil {
		return nil, err
	}
	if strings.Contains(f.NameTerm(), "*") {
		kept := out[:0]
		for _, e := range out {
			if f.Match(e) {
				kept = append(kept, e)
			}
		}
		out = kept
	}
	if f.Near != nil {
		query.SortCatalogByDistance(out, *f.Near)
	}
	return out, nil
}

type reviewRepo struct{ c *Client }

func (r reviewRepo) Create(ctx context.Context, in model.ReviewCreate) (*model.Review, error) {
	return insertOne[model.Review](ctx, r.c, "reviews", repository.ReviewFields(uuid.New(), in))
}

func (r reviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	return getOne[model.Review](ctx, r.c, "reviews", id, repository.ErrReviewNotFound)
}

func (r reviewRepo) List(ctx context.Context, f query.ReviewFilter) ([]model.Review, error) {
	params := url.Values{"order": {orderParam(query.ReviewOrder)}}
	if f.FestivalID != nil {
		params.Set("festival_id", eq(f.FestivalID.String()))
	}
	if f.UserID != nil {
		params.Set("user_id", eq(f.UserID.String()))
	}
	return list[model.Review](ctx, r.c, "reviews", params)
}
