// Package query composes the filters and orderings used to list entities.
// The same filter values drive the SQL builder, the data-API parameters and
// the in-memory predicates, so every backend returns rows in the same order.
package query

import (
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/festival-coordinator/internal/model"
)

// GroupFilter narrows group listings. Name is an exact match.
type GroupFilter struct {
	Name *string
}

func (f GroupFilter) Match(g model.Group) bool {
	if f.Name != nil && (g.Name == nil || *g.Name != *f.Name) {
		return false
	}
	return true
}

// MemberFilter narrows member listings. Phone is the caller-identity lookup.
type MemberFilter struct {
	GroupID *uuid.UUID
	Phone   *string
}

func (f MemberFilter) Match(m model.Member) bool {
	if f.GroupID != nil && !sameID(m.GroupID, *f.GroupID) {
		return false
	}
	if f.Phone != nil && (m.Phone == nil || *m.Phone != *f.Phone) {
		return false
	}
	return true
}

// CallFilter narrows call listings. Limit <= 0 means no limit.
type CallFilter struct {
	GroupID *uuid.UUID
	Limit   int
}

func (f CallFilter) Match(c model.Call) bool {
	return f.GroupID == nil || sameID(c.GroupID, *f.GroupID)
}

// FestivalFilter narrows a group's festivals. Name is an exact match.
type FestivalFilter struct {
	GroupID *uuid.UUID
	Name    *string
}

func (f FestivalFilter) Match(fe model.Festival) bool {
	if f.GroupID != nil && !sameID(fe.GroupID, *f.GroupID) {
		return false
	}
	if f.Name != nil && fe.Name != *f.Name {
		return false
	}
	return true
}

// ArtistFilter narrows artist listings to one festival or a set of them.
type ArtistFilter struct {
	FestivalID  *uuid.UUID
	FestivalIDs []uuid.UUID
}

func (f ArtistFilter) Match(a model.Artist) bool {
	if f.FestivalID != nil && !sameID(a.FestivalID, *f.FestivalID) {
		return false
	}
	if f.FestivalIDs != nil {
		if a.FestivalID == nil {
			return false
		}
		for _, id := range f.FestivalIDs {
			if id == *a.FestivalID {
				return true
			}
		}
		return false
	}
	return true
}

// CatalogFilter drives the catalog search: a case-insensitive substring
// match on name and an optional proximity ordering.
type CatalogFilter struct {
	Name string
	Near *GeoPoint
}

// NameTerm is the trimmed search term; empty means no name filter.
func (f CatalogFilter) NameTerm() string { return strings.TrimSpace(f.Name) }

func (f CatalogFilter) Match(e model.CatalogEntry) bool {
	if term := f.NameTerm(); term != "" && !strings.Contains(strings.ToLower(e.Name), strings.ToLower(term)) {
		return false
	}
	if f.Near != nil && (e.Latitude == nil || e.Longitude == nil) {
		return false
	}
	return true
}

// ReviewFilter narrows review listings.
type ReviewFilter struct {
	FestivalID *uuid.UUID
	UserID     *uuid.UUID
}

func (f ReviewFilter) Match(r model.Review) bool {
	if f.FestivalID != nil && r.FestivalID != *f.FestivalID {
		return false
	}
	if f.UserID != nil && r.UserID != *f.UserID {
		return false
	}
	return true
}

func sameID(have *uuid.UUID, want uuid.UUID) bool {
	return have != nil && *have == want
}
