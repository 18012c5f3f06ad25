package query

import (
	"sort"
	"strings"

	"github.com/iliyamo/festival-coordinator/internal/model"
)

// Order is one ORDER BY term.
type Order struct {
	Column    string
	Desc      bool
	NullsLast bool
}

// Default orderings per entity.
var (
	GroupOrder    = []Order{{Column: "created_at", Desc: true}}
	MemberOrder   = []Order{{Column: "name"}}
	CallOrder     = []Order{{Column: "started_at", Desc: true}}
	FestivalOrder = []Order{{Column: "dates_start", NullsLast: true}}
	ArtistOrder   = []Order{{Column: "name"}}
	CatalogOrder  = []Order{{Column: "dates_start", NullsLast: true}}
	ReviewOrder   = []Order{{Column: "created_at", Desc: true}}
)

// SQL renders the terms portably. NULLS LAST is spelled as an IS NULL key
// because MySQL does not support the keyword.
func SQL(orders []Order) string {
	parts := make([]string, 0, len(orders)*2)
	for _, o := range orders {
		if o.NullsLast {
			parts = append(parts, o.Column+" IS NULL")
		}
		dir := " ASC"
		if o.Desc {
			dir = " DESC"
		}
		parts = append(parts, o.Column+dir)
	}
	return strings.Join(parts, ", ")
}

// SortGroups orders groups newest first.
func SortGroups(groups []model.Group) {
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].CreatedAt.After(groups[j].CreatedAt)
	})
}

// SortCalls orders calls most recently started first.
func SortCalls(calls []model.Call) {
	sort.SliceStable(calls, func(i, j int) bool {
		return calls[i].StartedAt.After(calls[j].StartedAt)
	})
}

// SortFestivals orders festivals by start date, undated ones last.
func SortFestivals(festivals []model.Festival) {
	sort.SliceStable(festivals, func(i, j int) bool {
		return dateBefore(festivals[i].DatesStart, festivals[j].DatesStart)
	})
}

// SortCatalog orders catalog entries by start date, undated ones last.
func SortCatalog(entries []model.CatalogEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return dateBefore(entries[i].DatesStart, entries[j].DatesStart)
	})
}

// SortArtists orders artists by name.
func SortArtists(artists []model.Artist) {
	sort.SliceStable(artists, func(i, j int) bool {
		return artists[i].Name < artists[j].Name
	})
}

// SortReviews orders reviews newest first.
func SortReviews(reviews []model.Review) {
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
}

func dateBefore(a, b *model.Date) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	}
	return a.Before(b.Time)
}
