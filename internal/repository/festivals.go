package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/iliyamo/festival-coordinator/internal/model"
	"github.com/iliyamo/festival-coordinator/internal/query"
)

// FestivalsWithArtists lists festivals and attaches each festival's own
// artists. Artists are fetched with one query for the whole page.
func FestivalsWithArtists(ctx context.Context, s Session, f query.FestivalFilter) ([]model.FestivalWithArtists, error) {
	festivals, err := s.Festivals().List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]model.FestivalWithArtists, 0, len(festivals))
	if len(festivals) == 0 {
		return out, nil
	}
	ids := make([]uuid.UUID, len(festivals))
	for i, fe := range festivals {
		ids[i] = fe.ID
	}
	artists, err := s.Artists().List(ctx, query.ArtistFilter{FestivalIDs: ids})
	if err != nil {
		return nil, err
	}
	byFestival := make(map[uuid.UUID][]model.Artist, len(festivals))
	for _, a := range artists {
		if a.FestivalID != nil {
			byFestival[*a.FestivalID] = append(byFestival[*a.FestivalID], a)
		}
	}
	for _, fe := range festivals {
		own := byFestival[fe.ID]
		if own == nil {
			own = []model.Artist{}
		}
		out = append(out, model.FestivalWithArtists{Festival: fe, Artists: own})
	}
	return out, nil
}
