package lineup

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/festival-coordinator/internal/model"
	"github.com/iliyamo/festival-coordinator/internal/query"
	"github.com/iliyamo/festival-coordinator/internal/repository"
	"github.com/iliyamo/festival-coordinator/internal/validation"
)

// DefaultGroupName owns imported festivals when no group is given.
const DefaultGroupName = "Stagehand Imports"

// Options controls one import run.
type Options struct {
	InputDir  string
	GroupID   *uuid.UUID
	GroupName string
	Status    model.FestivalStatus
	Festivals []string
	DryRun    bool
}

// Result reports what happened to one lineup file. FestivalID is the nil
// UUID on a dry run.
type Result struct {
	Slug       string
	Festival   string
	FestivalID uuid.UUID
	Artists    int
}

// Importer syncs lineup files into a group's festivals.
type Importer struct {
	gw       repository.Gateway
	validate *validation.Validator
	log      *logrus.Entry
	onWrite  func(context.Context) error
}

func NewImporter(gw repository.Gateway, log *logrus.Entry) *Importer {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Importer{gw: gw, validate: validation.New(), log: log.WithField("component", "lineup")}
}

// OnWrite registers a callback run once a non-dry run has written,
// including runs that stop part way. A failing callback is logged.
func (im *Importer) OnWrite(fn func(context.Context) error) *Importer {
	im.onWrite = fn
	return im
}

func (im *Importer) changed(ctx context.Context) {
	if im.onWrite == nil {
		return
	}
	if err := im.onWrite(ctx); err != nil {
		im.log.WithError(err).Warn("write hook failed")
	}
}

// Run imports every selected file. Each file is synced in its own unit of
// work: the festival is upserted by name within the group and its artists
// are replaced by the file's distinct artists at want_to_see.
func (im *Importer) Run(ctx context.Context, opts Options) ([]Result, error) {
	if opts.GroupName == "" {
		opts.GroupName = DefaultGroupName
	}
	if opts.Status == "" {
		opts.Status = model.FestivalConsidering
	}
	if !opts.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown festival status %q", repository.ErrInvalidInput, opts.Status)
	}

	files, err := ListFiles(opts.InputDir, opts.Festivals)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no JSON files found to sync in %s", opts.InputDir)
	}

	var groupID uuid.UUID
	if !opts.DryRun {
		if groupID, err = im.resolveGroup(ctx, opts); err != nil {
			return nil, err
		}
		defer im.changed(ctx)
	}

	results := make([]Result, 0, len(files))
	for _, f := range files {
		rows, err := ReadRows(f.Path)
		if err != nil {
			return results, err
		}
		res := Result{Slug: f.Slug, Festival: FestivalName(f.Slug)}
		names := ArtistNames(rows)
		if opts.DryRun {
			res.Artists = len(names)
			im.log.WithFields(logrus.Fields{"slug": f.Slug, "festival": res.Festival, "artists": res.Artists}).Info("dry run")
			results = append(results, res)
			continue
		}

		err = im.gw.WithSession(ctx, func(ctx context.Context, tx repository.Session) error {
			id, err := im.upsertFestival(ctx, tx, groupID, f.Slug, opts.Status)
			if err != nil {
				return err
			}
			res.FestivalID = id
			res.Artists, err = im.replaceArtists(ctx, tx, id, names)
			return err
		})
		if err != nil {
			return results, fmt.Errorf("could not sync %s: %w", f.Slug, err)
		}
		im.log.WithFields(logrus.Fields{"slug": f.Slug, "festival_id": res.FestivalID, "artists": res.Artists}).Info("festival synced")
		results = append(results, res)
	}
	return results, nil
}

// resolveGroup checks an explicit group id, or finds the group by name and
// creates it when missing.
func (im *Importer) resolveGroup(ctx context.Context, opts Options) (uuid.UUID, error) {
	var id uuid.UUID
	err := im.gw.WithSession(ctx, func(ctx context.Context, tx repository.Session) error {
		if opts.GroupID != nil {
			g, err := tx.Groups().GetByID(ctx, *opts.GroupID)
			if err != nil {
				return err
			}
			id = g.ID
			return nil
		}
		groups, err := tx.Groups().List(ctx, query.GroupFilter{Name: &opts.GroupName})
		if err != nil {
			return err
		}
		if len(groups) > 0 {
			id = groups[0].ID
			return nil
		}
		g, err := tx.Groups().Create(ctx, model.GroupCreate{Name: &opts.GroupName})
		if err != nil {
			return fmt.Errorf("could not create group %q: %w", opts.GroupName, err)
		}
		im.log.WithField("group_id", g.ID).Info("import group created")
		id = g.ID
		return nil
	})
	return id, err
}

func (im *Importer) upsertFestival(ctx context.Context, tx repository.Session, groupID uuid.UUID, slug string, status model.FestivalStatus) (uuid.UUID, error) {
	name := FestivalName(slug)
	known, curated := KnownFestivals[slug]

	existing, err := tx.Festivals().List(ctx, query.FestivalFilter{GroupID: &groupID, Name: &name})
	if err != nil {
		return uuid.Nil, err
	}
	if len(existing) > 0 {
		upd := model.FestivalUpdate{Status: &status}
		if curated {
			upd.Location, upd.DatesStart, upd.DatesEnd = &known.Location, &known.DatesStart, &known.DatesEnd
		}
		f, err := tx.Festivals().Update(ctx, existing[0].ID, upd)
		if err != nil {
			return uuid.Nil, err
		}
		return f.ID, nil
	}

	in := model.FestivalCreate{GroupID: groupID, Name: name, Status: status}
	if curated {
		in.Location, in.DatesStart, in.DatesEnd = &known.Location, &known.DatesStart, &known.DatesEnd
	}
	in.Normalize()
	if err := im.validate.Validate(in); err != nil {
		return uuid.Nil, err
	}
	f, err := tx.Festivals().Create(ctx, in)
	if err != nil {
		return uuid.Nil, err
	}
	return f.ID, nil
}

func (im *Importer) replaceArtists(ctx context.Context, tx repository.Session, festivalID uuid.UUID, names []string) (int, error) {
	removed, err := tx.Artists().DeleteByFestival(ctx, festivalID)
	if err != nil {
		return 0, err
	}
	im.log.WithFields(logrus.Fields{"festival_id": festivalID, "removed": removed}).Debug("artists cleared")
	for _, name := range names {
		if _, err := tx.Artists().Create(ctx, model.ArtistCreate{
			FestivalID: festivalID,
			Name:       name,
			Priority:   model.PriorityWantToSee,
		}); err != nil {
			return 0, fmt.Errorf("could not add artist %q: %w", name, err)
		}
	}
	return len(names), nil
}
