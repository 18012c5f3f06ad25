// Package lineup imports scraped festival lineups. Each JSON file in the
// input directory describes one festival; its base name is the festival
// slug.
package lineup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/iliyamo/festival-coordinator/internal/model"
)

// Row is one scraped performance. Scrapers disagree on the artist key, so
// artist, Artist, name and Name are all accepted.
type Row struct {
	Artist string `json:"artist"`
	Stage  string `json:"stage,omitempty"`
	Date   string `json:"date,omitempty"`
	Time   string `json:"time,omitempty"`
}

func (r *Row) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		*r = Row{} // not an object; contributes no artist
		return nil
	}
	str := func(keys ...string) string {
		for _, k := range keys {
			var s string
			if v, ok := raw[k]; ok && json.Unmarshal(v, &s) == nil && s != "" {
				return s
			}
		}
		return ""
	}
	*r = Row{
		Artist: strings.TrimSpace(str("artist", "Artist", "name", "Name")),
		Stage:  str("stage", "Stage"),
		Date:   str("date", "Date"),
		Time:   str("time", "Time"),
	}
	return nil
}

// Known describes a festival the importer has curated details for.
type Known struct {
	Name       string
	Location   string
	DatesStart model.Date
	DatesEnd   model.Date
}

// KnownFestivals maps file slugs to curated festival details.
var KnownFestivals = map[string]Known{
	"coachella-2026": {
		Name:       "Coachella 2026",
		Location:   "Indio, CA",
		DatesStart: model.NewDate(2026, time.April, 10),
		DatesEnd:   model.NewDate(2026, time.April, 19),
	},
	"tomorrowland-2026": {
		Name:       "Tomorrowland 2026",
		Location:   "Boom, Belgium",
		DatesStart: model.NewDate(2026, time.July, 17),
		DatesEnd:   model.NewDate(2026, time.July, 26),
	},
	"edc_lineup_2026": {
		Name:       "EDC Las Vegas 2026",
		Location:   "Las Vegas, NV",
		DatesStart: model.NewDate(2026, time.May, 15),
		DatesEnd:   model.NewDate(2026, time.May, 17),
	},
}

// FestivalName returns the curated name for slug, or the slug title-cased
// with dashes and underscores turned into spaces.
func FestivalName(slug string) string {
	if k, ok := KnownFestivals[slug]; ok {
		return k.Name
	}
	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// ArtistNames returns the distinct non-blank artist names in order of first
// appearance.
func ArtistNames(rows []Row) []string {
	seen := make(map[string]struct{}, len(rows))
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.Artist == "" {
			continue
		}
		if _, dup := seen[r.Artist]; dup {
			continue
		}
		seen[r.Artist] = struct{}{}
		out = append(out, r.Artist)
	}
	return out
}

// File is a lineup file selected for import.
type File struct {
	Slug string
	Path string
}

// ListFiles returns the .json files in dir sorted by name. When only is
// non-empty, files whose slug is not listed are skipped.
func ListFiles(dir string, only []string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", dir, err)
	}
	want := make(map[string]bool, len(only))
	for _, s := range only {
		want[s] = true
	}
	var files []File
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		slug := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if len(want) > 0 && !want[slug] {
			continue
		}
		files = append(files, File{Slug: slug, Path: filepath.Join(dir, e.Name())})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// ReadRows decodes a lineup file. The document must be a JSON array.
func ReadRows(path string) ([]Row, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !model.RawJSON(raw).IsListOrObject() || strings.TrimSpace(string(raw))[0] != '[' {
		return nil, fmt.Errorf("expected array JSON in %s", path)
	}
	var rows []Row
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("could not decode %s: %w", path, err)
	}
	return rows, nil
}
