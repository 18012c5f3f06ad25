package repository

import (
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/festival-coordinator/internal/model"
)

// Field is one column assignment of an insert or update.
type Field struct {
	Column string
	Value  any
}

// Fields is an ordered column list. Nil pointers are skipped by Set so
// that storage defaults apply.
type Fields []Field

func (f *Fields) Set(column string, v any) {
	if isNil(v) {
		return
	}
	*f = append(*f, Field{Column: column, Value: v})
}

func (f Fields) Columns() []string {
	cols := make([]string, len(f))
	for i, fd := range f {
		cols[i] = fd.Column
	}
	return cols
}

func (f Fields) Values() []any {
	vals := make([]any, len(f))
	for i, fd := range f {
		vals[i] = fd.Value
	}
	return vals
}

// Map renders the fields as a JSON object body.
func (f Fields) Map() map[string]any {
	m := make(map[string]any, len(f))
	for _, fd := range f {
		m[fd.Column] = fd.Value
	}
	return m
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map:
		return rv.IsNil()
	}
	return false
}

// The *Fields helpers translate create and update shapes into column
// lists. Identifiers are generated here so every backend assigns them the
// same way.

func GroupFields(id uuid.UUID, in model.GroupCreate) Fields {
	var f Fields
	f.Set("id", id)
	f.Set("name", in.Name)
	f.Set("description", in.Description)
	return f
}

func MemberFields(id uuid.UUID, in model.MemberCreate) Fields {
	var f Fields
	f.Set("id", id)
	f.Set("group_id", in.GroupID)
	f.Set("name", in.Name)
	f.Set("city", in.City)
	f.Set("phone", in.Phone)
	f.Set("status", model.MemberActive)
	return f
}

func MemberUpdateFields(in model.MemberUpdate) Fields {
	var f Fields
	f.Set("name", in.Name)
	f.Set("city", in.City)
	f.Set("phone", in.Phone)
	f.Set("status", in.Status)
	return f
}

func CallFields(id uuid.UUID, in model.CallCreate) Fields {
	var f Fields
	f.Set("id", id)
	f.Set("group_id", in.GroupID)
	if in.StartedAt != nil {
		f.Set("started_at", in.StartedAt.UTC())
	}
	f.Set("summary", in.Summary)
	if len(in.Transcript) > 0 {
		f.Set("transcript", in.Transcript)
	}
	f.Set("from_number", in.FromNumber)
	return f
}

// CallEndFields stamps ended_at with now.
func CallEndFields(in model.CallEnd, now time.Time) Fields {
	var f Fields
	f.Set("ended_at", now.UTC())
	f.Set("summary", in.Summary)
	if len(in.Transcript) > 0 {
		f.Set("transcript", in.Transcript)
	}
	return f
}

func FestivalFields(id uuid.UUID, in model.FestivalCreate) Fields {
	var f Fields
	f.Set("id", id)
	f.Set("group_id", in.GroupID)
	f.Set("name", in.Name)
	f.Set("location", in.Location)
	f.Set("dates_start", in.DatesStart)
	f.Set("dates_end", in.DatesEnd)
	f.Set("ticket_price", in.TicketPrice)
	f.Set("on_sale_date", in.OnSaleDate)
	f.Set("status", in.Status)
	f.Set("latitude", in.Latitude)
	f.Set("longitude", in.Longitude)
	return f
}

func FestivalUpdateFields(in model.FestivalUpdate) Fields {
	var f Fields
	f.Set("location", in.Location)
	f.Set("dates_start", in.DatesStart)
	f.Set("dates_end", in.DatesEnd)
	f.Set("status", in.Status)
	return f
}

func ArtistFields(id uuid.UUID, in model.ArtistCreate) Fields {
	var f Fields
	f.Set("id", id)
	f.Set("festival_id", in.FestivalID)
	f.Set("name", in.Name)
	f.Set("priority", in.Priority)
	return f
}

func CatalogFields(id uuid.UUID, in model.CatalogEntryCreate) Fields {
	var f Fields
	f.Set("id", id)
	f.Set("name", in.Name)
	f.Set("location", in.Location)
	f.Set("dates_start", in.DatesStart)
	f.Set("dates_end", in.DatesEnd)
	f.Set("ticket_price", in.TicketPrice)
	f.Set("on_sale_date", in.OnSaleDate)
	f.Set("latitude", in.Latitude)
	f.Set("longitude", in.Longitude)
	return f
}

func ReviewFields(id uuid.UUID, in model.ReviewCreate) Fields {
	var f Fields
	f.Set("id", id)
	f.Set("user_id", in.UserID)
	f.Set("festival_id", in.FestivalID)
	f.Set("stars", in.Stars)
	f.Set("text", in.Text)
	return f
}
