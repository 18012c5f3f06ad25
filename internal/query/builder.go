package query

import "strings"

// Builder accumulates WHERE conditions and their arguments using '?'
// placeholders. Callers rebind the final statement for their driver.
type Builder struct {
	where     []string
	args      []any
	order     string
	orderArgs []any
}

// Where adds a raw condition.
func (b *Builder) Where(cond string, args ...any) *Builder {
	b.where = append(b.where, cond)
	b.args = append(b.args, args...)
	return b
}

// Eq adds an equality predicate.
func (b *Builder) Eq(column string, v any) *Builder {
	return b.Where(column+" = ?", v)
}

// Contains adds a case-insensitive substring predicate. LIKE wildcards in
// term are matched literally.
func (b *Builder) Contains(column, term string) *Builder {
	return b.Where("LOWER("+column+") LIKE ?", "%"+EscapeLike(strings.ToLower(term))+"%")
}

// NotNull requires every column to be non-null.
func (b *Builder) NotNull(columns ...string) *Builder {
	for _, c := range columns {
		b.Where(c + " IS NOT NULL")
	}
	return b
}

// OrderBy sets the ORDER BY clause.
func (b *Builder) OrderBy(expr string, args ...any) *Builder {
	b.order = expr
	b.orderArgs = args
	return b
}

// Cond renders the WHERE body ("1=1" when empty).
func (b *Builder) Cond() string {
	if len(b.where) == 0 {
		return "1=1"
	}
	return strings.Join(b.where, " AND ")
}

// Select renders a complete SELECT statement and its arguments.
func (b *Builder) Select(columns, table string) (string, []any) {
	q := "SELECT " + columns + " FROM " + table + " WHERE " + b.Cond()
	args := append([]any{}, b.args...)
	if b.order != "" {
		q += " ORDER BY " + b.order
		args = append(args, b.orderArgs...)
	}
	return q, args
}

// EscapeLike escapes the LIKE wildcards and the escape character itself.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
