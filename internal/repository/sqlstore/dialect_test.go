package sqlstore

import (
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/festival-coordinator/internal/repository"
)

func TestMapError(t *testing.T) {
	assert.ErrorIs(t, mapError(&mysql.MySQLError{Number: 1452, Message: "fk"}), repository.ErrConstraint)
	assert.ErrorIs(t, mapError(&mysql.MySQLError{Number: 3819, Message: "check"}), repository.ErrConstraint)
	assert.ErrorIs(t, mapError(&mysql.MySQLError{Number: 1366, Message: "bad value"}), repository.ErrInvalidInput)
	assert.ErrorIs(t, mapError(&pq.Error{Code: "23503", Message: "fk"}), repository.ErrConstraint)
	assert.ErrorIs(t, mapError(&pq.Error{Code: "22P02", Message: "bad uuid"}), repository.ErrInvalidInput)

	other := errors.New("connection reset")
	assert.Equal(t, other, mapError(other))
	assert.NoError(t, mapError(nil))
}

func TestDialect(t *testing.T) {
	d, err := dialectFor("mysql")
	assert.NoError(t, err)
	assert.Equal(t, "`groups`", d.table("groups"))

	d, err = dialectFor("postgres")
	assert.NoError(t, err)
	assert.Equal(t, `"groups"`, d.table("groups"))

	_, err = dialectFor("sqlite3")
	assert.Error(t, err)
	assert.Equal(t, "?, ?, ?", placeholders(3))
}
