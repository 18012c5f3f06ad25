package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverFor(t *testing.T) {
	assert.Equal(t, DriverPostgres, DriverFor("postgres://u:p@localhost:5432/fest?sslmode=disable"))
	assert.Equal(t, DriverPostgres, DriverFor("postgresql://localhost/fest"))
	assert.Equal(t, DriverMySQL, DriverFor("root:secret@tcp(localhost:3306)/fest"))
}

func TestNormalizeMySQL(t *testing.T) {
	dsn, err := normalizeMySQL(MySQLDSN("root", "secret", "db", "3306", "festivals"))
	require.NoError(t, err)
	assert.Contains(t, dsn, "root:secret@tcp(db:3306)/festivals")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "multiStatements=true")
	assert.Contains(t, dsn, "charset=utf8mb4")

	_, err = normalizeMySQL("not a dsn")
	assert.Error(t, err)
}

func TestEmbeddedMigrations(t *testing.T) {
	for _, driver := range []string{DriverMySQL, DriverPostgres} {
		up, err := migrations.ReadFile("migrations/" + driver + "/000001_init.up.sql")
		require.NoError(t, err)
		assert.Contains(t, string(up), "ON DELETE CASCADE")
		_, err = migrations.ReadFile("migrations/" + driver + "/000001_init.down.sql")
		require.NoError(t, err)
	}
}
