package database

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrations embed.FS

// Direction selects which way Migrate moves the schema.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Migrate applies the embedded schema for the dialect of dsn. It opens and
// closes its own connection, so it is safe to call before the serving pool
// exists.
func Migrate(ctx context.Context, dsn string, dir Direction) error {
	db, err := Open(ctx, dsn)
	if err != nil {
		return err
	}
	driver := DriverFor(dsn)
	src, err := iofs.New(migrations, "migrations/"+driver)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("could not load migrations: %w", err)
	}

	var target migratedb.Driver
	switch driver {
	case DriverPostgres:
		target, err = migratepg.WithInstance(db.DB, &migratepg.Config{})
	default:
		target, err = migratemysql.WithInstance(db.DB, &migratemysql.Config{})
	}
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("could not prepare %s migrations: %w", driver, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driver, target)
	if err != nil {
		_ = db.Close()
		return err
	}
	// Closing m closes the source and the database handle.
	defer m.Close()

	switch dir {
	case Up:
		err = m.Up()
	case Down:
		err = m.Down()
	default:
		return fmt.Errorf("unknown migration direction %q", dir)
	}
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
