package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Driver names understood by Open.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// DriverFor picks the driver from a connection string: postgres:// and
// postgresql:// URLs select PostgreSQL, anything else is a MySQL DSN.
func DriverFor(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return DriverPostgres
	}
	return DriverMySQL
}

// MySQLDSN builds a DSN from discrete settings.
func MySQLDSN(user, pass, host, port, name string) string {
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = pass
	cfg.Net = "tcp"
	cfg.Addr = host + ":" + port
	cfg.DBName = name
	return cfg.FormatDSN()
}

// normalizeMySQL forces the options the stores rely on: DATETIME scanned
// into time.Time in UTC, utf8mb4, and multi-statement migration files.
func normalizeMySQL(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.MultiStatements = true
	if cfg.Params == nil {
		cfg.Params = map[string]string{}
	}
	if _, ok := cfg.Params["charset"]; !ok {
		cfg.Params["charset"] = "utf8mb4"
	}
	return cfg.FormatDSN(), nil
}

// Open connects and verifies the connection.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	driver := DriverFor(dsn)
	if driver == DriverMySQL {
		var err error
		if dsn, err = normalizeMySQL(dsn); err != nil {
			return nil, err
		}
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("could not reach %s: %w", driver, err)
	}
	return db, nil
}
