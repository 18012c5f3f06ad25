package sqlstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"

	"github.com/iliyamo/festival-coordinator/internal/repository"
)

type dialect int

const (
	dialectMySQL dialect = iota
	dialectPostgres
)

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case "mysql":
		return dialectMySQL, nil
	case "postgres", "pgx":
		return dialectPostgres, nil
	}
	return 0, fmt.Errorf("sqlstore: unsupported driver %q", driver)
}

// table quotes a table name. "groups" is reserved in MySQL 8.
func (d dialect) table(name string) string {
	if d == dialectMySQL {
		return "`" + name + "`"
	}
	return `"` + name + `"`
}

// MySQL error numbers that map onto repository sentinels.
const (
	mysqlDupEntry          = 1062
	mysqlRowIsReferenced   = 1451
	mysqlNoReferencedRow   = 1452
	mysqlRowIsReferenced2  = 1217
	mysqlNoReferencedRow2  = 1216
	mysqlTruncatedWrongVal = 1292
	mysqlIncorrectValue    = 1366
	mysqlInvalidJSON       = 3140
	mysqlCheckViolated     = 3819
)

// mapError translates driver errors into repository sentinels. Anything it
// does not recognise is returned unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlDupEntry, mysqlRowIsReferenced, mysqlNoReferencedRow, mysqlRowIsReferenced2, mysqlNoReferencedRow2, mysqlCheckViolated:
			return repository.Constraint(me.Message)
		case mysqlTruncatedWrongVal, mysqlIncorrectValue, mysqlInvalidJSON:
			return repository.InvalidInput(me.Message)
		}
		return err
	}
	var pe *pq.Error
	if errors.As(err, &pe) {
		switch pe.Code.Class() {
		case "23":
			return repository.Constraint(pe.Message)
		case "22":
			return repository.InvalidInput(pe.Message)
		}
	}
	return err
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
