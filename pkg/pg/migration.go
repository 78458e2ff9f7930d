package pg

import (
	"embed"
	"path"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/nimasrn/order-import/pkg/logger"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

//go:embed migrations
var migrations embed.FS

var gooseDialects = map[string]string{
	DriverPostgres: "postgres",
	DriverMySQL:    "mysql",
	DriverSQLite:   "sqlite3",
}

// Migrate applies the embedded migrations of the configured driver.
func Migrate(cfg Config) error {
	dialect, ok := gooseDialects[cfg.Driver]
	if !ok {
		return errors.Wrapf(ErrUnknownDriver, "driver %q", cfg.Driver)
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(logger.GetLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}

	db, err := newSqlConnection(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err = goose.Up(db, path.Join("migrations", cfg.Driver)); err != nil {
		return errors.Wrap(err, "migration")
	}

	return nil
}
