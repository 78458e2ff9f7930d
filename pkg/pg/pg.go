package pg

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

type txContextKey string

const txKey txContextKey = "trx"

// DB is the single connection a run works with. Repositories embed it and
// pick up the transaction stored in the context by WithinTransaction.
type DB struct {
	conn *gorm.DB
}

func New(conn *gorm.DB) *DB {
	return &DB{conn: conn}
}

func Create(config Config, withDebug bool) (*gorm.DB, error) {
	dsn, err := config.DSN()
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch config.Driver {
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	case DriverMySQL:
		dialector = mysql.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", config.Driver)
	}

	if withDebug {
		db = db.Debug()
	}
	return db, nil
}

func Open(config Config, withDebug bool) (*DB, error) {
	conn, err := Create(config, withDebug)
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

func (r *DB) Close() error {
	sqlDB, err := r.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Dialect is the gorm dialector name: "postgres", "mysql" or "sqlite".
func (r *DB) Dialect() string {
	return r.conn.Dialector.Name()
}

func (r *DB) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return fn(ctx)
	}
	return r.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ctx = context.WithValue(ctx, txKey, tx)
		return fn(ctx)
	})
}

func (r *DB) Write(ctx context.Context) *gorm.DB {
	tx, ok := ctx.Value(txKey).(*gorm.DB)
	if ok {
		return tx
	}

	return r.conn.WithContext(ctx)
}

func (r *DB) Read(ctx context.Context) *gorm.DB {
	tx, ok := ctx.Value(txKey).(*gorm.DB)
	if ok {
		return tx
	}

	return r.conn.WithContext(ctx)
}

// ResetIdentity makes the next generated id of table equal to 1. The table
// is expected to be empty.
func (r *DB) ResetIdentity(ctx context.Context, table string) error {
	db := r.Write(ctx)

	var err error
	switch r.Dialect() {
	case "postgres":
		err = db.Exec("ALTER TABLE ? ALTER COLUMN id RESTART WITH 1", clause.Table{Name: table}).Error
	case "mysql":
		err = db.Exec("ALTER TABLE ? AUTO_INCREMENT = 1", clause.Table{Name: table}).Error
	case "sqlite":
		err = db.Exec("DELETE FROM sqlite_sequence WHERE name = ?", table).Error
	default:
		err = errors.Wrapf(ErrUnknownDriver, "dialect %q", r.Dialect())
	}
	if err != nil {
		return errors.Wrapf(err, "reset identity of %s", table)
	}
	return nil
}
