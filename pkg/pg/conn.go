package pg

import (
	"database/sql"
	"fmt"
	"net"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

var ErrUnknownDriver = errors.New("unknown database driver")

// Config describes one database. For sqlite only Database is used, as the
// path of the database file.
type Config struct {
	Driver   string `env:"DRIVER"`
	User     string `env:"USER"`
	Host     string `env:"HOST"`
	Port     string `env:"PORT"`
	Password string `env:"PASSWORD"`
	Database string `env:"DBNAME"`
}

func (c Config) DSN() (string, error) {
	switch c.Driver {
	case DriverPostgres:
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable", c.Host, c.User, c.Password, c.Database, c.Port), nil
	case DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = c.User
		mc.Passwd = c.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(c.Host, c.Port)
		mc.DBName = c.Database
		mc.ParseTime = true
		return mc.FormatDSN(), nil
	case DriverSQLite:
		return c.Database + "?_foreign_keys=on", nil
	}
	return "", errors.Wrapf(ErrUnknownDriver, "driver %q", c.Driver)
}

// sqlDriverName is the database/sql driver registered for each dialect.
func (c Config) sqlDriverName() (string, error) {
	switch c.Driver {
	case DriverPostgres:
		return "postgres", nil
	case DriverMySQL:
		return "mysql", nil
	case DriverSQLite:
		return "sqlite3", nil
	}
	return "", errors.Wrapf(ErrUnknownDriver, "driver %q", c.Driver)
}

func newSqlConnection(config Config) (*sql.DB, error) {
	name, err := config.sqlDriverName()
	if err != nil {
		return nil, err
	}
	dsn, err := config.DSN()
	if err != nil {
		return nil, err
	}
	return sql.Open(name, dsn)
}
