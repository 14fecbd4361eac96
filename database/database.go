package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"   // registers "pgx"
	_ "github.com/microsoft/go-mssqldb" // registers "sqlserver"

	"github.com/laropanostra/shopapp/sproc"
)

// Config holds the connection settings of the shop database.
type Config struct {
	// Driver is "sqlserver" or "postgres".
	Driver   string `mapstructure:"driver" validate:"required,oneof=sqlserver postgres"`
	Host     string `mapstructure:"host" validate:"required_without=DSN"`
	Port     int    `mapstructure:"port" validate:"min=0,max=65535"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	// DSN overrides every field above except Driver.
	DSN string `mapstructure:"dsn"`
	// Params are appended to the connection URL, e.g. encrypt=disable.
	Params map[string]string `mapstructure:"params"`

	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"min=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	PingTimeout     time.Duration `mapstructure:"ping_timeout"`
	// QueryTimeout bounds every procedure call. Zero means none.
	QueryTimeout time.Duration `mapstructure:"query_timeout"`
}

const defaultPingTimeout = 5 * time.Second

// Open connects to the configured database, applies the pool options and
// verifies the connection. The returned pool must be closed by the caller.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	driverName, dsn, err := BuildDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err = Ping(ctx, db, cfg.PingTimeout); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}

	return db, nil
}

// Ping checks the pool within timeout; zero selects a default.
func Ping(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return db.PingContext(ctx)
}

// BuildDSN returns the database/sql driver name and connection string for cfg.
func BuildDSN(cfg Config) (driverName string, dsn string, err error) {
	switch cfg.Driver {
	case "sqlserver":
		driverName = "sqlserver"
	case "postgres":
		driverName = "pgx"
	default:
		return "", "", fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}

	if cfg.DSN != "" {
		return driverName, cfg.DSN, nil
	}

	if cfg.Host == "" {
		return "", "", errors.New("database.host is required")
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return "", "", errors.New("database.port is invalid")
	}

	u := &url.URL{Host: cfg.Host}
	if cfg.Port > 0 {
		u.Host = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	}
	if cfg.User != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}

	q := url.Values{}
	for k, v := range cfg.Params {
		q.Set(k, v)
	}

	switch cfg.Driver {
	case "sqlserver":
		u.Scheme = "sqlserver"
		if cfg.Name != "" {
			q.Set("database", cfg.Name)
		}
	case "postgres":
		u.Scheme = "postgres"
		if cfg.Name != "" {
			u.Path = "/" + cfg.Name
		}
	}
	u.RawQuery = q.Encode()

	return driverName, u.String(), nil
}

// NewGateway builds the stored-procedure gateway for db using the dialect of
// cfg.Driver.
func NewGateway(db *sql.DB, cfg Config) (*sproc.Gateway, error) {
	dialect, err := sproc.DialectByName(cfg.Driver)
	if err != nil {
		return nil, err
	}
	return sproc.New(sproc.DBSource{DB: db}, dialect, sproc.WithTimeout(cfg.QueryTimeout)), nil
}
