package sproc

import (
	"context"
	"database/sql"
)

// Rows is the cursor over a procedure's result sets. *sql.Rows implements it.
type Rows interface {
	Columns() ([]string, error)
	Next() bool
	Scan(dest ...any) error
	Err() error
	NextResultSet() bool
	Close() error
}

// Conn is a single checked-out database connection.
type Conn interface {
	QueryContext(ctx context.Context, query string, args ...any) (Rows, error)
	Close() error
}

// ConnSource hands out connections. Every Conn it returns is closed by the
// caller exactly once.
type ConnSource interface {
	Conn(ctx context.Context) (Conn, error)
}

// DBSource adapts a *sql.DB pool to ConnSource.
type DBSource struct {
	DB *sql.DB
}

// Conn checks out a dedicated connection from the pool.
func (s DBSource) Conn(ctx context.Context) (Conn, error) {
	c, err := s.DB.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return sqlConn{c: c}, nil
}

type sqlConn struct {
	c *sql.Conn
}

func (s sqlConn) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := s.c.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s sqlConn) Close() error {
	return s.c.Close()
}
