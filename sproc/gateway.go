package sproc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/laropanostra/shopapp"
)

// Gateway executes stored procedures. It holds no mutable state and is safe
// for concurrent use.
type Gateway struct {
	source  ConnSource
	dialect Dialect
	timeout time.Duration
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithTimeout bounds every call. Zero or negative means no bound beyond the
// caller's context.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.timeout = d
	}
}

// New creates a Gateway over source using dialect to build statements.
func New(source ConnSource, dialect Dialect, opts ...Option) *Gateway {
	g := &Gateway{source: source, dialect: dialect}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Dialect returns the dialect the gateway was built with.
func (g *Gateway) Dialect() Dialect {
	return g.dialect
}

// Execute runs procedure and returns its first result set. It returns nil
// when the procedure produced no result set at all.
func (g *Gateway) Execute(ctx context.Context, procedure string, params shopapp.Params) (shopapp.ResultSet, error) {
	sets, err := g.run(ctx, procedure, params)
	if err != nil {
		return nil, fmt.Errorf("execute %s: %w", procedure, err)
	}
	if len(sets) == 0 {
		return nil, nil
	}
	return sets[0], nil
}

// ExecuteMulti runs procedure and returns all its result sets in the order
// the database produced them.
func (g *Gateway) ExecuteMulti(ctx context.Context, procedure string, params shopapp.Params) ([]shopapp.ResultSet, error) {
	sets, err := g.run(ctx, procedure, params)
	if err != nil {
		return nil, fmt.Errorf("execute multi %s: %w", procedure, err)
	}
	return sets, nil
}

func (g *Gateway) run(ctx context.Context, procedure string, params shopapp.Params) ([]shopapp.ResultSet, error) {
	if !shopapp.IsValidProcedureName(procedure) {
		return nil, fmt.Errorf("%w: invalid procedure name", shopapp.ErrInvalidInput)
	}

	bound := shopapp.StripCacheParams(params)
	if err := bound.Validate(); err != nil {
		return nil, err
	}

	query, args, err := g.dialect.Statement(procedure, bound)
	if err != nil {
		return nil, err
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	sets, err := g.query(ctx, query, args)
	if err != nil {
		slog.ErrorContext(ctx, "stored procedure failed",
			"procedure", procedure,
			"dialect", g.dialect.Name(),
			"err", err,
		)
		return nil, err
	}

	return sets, nil
}

func (g *Gateway) query(ctx context.Context, query string, args []any) (sets []shopapp.ResultSet, err error) {
	conn, err := g.source.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			slog.Warn("failed to release connection", "err", closeErr)
		}
	}()

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
			sets = nil
		}
	}()

	sets, err = collectResultSets(rows)
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	return sets, nil
}

// collectResultSets reads every result set of rows. A set without columns
// cannot carry rows and is skipped; a procedure that only modifies data
// therefore yields no sets.
func collectResultSets(rows Rows) ([]shopapp.ResultSet, error) {
	var sets []shopapp.ResultSet

	for {
		cols, err := rows.Columns()
		if err != nil {
			return nil, err
		}

		set := make(shopapp.ResultSet, 0)
		for rows.Next() {
			values := make([]any, len(cols))
			scanArgs := make([]any, len(cols))
			for i := range values {
				scanArgs[i] = &values[i]
			}

			if err := rows.Scan(scanArgs...); err != nil {
				return nil, err
			}

			row := make(shopapp.Row, len(cols))
			for i, col := range cols {
				if b, ok := values[i].([]byte); ok {
					row[col] = string(b)
					continue
				}
				row[col] = values[i]
			}
			set = append(set, row)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}

		if len(cols) > 0 {
			sets = append(sets, set)
		}
		if !rows.NextResultSet() {
			break
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sets, nil
}
