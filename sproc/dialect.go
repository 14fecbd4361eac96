package sproc

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/laropanostra/shopapp"
)

// Dialect turns a procedure call into query text and driver arguments.
// Params are already validated and stripped when Statement is called.
type Dialect interface {
	Name() string
	Statement(procedure string, params shopapp.Params) (string, []any, error)
}

var (
	// SQLServer calls the procedure through go-mssqldb's RPC path: the query
	// text is the bare procedure name and arguments are sql.NamedArg.
	SQLServer Dialect = sqlServerDialect{}
	// Postgres selects from a set-returning function using named notation.
	Postgres Dialect = postgresDialect{}
)

// DialectByName returns the dialect for a configured driver name.
func DialectByName(driver string) (Dialect, error) {
	switch driver {
	case "sqlserver":
		return SQLServer, nil
	case "postgres", "pgx":
		return Postgres, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

type sqlServerDialect struct{}

func (sqlServerDialect) Name() string { return "sqlserver" }

func (sqlServerDialect) Statement(procedure string, params shopapp.Params) (string, []any, error) {
	names := params.Names()
	if len(names) == 0 {
		return procedure, nil, nil
	}

	args := make([]any, 0, len(names))
	for _, name := range names {
		args = append(args, sql.Named(strings.TrimPrefix(name, "@"), params[name]))
	}
	return procedure, args, nil
}

type postgresDialect struct{}

func (postgresDialect) Name() string { return "postgres" }

func (postgresDialect) Statement(procedure string, params shopapp.Params) (string, []any, error) {
	ident := splitProcedureName(procedure)
	if len(ident) == 0 {
		return "", nil, fmt.Errorf("postgres statement: %w: procedure name %q", shopapp.ErrInvalidInput, procedure)
	}

	names := params.Names()
	args := make([]any, 0, len(names))
	named := make([]string, 0, len(names))
	for i, name := range names {
		arg := pgx.Identifier{strings.TrimPrefix(name, "@")}.Sanitize()
		named = append(named, fmt.Sprintf("%s => $%d", arg, i+1))
		args = append(args, params[name])
	}

	query := fmt.Sprintf("SELECT * FROM %s(%s)", ident.Sanitize(), strings.Join(named, ", "))
	return query, args, nil
}

// splitProcedureName splits "[schema].[name]" or "schema.name" into its
// unbracketed parts.
func splitProcedureName(procedure string) pgx.Identifier {
	parts := strings.Split(procedure, ".")
	ident := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSuffix(strings.TrimPrefix(p, "["), "]")
		if p == "" {
			return nil
		}
		ident = append(ident, p)
	}
	return ident
}
