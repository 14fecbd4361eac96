// Package database opens the shop database and wires it to the
// stored-procedure gateway.
//
// Two drivers are supported:
//   - sqlserver: github.com/microsoft/go-mssqldb
//   - postgres: github.com/jackc/pgx/v5/stdlib
//
// The connection string is built from host, port, user, password, database
// name and extra params, unless an explicit DSN is configured:
//
//	db, err := database.Open(ctx, cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	gw, err := database.NewGateway(db, cfg.Database)
package database
