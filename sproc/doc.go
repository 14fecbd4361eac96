// Package sproc executes stored procedures on behalf of the shop API.
//
// A Gateway takes a procedure name and a shopapp.Params bag, strips the
// client's cache-busting fields, validates the remaining names and values,
// checks out one connection from its ConnSource, binds the parameters by name
// and collects every result set the procedure produces, in order:
//
//	gw := sproc.New(sproc.DBSource{DB: db}, sproc.SQLServer)
//	rows, err := gw.Execute(ctx, "[catalogo].[SEL_TALLAS_SP]", nil)
//
// The connection is returned to the pool exactly once, whether the call
// succeeds or fails. Failures are logged with the procedure name and returned
// wrapped, so errors.Is still reaches the driver error.
//
// Two dialects are provided. SQLServer uses go-mssqldb's native procedure
// call, where the query text is the procedure name. Postgres calls a
// set-returning function with named notation.
package sproc
