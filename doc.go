// Package shopapp holds the shared types of the clothing shop backends: the
// shop API, which forwards requests to SQL stored procedures, and the file
// server, which keeps uploaded product images on local disk.
//
// Both services are thin pass-throughs. The two places where request data
// crosses a trust boundary live in subpackages:
//
//   - sproc: the stored-procedure gateway (Execute, ExecuteMulti)
//   - filesystem: the file storage gateway (Save, Delete, List)
//
// # Parameters
//
// Request parameters reach the database as Params, a name to scalar mapping
// with a closed set of value kinds. Cache-busting fields sent by the mobile
// client (nocache, timestamp, cacheBuster) are removed by StripCacheParams
// before binding.
//
//	params, err := shopapp.ParamsFromQuery(r.URL.Query())
//	if err != nil {
//	    // errors.Is(err, shopapp.ErrInvalidInput)
//	}
//	rows, err := gateway.Execute(ctx, "[catalogo].[SEL_TALLAS_SP]", params)
//
// # Paths
//
// Client-supplied upload paths go through SanitizePath, a pre-filter that
// strips ".." tokens and leading slashes. The filesystem package then
// resolves the result against the upload root and refuses anything that is
// not a descendant of it.
//
// See the http package for both REST surfaces and the cmd directory for the
// server and client binaries.
package shopapp
