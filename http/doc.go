// Package http provides the HTTP surfaces of the shop API and the file server.
//
// ShopHandler exposes the shop operations under /api. GET routes bind their
// query string and every other method binds a flat JSON object body; both
// become shopapp.Params handed to the stored procedure unchanged. A call that
// produced no result set answers 204.
//
//	svc, _ := shop.NewService(gateway)
//	h := http.NewShopHandler(http.ShopHandlerConfig{CORS: cors}, svc, db)
//	srv := &nethttp.Server{Addr: ":4112", Handler: h.Router()}
//
// FileHandler exposes uploads, deletion and listing under /api/files, a
// health check, and the upload tree read-only under the public prefix:
//
//	root, _ := os.OpenRoot("./uploads")
//	store := filesystem.NewFileStorage(root, policy)
//	h := http.NewFileHandler(http.FileHandlerConfig{PublicPrefix: "/uploads"}, store)
//
// File server answers use the FileResponse envelope
// {success, message, data}. Shop API failures use ErrorResponse.
//
// # Middleware
//
// Both routers install RequestID, AccessLog, Recovery and, when enabled, the
// CORS middleware from CORSConfig.
package http
