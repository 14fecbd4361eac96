package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/laropanostra/shopapp"
	"github.com/laropanostra/shopapp/shop"
)

const maxParamsBody = 1 << 20

// Pinger checks database reachability. *sql.DB implements it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type ShopHandlerConfig struct {
	CORS        CORSConfig
	PingTimeout time.Duration
}

// ShopHandler serves the shop API under /api.
type ShopHandler struct {
	config  ShopHandlerConfig
	service *shop.Service
	db      Pinger
}

// NewShopHandler creates a ShopHandler. db may be nil, in which case the
// health route only reports the process as up.
func NewShopHandler(config ShopHandlerConfig, service *shop.Service, db Pinger) *ShopHandler {
	return &ShopHandler{
		config:  config,
		service: service,
		db:      db,
	}
}

type setFunc func(context.Context, shopapp.Params) (shopapp.ResultSet, error)

type setsFunc func(context.Context, shopapp.Params) ([]shopapp.ResultSet, error)

// Router returns an http.Handler with every shop route mounted under /api.
func (h *ShopHandler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(AccessLog)
	r.Use(Recovery(recoverAPI))
	r.Use(h.config.CORS.Middleware())

	s := h.service
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.handleHealth)

		r.Route("/productos", func(r chi.Router) {
			r.Get("/novedades", h.single(s.Productos.Novedades))
			r.Get("/inventario", h.single(s.Productos.Inventario))
			r.Get("/genero", h.single(s.Productos.Genero))
			r.Get("/validaInventario", h.single(s.Productos.ValidaInventario))
			r.Get("/all", h.single(s.Productos.All))
			r.Get("/getProductoId", h.multi(s.Productos.ByID))
			r.Post("/postAgregarProducto", h.single(s.Productos.Agregar))
			r.Put("/putEditarProducto", h.single(s.Productos.Editar))
			r.Delete("/deleteEliminarProducto", h.single(s.Productos.Eliminar))
		})

		r.Route("/carrito", func(r chi.Router) {
			r.Get("/getCarrito", h.single(s.Carrito.Obtener))
			r.Post("/postAgregarCarrito", h.single(s.Carrito.Agregar))
			r.Put("/putActualizarCarritoCantidad", h.single(s.Carrito.ActualizarCantidad))
			r.Delete("/deleteEliminarCarrito", h.single(s.Carrito.Eliminar))
		})

		r.Route("/catalogo", func(r chi.Router) {
			r.Get("/getTallas", h.single(s.Catalogo.Tallas))
			r.Get("/getGeneros", h.single(s.Catalogo.Generos))
			r.Get("/getTipoPrenda", h.single(s.Catalogo.TipoPrenda))
		})

		r.Post("/fileserver/postInsDocumento", h.single(s.Documentos.Insertar))

		r.Route("/seguridad", func(r chi.Router) {
			r.Post("/login", h.handleLogin)
			r.Post("/postInsPerfil", h.multi(s.Seguridad.Registrar))
			r.Post("/updatePerfil", h.multi(s.Seguridad.ActualizarPerfil))
		})

		r.Route("/venta", func(r chi.Router) {
			r.Get("/getVentaIdUsuario", h.multi(s.Ventas.PorUsuario))
			r.Get("/getVentas", h.multi(s.Ventas.Todas))
			r.Post("/postAgregaVenta", h.single(s.Ventas.Agregar))
			r.Put("/putActualizaEstatus", h.single(s.Ventas.ActualizarEstatus))
		})
	})

	return r
}

// bindParams reads the query string of GET requests and the JSON body of
// everything else.
func bindParams(w http.ResponseWriter, r *http.Request) (shopapp.Params, error) {
	if r.Method == http.MethodGet {
		return shopapp.ParamsFromQuery(r.URL.Query())
	}
	return shopapp.ParamsFromJSON(http.MaxBytesReader(w, r.Body, maxParamsBody))
}

func (h *ShopHandler) single(fn setFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := bindParams(w, r)
		if err != nil {
			HandleError(w, r, err)
			return
		}

		set, err := fn(r.Context(), params)
		if err != nil {
			HandleError(w, r, err)
			return
		}
		if set == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		h.writeResult(w, r, set)
	}
}

func (h *ShopHandler) multi(fn setsFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := bindParams(w, r)
		if err != nil {
			HandleError(w, r, err)
			return
		}

		sets, err := fn(r.Context(), params)
		if err != nil {
			HandleError(w, r, err)
			return
		}
		if len(sets) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		h.writeResult(w, r, sets)
	}
}

func (h *ShopHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	params, err := bindParams(w, r)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	result, err := h.service.Seguridad.Login(r.Context(), params)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	h.writeResult(w, r, result)
}

func (h *ShopHandler) writeResult(w http.ResponseWriter, r *http.Request, v any) {
	if err := WriteJSON(w, http.StatusOK, v); err != nil {
		slog.WarnContext(r.Context(), "failed to write response", "path", r.URL.Path, "error", err)
	}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

func (h *ShopHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		_ = WriteJSON(w, http.StatusOK, healthResponse{Status: "ok"})
		return
	}

	timeout := h.config.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		slog.ErrorContext(r.Context(), "database ping failed", "error", err)
		_ = WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "error", Database: "unreachable"})
		return
	}
	_ = WriteJSON(w, http.StatusOK, healthResponse{Status: "ok", Database: "ok"})
}
