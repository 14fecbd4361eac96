package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/laropanostra/shopapp"
)

// FileStore is the storage behind the file server. *filesystem.Store
// implements it.
type FileStore interface {
	Dir() string
	Policy() shopapp.StoragePolicy
	Save(ctx context.Context, up shopapp.Upload) (shopapp.UploadedFile, error)
	SaveMany(ctx context.Context, ups []shopapp.Upload) ([]shopapp.UploadedFile, error)
	Delete(ctx context.Context, path string) error
	List(ctx context.Context, path string) ([]shopapp.DirEntry, error)
	Open(ctx context.Context, path string) (*os.File, fs.FileInfo, error)
}

type FileHandlerConfig struct {
	// PublicPrefix is the URL path stored files are served under.
	PublicPrefix string
	// ExposeErrors answers faults with the raw error text instead of the
	// generic message of the operation.
	ExposeErrors bool
	CORS         CORSConfig
}

// FileHandler serves the file server routes.
type FileHandler struct {
	config FileHandlerConfig
	store  FileStore
}

// NewFileHandler creates a FileHandler.
func NewFileHandler(config FileHandlerConfig, store FileStore) *FileHandler {
	if config.PublicPrefix == "" {
		config.PublicPrefix = "/uploads"
	}
	config.PublicPrefix = "/" + strings.Trim(config.PublicPrefix, "/")
	return &FileHandler{
		config: config,
		store:  store,
	}
}

// Router returns an http.Handler with the upload API under /api/files, the
// health check and the static tree under the public prefix.
func (h *FileHandler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(AccessLog)
	r.Use(Recovery(recoverFiles))
	r.Use(h.config.CORS.Middleware())

	r.Route("/api/files", func(r chi.Router) {
		r.Post("/upload", h.handleUpload)
		r.Post("/upload-multiple", h.handleUploadMultiple)
		r.Delete("/delete", h.handleDelete)
		r.Get("/list", h.handleList)
	})
	r.Get("/health", h.handleHealth)
	r.Get(h.config.PublicPrefix+"/*", h.handleStatic)
	r.Head(h.config.PublicPrefix+"/*", h.handleStatic)

	return r
}

const (
	multipartMemory   = 32 << 20
	multipartOverhead = 1 << 20
	maxPathBody       = 64 << 10
)

func (h *FileHandler) bodyLimit() int64 {
	p := h.store.Policy()
	files := int64(max(p.MaxFiles, 1))
	return p.MaxFileSize*files + multipartOverhead
}

// parseMultipart parses a multipart body. A body that is not multipart is
// not an error: the request simply carries no file.
func (h *FileHandler) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.bodyLimit())
	err := r.ParseMultipartForm(multipartMemory)
	if err == nil || errors.Is(err, http.ErrNotMultipart) {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return shopapp.Invalid(shopapp.ErrFileTooLarge, "El archivo excede el tamaño máximo permitido")
	}
	return shopapp.Invalid(nil, fmt.Sprintf("Solicitud multipart inválida: %v", err))
}

func cleanupMultipart(r *http.Request) {
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}

// formPath returns the path field of the form body, falling back to the
// query string.
func formPath(r *http.Request) string {
	if r.MultipartForm != nil {
		if vs := r.MultipartForm.Value["path"]; len(vs) > 0 && vs[0] != "" {
			return vs[0]
		}
	}
	return r.URL.Query().Get("path")
}

func openUpload(fh *multipart.FileHeader, subpath string) (shopapp.Upload, io.Closer, error) {
	f, err := fh.Open()
	if err != nil {
		return shopapp.Upload{}, nil, fmt.Errorf("open upload part: %w", err)
	}
	return shopapp.Upload{
		Content:      f,
		OriginalName: fh.Filename,
		MimeType:     fh.Header.Get("Content-Type"),
		Size:         fh.Size,
		Subpath:      subpath,
	}, f, nil
}

func (h *FileHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	const fallback = "Error al subir archivo"
	defer cleanupMultipart(r)

	if err := h.parseMultipart(w, r); err != nil {
		h.fail(w, r, err, fallback, nil)
		return
	}

	up := shopapp.Upload{Subpath: formPath(r), Size: -1}
	if r.MultipartForm != nil {
		if fhs := r.MultipartForm.File["file"]; len(fhs) > 0 {
			opened, closer, err := openUpload(fhs[0], up.Subpath)
			if err != nil {
				h.fail(w, r, err, fallback, nil)
				return
			}
			defer func() { _ = closer.Close() }()
			up = opened
		}
	}

	file, err := h.store.Save(r.Context(), up)
	if err != nil {
		h.fail(w, r, err, fallback, nil)
		return
	}
	file.FullURL = h.fullURL(r, file.URL)

	slog.InfoContext(r.Context(), "file uploaded", "path", file.URL, "size", file.Size)
	writeFileResponse(w, http.StatusOK, FileResponse{
		Success: true,
		Message: "Archivo subido exitosamente",
		Data:    file,
	})
}

func (h *FileHandler) handleUploadMultiple(w http.ResponseWriter, r *http.Request) {
	const fallback = "Error al subir archivos"
	defer cleanupMultipart(r)

	if err := h.parseMultipart(w, r); err != nil {
		h.fail(w, r, err, fallback, nil)
		return
	}

	subpath := formPath(r)
	var ups []shopapp.Upload
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["files"] {
			up, closer, err := openUpload(fh, subpath)
			if err != nil {
				h.fail(w, r, err, fallback, nil)
				return
			}
			defer func() { _ = closer.Close() }()
			ups = append(ups, up)
		}
	}

	files, err := h.store.SaveMany(r.Context(), ups)
	if err != nil {
		h.fail(w, r, err, fallback, nil)
		return
	}
	for i := range files {
		files[i].FullURL = h.fullURL(r, files[i].URL)
	}

	slog.InfoContext(r.Context(), "files uploaded", "dir", subpath, "count", len(files))
	writeFileResponse(w, http.StatusOK, FileResponse{
		Success: true,
		Message: fmt.Sprintf("%d archivos subidos exitosamente", len(files)),
		Data:    files,
	})
}

// deletePath reads path from a JSON or urlencoded body, then from the query.
func deletePath(r *http.Request) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if r.Body != nil && r.Body != http.NoBody {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxPathBody))
		if err != nil {
			return "", fmt.Errorf("read body: %w", err)
		}
		switch {
		case mediaType == "application/json" && len(body) > 0:
			var req struct {
				Path string `json:"path"`
			}
			if err := json.Unmarshal(body, &req); err != nil {
				return "", shopapp.Invalid(nil, "Cuerpo JSON inválido")
			}
			if req.Path != "" {
				return req.Path, nil
			}
		case mediaType == "application/x-www-form-urlencoded":
			values, err := url.ParseQuery(string(body))
			if err == nil && values.Get("path") != "" {
				return values.Get("path"), nil
			}
		}
	}
	return r.URL.Query().Get("path"), nil
}

func (h *FileHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	const fallback = "Error al eliminar archivo"

	p, err := deletePath(r)
	if err != nil {
		h.fail(w, r, err, fallback, nil)
		return
	}

	if err := h.store.Delete(r.Context(), p); err != nil {
		if errors.Is(err, shopapp.ErrNotFound) {
			writeFileResponse(w, http.StatusNotFound, FileResponse{Message: "Archivo no encontrado"})
			return
		}
		h.fail(w, r, err, fallback, nil)
		return
	}

	slog.InfoContext(r.Context(), "file deleted", "path", p)
	writeFileResponse(w, http.StatusOK, FileResponse{
		Success: true,
		Message: "Archivo eliminado exitosamente",
	})
}

func (h *FileHandler) handleList(w http.ResponseWriter, r *http.Request) {
	const fallback = "Error al listar archivos"

	entries, err := h.store.List(r.Context(), r.URL.Query().Get("path"))
	if err != nil {
		if errors.Is(err, shopapp.ErrNotFound) {
			writeFileResponse(w, http.StatusNotFound, FileResponse{
				Message: "Ruta no encontrada",
				Data:    []shopapp.DirEntry{},
			})
			return
		}
		h.fail(w, r, err, fallback, []shopapp.DirEntry{})
		return
	}
	for i := range entries {
		entries[i].FullURL = h.fullURL(r, entries[i].URL)
	}

	writeFileResponse(w, http.StatusOK, FileResponse{
		Success: true,
		Message: fmt.Sprintf("%d elementos encontrados", len(entries)),
		Data:    entries,
	})
}

type fileHealthResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	UploadDir string    `json:"uploadDir"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *FileHandler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = WriteJSON(w, http.StatusOK, fileHealthResponse{
		Status:    "ok",
		Message:   "File server funcionando correctamente",
		UploadDir: h.store.Dir(),
		Timestamp: time.Now().UTC(),
	})
}

// handleStatic serves stored files read-only. Directories are never listed.
func (h *FileHandler) handleStatic(w http.ResponseWriter, r *http.Request) {
	p := chi.URLParam(r, "*")

	f, info, err := h.store.Open(r.Context(), p)
	if err != nil {
		if errors.Is(err, shopapp.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.ErrorContext(r.Context(), "failed to open static file", "path", p, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	defer func() { _ = f.Close() }()

	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// fail answers a failed operation. Validation errors carry their own
// message; faults get the raw text only when errors are exposed.
func (h *FileHandler) fail(w http.ResponseWriter, r *http.Request, err error, fallback string, data any) {
	var vErr *shopapp.ValidationError
	if errors.As(err, &vErr) {
		writeFileResponse(w, http.StatusBadRequest, FileResponse{Message: vErr.Message, Data: data})
		return
	}
	if errors.Is(err, shopapp.ErrInvalidInput) {
		writeFileResponse(w, http.StatusBadRequest, FileResponse{Message: fallback, Data: data})
		return
	}

	slog.ErrorContext(r.Context(), fallback, "path", r.URL.Path, "error", err)
	msg := fallback
	if h.config.ExposeErrors {
		msg = err.Error()
	}
	writeFileResponse(w, http.StatusInternalServerError, FileResponse{Message: msg, Data: data})
}

func (h *FileHandler) fullURL(r *http.Request, u string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + h.config.PublicPrefix + u
}
