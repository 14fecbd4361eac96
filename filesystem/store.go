// Package filesystem stores the file server's uploads on local disk.
//
// All I/O goes through an os.Root, which refuses paths that escape the upload
// root, symlinks included. Client paths are additionally sanitized and
// resolved before use. Stored names are unique per upload and created with
// O_EXCL, so concurrent uploads of the same file never overwrite each other.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"

	"github.com/laropanostra/shopapp"
)

const maxNameAttempts = 5

// Store provides upload storage operations rooted at one directory.
type Store struct {
	root    *os.Root
	policy  shopapp.StoragePolicy
	allowed map[string]struct{}
}

// NewFileStorage creates a new Store with the given root directory and upload
// policy. The root provides sandboxed file operations preventing path
// traversal.
func NewFileStorage(root *os.Root, policy shopapp.StoragePolicy) *Store {
	allowed := make(map[string]struct{}, len(policy.AllowedExtensions))
	for _, ext := range policy.AllowedExtensions {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	return &Store{root: root, policy: policy, allowed: allowed}
}

// Dir returns the upload root directory.
func (s *Store) Dir() string {
	return s.root.Name()
}

// Policy returns the upload rules the store enforces.
func (s *Store) Policy() shopapp.StoragePolicy {
	return s.policy
}

func (s *Store) extensionsMessage() string {
	return "Solo se permiten archivos: " + strings.Join(s.policy.AllowedExtensions, ", ")
}

func (s *Store) sizeMessage() string {
	return fmt.Sprintf("El archivo excede el tamaño máximo permitido (%s)", humanize.Bytes(uint64(s.policy.MaxFileSize)))
}

// Validate applies the upload rules in order: file present, path present,
// extension allowed, declared size within the limit.
func (s *Store) Validate(up shopapp.Upload) error {
	if up.Content == nil {
		return shopapp.Invalid(shopapp.ErrNoFile, "No se proporcionó ningún archivo")
	}
	if strings.TrimSpace(up.Subpath) == "" {
		return shopapp.Invalid(shopapp.ErrPathRequired, "El parámetro 'path' es requerido")
	}

	ext := strings.ToLower(strings.TrimPrefix(extension(up.OriginalName), "."))
	if _, ok := s.allowed[ext]; !ok {
		return shopapp.Invalid(shopapp.ErrExtensionNotAllowed, s.extensionsMessage())
	}

	if up.Size > s.policy.MaxFileSize {
		return shopapp.Invalid(shopapp.ErrFileTooLarge, s.sizeMessage())
	}
	return nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Save validates up and writes it under its subpath with a unique name.
// Intermediate directories are created as needed. A file whose copy fails is
// removed.
func (s *Store) Save(ctx context.Context, up shopapp.Upload) (shopapp.UploadedFile, error) {
	if err := ctx.Err(); err != nil {
		return shopapp.UploadedFile{}, err
	}
	if err := s.Validate(up); err != nil {
		return shopapp.UploadedFile{}, err
	}

	dir, err := shopapp.ResolveRelative(shopapp.SanitizePath(up.Subpath))
	if err != nil {
		return shopapp.UploadedFile{}, err
	}

	if dir != "." {
		if err := s.root.MkdirAll(dir, 0o755); err != nil {
			return shopapp.UploadedFile{}, fmt.Errorf("could not create upload directory: %w", err)
		}
	}

	f, name, err := s.create(dir, up.OriginalName)
	if err != nil {
		return shopapp.UploadedFile{}, err
	}
	rel := filepath.Join(dir, name)

	success := false
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("failed to close uploaded file", "path", rel, "err", closeErr)
		}
		if !success {
			if rmErr := s.root.Remove(rel); rmErr != nil {
				slog.Warn("failed to remove partial upload", "path", rel, "err", rmErr)
			}
		}
	}()

	limited := io.LimitReader(&ctxReader{ctx: ctx, r: up.Content}, s.policy.MaxFileSize+1)
	written, err := io.Copy(f, limited)
	if err != nil {
		return shopapp.UploadedFile{}, fmt.Errorf("could not copy file contents: %w", err)
	}
	if written > s.policy.MaxFileSize {
		return shopapp.UploadedFile{}, shopapp.Invalid(shopapp.ErrFileTooLarge, s.sizeMessage())
	}

	if err = f.Sync(); err != nil {
		return shopapp.UploadedFile{}, fmt.Errorf("could not sync written file: %w", err)
	}

	mimeType := up.MimeType
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = detectContentType(f)
	}

	success = true

	return shopapp.UploadedFile{
		Filename:     name,
		OriginalName: up.OriginalName,
		Size:         written,
		MimeType:     mimeType,
		Path:         filepath.ToSlash(dir),
		URL:          shopapp.PublicURL(filepath.ToSlash(dir), name),
		LocalPath:    filepath.Join(s.root.Name(), rel),
	}, nil
}

// SaveMany stores several uploads for one request. Every upload is validated
// before anything is written; if a write fails, the files already stored by
// this call are removed.
func (s *Store) SaveMany(ctx context.Context, ups []shopapp.Upload) ([]shopapp.UploadedFile, error) {
	if len(ups) == 0 {
		return nil, shopapp.Invalid(shopapp.ErrNoFile, "No se proporcionaron archivos")
	}
	if len(ups) > s.policy.MaxFiles {
		return nil, shopapp.Invalid(shopapp.ErrTooManyFiles, "Se excedió el número máximo de archivos")
	}
	for _, up := range ups {
		if err := s.Validate(up); err != nil {
			return nil, err
		}
	}

	saved := make([]shopapp.UploadedFile, 0, len(ups))
	for _, up := range ups {
		file, err := s.Save(ctx, up)
		if err != nil {
			s.rollback(saved)
			return nil, err
		}
		saved = append(saved, file)
	}
	return saved, nil
}

func (s *Store) rollback(files []shopapp.UploadedFile) {
	for _, f := range files {
		rel := filepath.Join(filepath.FromSlash(f.Path), f.Filename)
		if err := s.root.Remove(rel); err != nil {
			slog.Warn("failed to roll back upload", "path", rel, "err", err)
		}
	}
}

// create opens a new file with a unique name inside dir.
func (s *Store) create(dir, originalName string) (*os.File, string, error) {
	for range maxNameAttempts {
		name := uniqueName(time.Now(), originalName)
		f, err := s.root.OpenFile(filepath.Join(dir, name), os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, name, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("could not create file: %w", err)
		}
	}
	return nil, "", fmt.Errorf("could not allocate a unique name for %q", originalName)
}

// uniqueName builds "{unix millis}-{random}-{sanitized base}{ext}".
// extension is filepath.Ext of the base name, except that leading dots belong
// to the name: ".png" and "..png" have no extension.
func extension(name string) string {
	return filepath.Ext(strings.TrimLeft(filepath.Base(name), "."))
}

func uniqueName(now time.Time, originalName string) string {
	ext := extension(originalName)
	base := strings.TrimSuffix(filepath.Base(originalName), ext)
	return fmt.Sprintf("%d-%d-%s%s", now.UnixMilli(), rand.Int64N(1e9), shopapp.SanitizeBaseName(base), ext)
}

func detectContentType(f *os.File) string {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "application/octet-stream"
	}
	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return "application/octet-stream"
	}
	return mt.String()
}

// Delete removes one file. Returns shopapp.ErrNotFound if the file does not
// exist. Directories are refused.
func (s *Store) Delete(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(p) == "" {
		return shopapp.Invalid(shopapp.ErrPathRequired, "El parámetro 'path' es requerido")
	}

	rel, err := shopapp.ResolveRelative(shopapp.SanitizePath(p))
	if err != nil {
		return err
	}

	info, err := s.root.Lstat(rel)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("delete %s: %w", filepath.ToSlash(rel), shopapp.ErrNotFound)
		}
		return fmt.Errorf("could not stat file: %w", err)
	}
	if info.IsDir() {
		return shopapp.Invalid(shopapp.ErrNotAFile, "La ruta no corresponde a un archivo")
	}

	if err := s.root.Remove(rel); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("delete %s: %w", filepath.ToSlash(rel), shopapp.ErrNotFound)
		}
		return fmt.Errorf("could not delete file: %w", err)
	}
	return nil
}

// List returns the direct children of a directory, sorted by name. Returns
// shopapp.ErrNotFound if the directory does not exist; an existing empty
// directory yields an empty, non-nil slice.
func (s *Store) List(ctx context.Context, p string) ([]shopapp.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(p) == "" {
		return nil, shopapp.Invalid(shopapp.ErrPathRequired, "El parámetro 'path' es requerido")
	}

	rel, err := shopapp.ResolveRelative(shopapp.SanitizePath(p))
	if err != nil {
		return nil, err
	}

	info, err := s.root.Stat(rel)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("list %s: %w", filepath.ToSlash(rel), shopapp.ErrNotFound)
		}
		return nil, fmt.Errorf("could not stat directory: %w", err)
	}
	if !info.IsDir() {
		return nil, shopapp.Invalid(shopapp.ErrNotADirectory, "La ruta no corresponde a un directorio")
	}

	dir := filepath.ToSlash(rel)
	dirEntries, err := fs.ReadDir(s.root.FS(), dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	entries := make([]shopapp.DirEntry, 0, len(dirEntries))
	for _, entry := range dirEntries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entryInfo, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("list dir: %w", err)
		}

		entries = append(entries, shopapp.DirEntry{
			Filename:    entry.Name(),
			Size:        entryInfo.Size(),
			CreatedAt:   entryInfo.ModTime(),
			IsDirectory: entry.IsDir(),
			URL:         shopapp.PublicURL(dir, entry.Name()),
		})
	}

	return entries, nil
}

// Open opens a stored file for reading. Missing files, directories and paths
// outside the root all return shopapp.ErrNotFound.
func (s *Store) Open(ctx context.Context, p string) (*os.File, fs.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	rel, err := shopapp.ResolveRelative(strings.TrimLeft(p, "/"))
	if err != nil || rel == "." {
		return nil, nil, shopapp.ErrNotFound
	}

	f, err := s.root.Open(rel)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrInvalid) {
			return nil, nil, shopapp.ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, nil, shopapp.ErrNotFound
	}

	return f, info, nil
}
