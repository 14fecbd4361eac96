package clientcli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

const (
	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultBatchSize matches the default file count limit of the server.
	DefaultBatchSize = 10

	// DefaultPublicPrefix is where the server exposes stored files.
	DefaultPublicPrefix = "/uploads"
)

// Client performs operations against a file server.
type Client struct {
	config       *Config
	httpClient   *http.Client
	publicPrefix string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithPublicPrefix sets the URL path stored files are downloaded from.
func WithPublicPrefix(prefix string) Option {
	return func(c *Client) {
		c.publicPrefix = "/" + strings.Trim(prefix, "/")
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config:       &Config{Endpoint: strings.TrimSuffix(cfg.Endpoint, "/")},
		httpClient:   &http.Client{Timeout: DefaultTimeout},
		publicPrefix: DefaultPublicPrefix,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Endpoint returns the server URL the client talks to.
func (c *Client) Endpoint() string {
	return c.config.Endpoint
}

type uploadBatch struct {
	remoteDir string
	paths     []string
}

// Upload sends files to the server. A batch of one file goes to the single
// upload route, larger batches to the multiple upload route. Failures are
// reported per file and do not stop the remaining batches.
func (c *Client) Upload(ctx context.Context, opts UploadOptions) ([]UploadResult, error) {
	if len(opts.LocalPaths) == 0 {
		return nil, ErrNoPaths
	}
	if opts.RemoteDir == "" {
		return nil, fmt.Errorf("upload: %w", ErrEmptyPath)
	}
	size := opts.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	batches, err := collectUploads(opts)
	if err != nil {
		return nil, err
	}

	var results []UploadResult
	for _, b := range batches {
		for start := 0; start < len(b.paths); start += size {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			end := min(start+size, len(b.paths))
			results = append(results, c.uploadBatch(ctx, b.remoteDir, b.paths[start:end])...)
		}
	}
	return results, nil
}

// collectUploads groups files by their remote directory, keeping the order
// they were given or walked in.
func collectUploads(opts UploadOptions) ([]uploadBatch, error) {
	var batches []uploadBatch
	index := make(map[string]int)
	add := func(remoteDir, local string) {
		i, ok := index[remoteDir]
		if !ok {
			i = len(batches)
			index[remoteDir] = i
			batches = append(batches, uploadBatch{remoteDir: remoteDir})
		}
		batches[i].paths = append(batches[i].paths, local)
	}

	base := strings.Trim(opts.RemoteDir, "/")
	for _, local := range opts.LocalPaths {
		info, err := os.Stat(local)
		if err != nil {
			return nil, fmt.Errorf("stat local path: %w", err)
		}
		if !info.IsDir() {
			add(base, local)
			continue
		}
		if !opts.Recursive {
			return nil, fmt.Errorf("%s is a directory, use --recursive", local)
		}

		walkErr := filepath.WalkDir(local, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(local, filepath.Dir(p))
			if err != nil {
				return fmt.Errorf("calculate relative path: %w", err)
			}
			dir := base
			if rel = NormalizeLocalToRemotePath(rel); rel != "" {
				dir = path.Join(base, rel)
			}
			add(dir, p)
			return nil
		})
		if walkErr != nil {
			return nil, fmt.Errorf("walk directory: %w", walkErr)
		}
	}
	return batches, nil
}

func (c *Client) uploadBatch(ctx context.Context, remoteDir string, paths []string) []UploadResult {
	results := make([]UploadResult, len(paths))
	for i, p := range paths {
		results[i] = UploadResult{LocalPath: p, RemoteDir: remoteDir}
	}
	fail := func(err error) []UploadResult {
		for i := range results {
			results[i].Err = err
		}
		return results
	}

	route, field := "/api/files/upload-multiple", "files"
	if len(paths) == 1 {
		route, field = "/api/files/upload", "file"
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeUploadParts(mw, field, remoteDir, paths))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint+route, pr)
	if err != nil {
		_ = pr.CloseWithError(err)
		return fail(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	body, status, err := c.do(req)
	_ = pr.Close()
	if err != nil {
		return fail(err)
	}
	if status != http.StatusOK {
		return fail(parseServerError(status, body))
	}

	var files []serverFile
	if len(paths) == 1 {
		var env envelope[serverFile]
		if err := json.Unmarshal(body, &env); err != nil {
			return fail(fmt.Errorf("parse response: %w", err))
		}
		files = []serverFile{env.Data}
	} else {
		var env envelope[[]serverFile]
		if err := json.Unmarshal(body, &env); err != nil {
			return fail(fmt.Errorf("parse response: %w", err))
		}
		files = env.Data
	}

	for i := range results {
		if i >= len(files) {
			results[i].Err = errors.New("server did not report this file")
			continue
		}
		f := files[i]
		results[i].Filename = f.Filename
		results[i].OriginalName = f.OriginalName
		results[i].MimeType = f.MimeType
		results[i].Size = f.Size
		results[i].URL = f.URL
		results[i].FullURL = f.FullURL
	}
	return results
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// writeUploadParts streams the multipart body: the path field first, then
// one part per file.
func writeUploadParts(mw *multipart.Writer, field, remoteDir string, paths []string) error {
	if err := mw.WriteField("path", remoteDir); err != nil {
		return fmt.Errorf("write path field: %w", err)
	}
	for _, p := range paths {
		if err := writeFilePart(mw, field, p); err != nil {
			return err
		}
	}
	return mw.Close()
}

func writeFilePart(mw *multipart.Writer, field, localPath string) error {
	file, err := os.Open(localPath) //#nosec G304 -- localPath is user-provided input
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(filepath.Base(localPath))))
	h.Set("Content-Type", detectContentType(localPath))

	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("write part: %w", err)
	}
	return nil
}

// Download fetches a stored file through the public prefix.
// If opts.LocalPath is "-", the content is returned via the io.ReadCloser and must be closed by the caller.
// Otherwise, the content is written to the file and the io.ReadCloser is nil.
func (c *Client) Download(ctx context.Context, opts DownloadOptions) (*DownloadResult, io.ReadCloser, error) {
	remotePath := NormalizeLocalToRemotePath(opts.RemotePath)
	if remotePath == "" {
		return nil, nil, fmt.Errorf("download: %w", ErrEmptyPath)
	}

	u := c.config.Endpoint + c.publicPrefix + "/" + escapePath(remotePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, nil, parseServerError(resp.StatusCode, body)
	}

	result := &DownloadResult{
		RemotePath:  remotePath,
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}

	if opts.LocalPath == "-" {
		result.LocalPath = "-"
		return result, resp.Body, nil
	}
	defer func() { _ = resp.Body.Close() }()

	localPath := opts.LocalPath
	if localPath == "" {
		localPath = path.Base(remotePath)
	}
	result.LocalPath = localPath

	if dir := filepath.Dir(localPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, nil, fmt.Errorf("create directory: %w", err)
		}
	}

	file, err := os.Create(localPath) //#nosec G304 -- localPath is user-provided input
	if err != nil {
		return nil, nil, fmt.Errorf("create file: %w", err)
	}
	written, copyErr := io.Copy(file, resp.Body)
	if copyErr != nil {
		_ = file.Close()
		return nil, nil, fmt.Errorf("write file: %w", copyErr)
	}
	if err := file.Close(); err != nil {
		return nil, nil, fmt.Errorf("close file: %w", err)
	}

	result.Size = written
	return result, nil, nil
}

// Delete deletes one or more files from the server.
// Continues on error, collecting results for all paths.
func (c *Client) Delete(ctx context.Context, opts DeleteOptions) ([]DeleteResult, error) {
	if len(opts.Paths) == 0 {
		return nil, ErrNoPaths
	}

	results := make([]DeleteResult, 0, len(opts.Paths))
	for _, p := range opts.Paths {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, c.deleteSingle(ctx, p))
	}
	return results, nil
}

func (c *Client) deleteSingle(ctx context.Context, p string) DeleteResult {
	result := DeleteResult{Path: p}

	payload, err := json.Marshal(map[string]string{"path": p})
	if err != nil {
		result.Err = fmt.Errorf("encode request: %w", err)
		return result
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.config.Endpoint+"/api/files/delete", bytes.NewReader(payload))
	if err != nil {
		result.Err = fmt.Errorf("create request: %w", err)
		return result
	}
	req.Header.Set("Content-Type", "application/json")

	body, status, err := c.do(req)
	if err != nil {
		result.Err = err
		return result
	}
	if status != http.StatusOK {
		result.Err = parseServerError(status, body)
		return result
	}

	result.Deleted = true
	return result
}

// HasDeleteErrors returns true if any delete operation failed.
func HasDeleteErrors(results []DeleteResult) bool {
	for _, r := range results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// HasUploadErrors returns true if any file failed to upload.
func HasUploadErrors(results []UploadResult) bool {
	for _, r := range results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// List returns the content of a remote directory.
func (c *Client) List(ctx context.Context, dir string) (*ListResult, error) {
	if dir == "" {
		return nil, fmt.Errorf("list: %w", ErrEmptyPath)
	}

	u := c.config.Endpoint + "/api/files/list?" + url.Values{"path": {dir}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	body, status, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, parseServerError(status, body)
	}

	var env envelope[[]serverEntry]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	entries := make([]Entry, len(env.Data))
	for i, e := range env.Data {
		entries[i] = Entry{
			Name:        e.Filename,
			Size:        e.Size,
			IsDirectory: e.IsDirectory,
			CreatedAt:   e.CreatedAt,
			URL:         e.URL,
			FullURL:     e.FullURL,
		}
	}
	return &ListResult{Dir: dir, Entries: entries}, nil
}

// TotalSize sums the size of the files in the listing.
func (r *ListResult) TotalSize() int64 {
	var total int64
	for _, e := range r.Entries {
		if !e.IsDirectory {
			total += e.Size
		}
	}
	return total
}

// Health calls the health route of the server.
func (c *Client) Health(ctx context.Context) (*HealthResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.Endpoint+"/health", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	body, status, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, parseServerError(status, body)
	}

	var h serverHealth
	if err := json.Unmarshal(body, &h); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return &HealthResult{
		Endpoint:  c.config.Endpoint,
		Status:    h.Status,
		Message:   h.Message,
		UploadDir: h.UploadDir,
		Timestamp: h.Timestamp,
	}, nil
}

// do executes req and returns the whole response body.
func (c *Client) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// NormalizeLocalToRemotePath converts a local path to a clean remote path.
// It handles:
//   - Leading "./" is stripped (./foo/bar.txt -> foo/bar.txt)
//   - Leading "/" is stripped (/abs/path/file.txt -> abs/path/file.txt)
//   - Parent traversal is resolved (../sibling/file.txt -> sibling/file.txt)
//   - Multiple slashes are collapsed
//   - Backslashes are converted to forward slashes (Windows)
func NormalizeLocalToRemotePath(localPath string) string {
	p := strings.ReplaceAll(localPath, "\\", "/")
	p = path.Clean(p)

	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "/")

	for strings.HasPrefix(p, "../") {
		p = strings.TrimPrefix(p, "../")
	}

	if p == ".." || p == "." {
		return ""
	}
	return p
}

// detectContentType uses the file extension, then sniffs the content.
func detectContentType(localPath string) string {
	if ext := filepath.Ext(localPath); ext != "" {
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
	}
	mt, err := mimetype.DetectFile(localPath)
	if err != nil {
		return "application/octet-stream"
	}
	return mt.String()
}

// parseServerError builds an APIError, keeping the message of the
// {success, message} body when there is one.
func parseServerError(statusCode int, body []byte) error {
	apiErr := &APIError{StatusCode: statusCode, Body: string(body)}
	var env envelope[json.RawMessage]
	if json.Unmarshal(body, &env) == nil {
		apiErr.Message = env.Message
	}
	return apiErr
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	detail := e.Message
	if detail == "" {
		detail = e.Body
	}
	return "server error: " + strconv.Itoa(e.StatusCode) + " - " + detail
}

// Is reports whether target matches this error.
// It matches if target is an *APIError with the same StatusCode.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// IsNotFound returns true if the error is a 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Sentinel errors for common API error conditions.
// Use errors.Is() to check for these conditions.
var (
	// ErrNotFound is returned when the file or directory does not exist (404).
	ErrNotFound = &APIError{StatusCode: http.StatusNotFound}

	// ErrBadRequest is returned when the server rejects the input (400),
	// for example a disallowed extension or an oversized file.
	ErrBadRequest = &APIError{StatusCode: http.StatusBadRequest}
)
