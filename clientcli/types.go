package clientcli

import "time"

// UploadOptions configures an upload operation.
type UploadOptions struct {
	// LocalPaths are files, or directories when Recursive is set.
	LocalPaths []string
	// RemoteDir is the directory under the upload root.
	RemoteDir string
	// Recursive walks directories and keeps their layout under RemoteDir.
	Recursive bool
	// BatchSize caps the files sent per request. Defaults to DefaultBatchSize.
	BatchSize int
}

// UploadResult represents the result of uploading a single file.
type UploadResult struct {
	LocalPath    string `json:"local_path"`
	RemoteDir    string `json:"remote_dir"`
	Filename     string `json:"filename,omitempty"`
	OriginalName string `json:"original_name,omitempty"`
	MimeType     string `json:"mime_type,omitempty"`
	Size         int64  `json:"size_bytes"`
	URL          string `json:"url,omitempty"`
	FullURL      string `json:"full_url,omitempty"`
	Err          error  `json:"-"` // nil on success
}

// DownloadOptions configures a download operation.
type DownloadOptions struct {
	RemotePath string
	LocalPath  string // empty = derive from remote, "-" = stdout
}

// DownloadResult represents the result of downloading a file.
type DownloadResult struct {
	RemotePath  string `json:"remote_path"`
	LocalPath   string `json:"local_path"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size_bytes"`
}

// DeleteOptions configures a delete operation.
type DeleteOptions struct {
	Paths []string
}

// DeleteResult represents the result of deleting a single file.
type DeleteResult struct {
	Path    string `json:"path"`
	Deleted bool   `json:"deleted"`
	Err     error  `json:"-"` // nil on success
}

// ListResult is the content of one remote directory.
type ListResult struct {
	Dir     string  `json:"dir"`
	Entries []Entry `json:"entries"`
}

// Entry is one element of a remote directory.
type Entry struct {
	Name        string    `json:"name"`
	Size        int64     `json:"size_bytes"`
	IsDirectory bool      `json:"is_directory"`
	CreatedAt   time.Time `json:"created_at"`
	URL         string    `json:"url"`
	FullURL     string    `json:"full_url"`
}

// HealthResult is the answer of the health route.
type HealthResult struct {
	Endpoint  string    `json:"endpoint"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	UploadDir string    `json:"upload_dir"`
	Timestamp time.Time `json:"timestamp"`
}

// envelope mirrors the {success, message, data} body of the file server.
type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type serverFile struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mimeType"`
	Path         string `json:"path"`
	URL          string `json:"url"`
	FullURL      string `json:"fullUrl"`
}

type serverEntry struct {
	Filename    string    `json:"filename"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
	IsDirectory bool      `json:"isDirectory"`
	URL         string    `json:"url"`
	FullURL     string    `json:"fullUrl"`
}

type serverHealth struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	UploadDir string    `json:"uploadDir"`
	Timestamp time.Time `json:"timestamp"`
}
