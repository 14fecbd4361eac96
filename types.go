package shopapp

import (
	"io"
	"time"
)

// Row is one result row keyed by column name.
type Row map[string]any

// ResultSet is the ordered rows of one procedure result.
type ResultSet []Row

// Upload is a file received by the file server, before it is stored.
type Upload struct {
	// Content is nil when the request carried no file.
	Content      io.Reader
	OriginalName string
	MimeType     string
	// Size is the declared size in bytes, -1 when unknown.
	Size    int64
	Subpath string
}

// UploadedFile describes a stored upload. FullURL is filled by the HTTP
// layer, which knows the request host.
type UploadedFile struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mimeType"`
	Path         string `json:"path"`
	URL          string `json:"url"`
	FullURL      string `json:"fullUrl"`
	LocalPath    string `json:"localPath"`
}

// DirEntry is one element of a directory listing.
type DirEntry struct {
	Filename    string    `json:"filename"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
	IsDirectory bool      `json:"isDirectory"`
	URL         string    `json:"url"`
	FullURL     string    `json:"fullUrl"`
}

// StoragePolicy holds the upload rules of the file server.
type StoragePolicy struct {
	AllowedExtensions []string
	MaxFileSize       int64
	MaxFiles          int
}
