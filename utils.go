package shopapp

import (
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

var unsafeNameCharsRegex = regexp.MustCompile(`[^a-zA-Z0-9]`)

// SanitizePath removes every ".." token and then any leading slashes from a
// client-supplied path. It is a pre-filter only: callers must still resolve
// the result with ResolveRelative before touching the disk.
func SanitizePath(p string) string {
	p = strings.ReplaceAll(p, "..", "")
	return strings.TrimLeft(p, "/")
}

// SanitizeBaseName replaces every character outside [a-zA-Z0-9] by '_'.
func SanitizeBaseName(name string) string {
	return unsafeNameCharsRegex.ReplaceAllString(name, "_")
}

// ResolveRelative turns a sanitized path into a clean, OS-specific path
// relative to the upload root. "." denotes the root itself. It fails with
// ErrInvalidPath when the path is absolute, climbs out of the root, or
// contains a NUL byte.
func ResolveRelative(sanitized string) (string, error) {
	if strings.ContainsRune(sanitized, 0) {
		return "", Invalid(ErrInvalidPath, "Ruta inválida")
	}

	rel := filepath.Clean(filepath.FromSlash(sanitized))
	if filepath.IsAbs(rel) || filepath.VolumeName(rel) != "" {
		return "", Invalid(ErrInvalidPath, "Ruta inválida")
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", Invalid(ErrInvalidPath, "Ruta inválida")
	}

	base := string(os.PathSeparator) + "root"
	if !IsWithinBase(base, filepath.Join(base, rel)) {
		return "", Invalid(ErrInvalidPath, "Ruta inválida")
	}

	return rel, nil
}

// IsWithinBase reports whether target is base or one of its descendants.
func IsWithinBase(base, target string) bool {
	base = normalizeForCompare(base)
	target = normalizeForCompare(target)

	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	if strings.HasPrefix(rel, ".."+string(os.PathSeparator)) || rel == ".." {
		return false
	}
	return true
}

func normalizeForCompare(p string) string {
	cleaned := filepath.Clean(p)
	if runtime.GOOS == "windows" {
		return strings.ToLower(cleaned)
	}
	return cleaned
}

// PublicURL builds the URL of an entry under the upload root, relative to
// the static prefix: "/{dir}/{name}" with forward slashes. Each segment is
// percent-escaped.
func PublicURL(dir, name string) string {
	dir = strings.ReplaceAll(dir, `\`, "/")
	segments := strings.Split(strings.Trim(path.Join("/", dir, name), "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return "/" + strings.Join(segments, "/")
}
