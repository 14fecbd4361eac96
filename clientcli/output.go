package clientcli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
)

// Formatter formats results for output.
type Formatter interface {
	FormatUpload(w io.Writer, results []UploadResult) error
	FormatDownload(w io.Writer, result *DownloadResult) error
	FormatDelete(w io.Writer, results []DeleteResult) error
	FormatList(w io.Writer, result *ListResult) error
	FormatHealth(w io.Writer, result *HealthResult) error
	FormatError(w io.Writer, err error) error
	FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error
	FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
}

// FormatUpload formats upload results as human-readable text.
func (f *HumanFormatter) FormatUpload(w io.Writer, results []UploadResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.LocalPath, r.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "Uploaded: %s -> %s (%s)\n", r.LocalPath, r.URL, formatSize(r.Size))
			if r.FullURL != "" {
				_, _ = fmt.Fprintf(w, "  URL: %s\n", r.FullURL)
			}
		}
	}
	return nil
}

// FormatDownload formats download result as human-readable text.
func (f *HumanFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	if f.Quiet {
		return nil
	}
	if result.LocalPath == "-" {
		_, _ = fmt.Fprintf(w, "Downloaded: %s (%s)\n", result.RemotePath, formatSize(result.Size))
	} else {
		_, _ = fmt.Fprintf(w, "Downloaded: %s -> %s (%s)\n", result.RemotePath, result.LocalPath, formatSize(result.Size))
	}
	return nil
}

// FormatDelete formats delete results as human-readable text.
func (f *HumanFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.Path, r.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "Deleted: %s\n", r.Path)
		}
	}
	return nil
}

// FormatList formats a directory listing as a table. Directories end in a
// slash and have no size.
func (f *HumanFormatter) FormatList(w io.Writer, result *ListResult) error {
	if len(result.Entries) == 0 {
		_, _ = fmt.Fprintln(w, "No files found")
		return nil
	}

	maxNameLen := 4 // "NAME"
	for i := range result.Entries {
		if n := len(displayName(&result.Entries[i])); n > maxNameLen {
			maxNameLen = n
		}
	}
	maxNameLen = min(maxNameLen, 60)

	_, _ = fmt.Fprintf(w, "%-*s  %10s  %s\n", maxNameLen, "NAME", "SIZE", "CREATED")
	_, _ = fmt.Fprintf(w, "%s  %s  %s\n", strings.Repeat("-", maxNameLen), strings.Repeat("-", 10), strings.Repeat("-", 19))

	files := 0
	for i := range result.Entries {
		e := &result.Entries[i]
		name := displayName(e)
		if len(name) > maxNameLen {
			name = name[:maxNameLen-3] + "..."
		}
		size := "-"
		if !e.IsDirectory {
			size = formatSize(e.Size)
			files++
		}
		_, _ = fmt.Fprintf(w, "%-*s  %10s  %s\n",
			maxNameLen,
			name,
			size,
			e.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}

	_, _ = fmt.Fprintf(w, "\n%d item(s), %d file(s) (%s total)\n", len(result.Entries), files, formatSize(result.TotalSize()))
	return nil
}

func displayName(e *Entry) string {
	if e.IsDirectory {
		return e.Name + "/"
	}
	return e.Name
}

// FormatHealth formats the health answer as human-readable text.
func (f *HumanFormatter) FormatHealth(w io.Writer, result *HealthResult) error {
	if f.Quiet {
		_, _ = fmt.Fprintln(w, result.Status)
		return nil
	}
	_, _ = fmt.Fprintf(w, "Server:     %s\n", result.Endpoint)
	_, _ = fmt.Fprintf(w, "Status:     %s\n", result.Status)
	_, _ = fmt.Fprintf(w, "Message:    %s\n", result.Message)
	_, _ = fmt.Fprintf(w, "Upload dir: %s\n", result.UploadDir)
	_, _ = fmt.Fprintf(w, "Checked at: %s\n", result.Timestamp.Format("2006-01-02 15:04:05"))
	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// FormatProfileList formats a list of profiles as human-readable text.
func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error {
	maxNameLen := 4 // "NAME"
	for i := range profiles {
		maxNameLen = max(maxNameLen, len(profiles[i].Name))
	}
	maxNameLen = min(maxNameLen, 20)

	_, _ = fmt.Fprintf(w, "  %-*s  %s\n", maxNameLen, "NAME", "ENDPOINT")
	_, _ = fmt.Fprintf(w, "  %s  %s\n", strings.Repeat("-", maxNameLen), strings.Repeat("-", 30))

	for i := range profiles {
		p := &profiles[i]
		marker := " "
		if p.Name == defaultName {
			marker = "*"
		}

		name := p.Name
		if len(name) > maxNameLen {
			name = name[:maxNameLen-3] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s %-*s  %s\n", marker, maxNameLen, name, p.Endpoint)
	}

	return nil
}

// FormatProfileShow formats a single profile as human-readable text.
func (f *HumanFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error {
	_, _ = fmt.Fprintf(w, "Name:     %s", profile.Name)
	if isDefault {
		_, _ = fmt.Fprintf(w, " (default)")
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Endpoint: %s\n", profile.Endpoint)
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatUpload formats upload results as JSON.
func (f *JSONFormatter) FormatUpload(w io.Writer, results []UploadResult) error {
	type jsonResult struct {
		UploadResult
		Error string `json:"error,omitempty"`
	}

	output := make([]jsonResult, len(results))
	for i := range results {
		output[i] = jsonResult{UploadResult: results[i]}
		if results[i].Err != nil {
			output[i].Error = results[i].Err.Error()
		}
	}

	return writeJSON(w, output)
}

// FormatDownload formats download result as JSON.
func (f *JSONFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	return writeJSON(w, result)
}

// FormatDelete formats delete results as JSON.
func (f *JSONFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	type jsonResult struct {
		Path    string `json:"path"`
		Deleted bool   `json:"deleted"`
		Error   string `json:"error,omitempty"`
	}

	output := struct {
		Results []jsonResult `json:"results"`
	}{
		Results: make([]jsonResult, len(results)),
	}

	for i, r := range results {
		jr := jsonResult{
			Path:    r.Path,
			Deleted: r.Deleted,
		}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		}
		output.Results[i] = jr
	}

	return writeJSON(w, output)
}

// FormatList formats list results as JSON.
func (f *JSONFormatter) FormatList(w io.Writer, result *ListResult) error {
	return writeJSON(w, result)
}

// FormatHealth formats the health answer as JSON.
func (f *JSONFormatter) FormatHealth(w io.Writer, result *HealthResult) error {
	return writeJSON(w, result)
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	}
	return writeJSON(w, output)
}

// FormatProfileList formats a list of profiles as JSON.
func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error {
	type jsonProfile struct {
		Name     string `json:"name"`
		Endpoint string `json:"endpoint"`
		Default  bool   `json:"default,omitempty"`
	}

	output := struct {
		Profiles []jsonProfile `json:"profiles"`
	}{
		Profiles: make([]jsonProfile, len(profiles)),
	}

	for i := range profiles {
		output.Profiles[i] = jsonProfile{
			Name:     profiles[i].Name,
			Endpoint: profiles[i].Endpoint,
			Default:  profiles[i].Name == defaultName,
		}
	}

	return writeJSON(w, output)
}

// FormatProfileShow formats a single profile as JSON.
func (f *JSONFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error {
	output := struct {
		Name     string `json:"name"`
		Endpoint string `json:"endpoint"`
		Default  bool   `json:"default"`
	}{
		Name:     profile.Name,
		Endpoint: profile.Endpoint,
		Default:  isDefault,
	}
	return writeJSON(w, output)
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatSize(bytes int64) string {
	if bytes < 0 {
		return "-"
	}
	return humanize.Bytes(uint64(bytes))
}
