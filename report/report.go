// Package report formats the results of the resolve and index commands.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sagarc03/docsgate"
	"github.com/sagarc03/docsgate/catalog"
)

// Output formats accepted by NewFormatter.
const (
	OutputHuman = "human"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// Resolution is the outcome of routing one path, without its body.
type Resolution struct {
	Path     string            `json:"path" yaml:"path"`
	Status   int               `json:"status" yaml:"status"`
	Route    string            `json:"route,omitempty" yaml:"route,omitempty"`
	Location string            `json:"location,omitempty" yaml:"location,omitempty"`
	Key      string            `json:"key,omitempty" yaml:"key,omitempty"`
	Headers  map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Error    string            `json:"error,omitempty" yaml:"error,omitempty"`
}

// FromResponse summarizes resp for path. Multi-valued headers are joined
// with ", ".
func FromResponse(path string, resp docsgate.Response) Resolution {
	headers := make(map[string]string, len(resp.Header))
	for name, values := range resp.Header {
		headers[name] = strings.Join(values, ", ")
	}

	return Resolution{
		Path:     path,
		Status:   resp.Status,
		Route:    resp.Kind.String(),
		Location: resp.Location(),
		Key:      resp.Key,
		Headers:  headers,
	}
}

// FromError records a path whose routing failed. Status is 502, matching
// what the server would return.
func FromError(path string, err error) Resolution {
	return Resolution{
		Path:   path,
		Status: http.StatusBadGateway,
		Error:  err.Error(),
	}
}

// Formatter formats results for output.
type Formatter interface {
	FormatResolve(w io.Writer, results []Resolution) error
	FormatIndex(w io.Writer, result catalog.IndexResult) error
	FormatError(w io.Writer, err error) error
}

// NewFormatter returns the formatter for output.
func NewFormatter(output string) (Formatter, error) {
	switch output {
	case "", OutputHuman:
		return &HumanFormatter{}, nil
	case OutputJSON:
		return &JSONFormatter{}, nil
	case OutputYAML:
		return &YAMLFormatter{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown output format %q (human, json, yaml)", docsgate.ErrInvalidInput, output)
	}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct{}

// FormatResolve prints one block per path with headers in sorted order.
func (f *HumanFormatter) FormatResolve(w io.Writer, results []Resolution) error {
	for i := range results {
		r := &results[i]
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}

		_, _ = fmt.Fprintf(w, "%s\n", r.Path)
		_, _ = fmt.Fprintf(w, "  Status:   %d %s\n", r.Status, http.StatusText(r.Status))
		if r.Error != "" {
			_, _ = fmt.Fprintf(w, "  Error:    %s\n", r.Error)
			continue
		}
		_, _ = fmt.Fprintf(w, "  Route:    %s\n", r.Route)
		if r.Location != "" {
			_, _ = fmt.Fprintf(w, "  Location: %s\n", r.Location)
		}
		if r.Key != "" {
			_, _ = fmt.Fprintf(w, "  Key:      %s\n", r.Key)
		}
		if size, err := strconv.ParseInt(r.Headers["Content-Length"], 10, 64); err == nil {
			_, _ = fmt.Fprintf(w, "  Size:     %s\n", formatSize(size))
		}

		names := make([]string, 0, len(r.Headers))
		for name := range r.Headers {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			_, _ = fmt.Fprintf(w, "  %s: %s\n", name, r.Headers[name])
		}
	}
	return nil
}

// FormatIndex formats index counts as human-readable text.
func (f *HumanFormatter) FormatIndex(w io.Writer, result catalog.IndexResult) error {
	_, _ = fmt.Fprintf(w, "Indexed: %d created, %d updated, %d removed\n", result.Created, result.Updated, result.Removed)
	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatResolve formats resolutions as a JSON array.
func (f *JSONFormatter) FormatResolve(w io.Writer, results []Resolution) error {
	if results == nil {
		results = []Resolution{}
	}
	return writeJSON(w, results)
}

// FormatIndex formats index counts as JSON.
func (f *JSONFormatter) FormatIndex(w io.Writer, result catalog.IndexResult) error {
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

// YAMLFormatter outputs YAML.
type YAMLFormatter struct{}

// FormatResolve formats resolutions as a YAML sequence.
func (f *YAMLFormatter) FormatResolve(w io.Writer, results []Resolution) error {
	if results == nil {
		results = []Resolution{}
	}
	return writeYAML(w, results)
}

// FormatIndex formats index counts as YAML.
func (f *YAMLFormatter) FormatIndex(w io.Writer, result catalog.IndexResult) error {
	return writeYAML(w, result)
}

// FormatError formats an error as YAML.
func (f *YAMLFormatter) FormatError(w io.Writer, err error) error {
	output := struct {
		Error string `yaml:"error"`
	}{
		Error: err.Error(),
	}
	return writeYAML(w, output)
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
