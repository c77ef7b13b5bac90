package docsgate

import (
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// CacheControlImmutable is applied to every versioned resource.
	CacheControlImmutable = "public, max-age=31536000, immutable"
	// CacheControlDynamic is reserved for content that can change under a
	// stable URL. No route currently serves such content.
	CacheControlDynamic = "public, max-age=60, must-revalidate"
	// CacheControlNoStore is applied to the custom not-found page.
	CacheControlNoStore = "no-store"

	// LatestVersionKey holds the version segment that /latest/ resolves to.
	LatestVersionKey = "latest-version.txt"
	// NotFoundKey is the optional custom not-found page.
	NotFoundKey = "404.html"
	// IndexDocument is appended to keys that address a directory.
	IndexDocument = "index.html"

	// LatestPrefix is the path prefix of the latest alias.
	LatestPrefix = "/latest/"
)

// Metadata describes the HTTP-visible properties of a stored object.
type Metadata struct {
	ContentType        string    `json:"content_type,omitempty" yaml:"content_type,omitempty"`
	ContentLanguage    string    `json:"content_language,omitempty" yaml:"content_language,omitempty"`
	ContentDisposition string    `json:"content_disposition,omitempty" yaml:"content_disposition,omitempty"`
	ContentEncoding    string    `json:"content_encoding,omitempty" yaml:"content_encoding,omitempty"`
	CacheControl       string    `json:"cache_control,omitempty" yaml:"cache_control,omitempty"`
	ETag               string    `json:"etag,omitempty" yaml:"etag,omitempty"`
	Size               int64     `json:"size" yaml:"size"`
	LastModified       time.Time `json:"last_modified" yaml:"last_modified"`
}

// WriteHeader copies the metadata into h. Empty fields are skipped.
// Size is written only when positive.
func (m Metadata) WriteHeader(h http.Header) {
	set := func(key, value string) {
		if value != "" {
			h.Set(key, value)
		}
	}

	set("Content-Type", m.ContentType)
	set("Content-Language", m.ContentLanguage)
	set("Content-Disposition", m.ContentDisposition)
	set("Content-Encoding", m.ContentEncoding)
	set("Cache-Control", m.CacheControl)

	if m.ETag != "" {
		h.Set("ETag", quoteETag(m.ETag))
	}
	if m.Size > 0 {
		h.Set("Content-Length", strconv.FormatInt(m.Size, 10))
	}
	if !m.LastModified.IsZero() {
		h.Set("Last-Modified", m.LastModified.UTC().Format(http.TimeFormat))
	}
}

func quoteETag(etag string) string {
	if strings.HasPrefix(etag, `"`) || strings.HasPrefix(etag, `W/"`) {
		return etag
	}
	return `"` + etag + `"`
}

// Object is a single object read from an ObjectStore.
// The caller is responsible for closing Body.
type Object struct {
	Key      string
	Body     io.ReadCloser
	Metadata Metadata
}

// ObjectEntry describes a stored object without its content.
type ObjectEntry struct {
	Path        string
	Size        int64
	ETag        string
	ContentType string
	ModTime     time.Time
}

// RouteKind identifies which routing rule handled a request.
type RouteKind string

const (
	RouteRoot     RouteKind = "root"
	RouteLatest   RouteKind = "latest"
	RouteResource RouteKind = "resource"
	RouteNotFound RouteKind = "not_found"
)

func (k RouteKind) String() string {
	return string(k)
}

// Response is the outcome of routing one request. Body is nil for
// redirects. The caller must Close it once the body is written.
type Response struct {
	Status int
	Header http.Header
	Body   io.ReadCloser
	// Kind is the routing rule that produced the response.
	Kind RouteKind
	// Key is the storage key that was served, if any.
	Key string
}

// Location returns the redirect target, or an empty string.
func (r Response) Location() string {
	return r.Header.Get("Location")
}

// Close releases the response body, if any.
func (r Response) Close() error {
	if r.Body == nil {
		return nil
	}
	return r.Body.Close()
}

// Tables holds configurable table names for catalog storage.
type Tables struct {
	Objects string `mapstructure:"objects"`
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// Validate checks that all required table names are set and valid.
func (t Tables) Validate() error {
	if t.Objects == "" {
		return fmt.Errorf("validate tables: %w: objects table name cannot be empty", ErrInvalidInput)
	}

	if !IsValidTableName(t.Objects) {
		return fmt.Errorf("validate tables: %w: invalid objects table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", ErrInvalidInput, t.Objects)
	}

	return nil
}
