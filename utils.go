package docsgate

import (
	"mime"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// IsValidKey validates that a key string is safe to look up in a store.
// It checks that the key:
//   - is not empty, ".", or "/"
//   - is relative (does not start with "/")
//   - does not end with "/"
//   - does not contain ".." (path traversal)
//   - does not contain "//" (empty segments)
//   - does not contain a backslash
//   - is valid UTF-8
//   - does not contain "." segments (/., /./, or ending with /.)
//   - does not contain null bytes, control characters (< 0x20) or DEL (0x7f)
//
// Unlike upload paths, published documentation may contain spaces and
// characters such as '~' or '#' in file names, so those are allowed.
func IsValidKey(k string) bool {
	if k == "" || k == "/" || k == "." {
		return false
	}

	if k[0] == '/' {
		return false
	}

	if strings.HasSuffix(k, "/") {
		return false
	}

	if strings.Contains(k, "..") {
		return false
	}

	if strings.Contains(k, "//") {
		return false
	}

	if strings.Contains(k, `\`) {
		return false
	}

	if !utf8.ValidString(k) {
		return false
	}

	if strings.HasPrefix(k, "./") || strings.Contains(k, "/./") || strings.HasSuffix(k, "/.") {
		return false
	}

	for _, r := range k {
		if r == 0 || r < 0x20 || r == 0x7f {
			return false
		}
	}

	return true
}

// IsValidVersion reports whether v can stand in for the latest segment of
// a path. A version is a single non-empty path segment without whitespace.
func IsValidVersion(v string) bool {
	if v == "" || v == "." || strings.ContainsAny(v, `/\?#`) {
		return false
	}

	if !IsValidKey(v) {
		return false
	}

	for _, r := range v {
		if unicode.IsSpace(r) {
			return false
		}
	}

	return true
}

// ContentTypeByExtension returns the MIME type registered for the key's
// extension, or application/octet-stream.
func ContentTypeByExtension(key string) string {
	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		return "application/octet-stream"
	}
	return contentType
}
