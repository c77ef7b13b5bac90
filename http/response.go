package http

import (
	"io"
	"log/slog"
	"maps"
	"net/http"
	"strconv"

	"github.com/sagarc03/docsgate"
)

// WriteResponse writes resp to w and closes its body. HEAD requests get the
// headers only.
func WriteResponse(w http.ResponseWriter, r *http.Request, resp docsgate.Response) {
	defer func() { _ = resp.Close() }()

	maps.Copy(w.Header(), resp.Header)
	w.WriteHeader(resp.Status)

	if r.Method == http.MethodHead || resp.Body == nil {
		return
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		slog.Debug("write response body", "key", resp.Key, "request_id", RequestIDFromContext(r.Context()), "err", err)
	}
}

// WriteError writes a plain-text body of the form "502 Bad Gateway".
func WriteError(w http.ResponseWriter, code int) {
	body := strconv.Itoa(code) + " " + http.StatusText(code)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	_, _ = io.WriteString(w, body)
}
