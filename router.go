package docsgate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// maxVersionBytes bounds how much of latest-version.txt is read.
const maxVersionBytes = 1024

// RouterConfig holds configuration options for Router.
type RouterConfig struct {
	// Scheme of absolute redirect URLs (default: https).
	Scheme string
}

// Router maps request paths to responses. It holds no mutable state and is
// safe for concurrent use.
type Router struct {
	store  ObjectStore
	scheme string
}

// NewRouter creates a Router that reads objects from store.
func NewRouter(store ObjectStore, cfg RouterConfig) *Router {
	scheme := cfg.Scheme
	if scheme == "" {
		scheme = "https"
	}
	return &Router{
		store:  store,
		scheme: scheme,
	}
}

// Classify returns the routing rule that applies to path.
func Classify(path string) RouteKind {
	switch {
	case path == "" || path == "/":
		return RouteRoot
	case strings.HasPrefix(path, LatestPrefix):
		return RouteLatest
	default:
		return RouteResource
	}
}

// ResolveKey maps a resource path to its storage key. Directory paths
// resolve to their index document.
func ResolveKey(path string) string {
	key := strings.TrimPrefix(path, "/")
	if strings.HasSuffix(path, "/") {
		key += IndexDocument
	}
	if key == "" {
		key = IndexDocument
	}
	return key
}

// RewriteLatest replaces the leading /latest/ segment of path with version.
// Later occurrences of "latest" are left untouched. Paths without the
// prefix are returned unchanged.
func RewriteLatest(path, version string) string {
	if !strings.HasPrefix(path, LatestPrefix) {
		return path
	}
	return "/" + version + "/" + path[len(LatestPrefix):]
}

// Route produces the response for a request to path on host. path is the
// request path as sent on the wire, in its escaped form; an already decoded
// path is accepted as long as it contains no '%'.
//
// Missing objects and a missing latest-version.txt are reported as
// responses, not errors. An error is returned only when the store itself
// fails; the caller owns turning that into a response.
//
// The caller must Close the returned Response.
func (r *Router) Route(ctx context.Context, path, host string) (Response, error) {
	switch Classify(path) {
	case RouteRoot:
		return r.redirect(RouteRoot, host, LatestPrefix), nil
	case RouteLatest:
		return r.routeLatest(ctx, path, host)
	default:
		return r.routeResource(ctx, path)
	}
}

func (r *Router) routeLatest(ctx context.Context, path, host string) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, fmt.Errorf("route latest: %w", err)
	}

	obj, err := r.store.Get(ctx, LatestVersionKey)
	if errors.Is(err, ErrNotFound) {
		return textResponse(RouteLatest, http.StatusInternalServerError, LatestVersionKey+" not found"), nil
	}
	if err != nil {
		return Response{}, fmt.Errorf("route latest: %w", err)
	}

	version, err := readVersion(obj.Body)
	if err != nil {
		return Response{}, fmt.Errorf("route latest: %w", err)
	}

	if !IsValidVersion(version) {
		return textResponse(RouteLatest, http.StatusInternalServerError, LatestVersionKey+" is invalid"), nil
	}

	return r.redirect(RouteLatest, host, RewriteLatest(path, version)), nil
}

func (r *Router) routeResource(ctx context.Context, path string) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, fmt.Errorf("route resource: %w", err)
	}

	key, ok := unescapeKey(ResolveKey(path))
	if !ok {
		return r.routeNotFound(ctx)
	}

	obj, err := r.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return r.routeNotFound(ctx)
	}
	if err != nil {
		return Response{}, fmt.Errorf("route resource %s: %w", key, err)
	}

	header := make(http.Header)
	obj.Metadata.WriteHeader(header)
	header.Set("Cache-Control", CacheControlImmutable)
	header.Set("X-Content-Type-Options", "nosniff")
	header.Set("Referrer-Policy", "same-origin")

	return Response{
		Status: http.StatusOK,
		Header: header,
		Body:   obj.Body,
		Kind:   RouteResource,
		Key:    key,
	}, nil
}

func (r *Router) routeNotFound(ctx context.Context) (Response, error) {
	page, err := r.store.Get(ctx, NotFoundKey)
	if errors.Is(err, ErrNotFound) {
		return textResponse(RouteNotFound, http.StatusNotFound, "404 Not Found"), nil
	}
	if err != nil {
		return Response{}, fmt.Errorf("route not found page: %w", err)
	}

	header := make(http.Header)
	page.Metadata.WriteHeader(header)
	header.Set("Cache-Control", CacheControlNoStore)

	return Response{
		Status: http.StatusNotFound,
		Header: header,
		Body:   page.Body,
		Kind:   RouteNotFound,
		Key:    NotFoundKey,
	}, nil
}

// unescapeKey decodes an escaped key one segment at a time. A segment that
// decodes to a '/' names no object, so it is rejected along with malformed
// escapes.
func unescapeKey(escaped string) (string, bool) {
	segments := strings.Split(escaped, "/")
	for i, seg := range segments {
		decoded, err := url.PathUnescape(seg)
		if err != nil || strings.Contains(decoded, "/") {
			return "", false
		}
		segments[i] = decoded
	}
	return strings.Join(segments, "/"), true
}

func (r *Router) redirect(kind RouteKind, host, path string) Response {
	target := url.URL{Scheme: r.scheme, Host: host, Path: path}
	if decoded, err := url.PathUnescape(path); err == nil {
		target.Path = decoded
		target.RawPath = path
	}

	header := make(http.Header)
	header.Set("Location", target.String())

	return Response{
		Status: http.StatusFound,
		Header: header,
		Kind:   kind,
	}
}

func textResponse(kind RouteKind, status int, body string) Response {
	header := make(http.Header)
	header.Set("Content-Type", "text/plain; charset=utf-8")
	header.Set("Content-Length", strconv.Itoa(len(body)))

	return Response{
		Status: status,
		Header: header,
		Body:   io.NopCloser(bytes.NewReader([]byte(body))),
		Kind:   kind,
	}
}

func readVersion(body io.ReadCloser) (string, error) {
	defer func() { _ = body.Close() }()

	data, err := io.ReadAll(io.LimitReader(body, maxVersionBytes))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", LatestVersionKey, err)
	}

	return strings.TrimSpace(string(data)), nil
}
