package http_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sagarc03/docsgate"
	docsgatehttp "github.com/sagarc03/docsgate/http"
)

type closeTracker struct {
	io.Reader
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}

func TestWriteResponse(t *testing.T) {
	body := &closeTracker{Reader: strings.NewReader("hello")}
	resp := docsgate.Response{
		Status: http.StatusOK,
		Header: http.Header{"Content-Type": {"text/plain"}, "Cache-Control": {docsgate.CacheControlImmutable}},
		Body:   body,
	}

	rec := httptest.NewRecorder()
	docsgatehttp.WriteResponse(rec, httptest.NewRequest(http.MethodGet, "/x", nil), resp)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Equal(t, docsgate.CacheControlImmutable, rec.Header().Get("Cache-Control"))
	assert.True(t, body.closed)
}

func TestWriteResponse_Head(t *testing.T) {
	body := &closeTracker{Reader: strings.NewReader("hello")}
	resp := docsgate.Response{
		Status: http.StatusOK,
		Header: http.Header{"Content-Length": {"5"}},
		Body:   body,
	}

	rec := httptest.NewRecorder()
	docsgatehttp.WriteResponse(rec, httptest.NewRequest(http.MethodHead, "/x", nil), resp)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, "5", rec.Header().Get("Content-Length"))
	assert.True(t, body.closed)
}

func TestWriteResponse_NilBody(t *testing.T) {
	resp := docsgate.Response{
		Status: http.StatusFound,
		Header: http.Header{"Location": {"https://example.com/latest/"}},
	}

	rec := httptest.NewRecorder()
	docsgatehttp.WriteResponse(rec, httptest.NewRequest(http.MethodGet, "/", nil), resp)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://example.com/latest/", rec.Header().Get("Location"))
	assert.Empty(t, rec.Body.String())
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	docsgatehttp.WriteError(rec, http.StatusBadGateway)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "502 Bad Gateway", rec.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "15", rec.Header().Get("Content-Length"))
}
