package api

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

func runGzip(t *testing.T, maxBytes int64, body []byte, encoding string) (*httptest.ResponseRecorder, []byte, error) {
	t.Helper()
	e := echo.New()
	var got []byte
	var readErr error
	h := GzipRequestMiddleware(maxBytes)(func(c echo.Context) error {
		got, readErr = io.ReadAll(c.Request().Body)
		return c.NoContent(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	if encoding != "" {
		req.Header.Set(echo.HeaderContentEncoding, encoding)
	}
	rec := httptest.NewRecorder()
	err := h(e.NewContext(req, rec))
	if err == nil {
		err = readErr
	}
	return rec, got, err
}

func TestGzipRequestMiddlewareDecompresses(t *testing.T) {
	payload := []byte(`[{"id":1,"title":"x","category":"important-&-urgent"}]`)
	_, got, err := runGzip(t, 1024, gzipBytes(t, payload), "br, GZIP")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("unexpected body: %s", got)
	}
}

func TestGzipRequestMiddlewarePassesPlainBodies(t *testing.T) {
	_, got, err := runGzip(t, 4, []byte("plain body"), "")
	if err != nil || string(got) != "plain body" {
		t.Fatalf("unexpected result %q %v", got, err)
	}
}

func TestGzipRequestMiddlewareRejectsInvalidGzip(t *testing.T) {
	_, _, err := runGzip(t, 1024, []byte("not gzip"), "gzip")
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 error, got %v", err)
	}
}

func TestGzipRequestMiddlewareCapsDecompressedSize(t *testing.T) {
	payload := []byte(strings.Repeat("a", 4096))
	_, got, err := runGzip(t, 1000, gzipBytes(t, payload), "gzip")
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 error, got %v", err)
	}
	if len(got) > 1001 {
		t.Fatalf("read %d bytes past the cap", len(got))
	}
}

func TestHasGzipEncoding(t *testing.T) {
	cases := map[string]bool{"": false, "gzip": true, "deflate, gzip": true, "br": false}
	for header, want := range cases {
		if got := hasGzipEncoding(header); got != want {
			t.Fatalf("hasGzipEncoding(%q) = %v, want %v", header, got, want)
		}
	}
}
