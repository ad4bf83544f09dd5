// fake_api.go - In-process lab analytics API for tests
package testutil

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
)

// Request is one call received by the fake API
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Body     string
	FileName string
}

// FakeAPI serves the lab analytics contract with overridable handlers
type FakeAPI struct {
	Server *httptest.Server

	echo      *echo.Echo
	mu        sync.Mutex
	requests  []Request
	overrides map[string][]echo.HandlerFunc
	calls     map[string]int
}

// NewFakeAPI starts a fake API that is closed when the test ends
func NewFakeAPI(t testing.TB) *FakeAPI {
	t.Helper()

	f := &FakeAPI{
		echo:      echo.New(),
		overrides: make(map[string][]echo.HandlerFunc),
		calls:     make(map[string]int),
	}
	f.echo.HideBanner = true
	f.echo.Use(f.record)

	f.route(http.MethodGet, "/health", defaultHealth)
	f.route(http.MethodGet, "/api/stats", defaultStats)
	f.route(http.MethodGet, "/api/recent-abnormal", defaultRecentAbnormal)
	f.route(http.MethodGet, "/api/patients", defaultPatients)
	f.route(http.MethodPost, "/api/query", defaultQuery)
	f.route(http.MethodPost, "/api/ocr/upload", defaultUpload)

	f.Server = httptest.NewServer(f.echo)
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the base address of the fake API
func (f *FakeAPI) URL() string {
	return f.Server.URL
}

// Handle replaces the handler for method and path
func (f *FakeAPI) Handle(method, path string, h echo.HandlerFunc) {
	f.HandleSequence(method, path, h)
}

// HandleSequence answers the nth call with the nth handler; the last
// handler keeps answering once the sequence is exhausted.
func (f *FakeAPI) HandleSequence(method, path string, handlers ...echo.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := method + " " + path
	f.overrides[key] = handlers
	f.calls[key] = 0
}

// Requests returns a copy of every request received so far
func (f *FakeAPI) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Request, len(f.requests))
	copy(out, f.requests)
	return out
}

// RequestsTo filters received requests by path
func (f *FakeAPI) RequestsTo(path string) []Request {
	var out []Request
	for _, r := range f.Requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (f *FakeAPI) route(method, path string, fallback echo.HandlerFunc) {
	key := method + " " + path
	f.echo.Add(method, path, func(c echo.Context) error {
		f.mu.Lock()
		handlers := f.overrides[key]
		n := f.calls[key]
		f.calls[key] = n + 1
		f.mu.Unlock()

		if len(handlers) == 0 {
			return fallback(c)
		}
		if n >= len(handlers) {
			n = len(handlers) - 1
		}
		return handlers[n](c)
	})
}

func (f *FakeAPI) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		rec := Request{
			Method:   req.Method,
			Path:     req.URL.Path,
			RawQuery: req.URL.RawQuery,
		}

		contentType := req.Header.Get(echo.HeaderContentType)
		if strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
			if fh, err := c.FormFile("file"); err == nil {
				rec.FileName = fh.Filename
			}
		} else if req.Body != nil {
			data, _ := io.ReadAll(req.Body)
			req.Body = io.NopCloser(bytes.NewReader(data))
			rec.Body = string(data)
		}

		f.mu.Lock()
		f.requests = append(f.requests, rec)
		f.mu.Unlock()

		return next(c)
	}
}

// JSON returns a handler answering with a fixed status and payload
func JSON(status int, payload any) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(status, payload)
	}
}

// Raw returns a handler answering with a fixed non-JSON body
func Raw(status int, body string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.String(status, body)
	}
}

// DropConnection closes the connection without answering
func DropConnection(c echo.Context) error {
	conn, _, err := c.Response().Hijack()
	if err != nil {
		return err
	}
	return conn.Close()
}

// Block returns a handler that waits for release before answering with next
func Block(release <-chan struct{}, next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		select {
		case <-release:
		case <-c.Request().Context().Done():
			return nil
		}
		return next(c)
	}
}

func defaultHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": "Lab Analytics API",
	})
}

func defaultStats(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"total_patients":    3,
		"total_tests":       42,
		"abnormal_count":    7,
		"unique_tests":      12,
		"test_distribution": map[string]int{"HEMOGLOBIN": 5, "GLUCOSE": 4},
		"abnormal_by_test":  map[string]int{"HEMOGLOBIN": 2},
	})
}

func defaultRecentAbnormal(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"count":   1,
		"results": []map[string]any{{
			"patient_name":       "Asha Rao",
			"canonical_test":     "HEMOGLOBIN",
			"abnormal_direction": "LOW",
			"value":              9.8,
			"unit":               "g/dL",
			"reference_min":      12,
			"reference_max":      15.5,
		}},
	})
}

func defaultPatients(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"count":   1,
		"patients": []map[string]any{{
			"name":         "Asha Rao",
			"age":          34,
			"gender":       "F",
			"test_count":   14,
			"latest_test":  "2024-03-02",
			"has_abnormal": true,
		}},
	})
}

func defaultQuery(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"success":      true,
		"message":      "No matching results",
		"result_count": 0,
		"data":         []any{},
	})
}

func defaultUpload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"detail": "file is required"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":  true,
		"filename": fh.Filename,
		"message":  "Extracted lab report from " + fh.Filename,
	})
}
