package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgequery/edgequery/pkg/logger"
	"github.com/edgequery/edgequery/pkg/query"
	"github.com/edgequery/edgequery/pkg/table"
)

type fakeRunner struct {
	result *table.Result
	err    error
	names  []string

	gotName string
}

func (f *fakeRunner) RunNamed(ctx context.Context, name string) (*table.Result, error) {
	f.gotName = name
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeRunner) Names() []string {
	return f.names
}

func newTestServer(t *testing.T, runner QueryRunner) *Server {
	t.Helper()
	logger.NewTestLogger(t)
	s, err := New(Config{}, runner)
	require.NoError(t, err)
	return s
}

func TestIndexRendersTable(t *testing.T) {
	runner := &fakeRunner{
		result: &table.Result{
			Columns: []string{"day", "count"},
			Rows: []table.Row{
				{"day": "2024-01-01", "count": "12"},
				{"day": "2024-01-02", "count": "7"},
			},
		},
		names: []string{"daily_counts"},
	}
	s := newTestServer(t, runner)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<th>day</th>")
	assert.Contains(t, body, "<th>count</th>")
	assert.Contains(t, body, "<td>2024-01-01</td>")
	assert.Contains(t, body, "<td>7</td>")
	assert.Contains(t, body, `href="/?q=daily_counts"`)
	assert.Equal(t, "", runner.gotName)
}

func TestIndexPassesQueryName(t *testing.T) {
	runner := &fakeRunner{result: &table.Result{Columns: []string{"a"}}}
	s := newTestServer(t, runner)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?q=daily_counts", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "daily_counts", runner.gotName)
}

func TestIndexEscapesCellValues(t *testing.T) {
	runner := &fakeRunner{
		result: &table.Result{
			Columns: []string{"a"},
			Rows:    []table.Row{{"a": "<script>alert(1)</script>"}},
		},
	}
	s := newTestServer(t, runner)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	body := rec.Body.String()
	assert.NotContains(t, body, "<script>alert(1)</script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestIndexEmptyResult(t *testing.T) {
	runner := &fakeRunner{result: &table.Result{Columns: []string{}}}
	s := newTestServer(t, runner)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "no rows")
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "unknown query",
			err:        fmt.Errorf("%w: %q", query.ErrUnknownQuery, "missing"),
			wantStatus: http.StatusNotFound,
			wantBody:   "No such named query",
		},
		{
			name:       "connect failure",
			err:        &query.ConnectError{Host: "edge:22", Err: errors.New("connection refused")},
			wantStatus: http.StatusBadGateway,
			wantBody:   "Could not reach the edge node",
		},
		{
			name: "command failure",
			err: &query.CommandError{
				ExitCode: 2,
				Stderr:   []byte("Error: SemanticException"),
				Err:      errors.New("remote command failed"),
			},
			wantStatus: http.StatusBadGateway,
			wantBody:   "SemanticException",
		},
		{
			name:       "parse failure",
			err:        &table.ParseError{Line: 3, Reason: "expected 2 fields, got 5"},
			wantStatus: http.StatusInternalServerError,
			wantBody:   "could not be parsed",
		},
		{
			name:       "unclassified",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "could not be completed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, &fakeRunner{err: tt.err})

			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestErrorPageNeverLeaksRawError(t *testing.T) {
	s := newTestServer(t, &fakeRunner{err: errors.New("password=hunter2 rejected")})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotContains(t, rec.Body.String(), "hunter2")
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, &fakeRunner{result: &table.Result{}})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestUnknownPath(t *testing.T) {
	s := newTestServer(t, &fakeRunner{result: &table.Result{}})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, &fakeRunner{result: &table.Result{}})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestConfigDefaults(t *testing.T) {
	s := newTestServer(t, &fakeRunner{result: &table.Result{}})
	assert.Equal(t, ":3000", s.cfg.ListenAddr)
	assert.NotZero(t, s.cfg.ReadTimeout)
	assert.NotZero(t, s.cfg.ShutdownTimeout)
}
