// AngelaMos | 2026
// handler_test.go

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okCheck(context.Context) error   { return nil }
func failCheck(context.Context) error { return errors.New("down") }

func readiness(t *testing.T, h *Handler) (int, ReadinessResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	var body ReadinessResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return rec.Code, body
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name       string
		deps       []Dependency
		wantCode   int
		wantStatus string
	}{
		{
			name: "all healthy",
			deps: []Dependency{
				{Name: "database", Checker: CheckerFunc(okCheck)},
				{Name: "redis", Checker: CheckerFunc(okCheck)},
			},
			wantCode:   http.StatusOK,
			wantStatus: "ok",
		},
		{
			name: "required dependency down",
			deps: []Dependency{
				{Name: "database", Checker: CheckerFunc(failCheck)},
				{Name: "redis", Checker: CheckerFunc(okCheck)},
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "unavailable",
		},
		{
			name: "optional dependency down",
			deps: []Dependency{
				{Name: "database", Checker: CheckerFunc(okCheck)},
				{Name: "redis", Checker: CheckerFunc(failCheck), Optional: true},
			},
			wantCode:   http.StatusOK,
			wantStatus: "degraded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := readiness(t, NewHandler(tt.deps...))
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Len(t, body.Checks, len(tt.deps))
		})
	}
}

func TestShutdownFlipsReadiness(t *testing.T) {
	h := NewHandler(Dependency{Name: "database", Checker: CheckerFunc(okCheck)})
	h.SetShutdown(true)

	rec := httptest.NewRecorder()
	h.Liveness(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	code, body := readiness(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "shutting_down", body.Status)
}
