package obs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveReadyz(t *testing.T, h HealthHandlers) (int, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/readyz", h.Readyz)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestReadyzReportsEveryCheck(t *testing.T) {
	ok := func(context.Context) error { return nil }
	code, body := serveReadyz(t, HealthHandlers{Checks: map[string]Check{"mongo": ok, "redis": ok}})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ready", body["status"])
	assert.Equal(t, map[string]any{"mongo": "ok", "redis": "ok"}, body["checks"])
}

func TestReadyzFailsWhenAnyCheckFails(t *testing.T) {
	code, body := serveReadyz(t, HealthHandlers{Checks: map[string]Check{
		"mongo": func(context.Context) error { return nil },
		"redis": func(context.Context) error { return errors.New("dial tcp: connection refused") },
	}})

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "dial tcp: connection refused", body["checks"].(map[string]any)["redis"])
}

func TestReadyzWithoutChecks(t *testing.T) {
	code, body := serveReadyz(t, HealthHandlers{})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ready", body["status"])
}
