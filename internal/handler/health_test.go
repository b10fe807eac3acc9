package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withHeap(t *testing.T, used uint64) {
	t.Helper()
	orig := heapInUse
	heapInUse = func() uint64 { return used }
	t.Cleanup(func() { heapInUse = orig })
}

func status(t *testing.T, h echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h(echo.New().NewContext(req, rec)))
	return rec
}

func TestHealth(t *testing.T) {
	withHeap(t, 100)
	h := newHandler()
	require.Equal(t, http.StatusOK, jsonCall(h.UpdateCars, http.MethodPut, `[{"id":1,"seats":5}]`).Code)

	rec := status(t, Health(h.Service, 1000))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","details":{
		"pool":{"cars":1,"seats":5,"free_seats":5,"groups_seated":0,"groups_waiting":0},
		"memory_heap":{"status":"up","used_bytes":100,"limit_bytes":1000}}}`, rec.Body.String())
}

func TestHealthHeapLimitExceeded(t *testing.T) {
	withHeap(t, 2000)

	rec := status(t, Health(newHandler().Service, 1000))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "error", body["status"])
	heap := body["error"].(map[string]interface{})["memory_heap"].(map[string]interface{})
	assert.Equal(t, "down", heap["status"])
	assert.Equal(t, float64(2000), heap["used_bytes"])
	assert.Contains(t, body["details"], "pool")
}

func TestHealthHeapCheckDisabled(t *testing.T) {
	withHeap(t, 1<<40)

	rec := status(t, Health(newHandler().Service, 0))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, decodeBody(t, rec)["details"], "memory_heap")
}
