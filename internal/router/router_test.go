package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/iliyamo/car-pooling/internal/handler"
	"github.com/iliyamo/car-pooling/internal/metrics"
	"github.com/iliyamo/car-pooling/internal/pooling"
	"github.com/iliyamo/car-pooling/internal/service"
)

func newServer() *echo.Echo {
	reg := prometheus.NewRegistry()
	rec := metrics.NewRecorder(reg)
	svc := service.NewPoolingService(pooling.NewEngine(4, 6), nil, rec, zap.NewNop())

	e := echo.New()
	RegisterRoutes(e, handler.Health(svc, 0), promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	RegisterPooling(e, handler.NewPoolingHandler(svc))
	return e
}

func do(e *echo.Echo, method, path, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRoutes(t *testing.T) {
	const (
		js   = echo.MIMEApplicationJSON
		form = echo.MIMEApplicationForm
	)
	e := newServer()

	steps := []struct {
		name        string
		method      string
		path        string
		contentType string
		body        string
		status      int
	}{
		{"status", http.MethodGet, "/status", "", "", http.StatusOK},
		{"status wrong method", http.MethodPost, "/status", "", "", http.StatusMethodNotAllowed},
		{"cars", http.MethodPut, "/cars", js, `[{"id":1,"seats":4}]`, http.StatusOK},
		{"cars as form", http.MethodPut, "/cars", form, "id=1", http.StatusBadRequest},
		{"cars wrong method", http.MethodGet, "/cars", "", "", http.StatusMethodNotAllowed},
		{"journey", http.MethodPost, "/journey", js, `{"id":1,"people":4}`, http.StatusOK},
		{"journey waits", http.MethodPost, "/journey", js, `{"id":2,"people":2}`, http.StatusOK},
		{"journey without content type", http.MethodPost, "/journey", "", `{"id":3,"people":2}`, http.StatusBadRequest},
		{"journey wrong method", http.MethodGet, "/journey", "", "", http.StatusMethodNotAllowed},
		{"locate seated", http.MethodPost, "/locate", form, "ID=1", http.StatusOK},
		{"locate waiting", http.MethodPost, "/locate", form, "ID=2", http.StatusNoContent},
		{"locate as json", http.MethodPost, "/locate", js, `{"ID":1}`, http.StatusBadRequest},
		{"dropoff", http.MethodPost, "/dropoff", form, "ID=1", http.StatusOK},
		{"locate backfilled", http.MethodPost, "/locate", form, "ID=2", http.StatusOK},
		{"dropoff unknown", http.MethodPost, "/dropoff", form, "ID=1", http.StatusNotFound},
		{"dropoff wrong method", http.MethodGet, "/dropoff", "", "", http.StatusMethodNotAllowed},
		{"unknown path", http.MethodGet, "/nowhere", "", "", http.StatusNotFound},
	}
	for _, s := range steps {
		rec := do(e, s.method, s.path, s.contentType, s.body)
		assert.Equal(t, s.status, rec.Code, "%s: %s", s.name, rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	e := newServer()
	do(e, http.MethodPut, "/cars", echo.MIMEApplicationJSON, `[{"id":1,"seats":4}]`)

	rec := do(e, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `pooling_operations_total{operation="cars",outcome="success"} 1`)
}

func TestMetricsEndpointOptional(t *testing.T) {
	e := echo.New()
	RegisterRoutes(e, handler.Health(pooling.NewEngine(4, 6), 0), nil)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/metrics", "", "").Code)
}
