package router // package router defines how HTTP routes are registered for the API

import (
	"net/http"

	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/car-pooling/internal/handler"    // import the handlers that implement the API
	"github.com/iliyamo/car-pooling/internal/middleware" // import content-type enforcement
)

// RegisterRoutes registers the operational endpoints: the status check used
// by load balancers and, when metrics is not nil, the Prometheus scrape
// endpoint.
func RegisterRoutes(e *echo.Echo, status echo.HandlerFunc, metrics http.Handler) {
	e.GET("/status", status)
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics))
	}
}

// RegisterPooling registers the car pooling API.  JSON endpoints and form
// endpoints each enforce their body type; a request with another
// Content-Type is answered with 400 before the handler runs.  Requests
// with an unsupported method on a known path get 405 from the router.
// Every pooling route also passes through the given middlewares (the rate
// limiter in production).
func RegisterPooling(e *echo.Echo, p *handler.PoolingHandler, mws ...echo.MiddlewareFunc) {
	jsonOnly := append([]echo.MiddlewareFunc{}, mws...)
	jsonOnly = append(jsonOnly, middleware.RequireContentType(middleware.MIMEJSON))
	formOnly := append([]echo.MiddlewareFunc{}, mws...)
	formOnly = append(formOnly, middleware.RequireContentType(middleware.MIMEForm))

	e.PUT("/cars", p.UpdateCars, jsonOnly...)
	e.POST("/journey", p.RegisterJourney, jsonOnly...)
	e.POST("/dropoff", p.DropOff, formOnly...)
	e.POST("/locate", p.Locate, formOnly...)
}
