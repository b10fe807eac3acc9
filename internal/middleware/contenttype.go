package middleware

import (
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Accepted request body types.
const (
	MIMEJSON = echo.MIMEApplicationJSON
	MIMEForm = echo.MIMEApplicationForm
)

// RequireContentType rejects requests whose Content-Type media type is not
// expected.  Parameters such as charset are ignored.
func RequireContentType(expected string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			got := c.Request().Header.Get(echo.HeaderContentType)
			mediaType, _, err := mime.ParseMediaType(got)
			if err != nil || !strings.EqualFold(mediaType, expected) {
				return c.JSON(http.StatusBadRequest, echo.Map{
					"error": fmt.Sprintf("expected content-type %s, received %q", expected, got),
				})
			}
			return next(c)
		}
	}
}
