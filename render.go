package brandcommit

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// RenderOrJSON writes a templ component when one is provided, or the JSON
// fallback when cmp is nil. This is how headless deployments work: every
// public handler renders through here so a nil ViewFuncs entry degrades to
// the API representation instead of a panic.
func RenderOrJSON(c echo.Context, code int, cmp templ.Component, fallback any) error {
	if cmp != nil {
		return RenderStatus(c, code, cmp)
	}
	return c.JSON(code, fallback)
}
