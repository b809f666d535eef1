package brandcommit

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// handleCard serves the public business-card page. The page embeds the
// view beacon on the client side; nothing here touches the recorder, so a
// broken analytics store can never break a card.
func (a *App) handleCard(c echo.Context) error {
	slug := c.Param("slug")
	member, err := a.Members.GetBySlug(slug)
	if err != nil {
		if err == ErrNotFound {
			return a.renderNotFound(c)
		}
		return err
	}
	company, err := a.Store.GetCompany(member.CompanyID)
	if err != nil {
		return err
	}
	page := CardPage{
		Member:  member,
		Company: company.Name,
		CardURL: BuildURL(a.Config.URL, "card", member.Slug),
	}
	var cmp templ.Component
	if a.Views.Card != nil {
		cmp = a.Views.Card(page)
	}
	return RenderOrJSON(c, http.StatusOK, cmp, page)
}

func (a *App) renderNotFound(c echo.Context) error {
	var cmp templ.Component
	if a.Views.NotFound != nil {
		cmp = a.Views.NotFound()
	}
	return RenderOrJSON(c, http.StatusNotFound, cmp, map[string]string{"error": "not found"})
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = a.renderNotFound(c)
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		var cmp templ.Component
		if a.Views.ServerError != nil {
			cmp = a.Views.ServerError()
		}
		_ = RenderOrJSON(c, code, cmp, map[string]string{"error": "Internal server error"})
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
