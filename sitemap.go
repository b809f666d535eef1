package brandcommit

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// handleSitemap lists every published card page on the instance.
func (a *App) handleSitemap(c echo.Context) error {
	members, err := a.Store.ListAllPublishedMembers()
	if err != nil {
		return err
	}
	base := a.Config.URL
	urls := make([]sitemapURL, 0, len(members))
	for _, m := range members {
		urls = append(urls, sitemapURL{
			Loc:     BuildURL(base, "card", m.Slug),
			LastMod: m.UpdatedAt.Format("2006-01-02"),
		})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
