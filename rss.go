package brandcommit

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
}

// handleFeed serves an RSS 2.0 feed of a company's timeline announcements.
// The tenant is picked with ?company=<slug>.
func (a *App) handleFeed(c echo.Context) error {
	slug := c.QueryParam("company")
	if slug == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "company is required"})
	}
	company, err := a.Store.GetCompanyBySlug(slug)
	if err != nil {
		if err == ErrNotFound {
			return a.renderNotFound(c)
		}
		return err
	}
	posts, err := a.Store.ListTimelinePosts(company.ID)
	if err != nil {
		return err
	}

	base := a.Config.URL
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        BuildURL(base, "feed.xml") + "?company=" + slug,
			Description: p.Body,
			PubDate:     p.CreatedAt.Format(time.RFC1123Z),
			GUID:        p.ID,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       company.Name + " | " + a.Config.Name,
			Link:        base,
			Description: "Announcements from " + company.Name,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
