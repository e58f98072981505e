package communityhub

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

// renderFeed writes published events and news posts as one RSS feed,
// newest entries first within each group.
func (a *App) renderFeed(c echo.Context, events []PublishedEvent, posts []NewsPost) error {
	base := a.Config.URL
	items := make([]rssItem, 0, len(events)+len(posts))
	for _, e := range events {
		eventURL := BuildURL(base, "community", "events", e.ID)
		items = append(items, rssItem{
			Title:       e.EventName,
			Link:        eventURL,
			Description: e.Description,
			PubDate:     rssDate(e.CreatedAt),
			GUID:        eventURL,
		})
	}
	for _, p := range posts {
		postURL := BuildURL(base, "news", p.Slug)
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        postURL,
			Description: p.Summary,
			PubDate:     rssDate(p.CreatedAt),
			GUID:        postURL,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        BuildURL(base),
			Description: a.Config.Description,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}

func rssDate(createdAt string) string {
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		return t.Format(time.RFC1123Z)
	}
	return ""
}
