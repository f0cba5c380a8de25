package blogadmin

import (
	"encoding/xml"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

const shortDescriptionLength = 100

type feedCategory struct {
	ID   *int64 `json:"id"`
	Name string `json:"name"`
}

type feedArticle struct {
	ID               int64        `json:"id"`
	Title            string       `json:"title"`
	Content          string       `json:"content"`
	ShortDescription string       `json:"short_description"`
	Image            *string      `json:"image"`
	Category         feedCategory `json:"category"`
	CreatedAt        string       `json:"created_at"`
	FormattedDate    string       `json:"formatted_date"`
}

type feedResponse struct {
	Status   string        `json:"status"`
	Count    int           `json:"count"`
	Articles []feedArticle `json:"articles"`
}

// handleArticlesFeed is the public read-only JSON listing of all articles,
// newest first. No authentication, no pagination.
func (a *App) handleArticlesFeed(c echo.Context) error {
	articles, err := a.Store.ListArticles()
	if err != nil {
		c.Logger().Errorf("feed: list articles: %v", err)
		return c.JSON(http.StatusInternalServerError, envelope{
			Status:  "error",
			Message: "Failed to fetch articles",
		})
	}
	items := make([]feedArticle, 0, len(articles))
	for _, art := range articles {
		items = append(items, a.feedItem(art))
	}
	return c.JSON(http.StatusOK, feedResponse{
		Status:   "success",
		Count:    len(items),
		Articles: items,
	})
}

func (a *App) feedItem(art Article) feedArticle {
	item := feedArticle{
		ID:               art.ID,
		Title:            art.Title,
		Content:          art.Content,
		ShortDescription: ShortDescription(art.Content, shortDescriptionLength),
		Category:         feedCategory{Name: "Uncategorized"},
		CreatedAt:        art.CreatedAt,
		FormattedDate:    FormatDate(art.CreatedAt, "Jan 02, 2006"),
	}
	if art.Image != "" {
		url := uploadURL(a.Config.URL, a.Config.UploadURLPath, art.Image)
		item.Image = &url
	}
	if art.CategoryID != 0 {
		id := art.CategoryID
		item.Category = feedCategory{ID: &id, Name: art.CategoryName}
	}
	return item
}

// --- RSS ---

type rss struct {
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

// handleRSS serves the article list as an RSS 2.0 feed.
func (a *App) handleRSS(c echo.Context) error {
	articles, err := a.Store.ListArticles()
	if err != nil {
		return err
	}
	items := make([]rssItem, 0, len(articles))
	for _, art := range articles {
		pubDate := ""
		if t, err := time.Parse(timestampLayout, art.CreatedAt); err == nil {
			pubDate = t.Format(time.RFC1123Z)
		}
		link := BuildURL(a.Config.URL, "articles", strconv.FormatInt(art.ID, 10))
		items = append(items, rssItem{
			Title:       art.Title,
			Link:        link,
			Description: ShortDescription(art.Content, shortDescriptionLength),
			PubDate:     pubDate,
			GUID:        link,
		})
	}
	feed := rss{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        a.Config.URL,
			Description: a.Config.Name + " articles",
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(feed)
}
