package handlers

import (
	"fmt"
	"html"
	"log"
	"net/http"
	"net/url"
	"nuncio/internal/services"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	sitemapPostLimit = 500
	feedPostLimit    = 20
)

// SEOHandler serves robots.txt, the sitemap and the RSS feed.
type SEOHandler struct {
	forum   *services.Forum
	siteURL string
}

func NewSEOHandler(forum *services.Forum, siteURL string) *SEOHandler {
	return &SEOHandler{forum: forum, siteURL: strings.TrimRight(siteURL, "/")}
}

func (h *SEOHandler) RobotsTxt(c *gin.Context) {
	content := fmt.Sprintf(`User-agent: *
Allow: /

Disallow: /auth/
Disallow: /submit
Disallow: /vote/
Disallow: /importance/
Disallow: /delete_post/
Disallow: /delete_comment/

Sitemap: %s/sitemap.xml
`, h.siteURL)

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusOK, content)
}

func (h *SEOHandler) SitemapXML(c *gin.Context) {
	ctx := c.Request.Context()
	today := time.Now().UTC().Format("2006-01-02")

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
`)
	writeURL := func(path, lastmod, changefreq string, priority float64) {
		fmt.Fprintf(&b, `  <url>
    <loc>%s%s</loc>
    <lastmod>%s</lastmod>
    <changefreq>%s</changefreq>
    <priority>%.1f</priority>
  </url>
`, h.siteURL, escapeXML(path), lastmod, changefreq, priority)
	}

	writeURL("/", today, "hourly", 1.0)
	writeURL("/new", today, "hourly", 0.9)

	topics, err := h.forum.Posts.Topics(ctx)
	if err != nil {
		log.Printf("sitemap: topics: %v", err)
	}
	for _, t := range topics {
		writeURL("/topic/"+url.PathEscape(t.TagName), today, "daily", 0.7)
	}
	events, err := h.forum.Posts.Events(ctx)
	if err != nil {
		log.Printf("sitemap: events: %v", err)
	}
	for _, e := range events {
		writeURL("/event/"+url.PathEscape(e.EventName), today, "daily", 0.7)
	}

	posts, err := h.forum.Posts.Recent(ctx, sitemapPostLimit)
	if err != nil {
		log.Printf("sitemap: posts: %v", err)
	}
	for _, p := range posts {
		priority, changefreq := 0.6, "weekly"
		if time.Since(p.CreatedAt) < 7*24*time.Hour {
			priority, changefreq = 0.8, "daily"
		}
		writeURL(itemPath(p.ID), p.UpdatedAt.UTC().Format("2006-01-02"), changefreq, priority)
	}

	b.WriteString(`</urlset>`)
	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.String(http.StatusOK, b.String())
}

// RSSFeed is an RSS 2.0 feed of the newest posts.
func (h *SEOHandler) RSSFeed(c *gin.Context) {
	posts, err := h.forum.Posts.Recent(c.Request.Context(), feedPostLimit)
	if err != nil {
		fail(c, err)
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">
  <channel>
    <title>Nuncio</title>
    <link>%s</link>
    <description>Links and short posts, ranked by the community</description>
    <language>en</language>
    <lastBuildDate>%s</lastBuildDate>
    <atom:link href="%s/feed.xml" rel="self" type="application/rss+xml"/>
`, h.siteURL, time.Now().UTC().Format(time.RFC1123Z), h.siteURL)

	for _, p := range posts {
		link := h.siteURL + itemPath(p.ID)
		description := escapeXML(p.Text)
		if p.IsLink {
			description = escapeXML(p.Link)
		}
		fmt.Fprintf(&b, `    <item>
      <title>%s</title>
      <link>%s</link>
      <description>%s</description>
      <author>%s</author>
      <category>%s</category>
      <pubDate>%s</pubDate>
      <guid isPermaLink="true">%s</guid>
    </item>
`, escapeXML(p.Title), link, description, escapeXML(p.User.Username),
			escapeXML(p.TopicName()), p.CreatedAt.UTC().Format(time.RFC1123Z), link)
	}

	b.WriteString(`  </channel>
</rss>`)
	c.Header("Content-Type", "application/rss+xml; charset=utf-8")
	c.String(http.StatusOK, b.String())
}

func escapeXML(s string) string {
	return html.EscapeString(s)
}
