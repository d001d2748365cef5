package handlers

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"
	"yatube/internal/db"
	"yatube/internal/models"
	"yatube/internal/services"

	"github.com/gin-gonic/gin"
)

// sitemapPostLimit keeps the sitemap to the most recent posts.
const sitemapPostLimit = 500

type SEOHandler struct {
	siteURL string
}

func NewSEOHandler(siteURL string) *SEOHandler {
	return &SEOHandler{siteURL: strings.TrimSuffix(siteURL, "/")}
}

func (h *SEOHandler) RobotsTxt(c *gin.Context) {
	content := fmt.Sprintf(`User-agent: *
Allow: /

Disallow: /auth/
Disallow: /create/
Disallow: /follow/
Disallow: /metrics

Sitemap: %s/sitemap.xml
`, h.siteURL)

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusOK, content)
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// SitemapXML lists the index, every group and the most recent posts.
func (h *SEOHandler) SitemapXML(c *gin.Context) {
	ctx := c.Request.Context()
	now := time.Now().Format("2006-01-02")

	set := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	set.URLs = append(set.URLs, sitemapURL{Loc: h.siteURL + "/", LastMod: now, ChangeFreq: "hourly", Priority: "1.0"})

	groups, err := services.ListGroups(ctx, db.DB)
	if err != nil {
		handleError(c, err)
		return
	}
	for _, g := range groups {
		set.URLs = append(set.URLs, sitemapURL{Loc: h.siteURL + "/group/" + g.Slug + "/", ChangeFreq: "daily", Priority: "0.7"})
	}

	var posts []models.Post
	err = services.AllPosts(db.DB.WithContext(ctx)).Select("id", "pub_date").Limit(sitemapPostLimit).Find(&posts).Error
	if err != nil {
		handleError(c, err)
		return
	}
	for _, p := range posts {
		changeFreq, priority := "weekly", "0.6"
		if time.Since(p.PubDate) < 7*24*time.Hour {
			changeFreq, priority = "daily", "0.8"
		}
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        h.siteURL + PostURL(p.ID),
			LastMod:    p.PubDate.Format("2006-01-02"),
			ChangeFreq: changeFreq,
			Priority:   priority,
		})
	}

	c.XML(http.StatusOK, set)
}
