package api

import (
	"encoding/xml"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"wqsolutions/internal/schema"
)

// SitemapHandler renders sitemap.xml and robots.txt for the public site.
type SitemapHandler struct {
	db      *gorm.DB
	logger  *slog.Logger
	baseURL string
}

// NewSitemapHandler builds the handler. baseURL is the public site origin,
// e.g. https://www.wisdomquantums.com.
func NewSitemapHandler(db *gorm.DB, logger *slog.Logger, baseURL string) *SitemapHandler {
	return &SitemapHandler{
		db:      db,
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func lastModOf(value any) string {
	if t, ok := value.(time.Time); ok {
		return t.Format("2006-01-02")
	}
	return ""
}

// Sitemap lists the site roots plus every active slugged record.
func (h *SitemapHandler) Sitemap(c *gin.Context) {
	urls := []sitemapURL{
		{Loc: h.baseURL + "/"},
		{Loc: h.baseURL + "/about"},
		{Loc: h.baseURL + "/contact"},
	}

	for _, e := range schema.Registry() {
		if !e.HasSlug {
			continue
		}
		var rows []map[string]any
		err := h.db.WithContext(c.Request.Context()).
			Table(e.Table).
			Select("slug", "updated_at").
			Where("active = ?", true).
			Order("updated_at desc").
			Find(&rows).Error
		if err != nil {
			h.logger.Error("load sitemap slugs", slog.String("table", e.Table), slog.Any("error", err))
			Internal(c, "failed to build sitemap")
			return
		}
		for _, row := range rows {
			s := stringOf(row["slug"])
			if s == "" {
				continue
			}
			urls = append(urls, sitemapURL{
				Loc:     h.baseURL + "/" + e.Name + "/" + s,
				LastMod: lastModOf(row["updated_at"]),
			})
		}
	}

	out, err := xml.MarshalIndent(sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}, "", "  ")
	if err != nil {
		Internal(c, "failed to build sitemap")
		return
	}

	c.Data(http.StatusOK, "application/xml; charset=utf-8", append([]byte(xml.Header), out...))
}

// Robots allows everything and points crawlers at the sitemap.
func (h *SitemapHandler) Robots(c *gin.Context) {
	body := "User-agent: *\nAllow: /\nDisallow: /api/v1/admin/\n\nSitemap: " + h.baseURL + "/sitemap.xml\n"
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(body))
}
