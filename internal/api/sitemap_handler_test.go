package api

import (
	"encoding/xml"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"wqsolutions/internal/database"
)

func TestSitemap(t *testing.T) {
	db := newTestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewSitemapHandler(db, logger, "https://www.wisdomquantums.com/")

	published := database.Blog{Title: "Published", Slug: "published-post", Active: true}
	if err := db.Create(&published).Error; err != nil {
		t.Fatalf("seed blog: %v", err)
	}
	draft := database.Blog{Title: "Draft", Slug: "draft-post"}
	if err := db.Create(&draft).Error; err != nil {
		t.Fatalf("seed draft: %v", err)
	}
	if err := db.Model(&draft).Update("active", false).Error; err != nil {
		t.Fatalf("deactivate draft: %v", err)
	}

	w, _ := performAs(t, h.Sitemap, httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil), nil, 0)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	var set sitemapURLSet
	if err := xml.Unmarshal(w.Body.Bytes(), &set); err != nil {
		t.Fatalf("parse sitemap: %v", err)
	}

	locs := map[string]bool{}
	for _, u := range set.URLs {
		locs[u.Loc] = true
	}
	if !locs["https://www.wisdomquantums.com/"] {
		t.Error("missing site root")
	}
	if !locs["https://www.wisdomquantums.com/blog/published-post"] {
		t.Errorf("missing published blog entry, got %v", locs)
	}
	if locs["https://www.wisdomquantums.com/blog/draft-post"] {
		t.Error("inactive record leaked into sitemap")
	}
}

func TestRobots(t *testing.T) {
	db := newTestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewSitemapHandler(db, logger, "https://www.wisdomquantums.com")

	w, _ := performAs(t, h.Robots, httptest.NewRequest(http.MethodGet, "/robots.txt", nil), nil, 0)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Disallow: /api/v1/admin/") {
		t.Errorf("robots.txt must block the admin api, got %q", body)
	}
	if !strings.Contains(body, "Sitemap: https://www.wisdomquantums.com/sitemap.xml") {
		t.Errorf("robots.txt must point at the sitemap, got %q", body)
	}
}
