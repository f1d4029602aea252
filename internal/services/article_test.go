package services

import (
	"strings"
	"testing"
	"time"

	"meridianwealth/internal/content"
	"meridianwealth/internal/domain"
)

func publishedAt(t *testing.T, offset time.Duration) *time.Time {
	t.Helper()
	ts := time.Now().Add(offset)
	return &ts
}

func TestListPublishedHidesDraftsAndScheduled(t *testing.T) {
	db := testDB(t)
	svc := NewArticleService(db)

	live, err := svc.Create(ArticleInput{
		Slug:        "market-outlook",
		TitleEN:     "Market Outlook",
		PublishedAt: publishedAt(t, -time.Hour),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Create(ArticleInput{
		Slug:        "scheduled-piece",
		TitleEN:     "Scheduled Piece",
		PublishedAt: publishedAt(t, time.Hour),
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Create(ArticleInput{
		Slug:    "still-a-draft",
		TitleEN: "Still a Draft",
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	summaries, err := svc.ListPublished("en", 0, 20)
	if err != nil {
		t.Fatalf("ListPublished failed: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected one published article, got %d", len(summaries))
	}
	if summaries[0].Slug != live.Slug {
		t.Errorf("expected %q, got %q", live.Slug, summaries[0].Slug)
	}

	// The admin surface sees everything.
	all, err := svc.AdminList(0, 20)
	if err != nil {
		t.Fatalf("AdminList failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected all three articles in admin list, got %d", len(all))
	}
}

func TestGetBySlugRejectsDrafts(t *testing.T) {
	db := testDB(t)
	svc := NewArticleService(db)

	if _, err := svc.Create(ArticleInput{Slug: "unpublished", TitleEN: "Unpublished"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.GetBySlug("unpublished", "en"); err == nil {
		t.Error("expected a draft to be invisible by slug")
	}
	if _, err := svc.GetBySlug("no-such-slug", "en"); err == nil {
		t.Error("expected unknown slug to 404")
	}
}

func TestGetBySlugNormalizesContent(t *testing.T) {
	db := testDB(t)
	svc := NewArticleService(db)

	if _, err := svc.Create(ArticleInput{
		Slug:        "typed-content",
		TitleEN:     "Typed Content",
		ContentEN:   `{"blocks": [{"type": "paragraph", "text": "Hello <world>"}]}`,
		ContentZH:   "map[]",
		PublishedAt: publishedAt(t, -time.Minute),
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	en, err := svc.GetBySlug("typed-content", "en")
	if err != nil {
		t.Fatalf("GetBySlug failed: %v", err)
	}
	if en.Content.Kind != content.KindBlocks {
		t.Errorf("expected blocks content, got %q", en.Content.Kind)
	}
	if !strings.Contains(en.Rendered, "&lt;world&gt;") {
		t.Errorf("expected escaped HTML in rendered output, got %q", en.Rendered)
	}

	// The zh column holds the stringified-empty sentinel and no real
	// translation, so the reader falls back to the en content.
	zh, err := svc.GetBySlug("typed-content", "zh")
	if err != nil {
		t.Fatalf("GetBySlug failed: %v", err)
	}
	if zh.Content.Kind != content.KindBlocks {
		t.Errorf("expected en fallback for zh reader, got %q", zh.Content.Kind)
	}
}

func TestCreateRejectsDuplicateSlug(t *testing.T) {
	db := testDB(t)
	svc := NewArticleService(db)

	if _, err := svc.Create(ArticleInput{Slug: "once", TitleEN: "Once"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Create(ArticleInput{Slug: "once", TitleEN: "Twice"}); err == nil {
		t.Error("expected duplicate slug to be rejected")
	}
	if _, err := svc.Create(ArticleInput{Slug: "Bad Slug!", TitleEN: "Nope"}); err == nil {
		t.Error("expected invalid slug to be rejected")
	}
}

func TestDeleteRemovesReports(t *testing.T) {
	db := testDB(t)
	svc := NewArticleService(db)

	article, err := svc.Create(ArticleInput{Slug: "with-report", TitleEN: "With Report"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.AddReport(article.ID, ReportInput{Title: "Q2 Summary", FileURL: "/uploads/q2.pdf"}); err != nil {
		t.Fatalf("AddReport failed: %v", err)
	}

	if err := svc.Delete(article.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var reports int64
	db.Model(&domain.Report{}).Where("article_id = ?", article.ID).Count(&reports)
	if reports != 0 {
		t.Errorf("expected reports deleted with the article, got %d", reports)
	}
}
