package services

import (
	"errors"
	"log"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"meridianwealth/internal/content"
	"meridianwealth/internal/domain"
	"meridianwealth/internal/metrics"

	apperrors "meridianwealth/pkg/errors"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ArticleService implements public article reads and the admin editor
type ArticleService struct {
	db *gorm.DB
}

// NewArticleService creates a new article service
func NewArticleService(db *gorm.DB) *ArticleService {
	return &ArticleService{db: db}
}

// ArticleSummary is the public list shape for one language
type ArticleSummary struct {
	ID          uint      `json:"id"`
	Slug        string    `json:"slug"`
	ImageURL    string    `json:"image_url"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	AuthorName  string    `json:"author_name"`
	PublishedAt time.Time `json:"published_at"`
}

// ArticleView is the public detail shape: content is normalized once here,
// at the data-access boundary, so renderers receive a tagged union plus a
// ready HTML fragment and never type-sniff stored shapes.
type ArticleView struct {
	ArticleSummary
	Content  content.Content `json:"content"`
	Rendered string          `json:"rendered"`
	Reports  []domain.Report `json:"reports"`
}

func normalizeLang(lang string) string {
	if lang == domain.LangZH {
		return domain.LangZH
	}
	return domain.LangEN
}

func summarize(a *domain.Article, lang string) ArticleSummary {
	s := ArticleSummary{
		ID:          a.ID,
		Slug:        a.Slug,
		ImageURL:    a.ImageURL,
		Title:       a.Title(lang),
		PublishedAt: a.PublishedAt,
	}
	if lang == domain.LangZH {
		s.Description = a.DescriptionZH
		s.Category = a.CategoryZH
		s.AuthorName = a.AuthorNameZH
		if s.Description == "" {
			s.Description = a.DescriptionEN
		}
		if s.Category == "" {
			s.Category = a.CategoryEN
		}
		if s.AuthorName == "" {
			s.AuthorName = a.AuthorNameEN
		}
	} else {
		s.Description = a.DescriptionEN
		s.Category = a.CategoryEN
		s.AuthorName = a.AuthorNameEN
	}
	return s
}

// ListPublished returns published articles for a language, newest first
func (s *ArticleService) ListPublished(lang string, skip, limit int) ([]ArticleSummary, error) {
	lang = normalizeLang(lang)
	log.Printf("[ARTICLE] ListPublished request: lang=%s skip=%d limit=%d", lang, skip, limit)

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if skip < 0 {
		skip = 0
	}

	var articles []domain.Article
	err := s.db.Where("published_at <= ?", time.Now()).
		Order("published_at DESC").Offset(skip).Limit(limit).Find(&articles).Error
	if err != nil {
		log.Printf("[ARTICLE] ListPublished failed: %v", err)
		return nil, apperrors.Internal("failed to list articles", err)
	}

	summaries := make([]ArticleSummary, len(articles))
	for i := range articles {
		summaries[i] = summarize(&articles[i], lang)
	}

	log.Printf("[ARTICLE] ListPublished successful: returned %d articles", len(summaries))
	return summaries, nil
}

// GetBySlug returns one published article with normalized content
func (s *ArticleService) GetBySlug(slug, lang string) (*ArticleView, error) {
	lang = normalizeLang(lang)

	var article domain.Article
	err := s.db.Preload("Reports").Where("slug = ?", slug).First(&article).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("article not found")
		}
		return nil, apperrors.Internal("failed to load article", err)
	}
	if !article.Published(time.Now()) {
		// Drafts are invisible to the public surface.
		return nil, apperrors.NotFound("article not found")
	}

	normalized := content.NormalizeStored(article.RawContent(lang))
	if normalized.Kind == content.KindEmpty && lang == domain.LangZH {
		// A translation column may hold only the stringified-empty sentinel;
		// normalized-empty falls back to English like a blank column does.
		normalized = content.NormalizeStored(article.RawContent(domain.LangEN))
	}
	view := &ArticleView{
		ArticleSummary: summarize(&article, lang),
		Content:        normalized,
		Rendered:       normalized.Render(),
		Reports:        article.Reports,
	}

	metrics.RecordArticleRead(lang)
	return view, nil
}

// ArticleInput carries the multilingual admin editor payload
type ArticleInput struct {
	Slug          string     `json:"slug"`
	ImageURL      string     `json:"image_url"`
	TitleEN       string     `json:"title_en"`
	TitleZH       string     `json:"title_zh"`
	DescriptionEN string     `json:"description_en"`
	DescriptionZH string     `json:"description_zh"`
	ContentEN     string     `json:"content_en"`
	ContentZH     string     `json:"content_zh"`
	CategoryEN    string     `json:"category_en"`
	CategoryZH    string     `json:"category_zh"`
	AuthorNameEN  string     `json:"author_name_en"`
	AuthorNameZH  string     `json:"author_name_zh"`
	PublishedAt   *time.Time `json:"published_at"`
}

func (in *ArticleInput) validate() error {
	in.Slug = strings.ToLower(strings.TrimSpace(in.Slug))
	if !slugRegex.MatchString(in.Slug) {
		return apperrors.Validation("slug must be lowercase letters, digits and hyphens")
	}
	if strings.TrimSpace(in.TitleEN) == "" && strings.TrimSpace(in.TitleZH) == "" {
		return apperrors.Validation("a title is required in at least one language")
	}
	return nil
}

func (in *ArticleInput) apply(a *domain.Article) {
	a.Slug = in.Slug
	a.ImageURL = strings.TrimSpace(in.ImageURL)
	a.TitleEN = strings.TrimSpace(in.TitleEN)
	a.TitleZH = strings.TrimSpace(in.TitleZH)
	a.DescriptionEN = in.DescriptionEN
	a.DescriptionZH = in.DescriptionZH
	// The editor may hand us the sentinel for a language it never touched;
	// store it as-is, the normalizer collapses it to empty on read.
	a.ContentEN = in.ContentEN
	a.ContentZH = in.ContentZH
	a.CategoryEN = strings.TrimSpace(in.CategoryEN)
	a.CategoryZH = strings.TrimSpace(in.CategoryZH)
	a.AuthorNameEN = strings.TrimSpace(in.AuthorNameEN)
	a.AuthorNameZH = strings.TrimSpace(in.AuthorNameZH)
	if in.PublishedAt != nil {
		a.PublishedAt = *in.PublishedAt
	} else if a.PublishedAt.IsZero() {
		// No explicit date keeps it a draft: far enough out to never leak.
		a.PublishedAt = time.Now().AddDate(100, 0, 0)
	}
}

// Create creates an article (admin only)
func (s *ArticleService) Create(in ArticleInput) (*domain.Article, error) {
	log.Printf("[ARTICLE] Create request: slug=%s", in.Slug)

	if err := in.validate(); err != nil {
		return nil, err
	}

	var existing domain.Article
	if err := s.db.Where("slug = ?", in.Slug).First(&existing).Error; err == nil {
		return nil, apperrors.BadRequest("slug already in use")
	}

	var article domain.Article
	in.apply(&article)

	if err := s.db.Create(&article).Error; err != nil {
		log.Printf("[ARTICLE] Create failed: %v", err)
		return nil, apperrors.Internal("failed to create article", err)
	}

	log.Printf("[ARTICLE] Create successful: id=%d slug=%s", article.ID, article.Slug)
	return &article, nil
}

// Update updates an article (admin only)
func (s *ArticleService) Update(id uint, in ArticleInput) (*domain.Article, error) {
	log.Printf("[ARTICLE] Update request: id=%d", id)

	if err := in.validate(); err != nil {
		return nil, err
	}

	article, err := s.adminGet(id)
	if err != nil {
		return nil, err
	}

	var existing domain.Article
	if err := s.db.Where("slug = ? AND id != ?", in.Slug, id).First(&existing).Error; err == nil {
		return nil, apperrors.BadRequest("slug already in use")
	}

	in.apply(article)
	if err := s.db.Save(article).Error; err != nil {
		log.Printf("[ARTICLE] Update failed: %v", err)
		return nil, apperrors.Internal("failed to update article", err)
	}

	log.Printf("[ARTICLE] Update successful: id=%d", article.ID)
	return article, nil
}

// AdminList returns all articles including drafts, newest first
func (s *ArticleService) AdminList(skip, limit int) ([]domain.Article, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}

	var articles []domain.Article
	err := s.db.Preload("Reports").Order("published_at DESC").
		Offset(skip).Limit(limit).Find(&articles).Error
	if err != nil {
		log.Printf("[ARTICLE] AdminList failed: %v", err)
		return nil, apperrors.Internal("failed to list articles", err)
	}
	return articles, nil
}

func (s *ArticleService) adminGet(id uint) (*domain.Article, error) {
	var article domain.Article
	if err := s.db.Preload("Reports").First(&article, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("article not found")
		}
		return nil, apperrors.Internal("failed to load article", err)
	}
	return &article, nil
}

// AdminGet returns one article by ID including drafts (admin only)
func (s *ArticleService) AdminGet(id uint) (*domain.Article, error) {
	return s.adminGet(id)
}

// Delete removes an article and its report attachments (admin only)
func (s *ArticleService) Delete(id uint) error {
	log.Printf("[ARTICLE] Delete request: id=%d", id)

	if _, err := s.adminGet(id); err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.Report{}, "article_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Article{}, id).Error
	})
	if err != nil {
		log.Printf("[ARTICLE] Delete failed: %v", err)
		return apperrors.Internal("failed to delete article", err)
	}

	log.Printf("[ARTICLE] Delete successful: id=%d", id)
	return nil
}

// ReportInput carries a report attachment payload
type ReportInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	FileURL     string `json:"file_url"`
}

// AddReport attaches a report to an article (admin only)
func (s *ArticleService) AddReport(articleID uint, in ReportInput) (*domain.Report, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperrors.Validation("report title is required")
	}
	if strings.TrimSpace(in.FileURL) == "" {
		return nil, apperrors.Validation("report file URL is required")
	}

	if _, err := s.adminGet(articleID); err != nil {
		return nil, err
	}

	report := domain.Report{
		ArticleID:   articleID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		FileURL:     strings.TrimSpace(in.FileURL),
	}
	if err := s.db.Create(&report).Error; err != nil {
		log.Printf("[ARTICLE] AddReport failed: %v", err)
		return nil, apperrors.Internal("failed to add report", err)
	}

	log.Printf("[ARTICLE] Report %d attached to article %d", report.ID, articleID)
	return &report, nil
}

// DeleteReport removes a report attachment (admin only)
func (s *ArticleService) DeleteReport(articleID, reportID uint) error {
	result := s.db.Delete(&domain.Report{}, "id = ? AND article_id = ?", reportID, articleID)
	if result.Error != nil {
		return apperrors.Internal("failed to delete report", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("report not found")
	}
	return nil
}
