package domain

import (
	"time"

	"gorm.io/gorm"
)

// Supported article languages
const (
	LangEN = "en"
	LangZH = "zh"
)

// Article is a multilingual insight/article record. The raw per-language
// content column holds whatever shape was stored over the years: an HTML
// string, a legacy {"blocks": [...]} JSON document, or a stray "map[]"
// sentinel; the content package normalizes it at read time.
//
// PublishedAt is the sole source of publish truth: a future timestamp means
// draft, a past one means published. There is no separate boolean.
type Article struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Slug          string     `gorm:"uniqueIndex;not null" json:"slug"`
	ImageURL      string     `json:"image_url"`
	TitleEN       string     `json:"title_en"`
	TitleZH       string     `json:"title_zh"`
	DescriptionEN string     `gorm:"type:text" json:"description_en"`
	DescriptionZH string     `gorm:"type:text" json:"description_zh"`
	ContentEN     string     `gorm:"type:text" json:"content_en"`
	ContentZH     string     `gorm:"type:text" json:"content_zh"`
	CategoryEN    string     `gorm:"index" json:"category_en"`
	CategoryZH    string     `json:"category_zh"`
	AuthorNameEN  string     `json:"author_name_en"`
	AuthorNameZH  string     `json:"author_name_zh"`
	PublishedAt   time.Time  `gorm:"index" json:"published_at"`
	Reports       []Report   `gorm:"foreignKey:ArticleID" json:"reports,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at"`
}

// TableName specifies the table name for Article
func (Article) TableName() string {
	return "articles"
}

// BeforeCreate hook
func (a *Article) BeforeCreate(tx *gorm.DB) error {
	a.CreatedAt = time.Now()
	return nil
}

// BeforeUpdate hook
func (a *Article) BeforeUpdate(tx *gorm.DB) error {
	now := time.Now()
	a.UpdatedAt = &now
	return nil
}

// Published reports whether the article is publicly visible at time now.
func (a *Article) Published(now time.Time) bool {
	return !a.PublishedAt.IsZero() && !a.PublishedAt.After(now)
}

// Title returns the title for the given language, falling back to English.
func (a *Article) Title(lang string) string {
	if lang == LangZH && a.TitleZH != "" {
		return a.TitleZH
	}
	return a.TitleEN
}

// RawContent returns the stored per-language content, falling back to English.
func (a *Article) RawContent(lang string) string {
	if lang == LangZH && a.ContentZH != "" {
		return a.ContentZH
	}
	return a.ContentEN
}

// Report is a downloadable attachment owned by an article.
type Report struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ArticleID   uint      `gorm:"index;not null" json:"article_id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	FileURL     string    `gorm:"not null" json:"file_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for Report
func (Report) TableName() string {
	return "reports"
}

// BeforeCreate hook
func (r *Report) BeforeCreate(tx *gorm.DB) error {
	r.CreatedAt = time.Now()
	return nil
}
