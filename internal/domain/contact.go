package domain

import (
	"time"

	"gorm.io/gorm"
)

// Contact inquiry status values
const (
	ContactStatusNew       = "New"
	ContactStatusResponded = "Responded"
	ContactStatusClosed    = "Closed"
)

// ContactInquiry represents a public contact form submission
type ContactInquiry struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Name        string        `gorm:"not null" json:"name"`
	ContactType string        `gorm:"not null" json:"contact_type"` // email, phone
	ContactInfo string        `gorm:"not null;index" json:"contact_info"`
	Message     string        `gorm:"type:text;not null" json:"message"`
	Status      string        `gorm:"default:'New';index" json:"status"`
	Notes       []ContactNote `gorm:"foreignKey:InquiryID" json:"notes,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   *time.Time    `json:"updated_at"`
}

// TableName specifies the table name for ContactInquiry
func (ContactInquiry) TableName() string {
	return "contact_inquiries"
}

// BeforeCreate hook
func (c *ContactInquiry) BeforeCreate(tx *gorm.DB) error {
	c.CreatedAt = time.Now()
	if c.Status == "" {
		c.Status = ContactStatusNew
	}
	return nil
}

// BeforeUpdate hook
func (c *ContactInquiry) BeforeUpdate(tx *gorm.DB) error {
	now := time.Now()
	c.UpdatedAt = &now
	return nil
}

// ValidContactStatus reports whether s is one of the closed set of statuses.
func ValidContactStatus(s string) bool {
	switch s {
	case ContactStatusNew, ContactStatusResponded, ContactStatusClosed:
		return true
	}
	return false
}

// ContactNote is a free-text admin note attached to an inquiry. Notes are
// removed before their parent inquiry so a note never outlives it.
type ContactNote struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	InquiryID  uint      `gorm:"index;not null" json:"inquiry_id"`
	AuthorID   uint      `gorm:"not null" json:"author_id"`
	AuthorName string    `gorm:"not null" json:"author_name"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for ContactNote
func (ContactNote) TableName() string {
	return "contact_notes"
}

// BeforeCreate hook
func (n *ContactNote) BeforeCreate(tx *gorm.DB) error {
	n.CreatedAt = time.Now()
	return nil
}
