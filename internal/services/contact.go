package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"meridianwealth/internal/config"
	"meridianwealth/internal/domain"
	"meridianwealth/internal/metrics"

	apperrors "meridianwealth/pkg/errors"
)

// ContactService implements public inquiry submission and admin triage
type ContactService struct {
	db           *gorm.DB
	emailService *EmailService
}

// NewContactService creates a new contact service
func NewContactService(db *gorm.DB, emailService *EmailService) *ContactService {
	return &ContactService{
		db:           db,
		emailService: emailService,
	}
}

// ContactInput carries the public contact form payload
type ContactInput struct {
	Name        string `json:"name"`
	ContactType string `json:"contact_type"`
	ContactInfo string `json:"contact_info"`
	Message     string `json:"message"`
}

// Submit stores a public contact inquiry and notifies the admin inbox
func (s *ContactService) Submit(in ContactInput) (*domain.ContactInquiry, error) {
	log.Printf("[CONTACT] Submit request: type=%s", in.ContactType)

	in.Name = strings.TrimSpace(in.Name)
	in.ContactType = strings.TrimSpace(strings.ToLower(in.ContactType))
	in.ContactInfo = strings.TrimSpace(in.ContactInfo)
	in.Message = strings.TrimSpace(in.Message)

	if in.Name == "" {
		return nil, apperrors.Validation("name is required")
	}
	if in.ContactType != "email" && in.ContactType != "phone" {
		return nil, apperrors.Validation("contact type must be email or phone")
	}
	if in.ContactInfo == "" {
		return nil, apperrors.Validation("contact info is required")
	}
	if in.Message == "" {
		return nil, apperrors.Validation("message is required")
	}

	inquiry := domain.ContactInquiry{
		Name:        in.Name,
		ContactType: in.ContactType,
		ContactInfo: in.ContactInfo,
		Message:     in.Message,
		Status:      domain.ContactStatusNew,
	}
	if err := s.db.Create(&inquiry).Error; err != nil {
		log.Printf("[CONTACT] Submit failed: %v", err)
		return nil, apperrors.Internal("failed to save inquiry", err)
	}

	metrics.RecordContactSubmission()
	log.Printf("[CONTACT] Submit successful: id=%d", inquiry.ID)

	if admin := config.Get().App.AdminEmail; admin != "" && s.emailService != nil {
		go s.notifyAdmin(admin, &inquiry)
	}
	return &inquiry, nil
}

func (s *ContactService) notifyAdmin(adminEmail string, inquiry *domain.ContactInquiry) {
	subject := fmt.Sprintf("New contact inquiry from %s", inquiry.Name)
	body := fmt.Sprintf(
		"<h3>New contact inquiry</h3>"+
			"<p><strong>Name:</strong> %s</p>"+
			"<p><strong>Contact:</strong> %s (%s)</p>"+
			"<p><strong>Message:</strong></p><p>%s</p>",
		inquiry.Name, inquiry.ContactInfo, inquiry.ContactType, inquiry.Message)
	text := fmt.Sprintf("New contact inquiry\nName: %s\nContact: %s (%s)\nMessage: %s",
		inquiry.Name, inquiry.ContactInfo, inquiry.ContactType, inquiry.Message)
	if err := s.emailService.SendHTMLEmail(adminEmail, subject, body, text); err != nil {
		log.Printf("[CONTACT] admin notification failed for inquiry %d: %v", inquiry.ID, err)
	}
}

// AdminList returns inquiries newest first, optionally filtered by status
func (s *ContactService) AdminList(status string, skip, limit int) ([]domain.ContactInquiry, error) {
	if status != "" && !domain.ValidContactStatus(status) {
		return nil, apperrors.Validation("unknown status filter")
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}

	// The secondary key keeps paging stable when timestamps collide.
	query := s.db.Preload("Notes").Order("created_at DESC, id DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var inquiries []domain.ContactInquiry
	if err := query.Offset(skip).Limit(limit).Find(&inquiries).Error; err != nil {
		log.Printf("[CONTACT] AdminList failed: %v", err)
		return nil, apperrors.Internal("failed to list inquiries", err)
	}
	return inquiries, nil
}

func (s *ContactService) get(id uint) (*domain.ContactInquiry, error) {
	var inquiry domain.ContactInquiry
	if err := s.db.Preload("Notes").First(&inquiry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("inquiry not found")
		}
		return nil, apperrors.Internal("failed to load inquiry", err)
	}
	return &inquiry, nil
}

// AdminGet returns one inquiry with its notes
func (s *ContactService) AdminGet(id uint) (*domain.ContactInquiry, error) {
	return s.get(id)
}

// SetStatus moves an inquiry through the triage states
func (s *ContactService) SetStatus(id uint, status string) (*domain.ContactInquiry, error) {
	if !domain.ValidContactStatus(status) {
		return nil, apperrors.Validation("unknown status")
	}

	inquiry, err := s.get(id)
	if err != nil {
		return nil, err
	}

	inquiry.Status = status
	if err := s.db.Save(inquiry).Error; err != nil {
		log.Printf("[CONTACT] SetStatus failed: %v", err)
		return nil, apperrors.Internal("failed to update inquiry", err)
	}

	log.Printf("[CONTACT] Inquiry %d moved to %s", id, status)
	return inquiry, nil
}

// AddNote attaches an author-stamped triage note to an inquiry
func (s *ContactService) AddNote(id uint, author *domain.User, body string) (*domain.ContactNote, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.Validation("note body is required")
	}

	if _, err := s.get(id); err != nil {
		return nil, err
	}

	note := domain.ContactNote{
		InquiryID:  id,
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Body:       body,
	}
	if err := s.db.Create(&note).Error; err != nil {
		log.Printf("[CONTACT] AddNote failed: %v", err)
		return nil, apperrors.Internal("failed to add note", err)
	}
	return &note, nil
}

// DeleteNote removes a triage note
func (s *ContactService) DeleteNote(inquiryID, noteID uint) error {
	result := s.db.Delete(&domain.ContactNote{}, "id = ? AND inquiry_id = ?", noteID, inquiryID)
	if result.Error != nil {
		return apperrors.Internal("failed to delete note", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("note not found")
	}
	return nil
}

// Delete removes an inquiry and its notes
func (s *ContactService) Delete(id uint) error {
	if _, err := s.get(id); err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.ContactNote{}, "inquiry_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.ContactInquiry{}, id).Error
	})
	if err != nil {
		log.Printf("[CONTACT] Delete failed: %v", err)
		return apperrors.Internal("failed to delete inquiry", err)
	}

	log.Printf("[CONTACT] Inquiry %d deleted", id)
	return nil
}

// Export is a rendered CSV download ready for the transport layer
type Export struct {
	Filename string
	Data     []byte
}

// ExportCSV renders inquiries to CSV, optionally filtered and with notes
func (s *ContactService) ExportCSV(status string, includeNotes bool) (*Export, error) {
	log.Printf("[CONTACT] ExportCSV request: status=%q notes=%t", status, includeNotes)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"Name", "Contact Type", "Contact Info", "Message", "Date", "Status"}
	if includeNotes {
		header = append(header, "Notes")
	}
	if err := w.Write(header); err != nil {
		return nil, apperrors.Internal("failed to render export", err)
	}

	// The export is unbounded: page through the table so a large inbox never
	// loses rows to the listing cap.
	const pageSize = 500
	total := 0
	for skip := 0; ; skip += pageSize {
		inquiries, err := s.AdminList(status, skip, pageSize)
		if err != nil {
			return nil, err
		}
		for i := range inquiries {
			inquiry := &inquiries[i]
			row := []string{
				inquiry.Name,
				inquiry.ContactType,
				inquiry.ContactInfo,
				inquiry.Message,
				inquiry.CreatedAt.Format("2006-01-02 15:04"),
				inquiry.Status,
			}
			if includeNotes {
				row = append(row, joinNotes(inquiry.Notes))
			}
			if err := w.Write(row); err != nil {
				return nil, apperrors.Internal("failed to render export", err)
			}
		}
		total += len(inquiries)
		if len(inquiries) < pageSize {
			break
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, apperrors.Internal("failed to render export", err)
	}

	log.Printf("[CONTACT] ExportCSV successful: %d rows", total)
	metrics.RecordContactExport()
	return &Export{
		Filename: exportFilename(status, includeNotes, time.Now()),
		Data:     buf.Bytes(),
	}, nil
}

func joinNotes(notes []domain.ContactNote) string {
	parts := make([]string, len(notes))
	for i, n := range notes {
		parts[i] = fmt.Sprintf("%s: %s", n.AuthorName, n.Body)
	}
	return strings.Join(parts, " | ")
}

func exportFilename(status string, includeNotes bool, now time.Time) string {
	name := "contact_inquiries"
	if status != "" {
		name += "_" + strings.ToLower(status)
	}
	if includeNotes {
		name += "_with_notes"
	}
	return name + "_" + now.Format("2006-01-02") + ".csv"
}
