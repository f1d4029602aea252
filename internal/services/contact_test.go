package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"testing"
	"time"

	"meridianwealth/internal/domain"
)

func TestSubmitValidatesFields(t *testing.T) {
	db := testDB(t)
	svc := NewContactService(db, nil)

	cases := []struct {
		name string
		in   ContactInput
	}{
		{"missing name", ContactInput{ContactType: "email", ContactInfo: "a@b.com", Message: "hi"}},
		{"bad contact type", ContactInput{Name: "A", ContactType: "fax", ContactInfo: "123", Message: "hi"}},
		{"missing contact info", ContactInput{Name: "A", ContactType: "phone", Message: "hi"}},
		{"missing message", ContactInput{Name: "A", ContactType: "email", ContactInfo: "a@b.com"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Submit(tc.in); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	inquiry, err := svc.Submit(ContactInput{
		Name:        "  Alice  ",
		ContactType: "Email",
		ContactInfo: "alice@example.com",
		Message:     "Please call me",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if inquiry.Name != "Alice" {
		t.Errorf("expected trimmed name, got %q", inquiry.Name)
	}
	if inquiry.ContactType != "email" {
		t.Errorf("expected lowercased contact type, got %q", inquiry.ContactType)
	}
	if inquiry.Status != domain.ContactStatusNew {
		t.Errorf("expected new status, got %q", inquiry.Status)
	}
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	db := testDB(t)
	svc := NewContactService(db, nil)

	inquiry, err := svc.Submit(ContactInput{Name: "A", ContactType: "email", ContactInfo: "a@b.com", Message: "hi"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if _, err := svc.SetStatus(inquiry.ID, "Archived"); err == nil {
		t.Error("expected unknown status to be rejected")
	}

	updated, err := svc.SetStatus(inquiry.ID, domain.ContactStatusResponded)
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if updated.Status != domain.ContactStatusResponded {
		t.Errorf("expected responded status, got %q", updated.Status)
	}
}

func TestDeleteRemovesNotes(t *testing.T) {
	db := testDB(t)
	svc := NewContactService(db, nil)
	admin := createTestUser(t, db, "admin@example.com")

	inquiry, err := svc.Submit(ContactInput{Name: "A", ContactType: "email", ContactInfo: "a@b.com", Message: "hi"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if _, err := svc.AddNote(inquiry.ID, admin, "called back"); err != nil {
		t.Fatalf("AddNote failed: %v", err)
	}

	if err := svc.Delete(inquiry.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var notes int64
	db.Model(&domain.ContactNote{}).Where("inquiry_id = ?", inquiry.ID).Count(&notes)
	if notes != 0 {
		t.Errorf("expected notes deleted with the inquiry, got %d", notes)
	}
}

func TestExportCSVQuotesEmbeddedQuotes(t *testing.T) {
	db := testDB(t)
	svc := NewContactService(db, nil)

	if _, err := svc.Submit(ContactInput{
		Name:        "Bob",
		ContactType: "email",
		ContactInfo: "bob@example.com",
		Message:     `He said "hi", then left`,
	}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	export, err := svc.ExportCSV("", false)
	if err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}

	body := string(export.Data)
	if !strings.Contains(body, `"He said ""hi"", then left"`) {
		t.Errorf("expected RFC-4180 quote doubling, got:\n%s", body)
	}
	if !strings.HasPrefix(body, "Name,Contact Type,Contact Info,Message,Date,Status") {
		t.Errorf("unexpected header row:\n%s", body)
	}
}

func TestExportCSVIncludesNotesColumn(t *testing.T) {
	db := testDB(t)
	svc := NewContactService(db, nil)
	admin := createTestUser(t, db, "noter@example.com")

	inquiry, err := svc.Submit(ContactInput{Name: "C", ContactType: "phone", ContactInfo: "555-0100", Message: "hello"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if _, err := svc.AddNote(inquiry.ID, admin, "left voicemail"); err != nil {
		t.Fatalf("AddNote failed: %v", err)
	}

	export, err := svc.ExportCSV("", true)
	if err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}

	body := string(export.Data)
	if !strings.Contains(body, "Notes") {
		t.Errorf("expected Notes column in header:\n%s", body)
	}
	if !strings.Contains(body, "left voicemail") {
		t.Errorf("expected note text in export:\n%s", body)
	}
}

func TestExportCSVIncludesEveryInquiry(t *testing.T) {
	db := testDB(t)
	svc := NewContactService(db, nil)

	// One more than a listing page, so the export must paginate.
	const total = 501
	for i := 0; i < total; i++ {
		inquiry := domain.ContactInquiry{
			Name:        fmt.Sprintf("Visitor %d", i),
			ContactType: "email",
			ContactInfo: fmt.Sprintf("visitor%d@example.com", i),
			Message:     "hello",
			Status:      domain.ContactStatusNew,
		}
		if err := db.Create(&inquiry).Error; err != nil {
			t.Fatalf("failed to seed inquiry %d: %v", i, err)
		}
	}

	export, err := svc.ExportCSV("", false)
	if err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}

	rows, err := csv.NewReader(bytes.NewReader(export.Data)).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse export: %v", err)
	}
	if got := len(rows) - 1; got != total {
		t.Errorf("expected %d data rows, got %d", total, got)
	}

	seen := make(map[string]bool, total)
	for _, row := range rows[1:] {
		seen[row[2]] = true
	}
	if len(seen) != total {
		t.Errorf("expected %d distinct inquiries, got %d", total, len(seen))
	}
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		status string
		notes  bool
		want   string
	}{
		{"", false, "contact_inquiries_2026-08-29.csv"},
		{"New", false, "contact_inquiries_new_2026-08-29.csv"},
		{"", true, "contact_inquiries_with_notes_2026-08-29.csv"},
		{"Closed", true, "contact_inquiries_closed_with_notes_2026-08-29.csv"},
	}
	for _, tc := range cases {
		if got := exportFilename(tc.status, tc.notes, now); got != tc.want {
			t.Errorf("exportFilename(%q, %v) = %q, want %q", tc.status, tc.notes, got, tc.want)
		}
	}
}
