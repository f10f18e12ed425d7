package services

import (
	"strings"
	"testing"

	"github.com/Piyush5784/maa-anapurna-trust-api/dto"
	"github.com/Piyush5784/maa-anapurna-trust-api/model"
	"github.com/Piyush5784/maa-anapurna-trust-api/shared"
)

type fakeContactStorage struct {
	contacts []model.Contact
}

func (s *fakeContactStorage) CreateContact(contact *model.Contact) error {
	s.contacts = append(s.contacts, *contact)
	return nil
}

func (s *fakeContactStorage) ListContacts(page, limit int) ([]model.Contact, int64, error) {
	start := (page - 1) * limit
	if start >= len(s.contacts) {
		return nil, int64(len(s.contacts)), nil
	}
	end := start + limit
	if end > len(s.contacts) {
		end = len(s.contacts)
	}
	return s.contacts[start:end], int64(len(s.contacts)), nil
}

func newTestContactService() (*ContactService, *fakeContactStorage) {
	storage := &fakeContactStorage{}
	svc := &ContactService{
		storage: storage,
		logSvc:  &LogService{},
	}
	return svc, storage
}

func validContactRequest() dto.CreateContactRequest {
	return dto.CreateContactRequest{
		FirstName: "Asha",
		LastName:  "Verma",
		Email:     "asha@example.org",
		Subject:   shared.ContactSubjectVolunteer,
		Message:   "I would like to help with the weekend meal drives.",
	}
}

func TestSubmitStampsSource(t *testing.T) {
	svc, storage := newTestContactService()

	resp, err := svc.Submit(validContactRequest())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if resp.Source != shared.ContactSourceWebsite {
		t.Errorf("source = %q, want %q", resp.Source, shared.ContactSourceWebsite)
	}
	if len(storage.contacts) != 1 {
		t.Fatalf("stored %d contacts, want 1", len(storage.contacts))
	}
	if storage.contacts[0].Source != shared.ContactSourceWebsite {
		t.Errorf("stored source = %q, want %q", storage.contacts[0].Source, shared.ContactSourceWebsite)
	}
	if resp.ID == "" {
		t.Error("submission should be assigned an id")
	}
}

func TestSubmitMessageLengthBoundary(t *testing.T) {
	svc, _ := newTestContactService()

	// Nine characters: one short of the minimum.
	short := validContactRequest()
	short.Message = strings.Repeat("x", 9)
	if _, err := svc.Submit(short); err == nil {
		t.Fatal("nine character message should be rejected")
	} else if appErr, ok := shared.GetAppError(err); !ok || appErr.StatusCode != 400 {
		t.Errorf("error = %v, want a 400 validation error", err)
	}

	// Exactly ten characters passes.
	atMin := validContactRequest()
	atMin.Message = strings.Repeat("x", 10)
	if _, err := svc.Submit(atMin); err != nil {
		t.Errorf("ten character message should pass: %v", err)
	}

	tooLong := validContactRequest()
	tooLong.Message = strings.Repeat("x", 5001)
	if _, err := svc.Submit(tooLong); err == nil {
		t.Error("message over 5000 characters should be rejected")
	}
}

func TestSubmitRejectsUnknownSubject(t *testing.T) {
	svc, _ := newTestContactService()

	req := validContactRequest()
	req.Subject = "complaint"
	if _, err := svc.Submit(req); err == nil {
		t.Fatal("unknown subject should be rejected")
	}
}

func TestListClampsPagination(t *testing.T) {
	svc, _ := newTestContactService()

	for i := 0; i < 25; i++ {
		if _, err := svc.Submit(validContactRequest()); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	resp, err := svc.List(0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if resp.Page != 1 {
		t.Errorf("page = %d, want clamped to 1", resp.Page)
	}
	if resp.Limit != 20 {
		t.Errorf("limit = %d, want default 20", resp.Limit)
	}
	if len(resp.Contacts) != 20 {
		t.Errorf("contacts = %d, want one full page of 20", len(resp.Contacts))
	}
	if resp.Total != 25 {
		t.Errorf("total = %d, want 25", resp.Total)
	}

	over, err := svc.List(1, 500)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if over.Limit != 20 {
		t.Errorf("limit = %d, want oversized limit clamped to default", over.Limit)
	}
}
