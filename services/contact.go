package services

import (
	"time"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"

	"github.com/Piyush5784/maa-anapurna-trust-api/dto"
	"github.com/Piyush5784/maa-anapurna-trust-api/model"
	"github.com/Piyush5784/maa-anapurna-trust-api/shared"
)

// ContactStorage is the slice of the query layer the contact service
// needs.
type ContactStorage interface {
	CreateContact(contact *model.Contact) error
	ListContacts(page, limit int) ([]model.Contact, int64, error)
}

// ContactService records contact-form submissions. Messages are
// write-once; the admin listing is the only read path.
type ContactService struct {
	context.DefaultService

	storage ContactStorage
	logSvc  *LogService
}

const CONTACT_SVC = "contact_svc"

func (svc ContactService) Id() string {
	return CONTACT_SVC
}

func (svc *ContactService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *ContactService) Start() error {
	svc.storage = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.logSvc = svc.Service(LOG_SVC).(*LogService)
	return nil
}

func (svc *ContactService) Submit(req dto.CreateContactRequest) (*dto.ContactResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, shared.NewValidationError(dto.FormatValidationErrors(err))
	}

	contact := &model.Contact{
		ID:        uuid.NewString(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Subject:   req.Subject,
		Message:   req.Message,
		Source:    shared.ContactSourceWebsite,
		CreatedAt: time.Now(),
	}

	if err := svc.storage.CreateContact(contact); err != nil {
		svc.logSvc.Error(CONTACT_SVC, "Failed to store contact message", map[string]interface{}{
			"email": req.Email,
			"error": err.Error(),
		})
		return nil, shared.NewInternalError(err, "Something went wrong")
	}

	return mapContactToResponse(contact), nil
}

func (svc *ContactService) List(page, limit int) (*dto.ContactListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	contacts, total, err := svc.storage.ListContacts(page, limit)
	if err != nil {
		svc.logSvc.Error(CONTACT_SVC, "Failed to list contact messages", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, shared.NewInternalError(err, "Something went wrong")
	}

	responses := make([]dto.ContactResponse, len(contacts))
	for i := range contacts {
		responses[i] = *mapContactToResponse(&contacts[i])
	}

	return &dto.ContactListResponse{
		Contacts: responses,
		Total:    total,
		Page:     page,
		Limit:    limit,
	}, nil
}

func mapContactToResponse(contact *model.Contact) *dto.ContactResponse {
	return &dto.ContactResponse{
		ID:        contact.ID,
		FirstName: contact.FirstName,
		LastName:  contact.LastName,
		Email:     contact.Email,
		Phone:     contact.Phone,
		Subject:   contact.Subject,
		Message:   contact.Message,
		Source:    contact.Source,
		CreatedAt: contact.CreatedAt,
	}
}
