package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/deppfellow/minivalidation/internal/errs"
	"github.com/deppfellow/minivalidation/internal/model"
	"github.com/deppfellow/minivalidation/internal/repository"
	"github.com/deppfellow/minivalidation/internal/server"
)

type ContactService struct {
	server *server.Server
	repo   *repository.ContactRepository
}

func NewContactService(s *server.Server, repo *repository.ContactRepository) *ContactService {
	return &ContactService{
		server: s,
		repo:   repo,
	}
}

// CreateContact stores a new contact from a validated request.
func (s *ContactService) CreateContact(ctx context.Context, req *model.CreateContactRequest) (*model.Contact, error) {
	now := time.Now().UTC()

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	contact, err := s.repo.Create(ctx, model.Contact{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(*req.Name),
		Email:     strings.ToLower(*req.Email),
		Phone:     req.Phone,
		Age:       req.Age,
		Website:   req.Website,
		Tags:      tags,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("contact_id", contact.ID.String()).
		Msg("contact created")

	if app := s.server.LoggerService.GetApplication(); app != nil {
		app.RecordCustomEvent("ContactCreated", map[string]any{
			"tag_count": len(tags),
			"has_phone": req.Phone != nil,
		})
	}

	return contact, nil
}

func (s *ContactService) GetContact(ctx context.Context, id uuid.UUID) (*model.Contact, error) {
	contact, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return contact, nil
}

// UpdateNotes replaces the notes of a contact. A nil request clears them.
func (s *ContactService) UpdateNotes(ctx context.Context, id uuid.UUID, req *model.UpdateNotesRequest) (*model.Contact, error) {
	var notes *string
	if req != nil {
		notes = req.Notes
	}

	contact, err := s.repo.Update(ctx, id, func(c *model.Contact) {
		c.Notes = notes
		c.UpdatedAt = time.Now().UTC()
	})
	if err != nil {
		return nil, notFoundOr(err)
	}

	zerolog.Ctx(ctx).Info().
		Str("contact_id", id.String()).
		Bool("cleared", notes == nil).
		Msg("contact notes updated")

	return contact, nil
}

func notFoundOr(err error) error {
	if errors.Is(err, repository.ErrContactNotFound) {
		code := "CONTACT_NOT_FOUND"
		return errs.NewNotFoundError("Contact not found", true, &code)
	}
	return err
}
