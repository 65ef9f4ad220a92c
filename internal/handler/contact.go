package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/minivalidation/internal/errs"
	"github.com/deppfellow/minivalidation/internal/model"
	"github.com/deppfellow/minivalidation/internal/server"
	"github.com/deppfellow/minivalidation/internal/service"
)

type ContactHandler struct {
	Handler
	contactService *service.ContactService
}

func NewContactHandler(s *server.Server, contactService *service.ContactService) *ContactHandler {
	return &ContactHandler{
		Handler:        NewHandler(s),
		contactService: contactService,
	}
}

// CreateContact handles POST /api/v1/contacts. The body is required.
func (h *ContactHandler) CreateContact(c echo.Context, req *model.CreateContactRequest) (*model.Contact, error) {
	if err := requireBody(req); err != nil {
		return nil, err
	}
	return h.contactService.CreateContact(c.Request().Context(), req)
}

// ValidateContact handles POST /api/v1/contacts/validate. It only runs the
// rule table and answers 204 when CreateContact would accept the body.
func (h *ContactHandler) ValidateContact(c echo.Context, req *model.CreateContactRequest) error {
	return requireBody(req)
}

// UpdateNotes handles PATCH /api/v1/contacts/:id/notes. An empty body
// clears the notes.
func (h *ContactHandler) UpdateNotes(c echo.Context, req *model.UpdateNotesRequest) (*model.Contact, error) {
	id, err := contactID(c)
	if err != nil {
		return nil, err
	}
	return h.contactService.UpdateNotes(c.Request().Context(), id, req)
}

// GetContact handles GET /api/v1/contacts/:id.
func (h *ContactHandler) GetContact(c echo.Context) error {
	id, err := contactID(c)
	if err != nil {
		return err
	}

	contact, err := h.contactService.GetContact(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, contact)
}

func contactID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, errs.NewBadRequestError("Invalid contact id", true, nil, []errs.FieldError{
			{Field: "id", Error: "must be a valid UUID"},
		}, nil)
	}
	return id, nil
}
