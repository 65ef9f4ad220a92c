package handler

import (
	"github.com/deppfellow/minivalidation/internal/model"
	"github.com/deppfellow/minivalidation/internal/server"
	"github.com/deppfellow/minivalidation/internal/service"
)

// Handlers groups all HTTP handlers so the router receives one dependency.
type Handlers struct {
	Health  *HealthHandler
	Schema  *SchemaHandler
	Contact *ContactHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health: NewHealthHandler(s),
		Schema: NewSchemaHandler(s,
			DescribeRules("CreateContactRequest", model.CreateContactRules),
			DescribeRules("UpdateNotesRequest", model.UpdateNotesRules),
		),
		Contact: NewContactHandler(s, services.Contact),
	}
}
