// Package service contains the business logic.
//
// It sits between the handler and repository layers. It receives
// bound and validated payloads from the handlers, applies the business
// rules and calls the repositories.
package service

import (
	"github.com/deppfellow/minivalidation/internal/repository"
	"github.com/deppfellow/minivalidation/internal/server"
)

type Services struct {
	Contact *ContactService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	return &Services{
		Contact: NewContactService(s, repos.Contact),
	}, nil
}
