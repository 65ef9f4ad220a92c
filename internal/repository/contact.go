package repository

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/deppfellow/minivalidation/internal/model"
)

var ErrContactNotFound = errors.New("contact not found")

// ContactRepository keeps contacts in memory. It is safe for concurrent use.
type ContactRepository struct {
	mu       sync.RWMutex
	contacts map[uuid.UUID]model.Contact
}

func NewContactRepository() *ContactRepository {
	return &ContactRepository{
		contacts: make(map[uuid.UUID]model.Contact),
	}
}

func (r *ContactRepository) Create(ctx context.Context, contact model.Contact) (*model.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.contacts[contact.ID]; exists {
		return nil, errors.New("contact id already exists")
	}
	r.contacts[contact.ID] = clone(contact)

	zerolog.Ctx(ctx).Debug().
		Str("contact_id", contact.ID.String()).
		Int("contact_count", len(r.contacts)).
		Msg("contact stored")

	return &contact, nil
}

func (r *ContactRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	contact, ok := r.contacts[id]
	if !ok {
		return nil, ErrContactNotFound
	}

	out := clone(contact)
	return &out, nil
}

// Update applies fn to the stored contact under the write lock.
func (r *ContactRepository) Update(ctx context.Context, id uuid.UUID, fn func(*model.Contact)) (*model.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	contact, ok := r.contacts[id]
	if !ok {
		return nil, ErrContactNotFound
	}

	fn(&contact)
	r.contacts[id] = clone(contact)

	return &contact, nil
}

// clone copies the reference-typed members so callers never share them with the store.
func clone(c model.Contact) model.Contact {
	c.Tags = slices.Clone(c.Tags)
	if c.Phone != nil {
		phone := *c.Phone
		c.Phone = &phone
	}
	if c.Age != nil {
		age := *c.Age
		c.Age = &age
	}
	if c.Notes != nil {
		notes := *c.Notes
		c.Notes = &notes
	}
	return c
}
