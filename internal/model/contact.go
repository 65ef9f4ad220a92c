// Package model holds the domain types and the request payloads the API
// accepts, together with the rule tables those payloads are validated with.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/deppfellow/minivalidation/internal/validation"
)

type Contact struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	Age       *int      `json:"age,omitempty"`
	Website   string    `json:"website,omitempty"`
	Tags      []string  `json:"tags"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateContactRequest is the body of POST /api/v1/contacts.
//
// Required members are pointers so a missing property and an empty one can
// both be reported as "is required".
type CreateContactRequest struct {
	Name    *string  `json:"name"`
	Email   *string  `json:"email"`
	Phone   *string  `json:"phone"`
	Age     *int     `json:"age"`
	Website string   `json:"website"`
	Tags    []string `json:"tags"`
}

var CreateContactRules = validation.NewRuleSet(
	validation.Field("Name", func(r *CreateContactRequest) any { return r.Name },
		validation.Required(), validation.NotBlank(), validation.MaxLength(100)),
	validation.Field("Email", func(r *CreateContactRequest) any { return r.Email },
		validation.Required(), validation.Email(), validation.MaxLength(254)),
	validation.Field("Phone", func(r *CreateContactRequest) any { return r.Phone },
		validation.Pattern(`^\+[1-9][0-9]{6,14}$`).WithMessage("must be a valid phone number with country code")),
	validation.Field("Age", func(r *CreateContactRequest) any { return r.Age },
		validation.Range(0, 150)),
	validation.Field("Website", func(r *CreateContactRequest) any { return r.Website },
		validation.OmitEmpty(), validation.URL()),
	validation.Field("Tags", func(r *CreateContactRequest) any { return r.Tags },
		validation.Max(10).WithMessage("must not contain more than {param} tags")),
)

// Validate rejects duplicate tags once the field rules passed.
func (r *CreateContactRequest) Validate() error {
	seen := make(map[string]struct{}, len(r.Tags))
	for _, tag := range r.Tags {
		if _, ok := seen[tag]; ok {
			return validation.ValidationError{Field: "Tags", Message: "must not contain duplicates"}
		}
		seen[tag] = struct{}{}
	}
	return nil
}

// UpdateNotesRequest is the optional body of PATCH /api/v1/contacts/:id/notes.
// Sending no body clears the notes.
type UpdateNotesRequest struct {
	Notes *string `json:"notes" validate:"required,max=2000"`
}

var UpdateNotesRules = validation.MustRulesFromTags[UpdateNotesRequest]()
