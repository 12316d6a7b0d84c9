package service

import (
	"context"

	"github.com/leaddesk/backend/internal/model"
)

// ContactService defines the business logic for contact submissions and moderation.
type ContactService interface {
	// Submit stores a new contact. c.ID, status and timestamps are populated
	// by the implementation. captchaToken may be empty.
	Submit(ctx context.Context, c *model.Contact, captchaToken string) error

	// List returns one page of contacts matching opts. Returns model.ErrValidation
	// for an unknown status filter.
	List(ctx context.Context, opts model.ContactListOptions) (*model.ContactPage, error)

	// Get returns a single contact or repository.ErrNotFound.
	Get(ctx context.Context, id int64) (*model.Contact, error)

	// UpdateStatus applies a moderation transition and returns the updated contact.
	UpdateStatus(ctx context.Context, upd model.StatusUpdate) (*model.Contact, error)

	// Summary returns contact counts per status.
	Summary(ctx context.Context) (*model.ContactSummary, error)
}
