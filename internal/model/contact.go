package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrValidation is returned when caller input breaks a contact invariant.
var ErrValidation = errors.New("validation error")

// ContactStatus is the moderation state of a contact.
type ContactStatus string

const (
	StatusNew        ContactStatus = "new"
	StatusInProgress ContactStatus = "in_progress"
	StatusReplied    ContactStatus = "replied"
	StatusClosed     ContactStatus = "closed"
	StatusSpam       ContactStatus = "spam"
)

// StatusFilterAll selects contacts of every status. It is a filter value only.
const StatusFilterAll = "all"

// ContactStatuses lists every storable status in lifecycle order.
var ContactStatuses = []ContactStatus{StatusNew, StatusInProgress, StatusReplied, StatusClosed, StatusSpam}

// Valid reports whether s is one of the five storable statuses.
func (s ContactStatus) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusReplied, StatusClosed, StatusSpam:
		return true
	}
	return false
}

// ParseContactStatus trims s and returns it as a ContactStatus.
// Returns ErrValidation when s is not a storable status.
func ParseContactStatus(s string) (ContactStatus, error) {
	st := ContactStatus(strings.TrimSpace(s))
	if !st.Valid() {
		return "", ErrValidation
	}
	return st, nil
}

// Contact is one lead submitted through the website.
type Contact struct {
	ID int64 `json:"id"`

	// Submitter fields, written once on creation.
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	CountryCode     string  `json:"countryCode"`
	Company         *string `json:"company"`
	Subject         string  `json:"subject"`
	ServiceInterest *string `json:"serviceInterest"`
	BudgetRange     *string `json:"budgetRange"`
	Message         string  `json:"message"`

	// Trust fields, written once on creation.
	IsVerified   bool     `json:"isVerified"`
	CaptchaScore *float64 `json:"captchaScore"`
	IPAddress    *string  `json:"ipAddress"`
	UserAgent    *string  `json:"userAgent"`

	// Moderation fields.
	Status     ContactStatus `json:"status"`
	AdminNotes *string       `json:"adminNotes"`
	RepliedAt  *time.Time    `json:"repliedAt"`
	RepliedBy  *string       `json:"repliedBy"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StatusUpdate is a single moderation transition.
type StatusUpdate struct {
	ID     int64
	Status ContactStatus
	// AdminNotes replaces the stored notes when non-nil.
	AdminNotes *string
	// Actor is recorded as replied_by when Status is StatusReplied.
	Actor string
}

const (
	DefaultContactPage  = 1
	DefaultContactLimit = 20
	MaxContactLimit     = 100
)

// ErrLimitTooLarge is returned by Normalize when Limit exceeds MaxContactLimit.
// It wraps ErrValidation.
var ErrLimitTooLarge = fmt.Errorf("%w: limit exceeds %d", ErrValidation, MaxContactLimit)

// ContactListOptions carries filter and pagination parameters for listing contacts.
type ContactListOptions struct {
	Page  int
	Limit int
	// Status is a ContactStatus value, StatusFilterAll, or empty (all).
	Status string
	// Search is a case-insensitive substring over name, email, subject and message.
	Search string
}

// Normalize applies defaults. A limit above MaxContactLimit is rejected rather
// than clamped so TotalPages always matches the limit the caller asked for.
// It returns ErrValidation for an unknown status filter.
func (o ContactListOptions) Normalize() (ContactListOptions, error) {
	if o.Page < 1 {
		o.Page = DefaultContactPage
	}
	if o.Limit < 1 {
		o.Limit = DefaultContactLimit
	}
	if o.Limit > MaxContactLimit {
		return o, ErrLimitTooLarge
	}
	o.Search = strings.TrimSpace(o.Search)
	o.Status = strings.TrimSpace(o.Status)
	if o.Status == "" {
		o.Status = StatusFilterAll
	}
	if o.Status != StatusFilterAll && !ContactStatus(o.Status).Valid() {
		return o, ErrValidation
	}
	return o, nil
}

// Offset is the row offset of the first contact on Page.
func (o ContactListOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}

// ContactPage is one page of a filtered contact listing.
type ContactPage struct {
	Contacts    []*Contact
	Total       int
	TotalPages  int
	CurrentPage int
}

// NewContactPage builds a page and derives TotalPages as ceil(total/limit).
func NewContactPage(contacts []*Contact, total int, opts ContactListOptions) *ContactPage {
	if contacts == nil {
		contacts = []*Contact{}
	}
	totalPages := 0
	if opts.Limit > 0 {
		totalPages = (total + opts.Limit - 1) / opts.Limit
	}
	return &ContactPage{
		Contacts:    contacts,
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: opts.Page,
	}
}

// ContactSummary counts contacts per status for the admin dashboard.
type ContactSummary struct {
	Total    int                   `json:"total"`
	ByStatus map[ContactStatus]int `json:"byStatus"`
}

// NewContactSummary fills in zero counts for statuses missing from counts.
func NewContactSummary(counts map[ContactStatus]int) *ContactSummary {
	s := &ContactSummary{ByStatus: make(map[ContactStatus]int, len(ContactStatuses))}
	for _, st := range ContactStatuses {
		n := counts[st]
		s.ByStatus[st] = n
		s.Total += n
	}
	return s
}
