package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leaddesk/backend/internal/model"
	"github.com/leaddesk/backend/internal/repository"
	"github.com/leaddesk/backend/pkg/captcha"
	"github.com/leaddesk/backend/pkg/mailer"
)

// ContactServiceConfig holds the optional collaborators of the contact service.
// Nil Verifier skips captcha scoring; nil Notifier skips the email.
type ContactServiceConfig struct {
	Verifier        captcha.Verifier
	Notifier        mailer.Notifier
	MinCaptchaScore float64
	// AdminURL is linked from notification emails, e.g. https://example.com/admin/contacts.
	AdminURL string
}

// contactServiceImpl is the production implementation of ContactService.
type contactServiceImpl struct {
	repo repository.ContactRepository
	cfg  ContactServiceConfig
}

// NewContactService creates a ContactService backed by the given repository.
func NewContactService(repo repository.ContactRepository, cfg ContactServiceConfig) ContactService {
	if cfg.Notifier == nil {
		cfg.Notifier = mailer.NopNotifier{}
	}
	return &contactServiceImpl{repo: repo, cfg: cfg}
}

// Submit scores the captcha, stores the contact with status "new" and notifies
// the site owner. Captcha and notification failures never fail the submission.
func (s *contactServiceImpl) Submit(ctx context.Context, c *model.Contact, captchaToken string) error {
	c.Status = model.StatusNew
	c.IsVerified = false
	c.CaptchaScore = nil
	c.AdminNotes = nil
	c.RepliedAt = nil
	c.RepliedBy = nil

	if s.cfg.Verifier != nil && captchaToken != "" {
		remoteIP := ""
		if c.IPAddress != nil {
			remoteIP = *c.IPAddress
		}
		res, err := s.cfg.Verifier.Verify(ctx, captchaToken, remoteIP)
		if err != nil {
			slog.Warn("captcha verification failed", "error", err)
		} else {
			score := res.Score
			c.CaptchaScore = &score
			c.IsVerified = res.Success && res.Score >= s.cfg.MinCaptchaScore
		}
	}

	if err := s.repo.Save(ctx, c); err != nil {
		return fmt.Errorf("save contact: %w", err)
	}
	slog.Info("contact submitted", "contact_id", c.ID, "verified", c.IsVerified)

	// The notifier owns delivery timing; cmd/server wires an AsyncNotifier.
	if err := s.cfg.Notifier.NotifyNewLead(ctx, leadNotice(c, s.cfg.AdminURL)); err != nil {
		slog.Error("lead notification failed", "contact_id", c.ID, "error", err)
	}
	return nil
}

func leadNotice(c *model.Contact, adminURL string) mailer.LeadNotice {
	n := mailer.LeadNotice{
		ID:          c.ID,
		Name:        c.Name,
		Email:       c.Email,
		Phone:       c.Phone,
		CountryCode: c.CountryCode,
		Subject:     c.Subject,
		Message:     c.Message,
	}
	if c.Company != nil {
		n.Company = *c.Company
	}
	if adminURL != "" {
		n.AdminURL = fmt.Sprintf("%s/%d", strings.TrimRight(adminURL, "/"), c.ID)
	}
	return n
}

// List normalizes opts and returns the matching page.
func (s *contactServiceImpl) List(ctx context.Context, opts model.ContactListOptions) (*model.ContactPage, error) {
	norm, err := opts.Normalize()
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, norm)
}

// Get returns one contact by id.
func (s *contactServiceImpl) Get(ctx context.Context, id int64) (*model.Contact, error) {
	if id <= 0 {
		return nil, repository.ErrNotFound
	}
	return s.repo.FindByID(ctx, id)
}

// UpdateStatus validates the transition before it reaches the store.
func (s *contactServiceImpl) UpdateStatus(ctx context.Context, upd model.StatusUpdate) (*model.Contact, error) {
	if upd.ID <= 0 || !upd.Status.Valid() {
		return nil, model.ErrValidation
	}
	if upd.Status == model.StatusReplied && strings.TrimSpace(upd.Actor) == "" {
		return nil, model.ErrValidation
	}
	c, err := s.repo.UpdateStatus(ctx, upd)
	if err != nil {
		return nil, err
	}
	slog.Info("contact status updated", "contact_id", c.ID, "status", c.Status, "actor", upd.Actor)
	return c, nil
}

// Summary returns counts per status with every status present.
func (s *contactServiceImpl) Summary(ctx context.Context) (*model.ContactSummary, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	return model.NewContactSummary(counts), nil
}
