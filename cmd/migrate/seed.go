package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/leaddesk/backend/internal/model"
	"github.com/leaddesk/backend/internal/repository"
	"gopkg.in/yaml.v3"
)

const seedActor = "seed"

// seedFile is the YAML layout accepted by `migrate seed --file`.
type seedFile struct {
	Contacts []seedContact `yaml:"contacts"`
}

type seedContact struct {
	Name            string  `yaml:"name"`
	Email           string  `yaml:"email"`
	Phone           string  `yaml:"phone"`
	CountryCode     string  `yaml:"countryCode"`
	Company         *string `yaml:"company"`
	Subject         string  `yaml:"subject"`
	ServiceInterest *string `yaml:"serviceInterest"`
	BudgetRange     *string `yaml:"budgetRange"`
	Message         string  `yaml:"message"`
	Status          string  `yaml:"status"`
	AdminNotes      *string `yaml:"adminNotes"`
}

// parseSeed decodes and validates a seed file. Unknown keys are rejected.
func parseSeed(r io.Reader) (*seedFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f seedFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	for i, c := range f.Contacts {
		if missing := c.missingField(); missing != "" {
			return nil, fmt.Errorf("contact %d: %s is required", i, missing)
		}
		if c.Status != "" {
			if _, err := model.ParseContactStatus(c.Status); err != nil {
				return nil, fmt.Errorf("contact %d: invalid status %q", i, c.Status)
			}
		}
	}
	return &f, nil
}

// missingField names the first required field that is blank, matching the
// fields the public submit endpoint requires.
func (c seedContact) missingField() string {
	required := []struct{ name, value string }{
		{"name", c.Name},
		{"email", c.Email},
		{"phone", c.Phone},
		{"countryCode", c.CountryCode},
		{"subject", c.Subject},
		{"message", c.Message},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return f.name
		}
	}
	return ""
}

// toContact returns the creation record and, when the seed asks for a later
// status or notes, the moderation update to apply after insert.
func (c seedContact) toContact() (*model.Contact, *model.StatusUpdate) {
	contact := &model.Contact{
		Name:            c.Name,
		Email:           c.Email,
		Phone:           c.Phone,
		CountryCode:     c.CountryCode,
		Company:         c.Company,
		Subject:         c.Subject,
		ServiceInterest: c.ServiceInterest,
		BudgetRange:     c.BudgetRange,
		Message:         c.Message,
		Status:          model.StatusNew,
	}
	status := model.ContactStatus(strings.TrimSpace(c.Status))
	if (status == "" || status == model.StatusNew) && c.AdminNotes == nil {
		return contact, nil
	}
	if status == "" {
		status = model.StatusNew
	}
	return contact, &model.StatusUpdate{Status: status, AdminNotes: c.AdminNotes, Actor: seedActor}
}

// contactTxRunner runs fn inside one store transaction.
type contactTxRunner interface {
	InTx(ctx context.Context, fn func(repo repository.ContactRepository) error) error
}

// seedContacts inserts every contact through the repository creation path and
// then applies moderation state through UpdateStatus. All rows share one
// transaction: a failure leaves the table as it was.
func seedContacts(ctx context.Context, store contactTxRunner, f *seedFile) (int, error) {
	err := store.InTx(ctx, func(repo repository.ContactRepository) error {
		for i, sc := range f.Contacts {
			contact, upd := sc.toContact()
			if err := repo.Save(ctx, contact); err != nil {
				return fmt.Errorf("seed contact %d: %w", i, err)
			}
			if upd != nil {
				upd.ID = contact.ID
				if _, err := repo.UpdateStatus(ctx, *upd); err != nil {
					return fmt.Errorf("seed contact %d status: %w", i, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	slog.Info("seed completed", "contacts", len(f.Contacts))
	return len(f.Contacts), nil
}
