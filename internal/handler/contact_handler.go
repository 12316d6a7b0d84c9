package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/leaddesk/backend/internal/model"
	"github.com/leaddesk/backend/internal/repository"
	"github.com/leaddesk/backend/internal/service"
	"github.com/leaddesk/backend/pkg/auth"
)

const (
	maxMessageLength    = 5000
	maxAdminNotesLength = 5000
	maxFieldLength      = 255
	maxUserAgentLength  = 512
	maxContactBodyBytes = 64 << 10
)

// ContactHandler handles contact form submission and the admin contact panel.
type ContactHandler struct {
	contactService service.ContactService
}

// NewContactHandler creates a ContactHandler with the given service.
func NewContactHandler(contactService service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// submitRequest is the expected JSON body for POST /api/contact.
type submitRequest struct {
	Name            string  `json:"name" validate:"required,max=255"`
	Email           string  `json:"email" validate:"required,max=255,email"`
	Phone           string  `json:"phone" validate:"required,max=255"`
	CountryCode     string  `json:"countryCode" validate:"required,max=255"`
	Company         *string `json:"company"`
	Subject         string  `json:"subject" validate:"required,max=255"`
	ServiceInterest *string `json:"serviceInterest"`
	BudgetRange     *string `json:"budgetRange"`
	Message         string  `json:"message" validate:"required,max=5000"`
	CaptchaToken    string  `json:"captchaToken" validate:"max=4096"`
}

var requestValidator = validator.New()

// submitLabels names each validated field in client-facing messages.
var submitLabels = map[string]string{
	"Name":         "Name",
	"Email":        "Email",
	"Phone":        "Phone",
	"CountryCode":  "Country code",
	"Subject":      "Subject",
	"Message":      "Message",
	"CaptchaToken": "Captcha token",
}

// validate trims fields in place and returns a client-facing message for the first problem.
func (req *submitRequest) validate() string {
	for _, f := range []*string{&req.Name, &req.Email, &req.Phone, &req.CountryCode, &req.Subject, &req.Message} {
		*f = strings.TrimSpace(*f)
	}
	req.Company = optionalField(req.Company)
	req.ServiceInterest = optionalField(req.ServiceInterest)
	req.BudgetRange = optionalField(req.BudgetRange)

	err := requestValidator.Struct(req)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}
	fe := verrs[0]
	label := submitLabels[fe.StructField()]
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "max":
		return label + " is too long"
	case "email":
		return "Invalid email address"
	}
	return "Invalid " + strings.ToLower(label)
}

// optionalField trims s, maps blank to nil and truncates to maxFieldLength runes.
func optionalField(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	if utf8.RuneCountInString(v) > maxFieldLength {
		v = string([]rune(v)[:maxFieldLength])
	}
	return &v
}

// Submit handles POST /api/contact.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxContactBodyBytes)
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeFail(w, http.StatusBadRequest, msg)
		return
	}

	c := &model.Contact{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		CountryCode:     req.CountryCode,
		Company:         req.Company,
		Subject:         req.Subject,
		ServiceInterest: req.ServiceInterest,
		BudgetRange:     req.BudgetRange,
		Message:         req.Message,
	}
	ip := ClientIPFromContext(r.Context())
	if ip == "" {
		ip = remoteHost(r)
	}
	if ip != "" {
		c.IPAddress = &ip
	}
	if ua := r.UserAgent(); ua != "" {
		if len(ua) > maxUserAgentLength {
			ua = ua[:maxUserAgentLength]
		}
		c.UserAgent = &ua
	}

	if err := h.contactService.Submit(r.Context(), c, req.CaptchaToken); err != nil {
		writeServerError(w, r, "Failed to submit contact", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": c.ID})
}

// contactListResponse is the JSON response for GET /api/admin/contacts.
type contactListResponse struct {
	Success     bool             `json:"success"`
	Contacts    []*model.Contact `json:"contacts"`
	Total       int              `json:"total"`
	TotalPages  int              `json:"totalPages"`
	CurrentPage int              `json:"currentPage"`
}

// positiveQueryInt returns the value of key when it is a positive integer, else 0.
func positiveQueryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// List handles GET /api/admin/contacts.
// Query params: page, limit, status (enum value or "all"), search.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := model.ContactListOptions{
		Page:   positiveQueryInt(r, "page"),
		Limit:  positiveQueryInt(r, "limit"),
		Status: r.URL.Query().Get("status"),
		Search: r.URL.Query().Get("search"),
	}

	page, err := h.contactService.List(r.Context(), opts)
	if errors.Is(err, model.ErrLimitTooLarge) {
		writeFail(w, http.StatusBadRequest, fmt.Sprintf("Limit must be at most %d", model.MaxContactLimit))
		return
	}
	if errors.Is(err, model.ErrValidation) {
		writeFail(w, http.StatusBadRequest, "Invalid status filter")
		return
	}
	if err != nil {
		writeServerError(w, r, "Failed to fetch contacts", err)
		return
	}

	// Return [] not null for empty lists
	contacts := page.Contacts
	if contacts == nil {
		contacts = []*model.Contact{}
	}
	writeJSON(w, http.StatusOK, contactListResponse{
		Success:     true,
		Contacts:    contacts,
		Total:       page.Total,
		TotalPages:  page.TotalPages,
		CurrentPage: page.CurrentPage,
	})
}

// parseContactID parses a positive contact id from a path value.
func parseContactID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// Get handles GET /api/admin/contacts/{id}.
func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseContactID(r.PathValue("id"))
	if !ok {
		writeFail(w, http.StatusBadRequest, "Contact ID is required")
		return
	}
	c, err := h.contactService.Get(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		writeFail(w, http.StatusNotFound, "Contact not found")
		return
	}
	if err != nil {
		writeServerError(w, r, "Failed to fetch contact", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "contact": c})
}

// updateRequest is the JSON body for PUT /api/admin/contacts and PATCH /api/admin/contacts/{id}.
type updateRequest struct {
	ID         int64   `json:"id"`
	Status     string  `json:"status"`
	AdminNotes *string `json:"adminNotes" validate:"omitempty,max=5000"`
}

// Update handles PUT /api/admin/contacts (id in body) and
// PATCH /api/admin/contacts/{id} (id in path, body id optional but must match).
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxContactBodyBytes)
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id := req.ID
	if raw := r.PathValue("id"); raw != "" {
		pathID, ok := parseContactID(raw)
		if !ok {
			writeFail(w, http.StatusBadRequest, "Contact ID is required")
			return
		}
		if id != 0 && id != pathID {
			writeFail(w, http.StatusBadRequest, "Contact ID mismatch")
			return
		}
		id = pathID
	}
	if id < 1 {
		writeFail(w, http.StatusBadRequest, "Contact ID is required")
		return
	}

	status, err := model.ParseContactStatus(req.Status)
	if err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid status")
		return
	}
	if err := requestValidator.Struct(req); err != nil {
		writeFail(w, http.StatusBadRequest, "Admin notes are too long")
		return
	}

	c, err := h.contactService.UpdateStatus(r.Context(), model.StatusUpdate{
		ID:         id,
		Status:     status,
		AdminNotes: req.AdminNotes,
		Actor:      sess.Username,
	})
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeFail(w, http.StatusNotFound, "Contact not found")
		return
	case errors.Is(err, model.ErrValidation):
		writeFail(w, http.StatusBadRequest, "Invalid status")
		return
	case err != nil:
		writeServerError(w, r, "Failed to update contact", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "contact": c})
}

// Summary handles GET /api/admin/contacts/summary.
func (h *ContactHandler) Summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.contactService.Summary(r.Context())
	if err != nil {
		writeServerError(w, r, "Failed to fetch contact summary", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "summary": s})
}
