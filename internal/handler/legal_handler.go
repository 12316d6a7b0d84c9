package handler

import (
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"time"
)

// legalDocuments maps the {type} path value to its Markdown file name.
var legalDocuments = map[string]string{
	"privacy": "privacy.md",
	"terms":   "terms.md",
	"cookies": "cookies.md",
}

const maxLegalDocBytes = 1 << 20

// LegalConfig holds configuration for the LegalHandler.
type LegalConfig struct {
	// DocsDir is the directory legal Markdown files are read from (LEGAL_DOCS_DIR).
	DocsDir string
}

// LegalHandler handles GET /api/legal/{type}.
type LegalHandler struct {
	cfg LegalConfig
}

// NewLegalHandler creates a LegalHandler with the given configuration.
func NewLegalHandler(cfg LegalConfig) *LegalHandler {
	return &LegalHandler{cfg: cfg}
}

type legalResponse struct {
	Success   bool      `json:"success"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Legal returns the Markdown of the requested legal document wrapped in JSON.
// Unknown types and missing files are 404. Reads go through os.Root so no
// name can escape DocsDir.
func (h *LegalHandler) Legal(w http.ResponseWriter, r *http.Request) {
	docType := r.PathValue("type")
	name, ok := legalDocuments[docType]
	if !ok {
		writeFail(w, http.StatusNotFound, "Document not found")
		return
	}

	root, err := os.OpenRoot(h.cfg.DocsDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeFail(w, http.StatusNotFound, "Document not found")
			return
		}
		writeServerError(w, r, "Failed to read document", err)
		return
	}
	defer root.Close()

	f, err := root.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		writeFail(w, http.StatusNotFound, "Document not found")
		return
	}
	if err != nil {
		writeServerError(w, r, "Failed to read document", err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeServerError(w, r, "Failed to read document", err)
		return
	}
	content, err := io.ReadAll(io.LimitReader(f, maxLegalDocBytes))
	if err != nil {
		writeServerError(w, r, "Failed to read document", err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	writeJSON(w, http.StatusOK, legalResponse{
		Success:   true,
		Type:      docType,
		Content:   string(content),
		UpdatedAt: info.ModTime().UTC(),
	})
}
