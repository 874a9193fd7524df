package docs

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// maxUploadBytes caps a single document upload
const maxUploadBytes = 20 << 20

// Validator sanity-checks uploaded case documents before they reach storage
type Validator struct {
	logger *zap.Logger
}

// NewValidator creates a new document validator
func NewValidator(logger *zap.Logger) *Validator {
	return &Validator{logger: logger}
}

// Validate checks size and, for PDFs, that the file opens and has at least
// one page. Image uploads pass on extension alone; mupdf handles them too
// but a corrupt photo is caught downstream.
func (v *Validator) Validate(fileName string, content []byte) error {
	if len(content) == 0 {
		return fmt.Errorf("empty file")
	}
	if len(content) > maxUploadBytes {
		return fmt.Errorf("file too large: %d bytes", len(content))
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".pdf":
		return v.validatePDF(fileName, content)
	case ".jpg", ".jpeg", ".png":
		return nil
	default:
		return fmt.Errorf("unsupported file type: %q", ext)
	}
}

func (v *Validator) validatePDF(fileName string, content []byte) error {
	doc, err := fitz.NewFromMemory(content)
	if err != nil {
		v.logger.Warn("Rejected unreadable PDF",
			zap.String("file", fileName),
			zap.Error(err))
		return fmt.Errorf("unreadable PDF: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return fmt.Errorf("PDF has no pages")
	}

	return nil
}
