package upload

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Selection-time filter: only these extensions enter the upload list.
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".txt":  true,
	".md":   true,
	".doc":  true,
	".docx": true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

func validateFile(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !allowedExtensions[ext] {
		return fmt.Errorf("unsupported file type %q", ext)
	}
	if ext == ".pdf" {
		return validatePDF(path)
	}
	return nil
}

// validatePDF rejects files that merely wear the .pdf extension.
func validatePDF(path string) error {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return fmt.Errorf("not a readable pdf: %w", err)
	}
	defer file.Close()

	if reader.NumPage() < 1 {
		return errors.New("pdf has no pages")
	}
	return nil
}
