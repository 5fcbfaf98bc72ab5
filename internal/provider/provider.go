// Package provider turns raw file bytes into block documents. Each
// format gets its own provider; ForFile picks one by extension and
// Detect falls back to content sniffing when the name is no help.
package provider

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/docstruct/docstruct/internal/document"
)

// Provider converts raw document bytes into a block document.
type Provider interface {
	Provide(r io.Reader, filename string) (*document.Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate provider for a filename.
func ForFile(filename string) (Provider, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextProvider{}, nil
	case ".md", ".markdown":
		return &MarkdownProvider{}, nil
	case ".csv":
		return &CSVProvider{}, nil
	case ".html", ".htm":
		return &HTMLProvider{}, nil
	case ".pdf":
		return &PDFProvider{}, nil
	case ".docx":
		return &DOCXProvider{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Detect returns a provider for the given content, preferring the
// filename's extension and sniffing the MIME type when the extension is
// missing or unknown.
func Detect(data []byte, filename string) (Provider, error) {
	if p, err := ForFile(filename); err == nil {
		return p, nil
	}

	mt := mimetype.Detect(data)
	switch {
	case mt.Is("application/pdf"):
		return &PDFProvider{}, nil
	case mt.Is("application/vnd.openxmlformats-officedocument.wordprocessingml.document"):
		return &DOCXProvider{}, nil
	case mt.Is("text/html"):
		return &HTMLProvider{}, nil
	case mt.Is("text/csv"):
		return &CSVProvider{}, nil
	case mt.Is("text/markdown"):
		return &MarkdownProvider{}, nil
	case mt.Is("text/plain"):
		return &TextProvider{}, nil
	default:
		return nil, fmt.Errorf("unsupported content type: %s", mt.String())
	}
}
