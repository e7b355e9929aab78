package constants

import (
	"path/filepath"
	"strings"
)

const (
	DocumentKindImage = "image"
	DocumentKindPDF   = "pdf"
)

// DetectDocumentKind classifies an upload by extension. Empty means rejected.
func DetectDocumentKind(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return DocumentKindPDF
	case ".png", ".jpg", ".jpeg", ".webp":
		return DocumentKindImage
	default:
		return ""
	}
}
