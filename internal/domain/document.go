package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DocumentExtension is the only accepted knowledge base document format
const DocumentExtension = ".txt"

// Document is a raw knowledge base text document owned by a tenant
type Document struct {
	Tenant  Tenant
	Name    string
	Content string
}

// DocumentChunk is a slice of a tenant's concatenated documents
type DocumentChunk struct {
	Text     string
	SourceID string
}

// RetrievalResult is a chunk ranked against a query
type RetrievalResult struct {
	Chunk DocumentChunk
	Score float32
}

// ValidateDocumentName checks an uploaded document file name
func ValidateDocumentName(name string) error {
	if strings.TrimSpace(name) == "" {
		return NewDomainErrorWithCause(ErrCodeValidation, "document filename is required", ErrMissingRequiredField)
	}
	if filepath.Base(name) != name {
		return fmt.Errorf("%w: %s", ErrInvalidDocumentName, name)
	}
	if !strings.HasSuffix(strings.ToLower(name), DocumentExtension) {
		return ErrUnsupportedDocument
	}
	return nil
}
