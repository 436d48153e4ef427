// Package storage keeps tenants' knowledge base documents on the local
// filesystem or in S3-compatible object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/cloo-solutions/shopdesk/internal/domain"
)

// FilesystemDocumentStore keeps documents under "<root>/<tenant folder>/"
type FilesystemDocumentStore struct {
	root string
}

func NewFilesystemDocumentStore(root string) *FilesystemDocumentStore {
	return &FilesystemDocumentStore{root: root}
}

// Root returns the directory holding the tenant folders
func (s *FilesystemDocumentStore) Root() string {
	return s.root
}

// ListDocuments returns the tenant's .txt documents sorted by name. A missing
// folder is an empty knowledge base.
func (s *FilesystemDocumentStore) ListDocuments(ctx context.Context, tenant domain.Tenant) ([]domain.Document, error) {
	dir := s.folder(tenant)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []domain.Document{}, nil
		}
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrStorageOperationFail, dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.Type().IsRegular() && isDocumentName(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	docs := make([]domain.Document, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", domain.ErrStorageOperationFail, name, err)
		}
		docs = append(docs, domain.Document{Tenant: tenant, Name: name, Content: string(content)})
	}
	return docs, nil
}

// PutDocument writes doc through a temporary file so readers never see a
// partial document.
func (s *FilesystemDocumentStore) PutDocument(ctx context.Context, doc domain.Document) error {
	dir := s.folder(doc.Tenant)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %w", domain.ErrStorageOperationFail, dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorageOperationFail, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(doc.Content); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write %s: %w", domain.ErrStorageOperationFail, doc.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: write %s: %w", domain.ErrStorageOperationFail, doc.Name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, doc.Name)); err != nil {
		return fmt.Errorf("%w: write %s: %w", domain.ErrStorageOperationFail, doc.Name, err)
	}
	return nil
}

func (s *FilesystemDocumentStore) folder(tenant domain.Tenant) string {
	return filepath.Join(s.root, tenant.DocumentFolder())
}
