package service

import (
	"context"

	"github.com/cloo-solutions/shopdesk/internal/domain"
	"github.com/cloo-solutions/shopdesk/internal/logging"
	"github.com/cloo-solutions/shopdesk/internal/telemetry"
	"github.com/rs/zerolog"
)

// DocumentStore stores tenants' knowledge base documents
type DocumentStore interface {
	ListDocuments(ctx context.Context, tenant domain.Tenant) ([]domain.Document, error)
	PutDocument(ctx context.Context, doc domain.Document) error
}

// GenerationBumper invalidates a tenant's cached index
type GenerationBumper interface {
	Bump(ctx context.Context, tenant domain.Tenant) (int64, error)
}

// DocumentService manages knowledge base documents
type DocumentService struct {
	store       DocumentStore
	generations GenerationBumper
	logger      zerolog.Logger
}

// NewDocumentService creates a new DocumentService instance
func NewDocumentService(store DocumentStore, generations GenerationBumper, logger zerolog.Logger) *DocumentService {
	return &DocumentService{
		store:       store,
		generations: generations,
		logger:      logger,
	}
}

// Upload stores a .txt document under the tenant's folder, replacing any
// document with the same name, and invalidates the tenant's index.
func (s *DocumentService) Upload(ctx context.Context, tenant domain.Tenant, name string, content []byte) (*domain.Document, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.Upload", telemetry.SpanAttributes{
		Tenant:    string(tenant),
		Operation: "upload_document",
	})
	defer span.End()

	if _, err := domain.ParseTenant(string(tenant)); err != nil {
		return nil, err
	}
	if err := domain.ValidateDocumentName(name); err != nil {
		return nil, err
	}

	doc := domain.Document{Tenant: tenant, Name: name, Content: string(content)}
	if err := s.store.PutDocument(ctx, doc); err != nil {
		span.SetError(err)
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to store document", err)
	}

	logger := logging.FromContext(ctx, s.logger)
	gen, err := s.generations.Bump(ctx, tenant)
	if err != nil {
		// The document is stored; the index catches up once the generation store is reachable
		telemetry.CaptureError(ctx, err)
		logger.Warn().Err(err).Str("tenant", string(tenant)).Msg("documents: invalidating index failed")
	} else {
		logger.Info().
			Str("tenant", string(tenant)).
			Str("document", name).
			Int("bytes", len(content)).
			Int64("generation", gen).
			Msg("documents: document uploaded")
	}

	return &doc, nil
}

// List returns the tenant's documents
func (s *DocumentService) List(ctx context.Context, tenant domain.Tenant) ([]domain.Document, error) {
	if _, err := domain.ParseTenant(string(tenant)); err != nil {
		return nil, err
	}
	return s.store.ListDocuments(ctx, tenant)
}
