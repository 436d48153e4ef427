package service

import (
	"context"

	"github.com/cloo-solutions/shopdesk/internal/domain"
	"github.com/cloo-solutions/shopdesk/internal/knowledge"
	"github.com/stretchr/testify/mock"
)

// MockRecordRepository is a mock implementation of RecordRepository
type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) Append(ctx context.Context, rec *domain.ActionRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockRecordRepository) List(ctx context.Context, kind domain.RecordKind) ([]*domain.ActionRecord, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ActionRecord), args.Error(1)
}

// MockAnswerer is a mock implementation of Answerer
type MockAnswerer struct {
	mock.Mock
}

func (m *MockAnswerer) Answer(ctx context.Context, tenant domain.Tenant, question string) string {
	args := m.Called(ctx, tenant, question)
	return args.String(0)
}

// MockResponseImprover is a mock implementation of ResponseImprover
type MockResponseImprover struct {
	mock.Mock
}

func (m *MockResponseImprover) Improve(ctx context.Context, tenant domain.Tenant, query, answer string) (string, error) {
	args := m.Called(ctx, tenant, query, answer)
	return args.String(0), args.Error(1)
}

// MockIndexProvider is a mock implementation of IndexProvider
type MockIndexProvider struct {
	mock.Mock
}

func (m *MockIndexProvider) Get(ctx context.Context, tenant domain.Tenant) (*knowledge.Index, error) {
	args := m.Called(ctx, tenant)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*knowledge.Index), args.Error(1)
}

// MockEmbedder is a mock implementation of Embedder
type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// MockGenerator is a mock implementation of Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// MockDocumentStore is a mock implementation of DocumentStore
type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) ListDocuments(ctx context.Context, tenant domain.Tenant) ([]domain.Document, error) {
	args := m.Called(ctx, tenant)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Document), args.Error(1)
}

func (m *MockDocumentStore) PutDocument(ctx context.Context, doc domain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

// MockGenerationBumper is a mock implementation of GenerationBumper
type MockGenerationBumper struct {
	mock.Mock
}

func (m *MockGenerationBumper) Bump(ctx context.Context, tenant domain.Tenant) (int64, error) {
	args := m.Called(ctx, tenant)
	return args.Get(0).(int64), args.Error(1)
}

// MockFeedbackRepository is a mock implementation of FeedbackRepository
type MockFeedbackRepository struct {
	mock.Mock
}

func (m *MockFeedbackRepository) Create(ctx context.Context, f *domain.Feedback) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

// MockUUIDGenerator hands out the given IDs in order
type MockUUIDGenerator struct {
	callCount int
	uuids     []string
}

func NewMockUUIDGenerator(uuids ...string) *MockUUIDGenerator {
	return &MockUUIDGenerator{uuids: uuids}
}

func (m *MockUUIDGenerator) NewString() string {
	if m.callCount < len(m.uuids) {
		id := m.uuids[m.callCount]
		m.callCount++
		return id
	}
	return "default-uuid"
}
