package handlers

import (
	"context"

	"github.com/cloo-solutions/shopdesk/internal/domain"
	"github.com/cloo-solutions/shopdesk/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockChatRouter struct {
	mock.Mock
}

func (m *MockChatRouter) RouteQuery(ctx context.Context, msg domain.Message) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

type MockDocumentUploader struct {
	mock.Mock
}

func (m *MockDocumentUploader) Upload(ctx context.Context, tenant domain.Tenant, name string, content []byte) (*domain.Document, error) {
	args := m.Called(ctx, tenant, name, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

type MockRecordLister struct {
	mock.Mock
}

func (m *MockRecordLister) List(ctx context.Context, kind domain.RecordKind) ([]*domain.ActionRecord, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ActionRecord), args.Error(1)
}

type MockFeedbackSubmitter struct {
	mock.Mock
}

func (m *MockFeedbackSubmitter) Submit(ctx context.Context, input service.FeedbackInput) (*domain.Feedback, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Feedback), args.Error(1)
}
