package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cloo-solutions/shopdesk/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestChatService(records *MockRecordRepository, fallback *MockAnswerer, improver ResponseImprover, ids ...string) *ChatService {
	svc := NewChatServiceWithUUIDGen(records, fallback, improver, zerolog.Nop(), NewMockUUIDGenerator(ids...))
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestChatService_RouteQuery_ReturnRequestIsSaved(t *testing.T) {
	ctx := context.Background()
	records := new(MockRecordRepository)
	fallback := new(MockAnswerer)

	expected := &domain.ActionRecord{
		ID:          "rec-1",
		Kind:        domain.RecordKindReturnRequest,
		UserName:    "Ada",
		CreatedAt:   fixedNow,
		OrderNumber: "GL78340824",
		Reason:      "wrong size delivered",
	}
	records.On("Append", mock.Anything, expected).Return(nil)

	svc := newTestChatService(records, fallback, nil, "rec-1")
	reply, err := svc.RouteQuery(ctx, domain.NewMessage(domain.TenantSabi, "Ada", "GL78340824 wrong size delivered", ""))

	require.NoError(t, err)
	assert.Equal(t, MsgReturnConfirmed, reply)
	records.AssertExpectations(t)
	fallback.AssertNotCalled(t, "Answer", mock.Anything, mock.Anything, mock.Anything)
}

func TestChatService_RouteQuery_OrderUsesAddress(t *testing.T) {
	ctx := context.Background()
	records := new(MockRecordRepository)
	records.On("Append", mock.Anything, mock.MatchedBy(func(r *domain.ActionRecord) bool {
		return r.Kind == domain.RecordKindNewOrder &&
			r.OrderDetails == "Milo: 3" &&
			r.Address == "12 Allen Avenue"
	})).Return(nil)

	svc := newTestChatService(records, new(MockAnswerer), nil, "rec-1")
	reply, err := svc.RouteQuery(ctx, domain.NewMessage(domain.TenantSabi, "Ada", "Milo (3 cans)", "12 Allen Avenue"))

	require.NoError(t, err)
	assert.Contains(t, reply, "Items: Milo: 3")
	assert.Contains(t, reply, "Delivery Address: 12 Allen Avenue")
	records.AssertExpectations(t)
}

func TestChatService_RouteQuery_ClarificationSavesNothing(t *testing.T) {
	records := new(MockRecordRepository)
	svc := newTestChatService(records, new(MockAnswerer), nil)

	reply, err := svc.RouteQuery(context.Background(), domain.NewMessage(domain.TenantSabi, "Ada", "track my order", ""))

	require.NoError(t, err)
	assert.Equal(t, MsgTrackClarification, reply)
	records.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestChatService_RouteQuery_UnmatchedGoesToKnowledgeBase(t *testing.T) {
	ctx := context.Background()
	records := new(MockRecordRepository)
	fallback := new(MockAnswerer)
	fallback.On("Answer", mock.Anything, domain.TenantSabi, "What are your opening hours?").
		Return("We open at 8am.")

	svc := newTestChatService(records, fallback, nil)
	reply, err := svc.RouteQuery(ctx, domain.NewMessage(domain.TenantSabi, "Ada", "What are your opening hours?", ""))

	require.NoError(t, err)
	assert.Equal(t, "We open at 8am.", reply)
	fallback.AssertExpectations(t)
	records.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestChatService_RouteQuery_OtherTenantsSkipClassification(t *testing.T) {
	for _, tenant := range []domain.Tenant{domain.TenantTrace, domain.TenantKatsu} {
		t.Run(string(tenant), func(t *testing.T) {
			records := new(MockRecordRepository)
			fallback := new(MockAnswerer)
			// Looks like a return for sabi, but only sabi has structured intents
			fallback.On("Answer", mock.Anything, tenant, "GL78340824 wrong size delivered").Return("kb answer")

			svc := newTestChatService(records, fallback, nil)
			reply, err := svc.RouteQuery(context.Background(), domain.NewMessage(tenant, "Ada", "GL78340824 wrong size delivered", ""))

			require.NoError(t, err)
			assert.Equal(t, "kb answer", reply)
			records.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
		})
	}
}

func TestChatService_RouteQuery_PersistenceFailure(t *testing.T) {
	records := new(MockRecordRepository)
	records.On("Append", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	svc := newTestChatService(records, new(MockAnswerer), nil, "rec-1")
	reply, err := svc.RouteQuery(context.Background(), domain.NewMessage(domain.TenantSabi, "Ada", "There is a problem with my order", ""))

	require.Error(t, err)
	assert.Empty(t, reply)
	assert.ErrorIs(t, err, domain.ErrRecordPersistence)
	assert.Contains(t, err.Error(), "connection refused")

	var domainErr *domain.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.ErrCodeInternalError, domainErr.Code)
}

func TestChatService_RouteQuery_Validation(t *testing.T) {
	tests := []struct {
		name    string
		msg     domain.Message
		wantErr error
	}{
		{"unknown tenant", domain.NewMessage("shopify", "Ada", "hello", ""), domain.ErrInvalidTenant},
		{"blank query", domain.NewMessage(domain.TenantSabi, "Ada", "  ", ""), domain.ErrMissingRequiredField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := new(MockRecordRepository)
			fallback := new(MockAnswerer)
			svc := newTestChatService(records, fallback, nil)

			_, err := svc.RouteQuery(context.Background(), tt.msg)

			assert.ErrorIs(t, err, tt.wantErr)
			fallback.AssertNotCalled(t, "Answer", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestChatService_RouteQuery_AnonymousMessageIsFiled(t *testing.T) {
	records := new(MockRecordRepository)
	records.On("Append", mock.Anything, mock.MatchedBy(func(r *domain.ActionRecord) bool {
		return r.Kind == domain.RecordKindTrackOrder && r.UserName == "" && r.OrderNumber == "GH12345678"
	})).Return(nil)
	svc := newTestChatService(records, new(MockAnswerer), nil, "rec-1")

	reply, err := svc.RouteQuery(context.Background(), domain.NewMessage(domain.TenantSabi, "", "track GH12345678", ""))

	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf(MsgTrackConfirmed, "GH12345678"), reply)
	records.AssertExpectations(t)
}

func TestChatService_RouteQuery_RepeatedMessageSavesTwice(t *testing.T) {
	records := new(MockRecordRepository)
	var saved []string
	records.On("Append", mock.Anything, mock.AnythingOfType("*domain.ActionRecord")).
		Run(func(args mock.Arguments) {
			saved = append(saved, args.Get(1).(*domain.ActionRecord).ID)
		}).
		Return(nil)
	svc := newTestChatService(records, new(MockAnswerer), nil, "rec-1", "rec-2")
	msg := domain.NewMessage(domain.TenantSabi, "Ada", "There is a problem with my order", "")

	first, err := svc.RouteQuery(context.Background(), msg)
	require.NoError(t, err)
	second, err := svc.RouteQuery(context.Background(), msg)
	require.NoError(t, err)

	records.AssertNumberOfCalls(t, "Append", 2)
	require.Len(t, saved, 2)
	assert.NotEqual(t, saved[0], saved[1])
	assert.Equal(t, first, second)
}

func TestChatService_RouteQuery_ImproverRewritesAnswers(t *testing.T) {
	ctx := context.Background()
	fallback := new(MockAnswerer)
	fallback.On("Answer", mock.Anything, domain.TenantTrace, "do you ship abroad?").Return("Yes.")
	improver := new(MockResponseImprover)
	improver.On("Improve", mock.Anything, domain.TenantTrace, "do you ship abroad?", "Yes.").
		Return("Yes, we ship to most countries.", nil)

	svc := newTestChatService(new(MockRecordRepository), fallback, improver)
	reply, err := svc.RouteQuery(ctx, domain.NewMessage(domain.TenantTrace, "Ada", "do you ship abroad?", ""))

	require.NoError(t, err)
	assert.Equal(t, "Yes, we ship to most countries.", reply)
	improver.AssertExpectations(t)
}

func TestChatService_RouteQuery_SystemRepliesAreNotImproved(t *testing.T) {
	improver := new(MockResponseImprover)
	svc := newTestChatService(new(MockRecordRepository), new(MockAnswerer), improver)

	reply, err := svc.RouteQuery(context.Background(), domain.NewMessage(domain.TenantSabi, "Ada", "I want a refund", ""))

	require.NoError(t, err)
	assert.Equal(t, MsgReturnClarification, reply)
	improver.AssertNotCalled(t, "Improve", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestChatService_RouteQuery_ImproverFailureKeepsAnswer(t *testing.T) {
	tests := []struct {
		name     string
		improved string
		err      error
	}{
		{"error", "", errors.New("model unavailable")},
		{"blank rewrite", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fallback := new(MockAnswerer)
			fallback.On("Answer", mock.Anything, domain.TenantKatsu, "menu?").Return("Ramen and gyoza.")
			improver := new(MockResponseImprover)
			improver.On("Improve", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(tt.improved, tt.err)

			svc := newTestChatService(new(MockRecordRepository), fallback, improver)
			reply, err := svc.RouteQuery(context.Background(), domain.NewMessage(domain.TenantKatsu, "Ada", "menu?", ""))

			require.NoError(t, err)
			assert.Equal(t, "Ramen and gyoza.", reply)
		})
	}
}
