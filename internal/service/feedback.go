package service

import (
	"context"
	"strings"
	"time"

	"github.com/cloo-solutions/shopdesk/internal/domain"
)

// ResponseImprover may rewrite an answer before it reaches the customer
type ResponseImprover interface {
	Improve(ctx context.Context, tenant domain.Tenant, query, answer string) (string, error)
}

// IdentityImprover returns answers unchanged
type IdentityImprover struct{}

// Improve returns answer as is
func (IdentityImprover) Improve(_ context.Context, _ domain.Tenant, _, answer string) (string, error) {
	return answer, nil
}

// FeedbackRepository persists customer ratings
type FeedbackRepository interface {
	Create(ctx context.Context, f *domain.Feedback) error
}

// FeedbackInput is a customer's rating of an answer
type FeedbackInput struct {
	Tenant   domain.Tenant
	Query    string
	Response string
	Positive bool
	Comment  string
}

// FeedbackService records customer ratings of chatbot answers
type FeedbackService struct {
	repo    FeedbackRepository
	uuidGen UUIDGenerator
	now     func() time.Time
}

// NewFeedbackService creates a new FeedbackService instance
func NewFeedbackService(repo FeedbackRepository) *FeedbackService {
	return &FeedbackService{
		repo:    repo,
		uuidGen: &DefaultUUIDGenerator{},
		now:     time.Now,
	}
}

// Submit validates and stores a rating
func (s *FeedbackService) Submit(ctx context.Context, input FeedbackInput) (*domain.Feedback, error) {
	if _, err := domain.ParseTenant(string(input.Tenant)); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Query) == "" {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "query is required", domain.ErrMissingRequiredField)
	}
	if strings.TrimSpace(input.Response) == "" {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "response is required", domain.ErrMissingRequiredField)
	}

	f := &domain.Feedback{
		ID:        s.uuidGen.NewString(),
		Tenant:    input.Tenant,
		Query:     input.Query,
		Response:  input.Response,
		Positive:  input.Positive,
		Comment:   strings.TrimSpace(input.Comment),
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}
