package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloo-solutions/shopdesk/internal/domain"
	"github.com/cloo-solutions/shopdesk/internal/intent"
	"github.com/cloo-solutions/shopdesk/internal/logging"
	"github.com/cloo-solutions/shopdesk/internal/telemetry"
	"github.com/rs/zerolog"
)

// MsgInvalidApp is the reply to a message for an unknown tenant
const MsgInvalidApp = "Invalid app specified."

// systemReplyMarkers identify fixed replies that must reach the customer unchanged
var systemReplyMarkers = []string{
	"Thank you for submitting",
	"Please provide",
	"To process your",
}

// RecordRepository persists customer action records
type RecordRepository interface {
	Append(ctx context.Context, rec *domain.ActionRecord) error
	List(ctx context.Context, kind domain.RecordKind) ([]*domain.ActionRecord, error)
}

// Answerer answers questions no structured intent covers
type Answerer interface {
	Answer(ctx context.Context, tenant domain.Tenant, question string) string
}

// ChatService routes customer messages to an action handler or the knowledge base
type ChatService struct {
	records  RecordRepository
	fallback Answerer
	improver ResponseImprover
	uuidGen  UUIDGenerator
	now      func() time.Time
	logger   zerolog.Logger
}

// NewChatService creates a new ChatService instance. A nil improver leaves answers unchanged.
func NewChatService(records RecordRepository, fallback Answerer, improver ResponseImprover, logger zerolog.Logger) *ChatService {
	return NewChatServiceWithUUIDGen(records, fallback, improver, logger, &DefaultUUIDGenerator{})
}

// NewChatServiceWithUUIDGen creates a new ChatService with custom UUID generator (for testing)
func NewChatServiceWithUUIDGen(
	records RecordRepository,
	fallback Answerer,
	improver ResponseImprover,
	logger zerolog.Logger,
	uuidGen UUIDGenerator,
) *ChatService {
	if improver == nil {
		improver = IdentityImprover{}
	}
	return &ChatService{
		records:  records,
		fallback: fallback,
		improver: improver,
		uuidGen:  uuidGen,
		now:      time.Now,
		logger:   logger,
	}
}

// RouteQuery answers one customer message. It returns an error only for
// invalid input and for failures to persist a customer record.
func (s *ChatService) RouteQuery(ctx context.Context, msg domain.Message) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "ChatService.RouteQuery", telemetry.SpanAttributes{
		Tenant:    string(msg.Tenant),
		Operation: "route_query",
	})
	defer span.End()

	if err := domain.ValidateMessage(msg); err != nil {
		return "", err
	}

	logger := logging.FromContext(ctx, s.logger).With().Str("tenant", string(msg.Tenant)).Logger()

	answer, err := s.route(ctx, logger, span, msg)
	if err != nil {
		span.SetError(err)
		return "", err
	}

	return s.improve(ctx, logger, msg, answer), nil
}

func (s *ChatService) route(ctx context.Context, logger zerolog.Logger, span *telemetry.Span, msg domain.Message) (string, error) {
	if !msg.Tenant.HasStructuredIntents() {
		return s.fallback.Answer(ctx, msg.Tenant, msg.Text), nil
	}

	in, rule := intent.ClassifyWithRule(msg.Text, msg.Address)
	span.SetTag("intent", string(in.Kind))
	telemetry.AddBreadcrumb(ctx, "intent", fmt.Sprintf("%s via %s", in.Kind, rule))
	logger.Debug().Str("intent", string(in.Kind)).Str("rule", rule).Bool("complete", in.Complete()).Msg("chat: message classified")

	if !in.Structured() {
		return s.fallback.Answer(ctx, msg.Tenant, msg.Text), nil
	}

	result := handleIntent(in, msg.UserName, s.now(), s.uuidGen)
	if result.Record == nil {
		return result.Message, nil
	}

	if err := domain.ValidateActionRecord(result.Record); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrRecordPersistence, err)
	}
	if err := s.records.Append(ctx, result.Record); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrRecordPersistence, err)
	}

	logger.Info().
		Str("record_id", result.Record.ID).
		Str("record_kind", string(result.Record.Kind)).
		Msg("chat: customer record saved")
	return result.Message, nil
}

func (s *ChatService) improve(ctx context.Context, logger zerolog.Logger, msg domain.Message, answer string) string {
	if isSystemReply(answer) {
		return answer
	}

	improved, err := s.improver.Improve(ctx, msg.Tenant, msg.Text, answer)
	if err != nil {
		logger.Warn().Err(err).Msg("chat: response improvement failed, keeping original answer")
		return answer
	}
	if strings.TrimSpace(improved) == "" {
		return answer
	}
	return improved
}

func isSystemReply(answer string) bool {
	for _, marker := range systemReplyMarkers {
		if strings.Contains(answer, marker) {
			return true
		}
	}
	return false
}
