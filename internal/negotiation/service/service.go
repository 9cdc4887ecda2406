// Package service orchestrates the negotiation workflows: submission
// lifecycle, insurer feedback lifecycle, amendment fan-out reconciliation,
// reports, and file attachments.
//
// The service composes multi-step workflows with short-circuiting error
// returns: the first failure aborts the remainder and nothing partial is
// persisted (saves happen only after all computation succeeded). Concurrency
// conflicts from the stores are surfaced as CodeConflict so callers can decide
// to reload-and-retry or report upward.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	negmetrics "dealdesk/internal/negotiation/metrics"
	"dealdesk/internal/negotiation/models"
	"dealdesk/internal/notify"
	"dealdesk/internal/report"
	id "dealdesk/pkg/domain"
	dErrors "dealdesk/pkg/domain-errors"
	"dealdesk/pkg/platform/sentinel"
	platformstrings "dealdesk/pkg/platform/strings"
	"dealdesk/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// SubmissionStore persists DealSubmission aggregates. Save must reject a
// stale version token with sentinel.ErrVersionMismatch and rotate the token on
// success.
type SubmissionStore interface {
	Create(ctx context.Context, sub *models.DealSubmission) (*models.DealSubmission, error)
	FindByID(ctx context.Context, submissionID id.SubmissionID) (*models.DealSubmission, error)
	ListByBroker(ctx context.Context, brokerID id.CompanyID) ([]*models.DealSubmission, error)
	Save(ctx context.Context, sub *models.DealSubmission) (*models.DealSubmission, error)
}

// FeedbackStore persists SubmissionFeedback aggregates under the same
// version-token contract.
type FeedbackStore interface {
	Create(ctx context.Context, fb *models.SubmissionFeedback) (*models.SubmissionFeedback, error)
	FindByID(ctx context.Context, feedbackID id.FeedbackID) (*models.SubmissionFeedback, error)
	ListBySubmission(ctx context.Context, submissionID id.SubmissionID) ([]*models.SubmissionFeedback, error)
	Save(ctx context.Context, fb *models.SubmissionFeedback) (*models.SubmissionFeedback, error)
}

// FileStore is the blob storage collaborator.
type FileStore interface {
	Upload(ctx context.Context, ownerID, storedName string, data []byte) error
	Download(ctx context.Context, ownerID, storedName string) ([]byte, error)
	Delete(ctx context.Context, ownerID, storedName string) error
}

// Service orchestrates the negotiation workflows.
type Service struct {
	submissions SubmissionStore
	feedbacks   FeedbackStore
	notifier    notify.Notifier
	files       FileStore
	reports     report.Generator
	logger      *slog.Logger
	metrics     *negmetrics.Metrics
	tracer      trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithNotifier(notifier notify.Notifier) Option {
	return func(s *Service) { s.notifier = notifier }
}

func WithMetrics(m *negmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithFileStore(files FileStore) Option {
	return func(s *Service) { s.files = files }
}

func WithReportGenerator(reports report.Generator) Option {
	return func(s *Service) { s.reports = reports }
}

// New constructs a Service.
func New(submissions SubmissionStore, feedbacks FeedbackStore, opts ...Option) *Service {
	s := &Service{
		submissions: submissions,
		feedbacks:   feedbacks,
		tracer:      otel.Tracer("dealdesk/negotiation"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// wrapSubmissionErr translates store sentinel facts into domain errors.
func wrapSubmissionErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "submission not found")
	case errors.Is(err, sentinel.ErrVersionMismatch):
		return dErrors.New(dErrors.CodeConflict, "submission was modified by another editor")
	case errors.Is(err, sentinel.ErrAlreadyExists):
		return dErrors.New(dErrors.CodeConflict, "submission already exists")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "submission store failure")
	}
}

func wrapFeedbackErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "feedback not found")
	case errors.Is(err, sentinel.ErrVersionMismatch):
		return dErrors.New(dErrors.CodeConflict, "feedback was modified by another editor")
	case errors.Is(err, sentinel.ErrAlreadyExists):
		return dErrors.New(dErrors.CodeConflict, "feedback already exists")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "feedback store failure")
	}
}

// notify dispatches a notification after the primary mutation has persisted.
// Delivery failure is non-fatal: logged as a warning, never propagated.
func (s *Service) notify(ctx context.Context, kind notify.Kind, recipients []string, data map[string]string) {
	if s.notifier == nil {
		return
	}
	n := notify.Notification{Kind: kind, Recipients: platformstrings.DedupeAndTrim(recipients), Data: data}
	if err := s.notifier.Emit(ctx, n); err != nil {
		warn := dErrors.Wrap(err, dErrors.CodeNotificationDelivery, "notification not delivered")
		if s.logger != nil {
			s.logger.WarnContext(ctx, "notification delivery failed",
				"kind", kind,
				"error", warn.Error(),
				"request_id", requestcontext.RequestID(ctx))
		}
	}
}

func (s *Service) logEvent(ctx context.Context, event string, attributes ...any) {
	if s.logger == nil {
		return
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	s.logger.InfoContext(ctx, event, attributes...)
}

func (s *Service) countConflict(err error) {
	if s.metrics != nil && dErrors.HasCode(err, dErrors.CodeConflict) {
		s.metrics.ConcurrencyConflict.Inc()
	}
}
