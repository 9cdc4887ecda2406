package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"dealdesk/internal/negotiation/models"
	"dealdesk/internal/negotiation/reconcile"
	"dealdesk/internal/notify"
	id "dealdesk/pkg/domain"
	dErrors "dealdesk/pkg/domain-errors"
	"dealdesk/pkg/requestcontext"
)

// reconcileRetries bounds the reload-reconcile-resave loop per feedback when
// an insurer edit races an amendment. Reconciliation is idempotent, so a
// retry against the reloaded state is always safe.
const reconcileRetries = 3

// CreateSubmissionRequest carries the broker's initial deal terms.
type CreateSubmissionRequest struct {
	Name         string
	BrokerID     id.CompanyID
	BrokerName   string
	Terms        models.BasicTerms
	Pricing      models.SubmissionPricing
	Enhancements []models.Enhancement
	Warranties   []models.Warranty
	Recipients   []string
}

// CreateSubmission validates and persists a new deal submission.
func (s *Service) CreateSubmission(ctx context.Context, req CreateSubmissionRequest) (*models.DealSubmission, error) {
	ctx, span := s.tracer.Start(ctx, "negotiation.CreateSubmission")
	defer span.End()

	sub, err := models.NewDealSubmission(
		id.NewSubmissionID(), req.Name, req.BrokerID, req.BrokerName,
		req.Terms, req.Pricing, req.Enhancements, req.Warranties,
		requestcontext.Now(ctx),
	)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}

	created, err := s.submissions.Create(ctx, sub)
	if err != nil {
		return nil, wrapSubmissionErr(err)
	}

	s.logEvent(ctx, "submission_created", "submission_id", created.ID.String())
	if s.metrics != nil {
		s.metrics.SubmissionsCreated.Inc()
	}
	s.notify(ctx, notify.KindSubmissionCreated, req.Recipients, map[string]string{
		"submission_id":   created.ID.String(),
		"submission_name": created.Name,
	})
	return created, nil
}

// GetSubmission loads one submission.
func (s *Service) GetSubmission(ctx context.Context, submissionID id.SubmissionID) (*models.DealSubmission, error) {
	sub, err := s.submissions.FindByID(ctx, submissionID)
	if err != nil {
		return nil, wrapSubmissionErr(err)
	}
	return sub, nil
}

// ListSubmissionsByBroker returns all submissions owned by a broker.
func (s *Service) ListSubmissionsByBroker(ctx context.Context, brokerID id.CompanyID) ([]*models.DealSubmission, error) {
	subs, err := s.submissions.ListByBroker(ctx, brokerID)
	if err != nil {
		return nil, wrapSubmissionErr(err)
	}
	return subs, nil
}

// AmendSubmission applies a broker edit against the version the broker read,
// then reconciles every live non-terminal feedback to the new terms. The
// amendment itself is rejected on a stale token; per-feedback reconciliation
// retries against reloaded state because reconciliation is idempotent.
func (s *Service) AmendSubmission(ctx context.Context, submissionID id.SubmissionID, version string, amendment *models.Amendment) (*models.DealSubmission, error) {
	ctx, span := s.tracer.Start(ctx, "negotiation.AmendSubmission")
	defer span.End()

	if version == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "version token is required")
	}
	if err := amendment.Validate(); err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}

	sub, err := s.submissions.FindByID(ctx, submissionID)
	if err != nil {
		return nil, wrapSubmissionErr(err)
	}
	sub.Version = version
	if err := sub.ApplyAmendment(amendment, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}

	saved, err := s.submissions.Save(ctx, sub)
	if err != nil {
		err = wrapSubmissionErr(err)
		s.countConflict(err)
		return nil, err
	}

	if err := s.reconcileAllFeedback(ctx, saved); err != nil {
		return nil, err
	}

	s.logEvent(ctx, "submission_amended", "submission_id", saved.ID.String())
	if s.metrics != nil {
		s.metrics.SubmissionsAmended.Inc()
	}
	s.notify(ctx, notify.KindSubmissionAmended, s.insurerRecipients(saved), map[string]string{
		"submission_id":   saved.ID.String(),
		"submission_name": saved.Name,
	})
	return saved, nil
}

// reconcileAllFeedback fans out one independent reconciliation per live
// feedback. The per-insurer computations share no mutable state, so they run
// in parallel.
func (s *Service) reconcileAllFeedback(ctx context.Context, sub *models.DealSubmission) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, details := range sub.Feedback {
		if !details.Live {
			continue
		}
		feedbackID := details.FeedbackID
		g.Go(func() error {
			return s.reconcileOne(gctx, sub, feedbackID)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return nil
}

func (s *Service) reconcileOne(ctx context.Context, sub *models.DealSubmission, feedbackID id.FeedbackID) error {
	var lastErr error
	for attempt := 0; attempt < reconcileRetries; attempt++ {
		fb, err := s.feedbacks.FindByID(ctx, feedbackID)
		if err != nil {
			wrapped := wrapFeedbackErr(err)
			// A pointer whose aggregate is gone has nothing to reconcile;
			// failing here would block the amendment for every other insurer.
			if dErrors.HasCode(wrapped, dErrors.CodeNotFound) {
				return nil
			}
			return wrapped
		}
		if fb.Terminal() {
			return nil
		}
		next := reconcile.Reconcile(sub, fb)
		if _, err := s.feedbacks.Save(ctx, next); err != nil {
			lastErr = wrapFeedbackErr(err)
			if dErrors.HasCode(lastErr, dErrors.CodeConflict) {
				s.countConflict(lastErr)
				continue
			}
			return lastErr
		}
		if s.metrics != nil {
			s.metrics.FeedbackReconciled.Inc()
		}
		return nil
	}
	return dErrors.Wrap(lastErr, dErrors.CodeConflict,
		fmt.Sprintf("feedback %s kept changing during reconciliation", feedbackID))
}

// insurerRecipients derives the notification recipient list from the
// submission's live feedback pointers.
func (s *Service) insurerRecipients(sub *models.DealSubmission) []string {
	var recipients []string
	for _, fd := range sub.Feedback {
		if fd.Live {
			recipients = append(recipients, fd.InsurerID.String())
		}
	}
	return recipients
}
