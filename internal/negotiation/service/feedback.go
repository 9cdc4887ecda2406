package service

import (
	"context"
	"time"

	"dealdesk/internal/negotiation/models"
	"dealdesk/internal/negotiation/reconcile"
	"dealdesk/internal/notify"
	id "dealdesk/pkg/domain"
	dErrors "dealdesk/pkg/domain-errors"
	platformstrings "dealdesk/pkg/platform/strings"
	"dealdesk/pkg/requestcontext"
)

// InviteInsurer creates an empty feedback for the insurer, seeded from the
// submission's current terms, and records the summary pointer on the
// submission. The broker's version token guards the submission edit.
func (s *Service) InviteInsurer(ctx context.Context, submissionID id.SubmissionID, version string, insurerID id.CompanyID, insurerName string) (*models.SubmissionFeedback, error) {
	ctx, span := s.tracer.Start(ctx, "negotiation.InviteInsurer")
	defer span.End()

	if version == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "version token is required")
	}
	if insurerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "insurer id is required")
	}

	sub, err := s.submissions.FindByID(ctx, submissionID)
	if err != nil {
		return nil, wrapSubmissionErr(err)
	}
	sub.Version = version

	now := requestcontext.Now(ctx)
	fb, err := models.NewSubmissionFeedback(id.NewFeedbackID(), sub, insurerID, insurerName, now)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}
	// Seed the item lists so the feedback mirrors the canonical terms.
	fb = reconcile.Reconcile(sub, fb)

	if err := sub.AddFeedbackDetails(models.FeedbackDetails{
		FeedbackID: fb.ID,
		InsurerID:  insurerID,
		Live:       true,
	}, now); err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeConflict, err.Error())
		}
		return nil, err
	}

	// Create the aggregate before recording the pointer on the submission: an
	// orphan feedback nothing points to is invisible, while a live pointer to
	// a feedback that was never created would break every later amendment.
	created, err := s.feedbacks.Create(ctx, fb)
	if err != nil {
		return nil, wrapFeedbackErr(err)
	}
	if _, err := s.submissions.Save(ctx, sub); err != nil {
		// Best effort: take the orphan out of the running so list-based
		// readers (reports, sibling withdrawal) never pick it up.
		if werr := created.Withdraw(now); werr == nil {
			_, _ = s.feedbacks.Save(ctx, created)
		}
		err = wrapSubmissionErr(err)
		s.countConflict(err)
		return nil, err
	}

	s.logEvent(ctx, "insurer_invited",
		"submission_id", submissionID.String(),
		"feedback_id", created.ID.String(),
		"insurer_id", insurerID.String())
	s.notify(ctx, notify.KindInsurerInvited, []string{insurerID.String()}, map[string]string{
		"submission_id": submissionID.String(),
		"feedback_id":   created.ID.String(),
	})
	return created, nil
}

// GetFeedback loads one feedback.
func (s *Service) GetFeedback(ctx context.Context, feedbackID id.FeedbackID) (*models.SubmissionFeedback, error) {
	fb, err := s.feedbacks.FindByID(ctx, feedbackID)
	if err != nil {
		return nil, wrapFeedbackErr(err)
	}
	return fb, nil
}

// ListFeedbackForSubmission returns every insurer's feedback on a submission.
func (s *Service) ListFeedbackForSubmission(ctx context.Context, submissionID id.SubmissionID) ([]*models.SubmissionFeedback, error) {
	fbs, err := s.feedbacks.ListBySubmission(ctx, submissionID)
	if err != nil {
		return nil, wrapFeedbackErr(err)
	}
	return fbs, nil
}

// AcceptNda records the insurer's NDA acceptance.
func (s *Service) AcceptNda(ctx context.Context, feedbackID id.FeedbackID, version string) (*models.SubmissionFeedback, error) {
	return s.mutateFeedback(ctx, feedbackID, version, func(fb *models.SubmissionFeedback) error {
		return fb.AcceptNda(requestcontext.Now(ctx))
	})
}

// FeedbackUpdate carries an insurer's edits. Nil fields are left untouched;
// item lists replace the feedback's lists wholesale.
type FeedbackUpdate struct {
	Notes                  *string
	CounterPremium         *models.Money
	CounterUnderwritingFee *models.Money
	CounterRetention       *models.Money
	CounterLimit           *models.Limit
	Enhancements           *[]models.Enhancement
	Warranties             *[]models.Warranty
	Exclusions             *[]models.Exclusion
	ExcludedCountries      *[]string
	UnderwritingFocus      *[]string
}

// UpdateFeedback applies an insurer's edits against the version they read.
// Every item title must refer to an item currently on the parent submission;
// terminal feedback rejects all edits.
func (s *Service) UpdateFeedback(ctx context.Context, feedbackID id.FeedbackID, version string, update *FeedbackUpdate) (*models.SubmissionFeedback, error) {
	ctx, span := s.tracer.Start(ctx, "negotiation.UpdateFeedback")
	defer span.End()

	if version == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "version token is required")
	}

	fb, err := s.feedbacks.FindByID(ctx, feedbackID)
	if err != nil {
		return nil, wrapFeedbackErr(err)
	}
	if fb.Terminal() {
		return nil, dErrors.New(dErrors.CodeConflict, "feedback is already final")
	}
	fb.Version = version

	sub, err := s.submissions.FindByID(ctx, fb.SubmissionID)
	if err != nil {
		return nil, wrapSubmissionErr(err)
	}
	if err := validateUpdateAgainstSubmission(update, sub); err != nil {
		return nil, err
	}

	applyFeedbackUpdate(fb, update, requestcontext.Now(ctx))

	saved, err := s.feedbacks.Save(ctx, fb)
	if err != nil {
		err = wrapFeedbackErr(err)
		s.countConflict(err)
		return nil, err
	}
	s.logEvent(ctx, "feedback_updated", "feedback_id", feedbackID.String())
	return saved, nil
}

// SubmitFeedback marks the insurer's terms as submitted and flags them for
// broker review.
func (s *Service) SubmitFeedback(ctx context.Context, feedbackID id.FeedbackID, version string) (*models.SubmissionFeedback, error) {
	saved, err := s.mutateFeedback(ctx, feedbackID, version, func(fb *models.SubmissionFeedback) error {
		if err := fb.CanSubmit(); err != nil {
			return dErrors.New(dErrors.CodeConflict, err.Error())
		}
		fb.ApplySubmit(requestcontext.Now(ctx))
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, notify.KindFeedbackSubmitted, []string{saved.SubmissionID.String()}, map[string]string{
		"feedback_id": saved.ID.String(),
		"insurer":     saved.InsurerName,
	})
	return saved, nil
}

// DeclineFeedback transitions the feedback into its terminal declined state.
func (s *Service) DeclineFeedback(ctx context.Context, feedbackID id.FeedbackID, version string, notes string) (*models.SubmissionFeedback, error) {
	saved, err := s.mutateFeedback(ctx, feedbackID, version, func(fb *models.SubmissionFeedback) error {
		if err := fb.CanDecline(); err != nil {
			return dErrors.New(dErrors.CodeConflict, err.Error())
		}
		if notes != "" {
			fb.Notes = notes
		}
		fb.ApplyDecline(requestcontext.Now(ctx))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.FeedbackDeclined.Inc()
	}
	s.notify(ctx, notify.KindFeedbackDeclined, []string{saved.SubmissionID.String()}, map[string]string{
		"feedback_id": saved.ID.String(),
		"insurer":     saved.InsurerName,
	})
	return saved, nil
}

// AcceptFeedback is the broker accepting one insurer's terms: the accepted
// feedback becomes terminal and the submission's other live feedback pointers
// are withdrawn. The version token guards the accepted feedback; the
// submission bookkeeping is a derived update applied with reload-and-retry.
func (s *Service) AcceptFeedback(ctx context.Context, feedbackID id.FeedbackID, version string) (*models.SubmissionFeedback, error) {
	ctx, span := s.tracer.Start(ctx, "negotiation.AcceptFeedback")
	defer span.End()

	saved, err := s.mutateFeedback(ctx, feedbackID, version, func(fb *models.SubmissionFeedback) error {
		if err := fb.CanAccept(); err != nil {
			return dErrors.New(dErrors.CodeConflict, err.Error())
		}
		fb.ApplyAccept(requestcontext.Now(ctx))
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.withdrawSiblings(ctx, saved); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.FeedbackAccepted.Inc()
	}
	s.logEvent(ctx, "feedback_accepted",
		"feedback_id", saved.ID.String(),
		"submission_id", saved.SubmissionID.String())
	s.notify(ctx, notify.KindFeedbackAccepted, []string{saved.InsurerID.String()}, map[string]string{
		"feedback_id":   saved.ID.String(),
		"submission_id": saved.SubmissionID.String(),
	})
	return saved, nil
}

// WithdrawFeedback takes an insurer out of the running without the terminal
// decline. The submission pointer update is derived, so it reloads and
// retries rather than demanding a submission token from the caller.
func (s *Service) WithdrawFeedback(ctx context.Context, feedbackID id.FeedbackID, version string) (*models.SubmissionFeedback, error) {
	saved, err := s.mutateFeedback(ctx, feedbackID, version, func(fb *models.SubmissionFeedback) error {
		if err := fb.Withdraw(requestcontext.Now(ctx)); err != nil {
			return dErrors.New(dErrors.CodeConflict, err.Error())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = s.saveSubmissionWithRetry(ctx, saved.SubmissionID, func(sub *models.DealSubmission) error {
		return sub.WithdrawFeedbackDetails(saved.ID, requestcontext.Now(ctx))
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, notify.KindFeedbackWithdrawn, []string{saved.SubmissionID.String()}, map[string]string{
		"feedback_id": saved.ID.String(),
	})
	return saved, nil
}

// mutateFeedback is the shared load-mutate-save sequence with the caller's
// version token carried through unchanged.
func (s *Service) mutateFeedback(ctx context.Context, feedbackID id.FeedbackID, version string, mutate func(fb *models.SubmissionFeedback) error) (*models.SubmissionFeedback, error) {
	if version == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "version token is required")
	}
	fb, err := s.feedbacks.FindByID(ctx, feedbackID)
	if err != nil {
		return nil, wrapFeedbackErr(err)
	}
	fb.Version = version
	if err := mutate(fb); err != nil {
		return nil, err
	}
	saved, err := s.feedbacks.Save(ctx, fb)
	if err != nil {
		err = wrapFeedbackErr(err)
		s.countConflict(err)
		return nil, err
	}
	return saved, nil
}

// withdrawSiblings marks every other live feedback pointer (and aggregate) as
// withdrawn after an acceptance.
func (s *Service) withdrawSiblings(ctx context.Context, accepted *models.SubmissionFeedback) error {
	err := s.saveSubmissionWithRetry(ctx, accepted.SubmissionID, func(sub *models.DealSubmission) error {
		now := requestcontext.Now(ctx)
		for i := range sub.Feedback {
			if sub.Feedback[i].FeedbackID != accepted.ID && sub.Feedback[i].Live {
				sub.Feedback[i].Live = false
				sub.UpdatedAt = now
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	siblings, err := s.feedbacks.ListBySubmission(ctx, accepted.SubmissionID)
	if err != nil {
		return wrapFeedbackErr(err)
	}
	for _, sibling := range siblings {
		if sibling.ID == accepted.ID || sibling.Terminal() || !sibling.IsLive {
			continue
		}
		if err := sibling.Withdraw(requestcontext.Now(ctx)); err != nil {
			continue
		}
		if _, err := s.feedbacks.Save(ctx, sibling); err != nil {
			return wrapFeedbackErr(err)
		}
	}
	return nil
}

// saveSubmissionWithRetry applies a derived (system-driven) submission update
// with reload-and-retry on token conflicts.
func (s *Service) saveSubmissionWithRetry(ctx context.Context, submissionID id.SubmissionID, mutate func(sub *models.DealSubmission) error) error {
	var lastErr error
	for attempt := 0; attempt < reconcileRetries; attempt++ {
		sub, err := s.submissions.FindByID(ctx, submissionID)
		if err != nil {
			return wrapSubmissionErr(err)
		}
		if err := mutate(sub); err != nil {
			return err
		}
		if _, err := s.submissions.Save(ctx, sub); err != nil {
			lastErr = wrapSubmissionErr(err)
			if dErrors.HasCode(lastErr, dErrors.CodeConflict) {
				s.countConflict(lastErr)
				continue
			}
			return lastErr
		}
		return nil
	}
	return lastErr
}

func validateUpdateAgainstSubmission(update *FeedbackUpdate, sub *models.DealSubmission) error {
	if update.Enhancements != nil {
		if err := models.ValidateEnhancementTitles(*update.Enhancements); err != nil {
			return dErrors.New(dErrors.CodeValidation, err.Error())
		}
		for _, e := range *update.Enhancements {
			if !sub.HasEnhancementTitle(e.Title) {
				return dErrors.New(dErrors.CodeValidation,
					"enhancement has no referent on the submission: "+e.Title)
			}
		}
	}
	if update.Warranties != nil {
		if err := models.ValidateWarrantyTitles(*update.Warranties); err != nil {
			return dErrors.New(dErrors.CodeValidation, err.Error())
		}
		for _, w := range *update.Warranties {
			if !sub.HasWarrantyTitle(w.Title) {
				return dErrors.New(dErrors.CodeValidation,
					"warranty has no referent on the submission: "+w.Title)
			}
		}
	}
	return nil
}

func applyFeedbackUpdate(fb *models.SubmissionFeedback, update *FeedbackUpdate, now time.Time) {
	if update.Notes != nil {
		fb.Notes = *update.Notes
	}
	if update.CounterPremium != nil {
		fb.Pricing.CounterPremium = update.CounterPremium
	}
	if update.CounterUnderwritingFee != nil {
		fb.Pricing.CounterUnderwritingFee = update.CounterUnderwritingFee
	}
	if update.CounterRetention != nil {
		fb.Pricing.CounterRetention = update.CounterRetention
	}
	if update.CounterLimit != nil {
		fb.Pricing.CounterLimit = update.CounterLimit
	}
	if update.Enhancements != nil {
		fb.Enhancements = append([]models.Enhancement(nil), *update.Enhancements...)
	}
	if update.Warranties != nil {
		fb.Warranties = append([]models.Warranty(nil), *update.Warranties...)
	}
	if update.Exclusions != nil {
		fb.Exclusions = append([]models.Exclusion(nil), *update.Exclusions...)
	}
	if update.ExcludedCountries != nil {
		fb.ExcludedCountries = platformstrings.DedupeAndTrimFold(*update.ExcludedCountries)
	}
	if update.UnderwritingFocus != nil {
		fb.UnderwritingFocus = append([]string(nil), *update.UnderwritingFocus...)
	}
	fb.UpdatedAt = now
}
