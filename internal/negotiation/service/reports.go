package service

import (
	"context"

	id "dealdesk/pkg/domain"
	dErrors "dealdesk/pkg/domain-errors"
)

// ComparisonReport renders all insurers' current positions on one submission
// side by side. Withdrawn feedback is excluded; terminal declined feedback is
// shown as the insurer's final answer.
func (s *Service) ComparisonReport(ctx context.Context, submissionID id.SubmissionID) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "negotiation.ComparisonReport")
	defer span.End()

	if s.reports == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "report generation is not configured")
	}
	sub, err := s.submissions.FindByID(ctx, submissionID)
	if err != nil {
		return nil, wrapSubmissionErr(err)
	}
	all, err := s.feedbacks.ListBySubmission(ctx, submissionID)
	if err != nil {
		return nil, wrapFeedbackErr(err)
	}
	live := all[:0:0]
	for _, fb := range all {
		if fb.IsLive || fb.Terminal() {
			live = append(live, fb)
		}
	}
	doc, err := s.reports.Comparison(sub, live)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "comparison report generation failed")
	}
	return doc, nil
}

// FeedbackReport renders a single insurer's response.
func (s *Service) FeedbackReport(ctx context.Context, feedbackID id.FeedbackID) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "negotiation.FeedbackReport")
	defer span.End()

	if s.reports == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "report generation is not configured")
	}
	fb, err := s.feedbacks.FindByID(ctx, feedbackID)
	if err != nil {
		return nil, wrapFeedbackErr(err)
	}
	doc, err := s.reports.Feedback(fb, fb.InsurerName)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "feedback report generation failed")
	}
	return doc, nil
}
