package handler

import "dealdesk/internal/negotiation/models"

// The aggregates keep their version token out of their own JSON so stored
// documents never embed it; the transport layer re-attaches it here, and the
// client carries it back on the next write.

type submissionResponse struct {
	*models.DealSubmission
	Version string `json:"version"`
}

func fromSubmission(sub *models.DealSubmission) submissionResponse {
	return submissionResponse{DealSubmission: sub, Version: sub.Version}
}

func fromSubmissions(subs []*models.DealSubmission) []submissionResponse {
	out := make([]submissionResponse, len(subs))
	for i, sub := range subs {
		out[i] = fromSubmission(sub)
	}
	return out
}

type feedbackResponse struct {
	*models.SubmissionFeedback
	Version string `json:"version"`
}

func fromFeedback(fb *models.SubmissionFeedback) feedbackResponse {
	return feedbackResponse{SubmissionFeedback: fb, Version: fb.Version}
}

func fromFeedbacks(fbs []*models.SubmissionFeedback) []feedbackResponse {
	out := make([]feedbackResponse, len(fbs))
	for i, fb := range fbs {
		out[i] = fromFeedback(fb)
	}
	return out
}
