// Package notify dispatches workflow notifications to interested parties.
//
// Dispatch is fire-and-forget from the negotiation core's perspective: a
// failed Emit is surfaced as a CodeNotificationDelivery warning and logged,
// never aborting the workflow that triggered it.
package notify

import "context"

//go:generate mockgen -source=notify.go -destination=mocks/mocks.go -package=mocks

// Kind identifies what happened.
type Kind string

const (
	KindSubmissionCreated Kind = "submission_created"
	KindSubmissionAmended Kind = "submission_amended"
	KindInsurerInvited    Kind = "insurer_invited"
	KindFeedbackSubmitted Kind = "feedback_submitted"
	KindFeedbackDeclined  Kind = "feedback_declined"
	KindFeedbackAccepted  Kind = "feedback_accepted"
	KindFeedbackWithdrawn Kind = "feedback_withdrawn"
)

// Notification is the dispatch payload: a kind, a recipient list, and a typed
// key/value data bag (no reflection-based dynamic payloads).
type Notification struct {
	Kind       Kind              `json:"kind"`
	Recipients []string          `json:"recipients"`
	Data       map[string]string `json:"data,omitempty"`
}

// Notifier delivers notifications. Implementations must be safe for
// concurrent use.
type Notifier interface {
	Emit(ctx context.Context, n Notification) error
}
