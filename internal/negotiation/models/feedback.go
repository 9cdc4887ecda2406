package models

import (
	"time"

	id "dealdesk/pkg/domain"
	dErrors "dealdesk/pkg/domain-errors"
)

// FeedbackPricing is one insurer's pricing view. The plain fields snapshot the
// submission's requested values at the last reconciliation; the Counter fields
// hold the insurer's countered values where they diverge. Reconciliation keeps
// a counter only while the corresponding requested field is unchanged.
type FeedbackPricing struct {
	EnterpriseValue Money `json:"enterprise_value"`
	Premium         Money `json:"premium"`
	UnderwritingFee Money `json:"underwriting_fee"`
	Retention       Money `json:"retention"`
	Limit           Limit `json:"limit"`

	CounterPremium         *Money `json:"counter_premium,omitempty"`
	CounterUnderwritingFee *Money `json:"counter_underwriting_fee,omitempty"`
	CounterRetention       *Money `json:"counter_retention,omitempty"`
	CounterLimit           *Limit `json:"counter_limit,omitempty"`
}

// SubmissionFeedback is one insurer's response to a deal submission. One
// aggregate per (submission, insurer) pair. It is never deleted: a dead
// negotiation is flagged declined or withdrawn, not removed.
//
// Invariants:
//   - SubmissionID and InsurerID are set
//   - Every enhancement/warranty title corresponds to an item currently on the
//     parent submission, unless the feedback was already terminal when the
//     submission changed (terminal feedback is frozen)
//   - Declined and Accepted are terminal; no transition leaves them
type SubmissionFeedback struct {
	ID           id.FeedbackID `json:"id"`
	SubmissionID id.SubmissionID `json:"submission_id"`
	InsurerID    id.CompanyID  `json:"insurer_id"`
	InsurerName  string        `json:"insurer_name"`

	NdaAccepted bool `json:"nda_accepted"`
	Submitted   bool `json:"submitted"`
	Declined    bool `json:"declined"`
	Accepted    bool `json:"accepted"`

	IsLive    bool   `json:"is_live"`
	ForReview bool   `json:"for_review"`
	Notes     string `json:"notes,omitempty"`

	Pricing           FeedbackPricing `json:"pricing"`
	Enhancements      []Enhancement   `json:"enhancements"`
	Warranties        []Warranty      `json:"warranties"`
	Exclusions        []Exclusion     `json:"exclusions,omitempty"`
	ExcludedCountries []string        `json:"excluded_countries,omitempty"`
	UnderwritingFocus []string        `json:"underwriting_focus,omitempty"`

	Version   string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSubmissionFeedback constructs an empty feedback for an invited insurer.
// Item lists start empty; the caller seeds them by reconciling against the
// current submission so the feedback mirrors its canonical lists.
func NewSubmissionFeedback(feedbackID id.FeedbackID, submission *DealSubmission,
	insurerID id.CompanyID, insurerName string, now time.Time) (*SubmissionFeedback, error) {

	if submission == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "feedback requires a parent submission")
	}
	if insurerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "feedback insurer is required")
	}
	return &SubmissionFeedback{
		ID:           feedbackID,
		SubmissionID: submission.ID,
		InsurerID:    insurerID,
		InsurerName:  insurerName,
		IsLive:       true,
		Pricing: FeedbackPricing{
			EnterpriseValue: submission.Pricing.EnterpriseValue,
			Premium:         submission.Pricing.Premium,
			UnderwritingFee: submission.Pricing.UnderwritingFee,
			Retention:       submission.Pricing.Retention,
			Limit:           submission.Pricing.Limit,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Terminal reports whether the feedback has reached a final state. Terminal
// feedback is immutable with respect to submission amendments and insurer
// edits.
func (f *SubmissionFeedback) Terminal() bool {
	return f.Declined || f.Accepted
}

// CanSubmit checks that the insurer may submit terms.
func (f *SubmissionFeedback) CanSubmit() error {
	if f.Terminal() {
		return dErrors.New(dErrors.CodeInvariantViolation, "feedback is already final")
	}
	if !f.NdaAccepted {
		return dErrors.New(dErrors.CodeInvariantViolation, "NDA must be accepted before submitting terms")
	}
	return nil
}

// ApplySubmit marks the feedback as submitted and flags it for broker review.
func (f *SubmissionFeedback) ApplySubmit(now time.Time) {
	f.Submitted = true
	f.ForReview = true
	f.UpdatedAt = now
}

// AcceptNda records the insurer's NDA acceptance.
func (f *SubmissionFeedback) AcceptNda(now time.Time) error {
	if f.Terminal() {
		return dErrors.New(dErrors.CodeInvariantViolation, "feedback is already final")
	}
	f.NdaAccepted = true
	f.UpdatedAt = now
	return nil
}

// CanDecline checks that the feedback can still be declined.
func (f *SubmissionFeedback) CanDecline() error {
	if f.Terminal() {
		return dErrors.New(dErrors.CodeInvariantViolation, "feedback is already final")
	}
	return nil
}

// ApplyDecline transitions the feedback into its terminal declined state.
func (f *SubmissionFeedback) ApplyDecline(now time.Time) {
	f.Declined = true
	f.ForReview = false
	f.UpdatedAt = now
}

// CanAccept checks that the broker may accept this feedback: the insurer must
// have submitted terms and the feedback must still be live and non-terminal.
func (f *SubmissionFeedback) CanAccept() error {
	if f.Terminal() {
		return dErrors.New(dErrors.CodeInvariantViolation, "feedback is already final")
	}
	if !f.Submitted {
		return dErrors.New(dErrors.CodeInvariantViolation, "feedback has no submitted terms to accept")
	}
	if !f.IsLive {
		return dErrors.New(dErrors.CodeInvariantViolation, "feedback has been withdrawn")
	}
	return nil
}

// ApplyAccept transitions the feedback into its terminal accepted state.
func (f *SubmissionFeedback) ApplyAccept(now time.Time) {
	f.Accepted = true
	f.ForReview = false
	f.UpdatedAt = now
}

// Withdraw flags the feedback as no longer live. Terminal states stay frozen.
func (f *SubmissionFeedback) Withdraw(now time.Time) error {
	if f.Terminal() {
		return dErrors.New(dErrors.CodeInvariantViolation, "feedback is already final")
	}
	f.IsLive = false
	f.ForReview = false
	f.UpdatedAt = now
	return nil
}

// Clone returns a deep copy.
func (f *SubmissionFeedback) Clone() *SubmissionFeedback {
	out := *f
	out.Enhancements = append([]Enhancement(nil), f.Enhancements...)
	out.Warranties = append([]Warranty(nil), f.Warranties...)
	out.Exclusions = append([]Exclusion(nil), f.Exclusions...)
	out.ExcludedCountries = append([]string(nil), f.ExcludedCountries...)
	out.UnderwritingFocus = append([]string(nil), f.UnderwritingFocus...)
	out.Pricing = f.Pricing.clone()
	return &out
}

func (p FeedbackPricing) clone() FeedbackPricing {
	out := p
	if p.CounterPremium != nil {
		m := *p.CounterPremium
		out.CounterPremium = &m
	}
	if p.CounterUnderwritingFee != nil {
		m := *p.CounterUnderwritingFee
		out.CounterUnderwritingFee = &m
	}
	if p.CounterRetention != nil {
		m := *p.CounterRetention
		out.CounterRetention = &m
	}
	if p.CounterLimit != nil {
		l := *p.CounterLimit
		out.CounterLimit = &l
	}
	return out
}
