// Package reconcile keeps an insurer's feedback consistent with a changing
// submission.
//
// Matching is title-keyed: a broker renaming an item is indistinguishable from
// deleting one item and adding another, so the insurer's prior position on the
// old title is dropped. Known fragility of the name-based identity scheme;
// kept deliberately.
//
// Reconcile is pure, deterministic, and idempotent: applying it twice to the
// same (submission, feedback) pair yields the same result as applying it once.
package reconcile

import "dealdesk/internal/negotiation/models"

// Reconcile produces the feedback state that reflects the submission's current
// terms while preserving the insurer's prior positions wherever they still
// apply.
//
// Rules, applied independently to enhancements and warranties:
//   - items matched by title carry the insurer's position forward, unless the
//     submission-side description or value changed, in which case the
//     acceptance flag resets to "not yet answered" and only the insurer's
//     free-text comment survives
//   - titles new to the submission synthesize a no-position feedback item
//   - prior feedback items whose title left the submission are dropped
//   - output order follows the submission's current order
//
// Pricing counters survive only while the corresponding requested field is
// unchanged. Terminal feedback (declined or accepted) is frozen: the prior
// feedback is returned unmodified.
func Reconcile(submission *models.DealSubmission, prior *models.SubmissionFeedback) *models.SubmissionFeedback {
	if prior.Terminal() {
		return prior
	}

	next := prior.Clone()
	next.Enhancements = reconcileEnhancements(submission.Enhancements, prior.Enhancements)
	next.Warranties = reconcileWarranties(submission.Warranties, prior.Warranties)
	next.Pricing = reconcilePricing(submission.Pricing, prior.Pricing)
	return next
}

func reconcileEnhancements(current []models.Enhancement, prior []models.Enhancement) []models.Enhancement {
	byTitle := make(map[string]models.Enhancement, len(prior))
	for _, p := range prior {
		byTitle[p.Title] = p
	}

	out := make([]models.Enhancement, 0, len(current))
	for _, c := range current {
		item := models.Enhancement{
			Title:             c.Title,
			Type:              c.Type,
			Description:       c.Description,
			Value:             c.Value,
			RequestedByBroker: c.RequestedByBroker,
		}
		if p, ok := byTitle[c.Title]; ok {
			item.Comment = p.Comment
			// A changed description or value is something the insurer could
			// not have responded to; its acceptance resets to unanswered.
			if p.Description == c.Description && p.Value.Equal(c.Value) {
				item.InsurerOffers = p.InsurerOffers
			}
		}
		out = append(out, item)
	}
	return out
}

func reconcileWarranties(current []models.Warranty, prior []models.Warranty) []models.Warranty {
	byTitle := make(map[string]models.Warranty, len(prior))
	for _, p := range prior {
		byTitle[p.Title] = p
	}

	out := make([]models.Warranty, 0, len(current))
	for _, c := range current {
		item := models.Warranty{
			Title:             c.Title,
			Description:       c.Description,
			RequestedByBroker: c.RequestedByBroker,
		}
		if p, ok := byTitle[c.Title]; ok {
			item.Comment = p.Comment
			if p.Description == c.Description {
				item.InsurerAccepts = p.InsurerAccepts
			}
		}
		out = append(out, item)
	}
	return out
}

func reconcilePricing(current models.SubmissionPricing, prior models.FeedbackPricing) models.FeedbackPricing {
	next := models.FeedbackPricing{
		EnterpriseValue: current.EnterpriseValue,
		Premium:         current.Premium,
		UnderwritingFee: current.UnderwritingFee,
		Retention:       current.Retention,
		Limit:           current.Limit,
	}
	if prior.CounterPremium != nil && prior.Premium.Equal(current.Premium) {
		m := *prior.CounterPremium
		next.CounterPremium = &m
	}
	if prior.CounterUnderwritingFee != nil && prior.UnderwritingFee.Equal(current.UnderwritingFee) {
		m := *prior.CounterUnderwritingFee
		next.CounterUnderwritingFee = &m
	}
	if prior.CounterRetention != nil && prior.Retention.Equal(current.Retention) {
		m := *prior.CounterRetention
		next.CounterRetention = &m
	}
	if prior.CounterLimit != nil && prior.Limit.Equal(current.Limit) {
		l := *prior.CounterLimit
		next.CounterLimit = &l
	}
	return next
}
