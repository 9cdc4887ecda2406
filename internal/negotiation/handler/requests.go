package handler

import (
	"dealdesk/internal/negotiation/models"
	"dealdesk/internal/negotiation/service"
)

// createSubmissionRequest is the broker's initial deal statement.
type createSubmissionRequest struct {
	Name         string                   `json:"name"`
	BrokerName   string                   `json:"broker_name"`
	Terms        models.BasicTerms        `json:"terms"`
	Pricing      models.SubmissionPricing `json:"pricing"`
	Enhancements []models.Enhancement     `json:"enhancements"`
	Warranties   []models.Warranty        `json:"warranties"`
	Recipients   []string                 `json:"recipients"`
}

// inviteInsurerRequest invites one insurer onto a submission.
type inviteInsurerRequest struct {
	InsurerID   string `json:"insurer_id"`
	InsurerName string `json:"insurer_name"`
}

// updateFeedbackRequest carries an insurer's edits. Nil fields are left
// untouched; lists replace wholesale.
type updateFeedbackRequest struct {
	Notes                  *string               `json:"notes,omitempty"`
	CounterPremium         *models.Money         `json:"counter_premium,omitempty"`
	CounterUnderwritingFee *models.Money         `json:"counter_underwriting_fee,omitempty"`
	CounterRetention       *models.Money         `json:"counter_retention,omitempty"`
	CounterLimit           *models.Limit         `json:"counter_limit,omitempty"`
	Enhancements           *[]models.Enhancement `json:"enhancements,omitempty"`
	Warranties             *[]models.Warranty    `json:"warranties,omitempty"`
	Exclusions             *[]models.Exclusion   `json:"exclusions,omitempty"`
	ExcludedCountries      *[]string             `json:"excluded_countries,omitempty"`
	UnderwritingFocus      *[]string             `json:"underwriting_focus,omitempty"`
}

func (r *updateFeedbackRequest) toUpdate() *service.FeedbackUpdate {
	return &service.FeedbackUpdate{
		Notes:                  r.Notes,
		CounterPremium:         r.CounterPremium,
		CounterUnderwritingFee: r.CounterUnderwritingFee,
		CounterRetention:       r.CounterRetention,
		CounterLimit:           r.CounterLimit,
		Enhancements:           r.Enhancements,
		Warranties:             r.Warranties,
		Exclusions:             r.Exclusions,
		ExcludedCountries:      r.ExcludedCountries,
		UnderwritingFocus:      r.UnderwritingFocus,
	}
}

// declineFeedbackRequest optionally records why the insurer declined.
type declineFeedbackRequest struct {
	Notes string `json:"notes,omitempty"`
}
