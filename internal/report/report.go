// Package report renders reconciled negotiation state into downloadable
// documents. The service only ever hands it fully reconciled feedback, so the
// renderer never sees partially-updated state.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"dealdesk/internal/negotiation/models"
	"dealdesk/internal/negotiation/pricing"
)

// Generator is the document/report collaborator contract.
type Generator interface {
	// Comparison renders all insurers' positions on one submission side by side.
	Comparison(submission *models.DealSubmission, feedbacks []*models.SubmissionFeedback) ([]byte, error)
	// Feedback renders a single insurer's response.
	Feedback(fb *models.SubmissionFeedback, insurerName string) ([]byte, error)
}

// CSV renders reports as CSV, the exchange format the desks import into their
// spreadsheets. Richer binary rendering is an external concern.
type CSV struct{}

func NewCSV() *CSV {
	return &CSV{}
}

func (*CSV) Comparison(submission *models.DealSubmission, feedbacks []*models.SubmissionFeedback) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"item", "type", "requested"}
	for _, fb := range feedbacks {
		header = append(header, fb.InsurerName)
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write comparison header: %w", err)
	}

	for _, e := range submission.Enhancements {
		row := []string{e.Title, "enhancement", yesNo(e.RequestedByBroker)}
		for _, fb := range feedbacks {
			row = append(row, enhancementPosition(fb, e.Title))
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write comparison row: %w", err)
		}
	}
	for _, wa := range submission.Warranties {
		row := []string{wa.Title, "warranty", yesNo(wa.RequestedByBroker)}
		for _, fb := range feedbacks {
			row = append(row, warrantyPosition(fb, wa.Title))
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write comparison row: %w", err)
		}
	}

	totalRow := []string{"total cost", "", pricing.TotalString(
		submission.Pricing.Premium, submission.Enhancements, submission.Pricing.UnderwritingFee)}
	for _, fb := range feedbacks {
		totalRow = append(totalRow, pricing.TotalString(
			quotedPremium(fb), fb.Enhancements, quotedFee(fb)))
	}
	if err := w.Write(totalRow); err != nil {
		return nil, fmt.Errorf("write comparison totals: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush comparison report: %w", err)
	}
	return buf.Bytes(), nil
}

func (*CSV) Feedback(fb *models.SubmissionFeedback, insurerName string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	rows := [][]string{
		{"insurer", insurerName},
		{"nda accepted", yesNo(fb.NdaAccepted)},
		{"submitted", yesNo(fb.Submitted)},
		{"declined", yesNo(fb.Declined)},
		{"rate on line", pricing.RateOnLine(fb.Pricing.EnterpriseValue, quotedPremium(fb), fb.Pricing.Limit).Round(2).String()},
		{"enhancement value", pricing.EnhancementValueString(quotedPremium(fb), fb.Enhancements)},
		{"total cost", pricing.TotalString(quotedPremium(fb), fb.Enhancements, quotedFee(fb))},
	}
	for _, e := range fb.Enhancements {
		rows = append(rows, []string{"enhancement: " + e.Title, offeredOrNot(e.InsurerOffers), e.Comment})
	}
	for _, wa := range fb.Warranties {
		rows = append(rows, []string{"warranty: " + wa.Title, acceptedOrNot(wa.InsurerAccepts), wa.Comment})
	}
	for _, ex := range fb.Exclusions {
		rows = append(rows, []string{"exclusion: " + ex.Title, yesNo(ex.InsurerRequires), ex.Comment})
	}

	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("write feedback report: %w", err)
	}
	return buf.Bytes(), nil
}

// quotedPremium prefers the insurer's counter-premium when present.
func quotedPremium(fb *models.SubmissionFeedback) models.Money {
	if fb.Pricing.CounterPremium != nil {
		return *fb.Pricing.CounterPremium
	}
	return fb.Pricing.Premium
}

func quotedFee(fb *models.SubmissionFeedback) models.Money {
	if fb.Pricing.CounterUnderwritingFee != nil {
		return *fb.Pricing.CounterUnderwritingFee
	}
	return fb.Pricing.UnderwritingFee
}

func enhancementPosition(fb *models.SubmissionFeedback, title string) string {
	for _, e := range fb.Enhancements {
		if e.Title == title {
			return offeredOrNot(e.InsurerOffers)
		}
	}
	return "-"
}

func warrantyPosition(fb *models.SubmissionFeedback, title string) string {
	for _, w := range fb.Warranties {
		if w.Title == title {
			return acceptedOrNot(w.InsurerAccepts)
		}
	}
	return "-"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func offeredOrNot(b bool) string {
	if b {
		return "offered"
	}
	return "not offered"
}

func acceptedOrNot(b bool) string {
	if b {
		return "accepted"
	}
	return "open"
}
