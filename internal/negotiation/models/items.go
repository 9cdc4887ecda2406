package models

import (
	"fmt"

	"github.com/shopspring/decimal"

	dErrors "dealdesk/pkg/domain-errors"
)

// EnhancementType distinguishes broker requests from underwriting assumptions.
type EnhancementType string

const (
	EnhancementTypeRequest    EnhancementType = "request"
	EnhancementTypeAssumption EnhancementType = "assumption"
)

// IsValid checks the enhancement type against the supported enum values.
func (t EnhancementType) IsValid() bool {
	return t == EnhancementTypeRequest || t == EnhancementTypeAssumption
}

// Enhancement is a negotiable add-on clause with a premium-impact value.
//
// Identity is the Title (case-sensitive, unique within its list). The same
// struct serves both sides of the negotiation: on a submission the insurer
// fields are untouched defaults; on a feedback they carry that insurer's
// position. Value-type semantics: lists replace items wholesale rather than
// mutating in place.
type Enhancement struct {
	Title             string          `json:"title"`
	Type              EnhancementType `json:"type"`
	Description       string          `json:"description"`
	Comment           string          `json:"comment,omitempty"`
	Value             decimal.Decimal `json:"value"`
	RequestedByBroker bool            `json:"requested_by_broker"`
	InsurerOffers     bool            `json:"insurer_offers"`
}

// Warranty is a negotiable representation/warranty clause. Identity is the
// Title; position flags mirror Enhancement.
type Warranty struct {
	Title             string `json:"title"`
	Description       string `json:"description"`
	Comment           string `json:"comment,omitempty"`
	RequestedByBroker bool   `json:"requested_by_broker"`
	InsurerAccepts    bool   `json:"insurer_accepts"`
}

// Exclusion is an insurer-side clause carving risk out of the deal. Exclusions
// exist only on feedback and are not reconciled against the submission.
type Exclusion struct {
	Title           string `json:"title"`
	Comment         string `json:"comment,omitempty"`
	InsurerRequires bool   `json:"insurer_requires"`
}

// ValidateEnhancementTitles enforces the list-level invariant: titles are
// non-empty and unique (case-sensitive) within the list.
func ValidateEnhancementTitles(enhancements []Enhancement) error {
	seen := make(map[string]struct{}, len(enhancements))
	for _, e := range enhancements {
		if e.Title == "" {
			return dErrors.New(dErrors.CodeInvariantViolation, "enhancement title cannot be empty")
		}
		if _, dup := seen[e.Title]; dup {
			return dErrors.New(dErrors.CodeInvariantViolation,
				fmt.Sprintf("duplicate enhancement title: %s", e.Title))
		}
		seen[e.Title] = struct{}{}
	}
	return nil
}

// ValidateWarrantyTitles enforces the same invariant for warranties.
func ValidateWarrantyTitles(warranties []Warranty) error {
	seen := make(map[string]struct{}, len(warranties))
	for _, w := range warranties {
		if w.Title == "" {
			return dErrors.New(dErrors.CodeInvariantViolation, "warranty title cannot be empty")
		}
		if _, dup := seen[w.Title]; dup {
			return dErrors.New(dErrors.CodeInvariantViolation,
				fmt.Sprintf("duplicate warranty title: %s", w.Title))
		}
		seen[w.Title] = struct{}{}
	}
	return nil
}
