package models

import (
	"strings"
	"time"

	id "dealdesk/pkg/domain"
	dErrors "dealdesk/pkg/domain-errors"
)

// BasicTerms carries descriptive deal metadata. The negotiation core copies it
// through without interpreting it.
type BasicTerms struct {
	Industry           string `json:"industry"`
	TargetJurisdiction string `json:"target_jurisdiction"`
	DealDescription    string `json:"deal_description,omitempty"`
}

// SubmissionPricing is the broker's requested pricing for the deal.
type SubmissionPricing struct {
	EnterpriseValue Money `json:"enterprise_value"`
	Premium         Money `json:"premium"`
	UnderwritingFee Money `json:"underwriting_fee"`
	Retention       Money `json:"retention"`
	Limit           Limit `json:"limit"`
}

// FeedbackDetails is the submission's summary pointer to one insurer's
// feedback. The full feedback lives in its own aggregate.
type FeedbackDetails struct {
	FeedbackID id.FeedbackID `json:"feedback_id"`
	InsurerID  id.CompanyID  `json:"insurer_id"`
	Live       bool          `json:"live"`
	Assignees  []id.UserID   `json:"assignees,omitempty"`
}

// AttachedFile records a file stored for the submission. The StoredName is the
// opaque key used by the file store.
type AttachedFile struct {
	ID         id.FileID `json:"id"`
	Name       string    `json:"name"`
	StoredName string    `json:"stored_name"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// DealSubmission is the broker's authoritative statement of one deal's terms,
// offered to one or more insurers.
//
// Invariants:
//   - Name is non-empty
//   - BrokerID is set
//   - Enhancement titles are unique within the enhancement list
//   - Warranty titles are unique within the warranty list
//
// Version is the opaque concurrency token assigned by the store on every
// successful write. It is carried read-to-write unchanged and never parsed.
type DealSubmission struct {
	ID           id.SubmissionID   `json:"id"`
	Name         string            `json:"name"`
	BrokerID     id.CompanyID      `json:"broker_id"`
	BrokerName   string            `json:"broker_name"`
	Terms        BasicTerms        `json:"terms"`
	Pricing      SubmissionPricing `json:"pricing"`
	Enhancements []Enhancement     `json:"enhancements"`
	Warranties   []Warranty        `json:"warranties"`
	Assignees    []id.UserID       `json:"assignees,omitempty"`
	Files        []AttachedFile    `json:"files,omitempty"`
	Feedback     []FeedbackDetails `json:"feedback,omitempty"`
	Deadline     *time.Time        `json:"deadline,omitempty"`
	Version      string            `json:"-"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// NewDealSubmission validates invariants and constructs the aggregate.
func NewDealSubmission(submissionID id.SubmissionID, name string, brokerID id.CompanyID, brokerName string,
	terms BasicTerms, pricing SubmissionPricing, enhancements []Enhancement, warranties []Warranty,
	now time.Time) (*DealSubmission, error) {

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "submission name cannot be empty")
	}
	if brokerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "submission broker is required")
	}
	if err := ValidateEnhancementTitles(enhancements); err != nil {
		return nil, err
	}
	if err := ValidateWarrantyTitles(warranties); err != nil {
		return nil, err
	}
	return &DealSubmission{
		ID:           submissionID,
		Name:         name,
		BrokerID:     brokerID,
		BrokerName:   brokerName,
		Terms:        terms,
		Pricing:      pricing,
		Enhancements: enhancements,
		Warranties:   warranties,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Amendment describes a broker edit to a submission. Nil fields are left
// untouched; the enhancement and warranty lists replace the canonical lists
// wholesale when present.
type Amendment struct {
	Name          *string            `json:"name,omitempty"`
	Terms         *BasicTerms        `json:"terms,omitempty"`
	Pricing       *SubmissionPricing `json:"pricing,omitempty"`
	Enhancements  *[]Enhancement     `json:"enhancements,omitempty"`
	Warranties    *[]Warranty        `json:"warranties,omitempty"`
	Assignees     *[]id.UserID       `json:"assignees,omitempty"`
	Deadline      *time.Time         `json:"deadline,omitempty"`
	ClearDeadline bool               `json:"clear_deadline,omitempty"`
}

// Validate rejects amendments that would break list invariants before any
// state is touched.
func (a *Amendment) Validate() error {
	if a.Name != nil && strings.TrimSpace(*a.Name) == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "submission name cannot be empty")
	}
	if a.Enhancements != nil {
		if err := ValidateEnhancementTitles(*a.Enhancements); err != nil {
			return err
		}
	}
	if a.Warranties != nil {
		if err := ValidateWarrantyTitles(*a.Warranties); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAmendment applies a validated amendment. Call Validate first; this
// method re-checks the list invariants as a last line of defense.
func (s *DealSubmission) ApplyAmendment(a *Amendment, now time.Time) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if a.Name != nil {
		s.Name = strings.TrimSpace(*a.Name)
	}
	if a.Terms != nil {
		s.Terms = *a.Terms
	}
	if a.Pricing != nil {
		s.Pricing = *a.Pricing
	}
	if a.Enhancements != nil {
		s.Enhancements = append([]Enhancement(nil), (*a.Enhancements)...)
	}
	if a.Warranties != nil {
		s.Warranties = append([]Warranty(nil), (*a.Warranties)...)
	}
	if a.Assignees != nil {
		s.Assignees = append([]id.UserID(nil), (*a.Assignees)...)
	}
	if a.ClearDeadline {
		s.Deadline = nil
	} else if a.Deadline != nil {
		d := *a.Deadline
		s.Deadline = &d
	}
	s.UpdatedAt = now
	return nil
}

// HasEnhancementTitle reports whether the canonical enhancement list contains
// the title.
func (s *DealSubmission) HasEnhancementTitle(title string) bool {
	for _, e := range s.Enhancements {
		if e.Title == title {
			return true
		}
	}
	return false
}

// HasWarrantyTitle reports whether the canonical warranty list contains the
// title.
func (s *DealSubmission) HasWarrantyTitle(title string) bool {
	for _, w := range s.Warranties {
		if w.Title == title {
			return true
		}
	}
	return false
}

// AddFeedbackDetails records the summary pointer for a newly invited insurer.
// Rejects a second live feedback for the same insurer.
func (s *DealSubmission) AddFeedbackDetails(details FeedbackDetails, now time.Time) error {
	for _, fd := range s.Feedback {
		if fd.InsurerID == details.InsurerID && fd.Live {
			return dErrors.New(dErrors.CodeInvariantViolation, "insurer already has live feedback on this submission")
		}
	}
	s.Feedback = append(s.Feedback, details)
	s.UpdatedAt = now
	return nil
}

// WithdrawFeedbackDetails flips the live flag for the given feedback pointer.
func (s *DealSubmission) WithdrawFeedbackDetails(feedbackID id.FeedbackID, now time.Time) error {
	for i := range s.Feedback {
		if s.Feedback[i].FeedbackID == feedbackID {
			s.Feedback[i].Live = false
			s.UpdatedAt = now
			return nil
		}
	}
	return dErrors.New(dErrors.CodeNotFound, "feedback is not recorded on this submission")
}

// AttachFile records a stored file on the submission.
func (s *DealSubmission) AttachFile(file AttachedFile, now time.Time) {
	s.Files = append(s.Files, file)
	s.UpdatedAt = now
}

// RemoveFile drops the file record and returns its stored name so the caller
// can delete the blob.
func (s *DealSubmission) RemoveFile(fileID id.FileID, now time.Time) (string, error) {
	for i, f := range s.Files {
		if f.ID == fileID {
			stored := f.StoredName
			s.Files = append(s.Files[:i], s.Files[i+1:]...)
			s.UpdatedAt = now
			return stored, nil
		}
	}
	return "", dErrors.New(dErrors.CodeNotFound, "file is not attached to this submission")
}

// Clone returns a deep copy. Stores hand out clones so callers never share
// slices with stored state.
func (s *DealSubmission) Clone() *DealSubmission {
	out := *s
	out.Enhancements = append([]Enhancement(nil), s.Enhancements...)
	out.Warranties = append([]Warranty(nil), s.Warranties...)
	out.Assignees = append([]id.UserID(nil), s.Assignees...)
	out.Files = append([]AttachedFile(nil), s.Files...)
	out.Feedback = make([]FeedbackDetails, len(s.Feedback))
	for i, fd := range s.Feedback {
		out.Feedback[i] = fd
		out.Feedback[i].Assignees = append([]id.UserID(nil), fd.Assignees...)
	}
	if s.Deadline != nil {
		d := *s.Deadline
		out.Deadline = &d
	}
	return &out
}
