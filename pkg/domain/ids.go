// Package domain holds the typed identifiers shared across the negotiation
// service. IDs are distinct types over uuid.UUID so a feedback id can never be
// passed where a submission id is expected; Parse* constructors enforce
// validity at trust boundaries (handlers, adapters).
package domain

import (
	"github.com/google/uuid"

	dErrors "dealdesk/pkg/domain-errors"
)

// SubmissionID identifies a deal submission aggregate.
type SubmissionID uuid.UUID

// FeedbackID identifies one insurer's feedback on a submission.
type FeedbackID uuid.UUID

// CompanyID identifies a broker or insurer company.
type CompanyID uuid.UUID

// UserID identifies an individual user (assignee, editor).
type UserID uuid.UUID

// FileID identifies an attached file.
type FileID uuid.UUID

func parseID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	if len(s) > 64 {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is too long")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return u, nil
}

// ParseSubmissionID validates external input as a SubmissionID.
func ParseSubmissionID(s string) (SubmissionID, error) {
	u, err := parseID(s)
	if err != nil {
		return SubmissionID{}, err
	}
	return SubmissionID(u), nil
}

// ParseFeedbackID validates external input as a FeedbackID.
func ParseFeedbackID(s string) (FeedbackID, error) {
	u, err := parseID(s)
	if err != nil {
		return FeedbackID{}, err
	}
	return FeedbackID(u), nil
}

// ParseCompanyID validates external input as a CompanyID.
func ParseCompanyID(s string) (CompanyID, error) {
	u, err := parseID(s)
	if err != nil {
		return CompanyID{}, err
	}
	return CompanyID(u), nil
}

// ParseUserID validates external input as a UserID.
func ParseUserID(s string) (UserID, error) {
	u, err := parseID(s)
	if err != nil {
		return UserID{}, err
	}
	return UserID(u), nil
}

// ParseFileID validates external input as a FileID.
func ParseFileID(s string) (FileID, error) {
	u, err := parseID(s)
	if err != nil {
		return FileID{}, err
	}
	return FileID(u), nil
}

// NewSubmissionID returns a fresh random SubmissionID.
func NewSubmissionID() SubmissionID { return SubmissionID(uuid.New()) }

// NewFeedbackID returns a fresh random FeedbackID.
func NewFeedbackID() FeedbackID { return FeedbackID(uuid.New()) }

// NewFileID returns a fresh random FileID.
func NewFileID() FileID { return FileID(uuid.New()) }

// NewCompanyID returns a fresh random CompanyID.
func NewCompanyID() CompanyID { return CompanyID(uuid.New()) }

// NewUserID returns a fresh random UserID.
func NewUserID() UserID { return UserID(uuid.New()) }

func (id SubmissionID) String() string { return uuid.UUID(id).String() }
func (id FeedbackID) String() string   { return uuid.UUID(id).String() }
func (id CompanyID) String() string    { return uuid.UUID(id).String() }
func (id UserID) String() string       { return uuid.UUID(id).String() }
func (id FileID) String() string       { return uuid.UUID(id).String() }

func (id SubmissionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id FeedbackID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id CompanyID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id UserID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id FileID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }

// Text marshalling so ids render as UUID strings inside JSON documents.

func (id SubmissionID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *SubmissionID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id FeedbackID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *FeedbackID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id CompanyID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *CompanyID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id UserID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *UserID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id FileID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *FileID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}
