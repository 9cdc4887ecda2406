// Package domainerrors provides code-carrying errors for the negotiation core.
//
// Every operation in the service reports failure as one of these errors so
// callers can branch on a stable code instead of string matching. Infrastructure
// layers return sentinel errors (pkg/platform/sentinel) and services translate
// them into domain errors at the boundary.
package domainerrors

import "errors"

// Code classifies a failure into the service's error taxonomy.
type Code string

const (
	// CodeNotFound reports that an entity id has no corresponding record.
	CodeNotFound Code = "not_found"
	// CodeConflict reports a version-token mismatch on write (lost-update
	// protection) or a uniqueness conflict.
	CodeConflict Code = "conflict"
	// CodeValidation reports a structural invariant violation surfaced to callers.
	CodeValidation Code = "validation_failed"
	// CodeInvariantViolation is raised by aggregate constructors and transition
	// guards; services convert it to CodeValidation or CodeConflict for callers.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeInvalidInput reports malformed input rejected at a trust boundary.
	CodeInvalidInput Code = "invalid_input"
	// CodeBadRequest reports a missing or unusable request parameter.
	CodeBadRequest Code = "bad_request"
	// CodeForbidden reports an operation the acting party may not perform.
	CodeForbidden Code = "forbidden"
	// CodeInternal reports an unexpected infrastructure failure.
	CodeInternal Code = "internal_error"
	// CodeTimeout reports a deadline exceeded while waiting on a collaborator.
	CodeTimeout Code = "timeout"

	// File-store collaborator failures.
	CodeRemoteStorageSave     Code = "remote_storage_save_failed"
	CodeRemoteStorageDownload Code = "remote_storage_download_failed"
	CodeRemoteStorageDelete   Code = "remote_storage_delete_failed"
	CodeBlobContainerNotFound Code = "blob_container_not_found"

	// CodeNotificationDelivery reports a failed notification dispatch. Non-fatal:
	// workflows log it as a warning and never abort on it.
	CodeNotificationDelivery Code = "notification_delivery_failed"
)

// Error is the structured failure carried through the service: a stable code
// plus a human-readable message, optionally wrapping a cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New constructs a domain error with the given code and message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying cause. The cause remains
// reachable through errors.Is / errors.As.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// CodeOf returns the outermost code carried by err, or CodeInternal when err
// is not a domain error.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
