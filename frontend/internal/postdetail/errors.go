package postdetail

import (
	"errors"
	"net/http"
)

// Kind classifies every failure the post view can surface. Each kind maps to a
// static message; nothing is retried automatically.
type Kind uint8

const (
	KindUnauthenticated Kind = iota + 1
	KindNotFound
	KindFetchFailure
	KindSubmissionFailure
	KindValidationFailure
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindNotFound:
		return "not_found"
	case KindFetchFailure:
		return "fetch_failure"
	case KindSubmissionFailure:
		return "submission_failure"
	case KindValidationFailure:
		return "validation_failure"
	default:
		return "unknown"
	}
}

func (k Kind) HTTPStatus() int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindFetchFailure, KindSubmissionFailure:
		return http.StatusBadGateway
	case KindValidationFailure:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is what ends up in the view's single message slot.
type Error struct {
	Kind    Kind
	Message string // user-visible
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on kind, and on message when the target has one, so wrapped
// instances still compare equal to the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

var (
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated, Message: "User ID not found. Please sign in."}
	ErrThreadNotFound  = &Error{Kind: KindNotFound, Message: "Thread or author reference is missing."}
	ErrAuthorNotFound  = &Error{Kind: KindNotFound, Message: "User not found for this thread."}
	ErrUserNotFound    = &Error{Kind: KindNotFound, Message: "Logged-in user not found."}
	ErrInvalidFileType = &Error{Kind: KindValidationFailure, Message: "Invalid file type. Please upload an image."}
	ErrImageTooLarge   = &Error{Kind: KindValidationFailure, Message: "Image is too large."}

	ErrNotReady = errors.New("post view is not ready")
)

const (
	msgFetchFailed     = "Failed to fetch data."
	msgSubmitFailed    = "Failed to add reply."
	msgUnreadableImage = "Could not read the selected image."
)

func wrap(base *Error, err error) *Error {
	return &Error{Kind: base.Kind, Message: base.Message, Err: err}
}

func fetchFailed(err error) *Error {
	return &Error{Kind: KindFetchFailure, Message: msgFetchFailed, Err: err}
}

func submitFailed(err error) *Error {
	return &Error{Kind: KindSubmissionFailure, Message: msgSubmitFailed, Err: err}
}

// KindOf returns the kind of err, or 0 when err is not a post view error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
