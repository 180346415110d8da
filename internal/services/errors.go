package services

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the transport boundary.
type Kind int

const (
	KindDependency     Kind = iota // store or blob service failure, not user-correctable
	KindValidation                 // missing or malformed input
	KindAuthentication             // bad credentials, invalid, expired or stale token
	KindNotFound                   // unknown account, channel or content
	KindConflict                   // duplicate username or email
)

// HTTPStatus maps the kind to the status code rendered at the boundary.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified service error. Sentinels below are compared with errors.Is;
// the underlying cause, if any, is wrapped with fmt.Errorf("%w: %v").
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Error variables
var (
	ErrAllFieldsRequired  = newError(KindValidation, "all fields are required")
	ErrAvatarRequired     = newError(KindValidation, "avatar file is required")
	ErrCoverImageRequired = newError(KindValidation, "cover image file is required")
	ErrMissingIdentifier  = newError(KindValidation, "username or email is required")
	ErrMissingCredential  = newError(KindValidation, "refresh token is required")
	ErrMissingUsername    = newError(KindValidation, "username is required")
	ErrSelfSubscription   = newError(KindValidation, "cannot subscribe to own channel")
	ErrUnauthenticated    = newError(KindAuthentication, "unauthorized request")
	ErrInvalidCredentials = newError(KindAuthentication, "invalid username or password")
	ErrInvalidCredential  = newError(KindAuthentication, "invalid token")
	ErrStaleCredential    = newError(KindAuthentication, "refresh token is expired or used")
	ErrAccountNotFound    = newError(KindNotFound, "user does not exist")
	ErrChannelNotFound    = newError(KindNotFound, "channel does not exist")
	ErrVideoNotFound      = newError(KindNotFound, "video does not exist")
	ErrUserAlreadyExists  = newError(KindConflict, "username or email already exists")
)

// KindOf returns the kind of err. Errors that are not classified are dependency failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindDependency
}
