package errors

import (
	stderrors "errors"
	"net/http"
)

// Kind classifies failures that are shown to the user.
type Kind string

const (
	InvalidCredentials   Kind = "InvalidCredentials"
	EmailAlreadyInUse    Kind = "EmailAlreadyInUse"
	WeakPassword         Kind = "WeakPassword"
	AccountBlocked       Kind = "AccountBlocked"
	IdentityNotFound     Kind = "IdentityNotFound"
	SlugTaken            Kind = "SlugTaken"
	ValidationError      Kind = "ValidationError"
	BackendUnavailable   Kind = "BackendUnavailable"
	UnknownProviderError Kind = "UnknownProviderError"
	NotFound             Kind = "NotFound"
)

var kindStatus = map[Kind]int{
	InvalidCredentials:   http.StatusUnauthorized,
	EmailAlreadyInUse:    http.StatusConflict,
	WeakPassword:         http.StatusBadRequest,
	AccountBlocked:       http.StatusForbidden,
	IdentityNotFound:     http.StatusNotFound,
	SlugTaken:            http.StatusConflict,
	ValidationError:      http.StatusBadRequest,
	BackendUnavailable:   http.StatusBadGateway,
	UnknownProviderError: http.StatusInternalServerError,
	NotFound:             http.StatusNotFound,
}

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
	Kind       Kind
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

// New builds an error of the given kind with the status code that kind maps to.
func New(kind Kind, message string) *ErrorWithStatusCode {
	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	return &ErrorWithStatusCode{Message: message, StatusCode: status, Kind: kind}
}

// KindOf returns the kind of the first ErrorWithStatusCode in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *ErrorWithStatusCode
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
