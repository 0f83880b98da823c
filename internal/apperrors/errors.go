package apperrors

import (
	"errors"
	"net/http"
)

// Kind is the error class exposed at a remote-callable boundary. The string
// values match the callable error statuses browsers already understand.
type Kind string

const (
	KindUnauthenticated    Kind = "unauthenticated"
	KindPermissionDenied   Kind = "permission-denied"
	KindFailedPrecondition Kind = "failed-precondition"
	KindInvalidArgument    Kind = "invalid-argument"
	KindInternal           Kind = "internal"
)

type Metadata struct {
	HTTPStatus    int
	PublicMessage string
}

var metadataByKind = map[Kind]Metadata{
	KindUnauthenticated: {
		HTTPStatus:    http.StatusUnauthorized,
		PublicMessage: "authentication required",
	},
	KindPermissionDenied: {
		HTTPStatus:    http.StatusForbidden,
		PublicMessage: "permission denied",
	},
	KindFailedPrecondition: {
		HTTPStatus:    http.StatusPreconditionFailed,
		PublicMessage: "operation cannot be performed in the current state",
	},
	KindInvalidArgument: {
		HTTPStatus:    http.StatusBadRequest,
		PublicMessage: "invalid argument",
	},
	KindInternal: {
		HTTPStatus:    http.StatusInternalServerError,
		PublicMessage: "internal error",
	},
}

func MetadataFor(kind Kind) Metadata {
	if meta, ok := metadataByKind[kind]; ok {
		return meta
	}
	return metadataByKind[KindInternal]
}

// Error is a classified failure. Message is safe to show end users; the
// wrapped cause stays server side.
type Error struct {
	kind    Kind
	message string
	details map[string]any
	cause   error
}

func New(kind Kind, message string) *Error {
	return &Error{kind: kind, message: message}
}

func Wrap(kind Kind, err error, message string) *Error {
	return &Error{kind: kind, message: message, cause: err}
}

func Unauthenticated(message string) *Error    { return New(KindUnauthenticated, message) }
func PermissionDenied(message string) *Error   { return New(KindPermissionDenied, message) }
func FailedPrecondition(message string) *Error { return New(KindFailedPrecondition, message) }
func InvalidArgument(message string) *Error    { return New(KindInvalidArgument, message) }

func Internal(err error, message string) *Error {
	return Wrap(KindInternal, err, message)
}

func (e *Error) Kind() Kind {
	if e == nil {
		return KindInternal
	}
	return e.kind
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	if e.message == "" {
		return MetadataFor(e.kind).PublicMessage
	}
	return e.message
}

func (e *Error) Details() map[string]any {
	if e == nil {
		return nil
	}
	return e.details
}

// WithDetail attaches a client-visible detail such as the failing stage.
func (e *Error) WithDetail(key string, value any) *Error {
	if e == nil {
		return nil
	}
	if e.details == nil {
		e.details = make(map[string]any)
	}
	e.details[key] = value
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return string(e.kind) + ": " + e.Message() + ": " + e.cause.Error()
	}
	return string(e.kind) + ": " + e.Message()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As returns the first *Error in err's chain.
func As(err error) *Error {
	var target *Error
	if errors.As(err, &target) {
		return target
	}
	return nil
}

// KindOf classifies err; anything unclassified is internal.
func KindOf(err error) Kind {
	if e := As(err); e != nil {
		return e.Kind()
	}
	return KindInternal
}

// Normalize guarantees a classified error whose message is safe to return.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}
	if e := As(err); e != nil {
		return e
	}
	return Internal(err, MetadataFor(KindInternal).PublicMessage)
}
