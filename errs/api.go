package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error sentinel values
var (
	ErrBadRequest   = errors.New("malformed request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("operation not allowed")
	ErrInternal     = errors.New("internal server error")
	ErrUpstream     = errors.New("upstream service failed")
)

// Request & input-validation errors
var (
	ErrMalformedPayload     = errors.New("malformed payload")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidField         = errors.New("invalid field")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrPayloadTooLarge      = errors.New("payload too large")
)

// Credential errors. Each carries a machine-readable code so clients can
// decide between re-login and retry.
var (
	ErrTokenMissing   = errors.New("no credential provided")
	ErrTokenExpired   = errors.New("credential expired")
	ErrTokenSignature = errors.New("credential signature mismatch")
	ErrTokenInvalid   = errors.New("invalid credential")
)

// Machine-readable codes surfaced in 401 responses.
const (
	CodeTokenMissing      = "TOKEN_MISSING"
	CodeTokenExpired      = "TOKEN_EXPIRED"
	CodeTokenBadSignature = "INVALID_TOKEN_SIGNATURE"
	CodeTokenInvalid      = "INVALID_TOKEN"
)

type ApiErr struct {
	StatusCode int
	err        error
	Code       string   // machine-readable reason code, when one exists
	Details    string   // additional details about the error
	Field      string   // field that caused the error (for validation errors)
	Fields     []string // all offending fields, when more than one
	Cause      error    // the underlying cause of the error
}

// implements error interface. this allows us to pass an instance of ApiErr
// as an argument of type `error`
func (e *ApiErr) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.err.Error(), e.Details)
	}
	return e.err.Error()
}

// GetFullError returns a recursive error message including all causes
func (e *ApiErr) GetFullError() string {
	msg := e.Error()
	if e.Cause != nil {
		if apiErr, ok := e.Cause.(*ApiErr); ok {
			msg = fmt.Sprintf("%s -> %s", msg, apiErr.GetFullError())
		} else {
			msg = fmt.Sprintf("%s -> %s", msg, e.Cause.Error())
		}
	}
	return msg
}

// this function allows us to do the following:
// err := &ApiErr{StatusCode: ..., err: someSentinelError}
// errors.Is(err, someSentinelError) ==> evaluates to true
func (e *ApiErr) Unwrap() error {
	return e.err
}

func NewBadRequestError(message string) *ApiErr {
	return &ApiErr{StatusCode: http.StatusBadRequest, err: errors.New(message)}
}

func NewUnauthorizedError(message string) *ApiErr {
	return &ApiErr{StatusCode: http.StatusUnauthorized, err: errors.New(message)}
}

func NewNotFoundError(message string) *ApiErr {
	return &ApiErr{StatusCode: http.StatusNotFound, err: errors.New(message)}
}

func NewConflictError(message string) *ApiErr {
	return &ApiErr{StatusCode: http.StatusConflict, err: errors.New(message)}
}

func NewInternalError(message string) *ApiErr {
	return &ApiErr{StatusCode: http.StatusInternalServerError, err: errors.New(message)}
}

// Validation error constructors

func NewMissingRequiredFieldError(fieldName string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrMissingRequiredField,
		Details:    fmt.Sprintf("missing required field: %s", fieldName),
		Field:      fieldName,
	}
}

func NewInvalidFieldError(fieldName string, reason string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrInvalidField,
		Details:    fmt.Sprintf("invalid field %s: %s", fieldName, reason),
		Field:      fieldName,
	}
}

// NewValidationError reports every offending field of a payload at once.
func NewValidationError(fields []string, details string) *ApiErr {
	apiErr := &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrInvalidField,
		Details:    details,
		Fields:     fields,
	}
	if len(fields) == 1 {
		apiErr.Field = fields[0]
	}
	return apiErr
}

func NewMalformedPayloadError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrMalformedPayload,
		Cause:      cause,
		Field:      "payload",
	}
}

// Upload error constructors

func NewUnsupportedMediaTypeError(contentType string, allowedTypes []string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnsupportedMediaType,
		err:        ErrUnsupportedMediaType,
		Details:    fmt.Sprintf("unsupported media type: %s. Allowed types: %v", contentType, allowedTypes),
		Field:      "content_type",
	}
}

func NewPayloadTooLargeError(maxSize int64) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusRequestEntityTooLarge,
		err:        ErrPayloadTooLarge,
		Details:    fmt.Sprintf("request body exceeded maximum allowed size of %d bytes", maxSize),
		Field:      "body_size",
	}
}

// Credential error constructors. ShouldClearCookie marks errors where the
// client is holding a dead credential it will otherwise keep resending.

func NewTokenMissingError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrTokenMissing,
		Code:       CodeTokenMissing,
	}
}

func NewTokenExpiredError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrTokenExpired,
		Code:       CodeTokenExpired,
	}
}

func NewTokenSignatureError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrTokenSignature,
		Code:       CodeTokenBadSignature,
	}
}

func NewTokenInvalidError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrTokenInvalid,
		Code:       CodeTokenInvalid,
		Cause:      cause,
	}
}

// ShouldClearCookie reports whether the failed credential warrants telling
// the client to drop its session cookie.
func ShouldClearCookie(err error) bool {
	return errors.Is(err, ErrTokenExpired) || errors.Is(err, ErrTokenSignature)
}

// Upstream error constructor. Covers the media host and the mail transport.
func NewUpstreamError(service string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        ErrUpstream,
		Details:    fmt.Sprintf("%s rejected the request or is unreachable", service),
		Cause:      cause,
	}
}

// Error type checkers

func IsBadRequest(err error) bool {
	return errors.Is(err, ErrBadRequest)
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrTokenMissing) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenSignature) ||
		errors.Is(err, ErrTokenInvalid)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsUnsupportedMediaType(err error) bool {
	return errors.Is(err, ErrUnsupportedMediaType)
}

func IsPayloadTooLarge(err error) bool {
	return errors.Is(err, ErrPayloadTooLarge)
}

func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstream)
}
