package httperror

import (
	"context"
	"fmt"
	"net/http"

	"github.com/stellar/go-stellar-sdk/support/log"
	"github.com/stellar/go-stellar-sdk/support/render/httpjson"
)

// Error codes carried in the response envelope. The capitalized values are
// part of the public contract and must not be normalized.
const (
	CodeBadRequest         = "bad_request"
	CodeBadCustomerRequest = "bad_customer_request"
	CodeInvalid            = "Invalid"
	CodeMultiple           = "Multiple"
	CodeInternal           = "internal_server_error"
	CodeUnavailable        = "service_unavailable"
)

// HTTPError is the uniform error envelope: every non-2xx JSON response is
// {"code": ..., "message": ...}.
type HTTPError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	// Err is an optional field that can be used to wrap the original error to pass it forward.
	Err error `json:"-"`
}

// ReportErrorFunc is a function type used to report unexpected errors.
type ReportErrorFunc func(ctx context.Context, err error, msg string)

// ReportError is a struct type used to report unexpected errors.
type ReportError struct {
	reportErrorFunc ReportErrorFunc
}

// defaultReportErrorFunc initializes ReportError with a default function.
var defaultReportErrorFunc = ReportError{
	reportErrorFunc: func(ctx context.Context, err error, msg string) {
		if msg != "" {
			err = fmt.Errorf("%s: %w", msg, err)
		}
		log.Ctx(ctx).WithStack(err).Errorf("%+v", err)
	},
}

// SetDefaultReportErrorFunc sets a new defaultReportErrorFunc to report unexpected errors.
func SetDefaultReportErrorFunc(fn ReportErrorFunc) {
	defaultReportErrorFunc.reportErrorFunc = fn
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) Render(w http.ResponseWriter) {
	httpjson.RenderStatus(w, e.StatusCode, e, httpjson.JSON)
}

func NewHTTPError(statusCode int, code, msg string, originalErr error) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Code:       code,
		Message:    msg,
		Err:        originalErr,
	}
}

// BadRequest is a 400 with the generic bad_request code.
func BadRequest(msg string, originalErr error) *HTTPError {
	if msg == "" {
		msg = "The request was invalid in some way."
	}
	return NewHTTPError(http.StatusBadRequest, CodeBadRequest, msg, originalErr)
}

// BadCustomerRequest is a 400 scoped to the onboarding submission payload.
func BadCustomerRequest(msg string, originalErr error) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, CodeBadCustomerRequest, msg, originalErr)
}

// NotFound is a 404 for an unknown resource id or session token.
func NotFound(msg string, originalErr error) *HTTPError {
	if msg == "" {
		msg = "Resource not found."
	}
	return NewHTTPError(http.StatusNotFound, CodeInvalid, msg, originalErr)
}

// Ambiguous is the 500 raised when a lookup that must match at most one
// record matched several.
func Ambiguous(msg string, originalErr error) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, CodeMultiple, msg, originalErr)
}

func InternalError(ctx context.Context, msg string, originalErr error) *HTTPError {
	if msg == "" {
		msg = "An internal error occurred while processing this request."
	}
	defaultReportErrorFunc.reportErrorFunc(ctx, originalErr, msg)
	return NewHTTPError(http.StatusInternalServerError, CodeInternal, msg, originalErr)
}

// ServiceUnavailable is a 503 for operations that depend on a component that
// is currently not accepting work.
func ServiceUnavailable(msg string, originalErr error) *HTTPError {
	if msg == "" {
		msg = "This operation is temporarily unavailable."
	}
	return NewHTTPError(http.StatusServiceUnavailable, CodeUnavailable, msg, originalErr)
}

// NotImplemented is a 501 for operations unavailable in the current feed
// configuration.
func NotImplemented(msg string, originalErr error) *HTTPError {
	if msg == "" {
		msg = "This operation is not available."
	}
	return NewHTTPError(http.StatusNotImplemented, CodeBadRequest, msg, originalErr)
}
