package errors

// Upstream HTTP helpers for mapping response statuses to project ErrorCode and retry semantics

import (
	"context"
	stderrs "errors"
	"io"
	"net"
	"net/http"
	"net/url"
)

// Status families for upstream classification
var (
	// transientStatuses are statuses where a later retry may succeed
	transientStatuses = map[int]struct{}{
		http.StatusRequestTimeout:      {},
		http.StatusTooManyRequests:     {},
		http.StatusInternalServerError: {},
		http.StatusBadGateway:          {},
		http.StatusServiceUnavailable:  {},
		http.StatusGatewayTimeout:      {},
	}

	// permanentStatuses are statuses where retrying the same request cannot help
	permanentStatuses = map[int]struct{}{
		http.StatusBadRequest:          {},
		http.StatusUnauthorized:        {},
		http.StatusForbidden:           {},
		http.StatusNotFound:            {},
		http.StatusUnprocessableEntity: {},
	}
)

// TransientStatus reports whether an upstream status is worth retrying
func TransientStatus(status int) bool {
	_, ok := transientStatuses[status]
	return ok
}

// PermanentStatus reports whether an upstream status is a hard failure
func PermanentStatus(status int) bool {
	_, ok := permanentStatuses[status]
	return ok
}

// StatusErrorCode maps an upstream HTTP status to an ErrorCode
// 401 gets its own code so callers can surface credential problems distinctly;
// unlisted non-success statuses are treated as permanent
func StatusErrorCode(status int) ErrorCode {
	switch {
	case status == http.StatusUnauthorized:
		return ErrorCodeUnauthorized
	case TransientStatus(status):
		return ErrorCodeTransientUpstream
	default:
		return ErrorCodePermanentUpstream
	}
}

// FromStatus returns an *Error classified from an upstream HTTP status
func FromStatus(status int, msg string) error { return New(StatusErrorCode(status), msg) }

// FromStatusf is the formatted variant of FromStatus
func FromStatusf(status int, format string, a ...any) error {
	return Newf(StatusErrorCode(status), format, a...)
}

// IsRetryable reports whether an error represents a transient condition worth
// retrying. It handles project codes, transport-level failures, and truncated reads.
// Local cancellation is never retryable; request deadlines are (the caller's
// context guards the overall budget)
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if stderrs.Is(err, context.Canceled) {
		return false
	}

	// Classified errors decide by code
	if e, ok := As(err); ok {
		return e.Code() == ErrorCodeTransientUpstream
	}

	// Transport-level failures (dial, reset, timeout) from net/http
	var ue *url.Error
	if stderrs.As(err, &ue) {
		return !stderrs.Is(ue.Err, context.Canceled)
	}
	var ne net.Error
	if stderrs.As(err, &ne) {
		return true
	}

	// Truncated bodies surface as unexpected EOF
	root := Root(err)
	if stderrs.Is(root, io.ErrUnexpectedEOF) || stderrs.Is(root, io.EOF) {
		return true
	}

	return false
}
