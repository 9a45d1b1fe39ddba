package rest

import (
	"io"
	"net"
	"net/http"
	"slices"
	"syscall"

	"github.com/pkg/errors"
)

var retryableStatuses = []int{
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// errors seen when a connection drops after the request may have been written.
var droppedConnErrors = []error{
	syscall.ECONNRESET,
	syscall.ETIMEDOUT,
	syscall.EPIPE,
	io.ErrUnexpectedEOF,
	io.EOF,
	net.ErrClosed,
}

// IsRetryableStatus reports whether an idempotent request that got this response
// is worth another attempt.
func IsRetryableStatus(r *Response) bool {
	return slices.Contains(retryableStatuses, r.StatusCode)
}

// IsUnsentError reports whether err happened before the request reached the
// server, so sending it again cannot repeat its effect.
func IsUnsentError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}

	return errors.Is(err, syscall.ECONNREFUSED)
}

// IsRetryableError reports whether err is a connection failure an idempotent
// request can be retried after.
func IsRetryableError(err error) bool {
	if IsUnsentError(err) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	for _, target := range droppedConnErrors {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}
