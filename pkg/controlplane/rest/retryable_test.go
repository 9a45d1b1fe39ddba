package rest_test

import (
	"io"
	"net"
	"net/http"
	"net/url"
	"syscall"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/askiada/pipeline-publish/pkg/controlplane/rest"
)

func TestIsRetryableStatus(t *testing.T) {
	t.Parallel()

	for code, want := range map[int]bool{
		http.StatusOK:                  false,
		http.StatusBadRequest:          false,
		http.StatusNotFound:            false,
		http.StatusConflict:            false,
		http.StatusTooManyRequests:     true,
		http.StatusInternalServerError: true,
		http.StatusBadGateway:          true,
		http.StatusServiceUnavailable:  true,
		http.StatusGatewayTimeout:      true,
	} {
		resp := &rest.Response{Response: &http.Response{StatusCode: code}}
		assert.Equal(t, want, rest.IsRetryableStatus(resp), "status %d", code)
	}
}

func TestIsRetryableError(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		err  error
		want bool
	}{
		"connection refused": {err: &url.Error{Op: "Get", URL: "http://x", Err: syscall.ECONNREFUSED}, want: true},
		"unexpected eof":     {err: errors.Wrap(io.ErrUnexpectedEOF, "read"), want: true},
		"closed connection":  {err: &url.Error{Op: "Get", URL: "http://x", Err: net.ErrClosed}, want: true},
		"connection reset":   {err: &url.Error{Op: "Post", URL: "http://x", Err: &net.OpError{Op: "read", Net: "tcp", Err: syscall.ECONNRESET}}, want: true},
		"other":              {err: errors.New("certificate signed by unknown authority"), want: false},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, rest.IsRetryableError(tc.err))
		})
	}
}

func TestIsUnsentError(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		err  error
		want bool
	}{
		"dial refused": {
			err:  &url.Error{Op: "Post", URL: "http://x", Err: &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}},
			want: true,
		},
		"unknown host": {
			err:  &url.Error{Op: "Post", URL: "http://x", Err: &net.DNSError{Err: "no such host", Name: "x", IsNotFound: true}},
			want: true,
		},
		"reset after write": {
			err:  &url.Error{Op: "Post", URL: "http://x", Err: &net.OpError{Op: "read", Net: "tcp", Err: syscall.ECONNRESET}},
			want: false,
		},
		"unexpected eof": {err: errors.Wrap(io.ErrUnexpectedEOF, "read"), want: false},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, rest.IsUnsentError(tc.err))
		})
	}
}
