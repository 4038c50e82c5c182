package resilience

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransientError_WrapsCause(t *testing.T) {
	cause := errors.New("betalist returned 503")
	te := NewTransientError(cause, 503)

	assert.Equal(t, "betalist returned 503", te.Error())
	assert.Equal(t, 503, te.StatusCode)
	require.ErrorIs(t, te, cause)
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("bad selector"), false},
		{"tagged transient", NewTransientError(errors.New("rate limited"), 429), true},
		{"wrapped transient", fmt.Errorf("fetch: %w", NewTransientError(errors.New("x"), 500)), true},
		{"connection reset", syscall.ECONNRESET, true},
		{"connection refused", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), true},
		{"dns failure text", errors.New("lookup betalist.com: no such host"), true},
		{"io timeout text", errors.New("read tcp: i/o timeout"), true},
		{"tls handshake text", errors.New("net/http: TLS handshake timeout"), true},
		{"unrelated text", errors.New("analysis payload invalid"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsTransient_NetTimeout(t *testing.T) {
	err := &net.DNSError{Err: "deadline exceeded", IsTimeout: true}
	assert.True(t, IsTransient(fmt.Errorf("discover: %w", err)))
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), "status %d", code)
	}
	for _, code := range []int{200, 301, 400, 401, 403, 404, 418, 501} {
		assert.False(t, IsTransientHTTPStatus(code), "status %d", code)
	}
}
