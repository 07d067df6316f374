package contentrouter

import (
	"errors"
	"net"
	"strings"

	"github.com/codeready-toolchain/swarmweave/pkg/swarmerrors"
)

var (
	errServerError = errors.New("server error")
	errRateLimit   = errors.New("rate limited")
)

// classifyTransportError wraps a network-level failure as a
// swarmerrors.TransientError so the Scheduler's retry loop (spec.md §4.5)
// can recognize it without string-matching.
func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return swarmerrors.NewTransientError("timeout", true, err)
	}
	if strings.Contains(err.Error(), "connection reset") || strings.Contains(err.Error(), "EOF") {
		return swarmerrors.NewTransientError("connection_reset", true, err)
	}
	return swarmerrors.NewTransientError("connection_error", true, err)
}

// classifyStatusError wraps an HTTP status-derived failure similarly, used
// by callers that need to inspect wrapped sentinel errors.
func classifyStatusError(err error) error {
	switch {
	case errors.Is(err, errServerError):
		return swarmerrors.NewTransientError("server_error", true, err)
	case errors.Is(err, errRateLimit):
		return swarmerrors.NewTransientError("rate_limit", true, err)
	default:
		return err
	}
}
