// =============================================================================
// internal/resolver/errors.go - Resolver error taxonomy
// =============================================================================
package resolver

import (
	"context"
	"net"
	"strings"

	"github.com/miekg/dns"
	"github.com/pkg/errors"
)

// Transport-level errors, surfaced per attempt and retried locally by the
// transport layer before propagating as candidate failures. ErrOversized
// marks a UDP reply that did not fit the advertised message size; the
// transport falls back to TCP instead of retrying it.
var (
	ErrTimeout            = errors.New("query timed out")
	ErrRefused            = errors.New("server refused query")
	ErrMalformed          = errors.New("malformed or mismatched response")
	ErrOversized          = errors.New("response exceeded udp message size")
	ErrNetworkUnreachable = errors.New("network unreachable")
)

// Resolution-level errors, mapped onto terminal statuses by the chain
// resolver. ErrDepthExceeded is kept distinct from protocol SERVFAIL so
// the report can say which one happened.
var (
	ErrLoopDetected   = errors.New("referral loop detected")
	ErrDepthExceeded  = errors.New("referral depth exceeded")
	ErrChainTooLong   = errors.New("alias chain too long")
	ErrNoUsableAnswer = errors.New("no usable answer or delegation")
	ErrGlobalTimeout  = errors.New("overall resolution budget exceeded")
	ErrNoRootServers  = errors.New("no root servers configured")
)

// classifyNetError maps a raw transport error onto the taxonomy
func classifyNetError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	if errors.Is(err, context.Canceled) {
		return ErrGlobalTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	msg := err.Error()
	if errors.Is(err, dns.ErrBuf) || strings.Contains(msg, "overflow") {
		return ErrOversized
	}
	if strings.Contains(msg, "network is unreachable") ||
		strings.Contains(msg, "no route to host") ||
		strings.Contains(msg, "connection refused") {
		return ErrNetworkUnreachable
	}
	return errors.Wrap(ErrMalformed, msg)
}
