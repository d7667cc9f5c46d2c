// =============================================================================
// internal/resolver/transport.go - Single-server query transport
// =============================================================================
package resolver

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	transportUDP = "udp"
	transportTCP = "tcp"

	dnsPort     = "53"
	ednsUDPSize = 1232
)

// Exchanger sends one wire message to one server over one transport.
// Tests substitute a mock; production uses miekg/dns clients.
type Exchanger interface {
	Exchange(ctx context.Context, msg *dns.Msg, server string, network string) (*dns.Msg, time.Duration, error)
}

// clientExchanger is the production Exchanger backed by dns.Client
type clientExchanger struct {
	udp *dns.Client
	tcp *dns.Client
}

func newClientExchanger(timeout time.Duration) *clientExchanger {
	return &clientExchanger{
		udp: &dns.Client{Net: "udp", Timeout: timeout, UDPSize: ednsUDPSize},
		tcp: &dns.Client{Net: "tcp", Timeout: timeout},
	}
}

func (e *clientExchanger) Exchange(ctx context.Context, msg *dns.Msg, server string, network string) (*dns.Msg, time.Duration, error) {
	client := e.udp
	if network == transportTCP {
		client = e.tcp
	}
	return client.ExchangeContext(ctx, msg, server)
}

// buildQuery constructs the wire message for an iterative query
func buildQuery(q Query) *dns.Msg {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(q.Name), q.Type.Qtype())
	msg.RecursionDesired = q.RecursionDesired
	msg.SetEdns0(ednsUDPSize, false)
	return msg
}

// Transport sends a single query to a single server with bounded retries
// and UDP-to-TCP fallback on truncation. Every attempt, including failed
// ones, is reported to the collector.
type Transport struct {
	exchanger Exchanger
	collector *Collector
	opts      Options
	log       *logrus.Entry
}

func newTransport(exchanger Exchanger, collector *Collector, opts Options, log *logrus.Entry) *Transport {
	return &Transport{
		exchanger: exchanger,
		collector: collector,
		opts:      opts,
		log:       log,
	}
}

// Send queries one server for q, staying within the per-server wall-clock
// budget. A truncated UDP response, or a UDP attempt failing because the
// reply did not fit the message size, triggers exactly one round of TCP
// attempts to the same server before any error surfaces to the caller.
func (t *Transport) Send(ctx context.Context, server net.IP, zone string, q Query) (*dns.Msg, error) {
	if server == nil {
		return nil, errors.Wrap(ErrNetworkUnreachable, "candidate has no address")
	}
	msg := buildQuery(q)
	addr := net.JoinHostPort(server.String(), dnsPort)
	budget := time.Now().Add(t.opts.ServerBudget)

	resp, err := t.attempt(ctx, msg, addr, zone, q, transportUDP, budget)
	switch {
	case err == nil && resp.Truncated:
		t.log.WithFields(logrus.Fields{"server": addr, "name": q.Name}).
			Debug("response truncated, retrying over tcp")
		resp, err = t.attempt(ctx, msg, addr, zone, q, transportTCP, budget)
	case err != nil && errors.Is(err, ErrOversized):
		t.log.WithFields(logrus.Fields{"server": addr, "name": q.Name}).
			Debug("udp response oversized, retrying over tcp")
		resp, err = t.attempt(ctx, msg, addr, zone, q, transportTCP, budget)
	}
	return resp, err
}

// attempt runs up to Retries tries over one transport, each with an
// independent timeout, checking the outer deadline before every try
func (t *Transport) attempt(ctx context.Context, msg *dns.Msg, addr, zone string, q Query, network string, budget time.Time) (*dns.Msg, error) {
	var lastErr error
	for try := 0; try < t.opts.Retries; try++ {
		if ctx.Err() != nil {
			return nil, ErrGlobalTimeout
		}
		if !time.Now().Before(budget) {
			if lastErr == nil {
				lastErr = ErrTimeout
			}
			return nil, errors.Wrapf(lastErr, "server budget exhausted for %s", addr)
		}

		attemptCtx, cancel := context.WithTimeout(ctx, t.opts.AttemptTimeout)
		started := time.Now()
		resp, rtt, err := t.exchanger.Exchange(attemptCtx, msg, addr, network)
		cancel()
		if rtt <= 0 {
			rtt = time.Since(started)
		}

		entry := TraceEntry{
			Server:    addr,
			Zone:      zone,
			QueryName: dns.Fqdn(q.Name),
			QueryType: q.Type,
			Transport: network,
			Elapsed:   rtt,
		}

		if err != nil {
			classified := classifyNetError(err)
			// A per-attempt deadline is an ordinary Timeout; only the
			// parent context expiring means the global budget is gone.
			if ctx.Err() != nil {
				classified = ErrGlobalTimeout
			} else if errors.Is(classified, ErrGlobalTimeout) {
				classified = ErrTimeout
			}
			entry.Error = classified.Error()
			t.collector.Record(entry)
			if errors.Is(classified, ErrGlobalTimeout) {
				return nil, classified
			}
			// retrying the same transport cannot shrink the reply
			if errors.Is(classified, ErrOversized) {
				return nil, classified
			}
			lastErr = classified
			continue
		}

		entry.Rcode = rcodeName(resp.Rcode)
		entry.Bytes = resp.Len()

		if !validResponse(msg, resp) {
			entry.Error = ErrMalformed.Error()
			t.collector.Record(entry)
			lastErr = ErrMalformed
			continue
		}
		t.collector.Record(entry)

		if resp.Rcode == dns.RcodeRefused {
			return resp, errors.Wrapf(ErrRefused, "server %s", addr)
		}
		return resp, nil
	}
	if lastErr == nil {
		lastErr = ErrTimeout
	}
	return nil, errors.Wrapf(lastErr, "all %s attempts to %s failed", network, addr)
}

// validResponse rejects mismatched-transaction and questionless replies
func validResponse(sent, got *dns.Msg) bool {
	if got == nil {
		return false
	}
	if got.Id != sent.Id {
		return false
	}
	if !got.Response {
		return false
	}
	if len(got.Question) > 0 && len(sent.Question) > 0 {
		if !strings.EqualFold(got.Question[0].Name, sent.Question[0].Name) {
			return false
		}
	}
	return true
}

func rcodeName(rcode int) string {
	if name, ok := dns.RcodeToString[rcode]; ok {
		return name
	}
	return "UNKNOWN"
}
