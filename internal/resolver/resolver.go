// =============================================================================
// internal/resolver/resolver.go - Chain resolver over the referral walker
// =============================================================================
package resolver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/sirupsen/logrus"
)

// Resolver performs iterative trace-mode DNS resolution. All configuration
// is explicit; there is no ambient global state.
type Resolver struct {
	opts      Options
	exchanger Exchanger
	log       *logrus.Entry
}

// resolution holds the per-call plumbing shared down one resolve: the
// transport and the trace collector it reports into
type resolution struct {
	res       *Resolver
	transport *Transport
	collector *Collector
}

// New creates a resolver with the given options. Options.Roots must be
// populated (see pkg/roothints) before Resolve is called.
func New(opts Options) *Resolver {
	opts = opts.withDefaults()
	return &Resolver{
		opts:      opts,
		exchanger: newClientExchanger(opts.AttemptTimeout),
		log:       logrus.NewEntry(logrus.StandardLogger()),
	}
}

// NewWithExchanger creates a resolver with a custom transport exchanger,
// used by tests to substitute mocked servers
func NewWithExchanger(opts Options, exchanger Exchanger) *Resolver {
	r := New(opts)
	r.exchanger = exchanger
	return r
}

// SetLogger replaces the resolver's logger
func (r *Resolver) SetLogger(log *logrus.Logger) {
	r.log = logrus.NewEntry(log)
}

// Resolve runs a full iterative resolution for name and record type,
// following CNAME indirections until a terminal record or a bound is hit.
// A non-nil error is fatal (misconfiguration); resolution failures are
// reported through ResolutionResult.Status with the trace collected so far.
func (r *Resolver) Resolve(ctx context.Context, name string, rtype RecordType) (*ResolutionResult, error) {
	if len(r.opts.Roots) == 0 {
		return nil, ErrNoRootServers
	}
	if r.opts.OverallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.OverallTimeout)
		defer cancel()
	}

	collector := NewCollector()
	rs := &resolution{
		res:       r,
		transport: newTransport(r.exchanger, collector, r.opts, r.log),
		collector: collector,
	}

	result := &ResolutionResult{
		Query:     NewQuery(name, rtype),
		Timestamp: time.Now(),
	}

	visitedNames := make(map[string]struct{})
	current := dns.Fqdn(name)

	for hop := 0; ; hop++ {
		lower := strings.ToLower(current)
		if _, seen := visitedNames[lower]; seen {
			// exact revisit: fail without another network round-trip
			result.Status = StatusLoopDetected
			break
		}
		if hop >= r.opts.MaxAliasChain {
			result.Status = StatusLoopDetected
			break
		}
		visitedNames[lower] = struct{}{}
		result.AliasChain = append(result.AliasChain, current)

		walked := rs.walk(ctx, NewQuery(current, rtype), 0)
		if walked.status != StatusAnswered {
			result.Status = walked.status
			if walked.msg != nil {
				result.Answers = parseRecords(walked.msg.Answer)
			}
			break
		}

		answers := ownedAnswers(walked.msg, current)
		if rtype == RecordTypeCNAME || containsType(answers, rtype.Qtype()) {
			result.Answers = parseRecords(walked.msg.Answer)
			result.Status = StatusAnswered
			break
		}

		target, ok := cnameTarget(answers, current)
		if !ok {
			// answered, but neither the requested type nor an alias:
			// return whatever the authoritative server gave us
			result.Answers = parseRecords(walked.msg.Answer)
			result.Status = StatusAnswered
			break
		}
		r.log.WithFields(logrus.Fields{"name": current, "target": target}).Debug("following alias")
		current = target
	}

	// A blown global budget never yields a partial answer.
	if ctx.Err() != nil && result.Status != StatusAnswered {
		result.Status = StatusTimeout
		result.Answers = nil
	}
	if result.Status == StatusTimeout || result.Status == StatusNXDomain {
		result.Answers = nil
	}

	result.Trace = collector.Entries()
	result.Elapsed = collector.Elapsed()
	return result, nil
}

// ownedAnswers filters the answer section down to records owned by name
func ownedAnswers(msg *dns.Msg, name string) []dns.RR {
	if msg == nil {
		return nil
	}
	fqdn := dns.Fqdn(name)
	var out []dns.RR
	for _, rr := range msg.Answer {
		if strings.EqualFold(rr.Header().Name, fqdn) {
			out = append(out, rr)
		}
	}
	return out
}

func containsType(rrs []dns.RR, qtype uint16) bool {
	for _, rr := range rrs {
		if rr.Header().Rrtype == qtype {
			return true
		}
	}
	return false
}

// cnameTarget returns the alias target when the owned answers are a CNAME
// redirection for name
func cnameTarget(rrs []dns.RR, name string) (string, bool) {
	fqdn := dns.Fqdn(name)
	for _, rr := range rrs {
		if cname, ok := rr.(*dns.CNAME); ok && strings.EqualFold(cname.Hdr.Name, fqdn) {
			return strings.ToLower(dns.Fqdn(cname.Target)), true
		}
	}
	return "", false
}

// parseRecords converts wire records to the report format
func parseRecords(rrs []dns.RR) []ResponseRecord {
	var records []ResponseRecord
	for _, rr := range rrs {
		hdr := rr.Header()
		record := ResponseRecord{
			Name: hdr.Name,
			Type: RecordType(dns.TypeToString[hdr.Rrtype]),
			TTL:  hdr.Ttl,
		}

		switch v := rr.(type) {
		case *dns.A:
			record.Value = v.A.String()
		case *dns.AAAA:
			record.Value = v.AAAA.String()
		case *dns.CNAME:
			record.Value = v.Target
		case *dns.MX:
			record.Value = v.Mx
			record.Priority = int(v.Preference)
		case *dns.NS:
			record.Value = v.Ns
		case *dns.TXT:
			record.Value = strings.Join(v.Txt, " ")
		case *dns.PTR:
			record.Value = v.Ptr
		case *dns.SOA:
			record.Value = fmt.Sprintf("%s %s %d %d %d %d %d",
				v.Ns, v.Mbox, v.Serial, v.Refresh, v.Retry, v.Expire, v.Minttl)
		case *dns.SRV:
			record.Value = v.Target
			record.Priority = int(v.Priority)
		case *dns.OPT:
			continue
		default:
			record.Value = rr.String()
		}

		records = append(records, record)
	}
	return records
}
