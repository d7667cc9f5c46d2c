// =============================================================================
// internal/resolver/walker.go - Iterative referral descent
// =============================================================================
package resolver

import (
	"context"
	"net"
	"strings"

	"github.com/miekg/dns"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// resolutionState is owned by exactly one walker invocation and discarded
// when it returns. The visited-server set only ever grows within a descent
// and is never shared across sibling retries or nested glue walks.
type resolutionState struct {
	zone           string
	candidates     []ServerCandidate
	visitedServers map[string]struct{}
	depth          int
}

// walkResult is the classified outcome of one referral descent
type walkResult struct {
	status Status
	msg    *dns.Msg
	reason error
}

// walk drives the descent from the root servers down to the server
// authoritative for q.Name. glueDepth counts how many nested walks were
// needed to get here; it bounds glue-address resolution.
func (rs *resolution) walk(ctx context.Context, q Query, glueDepth int) *walkResult {
	state := &resolutionState{
		zone:           ".",
		candidates:     rootCandidates(rs.res.opts.Roots),
		visitedServers: make(map[string]struct{}),
	}
	log := rs.res.log.WithFields(logrus.Fields{"name": q.Name, "type": q.Type})
	log.Debug("starting referral walk")

	for {
		if ctx.Err() != nil {
			return &walkResult{status: StatusTimeout, reason: ErrGlobalTimeout}
		}
		if state.depth > rs.res.opts.MaxZoneDepth {
			log.WithField("depth", state.depth).Warn("referral depth exceeded")
			return &walkResult{status: StatusServFail, reason: ErrDepthExceeded}
		}

		resp, err := rs.queryZone(ctx, state, q)
		if err != nil {
			switch {
			case errors.Is(err, ErrGlobalTimeout):
				return &walkResult{status: StatusTimeout, reason: err}
			case errors.Is(err, ErrLoopDetected):
				return &walkResult{status: StatusLoopDetected, reason: err}
			default:
				// every candidate at this zone failed with the same class
				return &walkResult{status: StatusServFail, reason: err}
			}
		}

		if resp.Rcode == dns.RcodeNameError {
			log.WithField("zone", state.zone).Debug("authoritative NXDOMAIN")
			return &walkResult{status: StatusNXDomain, msg: resp}
		}
		if hasAnswerFor(resp, q) {
			log.WithField("zone", state.zone).Debug("answer received")
			return &walkResult{status: StatusAnswered, msg: resp}
		}

		nextZone, nsNames := delegation(resp)
		if len(nsNames) == 0 {
			return &walkResult{status: StatusServFail, msg: resp, reason: ErrNoUsableAnswer}
		}
		if !strictlyDeeper(nextZone, state.zone) {
			return &walkResult{
				status: StatusLoopDetected,
				reason: errors.Wrapf(ErrLoopDetected, "referral from %q back to %q", state.zone, nextZone),
			}
		}

		candidates := glueCandidates(resp, nsNames, rs.res.opts)
		candidates = rs.resolveMissingGlue(ctx, candidates, glueDepth)
		usable := withAddresses(candidates)
		if len(usable) == 0 {
			return &walkResult{
				status: StatusServFail,
				reason: errors.Wrapf(ErrNoUsableAnswer, "no reachable nameserver for zone %q", nextZone),
			}
		}

		log.WithFields(logrus.Fields{
			"zone":       nextZone,
			"candidates": len(usable),
		}).Debug("following referral")
		state.zone = nextZone
		state.candidates = usable
		state.depth++
	}
}

// queryZone tries the zone's candidates in listed order. A candidate whose
// address was already queried in this descent means the referral graph
// points back at itself.
func (rs *resolution) queryZone(ctx context.Context, state *resolutionState, q Query) (*dns.Msg, error) {
	var lastErr error
	for _, cand := range state.candidates {
		if cand.Addr == nil {
			continue
		}
		key := cand.Addr.String()
		if _, seen := state.visitedServers[key]; seen {
			return nil, errors.Wrapf(ErrLoopDetected, "server %s already visited in this chain", key)
		}
		state.visitedServers[key] = struct{}{}

		resp, err := rs.transport.Send(ctx, cand.Addr, state.zone, q)
		if err != nil {
			if errors.Is(err, ErrGlobalTimeout) {
				return nil, err
			}
			lastErr = err
			continue
		}
		if resp.Rcode == dns.RcodeServerFailure {
			lastErr = errors.Errorf("server %s returned SERVFAIL", key)
			continue
		}
		return resp, nil
	}
	if lastErr == nil {
		lastErr = errors.Wrapf(ErrNoUsableAnswer, "zone %q has no addressable candidates", state.zone)
	}
	return nil, lastErr
}

// hasAnswerFor reports whether resp directly answers q: a record of the
// requested type, or a CNAME, owned by the query name
func hasAnswerFor(resp *dns.Msg, q Query) bool {
	qname := dns.Fqdn(q.Name)
	qtype := q.Type.Qtype()
	for _, rr := range resp.Answer {
		hdr := rr.Header()
		if !strings.EqualFold(hdr.Name, qname) {
			continue
		}
		if hdr.Rrtype == qtype || hdr.Rrtype == dns.TypeCNAME {
			return true
		}
	}
	return false
}

// delegation extracts the referred zone and its NS names, in listed order,
// from the authority section
func delegation(resp *dns.Msg) (string, []string) {
	var zone string
	var names []string
	for _, rr := range resp.Ns {
		ns, ok := rr.(*dns.NS)
		if !ok {
			continue
		}
		if zone == "" {
			zone = strings.ToLower(ns.Hdr.Name)
		}
		if strings.EqualFold(ns.Hdr.Name, zone) {
			names = append(names, strings.ToLower(ns.Ns))
		}
	}
	return zone, names
}

// strictlyDeeper reports whether next is a proper subdomain of cur, so a
// referral always descends
func strictlyDeeper(next, cur string) bool {
	next = dns.Fqdn(next)
	cur = dns.Fqdn(cur)
	return dns.CountLabel(next) > dns.CountLabel(cur) && dns.IsSubDomain(cur, next)
}

// glueCandidates builds the next zone's candidate set: one candidate per
// glue address, in NS listed order, plus address-less candidates for NS
// names the referral carried no glue for
func glueCandidates(resp *dns.Msg, nsNames []string, opts Options) []ServerCandidate {
	var out []ServerCandidate
	for _, name := range nsNames {
		found := false
		for _, rr := range resp.Extra {
			switch a := rr.(type) {
			case *dns.A:
				if !opts.IPv6Only && strings.EqualFold(a.Hdr.Name, name) {
					out = append(out, ServerCandidate{Name: name, Addr: a.A})
					found = true
				}
			case *dns.AAAA:
				if !opts.IPv4Only && strings.EqualFold(a.Hdr.Name, name) {
					out = append(out, ServerCandidate{Name: name, Addr: a.AAAA})
					found = true
				}
			}
		}
		if !found {
			out = append(out, ServerCandidate{Name: name})
		}
	}
	return out
}

// withAddresses filters out candidates whose address never resolved
func withAddresses(candidates []ServerCandidate) []ServerCandidate {
	out := make([]ServerCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Addr != nil {
			out = append(out, c)
		}
	}
	return out
}

func rootCandidates(roots []net.IP) []ServerCandidate {
	out := make([]ServerCandidate, 0, len(roots))
	for _, ip := range roots {
		out = append(out, ServerCandidate{Name: ".", Addr: ip})
	}
	return out
}
