package resolver

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/miekg/dns"
)

// timeoutError mimics a transport read deadline expiring
type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

// mockReply scripts the behavior of one server for one question
type mockReply struct {
	answer    []dns.RR
	authority []dns.RR
	extra     []dns.RR
	rcode     int
	truncated bool // only applied to udp replies
	badID     bool // corrupt the transaction id
	err       error
	delay     time.Duration
}

type mockCall struct {
	server  string
	name    string
	qtype   uint16
	network string
}

// mockExchanger serves scripted replies keyed by server, question and
// optionally network. Unscripted questions time out.
type mockExchanger struct {
	mu      sync.Mutex
	replies map[string]mockReply
	calls   []mockCall
}

func newMockExchanger() *mockExchanger {
	return &mockExchanger{replies: make(map[string]mockReply)}
}

func replyKey(server, name string, qtype uint16) string {
	return fmt.Sprintf("%s/%s/%s", server, dns.Fqdn(name), dns.TypeToString[qtype])
}

// on scripts a reply for any transport
func (m *mockExchanger) on(server, name string, qtype uint16, reply mockReply) {
	m.replies[replyKey(server, name, qtype)] = reply
}

// onNetwork scripts a transport-specific reply, taking priority over on
func (m *mockExchanger) onNetwork(network, server, name string, qtype uint16, reply mockReply) {
	m.replies[network+"|"+replyKey(server, name, qtype)] = reply
}

func (m *mockExchanger) Exchange(ctx context.Context, msg *dns.Msg, server string, network string) (*dns.Msg, time.Duration, error) {
	q := msg.Question[0]

	m.mu.Lock()
	m.calls = append(m.calls, mockCall{server: server, name: q.Name, qtype: q.Qtype, network: network})
	reply, ok := m.replies[network+"|"+replyKey(server, q.Name, q.Qtype)]
	if !ok {
		reply, ok = m.replies[replyKey(server, q.Name, q.Qtype)]
	}
	m.mu.Unlock()

	if !ok {
		return nil, 0, timeoutError{}
	}
	if reply.delay > 0 {
		select {
		case <-time.After(reply.delay):
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		}
	}
	if reply.err != nil {
		return nil, 0, reply.err
	}

	resp := new(dns.Msg)
	resp.SetReply(msg)
	resp.Rcode = reply.rcode
	resp.Answer = reply.answer
	resp.Ns = reply.authority
	resp.Extra = reply.extra
	if network == transportUDP {
		resp.Truncated = reply.truncated
	}
	if reply.badID {
		resp.Id = msg.Id + 1
	}
	return resp, time.Millisecond, nil
}

func (m *mockExchanger) recordedCalls() []mockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]mockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Record construction helpers

func aRR(owner, ip string) *dns.A {
	return &dns.A{
		Hdr: dns.RR_Header{Name: dns.Fqdn(owner), Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 300},
		A:   net.ParseIP(ip).To4(),
	}
}

func aaaaRR(owner, ip string) *dns.AAAA {
	return &dns.AAAA{
		Hdr:  dns.RR_Header{Name: dns.Fqdn(owner), Rrtype: dns.TypeAAAA, Class: dns.ClassINET, Ttl: 300},
		AAAA: net.ParseIP(ip),
	}
}

func nsRR(zone, target string) *dns.NS {
	return &dns.NS{
		Hdr: dns.RR_Header{Name: dns.Fqdn(zone), Rrtype: dns.TypeNS, Class: dns.ClassINET, Ttl: 172800},
		Ns:  dns.Fqdn(target),
	}
}

func cnameRR(owner, target string) *dns.CNAME {
	return &dns.CNAME{
		Hdr:    dns.RR_Header{Name: dns.Fqdn(owner), Rrtype: dns.TypeCNAME, Class: dns.ClassINET, Ttl: 300},
		Target: dns.Fqdn(target),
	}
}

func soaRR(zone string) *dns.SOA {
	return &dns.SOA{
		Hdr:     dns.RR_Header{Name: dns.Fqdn(zone), Rrtype: dns.TypeSOA, Class: dns.ClassINET, Ttl: 900},
		Ns:      dns.Fqdn("ns1." + zone),
		Mbox:    dns.Fqdn("hostmaster." + zone),
		Serial:  2024010101,
		Refresh: 7200,
		Retry:   900,
		Expire:  1209600,
		Minttl:  86400,
	}
}

// testOptions returns fast deterministic options for mocked tests
func testOptions(roots ...string) Options {
	opts := DefaultOptions()
	opts.AttemptTimeout = 250 * time.Millisecond
	opts.ServerBudget = 2 * time.Second
	opts.OverallTimeout = 10 * time.Second
	opts.Retries = 2
	for _, r := range roots {
		opts.Roots = append(opts.Roots, net.ParseIP(r))
	}
	return opts
}

// scriptComHierarchy wires the canonical three-level mock: root refers to
// .com, .com refers to the example.com nameserver, which owns the zone.
// Returns the authoritative server address (with port).
func scriptComHierarchy(m *mockExchanger, qname string, qtype uint16) string {
	const (
		rootAddr = "198.41.0.4:53"
		tldAddr  = "192.5.6.30:53"
		authAddr = "93.184.216.1:53"
	)
	m.on(rootAddr, qname, qtype, mockReply{
		authority: []dns.RR{nsRR("com.", "a.gtld-servers.net.")},
		extra:     []dns.RR{aRR("a.gtld-servers.net.", "192.5.6.30")},
	})
	m.on(tldAddr, qname, qtype, mockReply{
		authority: []dns.RR{nsRR("example.com.", "ns1.example.com.")},
		extra:     []dns.RR{aRR("ns1.example.com.", "93.184.216.1")},
	})
	return authAddr
}
