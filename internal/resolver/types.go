// =============================================================================
// internal/resolver/types.go - Core resolver data structures
// =============================================================================
package resolver

import (
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/pkg/errors"
)

// RecordType represents different DNS record types
type RecordType string

const (
	RecordTypeA     RecordType = "A"
	RecordTypeAAAA  RecordType = "AAAA"
	RecordTypeCNAME RecordType = "CNAME"
	RecordTypeMX    RecordType = "MX"
	RecordTypeNS    RecordType = "NS"
	RecordTypeTXT   RecordType = "TXT"
	RecordTypeSOA   RecordType = "SOA"
	RecordTypePTR   RecordType = "PTR"
	RecordTypeSRV   RecordType = "SRV"
)

// ParseRecordType parses a textual record type, case-insensitively.
// Unknown types are rejected rather than defaulting to A.
func ParseRecordType(s string) (RecordType, error) {
	switch rt := RecordType(strings.ToUpper(strings.TrimSpace(s))); rt {
	case RecordTypeA, RecordTypeAAAA, RecordTypeCNAME, RecordTypeMX,
		RecordTypeNS, RecordTypeTXT, RecordTypeSOA, RecordTypePTR, RecordTypeSRV:
		return rt, nil
	default:
		return "", errors.Errorf("unsupported record type: %q", s)
	}
}

// Qtype converts a RecordType to the wire-format type code
func (t RecordType) Qtype() uint16 {
	switch t {
	case RecordTypeA:
		return dns.TypeA
	case RecordTypeAAAA:
		return dns.TypeAAAA
	case RecordTypeCNAME:
		return dns.TypeCNAME
	case RecordTypeMX:
		return dns.TypeMX
	case RecordTypeNS:
		return dns.TypeNS
	case RecordTypeTXT:
		return dns.TypeTXT
	case RecordTypeSOA:
		return dns.TypeSOA
	case RecordTypePTR:
		return dns.TypePTR
	case RecordTypeSRV:
		return dns.TypeSRV
	default:
		return dns.TypeA
	}
}

// Status is the terminal outcome of one resolution
type Status string

const (
	StatusAnswered     Status = "ANSWERED"
	StatusNXDomain     Status = "NXDOMAIN"
	StatusServFail     Status = "SERVFAIL"
	StatusTimeout      Status = "TIMEOUT"
	StatusLoopDetected Status = "LOOP_DETECTED"
)

// Query represents a single iterative DNS question. RecursionDesired is
// always false for iterative mode; it is kept explicit so the wire query
// matches what was asked.
type Query struct {
	Name             string     `json:"name"`
	Type             RecordType `json:"type"`
	RecursionDesired bool       `json:"recursion_desired"`
}

// NewQuery returns an iterative-mode query for name and record type
func NewQuery(name string, rtype RecordType) Query {
	return Query{
		Name:             dns.Fqdn(name),
		Type:             rtype,
		RecursionDesired: false,
	}
}

// ServerCandidate is one nameserver extracted from a referral. Addr is nil
// when the referral carried no glue and the address still needs resolving.
type ServerCandidate struct {
	Name string `json:"name"`
	Addr net.IP `json:"addr,omitempty"`
}

// ResponseRecord represents a single record parsed from a wire response
type ResponseRecord struct {
	Name     string     `json:"name"`
	Type     RecordType `json:"type"`
	Value    string     `json:"value"`
	TTL      uint32     `json:"ttl"`
	Priority int        `json:"priority,omitempty"` // For MX, SRV records
}

// TraceEntry records one transport attempt, successful or not
type TraceEntry struct {
	Server    string        `json:"server"`
	Zone      string        `json:"zone"`
	QueryName string        `json:"query_name"`
	QueryType RecordType    `json:"query_type"`
	Transport string        `json:"transport"` // "udp" or "tcp"
	Rcode     string        `json:"rcode,omitempty"`
	Elapsed   time.Duration `json:"elapsed"`
	Bytes     int           `json:"bytes"`
	Error     string        `json:"error,omitempty"`
}

// ResolutionResult is the final outcome handed to the CLI layer
type ResolutionResult struct {
	Query      Query            `json:"query"`
	Answers    []ResponseRecord `json:"answers"`
	AliasChain []string         `json:"alias_chain"`
	Trace      []TraceEntry     `json:"trace"`
	Status     Status           `json:"status"`
	Elapsed    time.Duration    `json:"elapsed"`
	Timestamp  time.Time        `json:"timestamp"`
}

// Options represents resolver tuning knobs. Zero values are replaced by
// the defaults below when constructing a Resolver.
type Options struct {
	AttemptTimeout time.Duration `json:"attempt_timeout"` // per transport attempt
	ServerBudget   time.Duration `json:"server_budget"`   // wall clock per server, all attempts
	OverallTimeout time.Duration `json:"overall_timeout"` // global resolution budget
	Retries        int           `json:"retries"`         // per transport per server
	MaxZoneDepth   int           `json:"max_zone_depth"`
	MaxAliasChain  int           `json:"max_alias_chain"`
	MaxGlueDepth   int           `json:"max_glue_depth"`
	GlueWorkers    int           `json:"glue_workers"`
	Roots          []net.IP      `json:"-"`
	IPv4Only       bool          `json:"ipv4_only"`
	IPv6Only       bool          `json:"ipv6_only"`
}

// Default limits, matching practical DNS hierarchy depth
const (
	DefaultAttemptTimeout = 3 * time.Second
	DefaultServerBudget   = 8 * time.Second
	DefaultOverallTimeout = 30 * time.Second
	DefaultRetries        = 2
	DefaultMaxZoneDepth   = 20
	DefaultMaxAliasChain  = 8
	DefaultMaxGlueDepth   = 4
	DefaultGlueWorkers    = 4
)

// DefaultOptions returns the options used when none are supplied
func DefaultOptions() Options {
	return Options{
		AttemptTimeout: DefaultAttemptTimeout,
		ServerBudget:   DefaultServerBudget,
		OverallTimeout: DefaultOverallTimeout,
		Retries:        DefaultRetries,
		MaxZoneDepth:   DefaultMaxZoneDepth,
		MaxAliasChain:  DefaultMaxAliasChain,
		MaxGlueDepth:   DefaultMaxGlueDepth,
		GlueWorkers:    DefaultGlueWorkers,
	}
}

// withDefaults fills in zero fields without mutating the receiver
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.AttemptTimeout <= 0 {
		o.AttemptTimeout = def.AttemptTimeout
	}
	if o.ServerBudget <= 0 {
		o.ServerBudget = def.ServerBudget
	}
	if o.OverallTimeout <= 0 {
		o.OverallTimeout = def.OverallTimeout
	}
	if o.Retries <= 0 {
		o.Retries = def.Retries
	}
	if o.MaxZoneDepth <= 0 {
		o.MaxZoneDepth = def.MaxZoneDepth
	}
	if o.MaxAliasChain <= 0 {
		o.MaxAliasChain = def.MaxAliasChain
	}
	if o.MaxGlueDepth <= 0 {
		o.MaxGlueDepth = def.MaxGlueDepth
	}
	if o.GlueWorkers <= 0 {
		o.GlueWorkers = def.GlueWorkers
	}
	return o
}
