// =============================================================================
// internal/resolver/glue.go - Concurrent glue-address resolution
// =============================================================================
package resolver

import (
	"context"
	"net"
	"strings"
	"sync"

	"github.com/miekg/dns"
	"github.com/sirupsen/logrus"
)

// resolveMissingGlue fills in addresses for candidates the referral carried
// no glue for, by running bounded nested walks. Lookups for distinct NS
// names run concurrently through a small worker pool; each worker writes
// only its own slot and the merged set is returned after every lookup has
// finished or timed out. Nesting deeper than MaxGlueDepth leaves the
// candidate unresolved rather than descending forever.
func (rs *resolution) resolveMissingGlue(ctx context.Context, candidates []ServerCandidate, glueDepth int) []ServerCandidate {
	var missing []int
	for i, c := range candidates {
		if c.Addr == nil {
			missing = append(missing, i)
		}
	}
	if len(missing) == 0 {
		return candidates
	}
	if glueDepth >= rs.res.opts.MaxGlueDepth {
		rs.res.log.WithField("depth", glueDepth).Debug("glue recursion limit reached, skipping unresolved nameservers")
		return candidates
	}

	workers := rs.res.opts.GlueWorkers
	if workers > len(missing) {
		workers = len(missing)
	}

	indexChan := make(chan int, len(missing))
	for _, i := range missing {
		indexChan <- i
	}
	close(indexChan)

	resolved := make([]net.IP, len(candidates))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexChan {
				resolved[i] = rs.lookupGlueAddr(ctx, candidates[i].Name, glueDepth+1)
			}
		}()
	}
	wg.Wait()

	out := make([]ServerCandidate, 0, len(candidates))
	for i, c := range candidates {
		if c.Addr == nil {
			c.Addr = resolved[i]
		}
		out = append(out, c)
	}
	return out
}

// lookupGlueAddr resolves one nameserver name to an address via a nested
// walk, trying A first and falling back to AAAA
func (rs *resolution) lookupGlueAddr(ctx context.Context, name string, glueDepth int) net.IP {
	log := rs.res.log.WithFields(logrus.Fields{"nameserver": name, "glue_depth": glueDepth})

	types := []RecordType{RecordTypeA, RecordTypeAAAA}
	if rs.res.opts.IPv6Only {
		types = []RecordType{RecordTypeAAAA}
	} else if rs.res.opts.IPv4Only {
		types = []RecordType{RecordTypeA}
	}

	for _, rtype := range types {
		if ctx.Err() != nil {
			return nil
		}
		result := rs.walk(ctx, NewQuery(name, rtype), glueDepth)
		if result.status != StatusAnswered || result.msg == nil {
			log.WithField("status", result.status).Debug("glue lookup failed")
			continue
		}
		for _, rr := range result.msg.Answer {
			if !strings.EqualFold(rr.Header().Name, dns.Fqdn(name)) {
				continue
			}
			switch a := rr.(type) {
			case *dns.A:
				return a.A
			case *dns.AAAA:
				return a.AAAA
			}
		}
	}
	return nil
}
