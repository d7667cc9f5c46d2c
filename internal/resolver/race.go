// =============================================================================
// internal/resolver/race.go - Parallel address-family resolution
// =============================================================================
package resolver

import (
	"context"

	"github.com/pkg/errors"
)

// ResolveFirst resolves name for every given record type in parallel and
// returns the first resolution that terminates ANSWERED. When none does,
// the result for the first type is returned so the caller still gets a
// status and a trace. Used for the A/AAAA race in the CLI.
func (r *Resolver) ResolveFirst(ctx context.Context, name string, rtypes ...RecordType) (*ResolutionResult, error) {
	if len(rtypes) == 0 {
		return nil, errors.New("no record types given")
	}
	if len(rtypes) == 1 {
		return r.Resolve(ctx, name, rtypes[0])
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type indexed struct {
		index  int
		result *ResolutionResult
		err    error
	}
	resultChan := make(chan indexed, len(rtypes))

	for i, rtype := range rtypes {
		go func(index int, rtype RecordType) {
			result, err := r.Resolve(ctx, name, rtype)
			resultChan <- indexed{index: index, result: result, err: err}
		}(i, rtype)
	}

	results := make([]*ResolutionResult, len(rtypes))
	errs := make([]error, len(rtypes))
	for range rtypes {
		select {
		case res := <-resultChan:
			if res.err == nil && res.result.Status == StatusAnswered {
				// winner; the deferred cancel aborts the losers
				return res.result, nil
			}
			results[res.index] = res.result
			errs[res.index] = res.err
		case <-ctx.Done():
			return nil, errors.Wrap(ErrGlobalTimeout, "race cancelled")
		}
	}

	if errs[0] != nil {
		return nil, errs[0]
	}
	return results[0], nil
}
