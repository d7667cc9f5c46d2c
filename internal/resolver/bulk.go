// =============================================================================
// internal/resolver/bulk.go - Bulk trace resolution
// =============================================================================
package resolver

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// BulkResult represents one domain's outcome within a bulk run
type BulkResult struct {
	Domain    string
	Result    *ResolutionResult
	Err       error
	StartTime time.Time
	EndTime   time.Time
}

// BulkSummary aggregates a whole bulk run
type BulkSummary struct {
	TotalDomains int
	Answered     int
	Failed       int
	Duration     time.Duration
	Results      []BulkResult
}

// BulkProcessor runs iterative traces over many domains with a bounded
// worker pool
type BulkProcessor struct {
	resolver         *Resolver
	concurrency      int
	progressCallback func(current, total int, domain string, status Status)
}

// NewBulkProcessor creates a bulk processor running at the given concurrency
func NewBulkProcessor(resolver *Resolver, concurrency int) *BulkProcessor {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &BulkProcessor{
		resolver:    resolver,
		concurrency: concurrency,
	}
}

// SetProgressCallback sets a callback for progress updates
func (bp *BulkProcessor) SetProgressCallback(callback func(current, total int, domain string, status Status)) {
	bp.progressCallback = callback
}

// ReadDomainsFromFile reads domains from a file (one per line)
func ReadDomainsFromFile(filename string) ([]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var domains []string
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		domain := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if domain == "" || strings.HasPrefix(domain, "#") {
			continue
		}

		if !IsValidDomain(domain) {
			return nil, fmt.Errorf("invalid domain on line %d: %s", lineNum, domain)
		}

		domains = append(domains, domain)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	if len(domains) == 0 {
		return nil, fmt.Errorf("no valid domains found in file")
	}

	return domains, nil
}

// Process traces every domain for the given record type and collects a
// summary. Each domain is an independent resolution with its own trace.
func (bp *BulkProcessor) Process(ctx context.Context, domains []string, rtype RecordType) (*BulkSummary, error) {
	startTime := time.Now()
	results := make([]BulkResult, 0, len(domains))

	domainChan := make(chan string, len(domains))
	for _, domain := range domains {
		domainChan <- domain
	}
	close(domainChan)

	resultChan := make(chan BulkResult, len(domains))

	var wg sync.WaitGroup
	for i := 0; i < bp.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for domain := range domainChan {
				resultChan <- bp.processSingle(ctx, domain, rtype)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	processed := 0
	answered := 0
	for result := range resultChan {
		processed++
		results = append(results, result)

		status := StatusServFail
		if result.Result != nil {
			status = result.Result.Status
		}
		if status == StatusAnswered {
			answered++
		}

		if bp.progressCallback != nil {
			bp.progressCallback(processed, len(domains), result.Domain, status)
		}
	}

	return &BulkSummary{
		TotalDomains: len(domains),
		Answered:     answered,
		Failed:       len(domains) - answered,
		Duration:     time.Since(startTime),
		Results:      results,
	}, nil
}

func (bp *BulkProcessor) processSingle(ctx context.Context, domain string, rtype RecordType) BulkResult {
	startTime := time.Now()
	result, err := bp.resolver.Resolve(ctx, domain, rtype)
	return BulkResult{
		Domain:    domain,
		Result:    result,
		Err:       err,
		StartTime: startTime,
		EndTime:   time.Now(),
	}
}

// IsValidDomain performs basic domain validation
func IsValidDomain(domain string) bool {
	if domain == "" || len(domain) > 253 {
		return false
	}

	for _, r := range domain {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '-') {
			return false
		}
	}

	if !strings.Contains(domain, ".") {
		return false
	}

	if strings.HasPrefix(domain, ".") || strings.HasPrefix(domain, "-") ||
		strings.HasSuffix(domain, "-") {
		return false
	}

	return true
}
