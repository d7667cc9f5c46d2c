// =============================================================================
// internal/output/formatter.go - Output formatting for different formats
// =============================================================================
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/bryanCE/digtrace/internal/resolver"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatReport OutputFormat = "report"
	FormatTable  OutputFormat = "table"
	FormatJSON   OutputFormat = "json"
)

// Formatter handles output formatting for different formats
type Formatter struct {
	format OutputFormat
}

// NewFormatter creates a new formatter with the specified format
func NewFormatter(format OutputFormat) *Formatter {
	return &Formatter{format: format}
}

// FormatResolutionResult formats one trace resolution result
func (f *Formatter) FormatResolutionResult(result *resolver.ResolutionResult, writer io.Writer) error {
	switch f.format {
	case FormatJSON:
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	case FormatTable:
		return f.formatResultTable(result, writer)
	default:
		return WriteReport(result, writer)
	}
}

// FormatBulkSummary formats a bulk trace run
func (f *Formatter) FormatBulkSummary(summary *resolver.BulkSummary, writer io.Writer) error {
	switch f.format {
	case FormatJSON:
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(summary)
	default:
		return f.formatBulkSummaryTable(summary, writer)
	}
}

func (f *Formatter) formatResultTable(result *resolver.ResolutionResult, writer io.Writer) error {
	fmt.Fprintf(writer, "Resolution of %s (%s): %s in %v over %d queries\n\n",
		result.Query.Name, result.Query.Type, result.Status, result.Elapsed, len(result.Trace))

	if len(result.Answers) > 0 {
		table := NewTable("Name", "Type", "Value", "TTL")
		for _, record := range result.Answers {
			table.AddRow(
				truncateString(record.Name, 40),
				string(record.Type),
				truncateString(record.Value, 50),
				fmt.Sprintf("%d", record.TTL),
			)
		}
		if err := table.Render(writer); err != nil {
			return err
		}
		fmt.Fprintln(writer)
	}

	table := NewTable("Zone", "Server", "Proto", "Rcode/Error", "Time")
	for _, entry := range result.Trace {
		outcome := entry.Rcode
		if entry.Error != "" {
			outcome = truncateString(entry.Error, 40)
		}
		table.AddRow(
			truncateString(entry.Zone, 30),
			entry.Server,
			entry.Transport,
			outcome,
			formatElapsed(entry.Elapsed),
		)
	}
	return table.Render(writer)
}

func (f *Formatter) formatBulkSummaryTable(summary *resolver.BulkSummary, writer io.Writer) error {
	fmt.Fprintf(writer, "Bulk trace: %d domains, %d answered, %d failed in %v\n\n",
		summary.TotalDomains, summary.Answered, summary.Failed, summary.Duration)

	table := NewTable("Domain", "Status", "Answers", "Queries", "Time")
	for _, res := range summary.Results {
		status := "FATAL"
		answers, queries, elapsed := "-", "-", "-"
		if res.Result != nil {
			status = string(res.Result.Status)
			answers = fmt.Sprintf("%d", len(res.Result.Answers))
			queries = fmt.Sprintf("%d", len(res.Result.Trace))
			elapsed = formatElapsed(res.Result.Elapsed)
		}
		table.AddRow(res.Domain, status, answers, queries, elapsed)
	}
	return table.Render(writer)
}

// truncateString shortens s for table display
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
