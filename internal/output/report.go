// =============================================================================
// internal/output/report.go - dig-style trace report
// =============================================================================
package output

import (
	"fmt"
	"io"
	"time"

	"github.com/bryanCE/digtrace/internal/resolver"
)

// WriteReport renders a ResolutionResult as a dig-style textual report:
// the question, the full referral trace, the answer section, and timings.
func WriteReport(result *resolver.ResolutionResult, writer io.Writer) error {
	fmt.Fprintf(writer, ";; QUESTION SECTION:\n")
	fmt.Fprintf(writer, ";%s\t\tIN\t%s\n\n", result.Query.Name, result.Query.Type)

	if len(result.Trace) > 0 {
		fmt.Fprintf(writer, ";; TRACE (%d queries):\n", len(result.Trace))
		for _, entry := range result.Trace {
			writeTraceEntry(entry, writer)
		}
		fmt.Fprintln(writer)
	}

	if len(result.AliasChain) > 1 {
		fmt.Fprintf(writer, ";; ALIAS CHAIN:\n")
		for i, name := range result.AliasChain {
			if i == 0 {
				fmt.Fprintf(writer, ";  %s\n", name)
			} else {
				fmt.Fprintf(writer, ";  -> %s\n", name)
			}
		}
		fmt.Fprintln(writer)
	}

	fmt.Fprintf(writer, ";; ANSWER SECTION:\n")
	if len(result.Answers) == 0 {
		fmt.Fprintf(writer, "; (no answer)\n")
	}
	for _, record := range result.Answers {
		if record.Priority > 0 {
			fmt.Fprintf(writer, "%s\t%d\tIN\t%s\t%d %s\n",
				record.Name, record.TTL, record.Type, record.Priority, record.Value)
		} else {
			fmt.Fprintf(writer, "%s\t%d\tIN\t%s\t%s\n",
				record.Name, record.TTL, record.Type, record.Value)
		}
	}
	fmt.Fprintln(writer)

	fmt.Fprintf(writer, ";; STATUS: %s\n", result.Status)
	fmt.Fprintf(writer, ";; Query time: %d msec\n", result.Elapsed.Milliseconds())
	fmt.Fprintf(writer, ";; WHEN: %s\n", result.Timestamp.Format(time.ANSIC))
	return nil
}

func writeTraceEntry(entry resolver.TraceEntry, writer io.Writer) {
	outcome := entry.Rcode
	if entry.Error != "" {
		outcome = "FAIL: " + entry.Error
	}
	fmt.Fprintf(writer, ";  %s %s %s @%s (%s) %s %s %db\n",
		entry.Zone,
		entry.QueryName,
		entry.QueryType,
		entry.Server,
		entry.Transport,
		outcome,
		formatElapsed(entry.Elapsed),
		entry.Bytes,
	)
}

func formatElapsed(d time.Duration) string {
	if d <= 0 {
		return "0ms"
	}
	ms := d.Milliseconds()
	if ms == 0 {
		return "<1ms"
	}
	return fmt.Sprintf("%dms", ms)
}
