// =============================================================================
// internal/cli/commands.go - CLI command definitions
// =============================================================================
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bryanCE/digtrace/internal/config"
	"github.com/bryanCE/digtrace/internal/output"
	"github.com/bryanCE/digtrace/internal/resolver"
)

// commonFlags are shared by all resolution commands
type commonFlags struct {
	configFile string
	format     string
	timeout    time.Duration
	ipv4Only   bool
	ipv6Only   bool
	verbosity  int
}

func (cf *commonFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&cf.configFile, "config", "c", "", "Path to YAML config file")
	cmd.Flags().StringVarP(&cf.format, "format", "f", "report", "Output format (report, table, json)")
	cmd.Flags().DurationVarP(&cf.timeout, "timeout", "t", 0, "Overall resolution timeout (overrides config)")
	cmd.Flags().BoolVarP(&cf.ipv4Only, "ipv4", "4", false, "Use IPv4 transport and roots only")
	cmd.Flags().BoolVarP(&cf.ipv6Only, "ipv6", "6", false, "Use IPv6 transport and roots only")
	cmd.Flags().CountVarP(&cf.verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
}

// buildResolver loads config, applies flag overrides and wires up logging
func (cf *commonFlags) buildResolver() (*resolver.Resolver, error) {
	cfg := config.Default()
	if cf.configFile != "" {
		loaded, err := config.Load(cf.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if cf.timeout > 0 {
		cfg.Resolver.OverallTimeout = config.Duration(cf.timeout)
	}
	if cf.ipv4Only {
		cfg.Resolver.IPv4Only = true
	}
	if cf.ipv6Only {
		cfg.Resolver.IPv6Only = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logLevel(cfg.Logging.Level, cf.verbosity))

	res := resolver.New(cfg.Options())
	res.SetLogger(log)
	return res, nil
}

func (cf *commonFlags) formatter() *output.Formatter {
	switch strings.ToLower(cf.format) {
	case "json":
		return output.NewFormatter(output.FormatJSON)
	case "table":
		return output.NewFormatter(output.FormatTable)
	default:
		return output.NewFormatter(output.FormatReport)
	}
}

func logLevel(configured string, verbosity int) logrus.Level {
	switch {
	case verbosity >= 2:
		return logrus.DebugLevel
	case verbosity == 1:
		return logrus.InfoLevel
	}
	if level, err := logrus.ParseLevel(configured); err == nil {
		return level
	}
	return logrus.WarnLevel
}

// NewTraceCommand creates the trace subcommand
func NewTraceCommand() *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:   "trace [domain] [record-type]",
		Short: "Iteratively resolve a domain from the root servers",
		Long: `Resolve a domain by querying the root servers directly and following
referral chains down to the authoritative zone, without any recursive
resolver in between. Prints the full referral trace, CNAME chain and
per-query timings.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			domain := args[0]
			recordType := resolver.RecordTypeA
			if len(args) > 1 {
				var err error
				recordType, err = resolver.ParseRecordType(args[1])
				if err != nil {
					return err
				}
			}

			res, err := flags.buildResolver()
			if err != nil {
				return err
			}

			result, err := res.Resolve(context.Background(), domain, recordType)
			if err != nil {
				// fatal setup error, distinct from a failed resolution
				return fmt.Errorf("resolver error: %w", err)
			}

			return flags.formatter().FormatResolutionResult(result, os.Stdout)
		},
	}

	flags.register(cmd)
	return cmd
}

// NewRaceCommand creates the race subcommand
func NewRaceCommand() *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:   "race [domain]",
		Short: "Resolve A and AAAA in parallel, first answer wins",
		Long: `Run iterative resolutions for both address families at once and
report whichever finishes first with an answer.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := flags.buildResolver()
			if err != nil {
				return err
			}

			result, err := res.ResolveFirst(context.Background(), args[0],
				resolver.RecordTypeA, resolver.RecordTypeAAAA)
			if err != nil {
				return fmt.Errorf("resolver error: %w", err)
			}

			return flags.formatter().FormatResolutionResult(result, os.Stdout)
		},
	}

	flags.register(cmd)
	return cmd
}

// NewBulkCommand creates the bulk subcommand
func NewBulkCommand() *cobra.Command {
	var (
		flags       commonFlags
		typeFlag    string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "bulk [file]",
		Short: "Trace multiple domains from a file",
		Long: `Run iterative trace resolutions for every domain in a file
(one domain per line, # comments allowed) using a bounded worker pool.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recordType, err := resolver.ParseRecordType(typeFlag)
			if err != nil {
				return err
			}

			domains, err := resolver.ReadDomainsFromFile(args[0])
			if err != nil {
				return err
			}

			res, err := flags.buildResolver()
			if err != nil {
				return err
			}

			processor := resolver.NewBulkProcessor(res, concurrency)
			processor.SetProgressCallback(func(current, total int, domain string, status resolver.Status) {
				fmt.Fprintf(os.Stderr, "[%d/%d] %s: %s\n", current, total, domain, status)
			})

			summary, err := processor.Process(context.Background(), domains, recordType)
			if err != nil {
				return err
			}

			return flags.formatter().FormatBulkSummary(summary, os.Stdout)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&typeFlag, "type", "T", "A", "Record type to resolve")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "n", 4, "Number of concurrent resolutions")
	return cmd
}
