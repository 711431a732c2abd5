package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// AuditOptions holds flags for the audit command.
type AuditOptions struct {
	*RootOptions
	Document string
}

// AuditEntry is one displayed audit record with its verification verdict.
type AuditEntry struct {
	Action      string  `json:"action"`
	Document    string  `json:"document"`
	Fingerprint string  `json:"fingerprint"`
	User        string  `json:"user,omitempty"`
	Timestamp   float64 `json:"timestamp"`
	Verified    bool    `json:"verified"`
}

// AuditResult is the audit command's output payload.
type AuditResult struct {
	Entries []AuditEntry `json:"entries"`
	Total   int          `json:"total"`
	Invalid int          `json:"invalid"`
}

// NewAuditCommand creates the audit command.
func NewAuditCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AuditOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the audit trail",
		Long: `List audit records newest-first, each with its proof verdict.

A record whose fields no longer match its proof shows as unverified.

Examples:
  traceguard audit
  traceguard audit --document Exam_Policy_2025 --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Document, "document", "", "filter to one document name")

	return cmd
}

func runAudit(opts *AuditOptions, cmd *cobra.Command) error {
	a, err := openApp(opts.RootOptions)
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.store.ListTraces(context.Background())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list traces", err)
	}

	result := AuditResult{Entries: []AuditEntry{}}
	for _, r := range records {
		if opts.Document != "" && r.Document != opts.Document {
			continue
		}
		verified := a.ledger.Check(r)
		if !verified {
			result.Invalid++
		}
		result.Entries = append(result.Entries, AuditEntry{
			Action:      string(r.Action),
			Document:    r.Document,
			Fingerprint: r.Fingerprint,
			User:        r.User,
			Timestamp:   r.TimestampSeconds(),
			Verified:    verified,
		})
	}
	result.Total = len(result.Entries)

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return f.Success(result)
	}

	out := cmd.OutOrStdout()
	if result.Total == 0 {
		fmt.Fprintln(out, "No audit records")
		return nil
	}
	for _, e := range result.Entries {
		verdict := "ok"
		if !e.Verified {
			verdict = "INVALID"
		}
		ts := time.UnixMilli(int64(e.Timestamp * 1000)).UTC().Format(time.RFC3339)
		fmt.Fprintf(out, "%-20s %-14s %-24s %-10s %s\n", ts, e.Action, truncate(e.Document, 24), e.User, verdict)
	}
	fmt.Fprintf(out, "%d record(s), %d invalid\n", result.Total, result.Invalid)
	return nil
}
