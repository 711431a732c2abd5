package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/traceguard/traceguard/internal/vault"
)

// ReuseOptions holds flags for the reuse command.
type ReuseOptions struct {
	*RootOptions
	File string
	User string
}

// ReuseResult is the reuse command's output payload.
type ReuseResult struct {
	Threshold float64       `json:"threshold"`
	Matches   []vault.Match `json:"matches"`
}

// NewReuseCommand creates the reuse command.
func NewReuseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReuseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reuse",
		Short: "Check a text for semantic reuse of stored documents",
		Long: `Score a probe text against every stored document's decrypted body.

Each stored document scoring at or above the configured threshold is
reported and recorded as a REUSE_DETECTED audit event carrying the
probe's fingerprint.

Examples:
  traceguard reuse --file suspicious.txt
  cat draft.txt | traceguard reuse --user reviewer --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReuse(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.File, "file", "", "file holding the probe text (default: stdin)")
	cmd.Flags().StringVar(&opts.User, "user", "", "user label recorded in the audit trail")

	return cmd
}

func runReuse(opts *ReuseOptions, cmd *cobra.Command) error {
	probe, err := readText(cmd, opts.File)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read probe text", err)
	}

	a, err := openApp(opts.RootOptions)
	if err != nil {
		return err
	}
	defer a.Close()

	matches, err := a.detector.DetectReuse(context.Background(), probe, opts.User)
	if err != nil {
		return WrapExitError(ExitCommandError, "reuse detection failed", err)
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	result := ReuseResult{Threshold: a.detector.Threshold(), Matches: matches}
	if opts.Format == "json" {
		return f.Success(result)
	}

	out := cmd.OutOrStdout()
	if len(matches) == 0 {
		fmt.Fprintf(out, "No reuse detected (threshold %.2f)\n", result.Threshold)
		return nil
	}
	fmt.Fprintf(out, "Reuse detected in %d document(s):\n", len(matches))
	for _, m := range matches {
		fmt.Fprintf(out, "  %-30s %6.2f%%\n", m.Document, m.Similarity)
	}
	return nil
}
