package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/traceguard/traceguard/internal/vault"
)

// AccessOptions holds flags for the access command.
type AccessOptions struct {
	*RootOptions
	Name string
	User string
}

// AccessResult is the access command's output payload.
type AccessResult struct {
	Document    string `json:"document"`
	Fingerprint string `json:"fingerprint"`
}

// NewAccessCommand creates the access command.
func NewAccessCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AccessOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "access",
		Short: "Look up a document's fingerprint",
		Long: `Look up a stored document by name and emit an ACCESS audit record.

Only the fingerprint is returned; document bodies are never exposed.

Examples:
  traceguard access --name Exam_Policy_2025 --user bob`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccess(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "document name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&opts.User, "user", "", "user label recorded in the audit trail")

	return cmd
}

func runAccess(opts *AccessOptions, cmd *cobra.Command) error {
	a, err := openApp(opts.RootOptions)
	if err != nil {
		return err
	}
	defer a.Close()

	fp, err := a.detector.Access(context.Background(), opts.Name, opts.User)
	if errors.Is(err, vault.ErrNotFound) {
		return WrapExitError(ExitFailure, "document not found", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "access failed", err)
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return f.Success(AccessResult{Document: opts.Name, Fingerprint: fp})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", opts.Name, fp)
	return nil
}
