package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// UploadOptions holds flags for the upload command.
type UploadOptions struct {
	*RootOptions
	Name string
	File string
	User string
}

// UploadResult is the upload command's output payload.
type UploadResult struct {
	Document    string `json:"document"`
	Fingerprint string `json:"fingerprint"`
	SealedBytes int    `json:"sealed_bytes"`
}

// NewUploadCommand creates the upload command.
func NewUploadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UploadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Encrypt and store a protected document",
		Long: `Seal a document body, fingerprint its content, and store it.

Re-uploading an existing name replaces the stored document and emits a
fresh UPLOAD audit record.

Examples:
  traceguard upload --name Exam_Policy_2025 --file policy.txt
  cat policy.txt | traceguard upload --name Exam_Policy_2025 --user alice`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "document name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&opts.File, "file", "", "file holding the document body (default: stdin)")
	cmd.Flags().StringVar(&opts.User, "user", "", "user label recorded in the audit trail")

	return cmd
}

func runUpload(opts *UploadOptions, cmd *cobra.Command) error {
	text, err := readText(cmd, opts.File)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read document body", err)
	}

	a, err := openApp(opts.RootOptions)
	if err != nil {
		return err
	}
	defer a.Close()

	doc, err := a.detector.Upload(context.Background(), opts.Name, text, opts.User)
	if err != nil {
		return WrapExitError(ExitCommandError, "upload failed", err)
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	result := UploadResult{
		Document:    doc.Name,
		Fingerprint: doc.Fingerprint,
		SealedBytes: len(doc.SealedBody),
	}
	if opts.Format == "json" {
		return f.Success(result)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Stored %s (fingerprint %s, %d sealed bytes)\n",
		result.Document, truncate(result.Fingerprint, 19), result.SealedBytes)
	return nil
}
