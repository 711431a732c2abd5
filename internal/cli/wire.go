package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/traceguard/traceguard/internal/codec"
	"github.com/traceguard/traceguard/internal/config"
	"github.com/traceguard/traceguard/internal/fingerprint"
	"github.com/traceguard/traceguard/internal/keys"
	"github.com/traceguard/traceguard/internal/similarity"
	"github.com/traceguard/traceguard/internal/store"
	"github.com/traceguard/traceguard/internal/trace"
	"github.com/traceguard/traceguard/internal/vault"
)

// app bundles the wired core for one command invocation.
// Close releases the store; everything else is stateless.
type app struct {
	cfg      config.Config
	store    *store.Store
	ledger   *trace.Ledger
	detector *vault.Detector
}

// openApp loads configuration and wires codec, fingerprint engine,
// similarity engine, ledger, and store into a detector. Configuration
// problems fail here, before any operation runs.
func openApp(opts *RootOptions) (*app, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	key, err := loadKey(cfg.Key)
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to load key material", err)
	}

	c, err := codec.New(key)
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to initialize codec", err)
	}

	var loader fingerprint.Loader
	if cfg.FingerprintPolicy() == fingerprint.PolicyEmbedding {
		loader = fingerprint.DefaultLoader()
	}
	prints, err := fingerprint.New(cfg.FingerprintPolicy(), loader)
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to initialize fingerprint engine", err)
	}

	scorer, err := similarity.NewEngine(cfg.SimilarityParams())
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "invalid similarity parameters", err)
	}

	ledger := trace.NewLedger()
	detector, err := vault.New(c, prints, scorer, ledger, st, cfg.Similarity.Threshold)
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to wire detector", err)
	}

	return &app{cfg: cfg, store: st, ledger: ledger, detector: detector}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func loadKey(kc config.KeyConfig) ([]byte, error) {
	switch kc.Mode {
	case "ephemeral":
		return keys.Ephemeral()
	case "file":
		return keys.LoadOrCreate(kc.Path)
	}
	return nil, fmt.Errorf("unknown key mode %q", kc.Mode)
}

// readText reads document text from a file path, or from the command's
// stdin when path is empty or "-".
func readText(cmd *cobra.Command, path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// truncate shortens a string for text-mode display.
func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
