// Package config loads and validates the traceguard configuration file.
//
// Configuration is YAML, decoded over defaults and then validated against
// an embedded CUE schema. Every violation surfaces as ErrConfiguration at
// load time - a bad threshold or weight must fail at startup, never at
// query time.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/traceguard/traceguard/internal/fingerprint"
	"github.com/traceguard/traceguard/internal/similarity"
)

//go:embed schema.cue
var schemaCUE string

// ErrConfiguration indicates an invalid configuration value.
// Match with errors.Is.
var ErrConfiguration = errors.New("invalid configuration")

// Config is the full runtime configuration. Field names are shared
// between the YAML file and the CUE schema.
type Config struct {
	// Database is the SQLite path for documents and traces.
	Database string `yaml:"database" json:"database"`

	Key         KeyConfig         `yaml:"key" json:"key"`
	Fingerprint FingerprintConfig `yaml:"fingerprint" json:"fingerprint"`
	Similarity  SimilarityConfig  `yaml:"similarity" json:"similarity"`
}

// KeyConfig selects the codec key strategy.
type KeyConfig struct {
	// Mode is "ephemeral" (fresh key per process, vault unreadable after
	// restart) or "file" (persisted key loaded on every start).
	Mode string `yaml:"mode" json:"mode"`
	// Path locates the key file; required in file mode.
	Path string `yaml:"path" json:"path"`
}

// FingerprintConfig selects the fingerprint policy.
type FingerprintConfig struct {
	Policy string `yaml:"policy" json:"policy"`
}

// SimilarityConfig carries the hybrid scorer knobs plus the reuse
// threshold. The reference threshold is 0.45, the lenient end of observed
// deployments; stricter ones run up to 0.6.
type SimilarityConfig struct {
	Threshold    float64 `yaml:"threshold" json:"threshold"`
	WordWeight   float64 `yaml:"word_weight" json:"word_weight"`
	CharWeight   float64 `yaml:"char_weight" json:"char_weight"`
	WordNGramMin int     `yaml:"word_ngram_min" json:"word_ngram_min"`
	WordNGramMax int     `yaml:"word_ngram_max" json:"word_ngram_max"`
	CharNGramMin int     `yaml:"char_ngram_min" json:"char_ngram_min"`
	CharNGramMax int     `yaml:"char_ngram_max" json:"char_ngram_max"`
}

// Default returns the reference configuration.
func Default() Config {
	params := similarity.DefaultParams()
	return Config{
		Database: "traceguard.db",
		Key: KeyConfig{
			Mode: "file",
			Path: "traceguard.key",
		},
		Fingerprint: FingerprintConfig{
			Policy: string(fingerprint.PolicyExact),
		},
		Similarity: SimilarityConfig{
			Threshold:    0.45,
			WordWeight:   params.WordWeight,
			CharWeight:   params.CharWeight,
			WordNGramMin: params.WordNGramMin,
			WordNGramMax: params.WordNGramMax,
			CharNGramMin: params.CharNGramMin,
			CharNGramMax: params.CharNGramMax,
		},
	}
}

// Load reads the YAML file at path over the defaults and validates the
// result. An empty path skips the file and validates the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("%w: read %s: %v", ErrConfiguration, path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: parse %s: %v", ErrConfiguration, path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration against the embedded CUE schema.
func (c Config) Validate() error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("%w: schema: %v", ErrConfiguration, err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("%w: schema: %v", ErrConfiguration, err)
	}

	val := ctx.Encode(c)
	if err := val.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	unified := def.Unify(val)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return nil
}

// SimilarityParams maps the config onto scorer parameters.
func (c Config) SimilarityParams() similarity.Params {
	return similarity.Params{
		WordWeight:   c.Similarity.WordWeight,
		CharWeight:   c.Similarity.CharWeight,
		WordNGramMin: c.Similarity.WordNGramMin,
		WordNGramMax: c.Similarity.WordNGramMax,
		CharNGramMin: c.Similarity.CharNGramMin,
		CharNGramMax: c.Similarity.CharNGramMax,
	}
}

// FingerprintPolicy returns the configured policy as its typed form.
func (c Config) FingerprintPolicy() fingerprint.Policy {
	return fingerprint.Policy(c.Fingerprint.Policy)
}
