// Package fingerprint derives deterministic content identifiers from
// document text.
//
// Two policies exist:
//
//   - Exact (default): SHA-256, with domain separation, over the normalized
//     text bytes. Cheap, exact-duplicate sensitive, paraphrase-insensitive.
//     This is the identity used for stored documents.
//   - Embedding: digest of a fixed-dimension vector produced by an Encoder.
//     Sensitive to vector-space distance rather than exact bytes. Usable
//     only as a coarse pre-filter, never the sole basis of reuse detection.
//
// Fingerprints are stable across process restarts and across machines:
// no per-process salt participates anywhere.
package fingerprint

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/traceguard/traceguard/internal/similarity"
)

// Policy selects how fingerprints are derived.
type Policy string

const (
	PolicyExact     Policy = "exact"
	PolicyEmbedding Policy = "embedding"
)

// Valid reports whether p is a defined policy.
func (p Policy) Valid() bool {
	return p == PolicyExact || p == PolicyEmbedding
}

// Hash domains. Exact and embedding digests can never collide even over
// identical input bytes.
const (
	DomainExactV1     = "traceguard/fingerprint/v1"
	DomainEmbeddingV1 = "traceguard/fingerprint-embedding/v1"
)

// Encoder turns text into a fixed-dimension integer vector. Implementations
// backed by a real model may hold significant resident memory; Close
// releases it.
type Encoder interface {
	Encode(text string) ([]int64, error)
	Close() error
}

// Loader materializes an Encoder on demand. The Engine loads before each
// encode and closes on every exit path, so the model is never resident
// between calls.
type Loader interface {
	Load() (Encoder, error)
}

// Engine computes fingerprints under a fixed policy.
//
// Safe for concurrent use. Under the embedding policy the load/encode/close
// cycle is mutex-guarded so no caller can observe a partially-unloaded
// encoder.
type Engine struct {
	policy Policy

	mu     sync.Mutex
	loader Loader
}

// New creates an Engine. The loader is required for PolicyEmbedding and
// ignored for PolicyExact; pass DefaultLoader() unless a model-backed
// implementation is wired in.
func New(policy Policy, loader Loader) (*Engine, error) {
	if !policy.Valid() {
		return nil, fmt.Errorf("fingerprint: unknown policy %q", policy)
	}
	if policy == PolicyEmbedding && loader == nil {
		return nil, fmt.Errorf("fingerprint: embedding policy requires an encoder loader")
	}
	return &Engine{policy: policy, loader: loader}, nil
}

// Policy returns the engine's configured policy.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Fingerprint returns the hex digest identifying text under the configured
// policy. Same input always yields the same output.
func (e *Engine) Fingerprint(text string) (string, error) {
	switch e.policy {
	case PolicyExact:
		return Exact(text), nil
	case PolicyEmbedding:
		return e.embedding(text)
	}
	return "", fmt.Errorf("fingerprint: unknown policy %q", e.policy)
}

// Exact computes the exact-content fingerprint: SHA-256 with domain
// separation over the normalized text. Normalization means two texts that
// differ only in case, punctuation, or whitespace share a fingerprint.
func Exact(text string) string {
	h := sha256.New()
	h.Write([]byte(DomainExactV1))
	h.Write([]byte{0x00})
	h.Write([]byte(similarity.Normalize(text)))
	return hex.EncodeToString(h.Sum(nil))
}

// embedding runs one scoped load/encode/close cycle and hashes the vector.
func (e *Engine) embedding(text string) (_ string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	enc, err := e.loader.Load()
	if err != nil {
		return "", fmt.Errorf("fingerprint: load encoder: %w", err)
	}
	defer func() {
		if cerr := enc.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("fingerprint: release encoder: %w", cerr)
		}
	}()

	vec, err := enc.Encode(similarity.Normalize(text))
	if err != nil {
		return "", fmt.Errorf("fingerprint: encode: %w", err)
	}

	h := sha256.New()
	h.Write([]byte(DomainEmbeddingV1))
	h.Write([]byte{0x00})
	buf := make([]byte, 8)
	for _, v := range vec {
		binary.BigEndian.PutUint64(buf, uint64(v))
		h.Write(buf)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
