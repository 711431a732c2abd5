// Package vault orchestrates the document protection core: sealing bodies,
// fingerprinting content, scoring reuse, and emitting audit records.
//
// Every sensitive operation appends a sealed trace record before returning.
// The persistence collaborator is an interface so tests (and alternative
// backends) can substitute the SQLite store.
package vault

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/traceguard/traceguard/internal/codec"
	"github.com/traceguard/traceguard/internal/fingerprint"
	"github.com/traceguard/traceguard/internal/similarity"
	"github.com/traceguard/traceguard/internal/store"
	"github.com/traceguard/traceguard/internal/trace"
)

// ErrNotFound indicates a lookup by name yielded nothing. Reported to the
// caller, never retried. Match with errors.Is.
var ErrNotFound = errors.New("document not found")

// Store is the persistence collaborator. Documents and trace records are
// owned by the store once written; the vault never mutates a record after
// creation.
type Store interface {
	PutDocument(ctx context.Context, doc store.Document) error
	GetDocumentByName(ctx context.Context, name string) (*store.Document, error)
	ListDocuments(ctx context.Context) ([]store.Document, error)
	AppendTrace(ctx context.Context, r trace.Record) error
	ListTraces(ctx context.Context) ([]trace.Record, error)
}

// Match is one reuse hit: a stored document whose similarity to the probe
// met the threshold. Score is in [0,1]; Similarity is the same value
// percent-scaled for display. Ephemeral, never persisted.
type Match struct {
	Document   string  `json:"document"`
	Score      float64 `json:"score"`
	Similarity float64 `json:"similarity"`
}

// Detector is the composition root over codec, fingerprint, similarity,
// ledger, and store. Holds no mutable state of its own; safe for
// concurrent use.
//
// Document identity policy: name is the primary key. Re-uploading an
// existing name replaces the stored document and emits a fresh UPLOAD
// record; the old body is gone, the audit trail of its upload is not.
type Detector struct {
	codec     *codec.Codec
	prints    *fingerprint.Engine
	scorer    *similarity.Engine
	ledger    *trace.Ledger
	store     Store
	threshold float64
}

// New wires a Detector. The threshold is the reuse decision boundary in
// (0,1]; values outside that range fail here, at startup, never at query
// time.
func New(c *codec.Codec, prints *fingerprint.Engine, scorer *similarity.Engine, ledger *trace.Ledger, st Store, threshold float64) (*Detector, error) {
	if threshold <= 0 || threshold > 1 {
		return nil, fmt.Errorf("vault: threshold %v outside (0,1]", threshold)
	}
	return &Detector{
		codec:     c,
		prints:    prints,
		scorer:    scorer,
		ledger:    ledger,
		store:     st,
		threshold: threshold,
	}, nil
}

// Threshold returns the configured reuse decision boundary.
func (d *Detector) Threshold() float64 {
	return d.threshold
}

// Upload seals the body, fingerprints the plaintext, stores the document
// (replacing any previous document of the same name), and emits an UPLOAD
// record.
func (d *Detector) Upload(ctx context.Context, name, text, user string) (store.Document, error) {
	sealed, err := d.codec.Seal([]byte(text))
	if err != nil {
		return store.Document{}, fmt.Errorf("upload %q: %w", name, err)
	}

	fp, err := d.prints.Fingerprint(text)
	if err != nil {
		return store.Document{}, fmt.Errorf("upload %q: %w", name, err)
	}

	doc := store.Document{Name: name, SealedBody: sealed, Fingerprint: fp}
	if err := d.store.PutDocument(ctx, doc); err != nil {
		return store.Document{}, fmt.Errorf("upload %q: %w", name, err)
	}

	if err := d.emit(ctx, trace.ActionUpload, name, fp, user); err != nil {
		return store.Document{}, fmt.Errorf("upload %q: %w", name, err)
	}
	return doc, nil
}

// Access looks up a document's fingerprint by name and emits an ACCESS
// record. Returns ErrNotFound (wrapped) when the name is absent.
func (d *Detector) Access(ctx context.Context, name, user string) (string, error) {
	doc, err := d.store.GetDocumentByName(ctx, name)
	if err != nil {
		return "", fmt.Errorf("access %q: %w", name, err)
	}
	if doc == nil {
		return "", fmt.Errorf("access %q: %w", name, ErrNotFound)
	}

	if err := d.emit(ctx, trace.ActionAccess, name, doc.Fingerprint, user); err != nil {
		return "", fmt.Errorf("access %q: %w", name, err)
	}
	return doc.Fingerprint, nil
}

// DetectReuse scores the probe against every stored document's decrypted
// body. Each document at or above the threshold yields a Match and a
// REUSE_DETECTED record carrying the matched document's name and the
// probe's own fingerprint. Matches come back sorted by descending score.
//
// Cost is O(corpus size x document length): a fresh vector space per
// stored document. Callers bound corpus and probe size per query;
// sub-linear lookup belongs in an external index layered on top.
//
// A stored body that fails decryption aborts the query with the error -
// an unreadable document must never be silently skipped.
func (d *Detector) DetectReuse(ctx context.Context, probe, user string) ([]Match, error) {
	probeFP, err := d.prints.Fingerprint(probe)
	if err != nil {
		return nil, fmt.Errorf("detect reuse: %w", err)
	}

	docs, err := d.store.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("detect reuse: %w", err)
	}

	matches := []Match{}
	for _, doc := range docs {
		body, err := d.codec.Open(doc.SealedBody)
		if err != nil {
			return nil, fmt.Errorf("detect reuse: document %q: %w", doc.Name, err)
		}

		score := d.scorer.Score(probe, string(body))
		if score < d.threshold {
			continue
		}

		if err := d.emit(ctx, trace.ActionReuseDetected, doc.Name, probeFP, user); err != nil {
			return nil, fmt.Errorf("detect reuse: %w", err)
		}
		matches = append(matches, Match{
			Document:   doc.Name,
			Score:      score,
			Similarity: score * 100,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches, nil
}

// emit seals and appends one audit record.
func (d *Detector) emit(ctx context.Context, action trace.Action, document, fp, user string) error {
	r, err := d.ledger.Seal(action, document, fp, user)
	if err != nil {
		return err
	}
	return d.store.AppendTrace(ctx, r)
}
