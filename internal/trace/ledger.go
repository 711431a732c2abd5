package trace

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Hash domains for proof computation. The version suffix enables future
// field-set or algorithm migration: adding a record field requires a new
// domain so old proofs cannot silently validate against new serializations.
const (
	DomainTraceV1 = "traceguard/trace/v1"
	DomainChainV1 = "traceguard/chain/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Ledger seals and verifies audit records.
//
// A Ledger holds no mutable state across calls and is safe for concurrent
// use. The clock is injectable so tests produce deterministic timestamps.
type Ledger struct {
	now func() time.Time
}

// NewLedger creates a Ledger stamping records with the wall clock.
func NewLedger() *Ledger {
	return &Ledger{now: time.Now}
}

// NewLedgerWithClock creates a Ledger with an injected clock.
// Use in tests for deterministic timestamps.
func NewLedgerWithClock(now func() time.Time) *Ledger {
	return &Ledger{now: now}
}

// Seal assembles a record for the given operation, stamps it, and attaches
// its proof. The user label is opaque to the ledger and may be empty.
func (l *Ledger) Seal(action Action, document, fingerprint, user string) (Record, error) {
	if !action.Valid() {
		return Record{}, fmt.Errorf("seal: unknown action %q", action)
	}

	r := Record{
		Action:      action,
		Document:    document,
		Fingerprint: fingerprint,
		User:        user,
		TimestampMS: l.now().UnixMilli(),
	}

	proof, err := proofFor(r)
	if err != nil {
		return Record{}, fmt.Errorf("seal: %w", err)
	}
	r.Proof = proof
	return r, nil
}

// Check reports whether a record's fields still match its proof.
//
// Check is total over arbitrary stored records: an absent, truncated, or
// non-hex proof returns false, never an error or panic. Audit verification
// must be able to run over whatever bytes the store hands back.
func (l *Ledger) Check(r Record) bool {
	if !validProofEncoding(r.Proof) {
		return false
	}
	want, err := proofFor(r)
	if err != nil {
		return false
	}
	return want == r.Proof
}

// ChainSeal is the strengthened variant of Seal: the proof additionally
// covers the previous record's proof, making the ledger an append-only hash
// chain whose head proof attests to the whole history. Pass an empty
// prevProof for the first record in a chain.
func (l *Ledger) ChainSeal(prevProof string, action Action, document, fingerprint, user string) (Record, error) {
	if !action.Valid() {
		return Record{}, fmt.Errorf("chain seal: unknown action %q", action)
	}

	r := Record{
		Action:      action,
		Document:    document,
		Fingerprint: fingerprint,
		User:        user,
		TimestampMS: l.now().UnixMilli(),
	}

	proof, err := chainProofFor(r, prevProof)
	if err != nil {
		return Record{}, fmt.Errorf("chain seal: %w", err)
	}
	r.Proof = proof
	return r, nil
}

// CheckChained reports whether a chained record's fields plus its
// predecessor link still match its proof.
func (l *Ledger) CheckChained(r Record, prevProof string) bool {
	if !validProofEncoding(r.Proof) {
		return false
	}
	want, err := chainProofFor(r, prevProof)
	if err != nil {
		return false
	}
	return want == r.Proof
}

// VerifyChain replays a full chained sequence in insertion order.
// Returns the index of the first record whose proof does not verify against
// its predecessor, or -1 when the whole chain is intact. Deletion,
// reordering, or insertion anywhere in the sequence breaks every later link.
func (l *Ledger) VerifyChain(records []Record) int {
	prev := ""
	for i, r := range records {
		if !l.CheckChained(r, prev) {
			return i
		}
		prev = r.Proof
	}
	return -1
}

// proofFor computes the base proof: canonical JSON of every field except
// Proof, hashed under DomainTraceV1.
func proofFor(r Record) (string, error) {
	canonical, err := marshalCanonical(recordFields(r))
	if err != nil {
		return "", fmt.Errorf("proof: %w", err)
	}
	return hashWithDomain(DomainTraceV1, canonical), nil
}

// chainProofFor computes the chained proof: the base field set plus the
// predecessor's proof, hashed under DomainChainV1.
func chainProofFor(r Record, prevProof string) (string, error) {
	fields := recordFields(r)
	fields["prev"] = prevProof
	canonical, err := marshalCanonical(fields)
	if err != nil {
		return "", fmt.Errorf("chain proof: %w", err)
	}
	return hashWithDomain(DomainChainV1, canonical), nil
}

// recordFields maps a record to its canonical field set, excluding Proof.
// The user field is always present, even when empty, so presence or absence
// of a label can never make two distinct records serialize identically.
func recordFields(r Record) map[string]any {
	return map[string]any{
		"action":       string(r.Action),
		"document":     r.Document,
		"fingerprint":  r.Fingerprint,
		"user":         r.User,
		"timestamp_ms": r.TimestampMS,
	}
}

func validProofEncoding(proof string) bool {
	if len(proof) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(proof)
	return err == nil
}
