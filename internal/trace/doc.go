// Package trace provides construction and verification of self-describing,
// hash-sealed audit records.
//
// Every sensitive operation in the vault (upload, access, reuse detection)
// emits a Record. A Record carries a Proof: a SHA-256 hash, with domain
// separation, over the canonical JSON serialization of every other field.
// Check recomputes that hash from a stored record and reports whether the
// fields still match the proof.
//
// # Integrity scope
//
// The base scheme detects accidental or naive in-place corruption of a
// single record's fields (a bit flip, a manual edit). It does NOT prove the
// record was produced by a trusted party: the hash uses no secret key, so
// anyone who can write to the audit store can fabricate a record with a
// matching proof. It also does not detect deletion, reordering, or insertion
// of whole records. Callers needing that stronger guarantee must use the
// chained variant (ChainSeal / VerifyChain), where each record's proof
// covers the previous record's proof and the head proof attests to the
// whole history.
//
// Key design constraints:
//   - Fixed, versioned record structure - the hash domain carries a version
//     suffix so the field set cannot drift silently
//   - Canonical serialization per RFC 8785 (sorted keys, NFC strings, no
//     HTML escaping, no floats)
//   - Timestamps are int64 Unix milliseconds, never floats
//   - Check is total: malformed input returns false, never panics
package trace
