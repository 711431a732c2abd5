package trace

// Action identifies the kind of sensitive operation a Record attests to.
type Action string

const (
	// ActionUpload records that a document was sealed and stored.
	ActionUpload Action = "UPLOAD"

	// ActionAccess records that a document's fingerprint was looked up.
	ActionAccess Action = "ACCESS"

	// ActionReuseDetected records that a probe text matched a stored
	// document at or above the configured similarity threshold.
	ActionReuseDetected Action = "REUSE_DETECTED"
)

// Valid reports whether a is one of the defined actions.
func (a Action) Valid() bool {
	switch a {
	case ActionUpload, ActionAccess, ActionReuseDetected:
		return true
	}
	return false
}

// Record is a single audit record. Fields are fixed; adding a field
// requires a new hash domain version (see DomainTraceV1).
//
// Immutable once sealed. The Proof covers every field except itself.
// TimestampMS is Unix milliseconds - integer representation keeps the
// canonical serialization free of float formatting ambiguity.
type Record struct {
	Action      Action `json:"action"`
	Document    string `json:"document"`
	Fingerprint string `json:"fingerprint"`
	User        string `json:"user,omitempty"`
	TimestampMS int64  `json:"timestamp_ms"`
	Proof       string `json:"proof"`
}

// TimestampSeconds returns the record time as float seconds for display.
// Never used in the canonical serialization.
func (r Record) TimestampSeconds() float64 {
	return float64(r.TimestampMS) / 1000.0
}
