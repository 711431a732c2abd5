package trace

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalSortsKeys(t *testing.T) {
	got, err := marshalCanonical(map[string]any{
		"zebra":  "z",
		"action": "UPLOAD",
		"middle": int64(5),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"action":"UPLOAD","middle":5,"zebra":"z"}`, string(got))
}

func TestMarshalCanonicalNoHTMLEscaping(t *testing.T) {
	got, err := marshalCanonical(map[string]any{"doc": "<a&b>"})
	require.NoError(t, err)
	assert.Equal(t, `{"doc":"<a&b>"}`, string(got))
}

func TestMarshalCanonicalNFCNormalizesStrings(t *testing.T) {
	// "e" + COMBINING ACUTE ACCENT must serialize identically to the
	// precomposed form.
	decomposed := "caf" + "e" + string(rune(0x0301))
	composed := "caf" + string(rune(0x00E9))

	got1, err := marshalCanonical(map[string]any{"doc": decomposed})
	require.NoError(t, err)
	got2, err := marshalCanonical(map[string]any{"doc": composed})
	require.NoError(t, err)

	assert.Equal(t, string(got2), string(got1))
}

func TestMarshalCanonicalRejectsFloats(t *testing.T) {
	_, err := marshalCanonical(map[string]any{"timestamp": 1.5})
	assert.Error(t, err)
}

func TestMarshalCanonicalRejectsNull(t *testing.T) {
	_, err := marshalCanonical(map[string]any{"user": nil})
	assert.Error(t, err)
}

func TestMarshalCanonicalDeterministic(t *testing.T) {
	fields := recordFields(Record{
		Action:      ActionReuseDetected,
		Document:    "Doc",
		Fingerprint: "fp",
		User:        "alice",
		TimestampMS: 42,
	})

	got1, err := marshalCanonical(fields)
	require.NoError(t, err)
	got2, err := marshalCanonical(fields)
	require.NoError(t, err)

	assert.Equal(t, got1, got2)
}

// Golden test pins the exact canonical byte layout. Any drift here would
// silently invalidate every previously sealed proof, so the bytes are
// version-controlled.
func TestCanonicalRecordGolden(t *testing.T) {
	g := goldie.New(t)

	got, err := marshalCanonical(recordFields(Record{
		Action:      ActionUpload,
		Document:    "Policy_A",
		Fingerprint: "abc123",
		User:        "alice",
		TimestampMS: 1735689600123,
	}))
	require.NoError(t, err)

	g.Assert(t, "canonical_record", got)
}
