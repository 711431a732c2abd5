package fingerprint

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExactDeterministic(t *testing.T) {
	text := "Attendance is mandatory for all exams."

	assert.Equal(t, Exact(text), Exact(text))
	assert.Len(t, Exact(text), 64, "SHA-256 hex is 64 characters")
}

func TestExactDistinctContentDistinctDigest(t *testing.T) {
	fp1 := Exact("Attendance is mandatory for all exams.")
	fp2 := Exact("Attendance is mandatory for every exam.")

	assert.NotEqual(t, fp1, fp2)
}

func TestExactNormalizationEquivalence(t *testing.T) {
	// Case, punctuation, and whitespace differences normalize away.
	fp1 := Exact("Attendance is mandatory!")
	fp2 := Exact("  attendance   IS mandatory  ")

	assert.Equal(t, fp1, fp2)
}

func TestEngineExactPolicy(t *testing.T) {
	e, err := New(PolicyExact, nil)
	require.NoError(t, err)

	fp, err := e.Fingerprint("some text")
	require.NoError(t, err)
	assert.Equal(t, Exact("some text"), fp)
}

func TestEngineEmbeddingDeterministic(t *testing.T) {
	e, err := New(PolicyEmbedding, DefaultLoader())
	require.NoError(t, err)

	fp1, err := e.Fingerprint("Attendance is mandatory.")
	require.NoError(t, err)
	fp2, err := e.Fingerprint("Attendance is mandatory.")
	require.NoError(t, err)

	assert.Equal(t, fp1, fp2)
	assert.Len(t, fp1, 64)
}

func TestEmbeddingAndExactDigestsNeverCollide(t *testing.T) {
	e, err := New(PolicyEmbedding, DefaultLoader())
	require.NoError(t, err)

	emb, err := e.Fingerprint("same input")
	require.NoError(t, err)

	assert.NotEqual(t, Exact("same input"), emb, "domain separation must hold")
}

func TestNewRejectsUnknownPolicy(t *testing.T) {
	_, err := New(Policy("fuzzy"), nil)
	assert.Error(t, err)
}

func TestNewRejectsEmbeddingWithoutLoader(t *testing.T) {
	_, err := New(PolicyEmbedding, nil)
	assert.Error(t, err)
}

// trackingLoader records the lifecycle of every encoder it hands out.
type trackingLoader struct {
	loads     int
	closes    int
	encodeErr error
}

func (l *trackingLoader) Load() (Encoder, error) {
	l.loads++
	return &trackingEncoder{loader: l}, nil
}

type trackingEncoder struct {
	loader *trackingLoader
}

func (e *trackingEncoder) Encode(string) ([]int64, error) {
	if e.loader.encodeErr != nil {
		return nil, e.loader.encodeErr
	}
	return []int64{1, 2, 3}, nil
}

func (e *trackingEncoder) Close() error {
	e.loader.closes++
	return nil
}

func TestEmbeddingEncoderReleasedPerCall(t *testing.T) {
	loader := &trackingLoader{}
	e, err := New(PolicyEmbedding, loader)
	require.NoError(t, err)

	_, err = e.Fingerprint("one")
	require.NoError(t, err)
	_, err = e.Fingerprint("two")
	require.NoError(t, err)

	assert.Equal(t, 2, loader.loads, "encoder loaded per call, never kept resident")
	assert.Equal(t, 2, loader.closes, "encoder released per call")
}

func TestEmbeddingEncoderReleasedOnFailure(t *testing.T) {
	loader := &trackingLoader{encodeErr: errors.New("model exploded")}
	e, err := New(PolicyEmbedding, loader)
	require.NoError(t, err)

	_, err = e.Fingerprint("boom")
	assert.Error(t, err)
	assert.Equal(t, 1, loader.closes, "encoder must be released even when encoding fails")
}
