package vault

import (
	"context"
	"crypto/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traceguard/traceguard/internal/codec"
	"github.com/traceguard/traceguard/internal/fingerprint"
	"github.com/traceguard/traceguard/internal/similarity"
	"github.com/traceguard/traceguard/internal/store"
	"github.com/traceguard/traceguard/internal/trace"
)

// memStore is an in-memory Store for orchestration tests.
type memStore struct {
	docs   map[string]store.Document
	traces []trace.Record
}

func newMemStore() *memStore {
	return &memStore{docs: map[string]store.Document{}}
}

func (m *memStore) PutDocument(_ context.Context, doc store.Document) error {
	m.docs[doc.Name] = doc
	return nil
}

func (m *memStore) GetDocumentByName(_ context.Context, name string) (*store.Document, error) {
	doc, ok := m.docs[name]
	if !ok {
		return nil, nil
	}
	return &doc, nil
}

func (m *memStore) ListDocuments(context.Context) ([]store.Document, error) {
	names := make([]string, 0, len(m.docs))
	for name := range m.docs {
		names = append(names, name)
	}
	sort.Strings(names)

	docs := make([]store.Document, 0, len(names))
	for _, name := range names {
		docs = append(docs, m.docs[name])
	}
	return docs, nil
}

func (m *memStore) AppendTrace(_ context.Context, r trace.Record) error {
	m.traces = append(m.traces, r)
	return nil
}

func (m *memStore) ListTraces(context.Context) ([]trace.Record, error) {
	out := make([]trace.Record, len(m.traces))
	for i, r := range m.traces {
		out[len(out)-1-i] = r
	}
	return out, nil
}

func testDetector(t *testing.T, st Store, threshold float64) *Detector {
	t.Helper()

	key := make([]byte, codec.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	c, err := codec.New(key)
	require.NoError(t, err)

	prints, err := fingerprint.New(fingerprint.PolicyExact, nil)
	require.NoError(t, err)
	scorer, err := similarity.NewEngine(similarity.DefaultParams())
	require.NoError(t, err)

	d, err := New(c, prints, scorer, trace.NewLedger(), st, threshold)
	require.NoError(t, err)
	return d
}

func TestNewRejectsBadThreshold(t *testing.T) {
	for _, threshold := range []float64{-0.1, 0, 1.5} {
		_, err := New(nil, nil, nil, nil, newMemStore(), threshold)
		assert.Error(t, err, "threshold %v", threshold)
	}
}

func TestUploadSealsStoresAndAudits(t *testing.T) {
	st := newMemStore()
	d := testDetector(t, st, 0.45)
	ctx := context.Background()

	doc, err := d.Upload(ctx, "Policy_A", "Attendance is mandatory for all exams.", "alice")
	require.NoError(t, err)

	assert.Equal(t, "Policy_A", doc.Name)
	assert.Equal(t, fingerprint.Exact("Attendance is mandatory for all exams."), doc.Fingerprint)
	assert.NotContains(t, string(doc.SealedBody), "Attendance", "body must be sealed, not plaintext")

	require.Len(t, st.traces, 1)
	r := st.traces[0]
	assert.Equal(t, trace.ActionUpload, r.Action)
	assert.Equal(t, "Policy_A", r.Document)
	assert.Equal(t, doc.Fingerprint, r.Fingerprint)
	assert.Equal(t, "alice", r.User)
	assert.True(t, trace.NewLedger().Check(r))
}

func TestUploadReplacesOnSameName(t *testing.T) {
	st := newMemStore()
	d := testDetector(t, st, 0.45)
	ctx := context.Background()

	first, err := d.Upload(ctx, "Doc", "original content here", "")
	require.NoError(t, err)
	second, err := d.Upload(ctx, "Doc", "entirely different content", "")
	require.NoError(t, err)

	assert.NotEqual(t, first.Fingerprint, second.Fingerprint)
	assert.Len(t, st.docs, 1, "name is the identity key")
	assert.Len(t, st.traces, 2, "each upload emits its own record")
}

func TestAccessReturnsFingerprintAndAudits(t *testing.T) {
	st := newMemStore()
	d := testDetector(t, st, 0.45)
	ctx := context.Background()

	doc, err := d.Upload(ctx, "Policy_A", "Attendance is mandatory for all exams.", "alice")
	require.NoError(t, err)

	fp, err := d.Access(ctx, "Policy_A", "bob")
	require.NoError(t, err)
	assert.Equal(t, doc.Fingerprint, fp)

	// Audit store contains exactly one UPLOAD then one ACCESS, in
	// insertion order, both check-valid.
	require.Len(t, st.traces, 2)
	ledger := trace.NewLedger()
	assert.Equal(t, trace.ActionUpload, st.traces[0].Action)
	assert.Equal(t, trace.ActionAccess, st.traces[1].Action)
	assert.Equal(t, "bob", st.traces[1].User)
	assert.True(t, ledger.Check(st.traces[0]))
	assert.True(t, ledger.Check(st.traces[1]))
}

func TestAccessUnknownNameIsNotFound(t *testing.T) {
	st := newMemStore()
	d := testDetector(t, st, 0.45)

	_, err := d.Access(context.Background(), "missing", "")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, st.traces, "a failed lookup emits no record")
}

func TestDetectReuseParaphraseScenario(t *testing.T) {
	st := newMemStore()
	d := testDetector(t, st, 0.45)
	ctx := context.Background()

	_, err := d.Upload(ctx, "Policy_A", "Attendance is mandatory for all exams.", "")
	require.NoError(t, err)

	probe := "Attendance is mandatory for every exam."
	matches, err := d.DetectReuse(ctx, probe, "carol")
	require.NoError(t, err)

	require.Len(t, matches, 1)
	assert.Equal(t, "Policy_A", matches[0].Document)
	assert.GreaterOrEqual(t, matches[0].Similarity, 45.0)

	// REUSE_DETECTED carries the matched document's name and the
	// probe's own fingerprint, not the matched document's.
	require.Len(t, st.traces, 2)
	r := st.traces[1]
	assert.Equal(t, trace.ActionReuseDetected, r.Action)
	assert.Equal(t, "Policy_A", r.Document)
	assert.Equal(t, fingerprint.Exact(probe), r.Fingerprint)
	assert.Equal(t, "carol", r.User)
	assert.True(t, trace.NewLedger().Check(r))
}

func TestDetectReuseIdenticalAlwaysFlagged(t *testing.T) {
	st := newMemStore()
	d := testDetector(t, st, 1.0)
	ctx := context.Background()

	text := "Attendance is mandatory for all exams."
	_, err := d.Upload(ctx, "Policy_A", text, "")
	require.NoError(t, err)

	matches, err := d.DetectReuse(ctx, text, "")
	require.NoError(t, err)

	require.Len(t, matches, 1, "identical text scores 1.0 and passes any threshold <= 1")
	assert.Equal(t, 1.0, matches[0].Score)
	assert.Equal(t, 100.0, matches[0].Similarity)
}

func TestDetectReuseDisjointNeverFlagged(t *testing.T) {
	st := newMemStore()
	d := testDetector(t, st, 0.45)
	ctx := context.Background()

	_, err := d.Upload(ctx, "Policy_A", "zzz xxx qqq", "")
	require.NoError(t, err)

	matches, err := d.DetectReuse(ctx, "www yyy vvv", "")
	require.NoError(t, err)

	assert.Empty(t, matches)
	assert.Len(t, st.traces, 1, "no REUSE_DETECTED records for non-matches")
}

func TestDetectReuseSortedByDescendingScore(t *testing.T) {
	st := newMemStore()
	d := testDetector(t, st, 0.3)
	ctx := context.Background()

	_, err := d.Upload(ctx, "Near", "attendance is mandatory for all exams", "")
	require.NoError(t, err)
	_, err = d.Upload(ctx, "Exact", "attendance is mandatory for every exam", "")
	require.NoError(t, err)

	matches, err := d.DetectReuse(ctx, "attendance is mandatory for every exam", "")
	require.NoError(t, err)

	require.Len(t, matches, 2)
	assert.Equal(t, "Exact", matches[0].Document)
	assert.Equal(t, 1.0, matches[0].Score)
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestDetectReuseSurfacesDecryptionFailure(t *testing.T) {
	st := newMemStore()
	d := testDetector(t, st, 0.45)
	ctx := context.Background()

	// A document sealed under some other key is unreadable here.
	st.docs["Alien"] = store.Document{
		Name:        "Alien",
		SealedBody:  []byte("not a valid sealed body at all"),
		Fingerprint: "fp",
	}

	_, err := d.DetectReuse(ctx, "any probe text", "")
	assert.ErrorIs(t, err, codec.ErrDecryption, "unreadable documents must never be silently skipped")
}

func TestCorruptedRecordIsolated(t *testing.T) {
	st := newMemStore()
	d := testDetector(t, st, 0.45)
	ctx := context.Background()

	_, err := d.Upload(ctx, "A", "first document body", "alice")
	require.NoError(t, err)
	_, err = d.Upload(ctx, "B", "second document body", "bob")
	require.NoError(t, err)
	_, err = d.Access(ctx, "A", "alice")
	require.NoError(t, err)

	// Corrupt one record's user field after creation.
	st.traces[1].User = "mallory"

	ledger := trace.NewLedger()
	verdicts := make([]bool, len(st.traces))
	for i, r := range st.traces {
		verdicts[i] = ledger.Check(r)
	}
	assert.Equal(t, []bool{true, false, true}, verdicts)
}
