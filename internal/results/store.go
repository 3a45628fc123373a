// Package results persists executor outcomes in one store per execution kind.
//
// Two write disciplines exist. WriteMerge (upsert) is used by single-scenario
// executors that must not destroy sibling results: it reads the store, drops
// any record with the incoming id, appends the new record and persists the
// whole collection. WriteReplace is used by batch executors: the store
// becomes exactly the set of records observed in that run, so cases not
// exercised in the latest batch read back as missing.
//
// WriteMerge is a read-modify-write that is not atomic across processes. Two
// executors merging into the same store at the same time can lose one update
// (the last rename wins). Individual writes are atomic, so a reader never sees
// a partially written file. Callers that need serialization must ask for it
// explicitly with FileStore.WithLock.
package results

import (
	"errors"
	"fmt"
	"sync"

	"github.com/lucasnoah/deliverynote/internal/kind"
)

// ErrNoStore is returned for kinds that have no result store (manual).
var ErrNoStore = errors.New("kind has no result store")

// Source is the read side of a store, as used by reconciliation.
type Source interface {
	ReadAll(k kind.Kind) (map[string]string, error)
}

// Store is a per-kind mapping from test case id to outcome.
type Store interface {
	Source
	Records(k kind.Kind) ([]Record, error)
	WriteMerge(k kind.Kind, rec Record) error
	WriteReplace(k kind.Kind, recs []Record) error
}

// toMap collapses records into id -> outcome. Later records win; records
// without an id are ignored and a null outcome removes earlier evidence.
func toMap(recs []Record) map[string]string {
	m := make(map[string]string, len(recs))
	for _, r := range recs {
		if r.TestCaseID == "" {
			continue
		}
		if !r.HasOutcome() {
			delete(m, r.TestCaseID)
			continue
		}
		m[r.TestCaseID] = r.Outcome
	}
	return m
}

// merge returns recs without any record for rec's id, with rec appended.
func merge(recs []Record, rec Record) []Record {
	out := make([]Record, 0, len(recs)+1)
	for _, r := range recs {
		if r.TestCaseID != rec.TestCaseID {
			out = append(out, r)
		}
	}
	return append(out, rec)
}

func checkKind(k kind.Kind) error {
	if !k.Automated() {
		return fmt.Errorf("%s: %w", k, ErrNoStore)
	}
	return nil
}

func checkRecord(rec Record) error {
	if rec.TestCaseID == "" {
		return errors.New("record has no test_case_id")
	}
	return nil
}

// MemStore is an in-memory Store with the same semantics as FileStore.
type MemStore struct {
	mu    sync.Mutex
	kinds map[kind.Kind][]Record
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{kinds: make(map[kind.Kind][]Record)}
}

func (m *MemStore) ReadAll(k kind.Kind) (map[string]string, error) {
	recs, err := m.Records(k)
	if err != nil {
		return nil, err
	}
	return toMap(recs), nil
}

func (m *MemStore) Records(k kind.Kind) ([]Record, error) {
	if err := checkKind(k); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Record(nil), m.kinds[k]...), nil
}

func (m *MemStore) WriteMerge(k kind.Kind, rec Record) error {
	if err := checkKind(k); err != nil {
		return err
	}
	if err := checkRecord(rec); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kinds[k] = merge(m.kinds[k], rec)
	return nil
}

func (m *MemStore) WriteReplace(k kind.Kind, recs []Record) error {
	if err := checkKind(k); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kinds[k] = append([]Record(nil), recs...)
	return nil
}
