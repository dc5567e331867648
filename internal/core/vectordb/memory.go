// Package vectordb provides the in-memory VectorStore used for tests and
// offline runs. The pgvector-backed store in internal/core/database is the
// production implementation.
package vectordb

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/refsage/refsage/internal/models"
)

type entry struct {
	text      string
	embedding []float32
	metadata  map[string]string
	seq       int
}

// Memory is a brute-force cosine-similarity store. Results come back in
// descending score order; equal scores keep insertion order.
type Memory struct {
	mu      sync.RWMutex
	entries []entry
	nextSeq int
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Add(_ context.Context, text string, embedding []float32, metadata map[string]string) error {
	md := make(map[string]string, len(metadata))
	for k, v := range metadata {
		md[k] = v
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry{text: text, embedding: embedding, metadata: md, seq: m.nextSeq})
	m.nextSeq++
	return nil
}

func (m *Memory) Find(_ context.Context, queryEmbedding []float32, params models.FindParameters, filter map[string]string) ([]models.FindResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		entry
		score float64
	}
	var hits []scored
	for _, e := range m.entries {
		if !matches(e.metadata, filter) {
			continue
		}
		s := cosine(e.embedding, queryEmbedding)
		if s < params.MinScore() {
			continue
		}
		hits = append(hits, scored{entry: e, score: s})
	}

	// Stable over insertion order, so ties resolve to the earlier insert.
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	if len(hits) > params.MaxResults() {
		hits = hits[:params.MaxResults()]
	}
	out := make([]models.FindResult, 0, len(hits))
	for _, h := range hits {
		out = append(out, models.NewFindResult(h.text, h.score, h.metadata))
	}
	return out, nil
}

func (m *Memory) Remove(_ context.Context, filter map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.entries[:0]
	for _, e := range m.entries {
		if !matches(e.metadata, filter) {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	return nil
}

// Len reports how many entries are stored.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// matches checks metadata equality; an empty filter matches everything.
func matches(metadata, filter map[string]string) bool {
	for k, want := range filter {
		if metadata[k] != want {
			return false
		}
	}
	return true
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
