package vectordb

import (
	"context"
	"testing"

	"github.com/refsage/refsage/internal/models"
)

func mustParams(t *testing.T, minScore float64, maxResults int) models.FindParameters {
	t.Helper()
	p, err := models.NewFindParameters().MinScore(minScore).MaxResults(maxResults).Build()
	if err != nil {
		t.Fatalf("building find parameters: %v", err)
	}
	return p
}

func TestMemory_FindOrdersByScore(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	// Query along the x axis; similarity drops as vectors rotate away.
	m.Add(ctx, "far", []float32{0, 1}, nil)
	m.Add(ctx, "near", []float32{1, 0.1}, nil)
	m.Add(ctx, "exact", []float32{1, 0}, nil)

	got, err := m.Find(ctx, []float32{1, 0}, mustParams(t, 0.1, 10), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2 (the orthogonal entry scores 0)", len(got))
	}
	if got[0].Text() != "exact" || got[1].Text() != "near" {
		t.Errorf("order = [%q, %q], want [exact, near]", got[0].Text(), got[1].Text())
	}
	if got[0].Score() <= got[1].Score() {
		t.Errorf("scores not descending: %v then %v", got[0].Score(), got[1].Score())
	}
}

func TestMemory_FindTiesKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	// Identical embeddings score identically; first insert wins the tie.
	m.Add(ctx, "first", []float32{1, 0}, nil)
	m.Add(ctx, "second", []float32{1, 0}, nil)

	got, err := m.Find(ctx, []float32{1, 0}, mustParams(t, 0.5, 10), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Text() != "first" || got[1].Text() != "second" {
		t.Errorf("tie order = %v", texts(got))
	}
}

func TestMemory_FindRespectsMaxResults(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for _, name := range []string{"a", "b", "c", "d"} {
		m.Add(ctx, name, []float32{1, 0}, nil)
	}

	got, err := m.Find(ctx, []float32{1, 0}, mustParams(t, 0.5, 2), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("got %d results, want 2", len(got))
	}
}

func TestMemory_FindMinScoreExcludes(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Add(ctx, "on-axis", []float32{1, 0}, nil)
	m.Add(ctx, "diagonal", []float32{1, 1}, nil) // cosine ~0.707

	got, err := m.Find(ctx, []float32{1, 0}, mustParams(t, 0.9, 10), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Text() != "on-axis" {
		t.Errorf("results = %v, want only on-axis", texts(got))
	}
}

func TestMemory_FindFilter(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Add(ctx, "smith chunk", []float32{1, 0}, map[string]string{
		"library_path": "/tmp/refs.bib",
		"citation_key": "smith2020",
	})
	m.Add(ctx, "jones chunk", []float32{1, 0}, map[string]string{
		"library_path": "/tmp/refs.bib",
		"citation_key": "jones2021",
	})

	got, err := m.Find(ctx, []float32{1, 0}, mustParams(t, 0.5, 10), map[string]string{
		"library_path": "/tmp/refs.bib",
		"citation_key": "smith2020",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Text() != "smith chunk" {
		t.Errorf("filtered results = %v", texts(got))
	}
	if got[0].Metadata()["citation_key"] != "smith2020" {
		t.Errorf("metadata = %v", got[0].Metadata())
	}

	// Empty filter matches every entry.
	all, err := m.Find(ctx, []float32{1, 0}, mustParams(t, 0.5, 10), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("empty filter returned %d results, want 2", len(all))
	}
}

func TestMemory_Remove(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Add(ctx, "keep", []float32{1, 0}, map[string]string{"citation_key": "jones2021"})
	m.Add(ctx, "drop", []float32{1, 0}, map[string]string{"citation_key": "smith2020"})
	m.Add(ctx, "drop too", []float32{1, 0}, map[string]string{"citation_key": "smith2020"})

	if err := m.Remove(ctx, map[string]string{"citation_key": "smith2020"}); err != nil {
		t.Fatal(err)
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d after remove, want 1", m.Len())
	}

	got, err := m.Find(ctx, []float32{1, 0}, mustParams(t, 0.5, 10), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Text() != "keep" {
		t.Errorf("results after remove = %v", texts(got))
	}
}

func TestMemory_AddCopiesMetadata(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	md := map[string]string{"citation_key": "smith2020"}
	m.Add(ctx, "chunk", []float32{1, 0}, md)
	md["citation_key"] = "mutated"

	got, err := m.Find(ctx, []float32{1, 0}, mustParams(t, 0.5, 10), map[string]string{"citation_key": "smith2020"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("stored metadata was aliased to the caller's map")
	}
}

func texts(results []models.FindResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Text()
	}
	return out
}
