package summarizer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/refsage/refsage/internal/core"
	"github.com/refsage/refsage/internal/models"
)

// scriptedLLM returns a fixed reply (or the rendered prompt back when reply
// is empty) and records every prompt it saw.
type scriptedLLM struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (f *scriptedLLM) Chat(_ context.Context, conv []models.ChatMessage, _ models.InferenceParameters) (models.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.ChatMessage{}, f.err
	}
	prompt := conv[len(conv)-1].Content
	f.prompts = append(f.prompts, prompt)
	reply := f.reply
	if reply == "" {
		reply = prompt
	}
	return models.AssistantMessage(reply), nil
}

func (f *scriptedLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

var _ core.LLMClient = (*scriptedLLM)(nil)

// tagSummarizer wraps each input as s(input) without calling the LLM.
type tagSummarizer struct{}

func (tagSummarizer) Summarize(_ context.Context, _ core.LLMClient, text string) (string, error) {
	return "s(" + text + ")", nil
}

func (t tagSummarizer) SummarizeAll(ctx context.Context, llm core.LLMClient, texts []string) (string, error) {
	return t.Summarize(ctx, llm, strings.Join(texts, "\n"))
}

// identitySummarizer returns its input unchanged, so it never shrinks.
type identitySummarizer struct{}

func (identitySummarizer) Summarize(_ context.Context, _ core.LLMClient, text string) (string, error) {
	return text, nil
}

func (identitySummarizer) SummarizeAll(_ context.Context, _ core.LLMClient, texts []string) (string, error) {
	return strings.Join(texts, "\n"), nil
}

// constSummarizer always returns the same short string.
type constSummarizer struct {
	out   string
	mu    sync.Mutex
	calls int
}

func (c *constSummarizer) Summarize(_ context.Context, _ core.LLMClient, _ string) (string, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.out, nil
}

func (c *constSummarizer) SummarizeAll(ctx context.Context, llm core.LLMClient, texts []string) (string, error) {
	return c.Summarize(ctx, llm, strings.Join(texts, "\n"))
}

func TestPromptTemplate_Render(t *testing.T) {
	tpl := NewPromptTemplate("A={a} B={b} A={a}")
	got := tpl.Render(map[string]string{"a": "1", "b": "2"})
	if got != "A=1 B=2 A=1" {
		t.Errorf("Render = %q", got)
	}
}

func TestPromptTemplate_RenderSinglePass(t *testing.T) {
	// A value containing another slot must not be expanded again.
	tpl := NewPromptTemplate("{a}")
	got := tpl.Render(map[string]string{"a": "{b}", "b": "nope"})
	if got != "{b}" {
		t.Errorf("Render expanded recursively: %q", got)
	}
}

func TestSplitOverlapping(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		size    int
		overlap int
		want    []string
	}{
		{"empty", "", 4, 1, nil},
		{"fits", "abc", 4, 1, []string{"abc"}},
		{"exact", "abcd", 4, 1, []string{"abcd"}},
		{"no overlap", "abcdefgh", 3, 0, []string{"abc", "def", "gh"}},
		{"overlap", "abcdefgh", 4, 2, []string{"abcd", "cdef", "efgh"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitOverlapping(tt.text, tt.size, tt.overlap)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d parts %q, want %d %q", len(got), got, len(tt.want), tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("part %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestStuff_SingleCall(t *testing.T) {
	llm := &scriptedLLM{reply: "short"}
	s := NewStuff(NewPromptTemplate("summarize: {text}"), models.InferenceParameters{})

	got, err := s.Summarize(context.Background(), llm, "the document")
	if err != nil {
		t.Fatal(err)
	}
	if got != "short" {
		t.Errorf("summary = %q", got)
	}
	if llm.calls() != 1 {
		t.Errorf("LLM calls = %d, want 1", llm.calls())
	}
	if llm.prompts[0] != "summarize: the document" {
		t.Errorf("prompt = %q", llm.prompts[0])
	}
}

func TestStuff_SummarizeAllJoins(t *testing.T) {
	llm := &scriptedLLM{}
	s := NewStuff(NewPromptTemplate("{text}"), models.InferenceParameters{})

	got, err := s.SummarizeAll(context.Background(), llm, []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "a\nb\nc" {
		t.Errorf("joined prompt = %q", got)
	}
}

func TestStuff_PropagatesError(t *testing.T) {
	llm := &scriptedLLM{err: core.ErrLLMRateLimited}
	s := NewStuff(nil, models.InferenceParameters{})

	_, err := s.Summarize(context.Background(), llm, "x")
	if !errors.Is(err, core.ErrLLMRateLimited) {
		t.Errorf("err = %v, want ErrLLMRateLimited", err)
	}
}

func TestNewMapReduce_Validation(t *testing.T) {
	chunk := &constSummarizer{out: "x"}
	tests := []struct {
		name      string
		chunkSize int
		overlap   int
	}{
		{"zero chunk size", 0, 0},
		{"negative chunk size", -1, 0},
		{"negative overlap", 10, -1},
		{"overlap equals chunk size", 10, 10},
		{"overlap exceeds chunk size", 10, 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewMapReduce(chunk, chunk, tt.chunkSize, tt.overlap); err == nil {
				t.Error("expected construction error")
			}
		})
	}

	if _, err := NewMapReduce(nil, chunk, 10, 2); err == nil {
		t.Error("expected error for nil chunk summarizer")
	}
	if _, err := NewMapReduce(chunk, nil, 10, 2); err == nil {
		t.Error("expected error for nil combine summarizer")
	}
}

func TestMapReduce_ShrinksThenCombines(t *testing.T) {
	chunk := &constSummarizer{out: "c"}
	combine := &constSummarizer{out: "final"}
	m, err := NewMapReduce(chunk, combine, 10, 2)
	if err != nil {
		t.Fatal(err)
	}

	long := strings.Repeat("x", 100)
	got, err := m.Summarize(context.Background(), nil, long)
	if err != nil {
		t.Fatal(err)
	}
	if got != "final" {
		t.Errorf("summary = %q, want %q", got, "final")
	}
	if chunk.calls == 0 {
		t.Error("chunk summarizer never invoked")
	}
	if combine.calls != 1 {
		t.Errorf("combine calls = %d, want 1", combine.calls)
	}
}

func TestMapReduce_ShortInputSkipsChunking(t *testing.T) {
	chunk := &constSummarizer{out: "c"}
	combine := &constSummarizer{out: "final"}
	m, err := NewMapReduce(chunk, combine, 100, 10)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := m.Summarize(context.Background(), nil, "short"); err != nil {
		t.Fatal(err)
	}
	if chunk.calls != 0 {
		t.Errorf("chunk summarizer ran %d times on text below chunk size", chunk.calls)
	}
	if combine.calls != 1 {
		t.Errorf("combine calls = %d, want 1", combine.calls)
	}
}

func TestMapReduce_NonShrinkingInputFails(t *testing.T) {
	m, err := NewMapReduce(identitySummarizer{}, &constSummarizer{out: "final"}, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	m.MaxRounds = 3

	_, err = m.Summarize(context.Background(), nil, strings.Repeat("x", 50))
	if err == nil {
		t.Fatal("expected a round-limit error, got nil")
	}
	if !strings.Contains(err.Error(), "not shrinking") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRefine_SequentialFold(t *testing.T) {
	// Echo LLM makes the final running summary the full fold transcript, so
	// ordering mistakes show up directly in the output.
	llm := &scriptedLLM{}
	r, err := NewRefine(tagSummarizer{}, NewPromptTemplate("[{current_summary}+{new_document}]"), models.InferenceParameters{})
	if err != nil {
		t.Fatal(err)
	}

	got, err := r.SummarizeAll(context.Background(), llm, []string{"A", "B", "C"})
	if err != nil {
		t.Fatal(err)
	}
	want := "[[[+s(A)]+s(B)]+s(C)]"
	if got != want {
		t.Errorf("fold = %q, want %q", got, want)
	}
	if llm.calls() != 3 {
		t.Errorf("combine calls = %d, want 3", llm.calls())
	}
}

func TestRefine_EmptyInput(t *testing.T) {
	llm := &scriptedLLM{}
	r, err := NewRefine(tagSummarizer{}, nil, models.InferenceParameters{})
	if err != nil {
		t.Fatal(err)
	}

	got, err := r.SummarizeAll(context.Background(), llm, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("summary of no texts = %q, want empty", got)
	}
	if llm.calls() != 0 {
		t.Errorf("LLM called %d times for no texts", llm.calls())
	}
}

func TestNewRefine_RequiresSection(t *testing.T) {
	if _, err := NewRefine(nil, nil, models.InferenceParameters{}); err == nil {
		t.Error("expected error for nil section summarizer")
	}
}
