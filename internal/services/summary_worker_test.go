package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSummaryWorker_DeliversResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := newMemorySummaryStore()
	llm := &countingLLM{}
	worker := NewSummaryWorker(newTestSummaryService(store, llm), 4)
	worker.Start(ctx, 1)

	done := make(chan SummaryResult, 1)
	worker.Submit(ctx, SummaryRequest{
		LibraryPath: "/tmp/refs.bib",
		CitationKey: "smith2020",
		Texts:       []string{"text"},
	}, func(res SummaryResult) { done <- res })

	select {
	case res := <-done:
		if res.Err != nil {
			t.Fatalf("worker returned error: %v", res.Err)
		}
		if res.Summary.Content != "S1" {
			t.Errorf("summary = %q, want S1", res.Summary.Content)
		}
		if res.Request.CitationKey != "smith2020" {
			t.Errorf("request echoed back = %+v", res.Request)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("worker never delivered a result")
	}
}

func TestSummaryWorker_CancelledBeforeSubmit(t *testing.T) {
	// No worker goroutines and a full queue, so Submit can only take the
	// cancellation branch.
	store := newMemorySummaryStore()
	llm := &countingLLM{}
	worker := NewSummaryWorker(newTestSummaryService(store, llm), 1)
	worker.jobs <- summaryJob{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan SummaryResult, 1)
	worker.Submit(ctx, SummaryRequest{CitationKey: "smith2020"}, func(res SummaryResult) { done <- res })

	select {
	case res := <-done:
		if !errors.Is(res.Err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", res.Err)
		}
	case <-time.After(time.Second):
		t.Fatal("callback never fired")
	}
	if llm.count() != 0 {
		t.Errorf("LLM was called %d times for a cancelled submission", llm.count())
	}
}

func TestSummaryWorker_CancelledWhileQueued(t *testing.T) {
	store := newMemorySummaryStore()
	llm := &countingLLM{}
	worker := NewSummaryWorker(newTestSummaryService(store, llm), 4)

	jobCtx, jobCancel := context.WithCancel(context.Background())

	done := make(chan SummaryResult, 1)
	worker.Submit(jobCtx, SummaryRequest{
		LibraryPath: "/tmp/refs.bib",
		CitationKey: "smith2020",
		Texts:       []string{"text"},
	}, func(res SummaryResult) { done <- res })

	// Cancel after enqueue but before any worker runs, then start workers.
	jobCancel()
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	worker.Start(workerCtx, 1)

	select {
	case res := <-done:
		if !errors.Is(res.Err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", res.Err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("callback never fired")
	}
	if llm.count() != 0 {
		t.Errorf("LLM was called %d times for a job cancelled while queued", llm.count())
	}
	if store.puts != 0 {
		t.Errorf("cancelled job wrote %d summaries", store.puts)
	}
}
