package services

import (
	"context"
	"log"

	"github.com/refsage/refsage/internal/models"
)

// SummaryResult is delivered to the submitter's callback when a background
// summarization finishes. Exactly one of Summary/Err is meaningful.
type SummaryResult struct {
	Request SummaryRequest
	Summary models.Summary
	Err     error
}

// SummaryCallback receives the result on the worker goroutine. Callers that
// need single-threaded delivery should forward into their own channel.
type SummaryCallback func(SummaryResult)

type summaryJob struct {
	ctx      context.Context
	request  SummaryRequest
	callback SummaryCallback
}

// SummaryWorker runs summarization off the caller's thread: submissions go
// onto a bounded queue, worker goroutines drain it, and results come back
// through per-job callbacks. Cancelling a job's context discards it before
// the next LLM call boundary; an in-flight provider call is not interrupted,
// only its result is dropped.
type SummaryWorker struct {
	service *SummaryService
	jobs    chan summaryJob
}

func NewSummaryWorker(service *SummaryService, queueSize int) *SummaryWorker {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &SummaryWorker{
		service: service,
		jobs:    make(chan summaryJob, queueSize),
	}
}

// Start launches the worker goroutines. They exit when ctx is cancelled.
func (w *SummaryWorker) Start(ctx context.Context, numWorkers int) {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	for n := 1; n <= numWorkers; n++ {
		go func(n int) {
			for {
				select {
				case <-ctx.Done():
					log.Printf("SummaryWorker: worker %d shutting down", n)
					return
				case job := <-w.jobs:
					w.run(job)
				}
			}
		}(n)
	}
}

// Submit enqueues a request. The callback fires exactly once, with either
// the summary or the failure (including cancellation). Submit blocks only
// when the queue is full.
func (w *SummaryWorker) Submit(ctx context.Context, req SummaryRequest, cb SummaryCallback) {
	select {
	case w.jobs <- summaryJob{ctx: ctx, request: req, callback: cb}:
	case <-ctx.Done():
		cb(SummaryResult{Request: req, Err: ctx.Err()})
	}
}

func (w *SummaryWorker) run(job summaryJob) {
	// Cancelled while queued: don't start the pipeline at all.
	if err := job.ctx.Err(); err != nil {
		job.callback(SummaryResult{Request: job.request, Err: err})
		return
	}
	summary, err := w.service.Summarize(job.ctx, job.request)
	job.callback(SummaryResult{Request: job.request, Summary: summary, Err: err})
}
