package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/refsage/refsage/internal/core"
	"github.com/refsage/refsage/internal/services"
)

type SummaryHandler struct {
	worker *services.SummaryWorker
	store  core.SummaryStore
}

func NewSummaryHandler(worker *services.SummaryWorker, store core.SummaryStore) *SummaryHandler {
	return &SummaryHandler{worker: worker, store: store}
}

type summaryRequest struct {
	LibraryPath string   `json:"library_path"`
	CitationKey string   `json:"citation_key"`
	Texts       []string `json:"texts"`
	Regenerate  bool     `json:"regenerate"`
}

// GenerateSummary submits a summarization task to the background worker and
// streams the result back when it completes. Cached summaries return without
// any LLM call unless regenerate is set.
func (h *SummaryHandler) GenerateSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := ctx.Value("user_id").(string); !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req summaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	done := make(chan services.SummaryResult, 1)
	h.worker.Submit(ctx, services.SummaryRequest{
		LibraryPath: req.LibraryPath,
		CitationKey: req.CitationKey,
		Texts:       req.Texts,
		Regenerate:  req.Regenerate,
	}, func(res services.SummaryResult) { done <- res })

	select {
	case res := <-done:
		if res.Err != nil {
			http.Error(w, res.Err.Error(), http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(res.Summary)
	case <-ctx.Done():
		// Client went away; the worker discards the result.
		http.Error(w, "request cancelled", http.StatusRequestTimeout)
	}
}

// GetSummary returns the stored summary for one entry, or 404.
func (h *SummaryHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := ctx.Value("user_id").(string); !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	libraryPath := r.URL.Query().Get("library_path")
	citationKey := r.URL.Query().Get("citation_key")
	if libraryPath == "" || citationKey == "" {
		http.Error(w, "library_path and citation_key are required", http.StatusBadRequest)
		return
	}

	summary, err := h.store.GetSummary(ctx, libraryPath, citationKey)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if summary == nil {
		http.Error(w, "no summary stored for this entry", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}
