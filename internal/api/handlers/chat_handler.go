package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/refsage/refsage/internal/services"
)

type ChatHandler struct {
	chat *services.ChatService
}

func NewChatHandler(chat *services.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type ChatRequest struct {
	LibraryPath string `json:"library_path"`
	CitationKey string `json:"citation_key"`
	Query       string `json:"query"`
}

// QueryEntry answers one question about a bibliography entry. Typed LLM and
// retrieval failures come back as a role=error message in the conversation,
// not as an HTTP error.
func (h *ChatHandler) QueryEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := ctx.Value("user_id").(string); !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.LibraryPath == "" || req.CitationKey == "" || req.Query == "" {
		http.Error(w, "library_path, citation_key and query are required", http.StatusBadRequest)
		return
	}

	reply, err := h.chat.Ask(ctx, req.LibraryPath, req.CitationKey, req.Query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reply)
}

// GetHistory returns the stored conversation for one entry.
func (h *ChatHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
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

	messages, err := h.chat.History(ctx, libraryPath, citationKey)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messages)
}
