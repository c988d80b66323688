package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/convodesk/support-engine/internal/faq"
	"github.com/convodesk/support-engine/internal/match"
)

// FAQHandler exposes the administrative CRUD surface over FAQ records.
type FAQHandler struct {
	logger   zerolog.Logger
	store    *faq.Store
	semantic *match.SemanticMatcher // nil when embeddings are disabled
}

// NewFAQHandler creates a new FAQ handler.
func NewFAQHandler(logger zerolog.Logger, store *faq.Store, semantic *match.SemanticMatcher) *FAQHandler {
	return &FAQHandler{logger: logger, store: store, semantic: semantic}
}

// FAQRequestDTO is the request body for add and update.
type FAQRequestDTO struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category,omitempty"`
}

// List handles GET /api/v1/faqs.
func (h *FAQHandler) List(w http.ResponseWriter, r *http.Request) {
	records := h.store.Load(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(records),
		"faqs":    records,
	})
}

// Get handles GET /api/v1/faqs/{id}.
func (h *FAQHandler) Get(w http.ResponseWriter, r *http.Request) {
	record, err := h.store.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "faq not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"faq":     record,
	})
}

// Add handles POST /api/v1/faqs.
func (h *FAQHandler) Add(w http.ResponseWriter, r *http.Request) {
	var dto FAQRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.store.Add(r.Context(), dto.Question, dto.Answer, dto.Category)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	h.resyncIndex()
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "faq created",
		"faq":     record,
	})
}

// Update handles PUT /api/v1/faqs/{id}.
func (h *FAQHandler) Update(w http.ResponseWriter, r *http.Request) {
	var dto FAQRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.store.Update(r.Context(), chi.URLParam(r, "id"), dto.Question, dto.Answer, dto.Category)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	h.resyncIndex()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "faq updated",
		"faq":     record,
	})
}

// Delete handles DELETE /api/v1/faqs/{id}.
func (h *FAQHandler) Delete(w http.ResponseWriter, r *http.Request) {
	removed, err := h.store.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "faq not found")
		return
	}

	h.resyncIndex()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "faq deleted",
	})
}

// Import handles POST /api/v1/faqs/import. Multipart upload with a
// "file" part and an optional "clear" field.
func (h *FAQHandler) Import(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	clearExisting := r.FormValue("clear") == "true"
	imported, err := h.store.ImportCSV(r.Context(), file, clearExisting)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	h.resyncIndex()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"message":  "import complete",
		"imported": imported,
	})
}

// Categories handles GET /api/v1/faqs/categories.
func (h *FAQHandler) Categories(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"categories": h.store.TopCategories(r.Context(), limit),
	})
}

// CategoryQuestions handles GET /api/v1/faqs/categories/{name}.
func (h *FAQHandler) CategoryQuestions(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)
	questions := h.store.CategoryQuestions(r.Context(), chi.URLParam(r, "name"), limit)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"questions": questions,
	})
}

// writeStoreError maps store errors to structured failure results.
// Validation and not-found never propagate past this boundary.
func (h *FAQHandler) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, faq.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, faq.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, faq.ErrBadFormat):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("FAQ store operation failed")
		writeError(w, http.StatusInternalServerError, "operation failed")
	}
}

// resyncIndex refreshes the vector index after a mutation. Best effort
// and off the request path; the lexical matcher covers the gap if it
// lags.
func (h *FAQHandler) resyncIndex() {
	if h.semantic == nil {
		return
	}
	go func() {
		ctx := context.Background()
		if err := h.semantic.Sync(ctx, h.store.Load(ctx)); err != nil {
			h.logger.Warn().Err(err).Msg("Vector index resync failed")
		}
	}()
}

func queryInt(r *http.Request, name string, fallback int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
