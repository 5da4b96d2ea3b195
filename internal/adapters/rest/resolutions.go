package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
	"github.com/ewilliams-labs/trackfinder/internal/logger"
)

const maxListLimit = 100

type listResolutionsResponse struct {
	Resolutions []domain.JournalEntry `json:"resolutions"`
}

// ListResolutions handles GET /resolutions?limit=n
func (h *Handler) ListResolutions(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		writeError(w, http.StatusNotFound, codeJournalDisabled, "resolution journal is not configured")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxListLimit {
			writeError(w, http.StatusBadRequest, codeInvalidRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	entries, err := h.journal.Recent(r.Context(), limit)
	if err != nil {
		logger.FromContext(r.Context(), h.logger).Error("list resolutions failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to read journal")
		return
	}
	if entries == nil {
		entries = []domain.JournalEntry{}
	}
	writeJSON(w, http.StatusOK, listResolutionsResponse{Resolutions: entries})
}

// GetResolution handles GET /resolutions/{id}
func (h *Handler) GetResolution(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		writeError(w, http.StatusNotFound, codeJournalDisabled, "resolution journal is not configured")
		return
	}

	entry, err := h.journal.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, codeNotFound, "resolution not found")
			return
		}
		logger.FromContext(r.Context(), h.logger).Error("get resolution failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to read journal")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
