package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/guildstats/recordbot/internal/logic"
	"github.com/guildstats/recordbot/internal/models"
)

type lookupRequest struct {
	Name string `validate:"required,max=100"`
}

// GetRecord returns one user's aggregated record
// @Summary User record
// @Tags Records
// @Produce json
// @Param name path string true "Subject name (case-insensitive)"
// @Success 200 {object} models.UserSummary
// @Failure 404 {object} map[string]string "No records"
// @Failure 503 {object} map[string]string "Source unavailable"
// @Router /records/{name} [get]
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	req := lookupRequest{Name: chi.URLParam(r, "name")}
	if err := h.validator.Struct(req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid name")
		return
	}

	res := logic.ResolveLookup(r.Context(), h.records, h.logger, req.Name)
	switch res.Status {
	case models.StatusOK:
		h.jsonResponse(w, http.StatusOK, res.Summary)
	case models.StatusNoRecords:
		h.errorResponse(w, http.StatusNotFound, "No records found")
	default:
		h.errorResponse(w, http.StatusServiceUnavailable, "Record source temporarily unavailable")
	}
}

// GetRanking returns one page of the win-rate leaderboard
// @Summary Win-rate leaderboard
// @Tags Records
// @Produce json
// @Param page query int false "Page" default(1)
// @Param limit query int false "Limit" default(10)
// @Success 200 {object} models.RankingPageResponse
// @Failure 404 {object} map[string]string "No records"
// @Failure 503 {object} map[string]string "Source unavailable"
// @Router /ranking [get]
func (h *Handler) GetRanking(w http.ResponseWriter, r *http.Request) {
	limit := h.pageSize
	page := 1
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	if p := r.URL.Query().Get("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}

	res := logic.ResolveRanking(r.Context(), h.records, h.logger)
	switch res.Status {
	case models.StatusEmpty:
		h.errorResponse(w, http.StatusNotFound, "No records found")
		return
	case models.StatusUnavailable:
		h.errorResponse(w, http.StatusServiceUnavailable, "Record source temporarily unavailable")
		return
	}

	pages := logic.Paginate(res.Entries, limit)
	resp := models.RankingPageResponse{
		Entries: []models.RankingEntry{},
		Total:   len(res.Entries),
		Page:    page,
		Pages:   len(pages),
	}
	if page <= len(pages) {
		resp.Entries = pages[page-1].Entries
	}
	h.jsonResponse(w, http.StatusOK, resp)
}
