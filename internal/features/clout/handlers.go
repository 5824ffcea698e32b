// Package clout — handlers.go отдаёт статистику клаута по HTTP.
package clout

import (
	"net/http"
	"strconv"
	"strings"

	"codeblooded.dev/clout/internal/common"
)

// Handler обрабатывает HTTP-запросы к клауту.
type Handler struct {
	service *Service
}

// NewHandler создаёт обработчик клаута.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register вешает маршруты на mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/users/{id}/clout", h.HandleStats)
	mux.HandleFunc("GET /api/v1/leaderboard", h.HandleLeaderboard)
	mux.HandleFunc("GET /api/v1/stats", h.HandlePlatformStats)
}

// HandleStats — GET /api/v1/users/{id}/clout.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.PathValue("id"))
	if userID == "" {
		common.WriteError(w, common.ErrInvalidAction)
		return
	}
	stats, err := h.service.GetUserCloutStats(r.Context(), userID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, stats)
}

// HandleLeaderboard — GET /api/v1/leaderboard?limit=N.
func (h *Handler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			common.WriteJSON(w, http.StatusBadRequest, common.ErrorResponse{Code: "invalid_request", Message: "limit должен быть числом"})
			return
		}
		limit = n
	}
	entries, err := h.service.GetLeaderboard(r.Context(), limit)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if entries == nil {
		entries = []LeaderboardEntry{}
	}
	common.WriteJSON(w, http.StatusOK, entries)
}

// HandlePlatformStats — GET /api/v1/stats.
func (h *Handler) HandlePlatformStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetPlatformStats(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, stats)
}
