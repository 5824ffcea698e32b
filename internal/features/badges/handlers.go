// Package badges — handlers.go отдаёт бейджи пользователя по HTTP.
package badges

import (
	"net/http"
	"strings"

	"codeblooded.dev/clout/internal/common"
)

// Handler обрабатывает HTTP-запросы к бейджам.
type Handler struct {
	service *Service
}

// NewHandler создаёт обработчик бейджей.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register вешает маршруты на mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/users/{id}/badges", h.HandleUserBadges)
	mux.HandleFunc("GET /api/v1/users/{id}/badges/all", h.HandleAllBadges)
}

// HandleUserBadges — полученные бейджи, новые первыми.
func (h *Handler) HandleUserBadges(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.PathValue("id"))
	if userID == "" {
		common.WriteError(w, common.ErrInvalidAction)
		return
	}
	list, err := h.service.GetUserBadges(r.Context(), userID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, list)
}

// HandleAllBadges — весь каталог с отметками о получении.
func (h *Handler) HandleAllBadges(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.PathValue("id"))
	if userID == "" {
		common.WriteError(w, common.ErrInvalidAction)
		return
	}
	list, err := h.service.GetAllBadgesWithUserStatus(r.Context(), userID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, list)
}
