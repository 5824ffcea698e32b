// Package activity — handlers.go принимает действия по HTTP.
package activity

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"codeblooded.dev/clout/internal/common"
)

// Максимальный размер тела запроса с действием.
const maxActionBody = 64 << 10

// Handler обрабатывает POST /api/v1/actions.
type Handler struct {
	service *Service
}

// NewHandler создаёт обработчик действий.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register вешает маршруты на mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/actions", h.HandleRecord)
}

// HandleRecord разбирает действие и прогоняет его через конвейер.
func (h *Handler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	var a Action
	dec := json.NewDecoder(io.LimitReader(r.Body, maxActionBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		common.WriteError(w, fmt.Errorf("%w: %v", common.ErrInvalidAction, err))
		return
	}

	res, err := h.service.Record(r.Context(), a)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, res)
}
