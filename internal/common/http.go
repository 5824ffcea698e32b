// Package common — http.go содержит общие функции для JSON-ответов API.
package common

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// ErrorResponse — тело ответа с ошибкой.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteJSON пишет payload как JSON с указанным статусом.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.WithError(err).Warn("Ошибка записи JSON-ответа")
	}
}

// WriteError выбирает код ответа по ошибке:
// ErrInvalidAction → 400, ErrUserNotFound → 404, остальное → 500.
func WriteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidAction):
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{Code: "invalid_request", Message: err.Error()})
	case errors.Is(err, ErrUserNotFound):
		WriteJSON(w, http.StatusNotFound, ErrorResponse{Code: "not_found", Message: err.Error()})
	default:
		log.WithError(err).Error("Внутренняя ошибка API")
		WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Code: "internal_error", Message: "внутренняя ошибка сервера"})
	}
}
