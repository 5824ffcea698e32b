package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	log "github.com/sirupsen/logrus"

	"codeblooded.dev/clout/internal/common"
)

// Recover ловит панику в обработчике, логирует стек и отвечает 500.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.WithFields(log.Fields{
					"component": "panic_recovery",
					"panic":     fmt.Sprintf("%v", rec),
					"path":      r.URL.Path,
					"stack":     string(debug.Stack()),
				}).Error("ПАНИКА в обработчике — восстановлено")
				common.WriteJSON(w, http.StatusInternalServerError, common.ErrorResponse{
					Code:    "internal_error",
					Message: "внутренняя ошибка сервера",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
