// Package middleware содержит промежуточные обработчики HTTP для логирования,
// восстановления после паники и rate-limiting.
package middleware

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// statusRecorder запоминает код ответа.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// LogRequests логирует каждый запрос.
// Записывает: метод, путь, код ответа, длительность, адрес клиента.
func LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		entry := log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).Round(time.Microsecond).String(),
			"client":   ClientIP(r),
		})
		if rec.status >= http.StatusInternalServerError {
			entry.Warn("HTTP-запрос")
			return
		}
		entry.Debug("HTTP-запрос")
	})
}
