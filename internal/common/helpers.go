// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: источник времени, границы календарных дней (UTC), форматирование.
package common

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// Day — длительность календарных суток.
const Day = 24 * time.Hour

// Clock — источник текущего времени. В тестах подменяется фиксированным.
type Clock interface {
	Now() time.Time
}

// SystemClock возвращает настоящее время.
type SystemClock struct{}

// Now возвращает текущее время.
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock всегда возвращает одно и то же время. Нужен тестам и разовым задачам.
type FixedClock struct {
	T time.Time
}

// Now возвращает зафиксированное время.
func (c FixedClock) Now() time.Time { return c.T }

// StartOfDayUTC возвращает полночь (UTC) календарного дня, в который попадает t.
//
// Примеры:
//
//	StartOfDayUTC(2026-10-15 23:59 UTC)    → 2026-10-15 00:00 UTC
//	StartOfDayUTC(2026-10-16 01:30 +03:00) → 2026-10-15 00:00 UTC
func StartOfDayUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween возвращает количество календарных дней (UTC) от from до to.
// Время суток не учитывается: важны только даты.
func DaysBetween(from, to time.Time) int {
	return int(StartOfDayUTC(to).Sub(StartOfDayUTC(from)) / Day)
}

// FormatDate форматирует дату в вид 2006-01-02 (UTC).
func FormatDate(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

// LoadLocation загружает часовой пояс по имени.
// Если не удалось — используем UTC, чтобы сервис всё равно запустился.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.WithError(err).WithField("timezone", name).Warn("Не удалось загрузить часовой пояс, используем UTC")
		return time.UTC
	}
	return loc
}
