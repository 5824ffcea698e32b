// Package clout — streak.go считает серию дней активности.
package clout

import (
	"time"

	"codeblooded.dev/clout/internal/common"
)

// streakLookback — сколько последних дат активности берём для подсчёта серии.
const streakLookback = 7

// ActivityStreak считает длину серии по датам активности, отсортированным по убыванию.
//
// Идём от сегодняшнего дня назад: i-я дата должна отстоять от сегодня ровно на i дней.
// Первый разрыв останавливает счёт.
//
// Примеры (сегодня = 15):
//
//	[15, 14, 13]  → 3
//	[15, 13]      → 1
//	[14, 13]      → 0 (сегодня активности не было)
func ActivityStreak(dates []time.Time, now time.Time) int {
	streak := 0
	for i, d := range dates {
		if common.DaysBetween(d, now) != i {
			break
		}
		streak++
	}
	return streak
}

// nextProfileStreak обновляет серию, хранимую в профиле, при новом действии.
// Тот же день — без изменений, вчера — +1, иначе серия начинается заново.
func nextProfileStreak(current int, last *time.Time, now time.Time) int {
	if last == nil {
		return 1
	}
	switch common.DaysBetween(*last, now) {
	case 0:
		if current < 1 {
			return 1
		}
		return current
	case 1:
		return current + 1
	default:
		return 1
	}
}
