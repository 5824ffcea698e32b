// Package clout — multiplier.go вычисляет множитель начисления.
package clout

import (
	"context"
	"math"
)

// ExpertiseProvider — точка расширения для бонуса за экспертизу.
type ExpertiseProvider interface {
	ExpertiseBonus(ctx context.Context, userID string) (float64, error)
}

// NoExpertise всегда даёт нулевой бонус.
type NoExpertise struct{}

// ExpertiseBonus возвращает 0.
func (NoExpertise) ExpertiseBonus(context.Context, string) (float64, error) { return 0, nil }

// Multiplier собирает множитель из серии, «помощи» и экспертизы.
// Результат всегда в диапазоне [1.0, maxMul].
func Multiplier(streak, helperScore int, expertise, maxMul float64) float64 {
	m := 1.0
	if streak >= streakBonusDays {
		m += streakBonus
	}
	if helperScore > helperBonusLikes {
		m += helperBonus
	}
	if expertise > 0 {
		m += expertise
	}
	return math.Min(m, maxMul)
}

// FinalAmount — базовый вес, умноженный на множитель и округлённый до целого.
func FinalAmount(base int, multiplier float64) int {
	return int(math.Round(float64(base) * multiplier))
}
