// Package clout — rules.go хранит веса действий, дневные лимиты и пороги тиров.
package clout

import (
	"time"

	"codeblooded.dev/clout/internal/config"
)

// Пороги тиров (включительные нижние границы).
const (
	contributorFrom = 501
	influencerFrom  = 2001
	legendFrom      = 10001
)

// Бонусы множителя.
const (
	streakBonusDays   = 7
	streakBonus       = 0.1
	helperBonusLikes  = 10 // Строго больше
	helperBonus       = 0.05
	defaultMultiplier = 1.5
)

// Rules — правила начисления клаута. Значение, а не глобальные константы:
// можно собрать из конфигурации или подменить в тестах.
type Rules struct {
	Weights       map[ActionType]int
	DailyLimits   map[ActionType]int
	RateLimit     int           // Больше стольких транзакций в окне — блок
	RateWindow    time.Duration // Окно для RateLimit
	Reciprocal    int           // Больше стольких действий к одной цели — блок
	ReciprocalWin time.Duration
	MaxMultiplier float64
	DecayPercent  int
}

// DefaultRules возвращает правила по умолчанию.
func DefaultRules() Rules {
	return Rules{
		Weights: map[ActionType]int{
			ActionPostStarReceived:    10,
			ActionCommentLikeReceived: 5,
			ActionPostFeatured:        50,
			ActionPostTrending:        25,
			ActionPostRated:           2,
			ActionCommentLiked:        1,
			ActionCommentPosted:       3,
			ActionPostCreated:         15,
		},
		DailyLimits: map[ActionType]int{
			ActionPostRated:     5,
			ActionCommentLiked:  20,
			ActionCommentPosted: 10,
		},
		RateLimit:     10,
		RateWindow:    5 * time.Minute,
		Reciprocal:    3,
		ReciprocalWin: time.Hour,
		MaxMultiplier: defaultMultiplier,
		DecayPercent:  5,
	}
}

// RulesFromConfig накладывает настройки из окружения на правила по умолчанию.
func RulesFromConfig(cfg *config.Config) Rules {
	r := DefaultRules()
	r.RateLimit = cfg.CloutRateLimitActions
	r.RateWindow = cfg.CloutRateLimitWindow
	r.Reciprocal = cfg.CloutReciprocalLimit
	r.ReciprocalWin = cfg.CloutReciprocalWindow
	r.DecayPercent = cfg.CloutDecayPercent
	return r
}

// Weight возвращает базовый вес действия. Неизвестный тип — 0.
func (r Rules) Weight(a ActionType) int {
	return r.Weights[a]
}

// IsScored сообщает, приносит ли действие клаут вообще.
func (r Rules) IsScored(a ActionType) bool {
	return r.Weights[a] > 0
}

// DailyLimit возвращает дневной лимит действия и есть ли он.
func (r Rules) DailyLimit(a ActionType) (int, bool) {
	l, ok := r.DailyLimits[a]
	return l, ok
}

// isReciprocalAction — действия, для которых проверяется взаимная накрутка.
func isReciprocalAction(a ActionType) bool {
	return a == ActionPostRated || a == ActionCommentLiked
}

// CalculateTier определяет тир по счёту.
//
//	0..500      → novice
//	501..2000   → contributor
//	2001..10000 → influencer
//	10001+      → legend
func CalculateTier(score int) Tier {
	switch {
	case score >= legendFrom:
		return TierLegend
	case score >= influencerFrom:
		return TierInfluencer
	case score >= contributorFrom:
		return TierContributor
	default:
		return TierNovice
	}
}

// Decay возвращает счёт после затухания на percent процентов (с округлением вниз).
// Целочисленная арифметика: 1000 → 950 → 902 при 5%.
func Decay(score, percent int) int {
	if score <= 0 {
		return 0
	}
	return score * (100 - percent) / 100
}
