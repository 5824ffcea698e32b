// Package clout — service.go содержит бизнес-логику начисления клаута.
package clout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"codeblooded.dev/clout/internal/common"
)

// Сколько последних транзакций показываем в статистике.
const recentTransactionsLimit = 50

// Сколько раз повторяем затухание одного профиля при гонке.
const decayAttempts = 3

// Размер таблицы лидеров.
const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// Service управляет репутацией пользователей.
type Service struct {
	store     Store
	rules     Rules
	expertise ExpertiseProvider
	clock     common.Clock
}

// NewService создаёт сервис клаута.
// expertise и clock можно не передавать: будут NoExpertise и системные часы.
func NewService(store Store, rules Rules, expertise ExpertiseProvider, clock common.Clock) *Service {
	if expertise == nil {
		expertise = NoExpertise{}
	}
	if clock == nil {
		clock = common.SystemClock{}
	}
	return &Service{store: store, rules: rules, expertise: expertise, clock: clock}
}

// Rules возвращает действующие правила.
func (s *Service) Rules() Rules { return s.rules }

// IsScored сообщает, приносит ли действие клаут.
func (s *Service) IsScored(action ActionType) bool { return s.rules.IsScored(action) }

// AwardClout начисляет клаут за действие и возвращает начисленную сумму.
// 0 без ошибки — действие отклонено (лимит, накрутка) или ничего не стоит.
//
// Алгоритм:
//  1. Дневной лимит по типу действия (календарный день UTC)
//  2. Проверка на накрутку
//  3. Базовый вес действия
//  4. Множитель (серия, «помощь», экспертиза), не больше MaxMultiplier
//  5. Итог = round(вес × множитель)
//  6-8. Одной транзакцией: запись в журнал, новый счёт и тир, дневная активность
func (s *Service) AwardClout(ctx context.Context, userID string, action ActionType, target Target) (int, error) {
	if userID == "" {
		return 0, common.ErrInvalidAction
	}
	now := s.clock.Now().UTC()
	fields := log.Fields{"user_id": userID, "action_type": action}

	// Шаг 1-2: Лимиты и накрутка
	if err := s.checkLimits(ctx, userID, action, now); err != nil {
		blockedTotal.WithLabelValues(blockReason(err)).Inc()
		log.WithFields(fields).WithField("reason", err.Error()).Info("Начисление клаута отклонено")
		return 0, nil
	}

	// Шаг 3-5: Сумма
	base := s.rules.Weight(action)
	amount := 0
	if base > 0 {
		amount = FinalAmount(base, s.multiplier(ctx, userID))
	}

	// Шаг 6-8: Запись
	tx := Transaction{
		ID:              uuid.NewString(),
		UserID:          userID,
		ActionType:      action,
		Amount:          amount,
		TargetUserID:    optional(target.UserID),
		TargetPostID:    optional(target.PostID),
		TargetCommentID: optional(target.CommentID),
		CreatedAt:       now,
	}
	today := common.StartOfDayUTC(now)
	rep, err := s.store.ApplyAward(ctx, tx, func(r Reputation) Reputation {
		r.Streak = nextProfileStreak(r.Streak, r.LastActivityDate, now)
		r.Score += amount
		r.Tier = CalculateTier(r.Score)
		r.LastActivityDate = &today
		return r
	})
	if err != nil {
		log.WithError(err).WithFields(fields).Error("Ошибка начисления клаута")
		return 0, fmt.Errorf("начисление клаута: %w", err)
	}

	awardsTotal.WithLabelValues(string(action)).Inc()
	pointsTotal.Add(float64(amount))
	log.WithFields(fields).WithFields(log.Fields{
		"amount": amount,
		"score":  rep.Score,
		"tier":   rep.Tier,
	}).Debugf("Начислено %s", common.FormatClout(amount))

	return amount, nil
}

// checkLimits возвращает причину отказа или nil.
func (s *Service) checkLimits(ctx context.Context, userID string, action ActionType, now time.Time) error {
	if limit, ok := s.rules.DailyLimit(action); ok {
		from := common.StartOfDayUTC(now)
		count, err := s.store.CountActionsBetween(ctx, userID, action, from, from.Add(common.Day))
		if err != nil {
			log.WithError(err).WithField("user_id", userID).Warn("Не удалось проверить дневной лимит")
		} else if count >= limit {
			return common.ErrDailyLimit
		}
	}
	return s.DetectCloutGaming(ctx, userID, action)
}

// multiplier собирает бонусы. Любая ошибка чтения = бонуса нет.
func (s *Service) multiplier(ctx context.Context, userID string) float64 {
	streak := s.GetActivityStreak(ctx, userID)

	helper, err := s.store.SumCommentLikes(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Не удалось получить лайки комментариев")
		helper = 0
	}

	expertise, err := s.expertise.ExpertiseBonus(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Не удалось получить бонус экспертизы")
		expertise = 0
	}

	return Multiplier(streak, helper, expertise, s.rules.MaxMultiplier)
}

// GetActivityStreak возвращает текущую серию дней активности.
// При ошибке чтения — 0.
func (s *Service) GetActivityStreak(ctx context.Context, userID string) int {
	dates, err := s.store.ListActivityDates(ctx, userID, streakLookback)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Не удалось получить даты активности")
		return 0
	}
	return ActivityStreak(dates, s.clock.Now())
}

// ApplyWeeklyDecay уменьшает счёт всех пользователей на DecayPercent процентов.
// Запускается планировщиком раз в неделю.
//
// Каждый профиль обновляется через compare-and-swap: если счёт успели изменить
// между чтением и записью, перечитываем и пробуем снова (до decayAttempts раз).
// Ошибка по одному профилю не останавливает остальных.
func (s *Service) ApplyWeeklyDecay(ctx context.Context) (DecayReport, error) {
	var report DecayReport

	reps, err := s.store.ListReputations(ctx)
	if err != nil {
		return report, fmt.Errorf("ошибка получения профилей: %w", err)
	}

	for _, rep := range reps {
		report.Processed++
		decayed, err := s.decayOne(ctx, rep)
		if err != nil {
			report.Failed++
			log.WithError(err).WithField("user_id", rep.UserID).Error("Ошибка затухания клаута")
			continue
		}
		if decayed {
			report.Decayed++
		}
	}
	decayedTotal.Add(float64(report.Decayed))

	log.WithFields(log.Fields{
		"processed": report.Processed,
		"decayed":   report.Decayed,
		"failed":    report.Failed,
		"percent":   s.rules.DecayPercent,
	}).Info("Еженедельное затухание клаута завершено")

	return report, nil
}

func (s *Service) decayOne(ctx context.Context, rep Reputation) (bool, error) {
	for attempt := 0; attempt < decayAttempts; attempt++ {
		next := Decay(rep.Score, s.rules.DecayPercent)
		if next == rep.Score {
			return false, nil
		}
		ok, err := s.store.CompareAndSetScore(ctx, rep.UserID, rep.Score, next, CalculateTier(next))
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		fresh, err := s.store.GetReputation(ctx, rep.UserID)
		if err != nil {
			return false, err
		}
		rep = *fresh
	}
	return false, fmt.Errorf("счёт менялся %d раз подряд", decayAttempts)
}

// GetUserCloutStats возвращает сводку по клауту пользователя. Ничего не меняет.
func (s *Service) GetUserCloutStats(ctx context.Context, userID string) (*Stats, error) {
	rep, err := s.store.GetReputation(ctx, userID)
	if err != nil {
		return nil, err
	}
	txs, err := s.store.ListTransactions(ctx, userID, recentTransactionsLimit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения транзакций: %w", err)
	}
	if txs == nil {
		txs = []Transaction{}
	}
	return &Stats{
		Score:              rep.Score,
		Tier:               rep.Tier,
		LastActivity:       rep.LastActivityDate,
		RecentTransactions: txs,
		Streak:             s.GetActivityStreak(ctx, userID),
	}, nil
}

// GetLeaderboard возвращает лучших по клауту. limit вне 1..100 приводится к границам.
func (s *Service) GetLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	switch {
	case limit <= 0:
		limit = defaultLeaderboardLimit
	case limit > maxLeaderboardLimit:
		limit = maxLeaderboardLimit
	}
	entries, err := s.store.ListLeaderboard(ctx, limit)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// GetPlatformStats возвращает общие цифры платформы.
func (s *Service) GetPlatformStats(ctx context.Context) (*PlatformStats, error) {
	return s.store.GetPlatformStats(ctx)
}

func blockReason(err error) string {
	switch {
	case errors.Is(err, common.ErrDailyLimit):
		return "daily_limit"
	case errors.Is(err, common.ErrRateLimited):
		return "rate_limit"
	case errors.Is(err, common.ErrReciprocalPattern):
		return "reciprocal"
	default:
		return "other"
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
