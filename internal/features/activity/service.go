// Package activity — service.go содержит конвейер обработки действия.
package activity

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"codeblooded.dev/clout/internal/common"
	"codeblooded.dev/clout/internal/features/badges"
	"codeblooded.dev/clout/internal/features/clout"
)

// CloutAwarder — то, что конвейеру нужно от движка репутации.
type CloutAwarder interface {
	IsScored(action clout.ActionType) bool
	AwardClout(ctx context.Context, userID string, action clout.ActionType, target clout.Target) (int, error)
}

// BadgeChecker — то, что конвейеру нужно от движка бейджей.
type BadgeChecker interface {
	CheckAndAwardBadges(ctx context.Context, userID string, action clout.ActionType, metadata map[string]string) ([]badges.Badge, error)
}

// Service связывает движки.
type Service struct {
	clout  CloutAwarder
	badges BadgeChecker
}

// NewService создаёт конвейер. checker может быть nil, если бейджи выключены.
func NewService(awarder CloutAwarder, checker BadgeChecker) *Service {
	return &Service{clout: awarder, badges: checker}
}

// Record обрабатывает одно действие.
//
// Шаги:
//  1. Проверка: пользователь указан, тип действия известен
//  2. Клаут, если действие его приносит. Ошибка записи логируется и считается нулём
//  3. Бейджи по самому действию
//  4. Если клаут начислен, ещё проверки по clout_earned и daily_activity,
//     чтобы пересчитать бейджи за счёт и за серию
//
// Ошибку возвращает только шаг 1. Бейджи в ответе идут в порядке проверки.
func (s *Service) Record(ctx context.Context, a Action) (*Result, error) {
	// Шаг 1: Проверка
	userID := strings.TrimSpace(a.UserID)
	if userID == "" {
		return nil, fmt.Errorf("%w: не указан user_id", common.ErrInvalidAction)
	}
	action, ok := clout.ParseActionType(a.Type)
	if !ok {
		return nil, fmt.Errorf("%w: неизвестный тип действия %q", common.ErrInvalidAction, a.Type)
	}
	fields := log.Fields{"user_id": userID, "action_type": action}

	res := &Result{Badges: []badges.Badge{}}

	// Шаг 2: Клаут
	if s.clout.IsScored(action) {
		amount, err := s.clout.AwardClout(ctx, userID, action, a.target())
		if err != nil {
			log.WithError(err).WithFields(fields).Error("Клаут не начислен, продолжаем без него")
			amount = 0
		}
		res.Clout = amount
	}

	if s.badges == nil {
		return res, nil
	}

	// Шаг 3-4: Бейджи
	checks := []clout.ActionType{action}
	if res.Clout > 0 {
		checks = append(checks, clout.ActionCloutEarned, clout.ActionDailyActivity)
	}
	for _, check := range checks {
		unlocked, err := s.badges.CheckAndAwardBadges(ctx, userID, check, a.Metadata)
		res.Badges = append(res.Badges, unlocked...)
		if err != nil {
			log.WithError(err).WithFields(fields).WithField("check", check).Error("Ошибка выдачи бейджей")
		}
	}

	log.WithFields(fields).WithFields(log.Fields{
		"clout":  res.Clout,
		"badges": len(res.Badges),
	}).Debugf("Действие обработано: %s, %s", common.FormatClout(res.Clout), common.FormatBadges(len(res.Badges)))

	return res, nil
}
