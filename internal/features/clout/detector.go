// Package clout — detector.go ловит накрутку клаута.
package clout

import (
	"context"

	log "github.com/sirupsen/logrus"

	"codeblooded.dev/clout/internal/common"
)

// DetectCloutGaming проверяет действие на накрутку.
//
// Возвращает:
//   - common.ErrRateLimited — больше RateLimit транзакций за RateWindow
//   - common.ErrReciprocalPattern — для оценок и лайков: какой-то один получатель
//     получил от пользователя больше Reciprocal таких действий за ReciprocalWin
//   - nil — всё чисто
//
// Ошибки чтения не блокируют начисление: считаем, что накрутки нет.
func (s *Service) DetectCloutGaming(ctx context.Context, userID string, action ActionType) error {
	now := s.clock.Now()

	recent, err := s.store.CountActionsSince(ctx, userID, now.Add(-s.rules.RateWindow))
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Не удалось посчитать недавние транзакции")
	} else if recent > s.rules.RateLimit {
		return common.ErrRateLimited
	}

	if !isReciprocalAction(action) {
		return nil
	}

	byTarget, err := s.store.CountByTargetSince(ctx, userID, action, now.Add(-s.rules.ReciprocalWin))
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"user_id":     userID,
			"action_type": action,
		}).Warn("Не удалось проверить взаимную накрутку")
		return nil
	}
	for _, n := range byTarget {
		if n > s.rules.Reciprocal {
			return common.ErrReciprocalPattern
		}
	}
	return nil
}
