// Package badges — notifier.go описывает получателей уведомлений о новых бейджах.
package badges

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
)

// Notifier получает событие о новом бейдже. Ответ не ждём:
// ошибка только логируется и на выдачу бейджа не влияет.
type Notifier interface {
	Notify(ctx context.Context, u Unlock) error
}

// LogNotifier пишет событие в лог.
type LogNotifier struct{}

// Notify логирует получение бейджа.
func (LogNotifier) Notify(_ context.Context, u Unlock) error {
	log.WithFields(log.Fields{
		"user_id":  u.UserID,
		"badge_id": u.Badge.ID,
		"tier":     u.Badge.Tier,
	}).Infof("🏆 Получен бейдж «%s»", u.Badge.Name)
	return nil
}

// MultiNotifier рассылает событие всем получателям по очереди.
type MultiNotifier []Notifier

// Notify вызывает всех получателей, даже если кто-то из них упал.
func (m MultiNotifier) Notify(ctx context.Context, u Unlock) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, u); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
