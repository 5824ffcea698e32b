// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: еженедельное затухание клаута
// и периодическое обновление каталога бейджей.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"codeblooded.dev/clout/internal/features/clout"
)

// Decayer — то, что планировщику нужно от движка репутации.
type Decayer interface {
	ApplyWeeklyDecay(ctx context.Context) (clout.DecayReport, error)
}

// CatalogRefresher — то, что планировщику нужно от движка бейджей.
type CatalogRefresher interface {
	RefreshCatalog(ctx context.Context) error
}

// Scheduler управляет фоновыми задачами. Расписание в UTC:
// границы дней у движка репутации тоже в UTC.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler создаёт пустой планировщик.
func NewScheduler() *Scheduler {
	return &Scheduler{cron: cron.New(cron.WithLocation(time.UTC))}
}

// AddDecay ставит затухание клаута на расписание schedule.
func (s *Scheduler) AddDecay(ctx context.Context, schedule string, d Decayer) error {
	_, err := s.cron.AddFunc(schedule, func() {
		log.Info("[CRON] Еженедельное затухание клаута")
		report, err := d.ApplyWeeklyDecay(ctx)
		if err != nil {
			log.WithError(err).Error("[CRON] Ошибка затухания")
			return
		}
		log.WithFields(log.Fields{
			"processed": report.Processed,
			"decayed":   report.Decayed,
			"failed":    report.Failed,
		}).Info("[CRON] Затухание завершено")
	})
	if err != nil {
		return fmt.Errorf("неверное расписание затухания %q: %w", schedule, err)
	}
	return nil
}

// AddCatalogRefresh ставит перечитывание каталога бейджей на расписание schedule.
func (s *Scheduler) AddCatalogRefresh(ctx context.Context, schedule string, r CatalogRefresher) error {
	_, err := s.cron.AddFunc(schedule, func() {
		log.Debug("[CRON] Обновление каталога бейджей")
		if err := r.RefreshCatalog(ctx); err != nil {
			log.WithError(err).Error("[CRON] Ошибка обновления каталога")
		}
	})
	if err != nil {
		return fmt.Errorf("неверное расписание каталога %q: %w", schedule, err)
	}
	return nil
}

// Len возвращает число задач.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.WithField("jobs", s.Len()).Info("Планировщик задач запущен (UTC)")
}

// Stop останавливает планировщик и ждёт выполняющиеся задачи.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
