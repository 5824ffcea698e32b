// Package app инициализирует все компоненты сервиса.
// app.go — точка сборки: выбирает хранилище, создаёт движки, получателей
// уведомлений, HTTP-сервер и планировщик.
package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	log "github.com/sirupsen/logrus"

	"codeblooded.dev/clout/internal/common"
	"codeblooded.dev/clout/internal/config"
	"codeblooded.dev/clout/internal/db/postgres"
	dbsqlite "codeblooded.dev/clout/internal/db/sqlite"
	"codeblooded.dev/clout/internal/features/activity"
	"codeblooded.dev/clout/internal/features/badges"
	"codeblooded.dev/clout/internal/features/clout"
	"codeblooded.dev/clout/internal/jobs"
	"codeblooded.dev/clout/internal/notify"
	"codeblooded.dev/clout/internal/server"
	"codeblooded.dev/clout/internal/store/gormstore"
)

// Stores — хранилища движков и функция, закрывающая соединения.
type Stores struct {
	Clout  clout.Store
	Badges badges.Store
	Close  func()
}

// App содержит все компоненты сервиса.
type App struct {
	cfg       *config.Config
	closers   []func()
	Clout     *clout.Service
	Badges    *badges.Service
	Activity  *activity.Service
	Server    *server.Server
	Scheduler *jobs.Scheduler
}

// OpenStores подключается к хранилищу из STORE_DRIVER и применяет миграции.
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ошибка миграций: %w", err)
		}
		return &Stores{
			Clout:  clout.NewRepository(pool),
			Badges: badges.NewRepository(pool),
			Close:  pool.Close,
		}, nil

	case config.StoreSQLite:
		db, err := dbsqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		closeDB := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		if err := gormstore.Migrate(db); err != nil {
			closeDB()
			return nil, fmt.Errorf("ошибка миграций SQLite: %w", err)
		}
		store := gormstore.New(db)
		return &Stores{Clout: store, Badges: store, Close: closeDB}, nil
	}
	return nil, fmt.Errorf("неизвестный STORE_DRIVER %q", cfg.StoreDriver)
}

// Migrate применяет миграции выбранного хранилища и закрывает соединение.
func Migrate(ctx context.Context, cfg *config.Config) error {
	stores, err := OpenStores(ctx, cfg)
	if err != nil {
		return err
	}
	stores.Close()
	log.WithField("driver", cfg.StoreDriver).Info("Миграции применены")
	return nil
}

// New создаёт и связывает компоненты.
// Порядок важен: хранилище → движки → уведомления → HTTP → планировщик.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. Хранилище ===
	stores, err := OpenStores(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a := &App{cfg: cfg, closers: []func(){stores.Close}}

	// === 2. Движки ===
	clock := common.SystemClock{}
	a.Clout = clout.NewService(stores.Clout, clout.RulesFromConfig(cfg), nil, clock)

	notifier, err := a.newNotifier()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Badges = badges.NewService(stores.Badges, notifier, clock, common.LoadLocation(cfg.AppTimezone))

	var checker activity.BadgeChecker
	if cfg.FeatureBadgesEnabled {
		checker = a.Badges
	}
	a.Activity = activity.NewService(a.Clout, checker)

	// === 3. HTTP ===
	a.Server = server.New(server.Options{
		Addr:              cfg.HTTPAddr,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
		ShutdownTimeout:   cfg.HTTPShutdownTimeout,
	},
		activity.NewHandler(a.Activity),
		clout.NewHandler(a.Clout),
		badges.NewHandler(a.Badges),
	)

	// === 4. Планировщик ===
	a.Scheduler = jobs.NewScheduler()
	if cfg.FeatureDecayEnabled {
		if err := a.Scheduler.AddDecay(ctx, cfg.CloutDecaySchedule, a.Clout); err != nil {
			a.Close()
			return nil, err
		}
	}
	if err := a.Scheduler.AddCatalogRefresh(ctx, cfg.BadgeRefreshSchedule, a.Badges); err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

// newNotifier собирает получателей уведомлений: лог всегда, Telegram и NATS — если настроены.
func (a *App) newNotifier() (badges.Notifier, error) {
	sinks := badges.MultiNotifier{badges.LogNotifier{}}

	if a.cfg.NotifyTelegramToken != "" {
		tg, err := notify.NewTelegram(a.cfg.NotifyTelegramToken, a.cfg.NotifyTelegramChatID)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, tg)
		log.WithField("chat_id", a.cfg.NotifyTelegramChatID).Info("Уведомления о бейджах в Telegram включены")
	}

	if a.cfg.NotifyNATSURL != "" {
		n, err := notify.NewNATS(a.cfg.NotifyNATSURL, a.cfg.NotifyNATSSubject)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, n)
		a.closers = append(a.closers, n.Close)
		log.WithField("subject", a.cfg.NotifyNATSSubject).Info("События о бейджах публикуются в NATS")
	}

	return sinks, nil
}

// LoadCatalog загружает каталог из BADGE_CATALOG_PATH в хранилище.
// Если файла нет — остаётся каталог, уже лежащий в хранилище.
func (a *App) LoadCatalog(ctx context.Context) error {
	list, err := badges.LoadCatalogFile(a.cfg.BadgeCatalogPath)
	if errors.Is(err, fs.ErrNotExist) {
		log.WithField("path", a.cfg.BadgeCatalogPath).Warn("Файл каталога не найден, используем каталог из хранилища")
		return a.Badges.RefreshCatalog(ctx)
	}
	if err != nil {
		return err
	}
	if err := a.Badges.SeedCatalog(ctx, list); err != nil {
		return err
	}
	log.WithField("badges", len(list)).Info("Каталог бейджей загружен")
	return nil
}

// Run запускает сервис и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	if err := a.LoadCatalog(ctx); err != nil {
		return fmt.Errorf("ошибка загрузки каталога: %w", err)
	}

	a.Scheduler.Start()
	defer a.Scheduler.Stop()

	if a.cfg.BadgeCatalogWatch {
		if _, err := os.Stat(a.cfg.BadgeCatalogPath); err == nil {
			go a.watchCatalog(ctx)
		}
	}

	return a.Server.Run(ctx)
}

func (a *App) watchCatalog(ctx context.Context) {
	err := badges.WatchCatalog(ctx, a.cfg.BadgeCatalogPath, func(ctx context.Context, list []badges.Badge) {
		if err := a.Badges.SeedCatalog(ctx, list); err != nil {
			log.WithError(err).Error("Не удалось применить изменённый каталог")
			return
		}
		log.WithField("badges", len(list)).Info("Каталог бейджей перезагружен из файла")
	})
	if err != nil {
		log.WithError(err).Error("Слежение за каталогом остановлено")
	}
}

// Close закрывает соединения в обратном порядке.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
