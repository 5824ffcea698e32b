// Package main — точка входа сервиса репутации.
// Команды: serve (API + планировщик), decay, seed-badges, migrate.
// serve поддерживает graceful shutdown по SIGINT/SIGTERM.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"codeblooded.dev/clout/internal/app"
	"codeblooded.dev/clout/internal/common"
	"codeblooded.dev/clout/internal/config"
	"codeblooded.dev/clout/internal/features/badges"
)

var cfg *config.Config

func main() {
	setupLogging()

	rootCmd := &cobra.Command{
		Use:           "cloutd",
		Short:         "Сервис клаута и бейджей CodeBlooded",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
			}
			if level, err := log.ParseLevel(cfg.AppLogLevel); err == nil {
				log.SetLevel(level)
			}
			return nil
		},
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(decayCmd())
	rootCmd.AddCommand(seedBadgesCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Fatal("Команда завершилась с ошибкой")
	}
}

// serveCmd запускает HTTP API и фоновые задачи.
func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP API и планировщик",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Info("=== Сервис запускается ===")

			// Контекст отменяется по Ctrl+C или docker stop
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, err := app.New(ctx, cfg)
			if err != nil {
				return fmt.Errorf("не удалось инициализировать приложение: %w", err)
			}
			defer application.Close()

			if err := application.Run(ctx); err != nil {
				return err
			}
			log.Info("=== Сервис остановлен ===")
			return nil
		},
	}
}

// decayCmd применяет недельное затухание один раз, вне расписания.
func decayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decay",
		Short: "Применить недельное затухание клаута",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer application.Close()

			report, err := application.Clout.ApplyWeeklyDecay(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Обработано: %s, затухание применено: %s, ошибок: %d\n",
				common.FormatUsers(report.Processed), common.FormatUsers(report.Decayed), report.Failed)
			return nil
		},
	}
}

// seedBadgesCmd загружает каталог бейджей из YAML-файла.
func seedBadgesCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed-badges",
		Short: "Загрузить каталог бейджей из файла",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				file = cfg.BadgeCatalogPath
			}
			list, err := badges.LoadCatalogFile(file)
			if err != nil {
				return err
			}

			application, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer application.Close()

			if err := application.Badges.SeedCatalog(cmd.Context(), list); err != nil {
				return err
			}
			fmt.Printf("Загружено: %s\n", common.FormatBadges(len(list)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "путь к YAML-каталогу (по умолчанию BADGE_CATALOG_PATH)")
	return cmd
}

// migrateCmd применяет миграции выбранного хранилища.
func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Применить миграции БД",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Migrate(cmd.Context(), cfg)
		},
	}
}

// setupLogging настраивает формат логов.
func setupLogging() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)
}
