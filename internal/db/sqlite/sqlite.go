// Package sqlite открывает локальную базу SQLite через gorm.
// Используется в режиме STORE_DRIVER=sqlite и в тестах хранилища.
package sqlite

import (
	"fmt"
	"os"
	"path/filepath"

	gsqlite "github.com/glebarez/sqlite"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MemoryPath — база в памяти.
const MemoryPath = ":memory:"

// Open открывает (или создаёт) базу по пути path и настраивает её.
func Open(path string) (*gorm.DB, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("не удалось создать папку для базы: %w", err)
		}
	}

	db, err := gorm.Open(gsqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть SQLite %s: %w", path, err)
	}

	if err := configure(db, path); err != nil {
		return nil, err
	}

	log.WithField("path", path).Info("✅ SQLite открыта")
	return db, nil
}

// configure включает WAL и внешние ключи.
// Одно соединение: SQLite всё равно пишет по одному, а транзакции начисления
// не должны получать SQLITE_BUSY друг от друга.
func configure(db *gorm.DB, path string) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	if path != MemoryPath {
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL", "PRAGMA synchronous=NORMAL")
	}
	for _, p := range pragmas {
		if err := db.Exec(p).Error; err != nil {
			return fmt.Errorf("ошибка %s: %w", p, err)
		}
	}
	return nil
}
