// Package badges — catalog.go читает каталог бейджей из YAML и следит за изменениями файла.
package badges

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"codeblooded.dev/clout/internal/common"
)

// catalogDebounce — редакторы пишут файл в несколько приёмов, ждём, пока успокоится.
const catalogDebounce = 500 * time.Millisecond

type catalogFile struct {
	Badges []Badge `yaml:"badges"`
}

// ParseCatalog разбирает YAML каталога. Порядок в файле становится sort_order.
//
// Проверки:
//   - у каждого бейджа есть id и name, id не повторяется
//   - редкость из списка bronze..legendary
//
// Неизвестный requirement не ошибка: такой бейдж просто никогда не выдаётся.
func ParseCatalog(data []byte) ([]Badge, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidCatalog, err)
	}

	seen := make(map[string]struct{}, len(f.Badges))
	for i := range f.Badges {
		b := &f.Badges[i]
		if b.ID == "" || b.Name == "" {
			return nil, fmt.Errorf("%w: у бейджа #%d нет id или name", common.ErrInvalidCatalog, i+1)
		}
		if _, dup := seen[b.ID]; dup {
			return nil, fmt.Errorf("%w: повторяется id %q", common.ErrInvalidCatalog, b.ID)
		}
		seen[b.ID] = struct{}{}
		if !b.Tier.Valid() {
			return nil, fmt.Errorf("%w: у бейджа %q неизвестная редкость %q", common.ErrInvalidCatalog, b.ID, b.Tier)
		}
		if _, ok := ParseRequirement(b.Requirement); !ok {
			log.WithFields(log.Fields{
				"badge_id":    b.ID,
				"requirement": b.Requirement,
			}).Warn("Неизвестное условие бейджа, он не будет выдаваться")
		}
		b.SortOrder = i
	}
	return f.Badges, nil
}

// LoadCatalogFile читает и разбирает файл каталога.
func LoadCatalogFile(path string) ([]Badge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать каталог %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// WatchCatalog следит за файлом каталога и вызывает onChange с новым содержимым.
// Следим за каталогом-папкой, а не за файлом: редакторы часто сохраняют через rename.
// Блокируется до отмены ctx.
func WatchCatalog(ctx context.Context, path string, onChange func(context.Context, []Badge)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("не удалось создать fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("не удалось следить за %s: %w", filepath.Dir(abs), err)
	}
	log.WithField("path", abs).Info("Слежение за каталогом бейджей запущено")

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				debounce = time.After(catalogDebounce)
			}

		case <-debounce:
			debounce = nil
			list, err := LoadCatalogFile(abs)
			if err != nil {
				log.WithError(err).Error("Каталог бейджей не перезагружен")
				continue
			}
			onChange(ctx, list)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("Ошибка fsnotify")
		}
	}
}
