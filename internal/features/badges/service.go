// Package badges — service.go содержит бизнес-логику выдачи бейджей.
package badges

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"codeblooded.dev/clout/internal/common"
	"codeblooded.dev/clout/internal/features/clout"
)

// Сколько пользователей держим в кэше полученных бейджей.
// При переполнении кэш сбрасывается целиком и заполняется заново по мере запросов.
const maxCachedUsers = 10000

// Service управляет каталогом бейджей и их выдачей.
//
// В памяти держится каталог и, для каждого пользователя, набор уже полученных бейджей.
// Набор — только оптимизация: от повторной выдачи защищает уникальность
// (user_id, badge_id) в хранилище.
type Service struct {
	store    Store
	notifier Notifier
	clock    common.Clock
	loc      *time.Location

	mu            sync.RWMutex
	catalog       []Badge
	catalogLoaded bool
	unlocked      map[string]map[string]struct{}
}

// NewService создаёт сервис бейджей.
// loc — часовой пояс для «совы», «жаворонка» и выходных, если клиент не прислал своё время.
func NewService(store Store, notifier Notifier, clock common.Clock, loc *time.Location) *Service {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	if clock == nil {
		clock = common.SystemClock{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		store:    store,
		notifier: notifier,
		clock:    clock,
		loc:      loc,
		unlocked: make(map[string]map[string]struct{}),
	}
}

// CheckAndAwardBadges проверяет бейджи после действия и выдаёт те, условия которых выполнены.
// Возвращает только что полученные бейджи в порядке каталога.
//
// Алгоритм:
//  1. Берём из каталога бейджи, которых у пользователя ещё нет и которые слушают это действие
//  2. Проверяем условие каждого. Ошибка проверки = «не выполнено»
//  3. Для выполненных: пишем в хранилище, добавляем в набор, отправляем уведомление
//  4. Возвращаем выданные
//
// Ошибка записи прерывает проверку: возвращаются уже выданные бейджи и ошибка.
func (s *Service) CheckAndAwardBadges(ctx context.Context, userID string, action clout.ActionType, metadata map[string]string) ([]Badge, error) {
	if userID == "" {
		return nil, common.ErrInvalidAction
	}
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	unlocked := s.unlockedSet(ctx, userID)

	// Шаг 1: Кандидаты
	var candidates []Badge
	for _, b := range catalog {
		if _, has := unlocked[b.ID]; has {
			continue
		}
		if TriggeredBy(b.Requirement, action) {
			candidates = append(candidates, b)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	eval := &evaluation{
		store:    s.store,
		userID:   userID,
		metadata: metadata,
		now:      s.clock.Now(),
		loc:      s.loc,
	}

	var awarded []Badge
	for _, b := range candidates {
		// Шаг 2: Условие
		ok, err := eval.Evaluate(ctx, b.Requirement)
		if err != nil {
			evaluationsTotal.WithLabelValues("error").Inc()
			log.WithError(err).WithFields(log.Fields{
				"user_id":  userID,
				"badge_id": b.ID,
			}).Warn("Ошибка проверки условия бейджа")
			continue
		}
		if !ok {
			evaluationsTotal.WithLabelValues("unsatisfied").Inc()
			continue
		}
		evaluationsTotal.WithLabelValues("satisfied").Inc()

		// Шаг 3: Выдача
		now := s.clock.Now().UTC()
		inserted, err := s.store.InsertUserBadge(ctx, UserBadge{UserID: userID, BadgeID: b.ID, UnlockedAt: now})
		if err != nil {
			return awarded, fmt.Errorf("ошибка выдачи бейджа %s: %w", b.ID, err)
		}
		s.markUnlocked(userID, b.ID)
		if !inserted {
			// Бейдж уже выдан параллельным запросом
			continue
		}

		awarded = append(awarded, b)
		unlocksTotal.WithLabelValues(string(b.Tier)).Inc()
		if err := s.notifier.Notify(ctx, Unlock{UserID: userID, Badge: b, UnlockedAt: now}); err != nil {
			log.WithError(err).WithField("badge_id", b.ID).Warn("Не удалось отправить уведомление о бейдже")
		}
	}

	// Шаг 4
	return awarded, nil
}

// GetUserBadges возвращает полученные бейджи пользователя, новые первыми.
func (s *Service) GetUserBadges(ctx context.Context, userID string) ([]UnlockedBadge, error) {
	list, err := s.store.ListUserBadges(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения бейджей пользователя: %w", err)
	}
	if list == nil {
		list = []UnlockedBadge{}
	}
	return list, nil
}

// GetAllBadgesWithUserStatus возвращает весь каталог с отметками о получении.
// У скрытых бейджей, которых ещё нет, описание не показывается.
func (s *Service) GetAllBadgesWithUserStatus(ctx context.Context, userID string) ([]BadgeStatus, error) {
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	owned, err := s.GetUserBadges(ctx, userID)
	if err != nil {
		return nil, err
	}
	unlockedAt := make(map[string]time.Time, len(owned))
	for _, ub := range owned {
		unlockedAt[ub.ID] = ub.UnlockedAt
	}

	result := make([]BadgeStatus, 0, len(catalog))
	for _, b := range catalog {
		st := BadgeStatus{Badge: b}
		if at, ok := unlockedAt[b.ID]; ok {
			st.Unlocked = true
			st.UnlockedAt = &at
		} else if b.Hidden {
			st.Description = ""
		}
		result = append(result, st)
	}
	return result, nil
}

// Catalog возвращает каталог, загружая его при первом обращении.
func (s *Service) Catalog(ctx context.Context) ([]Badge, error) {
	s.mu.RLock()
	if s.catalogLoaded {
		c := s.catalog
		s.mu.RUnlock()
		return c, nil
	}
	s.mu.RUnlock()

	if err := s.RefreshCatalog(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog, nil
}

// RefreshCatalog перечитывает каталог из хранилища.
func (s *Service) RefreshCatalog(ctx context.Context) error {
	list, err := s.store.ListBadges(ctx)
	if err != nil {
		return fmt.Errorf("ошибка загрузки каталога бейджей: %w", err)
	}
	s.mu.Lock()
	s.catalog = list
	s.catalogLoaded = true
	s.mu.Unlock()

	catalogSize.Set(float64(len(list)))
	log.WithField("badges", len(list)).Debug("Каталог бейджей обновлён")
	return nil
}

// SeedCatalog записывает бейджи в хранилище и обновляет каталог в памяти.
func (s *Service) SeedCatalog(ctx context.Context, list []Badge) error {
	if err := s.store.UpsertBadges(ctx, list); err != nil {
		return fmt.Errorf("ошибка записи каталога бейджей: %w", err)
	}
	return s.RefreshCatalog(ctx)
}

// RefreshUser сбрасывает набор полученных бейджей пользователя.
// Следующая проверка перечитает его из хранилища.
func (s *Service) RefreshUser(userID string) {
	s.mu.Lock()
	delete(s.unlocked, userID)
	s.mu.Unlock()
}

// unlockedSet возвращает набор полученных бейджей, загружая его при необходимости.
// Если чтение не удалось — работаем с пустым набором и не кэшируем его.
func (s *Service) unlockedSet(ctx context.Context, userID string) map[string]struct{} {
	s.mu.RLock()
	set, ok := s.unlocked[userID]
	if ok {
		cp := make(map[string]struct{}, len(set))
		for id := range set {
			cp[id] = struct{}{}
		}
		s.mu.RUnlock()
		return cp
	}
	s.mu.RUnlock()

	ids, err := s.store.ListUnlockedBadgeIDs(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Не удалось загрузить полученные бейджи")
		return map[string]struct{}{}
	}
	set = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	s.mu.Lock()
	if len(s.unlocked) >= maxCachedUsers {
		s.unlocked = make(map[string]map[string]struct{})
	}
	cached := make(map[string]struct{}, len(set))
	for id := range set {
		cached[id] = struct{}{}
	}
	s.unlocked[userID] = cached
	s.mu.Unlock()
	return set
}

func (s *Service) markUnlocked(userID, badgeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if set, ok := s.unlocked[userID]; ok {
		set[badgeID] = struct{}{}
	}
}
