// Package badges реализует движок достижений: каталог бейджей, проверку условий
// по действиям пользователя и выдачу бейджей (каждый не больше одного раза).
package badges

import "time"

// Tier — редкость бейджа.
type Tier string

const (
	TierBronze    Tier = "bronze"
	TierSilver    Tier = "silver"
	TierGold      Tier = "gold"
	TierPlatinum  Tier = "platinum"
	TierLegendary Tier = "legendary"
)

// Valid проверяет, что редкость из известного списка.
func (t Tier) Valid() bool {
	switch t {
	case TierBronze, TierSilver, TierGold, TierPlatinum, TierLegendary:
		return true
	}
	return false
}

// Badge — запись каталога.
type Badge struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Icon        string `json:"icon" yaml:"icon"`
	Tier        Tier   `json:"tier" yaml:"tier"`
	Requirement string `json:"requirement" yaml:"requirement"` // Ключ условия, см. requirements.go
	Hidden      bool   `json:"hidden" yaml:"hidden"`           // Описание скрыто до получения
	SortOrder   int    `json:"sort_order" yaml:"-"`            // Порядок проверки и уведомлений
}

// UserBadge — факт получения бейджа. Создаётся один раз на пару (пользователь, бейдж).
type UserBadge struct {
	UserID     string    `json:"user_id"`
	BadgeID    string    `json:"badge_id"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

// UnlockedBadge — бейдж вместе с моментом получения.
type UnlockedBadge struct {
	Badge
	UnlockedAt time.Time `json:"unlocked_at"`
}

// BadgeStatus — бейдж каталога с отметкой, получен ли он пользователем.
type BadgeStatus struct {
	Badge
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}

// Типы постов.
const (
	PostProject = "project"
	PostIdea    = "idea"
)

// Profile — поля профиля, нужные условиям бейджей.
type Profile struct {
	ID            string
	Username      string
	Bio           string
	Location      string
	Website       string
	AvatarURL     string
	TechStack     []string
	CloutScore    int
	Streak        int
	FollowerCount int
	CreatedAt     time.Time
}

// Post — пост пользователя (проект или идея).
type Post struct {
	ID        string
	UserID    string
	Type      string
	GitHubURL *string
	Clout     int
	Tags      []string
	CreatedAt time.Time
}

// CommentStats — сводка по комментариям пользователя.
type CommentStats struct {
	Count int // Сколько комментариев написано
	Likes int // Сумма лайков на них
}

// Unlock — событие получения бейджа для уведомлений.
type Unlock struct {
	UserID     string    `json:"user_id"`
	Badge      Badge     `json:"badge"`
	UnlockedAt time.Time `json:"unlocked_at"`
}
