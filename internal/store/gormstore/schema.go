// Package gormstore — реализация хранилищ обоих движков поверх gorm (SQLite).
// schema.go описывает таблицы. Схема та же, что у миграций PostgreSQL,
// но массивы лежат в JSON, а даты — строками YYYY-MM-DD.
package gormstore

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// StringList — массив строк, хранимый как JSON.
type StringList []string

// Value реализует driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

// Scan реализует sql.Scanner.
func (l *StringList) Scan(value any) error {
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		*l = StringList{}
		return nil
	}
	return json.Unmarshal(raw, l)
}

// Profile — профиль пользователя вместе с колонками репутации.
type Profile struct {
	ID               string     `gorm:"primaryKey;size:64"`
	Username         string     `gorm:"size:100;index"`
	Bio              string     `gorm:"type:text"`
	Location         string     `gorm:"size:200"`
	Website          string     `gorm:"size:500"`
	AvatarURL        string     `gorm:"size:500"`
	TechStack        StringList `gorm:"type:text"`
	CloutScore       int        `gorm:"not null;default:0;index"`
	CloutTier        string     `gorm:"size:20;not null;default:novice"`
	Streak           int        `gorm:"not null;default:0"`
	LastActivityDate *string    `gorm:"size:10"` // YYYY-MM-DD
	FollowerCount    int        `gorm:"not null;default:0"`
	CreatedAt        time.Time  `gorm:"not null"`
}

func (Profile) TableName() string { return "profiles" }

// Post — проект или идея.
type Post struct {
	ID        string     `gorm:"primaryKey;size:64"`
	UserID    string     `gorm:"size:64;not null;index"`
	Type      string     `gorm:"size:20;not null"`
	GitHubURL *string    `gorm:"column:github_url;size:500"`
	Clout     int        `gorm:"not null;default:0"`
	Tags      StringList `gorm:"type:text"`
	CreatedAt time.Time  `gorm:"not null"`
}

func (Post) TableName() string { return "posts" }

// Comment — комментарий к посту.
type Comment struct {
	ID        string    `gorm:"primaryKey;size:64"`
	PostID    string    `gorm:"size:64;not null;index"`
	UserID    string    `gorm:"size:64;not null;index"`
	LikeCount int       `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`
}

func (Comment) TableName() string { return "comments" }

// Follow — подписка.
type Follow struct {
	FollowerID  string    `gorm:"primaryKey;size:64"`
	FollowingID string    `gorm:"primaryKey;size:64"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (Follow) TableName() string { return "follows" }

// CloutTransaction — строка журнала начислений.
type CloutTransaction struct {
	ID              string    `gorm:"primaryKey;size:64"`
	UserID          string    `gorm:"size:64;not null;index:idx_clout_tx_user_created,priority:1"`
	ActionType      string    `gorm:"size:40;not null"`
	CloutAmount     int       `gorm:"not null"`
	TargetUserID    *string   `gorm:"size:64"`
	TargetPostID    *string   `gorm:"size:64"`
	TargetCommentID *string   `gorm:"size:64"`
	CreatedAt       time.Time `gorm:"not null;index:idx_clout_tx_user_created,priority:2"`
}

func (CloutTransaction) TableName() string { return "clout_transactions" }

// DailyActivity — счётчик действий пользователя за день.
type DailyActivity struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	UserID       string `gorm:"size:64;not null;uniqueIndex:idx_daily_user_date"`
	ActivityDate string `gorm:"size:10;not null;uniqueIndex:idx_daily_user_date"` // YYYY-MM-DD
	ActionsCount int    `gorm:"not null;default:0"`
}

func (DailyActivity) TableName() string { return "user_daily_activity" }

// BadgeRow — запись каталога бейджей.
type BadgeRow struct {
	ID          string `gorm:"primaryKey;size:64"`
	Name        string `gorm:"size:100;not null"`
	Description string `gorm:"type:text"`
	Icon        string `gorm:"size:100"`
	Tier        string `gorm:"size:20;not null"`
	Requirement string `gorm:"size:64;not null"`
	Hidden      bool   `gorm:"not null;default:false"`
	SortOrder   int    `gorm:"not null;default:0"`
}

func (BadgeRow) TableName() string { return "badges" }

// UserBadgeRow — выданный бейдж. Первичный ключ не даёт выдать его дважды.
type UserBadgeRow struct {
	UserID     string    `gorm:"primaryKey;size:64"`
	BadgeID    string    `gorm:"primaryKey;size:64"`
	UnlockedAt time.Time `gorm:"not null"`
}

func (UserBadgeRow) TableName() string { return "user_badges" }

// Migrate создаёт или обновляет все таблицы.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Profile{},
		&Post{},
		&Comment{},
		&Follow{},
		&CloutTransaction{},
		&DailyActivity{},
		&BadgeRow{},
		&UserBadgeRow{},
	)
}
