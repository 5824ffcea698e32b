// Package postgres — migrations.go содержит схему базы.
// SQL встроен в код, чтобы бинарник разворачивался без лишних файлов.
package postgres

// Migration — одна версия схемы.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Migrations — все миграции по порядку.
var Migrations = []Migration{
	{1, "profiles", migration001Profiles},
	{2, "content", migration002Content},
	{3, "clout", migration003Clout},
	{4, "badges", migration004Badges},
}

var migration001Profiles = `
CREATE TABLE IF NOT EXISTS profiles (
    id TEXT PRIMARY KEY,
    username VARCHAR(100) NOT NULL DEFAULT '',
    bio TEXT,
    location VARCHAR(200),
    website VARCHAR(500),
    avatar_url VARCHAR(500),
    tech_stack TEXT[] NOT NULL DEFAULT '{}',
    clout_score INTEGER NOT NULL DEFAULT 0,
    clout_tier VARCHAR(20) NOT NULL DEFAULT 'novice',
    streak INTEGER NOT NULL DEFAULT 0,
    last_activity_date DATE,
    follower_count INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_profiles_clout_score ON profiles(clout_score DESC);
CREATE INDEX IF NOT EXISTS idx_profiles_created_at ON profiles(created_at);
`

var migration002Content = `
CREATE TABLE IF NOT EXISTS posts (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
    type VARCHAR(20) NOT NULL,
    github_url VARCHAR(500),
    clout INTEGER NOT NULL DEFAULT 0,
    tags TEXT[] NOT NULL DEFAULT '{}',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_posts_user_id ON posts(user_id);

CREATE TABLE IF NOT EXISTS comments (
    id TEXT PRIMARY KEY,
    post_id TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
    like_count INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_comments_user_id ON comments(user_id);

CREATE TABLE IF NOT EXISTS follows (
    follower_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
    following_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (follower_id, following_id)
);
`

var migration003Clout = `
CREATE TABLE IF NOT EXISTS clout_transactions (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
    action_type VARCHAR(40) NOT NULL,
    clout_amount INTEGER NOT NULL,
    target_user_id TEXT,
    target_post_id TEXT,
    target_comment_id TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_clout_tx_user_created ON clout_transactions(user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_clout_tx_user_action ON clout_transactions(user_id, action_type, created_at);

CREATE TABLE IF NOT EXISTS user_daily_activity (
    id BIGSERIAL PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
    activity_date DATE NOT NULL,
    actions_count INTEGER NOT NULL DEFAULT 0,
    UNIQUE (user_id, activity_date)
);
`

var migration004Badges = `
CREATE TABLE IF NOT EXISTS badges (
    id TEXT PRIMARY KEY,
    name VARCHAR(100) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    icon VARCHAR(100) NOT NULL DEFAULT '',
    tier VARCHAR(20) NOT NULL,
    requirement VARCHAR(64) NOT NULL,
    hidden BOOLEAN NOT NULL DEFAULT FALSE,
    sort_order INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS user_badges (
    user_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
    badge_id TEXT NOT NULL REFERENCES badges(id) ON DELETE CASCADE,
    unlocked_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (user_id, badge_id)
);
CREATE INDEX IF NOT EXISTS idx_user_badges_unlocked_at ON user_badges(user_id, unlocked_at DESC);
`
