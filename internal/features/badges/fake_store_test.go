package badges

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"codeblooded.dev/clout/internal/common"
	"codeblooded.dev/clout/internal/features/clout"
)

type fakeStore struct {
	mu       sync.Mutex
	badges   []Badge
	owned    map[string][]UserBadge
	profiles map[string]*Profile
	posts    map[string][]Post
	comments map[string]CommentStats
	actions  map[string]map[clout.ActionType]int

	listBadgesCalls  int
	profileCalls     int
	unlockedErr      error
	insertErr        error
	profileErr       error
	duplicateInserts map[string]bool // badgeID → «уже выдан кем-то ещё»
}

func newFakeStore(badges ...Badge) *fakeStore {
	for i := range badges {
		badges[i].SortOrder = i
	}
	return &fakeStore{
		badges:           badges,
		owned:            make(map[string][]UserBadge),
		profiles:         make(map[string]*Profile),
		posts:            make(map[string][]Post),
		comments:         make(map[string]CommentStats),
		actions:          make(map[string]map[clout.ActionType]int),
		duplicateInserts: make(map[string]bool),
	}
}

func (f *fakeStore) ListBadges(context.Context) ([]Badge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listBadgesCalls++
	out := append([]Badge(nil), f.badges...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (f *fakeStore) UpsertBadges(_ context.Context, list []Badge) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range list {
		replaced := false
		for i := range f.badges {
			if f.badges[i].ID == b.ID {
				f.badges[i] = b
				replaced = true
			}
		}
		if !replaced {
			f.badges = append(f.badges, b)
		}
	}
	return nil
}

func (f *fakeStore) ListUnlockedBadgeIDs(_ context.Context, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unlockedErr != nil {
		return nil, f.unlockedErr
	}
	var ids []string
	for _, ub := range f.owned[userID] {
		ids = append(ids, ub.BadgeID)
	}
	return ids, nil
}

func (f *fakeStore) InsertUserBadge(_ context.Context, ub UserBadge) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return false, f.insertErr
	}
	if f.duplicateInserts[ub.BadgeID] {
		return false, nil
	}
	for _, have := range f.owned[ub.UserID] {
		if have.BadgeID == ub.BadgeID {
			return false, nil
		}
	}
	f.owned[ub.UserID] = append(f.owned[ub.UserID], ub)
	return true, nil
}

func (f *fakeStore) ListUserBadges(_ context.Context, userID string) ([]UnlockedBadge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []UnlockedBadge
	for _, ub := range f.owned[userID] {
		for _, b := range f.badges {
			if b.ID == ub.BadgeID {
				out = append(out, UnlockedBadge{Badge: b, UnlockedAt: ub.UnlockedAt})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UnlockedAt.After(out[j].UnlockedAt) })
	return out, nil
}

func (f *fakeStore) GetProfile(_ context.Context, userID string) (*Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profileCalls++
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, common.ErrUserNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) ListPosts(_ context.Context, userID string) ([]Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Post(nil), f.posts[userID]...), nil
}

func (f *fakeStore) GetCommentStats(_ context.Context, userID string) (*CommentStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.comments[userID]
	return &s, nil
}

func (f *fakeStore) CountActions(_ context.Context, userID string, action clout.ActionType) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.actions[userID][action], nil
}

func (f *fakeStore) CountProfilesAbove(_ context.Context, score int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.profiles {
		if p.CloutScore > score {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CountProfilesJoinedBefore(_ context.Context, t time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.profiles {
		if p.CreatedAt.Before(t) {
			n++
		}
	}
	return n, nil
}

// recordingNotifier запоминает уведомления по порядку.
type recordingNotifier struct {
	mu     sync.Mutex
	events []Unlock
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, u Unlock) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, u)
	return n.err
}

func (n *recordingNotifier) ids() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var ids []string
	for _, e := range n.events {
		ids = append(ids, e.Badge.ID)
	}
	return ids
}

var errBoom = errors.New("boom")
