package clout

import (
	"context"
	"sort"
	"sync"
	"time"

	"codeblooded.dev/clout/internal/common"
)

// fakeStore — хранилище в памяти для тестов сервиса.
type fakeStore struct {
	mu           sync.Mutex
	reps         map[string]*Reputation
	usernames    map[string]string
	txs          []Transaction
	activity     map[string]map[time.Time]int
	commentLikes map[string]int
	posts        int

	readErr      error // Ломает некритичные чтения
	applyErr     error
	casConflicts int // Сколько раз CompareAndSetScore проиграет гонку
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		reps:         make(map[string]*Reputation),
		usernames:    make(map[string]string),
		activity:     make(map[string]map[time.Time]int),
		commentLikes: make(map[string]int),
	}
}

func (f *fakeStore) addUser(id string, score int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reps[id] = &Reputation{UserID: id, Score: score, Tier: CalculateTier(score)}
	f.usernames[id] = "user-" + id
}

func (f *fakeStore) addActivity(userID string, day time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.activity[userID] == nil {
		f.activity[userID] = make(map[time.Time]int)
	}
	f.activity[userID][common.StartOfDayUTC(day)]++
}

func (f *fakeStore) addTx(t Transaction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txs = append(f.txs, t)
}

func (f *fakeStore) txCount(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.txs {
		if t.UserID == userID {
			n++
		}
	}
	return n
}

func (f *fakeStore) score(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reps[userID].Score
}

func (f *fakeStore) CountActionsBetween(_ context.Context, userID string, action ActionType, from, to time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return 0, f.readErr
	}
	n := 0
	for _, t := range f.txs {
		if t.UserID == userID && t.ActionType == action && !t.CreatedAt.Before(from) && t.CreatedAt.Before(to) {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CountActionsSince(_ context.Context, userID string, since time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return 0, f.readErr
	}
	n := 0
	for _, t := range f.txs {
		if t.UserID == userID && !t.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CountByTargetSince(_ context.Context, userID string, action ActionType, since time.Time) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	out := make(map[string]int)
	for _, t := range f.txs {
		if t.UserID == userID && t.ActionType == action && !t.CreatedAt.Before(since) && t.TargetUserID != nil {
			out[*t.TargetUserID]++
		}
	}
	return out, nil
}

func (f *fakeStore) SumCommentLikes(_ context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return 0, f.readErr
	}
	return f.commentLikes[userID], nil
}

func (f *fakeStore) ListActivityDates(_ context.Context, userID string, limit int) ([]time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	var dates []time.Time
	for d := range f.activity[userID] {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })
	if len(dates) > limit {
		dates = dates[:limit]
	}
	return dates, nil
}

func (f *fakeStore) GetReputation(_ context.Context, userID string) (*Reputation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rep, ok := f.reps[userID]
	if !ok {
		return nil, common.ErrUserNotFound
	}
	cp := *rep
	return &cp, nil
}

func (f *fakeStore) ApplyAward(_ context.Context, t Transaction, apply func(Reputation) Reputation) (*Reputation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.applyErr != nil {
		return nil, f.applyErr
	}
	rep, ok := f.reps[t.UserID]
	if !ok {
		return nil, common.ErrUserNotFound
	}
	f.txs = append(f.txs, t)
	next := apply(*rep)
	*rep = next
	if f.activity[t.UserID] == nil {
		f.activity[t.UserID] = make(map[time.Time]int)
	}
	f.activity[t.UserID][common.StartOfDayUTC(t.CreatedAt)]++
	return &next, nil
}

func (f *fakeStore) ListTransactions(_ context.Context, userID string, limit int) ([]Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Transaction
	for _, t := range f.txs {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) ListReputations(context.Context) ([]Reputation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Reputation
	for _, r := range f.reps {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (f *fakeStore) CompareAndSetScore(_ context.Context, userID string, old, score int, tier Tier) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rep, ok := f.reps[userID]
	if !ok {
		return false, common.ErrUserNotFound
	}
	if f.casConflicts > 0 {
		// Кто-то успел начислить клаут между чтением и записью
		f.casConflicts--
		rep.Score += 100
		return false, nil
	}
	if rep.Score != old {
		return false, nil
	}
	rep.Score = score
	rep.Tier = tier
	return true, nil
}

func (f *fakeStore) ListLeaderboard(_ context.Context, limit int) ([]LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []LeaderboardEntry
	for _, r := range f.reps {
		out = append(out, LeaderboardEntry{UserID: r.UserID, Username: f.usernames[r.UserID], Score: r.Score, Tier: r.Tier})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].UserID < out[j].UserID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) GetPlatformStats(context.Context) (*PlatformStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := &PlatformStats{Users: len(f.reps), Posts: f.posts}
	for _, r := range f.reps {
		st.TotalClout += r.Score
	}
	return st, nil
}

// stepClock — часы, которые тест двигает вручную.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *stepClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func strPtr(s string) *string { return &s }
