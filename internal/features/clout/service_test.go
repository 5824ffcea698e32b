package clout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeblooded.dev/clout/internal/common"
)

var testStart = time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *fakeStore, *stepClock) {
	t.Helper()
	store := newFakeStore()
	store.addUser("u1", 0)
	clock := &stepClock{t: testStart}
	return NewService(store, DefaultRules(), nil, clock), store, clock
}

type fixedExpertise float64

func (e fixedExpertise) ExpertiseBonus(context.Context, string) (float64, error) {
	return float64(e), nil
}

func TestAwardCloutFirstPost(t *testing.T) {
	svc, store, _ := newTestService(t)

	amount, err := svc.AwardClout(context.Background(), "u1", ActionPostCreated, Target{PostID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, 15, amount)

	rep, err := store.GetReputation(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 15, rep.Score)
	assert.Equal(t, TierNovice, rep.Tier)
	assert.Equal(t, 1, rep.Streak)
	require.NotNil(t, rep.LastActivityDate)
	assert.Equal(t, common.StartOfDayUTC(testStart), *rep.LastActivityDate)

	require.Len(t, store.txs, 1)
	tx := store.txs[0]
	assert.NotEmpty(t, tx.ID)
	assert.Equal(t, "p1", *tx.TargetPostID)
	assert.Nil(t, tx.TargetUserID)
	assert.Equal(t, 15, tx.Amount)
}

func TestAwardCloutReachesContributor(t *testing.T) {
	svc, store, clock := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 35; i++ {
		amount, err := svc.AwardClout(ctx, "u1", ActionPostCreated, Target{})
		require.NoError(t, err)
		require.Equal(t, 15, amount, "action %d", i+1)
		if i == 0 {
			assert.Equal(t, TierNovice, CalculateTier(store.score("u1")))
		}
		clock.advance(10 * time.Minute)
	}

	rep, err := store.GetReputation(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 525, rep.Score)
	assert.Equal(t, TierContributor, rep.Tier)
}

func TestAwardCloutDailyLimit(t *testing.T) {
	svc, store, clock := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		amount, err := svc.AwardClout(ctx, "u1", ActionPostRated, Target{PostID: "p"})
		require.NoError(t, err)
		assert.Equal(t, 2, amount)
		clock.advance(10 * time.Minute)
	}

	amount, err := svc.AwardClout(ctx, "u1", ActionPostRated, Target{PostID: "p"})
	require.NoError(t, err)
	assert.Equal(t, 0, amount)
	assert.Equal(t, 5, store.txCount("u1"))

	// На следующий день (UTC) лимит снова свободен
	clock.advance(24 * time.Hour)
	amount, err = svc.AwardClout(ctx, "u1", ActionPostRated, Target{PostID: "p"})
	require.NoError(t, err)
	assert.Equal(t, 2, amount)
}

func TestAwardCloutRateLimit(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 11; i++ {
		store.addTx(Transaction{ID: "seed", UserID: "u1", ActionType: ActionPostCreated, Amount: 15, CreatedAt: testStart.Add(-time.Minute)})
	}

	amount, err := svc.AwardClout(ctx, "u1", ActionPostFeatured, Target{})
	require.NoError(t, err)
	assert.Equal(t, 0, amount)
	assert.Equal(t, 11, store.txCount("u1"))
	assert.ErrorIs(t, svc.DetectCloutGaming(ctx, "u1", ActionPostFeatured), common.ErrRateLimited)
}

func TestAwardCloutRateLimitWindowSlides(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 11; i++ {
		store.addTx(Transaction{ID: "old", UserID: "u1", ActionType: ActionPostCreated, CreatedAt: testStart.Add(-6 * time.Minute)})
	}

	amount, err := svc.AwardClout(ctx, "u1", ActionPostFeatured, Target{})
	require.NoError(t, err)
	assert.Equal(t, 50, amount)
}

func TestAwardCloutReciprocalPattern(t *testing.T) {
	svc, store, clock := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		amount, err := svc.AwardClout(ctx, "u1", ActionCommentLiked, Target{UserID: "u2", CommentID: "c"})
		require.NoError(t, err)
		assert.Equal(t, 1, amount)
		clock.advance(time.Minute)
	}

	amount, err := svc.AwardClout(ctx, "u1", ActionCommentLiked, Target{UserID: "u3", CommentID: "c"})
	require.NoError(t, err)
	assert.Equal(t, 0, amount)
	assert.Equal(t, 4, store.txCount("u1"))

	// Другие типы действий эвристика не трогает
	amount, err = svc.AwardClout(ctx, "u1", ActionPostCreated, Target{UserID: "u2"})
	require.NoError(t, err)
	assert.Equal(t, 15, amount)

	// Через час окно очищается
	clock.advance(time.Hour)
	amount, err = svc.AwardClout(ctx, "u1", ActionCommentLiked, Target{UserID: "u2", CommentID: "c"})
	require.NoError(t, err)
	assert.Equal(t, 1, amount)
}

func TestAwardCloutMultiplier(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		store.addActivity("u1", testStart.AddDate(0, 0, -i))
	}
	store.commentLikes["u1"] = 11

	assert.Equal(t, 7, svc.GetActivityStreak(ctx, "u1"))

	amount, err := svc.AwardClout(ctx, "u1", ActionPostCreated, Target{})
	require.NoError(t, err)
	assert.Equal(t, 17, amount) // round(15 * 1.15)
}

func TestAwardCloutExpertiseIsCapped(t *testing.T) {
	store := newFakeStore()
	store.addUser("u1", 0)
	store.commentLikes["u1"] = 100
	svc := NewService(store, DefaultRules(), fixedExpertise(3), &stepClock{t: testStart})

	amount, err := svc.AwardClout(context.Background(), "u1", ActionPostFeatured, Target{})
	require.NoError(t, err)
	assert.Equal(t, 75, amount)
}

func TestAwardCloutPermissiveOnReadErrors(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.readErr = errors.New("нет связи")

	amount, err := svc.AwardClout(context.Background(), "u1", ActionPostRated, Target{UserID: "u2"})
	require.NoError(t, err)
	assert.Equal(t, 2, amount)
	assert.Equal(t, 2, store.score("u1"))
}

func TestAwardCloutWriteFailure(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.applyErr = errors.New("диск переполнен")

	amount, err := svc.AwardClout(context.Background(), "u1", ActionPostCreated, Target{})
	require.Error(t, err)
	assert.Equal(t, 0, amount)
	assert.Equal(t, 0, store.score("u1"))
}

func TestAwardCloutUnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	amount, err := svc.AwardClout(context.Background(), "ghost", ActionPostCreated, Target{})
	assert.ErrorIs(t, err, common.ErrUserNotFound)
	assert.Equal(t, 0, amount)
}

func TestAwardCloutZeroWeightAction(t *testing.T) {
	svc, store, _ := newTestService(t)

	amount, err := svc.AwardClout(context.Background(), "u1", ActionProfileUpdated, Target{})
	require.NoError(t, err)
	assert.Equal(t, 0, amount)
	require.Len(t, store.txs, 1)
	assert.Equal(t, 0, store.txs[0].Amount)
}

func TestAwardCloutProfileStreak(t *testing.T) {
	svc, store, clock := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.AwardClout(ctx, "u1", ActionCommentPosted, Target{})
		require.NoError(t, err)
		_, err = svc.AwardClout(ctx, "u1", ActionCommentPosted, Target{})
		require.NoError(t, err)
		clock.advance(24 * time.Hour)
	}
	rep, _ := store.GetReputation(ctx, "u1")
	assert.Equal(t, 3, rep.Streak)

	clock.advance(48 * time.Hour)
	_, err := svc.AwardClout(ctx, "u1", ActionCommentPosted, Target{})
	require.NoError(t, err)
	rep, _ = store.GetReputation(ctx, "u1")
	assert.Equal(t, 1, rep.Streak)
}

func TestGetActivityStreakGap(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.addActivity("u1", testStart)
	store.addActivity("u1", testStart.AddDate(0, 0, -2))

	assert.Equal(t, 1, svc.GetActivityStreak(context.Background(), "u1"))
}

func TestApplyWeeklyDecay(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	store.addUser("u2", 1000)
	store.addUser("u3", 2100)

	report, err := svc.ApplyWeeklyDecay(ctx)
	require.NoError(t, err)
	assert.Equal(t, DecayReport{Processed: 3, Decayed: 2}, report)
	assert.Equal(t, 950, store.score("u2"))
	assert.Equal(t, 1995, store.score("u3"))

	rep, _ := store.GetReputation(ctx, "u3")
	assert.Equal(t, TierContributor, rep.Tier)

	_, err = svc.ApplyWeeklyDecay(ctx)
	require.NoError(t, err)
	assert.Equal(t, 902, store.score("u2"))
	assert.Equal(t, 0, store.score("u1"))
}

func TestApplyWeeklyDecayRetriesOnConflict(t *testing.T) {
	store := newFakeStore()
	store.addUser("u1", 1000)
	store.casConflicts = 1
	svc := NewService(store, DefaultRules(), nil, &stepClock{t: testStart})

	report, err := svc.ApplyWeeklyDecay(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Decayed)
	assert.Equal(t, 1045, store.score("u1")) // (1000 + 100) * 0.95
}

func TestApplyWeeklyDecayGivesUp(t *testing.T) {
	store := newFakeStore()
	store.addUser("u1", 1000)
	store.addUser("u2", 1000)
	store.casConflicts = decayAttempts
	svc := NewService(store, DefaultRules(), nil, &stepClock{t: testStart})

	report, err := svc.ApplyWeeklyDecay(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DecayReport{Processed: 2, Decayed: 1, Failed: 1}, report)
	assert.Equal(t, 950, store.score("u2"))
}

func TestGetUserCloutStats(t *testing.T) {
	svc, store, clock := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		store.addTx(Transaction{ID: "t", UserID: "u1", ActionType: ActionCommentPosted, Amount: 3, CreatedAt: testStart.Add(-time.Duration(60-i) * time.Hour)})
	}
	_, err := svc.AwardClout(ctx, "u1", ActionPostCreated, Target{})
	require.NoError(t, err)
	clock.advance(time.Minute)

	stats, err := svc.GetUserCloutStats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 15, stats.Score)
	assert.Equal(t, TierNovice, stats.Tier)
	assert.Equal(t, 1, stats.Streak)
	require.Len(t, stats.RecentTransactions, 50)
	assert.Equal(t, ActionPostCreated, stats.RecentTransactions[0].ActionType)
	for i := 1; i < len(stats.RecentTransactions); i++ {
		assert.False(t, stats.RecentTransactions[i].CreatedAt.After(stats.RecentTransactions[i-1].CreatedAt))
	}

	_, err = svc.GetUserCloutStats(ctx, "ghost")
	assert.ErrorIs(t, err, common.ErrUserNotFound)
}

func TestGetLeaderboard(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	store.addUser("u2", 3000)
	store.addUser("u3", 700)

	entries, err := svc.GetLeaderboard(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "u2", entries[0].UserID)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, TierInfluencer, entries[0].Tier)
	assert.Equal(t, 3, entries[2].Rank)

	entries, err = svc.GetLeaderboard(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestGetPlatformStats(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.addUser("u2", 40)
	store.posts = 7

	st, err := svc.GetPlatformStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PlatformStats{Users: 2, Posts: 7, TotalClout: 40}, *st)
}
