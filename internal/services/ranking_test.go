package services

import (
	"context"
	"nuncio/internal/models"
	"nuncio/internal/utils"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecompute_IsIdempotent(t *testing.T) {
	r := NewRankingService(nil, DefaultOptions())
	r.Clock = func() time.Time { return testNow }

	p := models.Post{Upvotes: 7, Downvotes: 2, Importance: 10, CreatedAt: testNow.Add(-10 * time.Minute)}
	r.Recompute(&p)
	first := p
	r.Recompute(&p)

	assert.Equal(t, first, p)
	assert.Equal(t, 5, p.Score)
	assert.Equal(t, int64(600), p.Age)
	assert.InDelta(t, 5.0*10/600, p.Hotness, 1e-12)
}

func TestRecompute_CoercesImportanceAndAge(t *testing.T) {
	r := NewRankingService(nil, DefaultOptions())
	r.Clock = func() time.Time { return testNow }

	p := models.Post{Upvotes: 1, Importance: 0, CreatedAt: testNow.Add(time.Hour)}
	r.Recompute(&p)
	assert.Equal(t, 1, p.Importance)
	assert.Equal(t, int64(1), p.Age)
	assert.InDelta(t, 1.0, p.Hotness, 1e-12)
}

func TestRefreshStale_OnlyTouchesStalePosts(t *testing.T) {
	forum, gdb, clock := setupForum(t, DefaultOptions())
	alice := createTestUser(t, gdb, "alice")

	stale := createTestPost(t, forum, alice, "stale")
	clock.Advance(30 * time.Second)
	fresh := createTestPost(t, forum, alice, "fresh")
	clock.Advance(45 * time.Second)

	require.NoError(t, forum.Ranking.RefreshStale(context.Background()))

	got := reloadPost(t, gdb, stale.ID)
	assert.Equal(t, int64(75), got.Age)
	assert.WithinDuration(t, clock.Now(), got.RankedAt, time.Second)
	assert.InDelta(t, utils.Hotness(1, 0, 10, 75), got.Hotness, 1e-9)

	untouched := reloadPost(t, gdb, fresh.ID)
	assert.Equal(t, int64(1), untouched.Age)
	assert.WithinDuration(t, testNow.Add(30*time.Second), untouched.RankedAt, time.Second)
}

func TestRefresh_DoesNotOverwriteNewerCounters(t *testing.T) {
	forum, gdb, clock := setupForum(t, DefaultOptions())
	ctx := context.Background()
	alice := createTestUser(t, gdb, "alice")
	bob := createTestUser(t, gdb, "bob")
	post := createTestPost(t, forum, alice, "racy")

	snapshot := reloadPost(t, gdb, post.ID)
	clock.Advance(time.Minute)
	_, err := forum.Votes.Apply(ctx, Member{User: bob}, post.ID, Upvote)
	require.NoError(t, err)
	voted := reloadPost(t, gdb, post.ID)

	clock.Advance(time.Minute)
	forum.Ranking.RefreshPost(ctx, &snapshot)

	stored := reloadPost(t, gdb, post.ID)
	assert.Equal(t, 2, stored.Upvotes)
	assert.Equal(t, 2, stored.Score)
	assert.Equal(t, voted.Hotness, stored.Hotness)
}
