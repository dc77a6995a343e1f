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

func TestBoost_OncePerUser(t *testing.T) {
	forum, gdb, _ := setupForum(t, DefaultOptions())
	ctx := context.Background()
	alice := createTestUser(t, gdb, "alice")
	bob := createTestUser(t, gdb, "bob")
	post := createTestPost(t, forum, alice, "boost me")
	require.Equal(t, 10, post.Importance)

	got, err := forum.Boosts.Apply(ctx, Member{User: bob}, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 11, got.Importance)
	assert.Equal(t, 5, reloadUser(t, gdb, bob.ID).ImportanceDebt)

	_, err = forum.Boosts.Apply(ctx, Member{User: bob}, post.ID)
	assert.ErrorIs(t, err, ErrAlreadyBoosted)

	assert.Equal(t, 11, reloadPost(t, gdb, post.ID).Importance)
	assert.Equal(t, 5, reloadUser(t, gdb, bob.ID).ImportanceDebt)
	assert.Equal(t, int64(1), countRows(t, gdb, &models.Boost{}, "user_id = ? AND post_id = ?", bob.ID, post.ID))

	boosted, err := forum.Boosts.HasBoosted(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, boosted)
	boosted, err = forum.Boosts.HasBoosted(ctx, alice.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, boosted)
}

func TestBoost_RaisesHotness(t *testing.T) {
	forum, gdb, clock := setupForum(t, DefaultOptions())
	ctx := context.Background()
	alice := createTestUser(t, gdb, "alice")
	bob := createTestUser(t, gdb, "bob")
	post := createTestPost(t, forum, alice, "rising")

	clock.Advance(time.Hour)
	forum.Ranking.RefreshPost(ctx, post)
	before := reloadPost(t, gdb, post.ID).Hotness

	got, err := forum.Boosts.Apply(ctx, Member{User: bob}, post.ID)
	require.NoError(t, err)
	assert.Greater(t, got.Hotness, before)
	assert.InDelta(t, utils.Hotness(1, 0, 11, 3600), reloadPost(t, gdb, post.ID).Hotness, 1e-9)
}

func TestBoost_ChargesConfiguredCost(t *testing.T) {
	opts := DefaultOptions()
	opts.BoostCost = 3
	forum, gdb, _ := setupForum(t, opts)
	ctx := context.Background()
	alice := createTestUser(t, gdb, "alice")
	bob := createTestUser(t, gdb, "bob")

	for _, title := range []string{"a", "b"} {
		post := createTestPost(t, forum, alice, title)
		_, err := forum.Boosts.Apply(ctx, Member{User: bob}, post.ID)
		require.NoError(t, err)
	}
	assert.Equal(t, 6, reloadUser(t, gdb, bob.ID).ImportanceDebt)
}

func TestBoost_CoercesMissingImportance(t *testing.T) {
	forum, gdb, _ := setupForum(t, DefaultOptions())
	ctx := context.Background()
	alice := createTestUser(t, gdb, "alice")
	post := createTestPost(t, forum, alice, "legacy")
	require.NoError(t, gdb.Model(&models.Post{}).Where("id = ?", post.ID).UpdateColumn("importance", 0).Error)

	got, err := forum.Boosts.Apply(ctx, Member{User: alice}, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Importance)
	assert.Greater(t, got.Hotness, 0.0)
}

func TestBoost_Errors(t *testing.T) {
	forum, gdb, _ := setupForum(t, DefaultOptions())
	ctx := context.Background()
	alice := createTestUser(t, gdb, "alice")
	post := createTestPost(t, forum, alice, "guarded")

	_, err := forum.Boosts.Apply(ctx, Anonymous{}, post.ID)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = forum.Boosts.Apply(ctx, Member{User: alice}, post.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, reloadUser(t, gdb, alice.ID).ImportanceDebt)
}

func TestBoost_FailedWriteRollsBack(t *testing.T) {
	forum, gdb, _ := setupForum(t, DefaultOptions())
	ctx := context.Background()
	alice := createTestUser(t, gdb, "alice")
	bob := createTestUser(t, gdb, "bob")
	post := createTestPost(t, forum, alice, "fragile")
	before := reloadPost(t, gdb, post.ID)

	// the boost row and the debt are written before the post update fails
	restore := failUpdates(t, gdb, "posts")
	_, err := forum.Boosts.Apply(ctx, Member{User: bob}, post.ID)
	require.ErrorIs(t, err, errWriteFailed)
	restore()

	after := reloadPost(t, gdb, post.ID)
	assert.Equal(t, before.Importance, after.Importance)
	assert.Equal(t, before.Hotness, after.Hotness)
	assert.Equal(t, 0, reloadUser(t, gdb, bob.ID).ImportanceDebt)
	assert.Equal(t, int64(0), countRows(t, gdb, &models.Boost{}, "user_id = ? AND post_id = ?", bob.ID, post.ID))

	got, err := forum.Boosts.Apply(ctx, Member{User: bob}, post.ID)
	require.NoError(t, err, "a rolled back boost does not count as given")
	assert.Equal(t, 11, got.Importance)
	assert.Equal(t, 5, reloadUser(t, gdb, bob.ID).ImportanceDebt)
}
