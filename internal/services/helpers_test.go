package services

import (
	"context"
	"errors"
	"fmt"
	"nuncio/internal/db"
	"nuncio/internal/models"
	"nuncio/internal/utils"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// setupTestDB opens a private in-memory sqlite database for one test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := db.Open(db.DriverSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return gdb
}

func setupForum(t *testing.T, opts Options) (*Forum, *gorm.DB, *fakeClock) {
	t.Helper()
	gdb := setupTestDB(t)
	forum := NewForum(gdb, opts)
	clock := &fakeClock{t: testNow}
	forum.Ranking.Clock = clock.Now
	return forum, gdb, clock
}

func createTestUser(t *testing.T, gdb *gorm.DB, username string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword("password123")
	require.NoError(t, err)
	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: hash,
		Role:     models.RoleUser,
	}
	require.NoError(t, gdb.Create(&user).Error)
	return &user
}

func createTestAdmin(t *testing.T, gdb *gorm.DB, username string) *models.User {
	t.Helper()
	user := createTestUser(t, gdb, username)
	require.NoError(t, gdb.Model(user).Update("role", models.RoleAdmin).Error)
	user.Role = models.RoleAdmin
	return user
}

func createTestPost(t *testing.T, forum *Forum, author *models.User, title string) *models.Post {
	t.Helper()
	post, err := forum.Posts.Submit(context.Background(), Member{User: author}, SubmitInput{
		Title: title,
		Link:  "https://example.com/" + strings.ReplaceAll(title, " ", "-"),
		Topic: "news",
	})
	require.NoError(t, err)
	return post
}

func reloadPost(t *testing.T, gdb *gorm.DB, id uint) models.Post {
	t.Helper()
	var post models.Post
	require.NoError(t, gdb.First(&post, id).Error)
	return post
}

func reloadUser(t *testing.T, gdb *gorm.DB, id uint) models.User {
	t.Helper()
	var user models.User
	require.NoError(t, gdb.First(&user, id).Error)
	return user
}

func countRows(t *testing.T, gdb *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

var errWriteFailed = errors.New("write failed")

// failUpdates makes every UPDATE on table fail until the returned func is
// called, to check that a transaction leaves nothing behind.
func failUpdates(t *testing.T, gdb *gorm.DB, table string) (restore func()) {
	t.Helper()
	name := "test:fail_updates_on_" + table
	err := gdb.Callback().Update().Before("gorm:update").Register(name, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			tx.AddError(errWriteFailed)
		}
	})
	require.NoError(t, err)
	return func() {
		require.NoError(t, gdb.Callback().Update().Remove(name))
	}
}
