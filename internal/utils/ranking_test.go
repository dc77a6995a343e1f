package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAge(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, int64(90), Age(created, created.Add(90*time.Second)))
	assert.Equal(t, int64(90), Age(created, created.Add(90*time.Second+900*time.Millisecond)))
}

func TestAge_ClampsClockSkew(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, MinAge, Age(created, created))
	assert.Equal(t, MinAge, Age(created, created.Add(-time.Hour)))
	assert.Equal(t, MinAge, Age(created, created.Add(300*time.Millisecond)))
}

func TestScore(t *testing.T) {
	assert.Equal(t, 1, Score(1, 0))
	assert.Equal(t, 0, Score(3, 3))
	assert.Equal(t, -4, Score(1, 5))
}

func TestEffectiveImportance(t *testing.T) {
	assert.Equal(t, 1, EffectiveImportance(0))
	assert.Equal(t, 1, EffectiveImportance(-3))
	assert.Equal(t, 10, EffectiveImportance(10))
}

func TestHotness(t *testing.T) {
	// score 2, importance 10, age 100s: 2 / (100/10)
	assert.InDelta(t, 0.2, Hotness(3, 1, 10, 100), 1e-9)
}

func TestHotness_NeverDividesByZero(t *testing.T) {
	assert.InDelta(t, 5.0, Hotness(5, 0, 0, 1), 1e-9)
	assert.InDelta(t, 5.0, Hotness(5, 0, 1, 0), 1e-9)
	assert.InDelta(t, 5.0, Hotness(5, 0, -2, -10), 1e-9)
}

func TestHotness_DecaysWithAge(t *testing.T) {
	fresh := Hotness(10, 2, 10, 60)
	hourOld := Hotness(10, 2, 10, 3600)
	dayOld := Hotness(10, 2, 10, 86400)

	assert.Greater(t, fresh, hourOld)
	assert.Greater(t, hourOld, dayOld)
}

func TestHotness_BoostRaisesPositivePosts(t *testing.T) {
	assert.Greater(t, Hotness(4, 0, 11, 600), Hotness(4, 0, 10, 600))
}

func TestHotness_Idempotent(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	now := created.Add(42 * time.Minute)

	first := Hotness(7, 3, 12, Age(created, now))
	second := Hotness(7, 3, 12, Age(created, now))
	assert.Equal(t, first, second)
}
