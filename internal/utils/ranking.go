package utils

import (
	"time"
)

// MinAge keeps a post's age strictly positive, even when the clock is behind
// the stored creation time.
const MinAge int64 = 1

// Age returns whole seconds elapsed between created and now, clamped to MinAge.
func Age(created, now time.Time) int64 {
	seconds := int64(now.Sub(created) / time.Second)
	if seconds < MinAge {
		return MinAge
	}
	return seconds
}

// Score is the net vote count. It has no floor.
func Score(up, down int) int {
	return up - down
}

// EffectiveImportance coerces unset or non-positive importance to 1.
func EffectiveImportance(importance int) int {
	if importance < 1 {
		return 1
	}
	return importance
}

// Hotness is the listing key, sorted descending.
//
// The score is divided by the post's effective age, age / importance, so
// fresh posts outrank stale ones with the same score and each boost slows
// how fast a post cools down.
func Hotness(up, down, importance int, age int64) float64 {
	if age < MinAge {
		age = MinAge
	}
	effectiveAge := float64(age) / float64(EffectiveImportance(importance))
	return float64(Score(up, down)) / effectiveAge
}
