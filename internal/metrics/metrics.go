// Package metrics exposes prometheus counters for forum mutations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VotesTotal counts vote requests by direction and outcome (applied, noop, error).
	VotesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nuncio_votes_total",
		Help: "Vote requests by direction and outcome",
	}, []string{"direction", "outcome"})

	// BoostsTotal counts importance boosts by outcome (applied, already_boosted, error).
	BoostsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nuncio_boosts_total",
		Help: "Importance boosts by outcome",
	}, []string{"outcome"})

	// PostsSubmitted counts accepted submissions by kind (link, text).
	PostsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nuncio_posts_submitted_total",
		Help: "Accepted post submissions by kind",
	}, []string{"kind"})

	// CommentsAdded counts accepted comments.
	CommentsAdded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nuncio_comments_added_total",
		Help: "Accepted comments",
	})

	// DeletionsTotal counts removed posts and comments by kind.
	DeletionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nuncio_deletions_total",
		Help: "Deleted posts and comments",
	}, []string{"kind"})
)
