package services

import "time"

// Options holds the forum policy knobs.
type Options struct {
	PostsPerPage        int
	ImportanceBaseline  int           // importance of a fresh post
	BoostCost           int           // importance debt charged per boost
	RankRefreshInterval time.Duration // max hotness staleness on the hot listing
}

func DefaultOptions() Options {
	return Options{
		PostsPerPage:        30,
		ImportanceBaseline:  10,
		BoostCost:           5,
		RankRefreshInterval: time.Minute,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.PostsPerPage <= 0 {
		o.PostsPerPage = d.PostsPerPage
	}
	if o.ImportanceBaseline <= 0 {
		o.ImportanceBaseline = d.ImportanceBaseline
	}
	if o.BoostCost < 0 {
		o.BoostCost = d.BoostCost
	}
	if o.RankRefreshInterval <= 0 {
		o.RankRefreshInterval = d.RankRefreshInterval
	}
	return o
}
