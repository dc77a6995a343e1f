package services

import "gorm.io/gorm"

// Forum bundles the services a request handler needs.
type Forum struct {
	Users    *UserService
	Posts    *PostService
	Comments *CommentService
	Votes    *VoteService
	Boosts   *BoostService
	Ranking  *RankingService
	Options  Options
}

func NewForum(db *gorm.DB, opts Options) *Forum {
	opts = opts.withDefaults()
	ranking := NewRankingService(db, opts)
	return &Forum{
		Users:    NewUserService(db),
		Posts:    NewPostService(db, ranking, opts),
		Comments: NewCommentService(db),
		Votes:    NewVoteService(db, ranking),
		Boosts:   NewBoostService(db, ranking, opts),
		Ranking:  ranking,
		Options:  opts,
	}
}
