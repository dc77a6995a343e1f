package services

import (
	"context"
	"log"
	"nuncio/internal/metrics"
	"nuncio/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoteService is the vote ledger: it owns the upvoted_on/downvoted_on rows
// and the counters they drive.
type VoteService struct {
	db      *gorm.DB
	ranking *RankingService
}

func NewVoteService(db *gorm.DB, ranking *RankingService) *VoteService {
	return &VoteService{db: db, ranking: ranking}
}

// State returns the current ledger entry for (userID, postID).
func (s *VoteService) State(ctx context.Context, userID, postID uint) (VoteState, error) {
	return voteState(s.db.WithContext(ctx), userID, postID)
}

// States returns the ledger entries of one user over several posts. Posts the
// user never voted on are absent from the map.
func (s *VoteService) States(ctx context.Context, userID uint, postIDs []uint) (map[uint]VoteState, error) {
	states := make(map[uint]VoteState, len(postIDs))
	if userID == 0 || len(postIDs) == 0 {
		return states, nil
	}

	var ups, downs []uint
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Upvote{}).Where("user_id = ? AND post_id IN ?", userID, postIDs).Pluck("post_id", &ups).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Downvote{}).Where("user_id = ? AND post_id IN ?", userID, postIDs).Pluck("post_id", &downs).Error; err != nil {
		return nil, err
	}
	for _, id := range ups {
		states[id] = VoteUp
	}
	for _, id := range downs {
		states[id] = VoteDown
	}
	return states, nil
}

func voteState(tx *gorm.DB, userID, postID uint) (VoteState, error) {
	var count int64
	if err := tx.Model(&models.Upvote{}).Where("user_id = ? AND post_id = ?", userID, postID).Count(&count).Error; err != nil {
		return VoteNone, err
	}
	if count > 0 {
		return VoteUp, nil
	}
	if err := tx.Model(&models.Downvote{}).Where("user_id = ? AND post_id = ?", userID, postID).Count(&count).Error; err != nil {
		return VoteNone, err
	}
	if count > 0 {
		return VoteDown, nil
	}
	return VoteNone, nil
}

// Apply moves the viewer's vote on postID in the requested direction and
// returns the post as committed. Repeating the current direction changes
// nothing. The voter row and the post row are locked for the whole
// read-modify-write, so two requests from the same user cannot both apply.
func (s *VoteService) Apply(ctx context.Context, viewer Viewer, postID uint, dir Direction) (*models.Post, error) {
	user, err := memberOf(viewer)
	if err != nil {
		return nil, err
	}
	if dir != Upvote && dir != Downvote {
		return nil, invalid("direction", "unknown vote direction")
	}

	var post models.Post
	changed := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&models.User{}, user.ID).Error; err != nil {
			return translate(err, "voter")
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&post, postID).Error; err != nil {
			return translate(err, "post")
		}

		current, err := voteState(tx, user.ID, post.ID)
		if err != nil {
			return err
		}
		next, delta := Transition(current, dir)
		if delta.IsZero() {
			return nil
		}

		if err := moveVote(tx, user.ID, post.ID, current, next); err != nil {
			return err
		}

		post.Upvotes += delta.Upvotes
		post.Downvotes += delta.Downvotes
		s.ranking.Recompute(&post)
		if err := s.ranking.Persist(tx, &post); err != nil {
			return err
		}
		if _, err := RecalculateScore(tx, post.UserID); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		metrics.VotesTotal.WithLabelValues(dir.String(), "error").Inc()
		log.Printf("vote: post %d user %d %s: %v", postID, user.ID, dir, err)
		return nil, err
	}

	outcome := "noop"
	if changed {
		outcome = "applied"
	}
	metrics.VotesTotal.WithLabelValues(dir.String(), outcome).Inc()
	return &post, nil
}

// moveVote rewrites the ledger rows for a state change.
func moveVote(tx *gorm.DB, userID, postID uint, from, to VoteState) error {
	switch from {
	case VoteUp:
		if err := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Upvote{}).Error; err != nil {
			return err
		}
	case VoteDown:
		if err := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Downvote{}).Error; err != nil {
			return err
		}
	}

	switch to {
	case VoteUp:
		return tx.Create(&models.Upvote{UserID: userID, PostID: postID}).Error
	case VoteDown:
		return tx.Create(&models.Downvote{UserID: userID, PostID: postID}).Error
	}
	return nil
}
