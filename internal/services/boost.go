package services

import (
	"context"
	"errors"
	"log"
	"nuncio/internal/metrics"
	"nuncio/internal/models"
	"nuncio/internal/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BoostService lets a user give importance to a post, once per post, at a
// fixed cost added to their importance debt. No spending limit is enforced
// here.
type BoostService struct {
	db      *gorm.DB
	ranking *RankingService
	opts    Options
}

func NewBoostService(db *gorm.DB, ranking *RankingService, opts Options) *BoostService {
	return &BoostService{db: db, ranking: ranking, opts: opts.withDefaults()}
}

// HasBoosted reports whether userID already gave importance to postID.
func (s *BoostService) HasBoosted(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Boost{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}

// Apply raises the post's importance by one and charges the viewer. A second
// boost of the same post returns ErrAlreadyBoosted and changes nothing.
func (s *BoostService) Apply(ctx context.Context, viewer Viewer, postID uint) (*models.Post, error) {
	user, err := memberOf(viewer)
	if err != nil {
		return nil, err
	}

	var post models.Post
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&models.User{}, user.ID).Error; err != nil {
			return translate(err, "user")
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&post, postID).Error; err != nil {
			return translate(err, "post")
		}

		var count int64
		if err := tx.Model(&models.Boost{}).Where("user_id = ? AND post_id = ?", user.ID, post.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyBoosted
		}

		boost := models.Boost{UserID: user.ID, PostID: post.ID, Cost: s.opts.BoostCost}
		if err := tx.Create(&boost).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyBoosted
			}
			return err
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", user.ID).
			UpdateColumn("importance_debt", gorm.Expr("importance_debt + ?", s.opts.BoostCost)).
			Error; err != nil {
			return err
		}

		post.Importance = utils.EffectiveImportance(post.Importance) + 1
		s.ranking.Recompute(&post)
		// importance does not enter any score, so no aggregate changes
		return s.ranking.Persist(tx, &post)
	})

	switch {
	case errors.Is(err, ErrAlreadyBoosted):
		metrics.BoostsTotal.WithLabelValues("already_boosted").Inc()
		return nil, err
	case err != nil:
		metrics.BoostsTotal.WithLabelValues("error").Inc()
		log.Printf("boost: post %d user %d: %v", postID, user.ID, err)
		return nil, err
	}
	metrics.BoostsTotal.WithLabelValues("applied").Inc()
	return &post, nil
}
