package services

import (
	"context"
	"log"
	"nuncio/internal/metrics"
	"nuncio/internal/models"
	"strings"

	"gorm.io/gorm"
)

const maxCommentLen = 140

type CommentService struct {
	db *gorm.DB
}

func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{db: db}
}

// Add attaches a comment to a post. The author's username is copied onto the
// comment and is not updated afterwards.
func (s *CommentService) Add(ctx context.Context, viewer Viewer, postID uint, text string) (*models.Comment, error) {
	user, err := memberOf(viewer)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("comment", "comment cannot be empty")
	}
	if runeLen(text) > maxCommentLen {
		return nil, invalid("comment", "comment is longer than %d characters", maxCommentLen)
	}

	comment := models.Comment{
		PostID:   postID,
		UserID:   user.ID,
		Username: user.Username,
		Text:     text,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.Post{}, postID).Error; err != nil {
			return translate(err, "post")
		}
		return tx.Create(&comment).Error
	})
	if err != nil {
		return nil, err
	}
	metrics.CommentsAdded.Inc()
	return &comment, nil
}

func (s *CommentService) ListForPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	return comments, err
}

// Delete removes a comment. Its author, the owner of the post it is on, and
// admins may delete it.
func (s *CommentService) Delete(ctx context.Context, viewer Viewer, commentID uint) (*models.Comment, error) {
	user, err := memberOf(viewer)
	if err != nil {
		return nil, err
	}

	var comment models.Comment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&comment, commentID).Error; err != nil {
			return translate(err, "comment")
		}
		if !canModerate(user, comment.UserID) {
			var post models.Post
			if err := tx.Select("id", "user_id").First(&post, comment.PostID).Error; err != nil {
				return translate(err, "post")
			}
			if post.UserID != user.ID {
				return ErrForbidden
			}
		}
		return tx.Delete(&comment).Error
	})
	if err != nil {
		return nil, err
	}
	metrics.DeletionsTotal.WithLabelValues("comment").Inc()
	log.Printf("delete: comment %d by user %d", commentID, user.ID)
	return &comment, nil
}
