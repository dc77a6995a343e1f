package services

import (
	"context"
	"log"
	"nuncio/internal/models"
	"nuncio/internal/utils"
	"time"

	"gorm.io/gorm"
)

// RankingService keeps the stored score, age and hotness of posts in step
// with their counters. Everything runs synchronously inside the caller's
// request; there is no background refresher.
type RankingService struct {
	db   *gorm.DB
	opts Options

	// Clock is overridable in tests.
	Clock func() time.Time
}

func NewRankingService(db *gorm.DB, opts Options) *RankingService {
	return &RankingService{
		db:    db,
		opts:  opts.withDefaults(),
		Clock: func() time.Time { return time.Now().UTC() },
	}
}

func (s *RankingService) now() time.Time {
	return s.Clock().UTC()
}

// Recompute rewrites the derived fields of p for the current time.
// Calling it twice without touching the counters yields the same values.
func (s *RankingService) Recompute(p *models.Post) {
	recomputeAt(p, s.now())
}

func recomputeAt(p *models.Post, now time.Time) {
	p.Importance = utils.EffectiveImportance(p.Importance)
	p.Score = utils.Score(p.Upvotes, p.Downvotes)
	p.Age = utils.Age(p.CreatedAt, now)
	p.Hotness = utils.Hotness(p.Upvotes, p.Downvotes, p.Importance, p.Age)
	p.RankedAt = now
}

// Persist writes the counters and ranking columns of p through tx.
func (s *RankingService) Persist(tx *gorm.DB, p *models.Post) error {
	return tx.Model(&models.Post{}).Where("id = ?", p.ID).UpdateColumns(map[string]interface{}{
		"upvotes":    p.Upvotes,
		"downvotes":  p.Downvotes,
		"score":      p.Score,
		"importance": p.Importance,
		"age":        p.Age,
		"hotness":    p.Hotness,
		"ranked_at":  p.RankedAt,
	}).Error
}

// RefreshForDisplay recomputes age and hotness of posts about to be shown.
// Failures are logged and skipped; the stored values are only an index.
func (s *RankingService) RefreshForDisplay(ctx context.Context, posts []models.Post) {
	now := s.now()
	for i := range posts {
		s.refresh(ctx, &posts[i], now)
	}
}

// RefreshPost is RefreshForDisplay for a single post.
func (s *RankingService) RefreshPost(ctx context.Context, p *models.Post) {
	s.refresh(ctx, p, s.now())
}

// RefreshStale recomputes every post whose ranking is older than the
// configured interval, so the hot listing is ordered on fresh values.
func (s *RankingService) RefreshStale(ctx context.Context) error {
	now := s.now()
	cutoff := now.Add(-s.opts.RankRefreshInterval)

	var batch []models.Post
	count := 0
	err := s.db.WithContext(ctx).
		Select("id", "upvotes", "downvotes", "importance", "created_at").
		Where("ranked_at < ?", cutoff).
		FindInBatches(&batch, 200, func(tx *gorm.DB, _ int) error {
			for i := range batch {
				s.refresh(ctx, &batch[i], now)
				count++
			}
			return nil
		}).Error
	if err != nil {
		return err
	}
	if count > 0 {
		log.Printf("ranking: refreshed %d stale posts", count)
	}
	return nil
}

// refresh persists age drift only. The write is conditional on the counters
// it was computed from, so a concurrent vote's ranking is never overwritten.
func (s *RankingService) refresh(ctx context.Context, p *models.Post, now time.Time) {
	importance := p.Importance
	recomputeAt(p, now)

	err := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND upvotes = ? AND downvotes = ? AND importance = ?", p.ID, p.Upvotes, p.Downvotes, importance).
		UpdateColumns(map[string]interface{}{
			"score":      p.Score,
			"importance": p.Importance,
			"age":        p.Age,
			"hotness":    p.Hotness,
			"ranked_at":  p.RankedAt,
		}).Error
	if err != nil {
		log.Printf("ranking: refresh post %d: %v", p.ID, err)
	}
}
