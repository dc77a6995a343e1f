package services

import (
	"context"
	"log"
	"net/url"
	"nuncio/internal/metrics"
	"nuncio/internal/models"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	maxTitleLen     = 50
	maxTextLen      = 140
	maxLinkLen      = 2048
	maxTagLen       = 64
	searchLimit     = 50
	hotOrder        = "hotness DESC, id DESC"
	newOrder        = "created_at DESC, id DESC"
	likeEscapeQuery = "LOWER(title) LIKE ? ESCAPE '\\'"
)

type PostService struct {
	db      *gorm.DB
	ranking *RankingService
	opts    Options
}

func NewPostService(db *gorm.DB, ranking *RankingService, opts Options) *PostService {
	return &PostService{db: db, ranking: ranking, opts: opts.withDefaults()}
}

type SubmitInput struct {
	Title string
	Text  string
	Link  string
	Topic string
	Event string // optional
}

func (in *SubmitInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Text = strings.TrimSpace(in.Text)
	in.Link = strings.TrimSpace(in.Link)
	in.Topic = strings.TrimSpace(in.Topic)
	in.Event = strings.TrimSpace(in.Event)

	if in.Title == "" {
		return invalid("title", "title is required")
	}
	if runeLen(in.Title) > maxTitleLen {
		return invalid("title", "title is longer than %d characters", maxTitleLen)
	}
	if in.Text == "" && in.Link == "" {
		return invalid("text", "please input either a link or text, or both")
	}
	if runeLen(in.Text) > maxTextLen {
		return invalid("text", "text is longer than %d characters", maxTextLen)
	}
	if in.Link != "" {
		if len(in.Link) > maxLinkLen {
			return invalid("link", "link is longer than %d characters", maxLinkLen)
		}
		u, err := url.Parse(in.Link)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return invalid("link", "link must be an http or https URL")
		}
	}
	if in.Topic == "" {
		return invalid("topic", "topic is required")
	}
	if runeLen(in.Topic) > maxTagLen {
		return invalid("topic", "topic is longer than %d characters", maxTagLen)
	}
	if !validTagName(in.Topic) {
		return invalid("topic", "topic cannot contain %s or be . or ..", reservedTagChars)
	}
	if runeLen(in.Event) > maxTagLen {
		return invalid("event", "event is longer than %d characters", maxTagLen)
	}
	if in.Event != "" && !validTagName(in.Event) {
		return invalid("event", "event cannot contain %s or be . or ..", reservedTagChars)
	}
	return nil
}

// reservedTagChars cannot appear in topic and event names, which are used
// as a single segment of /topic/:name and /event/:name.
const reservedTagChars = `/ ? # % \`

func validTagName(name string) bool {
	return name != "." && name != ".." && !strings.ContainsAny(name, `/?#%\`)
}

func runeLen(s string) int {
	return len([]rune(s))
}

// Submit creates a post owned by the viewer. The submitter's own upvote is
// recorded in the ledger, so the post starts at one upvote.
func (s *PostService) Submit(ctx context.Context, viewer Viewer, in SubmitInput) (*models.Post, error) {
	user, err := memberOf(viewer)
	if err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}

	post := models.Post{
		UserID:     user.ID,
		Title:      in.Title,
		Text:       in.Text,
		Link:       in.Link,
		IsLink:     in.Link != "",
		Upvotes:    1,
		Downvotes:  0,
		Importance: s.opts.ImportanceBaseline,
		CreatedAt:  s.ranking.now(),
	}
	s.ranking.Recompute(&post)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		topic, err := findOrCreateTopic(tx, in.Topic)
		if err != nil {
			return err
		}
		post.Topics = []models.Topic{*topic}

		if in.Event != "" {
			event, err := findOrCreateEvent(tx, in.Event)
			if err != nil {
				return err
			}
			post.EventID = &event.ID
			post.Event = event
		}

		if err := tx.Omit("User", "Event", "Topics.*").Create(&post).Error; err != nil {
			return translate(err, "create post")
		}
		if err := tx.Create(&models.Upvote{UserID: user.ID, PostID: post.ID}).Error; err != nil {
			return err
		}
		_, err = RecalculateScore(tx, user.ID)
		return err
	})
	if err != nil {
		log.Printf("submit: user %d: %v", user.ID, err)
		return nil, err
	}

	kind := "text"
	if post.IsLink {
		kind = "link"
	}
	metrics.PostsSubmitted.WithLabelValues(kind).Inc()
	post.User = *user
	return &post, nil
}

// Topics and events are created the first time a name is used. Names match
// exactly, including case.
func findOrCreateTopic(tx *gorm.DB, name string) (*models.Topic, error) {
	topic := models.Topic{TagName: name}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&topic).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("tag_name = ?", name).First(&topic).Error; err != nil {
		return nil, translate(err, "topic")
	}
	return &topic, nil
}

func findOrCreateEvent(tx *gorm.DB, name string) (*models.Event, error) {
	event := models.Event{EventName: name}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&event).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("event_name = ?", name).First(&event).Error; err != nil {
		return nil, translate(err, "event")
	}
	return &event, nil
}

// Get loads a post with its author, topics, event and comments, and
// refreshes its age for display.
func (s *PostService) Get(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Topics").
		Preload("Event").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		First(&post, id).Error
	if err != nil {
		return nil, translate(err, "post")
	}
	s.ranking.RefreshPost(ctx, &post)
	return &post, nil
}

// Page is one page of a post listing.
type Page struct {
	Posts   []models.Post
	Number  int
	Total   int64
	HasPrev bool
	HasNext bool
}

func (s *PostService) paginate(ctx context.Context, query *gorm.DB, order string, page int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	size := s.opts.PostsPerPage
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Model(&models.Post{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var posts []models.Post
	err := query.
		Preload("User").
		Preload("Topics").
		Preload("Event").
		Order(order).
		Limit(size).
		Offset((page - 1) * size).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	s.ranking.RefreshForDisplay(ctx, posts)

	return &Page{
		Posts:   posts,
		Number:  page,
		Total:   total,
		HasPrev: page > 1,
		HasNext: int64(page*size) < total,
	}, nil
}

// ListHot is the front page: posts by hotness, highest first. Stale rankings
// are refreshed before the page is read.
func (s *PostService) ListHot(ctx context.Context, page int) (*Page, error) {
	if err := s.ranking.RefreshStale(ctx); err != nil {
		log.Printf("ranking: refresh stale posts: %v", err)
	}
	return s.paginate(ctx, s.db.WithContext(ctx).Model(&models.Post{}), hotOrder, page)
}

// ListNew lists posts newest first.
func (s *PostService) ListNew(ctx context.Context, page int) (*Page, error) {
	return s.paginate(ctx, s.db.WithContext(ctx).Model(&models.Post{}), newOrder, page)
}

func (s *PostService) ListByTopic(ctx context.Context, name string, page int) (*models.Topic, *Page, error) {
	var topic models.Topic
	if err := s.db.WithContext(ctx).Where("tag_name = ?", name).First(&topic).Error; err != nil {
		return nil, nil, translate(err, "topic")
	}
	p, err := s.paginate(ctx, s.postsOfTopic(ctx, topic.ID), hotOrder, page)
	return &topic, p, err
}

func (s *PostService) ListByEvent(ctx context.Context, name string, page int) (*models.Event, *Page, error) {
	var event models.Event
	if err := s.db.WithContext(ctx).Where("event_name = ?", name).First(&event).Error; err != nil {
		return nil, nil, translate(err, "event")
	}
	query := s.db.WithContext(ctx).Model(&models.Post{}).Where("event_id = ?", event.ID)
	p, err := s.paginate(ctx, query, hotOrder, page)
	return &event, p, err
}

func (s *PostService) ListByUser(ctx context.Context, username string, page int) (*models.User, *Page, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, nil, translate(err, "user")
	}
	query := s.db.WithContext(ctx).Model(&models.Post{}).Where("user_id = ?", user.ID)
	p, err := s.paginate(ctx, query, newOrder, page)
	return &user, p, err
}

func (s *PostService) postsOfTopic(ctx context.Context, topicID uint) *gorm.DB {
	sub := s.db.WithContext(ctx).Table("post_topics").Select("post_id").Where("topic_id = ?", topicID)
	return s.db.WithContext(ctx).Model(&models.Post{}).Where("id IN (?)", sub)
}

// SearchResult groups the three kinds of search hits.
type SearchResult struct {
	Query      string
	Posts      []models.Post // title contains the query, case-insensitive
	Topic      *models.Topic // exact tag match
	TopicPosts []models.Post
	User       *models.User // exact username match
}

func (s *PostService) Search(ctx context.Context, q string) (*SearchResult, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, invalid("q", "search query is required")
	}
	res := &SearchResult{Query: q}
	db := s.db.WithContext(ctx)

	pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
	err := db.Preload("User").Preload("Topics").
		Where(likeEscapeQuery, pattern).
		Order(hotOrder).
		Limit(searchLimit).
		Find(&res.Posts).Error
	if err != nil {
		return nil, err
	}
	s.ranking.RefreshForDisplay(ctx, res.Posts)

	var topic models.Topic
	if err := db.Where("tag_name = ?", q).Limit(1).Find(&topic).Error; err != nil {
		return nil, err
	}
	if topic.ID != 0 {
		res.Topic = &topic
		err := s.postsOfTopic(ctx, topic.ID).
			Preload("User").Preload("Topics").
			Order(hotOrder).
			Limit(searchLimit).
			Find(&res.TopicPosts).Error
		if err != nil {
			return nil, err
		}
		s.ranking.RefreshForDisplay(ctx, res.TopicPosts)
	}

	var user models.User
	if err := db.Where("username = ?", q).Limit(1).Find(&user).Error; err != nil {
		return nil, err
	}
	if user.ID != 0 {
		res.User = &user
	}
	return res, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Delete removes a post together with its comments, topic links, votes and
// boosts. Only the owner or an admin may delete; the owner's aggregate
// score is recomputed in the same transaction.
func (s *PostService) Delete(ctx context.Context, viewer Viewer, postID uint) error {
	user, err := memberOf(viewer)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&post, postID).Error; err != nil {
			return translate(err, "post")
		}
		if !canModerate(user, post.UserID) {
			return ErrForbidden
		}

		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Upvote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Downvote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Boost{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&post).Association("Topics").Clear(); err != nil {
			return err
		}
		if err := tx.Delete(&post).Error; err != nil {
			return err
		}
		_, err := RecalculateScore(tx, post.UserID)
		return err
	})
	if err != nil {
		return err
	}
	metrics.DeletionsTotal.WithLabelValues("post").Inc()
	log.Printf("delete: post %d by user %d", postID, user.ID)
	return nil
}

// Recent returns up to limit posts, newest first, for feeds and sitemaps.
func (s *PostService) Recent(ctx context.Context, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Topics").
		Order(newOrder).
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (s *PostService) Topics(ctx context.Context) ([]models.Topic, error) {
	var topics []models.Topic
	err := s.db.WithContext(ctx).Order("tag_name ASC").Find(&topics).Error
	return topics, err
}

func (s *PostService) Events(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := s.db.WithContext(ctx).Order("event_name ASC").Find(&events).Error
	return events, err
}
