package handlers

import (
	"context"
	"fmt"
	"net/http"
	"nuncio/internal/middleware"
	"nuncio/internal/models"
	"nuncio/internal/services"
	"nuncio/internal/utils"
	"strings"

	"github.com/gin-gonic/gin"
)

type StoryHandler struct {
	forum *services.Forum
}

func NewStoryHandler(forum *services.Forum) *StoryHandler {
	return &StoryHandler{forum: forum}
}

type listFunc func(ctx context.Context, page int) (*services.Page, error)

func (h *StoryHandler) ListHot(c *gin.Context) {
	h.list(c, h.forum.Posts.ListHot, gin.H{"Active": "hot", "Title": "Hot"})
}

func (h *StoryHandler) ListNew(c *gin.Context) {
	h.list(c, h.forum.Posts.ListNew, gin.H{"Active": "new", "Title": "New"})
}

func (h *StoryHandler) list(c *gin.Context, fetch listFunc, data gin.H) {
	page, err := fetch(c.Request.Context(), utils.PageParam(c.Query("page")))
	if err != nil {
		fail(c, err)
		return
	}
	h.renderPage(c, page, data)
}

// renderPage renders a post listing with the viewer's vote on each post.
func (h *StoryHandler) renderPage(c *gin.Context, page *services.Page, data gin.H) {
	data["Page"] = page
	data["Posts"] = page.Posts
	data["Votes"] = voteStates(c, h.forum, page.Posts)
	data["BasePath"] = c.Request.URL.Path
	Render(c, http.StatusOK, "story/list.html", data)
}

// voteStates maps post ids to "up" or "down" for the current user.
func voteStates(c *gin.Context, forum *services.Forum, posts []models.Post) map[uint]string {
	out := make(map[uint]string)
	user := middleware.CurrentUser(c)
	if user == nil || len(posts) == 0 {
		return out
	}
	ids := make([]uint, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}
	states, err := forum.Votes.States(c.Request.Context(), user.ID, ids)
	if err != nil {
		return out
	}
	for id, s := range states {
		out[id] = s.String()
	}
	return out
}

func (h *StoryHandler) Detail(c *gin.Context) {
	id := utils.ParseID(c.Param("id"))
	if id == 0 {
		RenderError(c, http.StatusNotFound, msg(services.ErrNotFound))
		return
	}
	ctx := c.Request.Context()

	post, err := h.forum.Posts.Get(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}

	viewer := middleware.CurrentViewer(c)
	deletable := make(map[uint]bool, len(post.Comments))
	for i := range post.Comments {
		deletable[post.Comments[i].ID] = services.CanDeleteComment(viewer, post, &post.Comments[i])
	}

	vote, boosted := "", false
	if user := middleware.CurrentUser(c); user != nil {
		if s, err := h.forum.Votes.State(ctx, user.ID, post.ID); err == nil {
			vote = s.String()
		}
		boosted, _ = h.forum.Boosts.HasBoosted(ctx, user.ID, post.ID)
	}

	Render(c, http.StatusOK, "story/detail.html", gin.H{
		"Title":             post.Title,
		"Post":              post,
		"Vote":              vote,
		"Boosted":           boosted,
		"CanDelete":         services.CanDeletePost(viewer, post),
		"DeletableComments": deletable,
	})
}

func (h *StoryHandler) ShowSubmit(c *gin.Context) {
	// ?topic= prefills the form, as linked from the feature-request page
	Render(c, http.StatusOK, "story/submit.html", gin.H{
		"Title": "Submit",
		"Form":  services.SubmitInput{Topic: c.Query("topic")},
	})
}

func (h *StoryHandler) Submit(c *gin.Context) {
	in := services.SubmitInput{
		Title: c.PostForm("title"),
		Text:  c.PostForm("text"),
		Link:  c.PostForm("link"),
		Topic: c.PostForm("topic"),
		Event: c.PostForm("event"),
	}

	post, err := h.forum.Posts.Submit(c.Request.Context(), middleware.CurrentViewer(c), in)
	if err != nil {
		if services.IsValidation(err) {
			Render(c, http.StatusBadRequest, "story/submit.html", gin.H{
				"Title": "Submit",
				"Error": msg(err),
				"Form":  in,
			})
			return
		}
		fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, itemPath(post.ID))
}

func (h *StoryHandler) AddComment(c *gin.Context) {
	id := utils.ParseID(c.Param("id"))
	_, err := h.forum.Comments.Add(c.Request.Context(), middleware.CurrentViewer(c), id, c.PostForm("comment"))
	switch {
	case err == nil:
	case services.IsValidation(err):
		flash(c, msg(err))
	default:
		fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, itemPath(id))
}

func (h *StoryHandler) DeletePost(c *gin.Context) {
	id := utils.ParseID(c.Param("id"))
	if err := h.forum.Posts.Delete(c.Request.Context(), middleware.CurrentViewer(c), id); err != nil {
		fail(c, err)
		return
	}
	flash(c, "Post deleted.")

	// the post's own page is gone
	target := backTarget(c)
	if onPage(target, itemPath(id)) {
		target = "/"
	}
	if isHTMX(c) {
		HtmxRedirect(c, target)
		return
	}
	c.Redirect(http.StatusFound, target)
}

func (h *StoryHandler) DeleteComment(c *gin.Context) {
	id := utils.ParseID(c.Param("id"))
	comment, err := h.forum.Comments.Delete(c.Request.Context(), middleware.CurrentViewer(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	if isHTMX(c) {
		// empty body removes the target element
		c.Status(http.StatusOK)
		return
	}
	flash(c, "Comment deleted.")
	c.Redirect(http.StatusFound, itemPath(comment.PostID))
}

func (h *StoryHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	data := gin.H{"Title": "Search", "Query": query}
	if query == "" {
		Render(c, http.StatusOK, "search.html", data)
		return
	}

	res, err := h.forum.Posts.Search(c.Request.Context(), query)
	if err != nil {
		fail(c, err)
		return
	}
	data["Title"] = "Search: " + query
	data["Result"] = res
	Render(c, http.StatusOK, "search.html", data)
}

func itemPath(id uint) string {
	return fmt.Sprintf("/item/%d", id)
}

// onPage reports whether target is page, ignoring any query or subpath.
func onPage(target, page string) bool {
	if !strings.HasPrefix(target, page) {
		return false
	}
	rest := target[len(page):]
	return rest == "" || rest[0] == '?' || rest[0] == '/'
}
