package handlers

import (
	"errors"
	"net/http"
	"nuncio/internal/middleware"
	"nuncio/internal/services"
	"nuncio/internal/utils"
	"strconv"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	forum *services.Forum
}

func NewVoteHandler(forum *services.Forum) *VoteHandler {
	return &VoteHandler{forum: forum}
}

// Vote handles POST /vote/:id with form field direction=up|down. HTMX
// requests get the new score as text; others are sent back where they came
// from.
func (h *VoteHandler) Vote(c *gin.Context) {
	id := utils.ParseID(c.Param("id"))
	dir, err := services.ParseDirection(c.PostForm("direction"))
	if err != nil {
		h.reject(c, err)
		return
	}

	post, err := h.forum.Votes.Apply(c.Request.Context(), middleware.CurrentViewer(c), id, dir)
	if err != nil {
		h.reject(c, err)
		return
	}

	if isHTMX(c) {
		c.String(http.StatusOK, strconv.Itoa(post.Score))
		return
	}
	redirectBack(c)
}

// Boost handles POST /importance/:id. A repeated boost is reported, not
// treated as a failure.
func (h *VoteHandler) Boost(c *gin.Context) {
	id := utils.ParseID(c.Param("id"))

	post, err := h.forum.Boosts.Apply(c.Request.Context(), middleware.CurrentViewer(c), id)
	switch {
	case errors.Is(err, services.ErrAlreadyBoosted):
		if isHTMX(c) {
			c.String(http.StatusOK, msg(err))
			return
		}
		flash(c, msg(err))
		redirectBack(c)
		return
	case err != nil:
		h.reject(c, err)
		return
	}

	if isHTMX(c) {
		c.String(http.StatusOK, strconv.Itoa(post.Importance))
		return
	}
	flash(c, "Importance given.")
	redirectBack(c)
}

func (h *VoteHandler) reject(c *gin.Context, err error) {
	if isHTMX(c) {
		c.String(statusFor(err), msg(err))
		return
	}
	fail(c, err)
}
