package handlers

import (
	"net/http"
	"nuncio/internal/services"
	"nuncio/internal/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	forum *services.Forum
}

func NewUserHandler(forum *services.Forum) *UserHandler {
	return &UserHandler{forum: forum}
}

// Profile shows /user/:username with the user's posts, newest first.
func (h *UserHandler) Profile(c *gin.Context) {
	user, page, err := h.forum.Posts.ListByUser(c.Request.Context(), c.Param("username"), utils.PageParam(c.Query("page")))
	if err != nil {
		fail(c, err)
		return
	}

	Render(c, http.StatusOK, "user/profile.html", gin.H{
		"Title":    user.Username,
		"Profile":  user,
		"Page":     page,
		"Posts":    page.Posts,
		"Votes":    voteStates(c, h.forum, page.Posts),
		"BasePath": c.Request.URL.Path,
	})
}
