package middleware

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"nuncio/internal/models"
	"nuncio/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	CheckUserKey   = "user"
	ViewerKey      = "viewer"
	SessionUserKey = "user_id"
)

// AuthRequired sends guests to the login page.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) != nil {
			c.Next()
			return
		}

		login := "/auth/login"
		if c.Request.Method == http.MethodGet {
			login += "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
		}
		if c.GetHeader("HX-Request") == "true" {
			c.Header("HX-Redirect", login)
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Redirect(http.StatusFound, login)
		c.Abort()
	}
}

// LoadUser retrieves the user from the session and stores the request's
// Viewer in the context. A session pointing at a deleted user is cleared.
func LoadUser(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var viewer services.Viewer = services.Anonymous{}

		session := sessions.Default(c)
		if id, ok := session.Get(SessionUserKey).(uint); ok && id != 0 {
			user, err := users.Get(c.Request.Context(), id)
			switch {
			case err == nil:
				c.Set(CheckUserKey, user)
				viewer = services.Member{User: user}
			case errors.Is(err, services.ErrNotFound):
				session.Delete(SessionUserKey)
				if err := session.Save(); err != nil {
					log.Printf("session: clear stale user %d: %v", id, err)
				}
			default:
				log.Printf("session: load user %d: %v", id, err)
			}
		}

		c.Set(ViewerKey, viewer)
		c.Next()
	}
}

// CurrentViewer returns the identity LoadUser attached to the request.
func CurrentViewer(c *gin.Context) services.Viewer {
	if v, ok := c.Get(ViewerKey); ok {
		if viewer, ok := v.(services.Viewer); ok {
			return viewer
		}
	}
	return services.Anonymous{}
}

func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CheckUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}
