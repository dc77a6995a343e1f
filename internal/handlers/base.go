package handlers

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"nuncio/internal/middleware"
	"nuncio/internal/services"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Render helper to inject common variables like the current user and any
// pending flash messages.
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	if user := middleware.CurrentUser(c); user != nil {
		obj["CurrentUser"] = user
	}

	session := sessions.Default(c)
	if flashes := session.Flashes(); len(flashes) > 0 {
		obj["Flashes"] = flashes
		if err := session.Save(); err != nil {
			log.Printf("session: save after reading flashes: %v", err)
		}
	}

	obj["CurrentPath"] = c.Request.URL.Path
	c.HTML(code, name, obj)
}

// HTMX Redirect helper
func HtmxRedirect(c *gin.Context, path string) {
	c.Header("HX-Redirect", path)
	c.Status(http.StatusOK)
}

func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Error": message, "Title": http.StatusText(code)})
}

// fail renders the error page for a service error.
func fail(c *gin.Context, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	RenderError(c, code, msg(err))
}

func isHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}

func flash(c *gin.Context, message string) {
	session := sessions.Default(c)
	session.AddFlash(message)
	if err := session.Save(); err != nil {
		log.Printf("session: save flash: %v", err)
	}
}

// statusFor maps service errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case err == nil, errors.Is(err, services.ErrAlreadyBoosted):
		return http.StatusOK
	case services.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthenticated), errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// msg turns an error into something fit to show a user.
func msg(err error) string {
	var ve *services.ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, services.ErrAlreadyBoosted):
		return "You already gave importance to this post."
	case errors.Is(err, services.ErrUnauthenticated):
		return "Please log in first."
	case errors.Is(err, services.ErrInvalidCredentials):
		return "Invalid username or password."
	case errors.Is(err, services.ErrForbidden):
		return "You are not allowed to do that."
	case errors.Is(err, services.ErrNotFound):
		return "Nothing here. It may have been deleted."
	case errors.Is(err, services.ErrConflict):
		return "That username or email is already taken."
	default:
		return "Something went wrong, please try again."
	}
}

// redirectBack sends the client to ?next=, then the Referer, then "/".
func redirectBack(c *gin.Context) {
	c.Redirect(http.StatusFound, backTarget(c))
}

// nextTarget is the explicit ?next= or form next, or "/". The Referer is
// ignored.
func nextTarget(c *gin.Context) string {
	for _, candidate := range []string{c.PostForm("next"), c.Query("next")} {
		if path := localPath(candidate, c.Request.Host); path != "" {
			return path
		}
	}
	return "/"
}

func backTarget(c *gin.Context) string {
	for _, candidate := range []string{c.Query("next"), c.PostForm("next"), c.GetHeader("Referer")} {
		if path := localPath(candidate, c.Request.Host); path != "" {
			return path
		}
	}
	return "/"
}

// localPath returns raw as a path on this site, or "" if it points elsewhere.
func localPath(raw, host string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Opaque != "" || u.User != nil {
		return ""
	}
	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	if u.Host != "" && u.Host != host {
		return ""
	}
	if !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") || strings.Contains(u.Path, `\`) {
		return ""
	}

	path := u.Path
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return path
}
