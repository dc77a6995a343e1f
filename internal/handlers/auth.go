package handlers

import (
	"log"
	"net/http"
	"nuncio/internal/middleware"
	"nuncio/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const captchaKey = "captcha_answer"

type AuthHandler struct {
	users   *services.UserService
	captcha *services.CaptchaService
}

func NewAuthHandler(users *services.UserService, captcha *services.CaptchaService) *AuthHandler {
	return &AuthHandler{users: users, captcha: captcha}
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "auth/login.html", gin.H{"Title": "Login", "Next": c.Query("next")})
}

func (h *AuthHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	user, err := h.users.Authenticate(c.Request.Context(), username, c.PostForm("password"))
	if err != nil {
		Render(c, statusFor(err), "auth/login.html", gin.H{
			"Title":    "Login",
			"Error":    msg(err),
			"Username": username,
			"Next":     c.PostForm("next"),
		})
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, user.ID)
	if err := session.Save(); err != nil {
		log.Printf("session: login user %d: %v", user.ID, err)
	}
	c.Redirect(http.StatusFound, nextTarget(c))
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	h.renderRegister(c, http.StatusOK, gin.H{})
}

// renderRegister shows the form with a fresh captcha question.
func (h *AuthHandler) renderRegister(c *gin.Context, code int, data gin.H) {
	question, answer := h.captcha.GenerateMathProblem()
	session := sessions.Default(c)
	session.Set(captchaKey, answer)
	if err := session.Save(); err != nil {
		log.Printf("session: store captcha: %v", err)
	}
	data["Title"] = "Register"
	data["Captcha"] = question
	Render(c, code, "auth/register.html", data)
}

func (h *AuthHandler) Register(c *gin.Context) {
	in := services.RegisterInput{
		Username: c.PostForm("username"),
		Email:    c.PostForm("email"),
		Password: c.PostForm("password"),
	}
	form := gin.H{"Username": in.Username, "Email": in.Email}

	session := sessions.Default(c)
	expected, ok := session.Get(captchaKey).(int)
	session.Delete(captchaKey)
	if !ok || !services.CheckAnswer(expected, c.PostForm("captcha")) {
		form["Error"] = "Wrong answer to the captcha question."
		h.renderRegister(c, http.StatusBadRequest, form)
		return
	}

	user, err := h.users.Register(c.Request.Context(), in)
	if err != nil {
		form["Error"] = msg(err)
		h.renderRegister(c, statusFor(err), form)
		return
	}

	session.Set(middleware.SessionUserKey, user.ID)
	session.AddFlash("Welcome, " + user.Username + "!")
	if err := session.Save(); err != nil {
		log.Printf("session: register user %d: %v", user.ID, err)
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		log.Printf("session: logout: %v", err)
	}
	c.Redirect(http.StatusFound, "/")
}
