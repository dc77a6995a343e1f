package router

import (
	"net/http"
	"nuncio/internal/handlers"
	"nuncio/internal/middleware"
	"nuncio/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const sessionName = "nuncio_session"

// Deps is everything the route table needs.
type Deps struct {
	Forum         *services.Forum
	Captcha       *services.CaptchaService
	Renderer      render.HTMLRender
	SessionSecret string
	SiteURL       string
	StaticDir     string // optional
}

// New builds the engine: sessions, the session user, then the routes.
func New(deps Deps) *gin.Engine {
	r := gin.Default()

	store := cookie.NewStore([]byte(deps.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(middleware.LoadUser(deps.Forum.Users))

	r.HTMLRender = deps.Renderer
	if deps.StaticDir != "" {
		r.Static("/static", deps.StaticDir)
	}

	RegisterRoutes(r, deps)
	return r
}

func RegisterRoutes(r *gin.Engine, deps Deps) {
	captcha := deps.Captcha
	if captcha == nil {
		captcha = services.NewCaptchaService()
	}

	authHandler := handlers.NewAuthHandler(deps.Forum.Users, captcha)
	storyHandler := handlers.NewStoryHandler(deps.Forum)
	voteHandler := handlers.NewVoteHandler(deps.Forum)
	userHandler := handlers.NewUserHandler(deps.Forum)
	seoHandler := handlers.NewSEOHandler(deps.Forum, deps.SiteURL)

	// Public Routes
	r.GET("/", storyHandler.ListHot)
	r.GET("/index", storyHandler.ListHot)
	r.GET("/new", storyHandler.ListNew)
	r.GET("/item/:id", storyHandler.Detail)
	r.GET("/user/:username", userHandler.Profile)
	r.GET("/topic/:name", storyHandler.ListByTopic)
	r.GET("/event/:name", storyHandler.ListByEvent)
	r.GET("/search", storyHandler.Search)

	r.GET("/about", handlers.Page("pages/about.html", "About"))
	r.GET("/faq", handlers.Page("pages/faq.html", "FAQ"))
	r.GET("/rules", handlers.Page("pages/rules.html", "Rules"))
	r.GET("/contact", handlers.Page("pages/contact.html", "Contact"))
	r.GET("/contributing", handlers.Page("pages/contributing.html", "Contributing"))
	r.GET("/feature-request", storyHandler.FeatureRequests)

	r.GET("/robots.txt", seoHandler.RobotsTxt)
	r.GET("/sitemap.xml", seoHandler.SitemapXML)
	r.GET("/feed.xml", seoHandler.RSSFeed)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := r.Group("/auth")
	{
		auth.GET("/login", authHandler.ShowLogin)
		auth.POST("/login", authHandler.Login)
		auth.GET("/register", authHandler.ShowRegister)
		auth.POST("/register", authHandler.Register)
		auth.GET("/logout", authHandler.Logout)
	}

	// Protected Routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/submit", storyHandler.ShowSubmit)
		authorized.POST("/submit", storyHandler.Submit)
		authorized.POST("/item/:id/comment", storyHandler.AddComment)
		authorized.POST("/vote/:id", voteHandler.Vote)
		authorized.POST("/importance/:id", voteHandler.Boost)
		authorized.POST("/delete_post/:id", storyHandler.DeletePost)
		authorized.POST("/delete_comment/:id", storyHandler.DeleteComment)
	}

	r.NoRoute(func(c *gin.Context) {
		handlers.RenderError(c, http.StatusNotFound, "Nothing here.")
	})
}
