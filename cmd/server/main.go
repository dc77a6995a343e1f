package main

import (
	"log"
	"nuncio/internal/config"
	"nuncio/internal/db"
	"nuncio/internal/handlers"
	"nuncio/internal/router"
	"nuncio/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Database
	gdb := db.Init(cfg.DBDriver, cfg.DatabaseURL)
	forum := services.NewForum(gdb, cfg.Options())

	renderer, err := handlers.LoadTemplates(cfg.TemplatesDir)
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	r := router.New(router.Deps{
		Forum:         forum,
		Captcha:       services.NewCaptchaService(),
		Renderer:      renderer,
		SessionSecret: cfg.SessionSecret,
		SiteURL:       cfg.SiteURL,
		StaticDir:     cfg.StaticDir,
	})

	log.Printf("Nuncio server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
