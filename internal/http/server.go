package http

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"linkstate/linkstate/internal/config"
	"linkstate/linkstate/internal/handler"
	"linkstate/linkstate/internal/repo"
	"linkstate/linkstate/internal/service"
	"linkstate/linkstate/internal/web"
)

func NewServer(cfg config.Config, rp repo.LinkRepo, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), cors.New(corsConfig(cfg)))

	sv := service.NewLinks(rp,
		service.WithTokenLength(cfg.TokenLength),
		service.WithMaxAttempts(cfg.TokenMaxAttempts),
		service.WithLogger(log),
	)
	h := handler.New(cfg, sv)

	r.GET("/", web.Index)
	r.GET("/healthz", h.Health)

	api := r.Group("/api/state")
	api.POST("/create", h.Create)
	api.GET("/:token", h.Redirect)
	api.GET("/info/:token", h.Info)
	api.PUT("/update/:token", h.Update)
	api.DELETE("/delete/:token", h.Delete)

	return r
}

func corsConfig(cfg config.Config) cors.Config {
	c := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}

	if len(cfg.CORSOrigins) == 0 || slices.Contains(cfg.CORSOrigins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.CORSOrigins
	}

	return c
}
