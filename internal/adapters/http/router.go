package http

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Mingle/internal/adapters/chat"
	"github.com/dkeye/Mingle/internal/auth"
	"github.com/dkeye/Mingle/internal/config"
)

func SetupRouter(ctx context.Context, cfg *config.Config, ctl *chat.Controller, api *API, validator auth.Validator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "chat-relay"})
	})

	log.Info().Str("module", "adapters.http").Msg("router setup")

	apiGroup := r.Group("/api")

	apiGroup.GET("/ws/chat", func(c *gin.Context) {
		ctl.HandleChat(ctx, c)
	})

	rooms := apiGroup.Group("/rooms/:room", auth.RequireAuth(validator))
	rooms.GET("/messages", api.getMessages)
	rooms.POST("/messages", api.postMessage)
	rooms.GET("/members", api.getMembers)

	return r
}
