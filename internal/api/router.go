// Package api assembles the gin router serving the operational REST
// endpoints and the websocket game transport.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quoridor-server/internal/api/controller"
)

// NewRouter builds the HTTP surface: health check, lobby and result
// listings, and the websocket endpoint feeding the game server.
func NewRouter(mc *controller.MatchController, ws http.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", mc.Healthz)
	router.GET("/ws", gin.WrapF(ws))

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/lobbies", mc.Lobbies)
		apiGroup.GET("/results", mc.Results)
	}

	return router
}
