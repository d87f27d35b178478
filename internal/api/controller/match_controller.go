package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"quoridor-server/internal/api/response"
	"quoridor-server/internal/api/service"
)

// MatchController handles the operational HTTP endpoints.
type MatchController struct {
	matchService service.MatchService
}

// NewMatchController creates a new MatchController.
func NewMatchController(matchService service.MatchService) *MatchController {
	return &MatchController{
		matchService: matchService,
	}
}

// Healthz reports server liveness.
func (mc *MatchController) Healthz(c *gin.Context) {
	response.SuccessResponse(c, gin.H{"status": "ok"})
}

// Lobbies lists every active lobby with its roster and state.
func (mc *MatchController) Lobbies(c *gin.Context) {
	lobbies := mc.matchService.ListLobbies(c.Request.Context())
	response.SuccessResponse(c, gin.H{"lobbies": lobbies})
}

// Results lists recently finished matches from the archive.
func (mc *MatchController) Results(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.ErrorResponse(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	results, err := mc.matchService.ListResults(c.Request.Context(), limit)
	if err != nil {
		response.ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	response.SuccessResponse(c, gin.H{"results": results})
}
