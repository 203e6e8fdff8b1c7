package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/Kadabra/internal/dto"
	"github.com/lshigami/Kadabra/internal/service"
	"github.com/rs/zerolog/log"
)

const welcomeMessage = "Welcome! This app provides interview practice on computer science fundamentals. Are you ready to begin?"

type SessionController struct {
	sessionService service.SessionService
}

func NewSessionController(sessionService service.SessionService) *SessionController {
	return &SessionController{sessionService: sessionService}
}

// StartSession godoc
// @Summary Start a fresh interview session
// @Description Deletes any previous sessions and creates a new one, so exactly one active session exists. Calling it twice in a row never stacks sessions.
// @Tags Session
// @Produce json
// @Param target_role query string false "Candidate target role"
// @Param experience_level query string false "Candidate experience level"
// @Success 200 {object} dto.StartSessionResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /session/start [get]
func (c *SessionController) StartSession(ctx *gin.Context) {
	session, err := c.sessionService.StartFresh(ctx.Query("target_role"), ctx.Query("experience_level"))
	if err != nil {
		log.Error().Err(err).Msg("StartSession: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to start session", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, dto.StartSessionResponse{
		SessionID: session.ID,
		Message:   welcomeMessage,
	})
}

// DeleteAllSessions godoc
// @Summary Delete all sessions
// @Description Wipes the sessions collection immediately. Single-user tool; not protected.
// @Tags Session
// @Produce json
// @Success 200 {object} dto.DeleteSessionsResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /session/delete [post]
func (c *SessionController) DeleteAllSessions(ctx *gin.Context) {
	deleted, err := c.sessionService.DeleteAll()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to delete sessions", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, dto.DeleteSessionsResponse{
		OK:           true,
		DeletedCount: deleted,
		Message:      "All sessions deleted.",
	})
}
