package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/Kadabra/internal/dto"
	"github.com/lshigami/Kadabra/internal/service"
	"github.com/rs/zerolog/log"
)

type InteractionController struct {
	interactionService service.InteractionService
}

func NewInteractionController(interactionService service.InteractionService) *InteractionController {
	return &InteractionController{interactionService: interactionService}
}

// Interact godoc
// @Summary Send a message to the interview assistant
// @Description Classifies the message intent and advances the conversation: asks questions, evaluates answers, clarifies, or returns the final report. Downstream failures reply apologetically with HTTP 200 so the conversation stays unbroken.
// @Tags Interaction
// @Accept json
// @Produce json
// @Param body body dto.InteractRequest true "User message"
// @Success 200 {object} dto.InteractResponse
// @Failure 400 {object} dto.ErrorResponse "Missing or empty message"
// @Router /interaction/interact [post]
func (c *InteractionController) Interact(ctx *gin.Context) {
	var req dto.InteractRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request: expected JSON body with a message field.", Details: []string{err.Error()}})
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Message cannot be empty."})
		return
	}

	resp, err := c.interactionService.HandleMessage(ctx.Request.Context(), message)
	if err != nil {
		// Even unexpected failures keep the conversational UX unbroken.
		log.Error().Err(err).Msg("Interact: unhandled service error")
		ctx.JSON(http.StatusOK, dto.InteractResponse{Reply: "Sorry, something went wrong while processing your request."})
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
