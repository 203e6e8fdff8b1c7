package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/Kadabra/internal/dto"
	"github.com/lshigami/Kadabra/internal/model"
	"github.com/lshigami/Kadabra/internal/service"
	"github.com/rs/zerolog/log"
)

type QuestionController struct {
	questionService service.QuestionService
}

func NewQuestionController(questionService service.QuestionService) *QuestionController {
	return &QuestionController{questionService: questionService}
}

// AddQuestion godoc
// @Summary Add a question to the bank
// @Description Validates the payload against the question schema (closed topic set, type enum, difficulty 1-5, non-empty rubric) and stores it.
// @Tags Questions
// @Accept json
// @Produce json
// @Param body body dto.AddQuestionRequest true "Question data"
// @Success 201 {object} dto.AddQuestionResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid payload"
// @Failure 500 {object} dto.ErrorResponse
// @Router /questions/add [post]
func (c *QuestionController) AddQuestion(ctx *gin.Context) {
	var req dto.AddQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("AddQuestion: failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid question payload", Details: []string{err.Error()}})
		return
	}

	question, err := c.questionService.AddQuestion(req)
	if err != nil {
		log.Error().Err(err).Msg("AddQuestion: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to add question", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusCreated, dto.AddQuestionResponse{
		Message:  "Question added successfully",
		Question: *question,
	})
}

// GetAllQuestions godoc
// @Summary List questions in the bank
// @Description Lists questions, optionally filtered by topic.
// @Tags Questions
// @Produce json
// @Param topic query string false "Filter by topic tag"
// @Success 200 {array} dto.QuestionResponse
// @Failure 400 {object} dto.ErrorResponse "Unknown topic"
// @Failure 500 {object} dto.ErrorResponse
// @Router /questions [get]
func (c *QuestionController) GetAllQuestions(ctx *gin.Context) {
	var topic *model.Topic
	if raw := ctx.Query("topic"); raw != "" {
		t := model.Topic(raw)
		if !t.Valid() {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Unknown topic: " + raw})
			return
		}
		topic = &t
	}

	questions, err := c.questionService.GetAllQuestions(topic)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to list questions", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, questions)
}
