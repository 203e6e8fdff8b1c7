package service

import (
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/lshigami/Kadabra/internal/dto"
	"github.com/lshigami/Kadabra/internal/model"
	"github.com/lshigami/Kadabra/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

type QuestionService interface {
	AddQuestion(req dto.AddQuestionRequest) (*dto.QuestionResponse, error)
	GetAllQuestions(topic *model.Topic) ([]dto.QuestionResponse, error)
}

type questionService struct {
	repo repository.QuestionRepository
}

func NewQuestionService(repo repository.QuestionRepository) QuestionService {
	return &questionService{repo: repo}
}

func (s *questionService) AddQuestion(req dto.AddQuestionRequest) (*dto.QuestionResponse, error) {
	topic := model.Topic(req.Topic)
	qType := model.QuestionType(req.Type)
	// Binding tags already enforce these; re-checked here so the service is
	// safe to call from outside the HTTP layer.
	if !topic.Valid() {
		return nil, fmt.Errorf("invalid topic: %s", req.Topic)
	}
	if !qType.Valid() {
		return nil, fmt.Errorf("invalid question type: %s", req.Type)
	}

	question := model.Question{
		ID:                   req.ID,
		Topic:                topic,
		Difficulty:           req.Difficulty,
		Type:                 qType,
		Prompt:               req.Prompt,
		Rubric:               datatypes.JSONSlice[string](req.Rubric),
		ClarificationAllowed: true,
		RequiresLLM:          true,
	}
	if question.ID == "" {
		question.ID = model.NewID("q", 8)
	}
	if req.ClarificationAllowed != nil {
		question.ClarificationAllowed = *req.ClarificationAllowed
	}
	if req.RequiresLLM != nil {
		question.RequiresLLM = *req.RequiresLLM
	}

	if err := s.repo.Create(&question); err != nil {
		log.Error().Err(err).Str("questionID", question.ID).Msg("Failed to create question")
		return nil, err
	}

	var resp dto.QuestionResponse
	copier.Copy(&resp, &question)
	return &resp, nil
}

func (s *questionService) GetAllQuestions(topic *model.Topic) ([]dto.QuestionResponse, error) {
	questions, err := s.repo.FindAll(topic)
	if err != nil {
		return nil, err
	}
	var resp []dto.QuestionResponse
	copier.Copy(&resp, &questions)
	return resp, nil
}
