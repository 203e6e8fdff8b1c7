package service

import (
	"strings"
	"testing"

	"github.com/lshigami/Kadabra/internal/dto"
	"github.com/lshigami/Kadabra/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addRequest() dto.AddQuestionRequest {
	return dto.AddQuestionRequest{
		Topic:      "databases",
		Difficulty: 3,
		Type:       "conceptual",
		Prompt:     "Explain the difference between a clustered and a non-clustered index.",
		Rubric:     []string{"physical ordering", "lookup cost"},
	}
}

func TestAddQuestion_GeneratesIDAndDefaults(t *testing.T) {
	repo := &memQuestionRepo{}
	svc := NewQuestionService(repo)

	resp, err := svc.AddQuestion(addRequest())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.ID, "q_"))
	assert.True(t, resp.ClarificationAllowed)
	assert.True(t, resp.RequiresLLM)
	assert.Equal(t, []string{"physical ordering", "lookup cost"}, resp.Rubric)

	require.Len(t, repo.bank, 1)
	assert.Equal(t, resp.ID, repo.bank[0].ID)
}

func TestAddQuestion_KeepsCallerID(t *testing.T) {
	repo := &memQuestionRepo{}
	svc := NewQuestionService(repo)

	req := addRequest()
	req.ID = "q_custom"
	f := false
	req.ClarificationAllowed = &f

	resp, err := svc.AddQuestion(req)
	require.NoError(t, err)
	assert.Equal(t, "q_custom", resp.ID)
	assert.False(t, resp.ClarificationAllowed)
	assert.True(t, resp.RequiresLLM)
}

func TestAddQuestion_RejectsInvalidEnums(t *testing.T) {
	svc := NewQuestionService(&memQuestionRepo{})

	req := addRequest()
	req.Topic = "astrology"
	_, err := svc.AddQuestion(req)
	assert.ErrorContains(t, err, "invalid topic")

	req = addRequest()
	req.Type = "quiz"
	_, err = svc.AddQuestion(req)
	assert.ErrorContains(t, err, "invalid question type")
}

func TestGetAllQuestions_FiltersByTopic(t *testing.T) {
	repo := &memQuestionRepo{}
	svc := NewQuestionService(repo)

	dbReq := addRequest()
	_, err := svc.AddQuestion(dbReq)
	require.NoError(t, err)

	netReq := addRequest()
	netReq.Topic = "networking"
	netReq.Prompt = "Walk through a TCP three-way handshake."
	_, err = svc.AddQuestion(netReq)
	require.NoError(t, err)

	all, err := svc.GetAllQuestions(nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	topic := model.TopicNetworking
	filtered, err := svc.GetAllQuestions(&topic)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "networking", filtered[0].Topic)
}
