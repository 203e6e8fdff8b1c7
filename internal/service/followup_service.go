package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lshigami/Kadabra/config"
	"github.com/lshigami/Kadabra/internal/model"
	"github.com/rs/zerolog/log"
)

// ErrFollowupGeneration marks a failed follow-up generation. Unlike
// evaluation there is no safe synthetic substitute, so this is surfaced to
// the state machine.
var ErrFollowupGeneration = errors.New("follow-up generation failed")

const followupMaxTokens = 1024

const followupPromptTemplate = `
You are a technical interviewer. The candidate has just answered the question
below. Produce ONE related follow-up question that probes the same area more
deeply.

Return ONLY a valid JSON object with NO text before or after it:
{
  "topic": "one of: %s",
  "type": "one of: conceptual | code | design",
  "prompt": "",
  "rubric": ["", ""],
  "clarification_allowed": true,
  "requires_llm": true
}

RULES:
- STRICT JSON ONLY.
- The follow-up must be answerable in a spoken interview setting.
- rubric must list 2-5 short evaluation criteria.
- DO NOT include the answer to either question anywhere.

Original question (topic: %s, type: %s):
"""%s"""

Original rubric:
%s
`

// GeneratedQuestion is the Question-shaped payload returned by the generator.
// It is never inserted into the bank; it lives only on the session.
type GeneratedQuestion struct {
	Topic                model.Topic
	Type                 model.QuestionType
	Prompt               string
	Rubric               []string
	ClarificationAllowed bool
	RequiresLLM          bool
}

type FollowupGenerator interface {
	Generate(ctx context.Context, parent *model.ActiveQuestion) (*GeneratedQuestion, error)
}

type followupGenerator struct {
	gemini GeminiClient
	cfg    *config.Config
}

func NewFollowupGenerator(gemini GeminiClient, cfg *config.Config) FollowupGenerator {
	return &followupGenerator{gemini: gemini, cfg: cfg}
}

func topicList() string {
	topics := []model.Topic{
		model.TopicOOP, model.TopicDSA, model.TopicOperatingSystems, model.TopicDatabases,
		model.TopicNetworking, model.TopicSystemDesign, model.TopicConcurrency, model.TopicWeb,
	}
	parts := make([]string, len(topics))
	for i, t := range topics {
		parts[i] = string(t)
	}
	return strings.Join(parts, " | ")
}

func (s *followupGenerator) Generate(ctx context.Context, parent *model.ActiveQuestion) (*GeneratedQuestion, error) {
	rubricJSON, _ := json.Marshal(parent.Rubric)
	prompt := fmt.Sprintf(followupPromptTemplate,
		topicList(), parent.Topic, parent.Type, parent.Prompt, string(rubricJSON))

	raw, err := s.gemini.Complete(ctx, prompt, CompletionOptions{Model: s.cfg.GeminiModel, MaxTokens: followupMaxTokens})
	if err != nil {
		log.Error().Err(err).Str("qID", parent.QID).Msg("Follow-up generation oracle call failed")
		return nil, fmt.Errorf("%w: %v", ErrFollowupGeneration, err)
	}

	var parsed map[string]interface{}
	if err := decodeLLMJSON(raw, &parsed); err != nil {
		log.Error().Err(err).Str("qID", parent.QID).Msg("Follow-up generation output unparsable")
		return nil, fmt.Errorf("%w: %v", ErrFollowupGeneration, err)
	}

	promptText, _ := parsed["prompt"].(string)
	topicStr, _ := parsed["topic"].(string)
	typeStr, _ := parsed["type"].(string)
	if strings.TrimSpace(promptText) == "" || topicStr == "" || typeStr == "" {
		return nil, fmt.Errorf("%w: incomplete payload (topic, type and prompt are required)", ErrFollowupGeneration)
	}

	gq := &GeneratedQuestion{
		Prompt:               strings.TrimSpace(promptText),
		Rubric:               strSliceField(parsed["rubric"]),
		ClarificationAllowed: true,
		RequiresLLM:          true,
	}
	if v, ok := parsed["clarification_allowed"].(bool); ok {
		gq.ClarificationAllowed = v
	}
	if v, ok := parsed["requires_llm"].(bool); ok {
		gq.RequiresLLM = v
	}

	// Out-of-enumeration topic/type fall back to the parent question's,
	// rather than rejecting the whole generation.
	gq.Topic = model.Topic(topicStr)
	if !gq.Topic.Valid() {
		log.Warn().Str("topic", topicStr).Msg("Generated follow-up topic outside enumeration, keeping parent topic")
		gq.Topic = parent.Topic
	}
	gq.Type = model.QuestionType(typeStr)
	if !gq.Type.Valid() {
		log.Warn().Str("type", typeStr).Msg("Generated follow-up type outside enumeration, keeping parent type")
		gq.Type = parent.Type
	}

	if len(gq.Rubric) == 0 {
		gq.Rubric = parent.Rubric
	}

	return gq, nil
}
