package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lshigami/Kadabra/config"
	"github.com/lshigami/Kadabra/internal/model"
	"github.com/rs/zerolog/log"
)

const evalMaxTokens = 1024

// evalUnavailableFeedback is the fixed feedback text recorded when the oracle
// cannot produce a verdict.
const evalUnavailableFeedback = "Automatic evaluation was unavailable for this answer. A provisional grade has been recorded."

const evalPromptTemplate = `
You are a strict but fair technical interview evaluator.

Judge the candidate's answer against the question and EACH rubric item below.

Return ONLY a valid JSON object with NO text before or after it, with exactly
these three fields:
{
  "feedback": "",
  "classification": "one of: correct | somewhat_correct | wrong",
  "confidence": 0.0
}

RULES:
- STRICT JSON ONLY - no comments, no explanations outside the JSON.
- DO NOT reveal the correct answer or any solution content in the feedback.
- feedback should note which rubric items were covered and which were missed.
- confidence is a number between 0.0 and 1.0.

Question:
"""%s"""

Rubric:
%s

Candidate answer:
"""%s"""
`

// AnswerEvaluator turns (question, rubric, answer) into a structured judgment.
// Evaluation failures never block the conversation: any oracle or parse
// failure yields a conservative somewhat_correct verdict at zero confidence.
type AnswerEvaluator interface {
	Evaluate(ctx context.Context, question string, rubric []string, answer string) model.Evaluation
}

type answerEvaluator struct {
	gemini GeminiClient
	cfg    *config.Config
}

func NewAnswerEvaluator(gemini GeminiClient, cfg *config.Config) AnswerEvaluator {
	return &answerEvaluator{gemini: gemini, cfg: cfg}
}

func conservativeFallback() model.Evaluation {
	return model.Evaluation{
		Feedback:       evalUnavailableFeedback,
		Classification: model.ClassificationSomewhatCorrect,
		Confidence:     0.0,
	}
}

func (s *answerEvaluator) Evaluate(ctx context.Context, question string, rubric []string, answer string) model.Evaluation {
	rubricJSON, _ := json.Marshal(rubric)
	prompt := fmt.Sprintf(evalPromptTemplate, question, string(rubricJSON), answer)

	raw, err := s.gemini.Complete(ctx, prompt, CompletionOptions{Model: s.cfg.GeminiModel, MaxTokens: evalMaxTokens})
	if err != nil {
		log.Warn().Err(err).Msg("Answer evaluation oracle call failed, using conservative fallback")
		return conservativeFallback()
	}

	// No retry here: a usable conservative verdict always exists.
	var parsed map[string]interface{}
	if err := decodeLLMJSON(raw, &parsed); err != nil {
		log.Warn().Err(err).Msg("Answer evaluation output unparsable, using conservative fallback")
		return conservativeFallback()
	}

	ev := model.Evaluation{}

	if fb, ok := parsed["feedback"].(string); ok && strings.TrimSpace(fb) != "" {
		ev.Feedback = strings.TrimSpace(fb)
	} else {
		ev.Feedback = evalUnavailableFeedback
	}

	cls := model.Classification(strings.TrimSpace(fmt.Sprint(parsed["classification"])))
	if !cls.Valid() {
		cls = model.ClassificationSomewhatCorrect
	}
	ev.Classification = cls

	conf, ok := numField(parsed["confidence"])
	if !ok {
		conf = 0.0
	}
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}
	ev.Confidence = conf

	return ev
}
