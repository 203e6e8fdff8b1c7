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

// Intent is the classified purpose of a user message.
type Intent string

const (
	IntentClarifyQuestion Intent = "clarify_question"
	IntentRequestSolution Intent = "request_solution"
	IntentAskIfCorrect    Intent = "ask_if_correct"
	IntentAnswer          Intent = "answer"
	IntentPositiveReady   Intent = "positive_ready"
	IntentNegativeReady   Intent = "negative_ready"
	IntentSkipQuestion    Intent = "skip_question"
	IntentOffTopic        Intent = "off_topic"
	IntentOther           Intent = "other"
)

var allowedIntents = map[Intent]bool{
	IntentClarifyQuestion: true,
	IntentRequestSolution: true,
	IntentAskIfCorrect:    true,
	IntentAnswer:          true,
	IntentPositiveReady:   true,
	IntentNegativeReady:   true,
	IntentSkipQuestion:    true,
	IntentOffTopic:        true,
	IntentOther:           true,
}

const intentMaxTokens = 512

// readyConfidenceThreshold gates positive_ready on intro turns so a
// low-confidence signal cannot start the interview.
const readyConfidenceThreshold = 0.5

const intentPromptTemplate = `
You are an intent classifier for a technical interview assistant.

Return ONLY a valid JSON object with NO text before or after it.

Schema:
{
  "intent": "one of: clarify_question | request_solution | ask_if_correct |
             answer | positive_ready | negative_ready |
             skip_question | off_topic | other",
  "intent_confidence": 0.0,
  "clarify_target": "",
  "answer_text": "",
  "notes": ""
}

RULES:
- STRICT JSON ONLY - no comments, no explanations.
- DO NOT provide answers or solutions.
- intent MUST be exactly one of the allowed strings.

Context:
turn_type: %s
question: "%s"
rubric: %s
session_summary: "%s"

User message:
"%s"
`

// IntentClassifier maps a free-text user message onto one intent symbol.
// It never fails: oracle errors, malformed output and out-of-enumeration
// results all degrade to off_topic (intro turns) or other.
type IntentClassifier interface {
	Classify(ctx context.Context, userMessage, question string, rubric []string, summary string, turnType model.TurnKind) Intent
}

type intentClassifier struct {
	gemini GeminiClient
	cfg    *config.Config
}

func NewIntentClassifier(gemini GeminiClient, cfg *config.Config) IntentClassifier {
	return &intentClassifier{gemini: gemini, cfg: cfg}
}

func buildIntentPrompt(userMessage, question string, rubric []string, summary string, turnType model.TurnKind) string {
	flatten := strings.NewReplacer("\n", " ", `"`, `\"`)
	rubricJSON, _ := json.Marshal(rubric)
	if rubric == nil {
		rubricJSON = []byte("[]")
	}
	return fmt.Sprintf(intentPromptTemplate,
		turnType,
		flatten.Replace(question),
		string(rubricJSON),
		flatten.Replace(summary),
		flatten.Replace(userMessage),
	)
}

func (s *intentClassifier) Classify(ctx context.Context, userMessage, question string, rubric []string, summary string, turnType model.TurnKind) Intent {
	fallback := IntentOther
	if turnType == model.TurnKindIntro {
		fallback = IntentOffTopic
	}

	prompt := buildIntentPrompt(userMessage, question, rubric, summary, turnType)
	opts := CompletionOptions{Model: s.cfg.GeminiModel, MaxTokens: intentMaxTokens}

	raw, err := s.gemini.Complete(ctx, prompt, opts)
	if err != nil {
		log.Warn().Err(err).Msg("Intent classification oracle call failed")
		return fallback
	}

	var parsed map[string]interface{}
	if err := decodeLLMJSON(raw, &parsed); err != nil {
		// One retry with an amended prompt, then give up.
		retryPrompt := prompt + "\n\nThe previous output was invalid. Return ONLY valid JSON matching the schema."
		raw2, err2 := s.gemini.Complete(ctx, retryPrompt, opts)
		if err2 != nil {
			log.Warn().Err(err2).Msg("Intent classification retry call failed")
			return fallback
		}
		if err := decodeLLMJSON(raw2, &parsed); err != nil {
			log.Warn().Err(err).Msg("Intent classification retry output still unparsable")
			return fallback
		}
	}

	intentStr, _ := parsed["intent"].(string)
	intent := Intent(intentStr)
	if !allowedIntents[intent] {
		log.Warn().Str("intent", intentStr).Msg("Classifier returned out-of-enumeration intent")
		return fallback
	}

	if turnType == model.TurnKindIntro {
		if intent == IntentPositiveReady {
			if conf, ok := numField(parsed["intent_confidence"]); ok && conf >= readyConfidenceThreshold {
				return IntentPositiveReady
			}
		}
		return IntentOffTopic
	}

	return intent
}
