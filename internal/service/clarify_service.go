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

const clarifyMaxTokens = 512

const (
	replyNoSessionToClarify  = "There is no active interview session. Please start the interview first."
	replyNoQuestionToClarify = "No question is currently active. Say 'I'm ready' to start the interview and receive a question."
	replyClarifyUnavailable  = "Sorry, I couldn't generate a clarification right now. Please try again in a moment."
)

const clarifyPromptTemplate = `
You are a careful technical interview assistant whose job is to EXPLAIN the *question text* to the candidate,
NOT to provide hints, partial solutions, or full answers. Follow these strict rules exactly:

1) Provide only explanation or rephrasing of the question text, or of the specific piece the user asked about.
   - Explain terminology, intent, requirements, constraints, or what the question is asking.
   - If the user asks about a specific line/phrase, explain the meaning/role of that line/phrase only.
2) NEVER provide hints, solution steps, algorithmic advice, pseudocode, code fragments, or anything that would
   materially help the user solve the problem. Avoid any examples that show how to solve the problem.
3) If the user explicitly requests the answer, a hint, or evaluation of their answer, REFUSE politely:
   - Reply: "I can't provide the solution or hints. I can only clarify the question or explain parts of it."
   - Then offer to rephrase the question, explain terminology, or point to concepts the question touches (without giving solution content).
4) Keep responses concise, factual, and focused on clarifying intent. Use short illustrative analogies only when they do not reveal how to solve the question.
5) If uncertain whether an explanation would reveal the answer, err on the side of withholding that explanatory detail and offer a safer, more general clarification.

Context:
Question:
"""%s"""

Rubric (summary):
%s

User clarification request:
"""%s"""

Produce a single, focused clarification that follows the rules above. If you must refuse (user asked for answer/hint), respond with the polite refusal described in rule #3.
`

// ClarifyService explains the current question without revealing solution
// content. It never returns an error; missing preconditions and oracle
// failures all map to guidance or apology replies.
type ClarifyService interface {
	Clarify(ctx context.Context, userQuery string, session *model.Session) string
}

type clarifyService struct {
	gemini GeminiClient
	cfg    *config.Config
}

func NewClarifyService(gemini GeminiClient, cfg *config.Config) ClarifyService {
	return &clarifyService{gemini: gemini, cfg: cfg}
}

func (s *clarifyService) Clarify(ctx context.Context, userQuery string, session *model.Session) string {
	if session == nil {
		return replyNoSessionToClarify
	}
	cq := session.CurrentQuestion
	if cq == nil {
		return replyNoQuestionToClarify
	}

	rubricJSON, _ := json.Marshal(cq.Rubric)
	prompt := fmt.Sprintf(clarifyPromptTemplate, cq.Prompt, string(rubricJSON), userQuery)

	raw, err := s.gemini.Complete(ctx, prompt, CompletionOptions{Model: s.cfg.GeminiModel, MaxTokens: clarifyMaxTokens})
	if err != nil {
		log.Error().Err(err).Str("qID", cq.QID).Msg("Clarification oracle call failed")
		return replyClarifyUnavailable
	}
	return strings.TrimSpace(raw)
}
