package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lshigami/Kadabra/internal/dto"
	"github.com/lshigami/Kadabra/internal/model"
	"github.com/lshigami/Kadabra/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ErrNoQuestions is returned when the user is ready but the bank is empty.
var ErrNoQuestions = errors.New("no questions available in the question bank")

const (
	replyAskIfCorrect = "I can't evaluate correctness on the spot. Please give your full answer, and I will assess it afterwards."

	replyRequestSolution = "I can't provide the complete answer or solution. However, I can help with clarifying the question or giving hints."

	replyAnswerFirst = "Please answer the current question first. Then say you're ready to move on."

	replyNoActiveQuestion = "No active question to evaluate. Say 'I'm ready' to begin."

	replyNoFollowupYet = "The follow-up question hasn't been asked yet. Say 'I'm ready' and I will give it to you."

	replyMainEvaluated = "Okay, I have evaluated the answer, shall we move on to the follow up question?"

	replyFollowupEvaluated = "Okay, I have evaluated the answer, shall we move on to the next question?"

	replyEmptyBank = "There are no questions in the bank yet. Please add some questions and try again."

	replyFollowupFailed = "Sorry, I couldn't generate a follow-up question right now. Please try again later."

	replyReadinessFailed = "Sorry, failed to handle readiness. Try again later."

	replyEvaluationFailed = "Sorry, I couldn't evaluate the answer right now."
)

// InteractionService is the session state machine. One inbound message is
// classified, dispatched by intent against the derived session state, and the
// mutated session is written back as a whole document. The mutex serializes
// the read-modify-write cycle; with a single active session enforced by the
// session service this is exactly per-session mutual exclusion.
type InteractionService interface {
	HandleMessage(ctx context.Context, message string) (*dto.InteractResponse, error)
}

type interactionService struct {
	mu         sync.Mutex
	sessions   repository.SessionRepository
	questions  repository.QuestionRepository
	sessionSvc SessionService
	classifier IntentClassifier
	evaluator  AnswerEvaluator
	followups  FollowupGenerator
	clarifier  ClarifyService
	reports    ReportCompiler
}

func NewInteractionService(
	sessions repository.SessionRepository,
	questions repository.QuestionRepository,
	sessionSvc SessionService,
	classifier IntentClassifier,
	evaluator AnswerEvaluator,
	followups FollowupGenerator,
	clarifier ClarifyService,
	reports ReportCompiler,
) InteractionService {
	return &interactionService{
		sessions:   sessions,
		questions:  questions,
		sessionSvc: sessionSvc,
		classifier: classifier,
		evaluator:  evaluator,
		followups:  followups,
		clarifier:  clarifier,
		reports:    reports,
	}
}

// inferTurnKind derives the classifier context from the session: no session
// or no active question means the conversation is still at the intro stage.
func inferTurnKind(session *model.Session) model.TurnKind {
	if session == nil || session.CurrentQuestion == nil {
		return model.TurnKindIntro
	}
	switch session.CurrentQuestion.Kind {
	case model.TurnKindMain, model.TurnKindFollowup:
		return session.CurrentQuestion.Kind
	}
	return model.TurnKindIntro
}

// lastTurnForQuestion returns the most recent turn carrying the question id,
// regardless of kind. Answered-ness of the active question is derived from it.
func lastTurnForQuestion(session *model.Session, qID string) *model.Turn {
	for i := len(session.Turns) - 1; i >= 0; i-- {
		if session.Turns[i].QID == qID {
			return &session.Turns[i]
		}
	}
	return nil
}

func (s *interactionService) HandleMessage(ctx context.Context, message string) (*dto.InteractResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.FindMostRecent()
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		session = nil
	}

	turnKind := inferTurnKind(session)
	var questionText, summary string
	var rubric []string
	if session != nil {
		summary = session.Summary
		if cq := session.CurrentQuestion; cq != nil {
			questionText = cq.Prompt
			rubric = cq.Rubric
		}
	}

	intent := s.classifier.Classify(ctx, message, questionText, rubric, summary, turnKind)
	log.Info().Str("intent", string(intent)).Str("turnKind", string(turnKind)).Msg("Classified user message")

	switch intent {
	case IntentAskIfCorrect:
		// Fixed refusal, no oracle call, no mutation.
		return &dto.InteractResponse{Reply: replyAskIfCorrect}, nil
	case IntentRequestSolution:
		return &dto.InteractResponse{Reply: replyRequestSolution}, nil
	case IntentPositiveReady:
		return s.handlePositiveReady(ctx, session), nil
	case IntentClarifyQuestion:
		return &dto.InteractResponse{Reply: s.clarifier.Clarify(ctx, message, session)}, nil
	case IntentAnswer:
		return s.handleAnswer(ctx, message, session), nil
	default:
		return &dto.InteractResponse{Reply: fmt.Sprintf("(placeholder) Detected intent: %s", intent)}, nil
	}
}

// handlePositiveReady walks the readiness branches of the transition table.
// All failures degrade to apologetic replies; the conversation never errors.
func (s *interactionService) handlePositiveReady(ctx context.Context, session *model.Session) *dto.InteractResponse {
	if session == nil {
		var err error
		session, err = s.sessionSvc.EnsureSession()
		if err != nil {
			log.Error().Err(err).Msg("Failed to ensure session on positive_ready")
			return &dto.InteractResponse{Reply: replyReadinessFailed}
		}
	}

	cq := session.CurrentQuestion
	if cq == nil {
		return s.startNextQuestion(session)
	}

	last := lastTurnForQuestion(session, cq.QID)

	switch cq.Kind {
	case model.TurnKindMain:
		if !last.Answered() {
			// Assigned but unanswered: no mutation, just guidance.
			return &dto.InteractResponse{Reply: replyAnswerFirst}
		}
		return s.askFollowup(ctx, session)

	case model.TurnKindFollowup:
		if last != nil && last.Kind == model.TurnKindFollowup {
			if last.Answered() {
				return s.startNextQuestion(session)
			}
			return &dto.InteractResponse{Reply: replyAnswerFirst}
		}
		// The slot flipped to followup right after the main evaluation but
		// the follow-up itself has not been generated yet.
		if last.Answered() {
			return s.askFollowup(ctx, session)
		}
		return &dto.InteractResponse{Reply: replyAnswerFirst}
	}

	log.Warn().Str("kind", string(cq.Kind)).Msg("Active question has unexpected turn kind")
	return &dto.InteractResponse{Reply: replyReadinessFailed}
}

// startNextQuestion samples a main question uniformly at random, assigns it
// and appends its pending turn.
func (s *interactionService) startNextQuestion(session *model.Session) *dto.InteractResponse {
	question, err := s.questions.SampleRandom()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error().Msg("No questions found in question bank")
			return &dto.InteractResponse{Reply: replyEmptyBank}
		}
		log.Error().Err(err).Msg("Failed to sample question")
		return &dto.InteractResponse{Reply: replyReadinessFailed}
	}

	now := time.Now().UTC()
	rubric := []string(question.Rubric)
	session.CurrentQuestion = &model.ActiveQuestion{
		QID:        question.ID,
		Prompt:     question.Prompt,
		Rubric:     rubric,
		Type:       question.Type,
		Topic:      question.Topic,
		Kind:       model.TurnKindMain,
		AssignedAt: now,
	}
	session.Turns = append(session.Turns, model.Turn{
		TurnID:    model.NewID("turn", 8),
		QID:       question.ID,
		Kind:      model.TurnKindMain,
		QText:     question.Prompt,
		Timestamp: now,
	})
	session.QuestionsAsked = append(session.QuestionsAsked, question.ID)
	session.Touch(s.sessionSvc.TTL())

	if err := s.sessions.Save(session); err != nil {
		log.Error().Err(err).Str("sessionID", session.ID).Msg("Failed to persist assigned question")
		return &dto.InteractResponse{Reply: replyReadinessFailed}
	}

	return &dto.InteractResponse{
		Reply:    question.Prompt,
		Question: question.Prompt,
		Rubric:   rubric,
		QID:      question.ID,
	}
}

// askFollowup generates a follow-up for the current question. The follow-up
// keeps the parent question id; only the slot content and turn kind change.
func (s *interactionService) askFollowup(ctx context.Context, session *model.Session) *dto.InteractResponse {
	cq := session.CurrentQuestion
	generated, err := s.followups.Generate(ctx, cq)
	if err != nil {
		// The one place oracle failure visibly interrupts the conversation:
		// there is no safe synthetic follow-up to substitute.
		log.Error().Err(err).Str("qID", cq.QID).Msg("Follow-up generation failed")
		return &dto.InteractResponse{Reply: replyFollowupFailed}
	}

	now := time.Now().UTC()
	session.CurrentQuestion = &model.ActiveQuestion{
		QID:        cq.QID,
		Prompt:     generated.Prompt,
		Rubric:     generated.Rubric,
		Type:       generated.Type,
		Topic:      generated.Topic,
		Kind:       model.TurnKindFollowup,
		AssignedAt: now,
	}
	session.Turns = append(session.Turns, model.Turn{
		TurnID:    model.NewID("turn", 8),
		QID:       cq.QID,
		Kind:      model.TurnKindFollowup,
		QText:     generated.Prompt,
		Timestamp: now,
	})
	session.Touch(s.sessionSvc.TTL())

	if err := s.sessions.Save(session); err != nil {
		log.Error().Err(err).Str("sessionID", session.ID).Msg("Failed to persist follow-up question")
		return &dto.InteractResponse{Reply: replyReadinessFailed}
	}

	return &dto.InteractResponse{
		Reply:    generated.Prompt,
		Question: generated.Prompt,
		Rubric:   generated.Rubric,
		QID:      cq.QID,
	}
}

// handleAnswer routes an answer to the evaluator for the active question's
// kind, mutates exactly the most recent unanswered turn, advances the slot
// and asks the report compiler whether the session is complete.
func (s *interactionService) handleAnswer(ctx context.Context, message string, session *model.Session) *dto.InteractResponse {
	if session == nil || session.CurrentQuestion == nil {
		return &dto.InteractResponse{Reply: replyNoActiveQuestion}
	}

	cq := session.CurrentQuestion

	// The turn to mutate must match the active kind and still be unanswered.
	var target *model.Turn
	for i := len(session.Turns) - 1; i >= 0; i-- {
		t := &session.Turns[i]
		if t.QID == cq.QID && t.Kind == cq.Kind {
			target = t
			break
		}
	}
	if target == nil || target.Answered() {
		if cq.Kind == model.TurnKindFollowup {
			return &dto.InteractResponse{Reply: replyNoFollowupYet}
		}
		return &dto.InteractResponse{Reply: replyNoActiveQuestion}
	}

	evaluation := s.evaluator.Evaluate(ctx, cq.Prompt, cq.Rubric, message)
	target.AnswerText = message
	target.Feedback = &evaluation

	ack := replyFollowupEvaluated
	if cq.Kind == model.TurnKindMain {
		// Flip the slot to followup in place; the follow-up itself is only
		// generated once the user says they are ready.
		cq.Kind = model.TurnKindFollowup
		session.MainQuestionsAnswered++
		ack = replyMainEvaluated
	} else {
		session.CurrentQuestion = nil
		session.FollowupsAnswered++
	}
	session.Touch(s.sessionSvc.TTL())

	report, ready := s.reports.CompileIfReady(ctx, session)

	if err := s.sessions.Save(session); err != nil {
		log.Error().Err(err).Str("sessionID", session.ID).Msg("Failed to persist evaluated answer")
		return &dto.InteractResponse{Reply: replyEvaluationFailed}
	}

	if ready {
		// The compiled report supersedes the acknowledgement.
		return &dto.InteractResponse{Reply: report}
	}
	return &dto.InteractResponse{Reply: ack}
}
