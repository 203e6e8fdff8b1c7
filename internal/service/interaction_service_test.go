package service

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/lshigami/Kadabra/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// memSessionRepo keeps sessions in memory with the same not-found contract as
// the gorm-backed repository.
type memSessionRepo struct {
	sessions map[string]*model.Session
	saves    int
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: map[string]*model.Session{}}
}

func (r *memSessionRepo) Create(session *model.Session) error {
	cp := *session
	r.sessions[session.ID] = &cp
	return nil
}

func (r *memSessionRepo) FindMostRecent() (*model.Session, error) {
	if len(r.sessions) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	var ids []string
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return r.sessions[ids[i]].CreatedAt.After(r.sessions[ids[j]].CreatedAt)
	})
	cp := *r.sessions[ids[0]]
	return &cp, nil
}

func (r *memSessionRepo) FindByID(id string) (*model.Session, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memSessionRepo) Save(session *model.Session) error {
	r.saves++
	cp := *session
	r.sessions[session.ID] = &cp
	return nil
}

func (r *memSessionRepo) Touch(id string, ttl time.Duration) error {
	if s, ok := r.sessions[id]; ok {
		s.Touch(ttl)
	}
	return nil
}

func (r *memSessionRepo) DeleteAll() (int64, error) {
	n := int64(len(r.sessions))
	r.sessions = map[string]*model.Session{}
	return n, nil
}

// memQuestionRepo serves a fixed bank; SampleRandom is deterministic (first
// question by id) so transitions are assertable.
type memQuestionRepo struct {
	bank []model.Question
}

func (r *memQuestionRepo) Create(q *model.Question) error {
	r.bank = append(r.bank, *q)
	return nil
}

func (r *memQuestionRepo) FindByID(id string) (*model.Question, error) {
	for i := range r.bank {
		if r.bank[i].ID == id {
			cp := r.bank[i]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memQuestionRepo) FindAll(topic *model.Topic) ([]model.Question, error) {
	var out []model.Question
	for _, q := range r.bank {
		if topic == nil || q.Topic == *topic {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *memQuestionRepo) SampleRandom() (*model.Question, error) {
	if len(r.bank) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	cp := r.bank[0]
	return &cp, nil
}

type stubClassifier struct {
	intent    Intent
	lastKind  model.TurnKind
	lastQText string
	calls     int
}

func (c *stubClassifier) Classify(_ context.Context, _, question string, _ []string, _ string, turnType model.TurnKind) Intent {
	c.calls++
	c.lastKind = turnType
	c.lastQText = question
	return c.intent
}

type stubEvaluator struct {
	evaluation model.Evaluation
	calls      int
	lastAnswer string
}

func (e *stubEvaluator) Evaluate(_ context.Context, _ string, _ []string, answer string) model.Evaluation {
	e.calls++
	e.lastAnswer = answer
	return e.evaluation
}

type stubFollowups struct {
	generated *GeneratedQuestion
	err       error
	calls     int
}

func (f *stubFollowups) Generate(_ context.Context, parent *model.ActiveQuestion) (*GeneratedQuestion, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.generated, nil
}

type stubClarifier struct {
	reply string
	calls int
}

func (c *stubClarifier) Clarify(_ context.Context, _ string, _ *model.Session) string {
	c.calls++
	return c.reply
}

type stubReports struct {
	report string
	ready  bool
	calls  int
}

func (r *stubReports) CompileIfReady(_ context.Context, session *model.Session) (string, bool) {
	r.calls++
	if r.ready {
		session.FinalReport = r.report
		return r.report, true
	}
	return "", false
}

// machine bundles the interaction service with its fakes for inspection.
type machine struct {
	svc        InteractionService
	sessions   *memSessionRepo
	questions  *memQuestionRepo
	classifier *stubClassifier
	evaluator  *stubEvaluator
	followups  *stubFollowups
	clarifier  *stubClarifier
	reports    *stubReports
}

func bankQuestion() model.Question {
	return model.Question{
		ID:     "q_bank001",
		Prompt: "What is a deadlock and how can it occur?",
		Rubric: datatypes.JSONSlice[string]{"mutual exclusion", "circular wait"},
		Topic:  model.TopicConcurrency,
		Type:   model.QuestionTypeConceptual,
	}
}

func newMachine(withQuestions bool) *machine {
	m := &machine{
		sessions:   newMemSessionRepo(),
		questions:  &memQuestionRepo{},
		classifier: &stubClassifier{},
		evaluator: &stubEvaluator{evaluation: model.Evaluation{
			Feedback:       "good",
			Classification: model.ClassificationCorrect,
			Confidence:     0.9,
		}},
		followups: &stubFollowups{generated: &GeneratedQuestion{
			Topic:  model.TopicConcurrency,
			Type:   model.QuestionTypeConceptual,
			Prompt: "How does lock ordering prevent deadlocks?",
			Rubric: []string{"total order", "acquisition discipline"},
		}},
		clarifier: &stubClarifier{reply: "clarified"},
		reports:   &stubReports{},
	}
	if withQuestions {
		q := bankQuestion()
		m.questions.bank = append(m.questions.bank, q)
	}
	sessionSvc := NewSessionService(m.sessions, testConfig())
	m.svc = NewInteractionService(
		m.sessions, m.questions, sessionSvc,
		m.classifier, m.evaluator, m.followups, m.clarifier, m.reports,
	)
	return m
}

func (m *machine) say(t *testing.T, intent Intent, message string) string {
	t.Helper()
	m.classifier.intent = intent
	resp, err := m.svc.HandleMessage(context.Background(), message)
	require.NoError(t, err)
	return resp.Reply
}

func (m *machine) current(t *testing.T) *model.Session {
	t.Helper()
	s, err := m.sessions.FindMostRecent()
	require.NoError(t, err)
	return s
}

func TestHandleMessage_RefusalIntents_NoSessionCreated(t *testing.T) {
	for _, tc := range []struct {
		intent Intent
		want   string
	}{
		{IntentAskIfCorrect, replyAskIfCorrect},
		{IntentRequestSolution, replyRequestSolution},
	} {
		m := newMachine(true)
		got := m.say(t, tc.intent, "is that right?")
		assert.Equal(t, tc.want, got)
		_, err := m.sessions.FindMostRecent()
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		assert.Equal(t, 0, m.evaluator.calls)
	}
}

func TestHandleMessage_UnhandledIntent_PlaceholderEcho(t *testing.T) {
	m := newMachine(true)
	got := m.say(t, IntentSkipQuestion, "skip this one")
	assert.Contains(t, got, "(placeholder) Detected intent:")
	assert.Contains(t, got, string(IntentSkipQuestion))
}

func TestHandleMessage_ClarifyDelegates(t *testing.T) {
	m := newMachine(true)
	got := m.say(t, IntentClarifyQuestion, "what do you mean by deadlock?")
	assert.Equal(t, "clarified", got)
	assert.Equal(t, 1, m.clarifier.calls)
}

func TestHandleMessage_Ready_NoSession_CreatesAndAsksQuestion(t *testing.T) {
	m := newMachine(true)

	got := m.say(t, IntentPositiveReady, "I'm ready")
	assert.Equal(t, bankQuestion().Prompt, got)
	assert.Equal(t, model.TurnKindIntro, m.classifier.lastKind)

	s := m.current(t)
	require.NotNil(t, s.CurrentQuestion)
	assert.Equal(t, "q_bank001", s.CurrentQuestion.QID)
	assert.Equal(t, model.TurnKindMain, s.CurrentQuestion.Kind)
	require.Len(t, s.Turns, 1)
	assert.Equal(t, model.TurnKindMain, s.Turns[0].Kind)
	assert.False(t, s.Turns[0].Answered())
	assert.Equal(t, []string{"q_bank001"}, []string(s.QuestionsAsked))
}

func TestHandleMessage_Ready_EmptyBank(t *testing.T) {
	m := newMachine(false)
	got := m.say(t, IntentPositiveReady, "I'm ready")
	assert.Equal(t, replyEmptyBank, got)

	// The session exists but no question was assigned.
	s := m.current(t)
	assert.Nil(t, s.CurrentQuestion)
	assert.Empty(t, s.Turns)
}

func TestHandleMessage_Ready_MainUnanswered_AnswerFirst(t *testing.T) {
	m := newMachine(true)
	m.say(t, IntentPositiveReady, "I'm ready")

	got := m.say(t, IntentPositiveReady, "next please")
	assert.Equal(t, replyAnswerFirst, got)
	s := m.current(t)
	require.Len(t, s.Turns, 1)
	assert.Equal(t, model.TurnKindMain, m.classifier.lastKind)
}

func TestHandleMessage_AnswerMain_FlipsSlotToFollowup(t *testing.T) {
	m := newMachine(true)
	m.say(t, IntentPositiveReady, "I'm ready")

	got := m.say(t, IntentAnswer, "a deadlock is a circular wait on locks")
	assert.Equal(t, replyMainEvaluated, got)
	assert.Equal(t, 1, m.evaluator.calls)
	assert.Equal(t, "a deadlock is a circular wait on locks", m.evaluator.lastAnswer)

	s := m.current(t)
	require.NotNil(t, s.CurrentQuestion)
	assert.Equal(t, "q_bank001", s.CurrentQuestion.QID)
	assert.Equal(t, model.TurnKindFollowup, s.CurrentQuestion.Kind)
	assert.Equal(t, 1, s.MainQuestionsAnswered)
	assert.Equal(t, 0, s.FollowupsAnswered)
	require.Len(t, s.Turns, 1)
	assert.True(t, s.Turns[0].Answered())
	require.NotNil(t, s.Turns[0].Feedback)
	assert.Equal(t, model.ClassificationCorrect, s.Turns[0].Feedback.Classification)
}

func TestHandleMessage_AnswerBeforeFollowupGenerated_Guidance(t *testing.T) {
	m := newMachine(true)
	m.say(t, IntentPositiveReady, "I'm ready")
	m.say(t, IntentAnswer, "circular wait")

	// The slot flipped to followup but the follow-up question was never asked.
	got := m.say(t, IntentAnswer, "and also lock ordering matters")
	assert.Equal(t, replyNoFollowupYet, got)
	assert.Equal(t, 1, m.evaluator.calls)
	s := m.current(t)
	assert.Equal(t, 1, s.MainQuestionsAnswered)
	assert.Equal(t, 0, s.FollowupsAnswered)
}

func TestHandleMessage_Ready_AfterMainAnswered_AsksFollowup(t *testing.T) {
	m := newMachine(true)
	m.say(t, IntentPositiveReady, "I'm ready")
	m.say(t, IntentAnswer, "circular wait")

	got := m.say(t, IntentPositiveReady, "yes, follow up please")
	assert.Equal(t, "How does lock ordering prevent deadlocks?", got)
	assert.Equal(t, 1, m.followups.calls)

	s := m.current(t)
	require.NotNil(t, s.CurrentQuestion)
	// The follow-up keeps the parent question id.
	assert.Equal(t, "q_bank001", s.CurrentQuestion.QID)
	assert.Equal(t, model.TurnKindFollowup, s.CurrentQuestion.Kind)
	require.Len(t, s.Turns, 2)
	assert.Equal(t, model.TurnKindFollowup, s.Turns[1].Kind)
	assert.Equal(t, "q_bank001", s.Turns[1].QID)
	// The bank question is not re-recorded.
	assert.Equal(t, []string{"q_bank001"}, []string(s.QuestionsAsked))
}

func TestHandleMessage_FollowupGenerationFails_Apology(t *testing.T) {
	m := newMachine(true)
	m.say(t, IntentPositiveReady, "I'm ready")
	m.say(t, IntentAnswer, "circular wait")

	m.followups.err = ErrFollowupGeneration
	got := m.say(t, IntentPositiveReady, "ready for the follow up")
	assert.Equal(t, replyFollowupFailed, got)

	// Slot unchanged so readiness can be retried.
	s := m.current(t)
	require.NotNil(t, s.CurrentQuestion)
	assert.Equal(t, model.TurnKindFollowup, s.CurrentQuestion.Kind)
	require.Len(t, s.Turns, 1)
}

func TestHandleMessage_AnswerFollowup_ClearsSlot(t *testing.T) {
	m := newMachine(true)
	m.say(t, IntentPositiveReady, "I'm ready")
	m.say(t, IntentAnswer, "circular wait")
	m.say(t, IntentPositiveReady, "go on")

	got := m.say(t, IntentAnswer, "acquire locks in a fixed global order")
	assert.Equal(t, replyFollowupEvaluated, got)

	s := m.current(t)
	assert.Nil(t, s.CurrentQuestion)
	assert.Equal(t, 1, s.MainQuestionsAnswered)
	assert.Equal(t, 1, s.FollowupsAnswered)
	require.Len(t, s.Turns, 2)
	assert.True(t, s.Turns[1].Answered())
}

func TestHandleMessage_Ready_AfterFullGroup_StartsNextQuestion(t *testing.T) {
	m := newMachine(true)
	m.say(t, IntentPositiveReady, "I'm ready")
	m.say(t, IntentAnswer, "circular wait")
	m.say(t, IntentPositiveReady, "go on")
	m.say(t, IntentAnswer, "lock ordering")

	got := m.say(t, IntentPositiveReady, "next question")
	assert.Equal(t, bankQuestion().Prompt, got)
	s := m.current(t)
	require.Len(t, s.Turns, 3)
	assert.Equal(t, model.TurnKindMain, s.Turns[2].Kind)
	assert.Len(t, []string(s.QuestionsAsked), 2)
}

func TestHandleMessage_AnswerWithNoActiveQuestion(t *testing.T) {
	m := newMachine(true)

	got := m.say(t, IntentAnswer, "polymorphism is many forms")
	assert.Equal(t, replyNoActiveQuestion, got)
	assert.Equal(t, 0, m.evaluator.calls)
}

func TestHandleMessage_FollowupUnanswered_ReadyGivesGuidance(t *testing.T) {
	m := newMachine(true)
	m.say(t, IntentPositiveReady, "I'm ready")
	m.say(t, IntentAnswer, "circular wait")
	m.say(t, IntentPositiveReady, "go on")

	got := m.say(t, IntentPositiveReady, "skip this one")
	assert.Equal(t, replyAnswerFirst, got)
	assert.Equal(t, model.TurnKindFollowup, m.classifier.lastKind)
}

func TestHandleMessage_ReportSupersedesAcknowledgement(t *testing.T) {
	m := newMachine(true)
	m.say(t, IntentPositiveReady, "I'm ready")
	m.say(t, IntentAnswer, "circular wait")
	m.say(t, IntentPositiveReady, "go on")

	m.reports.ready = true
	m.reports.report = "Overall you did well across three questions."
	got := m.say(t, IntentAnswer, "lock ordering")
	assert.Equal(t, m.reports.report, got)

	s := m.current(t)
	assert.Equal(t, m.reports.report, s.FinalReport)
}

func TestHandleMessage_ClassifierSeesCurrentQuestionContext(t *testing.T) {
	m := newMachine(true)
	m.say(t, IntentPositiveReady, "I'm ready")

	m.say(t, IntentClarifyQuestion, "huh?")
	assert.Equal(t, bankQuestion().Prompt, m.classifier.lastQText)
	assert.Equal(t, model.TurnKindMain, m.classifier.lastKind)
}

func TestHandleMessage_SingleSaveOnAnswer(t *testing.T) {
	m := newMachine(true)
	m.say(t, IntentPositiveReady, "I'm ready")
	saves := m.sessions.saves

	m.say(t, IntentAnswer, "circular wait")
	assert.Equal(t, saves+1, m.sessions.saves)
}

func TestHandleMessage_AnswerSlidesTTL(t *testing.T) {
	m := newMachine(true)
	m.say(t, IntentPositiveReady, "I'm ready")
	before := m.current(t).TTLExpiresAt

	time.Sleep(5 * time.Millisecond)
	m.say(t, IntentAnswer, "circular wait")
	after := m.current(t).TTLExpiresAt
	assert.True(t, after.After(before))
}

func TestHandleMessage_FollowupAnswerEcho(t *testing.T) {
	// The follow-up answer lands on the follow-up turn, not the main one.
	m := newMachine(true)
	m.say(t, IntentPositiveReady, "I'm ready")
	m.say(t, IntentAnswer, "main answer")
	m.say(t, IntentPositiveReady, "go on")
	m.say(t, IntentAnswer, "followup answer")

	s := m.current(t)
	require.Len(t, s.Turns, 2)
	assert.Equal(t, "main answer", s.Turns[0].AnswerText)
	assert.Equal(t, "followup answer", s.Turns[1].AnswerText)
	assert.True(t, strings.HasPrefix(s.Turns[0].TurnID, "turn_"))
}
