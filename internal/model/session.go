package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type TurnKind string

const (
	TurnKindMain     TurnKind = "main"
	TurnKindFollowup TurnKind = "followup"
	// TurnKindIntro is a classifier-context value only; it is never stored on
	// a Turn or ActiveQuestion.
	TurnKindIntro TurnKind = "intro"
)

type Classification string

const (
	ClassificationCorrect         Classification = "correct"
	ClassificationSomewhatCorrect Classification = "somewhat_correct"
	ClassificationWrong           Classification = "wrong"
)

func (c Classification) Valid() bool {
	switch c {
	case ClassificationCorrect, ClassificationSomewhatCorrect, ClassificationWrong:
		return true
	}
	return false
}

// Evaluation is the structured judgment attached to an answered turn.
type Evaluation struct {
	Feedback       string         `json:"feedback"`
	Classification Classification `json:"classification"`
	Confidence     float64        `json:"confidence"`
}

// Turn records one question/answer exchange. AnswerText and Feedback are
// empty until the user responds and the evaluator runs; a turn is never
// deleted individually.
type Turn struct {
	TurnID     string      `json:"turn_id"`
	QID        string      `json:"q_id"`
	Kind       TurnKind    `json:"turn_type"`
	QText      string      `json:"q_text"`
	AnswerText string      `json:"answer_text,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
	Feedback   *Evaluation `json:"feedback,omitempty"`
}

func (t *Turn) Answered() bool {
	return t != nil && t.AnswerText != ""
}

// ActiveQuestion is the denormalized snapshot of the question currently
// awaiting an answer. A follow-up keeps the parent question's QID.
type ActiveQuestion struct {
	QID        string       `json:"q_id"`
	Prompt     string       `json:"prompt"`
	Rubric     []string     `json:"rubric"`
	Type       QuestionType `json:"type"`
	Topic      Topic        `json:"topic"`
	Kind       TurnKind     `json:"turn_type"`
	AssignedAt time.Time    `json:"assigned_at"`
}

type SessionMeta struct {
	TargetRole      string `json:"target_role,omitempty"`
	ExperienceLevel string `json:"experience_level,omitempty"`
}

// Session is the single mutable conversation record. Turns, CurrentQuestion
// and Meta live in JSON columns; updates are whole-document saves.
type Session struct {
	ID                    string                      `gorm:"primarykey" json:"id"`
	CreatedAt             time.Time                   `json:"created_at" gorm:"index"`
	UpdatedAt             time.Time                   `json:"updated_at"`
	LastActivityAt        time.Time                   `json:"last_activity_at" gorm:"index"`
	TTLExpiresAt          time.Time                   `json:"ttl_expires_at" gorm:"index"`
	Meta                  SessionMeta                 `json:"meta" gorm:"serializer:json"`
	CurrentQuestion       *ActiveQuestion             `json:"current_question,omitempty" gorm:"serializer:json"`
	Turns                 []Turn                      `json:"turns" gorm:"serializer:json"`
	Summary               string                      `json:"summary,omitempty" gorm:"type:text"`
	QuestionsAsked        datatypes.JSONSlice[string] `json:"questions_asked"`
	MainQuestionsAnswered int                         `json:"main_questions_answered" gorm:"default:0"`
	FollowupsAnswered     int                         `json:"followups_answered" gorm:"default:0"`
	FinalReport           string                      `json:"final_report,omitempty" gorm:"type:text"`
}

func NewSession(targetRole, experienceLevel string, ttl time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:             NewID("session", 12),
		CreatedAt:      now,
		LastActivityAt: now,
		TTLExpiresAt:   now.Add(ttl),
		Meta: SessionMeta{
			TargetRole:      targetRole,
			ExperienceLevel: experienceLevel,
		},
	}
}

// Touch slides the TTL window forward. Call on every state-changing branch.
func (s *Session) Touch(ttl time.Duration) {
	now := time.Now().UTC()
	s.LastActivityAt = now
	s.TTLExpiresAt = now.Add(ttl)
}

// LastTurn returns a pointer into the turns slice, or nil for an empty history.
func (s *Session) LastTurn() *Turn {
	if len(s.Turns) == 0 {
		return nil
	}
	return &s.Turns[len(s.Turns)-1]
}

// LastTurnOfKind returns the most recent turn with the given kind, or nil.
func (s *Session) LastTurnOfKind(kind TurnKind) *Turn {
	for i := len(s.Turns) - 1; i >= 0; i-- {
		if s.Turns[i].Kind == kind {
			return &s.Turns[i]
		}
	}
	return nil
}

// NewID builds an opaque id like "session_3fa85f64c0de" from a fresh UUID.
func NewID(prefix string, n int) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	if n > len(hex) {
		n = len(hex)
	}
	return prefix + "_" + hex[:n]
}
