package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionType string

const (
	QuestionTypeConceptual QuestionType = "conceptual"
	QuestionTypeCode       QuestionType = "code"
	QuestionTypeDesign     QuestionType = "design"
)

func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeConceptual, QuestionTypeCode, QuestionTypeDesign:
		return true
	}
	return false
}

// Topic is the closed set of domain tags a question can carry.
type Topic string

const (
	TopicOOP              Topic = "oop"
	TopicDSA              Topic = "dsa"
	TopicOperatingSystems Topic = "operating_systems"
	TopicDatabases        Topic = "databases"
	TopicNetworking       Topic = "networking"
	TopicSystemDesign     Topic = "system_design"
	TopicConcurrency      Topic = "concurrency"
	TopicWeb              Topic = "web"
)

func (t Topic) Valid() bool {
	switch t {
	case TopicOOP, TopicDSA, TopicOperatingSystems, TopicDatabases,
		TopicNetworking, TopicSystemDesign, TopicConcurrency, TopicWeb:
		return true
	}
	return false
}

// Question is a bank entry. Immutable once created; the interview loop only
// ever samples it by id.
type Question struct {
	ID                   string                       `gorm:"primarykey" json:"id"`
	Topic                Topic                        `json:"topic" gorm:"not null;index"`
	Difficulty           int                          `json:"difficulty" gorm:"not null"`
	Type                 QuestionType                 `json:"type" gorm:"not null"`
	Prompt               string                       `json:"prompt" gorm:"type:text;not null"`
	Rubric               datatypes.JSONSlice[string]  `json:"rubric"`
	ClarificationAllowed bool                         `json:"clarification_allowed" gorm:"default:true"`
	RequiresLLM          bool                         `json:"requires_llm" gorm:"default:true"`
	CreatedAt            time.Time                    `json:"created_at" gorm:"index"`
	UpdatedAt            time.Time                    `json:"updated_at"`
	DeletedAt            gorm.DeletedAt               `gorm:"index" json:"-"`
}
