package dto

// InteractRequest drives the conversation state machine.
type InteractRequest struct {
	Message string `json:"message" binding:"required"`
}

// AddQuestionRequest validates a new bank entry. ID is optional; one is
// generated when absent.
type AddQuestionRequest struct {
	ID                   string   `json:"id"`
	Topic                string   `json:"topic" binding:"required,oneof=oop dsa operating_systems databases networking system_design concurrency web"`
	Difficulty           int      `json:"difficulty" binding:"required,min=1,max=5"`
	Type                 string   `json:"type" binding:"required,oneof=conceptual code design"`
	Prompt               string   `json:"prompt" binding:"required"`
	Rubric               []string `json:"rubric" binding:"required,min=1,dive,required"`
	ClarificationAllowed *bool    `json:"clarification_allowed"`
	RequiresLLM          *bool    `json:"requires_llm"`
}
