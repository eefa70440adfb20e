package chat

import (
	"visaverse-backend/internal/domain"
	"visaverse-backend/internal/generator"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is one advisor question. Profile is optional; without it no
// retrieval happens and answers default to English.
type Request struct {
	Message string          `json:"message"`
	Profile *domain.Profile `json:"profile,omitempty"`
	History []Message       `json:"history,omitempty"`
}

type Response struct {
	Answer             string             `json:"answer"`
	Sources            []domain.SourceRef `json:"sources"`
	SuggestedQuestions []string           `json:"suggested_questions"`

	Mode generator.Mode `json:"-"`
}

// SuggestedPrompts is the fixed prompt list; responses carry the first three.
var SuggestedPrompts = []string{
	"What documents should I prioritize next?",
	"How long does the interview take?",
	"What happens if my proof of funds is low?",
	"Can I travel while my visa is processing?",
}

const suggestedCount = 3

var validRoles = map[string]bool{"user": true, "assistant": true, "system": true}
