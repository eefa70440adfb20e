package llm

import _ "embed"

var (
	//go:embed prompts/plan_v1.txt
	planV1 string
	//go:embed prompts/chat_v1.txt
	chatV1 string
)

const (
	PlanSystemPrompt = "You are a structured visa planning assistant."
	ChatSystemPrompt = "You are VisaVerse, a precise visa planning assistant."
)

// PromptTemplate returns the template text and whether the name was recognized.
func PromptTemplate(name string) (string, bool) {
	switch name {
	case "plan_v1":
		return planV1, true
	case "chat_v1":
		return chatV1, true
	default:
		return "", false
	}
}
