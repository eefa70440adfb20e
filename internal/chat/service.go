package chat

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"visaverse-backend/internal/domain"
	"visaverse-backend/internal/generator"
	"visaverse-backend/internal/llm"
	"visaverse-backend/internal/shared/metrics"
	"visaverse-backend/internal/shared/telemetry"
)

const chatTemperature = 0.4

var ErrEmptyMessage = errors.New("message is required")

var chatPrompt = template.Must(template.New("chat_v1").Parse(promptText()))

func promptText() string {
	text, ok := llm.PromptTemplate("chat_v1")
	if !ok {
		panic("missing prompt template chat_v1")
	}
	return text
}

type Retriever interface {
	Retrieve(ctx context.Context, profile domain.Profile, k int) ([]domain.Snippet, error)
}

type Service struct {
	Retriever   Retriever
	Client      llm.Client
	Enabled     bool
	Timeout     time.Duration
	MaxSnippets int
}

func NewService(r Retriever, client llm.Client, enabled bool, timeout time.Duration, maxSnippets int) *Service {
	return &Service{Retriever: r, Client: client, Enabled: enabled, Timeout: timeout, MaxSnippets: maxSnippets}
}

// Answer replies to req. Completion errors fall back to the canned answer,
// so the only failure is an empty message.
func (s *Service) Answer(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.Message) == "" {
		return Response{}, ErrEmptyMessage
	}
	snippets := s.retrieve(ctx, req.Profile)
	lang := domain.LanguageEN
	if req.Profile != nil {
		lang = req.Profile.Language
	}

	if s.Enabled && s.Client != nil {
		answer, err := s.complete(ctx, req, lang, snippets)
		if err == nil {
			metrics.IncChatAnswer(string(generator.ModeCompletion))
			return newResponse(answer, snippets, generator.ModeCompletion), nil
		}
		telemetry.Warn("chat.complete.fallback", map[string]any{
			"provider": s.Client.Provider(),
			"reason":   llm.Reason(err),
			"err":      err,
		})
	}
	metrics.IncChatAnswer(string(generator.ModeDeterministic))
	return newResponse(CannedAnswer(req.Message, lang), snippets, generator.ModeDeterministic), nil
}

func (s *Service) retrieve(ctx context.Context, profile *domain.Profile) []domain.Snippet {
	if profile == nil || s.Retriever == nil {
		return nil
	}
	snippets, err := s.Retriever.Retrieve(ctx, *profile, s.MaxSnippets)
	if err != nil {
		telemetry.Warn("chat.retrieve.failed", map[string]any{"err": err})
		return nil
	}
	return snippets
}

func (s *Service) complete(ctx context.Context, req Request, lang domain.Language, snippets []domain.Snippet) (string, error) {
	prompt, err := BuildPrompt(req, lang, snippets)
	if err != nil {
		return "", err
	}
	text, err := s.Client.Complete(ctx, llm.Request{
		System:      llm.ChatSystemPrompt,
		Prompt:      prompt,
		Temperature: chatTemperature,
		Timeout:     s.Timeout,
	})
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty answer", llm.ErrParse)
	}
	return text, nil
}

type promptData struct {
	Snippets []domain.Snippet
	History  []Message
	Profile  *domain.Profile
	Language domain.Language
	Message  string
}

// BuildPrompt renders the chat instruction with snippet excerpts and history.
func BuildPrompt(req Request, lang domain.Language, snippets []domain.Snippet) (string, error) {
	data := promptData{
		Snippets: make([]domain.Snippet, 0, len(snippets)),
		History:  req.History,
		Profile:  req.Profile,
		Language: lang,
		Message:  req.Message,
	}
	for _, sn := range snippets {
		sn.Content = generator.Excerpt(sn.Content, 400)
		data.Snippets = append(data.Snippets, sn)
	}
	var buf bytes.Buffer
	if err := chatPrompt.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render chat prompt: %w", err)
	}
	return buf.String(), nil
}

func newResponse(answer string, snippets []domain.Snippet, mode generator.Mode) Response {
	sources := make([]domain.SourceRef, 0, len(snippets))
	for _, sn := range snippets {
		sources = append(sources, sn.Source())
	}
	if len(sources) == 0 {
		sources = append(sources, generator.FallbackSource)
	}
	suggested := append([]string(nil), SuggestedPrompts[:suggestedCount]...)
	return Response{Answer: answer, Sources: sources, SuggestedQuestions: suggested, Mode: mode}
}
