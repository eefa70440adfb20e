package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"visaverse-backend/internal/domain"
	"visaverse-backend/internal/generator"
	"visaverse-backend/internal/llm"
)

type stubRetriever struct {
	snippets []domain.Snippet
	calls    int
}

func (s *stubRetriever) Retrieve(ctx context.Context, profile domain.Profile, k int) ([]domain.Snippet, error) {
	s.calls++
	return s.snippets, nil
}

type recordingClient struct {
	text string
	err  error
	got  llm.Request
}

func (r *recordingClient) Complete(ctx context.Context, req llm.Request) (string, error) {
	r.got = req
	return r.text, r.err
}

func (r *recordingClient) Provider() string { return "stub" }

func frProfile() *domain.Profile {
	return &domain.Profile{
		OriginCountry:        "CM",
		DestinationCountry:   "FR",
		Purpose:              domain.PurposeStudy,
		PlannedDepartureDate: domain.NewDate(2026, time.June, 1),
		DurationMonths:       12,
		PassportExpiryDate:   domain.NewDate(2030, time.June, 1),
		ProofOfFundsLevel:    domain.PriorityMedium,
		Language:             domain.LanguageFR,
	}
}

func TestCannedAnswerTopics(t *testing.T) {
	tests := []struct {
		name    string
		message string
		lang    domain.Language
		want    string
	}{
		{"en passport", "Is my PASSPORT ok?", domain.LanguageEN, "six months of validity"},
		{"en funds", "how much money do I need", domain.LanguageEN, "bank statements"},
		{"en timeline", "How long will it take?", domain.LanguageEN, "6-8 weeks"},
		{"en default", "hello", domain.LanguageEN, "mandatory documents"},
		{"fr passeport", "mon passeport expire", domain.LanguageFR, "passeport soit valide"},
		{"fr fonds", "quels fonds ?", domain.LanguageFR, "releves bancaires"},
		{"fr delai", "quel delai ?", domain.LanguageFR, "6 a 8 semaines"},
		{"fr default", "bonjour", domain.LanguageFR, "documents obligatoires"},
		{"en ignores french keyword", "passeport", domain.LanguageEN, "mandatory documents"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := CannedAnswer(tt.message, tt.lang)
			if !strings.Contains(got, tt.want) {
				t.Fatalf("answer %q does not contain %q", got, tt.want)
			}
		})
	}
}

func TestAnswerDeterministicWithoutProfile(t *testing.T) {
	retriever := &stubRetriever{}
	svc := NewService(retriever, nil, false, time.Second, 5)

	resp, err := svc.Answer(context.Background(), Request{Message: "What about funds?"})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if retriever.calls != 0 {
		t.Fatalf("retrieval must be skipped without a profile")
	}
	if len(resp.Sources) != 1 || resp.Sources[0] != generator.FallbackSource {
		t.Fatalf("sources = %+v", resp.Sources)
	}
	if len(resp.SuggestedQuestions) != 3 || resp.SuggestedQuestions[0] != SuggestedPrompts[0] {
		t.Fatalf("suggested = %v", resp.SuggestedQuestions)
	}
	if !strings.Contains(resp.Answer, "bank statements") {
		t.Fatalf("answer = %q", resp.Answer)
	}
}

func TestAnswerCompletionUsesSnippets(t *testing.T) {
	long := strings.Repeat("x", 500)
	retriever := &stubRetriever{snippets: []domain.Snippet{{Title: "France Study", Ref: "fr.md", Content: long}}}
	client := &recordingClient{text: "  Bonne chance  "}
	svc := NewService(retriever, client, true, time.Second, 5)

	resp, err := svc.Answer(context.Background(), Request{
		Message: "Que faire ?",
		Profile: frProfile(),
		History: []Message{{Role: "user", Content: "Salut"}},
	})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if resp.Answer != "Bonne chance" {
		t.Fatalf("answer = %q", resp.Answer)
	}
	if client.got.Temperature != 0.4 || client.got.JSON {
		t.Fatalf("request = %+v", client.got)
	}
	if strings.Contains(client.got.Prompt, strings.Repeat("x", 401)) {
		t.Fatalf("snippet excerpt not truncated")
	}
	for _, want := range []string{"user: Salut", "Origin: CM, Destination: FR, Purpose: STUDY", "Language: FR", "Que faire ?"} {
		if !strings.Contains(client.got.Prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, client.got.Prompt)
		}
	}
	if len(resp.Sources) != 1 || resp.Sources[0].Ref != "fr.md" {
		t.Fatalf("sources = %+v", resp.Sources)
	}
}

func TestAnswerCompletionErrorFallsBackToCanned(t *testing.T) {
	client := &recordingClient{err: llm.ErrTransport}
	svc := NewService(&stubRetriever{}, client, true, time.Second, 5)

	resp, err := svc.Answer(context.Background(), Request{Message: "passeport", Profile: frProfile()})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if resp.Answer != CannedAnswer("passeport", domain.LanguageFR) {
		t.Fatalf("answer = %q", resp.Answer)
	}
}

func TestAnswerRejectsEmptyMessage(t *testing.T) {
	svc := NewService(nil, nil, false, 0, 5)
	if _, err := svc.Answer(context.Background(), Request{Message: "  "}); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestBuildPromptWithoutProfileOrHistory(t *testing.T) {
	prompt, err := BuildPrompt(Request{Message: "hi"}, domain.LanguageEN, nil)
	if err != nil {
		t.Fatalf("BuildPrompt: %v", err)
	}
	for _, want := range []string{"None provided.", "No history.", "Unknown profile", "Language: EN"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}
