package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"visaverse-backend/internal/shared/config"
)

func setup(t *testing.T) (loader, string) {
	t.Helper()
	dir := t.TempDir()
	kbDir := filepath.Join(dir, "kb")
	if err := os.MkdirAll(kbDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	doc := "---\norigin_country: CM\n---\nCM applicants heading to FR for study need a campus france interview."
	if err := os.WriteFile(filepath.Join(kbDir, "cameroon_france.md"), []byte(doc), 0o644); err != nil {
		t.Fatalf("write kb: %v", err)
	}
	profile := map[string]any{
		"origin_country":         "CM",
		"destination_country":    "FR",
		"purpose":                "STUDY",
		"planned_departure_date": time.Now().AddDate(0, 0, 10).Format("2006-01-02"),
		"duration_months":        12,
		"passport_expiry_date":   time.Now().AddDate(0, 2, 0).Format("2006-01-02"),
		"proof_of_funds_level":   "LOW",
		"language":               "EN",
	}
	data, _ := json.Marshal(profile)
	profilePath := filepath.Join(dir, "profile.json")
	if err := os.WriteFile(profilePath, data, 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	load := func() config.Config {
		return config.Config{
			Env:            "test",
			KBSource:       "local",
			KBDir:          kbDir,
			LLMProvider:    "openai",
			MaxSnippets:    5,
			LLMTimeout:     time.Second,
			AccessTokenTTL: time.Hour,
		}
	}
	return load, profilePath
}

func run(t *testing.T, load loader, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(load)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPlanCommandPrintsJSON(t *testing.T) {
	load, profile := setup(t)
	out, err := run(t, load, "plan", "--profile", profile)
	if err != nil {
		t.Fatalf("plan: %v\n%s", err, out)
	}
	var plan struct {
		Risks []struct {
			ID string `json:"id"`
		} `json:"risks"`
	}
	if err := json.Unmarshal([]byte(out), &plan); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(plan.Risks) != 4 {
		t.Fatalf("risks = %+v", plan.Risks)
	}
}

func TestPlanCommandWritesXLSX(t *testing.T) {
	load, profile := setup(t)
	target := filepath.Join(t.TempDir(), "plan.xlsx")
	if out, err := run(t, load, "plan", "-p", profile, "--xlsx", target); err != nil {
		t.Fatalf("plan: %v\n%s", err, out)
	}
	f, err := excelize.OpenFile(target)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	if got := f.GetSheetList(); len(got) != 6 {
		t.Fatalf("sheets = %v", got)
	}
}

func TestKBSearchAndSeed(t *testing.T) {
	load, profile := setup(t)

	out, err := run(t, load, "kb", "search", "--profile", profile)
	if err != nil {
		t.Fatalf("search: %v\n%s", err, out)
	}
	if !strings.Contains(out, "cameroon_france.md") || !strings.Contains(out, "Cameroon France") {
		t.Fatalf("search output:\n%s", out)
	}

	out, err = run(t, load, "kb", "seed")
	if err != nil {
		t.Fatalf("seed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "imported 1, skipped 0") {
		t.Fatalf("seed output: %s", out)
	}
}

func TestPlanCommandRejectsInvalidProfile(t *testing.T) {
	load, _ := setup(t)
	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte(`{"origin_country":"CM"}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := run(t, load, "plan", "--profile", bad); err == nil {
		t.Fatalf("expected validation error")
	}
}
