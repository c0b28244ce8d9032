package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"

	"safeRestServer/checker"
	"safeRestServer/feeds"
	"safeRestServer/scoring"
)

type fakeChecker struct {
	decisions map[string]*checker.Decision
	checked   []string
}

func (f *fakeChecker) Validate(raw *string) (string, error) {
	return checker.Validate(raw, checker.DefaultMaxURLLength)
}

func (f *fakeChecker) Check(ctx context.Context, url string) (*checker.Decision, bool) {
	f.checked = append(f.checked, url)
	return f.decisions[url], false
}

func newFake() *fakeChecker {
	age := 12
	return &fakeChecker{decisions: map[string]*checker.Decision{
		"https://github.com": {
			URL: "https://github.com", Score: 100, Action: scoring.Allow,
			RiskClassification: scoring.Safe, RiskFactors: []scoring.Reason{},
			Details: checker.Details{SafeBrowsing: feeds.Result{Source: "google_safe_browsing"}},
		},
		"http://login-bank.example": {
			URL: "http://login-bank.example", Score: 40, Action: scoring.Block,
			RiskClassification: scoring.Danger,
			RiskFactors:        []scoring.Reason{{Code: "NO_HTTPS", Points: 20}, {Code: "YOUNG_DOMAIN", Points: 25}, {Code: "SUSPICIOUS_KEYWORDS", Points: 15}},
			Details:            checker.Details{DomainAgeDays: &age, SafeBrowsing: feeds.Result{Source: "google_safe_browsing", Note: feeds.NoteTimeout}},
		},
	}}
}

func execute(t *testing.T, fake *fakeChecker, args ...string) (string, string, error) {
	t.Helper()
	color.NoColor = true

	cmd := newRootCmd(func(ctx context.Context, verbose bool) (urlChecker, func(), error) {
		return fake, func() {}, nil
	})
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestCheckPrintsDecisions(t *testing.T) {
	out, _, err := execute(t, newFake(), "check", "--no-banner", "https://github.com", "  http://login-bank.example ")
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"ALLOW 100  https://github.com  (safe)",
		"BLOCK  40  http://login-bank.example  (danger)",
		"-25 YOUNG_DOMAIN",
		"domain age: 12 days, feeds: not listed (timeout), redirects: 0",
		"domain age: unknown, feeds: not listed, redirects: 0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCheckJSON(t *testing.T) {
	out, _, err := execute(t, newFake(), "check", "--json", "https://github.com", "http://login-bank.example")
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("want 2 json lines, got %d:\n%s", len(lines), out)
	}
	var d map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &d); err != nil {
		t.Fatal(err)
	}
	if d["action"] != "block" || d["risk_classification"] != "danger" {
		t.Fatalf("unexpected decision %v", d)
	}
}

func TestCheckFailOnBlock(t *testing.T) {
	_, _, err := execute(t, newFake(), "check", "--no-banner", "--fail-on-block", "http://login-bank.example")
	var ee *exitError
	if !errors.As(err, &ee) || ee.code != exitBlocked {
		t.Fatalf("err = %v, want exit %d", err, exitBlocked)
	}

	if _, _, err := execute(t, newFake(), "check", "--no-banner", "http://login-bank.example"); err != nil {
		t.Fatalf("blocked URL without --fail-on-block: %v", err)
	}
}

func TestCheckInvalidURL(t *testing.T) {
	fake := newFake()
	_, errOut, err := execute(t, fake, "check", "--no-banner", "ftp://example.com", "https://github.com")

	var ee *exitError
	if !errors.As(err, &ee) || ee.code != exitInvalid {
		t.Fatalf("err = %v, want exit %d", err, exitInvalid)
	}
	if !strings.Contains(errOut, "invalid_url") {
		t.Fatalf("stderr = %q", errOut)
	}
	if len(fake.checked) != 1 || fake.checked[0] != "https://github.com" {
		t.Fatalf("checked = %v", fake.checked)
	}
}

func TestCheckRequiresURL(t *testing.T) {
	if _, _, err := execute(t, newFake(), "check"); err == nil {
		t.Fatal("expected an argument error")
	}
}

func TestBanner(t *testing.T) {
	out, _, err := execute(t, newFake(), "check", "https://github.com")
	if err != nil {
		t.Fatal(err)
	}
	if i := strings.Index(out, "ALLOW"); i <= 0 || !strings.Contains(out[:i], "\n") {
		t.Fatalf("expected banner before the decision, got:\n%s", out)
	}
}
