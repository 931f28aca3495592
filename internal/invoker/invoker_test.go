package invoker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aperturesearch/portfolio/internal/llm"
	"github.com/aperturesearch/portfolio/internal/quality"
)

func init() {
	// No real sleeps between transport retries in tests.
	after = func(time.Duration) <-chan time.Time {
		ch := make(chan time.Time, 1)
		ch <- time.Time{}
		return ch
	}
}

type sinkRecorder struct {
	events []Event
}

func (s *sinkRecorder) Event(e Event) { s.events = append(s.events, e) }

func (s *sinkRecorder) outcomes() []Outcome {
	out := make([]Outcome, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Outcome)
	}
	return out
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInvokeTransportErrorExhaustsAttempts(t *testing.T) {
	calls := 0
	wantErr := &llm.TransportError{StatusCode: 503, Message: "gateway down"}
	client := llm.GenerateFunc(func(ctx context.Context, req llm.Request) (string, error) {
		calls++
		return "", wantErr
	})

	inv := New(client, testLogger(), &sinkRecorder{})
	cfg := quality.Config{MaxRetries: 2, RetryOnRefusal: true, RetryOnLowQuality: true, QualityThreshold: 3}

	_, err := inv.Invoke(context.Background(), "find data", "", cfg)
	if err == nil {
		t.Fatal("expected error when every attempt fails")
	}
	var te *llm.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected original TransportError to propagate, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", calls)
	}
}

func TestInvokeRetriesRefusalThenReturnsCleanAnswer(t *testing.T) {
	calls := 0
	client := llm.GenerateFunc(func(ctx context.Context, req llm.Request) (string, error) {
		calls++
		if calls < 3 {
			return "I cannot access external websites right now.", nil
		}
		return "Acme raised $43M total across three rounds.", nil
	})

	sink := &sinkRecorder{}
	inv := New(client, testLogger(), sink)
	cfg := quality.Config{MaxRetries: 2, RetryOnRefusal: true, RetryOnLowQuality: true, QualityThreshold: 3}

	got, err := inv.Invoke(context.Background(), "research funding", "", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Acme raised $43M total across three rounds." {
		t.Errorf("expected clean third answer, got %q", got)
	}

	retries := 0
	for _, o := range sink.outcomes() {
		if o == OutcomeRefusalRetry {
			retries++
		}
	}
	if retries != 2 {
		t.Errorf("expected exactly 2 refusal retry events, got %d (%v)", retries, sink.outcomes())
	}
	if last := sink.events[len(sink.events)-1].Outcome; last != OutcomeAccepted {
		t.Errorf("expected final accepted event, got %s", last)
	}
}

func TestInvokeLowQualityFallsBackToLastResponse(t *testing.T) {
	calls := 0
	low := "A: Not Found. B: Not Found. C: Not Found. D: Not Found. E: Not Found."
	client := llm.GenerateFunc(func(ctx context.Context, req llm.Request) (string, error) {
		calls++
		return low, nil
	})

	sink := &sinkRecorder{}
	inv := New(client, testLogger(), sink)
	cfg := quality.Config{MaxRetries: 1, RetryOnRefusal: true, RetryOnLowQuality: true, QualityThreshold: 3}

	got, err := inv.Invoke(context.Background(), "research metrics", "", cfg)
	if err != nil {
		t.Fatalf("expected best-effort response, got error: %v", err)
	}
	if got != low {
		t.Errorf("expected last response returned verbatim")
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts with maxRetries=1, got %d", calls)
	}
	if last := sink.events[len(sink.events)-1].Outcome; last != OutcomeFallback {
		t.Errorf("gate-failing final attempt must report fallback, got %s", last)
	}
}

func TestInvokeRefusalOnFinalAttemptReportsFallback(t *testing.T) {
	client := llm.GenerateFunc(func(ctx context.Context, req llm.Request) (string, error) {
		return "I cannot access external websites.", nil
	})

	sink := &sinkRecorder{}
	inv := New(client, testLogger(), sink)
	cfg := quality.Config{MaxRetries: 1, RetryOnRefusal: true, QualityThreshold: 3}

	got, err := inv.Invoke(context.Background(), "research funding", "", cfg)
	if err != nil || got == "" {
		t.Fatalf("best-effort response expected, got %q, %v", got, err)
	}
	if last := sink.events[len(sink.events)-1].Outcome; last != OutcomeFallback {
		t.Errorf("persistent refusal must end in a fallback event, got %s", last)
	}
}

func TestInvokeDisabledGatesAcceptFirstResponse(t *testing.T) {
	calls := 0
	client := llm.GenerateFunc(func(ctx context.Context, req llm.Request) (string, error) {
		calls++
		return "I cannot access the web. A: TBD B: TBD C: TBD D: TBD", nil
	})

	inv := New(client, testLogger(), nil)
	got, err := inv.Invoke(context.Background(), "summarize provided text", "sys", quality.NoRetries())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected a single attempt with gates disabled, got %d", calls)
	}
	if got == "" {
		t.Error("expected response text")
	}
}

func TestInvokeEscalatesPromptsAfterFirstAttempt(t *testing.T) {
	var seen []llm.Request
	client := llm.GenerateFunc(func(ctx context.Context, req llm.Request) (string, error) {
		seen = append(seen, req)
		if len(seen) == 1 {
			return "I cannot search the web.", nil
		}
		return "Founded in 2019 in Austin.", nil
	})

	inv := New(client, testLogger(), nil)
	cfg := quality.Config{MaxRetries: 1, RetryOnRefusal: true, QualityThreshold: 3}
	if _, err := inv.Invoke(context.Background(), "base prompt", "base system", cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(seen) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(seen))
	}
	if seen[0].Prompt != "base prompt" || seen[0].SystemPrompt != "base system" {
		t.Errorf("attempt 1 must use caller values verbatim, got %+v", seen[0])
	}
	if !strings.HasPrefix(seen[1].Prompt, "base prompt") || seen[1].Prompt == "base prompt" {
		t.Error("attempt 2 prompt must keep the original with an appended reminder")
	}
	if !strings.Contains(seen[1].SystemPrompt, "base system") {
		t.Error("attempt 2 system prompt must preserve the base as a suffix")
	}
	if !strings.HasPrefix(seen[1].SystemPrompt, "CRITICAL INSTRUCTION") {
		t.Error("attempt 2 system prompt must lead with the escalation preamble")
	}
}

func TestInvokeUsesDefaultSystemPromptWhenUnset(t *testing.T) {
	var gotSystem string
	client := llm.GenerateFunc(func(ctx context.Context, req llm.Request) (string, error) {
		gotSystem = req.SystemPrompt
		return "data", nil
	})
	inv := New(client, testLogger(), nil)
	if _, err := inv.Invoke(context.Background(), "p", "", quality.DefaultConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotSystem != DefaultSystemPrompt {
		t.Error("expected default system prompt to be applied")
	}
}

func TestEscalateIsDeterministic(t *testing.T) {
	p1, s1 := Escalate("p", "s", 2)
	p2, s2 := Escalate("p", "s", 2)
	if p1 != p2 || s1 != s2 {
		t.Error("Escalate must be deterministic")
	}
	p0, s0 := Escalate("p", "s", 1)
	if p0 != "p" || s0 != "s" {
		t.Error("attempt 1 must be verbatim")
	}
}
