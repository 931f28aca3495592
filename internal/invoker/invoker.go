// Package invoker wraps a generation client with a retry loop driven by the
// quality gate: refusals and low-quality answers escalate the prompt and
// retry; transport failures back off and retry; the best available response
// is always preferred over an error.
package invoker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aperturesearch/portfolio/internal/llm"
	"github.com/aperturesearch/portfolio/internal/quality"
)

// Outcome classifies one attempt for the activity log.
type Outcome string

const (
	OutcomeAccepted        Outcome = "accepted"
	OutcomeRefusalRetry    Outcome = "refusal_retry"
	OutcomeLowQualityRetry Outcome = "low_quality_retry"
	OutcomeErrorRetry      Outcome = "error_retry"
	OutcomeFallback        Outcome = "fallback"
	OutcomeFailed          Outcome = "failed"
)

// Event is emitted once per attempt.
type Event struct {
	Attempt int
	Outcome Outcome
	Detail  string
}

// EventSink receives attempt events. Implementations must not block.
type EventSink interface {
	Event(e Event)
}

// NopSink discards events; a valid substitute in tests.
type NopSink struct{}

func (NopSink) Event(Event) {}

// Invoker runs the retry loop against one generation client.
type Invoker struct {
	client llm.Client
	log    *slog.Logger
	sink   EventSink
}

func New(client llm.Client, log *slog.Logger, sink EventSink) *Invoker {
	if sink == nil {
		sink = NopSink{}
	}
	return &Invoker{client: client, log: log, sink: sink}
}

// Invoke calls the client up to cfg.MaxRetries+1 times. It fails only when
// every attempt raised a hard error; if any attempt returned text, that text
// (the last one seen) is returned even when it never passed the gate.
func (inv *Invoker) Invoke(ctx context.Context, prompt, systemPrompt string, cfg quality.Config) (string, error) {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}

	maxAttempts := cfg.MaxRetries + 1
	var lastResponse string
	var haveResponse bool
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		activePrompt, activeSystem := Escalate(prompt, systemPrompt, attempt)

		text, err := inv.client.Generate(ctx, llm.Request{
			Prompt:       activePrompt,
			SystemPrompt: activeSystem,
		})
		if err != nil {
			lastErr = err
			if attempt < maxAttempts {
				inv.emit(Event{Attempt: attempt, Outcome: OutcomeErrorRetry, Detail: err.Error()})
				inv.log.Warn("generation attempt failed", "attempt", attempt, "error", err)
				select {
				case <-ctx.Done():
					return "", ctx.Err()
				case <-after(Backoff(attempt - 1)):
				}
				continue
			}
			break
		}

		lastResponse = text
		haveResponse = true

		if cfg.RetryOnRefusal && quality.IsRefusal(text, quality.RefusalPhrases) {
			if attempt < maxAttempts {
				inv.emit(Event{Attempt: attempt, Outcome: OutcomeRefusalRetry, Detail: "refusal pattern detected"})
				inv.log.Warn("refusal detected, retrying with escalated prompt", "attempt", attempt)
				continue
			}
			inv.emit(Event{Attempt: attempt, Outcome: OutcomeFallback, Detail: "refusal on final attempt"})
			return text, nil
		} else if cfg.RetryOnLowQuality {
			count := quality.MarkerCount(text, quality.LowQualityPatterns)
			if count > cfg.QualityThreshold {
				if attempt < maxAttempts {
					inv.emit(Event{Attempt: attempt, Outcome: OutcomeLowQualityRetry, Detail: fmt.Sprintf("%d placeholder markers", count)})
					inv.log.Warn("low-quality response, retrying", "attempt", attempt, "markers", count)
					continue
				}
				inv.emit(Event{Attempt: attempt, Outcome: OutcomeFallback, Detail: fmt.Sprintf("%d placeholder markers on final attempt", count)})
				return text, nil
			}
		}

		inv.emit(Event{Attempt: attempt, Outcome: OutcomeAccepted})
		return text, nil
	}

	// A mediocre answer beats none.
	if haveResponse {
		inv.emit(Event{Attempt: maxAttempts, Outcome: OutcomeFallback, Detail: "returning best-effort response"})
		return lastResponse, nil
	}
	if lastErr != nil {
		inv.emit(Event{Attempt: maxAttempts, Outcome: OutcomeFailed, Detail: lastErr.Error()})
		return "", lastErr
	}
	return "", errors.New("all retries failed")
}

func (inv *Invoker) emit(e Event) {
	inv.sink.Event(e)
}
