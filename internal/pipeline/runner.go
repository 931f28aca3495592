package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aperturesearch/portfolio/internal/config"
	"github.com/aperturesearch/portfolio/internal/invoker"
	"github.com/aperturesearch/portfolio/internal/metrics"
	"github.com/aperturesearch/portfolio/internal/portfolio"
	"github.com/aperturesearch/portfolio/internal/quality"
)

// Runner drives one run's sections through the invoker, strictly
// sequentially. Complex sections issue their chained calls in order because
// call 2 embeds call 1's output.
type Runner struct {
	inv        *invoker.Invoker
	log        *slog.Logger
	maxRetries int
	threshold  int
	overrides  map[string]config.GateOverride
}

func NewRunner(inv *invoker.Invoker, log *slog.Logger, maxRetries, threshold int, overrides map[string]config.GateOverride) *Runner {
	return &Runner{inv: inv, log: log, maxRetries: maxRetries, threshold: threshold, overrides: overrides}
}

// researchGate is the standard search-backed gate with a per-call marker
// threshold.
func (r *Runner) researchGate(threshold int) quality.Config {
	return quality.Config{
		MaxRetries:        r.maxRetries,
		RetryOnRefusal:    true,
		RetryOnLowQuality: true,
		QualityThreshold:  threshold,
	}
}

// gate applies any configured per-section override on top of the built-in
// gate. For chained sections the override applies to each call.
func (r *Runner) gate(sectionID string, base quality.Config) quality.Config {
	ov, ok := r.overrides[sectionID]
	if !ok {
		return base
	}
	if ov.MaxRetries != nil {
		base.MaxRetries = *ov.MaxRetries
	}
	if ov.RetryOnRefusal != nil {
		base.RetryOnRefusal = *ov.RetryOnRefusal
	}
	if ov.RetryOnLowQuality != nil {
		base.RetryOnLowQuality = *ov.RetryOnLowQuality
	}
	if ov.QualityThreshold != nil {
		base.QualityThreshold = *ov.QualityThreshold
	}
	return base
}

// GenerateAll runs every section in generation order. A hard failure records
// an error marker in the failed section's slot, fails the run, and stops:
// downstream sections embed their dependencies and are not generated against
// missing data.
func (r *Runner) GenerateAll(ctx context.Context, run *Run) error {
	run.SetStatus(StatusRunning)
	run.AddLog("starting portfolio generation for %s", run.Inputs.CompanyName)

	for _, id := range portfolio.GenerationOrder() {
		// Caller teardown is only honored between calls, never mid-call.
		if err := ctx.Err(); err != nil {
			run.Fail(err)
			return err
		}
		if err := r.GenerateSection(ctx, run, id); err != nil {
			run.Fail(err)
			return err
		}
	}

	run.AddLog("extracting structured metrics")
	run.SetMetrics(metrics.Extract(ctx, r.inv, r.log, run.PortfolioCopy()))

	run.Complete()
	snap := run.Snapshot()
	run.AddLog("portfolio generation complete (%d/%d sections)", snap.Progress, snap.TotalSections)
	return nil
}

// GenerateSection produces one section and stores the result. On a hard
// failure the section slot holds an error marker and the error is returned;
// other sections are never touched.
func (r *Runner) GenerateSection(ctx context.Context, run *Run, id string) error {
	sec, ok := portfolio.ByID(id)
	if !ok {
		return fmt.Errorf("unknown section %q", id)
	}

	run.SetSection(id)
	run.AddLog("generating: %s", sec.Label)

	text, err := r.produce(ctx, run, id)
	if err != nil {
		run.SetSectionText(id, portfolio.ErrorText(err))
		run.AddLog("failed: %s: %v", sec.Label, err)
		return err
	}

	run.SetSectionText(id, text)
	run.AddLog("completed: %s", sec.Label)
	return nil
}

// RegenerateSection re-runs one producer and, when the section feeds the
// structured extractor, recomputes the stored metrics so they cannot go
// stale against the new text.
func (r *Runner) RegenerateSection(ctx context.Context, run *Run, id string) error {
	if err := r.GenerateSection(ctx, run, id); err != nil {
		return err
	}
	if metrics.FeedsExtraction(id) {
		run.AddLog("refreshing structured metrics")
		run.SetMetrics(metrics.Extract(ctx, r.inv, r.log, run.PortfolioCopy()))
	}
	return nil
}

func (r *Runner) produce(ctx context.Context, run *Run, id string) (string, error) {
	in := run.Inputs

	if prompt, ok := portfolio.SimplePrompt(id, in); ok {
		return r.inv.Invoke(ctx, prompt, portfolio.ResearchSystemPrompt, r.gate(id, r.researchGate(r.threshold)))
	}

	switch id {
	case portfolio.SecFundingHistory:
		return r.inv.Invoke(ctx, portfolio.FundingHistoryPrompt(in), portfolio.ResearchSystemPrompt, r.gate(id, r.researchGate(2)))

	case portfolio.SecLeadershipTeam:
		roster, err := r.inv.Invoke(ctx, portfolio.LeadershipRosterPrompt(in), portfolio.ResearchSystemPrompt, r.gate(id, r.researchGate(4)))
		if err != nil {
			return "", err
		}
		details, err := r.inv.Invoke(ctx, portfolio.LeadershipBackgroundsPrompt(in, roster), portfolio.ResearchSystemPrompt, r.gate(id, r.researchGate(3)))
		if err != nil {
			return "", err
		}
		return "## Executive Team\n\n" + roster + "\n\n## Key Executive Backgrounds\n\n" + details, nil

	case portfolio.SecBoardMembers:
		return r.inv.Invoke(ctx, portfolio.BoardPrompt(in), portfolio.ResearchSystemPrompt, r.gate(id, r.researchGate(3)))

	case portfolio.SecCompanyMetrics:
		return r.inv.Invoke(ctx, portfolio.CompanyMetricsPrompt(in), portfolio.ResearchSystemPrompt, r.gate(id, r.researchGate(2)))

	case portfolio.SecCompetitiveLandscape:
		list, err := r.inv.Invoke(ctx, portfolio.CompetitorListPrompt(in), portfolio.ResearchSystemPrompt, r.gate(id, r.researchGate(1)))
		if err != nil {
			return "", err
		}
		details, err := r.inv.Invoke(ctx, portfolio.CompetitorDetailsPrompt(in, list), portfolio.ResearchSystemPrompt, r.gate(id, r.researchGate(4)))
		if err != nil {
			return "", err
		}
		return "## Competitor Categories\n\n" + list + "\n\n## Detailed Comparison\n\n" + details, nil

	case portfolio.SecNewsMedia:
		return r.inv.Invoke(ctx, portfolio.NewsPrompt(in), portfolio.ResearchSystemPrompt, r.gate(id, r.researchGate(2)))

	case portfolio.SecConsistencyCheck:
		prompt := portfolio.ConsistencyPrompt(in, run.PortfolioCopy())
		return r.inv.Invoke(ctx, prompt, portfolio.ConsistencySystemPrompt, r.gate(id, quality.NoRetries()))

	case portfolio.SecQuickDigest:
		prompt := portfolio.QuickDigestPrompt(in, run.PortfolioCopy())
		return r.inv.Invoke(ctx, prompt, portfolio.SynthesisSystemPrompt, r.gate(id, quality.NoRetries()))

	case portfolio.SecSources:
		return r.inv.Invoke(ctx, portfolio.SourcesPrompt(in), portfolio.ResearchSystemPrompt, r.gate(id, r.researchGate(2)))
	}

	return "", fmt.Errorf("unknown section %q", id)
}
