package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aperturesearch/portfolio/internal/config"
	"github.com/aperturesearch/portfolio/internal/invoker"
	"github.com/aperturesearch/portfolio/internal/llm"
	"github.com/aperturesearch/portfolio/internal/portfolio"
)

// ClientFactory builds a generation client for one run. An empty apiKey
// means the server-configured key for that provider.
type ClientFactory func(provider, apiKey string) (llm.Client, error)

// task is one unit of queued work: a full run, or a single section when
// sectionID is set.
type task struct {
	run       *Run
	sectionID string
}

// Orchestrator manages the generation queue and worker pool.
type Orchestrator struct {
	runs    *RunStore
	queue   chan task
	factory ClientFactory
	log     *slog.Logger
	cfg     config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewOrchestrator(cfg config.Config, factory ClientFactory, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		runs:    NewRunStore(cfg.RunTTL),
		queue:   make(chan task, cfg.MaxQueueSize),
		factory: factory,
		log:     log,
		cfg:     cfg,
	}
}

// Start launches worker goroutines and the run store janitor.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for i := 0; i < o.cfg.WorkerCount; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			for {
				select {
				case <-workerCtx.Done():
					return
				case t, ok := <-o.queue:
					if !ok {
						return
					}
					o.process(workerCtx, t)
				}
			}
		}()
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.runs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pool.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

func (o *Orchestrator) process(ctx context.Context, t task) {
	provider := t.run.Provider
	if provider == "" {
		provider = o.cfg.Provider
	}

	client, err := o.factory(provider, t.run.APIKey)
	if err != nil {
		o.log.Error("client construction failed", "run_id", t.run.ID, "provider", provider, "error", err)
		t.run.Fail(err)
		return
	}

	inv := invoker.New(client, o.log.With("run_id", t.run.ID), t.run)
	runner := NewRunner(inv, o.log, o.cfg.MaxRetries, o.cfg.QualityThreshold, o.cfg.SectionOverrides)

	if t.sectionID != "" {
		// Regeneration failures stay local to the section.
		if err := runner.RegenerateSection(ctx, t.run, t.sectionID); err != nil {
			o.log.Warn("section regeneration failed", "run_id", t.run.ID, "section", t.sectionID, "error", err)
		}
		t.run.SetSection("")
		return
	}

	if err := runner.GenerateAll(ctx, t.run); err != nil {
		o.log.Error("run failed", "run_id", t.run.ID, "error", err)
	}
}

// Submit registers a run and queues it for full generation.
func (o *Orchestrator) Submit(run *Run) error {
	o.runs.Put(run)
	select {
	case o.queue <- task{run: run}:
		return nil
	default:
		err := fmt.Errorf("run queue is full (%d)", o.cfg.MaxQueueSize)
		run.Fail(err)
		return err
	}
}

// Regenerate queues a single section of an existing run.
func (o *Orchestrator) Regenerate(run *Run, sectionID string) error {
	if _, ok := portfolio.ByID(sectionID); !ok {
		return fmt.Errorf("unknown section %q", sectionID)
	}
	select {
	case o.queue <- task{run: run, sectionID: sectionID}:
		return nil
	default:
		return fmt.Errorf("run queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetRun returns a run by ID.
func (o *Orchestrator) GetRun(id string) *Run {
	return o.runs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}
