package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/docstruct/docstruct/internal/arango"
	"github.com/docstruct/docstruct/internal/config"
	"github.com/docstruct/docstruct/internal/llm"
	"github.com/docstruct/docstruct/internal/store"
)

// Orchestrator manages the document analysis pipeline.
type Orchestrator struct {
	jobs   *JobStore
	queue  chan *Job
	tasks  *llm.TaskStore
	claude *llm.Client
	store  *store.Store
	sink   *arango.Client
	log    *slog.Logger
	cfg    config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. claude and sink may be nil;
// without claude the LLM merge strategy falls back to rules.
func NewOrchestrator(cfg config.Config, claude *llm.Client, st *store.Store, sink *arango.Client, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:   NewJobStore(cfg.JobTTL),
		queue:  make(chan *Job, cfg.MaxQueueSize),
		tasks:  llm.NewTaskStore(cfg.LLMQueueSize, cfg.JobTTL),
		claude: claude,
		store:  st,
		sink:   sink,
		log:    log,
		cfg:    cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	if o.cfg.MergeStrategy == "llm" && o.claude != nil {
		o.tasks.Start(workerCtx, o.claude, o.cfg.LLMWorkers)
	}

	for i := 0; i < o.cfg.WorkerCount; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.store, o.sink, o.llmTasks(), o.log, o.cfg)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Evict stale jobs and finished analysis tasks.
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
				o.jobs.Cleanup()
				o.tasks.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// llmTasks returns the task store when the LLM strategy is active.
func (o *Orchestrator) llmTasks() *llm.TaskStore {
	if o.cfg.MergeStrategy == "llm" && o.claude != nil {
		return o.tasks
	}
	return nil
}

// Tasks returns the analysis task store for direct use by API handlers.
func (o *Orchestrator) Tasks() *llm.TaskStore {
	return o.tasks
}

// Claude returns the LLM client, or nil when none is configured.
func (o *Orchestrator) Claude() *llm.Client {
	return o.claude
}

// Store returns the document store for direct use by API handlers.
func (o *Orchestrator) Store() *store.Store {
	return o.store
}

// Sink returns the ArangoDB client, or nil when none is configured.
func (o *Orchestrator) Sink() *arango.Client {
	return o.sink
}
