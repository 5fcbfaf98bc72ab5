package llm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Completer turns a prompt into model output. *Client satisfies it;
// tests substitute their own.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// TaskState is the lifecycle state of a queued completion.
type TaskState string

const (
	TaskPending   TaskState = "pending"
	TaskRunning   TaskState = "running"
	TaskSucceeded TaskState = "succeeded"
	TaskFailed    TaskState = "failed"
)

// Task is one queued prompt and, once settled, its result or error.
type Task struct {
	mu sync.Mutex

	ID        string
	Prompt    string
	state     TaskState
	result    string
	errMsg    string
	createdAt time.Time
	updatedAt time.Time
}

func (t *Task) setState(s TaskState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = s
	t.updatedAt = time.Now()
}

func (t *Task) succeed(result string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = TaskSucceeded
	t.result = result
	t.updatedAt = time.Now()
}

func (t *Task) fail(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = TaskFailed
	t.errMsg = msg
	t.updatedAt = time.Now()
}

// Status returns the current state and, when settled, the result or
// error message.
func (t *Task) Status() (TaskState, string, string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state, t.result, t.errMsg
}

func (t *Task) updated() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.updatedAt
}

// TaskStore queues prompts for background completion and keeps settled
// results until they expire. Submitting never blocks: when the queue is
// full the task fails immediately and the caller sees that on Await.
type TaskStore struct {
	mu    sync.Mutex
	tasks map[string]*Task
	queue chan *Task
	ttl   time.Duration
}

func NewTaskStore(queueSize int, ttl time.Duration) *TaskStore {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &TaskStore{
		tasks: make(map[string]*Task),
		queue: make(chan *Task, queueSize),
		ttl:   ttl,
	}
}

// Submit registers a prompt and queues it for a worker.
func (s *TaskStore) Submit(prompt string) *Task {
	now := time.Now()
	t := &Task{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Prompt:    prompt,
		state:     TaskPending,
		createdAt: now,
		updatedAt: now,
	}

	s.mu.Lock()
	s.tasks[t.ID] = t
	s.mu.Unlock()

	select {
	case s.queue <- t:
	default:
		t.fail("task queue full")
	}
	return t
}

// Get returns the task with the given ID, or nil.
func (s *TaskStore) Get(id string) *Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks[id]
}

// QueueDepth reports how many tasks are waiting for a worker.
func (s *TaskStore) QueueDepth() int {
	return len(s.queue)
}

// Counts reports how many known tasks are in each state.
func (s *TaskStore) Counts() map[TaskState]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[TaskState]int, 4)
	for _, t := range s.tasks {
		state, _, _ := t.Status()
		out[state]++
	}
	return out
}

// Start launches worker goroutines that drain the queue until the
// context ends.
func (s *TaskStore) Start(ctx context.Context, c Completer, workers int) {
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		go s.worker(ctx, c)
	}
}

func (s *TaskStore) worker(ctx context.Context, c Completer) {
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-s.queue:
			s.run(ctx, c, t)
		}
	}
}

// run executes one task, retrying transient failures with backoff.
func (s *TaskStore) run(ctx context.Context, c Completer, t *Task) {
	t.setState(TaskRunning)

	var out string
	var err error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		out, err = c.Complete(ctx, t.Prompt)
		if err == nil || !IsRetryable(err) {
			break
		}
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			err = ctx.Err()
		}
		if ctx.Err() != nil {
			break
		}
	}
	if err != nil {
		t.fail(err.Error())
		return
	}
	t.succeed(out)
}

const pollInterval = 20 * time.Millisecond

// Await polls the task until it settles or the timeout passes. A
// timeout does not cancel the task; a late result is still stored and
// visible through Get.
func (s *TaskStore) Await(ctx context.Context, id string, timeout time.Duration) (string, error) {
	t := s.Get(id)
	if t == nil {
		return "", fmt.Errorf("unknown task %s", id)
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(pollInterval)
	defer tick.Stop()

	for {
		state, result, errMsg := t.Status()
		switch state {
		case TaskSucceeded:
			return result, nil
		case TaskFailed:
			return "", fmt.Errorf("task %s failed: %s", id, errMsg)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-deadline.C:
			return "", fmt.Errorf("task %s timed out after %s", id, timeout)
		case <-tick.C:
		}
	}
}

// Cleanup removes tasks that have not changed state within the TTL.
func (s *TaskStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, t := range s.tasks {
		if now.Sub(t.updated()) > s.ttl {
			delete(s.tasks, id)
		}
	}
}
