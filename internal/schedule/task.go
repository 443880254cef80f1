package schedule

import (
	"context"
	"time"
)

type runPolicy int

const (
	runInOrder runPolicy = iota
	runImmediately
	runAfter
	runIdle
)

type OpResult int

const (
	OpResultDone OpResult = iota
	OpResultRetry
	OpResultRetryAfter
)

type Result struct {
	Result OpResult
	After  time.Duration
}

type ExecuteFn func(ctx context.Context) Result

// Task is a unit of background work. Group names let related tasks be
// cancelled together, e.g. all tasks of an abandoned scan.
type Task struct {
	Group string
	Fn    ExecuteFn

	run runPolicy
	dur time.Duration

	timeout time.Duration

	scheduledAt time.Time
}

// Immediately puts the task at the head of the queue.
func (t *Task) Immediately() *Task {
	t.run = runImmediately
	return t
}

// After delays the task by d.
func (t *Task) After(d time.Duration) *Task {
	t.run = runAfter
	t.dur = d
	return t
}

// WithTimeout bounds a single execution of the task.
func (t *Task) WithTimeout(timeout time.Duration) *Task {
	t.timeout = timeout
	return t
}

// WhenIdle runs the task only when nothing else is queued. Thumbnail
// pre-warming goes here.
func (t *Task) WhenIdle() *Task {
	t.run = runIdle
	return t
}
