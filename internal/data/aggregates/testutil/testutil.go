// Package testutil holds fakes for exercising aggregates without a real transaction manager.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/yungbote/quizprogress-backend/internal/data/aggregates"
	"github.com/yungbote/quizprogress-backend/internal/platform/dbctx"
)

// Hooks records every signal an aggregate emits.
type Hooks struct {
	mu        sync.Mutex
	statuses  map[string][]string
	conflicts map[string]int
	retries   map[string]int
}

var _ aggregates.Hooks = (*Hooks)(nil)

func (h *Hooks) ObserveOperation(name, status string, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.statuses == nil {
		h.statuses = map[string][]string{}
	}
	h.statuses[name] = append(h.statuses[name], status)
}

func (h *Hooks) IncConflict(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conflicts == nil {
		h.conflicts = map[string]int{}
	}
	h.conflicts[name]++
}

func (h *Hooks) IncRetry(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.retries == nil {
		h.retries = map[string]int{}
	}
	h.retries[name]++
}

// Statuses returns the observed statuses of op in call order.
func (h *Hooks) Statuses(op string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.statuses[op]...)
}

func (h *Hooks) Conflicts(op string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.conflicts[op]
}

func (h *Hooks) Retries(op string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.retries[op]
}

// FailingTxRunner refuses to open a transaction; the body never runs.
type FailingTxRunner struct {
	Err error

	mu    sync.Mutex
	calls int
}

var _ aggregates.TxRunner = (*FailingTxRunner)(nil)

func (r *FailingTxRunner) InTx(context.Context, func(dbctx.Context) error) error {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	return r.Err
}

func (r *FailingTxRunner) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}
