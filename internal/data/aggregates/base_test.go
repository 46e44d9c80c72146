package aggregates

import (
	"context"
	"errors"
	"testing"
	"time"

	domainagg "github.com/yungbote/quizprogress-backend/internal/domain/aggregates"
	"github.com/yungbote/quizprogress-backend/internal/platform/dbctx"
)

// inline runs the body without a database.
var inline = TxRunnerFunc(func(ctx context.Context, fn func(dbctx.Context) error) error {
	return fn(dbctx.Context{Ctx: ctx})
})

type hookEvents struct {
	statuses  []string
	conflicts []string
	retries   []string
}

func (h *hookEvents) ObserveOperation(_ string, status string, _ time.Duration) {
	h.statuses = append(h.statuses, status)
}
func (h *hookEvents) IncConflict(name string) { h.conflicts = append(h.conflicts, name) }
func (h *hookEvents) IncRetry(name string)    { h.retries = append(h.retries, name) }

func TestExecuteWriteReportsOutcome(t *testing.T) {
	cases := []struct {
		name      string
		body      error
		want      domainagg.ErrorCode
		conflicts int
		retries   int
	}{
		{name: "success"},
		{name: "invariant", body: InvariantError("ledger out of order"), want: domainagg.CodeInvariantViolation},
		{name: "conflict", body: ConflictError("stale version"), want: domainagg.CodeConflict, conflicts: 1},
		{name: "retryable", body: RetryableError("lock wait"), want: domainagg.CodeRetryable, retries: 1},
		{name: "unknown", body: errors.New("boom"), want: domainagg.CodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hooks := &hookEvents{}
			err := executeWrite(context.Background(), BaseDeps{Runner: inline, Hooks: hooks}, "Progress.test."+tc.name,
				func(dbctx.Context) error { return tc.body })

			wantStatus := "success"
			if tc.want != "" {
				wantStatus = string(tc.want)
				if !domainagg.IsCode(err, tc.want) {
					t.Fatalf("want %s, got %v", tc.want, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if len(hooks.statuses) != 1 || hooks.statuses[0] != wantStatus {
				t.Fatalf("statuses: %v", hooks.statuses)
			}
			if len(hooks.conflicts) != tc.conflicts || len(hooks.retries) != tc.retries {
				t.Fatalf("conflicts=%v retries=%v", hooks.conflicts, hooks.retries)
			}
		})
	}
}

func TestExecuteWriteDefaultsOpName(t *testing.T) {
	hooks := &hookEvents{}
	_ = executeWrite(context.Background(), BaseDeps{Runner: inline, Hooks: hooks}, "  ",
		func(dbctx.Context) error { return ConflictError("x") })
	if len(hooks.conflicts) != 1 || hooks.conflicts[0] != "aggregate.write" {
		t.Fatalf("conflicts: %v", hooks.conflicts)
	}
}

func TestStatusOf(t *testing.T) {
	cases := map[string]error{
		"success":                         nil,
		string(domainagg.CodeUnavailable): context.DeadlineExceeded,
		string(domainagg.CodeCanceled):    context.Canceled,
		string(domainagg.CodeConflict):    ConflictError("x"),
	}
	for want, err := range cases {
		if got := statusOf(err); got != want {
			t.Fatalf("statusOf(%v) = %s, want %s", err, got, want)
		}
	}
}

func TestExecuteReadPassesCodedErrors(t *testing.T) {
	hooks := &hookEvents{}
	err := executeRead(context.Background(), BaseDeps{Hooks: hooks}, "Progress.test.read", func(dbctx.Context) error {
		return domainagg.Errorf(domainagg.CodeNotFound, "Progress.test.read", "user %s", "u1")
	})
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
	if len(hooks.statuses) != 1 || hooks.statuses[0] != string(domainagg.CodeNotFound) {
		t.Fatalf("statuses: %v", hooks.statuses)
	}
}

func TestExecuteReadSkipsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := executeRead(ctx, BaseDeps{}, "Progress.test.canceled", func(dbctx.Context) error {
		called = true
		return nil
	})
	if called {
		t.Fatalf("read ran on a canceled context")
	}
	if !domainagg.IsCode(err, domainagg.CodeCanceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}

func TestGormTxRunnerNilDB(t *testing.T) {
	err := NewGormTxRunner(nil).InTx(context.Background(), func(dbctx.Context) error { return nil })
	if !domainagg.IsCode(err, domainagg.CodeInternal) {
		t.Fatalf("expected internal, got %v", err)
	}
}
