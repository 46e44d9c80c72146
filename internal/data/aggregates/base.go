package aggregates

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	domainagg "github.com/yungbote/quizprogress-backend/internal/domain/aggregates"
	"github.com/yungbote/quizprogress-backend/internal/platform/dbctx"
	"github.com/yungbote/quizprogress-backend/internal/platform/logger"
)

// BaseDeps is shared by every aggregate. Zero fields get working defaults.
type BaseDeps struct {
	DB     *gorm.DB
	Log    *logger.Logger
	Runner TxRunner
	Hooks  Hooks
	Guard  VersionGuard
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.Guard.db == nil {
		d.Guard = NewVersionGuard(d.DB)
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	return d
}

type access int

const (
	readAccess access = iota
	writeAccess
)

func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	return execute(ctx, deps, writeAccess, op, fn)
}

// executeRead runs fn without a transaction but reports through the same hooks.
func executeRead(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	return execute(ctx, deps, readAccess, op, fn)
}

func execute(ctx context.Context, deps BaseDeps, mode access, op string, fn func(dbc dbctx.Context) error) error {
	deps = deps.withDefaults()
	if op = strings.TrimSpace(op); op == "" {
		op = "aggregate.read"
		if mode == writeAccess {
			op = "aggregate.write"
		}
	}

	start := time.Now()
	var err error
	switch {
	case mode == writeAccess:
		err = deps.Runner.InTx(ctx, fn)
	case ctx.Err() != nil:
		err = ctx.Err()
	default:
		err = fn(dbctx.Context{Ctx: ctx})
	}

	mapped := MapError(op, err)
	status := statusOf(mapped)
	switch domainagg.CodeOf(mapped) {
	case domainagg.CodeConflict:
		deps.Hooks.IncConflict(op)
	case domainagg.CodeRetryable:
		deps.Hooks.IncRetry(op)
	}
	deps.Hooks.ObserveOperation(op, status, time.Since(start))
	return mapped
}

// statusOf is the hook status label for err: "success" or its error code.
func statusOf(err error) string {
	if err == nil {
		return "success"
	}
	if code := domainagg.CodeOf(MapError("aggregate.status", err)); code != "" {
		return string(code)
	}
	return "failure"
}
