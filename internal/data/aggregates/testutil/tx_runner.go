package testutil

import (
	"context"
	"sync"

	"github.com/yungbote/lecturegate-backend/internal/data/aggregates"
	"github.com/yungbote/lecturegate-backend/internal/platform/dbctx"
)

// InjectedTxRunner runs aggregate bodies without a real transaction and lets
// tests fail the begin, the body, or the commit.
type InjectedTxRunner struct {
	mu sync.Mutex

	FailBegin      error
	FailBeforeBody error
	FailCommit     error

	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) bump(counter *int) {
	r.mu.Lock()
	*counter++
	r.mu.Unlock()
}

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.BeginCalls++
	failBegin, failBeforeBody, failCommit := r.FailBegin, r.FailBeforeBody, r.FailCommit
	r.mu.Unlock()

	if failBegin != nil {
		return failBegin
	}
	if failBeforeBody != nil {
		r.bump(&r.RollbackCalls)
		return failBeforeBody
	}
	if fn != nil {
		if err := fn(dbctx.Context{Ctx: ctx}); err != nil {
			r.bump(&r.RollbackCalls)
			return err
		}
	}
	if failCommit != nil {
		r.bump(&r.RollbackCalls)
		return failCommit
	}
	r.bump(&r.CommitCalls)
	return nil
}
