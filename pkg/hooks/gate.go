package hooks

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
)

// InvocationState tracks one tool invocation through its hook phases.
type InvocationState int

// The invocation state machine:
//
//	Pending -> EvaluatingPre -> Blocked (terminal)
//	                         -> Proceeding -> EvaluatingPost -> Done
const (
	StatePending InvocationState = iota
	StateEvaluatingPre
	StateBlocked
	StateProceeding
	StateEvaluatingPost
	StateDone
)

// String returns the state name.
func (s InvocationState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateEvaluatingPre:
		return "evaluating-pre"
	case StateBlocked:
		return "blocked"
	case StateProceeding:
		return "proceeding"
	case StateEvaluatingPost:
		return "evaluating-post"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Gate drives the hook phases of a single tool invocation with the strict
// ordering contract: pre-hooks fully evaluate before the tool runs,
// post-hooks only after it completes, and a block terminates the pipeline.
type Gate struct {
	exec  *Executor
	inv   Invocation
	state InvocationState
}

// NewGate creates a Gate for one invocation.
func NewGate(exec *Executor, inv Invocation) *Gate {
	return &Gate{exec: exec, inv: inv, state: StatePending}
}

// State returns the current invocation state.
func (g *Gate) State() InvocationState {
	return g.state
}

// EvaluatePre runs the pre-invocation rules. On a blocking result the gate
// transitions to Blocked, which is terminal: the underlying tool must never
// execute.
func (g *Gate) EvaluatePre(ctx context.Context) (*PreResult, error) {
	if g.state != StatePending {
		return nil, errors.Errorf("pre-hooks already evaluated (state %s)", g.state)
	}

	g.state = StateEvaluatingPre
	result := g.exec.RunPre(ctx, g.inv)
	if result.Blocked() {
		g.state = StateBlocked
	} else {
		g.state = StateProceeding
	}
	return result, nil
}

// EvaluatePost runs the post-invocation rules with the tool's output
// attached. It is only legal after an allowing pre-evaluation.
func (g *Gate) EvaluatePost(ctx context.Context, toolOutput json.RawMessage) error {
	if g.state != StateProceeding {
		return errors.Errorf("post-hooks require a proceeding invocation (state %s)", g.state)
	}

	g.state = StateEvaluatingPost
	inv := g.inv
	inv.ToolOutput = toolOutput
	g.exec.RunPost(ctx, inv)
	g.state = StateDone
	return nil
}
