package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/portagekit/portage/pkg/logger"
)

// Exit codes with contractual meaning for blocking phases.
const (
	exitAllow = 0
	exitBlock = 2
)

// DefaultTimeout bounds each spawned hook command unless overridden.
const DefaultTimeout = 60 * time.Second

// Payload is written as a single JSON object to a spawned command's stdin.
type Payload struct {
	SessionID     string          `json:"session_id"`
	HookEventName Event           `json:"hook_event_name"`
	ToolName      string          `json:"tool_name,omitempty"`
	ToolInput     json.RawMessage `json:"tool_input,omitempty"`
	ToolOutput    json.RawMessage `json:"tool_output,omitempty"`
	CWD           string          `json:"cwd,omitempty"`
}

// Invocation carries the context of one tool call through hook dispatch.
type Invocation struct {
	SessionID  string
	ToolName   string
	ToolInput  json.RawMessage
	ToolOutput json.RawMessage
	CWD        string
}

// Decision is the outcome of a blocking dispatch pass.
type Decision int

// Decisions.
const (
	DecisionAllow Decision = iota
	DecisionBlock
)

// PreResult is the outcome of pre-invocation dispatch. On DecisionBlock,
// Reason carries the blocking command's error output.
type PreResult struct {
	Decision Decision
	Reason   string
}

// Blocked reports whether the invocation must not proceed.
func (r *PreResult) Blocked() bool {
	return r.Decision == DecisionBlock
}

// Executor dispatches hook commands against a table.
type Executor struct {
	table   *DispatchTable
	timeout time.Duration
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithTimeout sets the per-command default timeout. Zero disables the bound.
func WithTimeout(timeout time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.timeout = timeout
	}
}

// NewExecutor creates an Executor over the table.
func NewExecutor(table *DispatchTable, opts ...ExecutorOption) *Executor {
	e := &Executor{table: table, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Table returns the executor's dispatch table.
func (e *Executor) Table() *DispatchTable {
	return e.table
}

// RunPre evaluates the pre-invocation rules for the tool, in declaration
// order, short-circuiting on the first blocking result. Exit status 0 allows
// and continues, 2 blocks with the command's stderr as the reason, anything
// else logs a warning and continues.
func (e *Executor) RunPre(ctx context.Context, inv Invocation) *PreResult {
	for _, rule := range e.table.Rules(HostPreToolCall) {
		if !rule.Matcher.Matches(inv.ToolName) {
			continue
		}
		for _, spec := range rule.Commands {
			outcome := e.runCommand(ctx, spec, e.payload(rule.Event, inv))
			if outcome.blocked {
				return &PreResult{Decision: DecisionBlock, Reason: outcome.reason}
			}
		}
	}
	return &PreResult{Decision: DecisionAllow}
}

// RunPost evaluates the post-invocation rules. Post-hooks cannot block; exit
// codes are informational only.
func (e *Executor) RunPost(ctx context.Context, inv Invocation) {
	for _, rule := range e.table.Rules(HostPostToolCall) {
		if !rule.Matcher.Matches(inv.ToolName) {
			continue
		}
		for _, spec := range rule.Commands {
			e.runCommand(ctx, spec, e.payload(rule.Event, inv))
		}
	}
}

// RunIdle evaluates the generic idle-event rules. Matchers are ignored for
// non-tool events; every rule's commands run.
func (e *Executor) RunIdle(ctx context.Context, sessionID, cwd string) {
	for _, rule := range e.table.Rules(HostSessionIdle) {
		for _, spec := range rule.Commands {
			e.runCommand(ctx, spec, Payload{
				SessionID:     sessionID,
				HookEventName: rule.Event,
				CWD:           cwd,
			})
		}
	}
}

func (e *Executor) payload(event Event, inv Invocation) Payload {
	return Payload{
		SessionID:     inv.SessionID,
		HookEventName: event,
		ToolName:      inv.ToolName,
		ToolInput:     inv.ToolInput,
		ToolOutput:    inv.ToolOutput,
		CWD:           inv.CWD,
	}
}

type commandOutcome struct {
	blocked bool
	reason  string
}

// runCommand spawns one shell command with the payload on stdin and maps its
// exit status onto the blocking contract. Spawn failures are treated as
// allow so one broken hook cannot freeze all tool use.
func (e *Executor) runCommand(ctx context.Context, spec CommandSpec, payload Payload) commandOutcome {
	log := logger.G(ctx).WithField("command", spec.Command)

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		log.WithError(err).Warn("failed to marshal hook payload, allowing")
		return commandOutcome{}
	}

	timeout := e.timeout
	if spec.TimeoutSeconds != nil {
		timeout = time.Duration(*spec.TimeoutSeconds) * time.Second
	}
	cancel := func() {}
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", spec.Command)
	cmd.Stdin = bytes.NewReader(payloadBytes)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	if err == nil {
		return commandOutcome{}
	}

	if ctx.Err() == context.DeadlineExceeded {
		log.WithField("timeout", timeout.String()).Warn("hook command timed out, allowing")
		return commandOutcome{}
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		// Spawn failure: missing interpreter, permission denied.
		log.WithError(err).Warn("hook command failed to spawn, allowing")
		return commandOutcome{}
	}

	switch code := exitErr.ExitCode(); code {
	case exitBlock:
		return commandOutcome{blocked: true, reason: strings.TrimSpace(stderr.String())}
	default:
		log.WithField("exit_code", code).Warn("hook command exited non-zero, allowing")
		return commandOutcome{}
	}
}
