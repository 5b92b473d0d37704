package hooks

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_AllowedInvocation(t *testing.T) {
	table := buildTestTable(t, `{
		"hooks": {
			"PreToolUse": [{"matcher": "*", "hooks": [{"type": "command", "command": "exit 0"}]}],
			"PostToolUse": [{"matcher": "*", "hooks": [{"type": "command", "command": "exit 0"}]}]
		}
	}`)

	gate := NewGate(NewExecutor(table), testInvocation("Bash"))
	assert.Equal(t, StatePending, gate.State())

	result, err := gate.EvaluatePre(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Blocked())
	assert.Equal(t, StateProceeding, gate.State())

	require.NoError(t, gate.EvaluatePost(context.Background(), json.RawMessage(`{"ok":true}`)))
	assert.Equal(t, StateDone, gate.State())
}

func TestGate_BlockedIsTerminal(t *testing.T) {
	table := buildTestTable(t, `{
		"hooks": {"PreToolUse": [{"matcher": "*", "hooks": [{"type": "command", "command": "echo no >&2; exit 2"}]}]}
	}`)

	gate := NewGate(NewExecutor(table), testInvocation("Bash"))
	result, err := gate.EvaluatePre(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Blocked())
	assert.Equal(t, "no", result.Reason)
	assert.Equal(t, StateBlocked, gate.State())

	// Post-hooks must never run for a blocked invocation.
	err = gate.EvaluatePost(context.Background(), nil)
	assert.Error(t, err)
	assert.Equal(t, StateBlocked, gate.State())
}

func TestGate_PreCannotRunTwice(t *testing.T) {
	gate := NewGate(NewExecutor(NewDispatchTable()), testInvocation("Bash"))

	_, err := gate.EvaluatePre(context.Background())
	require.NoError(t, err)

	_, err = gate.EvaluatePre(context.Background())
	assert.Error(t, err)
}

func TestGate_PostRequiresPre(t *testing.T) {
	gate := NewGate(NewExecutor(NewDispatchTable()), testInvocation("Bash"))

	err := gate.EvaluatePost(context.Background(), nil)
	assert.Error(t, err)
	assert.Equal(t, StatePending, gate.State())
}

func TestGate_PostCarriesToolOutput(t *testing.T) {
	capture := filepath.Join(t.TempDir(), "payload.json")
	table := buildTestTable(t, `{
		"hooks": {"PostToolUse": [{"matcher": "*", "hooks": [{"type": "command", "command": "cat > `+capture+`"}]}]}
	}`)

	gate := NewGate(NewExecutor(table), testInvocation("Bash"))
	_, err := gate.EvaluatePre(context.Background())
	require.NoError(t, err)
	require.NoError(t, gate.EvaluatePost(context.Background(), json.RawMessage(`{"stdout":"hello"}`)))

	content, err := os.ReadFile(capture)
	require.NoError(t, err)

	var payload Payload
	require.NoError(t, json.Unmarshal(content, &payload))
	assert.JSONEq(t, `{"stdout":"hello"}`, string(payload.ToolOutput))
}

func TestInvocationState_String(t *testing.T) {
	assert.Equal(t, "pending", StatePending.String())
	assert.Equal(t, "blocked", StateBlocked.String())
	assert.Equal(t, "done", StateDone.String())
	assert.Equal(t, "unknown", InvocationState(99).String())
}
