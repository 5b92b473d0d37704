package hooks

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestTable(t *testing.T, settings string) *DispatchTable {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(settings), 0o644))
	table, err := BuildTable(context.Background(), []string{path}, nil)
	require.NoError(t, err)
	return table
}

func testInvocation(toolName string) Invocation {
	return Invocation{
		SessionID: "session-1",
		ToolName:  toolName,
		ToolInput: json.RawMessage(`{"command":"ls"}`),
		CWD:       "/tmp",
	}
}

func TestRunPre_ExitZeroAllows(t *testing.T) {
	table := buildTestTable(t, `{
		"hooks": {"PreToolUse": [{"matcher": "Bash", "hooks": [{"type": "command", "command": "exit 0"}]}]}
	}`)

	result := NewExecutor(table).RunPre(context.Background(), testInvocation("Bash"))
	assert.False(t, result.Blocked())
	assert.Empty(t, result.Reason)
}

func TestRunPre_ExitTwoBlocksWithStderr(t *testing.T) {
	table := buildTestTable(t, `{
		"hooks": {"PreToolUse": [{"matcher": "Bash", "hooks": [{"type": "command", "command": "echo 'rm is forbidden' >&2; exit 2"}]}]}
	}`)

	result := NewExecutor(table).RunPre(context.Background(), testInvocation("Bash"))
	assert.True(t, result.Blocked())
	assert.Equal(t, "rm is forbidden", result.Reason)
}

func TestRunPre_OtherExitCodesAllow(t *testing.T) {
	table := buildTestTable(t, `{
		"hooks": {"PreToolUse": [{"matcher": "Bash", "hooks": [{"type": "command", "command": "exit 7"}]}]}
	}`)

	result := NewExecutor(table).RunPre(context.Background(), testInvocation("Bash"))
	assert.False(t, result.Blocked())
}

func TestRunPre_SpawnFailureAllows(t *testing.T) {
	table := buildTestTable(t, `{
		"hooks": {"PreToolUse": [{"matcher": "Bash", "hooks": [{"type": "command", "command": "/no/such/binary-12345"}]}]}
	}`)

	result := NewExecutor(table).RunPre(context.Background(), testInvocation("Bash"))
	assert.False(t, result.Blocked())
}

func TestRunPre_NonMatchingRuleNeverRuns(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "ran")
	table := buildTestTable(t, `{
		"hooks": {"PreToolUse": [{"matcher": "Edit|Write", "hooks": [{"type": "command", "command": "touch `+marker+`"}]}]}
	}`)

	result := NewExecutor(table).RunPre(context.Background(), testInvocation("Bash"))
	assert.False(t, result.Blocked())
	_, err := os.Stat(marker)
	assert.True(t, os.IsNotExist(err))
}

func TestRunPre_BlockShortCircuits(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "ran")
	table := buildTestTable(t, `{
		"hooks": {"PreToolUse": [
			{"matcher": "*", "hooks": [{"type": "command", "command": "exit 2"}]},
			{"matcher": "*", "hooks": [{"type": "command", "command": "touch `+marker+`"}]}
		]}
	}`)

	result := NewExecutor(table).RunPre(context.Background(), testInvocation("Bash"))
	assert.True(t, result.Blocked())
	_, err := os.Stat(marker)
	assert.True(t, os.IsNotExist(err))
}

func TestRunPre_PayloadOnStdin(t *testing.T) {
	capture := filepath.Join(t.TempDir(), "payload.json")
	table := buildTestTable(t, `{
		"hooks": {"PreToolUse": [{"matcher": "Bash", "hooks": [{"type": "command", "command": "cat > `+capture+`"}]}]}
	}`)

	result := NewExecutor(table).RunPre(context.Background(), testInvocation("Bash"))
	require.False(t, result.Blocked())

	content, err := os.ReadFile(capture)
	require.NoError(t, err)

	var payload Payload
	require.NoError(t, json.Unmarshal(content, &payload))
	assert.Equal(t, "session-1", payload.SessionID)
	assert.Equal(t, EventPreToolUse, payload.HookEventName)
	assert.Equal(t, "Bash", payload.ToolName)
	assert.JSONEq(t, `{"command":"ls"}`, string(payload.ToolInput))
	assert.Equal(t, "/tmp", payload.CWD)
}

func TestRunPre_TimeoutAllows(t *testing.T) {
	table := buildTestTable(t, `{
		"hooks": {"PreToolUse": [{"matcher": "*", "hooks": [{"type": "command", "command": "sleep 5; exit 2"}]}]}
	}`)

	exec := NewExecutor(table, WithTimeout(50*time.Millisecond))
	start := time.Now()
	result := exec.RunPre(context.Background(), testInvocation("Bash"))
	assert.False(t, result.Blocked())
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestRunPost_ExitCodesInformationalOnly(t *testing.T) {
	capture := filepath.Join(t.TempDir(), "payload.json")
	table := buildTestTable(t, `{
		"hooks": {"PostToolUse": [{"matcher": "Bash", "hooks": [{"type": "command", "command": "cat > `+capture+`; exit 2"}]}]}
	}`)

	inv := testInvocation("Bash")
	inv.ToolOutput = json.RawMessage(`{"stdout":"done"}`)
	NewExecutor(table).RunPost(context.Background(), inv)

	content, err := os.ReadFile(capture)
	require.NoError(t, err)

	var payload Payload
	require.NoError(t, json.Unmarshal(content, &payload))
	assert.Equal(t, EventPostToolUse, payload.HookEventName)
	assert.JSONEq(t, `{"stdout":"done"}`, string(payload.ToolOutput))
}

func TestRunIdle_IgnoresMatchers(t *testing.T) {
	capture := filepath.Join(t.TempDir(), "payload.json")
	table := buildTestTable(t, `{
		"hooks": {"SessionEnd": [{"matcher": "NeverMatchesAnyTool", "hooks": [{"type": "command", "command": "cat > `+capture+`"}]}]}
	}`)

	NewExecutor(table).RunIdle(context.Background(), "session-1", "/tmp")

	content, err := os.ReadFile(capture)
	require.NoError(t, err)

	var payload Payload
	require.NoError(t, json.Unmarshal(content, &payload))
	assert.Equal(t, EventSessionEnd, payload.HookEventName)
	assert.Empty(t, payload.ToolName)
}

func TestCommandTimeoutOverride(t *testing.T) {
	table := buildTestTable(t, `{
		"hooks": {"PreToolUse": [{"matcher": "*", "hooks": [{"type": "command", "command": "sleep 5; exit 2", "timeout": 1}]}]}
	}`)

	start := time.Now()
	result := NewExecutor(table).RunPre(context.Background(), testInvocation("Bash"))
	assert.False(t, result.Blocked())
	assert.Less(t, time.Since(start), 4*time.Second)
}
