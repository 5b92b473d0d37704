// Package hooks turns a declarative lifecycle-hooks settings document into
// live dispatch handlers. Rules are grouped by source lifecycle event; each
// rule binds a tool-name matcher to one or more shell command lines. At
// dispatch time matching commands are spawned with a JSON payload on stdin,
// and their exit status decides whether the tool invocation proceeds.
package hooks

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Event is a source-side lifecycle event name as it appears in the settings
// document.
type Event string

// Source lifecycle events recognized in settings.
const (
	EventPreToolUse       Event = "PreToolUse"
	EventPostToolUse      Event = "PostToolUse"
	EventStop             Event = "Stop"
	EventSubagentStop     Event = "SubagentStop"
	EventSessionEnd       Event = "SessionEnd"
	EventUserPromptSubmit Event = "UserPromptSubmit"
	EventNotification     Event = "Notification"
)

// HostPhase is a target-side dispatch channel: the two tool-call phases the
// host exposes, plus the generic idle event several source events collapse
// onto.
type HostPhase string

// Host dispatch channels.
const (
	HostPreToolCall  HostPhase = "tool.execute.before"
	HostPostToolCall HostPhase = "tool.execute.after"
	HostSessionIdle  HostPhase = "session.idle"
)

// DefaultEventMap is the built-in source-event to host-phase mapping. The
// collapse of Stop, SubagentStop and SessionEnd onto the single idle event is
// a lossy approximation; it can be overridden per event via configuration.
func DefaultEventMap() map[Event]HostPhase {
	return map[Event]HostPhase{
		EventPreToolUse:   HostPreToolCall,
		EventPostToolUse:  HostPostToolCall,
		EventStop:         HostSessionIdle,
		EventSubagentStop: HostSessionIdle,
		EventSessionEnd:   HostSessionIdle,
	}
}

// CommandSpec is one shell command line declared under a matcher group.
type CommandSpec struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	// TimeoutSeconds overrides the executor default for this command.
	TimeoutSeconds *int `json:"timeout,omitempty"`
}

// MatcherGroup binds a matcher pattern to its command list.
type MatcherGroup struct {
	Matcher string        `json:"matcher"`
	Hooks   []CommandSpec `json:"hooks"`
}

// Settings is the subset of the source settings document this system reads.
type Settings struct {
	Hooks map[Event][]MatcherGroup `json:"hooks"`
}

// LoadSettings reads and decodes one settings document.
func LoadSettings(path string) (*Settings, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read settings document")
	}

	var settings Settings
	if err := json.Unmarshal(content, &settings); err != nil {
		return nil, errors.Wrapf(err, "failed to decode settings document %s", path)
	}
	return &settings, nil
}
