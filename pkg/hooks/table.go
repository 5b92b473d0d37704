package hooks

import (
	"context"
	"sort"

	"github.com/portagekit/portage/pkg/logger"
)

// Rule is one compiled dispatch rule: a matcher plus the ordered command
// lines that run when it matches.
type Rule struct {
	Event    Event
	Matcher  Matcher
	Commands []CommandSpec
}

// DispatchTable holds the compiled rules indexed by host dispatch channel, in
// declaration order (project-root rules before user-root rules).
type DispatchTable struct {
	rules map[HostPhase][]Rule
}

// NewDispatchTable returns an empty table.
func NewDispatchTable() *DispatchTable {
	return &DispatchTable{rules: make(map[HostPhase][]Rule)}
}

// Rules returns the rules bound to a host phase, in declaration order.
func (t *DispatchTable) Rules(phase HostPhase) []Rule {
	return t.rules[phase]
}

// HasRules reports whether the table holds any rules at all.
func (t *DispatchTable) HasRules() bool {
	for _, rules := range t.rules {
		if len(rules) > 0 {
			return true
		}
	}
	return false
}

// BuildTable compiles the settings documents at the given paths into a
// dispatch table. Paths are processed in order, so earlier documents
// (project root) take declaration-order precedence over later ones. A
// malformed matcher group is skipped with a logged warning; an unreadable
// document fails the whole build so a reload can keep the previous table.
func BuildTable(ctx context.Context, paths []string, eventMap map[Event]HostPhase) (*DispatchTable, error) {
	if eventMap == nil {
		eventMap = DefaultEventMap()
	}

	table := NewDispatchTable()
	for _, path := range paths {
		settings, err := LoadSettings(path)
		if err != nil {
			return nil, err
		}
		table.addSettings(ctx, path, settings, eventMap)
	}
	return table, nil
}

// eventOrder fixes the iteration order over a settings document's events.
// Several source events can collapse onto one host phase, so a stable order
// here keeps the compiled rule order identical across rebuilds.
var eventOrder = []Event{
	EventPreToolUse,
	EventPostToolUse,
	EventStop,
	EventSubagentStop,
	EventSessionEnd,
	EventUserPromptSubmit,
	EventNotification,
}

// orderedEvents returns the document's events in eventOrder, followed by any
// unrecognized events sorted by name.
func orderedEvents(hooks map[Event][]MatcherGroup) []Event {
	recognized := make(map[Event]bool, len(eventOrder))
	events := make([]Event, 0, len(hooks))
	for _, event := range eventOrder {
		recognized[event] = true
		if _, present := hooks[event]; present {
			events = append(events, event)
		}
	}

	var extra []Event
	for event := range hooks {
		if !recognized[event] {
			extra = append(extra, event)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })

	return append(events, extra...)
}

func (t *DispatchTable) addSettings(ctx context.Context, path string, settings *Settings, eventMap map[Event]HostPhase) {
	log := logger.G(ctx).WithField("settings", path)

	for _, event := range orderedEvents(settings.Hooks) {
		groups := settings.Hooks[event]
		phase, mapped := eventMap[event]
		if !mapped {
			log.WithField("event", string(event)).Debug("no host phase for event, skipping its rules")
			continue
		}

		for _, group := range groups {
			matcher, err := CompileMatcher(group.Matcher)
			if err != nil {
				log.WithError(err).WithField("event", string(event)).Warn("skipping hook group with invalid matcher")
				continue
			}

			commands := make([]CommandSpec, 0, len(group.Hooks))
			for _, spec := range group.Hooks {
				if spec.Type != "" && spec.Type != "command" {
					log.WithField("type", spec.Type).Warn("skipping unsupported hook type")
					continue
				}
				if spec.Command == "" {
					log.WithField("event", string(event)).Warn("skipping hook entry with empty command")
					continue
				}
				commands = append(commands, spec)
			}
			if len(commands) == 0 {
				continue
			}

			t.rules[phase] = append(t.rules[phase], Rule{
				Event:    event,
				Matcher:  matcher,
				Commands: commands,
			})
		}
	}
}
