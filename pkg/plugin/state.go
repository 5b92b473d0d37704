package plugin

import (
	"sync"

	"github.com/portagekit/portage/pkg/hooks"
	"github.com/portagekit/portage/pkg/skills"
)

// State is the aggregate owned by one plugin instance: the skill-derived
// tool map and the built hook executor. Each field is replaced wholesale by
// single assignment at the end of a successful reload, never mutated in
// place, so readers in flight observe either the fully-old or fully-new
// value. Stale references held by in-flight host calls are an accepted race.
type State struct {
	mu       sync.RWMutex
	skills   map[string]*skills.Skill
	tools    map[string]skills.ToolDef
	executor *hooks.Executor
}

// NewState returns an empty state.
func NewState() *State {
	return &State{
		skills: map[string]*skills.Skill{},
		tools:  map[string]skills.ToolDef{},
	}
}

// Skills returns the current skill set.
func (s *State) Skills() map[string]*skills.Skill {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.skills
}

// Tools returns the current tool map.
func (s *State) Tools() map[string]skills.ToolDef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tools
}

// Executor returns the current hook executor, or nil when no hooks are
// configured.
func (s *State) Executor() *hooks.Executor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.executor
}

// ReplaceSkills swaps in a freshly converted skill set and tool map.
func (s *State) ReplaceSkills(loaded map[string]*skills.Skill, tools map[string]skills.ToolDef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skills = loaded
	s.tools = tools
}

// ReplaceExecutor swaps in a freshly built hook executor.
func (s *State) ReplaceExecutor(executor *hooks.Executor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.executor = executor
}
