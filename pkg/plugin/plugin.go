// Package plugin ties discovery, conversion, synchronization, hook dispatch
// and hot reload together behind the surface the target host integrates
// with: a tool map, two phase-bound tool-call handlers, and one generic
// event handler.
package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/portagekit/portage/pkg/config"
	"github.com/portagekit/portage/pkg/discovery"
	"github.com/portagekit/portage/pkg/hooks"
	"github.com/portagekit/portage/pkg/hostsync"
	"github.com/portagekit/portage/pkg/logger"
	"github.com/portagekit/portage/pkg/skills"
	"github.com/portagekit/portage/pkg/watcher"
)

// SessionIdleEvent is the generic host event the collapsed session-end-like
// source events dispatch on.
const SessionIdleEvent = string(hooks.HostSessionIdle)

// BlockedError reports a tool invocation aborted by a pre-invocation hook.
type BlockedError struct {
	ToolName string
	Reason   string
}

func (e *BlockedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("tool %q blocked by hook", e.ToolName)
	}
	return fmt.Sprintf("tool %q blocked by hook: %s", e.ToolName, e.Reason)
}

// Plugin is one running bridge instance.
type Plugin struct {
	cfg       *config.Config
	disc      *discovery.Discovery
	loader    *skills.Loader
	syncer    *hostsync.Synchronizer
	state     *State
	summary   discovery.Summary
	sessionID string
	cwd       string
}

// New initializes a plugin: discovers assets under the configured roots,
// runs every converter whose kind is present, and returns the live instance.
// Per-kind conversion failures degrade to "that kind is unavailable" rather
// than failing initialization.
func New(ctx context.Context, cfg *config.Config) (*Plugin, error) {
	disc, err := discovery.NewDiscovery(discovery.WithRoots(cfg.ProjectRoot, cfg.UserRoot))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create discovery")
	}

	cwd, err := os.Getwd()
	if err != nil {
		logger.G(ctx).WithError(err).Warn("failed to resolve working directory")
	}

	p := &Plugin{
		cfg:       cfg,
		disc:      disc,
		loader:    skills.NewLoader(disc, skills.WithAllowlist(cfg.Skills.Allowed)),
		syncer:    hostsync.NewSynchronizer(disc, cfg.HostDir),
		state:     NewState(),
		summary:   disc.Summarize(),
		sessionID: uuid.NewString(),
		cwd:       cwd,
	}

	// The presence summary is an optimization: absent kinds skip converter
	// initialization entirely.
	if p.summary.HasSkills && cfg.Skills.Enabled {
		if err := p.reloadSkills(ctx); err != nil {
			logger.G(ctx).WithError(err).Warn("skill conversion unavailable")
		}
	}
	if p.summary.HasAgents {
		if err := p.reloadAgents(ctx); err != nil {
			logger.G(ctx).WithError(err).Warn("some agents failed to synchronize")
		}
	}
	if p.summary.HasCommands {
		if err := p.reloadCommands(ctx); err != nil {
			logger.G(ctx).WithError(err).Warn("some commands failed to synchronize")
		}
	}
	if p.summary.HasHooks && cfg.Hooks.Enabled {
		if err := p.reloadHooks(ctx); err != nil {
			logger.G(ctx).WithError(err).Warn("hook dispatch unavailable")
		}
	}

	return p, nil
}

// SessionID returns the plugin instance's session identifier.
func (p *Plugin) SessionID() string {
	return p.sessionID
}

// Summary returns the asset presence summary taken at initialization.
func (p *Plugin) Summary() discovery.Summary {
	return p.summary
}

// Tools returns the current skill-derived tool map.
func (p *Plugin) Tools() map[string]skills.ToolDef {
	return p.state.Tools()
}

// PreToolCall is the host's pre-invocation handler. A nil return allows the
// tool to run; a *BlockedError aborts the invocation with the hook command's
// error output as the failure reason.
func (p *Plugin) PreToolCall(ctx context.Context, toolName string, toolInput json.RawMessage) error {
	exec := p.state.Executor()
	if exec == nil {
		return nil
	}

	result := exec.RunPre(ctx, p.invocation(toolName, toolInput))
	if result.Blocked() {
		return &BlockedError{ToolName: toolName, Reason: result.Reason}
	}
	return nil
}

// PostToolCall is the host's post-invocation handler. Post-hooks cannot
// block; their exit codes are informational only.
func (p *Plugin) PostToolCall(ctx context.Context, toolName string, toolInput, toolOutput json.RawMessage) {
	exec := p.state.Executor()
	if exec == nil {
		return
	}

	inv := p.invocation(toolName, toolInput)
	inv.ToolOutput = toolOutput
	exec.RunPost(ctx, inv)
}

// HandleEvent is the host's generic event handler. Only the idle event has
// rules bound to it; everything else is ignored.
func (p *Plugin) HandleEvent(ctx context.Context, event string) {
	if event != SessionIdleEvent {
		return
	}
	exec := p.state.Executor()
	if exec == nil {
		return
	}
	exec.RunIdle(ctx, p.sessionID, p.cwd)
}

// InvokeTool runs one tool through the full invocation pipeline: pre-hooks,
// the tool handler, then post-hooks. A blocked invocation returns
// *BlockedError and the tool never executes.
func (p *Plugin) InvokeTool(ctx context.Context, toolName string, toolInput json.RawMessage) (string, error) {
	def, exists := p.state.Tools()[toolName]
	if !exists {
		return "", errors.Errorf("unknown tool %q", toolName)
	}

	exec := p.state.Executor()
	if exec == nil {
		return def.Handler(ctx, toolInput)
	}

	gate := hooks.NewGate(exec, p.invocation(toolName, toolInput))

	result, err := gate.EvaluatePre(ctx)
	if err != nil {
		return "", err
	}
	if result.Blocked() {
		return "", &BlockedError{ToolName: toolName, Reason: result.Reason}
	}

	output, err := def.Handler(ctx, toolInput)
	if err != nil {
		return "", err
	}

	outputJSON, merr := json.Marshal(output)
	if merr != nil {
		outputJSON = nil
	}
	if err := gate.EvaluatePost(ctx, outputJSON); err != nil {
		logger.G(ctx).WithError(err).Warn("post-hook evaluation failed")
	}

	return output, nil
}

// Watch runs the reload coordinator until the context is cancelled,
// re-invoking exactly the affected converter when source files change.
func (p *Plugin) Watch(ctx context.Context) error {
	reloads := map[discovery.Kind]watcher.ReloadFunc{
		discovery.KindAgent:   p.reloadAgents,
		discovery.KindCommand: p.reloadCommands,
	}
	if p.cfg.Skills.Enabled {
		reloads[discovery.KindSkill] = p.reloadSkills
	}
	if p.cfg.Hooks.Enabled {
		reloads[discovery.KindHook] = p.reloadHooks
	}

	coord := watcher.NewCoordinator(p.disc, reloads,
		watcher.WithDebounce(time.Duration(p.cfg.Watch.DebounceMs)*time.Millisecond))
	return coord.Run(ctx)
}

func (p *Plugin) invocation(toolName string, toolInput json.RawMessage) hooks.Invocation {
	return hooks.Invocation{
		SessionID: p.sessionID,
		ToolName:  toolName,
		ToolInput: toolInput,
		CWD:       p.cwd,
	}
}

// reloadSkills re-runs the skill converter end to end and replaces the tool
// map wholesale.
func (p *Plugin) reloadSkills(ctx context.Context) error {
	loaded := p.loader.Load(ctx)
	p.state.ReplaceSkills(loaded, skills.BuildTools(loaded))
	logger.G(ctx).WithField("skills", len(loaded)).Info("skill tools ready")
	return nil
}

// reloadAgents re-synchronizes persona descriptors into the host directory.
func (p *Plugin) reloadAgents(ctx context.Context) error {
	synced, err := p.syncer.SyncAgents(ctx)
	logger.G(ctx).WithField("agents", synced).Info("agents synchronized")
	return err
}

// reloadCommands re-synchronizes command templates into the host directory.
func (p *Plugin) reloadCommands(ctx context.Context) error {
	synced, err := p.syncer.SyncCommands(ctx)
	logger.G(ctx).WithField("commands", synced).Info("commands synchronized")
	return err
}

// reloadHooks re-parses the settings documents and rebuilds the dispatch
// table. On failure the previous executor stays in place.
func (p *Plugin) reloadHooks(ctx context.Context) error {
	paths := make([]string, 0, 2)
	for _, asset := range p.disc.Assets(discovery.KindHook) {
		paths = append(paths, asset.Path)
	}

	table, err := hooks.BuildTable(ctx, paths, p.eventMap())
	if err != nil {
		return err
	}

	timeout := time.Duration(p.cfg.Hooks.TimeoutSeconds) * time.Second
	p.state.ReplaceExecutor(hooks.NewExecutor(table, hooks.WithTimeout(timeout)))
	logger.G(ctx).Info("hook dispatch table ready")
	return nil
}

// eventMap merges configured overrides over the default source-event to
// host-phase mapping.
func (p *Plugin) eventMap() map[hooks.Event]hooks.HostPhase {
	mapped := hooks.DefaultEventMap()
	for event, phase := range p.cfg.Hooks.EventMap {
		mapped[hooks.Event(event)] = hooks.HostPhase(phase)
	}
	return mapped
}
