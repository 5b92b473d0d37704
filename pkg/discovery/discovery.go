// Package discovery walks the two source roots (project-scoped and
// user-scoped) and produces ordered asset records per kind. A name present
// under the project root shadows the same name under the user root. Missing
// root directories are not an error; they contribute zero assets.
package discovery

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"

	"github.com/portagekit/portage/pkg/utils"
)

// Kind identifies one of the four source asset kinds.
type Kind string

// The closed set of asset kinds.
const (
	KindSkill   Kind = "skill"
	KindAgent   Kind = "agent"
	KindCommand Kind = "command"
	KindHook    Kind = "hook"
)

// Kinds returns every asset kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindSkill, KindAgent, KindCommand, KindHook}
}

// Spec describes how a kind's assets are laid out under a root.
type Spec struct {
	Kind Kind
	// Subdir is the kind's subtree under each root; empty for kinds that
	// live in a single settings document at the root.
	Subdir string
	// PerDirectory marks kinds packaged as one directory per asset rather
	// than one file per asset.
	PerDirectory bool
	// SettingsFile names the single declaration document for the kind.
	SettingsFile string
}

var kindSpecs = map[Kind]Spec{
	KindSkill:   {Kind: KindSkill, Subdir: "skills", PerDirectory: true},
	KindAgent:   {Kind: KindAgent, Subdir: "agents"},
	KindCommand: {Kind: KindCommand, Subdir: "commands"},
	KindHook:    {Kind: KindHook, SettingsFile: "settings.json"},
}

// Spec returns the layout description for the kind.
func (k Kind) Spec() Spec {
	return kindSpecs[k]
}

// Root distinguishes which scope an asset was discovered under.
type Root string

// Root scopes, in precedence order.
const (
	RootProject Root = "project"
	RootUser    Root = "user"
)

// Asset is one discovered asset record.
type Asset struct {
	Kind Kind
	Name string
	Path string
	Root Root
}

// Summary reports which kinds have at least one asset. The plugin uses it to
// skip initializing converters for absent kinds.
type Summary struct {
	HasSkills   bool
	HasAgents   bool
	HasCommands bool
	HasHooks    bool
}

// Discovery scans a project root and a user root for assets.
type Discovery struct {
	projectRoot string
	userRoot    string
}

// Option configures a Discovery.
type Option func(*Discovery) error

// WithRoots sets the project and user roots explicitly.
func WithRoots(projectRoot, userRoot string) Option {
	return func(d *Discovery) error {
		d.projectRoot = projectRoot
		d.userRoot = userRoot
		return nil
	}
}

// WithDefaultRoots uses ./.claude and ~/.claude.
func WithDefaultRoots() Option {
	return func(d *Discovery) error {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return errors.Wrap(err, "failed to get user home directory")
		}
		d.projectRoot = "./.claude"
		d.userRoot = filepath.Join(homeDir, ".claude")
		return nil
	}
}

// NewDiscovery creates a Discovery. Without options it scans the default
// roots.
func NewDiscovery(opts ...Option) (*Discovery, error) {
	d := &Discovery{}

	if len(opts) == 0 {
		opts = []Option{WithDefaultRoots()}
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// Roots returns the project and user roots, in precedence order.
func (d *Discovery) Roots() []string {
	return []string{d.projectRoot, d.userRoot}
}

// Assets lists the kind's assets across both roots, shadowing resolved,
// sorted by name.
func (d *Discovery) Assets(kind Kind) []Asset {
	spec := kind.Spec()
	if spec.SettingsFile != "" {
		return d.settingsAssets(spec)
	}

	seen := make(map[string]bool)
	var assets []Asset

	for _, scope := range []struct {
		root string
		name Root
	}{
		{d.projectRoot, RootProject},
		{d.userRoot, RootUser},
	} {
		dir := filepath.Join(scope.root, spec.Subdir)
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}

		for _, entry := range entries {
			name := entry.Name()
			if spec.PerDirectory {
				if !entry.IsDir() {
					continue
				}
			} else {
				if entry.IsDir() || !strings.HasSuffix(name, ".md") {
					continue
				}
				name = utils.BaseName(name)
			}

			if seen[name] {
				continue
			}
			seen[name] = true

			assets = append(assets, Asset{
				Kind: kind,
				Name: name,
				Path: filepath.Join(dir, entry.Name()),
				Root: scope.name,
			})
		}
	}

	sort.Slice(assets, func(i, j int) bool { return assets[i].Name < assets[j].Name })
	return assets
}

// settingsAssets returns one asset per existing settings document, project
// first.
func (d *Discovery) settingsAssets(spec Spec) []Asset {
	var assets []Asset
	for _, scope := range []struct {
		root string
		name Root
	}{
		{d.projectRoot, RootProject},
		{d.userRoot, RootUser},
	} {
		path := filepath.Join(scope.root, spec.SettingsFile)
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			continue
		}
		assets = append(assets, Asset{
			Kind: spec.Kind,
			Name: utils.BaseName(spec.SettingsFile),
			Path: path,
			Root: scope.name,
		})
	}
	return assets
}

// Summarize reports asset presence per kind.
func (d *Discovery) Summarize() Summary {
	return Summary{
		HasSkills:   len(d.Assets(KindSkill)) > 0,
		HasAgents:   len(d.Assets(KindAgent)) > 0,
		HasCommands: len(d.Assets(KindCommand)) > 0,
		HasHooks:    len(d.Assets(KindHook)) > 0,
	}
}

// Classify maps an absolute or root-relative changed path to the asset kind
// whose subtree it falls under.
func (d *Discovery) Classify(path string) (Kind, bool) {
	for _, root := range d.Roots() {
		rel, err := filepath.Rel(root, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		rel = filepath.ToSlash(rel)

		for _, kind := range Kinds() {
			spec := kind.Spec()
			if spec.SettingsFile != "" {
				if rel == spec.SettingsFile {
					return kind, true
				}
				continue
			}
			if rel == spec.Subdir {
				return kind, true
			}
			if ok, _ := doublestar.Match(spec.Subdir+"/**", rel); ok {
				return kind, true
			}
		}
	}
	return "", false
}
