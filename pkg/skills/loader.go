package skills

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/portagekit/portage/pkg/discovery"
	"github.com/portagekit/portage/pkg/frontmatter"
	"github.com/portagekit/portage/pkg/logger"
)

// Loader loads skills from discovered asset records.
type Loader struct {
	disc    *discovery.Discovery
	allowed []string
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithAllowlist restricts loading to the named skills. An empty allowlist
// admits everything.
func WithAllowlist(names []string) LoaderOption {
	return func(l *Loader) {
		l.allowed = names
	}
}

// NewLoader creates a Loader over the given discovery.
func NewLoader(disc *discovery.Discovery, opts ...LoaderOption) *Loader {
	l := &Loader{disc: disc}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load builds the skill set from the current state of the source roots. A
// malformed skill is skipped with a logged warning and does not abort its
// siblings.
func (l *Loader) Load(ctx context.Context) map[string]*Skill {
	loaded := make(map[string]*Skill)

	for _, asset := range l.disc.Assets(discovery.KindSkill) {
		skill, err := LoadSkill(asset.Path)
		if err != nil {
			logger.G(ctx).WithError(err).WithField("skill", asset.Name).Warn("skipping malformed skill")
			continue
		}
		loaded[skill.Name] = skill
	}

	if len(l.allowed) > 0 {
		loaded = filterByAllowlist(loaded, l.allowed)
	}

	logger.G(ctx).WithField("count", len(loaded)).Debug("loaded skills")
	return loaded
}

// LoadSkill loads a single skill from its directory. The skill name falls
// back to the directory name when the preamble omits it.
func LoadSkill(dir string) (*Skill, error) {
	descriptorPath := filepath.Join(dir, DescriptorFile)
	content, err := os.ReadFile(descriptorPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read skill descriptor")
	}

	doc := frontmatter.Parse(string(content))

	name := doc.String("name")
	if name == "" {
		name = filepath.Base(dir)
	}
	description := doc.String("description")
	if description == "" {
		return nil, errors.Errorf("skill %q has no description", name)
	}

	supporting, err := listSupportingFiles(dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list supporting files")
	}

	return &Skill{
		Name:            name,
		Description:     description,
		AllowedTools:    doc.Strings("allowed-tools"),
		Instructions:    doc.Body,
		SupportingFiles: supporting,
		Directory:       dir,
	}, nil
}

// listSupportingFiles walks the skill directory tree and returns every file
// except the descriptor, as sorted relative paths.
func listSupportingFiles(dir string) ([]string, error) {
	files := []string{}

	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == DescriptorFile {
			return nil
		}

		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func filterByAllowlist(loaded map[string]*Skill, allowed []string) map[string]*Skill {
	filtered := make(map[string]*Skill)
	for _, name := range allowed {
		if skill, exists := loaded[name]; exists {
			filtered[name] = skill
		}
	}
	return filtered
}
