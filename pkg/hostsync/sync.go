// Package hostsync rewrites persona and command descriptors into the target
// host's on-disk schema and writes them into the host's own asset
// directories. Writes are whole-file overwrites under deterministic names, so
// re-running synchronization for unchanged sources is idempotent.
package hostsync

import (
	"context"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/portagekit/portage/pkg/discovery"
	"github.com/portagekit/portage/pkg/frontmatter"
	"github.com/portagekit/portage/pkg/logger"
)

// Host directory layout for synchronized assets.
const (
	agentSubdir   = "agent"
	commandSubdir = "command"
)

// Synchronizer writes converted agent and command documents into the host
// directory.
type Synchronizer struct {
	disc    *discovery.Discovery
	hostDir string
}

// NewSynchronizer creates a Synchronizer targeting hostDir.
func NewSynchronizer(disc *discovery.Discovery, hostDir string) *Synchronizer {
	return &Synchronizer{disc: disc, hostDir: hostDir}
}

// SyncAgents converts and writes every discovered agent. A malformed asset is
// skipped with a logged warning; the returned error aggregates the skips and
// is nil when everything synchronized.
func (s *Synchronizer) SyncAgents(ctx context.Context) ([]string, error) {
	return s.syncKind(ctx, discovery.KindAgent, agentSubdir, convertAgent)
}

// SyncCommands converts and writes every discovered command template.
func (s *Synchronizer) SyncCommands(ctx context.Context) ([]string, error) {
	return s.syncKind(ctx, discovery.KindCommand, commandSubdir, convertCommand)
}

type convertFunc func(ctx context.Context, name string, doc *frontmatter.Document) (map[string]any, string, error)

func (s *Synchronizer) syncKind(ctx context.Context, kind discovery.Kind, subdir string, convert convertFunc) ([]string, error) {
	var merr *multierror.Error
	synced := []string{}

	for _, asset := range s.disc.Assets(kind) {
		if err := s.syncAsset(ctx, asset, subdir, convert); err != nil {
			logger.G(ctx).WithError(err).
				WithField("kind", string(kind)).
				WithField("asset", asset.Name).
				Warn("skipping asset")
			merr = multierror.Append(merr, errors.Wrap(err, asset.Name))
			continue
		}
		synced = append(synced, asset.Name)
	}

	return synced, merr.ErrorOrNil()
}

func (s *Synchronizer) syncAsset(ctx context.Context, asset discovery.Asset, subdir string, convert convertFunc) error {
	content, err := os.ReadFile(asset.Path)
	if err != nil {
		return errors.Wrap(err, "failed to read source document")
	}

	doc := frontmatter.Parse(string(content))
	meta, body, err := convert(ctx, asset.Name, doc)
	if err != nil {
		return err
	}

	dir := filepath.Join(s.hostDir, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create host directory")
	}

	target := filepath.Join(dir, asset.Name+".md")
	rendered := frontmatter.Serialize(meta, body)
	if err := os.WriteFile(target, []byte(rendered), 0o644); err != nil {
		return errors.Wrap(err, "failed to write host document")
	}

	logger.G(ctx).WithField("path", target).Debug("synchronized asset")
	return nil
}
