package hostsync

import (
	"context"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/portagekit/portage/pkg/frontmatter"
	"github.com/portagekit/portage/pkg/logger"
)

// agentSource is the field set a source persona descriptor may carry.
type agentSource struct {
	Name           string `mapstructure:"name"`
	Description    string `mapstructure:"description"`
	Tools          any    `mapstructure:"tools"`
	Model          string `mapstructure:"model"`
	PermissionMode string `mapstructure:"permission-mode"`
}

// convertAgent maps a source persona descriptor onto the host agent schema.
// The permission-mode field has no host equivalent and is dropped with a
// logged notice rather than silently lost.
func convertAgent(ctx context.Context, name string, doc *frontmatter.Document) (map[string]any, string, error) {
	var src agentSource
	if err := mapstructure.Decode(doc.Meta, &src); err != nil {
		return nil, "", errors.Wrap(err, "failed to decode agent preamble")
	}

	if src.Description == "" {
		return nil, "", errors.New("agent description is required")
	}

	if src.PermissionMode != "" {
		logger.G(ctx).
			WithField("agent", name).
			WithField("permission-mode", src.PermissionMode).
			Info("dropping permission-mode, host has no equivalent")
	}

	meta := map[string]any{
		"description": src.Description,
		"mode":        "subagent",
	}
	if src.Model != "" {
		meta["model"] = src.Model
	}
	if tools := frontmatter.StringList(src.Tools); len(tools) > 0 {
		meta["tools"] = tools
	}

	return meta, doc.Body, nil
}
