package hostsync

import (
	"context"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/portagekit/portage/pkg/frontmatter"
	"github.com/portagekit/portage/pkg/logger"
)

// commandSource is the field set a source command template may carry.
type commandSource struct {
	Description  string `mapstructure:"description"`
	AllowedTools any    `mapstructure:"allowed-tools"`
	ArgumentHint string `mapstructure:"argument-hint"`
	Model        string `mapstructure:"model"`
}

// convertCommand maps a source command template onto the host command schema.
// The body passes through unchanged; argument placeholders are expanded by
// the host itself.
func convertCommand(ctx context.Context, name string, doc *frontmatter.Document) (map[string]any, string, error) {
	var src commandSource
	if err := mapstructure.Decode(doc.Meta, &src); err != nil {
		return nil, "", errors.Wrap(err, "failed to decode command preamble")
	}

	if src.ArgumentHint != "" {
		logger.G(ctx).
			WithField("command", name).
			WithField("argument-hint", src.ArgumentHint).
			Info("dropping argument-hint, host has no equivalent")
	}

	meta := map[string]any{}
	if src.Description != "" {
		meta["description"] = src.Description
	}
	if src.Model != "" {
		meta["model"] = src.Model
	}
	if tools := frontmatter.StringList(src.AllowedTools); len(tools) > 0 {
		meta["tools"] = tools
	}

	return meta, doc.Body, nil
}
