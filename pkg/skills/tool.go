package skills

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/portagekit/portage/pkg/utils"
)

// ToolDef is one invocable tool definition handed to the target host.
type ToolDef struct {
	Name        string
	Description string
	Schema      *jsonschema.Schema
	Handler     func(ctx context.Context, input json.RawMessage) (string, error)
}

// toolInput is the (empty) input schema of a skill tool. Skills carry no
// parameters; invocation just loads the instructions.
type toolInput struct{}

func generateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

// Convert turns a skill into its tool definition. The allowed-tools
// restriction is surfaced in the description only; enforcing tool access is
// the host's responsibility.
func Convert(skill *Skill) ToolDef {
	description := skill.Description
	if len(skill.AllowedTools) > 0 {
		description = fmt.Sprintf("%s (allowed tools: %s)", description, strings.Join(skill.AllowedTools, ", "))
	}

	return ToolDef{
		Name:        ToolPrefix + utils.KebabToSnake(skill.Name),
		Description: description,
		Schema:      generateSchema[toolInput](),
		Handler: func(_ context.Context, _ json.RawMessage) (string, error) {
			return Render(skill), nil
		},
	}
}

// BuildTools converts every loaded skill, keyed by tool name.
func BuildTools(loaded map[string]*Skill) map[string]ToolDef {
	tools := make(map[string]ToolDef, len(loaded))
	for _, skill := range loaded {
		def := Convert(skill)
		tools[def.Name] = def
	}
	return tools
}

// Render produces the invocation payload: the skill instructions plus an
// itemized index of supporting files. Files are listed, not inlined, which
// keeps the payload bounded regardless of how many or how large they are.
func Render(skill *Skill) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Skill: %s\n\n", skill.Name))
	sb.WriteString(fmt.Sprintf("The skill directory is located at: %s\n\n", skill.Directory))
	sb.WriteString("## Instructions\n\n")
	sb.WriteString(strings.TrimRight(skill.Instructions, "\n"))
	sb.WriteString("\n")

	if len(skill.SupportingFiles) > 0 {
		files := make([]string, len(skill.SupportingFiles))
		copy(files, skill.SupportingFiles)
		sort.Strings(files)

		sb.WriteString("\n## Supporting files\n\n")
		sb.WriteString("Read these on demand with your file-read tool instead of assuming their contents:\n\n")
		for _, file := range files {
			sb.WriteString(fmt.Sprintf("- %s\n", file))
		}
	}

	return sb.String()
}
