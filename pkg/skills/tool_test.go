package skills

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	skill := &Skill{
		Name:         "kernel-dev",
		Description:  "Kernel development workflows",
		AllowedTools: []string{"Read", "Bash"},
		Instructions: "Follow the checklist.",
		Directory:    "/tmp/skills/kernel-dev",
	}

	def := Convert(skill)
	assert.Equal(t, "skill_kernel_dev", def.Name)
	assert.Equal(t, "Kernel development workflows (allowed tools: Read, Bash)", def.Description)
	assert.NotNil(t, def.Schema)
	assert.NotNil(t, def.Handler)
}

func TestConvert_NoToolRestriction(t *testing.T) {
	def := Convert(&Skill{Name: "plain", Description: "No restriction"})
	assert.Equal(t, "No restriction", def.Description)
}

func TestRender(t *testing.T) {
	skill := &Skill{
		Name:            "xlsx",
		Description:     "Spreadsheets",
		Instructions:    "Use the reference sheet.",
		SupportingFiles: []string{"references/sheet.md", "scripts/convert.py"},
		Directory:       "/tmp/skills/xlsx",
	}

	rendered := Render(skill)
	assert.Contains(t, rendered, "# Skill: xlsx")
	assert.Contains(t, rendered, "/tmp/skills/xlsx")
	assert.Contains(t, rendered, "Use the reference sheet.")
	assert.Contains(t, rendered, "- references/sheet.md")
	assert.Contains(t, rendered, "- scripts/convert.py")
	// Supporting files are listed for on-demand reading, never inlined.
	assert.Contains(t, rendered, "Read these on demand")
}

func TestToolHandler_ReturnsRenderedSkill(t *testing.T) {
	skill := &Skill{
		Name:         "deploy",
		Description:  "Deployment runbook",
		Instructions: "Run the deploy script.",
	}

	def := Convert(skill)
	output, err := def.Handler(context.Background(), nil)
	require.NoError(t, err)
	assert.Contains(t, output, "# Skill: deploy")
	assert.Contains(t, output, "Run the deploy script.")
}

func TestBuildTools(t *testing.T) {
	loaded := map[string]*Skill{
		"a-skill": {Name: "a-skill", Description: "a"},
		"b-skill": {Name: "b-skill", Description: "b"},
	}

	tools := BuildTools(loaded)
	require.Len(t, tools, 2)
	assert.Contains(t, tools, "skill_a_skill")
	assert.Contains(t, tools, "skill_b_skill")
}
