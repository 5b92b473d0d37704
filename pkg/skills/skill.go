// Package skills converts capability descriptors into invocable tool
// definitions for the target host. A skill is a directory holding a SKILL.md
// descriptor plus arbitrary supporting files; invoking the generated tool
// returns the descriptor's instructions and an index of the supporting files
// for on-demand reading.
package skills

// DescriptorFile is the fixed name of a skill's primary descriptor.
const DescriptorFile = "SKILL.md"

// ToolPrefix is prepended to the snake-cased skill name to form the tool name.
const ToolPrefix = "skill_"

// Skill is one converted capability descriptor. Instances are constructed
// fresh on every discovery pass and never mutated in place.
type Skill struct {
	Name         string
	Description  string
	AllowedTools []string
	// Instructions is the descriptor body.
	Instructions string
	// SupportingFiles holds every file under the skill directory other than
	// the descriptor itself, as sorted relative paths.
	SupportingFiles []string
	Directory       string
}
