package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKebabToCamel(t *testing.T) {
	assert.Equal(t, "prReview", KebabToCamel("pr-review"))
	assert.Equal(t, "kernelDevHelper", KebabToCamel("kernel-dev-helper"))
	assert.Equal(t, "single", KebabToCamel("single"))
	assert.Equal(t, "", KebabToCamel(""))
}

func TestCamelToKebab(t *testing.T) {
	assert.Equal(t, "pr-review", CamelToKebab("prReview"))
	assert.Equal(t, "kernel-dev-helper", CamelToKebab("kernelDevHelper"))
	assert.Equal(t, "single", CamelToKebab("single"))
}

func TestCaseConversionRoundTrip(t *testing.T) {
	for _, name := range []string{"pr-review", "kernel-dev-helper", "single"} {
		assert.Equal(t, name, CamelToKebab(KebabToCamel(name)))
	}
}

func TestKebabToSnake(t *testing.T) {
	assert.Equal(t, "pr_review", KebabToSnake("pr-review"))
	assert.Equal(t, "plain", KebabToSnake("plain"))
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "pr-review", BaseName("commands/pr-review.md"))
	assert.Equal(t, "settings", BaseName("/home/user/.claude/settings.json"))
	assert.Equal(t, "noext", BaseName("dir/noext"))
}
