// Package utils provides small naming helpers shared across asset kinds:
// kebab/camel/snake case conversion and path base-name extraction.
package utils

import (
	"path/filepath"
	"strings"
	"unicode"
)

// KebabToCamel converts "kebab-case" to "kebabCase". Single-word input is
// returned unchanged.
func KebabToCamel(s string) string {
	parts := strings.Split(s, "-")
	if len(parts) == 1 {
		return s
	}

	var sb strings.Builder
	sb.WriteString(parts[0])
	for _, part := range parts[1:] {
		if part == "" {
			continue
		}
		sb.WriteString(strings.ToUpper(part[:1]))
		sb.WriteString(part[1:])
	}
	return sb.String()
}

// CamelToKebab converts "camelCase" to "camel-case". Single-word input is
// returned unchanged.
func CamelToKebab(s string) string {
	var sb strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteRune('-')
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// KebabToSnake converts "kebab-case" to "kebab_case".
func KebabToSnake(s string) string {
	return strings.ReplaceAll(s, "-", "_")
}

// BaseName strips directory components and the file extension from a path:
// "commands/pr-review.md" becomes "pr-review".
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
