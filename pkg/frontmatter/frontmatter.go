// Package frontmatter parses and serializes the structured-document format
// shared by every asset kind: a delimiter-fenced YAML preamble followed by a
// free-form markdown body. Parsing is lenient by contract — malformed or
// unterminated preambles degrade to "no preamble, everything is body" rather
// than returning an error.
package frontmatter

import (
	"bytes"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
	"gopkg.in/yaml.v3"
)

// Delimiter fences the preamble block. Fixed, not configurable.
const Delimiter = "---"

// Document is a parsed structured document.
type Document struct {
	Meta map[string]any
	Body string
}

// Parse splits content into preamble and body. It never fails: text without a
// leading delimiter, with an unterminated fence, or with unparseable preamble
// content comes back with an empty Meta and the entire input as Body.
func Parse(content string) *Document {
	if !hasLeadingDelimiter(content) {
		return &Document{Meta: map[string]any{}, Body: content}
	}

	md := goldmark.New(goldmark.WithExtensions(meta.Meta))

	var buf bytes.Buffer
	pctx := parser.NewContext()
	if err := md.Convert([]byte(content), &buf, parser.WithContext(pctx)); err != nil {
		return &Document{Meta: map[string]any{}, Body: content}
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		// Missing closing fence or invalid preamble content.
		return &Document{Meta: map[string]any{}, Body: content}
	}

	normalized := make(map[string]any, len(metaData))
	for k, v := range metaData {
		normalized[k] = normalizeValue(v)
	}

	return &Document{Meta: normalized, Body: extractBody(content)}
}

// Serialize re-emits a fenced preamble followed by the body. Keys are written
// in sorted order so output is byte-stable for identical input. Keys with nil
// values are omitted entirely, which lets callers build a document
// incrementally and only persist fields that were actually set.
func Serialize(metaData map[string]any, body string) string {
	var sb strings.Builder

	keys := make([]string, 0, len(metaData))
	for k, v := range metaData {
		if v == nil {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// An all-nil (or empty) preamble is not emitted at all; a bare fence pair
	// would not survive a round trip through Parse.
	if len(keys) == 0 {
		return body
	}

	sb.WriteString(Delimiter)
	sb.WriteString("\n")
	for _, k := range keys {
		// Marshaling one key at a time keeps the emission order under our
		// control instead of the yaml library's.
		line, err := yaml.Marshal(map[string]any{k: metaData[k]})
		if err != nil {
			continue
		}
		sb.Write(line)
	}
	sb.WriteString(Delimiter)
	sb.WriteString("\n\n")
	sb.WriteString(body)

	return sb.String()
}

// ParseCommaSeparated splits a comma-separated list value, trimming
// whitespace around each element and dropping empty segments.
func ParseCommaSeparated(value string) []string {
	result := []string{}
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// StringList coerces a preamble value into a string slice. It handles YAML
// sequences, pre-normalized string slices, and comma-separated scalars.
func StringList(value any) []string {
	switch v := value.(type) {
	case nil:
		return []string{}
	case []string:
		result := make([]string, 0, len(v))
		for _, item := range v {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	case []any:
		result := []string{}
		for _, item := range v {
			if s, ok := item.(string); ok {
				if trimmed := strings.TrimSpace(s); trimmed != "" {
					result = append(result, trimmed)
				}
			}
		}
		return result
	case string:
		return ParseCommaSeparated(v)
	default:
		return []string{}
	}
}

// String returns the preamble value for key as a string, or "" when the key
// is absent or not a scalar string.
func (d *Document) String(key string) string {
	s, _ := d.Meta[key].(string)
	return s
}

// Strings returns the preamble value for key coerced into a string slice.
func (d *Document) Strings(key string) []string {
	return StringList(d.Meta[key])
}

func hasLeadingDelimiter(content string) bool {
	return content == Delimiter ||
		strings.HasPrefix(content, Delimiter+"\n") ||
		strings.HasPrefix(content, Delimiter+"\r\n")
}

// extractBody returns everything after the closing fence, with at most one
// leading blank line stripped.
func extractBody(content string) string {
	lines := strings.Split(content, "\n")

	closing := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == Delimiter {
			closing = i
			break
		}
	}
	if closing == -1 {
		return content
	}

	rest := lines[closing+1:]
	if len(rest) > 0 && strings.TrimSpace(rest[0]) == "" {
		rest = rest[1:]
	}
	return strings.Join(rest, "\n")
}

// normalizeValue converts goldmark-meta's yaml.v2 value shapes into the
// shapes the rest of the codebase works with: string-keyed maps and, where
// every element is a string, []string.
func normalizeValue(value any) any {
	switch v := value.(type) {
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, item := range v {
			if ks, ok := k.(string); ok {
				m[ks] = normalizeValue(item)
			}
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(v))
		for k, item := range v {
			m[k] = normalizeValue(item)
		}
		return m
	case []any:
		strs := make([]string, 0, len(v))
		allStrings := true
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				allStrings = false
				break
			}
			strs = append(strs, s)
		}
		if allStrings {
			return strs
		}
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}
