package utils

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"
)

// CleanMarkdown strips an outer ```markdown fence and surrounding
// whitespace so the output is ready to write to disk.
func CleanMarkdown(input string) string {
	cleaned := strings.TrimSpace(input)
	if strings.HasPrefix(cleaned, "```markdown") {
		cleaned = strings.TrimPrefix(cleaned, "```markdown")
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
		return strings.TrimSpace(cleaned)
	}
	return StripCodeFences(cleaned)
}

// ValidateMarkdown parses the input with goldmark. The parser is permissive,
// so this catches only gross breakage, which is all a generated report needs.
func ValidateMarkdown(input string) bool {
	doc := goldmark.DefaultParser().Parse(text.NewReader([]byte(input)))
	return doc != nil && strings.TrimSpace(input) != ""
}
