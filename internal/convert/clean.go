package convert

import (
	"regexp"
	"strings"
)

var (
	javaFencePattern = regexp.MustCompile("```java\\s*")
	fencePattern     = regexp.MustCompile("```\\s*")
)

// CleanResponse extracts Java source from a model response. Code fences are
// removed, everything before the first declaration line is dropped, and lines
// containing a skip phrase are discarded.
func (c *Converter) CleanResponse(response string) string {
	response = javaFencePattern.ReplaceAllString(response, "")
	response = fencePattern.ReplaceAllString(response, "")

	var (
		kept    []string
		inClass bool
	)
	for _, line := range strings.Split(response, "\n") {
		if containsFold(line, c.rules.SkipPhrases) {
			continue
		}
		if !inClass && !containsAny(line, []string{"class ", "public ", "private "}) {
			continue
		}
		inClass = true
		kept = append(kept, line)
	}

	// Drop trailing chatter after the last closing brace.
	for i := len(kept) - 1; i >= 0; i-- {
		if strings.HasSuffix(strings.TrimSpace(kept[i]), "}") {
			kept = kept[:i+1]
			break
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// containsFold reports whether s contains any of the phrases, ignoring case.
func containsFold(s string, phrases []string) bool {
	lower := strings.ToLower(s)
	for _, p := range phrases {
		if p != "" && strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
