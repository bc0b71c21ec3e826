package convert

import (
	"regexp"
	"strings"
)

var (
	// if (x == "a" || "b")
	incompleteOrPattern = regexp.MustCompile(`if\s*\(\s*([^=\)]+?)\s*==\s*("[^"]*")\s*\|\|\s*("[^"]*")\s*\)`)
	// x == "a" inside an if(
	stringEqualsPattern = regexp.MustCompile(`([^=\s]+(?:\.[^=\s]+)*(?:\(\))?)\s*==\s*("[^"]*")`)
	// x.equals("a") || "b"
	incompleteEqualsPattern = regexp.MustCompile(`(\w+(?:\.\w+)*(?:\(\))??)\.equals\(("[^"]*")\)\s*\|\|\s*("[^"]*")`)
)

// FixJava repairs string comparisons that translated COBOL tends to get
// wrong: == against string literals becomes .equals, and a dangling
// `|| "literal"` is expanded into a second comparison.
func FixJava(java string) string {
	java = incompleteOrPattern.ReplaceAllStringFunc(java, func(match string) string {
		m := incompleteOrPattern.FindStringSubmatch(match)
		lhs := strings.TrimSpace(m[1])
		return "if(" + lhs + ".equals(" + m[2] + ") || " + lhs + ".equals(" + m[3] + "))"
	})

	lines := strings.Split(java, "\n")
	for i, line := range lines {
		if strings.Contains(line, "==") && !strings.Contains(line, ".equals(") && strings.Contains(line, "if(") {
			lines[i] = stringEqualsPattern.ReplaceAllString(line, "${1}.equals(${2})")
		}
	}
	java = strings.Join(lines, "\n")

	return incompleteEqualsPattern.ReplaceAllString(java, "${1}.equals(${2}) || ${1}.equals(${3})")
}
