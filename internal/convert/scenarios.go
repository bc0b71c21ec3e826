// scenarios.go - Rule-based translation of COBOL declarations and statements
package convert

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	copyReplacingPattern = regexp.MustCompile(`^COPY\s+([A-Z0-9]+)\s+REPLACING\s+==:([A-Z0-9]+):==\s+BY\s+==([A-Z0-9]+)==`)
	numericVarPattern    = regexp.MustCompile(`^\s*(\d+)\s+([A-Z0-9\-]+)\s+PIC\s+9\([0-9]+\)(?:\s+VALUE\s+([0-9]+))?\s*\.`)
	stringVarPattern     = regexp.MustCompile(`^\s*(\d+)\s+([A-Z0-9\-]+)\s+PIC\s+X\(([0-9]+)\)(?:\s+VALUE\s+([A-Z0-9'"]+))?\s*\.`)
	moveNumericPattern   = regexp.MustCompile(`MOVE\s+['"](\d+)['"]\s+TO\s+([A-Z0-9\-]+)`)
	cobolVarPattern      = regexp.MustCompile(`\b([A-Z][A-Z0-9\-]+)\b`)

	javaIdentifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)
)

// procedureStatements mark PROCEDURE DIVISION lines scanned for variables.
var procedureStatements = []string{"MOVE", "IF", "PERFORM"}

// javaName maps a COBOL data name to a Java field name.
func javaName(cobolName string) string {
	return strings.ReplaceAll(strings.ToLower(cobolName), "-", "_")
}

// TranslateScenarios converts the COBOL constructs the translator understands
// into Java member declarations and statements. Anything else is carried
// over as a comment. The returned log lists every conversion applied.
func (c *Converter) TranslateScenarios(cobol string) (string, []string) {
	var (
		logs      []string
		java      []string
		declared  = make(map[string]struct{})
		keywords  = c.keywordSet()
		lines     = strings.Split(strings.ReplaceAll(cobol, "\r\n", "\n"), "\n")
		procedure bool
		referred  = make(map[string]struct{})
	)

	for _, raw := range lines {
		line := strings.TrimSpace(raw)

		if m := copyReplacingPattern.FindStringSubmatch(line); m != nil {
			book, token, repl := m[1], m[2], m[3]
			logs = append(logs, fmt.Sprintf("COPY REPLACING found: %s, replacing :%s: with %s", book, token, repl))
			java = append(java,
				"    // "+line,
				fmt.Sprintf("    // === Copybook %s content (:%s: replaced with %s) ===", book, token, repl),
				"",
				fmt.Sprintf("    // === End of copybook %s ===", book),
			)
			continue
		}

		if m := numericVarPattern.FindStringSubmatch(line); m != nil {
			level, name, value := m[1], m[2], m[3]
			if value == "" {
				value = "0"
			}
			field := javaName(name)
			declared[name] = struct{}{}
			java = append(java, fmt.Sprintf("    private int %s = %s; // Level %s numeric variable", field, value, level))
			logs = append(logs, fmt.Sprintf("Converted numeric variable: %s -> int %s", name, field))
			continue
		}

		if m := stringVarPattern.FindStringSubmatch(line); m != nil {
			level, name, length := m[1], m[2], m[3]
			field := javaName(name)
			declared[name] = struct{}{}
			java = append(java, fmt.Sprintf("    private String %s = %s; // Level %s string variable, length %s",
				field, javaStringLiteral(m[4]), level, length))
			logs = append(logs, fmt.Sprintf("Converted string variable: %s -> String %s", name, field))
			continue
		}

		if strings.Contains(line, "PROCEDURE DIVISION") {
			procedure = true
		} else if procedure && containsAny(line, procedureStatements) {
			for _, m := range cobolVarPattern.FindAllStringSubmatch(line, -1) {
				if isDataName(m[1], keywords) {
					referred[m[1]] = struct{}{}
				}
			}
		}

		if m := moveNumericPattern.FindStringSubmatch(line); m != nil {
			digits, target := m[1], m[2]
			java = append(java, fmt.Sprintf("    %s = Integer.parseInt(\"%s\"); // Type cast string to int", javaName(target), digits))
			logs = append(logs, fmt.Sprintf("Applied type casting: MOVE '%s' TO %s", digits, target))
			continue
		}

		if line != "" && !strings.HasPrefix(line, "*") {
			java = append(java, "    // "+line)
		}
	}

	var undeclared []string
	for name := range referred {
		if _, ok := declared[name]; !ok {
			undeclared = append(undeclared, name)
		}
	}
	if len(undeclared) > 0 {
		sort.Strings(undeclared)
		logs = append(logs, "Undeclared variables found: "+strings.Join(undeclared, ", "))

		sysvars := []string{"    // === SYSVARS copybook - Undeclared variables ==="}
		for _, name := range undeclared {
			sysvars = append(sysvars, fmt.Sprintf("    private String %s; // Undeclared variable from SYSVARS", javaName(name)))
		}
		sysvars = append(sysvars, "    // === End SYSVARS ===")
		java = append(sysvars, java...)
	}

	return strings.Join(java, "\n"), logs
}

// javaStringLiteral turns a PIC X VALUE clause into a Java string literal.
func javaStringLiteral(value string) string {
	switch {
	case value == "" || value == "SPACES" || value == "SPACE":
		return `""`
	case strings.HasPrefix(value, `"`):
		return value
	case len(value) >= 2 && strings.HasPrefix(value, "'") && strings.HasSuffix(value, "'"):
		return `"` + value[1:len(value)-1] + `"`
	default:
		return `"` + value + `"`
	}
}

// isDataName reports whether a token from a procedure statement looks like a
// hyphenated COBOL data name.
func isDataName(token string, keywords map[string]struct{}) bool {
	if _, ok := keywords[token]; ok {
		return false
	}
	return len(token) > 3 &&
		strings.Contains(token, "-") &&
		!strings.HasSuffix(token, "-DIVISION") &&
		!strings.HasSuffix(token, "-SECTION")
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
