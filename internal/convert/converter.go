// Package convert translates COBOL sources to Java. A language model is tried
// first when one is configured; poor or failed model output falls back to the
// rule-based translator. Both paths finish with FixJava.
package convert

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/labstack/gommon/log"

	"github.com/cobol-converter/backend/internal/models"
)

var (
	// ErrEmptySource is returned for sources with no content.
	ErrEmptySource = errors.New("cobol source is empty")
	// ErrInvalidEncoding is returned for sources that are not UTF-8.
	ErrInvalidEncoding = errors.New("cobol source is not valid UTF-8")
)

// Result is the outcome of a single conversion.
type Result struct {
	JavaCode string
	Logs     []string
	Method   models.ConversionMethod
}

// Converter runs the conversion pipeline.
type Converter struct {
	rules     *models.ConversionRules
	generator Generator
}

// NewConverter creates a Converter. A nil generator disables the model pass;
// nil rules select DefaultRules.
func NewConverter(rules *models.ConversionRules, generator Generator) *Converter {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Converter{rules: rules, generator: generator}
}

// RulesInfo describes the active rules.
func (c *Converter) RulesInfo(source string) models.RulesInfo {
	return models.RulesInfo{
		Source:       source,
		KeywordCount: len(c.rules.Keywords),
		ClassName:    c.rules.ClassName,
	}
}

// Convert translates source to Java. Model failures never fail the
// conversion; they are recorded in the log and the rule-based path is used.
func (c *Converter) Convert(ctx context.Context, source []byte) (*Result, error) {
	if !utf8.Valid(source) {
		return nil, ErrInvalidEncoding
	}
	cobol := string(source)
	if strings.TrimSpace(cobol) == "" {
		return nil, ErrEmptySource
	}

	res := &Result{}
	if c.generator == nil {
		res.Logs = append(res.Logs, "No language model configured, using rule-based conversion.")
		res.JavaCode = c.fallback(cobol, res)
		res.JavaCode = FixJava(res.JavaCode)
		res.Logs = append(res.Logs, "Applied Java code fixes to fallback conversion.")
		return res, nil
	}

	response, err := c.generator.Generate(ctx, c.Prompt(cobol))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Warnf("[Convert] model %s failed: %v", c.generator.Name(), err)
		res.Logs = append(res.Logs, fmt.Sprintf("AI conversion failed: %v", err))
		res.JavaCode = c.fallback(cobol, res)
		res.JavaCode = FixJava(res.JavaCode)
		res.Logs = append(res.Logs, "Applied Java code fixes to fallback conversion.")
		return res, nil
	}

	java := c.CleanResponse(response)
	if c.poorQuality(java) {
		res.Logs = append(res.Logs, "AI response was poor quality, using rule-based conversion.")
		java = c.fallback(cobol, res)
	} else {
		res.Method = models.MethodAI
		res.Logs = append(res.Logs, fmt.Sprintf("Converted using %s model.", c.generator.Name()))
		members, scenarioLogs := c.TranslateScenarios(cobol)
		if strings.TrimSpace(members) != "" {
			java = injectMembers(java, members)
			res.Logs = append(res.Logs, scenarioLogs...)
		}
	}

	res.JavaCode = FixJava(java)
	res.Logs = append(res.Logs, "Applied Java code fixes (string comparison, incomplete OR patterns).")
	return res, nil
}

// Prompt builds the model prompt for a COBOL source.
func (c *Converter) Prompt(cobol string) string {
	return strings.TrimSpace(c.rules.Prompt) + "\n\nCOBOL:\n" + cobol + "\n\nJava:"
}

func (c *Converter) poorQuality(java string) bool {
	return java == "" ||
		len(java) < c.rules.MinAIOutputLength ||
		containsFold(java, c.rules.RejectMarkers)
}

// fallback wraps the rule-based translation in a class and records it on res.
func (c *Converter) fallback(cobol string, res *Result) string {
	members, logs := c.TranslateScenarios(cobol)
	res.Method = models.MethodRules
	res.Logs = append(res.Logs, logs...)

	var b strings.Builder
	fmt.Fprintf(&b, "public class %s {\n", c.rules.ClassName)
	b.WriteString(members)
	b.WriteString("\n\n    public void processData() {\n")
	b.WriteString("        // Main processing logic converted from COBOL\n")
	b.WriteString("        // TODO: Implement business logic\n")
	b.WriteString("    }\n}")
	return b.String()
}

func (c *Converter) keywordSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.rules.Keywords))
	for _, kw := range c.rules.Keywords {
		set[strings.ToUpper(kw)] = struct{}{}
	}
	return set
}

// injectMembers places translated members at the top of the first class body
// in java. Without a class body the members are prepended.
func injectMembers(java, members string) string {
	idx := strings.Index(java, "class ")
	if idx >= 0 {
		if brace := strings.Index(java[idx:], "{"); brace >= 0 {
			at := idx + brace + 1
			return java[:at] + "\n" + members + "\n" + java[at:]
		}
	}
	return members + "\n\n" + java
}
