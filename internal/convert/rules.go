package convert

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cobol-converter/backend/internal/models"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// DefaultRules returns the rules shipped with the binary.
func DefaultRules() *models.ConversionRules {
	rules, err := decodeRules(defaultRulesYAML)
	if err != nil {
		panic(fmt.Sprintf("convert: embedded rules are invalid: %v", err))
	}
	return rules
}

// ParseRules parses rules from YAML. Fields left out fall back to the
// embedded defaults.
func ParseRules(data []byte) (*models.ConversionRules, error) {
	rules, err := decodeRules(data)
	if err != nil {
		return nil, err
	}

	defaults := DefaultRules()
	if len(rules.Keywords) == 0 {
		rules.Keywords = defaults.Keywords
	}
	if rules.SkipPhrases == nil {
		rules.SkipPhrases = defaults.SkipPhrases
	}
	if rules.RejectMarkers == nil {
		rules.RejectMarkers = defaults.RejectMarkers
	}
	if rules.MinAIOutputLength == 0 {
		rules.MinAIOutputLength = defaults.MinAIOutputLength
	}
	if strings.TrimSpace(rules.Prompt) == "" {
		rules.Prompt = defaults.Prompt
	}
	if rules.ClassName == "" {
		rules.ClassName = defaults.ClassName
	}

	if err := validateRules(rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// LoadRules reads a rules file. An empty path yields the defaults.
func LoadRules(path string) (*models.ConversionRules, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	return ParseRules(data)
}

func decodeRules(data []byte) (*models.ConversionRules, error) {
	var rules models.ConversionRules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing rules yaml: %w", err)
	}
	return &rules, nil
}

func validateRules(rules *models.ConversionRules) error {
	if rules.MinAIOutputLength < 0 {
		return fmt.Errorf("min_ai_output_length must not be negative")
	}
	if !javaIdentifier.MatchString(rules.ClassName) {
		return fmt.Errorf("class_name %q is not a Java identifier", rules.ClassName)
	}
	return nil
}
