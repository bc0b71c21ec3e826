package models

// ConversionRules is the YAML-configurable part of the COBOL translator.
type ConversionRules struct {
	// Keywords are COBOL reserved words never treated as variable names.
	Keywords []string `json:"keywords" yaml:"keywords"`
	// SkipPhrases drop explanatory lines from model responses (matched case-insensitively).
	SkipPhrases []string `json:"skipPhrases" yaml:"skip_phrases"`
	// RejectMarkers mark a model response as unusable (matched case-insensitively).
	RejectMarkers []string `json:"rejectMarkers" yaml:"reject_markers"`
	// MinAIOutputLength is the shortest cleaned response accepted from the model.
	MinAIOutputLength int `json:"minAiOutputLength" yaml:"min_ai_output_length"`
	// Prompt is the instruction placed before the COBOL source.
	Prompt string `json:"prompt" yaml:"prompt"`
	// ClassName is the Java class emitted by the rule-based translator.
	ClassName string `json:"className" yaml:"class_name"`
}

// RulesInfo contains metadata about the active rules.
type RulesInfo struct {
	Source       string `json:"source"`
	KeywordCount int    `json:"keywordCount"`
	ClassName    string `json:"className"`
}
