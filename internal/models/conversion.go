package models

import "time"

// ConversionMethod names the path that produced the Java output.
type ConversionMethod string

const (
	// MethodAI means the language model output was accepted.
	MethodAI ConversionMethod = "ai"
	// MethodRules means the rule-based translator produced the output.
	MethodRules ConversionMethod = "rules"
)

// Conversion is one COBOL to Java conversion together with its log.
type Conversion struct {
	ID         string           `json:"id" msgpack:"id"`
	FileID     string           `json:"fileId" msgpack:"fileId"`
	FileName   string           `json:"fileName" msgpack:"fileName"`
	UploadedAt time.Time        `json:"uploadedAt" msgpack:"uploadedAt"`
	Method     ConversionMethod `json:"method" msgpack:"method"`
	CobolCode  string           `json:"cobolCode" msgpack:"cobolCode"`
	JavaCode   string           `json:"javaCode" msgpack:"javaCode"`
	Logs       []string         `json:"logs" msgpack:"logs"`
}

// ConversionSummary is the list view of a Conversion, without the code bodies.
type ConversionSummary struct {
	ID         string           `json:"id"`
	FileName   string           `json:"fileName"`
	UploadedAt time.Time        `json:"uploadedAt"`
	Method     ConversionMethod `json:"method"`
}

// Summary returns the list view of c.
func (c *Conversion) Summary() ConversionSummary {
	return ConversionSummary{
		ID:         c.ID,
		FileName:   c.FileName,
		UploadedAt: c.UploadedAt,
		Method:     c.Method,
	}
}
