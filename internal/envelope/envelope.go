// Package envelope provides the standardized response wrapper for all MCP
// tool responses. Every payload is wrapped in a consistent envelope carrying
// the schema version, per-request metadata, warnings, and a structured error
// when the call failed.
package envelope

// CurrentSchemaVersion is the current envelope schema version.
const CurrentSchemaVersion = "1.0"

// Meta holds per-request response metadata.
type Meta struct {
	RequestID       string `json:"requestId,omitempty"`
	QueryDurationMs int64  `json:"queryDurationMs"`
}

// Warning represents a non-fatal issue.
type Warning struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// ErrorInfo is the structured error carried by a failed response.
type ErrorInfo struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Response is the standard envelope for all MCP tool responses. Data is nil
// for misses and for failed calls; the two are told apart by Error.
type Response struct {
	SchemaVersion string      `json:"schemaVersion"`
	Data          interface{} `json:"data"`
	Meta          *Meta       `json:"meta,omitempty"`
	Warnings      []Warning   `json:"warnings,omitempty"`
	Error         *ErrorInfo  `json:"error,omitempty"`
}
