package envelope

import (
	"time"

	"github.com/bfs/census-acs-mcp/internal/errors"
)

// Builder constructs Response envelopes using a fluent API.
type Builder struct {
	resp *Response
}

// New creates a new envelope builder.
func New() *Builder {
	return &Builder{
		resp: &Response{
			SchemaVersion: CurrentSchemaVersion,
		},
	}
}

// From wraps an already-built response so callers can stamp late metadata
// (timing, warnings) onto it.
func From(resp *Response) *Builder {
	return &Builder{resp: resp}
}

// Data sets the tool-specific payload.
func (b *Builder) Data(data interface{}) *Builder {
	b.resp.Data = data
	return b
}

// WithTiming records the request id and wall-clock duration of the call.
func (b *Builder) WithTiming(requestID string, duration time.Duration) *Builder {
	if b.resp.Meta == nil {
		b.resp.Meta = &Meta{}
	}
	b.resp.Meta.RequestID = requestID
	b.resp.Meta.QueryDurationMs = duration.Milliseconds()
	return b
}

// Warning adds a warning message.
func (b *Builder) Warning(msg string) *Builder {
	b.resp.Warnings = append(b.resp.Warnings, Warning{Message: msg})
	return b
}

// WarningCode adds a warning with a machine-readable code.
func (b *Builder) WarningCode(code, msg string) *Builder {
	b.resp.Warnings = append(b.resp.Warnings, Warning{Code: code, Message: msg})
	return b
}

// Error records a failure. QueryError values keep their stable code and
// details; foreign errors map to INTERNAL_ERROR.
func (b *Builder) Error(err error) *Builder {
	if err == nil {
		return b
	}
	info := &ErrorInfo{
		Code:    string(errors.InternalError),
		Message: err.Error(),
	}
	if qe, ok := err.(*errors.QueryError); ok {
		info.Code = string(qe.Code)
		info.Message = qe.Message
		info.Details = qe.Details
	}
	b.resp.Error = info
	return b
}

// Build returns the envelope response.
func (b *Builder) Build() *Response {
	return b.resp
}
