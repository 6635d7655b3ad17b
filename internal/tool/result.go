// Package tool defines the capability contract shared by every pipeline
// stage and the registry that maps tool names to capabilities.
package tool

import "time"

// Status is the outcome of a single capability invocation.
type Status string

// Status constants
const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Result is the value a capability produces for one invocation.
// Error is set if and only if Status is StatusError.
type Result struct {
	Status    Status    `json:"status"`
	Payload   any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	Tool      string    `json:"tool_name"`
	Timestamp time.Time `json:"timestamp"`
}

// Success builds a successful result for the named tool.
func Success(toolName string, payload any) Result {
	return Result{
		Status:    StatusSuccess,
		Payload:   payload,
		Tool:      toolName,
		Timestamp: time.Now(),
	}
}

// Failure builds an error result for the named tool. An empty message is
// replaced so that an error result always carries one.
func Failure(toolName string, err error) Result {
	msg := "unknown error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return Result{
		Status:    StatusError,
		Error:     msg,
		Tool:      toolName,
		Timestamp: time.Now(),
	}
}

// OK reports whether the invocation succeeded.
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}
