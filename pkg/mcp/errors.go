package mcp

import "fmt"

// ErrorKind classifies failures the context manager or its caller (the
// Agent Runtime's tool-call loop) can hit, mirroring the spec's error
// taxonomy for MCP: a tool invocation can fail validation, fail to
// execute, or the LLM can produce content the parser cannot use.
type ErrorKind string

const (
	KindToolNotFound    ErrorKind = "tool_not_found"
	KindToolExecution   ErrorKind = "tool_execution_error"
	KindInvalidToolArgs ErrorKind = "invalid_tool_arguments"
	KindParseFailure    ErrorKind = "response_parse_failure"
)

// Error is a typed MCP-layer error, classified by Kind so the agent
// runtime can decide whether to retry, surface a tool-error message
// back into the context, or abort the loop.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mcp: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("mcp: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError constructs a classified Error.
func NewError(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}
