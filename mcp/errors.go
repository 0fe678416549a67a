package mcp

import (
	"encoding/json"

	"github.com/datakeeper/scanrelay/channel"
	"github.com/mark3labs/mcp-go/mcp"
)

type ErrorCode string

const (
	ErrValidation     ErrorCode = "validation"
	ErrDispatch       ErrorCode = "dispatch"
	ErrNotImplemented ErrorCode = "not_implemented"
)

type ToolError struct {
	Code    ErrorCode         `json:"code"`
	Kind    channel.ErrorKind `json:"kind,omitempty"`
	Message string            `json:"message"`
}

func (e ToolError) ToResult() *mcp.CallToolResult {
	data, _ := json.Marshal(e)
	return mcp.NewToolResultError(string(data))
}

// resultFor renders a channel result as a tool result.
func resultFor(res channel.Result) *mcp.CallToolResult {
	switch res.Status {
	case channel.StatusSuccess:
		return mcp.NewToolResultText("ok")
	case channel.StatusNotImplemented:
		return ToolError{Code: ErrNotImplemented, Message: "not implemented"}.ToResult()
	}

	code := ErrValidation
	if res.Kind == channel.ErrorSubmissionFailed {
		code = ErrDispatch
	}
	return ToolError{Code: code, Kind: res.Kind, Message: res.Message}.ToResult()
}
