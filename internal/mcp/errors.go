package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/finewiki/finewiki-mcp/internal/corpus"
	"github.com/finewiki/finewiki-mcp/internal/index"
	"github.com/finewiki/finewiki-mcp/internal/query"
)

// Custom MCP error codes.
const (
	// ErrCodeIndexNotFound indicates no committed index exists.
	ErrCodeIndexNotFound = -32001

	// ErrCodeCorpusNotFound indicates the corpus directory is missing.
	ErrCodeCorpusNotFound = -32002

	// ErrCodeBuildLocked indicates another live process holds the build lock.
	ErrCodeBuildLocked = -32003

	// ErrCodeTimeout indicates the request timed out or was canceled.
	ErrCodeTimeout = -32004

	// Standard JSON-RPC error codes.
	ErrCodeInvalidParams = -32602
	ErrCodeInternalError = -32603
)

// MCPError represents an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// NewInvalidParamsError returns an invalid-params error with a detail message.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: msg}
}

// MapError converts internal errors to MCP errors with appropriate codes.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var held *index.LockHeldError
	switch {
	case errors.Is(err, query.ErrIndexNotFound):
		return &MCPError{
			Code:    ErrCodeIndexNotFound,
			Message: "No index found. Run a build first.",
		}
	case errors.Is(err, corpus.ErrCorpusNotFound):
		return &MCPError{
			Code:    ErrCodeCorpusNotFound,
			Message: "Corpus directory not found.",
		}
	case errors.As(err, &held):
		return &MCPError{
			Code:    ErrCodeBuildLocked,
			Message: held.Error(),
		}
	case errors.Is(err, context.DeadlineExceeded):
		return &MCPError{
			Code:    ErrCodeTimeout,
			Message: "Request timed out.",
		}
	case errors.Is(err, context.Canceled):
		return &MCPError{
			Code:    ErrCodeTimeout,
			Message: "Request was canceled.",
		}
	default:
		return &MCPError{
			Code:    ErrCodeInternalError,
			Message: err.Error(),
		}
	}
}
