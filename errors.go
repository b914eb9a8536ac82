package svcbot

import (
	"errors"
	"fmt"
)

// Common errors returned by svcbot operations
var (
	// ErrProtocol indicates a process-info response violated the expected
	// supervisord struct shape (missing field or wrong type)
	ErrProtocol = errors.New("svcbot: protocol violation in process info")

	// ErrMissingToken indicates the bot token was not configured
	ErrMissingToken = errors.New("svcbot: bot token not configured")

	// ErrMissingAdmin indicates the authorized chat ID was not configured
	ErrMissingAdmin = errors.New("svcbot: admin chat id not configured")

	// ErrMissingURL indicates the supervisord endpoint was not configured
	ErrMissingURL = errors.New("svcbot: supervisor url not configured")
)

// RPCError represents a failed call against the supervisord XML-RPC endpoint
type RPCError struct {
	// Method is the XML-RPC method that failed
	Method string
	// URL is the endpoint the call was issued against
	URL string
	// Err is the underlying error
	Err error
}

// Error returns a formatted error message
func (e *RPCError) Error() string {
	return fmt.Sprintf("svcbot: rpc %s %q: %v", e.Method, e.URL, e.Err)
}

// Unwrap returns the underlying error for error chain inspection
func (e *RPCError) Unwrap() error {
	return e.Err
}
