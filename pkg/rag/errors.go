package rag

import (
	"errors"
	"fmt"
)

// ErrNotInitialized is returned when retrieval is attempted before
// Initialize succeeds or after Dispose.
var ErrNotInitialized = errors.New("rag session is not initialized")

// InitializationError is the only fatal construction-time failure:
// the input text produced no chunks to retrieve from.
type InitializationError struct {
	Reason string
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("rag initialization failed: %s", e.Reason)
}
