package query

import (
	"errors"
	"fmt"
)

// ErrUnknownQuery is returned when a named query is not in the book.
var ErrUnknownQuery = errors.New("unknown query name")

// ConnectError means the SSH connection to the edge node could not be
// established (unreachable host, authentication rejection, host key
// mismatch).
type ConnectError struct {
	Host string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("failed to connect to edge node %s: %v", e.Host, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// CommandError means the remote query client ran but failed. Stderr carries
// whatever the remote process wrote to its error stream.
type CommandError struct {
	Command  string
	ExitCode int
	Stderr   []byte
	Err      error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("remote query failed (exit %d): %v", e.ExitCode, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// StderrExcerpt returns up to limit bytes of the remote error stream.
func (e *CommandError) StderrExcerpt(limit int) string {
	s := string(e.Stderr)
	if limit > 0 && len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
