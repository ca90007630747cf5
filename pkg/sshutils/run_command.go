package sshutils

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/ssh"
)

// CommandResult carries the byte streams and exit status of one remote
// command invocation. Stdout and stderr are captured separately.
type CommandResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// RunCommand executes one command on an open connection. The session is
// closed exactly once on every path. A non-nil error with a non-nil result
// means the remote command ran but exited non-zero; the result still carries
// whatever the remote process wrote.
func RunCommand(ctx context.Context, client SSHClienter, cmd string) (*CommandResult, error) {
	session, err := client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	type outcome struct {
		res *CommandResult
		err error
	}
	done := make(chan outcome, 1)

	go func() {
		defer session.Close()

		var stdout, stderr bytes.Buffer
		session.SetStdout(&stdout)
		session.SetStderr(&stderr)

		runErr := session.Run(cmd)
		res := &CommandResult{
			Stdout:   stdout.Bytes(),
			Stderr:   stderr.Bytes(),
			ExitCode: 0,
		}
		if runErr != nil {
			res.ExitCode = -1
			var exitErr *ssh.ExitError
			if errors.As(runErr, &exitErr) {
				res.ExitCode = exitErr.ExitStatus()
			}
		}
		done <- outcome{res: res, err: runErr}
	}()

	select {
	case <-ctx.Done():
		// The goroutine still owns the session and closes it when the
		// command returns or the connection is torn down.
		return nil, ctx.Err()
	case o := <-done:
		return o.res, o.err
	}
}
