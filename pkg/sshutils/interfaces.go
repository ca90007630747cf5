package sshutils

import (
	"context"
	"io"
	"os"

	"golang.org/x/crypto/ssh"
)

// SSHClienter is the subset of an SSH client connection the rest of the
// codebase depends on.
type SSHClienter interface {
	NewSession() (SSHSessioner, error)
	GetClient() *ssh.Client
	Close() error
}

// SSHSessioner covers one remote command execution on an open connection.
type SSHSessioner interface {
	Run(cmd string) error
	SetStdout(w io.Writer)
	SetStderr(w io.Writer)
	Close() error
}

// SFTPClienter is the subset of an SFTP client used for pushing files.
type SFTPClienter interface {
	Create(path string) (io.WriteCloser, error)
	Chmod(path string, mode os.FileMode) error
	Close() error
}

// Connector opens a fresh SSH connection. SSHConfig is the production
// implementation; tests substitute mocks.
type Connector interface {
	Connect(ctx context.Context) (SSHClienter, error)
}
