package sshutils

import (
	"io"

	"golang.org/x/crypto/ssh"
)

// SSHSessionWrapper implements SSHSessioner over *ssh.Session.
type SSHSessionWrapper struct {
	Session *ssh.Session
}

func (s *SSHSessionWrapper) Run(cmd string) error {
	return s.Session.Run(cmd)
}

func (s *SSHSessionWrapper) SetStdout(w io.Writer) {
	s.Session.Stdout = w
}

func (s *SSHSessionWrapper) SetStderr(w io.Writer) {
	s.Session.Stderr = w
}

func (s *SSHSessionWrapper) Close() error {
	return s.Session.Close()
}
