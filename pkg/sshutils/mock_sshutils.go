package sshutils

import (
	"context"
	"io"
	"os"

	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/ssh"
)

// MockSSHClient is a mock implementation of SSHClienter
type MockSSHClient struct {
	mock.Mock
}

func (m *MockSSHClient) NewSession() (SSHSessioner, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(SSHSessioner), args.Error(1)
}

func (m *MockSSHClient) GetClient() *ssh.Client {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*ssh.Client)
}

func (m *MockSSHClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockSSHSession is a mock implementation of SSHSessioner
type MockSSHSession struct {
	mock.Mock

	stdout io.Writer
	stderr io.Writer

	// StdoutContent and StderrContent are written to the captured streams
	// when Run is called.
	StdoutContent []byte
	StderrContent []byte
}

func (m *MockSSHSession) Run(cmd string) error {
	args := m.Called(cmd)
	if m.stdout != nil && len(m.StdoutContent) > 0 {
		_, _ = m.stdout.Write(m.StdoutContent)
	}
	if m.stderr != nil && len(m.StderrContent) > 0 {
		_, _ = m.stderr.Write(m.StderrContent)
	}
	return args.Error(0)
}

func (m *MockSSHSession) SetStdout(w io.Writer) {
	m.stdout = w
}

func (m *MockSSHSession) SetStderr(w io.Writer) {
	m.stderr = w
}

func (m *MockSSHSession) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockSFTPClient is a mock implementation of SFTPClienter
type MockSFTPClient struct {
	mock.Mock
}

func (m *MockSFTPClient) Create(path string) (io.WriteCloser, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *MockSFTPClient) Chmod(path string, mode os.FileMode) error {
	args := m.Called(path, mode)
	return args.Error(0)
}

func (m *MockSFTPClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockConnector is a mock implementation of Connector
type MockConnector struct {
	mock.Mock
}

func (m *MockConnector) Connect(ctx context.Context) (SSHClienter, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(SSHClienter), args.Error(1)
}
