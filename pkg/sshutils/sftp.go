package sshutils

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// DefaultSFTPClientCreator can be overridden for testing.
var DefaultSFTPClientCreator = func(client *ssh.Client) (SFTPClienter, error) {
	c, err := sftp.NewClient(client)
	if err != nil {
		return nil, err
	}
	return &sftpClientWrapper{client: c}, nil
}

type sftpClientWrapper struct {
	client *sftp.Client
}

func (w *sftpClientWrapper) Create(path string) (io.WriteCloser, error) {
	return w.client.Create(path)
}

func (w *sftpClientWrapper) Chmod(path string, mode os.FileMode) error {
	return w.client.Chmod(path, mode)
}

func (w *sftpClientWrapper) Close() error {
	return w.client.Close()
}

// PushFile writes content to remotePath over SFTP.
func PushFile(
	ctx context.Context,
	client SSHClienter,
	remotePath string,
	content []byte,
	executable bool,
) error {
	sftpClient, err := DefaultSFTPClientCreator(client.GetClient())
	if err != nil {
		return fmt.Errorf("failed to create SFTP client: %w", err)
	}
	defer sftpClient.Close()

	remoteFile, err := sftpClient.Create(remotePath)
	if err != nil {
		return fmt.Errorf("failed to create remote file: %w", err)
	}

	if _, err := remoteFile.Write(content); err != nil {
		remoteFile.Close()
		return fmt.Errorf("failed to write to remote file: %w", err)
	}

	if err := remoteFile.Close(); err != nil {
		return fmt.Errorf("failed to close remote file: %w", err)
	}

	if executable {
		if err := sftpClient.Chmod(remotePath, 0755); err != nil { //nolint:mnd
			return fmt.Errorf("failed to set executable permissions: %w", err)
		}
	}

	return nil
}
