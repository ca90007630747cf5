package sshutils

import (
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// HostKeyPolicy produces the host key verification callback for a dial.
// KnownHostsPolicy is the default; InsecureAcceptAllPolicy is an explicit
// opt-in that performs no verification at all.
type HostKeyPolicy interface {
	Callback() (ssh.HostKeyCallback, error)
}

type knownHostsPolicy struct {
	path string
}

// KnownHostsPolicy verifies host keys against an OpenSSH known_hosts file.
// An empty path means ~/.ssh/known_hosts. A missing file fails closed.
func KnownHostsPolicy(path string) HostKeyPolicy {
	return &knownHostsPolicy{path: path}
}

func (p *knownHostsPolicy) Callback() (ssh.HostKeyCallback, error) {
	path := p.path
	if path == "" {
		path = "~/.ssh/known_hosts"
	}

	expandedPath, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand known_hosts path: %w", err)
	}

	if _, err := os.Stat(expandedPath); err != nil {
		return nil, fmt.Errorf(
			"known_hosts file not found at %s and host key checking is strict: %w",
			expandedPath,
			err,
		)
	}

	cb, err := knownhosts.New(expandedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load known_hosts: %w", err)
	}
	return cb, nil
}

type insecureAcceptAllPolicy struct{}

// InsecureAcceptAllPolicy accepts any host key without verification. Only
// suitable for throwaway environments.
func InsecureAcceptAllPolicy() HostKeyPolicy {
	return insecureAcceptAllPolicy{}
}

func (insecureAcceptAllPolicy) Callback() (ssh.HostKeyCallback, error) {
	return ssh.InsecureIgnoreHostKey(), nil //nolint:gosec
}
