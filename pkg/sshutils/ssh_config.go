package sshutils

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mitchellh/go-homedir"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/edgequery/edgequery/pkg/logger"
)

// SSHConfig holds the configuration for one SSH target. A config opens a
// fresh connection per Connect call; connections are never pooled.
type SSHConfig struct {
	Host             string
	Port             int
	User             string
	Password         string
	PrivateKeyPath   string
	PrivateKeyPass   string
	HostKeyPolicy    HostKeyPolicy
	Timeout          time.Duration
	DisableAgentAuth bool

	// DialFunc can be overridden for testing.
	DialFunc func(network, addr string, config *ssh.ClientConfig) (SSHClienter, error)
}

// NewSSHConfig creates an SSH config with the strict host key policy and
// default timeouts.
func NewSSHConfig(host string, port int, user string) *SSHConfig {
	if port <= 0 {
		port = SSHDefaultPort
	}
	return &SSHConfig{
		Host:          host,
		Port:          port,
		User:          user,
		HostKeyPolicy: KnownHostsPolicy(""),
		Timeout:       SSHDialTimeout,
		DialFunc:      dialSSH,
	}
}

// Validate checks connection prerequisites.
func (c *SSHConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host cannot be empty")
	}
	if c.Port <= 0 {
		return fmt.Errorf("invalid port number: %d", c.Port)
	}
	if c.User == "" {
		return fmt.Errorf("user cannot be empty")
	}
	if c.Password == "" && c.PrivateKeyPath == "" && os.Getenv("SSH_AUTH_SOCK") == "" {
		return fmt.Errorf("no authentication method configured")
	}
	return nil
}

// Connect dials the target with exponential backoff and returns an open
// client. Authentication rejections and host key mismatches are not retried.
func (c *SSHConfig) Connect(ctx context.Context) (SSHClienter, error) {
	l := logger.Get()
	l.Debugf("Connecting to SSH server %s@%s:%d", c.User, c.Host, c.Port)

	if err := c.Validate(); err != nil {
		return nil, err
	}

	clientConfig, err := c.clientConfig()
	if err != nil {
		return nil, err
	}

	dial := c.DialFunc
	if dial == nil {
		dial = dialSSH
	}

	addr := fmt.Sprintf("%s:%d", c.Host, c.Port)

	var client SSHClienter
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = SSHRetryInitial
	b.MaxElapsedTime = SSHRetryMaxElapsed

	err = backoff.Retry(func() error {
		var dialErr error
		client, dialErr = dial("tcp", addr, clientConfig)
		if dialErr != nil {
			if isPermanentDialError(dialErr) {
				return backoff.Permanent(dialErr)
			}
			l.Debugf("SSH dial to %s failed, will retry: %v", addr, dialErr)
			return dialErr
		}
		return nil
	}, backoff.WithContext(b, ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	return client, nil
}

func (c *SSHConfig) clientConfig() (*ssh.ClientConfig, error) {
	var auths []ssh.AuthMethod

	if c.PrivateKeyPath != "" {
		signer, err := loadSigner(c.PrivateKeyPath, c.PrivateKeyPass)
		if err != nil {
			return nil, fmt.Errorf("failed to load private key: %w", err)
		}
		auths = append(auths, ssh.PublicKeys(signer))
	}

	if c.Password != "" {
		auths = append(auths, ssh.Password(c.Password))
	}

	// SSH agent, when one is running.
	if !c.DisableAgentAuth {
		if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" {
			if conn, err := net.Dial("unix", sock); err == nil {
				auths = append(auths, ssh.PublicKeysCallback(agent.NewClient(conn).Signers))
			}
		}
	}

	if len(auths) == 0 {
		return nil, fmt.Errorf("no authentication method available")
	}

	policy := c.HostKeyPolicy
	if policy == nil {
		policy = KnownHostsPolicy("")
	}
	hostKeyCallback, err := policy.Callback()
	if err != nil {
		return nil, err
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = SSHDialTimeout
	}

	return &ssh.ClientConfig{
		User:            c.User,
		Auth:            auths,
		HostKeyCallback: hostKeyCallback,
		Timeout:         timeout,
	}, nil
}

func loadSigner(path, passphrase string) (ssh.Signer, error) {
	expandedPath, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand private key path: %w", err)
	}

	keyBytes, err := os.ReadFile(expandedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key: %w", err)
	}

	if passphrase != "" {
		return ssh.ParsePrivateKeyWithPassphrase(keyBytes, []byte(passphrase))
	}
	return ssh.ParsePrivateKey(keyBytes)
}

func dialSSH(network, addr string, config *ssh.ClientConfig) (SSHClienter, error) {
	d := net.Dialer{Timeout: config.Timeout}
	conn, err := d.Dial(network, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial: %w", err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &SSHClientWrapper{Client: ssh.NewClient(sshConn, chans, reqs)}, nil
}

// isPermanentDialError reports whether retrying the dial cannot help.
func isPermanentDialError(err error) bool {
	var keyErr *knownhosts.KeyError
	if errors.As(err, &keyErr) {
		return true
	}
	return strings.Contains(err.Error(), "unable to authenticate")
}
