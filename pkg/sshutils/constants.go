package sshutils

import "time"

const (
	SSHDefaultPort     = 22
	SSHDialTimeout     = 10 * time.Second
	SSHRetryMaxElapsed = 30 * time.Second
	SSHRetryInitial    = 1 * time.Second
)
