// Package query runs the full pipeline for one request: open an SSH session
// to the edge node, run the query client there, and parse its output into a
// tabular result. Nothing is retained between runs.
package query

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/edgequery/edgequery/pkg/beeline"
	"github.com/edgequery/edgequery/pkg/logger"
	"github.com/edgequery/edgequery/pkg/sshutils"
	"github.com/edgequery/edgequery/pkg/table"
)

const defaultRemoteScriptDir = "/tmp"

// Config holds the per-service settings.
type Config struct {
	Command    beeline.Command
	DefaultSQL string
	// BookPath points at an optional YAML file of named queries.
	BookPath string
	Ragged   table.RaggedPolicy
	// RemoteScriptDir is where script-mode queries are uploaded. /tmp by
	// default.
	RemoteScriptDir string
}

// Service orchestrates Runner → Converter. Stateless across runs: every run
// opens one SSH connection and releases it before returning.
type Service struct {
	conn sshutils.Connector
	cfg  Config
	book *Book
}

// NewService builds a Service, loading the named-query book when configured.
func NewService(conn sshutils.Connector, cfg Config) (*Service, error) {
	if conn == nil {
		return nil, fmt.Errorf("connector cannot be nil")
	}
	if cfg.Command.Endpoint == "" {
		return nil, fmt.Errorf("query endpoint cannot be empty")
	}
	if cfg.RemoteScriptDir == "" {
		cfg.RemoteScriptDir = defaultRemoteScriptDir
	}

	book, err := LoadBook(cfg.BookPath)
	if err != nil {
		return nil, err
	}

	return &Service{conn: conn, cfg: cfg, book: book}, nil
}

// Book exposes the loaded named queries.
func (s *Service) Book() *Book {
	return s.book
}

// Names returns the named queries available to callers.
func (s *Service) Names() []string {
	return s.book.Names()
}

// Run executes one inline query and parses the output.
func (s *Service) Run(ctx context.Context, sql string) (*table.Result, error) {
	return s.execute(ctx, s.cfg.Command.Query(sql))
}

// RunNamed resolves name against the book and runs it. An empty name runs
// the configured default query.
func (s *Service) RunNamed(ctx context.Context, name string) (*table.Result, error) {
	sql := s.cfg.DefaultSQL
	if name != "" {
		named, ok := s.book.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownQuery, name)
		}
		sql = named.SQL
	}
	if sql == "" {
		return nil, fmt.Errorf("no query configured")
	}
	return s.Run(ctx, sql)
}

// RunScript uploads a local query script to the edge node and runs the
// client against it.
func (s *Service) RunScript(ctx context.Context, localPath string) (*table.Result, error) {
	content, err := os.ReadFile(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}

	remotePath := path.Join(s.cfg.RemoteScriptDir, "edgequery-"+path.Base(localPath))

	client, err := s.conn.Connect(ctx)
	if err != nil {
		return nil, &ConnectError{Host: s.hostLabel(), Err: err}
	}
	defer client.Close()

	if err := sshutils.PushFile(ctx, client, remotePath, content, false); err != nil {
		return nil, fmt.Errorf("failed to upload script: %w", err)
	}

	return s.runOn(ctx, client, s.cfg.Command.ScriptFile(remotePath))
}

// execute opens a connection, runs cmd, and guarantees the connection is
// released exactly once on every exit path.
func (s *Service) execute(ctx context.Context, cmd string) (*table.Result, error) {
	client, err := s.conn.Connect(ctx)
	if err != nil {
		return nil, &ConnectError{Host: s.hostLabel(), Err: err}
	}
	defer client.Close()

	return s.runOn(ctx, client, cmd)
}

func (s *Service) runOn(ctx context.Context, client sshutils.SSHClienter, cmd string) (*table.Result, error) {
	l := logger.Get()
	l.Debugf("Running remote command: %s", cmd)

	res, err := sshutils.RunCommand(ctx, client, cmd)
	if err != nil {
		cmdErr := &CommandError{Command: cmd, ExitCode: -1, Err: err}
		if res != nil {
			cmdErr.ExitCode = res.ExitCode
			cmdErr.Stderr = res.Stderr
		}
		return nil, cmdErr
	}

	// The client writes progress noise to stderr even on success; surface it
	// in the log but use the stdout result.
	if len(res.Stderr) > 0 {
		l.Warnf("Remote query wrote %d bytes to stderr: %s", len(res.Stderr), string(res.Stderr))
	}

	result, err := table.Parse(res.Stdout, s.cfg.Command.Delimiter(), s.cfg.Ragged)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) hostLabel() string {
	if c, ok := s.conn.(*sshutils.SSHConfig); ok {
		return fmt.Sprintf("%s:%d", c.Host, c.Port)
	}
	return "edge node"
}
