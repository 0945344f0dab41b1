// Package sshcli implements the CLI-over-SSH transport for switches that
// do not have NX-API enabled. Structured show commands append the CLI's
// "| json" filter; configuration runs as a single semicolon-joined line
// entered through configure terminal.
package sshcli

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/crypto/ssh"

	"github.com/nexcon-network/nexcon/pkg/util"
)

// DefaultTimeout bounds the SSH dial.
const DefaultTimeout = 30 * time.Second

// cliErrors match the markers NX-OS prints when it refuses a command.
var cliErrors = []*regexp.Regexp{
	regexp.MustCompile(`(?i)% ?invalid`),
	regexp.MustCompile(`(?i)% ?ambiguous`),
	regexp.MustCompile(`(?i)% ?incomplete`),
	regexp.MustCompile(`(?i)% ?permission denied`),
	regexp.MustCompile(`(?i)syntax error`),
	regexp.MustCompile(`(?i)^ERROR:`),
}

// Conn is an SSH CLI session with one switch.
type Conn struct {
	host string

	// Connection parameters
	Port    int
	Timeout time.Duration

	username string // unexported for security
	password string // unexported for security

	client *ssh.Client
}

// Username sets the username for SSH authentication
func Username(username string) func(*Conn) {
	return func(c *Conn) {
		c.username = username
	}
}

// Password sets the password for SSH authentication
func Password(password string) func(*Conn) {
	return func(c *Conn) {
		c.password = password
	}
}

// Port overrides the default SSH port
func Port(port int) func(*Conn) {
	return func(c *Conn) {
		c.Port = port
	}
}

// Timeout bounds the SSH dial
func Timeout(timeout time.Duration) func(*Conn) {
	return func(c *Conn) {
		c.Timeout = timeout
	}
}

// Dial opens an SSH session to host. Commands run in per-call exec
// sessions over the shared connection.
func Dial(host string, opts ...func(*Conn)) (*Conn, error) {
	c := &Conn{
		host:    host,
		Port:    22,
		Timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	config := &ssh.ClientConfig{
		User: c.username,
		Auth: []ssh.AuthMethod{
			ssh.Password(c.password),
		},
		// Lab/test environment — production would verify host keys.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         c.Timeout,
	}

	client, err := ssh.Dial("tcp", fmt.Sprintf("%s:%d", c.host, c.Port), config)
	if err != nil {
		return nil, util.NewTransportError(c.host, "ssh dial", err)
	}
	c.client = client
	return c, nil
}

// ShowJSON runs a show command with the "| json" filter and returns the
// parsed body. Commands with no output return a zero Result.
func (c *Conn) ShowJSON(ctx context.Context, command string) (gjson.Result, error) {
	out, err := c.exec(ctx, command+" | json")
	if err != nil {
		return gjson.Result{}, err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return gjson.Result{}, nil
	}
	if !gjson.Valid(out) {
		return gjson.Result{}, util.NewCommandError(c.host, command, 0, "command did not return JSON")
	}
	return gjson.Parse(out), nil
}

// ShowText runs a show command and returns its raw output.
func (c *Conn) ShowText(ctx context.Context, command string) (string, error) {
	return c.exec(ctx, command)
}

// Configure enters configuration mode and submits the payload's commands
// as one joined line. NX-OS evaluates them in order; output carrying an
// error marker fails the submission.
func (c *Conn) Configure(ctx context.Context, payload string) error {
	_, err := c.exec(ctx, joinConfig(payload))
	return err
}

// Close shuts the SSH connection down.
func (c *Conn) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// exec runs one command in a fresh session. The session is closed on
// context cancellation, which aborts the remote command.
func (c *Conn) exec(ctx context.Context, command string) (string, error) {
	if c.client == nil {
		return "", util.NewTransportError(c.host, "ssh exec", util.ErrNotConnected)
	}
	session, err := c.client.NewSession()
	if err != nil {
		return "", util.NewTransportError(c.host, "ssh session", err)
	}
	defer session.Close()

	type execResult struct {
		out []byte
		err error
	}
	done := make(chan execResult, 1)
	go func() {
		out, err := session.CombinedOutput(command)
		done <- execResult{out, err}
	}()

	select {
	case <-ctx.Done():
		session.Close()
		return "", util.NewTransportError(c.host, "ssh exec", ctx.Err())
	case r := <-done:
		out := string(r.out)
		if msg, bad := scanCLIErrors(out); bad {
			return "", util.NewCommandError(c.host, command, 0, msg)
		}
		if r.err != nil {
			if _, ok := r.err.(*ssh.ExitError); ok {
				return "", util.NewCommandError(c.host, command, 0, strings.TrimSpace(out))
			}
			return "", util.NewTransportError(c.host, "ssh exec", r.err)
		}
		return out, nil
	}
}

// joinConfig turns a newline-separated payload into the single CLI line
// submitted over the exec channel.
func joinConfig(payload string) string {
	lines := strings.Split(strings.TrimSpace(payload), "\n")
	return "configure terminal ; " + strings.Join(lines, " ; ") + " ; end"
}

// scanCLIErrors looks for NX-OS refusal markers in command output.
func scanCLIErrors(out string) (string, bool) {
	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		for _, re := range cliErrors {
			if re.MatchString(trimmed) {
				return trimmed, true
			}
		}
	}
	return "", false
}
