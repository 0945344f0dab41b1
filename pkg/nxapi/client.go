// Package nxapi implements the NX-API transport: show and configuration
// commands POSTed as JSON envelopes to the switch's /ins endpoint over
// HTTP or HTTPS. It satisfies device.Conn.
package nxapi

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/nexcon-network/nexcon/pkg/device"
	"github.com/nexcon-network/nexcon/pkg/util"
)

// Default client configuration values
const (
	DefaultScheme  = "https"
	DefaultTimeout = 30 * time.Second
)

// Client is an NX-API session with one switch.
type Client struct {
	host string

	// Connection parameters
	Scheme   string
	Port     int
	Timeout  time.Duration
	Insecure bool

	username string // unexported for security
	password string // unexported for security

	url string
	hc  *http.Client
}

// NewClient creates an NX-API client for host and verifies nothing until
// the first call.
//
// Example:
//
//	conn, err := nxapi.NewClient("10.0.0.10",
//	    nxapi.Username("admin"),
//	    nxapi.Password("secret"),
//	    nxapi.Insecure(true),
//	)
func NewClient(host string, opts ...func(*Client)) (*Client, error) {
	c := &Client{
		host:    host,
		Scheme:  DefaultScheme,
		Timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	switch c.Scheme {
	case "http":
		if c.Port == 0 {
			c.Port = 80
		}
	case "https":
		if c.Port == 0 {
			c.Port = 443
		}
	default:
		return nil, fmt.Errorf("nxapi: scheme must be http or https, got %q", c.Scheme)
	}

	transport := &http.Transport{}
	if c.Scheme == "https" && c.Insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	c.hc = &http.Client{
		Timeout:   c.Timeout,
		Transport: transport,
	}
	c.url = fmt.Sprintf("%s://%s:%d/ins", c.Scheme, c.host, c.Port)
	return c, nil
}

// ShowJSON runs one show command with structured output and returns the
// parsed body. Commands without output return a zero Result.
func (c *Client) ShowJSON(ctx context.Context, command string) (gjson.Result, error) {
	outputs, err := c.call(ctx, typeCLIShow, command)
	if err != nil {
		return gjson.Result{}, err
	}
	if err := c.checkOutputs(command, outputs); err != nil {
		return gjson.Result{}, err
	}
	return firstOutput(outputs).Get("body"), nil
}

// ShowText runs one show command and returns its raw ASCII output.
func (c *Client) ShowText(ctx context.Context, command string) (string, error) {
	outputs, err := c.call(ctx, typeCLIShowASCII, command)
	if err != nil {
		return "", err
	}
	if err := c.checkOutputs(command, outputs); err != nil {
		return "", err
	}
	return firstOutput(outputs).Get("body").String(), nil
}

// Configure submits a configuration payload, one command per line, as a
// single NX-API cli_conf call. The device evaluates the commands in order
// and reports a result per command; the first rejection is returned as a
// CommandError naming the offending command.
func (c *Client) Configure(ctx context.Context, payload string) error {
	input := strings.Join(strings.Split(strings.TrimSpace(payload), "\n"), commandSeparator)
	outputs, err := c.call(ctx, typeCLIConf, input)
	if err != nil {
		return err
	}
	return c.checkOutputs(input, outputs)
}

// Close releases idle connections. NX-API itself is stateless per call.
func (c *Client) Close() error {
	c.hc.CloseIdleConnections()
	return nil
}

// call POSTs one envelope and returns the outputs node.
func (c *Client) call(ctx context.Context, reqType, input string) (gjson.Result, error) {
	body, err := requestBody(reqType, input)
	if err != nil {
		return gjson.Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(body))
	if err != nil {
		return gjson.Result{}, util.NewTransportError(c.host, "POST /ins", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.hc.Do(req)
	if err != nil {
		return gjson.Result{}, util.NewTransportError(c.host, "POST /ins", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, util.NewTransportError(c.host, "reading response", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return gjson.Result{}, util.NewTransportError(c.host, "POST /ins",
			fmt.Errorf("authentication failed (HTTP 401)"))
	case resp.StatusCode != http.StatusOK:
		return gjson.Result{}, util.NewTransportError(c.host, "POST /ins",
			fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(data))))
	}

	outputs := gjson.ParseBytes(data).Get("ins_api.outputs.output")
	if !outputs.Exists() {
		return gjson.Result{}, util.NewTransportError(c.host, "POST /ins",
			fmt.Errorf("malformed NX-API response"))
	}
	return outputs, nil
}

// checkOutputs verifies the per-command result codes. input is the
// separator-joined command sequence that produced the outputs.
func (c *Client) checkOutputs(input string, outputs gjson.Result) error {
	commands := strings.Split(input, commandSeparator)
	for i, out := range device.Rows(outputs) {
		code := int(out.Get("code").Int())
		if code == 200 {
			continue
		}
		command := input
		if i < len(commands) {
			command = strings.TrimSpace(commands[i])
		}
		msg := out.Get("msg").String()
		if clierror := strings.TrimSpace(out.Get("clierror").String()); clierror != "" {
			msg = fmt.Sprintf("%s: %s", msg, clierror)
		}
		return util.NewCommandError(c.host, command, code, msg)
	}
	return nil
}

func firstOutput(outputs gjson.Result) gjson.Result {
	rows := device.Rows(outputs)
	if len(rows) == 0 {
		return gjson.Result{}
	}
	return rows[0]
}
