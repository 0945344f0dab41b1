package nxapi

import "time"

// Client configuration options using the functional options pattern

// Username sets the username for NX-API authentication
func Username(username string) func(*Client) {
	return func(c *Client) {
		c.username = username
	}
}

// Password sets the password for NX-API authentication
func Password(password string) func(*Client) {
	return func(c *Client) {
		c.password = password
	}
}

// Scheme selects http or https transport
func Scheme(scheme string) func(*Client) {
	return func(c *Client) {
		c.Scheme = scheme
	}
}

// Port overrides the scheme's default port
func Port(port int) func(*Client) {
	return func(c *Client) {
		c.Port = port
	}
}

// Timeout sets the per-request timeout
func Timeout(timeout time.Duration) func(*Client) {
	return func(c *Client) {
		c.Timeout = timeout
	}
}

// Insecure disables TLS certificate verification. Lab switches commonly
// run NX-API with self-signed certificates.
func Insecure(insecure bool) func(*Client) {
	return func(c *Client) {
		c.Insecure = insecure
	}
}
