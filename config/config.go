// Package config provides configuration for the Mollom client
package config

import (
	"fmt"

	"github.com/mollom/mollomclient-go/errors"
)

const (
	// DefaultBootstrapHost answers getServerList
	DefaultBootstrapHost = "xmlrpc.mollom.com"
	// DefaultTimeout in seconds
	DefaultTimeout = 10
	// DefaultUserAgent is sent with every request
	DefaultUserAgent = "MollomGo/0.1"
	// DefaultVersion is the API version, used as the request path
	DefaultVersion = "1.0"
)

// Config represents configuration for the Mollom client
type Config struct {
	// Public key identifying the site
	PublicKey string `mapstructure:"public_key"`
	// Private key used to sign requests
	PrivateKey string `mapstructure:"private_key"`
	// Candidate servers, tried in order
	Servers []string `mapstructure:"servers"`
	// Host answering getServerList
	BootstrapHost string `mapstructure:"bootstrap_host"`
	// Extra bootstrap attempts after transient failures
	BootstrapRetries uint64 `mapstructure:"bootstrap_retries"`
	// Timeout duration for requests in seconds
	Timeout int `mapstructure:"timeout"`
	// User-Agent header value
	UserAgent string `mapstructure:"user_agent"`
	// API version
	Version string `mapstructure:"version"`
	// Accept zstd compressed responses
	ZSTD bool `mapstructure:"zstd"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		BootstrapHost: DefaultBootstrapHost,
		Timeout:       DefaultTimeout,
		UserAgent:     DefaultUserAgent,
		Version:       DefaultVersion,
	}
}

// WithKeys sets the public and private key
func (c *Config) WithKeys(publicKey, privateKey string) *Config {
	c.PublicKey = publicKey
	c.PrivateKey = privateKey
	return c
}

// WithServers appends servers to the candidate list
func (c *Config) WithServers(servers ...string) *Config {
	c.Servers = append(c.Servers, servers...)
	return c
}

// WithBootstrapHost sets the host answering getServerList
func (c *Config) WithBootstrapHost(host string) *Config {
	c.BootstrapHost = host
	return c
}

// WithBootstrapRetries sets the number of extra bootstrap attempts
func (c *Config) WithBootstrapRetries(retries uint64) *Config {
	c.BootstrapRetries = retries
	return c
}

// WithTimeout sets the timeout for requests in seconds
func (c *Config) WithTimeout(timeout int) *Config {
	c.Timeout = timeout
	return c
}

// WithUserAgent sets the User-Agent header
func (c *Config) WithUserAgent(userAgent string) *Config {
	c.UserAgent = userAgent
	return c
}

// WithVersion sets the API version
func (c *Config) WithVersion(version string) *Config {
	c.Version = version
	return c
}

// WithZSTD enables or disables zstd response compression
func (c *Config) WithZSTD(enabled bool) *Config {
	c.ZSTD = enabled
	return c
}

// HasCredentials reports whether both keys are set
func (c *Config) HasCredentials() bool {
	return c.PublicKey != "" && c.PrivateKey != ""
}

// Validate checks the settings needed to build a client. Missing keys are
// not an error here; calls fail until they are set.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return errors.NewConfigError(fmt.Sprintf("invalid timeout %d, it must be positive", c.Timeout))
	}
	if c.BootstrapHost == "" {
		return errors.NewConfigError("bootstrap host is empty")
	}
	if c.Version == "" {
		return errors.NewConfigError("API version is empty")
	}
	return nil
}

// Clone returns a deep copy of c
func (c *Config) Clone() *Config {
	out := *c
	out.Servers = append([]string(nil), c.Servers...)
	return &out
}
