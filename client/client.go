// Package client provides the Mollom RPC client: request signing, server
// failover and the typed service operations built on top of it.
package client

import (
	"context"
	"io"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/juju/clock"
	"go.uber.org/zap"

	"github.com/mollom/mollomclient-go/config"
	"github.com/mollom/mollomclient-go/errors"
	"github.com/mollom/mollomclient-go/protocol"
)

// Client is a Mollom client. It is safe for concurrent use; the server pool
// is the only state shared between calls.
type Client struct {
	config    *config.Config
	pool      *ServerPool
	transport Transport
	closer    io.Closer
	logger    *zap.Logger
	clock     clock.Clock

	newBackOff func() backoff.BackOff
}

// Option customizes a Client
type Option func(*Client)

// WithTransport replaces the HTTP transport
func WithTransport(t Transport) Option {
	return func(c *Client) {
		c.transport = t
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock sets the time source used for request signing
func WithClock(clk clock.Clock) Option {
	return func(c *Client) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// NewClient creates a new client. cfg is copied; later changes to it have no
// effect on the client. Missing keys are reported by the first call.
func NewClient(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.NewConfigError("nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.Clone()

	c := &Client{
		config: cfg,
		pool:   NewServerPool(cfg.Servers...),
		logger: zap.NewNop(),
		clock:  clock.WallClock,
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.transport == nil {
		t, err := NewHTTPTransport(cfg)
		if err != nil {
			return nil, err
		}
		c.transport = t
		c.closer = t
	}

	return c, nil
}

// Close releases the resources held by the default transport
func (c *Client) Close() error {
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}

// Servers returns the current server list
func (c *Client) Servers() ServerList {
	return c.pool.Snapshot()
}

// AddServers appends hosts to the server list
func (c *Client) AddServers(hosts ...string) {
	c.pool.Append(hosts...)
}

// Call invokes method against the server pool. params must be a struct;
// the authentication members are added to it.
func (c *Client) Call(ctx context.Context, method protocol.Method, params protocol.Value) (protocol.Value, error) {
	return c.call(ctx, "", method, params)
}

// CallHost invokes method against host instead of the pool
func (c *Client) CallHost(ctx context.Context, host string, method protocol.Method, params protocol.Value) (protocol.Value, error) {
	if host = normalizeHost(host); host == "" {
		return protocol.Value{}, errors.NewConfigError("empty host").WithMethod(string(method))
	}
	return c.call(ctx, host, method, params)
}

func (c *Client) call(ctx context.Context, host string, method protocol.Method, params protocol.Value) (protocol.Value, error) {
	if !method.Valid() {
		return protocol.Value{}, errors.NewInvalidMethodError(string(method), protocol.MethodNames())
	}
	if params.Kind() != protocol.KindStruct {
		return protocol.Value{}, errors.NewInvalidArgumentError("params must be a struct, got " + params.Kind().String()).
			WithMethod(string(method))
	}
	if !c.config.HasCredentials() {
		return protocol.Value{}, errors.NewConfigError("public and private key must be set").WithMethod(string(method))
	}

	var servers ServerList
	if host != "" {
		servers = ServerList{host}
	} else {
		servers = c.pool.Snapshot()
	}
	if len(servers) == 0 {
		return protocol.Value{}, errors.NewConfigError("no servers found, populate the server list or call Bootstrap").
			WithMethod(string(method))
	}

	log := c.logger.With(zap.String("call_id", uuid.NewString()), zap.String("method", string(method)))
	timeout := time.Duration(c.config.Timeout) * time.Second

	var (
		attempts    int
		lastErr     error
		busyRetried bool
	)
	for counter := 0; ; counter++ {
		target, err := servers.Next(counter)
		if err != nil {
			log.Warn("no more servers available", zap.Int("attempts", attempts))
			return protocol.Value{}, errors.NewExhaustedServersError(attempts, lastErr).WithMethod(string(method))
		}
		attempts++

		resp, err := c.attempt(ctx, log, target, method, params, timeout)
		if err != nil {
			if errors.IsType(err, errors.TimedOutError) {
				log.Warn("server timed out", zap.String("host", target), zap.Int("attempt", attempts))
				lastErr = err
				continue
			}
			return protocol.Value{}, withMethod(err, method)
		}

		if fault := resp.Fault; fault != nil {
			if fault.Retryable() && !busyRetried {
				busyRetried = true
				lastErr = errors.NewServiceFaultError(fault.Code, fault.Message)
				log.Warn("server busy", zap.String("host", target), zap.Int("code", fault.Code))
				if host != "" && method != protocol.GetServerList {
					// an explicit host has no next entry; continue in the pool
					if servers, err = c.failoverServers(ctx); err != nil {
						return protocol.Value{}, err
					}
					counter = -1
				}
				continue
			}
			log.Info("service fault", zap.String("host", target), zap.Int("code", fault.Code),
				zap.String("message", fault.Message))
			return protocol.Value{}, errors.NewServiceFaultError(fault.Code, fault.Message).WithMethod(string(method))
		}

		log.Debug("call succeeded", zap.String("host", target), zap.Int("attempts", attempts))
		return resp.Result, nil
	}
}

// attempt performs one signed request against host
func (c *Client) attempt(ctx context.Context, log *zap.Logger, host string, method protocol.Method,
	params protocol.Value, timeout time.Duration) (*protocol.Response, error) {
	now := c.clock.Now()
	req := protocol.NewRequest(method, params, c.config.PublicKey, c.config.PrivateKey,
		protocol.Timestamp(now), protocol.Nonce(now))

	log.Debug("sending request", zap.String("host", host), zap.String("time", req.Time))
	data, err := c.transport.Send(ctx, host, req.Body(), timeout)
	if err != nil {
		return nil, err
	}

	resp, err := protocol.ParseResponse(data)
	if err != nil {
		return nil, errors.NewMalformedResponseError("invalid body from "+host, err)
	}
	if resp.Fault == nil {
		if shape, ok := protocol.ResponseShape(method); ok {
			if err := protocol.ExpectShape(string(method), resp.Result, shape); err != nil {
				return nil, errors.NewMalformedResponseError(err.Error(), err)
			}
		}
	}
	return resp, nil
}

func (c *Client) failoverServers(ctx context.Context) (ServerList, error) {
	if servers := c.pool.Snapshot(); len(servers) > 0 {
		return servers, nil
	}
	return c.Bootstrap(ctx)
}

func withMethod(err error, method protocol.Method) error {
	if me, ok := errors.AsMollomError(err); ok && me.Method == "" && me == err {
		return me.WithMethod(string(method))
	}
	return err
}
