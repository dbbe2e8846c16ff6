package client

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/mollom/mollomclient-go/config"
	"github.com/mollom/mollomclient-go/errors"
)

// Transport delivers a request body to a host and returns the response body.
// A timeout must be reported as an errors.TimedOutError so the caller can fail
// over to the next server; other errors are treated as fatal.
type Transport interface {
	Send(ctx context.Context, host string, body []byte, timeout time.Duration) ([]byte, error)
}

// HTTPTransport posts XML-RPC bodies over plain HTTP, one connection per request
type HTTPTransport struct {
	httpClient *http.Client
	userAgent  string
	path       string
	decoder    *zstd.Decoder
}

// NewHTTPTransport creates a transport from cfg
func NewHTTPTransport(cfg *config.Config) (*HTTPTransport, error) {
	dialer := &net.Dialer{}
	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, &dialError{err: err}
			}
			return conn, nil
		},
		DisableKeepAlives:  true,
		DisableCompression: true,
		Proxy:              nil,
	}

	t := &HTTPTransport{
		httpClient: &http.Client{Transport: transport},
		userAgent:  cfg.UserAgent,
		path:       "/" + strings.TrimPrefix(cfg.Version, "/"),
	}

	if cfg.ZSTD {
		decoder, err := zstd.NewReader(nil)
		if err != nil {
			return nil, errors.NewConfigError(fmt.Sprintf("failed to create ZSTD decoder: %v", err))
		}
		t.decoder = decoder
	}

	return t, nil
}

// Close releases the zstd decoder, if any
func (t *HTTPTransport) Close() error {
	if t.decoder != nil {
		t.decoder.Close()
	}
	t.httpClient.CloseIdleConnections()
	return nil
}

// Send posts body to http://host/<version> and reads the whole response
// within timeout.
func (t *HTTPTransport) Send(ctx context.Context, host string, body []byte, timeout time.Duration) ([]byte, error) {
	host = normalizeHost(host)

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// WroteRequest runs on the transport's write goroutine
	var (
		mu       sync.Mutex
		writeErr error
	)
	trace := &httptrace.ClientTrace{
		WroteRequest: func(info httptrace.WroteRequestInfo) {
			mu.Lock()
			writeErr = info.Err
			mu.Unlock()
		},
	}
	wroteErr := func() error {
		mu.Lock()
		defer mu.Unlock()
		return writeErr
	}

	req, err := http.NewRequestWithContext(httptrace.WithClientTrace(attemptCtx, trace),
		http.MethodPost, "http://"+host+t.path, bytes.NewReader(body))
	if err != nil {
		return nil, errors.NewSendError(host, err)
	}
	req.Close = true
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("Content-Type", "text/xml")
	if t.decoder != nil {
		req.Header.Set("Accept-Encoding", "zstd")
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, classify(ctx, attemptCtx, host, err, wroteErr())
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(ctx, attemptCtx, host, err, nil)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewMalformedResponseError(
			fmt.Sprintf("invalid headers from %s: HTTP %d", host, resp.StatusCode), nil)
	}

	if resp.Header.Get("Content-Encoding") == "zstd" {
		if t.decoder == nil {
			return nil, errors.NewMalformedResponseError("unexpected zstd response from "+host, nil)
		}
		decompressed, err := t.decoder.DecodeAll(data, nil)
		if err != nil {
			return nil, errors.NewMalformedResponseError("ZSTD decompression failed", err)
		}
		data = decompressed
	}

	return data, nil
}

// classify maps an I/O failure to the error taxonomy. Cancellation of the
// caller's context wins over everything else.
func classify(parent, attempt context.Context, host string, err, writeErr error) error {
	if parent.Err() != nil {
		return errors.NewReadError(host, parent.Err())
	}
	if stderrors.Is(attempt.Err(), context.DeadlineExceeded) || isTimeout(err) {
		return errors.NewTimedOutError(host, err)
	}
	var de *dialError
	if stderrors.As(err, &de) {
		return errors.NewConnectError(host, de.err)
	}
	if writeErr != nil {
		return errors.NewSendError(host, writeErr)
	}
	return errors.NewReadError(host, err)
}

type dialError struct {
	err error
}

func (e *dialError) Error() string { return e.err.Error() }

func (e *dialError) Unwrap() error { return e.err }

func isTimeout(err error) bool {
	for err != nil {
		if t, ok := err.(interface{ Timeout() bool }); ok && t.Timeout() {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}
