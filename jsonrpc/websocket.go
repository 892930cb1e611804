package jsonrpc

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"
	"github.com/sethvargo/go-retry"
)

const (
	wsPrefix  = "ws://"
	wssPrefix = "wss://"

	defaultCallTimeout = 30 * time.Second
	defaultDialBackoff = 500 * time.Millisecond
)

type DialOption func(*dialConfig)

type dialConfig struct {
	logger      hclog.Logger
	headers     http.Header
	callTimeout time.Duration
	retries     uint64
	backoff     time.Duration
}

func WithLogger(logger hclog.Logger) DialOption {
	return func(c *dialConfig) {
		c.logger = logger
	}
}

// WithCallTimeout bounds how long a request waits for its response
func WithCallTimeout(timeout time.Duration) DialOption {
	return func(c *dialConfig) {
		c.callTimeout = timeout
	}
}

// WithDialRetries retries establishing the connection with exponential backoff.
// Only the dial is retried, never a request.
func WithDialRetries(retries uint64, backoff time.Duration) DialOption {
	return func(c *dialConfig) {
		c.retries = retries
		c.backoff = backoff
	}
}

// Dial connects to a node websocket endpoint
func Dial(ctx context.Context, url string, opts ...DialOption) (*Client, error) {
	cfg := &dialConfig{
		logger:      hclog.NewNullLogger(),
		headers:     http.Header{},
		callTimeout: defaultCallTimeout,
		backoff:     defaultDialBackoff,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if !strings.HasPrefix(url, wsPrefix) && !strings.HasPrefix(url, wssPrefix) {
		return nil, fmt.Errorf("unsupported endpoint %q, expected ws:// or wss://", url)
	}

	logger := cfg.logger.Named("jsonrpc")

	var conn *websocket.Conn

	backoff := retry.WithMaxRetries(cfg.retries, retry.NewExponential(cfg.backoff))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		c, _, err := websocket.DefaultDialer.DialContext(ctx, url, cfg.headers)
		if err != nil {
			logger.Debug("dial failed", "url", url, "err", err)

			return retry.RetryableError(err)
		}

		conn = c

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}

	logger.Info("connected", "url", url)

	return newClient(newStream(&websocketCodec{conn: conn}, logger, cfg.callTimeout), logger), nil
}

type websocketCodec struct {
	conn *websocket.Conn
}

func (w *websocketCodec) Close() error {
	return w.conn.Close()
}

func (w *websocketCodec) Write(b []byte) error {
	return w.conn.WriteMessage(websocket.TextMessage, b)
}

func (w *websocketCodec) Read(b []byte) ([]byte, error) {
	_, buf, err := w.conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	return append(b, buf...), nil
}
