package feed

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/blockpeak/mod-sandbox/errors"
)

// Sink receives decoded channel frames. *sandbox.Sandbox implements it.
type Sink interface {
	DeliverServerData(mod string, data []byte) error
	Enable(mod string) error
	Disable(mod string) error
}

// Config controls the channel client.
type Config struct {
	// URL is the websocket endpoint, e.g. ws://host/mods.
	URL string

	// Sink receives every decoded frame.
	Sink Sink

	// DialTimeout bounds connection establishment. Zero means 10s.
	DialTimeout time.Duration
}

const defaultDialTimeout = 10 * time.Second

// Client reads mod channel frames from a server connection.
type Client struct {
	conn *websocket.Conn
	sink Sink
}

// Dial connects to the channel endpoint.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Sink == nil {
		return nil, errors.NotInitialized(errors.PhaseChannel, "sink")
	}

	timeout := cfg.DialTimeout
	if timeout == 0 {
		timeout = defaultDialTimeout
	}
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, cfg.URL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseChannel, errors.KindUnknownChannel, err, "dial "+cfg.URL)
	}

	Logger().Info("mod channel connected", zap.String("url", cfg.URL))
	return &Client{conn: conn, sink: cfg.Sink}, nil
}

// Run reads frames until the connection fails or ctx is canceled. Frame
// level problems are logged and skipped; only transport failures end the
// loop.
func (c *Client) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			c.conn.Close()
		case <-done:
		}
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				Logger().Info("mod channel closed by server")
				return nil
			}
			return errors.Wrap(errors.PhaseChannel, errors.KindUnknownChannel, err, "read frame")
		}

		frame, err := DecodeFrame(msg)
		if err != nil {
			Logger().Warn("skipping malformed frame",
				zap.Int("bytes", len(msg)),
				zap.Error(err))
			continue
		}
		c.dispatch(frame)
	}
}

func (c *Client) dispatch(frame Frame) {
	var err error
	switch frame.Type {
	case FrameData:
		err = c.sink.DeliverServerData(frame.Mod, frame.Data)
	case FrameEnable:
		err = c.sink.Enable(frame.Mod)
	case FrameDisable:
		err = c.sink.Disable(frame.Mod)
	}
	if err != nil {
		Logger().Warn("dropping frame",
			zap.String("type", string(frame.Type)),
			zap.String("mod", frame.Mod),
			zap.Error(err))
	}
}

// Close tears down the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
