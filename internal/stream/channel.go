package stream

import (
	"context"
	"sync/atomic"
	"time"

	"swasthyaflow/pkg/logger"

	"go.uber.org/zap"
)

// DefaultKeepAlive interval between keep-alive writes
const DefaultKeepAlive = 25 * time.Second

// State push channel lifecycle state
type State int32

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Sink writes framed events to one transport.
type Sink interface {
	// Open prepares the transport (headers, handshake). A failure keeps the channel out of the registry.
	Open() error
	Send(ev Event) error
	KeepAlive() error
}

// ChannelOptions tuning for a push channel
type ChannelOptions struct {
	KeepAlive time.Duration
	Buffer    int
}

// Channel drives one push connection through Connecting, Open and Closed.
type Channel struct {
	registry *Registry
	ownerID  string
	sink     Sink
	opts     ChannelOptions
	sub      *Subscriber
	state    atomic.Int32
}

// NewChannel creates a channel in the Connecting state.
func NewChannel(registry *Registry, ownerID string, sink Sink, opts ChannelOptions) *Channel {
	if opts.KeepAlive <= 0 {
		opts.KeepAlive = DefaultKeepAlive
	}
	return &Channel{
		registry: registry,
		ownerID:  ownerID,
		sink:     sink,
		opts:     opts,
		sub:      NewSubscriber(opts.Buffer),
	}
}

// State returns the current lifecycle state.
func (c *Channel) State() State {
	return State(c.state.Load())
}

// Serve opens the channel and pumps events until ctx is done. Write errors are
// logged and ignored; only ctx ends the channel.
func (c *Channel) Serve(ctx context.Context) error {
	if err := c.sink.Open(); err != nil {
		c.state.Store(int32(StateClosed))
		return err
	}

	c.registry.Register(c.ownerID, c.sub)
	c.state.Store(int32(StateOpen))
	logger.Debug("push channel opened", zap.String("subscriber", c.sub.ID()), zap.String("owner", c.ownerID))

	ticker := time.NewTicker(c.opts.KeepAlive)
	defer func() {
		ticker.Stop()
		c.registry.Unregister(c.ownerID, c.sub)
		c.state.Store(int32(StateClosed))
		logger.Debug("push channel closed", zap.String("subscriber", c.sub.ID()), zap.String("owner", c.ownerID))
	}()

	// initial snapshot
	c.registry.Broadcast(ctx, c.ownerID)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-c.sub.Events():
			if err := c.sink.Send(ev); err != nil {
				logger.DebugCtx(ctx, "push channel %s write failed: %v", c.sub.ID(), err)
			}
		case <-ticker.C:
			if err := c.sink.KeepAlive(); err != nil {
				logger.DebugCtx(ctx, "push channel %s keep-alive failed: %v", c.sub.ID(), err)
			}
		}
	}
}
