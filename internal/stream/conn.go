// Package stream implements the event-stream side of the gateway: one
// long-lived connection per session, driven by an explicit state machine.
package stream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecgate/internal/domain"
	"github.com/kailas-cloud/vecgate/internal/metrics"
)

// Task is one prepared call: validation already happened at the boundary,
// execution belongs to the connection's writer loop.
type Task func(ctx context.Context) any

// TransitionHook observes state changes. Called from the writer goroutine.
type TransitionHook func(from, to State)

const taskQueueSize = 16

var heartbeatData = []byte("{}")

// Conn is one streaming connection. A single goroutine (Run) owns the
// writer: the endpoint frame, heartbeats, and call responses are all
// serialized through it, so frames never interleave.
type Conn struct {
	id        string
	w         io.Writer
	flush     func()
	heartbeat time.Duration
	logger    *zap.Logger
	hook      TransitionHook

	tasks   chan Task
	done    chan struct{}
	closing sync.Once

	// owned by the Run goroutine
	state   State
	eventID uint64
}

// Option configures a Conn.
type Option func(*Conn)

// WithTransitionHook installs an observer for state changes.
func WithTransitionHook(hook TransitionHook) Option {
	return func(c *Conn) { c.hook = hook }
}

// WithLogger sets the connection logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Conn) { c.logger = logger }
}

// NewConn creates a connection around w with a fresh session id. When w
// supports flushing, every frame is flushed to the client immediately.
func NewConn(w io.Writer, heartbeat time.Duration, opts ...Option) *Conn {
	c := &Conn{
		id:        uuid.NewString(),
		w:         w,
		heartbeat: heartbeat,
		logger:    zap.NewNop(),
		state:     StateConnecting,
		tasks:     make(chan Task, taskQueueSize),
		done:      make(chan struct{}),
	}
	if c.heartbeat <= 0 {
		c.heartbeat = 15 * time.Second
	}
	if f, ok := w.(http.Flusher); ok {
		c.flush = f.Flush
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the session id clients use on the POST channel.
func (c *Conn) ID() string { return c.id }

// Endpoint returns the POST path for this session, sent in the first frame.
func (c *Conn) Endpoint() string { return "/sse?session_id=" + c.id }

// Submit queues one prepared call for the writer loop. It fails with
// domain.ErrSessionNotFound once the connection has closed.
func (c *Conn) Submit(task Task) error {
	select {
	case c.tasks <- task:
		return nil
	case <-c.done:
		return domain.ErrSessionNotFound
	}
}

// Run drives the connection until ctx ends or a write fails, then closes
// it. It blocks and must be called from the connection's handler goroutine.
func (c *Conn) Run(ctx context.Context) {
	metrics.StreamSessionsActive.Inc()
	defer metrics.StreamSessionsActive.Dec()
	defer c.close()

	if err := c.emit(Frame{Event: EventEndpoint, Data: []byte(c.Endpoint())}); err != nil {
		c.logger.Warn("Stream endpoint frame failed", zap.String("session_id", c.id), zap.Error(err))
		return
	}
	c.transition(StateOpen)

	ticker := time.NewTicker(c.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.emit(Frame{Event: EventHeartbeat, Data: heartbeatData}); err != nil {
				c.logger.Warn("Stream heartbeat failed", zap.String("session_id", c.id), zap.Error(err))
				return
			}
		case task := <-c.tasks:
			if err := c.respond(ctx, task); err != nil {
				c.logger.Warn("Stream response failed", zap.String("session_id", c.id), zap.Error(err))
				return
			}
		}
	}
}

// respond runs one call through the per-call state sequence and emits the
// result envelope as a message frame.
func (c *Conn) respond(ctx context.Context, task Task) error {
	c.transition(StateReceived)
	c.transition(StateProcessing)

	result := task(ctx)

	data, err := json.Marshal(result)
	if err != nil {
		// Конверты всегда сериализуемы; если нет — соединение не роняем
		c.logger.Error("Failed to marshal stream envelope", zap.String("session_id", c.id), zap.Error(err))
		return nil
	}

	c.eventID++
	frame := Frame{
		ID:    strconv.FormatUint(c.eventID, 10),
		Event: EventMessage,
		Data:  data,
	}
	if err := c.emit(frame); err != nil {
		return err
	}
	c.transition(StateResponded)
	return nil
}

func (c *Conn) emit(f Frame) error {
	if err := writeFrame(c.w, f); err != nil {
		return err
	}
	if c.flush != nil {
		c.flush()
	}
	metrics.StreamEventsTotal.WithLabelValues(f.Event).Inc()
	return nil
}

func (c *Conn) transition(to State) {
	from := c.state
	c.state = to
	if c.hook != nil {
		c.hook(from, to)
	}
}

func (c *Conn) close() {
	c.closing.Do(func() {
		c.transition(StateClosed)
		close(c.done)
	})
}
