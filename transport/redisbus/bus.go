package redisbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wricardo/mcp-training/honeybear/game/engine"
)

const (
	// DefaultPrefix namespaces the pub/sub channels and snapshot keys
	DefaultPrefix = "honeybear:"

	// DefaultSnapshotTTL matches the session expiry window
	DefaultSnapshotTTL = 24 * time.Hour

	publishTimeout = 2 * time.Second
)

// Events carried on the bus
const (
	EventStateUpdate = "state_update"
	EventTick        = "tick"
)

// ErrNoSnapshot is returned by Latest when nothing was published for a session
var ErrNoSnapshot = errors.New("no snapshot for session")

// Envelope is the JSON payload published for every state change
type Envelope struct {
	SessionID string            `json:"session_id"`
	Event     string            `json:"event"`
	GameState *engine.GameState `json:"game_state"`
}

// Sink receives envelopes read from the bus. The websocket hub satisfies it.
type Sink interface {
	BroadcastToSession(sessionID string, state *engine.GameState)
	BroadcastTick(sessionID string, state *engine.GameState)
}

// Option configures a Bus
type Option func(*Bus)

// WithPrefix overrides DefaultPrefix
func WithPrefix(prefix string) Option {
	return func(b *Bus) {
		b.prefix = prefix
	}
}

// WithSnapshotTTL sets how long the latest snapshot of a session is kept. Zero disables snapshots.
func WithSnapshotTTL(ttl time.Duration) Option {
	return func(b *Bus) {
		b.ttl = ttl
	}
}

// Bus fans session snapshots out to every server instance through Redis
// pub/sub. Instances deliver what they read, including their own
// publications, to their local websocket clients.
type Bus struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// New creates a bus on top of an existing client
func New(client *redis.Client, opts ...Option) *Bus {
	b := &Bus{
		client: client,
		prefix: DefaultPrefix,
		ttl:    DefaultSnapshotTTL,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bus) channel(sessionID string) string {
	return b.prefix + "state:" + sessionID
}

func (b *Bus) snapshotKey(sessionID string) string {
	return b.prefix + "last:" + sessionID
}

// Publish sends a snapshot to every subscriber and stores it as the latest one
func (b *Bus) Publish(ctx context.Context, sessionID, event string, state *engine.GameState) error {
	payload, err := json.Marshal(Envelope{SessionID: sessionID, Event: event, GameState: state})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	pipe := b.client.Pipeline()
	if b.ttl > 0 {
		pipe.Set(ctx, b.snapshotKey(sessionID), payload, b.ttl)
	}
	pipe.Publish(ctx, b.channel(sessionID), payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish %s: %w", sessionID, err)
	}
	return nil
}

// BroadcastToSession publishes a state update. Errors are logged.
func (b *Bus) BroadcastToSession(sessionID string, state *engine.GameState) {
	b.publishLogged(sessionID, EventStateUpdate, state)
}

// BroadcastTick publishes a clock tick. Errors are logged.
func (b *Bus) BroadcastTick(sessionID string, state *engine.GameState) {
	b.publishLogged(sessionID, EventTick, state)
}

func (b *Bus) publishLogged(sessionID, event string, state *engine.GameState) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := b.Publish(ctx, sessionID, event, state); err != nil {
		log.Printf("redisbus: %v", err)
	}
}

// Latest returns the most recent snapshot published for a session
func (b *Bus) Latest(ctx context.Context, sessionID string) (*engine.GameState, error) {
	payload, err := b.client.Get(ctx, b.snapshotKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot %s: %w", sessionID, err)
	}

	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", sessionID, err)
	}
	return env.GameState, nil
}

// Forget drops the stored snapshot of a deleted session
func (b *Bus) Forget(ctx context.Context, sessionID string) error {
	return b.client.Del(ctx, b.snapshotKey(sessionID)).Err()
}

// Listener is an active subscription to every session channel
type Listener struct {
	pubsub *redis.PubSub
}

// Listen subscribes to all session channels. It returns once Redis has
// confirmed the subscription, so nothing published afterwards is missed.
func (b *Bus) Listen(ctx context.Context) (*Listener, error) {
	pubsub := b.client.PSubscribe(ctx, b.prefix+"state:*")
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	return &Listener{pubsub: pubsub}, nil
}

// Forward delivers envelopes to sink until ctx is done or the subscription is closed
func (l *Listener) Forward(ctx context.Context, sink Sink) error {
	ch := l.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Printf("redisbus: dropping malformed message on %s: %v", msg.Channel, err)
				continue
			}
			switch env.Event {
			case EventTick:
				sink.BroadcastTick(env.SessionID, env.GameState)
			default:
				sink.BroadcastToSession(env.SessionID, env.GameState)
			}
		}
	}
}

// Close ends the subscription
func (l *Listener) Close() error {
	return l.pubsub.Close()
}

// Run listens and forwards to sink until ctx is done
func (b *Bus) Run(ctx context.Context, sink Sink) error {
	l, err := b.Listen(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	defer l.Close()

	err = l.Forward(ctx, sink)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
