package nats

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	natsgo "github.com/nats-io/nats.go"

	"github.com/codewandler/inbox-go/internal/codec"
)

// Sender accepts messages without blocking; *inbox.Inbox satisfies it.
type Sender[T any] interface {
	Send(msg T)
}

type BridgeConfig[T any] struct {
	Connect Connector
	Subject string
	// Queue joins a queue group so that bridges sharing it split the
	// subject's messages.
	Queue  string
	Target Sender[T]
	// Codec defaults to JSON.
	Codec  codec.Codec[T]
	Logger *slog.Logger
}

// Bridge feeds messages published on a subject into an inbox. The NATS
// client calls the subscription handler sequentially, so messages reach the
// inbox in the order the subscription received them.
type Bridge[T any] struct {
	subject string
	target  Sender[T]
	codec   codec.Codec[T]
	log     *slog.Logger
	sub     *natsgo.Subscription
	release func()

	received     atomic.Uint64
	decodeErrors atomic.Uint64
	closeOnce    sync.Once
}

func NewBridge[T any](cfg BridgeConfig[T]) (*Bridge[T], error) {
	if cfg.Connect == nil {
		return nil, ErrNoConnection
	}
	if cfg.Subject == "" {
		return nil, fmt.Errorf("nats bridge: subject is required")
	}
	if cfg.Target == nil {
		return nil, fmt.Errorf("nats bridge %s: target is required", cfg.Subject)
	}
	b := newBridge(cfg)

	nc, release, err := cfg.Connect()
	if err != nil {
		return nil, fmt.Errorf("nats bridge %s: connect: %w", cfg.Subject, err)
	}

	if cfg.Queue != "" {
		b.sub, err = nc.QueueSubscribe(cfg.Subject, cfg.Queue, b.handle)
	} else {
		b.sub, err = nc.Subscribe(cfg.Subject, b.handle)
	}
	if err != nil {
		release()
		return nil, fmt.Errorf("nats bridge %s: subscribe: %w", cfg.Subject, err)
	}
	b.release = release

	b.log.Debug("nats bridge subscribed", slog.String("queue", cfg.Queue))
	return b, nil
}

func newBridge[T any](cfg BridgeConfig[T]) *Bridge[T] {
	if cfg.Codec == nil {
		cfg.Codec = codec.JSON[T]{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Bridge[T]{
		subject: cfg.Subject,
		target:  cfg.Target,
		codec:   cfg.Codec,
		log:     cfg.Logger.With(slog.String("subject", cfg.Subject)),
	}
}

func (b *Bridge[T]) handle(m *natsgo.Msg) {
	msg, err := b.codec.Decode(m.Data)
	if err != nil {
		b.decodeErrors.Add(1)
		b.log.Warn("nats bridge: dropping undecodable message",
			slog.String("msg_subject", m.Subject),
			slog.Any("error", err),
		)
		return
	}
	b.received.Add(1)
	b.target.Send(msg)
}

// Received returns the number of messages handed to the target.
func (b *Bridge[T]) Received() uint64 { return b.received.Load() }

// DecodeErrors returns the number of payloads that failed to decode.
func (b *Bridge[T]) DecodeErrors() uint64 { return b.decodeErrors.Load() }

// Close unsubscribes and releases the connection. Idempotent.
func (b *Bridge[T]) Close() error {
	var err error
	b.closeOnce.Do(func() {
		if b.sub != nil {
			err = b.sub.Unsubscribe()
		}
		if b.release != nil {
			b.release()
		}
	})
	return err
}
