package nats

import (
	"context"
	"fmt"

	natsgo "github.com/nats-io/nats.go"

	"github.com/codewandler/inbox-go/internal/codec"
)

// Publisher encodes messages and publishes them on one subject.
type Publisher[T any] struct {
	subject string
	codec   codec.Codec[T]
	nc      *natsgo.Conn
	release func()
}

// NewPublisher connects and returns a Publisher for subject. A nil codec
// means JSON.
func NewPublisher[T any](connect Connector, subject string, c codec.Codec[T]) (*Publisher[T], error) {
	if connect == nil {
		return nil, ErrNoConnection
	}
	if c == nil {
		c = codec.JSON[T]{}
	}
	nc, release, err := connect()
	if err != nil {
		return nil, fmt.Errorf("nats publisher %s: connect: %w", subject, err)
	}
	return &Publisher[T]{subject: subject, codec: c, nc: nc, release: release}, nil
}

func (p *Publisher[T]) Publish(msg T) error {
	data, err := p.codec.Encode(msg)
	if err != nil {
		return fmt.Errorf("nats publisher %s: encode: %w", p.subject, err)
	}
	if err := p.nc.Publish(p.subject, data); err != nil {
		return fmt.Errorf("nats publisher %s: publish: %w", p.subject, err)
	}
	return nil
}

// Flush waits until the server has processed everything published so far.
func (p *Publisher[T]) Flush(ctx context.Context) error {
	return p.nc.FlushWithContext(ctx)
}

func (p *Publisher[T]) Close() { p.release() }
