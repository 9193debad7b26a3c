// Package telemetry publishes device readings and blank-frame run results to NATS.
package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// ErrClosed is returned by a Publisher after Close.
var ErrClosed = errors.New("telemetry: publisher closed")

// Reading is one line of the continuous reading stream.
type Reading struct {
	Device string    `json:"device"`
	Time   time.Time `json:"time"`
	Line   string    `json:"line"`
}

// BlankRun is the outcome of one blank-frame run.
type BlankRun struct {
	Device   string    `json:"device"`
	Started  time.Time `json:"started"`
	Duration string    `json:"duration"`
	Blank    int       `json:"blank"`
	Error    string    `json:"error,omitempty"`
}

// conn is the part of *nats.Conn the publisher uses.
type conn interface {
	Publish(subject string, data []byte) error
	Flush() error
	Close()
}

// Publisher sends JSON events under a subject prefix:
// <prefix>.reading and <prefix>.blank_run.
type Publisher struct {
	nc     conn
	prefix string
	logger zerolog.Logger
	closed bool
}

// Connect dials the NATS server at url.
func Connect(url, prefix string, logger zerolog.Logger) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("model2450"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info().Str("url", c.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	logger.Info().Str("url", url).Str("subject", prefix).Msg("publishing to nats")
	return newPublisher(nc, prefix, logger), nil
}

func newPublisher(nc conn, prefix string, logger zerolog.Logger) *Publisher {
	return &Publisher{nc: nc, prefix: prefix, logger: logger}
}

// PublishReading publishes one stream line.
func (p *Publisher) PublishReading(r Reading) error {
	return p.publish("reading", r)
}

// PublishBlankRun publishes the result of a blank-frame run.
func (p *Publisher) PublishBlankRun(r BlankRun) error {
	return p.publish("blank_run", r)
}

func (p *Publisher) publish(kind string, v interface{}) error {
	if p.closed {
		return ErrClosed
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}
	subject := p.prefix + "." + kind
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	p.logger.Debug().Str("subject", subject).Int("bytes", len(data)).Msg("published")
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *Publisher) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	err := p.nc.Flush()
	p.nc.Close()
	return err
}
