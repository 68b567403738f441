package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// publisher is the subset of *nats.Conn used here.
type publisher interface {
	Publish(subj string, data []byte) error
}

// Event is the payload published for an external mailer to render and send.
type Event struct {
	Kind   Kind              `json:"kind"`
	To     string            `json:"to"`
	Vars   map[string]string `json:"vars,omitempty"`
	SentAt time.Time         `json:"sent_at"`
}

// NATS publishes notifications on "<prefix>.<kind>".
type NATS struct {
	pub    publisher
	conn   *nats.Conn
	prefix string
}

// ConnectNATS dials url and returns a dispatcher that owns the connection.
func ConnectNATS(url, prefix string, logger *slog.Logger) (*NATS, error) {
	if url == "" {
		url = nats.DefaultURL
	}

	opts := []nats.Option{
		nats.Name("hubsignup"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.ReconnectJitter(500*time.Millisecond, 2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("nats disconnected", slog.Any("error", err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", slog.String("url", nc.ConnectedUrl()))
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &NATS{pub: nc, conn: nc, prefix: prefix}, nil
}

// NewNATS wraps an existing publisher.
func NewNATS(pub publisher, prefix string) *NATS {
	return &NATS{pub: pub, prefix: prefix}
}

func (n *NATS) Subject(kind Kind) string {
	if n.prefix == "" {
		return "notifications." + string(kind)
	}
	return n.prefix + "." + string(kind)
}

func (n *NATS) Dispatch(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	if _, ok := templates[msg.Kind]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKind, msg.Kind)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(Event{Kind: msg.Kind, To: msg.To, Vars: msg.Vars, SentAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	if err := n.pub.Publish(n.Subject(msg.Kind), data); err != nil {
		return fmt.Errorf("nats publish %s: %w", msg.Kind, err)
	}
	return nil
}

// Close drains the connection when the dispatcher owns one.
func (n *NATS) Close() error {
	if n.conn == nil {
		return nil
	}
	return n.conn.Drain()
}
