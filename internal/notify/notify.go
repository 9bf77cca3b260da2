// Package notify publishes build lifecycle events to NATS.
package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/xdocs/internal/logfields"
)

// DefaultSubject is used when no subject is configured.
const DefaultSubject = "xdocs.build.completed"

// BuildCompleted is published after every build, successful or not.
type BuildCompleted struct {
	BuildID    string    `json:"build_id"`
	Site       string    `json:"site"`
	Output     string    `json:"output"`
	Outcome    string    `json:"outcome"`
	Pages      int       `json:"pages"`
	DurationMS int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher sends build events.
type Publisher interface {
	PublishBuildCompleted(event BuildCompleted) error
	Close()
}

// NATSPublisher publishes events as JSON on a NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher connects to url.
func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	if subject == "" {
		subject = DefaultSubject
	}

	conn, err := nats.Connect(url, nats.Name("xdocs"), nats.Timeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	slog.Info("NATS publisher initialized", slog.String("url", url), slog.String("subject", subject))
	return &NATSPublisher{conn: conn, subject: subject}, nil
}

// PublishBuildCompleted publishes event and flushes the connection.
func (p *NATSPublisher) PublishBuildCompleted(event BuildCompleted) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	data, err := Encode(event)
	if err != nil {
		return err
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	if err := p.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("failed to flush event: %w", err)
	}

	slog.Debug("Published build event", logfields.BuildID(event.BuildID), slog.String("subject", p.subject))
	return nil
}

// Close drains and closes the connection.
func (p *NATSPublisher) Close() {
	if p.conn != nil {
		_ = p.conn.Drain()
	}
}

// Encode serializes an event.
func Encode(event BuildCompleted) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return data, nil
}

// NoopPublisher discards events.
type NoopPublisher struct{}

func (NoopPublisher) PublishBuildCompleted(BuildCompleted) error { return nil }
func (NoopPublisher) Close()                                     {}
