// Package forward publishes SMS messages received by the modem to NSQ.
package forward

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/huawei3g/modem-exporter/modem"
)

// Publisher delivers a message body to a topic. *nsq.Producer satisfies it.
type Publisher interface {
	Publish(topic string, body []byte) error
}

// Event is the JSON payload published for each message.
type Event struct {
	EventID    string    `json:"event_id"`
	Interface  string    `json:"interface"`
	MessageID  string    `json:"message_id"`
	Sender     string    `json:"sender"`
	Message    string    `json:"message"`
	ReceivedAt time.Time `json:"received_at"`
}

// Forwarder polls the modem inbox and publishes every message it finds.
// Messages are deleted from the modem only after they were published.
type Forwarder struct {
	modem     modem.Modem
	publisher Publisher
	topic     string
	interval  time.Duration
	delete    bool
}

// NewForwarder creates a Forwarder. When deleteAfter is false the same
// messages are published again on every poll.
func NewForwarder(m modem.Modem, p Publisher, topic string, interval time.Duration, deleteAfter bool) (*Forwarder, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive, got %s", interval)
	}
	if topic == "" {
		return nil, fmt.Errorf("topic is required")
	}
	return &Forwarder{
		modem:     m,
		publisher: p,
		topic:     topic,
		interval:  interval,
		delete:    deleteAfter,
	}, nil
}

// Run polls until ctx is cancelled.
func (f *Forwarder) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		if n, err := f.Poll(); err != nil {
			slog.Error("sms forward failed", "interface", f.modem.Interface(), "error", err)
		} else if n > 0 {
			slog.Info("forwarded sms", "interface", f.modem.Interface(), "count", n, "topic", f.topic)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Poll forwards the current inbox once and returns the number of messages published.
func (f *Forwarder) Poll() (int, error) {
	count, err := f.modem.GetMessageCount()
	if err != nil {
		return 0, err
	}
	if count.Count == 0 {
		return 0, nil
	}

	messages, err := f.modem.GetMessages(false)
	if err != nil {
		return 0, err
	}

	var published []string
	var publishErr error
	for _, m := range messages {
		if err := f.publish(m); err != nil {
			publishErr = fmt.Errorf("failed to publish message %s: %w", m.ID, err)
			break
		}
		published = append(published, m.ID)
	}

	if f.delete && len(published) > 0 {
		if err := f.modem.DeleteMessages(published); err != nil {
			return len(published), fmt.Errorf("failed to delete forwarded messages: %w", err)
		}
	}

	return len(published), publishErr
}

func (f *Forwarder) publish(m modem.SMSMessage) error {
	body, err := json.Marshal(Event{
		EventID:    uuid.NewString(),
		Interface:  f.modem.Interface(),
		MessageID:  m.ID,
		Sender:     m.Sender,
		Message:    m.Message,
		ReceivedAt: m.ReceiveTime,
	})
	if err != nil {
		return err
	}
	return f.publisher.Publish(f.topic, body)
}
