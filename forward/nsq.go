package forward

import (
	"fmt"

	"github.com/nsqio/go-nsq"
)

// NSQPublisher publishes to a single nsqd.
type NSQPublisher struct {
	p *nsq.Producer
}

// NewNSQPublisher connects lazily to the nsqd at addr.
func NewNSQPublisher(addr string) (*NSQPublisher, error) {
	cfg := nsq.NewConfig()
	p, err := nsq.NewProducer(addr, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create nsq producer: %w", err)
	}
	p.SetLoggerLevel(nsq.LogLevelWarning)
	return &NSQPublisher{p: p}, nil
}

// Publish implements Publisher.
func (n *NSQPublisher) Publish(topic string, body []byte) error {
	if len(body) == 0 {
		return fmt.Errorf("empty payload")
	}
	return n.p.Publish(topic, body)
}

// Ping checks that nsqd is reachable.
func (n *NSQPublisher) Ping() error {
	return n.p.Ping()
}

// Close stops the producer.
func (n *NSQPublisher) Close() {
	if n.p != nil {
		n.p.Stop()
	}
}
