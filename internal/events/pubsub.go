package events

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/pubsub"
	"github.com/bounce-app/apiserver/config"
	"google.golang.org/api/option"
)

// PubSubPublisher publishes events to Google Cloud Pub/Sub topics.
type PubSubPublisher struct {
	client *pubsub.Client
}

// NewPubSubPublisher constructs a Pub/Sub publisher from config.
func NewPubSubPublisher(ctx context.Context, cfg config.PubSubConfig) (*PubSubPublisher, error) {
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, errors.New("pubsub project id is required")
	}

	var opts []option.ClientOption
	if strings.TrimSpace(cfg.CredentialsFile) != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := pubsub.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, err
	}

	return &PubSubPublisher{client: client}, nil
}

// Publish sends a message to the named topic, creating it on first use.
func (p *PubSubPublisher) Publish(ctx context.Context, topic string, data []byte, attrs map[string]string) (string, error) {
	if strings.TrimSpace(topic) == "" {
		return "", errors.New("pubsub topic is required")
	}

	t, err := p.ensureTopic(ctx, topic)
	if err != nil {
		return "", err
	}
	result := t.Publish(ctx, &pubsub.Message{Data: data, Attributes: attrs})
	return result.Get(ctx)
}

// Close closes the underlying Pub/Sub client.
func (p *PubSubPublisher) Close() error {
	return p.client.Close()
}

func (p *PubSubPublisher) ensureTopic(ctx context.Context, name string) (*pubsub.Topic, error) {
	topic := p.client.Topic(name)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return p.client.CreateTopic(ctx, name)
	}
	return topic, nil
}
