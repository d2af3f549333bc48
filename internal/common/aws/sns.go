// internal/common/aws/sns.go
package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// Bid lifecycle events published to the marketplace topic.
const (
	EventBidFinalized = "bid.finalized"
	EventBidFunded    = "bid.funded"
	EventBidCompleted = "bid.completed"
)

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// EventPublisher sends JSON events to a single SNS topic. The event type
// travels as the eventType message attribute so subscribers can filter.
type EventPublisher struct {
	client   snsAPI
	topicARN string
	source   string
	now      func() time.Time
}

type envelope struct {
	Type       string      `json:"type"`
	Source     string      `json:"source"`
	OccurredAt string      `json:"occurredAt"`
	Data       interface{} `json:"data"`
}

func NewEventPublisher(ctx context.Context, region, topicARN, source string) (*EventPublisher, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newEventPublisher(sns.NewFromConfig(cfg), topicARN, source), nil
}

func newEventPublisher(client snsAPI, topicARN, source string) *EventPublisher {
	return &EventPublisher{client: client, topicARN: topicARN, source: source, now: time.Now}
}

// Publish sends one event and returns the SNS message id.
func (p *EventPublisher) Publish(ctx context.Context, eventType string, data interface{}) (string, error) {
	body, err := json.Marshal(envelope{
		Type:       eventType,
		Source:     p.source,
		OccurredAt: p.now().UTC().Format(time.RFC3339),
		Data:       data,
	})
	if err != nil {
		return "", fmt.Errorf("encode %s event: %w", eventType, err)
	}

	out, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: awssdk.String(p.topicARN),
		Message:  awssdk.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"eventType": {DataType: awssdk.String("String"), StringValue: awssdk.String(eventType)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("publish %s: %w", eventType, err)
	}
	return awssdk.ToString(out.MessageId), nil
}
