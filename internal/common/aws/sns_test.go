// internal/common/aws/sns_test.go
package aws

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSNS struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNS) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: awssdk.String("msg-1")}, nil
}

func TestPublish(t *testing.T) {
	fake := &fakeSNS{}
	p := newEventPublisher(fake, "arn:aws:sns:eu-west-1:123:marketplace", "lending-workers")
	p.now = func() time.Time { return time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC) }

	id, err := p.Publish(context.Background(), EventBidFinalized, map[string]string{"bidId": "bid-1"})
	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)

	assert.Equal(t, "arn:aws:sns:eu-west-1:123:marketplace", awssdk.ToString(fake.input.TopicArn))
	assert.Equal(t, EventBidFinalized, awssdk.ToString(fake.input.MessageAttributes["eventType"].StringValue))

	var env map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(awssdk.ToString(fake.input.Message)), &env))
	assert.Equal(t, "bid.finalized", env["type"])
	assert.Equal(t, "2026-10-19T09:00:00Z", env["occurredAt"])
	assert.Equal(t, "bid-1", env["data"].(map[string]interface{})["bidId"])
}

func TestPublish_Error(t *testing.T) {
	p := newEventPublisher(&fakeSNS{err: errors.New("throttled")}, "arn", "lending-workers")

	_, err := p.Publish(context.Background(), EventBidFunded, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish bid.funded")
}
