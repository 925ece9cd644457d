package notify_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/bargain-tracker/internal/notify"
	"github.com/donaldgifford/bargain-tracker/pkg/logger"
	domain "github.com/donaldgifford/bargain-tracker/pkg/types"
)

// fakeSNS is an in-memory SNS that keeps topics, subscriptions and
// published messages.
type fakeSNS struct {
	mu            sync.Mutex
	topics        map[string]string
	subscriptions map[string]*sns.SubscribeInput
	published     []*sns.PublishInput
	createCalls   int
	publishErr    error
}

func newFakeSNS() *fakeSNS {
	return &fakeSNS{
		topics:        make(map[string]string),
		subscriptions: make(map[string]*sns.SubscribeInput),
	}
}

func (f *fakeSNS) CreateTopic(_ context.Context, in *sns.CreateTopicInput, _ ...func(*sns.Options)) (*sns.CreateTopicOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++

	name := aws.ToString(in.Name)
	arn, ok := f.topics[name]
	if !ok {
		arn = "arn:aws:sns:ap-south-1:000000000000:" + name
		f.topics[name] = arn
	}
	return &sns.CreateTopicOutput{TopicArn: aws.String(arn)}, nil
}

func (f *fakeSNS) Subscribe(_ context.Context, in *sns.SubscribeInput, _ ...func(*sns.Options)) (*sns.SubscribeOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.hasTopicARN(aws.ToString(in.TopicArn)) {
		return nil, &smithy.GenericAPIError{Code: "NotFound", Message: "Topic does not exist"}
	}
	arn := fmt.Sprintf("%s:%s", aws.ToString(in.TopicArn), aws.ToString(in.Endpoint))
	f.subscriptions[arn] = in
	return &sns.SubscribeOutput{SubscriptionArn: aws.String(arn)}, nil
}

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.publishErr != nil {
		return nil, f.publishErr
	}
	f.published = append(f.published, in)
	return &sns.PublishOutput{MessageId: aws.String(fmt.Sprintf("msg-%d", len(f.published)))}, nil
}

func (f *fakeSNS) hasTopicARN(arn string) bool {
	for _, a := range f.topics {
		if a == arn {
			return true
		}
	}
	return false
}

func TestSNSChannels_CreateOrGetChannelIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fake := newFakeSNS()
	ch := notify.NewSNSChannels(fake, notify.WithTopicPrefix("bt-"), notify.WithLogger(logger.Discard()))

	first, err := ch.CreateOrGetChannel(ctx, "a-example-com")
	require.NoError(t, err)
	second, err := ch.CreateOrGetChannel(ctx, "a-example-com")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "arn:aws:sns:ap-south-1:000000000000:bt-a-example-com", first)
	assert.Len(t, fake.topics, 1)
	assert.Equal(t, 2, fake.createCalls)
}

func TestSNSChannels_SubscribeAndPublish(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fake := newFakeSNS()
	ch := notify.NewSNSChannels(fake, notify.WithLogger(logger.Discard()))

	ref, err := ch.CreateOrGetChannel(ctx, "a-example-com")
	require.NoError(t, err)

	subRef, err := ch.Subscribe(ctx, ref, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, ref+":a@example.com", subRef)

	sub := fake.subscriptions[subRef]
	require.NotNil(t, sub)
	assert.Equal(t, "email", aws.ToString(sub.Protocol))
	assert.True(t, sub.ReturnSubscriptionArn)

	msg := notify.NewPriceChangeMessage("Kettle", "https://www.flipkart.com/p/1", domain.Price(100), domain.Price(90))
	require.NoError(t, ch.Publish(ctx, ref, msg))

	require.Len(t, fake.published, 1)
	assert.Equal(t, ref, aws.ToString(fake.published[0].TopicArn))
	assert.Equal(t, "Price change notification for Kettle", aws.ToString(fake.published[0].Subject))
	assert.Contains(t, aws.ToString(fake.published[0].Message), "100 ⟶ 90")
}

func TestSNSChannels_Errors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fake := newFakeSNS()
	ch := notify.NewSNSChannels(fake, notify.WithProtocol("email-json"), notify.WithLogger(logger.Discard()))

	_, err := ch.Subscribe(ctx, "arn:aws:sns:ap-south-1:000000000000:missing", "a@example.com")
	require.Error(t, err)
	assert.Equal(t, "NotFound", notify.ErrorCode(err))

	fake.publishErr = &smithy.GenericAPIError{Code: "Throttling", Message: "Rate exceeded"}
	err = ch.Publish(ctx, "arn:aws:sns:ap-south-1:000000000000:any", notify.Message{Title: "x"})
	require.Error(t, err)
	assert.Equal(t, "Throttling", notify.ErrorCode(err))
}
