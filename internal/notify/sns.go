package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// SNSAPI is the subset of the SNS client used by SNSChannels.
type SNSAPI interface {
	CreateTopic(ctx context.Context, in *sns.CreateTopicInput, opts ...func(*sns.Options)) (*sns.CreateTopicOutput, error)
	Subscribe(ctx context.Context, in *sns.SubscribeInput, opts ...func(*sns.Options)) (*sns.SubscribeOutput, error)
	Publish(ctx context.Context, in *sns.PublishInput, opts ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSChannels implements ChannelService with one SNS topic per email.
// CreateTopic is idempotent on the SNS side, so an existing topic comes back
// with its ARN instead of an error.
type SNSChannels struct {
	client      SNSAPI
	topicPrefix string
	protocol    string
	log         *slog.Logger
}

// SNSOption configures SNSChannels.
type SNSOption func(*SNSChannels)

// WithTopicPrefix prepends prefix to every topic name.
func WithTopicPrefix(prefix string) SNSOption {
	return func(s *SNSChannels) {
		s.topicPrefix = prefix
	}
}

// WithProtocol sets the subscription protocol (default "email").
func WithProtocol(protocol string) SNSOption {
	return func(s *SNSChannels) {
		s.protocol = protocol
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) SNSOption {
	return func(s *SNSChannels) {
		s.log = l
	}
}

// NewSNSChannels creates an SNS-backed channel service.
func NewSNSChannels(client SNSAPI, opts ...SNSOption) *SNSChannels {
	s := &SNSChannels{
		client:   client,
		protocol: "email",
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrGetChannel creates (or looks up) the topic and returns its ARN.
func (s *SNSChannels) CreateOrGetChannel(ctx context.Context, name string) (string, error) {
	out, err := s.client.CreateTopic(ctx, &sns.CreateTopicInput{
		Name: aws.String(s.topicPrefix + name),
	})
	if err != nil {
		return "", fmt.Errorf("sns create topic %s: %w", name, err)
	}
	return aws.ToString(out.TopicArn), nil
}

// Subscribe registers email on the topic and returns the subscription ARN,
// which stays "pending confirmation" until the recipient confirms.
func (s *SNSChannels) Subscribe(ctx context.Context, channelRef, email string) (string, error) {
	out, err := s.client.Subscribe(ctx, &sns.SubscribeInput{
		TopicArn:              aws.String(channelRef),
		Protocol:              aws.String(s.protocol),
		Endpoint:              aws.String(email),
		ReturnSubscriptionArn: true,
	})
	if err != nil {
		return "", fmt.Errorf("sns subscribe to %s: %w", channelRef, err)
	}
	return aws.ToString(out.SubscriptionArn), nil
}

// Publish sends msg to the topic.
func (s *SNSChannels) Publish(ctx context.Context, channelRef string, msg Message) error {
	out, err := s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(channelRef),
		Subject:  aws.String(msg.Subject()),
		Message:  aws.String(msg.Body()),
	})
	if err != nil {
		return fmt.Errorf("sns publish to %s: %w", channelRef, err)
	}
	s.log.Debug("notification published", "channel", channelRef, "message_id", aws.ToString(out.MessageId))
	return nil
}
