package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	domain "github.com/donaldgifford/bargain-tracker/pkg/types"
)

// SQSAPI is the subset of the SQS client used by SQSQueue.
type SQSAPI interface {
	SendMessageBatch(ctx context.Context, in *sqs.SendMessageBatchInput, opts ...func(*sqs.Options)) (*sqs.SendMessageBatchOutput, error)
	ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, opts ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, opts ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
	GetQueueAttributes(ctx context.Context, in *sqs.GetQueueAttributesInput, opts ...func(*sqs.Options)) (*sqs.GetQueueAttributesOutput, error)
}

// SQSQueue is a Queue over an Amazon SQS queue. Task payloads travel as JSON
// message bodies.
type SQSQueue struct {
	client            SQSAPI
	queueURL          string
	waitTime          time.Duration
	visibilityTimeout time.Duration
	log               *slog.Logger
}

// SQSOption configures an SQSQueue.
type SQSOption func(*SQSQueue)

// WithWaitTime sets the long-poll wait of Receive (max 20s).
func WithWaitTime(d time.Duration) SQSOption {
	return func(q *SQSQueue) {
		q.waitTime = d
	}
}

// WithVisibilityTimeout sets how long a received message stays hidden
// before it is redelivered.
func WithVisibilityTimeout(d time.Duration) SQSOption {
	return func(q *SQSQueue) {
		q.visibilityTimeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) SQSOption {
	return func(q *SQSQueue) {
		q.log = l
	}
}

// NewSQSQueue returns a queue bound to queueURL.
func NewSQSQueue(client SQSAPI, queueURL string, opts ...SQSOption) *SQSQueue {
	q := &SQSQueue{
		client:   client,
		queueURL: queueURL,
		waitTime: 20 * time.Second,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue sends tasks in batches of MaxBatch.
func (q *SQSQueue) Enqueue(ctx context.Context, tasks []domain.Task) error {
	for _, batch := range chunk(tasks, MaxBatch) {
		entries := make([]types.SendMessageBatchRequestEntry, 0, len(batch))
		for i, task := range batch {
			body, err := json.Marshal(task)
			if err != nil {
				return fmt.Errorf("encoding task %s: %w", task.ProductURL, err)
			}
			entries = append(entries, types.SendMessageBatchRequestEntry{
				Id:          aws.String(strconv.Itoa(i)),
				MessageBody: aws.String(string(body)),
			})
		}

		out, err := q.client.SendMessageBatch(ctx, &sqs.SendMessageBatchInput{
			QueueUrl: aws.String(q.queueURL),
			Entries:  entries,
		})
		if err != nil {
			return fmt.Errorf("sqs send batch: %w", err)
		}
		if len(out.Failed) > 0 {
			errs := make([]error, 0, len(out.Failed))
			for _, f := range out.Failed {
				idx, _ := strconv.Atoi(aws.ToString(f.Id))
				errs = append(errs, fmt.Errorf("task %s: %s: %s",
					batch[idx].ProductURL, aws.ToString(f.Code), aws.ToString(f.Message)))
			}
			return fmt.Errorf("sqs send batch: %d of %d failed: %w", len(out.Failed), len(batch), errors.Join(errs...))
		}
	}
	return nil
}

// Receive long-polls for up to limit messages. Bodies that are not valid
// tasks are deleted and skipped.
func (q *SQSQueue) Receive(ctx context.Context, limit int) ([]Delivery, error) {
	in := &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(q.queueURL),
		MaxNumberOfMessages: int32(clampBatch(limit)),
		WaitTimeSeconds:     int32(q.waitTime / time.Second),
		MessageSystemAttributeNames: []types.MessageSystemAttributeName{
			types.MessageSystemAttributeNameApproximateReceiveCount,
		},
	}
	if q.visibilityTimeout > 0 {
		in.VisibilityTimeout = int32(q.visibilityTimeout / time.Second)
	}

	out, err := q.client.ReceiveMessage(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("sqs receive: %w", err)
	}

	deliveries := make([]Delivery, 0, len(out.Messages))
	for _, msg := range out.Messages {
		var task domain.Task
		if err := json.Unmarshal([]byte(aws.ToString(msg.Body)), &task); err != nil || task.ProductURL == "" {
			q.log.Warn("dropping malformed task message",
				"message_id", aws.ToString(msg.MessageId), "error", err)
			q.delete(ctx, aws.ToString(msg.ReceiptHandle))
			continue
		}

		attempts, _ := strconv.Atoi(msg.Attributes[string(types.MessageSystemAttributeNameApproximateReceiveCount)])
		deliveries = append(deliveries, Delivery{
			ID:       aws.ToString(msg.MessageId),
			Task:     task,
			Attempts: attempts,
			receipt:  aws.ToString(msg.ReceiptHandle),
		})
	}
	return deliveries, nil
}

// Ack deletes the message.
func (q *SQSQueue) Ack(ctx context.Context, d Delivery) error {
	_, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.queueURL),
		ReceiptHandle: aws.String(d.receipt),
	})
	if err != nil {
		return fmt.Errorf("sqs delete %s: %w", d.ID, err)
	}
	return nil
}

// Pending returns ApproximateNumberOfMessages plus in-flight messages.
func (q *SQSQueue) Pending(ctx context.Context) (int, error) {
	out, err := q.client.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
		QueueUrl: aws.String(q.queueURL),
		AttributeNames: []types.QueueAttributeName{
			types.QueueAttributeNameApproximateNumberOfMessages,
			types.QueueAttributeNameApproximateNumberOfMessagesNotVisible,
		},
	})
	if err != nil {
		return 0, fmt.Errorf("sqs queue attributes: %w", err)
	}

	total := 0
	for _, name := range []types.QueueAttributeName{
		types.QueueAttributeNameApproximateNumberOfMessages,
		types.QueueAttributeNameApproximateNumberOfMessagesNotVisible,
	} {
		n, _ := strconv.Atoi(out.Attributes[string(name)])
		total += n
	}
	return total, nil
}

func (q *SQSQueue) delete(ctx context.Context, receipt string) {
	if _, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.queueURL),
		ReceiptHandle: aws.String(receipt),
	}); err != nil {
		q.log.Warn("deleting malformed task message", "error", err)
	}
}
