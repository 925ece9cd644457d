// Package notify defines the per-email notification channel service and its
// implementations (Amazon SNS topics, or a log-only backend for local runs).
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/smithy-go"

	domain "github.com/donaldgifford/bargain-tracker/pkg/types"
)

// ChannelService manages one delivery channel per recipient.
type ChannelService interface {
	// CreateOrGetChannel returns the ref of the channel called name, creating
	// it if needed. An existing channel is a success, not an error.
	CreateOrGetChannel(ctx context.Context, name string) (channelRef string, err error)
	// Subscribe registers email as a recipient of the channel.
	Subscribe(ctx context.Context, channelRef, email string) (subscriptionRef string, err error)
	// Publish delivers msg to every recipient of the channel.
	Publish(ctx context.Context, channelRef string, msg Message) error
}

// Message is a price change notification.
type Message struct {
	Title    string
	URL      string
	OldPrice *int64
	NewPrice *int64
}

// NewPriceChangeMessage builds the notification for one price change.
func NewPriceChangeMessage(title, url string, oldPrice, newPrice *int64) Message {
	return Message{Title: title, URL: url, OldPrice: oldPrice, NewPrice: newPrice}
}

// Subject is the short line used as the email subject.
func (m Message) Subject() string {
	subject := "Price change notification for " + m.Title
	// SNS rejects subjects of 100 characters or more.
	if r := []rune(subject); len(r) > 99 {
		subject = string(r[:96]) + "..."
	}
	return subject
}

// Body renders the notification text.
func (m Message) Body() string {
	return fmt.Sprintf(
		"Price change notification for %s\n%s ⟶ %s\nCheck the product @ %s\n",
		m.Title, domain.FormatPrice(m.OldPrice), domain.FormatPrice(m.NewPrice), m.URL,
	)
}

// ChannelName derives the channel name for an email by replacing every ASCII
// punctuation character with '-'. Distinct addresses differ in their
// alphanumerics in practice, so the mapping is stable and collision-unlikely.
func ChannelName(email string) string {
	return strings.Map(func(r rune) rune {
		if isASCIIPunct(r) {
			return '-'
		}
		return r
	}, domain.NormalizeEmail(email))
}

func isASCIIPunct(r rune) bool {
	switch {
	case r >= '!' && r <= '/',
		r >= ':' && r <= '@',
		r >= '[' && r <= '`',
		r >= '{' && r <= '~':
		return true
	}
	return false
}

// ErrorCode returns the service error code carried by err (for example
// "Throttling" or "InvalidParameter"), or "unknown".
func ErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() != "" {
		return apiErr.ErrorCode()
	}
	return "unknown"
}
