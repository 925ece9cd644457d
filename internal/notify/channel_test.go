package notify

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"

	domain "github.com/donaldgifford/bargain-tracker/pkg/types"
)

func TestChannelName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		email string
		want  string
	}{
		{email: "user@example.com", want: "user-example-com"},
		{email: "first.last+tag@mail.co.in", want: "first-last-tag-mail-co-in"},
		{email: "  Mixed.Case@Example.COM ", want: "mixed-case-example-com"},
		{email: "under_score@x.io", want: "under-score-x-io"},
		{email: "a!b#c$d%e&f'g*h=i?j^k`l{m|n}o~p@q.r", want: "a-b-c-d-e-f-g-h-i-j-k-l-m-n-o-p-q-r"},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ChannelName(tt.email))
		})
	}
}

func TestChannelName_DistinctEmailsStayDistinct(t *testing.T) {
	t.Parallel()

	emails := []string{"alice@example.com", "bob@example.com", "alice@example.org", "alice1@example.com"}
	seen := make(map[string]string)
	for _, e := range emails {
		name := ChannelName(e)
		if prev, ok := seen[name]; ok {
			t.Fatalf("%s and %s map to the same channel %s", prev, e, name)
		}
		seen[name] = e
	}
}

func TestMessage_Body(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		msg  Message
		want string
	}{
		{
			name: "price drop",
			msg:  NewPriceChangeMessage("Redmi Note 13", "https://www.amazon.in/dp/B0", domain.Price(100), domain.Price(90)),
			want: "Price change notification for Redmi Note 13\n100 ⟶ 90\nCheck the product @ https://www.amazon.in/dp/B0\n",
		},
		{
			name: "went out of stock",
			msg:  NewPriceChangeMessage("Kettle", "https://www.flipkart.com/p/1", domain.Price(1299), nil),
			want: "Price change notification for Kettle\n1299 ⟶ unavailable\nCheck the product @ https://www.flipkart.com/p/1\n",
		},
		{
			name: "back in stock",
			msg:  NewPriceChangeMessage("Kettle", "https://www.flipkart.com/p/1", nil, domain.Price(999)),
			want: "Price change notification for Kettle\nunavailable ⟶ 999\nCheck the product @ https://www.flipkart.com/p/1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.msg.Body())
		})
	}
}

func TestMessage_SubjectTruncated(t *testing.T) {
	t.Parallel()

	short := Message{Title: "Kettle"}
	assert.Equal(t, "Price change notification for Kettle", short.Subject())

	long := Message{Title: strings.Repeat("ø", 200)}
	assert.Len(t, []rune(long.Subject()), 99)
	assert.True(t, strings.HasSuffix(long.Subject(), "..."))
}

func TestErrorCode(t *testing.T) {
	t.Parallel()

	throttled := &smithy.GenericAPIError{Code: "Throttling", Message: "Rate exceeded"}

	assert.Equal(t, "Throttling", ErrorCode(throttled))
	assert.Equal(t, "Throttling", ErrorCode(fmt.Errorf("sns publish: %w", throttled)))
	assert.Equal(t, "unknown", ErrorCode(errors.New("dial tcp: timeout")))
	assert.Equal(t, "unknown", ErrorCode(nil))
}
