package notify

import (
	"context"
	"log/slog"
	"sync"
)

const logRefPrefix = "log:"

// LogChannels implements ChannelService by logging deliveries. It is used
// when no delivery backend is configured, and remembers its channels so
// refs stay deterministic for the life of the process.
type LogChannels struct {
	log *slog.Logger

	mu          sync.Mutex
	subscribers map[string][]string
}

// NewLogChannels creates a log-only channel service.
func NewLogChannels(log *slog.Logger) *LogChannels {
	return &LogChannels{
		log:         log,
		subscribers: make(map[string][]string),
	}
}

// CreateOrGetChannel returns "log:<name>".
func (l *LogChannels) CreateOrGetChannel(_ context.Context, name string) (string, error) {
	ref := logRefPrefix + name

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.subscribers[ref]; !ok {
		l.subscribers[ref] = nil
		l.log.Debug("channel created", "channel", ref)
	}
	return ref, nil
}

// Subscribe records email as a recipient of channelRef.
func (l *LogChannels) Subscribe(_ context.Context, channelRef, email string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, existing := range l.subscribers[channelRef] {
		if existing == email {
			return channelRef + ":" + email, nil
		}
	}
	l.subscribers[channelRef] = append(l.subscribers[channelRef], email)
	return channelRef + ":" + email, nil
}

// Publish logs the notification instead of delivering it.
func (l *LogChannels) Publish(_ context.Context, channelRef string, msg Message) error {
	l.mu.Lock()
	recipients := len(l.subscribers[channelRef])
	l.mu.Unlock()

	l.log.Info("notification published",
		"channel", channelRef,
		"recipients", recipients,
		"subject", msg.Subject(),
		"body", msg.Body(),
	)
	return nil
}
