package transient

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultDelay is how long a transient status message stays visible.
const DefaultDelay = 10 * time.Second

// MessageRef identifies a sent message for later deletion
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// Sender is the slice of the chat transport the manager needs
type Sender interface {
	Send(chatID int64, text string) (MessageRef, error)
	Delete(ref MessageRef) error
}

// Manager posts ephemeral status messages and cleans them up. Cleanup is
// best-effort and never required for correctness: a message that is
// already gone is not an error worth surfacing.
type Manager struct {
	sender Sender
	delay  time.Duration
	logger *logrus.Logger

	mu   sync.Mutex
	last map[int64]MessageRef // userID -> last tracked status message
}

// NewManager creates a transient message manager. A delay of 0 uses
// DefaultDelay.
func NewManager(sender Sender, delay time.Duration, logger *logrus.Logger) *Manager {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Manager{
		sender: sender,
		delay:  delay,
		logger: logger,
		last:   make(map[int64]MessageRef),
	}
}

// PostTransient sends a status message and schedules its deletion after
// the configured delay via a background timer
func (m *Manager) PostTransient(chatID int64, text string) (MessageRef, error) {
	ref, err := m.sender.Send(chatID, text)
	if err != nil {
		return MessageRef{}, fmt.Errorf("failed to send transient message: %w", err)
	}

	time.AfterFunc(m.delay, func() {
		if err := m.sender.Delete(ref); err != nil {
			m.logger.WithError(err).WithField("chat_id", ref.ChatID).Debug("Transient message already gone")
		}
	})

	return ref, nil
}

// ReplaceLast deletes the user's previously tracked status message, if
// any, then sends and tracks the new one. At most one live status
// message per user.
func (m *Manager) ReplaceLast(userID, chatID int64, text string) (MessageRef, error) {
	m.mu.Lock()
	prev, hadPrev := m.last[userID]
	m.mu.Unlock()

	if hadPrev {
		if err := m.sender.Delete(prev); err != nil {
			m.logger.WithError(err).WithField("user_id", userID).Debug("Previous status message already gone")
		}
	}

	ref, err := m.sender.Send(chatID, text)
	if err != nil {
		return MessageRef{}, fmt.Errorf("failed to send status message: %w", err)
	}

	m.mu.Lock()
	m.last[userID] = ref
	m.mu.Unlock()

	return ref, nil
}
