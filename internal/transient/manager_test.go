package transient

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

// fakeSender records sends and deletes
type fakeSender struct {
	mu       sync.Mutex
	nextID   int
	sent     []MessageRef
	deleted  []MessageRef
	sendErr  error
	delErr   error
}

func (f *fakeSender) Send(chatID int64, text string) (MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return MessageRef{}, f.sendErr
	}
	f.nextID++
	ref := MessageRef{ChatID: chatID, MessageID: f.nextID}
	f.sent = append(f.sent, ref)
	return ref, nil
}

func (f *fakeSender) Delete(ref MessageRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return f.delErr
	}
	f.deleted = append(f.deleted, ref)
	return nil
}

func (f *fakeSender) deletedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.deleted)
}

func newTestManager(sender Sender, delay time.Duration) *Manager {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewManager(sender, delay, logger)
}

func TestPostTransientDeletesAfterDelay(t *testing.T) {
	sender := &fakeSender{}
	m := newTestManager(sender, 20*time.Millisecond)

	ref, err := m.PostTransient(100, "working on it")
	if err != nil {
		t.Fatalf("PostTransient failed: %v", err)
	}
	if ref.MessageID == 0 {
		t.Fatal("no message ref returned")
	}

	if sender.deletedCount() != 0 {
		t.Fatal("message deleted before the delay")
	}

	deadline := time.Now().Add(time.Second)
	for sender.deletedCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if sender.deletedCount() != 1 {
		t.Fatal("message not deleted after the delay")
	}
}

func TestPostTransientDeletionFailureSwallowed(t *testing.T) {
	sender := &fakeSender{delErr: errors.New("message to delete not found")}
	m := newTestManager(sender, 10*time.Millisecond)

	if _, err := m.PostTransient(100, "gone already"); err != nil {
		t.Fatalf("PostTransient failed: %v", err)
	}
	// Nothing to assert beyond "no panic, no error": cleanup is best-effort.
	time.Sleep(50 * time.Millisecond)
}

func TestReplaceLastKeepsOneLiveMessage(t *testing.T) {
	sender := &fakeSender{}
	m := newTestManager(sender, time.Minute)

	first, err := m.ReplaceLast(7, 100, "page 1")
	if err != nil {
		t.Fatalf("ReplaceLast failed: %v", err)
	}
	if sender.deletedCount() != 0 {
		t.Fatal("nothing to delete on first send")
	}

	second, err := m.ReplaceLast(7, 100, "page 2")
	if err != nil {
		t.Fatalf("ReplaceLast failed: %v", err)
	}
	if sender.deletedCount() != 1 || sender.deleted[0] != first {
		t.Errorf("previous message not deleted: %v", sender.deleted)
	}
	if second == first {
		t.Error("new message ref equals old one")
	}
}

func TestReplaceLastPerUser(t *testing.T) {
	sender := &fakeSender{}
	m := newTestManager(sender, time.Minute)

	m.ReplaceLast(1, 100, "user 1 status")
	m.ReplaceLast(2, 100, "user 2 status")

	if sender.deletedCount() != 0 {
		t.Error("users must not replace each other's messages")
	}
}

func TestPostTransientSendFailure(t *testing.T) {
	sender := &fakeSender{sendErr: errors.New("chat not found")}
	m := newTestManager(sender, time.Minute)

	if _, err := m.PostTransient(100, "hello"); err == nil {
		t.Fatal("expected send error to surface")
	}
}
