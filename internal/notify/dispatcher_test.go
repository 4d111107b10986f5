package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []string
	fail map[string]bool
	done chan struct{}
	want int
}

func (f *fakeSender) Send(_ context.Context, to, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sent = append(f.sent, to)
	if len(f.sent) == f.want {
		close(f.done)
	}
	if f.fail[to] {
		return errors.New("relay refused")
	}
	return nil
}

func (f *fakeSender) recipients() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func waitDone(t *testing.T, done chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("dispatch did not finish")
	}
}

func TestDispatcherBroadcast(t *testing.T) {
	t.Run("delivers to every recipient", func(t *testing.T) {
		sender := &fakeSender{done: make(chan struct{}), want: 3}
		d := NewDispatcher(sender, zap.NewNop(), time.Second)

		d.Broadcast([]string{"a@x.com", "b@x.com", "c@x.com"}, "subject", "body")
		waitDone(t, sender.done)

		assert.ElementsMatch(t, []string{"a@x.com", "b@x.com", "c@x.com"}, sender.recipients())
	})

	t.Run("one failure does not block the rest", func(t *testing.T) {
		sender := &fakeSender{
			done: make(chan struct{}),
			want: 3,
			fail: map[string]bool{"b@x.com": true},
		}
		d := NewDispatcher(sender, zap.NewNop(), time.Second)

		d.Broadcast([]string{"a@x.com", "b@x.com", "c@x.com"}, "subject", "body")
		waitDone(t, sender.done)

		assert.ElementsMatch(t, []string{"a@x.com", "b@x.com", "c@x.com"}, sender.recipients())
	})

	t.Run("no recipients is a no-op", func(t *testing.T) {
		sender := &fakeSender{done: make(chan struct{}), want: 1}
		d := NewDispatcher(sender, zap.NewNop(), time.Second)

		d.Broadcast(nil, "subject", "body")

		select {
		case <-sender.done:
			t.Fatal("unexpected send")
		case <-time.After(50 * time.Millisecond):
		}
	})
}
