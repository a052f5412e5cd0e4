package pubsub

import (
	"context"
	"sync"
)

// Memory is an in-process Bus used when no Redis address is configured and
// in tests. It only reaches subscribers in the same process.
type Memory struct {
	mu   sync.Mutex
	subs map[string]map[*memSub]struct{}
}

type memSub struct {
	ch   chan Message
	once sync.Once
}

func NewMemory() *Memory {
	return &Memory{subs: make(map[string]map[*memSub]struct{})}
}

func (m *Memory) Publish(_ context.Context, channel, event string, payload any) error {
	msg, err := newMessage(channel, event, payload)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for s := range m.subs[channel] {
		select {
		case s.ch <- msg:
		default: // subscriber is full; drop
		}
	}
	return nil
}

func (m *Memory) Subscribe(ctx context.Context, channel string) (<-chan Message, func(), error) {
	s := &memSub{ch: make(chan Message, subscriberBuffer)}

	m.mu.Lock()
	if m.subs[channel] == nil {
		m.subs[channel] = make(map[*memSub]struct{})
	}
	m.subs[channel][s] = struct{}{}
	m.mu.Unlock()

	cancel := func() {
		s.once.Do(func() {
			m.mu.Lock()
			delete(m.subs[channel], s)
			if len(m.subs[channel]) == 0 {
				delete(m.subs, channel)
			}
			m.mu.Unlock()
			close(s.ch)
		})
	}
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return s.ch, cancel, nil
}

func (m *Memory) Close() error { return nil }

// Subscribers returns the number of live subscriptions on channel.
func (m *Memory) Subscribers(channel string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs[channel])
}
