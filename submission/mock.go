package submission

import (
	"context"
	"encoding/json"
	"sync"
)

// MockSubscription is a Subscription fed by the test through Push and Fail
type MockSubscription struct {
	id            string
	notifications chan json.RawMessage
	errCh         chan error

	lock         sync.Mutex
	unsubscribed int
}

var _ Subscription = (*MockSubscription)(nil)

func NewMockSubscription(id string) *MockSubscription {
	return &MockSubscription{
		id:            id,
		notifications: make(chan json.RawMessage, 64),
		errCh:         make(chan error, 1),
	}
}

func (m *MockSubscription) ID() string {
	return m.id
}

func (m *MockSubscription) Notifications() <-chan json.RawMessage {
	return m.notifications
}

func (m *MockSubscription) Err() <-chan error {
	return m.errCh
}

func (m *MockSubscription) Unsubscribe(context.Context) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.unsubscribed++

	return nil
}

// Unsubscribed returns how many times Unsubscribe was called
func (m *MockSubscription) Unsubscribed() int {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.unsubscribed
}

// Push queues raw status notifications in order
func (m *MockSubscription) Push(raw ...string) {
	for _, r := range raw {
		m.notifications <- json.RawMessage(r)
	}
}

// Close ends the notification stream without a terminal status
func (m *MockSubscription) Close() {
	close(m.notifications)
}

func (m *MockSubscription) Fail(err error) {
	m.errCh <- err
}

// MockChannel hands out subscriptions in the order they were queued
type MockChannel struct {
	lock      sync.Mutex
	queue     []*MockSubscription
	submitted [][]byte
	rejectErr error
}

var _ Channel = (*MockChannel)(nil)

func NewMockChannel(subs ...*MockSubscription) *MockChannel {
	return &MockChannel{queue: subs}
}

// Reject makes every later submission fail with err
func (m *MockChannel) Reject(err error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.rejectErr = err
}

func (m *MockChannel) Submitted() [][]byte {
	m.lock.Lock()
	defer m.lock.Unlock()

	return append([][]byte(nil), m.submitted...)
}

func (m *MockChannel) SubmitAndWatch(ctx context.Context, extrinsic []byte) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	if m.rejectErr != nil {
		return nil, m.rejectErr
	}

	m.submitted = append(m.submitted, extrinsic)

	if len(m.queue) == 0 {
		return NewMockSubscription("auto"), nil
	}

	sub := m.queue[0]
	m.queue = m.queue[1:]

	return sub, nil
}
