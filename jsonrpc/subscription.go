package jsonrpc

import (
	"context"
	stdjson "encoding/json"
	"sync"

	"github.com/0xPolygon/polygon-xt/submission"
)

var _ submission.Subscription = (*Subscription)(nil)

// Subscription delivers the notifications of one node subscription in order.
// Notifications are queued without bound so a slow reader never stalls the connection.
type Subscription struct {
	id            string
	unsubscribeFn func(ctx context.Context) error

	lock  sync.Mutex
	queue []stdjson.RawMessage
	err   error

	signalCh      chan struct{}
	notifications chan stdjson.RawMessage
	errCh         chan error

	stopOnce sync.Once
	stopCh   chan struct{}
}

func newSubscription(id string, unsubscribeFn func(ctx context.Context) error) *Subscription {
	s := &Subscription{
		id:            id,
		unsubscribeFn: unsubscribeFn,
		signalCh:      make(chan struct{}, 1),
		notifications: make(chan stdjson.RawMessage),
		errCh:         make(chan error, 1),
		stopCh:        make(chan struct{}),
	}

	go s.pump()

	return s
}

func (s *Subscription) ID() string {
	return s.id
}

func (s *Subscription) Notifications() <-chan stdjson.RawMessage {
	return s.notifications
}

// Err yields the connection error after all notifications received before it
func (s *Subscription) Err() <-chan error {
	return s.errCh
}

// Unsubscribe stops delivery and cancels the subscription on the node
func (s *Subscription) Unsubscribe(ctx context.Context) error {
	return s.unsubscribeFn(ctx)
}

func (s *Subscription) push(n stdjson.RawMessage) {
	s.lock.Lock()
	s.queue = append(s.queue, n)
	s.lock.Unlock()

	s.signal()
}

func (s *Subscription) fail(err error) {
	s.lock.Lock()
	if s.err == nil {
		s.err = err
	}
	s.lock.Unlock()

	s.signal()
}

func (s *Subscription) stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}

func (s *Subscription) signal() {
	select {
	case s.signalCh <- struct{}{}:
	default:
	}
}

func (s *Subscription) pump() {
	for {
		select {
		case <-s.signalCh:
		case <-s.stopCh:
			return
		}

		for {
			s.lock.Lock()
			if len(s.queue) == 0 {
				err := s.err
				s.lock.Unlock()

				if err != nil {
					s.errCh <- err

					return
				}

				break
			}

			n := s.queue[0]
			s.queue[0] = nil
			s.queue = s.queue[1:]
			s.lock.Unlock()

			select {
			case s.notifications <- n:
			case <-s.stopCh:
				return
			}
		}
	}
}
