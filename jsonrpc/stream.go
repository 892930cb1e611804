package jsonrpc

import (
	"context"
	stdjson "encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/armon/go-metrics"
	"github.com/hashicorp/go-hclog"
	lru "github.com/hashicorp/golang-lru"
)

const (
	jsonrpcMetrics = "jsonrpc"

	// maxEarlySubscriptions bounds how many unclaimed subscription ids are buffered
	maxEarlySubscriptions = 256

	// maxEarlyNotifications bounds the buffered notifications of one unclaimed id
	maxEarlyNotifications = 64
)

// Codec is the codec to write and read messages
type Codec interface {
	Read([]byte) ([]byte, error)
	Write([]byte) error
	Close() error
}

type ackMessage struct {
	buf []byte
	err error
}

// stream multiplexes calls and subscriptions over one Codec. Frames are
// handled in the order they are read, so notifications of one subscription
// keep their order.
type stream struct {
	seq    uint64
	codec  Codec
	logger hclog.Logger

	callTimeout time.Duration

	writeLock sync.Mutex

	// call handlers
	handlerLock sync.Mutex
	handler     map[uint64]chan *ackMessage

	// subscriptions
	subsLock sync.Mutex
	subs     map[string]*Subscription
	// early holds notifications for ids whose subscribe response is still in flight
	early *lru.Cache

	closeOnce sync.Once
	closeCh   chan struct{}
	closeErr  atomic.Value
}

func newStream(codec Codec, logger hclog.Logger, callTimeout time.Duration) *stream {
	early, _ := lru.New(maxEarlySubscriptions)

	s := &stream{
		codec:       codec,
		logger:      logger,
		callTimeout: callTimeout,
		handler:     map[uint64]chan *ackMessage{},
		subs:        map[string]*Subscription{},
		early:       early,
		closeCh:     make(chan struct{}),
	}

	go s.listen()

	return s
}

func (s *stream) Close() error {
	err := s.codec.Close()
	s.shutdown(ErrClosed)

	return err
}

func (s *stream) isClosed() bool {
	select {
	case <-s.closeCh:
		return true
	default:
		return false
	}
}

// shutdown fails every pending call and subscription with err
func (s *stream) shutdown(err error) {
	s.closeOnce.Do(func() {
		s.closeErr.Store(err)
		close(s.closeCh)

		s.handlerLock.Lock()
		for id, ack := range s.handler {
			ack <- &ackMessage{err: err}

			delete(s.handler, id)
		}
		s.handlerLock.Unlock()

		s.subsLock.Lock()
		subs := s.subs
		s.subs = map[string]*Subscription{}
		s.early.Purge()
		s.subsLock.Unlock()

		for _, sub := range subs {
			sub.fail(err)
		}
	})
}

func (s *stream) listen() {
	buf := []byte{}

	for {
		var err error

		buf, err = s.codec.Read(buf[:0])
		if err != nil {
			if !s.isClosed() {
				s.logger.Error("connection lost", "err", err)
				s.shutdown(fmt.Errorf("%w: %v", ErrClosed, err))
			}

			return
		}

		var msg Message
		if err := json.Unmarshal(buf, &msg); err != nil {
			s.logger.Warn("dropping malformed frame", "err", err)

			continue
		}

		if msg.isNotification() {
			s.handleNotification(&msg)
		} else {
			s.handleResponse(&msg)
		}
	}
}

func (s *stream) handleResponse(msg *Message) {
	s.handlerLock.Lock()
	ack, ok := s.handler[msg.ID]
	delete(s.handler, msg.ID)
	s.handlerLock.Unlock()

	if !ok {
		s.logger.Debug("response without a pending request", "id", msg.ID)

		return
	}

	if msg.Error != nil {
		ack <- &ackMessage{err: msg.Error}
	} else {
		// the read buffer is reused by the next frame
		ack <- &ackMessage{buf: append([]byte(nil), msg.Result...)}
	}
}

func (s *stream) handleNotification(msg *Message) {
	var params SubscriptionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.logger.Warn("malformed notification", "method", msg.Method, "err", err)

		return
	}

	id, err := subscriptionID(params.Subscription)
	if err != nil {
		s.logger.Warn("malformed notification", "method", msg.Method, "err", err)

		return
	}

	result := stdjson.RawMessage(append([]byte(nil), params.Result...))

	s.subsLock.Lock()
	defer s.subsLock.Unlock()

	if sub, ok := s.subs[id]; ok {
		sub.push(result)

		return
	}

	// the subscribe response has not been processed yet
	var pending []stdjson.RawMessage
	if v, ok := s.early.Get(id); ok {
		pending, _ = v.([]stdjson.RawMessage)
	}

	if len(pending) >= maxEarlyNotifications {
		metrics.IncrCounter([]string{jsonrpcMetrics, "dropped_notifications"}, 1)
		s.logger.Warn("dropping unclaimed notification", "subscription", id)

		return
	}

	s.early.Add(id, append(pending, result))
}

// Call sends a request and decodes the result into out
func (s *stream) Call(ctx context.Context, method string, out interface{}, params ...interface{}) error {
	defer metrics.MeasureSince([]string{jsonrpcMetrics, "call", method}, time.Now())

	if s.isClosed() {
		return ErrClosed
	}

	seq := atomic.AddUint64(&s.seq, 1)

	request := Request{
		JSONRPC: "2.0",
		ID:      seq,
		Method:  method,
	}

	if params == nil {
		params = []interface{}{}
	}

	data, err := json.Marshal(params)
	if err != nil {
		return err
	}

	request.Params = data

	raw, err := json.Marshal(request)
	if err != nil {
		return err
	}

	ack := make(chan *ackMessage, 1)

	s.handlerLock.Lock()
	s.handler[seq] = ack
	s.handlerLock.Unlock()

	defer func() {
		s.handlerLock.Lock()
		delete(s.handler, seq)
		s.handlerLock.Unlock()
	}()

	if s.isClosed() {
		return ErrClosed
	}

	s.writeLock.Lock()
	err = s.codec.Write(raw)
	s.writeLock.Unlock()

	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	select {
	case resp := <-ack:
		if resp.err != nil {
			return resp.err
		}

		if out == nil {
			return nil
		}

		return json.Unmarshal(resp.buf, out)

	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%w: %s", ErrTimeout, method)
		}

		return ctx.Err()
	}
}

// Subscribe calls method and routes the notifications of the returned
// subscription id to the Subscription. unsubscribeMethod is called on Unsubscribe.
func (s *stream) Subscribe(
	ctx context.Context,
	method, unsubscribeMethod string,
	params ...interface{},
) (*Subscription, error) {
	var raw stdjson.RawMessage
	if err := s.Call(ctx, method, &raw, params...); err != nil {
		return nil, err
	}

	id, err := subscriptionID(raw)
	if err != nil {
		return nil, err
	}

	return s.register(id, unsubscribeMethod)
}

// register starts routing the notifications of id to a new Subscription
func (s *stream) register(id, unsubscribeMethod string) (*Subscription, error) {
	s.subsLock.Lock()
	if s.isClosed() {
		s.subsLock.Unlock()

		return nil, ErrClosed
	}

	sub := newSubscription(id, func(ctx context.Context) error {
		return s.unsubscribe(ctx, id, unsubscribeMethod)
	})

	s.subs[id] = sub

	if v, ok := s.early.Get(id); ok {
		s.early.Remove(id)

		pending, _ := v.([]stdjson.RawMessage)
		for _, n := range pending {
			sub.push(n)
		}
	}
	s.subsLock.Unlock()

	metrics.IncrCounter([]string{jsonrpcMetrics, "subscriptions"}, 1)

	return sub, nil
}

func (s *stream) unsubscribe(ctx context.Context, id, method string) error {
	s.subsLock.Lock()
	sub, ok := s.subs[id]
	delete(s.subs, id)
	s.subsLock.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSubscriptionNotFound, id)
	}

	sub.stop()

	if s.isClosed() {
		return nil
	}

	var result bool
	if err := s.Call(ctx, method, &result, id); err != nil {
		return err
	}

	if !result {
		return fmt.Errorf("node refused to unsubscribe %s", id)
	}

	return nil
}
