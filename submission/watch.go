package submission

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/0xPolygon/polygon-xt/types"
	"github.com/armon/go-metrics"
	"github.com/hashicorp/go-hclog"
)

// Watch is the caller's handle on one submitted extrinsic. Statuses yields
// the node's status updates in arrival order and is closed after a terminal
// status, on a broken subscription or after Unwatch.
type Watch struct {
	id   string
	hash types.Hash

	sub     Subscription
	journal Journal
	logger  hclog.Logger

	unsubscribeTimeout time.Duration

	// outputCh is the update channel for the caller
	outputCh chan types.TransactionStatus

	// doneCh is closed once the watch loop has exited
	doneCh chan struct{}

	// quitCh is closed by Unwatch
	quitCh   chan struct{}
	quitOnce sync.Once

	lock sync.Mutex
	last *types.TransactionStatus
	err  error

	onDone func(*Watch)
}

func (w *Watch) ID() string {
	return w.id
}

// Hash is the hash of the submitted extrinsic
func (w *Watch) Hash() types.Hash {
	return w.hash
}

// SubscriptionID is the identifier the node assigned to the status stream
func (w *Watch) SubscriptionID() string {
	return w.sub.ID()
}

func (w *Watch) Statuses() <-chan types.TransactionStatus {
	return w.outputCh
}

// Done is closed once no further status will be delivered
func (w *Watch) Done() <-chan struct{} {
	return w.doneCh
}

// Err returns why the stream ended early. It is nil while the watch runs,
// after a terminal status and after Unwatch.
func (w *Watch) Err() error {
	w.lock.Lock()
	defer w.lock.Unlock()

	return w.err
}

// Last returns the most recent forwarded status
func (w *Watch) Last() (types.TransactionStatus, bool) {
	w.lock.Lock()
	defer w.lock.Unlock()

	if w.last == nil {
		return types.TransactionStatus{}, false
	}

	return *w.last, true
}

// Unwatch stops status delivery and releases the node subscription.
// The extrinsic itself stays submitted.
func (w *Watch) Unwatch() {
	w.quitOnce.Do(func() {
		close(w.quitCh)
	})

	<-w.doneCh
}

// Wait drains the stream and returns the terminal status. Statuses not read
// by the caller before Wait are consumed by it.
func (w *Watch) Wait(ctx context.Context) (types.TransactionStatus, error) {
	for {
		select {
		case status, ok := <-w.outputCh:
			if !ok {
				if err := w.Err(); err != nil {
					return types.TransactionStatus{}, err
				}

				if last, ok := w.Last(); ok && last.IsTerminal() {
					return last, nil
				}

				return types.TransactionStatus{}, ErrStreamClosed
			}

			if status.IsTerminal() {
				return status, nil
			}
		case <-ctx.Done():
			return types.TransactionStatus{}, ctx.Err()
		}
	}
}

func (w *Watch) setErr(err error) {
	w.lock.Lock()
	w.err = err
	w.lock.Unlock()
}

// forward hands a status to the caller, dropping exact consecutive duplicates.
// It returns false when the watch was cancelled first.
func (w *Watch) forward(status types.TransactionStatus) bool {
	w.lock.Lock()
	duplicate := w.last != nil && w.last.Equal(status)

	if !duplicate {
		w.last = &status
	}
	w.lock.Unlock()

	if duplicate {
		metrics.IncrCounter([]string{submissionMetrics, "duplicate_statuses"}, 1)
		w.logger.Debug("dropping duplicate status", "status", status)

		return true
	}

	if w.journal != nil {
		if err := w.journal.Record(w.hash, status); err != nil {
			w.logger.Warn("failed to journal status", "status", status, "err", err)
		}
	}

	metrics.IncrCounter([]string{submissionMetrics, "status", status.Kind.String()}, 1)

	select {
	case w.outputCh <- status:
		return true
	case <-w.quitCh:
		return false
	}
}

func (w *Watch) runLoop() {
	defer func() {
		close(w.outputCh)
		close(w.doneCh)

		if w.onDone != nil {
			w.onDone(w)
		}
	}()

	for {
		select {
		case raw, ok := <-w.sub.Notifications():
			if !ok {
				w.logger.Debug("subscription closed")
				w.setErr(ErrStreamClosed)

				return
			}

			status, err := decodeStatus(raw)
			if err != nil {
				w.logger.Error("malformed status notification", "err", err)
				w.setErr(err)
				w.unsubscribe()

				return
			}

			if !w.forward(status) {
				w.unsubscribe()

				return
			}

			if status.IsTerminal() {
				w.logger.Debug("terminal status", "status", status)
				w.unsubscribe()

				return
			}

		case err := <-w.sub.Err():
			w.logger.Warn("subscription failed", "err", err)
			w.setErr(err)

			return

		case <-w.quitCh:
			w.logger.Debug("unwatched")
			w.unsubscribe()

			return
		}
	}
}

func (w *Watch) unsubscribe() {
	ctx, cancel := context.WithTimeout(context.Background(), w.unsubscribeTimeout)
	defer cancel()

	if err := w.sub.Unsubscribe(ctx); err != nil {
		w.logger.Debug("failed to unsubscribe", "err", err)
	}
}

func decodeStatus(raw json.RawMessage) (types.TransactionStatus, error) {
	var status types.TransactionStatus
	if err := status.UnmarshalJSON(raw); err != nil {
		return status, fmt.Errorf("failed to decode status %s: %w", string(raw), err)
	}

	return status, nil
}
