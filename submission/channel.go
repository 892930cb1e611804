package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/0xPolygon/polygon-xt/types"
)

var (
	// ErrStreamClosed is reported when the channel closes a subscription before a terminal status
	ErrStreamClosed = errors.New("status stream closed before a terminal status")

	ErrPipelineClosed = errors.New("submission pipeline closed")
)

// Subscription is the node side of one watched extrinsic. Notifications
// carries each status exactly as the node sent it.
type Subscription interface {
	ID() string
	Notifications() <-chan json.RawMessage
	// Err yields at most one error if the subscription breaks
	Err() <-chan error
	Unsubscribe(ctx context.Context) error
}

// Channel submits extrinsics and demultiplexes their status notifications.
// A channel shared between submissions delivers to each subscription only
// its own notifications.
type Channel interface {
	SubmitAndWatch(ctx context.Context, extrinsic []byte) (Subscription, error)
}

// Journal records the statuses forwarded for each extrinsic
type Journal interface {
	Record(hash types.Hash, status types.TransactionStatus) error
}

// SubmissionError is returned when the node refuses the extrinsic before it enters the pool
type SubmissionError struct {
	Hash types.Hash
	Err  error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submission of %s rejected: %v", e.Hash, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
