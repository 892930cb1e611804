package submission

import (
	"context"
	"sync"
	"time"

	"github.com/0xPolygon/polygon-xt/extrinsic"
	"github.com/0xPolygon/polygon-xt/types"
	"github.com/armon/go-metrics"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

const (
	submissionMetrics = "submission"

	defaultBufferSize         = 16
	defaultUnsubscribeTimeout = 5 * time.Second
)

type Option func(*Pipeline)

func WithLogger(logger hclog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger.Named("submission")
	}
}

// WithJournal records every forwarded status
func WithJournal(journal Journal) Option {
	return func(p *Pipeline) {
		p.journal = journal
	}
}

// WithBufferSize sets how many statuses a watch holds for a slow reader
func WithBufferSize(size int) Option {
	return func(p *Pipeline) {
		p.bufferSize = size
	}
}

func WithUnsubscribeTimeout(timeout time.Duration) Option {
	return func(p *Pipeline) {
		p.unsubscribeTimeout = timeout
	}
}

// Pipeline submits extrinsics over a Channel and tracks one Watch per submission
type Pipeline struct {
	channel Channel
	journal Journal
	logger  hclog.Logger

	bufferSize         int
	unsubscribeTimeout time.Duration

	watches     map[string]*Watch
	watchesLock sync.Mutex
	closed      bool
}

func NewPipeline(channel Channel, opts ...Option) *Pipeline {
	p := &Pipeline{
		channel:            channel,
		logger:             hclog.NewNullLogger(),
		bufferSize:         defaultBufferSize,
		unsubscribeTimeout: defaultUnsubscribeTimeout,
		watches:            make(map[string]*Watch),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Submit sends ext and returns a watch over its statuses without waiting for any.
// A refused submission returns a *SubmissionError and no watch.
func (p *Pipeline) Submit(ctx context.Context, ext *extrinsic.Extrinsic) (*Watch, error) {
	p.watchesLock.Lock()
	closed := p.closed
	p.watchesLock.Unlock()

	if closed {
		return nil, ErrPipelineClosed
	}

	hash := ext.Hash()

	sub, err := p.channel.SubmitAndWatch(ctx, ext.Bytes())
	if err != nil {
		metrics.IncrCounter([]string{submissionMetrics, "rejected"}, 1)
		p.logger.Debug("submission rejected", "hash", hash, "err", err)

		return nil, &SubmissionError{Hash: hash, Err: err}
	}

	id := uuid.New().String()

	w := &Watch{
		id:                 id,
		hash:               hash,
		sub:                sub,
		journal:            p.journal,
		logger:             p.logger.With("watch", id, "hash", hash.String()),
		unsubscribeTimeout: p.unsubscribeTimeout,
		outputCh:           make(chan types.TransactionStatus, p.bufferSize),
		doneCh:             make(chan struct{}),
		quitCh:             make(chan struct{}),
		onDone:             p.remove,
	}

	p.watchesLock.Lock()
	if p.closed {
		p.watchesLock.Unlock()

		// closed while the submission was in flight
		w.unsubscribe()

		return nil, ErrPipelineClosed
	}

	p.watches[id] = w
	p.watchesLock.Unlock()

	metrics.IncrCounter([]string{submissionMetrics, "submitted"}, 1)
	p.logger.Info("extrinsic submitted", "hash", hash, "watch", id, "subscription", sub.ID())

	go w.runLoop()

	return w, nil
}

// Watches returns the number of watches still delivering statuses
func (p *Pipeline) Watches() int {
	p.watchesLock.Lock()
	defer p.watchesLock.Unlock()

	return len(p.watches)
}

// Close unwatches every live submission. Submit fails afterwards.
func (p *Pipeline) Close() {
	p.watchesLock.Lock()
	p.closed = true

	watches := make([]*Watch, 0, len(p.watches))
	for _, w := range p.watches {
		watches = append(watches, w)
	}
	p.watchesLock.Unlock()

	for _, w := range watches {
		w.Unwatch()
	}
}

func (p *Pipeline) remove(w *Watch) {
	p.watchesLock.Lock()
	delete(p.watches, w.id)
	p.watchesLock.Unlock()
}
