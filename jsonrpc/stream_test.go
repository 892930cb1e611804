package jsonrpc

import (
	"io"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// eofCodec is a connection the peer already hung up
type eofCodec struct{}

func (eofCodec) Read([]byte) ([]byte, error) {
	return nil, io.EOF
}

func (eofCodec) Write([]byte) error {
	return io.ErrClosedPipe
}

func (eofCodec) Close() error {
	return nil
}

func TestStream_RegisterAfterShutdown(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s := newStream(eofCodec{}, hclog.NewNullLogger(), time.Second)

	select {
	case <-s.closeCh:
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not shut down")
	}

	sub, err := s.register("0xabc", "author_unwatchExtrinsic")
	require.ErrorIs(t, err, ErrClosed)
	assert.Nil(t, sub)

	s.subsLock.Lock()
	assert.Empty(t, s.subs)
	s.subsLock.Unlock()
}
