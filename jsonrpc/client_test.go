package jsonrpc

import (
	"context"
	stdjson "encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/0xPolygon/polygon-xt/call"
	"github.com/0xPolygon/polygon-xt/extrinsic"
	"github.com/0xPolygon/polygon-xt/helper/hex"
	"github.com/0xPolygon/polygon-xt/helper/tests"
	"github.com/0xPolygon/polygon-xt/submission"
	"github.com/0xPolygon/polygon-xt/types"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testGenesis = "0xb0a8d493285c2df73290dfb7e61f870f17b41801197a149ca93654499ea3dafe"
	testBlock   = "0x1111111111111111111111111111111111111111111111111111111111111111"
)

// mockNode answers requests over a websocket like a substrate node would.
// Statuses queued in watchStatuses are sent for every watched extrinsic,
// the first one before the subscription id is answered.
type mockNode struct {
	t *testing.T

	lock          sync.Mutex
	requests      []Request
	watchStatuses []string
}

func (n *mockNode) record(req Request) {
	n.lock.Lock()
	defer n.lock.Unlock()

	n.requests = append(n.requests, req)
}

func (n *mockNode) methods() []string {
	n.lock.Lock()
	defer n.lock.Unlock()

	out := make([]string, len(n.requests))
	for i, r := range n.requests {
		out[i] = r.Method
	}

	return out
}

func (n *mockNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		_, buf, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var req Request
		if err := json.Unmarshal(buf, &req); err != nil {
			return
		}

		n.record(req)

		if !n.handle(conn, req) {
			return
		}
	}
}

func (n *mockNode) respond(conn *websocket.Conn, id uint64, result string) {
	_ = conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"jsonrpc":"2.0","id":`+itoa(id)+`,"result":`+result+`}`))
}

func (n *mockNode) respondError(conn *websocket.Conn, id uint64, code int, msg string) {
	_ = conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"jsonrpc":"2.0","id":`+itoa(id)+`,"error":{"code":`+itoa(uint64(code))+`,"message":"`+msg+`"}}`))
}

func (n *mockNode) notify(conn *websocket.Conn, subID, result string) {
	_ = conn.WriteMessage(websocket.TextMessage, []byte(
		`{"jsonrpc":"2.0","method":"author_extrinsicUpdate","params":{"subscription":"`+subID+`","result":`+result+`}}`))
}

func (n *mockNode) handle(conn *websocket.Conn, req Request) bool {
	var params []stdjson.RawMessage
	_ = stdjson.Unmarshal(req.Params, &params)

	switch req.Method {
	case "chain_getBlockHash":
		n.respond(conn, req.ID, `"`+testGenesis+`"`)
	case "chain_getFinalizedHead":
		n.respond(conn, req.ID, `"`+testBlock+`"`)
	case "chain_getHeader":
		n.respond(conn, req.ID, `{"parentHash":"`+testGenesis+`","number":"0x10","stateRoot":"`+testBlock+
			`","extrinsicsRoot":"`+testBlock+`","digest":{"logs":[]}}`)
	case "state_getRuntimeVersion":
		n.respond(conn, req.ID, `{"specName":"node","implName":"node","authoringVersion":1,"specVersion":268,"implVersion":0,"transactionVersion":2}`)
	case "state_getMetadata":
		n.respond(conn, req.ID, `"0x6d657461"`)
	case "system_accountNextIndex":
		n.respond(conn, req.ID, `7`)
	case "state_getStorage":
		if len(params) > 0 && string(params[0]) == `"0x00"` {
			n.respond(conn, req.ID, `null`)
		} else {
			n.respond(conn, req.ID, `"0x2a000000"`)
		}
	case "author_submitExtrinsic":
		n.respondError(conn, req.ID, CodePoolInvalidTx, "Invalid Transaction")
	case "author_submitAndWatchExtrinsic":
		n.lock.Lock()
		statuses := append([]string(nil), n.watchStatuses...)
		n.lock.Unlock()

		subID := "sub-" + itoa(req.ID)

		// the first status overtakes the subscription id
		if len(statuses) > 0 {
			n.notify(conn, subID, statuses[0])
		}

		n.respond(conn, req.ID, `"`+subID+`"`)

		for _, s := range statuses[min(1, len(statuses)):] {
			n.notify(conn, subID, s)
		}
	case "author_unwatchExtrinsic":
		n.respond(conn, req.ID, `true`)
	case "slow":
		// never answered
	case "drop":
		return false
	default:
		n.respondError(conn, req.ID, -32601, "Method not found")
	}

	return true
}

func min(a, b int) int {
	if a < b {
		return a
	}

	return b
}

func itoa(n uint64) string {
	if n == 0 {
		return "0"
	}

	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}

	return string(b)
}

func mustUnsignedExtrinsic(t *testing.T) *extrinsic.Extrinsic {
	t.Helper()

	enc := call.NewEncoder(tests.FixtureMetadata(t, 12), tests.FixtureRegistry(t))

	c, err := enc.SystemRemark([]byte("hello"))
	require.NoError(t, err)

	ext, err := extrinsic.Unsigned(c)
	require.NoError(t, err)

	return ext
}

func newTestClient(t *testing.T, node *mockNode, opts ...DialOption) *Client {
	t.Helper()

	server := httptest.NewServer(node)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")

	client, err := Dial(context.Background(), url, opts...)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
	})

	return client
}

func TestClient_Queries(t *testing.T) {
	t.Parallel()

	node := &mockNode{t: t}
	client := newTestClient(t, node)
	ctx := context.Background()

	genesis, err := client.GetGenesisHash(ctx)
	require.NoError(t, err)
	assert.Equal(t, testGenesis, genesis.String())

	head, err := client.GetFinalizedHead(ctx)
	require.NoError(t, err)
	assert.Equal(t, testBlock, head.String())

	header, err := client.GetHeader(ctx, &head)
	require.NoError(t, err)
	assert.Equal(t, uint64(16), header.Number)

	rv, err := client.GetRuntimeVersion(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(268), rv.SpecVersion)
	assert.Equal(t, uint32(2), rv.TransactionVersion)

	blob, err := client.GetMetadata(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "meta", string(blob))

	nonce, err := client.AccountNextIndex(ctx, types.AccountID{1}, 42)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), nonce)

	value, ok, err := client.GetStorage(ctx, []byte{1}, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, hex.MustDecodeHex("0x2a000000"), value)

	_, ok, err = client.GetStorage(ctx, []byte{0}, &head)
	require.NoError(t, err)
	assert.False(t, ok)

	err = client.Call(ctx, "unknown_method", nil)

	var rpcErr Error
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, -32601, rpcErr.ErrorCode())
}

func TestClient_SubmitRejected(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, &mockNode{t: t})

	_, err := client.SubmitExtrinsic(context.Background(), []byte{0x04})
	require.Error(t, err)
	assert.True(t, IsPoolRejection(err))
	assert.Contains(t, err.Error(), "Invalid Transaction")

	assert.False(t, IsPoolRejection(errors.New("other")))
}

func TestClient_SubmitAndWatch(t *testing.T) {
	t.Parallel()

	node := &mockNode{
		t: t,
		watchStatuses: []string{
			`"future"`,
			`"ready"`,
			`{"inBlock":"` + testBlock + `"}`,
			`{"finalized":"` + testBlock + `"}`,
		},
	}
	client := newTestClient(t, node)

	sub, err := client.SubmitAndWatch(context.Background(), []byte{0x04, 0x00})
	require.NoError(t, err)

	received := make([]string, 0)

	for len(received) < 4 {
		select {
		case n := <-sub.Notifications():
			received = append(received, string(n))
		case <-time.After(5 * time.Second):
			t.Fatalf("received %v", received)
		}
	}

	// the notification sent before the subscription id is delivered first
	assert.Equal(t, node.watchStatuses, received)

	require.NoError(t, sub.Unsubscribe(context.Background()))
	assert.ErrorIs(t, sub.Unsubscribe(context.Background()), ErrSubscriptionNotFound)
	assert.Contains(t, node.methods(), "author_unwatchExtrinsic")
}

func TestClient_PipelineEndToEnd(t *testing.T) {
	t.Parallel()

	node := &mockNode{
		t: t,
		watchStatuses: []string{
			`"ready"`,
			`"ready"`,
			`{"broadcast":["12D3KooW"]}`,
			`{"inBlock":"` + testBlock + `"}`,
			`{"finalized":"` + testBlock + `"}`,
		},
	}
	client := newTestClient(t, node)

	watch, err := submission.NewPipeline(client).Submit(context.Background(), mustUnsignedExtrinsic(t))
	require.NoError(t, err)

	kinds := make([]types.StatusKind, 0)
	for status := range watch.Statuses() {
		kinds = append(kinds, status.Kind)
	}

	assert.Equal(t, []types.StatusKind{
		types.StatusReady,
		types.StatusBroadcast,
		types.StatusInBlock,
		types.StatusFinalized,
	}, kinds)
	assert.NoError(t, watch.Err())

	require.Eventually(t, func() bool {
		for _, m := range node.methods() {
			if m == "author_unwatchExtrinsic" {
				return true
			}
		}

		return false
	}, 5*time.Second, 10*time.Millisecond)
}

func TestClient_ConnectionLost(t *testing.T) {
	t.Parallel()

	node := &mockNode{
		t:             t,
		watchStatuses: []string{`"ready"`},
	}
	client := newTestClient(t, node)

	sub, err := client.SubmitAndWatch(context.Background(), []byte{0x04})
	require.NoError(t, err)

	select {
	case n := <-sub.Notifications():
		assert.Equal(t, `"ready"`, string(n))
	case <-time.After(5 * time.Second):
		t.Fatal("no notification")
	}

	// the node hangs up instead of answering
	err = client.Call(context.Background(), "drop", nil)
	assert.ErrorIs(t, err, ErrClosed)

	select {
	case err := <-sub.Err():
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("no error")
	}

	_, err = client.GetGenesisHash(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestClient_CallTimeout(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, &mockNode{t: t}, WithCallTimeout(50*time.Millisecond))

	err := client.Call(context.Background(), "slow", nil)
	assert.ErrorIs(t, err, ErrTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = client.Call(ctx, "slow", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDial_Errors(t *testing.T) {
	t.Parallel()

	_, err := Dial(context.Background(), "http://127.0.0.1:9944")
	assert.ErrorContains(t, err, "unsupported endpoint")

	server := httptest.NewServer(http.NotFoundHandler())
	url := "ws" + strings.TrimPrefix(server.URL, "http")

	_, err = Dial(context.Background(), url, WithDialRetries(2, time.Millisecond))
	assert.ErrorContains(t, err, "failed to connect")

	server.Close()
}

func TestSubscriptionID(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw string
		id  string
		err bool
	}{
		{`"abc"`, "abc", false},
		{`12`, "12", false},
		{` "x" `, "x", false},
		{`{}`, "", true},
		{`"unterminated`, "", true},
	}

	for _, c := range cases {
		id, err := subscriptionID([]byte(c.raw))
		if c.err {
			assert.Error(t, err, c.raw)

			continue
		}

		require.NoError(t, err, c.raw)
		assert.Equal(t, c.id, id)
	}
}
