package jsonrpc

import (
	"context"

	"github.com/0xPolygon/polygon-xt/helper/hex"
	"github.com/0xPolygon/polygon-xt/submission"
	"github.com/0xPolygon/polygon-xt/types"
	"github.com/hashicorp/go-hclog"
)

var _ submission.Channel = (*Client)(nil)

// Client is a typed wrapper over the node's JSON-RPC API
type Client struct {
	stream *stream
	logger hclog.Logger
}

func newClient(s *stream, logger hclog.Logger) *Client {
	return &Client{stream: s, logger: logger}
}

// NewClientWithCodec runs a client over an established connection
func NewClientWithCodec(codec Codec, logger hclog.Logger) *Client {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return newClient(newStream(codec, logger, defaultCallTimeout), logger)
}

// Call is a raw request for methods without a typed wrapper
func (c *Client) Call(ctx context.Context, method string, out interface{}, params ...interface{}) error {
	return c.stream.Call(ctx, method, out, params...)
}

// Subscribe is a raw subscription for methods without a typed wrapper
func (c *Client) Subscribe(ctx context.Context, method, unsubscribeMethod string, params ...interface{}) (*Subscription, error) {
	return c.stream.Subscribe(ctx, method, unsubscribeMethod, params...)
}

func (c *Client) Close() error {
	return c.stream.Close()
}

// SubmitAndWatch submits an extrinsic and subscribes to its status updates
func (c *Client) SubmitAndWatch(ctx context.Context, extrinsic []byte) (submission.Subscription, error) {
	sub, err := c.stream.Subscribe(
		ctx,
		"author_submitAndWatchExtrinsic",
		"author_unwatchExtrinsic",
		hex.EncodeToHex(extrinsic),
	)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// SubmitExtrinsic submits an extrinsic without watching it and returns its hash
func (c *Client) SubmitExtrinsic(ctx context.Context, extrinsic []byte) (types.Hash, error) {
	var hash types.Hash
	err := c.stream.Call(ctx, "author_submitExtrinsic", &hash, hex.EncodeToHex(extrinsic))

	return hash, err
}

// GetMetadata returns the raw metadata blob at the given block, or at the best block if at is nil
func (c *Client) GetMetadata(ctx context.Context, at *types.Hash) ([]byte, error) {
	var out types.HexBytes
	if err := c.stream.Call(ctx, "state_getMetadata", &out, atParams(at)...); err != nil {
		return nil, err
	}

	return out, nil
}

// AccountNextIndex returns the next nonce of an account, pool transactions included
func (c *Client) AccountNextIndex(ctx context.Context, account types.AccountID, ss58Prefix uint16) (uint64, error) {
	var nonce uint64
	err := c.stream.Call(ctx, "system_accountNextIndex", &nonce, account.SS58(ss58Prefix))

	return nonce, err
}

// GetBlockHash returns the hash of block n, GetBlockHash(0) is the genesis hash
func (c *Client) GetBlockHash(ctx context.Context, n uint64) (types.Hash, error) {
	var hash types.Hash
	err := c.stream.Call(ctx, "chain_getBlockHash", &hash, n)

	return hash, err
}

func (c *Client) GetGenesisHash(ctx context.Context) (types.Hash, error) {
	return c.GetBlockHash(ctx, 0)
}

func (c *Client) GetRuntimeVersion(ctx context.Context, at *types.Hash) (*types.RuntimeVersion, error) {
	var rv types.RuntimeVersion
	if err := c.stream.Call(ctx, "state_getRuntimeVersion", &rv, atParams(at)...); err != nil {
		return nil, err
	}

	return &rv, nil
}

func (c *Client) GetFinalizedHead(ctx context.Context) (types.Hash, error) {
	var hash types.Hash
	err := c.stream.Call(ctx, "chain_getFinalizedHead", &hash)

	return hash, err
}

// GetHeader returns the header of block hash, or of the best block if hash is nil
func (c *Client) GetHeader(ctx context.Context, hash *types.Hash) (*types.Header, error) {
	var header types.Header
	if err := c.stream.Call(ctx, "chain_getHeader", &header, atParams(hash)...); err != nil {
		return nil, err
	}

	return &header, nil
}

// GetStorage reads a raw storage value. The bool is false when the key holds no value.
func (c *Client) GetStorage(ctx context.Context, key []byte, at *types.Hash) ([]byte, bool, error) {
	var out *types.HexBytes

	params := append([]interface{}{hex.EncodeToHex(key)}, atParams(at)...)
	if err := c.stream.Call(ctx, "state_getStorage", &out, params...); err != nil {
		return nil, false, err
	}

	if out == nil {
		return nil, false, nil
	}

	return *out, true, nil
}

func atParams(at *types.Hash) []interface{} {
	if at == nil {
		return nil
	}

	return []interface{}{at.String()}
}
