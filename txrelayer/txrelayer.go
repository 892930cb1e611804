package txrelayer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/0xPolygon/polygon-xt/call"
	"github.com/0xPolygon/polygon-xt/crypto"
	"github.com/0xPolygon/polygon-xt/extrinsic"
	"github.com/0xPolygon/polygon-xt/jsonrpc"
	"github.com/0xPolygon/polygon-xt/metadata"
	"github.com/0xPolygon/polygon-xt/registry"
	"github.com/0xPolygon/polygon-xt/storage"
	"github.com/0xPolygon/polygon-xt/submission"
	"github.com/0xPolygon/polygon-xt/types"
	"github.com/hashicorp/go-hclog"
	lru "github.com/hashicorp/golang-lru"
	"github.com/holiman/uint256"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultAddr       = "ws://127.0.0.1:9944"
	DefaultSS58Prefix = 42

	defaultWaitTimeout   = 2 * time.Minute
	metadataCacheEntries = 8
)

var (
	// ErrNoSigner is returned when an extrinsic is signed without a configured signer
	ErrNoSigner = errors.New("no signer configured")

	// ErrExtrinsicFailed is returned when an extrinsic ends in a terminal status other than Finalized
	ErrExtrinsicFailed = errors.New("extrinsic not finalized")
)

// Chain is the node API the relayer needs. *jsonrpc.Client implements it.
type Chain interface {
	submission.Channel

	GetBlockHash(ctx context.Context, n uint64) (types.Hash, error)
	GetRuntimeVersion(ctx context.Context, at *types.Hash) (*types.RuntimeVersion, error)
	GetMetadata(ctx context.Context, at *types.Hash) ([]byte, error)
	GetFinalizedHead(ctx context.Context) (types.Hash, error)
	GetHeader(ctx context.Context, hash *types.Hash) (*types.Header, error)
	GetStorage(ctx context.Context, key []byte, at *types.Hash) ([]byte, bool, error)
	AccountNextIndex(ctx context.Context, account types.AccountID, ss58Prefix uint16) (uint64, error)
}

var _ Chain = (*jsonrpc.Client)(nil)

type RelayerOption func(*TxRelayer)

// WithAddr sets the websocket endpoint dialed when no chain is given
func WithAddr(addr string) RelayerOption {
	return func(t *TxRelayer) {
		t.addr = addr
	}
}

func WithChain(chain Chain) RelayerOption {
	return func(t *TxRelayer) {
		t.chain = chain
	}
}

func WithDialOptions(opts ...jsonrpc.DialOption) RelayerOption {
	return func(t *TxRelayer) {
		t.dialOpts = append(t.dialOpts, opts...)
	}
}

func WithLogger(logger hclog.Logger) RelayerOption {
	return func(t *TxRelayer) {
		t.logger = logger
	}
}

func WithSigner(signer crypto.Signer) RelayerOption {
	return func(t *TxRelayer) {
		t.signer = signer
	}
}

func WithRegistry(reg *registry.Registry) RelayerOption {
	return func(t *TxRelayer) {
		t.registry = reg
	}
}

// WithStorage caches metadata blobs and journals submitted extrinsics in store
func WithStorage(store storage.Storage) RelayerOption {
	return func(t *TxRelayer) {
		t.store = store
	}
}

func WithSS58Prefix(prefix uint16) RelayerOption {
	return func(t *TxRelayer) {
		t.ss58Prefix = prefix
	}
}

// WithEraPeriod makes extrinsics mortal for period blocks from the finalized head.
// Zero keeps them immortal.
func WithEraPeriod(period uint64) RelayerOption {
	return func(t *TxRelayer) {
		t.eraPeriod = period
	}
}

func WithTip(tip *uint256.Int) RelayerOption {
	return func(t *TxRelayer) {
		t.tip = tip
	}
}

func WithAddressFormat(format types.AddressFormat) RelayerOption {
	return func(t *TxRelayer) {
		t.format = format
	}
}

// WithWaitTimeout bounds SendCallAndWait
func WithWaitTimeout(timeout time.Duration) RelayerOption {
	return func(t *TxRelayer) {
		t.waitTimeout = timeout
	}
}

// TxRelayer ties a node connection, a registry and a signer together to
// encode, sign, submit and track extrinsics
type TxRelayer struct {
	addr     string
	dialOpts []jsonrpc.DialOption
	chain    Chain
	closer   io.Closer

	logger   hclog.Logger
	signer   crypto.Signer
	registry *registry.Registry
	store    storage.Storage

	ss58Prefix  uint16
	eraPeriod   uint64
	tip         *uint256.Int
	format      types.AddressFormat
	waitTimeout time.Duration

	// metadata decoded per spec version
	cache *lru.Cache

	genesisLock sync.Mutex
	genesis     *types.Hash

	builder  *extrinsic.Builder
	pipeline *submission.Pipeline
}

func NewTxRelayer(opts ...RelayerOption) (*TxRelayer, error) {
	t := &TxRelayer{
		addr:        DefaultAddr,
		logger:      hclog.NewNullLogger(),
		ss58Prefix:  DefaultSS58Prefix,
		format:      types.AddressMultiAddress,
		waitTimeout: defaultWaitTimeout,
	}

	for _, opt := range opts {
		opt(t)
	}

	t.logger = t.logger.Named("txrelayer")

	if t.registry == nil {
		reg, err := registry.Default()
		if err != nil {
			return nil, err
		}

		t.registry = reg
	}

	cache, err := lru.New(metadataCacheEntries)
	if err != nil {
		return nil, err
	}

	t.cache = cache

	if t.chain == nil {
		client, err := jsonrpc.Dial(
			context.Background(),
			t.addr,
			append([]jsonrpc.DialOption{jsonrpc.WithLogger(t.logger)}, t.dialOpts...)...,
		)
		if err != nil {
			return nil, err
		}

		t.chain = client
		t.closer = client
	}

	if t.signer != nil {
		t.builder = extrinsic.NewBuilder(
			t.signer,
			extrinsic.WithLogger(t.logger),
			extrinsic.WithAddressFormat(t.format),
		)
	}

	pipelineOpts := []submission.Option{submission.WithLogger(t.logger)}
	if t.store != nil {
		pipelineOpts = append(pipelineOpts, submission.WithJournal(t.store))
	}

	t.pipeline = submission.NewPipeline(t.chain, pipelineOpts...)

	return t, nil
}

// Close unwatches pending submissions and closes the connection the relayer dialed
func (t *TxRelayer) Close() error {
	t.pipeline.Close()

	if t.closer != nil {
		return t.closer.Close()
	}

	return nil
}

func (t *TxRelayer) Chain() Chain {
	return t.chain
}

func (t *TxRelayer) Registry() *registry.Registry {
	return t.registry
}

// GenesisHash is fetched once and cached for the lifetime of the relayer
func (t *TxRelayer) GenesisHash(ctx context.Context) (types.Hash, error) {
	t.genesisLock.Lock()
	defer t.genesisLock.Unlock()

	if t.genesis != nil {
		return *t.genesis, nil
	}

	hash, err := t.chain.GetBlockHash(ctx, 0)
	if err != nil {
		return types.ZeroHash, fmt.Errorf("failed to fetch genesis hash: %w", err)
	}

	t.genesis = &hash

	return hash, nil
}

// Metadata returns the metadata of the runtime currently running on the node.
// Lookups go through the in-memory cache, then the storage, then the node.
func (t *TxRelayer) Metadata(ctx context.Context) (*metadata.Metadata, *types.RuntimeVersion, error) {
	rv, err := t.chain.GetRuntimeVersion(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch runtime version: %w", err)
	}

	if v, ok := t.cache.Get(rv.SpecVersion); ok {
		meta, _ := v.(*metadata.Metadata)

		return meta, rv, nil
	}

	genesis, err := t.GenesisHash(ctx)
	if err != nil {
		return nil, nil, err
	}

	if t.store != nil {
		blob, ok, err := t.store.ReadMetadata(genesis, rv.SpecVersion)
		if err != nil {
			t.logger.Warn("failed to read cached metadata", "spec_version", rv.SpecVersion, "err", err)
		} else if ok {
			meta, err := t.decodeMetadata(blob)
			if err == nil {
				t.cache.Add(rv.SpecVersion, meta)

				return meta, rv, nil
			}

			t.logger.Warn("dropping unreadable cached metadata", "spec_version", rv.SpecVersion, "err", err)
		}
	}

	meta, err := t.fetchMetadata(ctx, genesis, rv.SpecVersion)
	if err != nil {
		return nil, nil, err
	}

	return meta, rv, nil
}

// RefreshMetadata drops cached metadata and fetches it from the node again,
// for use after a runtime upgrade
func (t *TxRelayer) RefreshMetadata(ctx context.Context) (*metadata.Metadata, error) {
	t.cache.Purge()

	rv, err := t.chain.GetRuntimeVersion(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch runtime version: %w", err)
	}

	genesis, err := t.GenesisHash(ctx)
	if err != nil {
		return nil, err
	}

	return t.fetchMetadata(ctx, genesis, rv.SpecVersion)
}

func (t *TxRelayer) fetchMetadata(ctx context.Context, genesis types.Hash, specVersion uint32) (*metadata.Metadata, error) {
	blob, err := t.chain.GetMetadata(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metadata: %w", err)
	}

	meta, err := t.decodeMetadata(blob)
	if err != nil {
		return nil, err
	}

	t.cache.Add(specVersion, meta)

	if t.store != nil {
		if err := t.store.WriteMetadata(genesis, specVersion, blob); err != nil {
			t.logger.Warn("failed to cache metadata", "spec_version", specVersion, "err", err)
		}
	}

	t.logger.Debug("metadata loaded", "spec_version", specVersion, "version", meta.Version, "modules", len(meta.Modules))

	return meta, nil
}

func (t *TxRelayer) decodeMetadata(blob []byte) (*metadata.Metadata, error) {
	meta, err := metadata.Decode(blob)
	if err != nil {
		return nil, err
	}

	// unknown runtime types need a type alias in the registry
	if err := meta.Validate(t.registry); err != nil {
		return nil, &metadata.Error{Context: "unresolved types", Err: err}
	}

	return meta, nil
}

// Encoder returns a call encoder over the current runtime metadata
func (t *TxRelayer) Encoder(ctx context.Context) (*call.Encoder, error) {
	meta, _, err := t.Metadata(ctx)
	if err != nil {
		return nil, err
	}

	return call.NewEncoder(meta, t.registry), nil
}

// Call encodes module.name with args against the current runtime
func (t *TxRelayer) Call(ctx context.Context, module, name string, args ...interface{}) (*call.Call, error) {
	enc, err := t.Encoder(ctx)
	if err != nil {
		return nil, err
	}

	return enc.Encode(module, name, args...)
}

// Params gathers the chain context and the next nonce of account.
// The lookups run concurrently.
func (t *TxRelayer) Params(ctx context.Context, account types.AccountID) (*extrinsic.Params, error) {
	params := &extrinsic.Params{
		Tip: t.tip,
	}

	var rv *types.RuntimeVersion

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		genesis, err := t.GenesisHash(gctx)
		params.Chain.GenesisHash = genesis

		return err
	})

	g.Go(func() (err error) {
		if rv, err = t.chain.GetRuntimeVersion(gctx, nil); err != nil {
			return fmt.Errorf("failed to fetch runtime version: %w", err)
		}

		return nil
	})

	g.Go(func() (err error) {
		if params.Nonce, err = t.chain.AccountNextIndex(gctx, account, t.ss58Prefix); err != nil {
			return fmt.Errorf("failed to fetch nonce of %s: %w", account.SS58(t.ss58Prefix), err)
		}

		return nil
	})

	if t.eraPeriod > 0 {
		g.Go(func() error {
			era, birth, err := t.mortality(gctx)
			params.Era = era
			params.BirthHash = birth

			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	params.Chain.SpecVersion = rv.SpecVersion
	params.Chain.TransactionVersion = rv.TransactionVersion

	return params, nil
}

// mortality anchors a mortal era at the finalized head
func (t *TxRelayer) mortality(ctx context.Context) (types.Era, types.Hash, error) {
	head, err := t.chain.GetFinalizedHead(ctx)
	if err != nil {
		return types.Era{}, types.ZeroHash, fmt.Errorf("failed to fetch finalized head: %w", err)
	}

	header, err := t.chain.GetHeader(ctx, &head)
	if err != nil {
		return types.Era{}, types.ZeroHash, fmt.Errorf("failed to fetch header %s: %w", head, err)
	}

	era := types.NewMortalEra(t.eraPeriod, header.Number)

	birth := era.Birth(header.Number)
	if birth == header.Number {
		return era, head, nil
	}

	hash, err := t.chain.GetBlockHash(ctx, birth)
	if err != nil {
		return types.Era{}, types.ZeroHash, fmt.Errorf("failed to fetch birth block %d: %w", birth, err)
	}

	return era, hash, nil
}

// BuildCall signs c on behalf of account
func (t *TxRelayer) BuildCall(ctx context.Context, account types.AccountID, c *call.Call) (*extrinsic.Extrinsic, error) {
	if t.builder == nil {
		return nil, ErrNoSigner
	}

	params, err := t.Params(ctx, account)
	if err != nil {
		return nil, err
	}

	return t.builder.Build(ctx, c, account, params)
}

// Submit hands an already built extrinsic to the pipeline
func (t *TxRelayer) Submit(ctx context.Context, ext *extrinsic.Extrinsic) (*submission.Watch, error) {
	if t.store != nil {
		if err := t.store.WriteExtrinsic(ext.Hash(), ext.Bytes()); err != nil {
			t.logger.Warn("failed to store extrinsic", "hash", ext.Hash(), "err", err)
		}
	}

	return t.pipeline.Submit(ctx, ext)
}

// SendCall signs c for account, submits it and returns the status watch
func (t *TxRelayer) SendCall(ctx context.Context, account types.AccountID, c *call.Call) (*submission.Watch, error) {
	ext, err := t.BuildCall(ctx, account, c)
	if err != nil {
		return nil, err
	}

	return t.Submit(ctx, ext)
}

// SendCallAndWait is SendCall followed by waiting for the terminal status.
// A terminal status other than Finalized is returned together with ErrExtrinsicFailed.
func (t *TxRelayer) SendCallAndWait(
	ctx context.Context,
	account types.AccountID,
	c *call.Call,
) (types.TransactionStatus, error) {
	watch, err := t.SendCall(ctx, account, c)
	if err != nil {
		return types.TransactionStatus{}, err
	}

	return t.Wait(ctx, watch)
}

// Wait blocks until watch reaches a terminal status or the wait timeout passes
func (t *TxRelayer) Wait(ctx context.Context, watch *submission.Watch) (types.TransactionStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, t.waitTimeout)
	defer cancel()

	status, err := watch.Wait(ctx)
	if err != nil {
		watch.Unwatch()

		return status, err
	}

	if status.Kind != types.StatusFinalized {
		return status, fmt.Errorf("%w: %s ended %s", ErrExtrinsicFailed, watch.Hash(), status)
	}

	return status, nil
}

// FetchStorage reads module.entry at the best block. keys are the map keys
// of the entry, encoded with the registry. A missing value reads as the
// entry's default, or as nil for optional entries.
func (t *TxRelayer) FetchStorage(ctx context.Context, module, entry string, keys ...interface{}) (interface{}, error) {
	meta, _, err := t.Metadata(ctx)
	if err != nil {
		return nil, err
	}

	e, err := meta.FindStorageEntry(module, entry)
	if err != nil {
		return nil, err
	}

	if len(keys) != e.KeyCount() {
		return nil, fmt.Errorf("%w: %s.%s takes %d, got %d",
			metadata.ErrStorageKeyCount, module, entry, e.KeyCount(), len(keys))
	}

	keyTypes := []registry.TypeName{e.Key, e.Key2}
	encoded := make([][]byte, len(keys))

	for i, k := range keys {
		v, err := t.registry.Encode(keyTypes[i], k)
		if err != nil {
			return nil, fmt.Errorf("storage key %d of %s.%s: %w", i, module, entry, err)
		}

		encoded[i] = v.Bytes()
	}

	key, err := meta.StorageKey(module, entry, encoded...)
	if err != nil {
		return nil, err
	}

	raw, ok, err := t.chain.GetStorage(ctx, key, nil)
	if err != nil {
		return nil, err
	}

	if !ok {
		if e.Modifier == metadata.ModifierOptional {
			return nil, nil
		}

		raw = e.Default
	}

	return t.registry.DecodeBytes(e.Value, raw)
}
