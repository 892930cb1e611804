package extrinsic

import (
	"context"
	"fmt"
	"time"

	"github.com/0xPolygon/polygon-xt/call"
	"github.com/0xPolygon/polygon-xt/crypto"
	"github.com/0xPolygon/polygon-xt/types"
	"github.com/armon/go-metrics"
	"github.com/hashicorp/go-hclog"
)

const builderMetrics = "extrinsic"

type BuilderOption func(*Builder)

func WithLogger(logger hclog.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger.Named("builder")
	}
}

// WithAddressFormat selects how the signer address is written.
// MultiAddress is the default.
func WithAddressFormat(format types.AddressFormat) BuilderOption {
	return func(b *Builder) {
		b.format = format
	}
}

// Builder assembles signed extrinsics. It is safe for concurrent use
// when its signer is.
type Builder struct {
	signer crypto.Signer
	format types.AddressFormat
	logger hclog.Logger
}

func NewBuilder(signer crypto.Signer, opts ...BuilderOption) *Builder {
	b := &Builder{
		signer: signer,
		format: types.AddressMultiAddress,
		logger: hclog.NewNullLogger(),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

func (b *Builder) AddressFormat() types.AddressFormat {
	return b.format
}

// Build signs c for account and returns the signed extrinsic
func (b *Builder) Build(
	ctx context.Context,
	c *call.Call,
	account types.AccountID,
	params *Params,
) (*Extrinsic, error) {
	defer metrics.MeasureSince([]string{builderMetrics, "build"}, time.Now())

	callBytes := c.Bytes()

	payload, err := SigningPayload(callBytes, params)
	if err != nil {
		return nil, err
	}

	sig, err := b.signer.Sign(ctx, account, payload)
	if err != nil {
		metrics.IncrCounter([]string{builderMetrics, "signing_failures"}, 1)

		return nil, &SigningError{Err: err}
	}

	if want := sig.Scheme.SignatureLength(); len(sig.Signature) != want {
		return nil, &SigningError{
			Err: fmt.Errorf("%s signature has %d bytes, expected %d", sig.Scheme, len(sig.Signature), want),
		}
	}

	ext, err := newExtrinsic(&Signature{
		Signer:    types.SignerAddress{Format: b.format, Account: account},
		Signature: sig,
		Era:       params.Era,
		Nonce:     params.Nonce,
		Tip:       params.tip(),
	}, callBytes)
	if err != nil {
		return nil, err
	}

	b.logger.Debug(
		"extrinsic built",
		"call", c.String(),
		"signer", account,
		"nonce", params.Nonce,
		"era", params.Era,
		"hash", ext.Hash(),
	)

	metrics.IncrCounter([]string{builderMetrics, "built"}, 1)

	return ext, nil
}

// BuildUnsigned wraps c into an unsigned extrinsic
func (b *Builder) BuildUnsigned(c *call.Call) (*Extrinsic, error) {
	return Unsigned(c)
}
