package tests

import (
	"testing"

	"github.com/0xPolygon/polygon-xt/metadata"
	"github.com/0xPolygon/polygon-xt/registry"
	"github.com/0xPolygon/polygon-xt/types"
	"github.com/stretchr/testify/require"
)

// Well known development accounts
var (
	Alice = mustAccount("0xd43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d")
	Bob   = mustAccount("0x8eaf04151687736326c9fea17e25fc5287613693c912909cb226aa4794f26a48")

	// FixtureGenesis is an arbitrary but fixed genesis hash
	FixtureGenesis = types.BytesToHash([]byte{
		0xb0, 0xa8, 0xd4, 0x93, 0x28, 0x5c, 0x2d, 0xf7, 0x32, 0x90, 0xdf, 0xb7, 0xe6, 0x1f, 0x87, 0x0f,
		0x17, 0xb4, 0x18, 0x01, 0x19, 0x7a, 0x14, 0x9c, 0xa9, 0x36, 0x54, 0x49, 0x9e, 0xa3, 0xda, 0xfe,
	})
)

func mustAccount(s string) types.AccountID {
	id, err := types.ParseAccountID(s)
	if err != nil {
		panic(err)
	}

	return id
}

// FixtureModules describes a small runtime with four modules. The explicit
// indices only take effect for V12 metadata.
func FixtureModules() []*metadata.Module {
	return []*metadata.Module{
		{
			Name:  "System",
			Index: 0,
			Storage: &metadata.Storage{
				Prefix: "System",
				Entries: []*metadata.StorageEntry{
					{
						Name:     "AccountNonce",
						Modifier: metadata.ModifierDefault,
						Kind:     metadata.EntryMap,
						Hasher:   metadata.Blake2_128Concat,
						Key:      "T::AccountId",
						Value:    "T::Index",
						Default:  []byte{0, 0, 0, 0},
						Docs:     []string{" Extrinsics nonce for accounts."},
					},
					{
						Name:     "Number",
						Modifier: metadata.ModifierDefault,
						Kind:     metadata.EntryPlain,
						Value:    "T::BlockNumber",
						Default:  []byte{0, 0, 0, 0},
					},
				},
			},
			HasCalls: true,
			Calls: []*metadata.Call{
				{Name: "remark", Args: []metadata.Arg{{Name: "_remark", Type: "Vec<u8>"}}},
				{Name: "set_code", Args: []metadata.Arg{{Name: "code", Type: "Vec<u8>"}}},
			},
			HasEvents: true,
			Events: []*metadata.Event{
				{Name: "ExtrinsicSuccess", Args: []registry.TypeName{"DispatchInfo"}},
				{Name: "NewAccount", Args: []registry.TypeName{"AccountId"}},
			},
			Constants: []*metadata.Constant{
				{Name: "BlockHashCount", Type: "T::BlockNumber", Value: []byte{0x60, 0x09, 0x00, 0x00}},
			},
			Errors: []*metadata.ModuleError{
				{Name: "InvalidSpecName"},
			},
		},
		{
			Name:  "RandomnessCollectiveFlip",
			Index: 1,
			Storage: &metadata.Storage{
				Prefix: "RandomnessCollectiveFlip",
				Entries: []*metadata.StorageEntry{
					{
						Name:     "RandomMaterial",
						Modifier: metadata.ModifierDefault,
						Kind:     metadata.EntryPlain,
						Value:    "Vec<T::Hash>",
						Default:  []byte{0},
					},
				},
			},
		},
		{
			Name:  "Timestamp",
			Index: 3,
			Storage: &metadata.Storage{
				Prefix: "Timestamp",
				Entries: []*metadata.StorageEntry{
					{
						Name:     "Now",
						Modifier: metadata.ModifierDefault,
						Kind:     metadata.EntryPlain,
						Value:    "T::Moment",
						Default:  make([]byte, 8),
					},
				},
			},
			HasCalls: true,
			Calls: []*metadata.Call{
				{Name: "set", Args: []metadata.Arg{{Name: "now", Type: "Compact<T::Moment>"}}},
			},
			Constants: []*metadata.Constant{
				{Name: "MinimumPeriod", Type: "T::Moment", Value: []byte{0xb8, 0x0b, 0, 0, 0, 0, 0, 0}},
			},
		},
		{
			Name:  "Balances",
			Index: 5,
			Storage: &metadata.Storage{
				Prefix: "Balances",
				Entries: []*metadata.StorageEntry{
					{
						Name:     "TotalIssuance",
						Modifier: metadata.ModifierDefault,
						Kind:     metadata.EntryPlain,
						Value:    "T::Balance",
						Default:  make([]byte, 16),
					},
					{
						Name:     "Account",
						Modifier: metadata.ModifierDefault,
						Kind:     metadata.EntryMap,
						Hasher:   metadata.Blake2_128Concat,
						Key:      "T::AccountId",
						Value:    "AccountData",
						Default:  make([]byte, 64),
					},
					{
						Name:       "Reserves",
						Modifier:   metadata.ModifierOptional,
						Kind:       metadata.EntryDoubleMap,
						Hasher:     metadata.Blake2_128Concat,
						Key:        "T::AccountId",
						Key2:       "T::BlockNumber",
						Key2Hasher: metadata.Twox64Concat,
						Value:      "T::Balance",
						Default:    []byte{},
					},
				},
			},
			HasCalls: true,
			Calls: []*metadata.Call{
				{Name: "transfer", Args: []metadata.Arg{
					{Name: "dest", Type: "<T::Lookup as StaticLookup>::Source"},
					{Name: "value", Type: "Compact<T::Balance>"},
				}},
				{Name: "set_balance", Args: []metadata.Arg{
					{Name: "who", Type: "<T::Lookup as StaticLookup>::Source"},
					{Name: "new_free", Type: "Compact<T::Balance>"},
					{Name: "new_reserved", Type: "Compact<T::Balance>"},
				}},
				{Name: "force_transfer", Args: []metadata.Arg{
					{Name: "source", Type: "<T::Lookup as StaticLookup>::Source"},
					{Name: "dest", Type: "<T::Lookup as StaticLookup>::Source"},
					{Name: "value", Type: "Compact<T::Balance>"},
				}},
				{Name: "transfer_keep_alive", Args: []metadata.Arg{
					{Name: "dest", Type: "<T::Lookup as StaticLookup>::Source"},
					{Name: "value", Type: "Compact<T::Balance>"},
				}},
			},
			HasEvents: true,
			Events: []*metadata.Event{
				{Name: "Endowed", Args: []registry.TypeName{"AccountId", "Balance"}},
				{Name: "Transfer", Args: []registry.TypeName{"AccountId", "AccountId", "Balance"}},
			},
			Constants: []*metadata.Constant{
				{Name: "ExistentialDeposit", Type: "T::Balance", Value: []byte{0xf4, 0x01, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}},
			},
			Errors: []*metadata.ModuleError{
				{Name: "InsufficientBalance", Docs: []string{" Balance too low to send value"}},
			},
		},
	}
}

// FixtureExtrinsic lists the signed extensions of the fixture runtime
func FixtureExtrinsic() metadata.ExtrinsicInfo {
	return metadata.ExtrinsicInfo{
		Version: 4,
		SignedExtensions: []string{
			"CheckSpecVersion",
			"CheckTxVersion",
			"CheckGenesis",
			"CheckMortality",
			"CheckNonce",
			"CheckWeight",
			"ChargeTransactionPayment",
		},
	}
}

// FixtureMetadata builds the fixture runtime in the given metadata version
func FixtureMetadata(t *testing.T, version uint8) *metadata.Metadata {
	t.Helper()

	m, err := metadata.New(version, FixtureModules(), FixtureExtrinsic())
	require.NoError(t, err)

	return m
}

// FixtureRegistry is the default registry, which resolves every fixture type
func FixtureRegistry(t *testing.T) *registry.Registry {
	t.Helper()

	r, err := registry.Default()
	require.NoError(t, err)

	return r
}
