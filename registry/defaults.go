package registry

// defaultAliases are the associated types of a stock substrate runtime
var defaultAliases = map[TypeName]TypeName{
	"Balance":      "u128",
	"BalanceOf":    "Balance",
	"BlockNumber":  "u32",
	"Index":        "u32",
	"AccountIndex": "u32",
	"RefCount":     "u32",
	"Moment":       "u64",
	"Weight":       "u64",
	"Hash":         "H256",
	"H512":         "[u8; 64]",
	"Signature":    "H512",
	"Perbill":      "u32",
	"Permill":      "u32",
	"Percent":      "u8",
	"Key":          "Bytes",
	"StorageKey":   "Bytes",
	"StorageData":  "Bytes",
	"LookupSource": "MultiAddress",
	"Address":      "MultiAddress",
	"Source":       "MultiAddress",
}

// DefaultBuilder returns a builder preloaded with the stock substrate types.
// Callers add chain specific types before calling Build.
func DefaultBuilder() *Builder {
	b := NewBuilder()

	for name, target := range defaultAliases {
		b.RegisterAlias(name, target)
	}

	b.RegisterEnumWithFallback("MultiAddress", "Id",
		Variant{"Id", "AccountId"},
		Variant{"Index", "Compact<AccountIndex>"},
		Variant{"Raw", "Bytes"},
		Variant{"Address32", "[u8; 32]"},
		Variant{"Address20", "[u8; 20]"},
	)

	b.RegisterEnum("MultiSignature",
		Variant{"Ed25519", "H512"},
		Variant{"Sr25519", "H512"},
		Variant{"Ecdsa", "[u8; 65]"},
	)

	b.RegisterEnum("DispatchClass",
		Variant{"Normal", "()"},
		Variant{"Operational", "()"},
		Variant{"Mandatory", "()"},
	)

	b.RegisterEnum("Pays",
		Variant{"Yes", "()"},
		Variant{"No", "()"},
	)

	b.RegisterStruct("DispatchInfo",
		Field{"weight", "Weight"},
		Field{"class", "DispatchClass"},
		Field{"paysFee", "Pays"},
	)

	b.RegisterStruct("AccountData",
		Field{"free", "Balance"},
		Field{"reserved", "Balance"},
		Field{"miscFrozen", "Balance"},
		Field{"feeFrozen", "Balance"},
	)

	b.RegisterStruct("AccountInfo",
		Field{"nonce", "Index"},
		Field{"refcount", "RefCount"},
		Field{"data", "AccountData"},
	)

	return b
}

// Default builds the stock substrate registry
func Default() (*Registry, error) {
	return DefaultBuilder().Build()
}
