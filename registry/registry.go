package registry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/0xPolygon/polygon-xt/scale"
	iradix "github.com/hashicorp/go-immutable-radix"
	"github.com/hashicorp/go-multierror"
)

var (
	// ErrUnknownType is returned when a type name cannot be resolved to a strategy
	ErrUnknownType = errors.New("unknown type")

	// ErrIncompatibleValue is returned when a Go value cannot be encoded as the requested type
	ErrIncompatibleValue = errors.New("incompatible value")

	// ErrAliasCycle is returned when aliases refer back to themselves
	ErrAliasCycle = errors.New("alias cycle")
)

const maxAliasDepth = 32

// maxArrayLength bounds the N of a fixed array type name
const maxArrayLength = 1 << 20

// TypeName names a wire type as it appears in runtime metadata
type TypeName string

func (t TypeName) String() string {
	return string(t)
}

// Strategy encodes and decodes the values of one wire type
type Strategy interface {
	Encode(enc *scale.Encoder, v interface{}) error
	Decode(dec *scale.Decoder) (interface{}, error)
}

// EncodedValue is the encoding of one value together with the type that produced it
type EncodedValue struct {
	typ  TypeName
	data []byte
}

func NewEncodedValue(typ TypeName, data []byte) EncodedValue {
	return EncodedValue{typ: typ, data: append([]byte(nil), data...)}
}

func (e EncodedValue) Type() TypeName {
	return e.typ
}

// Bytes returns a copy of the encoding
func (e EncodedValue) Bytes() []byte {
	out := make([]byte, len(e.data))
	copy(out, e.data)

	return out
}

func (e EncodedValue) Len() int {
	return len(e.data)
}

func (e EncodedValue) EncodeSCALE(enc *scale.Encoder) error {
	enc.Write(e.data)

	return nil
}

type entryKind int

const (
	entryStrategy entryKind = iota
	entryAlias
	entryStruct
	entryEnum
)

type entry struct {
	kind     entryKind
	strategy Strategy
	alias    TypeName
	fields   []Field
	variants []Variant
	fallback string
}

// Field is one named member of a struct type
type Field struct {
	Name string
	Type TypeName
}

// Variant is one member of an enum type. Unit variants use the type "()".
type Variant struct {
	Name string
	Type TypeName
}

// Builder collects type definitions. Definitions may reference types that
// are registered later; references are checked by Build.
type Builder struct {
	txn *iradix.Txn
}

func NewBuilder() *Builder {
	return &Builder{txn: iradix.New().Txn()}
}

func (b *Builder) insert(name TypeName, e *entry) *Builder {
	b.txn.Insert([]byte(Normalize(name)), e)

	return b
}

// Register binds name to a custom strategy
func (b *Builder) Register(name TypeName, s Strategy) *Builder {
	return b.insert(name, &entry{kind: entryStrategy, strategy: s})
}

// RegisterAlias makes name resolve to whatever target resolves to
func (b *Builder) RegisterAlias(name, target TypeName) *Builder {
	return b.insert(name, &entry{kind: entryAlias, alias: Normalize(target)})
}

// RegisterStruct defines a struct as the concatenation of its fields
func (b *Builder) RegisterStruct(name TypeName, fields ...Field) *Builder {
	return b.insert(name, &entry{kind: entryStruct, fields: append([]Field(nil), fields...)})
}

// RegisterEnum defines a closed enum. Variant indices follow declaration order.
func (b *Builder) RegisterEnum(name TypeName, variants ...Variant) *Builder {
	return b.insert(name, &entry{kind: entryEnum, variants: append([]Variant(nil), variants...)})
}

// RegisterEnumWithFallback defines an enum whose fallback variant is used when
// a plain value, rather than an EnumValue, is encoded
func (b *Builder) RegisterEnumWithFallback(name TypeName, fallback string, variants ...Variant) *Builder {
	return b.insert(name, &entry{
		kind:     entryEnum,
		variants: append([]Variant(nil), variants...),
		fallback: fallback,
	})
}

// Build freezes the definitions. It fails with every unresolvable reference
// made by a registered alias, struct or enum.
func (b *Builder) Build() (*Registry, error) {
	r := &Registry{tree: b.txn.Commit()}

	var result *multierror.Error

	r.tree.Root().Walk(func(k []byte, v interface{}) bool {
		e, _ := v.(*entry)

		var refs []TypeName

		switch e.kind {
		case entryAlias:
			refs = append(refs, e.alias)
		case entryStruct:
			for _, f := range e.fields {
				refs = append(refs, f.Type)
			}
		case entryEnum:
			for _, vr := range e.variants {
				refs = append(refs, vr.Type)
			}
		}

		for _, ref := range refs {
			if _, err := r.Resolve(ref); err != nil {
				result = multierror.Append(result, fmt.Errorf("%s: %w", string(k), err))
			}
		}

		return false
	})

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	return r, nil
}

// Registry maps type names to strategies. It is immutable and safe for concurrent use.
type Registry struct {
	tree *iradix.Tree
}

// Extend returns a builder seeded with the registry's definitions
func (r *Registry) Extend() *Builder {
	return &Builder{txn: r.tree.Txn()}
}

// Len returns the number of registered names
func (r *Registry) Len() int {
	return r.tree.Len()
}

// Names returns the registered names in lexical order
func (r *Registry) Names() []TypeName {
	names := make([]TypeName, 0, r.tree.Len())

	r.tree.Root().Walk(func(k []byte, _ interface{}) bool {
		names = append(names, TypeName(k))

		return false
	})

	return names
}

// Has reports whether name resolves
func (r *Registry) Has(name TypeName) bool {
	_, err := r.Resolve(name)

	return err == nil
}

// Resolve returns the strategy for name. Besides registered names it understands
// Compact<T>, Vec<T>, Option<T>, Box<T>, tuples and fixed arrays [T; N].
func (r *Registry) Resolve(name TypeName) (Strategy, error) {
	return r.resolve(Normalize(name), 0)
}

func (r *Registry) resolve(name TypeName, depth int) (Strategy, error) {
	if depth > maxAliasDepth {
		return nil, fmt.Errorf("%w: %s", ErrAliasCycle, name)
	}

	if v, ok := r.tree.Get([]byte(name)); ok {
		e, _ := v.(*entry)

		switch e.kind {
		case entryAlias:
			return r.resolve(e.alias, depth+1)
		case entryStruct:
			return r.structStrategy(name, e.fields, depth)
		case entryEnum:
			return r.enumStrategy(name, e, depth)
		default:
			return e.strategy, nil
		}
	}

	if s, ok := primitives[name]; ok {
		return s, nil
	}

	return r.resolveComposite(name, depth)
}

func (r *Registry) resolveComposite(name TypeName, depth int) (Strategy, error) {
	s := string(name)

	if s == "()" {
		return unitStrategy{}, nil
	}

	if inner, ok := genericArg(s, "Compact"); ok {
		innerStrategy, err := r.resolve(inner, depth+1)
		if err != nil {
			return nil, err
		}

		return newCompactStrategy(name, innerStrategy)
	}

	if inner, ok := genericArg(s, "Vec"); ok {
		if inner == "u8" {
			return bytesStrategy{}, nil
		}

		elem, err := r.resolve(inner, depth+1)
		if err != nil {
			return nil, err
		}

		return vecStrategy{elem: elem}, nil
	}

	if inner, ok := genericArg(s, "Option"); ok {
		if inner == "bool" {
			return optionBoolStrategy{}, nil
		}

		elem, err := r.resolve(inner, depth+1)
		if err != nil {
			return nil, err
		}

		return optionStrategy{elem: elem}, nil
	}

	if inner, ok := genericArg(s, "Box"); ok {
		return r.resolve(inner, depth+1)
	}

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		parts := splitTopLevel(s[1 : len(s)-1])
		elems := make([]Strategy, 0, len(parts))

		for _, p := range parts {
			elem, err := r.resolve(TypeName(p), depth+1)
			if err != nil {
				return nil, err
			}

			elems = append(elems, elem)
		}

		if len(elems) == 1 {
			return elems[0], nil
		}

		return tupleStrategy{elems: elems}, nil
	}

	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		parts := strings.Split(s[1:len(s)-1], ";")
		if len(parts) == 2 {
			n, err := strconv.Atoi(strings.TrimSpace(parts[1]))
			if err == nil && n > maxArrayLength {
				return nil, fmt.Errorf("%w: %s, array length above %d", ErrUnknownType, name, maxArrayLength)
			}

			if err == nil && n >= 0 {
				if parts[0] == "u8" {
					return byteArrayStrategy{n: n}, nil
				}

				elem, err := r.resolve(TypeName(parts[0]), depth+1)
				if err != nil {
					return nil, err
				}

				return arrayStrategy{elem: elem, n: n}, nil
			}
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownType, name)
}

func (r *Registry) structStrategy(name TypeName, fields []Field, depth int) (Strategy, error) {
	s := structStrategy{name: name, fields: make([]resolvedField, 0, len(fields))}

	for _, f := range fields {
		fs, err := r.resolve(Normalize(f.Type), depth+1)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", name, f.Name, err)
		}

		s.fields = append(s.fields, resolvedField{name: f.Name, strategy: fs})
	}

	return s, nil
}

func (r *Registry) enumStrategy(name TypeName, e *entry, depth int) (Strategy, error) {
	s := enumStrategy{name: name, variants: make([]resolvedField, 0, len(e.variants)), fallback: -1}

	for i, v := range e.variants {
		vs, err := r.resolve(Normalize(v.Type), depth+1)
		if err != nil {
			return nil, fmt.Errorf("%s::%s: %w", name, v.Name, err)
		}

		if v.Name == e.fallback {
			s.fallback = i
		}

		s.variants = append(s.variants, resolvedField{name: v.Name, strategy: vs})
	}

	return s, nil
}

// Encode encodes v as name
func (r *Registry) Encode(name TypeName, v interface{}) (EncodedValue, error) {
	s, err := r.Resolve(name)
	if err != nil {
		return EncodedValue{}, err
	}

	enc := scale.AcquireEncoder()
	defer scale.ReleaseEncoder(enc)

	if err := s.Encode(enc, v); err != nil {
		return EncodedValue{}, err
	}

	return EncodedValue{typ: name, data: enc.CopyBytes()}, nil
}

// Decode reads one value of type name from dec
func (r *Registry) Decode(name TypeName, dec *scale.Decoder) (interface{}, error) {
	s, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}

	return s.Decode(dec)
}

// DecodeBytes decodes b as exactly one value of type name
func (r *Registry) DecodeBytes(name TypeName, b []byte) (interface{}, error) {
	dec := scale.NewDecoder(b)

	v, err := r.Decode(name, dec)
	if err != nil {
		return nil, err
	}

	if dec.Remaining() != 0 {
		return nil, fmt.Errorf("%s: %d trailing bytes", name, dec.Remaining())
	}

	return v, nil
}

var normalizeReplacer = strings.NewReplacer(
	"<T::Lookup as StaticLookup>::Source", "LookupSource",
	"<T as Trait>::", "",
	"<T as Trait<I>>::", "",
	"<T as Config>::", "",
	"<T as Config<I>>::", "",
	"T::", "",
	"\n", "",
	"\t", "",
	" ", "",
)

// Normalize strips the generic runtime qualifiers and whitespace that metadata
// carries in its type names, so "T::Balance" and "Balance" name the same type.
// References to the runtime's own associated types (T::AccountId) become plain names.
func Normalize(name TypeName) TypeName {
	return TypeName(normalizeReplacer.Replace(string(name)))
}

func genericArg(s, wrapper string) (TypeName, bool) {
	if !strings.HasPrefix(s, wrapper+"<") || !strings.HasSuffix(s, ">") {
		return "", false
	}

	return TypeName(s[len(wrapper)+1 : len(s)-1]), true
}

// splitTopLevel splits on commas that are not nested in <>, () or []
func splitTopLevel(s string) []string {
	if s == "" {
		return nil
	}

	var (
		parts []string
		depth int
		start int
	)

	for i, c := range s {
		switch c {
		case '<', '(', '[':
			depth++
		case '>', ')', ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}

	if tail := s[start:]; tail != "" {
		parts = append(parts, tail)
	}

	return parts
}
