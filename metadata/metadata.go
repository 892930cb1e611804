package metadata

import (
	"fmt"

	"github.com/0xPolygon/polygon-xt/registry"
)

// MagicNumber prefixes every metadata blob ("meta" little-endian)
const MagicNumber uint32 = 0x6174656d

// maxModules is the number of distinct module indices
const maxModules = 256

// SupportedVersions are the metadata layouts this package understands
var SupportedVersions = []uint8{11, 12}

func isSupported(version uint8) bool {
	for _, v := range SupportedVersions {
		if v == version {
			return true
		}
	}

	return false
}

// Metadata is the decoded description of a runtime. It is immutable once built
// and safe for concurrent use.
type Metadata struct {
	Version   uint8
	Modules   []*Module
	Extrinsic ExtrinsicInfo

	byName  map[string]*Module
	byCall  map[uint8]*Module
	byEvent map[uint8]*Module
}

// ExtrinsicInfo describes the extrinsic format the runtime expects
type ExtrinsicInfo struct {
	Version          uint8
	SignedExtensions []string
}

// Module is one pallet of the runtime
type Module struct {
	Name string
	// Index is the explicit wire index for V12, or the position in the module list for V11
	Index     uint8
	Storage   *Storage
	Calls     []*Call
	Events    []*Event
	Constants []*Constant
	Errors    []*ModuleError

	HasCalls  bool
	HasEvents bool

	callIndex  uint8
	eventIndex uint8
}

// CallIndex is the first byte of every call into this module
func (m *Module) CallIndex() uint8 {
	return m.callIndex
}

// EventIndex is the first byte of every event emitted by this module
func (m *Module) EventIndex() uint8 {
	return m.eventIndex
}

type Call struct {
	Name  string
	Index uint8
	Args  []Arg
	Docs  []string
}

// Arg is one named call argument
type Arg struct {
	Name string
	Type registry.TypeName
}

type Event struct {
	Name  string
	Index uint8
	Args  []registry.TypeName
	Docs  []string
}

type Constant struct {
	Name  string
	Type  registry.TypeName
	Value []byte
	Docs  []string
}

type ModuleError struct {
	Name string
	Docs []string
}

type Storage struct {
	Prefix  string
	Entries []*StorageEntry
}

// Modifier tells whether a missing storage value reads as None or as the default
type Modifier uint8

const (
	ModifierOptional Modifier = iota
	ModifierDefault
)

// EntryKind is the shape of a storage entry
type EntryKind uint8

const (
	EntryPlain EntryKind = iota
	EntryMap
	EntryDoubleMap
)

func (k EntryKind) String() string {
	switch k {
	case EntryPlain:
		return "plain"
	case EntryMap:
		return "map"
	case EntryDoubleMap:
		return "double map"
	default:
		return fmt.Sprintf("EntryKind(%d)", uint8(k))
	}
}

type StorageEntry struct {
	Name     string
	Modifier Modifier
	Kind     EntryKind

	// Hasher and Key apply to maps and to the first key of double maps
	Hasher Hasher
	Key    registry.TypeName

	Key2       registry.TypeName
	Key2Hasher Hasher

	Value registry.TypeName
	// Unused is carried by map entries and round-trips unchanged
	Unused bool

	Default []byte
	Docs    []string
}

// New builds metadata from already decoded modules and assigns call and event
// indices according to the version's rules
func New(version uint8, modules []*Module, ext ExtrinsicInfo) (*Metadata, error) {
	if !isSupported(version) {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	m := &Metadata{
		Version:   version,
		Modules:   modules,
		Extrinsic: ext,
	}

	if err := m.index(); err != nil {
		return nil, err
	}

	return m, nil
}

// index assigns wire indices and builds the lookup tables.
// V11 numbers modules separately among those declaring calls and those
// declaring events. V12 carries the index explicitly.
func (m *Metadata) index() error {
	m.byName = make(map[string]*Module, len(m.Modules))
	m.byCall = make(map[uint8]*Module)
	m.byEvent = make(map[uint8]*Module)

	if m.Version == 11 && len(m.Modules) > maxModules {
		return &Error{Context: "index", Err: fmt.Errorf("%d modules, at most %d fit a module index", len(m.Modules), maxModules)}
	}

	var callPos, eventPos int

	for i, mod := range m.Modules {
		if _, dup := m.byName[mod.Name]; dup {
			return &Error{Context: "index", Err: fmt.Errorf("duplicate module %s", mod.Name)}
		}

		m.byName[mod.Name] = mod

		if m.Version == 11 {
			mod.Index = uint8(i)
			mod.callIndex = uint8(callPos)
			mod.eventIndex = uint8(eventPos)
		} else {
			mod.callIndex = mod.Index
			mod.eventIndex = mod.Index
		}

		if mod.HasCalls {
			callPos++

			if prev, dup := m.byCall[mod.callIndex]; dup {
				return &Error{Context: "index", Err: fmt.Errorf("modules %s and %s share call index %d", prev.Name, mod.Name, mod.callIndex)}
			}

			m.byCall[mod.callIndex] = mod
		}

		if mod.HasEvents {
			eventPos++

			if prev, dup := m.byEvent[mod.eventIndex]; dup {
				return &Error{Context: "index", Err: fmt.Errorf("modules %s and %s share event index %d", prev.Name, mod.Name, mod.eventIndex)}
			}

			m.byEvent[mod.eventIndex] = mod
		}

		for j, c := range mod.Calls {
			c.Index = uint8(j)
		}

		for j, e := range mod.Events {
			e.Index = uint8(j)
		}
	}

	return nil
}
