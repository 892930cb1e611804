package metadata

import (
	"fmt"

	"github.com/0xPolygon/polygon-xt/registry"
	"github.com/hashicorp/go-multierror"
)

// Module finds a module by its case-sensitive name
func (m *Metadata) Module(name string) (*Module, error) {
	mod, ok := m.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, name)
	}

	return mod, nil
}

// FindModuleCall resolves a call by name to its wire indices and argument layout
func (m *Metadata) FindModuleCall(module, call string) (uint8, uint8, []Arg, error) {
	mod, err := m.Module(module)
	if err != nil {
		return 0, 0, nil, err
	}

	if !mod.HasCalls {
		return 0, 0, nil, fmt.Errorf("%w: module %s has no calls", ErrCallNotFound, module)
	}

	for _, c := range mod.Calls {
		if c.Name == call {
			return mod.callIndex, c.Index, append([]Arg(nil), c.Args...), nil
		}
	}

	return 0, 0, nil, fmt.Errorf("%w: %s.%s", ErrCallNotFound, module, call)
}

// FindCallByIndex is the inverse of FindModuleCall
func (m *Metadata) FindCallByIndex(moduleIndex, callIndex uint8) (*Module, *Call, error) {
	mod, ok := m.byCall[moduleIndex]
	if !ok {
		return nil, nil, fmt.Errorf("%w: call module index %d", ErrModuleNotFound, moduleIndex)
	}

	if int(callIndex) >= len(mod.Calls) {
		return nil, nil, fmt.Errorf("%w: %s call index %d", ErrCallNotFound, mod.Name, callIndex)
	}

	return mod, mod.Calls[callIndex], nil
}

// FindEvent resolves the two index bytes that prefix an event record
func (m *Metadata) FindEvent(moduleIndex, eventIndex uint8) (*Module, *Event, error) {
	mod, ok := m.byEvent[moduleIndex]
	if !ok {
		return nil, nil, fmt.Errorf("%w: event module index %d", ErrModuleNotFound, moduleIndex)
	}

	if int(eventIndex) >= len(mod.Events) {
		return nil, nil, fmt.Errorf("%w: %s event index %d", ErrEventNotFound, mod.Name, eventIndex)
	}

	return mod, mod.Events[eventIndex], nil
}

func (m *Metadata) findStorage(module, entry string) (*Module, *StorageEntry, error) {
	mod, err := m.Module(module)
	if err != nil {
		return nil, nil, err
	}

	if mod.Storage != nil {
		for _, e := range mod.Storage.Entries {
			if e.Name == entry {
				return mod, e, nil
			}
		}
	}

	return nil, nil, fmt.Errorf("%w: %s.%s", ErrStorageEntryNotFound, module, entry)
}

// FindStorageEntry returns the description of a storage item
func (m *Metadata) FindStorageEntry(module, entry string) (*StorageEntry, error) {
	_, e, err := m.findStorage(module, entry)

	return e, err
}

// FindStorageKeyType returns the key type of a map entry, or the first key of a
// double map. Plain entries have no key and report the unit type "()".
func (m *Metadata) FindStorageKeyType(module, entry string) (registry.TypeName, error) {
	e, err := m.FindStorageEntry(module, entry)
	if err != nil {
		return "", err
	}

	if e.Kind == EntryPlain {
		return "()", nil
	}

	return e.Key, nil
}

func (m *Metadata) FindConstant(module, name string) (*Constant, error) {
	mod, err := m.Module(module)
	if err != nil {
		return nil, err
	}

	for _, c := range mod.Constants {
		if c.Name == name {
			return c, nil
		}
	}

	return nil, fmt.Errorf("%w: %s.%s", ErrConstantNotFound, module, name)
}

// Validate checks that every type the runtime references resolves in reg.
// All unresolved references are reported together.
func (m *Metadata) Validate(reg *registry.Registry) error {
	var result *multierror.Error

	check := func(typ registry.TypeName, where string, args ...interface{}) {
		if _, err := reg.Resolve(typ); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", fmt.Sprintf(where, args...), err))
		}
	}

	for _, mod := range m.Modules {
		for _, c := range mod.Calls {
			for _, a := range c.Args {
				check(a.Type, "call %s.%s argument %s", mod.Name, c.Name, a.Name)
			}
		}

		for _, e := range mod.Events {
			for i, a := range e.Args {
				check(a, "event %s.%s argument %d", mod.Name, e.Name, i)
			}
		}

		if mod.Storage != nil {
			for _, e := range mod.Storage.Entries {
				check(e.Value, "storage %s.%s value", mod.Name, e.Name)

				if e.Kind != EntryPlain {
					check(e.Key, "storage %s.%s key", mod.Name, e.Name)
				}

				if e.Kind == EntryDoubleMap {
					check(e.Key2, "storage %s.%s second key", mod.Name, e.Name)
				}
			}
		}

		for _, c := range mod.Constants {
			check(c.Type, "constant %s.%s", mod.Name, c.Name)
		}
	}

	return result.ErrorOrNil()
}
