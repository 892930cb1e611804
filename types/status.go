package types

import (
	"errors"
	"fmt"

	"github.com/valyala/fastjson"
)

// StatusKind enumerates the lifecycle states a node reports for a submitted extrinsic
type StatusKind int

const (
	StatusFuture StatusKind = iota
	StatusReady
	StatusBroadcast
	StatusInBlock
	StatusRetracted
	StatusFinalityTimeout
	StatusFinalized
	StatusUsurped
	StatusDropped
	StatusInvalid
)

var statusNames = map[StatusKind]string{
	StatusFuture:          "future",
	StatusReady:           "ready",
	StatusBroadcast:       "broadcast",
	StatusInBlock:         "inBlock",
	StatusRetracted:       "retracted",
	StatusFinalityTimeout: "finalityTimeout",
	StatusFinalized:       "finalized",
	StatusUsurped:         "usurped",
	StatusDropped:         "dropped",
	StatusInvalid:         "invalid",
}

var ErrUnknownStatus = errors.New("unknown transaction status")

func (k StatusKind) String() string {
	if name, ok := statusNames[k]; ok {
		return name
	}

	return fmt.Sprintf("StatusKind(%d)", int(k))
}

// IsTerminal reports whether no further status follows this one
func (k StatusKind) IsTerminal() bool {
	switch k {
	case StatusFinalized, StatusUsurped, StatusDropped, StatusInvalid, StatusFinalityTimeout:
		return true
	default:
		return false
	}
}

// TransactionStatus is one update in the lifecycle of a submitted extrinsic.
// Hash is set for InBlock, Retracted, FinalityTimeout, Finalized and Usurped
// (the replacing transaction). Peers is set for Broadcast.
type TransactionStatus struct {
	Kind  StatusKind
	Hash  Hash
	Peers []string
}

func (s TransactionStatus) IsTerminal() bool {
	return s.Kind.IsTerminal()
}

// Equal reports whether two statuses carry the same kind and payload
func (s TransactionStatus) Equal(o TransactionStatus) bool {
	if s.Kind != o.Kind || s.Hash != o.Hash || len(s.Peers) != len(o.Peers) {
		return false
	}

	for i := range s.Peers {
		if s.Peers[i] != o.Peers[i] {
			return false
		}
	}

	return true
}

func (s TransactionStatus) String() string {
	switch s.Kind {
	case StatusBroadcast:
		return fmt.Sprintf("broadcast%v", s.Peers)
	case StatusInBlock, StatusRetracted, StatusFinalityTimeout, StatusFinalized, StatusUsurped:
		return fmt.Sprintf("%s(%s)", s.Kind, s.Hash)
	default:
		return s.Kind.String()
	}
}

func (s TransactionStatus) MarshalJSON() ([]byte, error) {
	var a fastjson.Arena

	switch s.Kind {
	case StatusFuture, StatusReady, StatusDropped, StatusInvalid:
		return a.NewString(s.Kind.String()).MarshalTo(nil), nil

	case StatusBroadcast:
		peers := a.NewArray()
		for i, p := range s.Peers {
			peers.SetArrayItem(i, a.NewString(p))
		}

		obj := a.NewObject()
		obj.Set(s.Kind.String(), peers)

		return obj.MarshalTo(nil), nil

	case StatusInBlock, StatusRetracted, StatusFinalityTimeout, StatusFinalized, StatusUsurped:
		obj := a.NewObject()
		obj.Set(s.Kind.String(), a.NewString(s.Hash.String()))

		return obj.MarshalTo(nil), nil
	}

	return nil, fmt.Errorf("%w: %d", ErrUnknownStatus, int(s.Kind))
}

func (s *TransactionStatus) UnmarshalJSON(buf []byte) error {
	p := defaultPool.Get()
	defer defaultPool.Put(p)

	v, err := p.ParseBytes(buf)
	if err != nil {
		return err
	}

	return s.unmarshalJSON(v)
}

func (s *TransactionStatus) unmarshalJSON(v *fastjson.Value) error {
	switch v.Type() {
	case fastjson.TypeString:
		name := string(v.GetStringBytes())

		switch name {
		case "future":
			*s = TransactionStatus{Kind: StatusFuture}
		case "ready":
			*s = TransactionStatus{Kind: StatusReady}
		case "dropped":
			*s = TransactionStatus{Kind: StatusDropped}
		case "invalid":
			*s = TransactionStatus{Kind: StatusInvalid}
		default:
			return fmt.Errorf("%w: %q", ErrUnknownStatus, name)
		}

		return nil

	case fastjson.TypeObject:
		obj, _ := v.Object()
		if obj.Len() != 1 {
			return fmt.Errorf("%w: object with %d keys", ErrUnknownStatus, obj.Len())
		}

		var err error

		obj.Visit(func(key []byte, inner *fastjson.Value) {
			err = s.unmarshalTagged(string(key), inner)
		})

		return err
	}

	return fmt.Errorf("%w: %s", ErrUnknownStatus, v.Type())
}

func (s *TransactionStatus) unmarshalTagged(tag string, v *fastjson.Value) error {
	if tag == "broadcast" {
		items, err := v.Array()
		if err != nil {
			return fmt.Errorf("broadcast peers: %w", err)
		}

		peers := make([]string, 0, len(items))

		for _, item := range items {
			b, err := item.StringBytes()
			if err != nil {
				return fmt.Errorf("broadcast peer: %w", err)
			}

			peers = append(peers, string(b))
		}

		*s = TransactionStatus{Kind: StatusBroadcast, Peers: peers}

		return nil
	}

	var kind StatusKind

	switch tag {
	case "inBlock":
		kind = StatusInBlock
	case "retracted":
		kind = StatusRetracted
	case "finalityTimeout":
		kind = StatusFinalityTimeout
	case "finalized":
		kind = StatusFinalized
	case "usurped":
		kind = StatusUsurped
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStatus, tag)
	}

	b, err := v.StringBytes()
	if err != nil {
		return fmt.Errorf("%s hash: %w", tag, err)
	}

	var h Hash
	if err := h.UnmarshalText(b); err != nil {
		return fmt.Errorf("%s hash: %w", tag, err)
	}

	*s = TransactionStatus{Kind: kind, Hash: h}

	return nil
}
