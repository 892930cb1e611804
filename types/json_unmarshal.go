package types

import (
	"fmt"

	"github.com/0xPolygon/polygon-xt/helper/hex"
	"github.com/valyala/fastjson"
)

var defaultPool fastjson.ParserPool

// RuntimeVersion identifies the runtime a node is executing. SpecVersion and
// TransactionVersion are part of every signing payload.
type RuntimeVersion struct {
	SpecName           string `json:"specName"`
	ImplName           string `json:"implName"`
	AuthoringVersion   uint32 `json:"authoringVersion"`
	SpecVersion        uint32 `json:"specVersion"`
	ImplVersion        uint32 `json:"implVersion"`
	TransactionVersion uint32 `json:"transactionVersion"`
}

// UnmarshalJSON implements the unmarshal interface
func (r *RuntimeVersion) UnmarshalJSON(buf []byte) error {
	p := defaultPool.Get()
	defer defaultPool.Put(p)

	v, err := p.ParseBytes(buf)
	if err != nil {
		return err
	}

	r.SpecName = string(v.GetStringBytes("specName"))
	r.ImplName = string(v.GetStringBytes("implName"))

	if r.SpecVersion, err = unmarshalJSONUint32(v, "specVersion"); err != nil {
		return err
	}

	// runtimes that predate transaction versioning omit the field
	if v.Exists("transactionVersion") {
		if r.TransactionVersion, err = unmarshalJSONUint32(v, "transactionVersion"); err != nil {
			return err
		}
	}

	r.AuthoringVersion = uint32(v.GetUint("authoringVersion"))
	r.ImplVersion = uint32(v.GetUint("implVersion"))

	return nil
}

// Header is the subset of a block header needed to anchor a mortal era
type Header struct {
	ParentHash     Hash   `json:"parentHash"`
	Number         uint64 `json:"number"`
	StateRoot      Hash   `json:"stateRoot"`
	ExtrinsicsRoot Hash   `json:"extrinsicsRoot"`
}

func (h *Header) UnmarshalJSON(buf []byte) error {
	p := defaultPool.Get()
	defer defaultPool.Put(p)

	v, err := p.ParseBytes(buf)
	if err != nil {
		return err
	}

	return h.unmarshalJSON(v)
}

func (h *Header) unmarshalJSON(v *fastjson.Value) error {
	var err error

	if h.ParentHash, err = unmarshalJSONHash(v, "parentHash"); err != nil {
		return err
	}

	if h.StateRoot, err = unmarshalJSONHash(v, "stateRoot"); err != nil {
		return err
	}

	if h.ExtrinsicsRoot, err = unmarshalJSONHash(v, "extrinsicsRoot"); err != nil {
		return err
	}

	// number is a hex quantity in substrate headers
	b := v.GetStringBytes("number")
	if len(b) == 0 {
		return fmt.Errorf("field 'number' not found")
	}

	if h.Number, err = hex.DecodeUint64(string(b)); err != nil {
		return fmt.Errorf("field 'number': %w", err)
	}

	return nil
}

func unmarshalJSONHash(v *fastjson.Value, key string) (Hash, error) {
	hash := Hash{}

	b := v.GetStringBytes(key)
	if len(b) == 0 {
		return ZeroHash, fmt.Errorf("field '%s' not found", key)
	}

	err := hash.UnmarshalText(b)

	return hash, err
}

func unmarshalJSONUint32(v *fastjson.Value, key string) (uint32, error) {
	vv := v.Get(key)
	if vv == nil {
		return 0, fmt.Errorf("field '%s' not found", key)
	}

	n, err := vv.Uint()
	if err != nil {
		return 0, fmt.Errorf("field '%s': %w", key, err)
	}

	return uint32(n), nil
}
