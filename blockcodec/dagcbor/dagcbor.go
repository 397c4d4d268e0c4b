// Package dagcbor implements the dag-cbor block codec behind the
// blockcodec.Codec contract.
//
// Identifiers are encoded as CBOR tag 42 wrapping the identity-multibase
// prefixed identifier bytes (a 0x00 byte followed by the binary CID), binary
// leaves as CBOR byte strings, and maps and lists structurally. Encoding is
// canonical so equal values produce equal blocks.
package dagcbor

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multicodec"

	"xdao.co/legacyipld/blockcodec"
)

const cidTagNumber = 42

var (
	errBadCIDTag = errors.New("dagcbor: tag 42 content is not an identity-prefixed cid")

	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

// Codec returns the dag-cbor codec descriptor.
func Codec() blockcodec.Codec {
	return blockcodec.Codec{
		Name:        "dag-cbor",
		Code:        uint64(multicodec.DagCbor),
		EncodeBlock: Encode,
		DecodeBlock: Decode,
	}
}

// Encode serializes a canonical value graph to dag-cbor bytes.
func Encode(value any) ([]byte, error) {
	wire, err := toWire(value)
	if err != nil {
		return nil, err
	}
	return encMode.Marshal(wire)
}

// Decode parses dag-cbor bytes back into a canonical value graph.
func Decode(data []byte) (any, error) {
	var wire any
	if err := decMode.Unmarshal(data, &wire); err != nil {
		return nil, err
	}
	return fromWire(wire)
}

// toWire rewrites identifiers into their tagged wire form. Maps and lists are
// rebuilt rather than mutated; the codec does not own the caller's graph.
func toWire(v any) (any, error) {
	switch t := v.(type) {
	case cid.Cid:
		if !t.Defined() {
			return nil, errors.New("dagcbor: undefined identifier")
		}
		content := make([]byte, 0, len(t.Bytes())+1)
		content = append(content, 0)
		content = append(content, t.Bytes()...)
		return cbor.Tag{Number: cidTagNumber, Content: content}, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			w, err := toWire(child)
			if err != nil {
				return nil, err
			}
			out[k] = w
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			w, err := toWire(child)
			if err != nil {
				return nil, err
			}
			out[i] = w
		}
		return out, nil
	default:
		return v, nil
	}
}

func fromWire(v any) (any, error) {
	switch t := v.(type) {
	case cbor.Tag:
		if t.Number != cidTagNumber {
			return nil, fmt.Errorf("dagcbor: unexpected tag %d", t.Number)
		}
		content, ok := t.Content.([]byte)
		if !ok || len(content) < 2 || content[0] != 0 {
			return nil, errBadCIDTag
		}
		id, err := cid.Cast(content[1:])
		if err != nil {
			return nil, fmt.Errorf("dagcbor: %w", err)
		}
		return id, nil
	case map[string]any:
		for k, child := range t {
			w, err := fromWire(child)
			if err != nil {
				return nil, err
			}
			t[k] = w
		}
		return t, nil
	case []any:
		for i, child := range t {
			w, err := fromWire(child)
			if err != nil {
				return nil, err
			}
			t[i] = w
		}
		return t, nil
	default:
		return v, nil
	}
}
