// Package blockcodec defines the contract a wire codec must satisfy to be
// wrapped by the legacy adapter.
package blockcodec

// Codec describes a bidirectional transform between an in-memory value graph
// (in the canonical identifier representation) and its binary block encoding.
//
// Contract:
// - EncodeBlock MUST accept canonical values: map[string]any, []any, []byte,
//   cid.Cid, and scalar leaves. It fails for node types its wire format
//   cannot express.
// - DecodeBlock MUST be the inverse of EncodeBlock on values EncodeBlock
//   accepts, and fails on malformed input.
// - Code is the multicodec code matching Name.
//
// The descriptor is supplied by the caller and never owned, wrapped, or
// cached by consumers.
type Codec struct {
	Name        string
	Code        uint64
	EncodeBlock func(value any) ([]byte, error)
	DecodeBlock func(data []byte) (any, error)
}
