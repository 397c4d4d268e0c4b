// Package translate rewrites value graphs between the legacy and canonical
// content-identifier representations.
//
// Both directions are total over JSON-like graphs: identifiers and binary
// leaves are atomic and get replaced, maps and lists are recursed into in
// place, and every other value passes through untouched. Mutation in place is
// part of the contract: callers hand the translator exclusive ownership of
// the graph for the duration of the call and get the same reference back.
//
// Cyclic graphs are not supported; no visited set is kept and a cycle will
// not terminate. Callers own acyclicity.
package translate

import (
	"github.com/ipfs/go-cid"

	"xdao.co/legacyipld/bytesutil"
	"xdao.co/legacyipld/legacycid"
)

// class is the result of classifying a node once per visit. Identifier
// recognition runs before the binary probe: canonical identifiers expose
// Bytes() and would otherwise be misread as binary leaves.
type class int

const (
	classScalar class = iota
	classIdentifier
	classBinary
	classMap
	classList
)

func classify(v any) class {
	if _, ok := legacycid.Recognize(v); ok {
		return classIdentifier
	}
	if bytesutil.IsBinaryLike(v) {
		return classBinary
	}
	switch v.(type) {
	case map[string]any:
		return classMap
	case []any:
		return classList
	}
	return classScalar
}

// ToLegacy rewrites v into the legacy representation: canonical identifiers
// become legacycid.Cid (sharing the digest's backing bytes), binary leaves
// are copied into legacycid.Buffer, and maps and lists are rewritten in
// place. Already-legacy identifiers are returned unchanged.
func ToLegacy(v any) any {
	switch classify(v) {
	case classIdentifier:
		if legacycid.IsLegacy(v) {
			return v
		}
		id, _ := legacycid.Recognize(v)
		return id
	case classBinary:
		b, _ := bytesutil.CanonicalBytes(v)
		return legacycid.Buffer(append([]byte(nil), b...))
	case classMap:
		m := v.(map[string]any)
		for k, child := range m {
			m[k] = ToLegacy(child)
		}
		return m
	case classList:
		l := v.([]any)
		for i, child := range l {
			l[i] = ToLegacy(child)
		}
		return l
	default:
		return v
	}
}

// ToCanonical rewrites v into the canonical representation: identifiers of
// either shape become cid.Cid, binary leaves become a []byte view over the
// same bytes (no copy for slice-shaped containers), and maps and lists are
// rewritten in place.
func ToCanonical(v any) any {
	switch classify(v) {
	case classIdentifier:
		if c, ok := v.(cid.Cid); ok {
			return c
		}
		id, _ := legacycid.Recognize(v)
		return id.Canonical()
	case classBinary:
		b, _ := bytesutil.CanonicalBytes(v)
		return b
	case classMap:
		m := v.(map[string]any)
		for k, child := range m {
			m[k] = ToCanonical(child)
		}
		return m
	case classList:
		l := v.([]any)
		for i, child := range l {
			l[i] = ToCanonical(child)
		}
		return l
	default:
		return v
	}
}
