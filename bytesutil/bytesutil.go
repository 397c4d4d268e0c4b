// Package bytesutil recognizes and normalizes binary-like values.
//
// "Binary-like" is a structural property, not a concrete type: callers hand
// us whatever byte container their layer produced (plain []byte, a named
// byte-slice type, a byte array, or anything exposing Bytes() []byte), and we
// classify and coerce it without caring which one it was.
package bytesutil

import "reflect"

// byteser is the duck shape shared by byte containers such as bytes.Buffer.
type byteser interface {
	Bytes() []byte
}

// IsBinaryLike reports whether v is a contiguous byte sequence in any of the
// container shapes this codebase produces.
//
// Strings are deliberately not binary-like: they are scalar leaves in the
// data model and must pass through translation unchanged.
func IsBinaryLike(v any) bool {
	_, ok := CanonicalBytes(v)
	return ok
}

// CanonicalBytes coerces v to a canonical []byte view.
//
// For slice-shaped containers the returned slice aliases the input's backing
// bytes; only array-shaped containers require a copy. The second return is
// false when v is not binary-like.
func CanonicalBytes(v any) ([]byte, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case []byte:
		return t, true
	case byteser:
		return t.Bytes(), true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return rv.Bytes(), true
		}
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			out := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(out), rv)
			return out, true
		}
	}
	return nil, false
}
