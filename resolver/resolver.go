// Package resolver walks decoded block values by slash-delimited paths and
// enumerates their key trees.
//
// Resolution stops at identifier boundaries: an identifier names another
// block, so the walk returns it together with the unconsumed remainder of
// the path and leaves fetching the next block to the caller.
package resolver

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"xdao.co/legacyipld/bytesutil"
	"xdao.co/legacyipld/legacycid"
)

// ErrNotFound reports a path segment that resolves to nothing.
var ErrNotFound = errors.New("resolver: not found")

// Result is the outcome of a path resolution.
//
// When the walk stopped at an identifier, Value is that identifier (in the
// legacy shape) and RemainderPath holds the unconsumed segments joined by
// "/". Otherwise Value is the final value and RemainderPath is empty.
type Result struct {
	Value         any
	RemainderPath string
}

// Resolve walks value by path. Empty path segments are discarded, so leading,
// trailing, and duplicate slashes are tolerated. It fails fast with
// ErrNotFound on the first segment that yields nothing.
func Resolve(value any, path string) (Result, error) {
	segments := splitPath(path)
	for i, seg := range segments {
		next, ok := step(value, seg)
		if !ok {
			return Result{}, fmt.Errorf("%w: no value at %q", ErrNotFound, "/"+strings.Join(segments[:i+1], "/"))
		}
		value = next
		if id, isID := legacycid.Recognize(value); isID {
			return Result{
				Value:         id,
				RemainderPath: strings.Join(segments[i+1:], "/"),
			}, nil
		}
	}
	return Result{Value: value}, nil
}

func step(value any, seg string) (any, bool) {
	switch t := value.(type) {
	case map[string]any:
		v, ok := t[seg]
		return v, ok
	case []any:
		idx, err := strconv.Atoi(seg)
		if err != nil || idx < 0 || idx >= len(t) {
			return nil, false
		}
		return t[idx], true
	default:
		return nil, false
	}
}

func splitPath(path string) []string {
	parts := strings.Split(path, "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Tree returns an iterator over every path reachable in value, depth-first
// and pre-order, each prefixed with "/". Identifiers and binary leaves are
// terminal: their own path is produced but their contents are not explored.
// Map keys are visited in sorted order so enumeration is deterministic.
//
// The iterator is single-use; call Tree again to restart.
func Tree(value any) *Iterator {
	it := &Iterator{}
	it.expand("", value)
	return it
}

// Iterator produces tree paths one at a time.
type Iterator struct {
	stack []entry
}

type entry struct {
	path  string
	value any
}

// Next returns the next path. The bool is false once the tree is exhausted.
func (it *Iterator) Next() (string, bool) {
	if len(it.stack) == 0 {
		return "", false
	}
	n := it.stack[len(it.stack)-1]
	it.stack = it.stack[:len(it.stack)-1]
	it.expand(n.path, n.value)
	return n.path, true
}

// Paths drains the iterator into a slice.
func (it *Iterator) Paths() []string {
	var out []string
	for {
		p, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, p)
	}
}

// expand pushes the children of value, in reverse order so the first child
// is popped first. Identifiers and binary leaves have no children.
func (it *Iterator) expand(path string, value any) {
	if _, ok := legacycid.Recognize(value); ok {
		return
	}
	if bytesutil.IsBinaryLike(value) {
		return
	}
	switch t := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for i := len(keys) - 1; i >= 0; i-- {
			it.stack = append(it.stack, entry{path: path + "/" + keys[i], value: t[keys[i]]})
		}
	case []any:
		for i := len(t) - 1; i >= 0; i-- {
			it.stack = append(it.stack, entry{path: path + "/" + strconv.Itoa(i), value: t[i]})
		}
	}
}
