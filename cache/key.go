// Package cache is the client-side query cache: fetched payloads keyed by
// tuples, prefix invalidation, and coalescing of identical in-flight fetches.
package cache

import (
	"net/url"
	"strings"
)

// Key is an ordered tuple such as ["admin", "vendors"] or
// ["admin", "vendors", "12"]. Invalidation matches on whole-part prefixes.
type Key []string

func NewKey(parts ...string) Key {
	return append(Key{}, parts...)
}

// With returns a copy of k with parts appended.
func (k Key) With(parts ...string) Key {
	out := make(Key, 0, len(k)+len(parts))
	out = append(out, k...)
	return append(out, parts...)
}

// HasPrefix reports whether every part of prefix equals the corresponding part of k.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

func (k Key) Equal(other Key) bool {
	return len(k) == len(other) && k.HasPrefix(other)
}

// String encodes the key so that string-prefix matching equals part-prefix
// matching. Parts are query-escaped, so the ':' terminator and glob
// characters never appear inside a part.
func (k Key) String() string {
	var b strings.Builder
	for _, p := range k {
		b.WriteString(url.QueryEscape(p))
		b.WriteByte(':')
	}
	return b.String()
}

// ParseKey reverses String.
func ParseKey(s string) (Key, error) {
	if s == "" {
		return Key{}, nil
	}
	raw := strings.Split(strings.TrimSuffix(s, ":"), ":")
	k := make(Key, 0, len(raw))
	for _, p := range raw {
		part, err := url.QueryUnescape(p)
		if err != nil {
			return nil, err
		}
		k = append(k, part)
	}
	return k, nil
}
