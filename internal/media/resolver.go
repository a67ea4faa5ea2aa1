// Package media turns storage object keys into public URLs and combines image
// lists coming from the bucket and from listing records.
//
// Everything here is a pure function of its inputs and safe for concurrent use.
package media

import (
	"regexp"
	"strings"
)

// KeyKind tags the shape of a raw image reference.
type KeyKind int

const (
	// KeyMissing is a nil or non-string value.
	KeyMissing KeyKind = iota
	// KeyBlank is an empty or whitespace-only string.
	KeyBlank
	// KeyAbsolute is already a scheme-qualified URL.
	KeyAbsolute
	// KeyRelative is an object key (or partial path) inside a bucket.
	KeyRelative
)

func (k KeyKind) String() string {
	switch k {
	case KeyMissing:
		return "missing"
	case KeyBlank:
		return "blank"
	case KeyAbsolute:
		return "absolute"
	case KeyRelative:
		return "relative"
	default:
		return "unknown"
	}
}

// Key is a classified image reference.
type Key struct {
	Kind  KeyKind
	Value string
}

var absoluteURLRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]*://`)

// ClassifyKey tags a string reference.
func ClassifyKey(raw string) Key {
	switch {
	case raw == "":
		return Key{Kind: KeyMissing}
	case strings.TrimSpace(raw) == "":
		return Key{Kind: KeyBlank, Value: raw}
	case absoluteURLRegex.MatchString(raw):
		return Key{Kind: KeyAbsolute, Value: raw}
	default:
		return Key{Kind: KeyRelative, Value: raw}
	}
}

// ClassifyValue tags a loosely-typed value decoded from JSON.
func ClassifyValue(v any) Key {
	switch t := v.(type) {
	case string:
		return ClassifyKey(t)
	case *string:
		if t == nil {
			return Key{Kind: KeyMissing}
		}
		return ClassifyKey(*t)
	default:
		return Key{Kind: KeyMissing}
	}
}

// Resolver maps object keys to public URLs under a fixed base.
type Resolver struct {
	base string
}

// NewResolver returns a Resolver for the given public base, e.g.
// "https://xyz.supabase.co/storage/v1/object/public/property-images".
// An empty base is accepted; the resulting URLs are then root-relative.
func NewResolver(base string) *Resolver {
	return &Resolver{base: strings.TrimRight(base, "/")}
}

// Base returns the normalized public base.
func (r *Resolver) Base() string {
	return r.base
}

// Resolve returns the public URL for key. The second result is false when
// key is missing or blank.
func (r *Resolver) Resolve(key string) (string, bool) {
	return r.resolve(ClassifyKey(key))
}

// ResolveValue is Resolve for values of unknown type.
func (r *Resolver) ResolveValue(v any) (string, bool) {
	return r.resolve(ClassifyValue(v))
}

func (r *Resolver) resolve(k Key) (string, bool) {
	switch k.Kind {
	case KeyAbsolute:
		return k.Value, true
	case KeyRelative:
		return r.base + "/" + strings.TrimLeft(k.Value, "/"), true
	default:
		return "", false
	}
}

// ResolveAll resolves every key, dropping the ones that do not resolve.
// Order is preserved.
func (r *Resolver) ResolveAll(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if u, ok := r.Resolve(k); ok {
			out = append(out, u)
		}
	}
	return out
}

// KeyOf returns the object key of a URL previously built by this resolver.
func (r *Resolver) KeyOf(u string) (string, bool) {
	prefix := r.base + "/"
	if !strings.HasPrefix(u, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(u, prefix)
	if key == "" {
		return "", false
	}
	return key, true
}
