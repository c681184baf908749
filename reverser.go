package bdispatch

import (
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// Reverser keeps track of named path keys and allows building URLS.
type Reverser struct {
	keys map[string][]string
}

// NewReverser inits the reverser.
func NewReverser() *Reverser {
	return &Reverser{make(map[string][]string)}
}

// Reverse reverses the named key into a url path. Capture segments are replaced by vals in order.
func (r Reverser) Reverse(name string, vals ...string) (string, error) {
	segs, ok := r.keys[name]
	if !ok {
		return "", errors.Newf("no key named: %q, got: %v", name, lo.Keys(r.keys))
	}

	out := make([]string, len(segs))
	for i, seg := range segs {
		if !strings.HasPrefix(seg, captureMarker) {
			out[i] = seg
			continue
		}

		if len(vals) == 0 {
			return "", errors.Newf("failed to build %q: not enough values", name)
		}

		out[i], vals = url.PathEscape(vals[0]), vals[1:]
	}

	if len(vals) > 0 {
		return "", errors.Newf("failed to build %q: too many values", name)
	}

	return "/" + strings.Join(out, "/"), nil
}

// Named is a convenience method that panics if naming the key fails.
func (r Reverser) Named(name, key string) string {
	key, err := r.NamedKey(name, key)
	if err != nil {
		panic("bdispatch: " + err.Error())
	}

	return key
}

// NamedKey will parse key as a path router key while returning it as well.
func (r Reverser) NamedKey(name, key string) (string, error) {
	if _, exists := r.keys[name]; exists {
		return key, errors.Newf("key with name %q already exists", name)
	}

	segs, _, _, err := parsePathKey(key)
	if err != nil {
		return key, errors.Wrap(err, "failed to parse key")
	}

	for _, seg := range segs {
		if seg == captureMarker {
			return key, errors.Wrap(errEmptyCapture, "failed to parse key")
		}
	}

	r.keys[name] = segs

	return key, nil
}

// Entry names the key and returns it as a route table entry.
func (r Reverser) Entry(name, key string, target Target) Entry {
	return Entry{Key: r.Named(name, key), Target: target}
}
