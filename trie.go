package bdispatch

import (
	"net/url"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
)

// captureMarker starts a key segment that captures whatever segment is found at that position.
const captureMarker = "%:"

// anyMethod is the method key of terminals that apply to every method.
const anyMethod = "*"

const (
	prefixTerminal   = 0 // matches when the walk passes through the node
	anchoredTerminal = 1 // matches only when the walk ends exactly at the node
)

var (
	errNoDelimiter   = errors.New("route key has no segment delimiter")
	errEmptyCapture  = errors.New("route key has a capture segment without a name")
	errNilRouteValue = errors.New("route key maps to a nil target")
)

type terminal struct {
	target Target
	params []string
}

type trieNode struct {
	children  map[string]*trieNode
	capture   *trieNode
	terminals [2]map[string]*terminal
}

func (n *trieNode) child(seg string) *trieNode {
	if n.children == nil {
		n.children = make(map[string]*trieNode)
	}

	c, ok := n.children[seg]
	if !ok {
		c = &trieNode{}
		n.children[seg] = c
	}

	return c
}

func (n *trieNode) captureChild() *trieNode {
	if n.capture == nil {
		n.capture = &trieNode{}
	}

	return n.capture
}

func (n *trieNode) lookup(kind int, method string) *terminal {
	terms := n.terminals[kind]
	if terms == nil {
		return nil
	}

	if t, ok := terms[method]; ok {
		return t
	}

	return terms[anyMethod]
}

// trie is the compiled form of a route table. It is built once and only read afterwards, so it can be
// shared by all requests.
type trie struct {
	root     trieNode
	wildcard Target
}

// insert adds a value under the given key segments. Literal segments are percent-decoded when decode
// is set.
func (t *trie) insert(segs []string, anchored bool, method string, target Target, decode bool) error {
	if target == nil {
		return errNilRouteValue
	}

	var params []string
	node := &t.root
	for _, seg := range segs {
		if name, ok := strings.CutPrefix(seg, captureMarker); ok {
			if name == "" {
				return errEmptyCapture
			}

			params = append(params, name)
			node = node.captureChild()
			continue
		}

		if decode {
			dec, err := url.PathUnescape(seg)
			if err != nil {
				return errors.Wrapf(err, "decode segment %q", seg)
			}

			seg = dec
		}

		node = node.child(seg)
	}

	kind := prefixTerminal
	if anchored {
		kind = anchoredTerminal
	}

	if node.terminals[kind] == nil {
		node.terminals[kind] = make(map[string]*terminal)
	}

	node.terminals[kind][method] = &terminal{target: target, params: params}
	return nil
}

// match walks forward from *ptr. The result is the rightmost terminal found for the method, with an
// anchored terminal winning when the walk ends exactly on its node. Segments walked past that terminal
// are not consumed: *ptr is left right behind it. A nil result means nothing matched.
func (t *trie) match(segs []string, ptr *int, method string, params map[string]string) Target {
	result, resultPtr := t.wildcard, *ptr

	var captured, committed, names []string
	commit := func(term *terminal, at int) {
		result, resultPtr = term.target, at
		committed, names = slices.Clone(captured), term.params
	}

	node, i := &t.root, *ptr
	for i < len(segs) {
		seg := segs[i]

		next, ok := node.children[seg]
		if !ok {
			if node.capture == nil {
				break
			}

			next = node.capture
			captured = append(captured, seg)
		}

		node = next
		i++

		if term := node.lookup(prefixTerminal, method); term != nil {
			commit(term, i)
		}

		if i >= len(segs) {
			if term := node.lookup(anchoredTerminal, method); term != nil {
				commit(term, i)
			}
		}
	}

	*ptr = resultPtr
	for k, name := range names {
		if k < len(committed) {
			params[name] = committed[k]
		}
	}

	return result
}
