// Package trie builds and stores the packed compose-sequence trie:
// spec.md §3's "dense array of trie nodes" plus the append-only UTF-8
// string arena leaves point into.
//
// Grounded on parser/arena.go's bump-allocator growth strategy
// (arenaAppend's double-on-grow, copy-out), generalized from a generic
// arena handing out []T slices to a specific, fixed node layout. Offsets
// (not pointers) are used throughout, so no cached reference can dangle
// across a grow — see the design note on relocation safety in
// spec.md §9, which this package follows literally.
package trie

import "github.com/oarkflow/composeseq/keysym"

// leafFlag packs the tagged-union discriminant into the high bit of a
// node's sibling-next field, exactly like libxkbcommon's
// COMPOSE_NODE_IS_LEAF_FLAG (src/compose/table.h). This saves the
// padded 32-bit word a separate bool field would add; spec.md §9
// allows an implementation to pack differently when not
// memory-critical, but there is no reason not to follow the source
// here.
const leafFlag = uint32(1) << 31

// node is one entry of the packed trie array. It always carries both
// "successor" and the leaf result fields; only one side is meaningful,
// selected by isLeaf(). Go has no tagged unions, and the struct is
// small enough that carrying both costs nothing worth avoiding.
type node struct {
	keysym       keysym.Keysym
	next         uint32 // sibling offset, high bit = isLeaf flag
	successor    uint32 // internal: offset of first child
	resultUTF8   uint32 // leaf: offset into the utf8 arena (0 = none)
	resultKeysym keysym.Keysym
}

func (n *node) isLeaf() bool        { return n.next&leafFlag != 0 }
func (n *node) setLeaf(v bool)      {
	if v {
		n.next |= leafFlag
	} else {
		n.next &^= leafFlag
	}
}
func (n *node) siblingNext() uint32 { return n.next &^ leafFlag }
func (n *node) setSiblingNext(v uint32) {
	n.next = (n.next & leafFlag) | (v &^ leafFlag)
}

// Warn is a diagnostic callback the builder invokes for every
// non-fatal conflict spec.md §4.4 documents (prefix conflicts,
// duplicates, overrides). The builder has no notion of source
// position; the caller (internal/parser) supplies one by closing over
// the current production's line/column.
type Warn func(format string, args ...any)

// Builder incrementally constructs a packed trie from a stream of
// productions. It is not safe for concurrent use; a single parse
// drives it synchronously (spec.md §5).
type Builder struct {
	nodes []node
	utf8  []byte
}

// NewBuilder returns a Builder seeded with the reserved root/nil node
// at offset 0 and the reserved empty string at utf8 offset 0.
func NewBuilder() *Builder {
	return &Builder{
		nodes: []node{{}}, // index 0: root, keysym/result fields unused
		utf8:  []byte{0},  // offset 0: "" terminator
	}
}

// appendLeaf appends a fresh leaf node (no result yet) for keysym k and
// returns its offset.
func (b *Builder) appendLeaf(k keysym.Keysym) uint32 {
	b.nodes = append(b.nodes, node{keysym: k, next: leafFlag})
	return uint32(len(b.nodes) - 1)
}

// findOrAppendSibling walks the sibling chain headed at (and
// including) offset head looking for a node whose keysym equals k,
// appending a fresh one at the tail if none matches. head is root (0)
// for the first LHS position — root's own keysym is never a real
// keysym, so the search immediately falls through to root's `next`
// field, which doubles as the top level's list head.
//
// Every access below goes through b.nodes[idx] rather than a cached
// *node, so a slice grow triggered by appendLeaf never leaves a stale
// reference in scope (spec.md §9: "implementations must re-fetch any
// node reference after an append").
func (b *Builder) findOrAppendSibling(head uint32, k keysym.Keysym) uint32 {
	curr := head
	for b.nodes[curr].keysym != k {
		if b.nodes[curr].siblingNext() == 0 {
			child := b.appendLeaf(k)
			b.nodes[curr].setSiblingNext(child)
		}
		curr = b.nodes[curr].siblingNext()
	}
	return curr
}

func (b *Builder) stringAt(off uint32) string {
	if off == 0 {
		return ""
	}
	end := off
	for b.utf8[end] != 0 {
		end++
	}
	return string(b.utf8[off:end])
}

// Insert adds one production to the trie, resolving prefix/duplicate/
// override conflicts per spec.md §4.4. lhs must be non-empty. At least
// one of hasString/hasKeysym must be true (the parser enforces this
// before calling Insert). warn is called once per conflict, in the
// order spec.md documents; a nil warn silently drops the diagnostics
// (only used by tests that don't care).
func (b *Builder) Insert(lhs []keysym.Keysym, hasString bool, str string, hasKeysym bool, sym keysym.Keysym, warn Warn) {
	if warn == nil {
		warn = func(string, ...any) {}
	}

	var curr uint32
	for i := 0; i < len(lhs); i++ {
		curr = b.findOrAppendSibling(curr, lhs[i])
		if i == len(lhs)-1 {
			break
		}

		if b.nodes[curr].isLeaf() {
			if b.nodes[curr].resultUTF8 != 0 || b.nodes[curr].resultKeysym != keysym.NoSymbol {
				warn("a sequence already exists which is a prefix of this sequence; overriding")
				b.nodes[curr].resultUTF8 = 0
				b.nodes[curr].resultKeysym = keysym.NoSymbol
			}
			child := b.appendLeaf(lhs[i+1])
			b.nodes[curr].setLeaf(false)
			b.nodes[curr].successor = child
		}
		curr = b.nodes[curr].successor
	}

	if !b.nodes[curr].isLeaf() {
		warn("this compose sequence is a prefix of another; skipping line")
		return
	}

	existingStr := b.stringAt(b.nodes[curr].resultUTF8)
	existingSym := b.nodes[curr].resultKeysym
	if existingStr != "" || existingSym != keysym.NoSymbol {
		wantStr := ""
		if hasString {
			wantStr = str
		}
		wantSym := keysym.NoSymbol
		if hasKeysym {
			wantSym = sym
		}
		if existingStr == wantStr && existingSym == wantSym {
			warn("this compose sequence is a duplicate of another; skipping line")
			return
		}
		warn("this compose sequence already exists; overriding")
	}

	if hasString {
		b.nodes[curr].resultUTF8 = uint32(len(b.utf8))
		b.utf8 = append(b.utf8, str...)
		b.utf8 = append(b.utf8, 0)
	}
	if hasKeysym {
		b.nodes[curr].resultKeysym = sym
	}
}

// Table is the frozen, immutable compose trie produced by Build. It is
// safe for concurrent read-only use by many matcher sessions at once
// (spec.md §5).
type Table struct {
	Locale string
	nodes  []node
	utf8   []byte
}

// Build freezes the builder into a Table, shrinking both backing
// arrays to their exact used length ("the allocator can use the excess
// space", spec.md §4.4/§5). The builder must not be reused afterward.
func (b *Builder) Build(locale string) *Table {
	nodes := make([]node, len(b.nodes))
	copy(nodes, b.nodes)
	utf8 := make([]byte, len(b.utf8))
	copy(utf8, b.utf8)
	return &Table{Locale: locale, nodes: nodes, utf8: utf8}
}

// NodeCount reports how many nodes (including the reserved root) the
// table holds.
func (t *Table) NodeCount() int { return len(t.nodes) }

// Root is the offset of the reserved root/nil node, always 0.
const Root uint32 = 0

// FirstChild returns the offset of the first child of the node at at.
// For Root that is the first node at the top level (root's own
// sibling-next field), or 0 if the table is empty; for any other node
// it is that node's successor.
func (t *Table) FirstChild(at uint32) uint32 {
	if at == Root {
		return t.nodes[Root].siblingNext()
	}
	return t.nodes[at].successor
}

// SiblingAfter returns the next sibling of the node at offset, or 0 at
// the end of the list.
func (t *Table) SiblingAfter(offset uint32) uint32 {
	return t.nodes[offset].siblingNext()
}

// Keysym returns the keysym a node (other than the root) matches.
func (t *Table) Keysym(offset uint32) keysym.Keysym {
	return t.nodes[offset].keysym
}

// IsLeaf reports whether offset names a terminal (result-bearing) node.
func (t *Table) IsLeaf(offset uint32) bool {
	return t.nodes[offset].isLeaf()
}

// ResultString returns the leaf's stored UTF-8 string, which is empty
// if the production had none.
func (t *Table) ResultString(offset uint32) string {
	return t.stringAtFrozen(t.nodes[offset].resultUTF8)
}

// ResultKeysym returns the leaf's stored result keysym, or NoSymbol.
func (t *Table) ResultKeysym(offset uint32) keysym.Keysym {
	return t.nodes[offset].resultKeysym
}

func (t *Table) stringAtFrozen(off uint32) string {
	if off == 0 {
		return ""
	}
	end := off
	for t.utf8[end] != 0 {
		end++
	}
	return string(t.utf8[off:end])
}

// FindChild searches the sibling chain starting at head for a node
// matching k, returning (0, false) if none match. It is the read-only
// counterpart of findOrAppendSibling, used by the matcher's feed loop.
func (t *Table) FindChild(head uint32, k keysym.Keysym) (uint32, bool) {
	curr := head
	for curr != 0 {
		if t.nodes[curr].keysym == k {
			return curr, true
		}
		curr = t.nodes[curr].siblingNext()
	}
	return 0, false
}

// Walk calls fn once per node of the trie, in array order (i.e. trie
// creation order, not sibling/DFS order) — use NodeCount/FirstChild/
// SiblingAfter/successor walks for a path-oriented traversal instead
// (see the dump package for the latter).
func (t *Table) Walk(fn func(offset uint32)) {
	for i := 1; i < len(t.nodes); i++ {
		fn(uint32(i))
	}
}

// Successor returns the offset of an internal node's first child. A
// leaf has no successor, so for a leaf it returns 0; callers must
// check IsLeaf first.
func (t *Table) Successor(offset uint32) uint32 {
	return t.nodes[offset].successor
}
