package lexer

import "github.com/oarkflow/composeseq/keysym"

// cacheCapacity is the fixed round-robin cache size from spec.md §4.6.
// xkb_keysym_from_name() is fairly slow in the reference implementation
// because it must fold case; a small cache in front of it recovers most
// of that cost for typical compose files, which repeat a handful of
// keysym names (Multi_key, dead_*, letters) over and over.
const cacheCapacity = 8

// slotNameLimit is the longest name a cache slot can hold; names at or
// beyond this length bypass the cache entirely and go straight to the
// resolver (spec.md §4.6).
const slotNameLimit = 63

type cacheSlot struct {
	name string
	sym  keysym.Keysym
	ok   bool
}

// nameCache is the build-time-only key-symbol name cache: a fixed
// round-robin table. Each Lexer creates its own, so the top-level file
// and every included file of a parse have separate caches; it needs no
// explicit cleanup.
type nameCache struct {
	resolver keysym.Resolver
	slots    [cacheCapacity]cacheSlot
	next     int
}

func newNameCache(r keysym.Resolver) *nameCache {
	return &nameCache{resolver: r}
}

// lookup resolves name through the cache, querying the resolver on a
// miss. Every slot is seeded with ok == false, so an empty or otherwise
// absent name can never spuriously match a real candidate (spec.md §9's
// open question on the cache's unconditional slot comparison).
func (c *nameCache) lookup(name string) (keysym.Keysym, bool) {
	if len(name) >= slotNameLimit {
		return c.resolver.FromName(name)
	}

	for i := range c.slots {
		if c.slots[i].ok && c.slots[i].name == name {
			return c.slots[i].sym, true
		}
	}

	sym, ok := c.resolver.FromName(name)
	c.slots[c.next] = cacheSlot{name: name, sym: sym, ok: ok}
	c.next = (c.next + 1) % cacheCapacity
	return sym, ok
}
