// Package dump serializes a compiled compose trie back into
// compose-file text, the inverse of internal/parser — used to verify
// the round-trip property spec.md §8 requires (parse, dump, reparse,
// same matching behavior).
//
// Grounded on dialect.go's ConvertDialectWithOptions /
// dialectRenderer pattern: parse into a structured form, then walk it
// to emit the target text. Here the "parse" step is whatever already
// produced the trie, and the "structured form" is the trie itself
// walked path-order (root to leaf) rather than SQL's statement AST.
package dump

import (
	"fmt"
	"strings"

	"github.com/oarkflow/composeseq/internal/trie"
	"github.com/oarkflow/composeseq/keysym"
)

// Table renders every production stored in t back to compose-file
// text, one line per leaf, in the trie's insertion order at each
// level. resolver supplies the keysym -> name reverse lookup; a name
// that resolver can't produce is rendered as a numeric fallback
// (0xNNNN) so dumping never fails outright on an unnamed keysym.
func Table(t *trie.Table, resolver keysym.Resolver) string {
	var b strings.Builder
	var path []keysym.Keysym
	walk(t, resolver, t.FirstChild(trie.Root), path, &b)
	return b.String()
}

func walk(t *trie.Table, resolver keysym.Resolver, head uint32, path []keysym.Keysym, b *strings.Builder) {
	for cur := head; cur != 0; cur = t.SiblingAfter(cur) {
		line := make([]keysym.Keysym, len(path)+1)
		copy(line, path)
		line[len(path)] = t.Keysym(cur)

		if t.IsLeaf(cur) {
			writeProduction(b, resolver, line, t.ResultString(cur), t.ResultKeysym(cur))
		} else {
			walk(t, resolver, t.Successor(cur), line, b)
		}
	}
}

func writeProduction(b *strings.Builder, resolver keysym.Resolver, lhs []keysym.Keysym, str string, sym keysym.Keysym) {
	for _, k := range lhs {
		b.WriteByte('<')
		b.WriteString(keysymName(resolver, k))
		b.WriteByte('>')
	}
	b.WriteString(" : ")
	if str != "" {
		b.WriteByte('"')
		writeEscaped(b, str)
		b.WriteByte('"')
		if sym != keysym.NoSymbol {
			b.WriteByte(' ')
			b.WriteString(keysymName(resolver, sym))
		}
	} else if sym != keysym.NoSymbol {
		b.WriteString(keysymName(resolver, sym))
	}
	b.WriteByte('\n')
}

func writeEscaped(b *strings.Builder, s string) {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteByte(c)
		}
	}
}

func keysymName(resolver keysym.Resolver, k keysym.Keysym) string {
	if name, ok := resolver.Name(k); ok {
		return name
	}
	return fmt.Sprintf("0x%x", uint32(k))
}
