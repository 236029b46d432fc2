package dump_test

import (
	"testing"

	"github.com/oarkflow/composeseq/dump"
	"github.com/oarkflow/composeseq/internal/matcher"
	"github.com/oarkflow/composeseq/internal/parser"
	"github.com/oarkflow/composeseq/keysym"
)

func TestRoundTrip(t *testing.T) {
	const src = "<A>:\"foo\" X\n<B><A>:\"baz\" Y\n<C> : dead_acute\n"

	tbl, err := parser.Parse([]byte(src), "orig.compose", "C")
	if err != nil {
		t.Fatalf("initial parse: %v", err)
	}

	dumped := dump.Table(tbl, keysym.Default())

	reparsed, err := parser.Parse([]byte(dumped), "dumped.compose", "C")
	if err != nil {
		t.Fatalf("reparse of dump: %v\ndump:\n%s", err, dumped)
	}

	for _, seq := range [][]string{
		{"A"},
		{"B", "A"},
		{"C"},
	} {
		a := matcher.New(tbl)
		b := matcher.New(reparsed)
		for _, name := range seq {
			k, ok := keysym.Default().FromName(name)
			if !ok {
				t.Fatalf("no such keysym %q", name)
			}
			a.Feed(k)
			b.Feed(k)
		}
		if a.Status() != b.Status() {
			t.Fatalf("sequence %v: status mismatch after round-trip: %v vs %v", seq, a.Status(), b.Status())
		}
		bufA := make([]byte, 64)
		bufB := make([]byte, 64)
		na := a.UTF8(bufA)
		nb := b.UTF8(bufB)
		if string(bufA[:na]) != string(bufB[:nb]) {
			t.Fatalf("sequence %v: UTF8 mismatch after round-trip: %q vs %q", seq, bufA[:na], bufB[:nb])
		}
		if a.OneSym() != b.OneSym() {
			t.Fatalf("sequence %v: OneSym mismatch after round-trip: %v vs %v", seq, a.OneSym(), b.OneSym())
		}
	}
}
