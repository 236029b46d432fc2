package matcher_test

import (
	"testing"

	"github.com/oarkflow/composeseq/internal/matcher"
	"github.com/oarkflow/composeseq/internal/parser"
	"github.com/oarkflow/composeseq/internal/trie"
	"github.com/oarkflow/composeseq/keysym"
)

func mustTable(t *testing.T, text string) *trie.Table {
	t.Helper()
	tbl, err := parser.Parse([]byte(text), "test.compose", "C")
	if err != nil {
		t.Fatalf("parse error: %v\ntext: %s", err, text)
	}
	return tbl
}

func sym(t *testing.T, name string) keysym.Keysym {
	t.Helper()
	k, ok := keysym.Default().FromName(name)
	if !ok {
		t.Fatalf("no such keysym %q", name)
	}
	return k
}

func feedExpect(t *testing.T, st *matcher.State, k keysym.Keysym, wantResult matcher.FeedResult, wantStatus matcher.Status, wantStr string, wantSym keysym.Keysym) {
	t.Helper()
	res := st.Feed(k)
	if res != wantResult {
		t.Fatalf("Feed(%v) result = %v, want %v", k, res, wantResult)
	}
	if st.Status() != wantStatus {
		t.Fatalf("Feed(%v) status = %v, want %v", k, st.Status(), wantStatus)
	}
	buf := make([]byte, 64)
	n := st.UTF8(buf)
	if got := string(buf[:n]); got != wantStr {
		t.Fatalf("Feed(%v) UTF8 = %q, want %q", k, got, wantStr)
	}
	if got := st.OneSym(); got != wantSym {
		t.Fatalf("Feed(%v) OneSym = %v, want %v", k, got, wantSym)
	}
}

// Scenario 1 (spec.md §8).
func TestScenarioRepeatAndPrefixMismatch(t *testing.T) {
	tbl := mustTable(t, "<A>:\"foo\" X\n<B><A>:\"baz\" Y\n")
	A, B, C := sym(t, "A"), sym(t, "B"), sym(t, "C")
	X, Y := sym(t, "X"), sym(t, "Y")

	st := matcher.New(tbl)
	feedExpect(t, st, A, matcher.Accepted, matcher.Composed, "foo", X)
	feedExpect(t, st, A, matcher.Accepted, matcher.Composed, "foo", X)
	feedExpect(t, st, C, matcher.Accepted, matcher.Nothing, "", keysym.NoSymbol)
	feedExpect(t, st, B, matcher.Accepted, matcher.Composing, "", keysym.NoSymbol)
	feedExpect(t, st, A, matcher.Accepted, matcher.Composed, "baz", Y)
}

// Scenario 2 (spec.md §8): new sequence is a prefix of an old one.
func TestScenarioNewIsPrefixOfOld(t *testing.T) {
	tbl := mustTable(t, "<A><B><C>:\"foo\" A\n<A><B>:\"bar\" B\n")
	A, B, C := sym(t, "A"), sym(t, "B"), sym(t, "C")
	X := sym(t, "A")

	st := matcher.New(tbl)
	feedExpect(t, st, A, matcher.Accepted, matcher.Composing, "", keysym.NoSymbol)
	feedExpect(t, st, B, matcher.Accepted, matcher.Composing, "", keysym.NoSymbol)
	feedExpect(t, st, C, matcher.Accepted, matcher.Composed, "foo", X)
}

// Scenario 3 (spec.md §8): old sequence is a prefix of a new one.
func TestScenarioOldIsPrefixOfNew(t *testing.T) {
	tbl := mustTable(t, "<A><B>:\"bar\" B\n<A><B><C>:\"foo\" A\n")
	A, B, C := sym(t, "A"), sym(t, "B"), sym(t, "C")
	X := sym(t, "A")

	st := matcher.New(tbl)
	feedExpect(t, st, A, matcher.Accepted, matcher.Composing, "", keysym.NoSymbol)
	feedExpect(t, st, B, matcher.Accepted, matcher.Composing, "", keysym.NoSymbol)
	feedExpect(t, st, C, matcher.Accepted, matcher.Composed, "foo", X)
}

// Scenario 4 (spec.md §8): cancellation does not consume the key.
func TestScenarioCancellationReplaysKey(t *testing.T) {
	tbl := mustTable(t, "<A><B>:X\n<C><D>:Y\n")
	A, C, D := sym(t, "A"), sym(t, "C"), sym(t, "D")

	st := matcher.New(tbl)
	feedExpect(t, st, A, matcher.Accepted, matcher.Composing, "", keysym.NoSymbol)
	feedExpect(t, st, C, matcher.Accepted, matcher.Cancelled, "", keysym.NoSymbol)
	feedExpect(t, st, D, matcher.Accepted, matcher.Nothing, "", keysym.NoSymbol)
}

// Scenario 5 (spec.md §8): modifiers are ignored mid-sequence.
func TestScenarioModifiersIgnoredMidSequence(t *testing.T) {
	tbl := mustTable(t, "<Multi_key><A><T>:\"@\" at\n")
	multiKey := sym(t, "Multi_key")
	a := sym(t, "A")
	tt := sym(t, "T")
	shiftL := sym(t, "Shift_L")
	capsLock := sym(t, "Caps_Lock")
	controlL := sym(t, "Control_L")
	at := sym(t, "at")

	st := matcher.New(tbl)
	feedExpect(t, st, multiKey, matcher.Accepted, matcher.Composing, "", keysym.NoSymbol)
	if res := st.Feed(shiftL); res != matcher.Ignored {
		t.Fatalf("Feed(Shift_L) = %v, want Ignored", res)
	}
	feedExpect(t, st, a, matcher.Accepted, matcher.Composing, "", keysym.NoSymbol)
	if res := st.Feed(capsLock); res != matcher.Ignored {
		t.Fatalf("Feed(Caps_Lock) = %v, want Ignored", res)
	}
	if res := st.Feed(controlL); res != matcher.Ignored {
		t.Fatalf("Feed(Control_L) = %v, want Ignored", res)
	}
	feedExpect(t, st, tt, matcher.Accepted, matcher.Composed, "@", at)
}

// Scenario 6 (spec.md §8): keysym-only RHS with no Unicode form.
func TestScenarioKeysymOnlyResultHasEmptyString(t *testing.T) {
	tbl := mustTable(t, "<C> : dead_acute\n")
	cSym := sym(t, "C")
	deadAcute := sym(t, "dead_acute")

	st := matcher.New(tbl)
	feedExpect(t, st, cSym, matcher.Accepted, matcher.Composed, "", deadAcute)
}

func TestResetReturnsToNothing(t *testing.T) {
	tbl := mustTable(t, "<A>:\"foo\" X\n")
	A := sym(t, "A")

	st := matcher.New(tbl)
	st.Feed(A)
	if st.Status() != matcher.Composed {
		t.Fatalf("expected COMPOSED before reset")
	}
	st.Reset()
	if st.Status() != matcher.Nothing {
		t.Fatalf("Status() after Reset = %v, want NOTHING", st.Status())
	}
	feedExpect(t, st, A, matcher.Accepted, matcher.Composed, "foo", sym(t, "X"))
}

func TestNoSymbolIsIgnored(t *testing.T) {
	tbl := mustTable(t, "<A>:\"foo\" X\n")
	st := matcher.New(tbl)
	if res := st.Feed(keysym.NoSymbol); res != matcher.Ignored {
		t.Fatalf("Feed(NoSymbol) = %v, want Ignored", res)
	}
	if st.Status() != matcher.Nothing {
		t.Fatalf("status changed on NoSymbol feed")
	}
}
