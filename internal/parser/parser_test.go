package parser_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oarkflow/composeseq/diag"
	"github.com/oarkflow/composeseq/internal/parser"
	"github.com/oarkflow/composeseq/internal/trie"
	"github.com/oarkflow/composeseq/keysym"
)

func mustParse(t *testing.T, text string, opts ...parser.Option) *trie.Table {
	t.Helper()
	tbl, err := parser.Parse([]byte(text), "test.compose", "C", opts...)
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

func TestParseSimpleProduction(t *testing.T) {
	log := &diag.CollectingLogger{}
	tbl := mustParse(t, "<A>:\"foo\" X\n", parser.WithLogger(log))
	if log.HasErrors() {
		t.Fatalf("unexpected errors: %v", log.Diagnostics)
	}
	A := sym(t, "A")
	off, ok := tbl.FindChild(tbl.FirstChild(trie.Root), A)
	if !ok || !tbl.IsLeaf(off) {
		t.Fatalf("expected <A> to parse to a leaf")
	}
	if got := tbl.ResultString(off); got != "foo" {
		t.Fatalf("ResultString = %q, want foo", got)
	}
}

func TestParseSkipsBlankLinesAndComments(t *testing.T) {
	log := &diag.CollectingLogger{}
	mustParse(t, "\n# a comment\n<A>:\"foo\" X  # trailing comment\n\n", parser.WithLogger(log))
	if log.HasErrors() {
		t.Fatalf("unexpected errors: %v", log.Diagnostics)
	}
}

func TestParseUnknownKeysymIsError(t *testing.T) {
	log := &diag.CollectingLogger{}
	mustParse(t, "<ThisIsNotAKeysym>:\"foo\" X\n", parser.WithLogger(log))
	if !log.HasErrors() {
		t.Fatalf("expected an error diagnostic for an unknown keysym")
	}
}

func TestLHSAtCapIsAccepted(t *testing.T) {
	log := &diag.CollectingLogger{}
	lhs := strings.Repeat("<A>", 10)
	mustParse(t, lhs+":\"ok\"\n", parser.WithLogger(log))
	if log.HasErrors() {
		t.Fatalf("10 LHS symbols should be accepted: %v", log.Diagnostics)
	}
}

func TestLHSOverCapIsRejected(t *testing.T) {
	log := &diag.CollectingLogger{}
	lhs := strings.Repeat("<A>", 11)
	tbl := mustParse(t, lhs+":\"ok\"\n<B>:\"bar\"\n", parser.WithLogger(log))
	if log.Count(diag.Warning) == 0 {
		t.Fatalf("expected a warning for 11 LHS symbols")
	}
	B := sym(t, "B")
	if _, ok := tbl.FindChild(tbl.FirstChild(trie.Root), B); !ok {
		t.Fatalf("subsequent valid production must still be parsed")
	}
}

func TestStringAtCapIsAccepted(t *testing.T) {
	log := &diag.CollectingLogger{}
	str := strings.Repeat("a", 255)
	mustParse(t, "<A>:\""+str+"\"\n", parser.WithLogger(log))
	if log.HasErrors() {
		t.Fatalf("255-byte string should be accepted: %v", log.Diagnostics)
	}
}

func TestStringOverCapIsRejected(t *testing.T) {
	log := &diag.CollectingLogger{}
	str := strings.Repeat("a", 256)
	tbl := mustParse(t, "<A>:\""+str+"\"\n<B>:\"bar\"\n", parser.WithLogger(log))
	if log.Count(diag.Warning) == 0 {
		t.Fatalf("expected a warning for an over-long string")
	}
	A := sym(t, "A")
	if _, ok := tbl.FindChild(tbl.FirstChild(trie.Root), A); ok {
		t.Fatalf("the over-long production must be skipped, not inserted")
	}
}

func TestEmptyStringIsRejected(t *testing.T) {
	log := &diag.CollectingLogger{}
	tbl := mustParse(t, "<A>:\"\"\n<B>:\"bar\"\n", parser.WithLogger(log))
	if log.Count(diag.Warning) == 0 {
		t.Fatalf("expected a warning for an empty string")
	}
	A := sym(t, "A")
	if _, ok := tbl.FindChild(tbl.FirstChild(trie.Root), A); ok {
		t.Fatalf("the empty-string production must be skipped")
	}
}

func TestKeysymOnlyRHSCommitsWithoutTrailingNewline(t *testing.T) {
	log := &diag.CollectingLogger{}
	tbl := mustParse(t, "<C> : dead_acute", parser.WithLogger(log))
	if log.HasErrors() {
		t.Fatalf("unexpected errors: %v", log.Diagnostics)
	}
	C := sym(t, "C")
	off, ok := tbl.FindChild(tbl.FirstChild(trie.Root), C)
	if !ok || !tbl.IsLeaf(off) {
		t.Fatalf("expected <C> to commit to a leaf")
	}
	if got := tbl.ResultKeysym(off); got != sym(t, "dead_acute") {
		t.Fatalf("ResultKeysym = %v, want dead_acute", got)
	}
}

func TestErrorCapAbortsParse(t *testing.T) {
	log := &diag.CollectingLogger{}
	var lines strings.Builder
	for i := 0; i < 11; i++ {
		lines.WriteString("<ThisIsNotAKeysym>\n")
	}
	_, err := parser.Parse([]byte(lines.String()), "test.compose", "C", parser.WithLogger(log))
	if err == nil {
		t.Fatalf("expected the 11th error to abort the parse")
	}
}

func TestEmptyInputProducesEmptyTable(t *testing.T) {
	tbl := mustParse(t, "")
	if tbl.FirstChild(trie.Root) != 0 {
		t.Fatalf("expected an empty table to have no root-level children")
	}
}

// TestLHSOverflowWarningFiresBeforeMalformedToken guards against the
// overflow warning being deferred until a COLON is reached: a line
// with 11 LHS key symbols followed directly by something other than
// ':' must still emit the overflow warning (not silently fall into
// "expected a key symbol or ':'" without ever warning about the
// overflow), and must still let a subsequent valid production parse.
func TestLHSOverflowWarningFiresBeforeMalformedToken(t *testing.T) {
	log := &diag.CollectingLogger{}
	lhs := strings.Repeat("<A>", 11)
	tbl := mustParse(t, lhs+"\"oops\"\n<B>:\"bar\"\n", parser.WithLogger(log))
	if log.Count(diag.Warning) == 0 {
		t.Fatalf("expected an overflow warning even though the line has no ':'")
	}
	B := sym(t, "B")
	if _, ok := tbl.FindChild(tbl.FirstChild(trie.Root), B); !ok {
		t.Fatalf("subsequent valid production must still be parsed")
	}
}

// writeComposeFile writes content to name under dir and returns the
// full path, for building include chains on disk.
func writeComposeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestIncludeAtMaxDepthIsAccepted(t *testing.T) {
	dir := t.TempDir()
	writeComposeFile(t, dir, "a.compose", "<A>:\"a\"\n")

	log := &diag.CollectingLogger{}
	text := "include \"" + filepath.Join(dir, "a.compose") + "\"\n"
	tbl := mustParse(t, text, parser.WithLogger(log), parser.WithMaxIncludeDepth(1))
	if log.HasErrors() {
		t.Fatalf("one level of nesting under depth cap 1 should be accepted: %v", log.Diagnostics)
	}
	A := sym(t, "A")
	if _, ok := tbl.FindChild(tbl.FirstChild(trie.Root), A); !ok {
		t.Fatalf("expected the included file's production to be present")
	}
}

func TestIncludeOverMaxDepthIsRejected(t *testing.T) {
	dir := t.TempDir()
	writeComposeFile(t, dir, "b.compose", "<B>:\"b\"\n")
	writeComposeFile(t, dir, "a.compose",
		"include \""+filepath.Join(dir, "b.compose")+"\"\n<A>:\"a\"\n")

	log := &diag.CollectingLogger{}
	text := "include \"" + filepath.Join(dir, "a.compose") + "\"\n"
	tbl := mustParse(t, text, parser.WithLogger(log), parser.WithMaxIncludeDepth(1))
	if log.Count(diag.Error) == 0 {
		t.Fatalf("expected an error for exceeding the include depth cap")
	}
	B := sym(t, "B")
	if _, ok := tbl.FindChild(tbl.FirstChild(trie.Root), B); ok {
		t.Fatalf("the over-depth include's productions must not be parsed")
	}
	A := sym(t, "A")
	if _, ok := tbl.FindChild(tbl.FirstChild(trie.Root), A); !ok {
		t.Fatalf("the including file must still parse its own production after the rejected include")
	}
}
