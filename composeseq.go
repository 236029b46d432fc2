// Package composeseq compiles X11-style compose-file grammars into a
// packed trie and feeds live key events through a matcher state
// machine, producing the committed text or key symbol a compose
// sequence resolves to.
//
// Grounded on sqlparser.go's package-level convenience wrappers
// (ParseStatement/ParseStatements delegating to parser.New) and
// dialect.go's ConvertOptions/ConvertDialectWithOptions functional-
// options shape, generalized from "parse SQL text" to "compile a
// compose file and drive it with live key events."
package composeseq

import (
	"fmt"
	"os"

	"github.com/oarkflow/composeseq/composefile"
	"github.com/oarkflow/composeseq/diag"
	"github.com/oarkflow/composeseq/dump"
	"github.com/oarkflow/composeseq/internal/matcher"
	"github.com/oarkflow/composeseq/internal/parser"
	"github.com/oarkflow/composeseq/internal/trie"
	"github.com/oarkflow/composeseq/keysym"
)

// Table is a compiled, immutable compose sequence trie. It is safe for
// concurrent use by many State sessions (spec.md §5).
type Table struct {
	t *trie.Table
}

// Locale reports the identifier the table was compiled for.
func (t *Table) Locale() string { return t.t.Locale }

// NodeCount reports how many trie nodes the table holds, root included.
func (t *Table) NodeCount() int { return t.t.NodeCount() }

// Dump renders every production the table holds back to compose-file
// text, using resolver for the keysym -> name reverse lookup
// (spec.md §8's round-trip property).
func (t *Table) Dump(resolver keysym.Resolver) string {
	return dump.Table(t.t, resolver)
}

// Option configures a compile (FromBuffer/FromFile/FromLocale) call.
type Option func(*options)

type options struct {
	resolver        keysym.Resolver
	locator         composefile.Locator
	logger          diag.Logger
	maxIncludeDepth int
}

func defaultOptions() *options {
	return &options{
		resolver: keysym.Default(),
		locator:  composefile.DefaultLocator(),
		logger:   diag.NopLogger{},
	}
}

// WithResolver supplies a key-symbol name resolver other than the
// module's built-in table (spec.md §1: the core treats this as an
// opaque external collaborator).
func WithResolver(r keysym.Resolver) Option {
	return func(o *options) { o.resolver = r }
}

// WithLocator supplies a locale-file discovery strategy other than the
// default filesystem layout under /usr/share/X11/locale.
func WithLocator(l composefile.Locator) Option {
	return func(o *options) { o.locator = l }
}

// WithLogger routes every diagnostic the compiler emits to l. The
// default discards diagnostics.
func WithLogger(l diag.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMaxIncludeDepth overrides the default include-nesting cap of 5.
func WithMaxIncludeDepth(n int) Option {
	return func(o *options) { o.maxIncludeDepth = n }
}

func (o *options) parserOpts() []parser.Option {
	opts := []parser.Option{
		parser.WithResolver(o.resolver),
		parser.WithLocator(o.locator),
		parser.WithLogger(o.logger),
	}
	if o.maxIncludeDepth > 0 {
		opts = append(opts, parser.WithMaxIncludeDepth(o.maxIncludeDepth))
	}
	return opts
}

// FromBuffer compiles in-memory compose-file text (spec.md §6,
// table_from_buffer). file names the source in diagnostics.
func FromBuffer(src []byte, file, locale string, opts ...Option) (*Table, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	tbl, err := parser.Parse(src, file, locale, o.parserOpts()...)
	if err != nil {
		return nil, err
	}
	return &Table{t: tbl}, nil
}

// FromFile reads path fully and compiles it (spec.md §6,
// table_from_file — a thin I/O wrapper over FromBuffer; the core does
// not memory-map, see DESIGN.md).
func FromFile(path, locale string, opts ...Option) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("composeseq: reading %s: %w", path, err)
	}
	return FromBuffer(data, path, locale, opts...)
}

// FromLocale resolves locale to a compose file and compiles it
// (spec.md §6, table_from_locale). If XCOMPOSEFILE is set, its value
// is used verbatim regardless of locale; otherwise the configured
// Locator resolves the locale's default compose file.
func FromLocale(locale string, opts ...Option) (*Table, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	path := os.Getenv("XCOMPOSEFILE")
	if path == "" {
		var err error
		path, err = o.locator.ComposeFileForLocale(locale)
		if err != nil {
			return nil, fmt.Errorf("composeseq: resolving compose file for locale %q: %w", locale, err)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("composeseq: reading %s: %w", path, err)
	}
	return FromBuffer(data, path, locale, opts...)
}

// Status mirrors the matcher's NOTHING/COMPOSING/COMPOSED/CANCELLED
// cycle (spec.md §4.5).
type Status = matcher.Status

const (
	Nothing   = matcher.Nothing
	Composing = matcher.Composing
	Composed  = matcher.Composed
	Cancelled = matcher.Cancelled
)

// FeedResult reports whether Feed consumed a key as part of the
// compose protocol.
type FeedResult = matcher.FeedResult

const (
	Accepted = matcher.Accepted
	Ignored  = matcher.Ignored
)

// State is one feed-time session over a shared, immutable Table
// (spec.md §4.5, state_new).
type State struct {
	s *matcher.State
}

// NewState creates a fresh session over table, in status NOTHING.
func NewState(table *Table) *State {
	return &State{s: matcher.New(table.t)}
}

// Feed advances the session by one key symbol.
func (s *State) Feed(k keysym.Keysym) FeedResult { return s.s.Feed(k) }

// Status reports the session's current status.
func (s *State) Status() Status { return s.s.Status() }

// UTF8 writes the committed result's UTF-8 bytes into buf and returns
// the number of bytes the full result needs (snprintf convention).
func (s *State) UTF8(buf []byte) int { return s.s.UTF8(buf) }

// OneSym returns the committed result's key symbol, or NoSymbol.
func (s *State) OneSym() keysym.Keysym { return s.s.OneSym() }

// Reset returns the session to NOTHING with its cursor back at root.
func (s *State) Reset() { s.s.Reset() }
