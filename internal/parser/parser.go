// Package parser drives the compose-file grammar (spec.md §4.3) over a
// lexer.Lexer, assembling productions and inserting them into a
// trie.Builder. Include statements recurse synchronously with a capped
// depth, exactly as the single-threaded build model of spec.md §5
// requires.
//
// Grounded on parser/parser.go's Parser shape (one-token lookahead via
// a lexer, advance/eat/tryEat-style helpers, a typed *ParseError),
// narrowed from statement dispatch over a large keyword alphabet down
// to the four labeled grammar states spec.md §4.3 names (initial,
// include, lhs, rhs); include recursion is grounded on
// original_source/src/compose/parser.c's do_include/parse mutual
// recursion, reimplemented idiomatically rather than transliterated.
package parser

import (
	"fmt"
	"os"

	"github.com/oarkflow/composeseq/composefile"
	"github.com/oarkflow/composeseq/diag"
	"github.com/oarkflow/composeseq/internal/lexer"
	"github.com/oarkflow/composeseq/internal/token"
	"github.com/oarkflow/composeseq/internal/trie"
	"github.com/oarkflow/composeseq/keysym"
)

const (
	maxLHSLen              = 10  // spec.md §3
	maxStringLen           = 255 // spec.md §3: 256 including terminator
	defaultMaxIncludeDepth = 5   // spec.md §4.3
	maxErrors              = 10  // spec.md §7
)

// CompileError records a fatal parse failure: the file exceeded the
// error cap, or an included file could not be read. An include nested
// too deep is logged as an error and counted toward the cap, and
// parsing continues with the next line.
type CompileError struct {
	File string
	Line uint32
	Col  uint32
	Msg  string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Col, e.Msg)
}

// Option configures a Parse call.
type Option func(*config)

type config struct {
	resolver        keysym.Resolver
	locator         composefile.Locator
	logger          diag.Logger
	maxIncludeDepth int
}

func WithResolver(r keysym.Resolver) Option {
	return func(c *config) { c.resolver = r }
}

func WithLocator(l composefile.Locator) Option {
	return func(c *config) { c.locator = l }
}

func WithLogger(l diag.Logger) Option {
	return func(c *config) { c.logger = l }
}

func WithMaxIncludeDepth(n int) Option {
	return func(c *config) { c.maxIncludeDepth = n }
}

// Parse compiles src (the top-level file named file) into a frozen
// trie.Table for locale. Diagnostics are reported through the
// configured logger; Parse itself only returns an error when the file
// could not be compiled at all (error cap exceeded, included file
// unreadable).
func Parse(src []byte, file, locale string, opts ...Option) (*trie.Table, error) {
	cfg := &config{
		resolver:        keysym.Default(),
		locator:         composefile.DefaultLocator(),
		logger:          diag.NopLogger{},
		maxIncludeDepth: defaultMaxIncludeDepth,
	}
	for _, o := range opts {
		o(cfg)
	}

	p := &parser{config: cfg, builder: trie.NewBuilder(), locale: locale}
	lx := lexer.New(src, file, cfg.resolver, cfg.logger)
	if err := p.parseFile(lx, file, 0); err != nil {
		return nil, err
	}
	return p.builder.Build(locale), nil
}

type parser struct {
	*config
	builder  *trie.Builder
	locale   string
	errCount int
}

// parseFile runs the `initial` grammar state (spec.md §4.3) over lx
// until END_OF_FILE, recursing into parseFile again for each include
// statement encountered.
func (p *parser) parseFile(lx *lexer.Lexer, file string, depth int) error {
	for {
		tok := lx.Next()
		switch tok.Type {
		case token.ENDOFLINE:
			continue
		case token.EOF:
			return nil
		case token.ERROR:
			if err := p.handleLexError(lx, file); err != nil {
				return err
			}
		case token.INCLUDE:
			if err := p.parseInclude(lx, file, depth); err != nil {
				return err
			}
		case token.LHSKEYSYM:
			if err := p.parseProduction(lx, tok, file); err != nil {
				return err
			}
		default:
			if err := p.unexpected(lx, file, tok, "expected a key symbol or 'include' at start of line"); err != nil {
				return err
			}
		}
	}
}

// parseInclude runs the `include` grammar state: switch to
// include-path lexing, require a quoted path then end of line, then
// recurse into the included file at depth+1.
func (p *parser) parseInclude(lx *lexer.Lexer, file string, depth int) error {
	pathTok := lx.NextIncludePath(p.locator, p.locale)
	if pathTok.Type == token.ERROR {
		return p.handleLexError(lx, file)
	}
	if pathTok.Type != token.INCLUDESTRING {
		return p.unexpected(lx, file, pathTok, "expected a quoted path after include")
	}

	nl := lx.Next()
	if nl.Type == token.ERROR {
		return p.handleLexError(lx, file)
	}
	if nl.Type != token.ENDOFLINE && nl.Type != token.EOF {
		return p.unexpected(lx, file, nl, "expected end of line after include statement")
	}

	if depth >= p.maxIncludeDepth {
		p.errorf(file, pathTok, "maximum include depth (%d) exceeded", p.maxIncludeDepth)
		return p.bumpError(file, pathTok)
	}

	data, err := os.ReadFile(pathTok.Text)
	if err != nil {
		msg := fmt.Sprintf("failed to read include file %q: %s", pathTok.Text, err)
		p.errorf(file, pathTok, "%s", msg)
		return &CompileError{File: file, Line: pathTok.Line, Col: pathTok.Col, Msg: msg}
	}

	sub := lexer.New(data, pathTok.Text, p.resolver, p.logger)
	return p.parseFile(sub, pathTok.Text, depth+1)
}

// parseProduction runs the `lhs` grammar state starting from an
// already-consumed first LHS_KEYSYM token, then hands off to parseRHS
// once the COLON is seen.
func (p *parser) parseProduction(lx *lexer.Lexer, first token.Token, file string) error {
	lhs := []keysym.Keysym{first.Keysym}

	for {
		tok := lx.Next()
		switch tok.Type {
		case token.LHSKEYSYM:
			if len(lhs) >= maxLHSLen {
				p.warnf(file, first, "too many key symbols on the left-hand side (max %d); skipping line", maxLHSLen)
				p.skipLine(lx)
				return nil
			}
			lhs = append(lhs, tok.Keysym)
		case token.COLON:
			return p.parseRHS(lx, lhs, first, file)
		case token.ERROR:
			return p.handleLexError(lx, file)
		default:
			return p.unexpected(lx, file, tok, "expected a key symbol or ':' on the left-hand side")
		}
	}
}

// parseRHS runs the `rhs` grammar state. Per spec.md §9's preserved
// source quirk, a RHS_KEYSYM commits the production immediately
// without waiting for END_OF_LINE — it does not drain the rest of the
// line first, exactly matching the original fallthrough.
func (p *parser) parseRHS(lx *lexer.Lexer, lhs []keysym.Keysym, prod token.Token, file string) error {
	var hasString, hasKeysym bool
	var str string
	var sym keysym.Keysym

	for {
		tok := lx.Next()
		switch tok.Type {
		case token.STRING:
			if hasString {
				return p.unexpected(lx, file, tok, "only one string is allowed on the right-hand side")
			}
			if tok.Text == "" {
				p.warnf(file, tok, "empty right-hand side string; skipping line")
				p.skipLine(lx)
				return nil
			}
			if len(tok.Text) > maxStringLen {
				p.warnf(file, tok, "right-hand side string too long (max %d bytes); skipping line", maxStringLen)
				p.skipLine(lx)
				return nil
			}
			hasString = true
			str = tok.Text
		case token.RHSKEYSYM:
			if hasKeysym {
				return p.unexpected(lx, file, tok, "only one key symbol is allowed on the right-hand side")
			}
			hasKeysym = true
			sym = tok.Keysym
			return p.commit(lhs, hasString, str, hasKeysym, sym, prod, file)
		case token.ENDOFLINE, token.EOF:
			return p.commit(lhs, hasString, str, hasKeysym, sym, prod, file)
		case token.ERROR:
			return p.handleLexError(lx, file)
		default:
			return p.unexpected(lx, file, tok, "expected a string, a key symbol, or end of line on the right-hand side")
		}
	}
}

// commit inserts the assembled production into the trie, diagnosing
// conflicts at the production's starting position.
func (p *parser) commit(lhs []keysym.Keysym, hasString bool, str string, hasKeysym bool, sym keysym.Keysym, prod token.Token, file string) error {
	if !hasString && !hasKeysym {
		p.warnf(file, prod, "right-hand side has neither a string nor a key symbol; skipping line")
		return nil
	}
	p.builder.Insert(lhs, hasString, str, hasKeysym, sym, func(format string, args ...any) {
		p.warnf(file, prod, format, args...)
	})
	return nil
}

func (p *parser) skipLine(lx *lexer.Lexer) {
	for {
		tok := lx.Next()
		if tok.Type == token.ENDOFLINE || tok.Type == token.EOF {
			return
		}
	}
}

func (p *parser) handleLexError(lx *lexer.Lexer, file string) error {
	if err := p.bumpErrorTok(lx, file); err != nil {
		return err
	}
	p.skipLine(lx)
	return nil
}

func (p *parser) unexpected(lx *lexer.Lexer, file string, tok token.Token, msg string) error {
	p.errorf(file, tok, "%s (got %s)", msg, tok.Type)
	if err := p.bumpError(file, tok); err != nil {
		return err
	}
	p.skipLine(lx)
	return nil
}

// bumpErrorTok counts an already-logged lexer error (no position
// available beyond what the lexer logged, so it reuses the file name
// only — the cap check is identical).
func (p *parser) bumpErrorTok(lx *lexer.Lexer, file string) error {
	p.errCount++
	if p.errCount > maxErrors {
		return &CompileError{File: file, Msg: fmt.Sprintf("too many errors (%d); aborting", p.errCount)}
	}
	return nil
}

func (p *parser) bumpError(file string, tok token.Token) error {
	p.errCount++
	if p.errCount > maxErrors {
		return &CompileError{File: file, Line: tok.Line, Col: tok.Col, Msg: fmt.Sprintf("too many errors (%d); aborting", p.errCount)}
	}
	return nil
}

func (p *parser) errorf(file string, tok token.Token, format string, args ...any) {
	p.logger.Log(diag.Diagnostic{
		File: file, Line: tok.Line, Col: tok.Col,
		Severity: diag.Error,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (p *parser) warnf(file string, tok token.Token, format string, args ...any) {
	p.logger.Log(diag.Diagnostic{
		File: file, Line: tok.Line, Col: tok.Col,
		Severity: diag.Warning,
		Message:  fmt.Sprintf(format, args...),
	})
}
