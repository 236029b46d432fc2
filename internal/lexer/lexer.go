// Package lexer tokenizes compose-file text into the small token
// alphabet the parser drives (spec.md §4.2). It has two entry points:
// Next, used for the main grammar, and NextIncludePath, a distinct mode
// entered only right after an INCLUDE token to scan a %-escaped quoted
// path.
//
// Grounded on lexer/lexer.go's per-token-shape private methods
// (lexIdent/lexQuoted/lexPunct there become lexLHSKeysym/lexString/
// lexIdentOrInclude/NextIncludePath here).
package lexer

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/oarkflow/composeseq/composefile"
	"github.com/oarkflow/composeseq/diag"
	"github.com/oarkflow/composeseq/internal/scanner"
	"github.com/oarkflow/composeseq/internal/token"
	"github.com/oarkflow/composeseq/keysym"
)

// Lexer tokenizes one compose file's bytes.
type Lexer struct {
	s      *scanner.Scanner
	cache  *nameCache
	logger diag.Logger
	file   string
}

// New creates a Lexer over src. resolver supplies key-symbol name
// lookups (wrapped in a private per-parse cache, spec.md §4.6); logger
// receives every diagnostic the lexer emits; file names the source in
// diagnostics.
func New(src []byte, file string, resolver keysym.Resolver, logger diag.Logger) *Lexer {
	if logger == nil {
		logger = diag.NopLogger{}
	}
	return &Lexer{
		s:      scanner.New(src),
		cache:  newNameCache(resolver),
		logger: logger,
		file:   file,
	}
}

func (l *Lexer) errorf(format string, args ...any) token.Token {
	line, col := l.s.TokenStart()
	l.logger.Log(diag.Diagnostic{
		File: l.file, Line: line, Col: col,
		Severity: diag.Error,
		Message:  fmt.Sprintf(format, args...),
	})
	return token.Token{Type: token.ERROR, Line: line, Col: col}
}

func (l *Lexer) warnf(format string, args ...any) {
	line, col := l.s.TokenStart()
	l.logger.Log(diag.Diagnostic{
		File: l.file, Line: line, Col: col,
		Severity: diag.Warning,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Next returns the next token of the main compose-file grammar.
func (l *Lexer) Next() token.Token {
	for {
		// Skip horizontal whitespace.
		for scanner.IsHorizontalSpace(l.s.Peek()) {
			l.s.Next()
		}

		if l.s.Peek() == '\n' {
			line, col := l.s.Line(), l.s.Col()
			l.s.Next()
			return token.Token{Type: token.ENDOFLINE, Line: line, Col: col}
		}

		if l.s.Chr('#') {
			for !l.s.EOF() && !l.s.EOL() {
				l.s.Next()
			}
			continue
		}

		break
	}

	if l.s.EOF() {
		return token.Token{Type: token.EOF, Line: l.s.Line(), Col: l.s.Col()}
	}

	l.s.Mark()

	switch {
	case l.s.Peek() == '<':
		return l.lexLHSKeysym()
	case l.s.Peek() == ':':
		l.s.Next()
		line, col := l.s.TokenStart()
		return token.Token{Type: token.COLON, Line: line, Col: col}
	case l.s.Peek() == '"':
		return l.lexString()
	case scanner.IsAlpha(l.s.Peek()):
		return l.lexIdentOrInclude()
	default:
		for !l.s.EOF() && !l.s.EOL() {
			l.s.Next()
		}
		return l.errorf("unrecognized token")
	}
}

func (l *Lexer) lexLHSKeysym() token.Token {
	l.s.Next() // '<'
	l.s.ResetBuf()
	for l.s.Peek() != '>' && !l.s.EOL() {
		l.s.AppendBuf(l.s.Next())
	}
	if !l.s.Chr('>') {
		return l.errorf("unterminated keysym literal")
	}
	name := l.s.BufString()
	sym, ok := l.cache.lookup(name)
	if !ok {
		return l.errorf("unrecognized keysym %q on left-hand side", name)
	}
	line, col := l.s.TokenStart()
	return token.Token{Type: token.LHSKEYSYM, Line: line, Col: col, Keysym: sym}
}

// lexString scans a "..." literal with the escapes of spec.md §4.2.
func (l *Lexer) lexString() token.Token {
	l.s.Next() // opening quote
	l.s.ResetBuf()

	for !l.s.EOF() && !l.s.EOL() && l.s.Peek() != '"' {
		if l.s.Chr('\\') {
			switch {
			case l.s.Chr('\\'):
				l.s.AppendBuf('\\')
			case l.s.Chr('"'):
				l.s.AppendBuf('"')
			case l.s.Peek() == 'x' || l.s.Peek() == 'X':
				l.s.Next()
				if v, ok := l.s.ReadHex(); ok {
					l.s.AppendBuf(v)
				} else {
					l.warnf("illegal hexadecimal escape sequence in string literal")
				}
			default:
				if v, ok := l.s.ReadOctal(); ok {
					l.s.AppendBuf(v)
				} else {
					l.warnf("unknown escape sequence (%c) in string literal", l.s.Peek())
				}
			}
		} else {
			l.s.AppendBuf(l.s.Next())
		}
	}

	if !l.s.Chr('"') {
		return l.errorf("unterminated string literal")
	}

	text := l.s.BufString()
	if !utf8.ValidString(text) {
		return l.errorf("string literal is not a valid UTF-8 string")
	}

	line, col := l.s.TokenStart()
	return token.Token{Type: token.STRING, Line: line, Col: col, Text: text}
}

func (l *Lexer) lexIdentOrInclude() token.Token {
	l.s.ResetBuf()
	for scanner.IsAlnum(l.s.Peek()) {
		l.s.AppendBuf(l.s.Next())
	}
	name := l.s.BufString()
	line, col := l.s.TokenStart()

	if name == "include" {
		return token.Token{Type: token.INCLUDE, Line: line, Col: col}
	}

	sym, ok := l.cache.lookup(name)
	if !ok {
		return l.errorf("unrecognized keysym %q on right-hand side", name)
	}
	return token.Token{Type: token.RHSKEYSYM, Line: line, Col: col, Keysym: sym}
}

// NextIncludePath scans the %-escaped quoted path that must follow an
// INCLUDE token on the same line. locator supplies the %L and %S
// expansions; the %H expansion reads the HOME environment variable
// directly, per spec.md §6.
func (l *Lexer) NextIncludePath(locator composefile.Locator, locale string) token.Token {
	for scanner.IsHorizontalSpace(l.s.Peek()) {
		l.s.Next()
	}
	if l.s.Peek() == '\n' {
		line, col := l.s.Line(), l.s.Col()
		l.s.Next()
		return token.Token{Type: token.ENDOFLINE, Line: line, Col: col}
	}

	l.s.Mark()
	l.s.ResetBuf()

	if !l.s.Chr('"') {
		return l.errorf("include statement must be followed by a path")
	}

	for !l.s.EOF() && !l.s.EOL() && l.s.Peek() != '"' {
		if l.s.Chr('%') {
			switch {
			case l.s.Chr('%'):
				if !l.s.AppendBuf('%') {
					return l.errorf("include path is too long")
				}
			case l.s.Chr('H'):
				home := os.Getenv("HOME")
				if home == "" {
					return l.errorf("%%H was used in an include statement, but the HOME environment variable is not set")
				}
				if !l.s.AppendBufString(home) {
					return l.errorf("include path after expanding %%H is too long")
				}
			case l.s.Chr('L'):
				path, err := locator.ComposeFileForLocale(locale)
				if err != nil {
					return l.errorf("failed to expand %%L to the locale Compose file: %s", err)
				}
				if !l.s.AppendBufString(path) {
					return l.errorf("include path after expanding %%L is too long")
				}
			case l.s.Chr('S'):
				if !l.s.AppendBufString(locator.SystemComposeDir()) {
					return l.errorf("include path after expanding %%S is too long")
				}
			default:
				return l.errorf("unknown %% format (%c) in include statement", l.s.Peek())
			}
		} else {
			if !l.s.AppendBuf(l.s.Next()) {
				return l.errorf("include path is too long")
			}
		}
	}

	if !l.s.Chr('"') {
		return l.errorf("unterminated include statement")
	}

	line, col := l.s.TokenStart()
	return token.Token{Type: token.INCLUDESTRING, Line: line, Col: col, Text: l.s.BufString()}
}
