// Package token defines the compose-file token alphabet.
//
// Grounded on lexer/token.go's iota-enum + parallel []string table
// idiom, narrowed from SQL's large keyword/operator alphabet down to
// the handful of token kinds spec.md §4.2 names.
package token

import "github.com/oarkflow/composeseq/keysym"

// Type identifies the kind of a compose-file token.
type Type uint8

const (
	ILLEGAL Type = iota
	EOF
	ENDOFLINE
	INCLUDE
	INCLUDESTRING
	LHSKEYSYM
	COLON
	STRING
	RHSKEYSYM
	ERROR
)

var typeNames = [...]string{
	ILLEGAL:       "ILLEGAL",
	EOF:           "END_OF_FILE",
	ENDOFLINE:     "END_OF_LINE",
	INCLUDE:       "INCLUDE",
	INCLUDESTRING: "INCLUDE_STRING",
	LHSKEYSYM:     "LHS_KEYSYM",
	COLON:         "COLON",
	STRING:        "STRING",
	RHSKEYSYM:     "RHS_KEYSYM",
	ERROR:         "ERROR",
}

// String returns a human-readable token type name.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "UNKNOWN"
}

// Token is one lexed unit of compose-file text.
type Token struct {
	Type Type
	Line uint32
	Col  uint32

	// Keysym carries the resolved keysym for LHS_KEYSYM / RHS_KEYSYM.
	Keysym keysym.Keysym

	// Text carries the decoded payload for STRING and INCLUDE_STRING
	// (raw UTF-8 bytes for STRING, the %-expanded path for
	// INCLUDE_STRING).
	Text string
}
