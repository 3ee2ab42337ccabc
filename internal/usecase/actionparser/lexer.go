package actionparser

import (
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokRaw
	tokLParen
	tokRParen
	tokEquals
	tokComma
	tokSep
	tokInvalid
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "identifier"
	case tokString:
		return "string"
	case tokRaw:
		return "value"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokEquals:
		return "'='"
	case tokComma:
		return "','"
	case tokSep:
		return "separator"
	default:
		return "invalid token"
	}
}

type token struct {
	kind tokenKind
	text string
	pos  int
}

// lexer splits an action segment into tokens. Values are lexed on demand with
// value() because a bracketed literal is only a value after '='.
type lexer struct {
	src string
	pos int
}

func newLexer(src string) *lexer {
	return &lexer{src: src}
}

func (l *lexer) skipBlank() {
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case ' ', '\t', '\r':
			l.pos++
		default:
			return
		}
	}
}

// skipSpace skips blanks and line breaks. Inside an argument list a line
// break is layout, not a call separator.
func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case ' ', '\t', '\r', '\n':
			l.pos++
		default:
			return
		}
	}
}

// nextInCall returns the next token inside a call's parentheses.
func (l *lexer) nextInCall() token {
	l.skipSpace()
	return l.next()
}

func (l *lexer) next() token {
	l.skipBlank()
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: l.pos}
	}

	start := l.pos
	c := l.src[l.pos]
	switch {
	case c == '\n' || c == ';':
		for l.pos < len(l.src) && strings.IndexByte("\n; \t\r", l.src[l.pos]) >= 0 {
			l.pos++
		}
		return token{kind: tokSep, pos: start}
	case c == '(':
		l.pos++
		return token{kind: tokLParen, text: "(", pos: start}
	case c == ')':
		l.pos++
		return token{kind: tokRParen, text: ")", pos: start}
	case c == '=':
		l.pos++
		return token{kind: tokEquals, text: "=", pos: start}
	case c == ',':
		l.pos++
		return token{kind: tokComma, text: ",", pos: start}
	case c == '\'' || c == '"':
		return l.lexString()
	case isIdentStart(c):
		for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
			l.pos++
		}
		return token{kind: tokIdent, text: l.src[start:l.pos], pos: start}
	}

	l.pos++
	return token{kind: tokInvalid, text: string(c), pos: start}
}

// value lexes an argument value: a quoted string, or raw text with balanced
// brackets that ends at a top-level ',' or ')'.
func (l *lexer) value() token {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return token{kind: tokInvalid, text: "missing value", pos: l.pos}
	}
	if c := l.src[l.pos]; c == '\'' || c == '"' {
		return l.lexString()
	}

	start := l.pos
	var stack []byte
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch c {
		case '(', '[', '{':
			stack = append(stack, closerFor(c))
		case ')', ']', '}':
			if len(stack) == 0 {
				if c == ')' {
					return l.rawToken(start)
				}
				return token{kind: tokInvalid, text: "unbalanced " + string(c), pos: l.pos}
			}
			if stack[len(stack)-1] != c {
				return token{kind: tokInvalid, text: "mismatched " + string(c), pos: l.pos}
			}
			stack = stack[:len(stack)-1]
		case ',':
			if len(stack) == 0 {
				return l.rawToken(start)
			}
		case '\n':
			if len(stack) == 0 {
				return l.rawToken(start)
			}
		case '\'', '"':
			end := strings.IndexByte(l.src[l.pos+1:], c)
			if end < 0 {
				return token{kind: tokInvalid, text: "unterminated string", pos: l.pos}
			}
			l.pos += end + 1
		}
		l.pos++
	}
	if len(stack) > 0 {
		return token{kind: tokInvalid, text: "unclosed bracket", pos: start}
	}
	return l.rawToken(start)
}

func (l *lexer) rawToken(start int) token {
	text := strings.TrimSpace(l.src[start:l.pos])
	if text == "" {
		return token{kind: tokInvalid, text: "missing value", pos: start}
	}
	return token{kind: tokRaw, text: text, pos: start}
}

// lexString reads a quoted string. A quote only closes the string when the next
// significant character is ',', ')', a line break or the end of input, so
// apostrophes inside free text survive.
func (l *lexer) lexString() token {
	start := l.pos
	quote := l.src[l.pos]
	l.pos++

	var b strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '\\' && l.pos+1 < len(l.src) {
			l.pos++
			b.WriteByte(unescape(l.src[l.pos]))
			l.pos++
			continue
		}
		if c == quote && l.closesString(l.pos+1) {
			l.pos++
			return token{kind: tokString, text: b.String(), pos: start}
		}
		b.WriteByte(c)
		l.pos++
	}
	return token{kind: tokInvalid, text: "unterminated string", pos: start}
}

func (l *lexer) closesString(i int) bool {
	for ; i < len(l.src); i++ {
		switch l.src[i] {
		case ' ', '\t', '\r':
			continue
		case ',', ')', '\n', ';':
			return true
		default:
			return false
		}
	}
	return true
}

// skipLine moves past the next line break so scanning can resume after a bad call.
func (l *lexer) skipLine() {
	if i := strings.IndexByte(l.src[l.pos:], '\n'); i >= 0 {
		l.pos += i + 1
		return
	}
	l.pos = len(l.src)
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	default:
		return c
	}
}

func closerFor(c byte) byte {
	switch c {
	case '(':
		return ')'
	case '[':
		return ']'
	default:
		return '}'
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
