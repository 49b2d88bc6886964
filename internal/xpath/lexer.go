package xpath

import (
	"strings"
	"unicode"
	"unicode/utf8"

	xqerrors "github.com/jacoelho/xq/errors"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokLiteral
	tokName // NCName or prefix:local or prefix:*
	tokStar
	tokSlash
	tokDoubleSlash
	tokLBracket
	tokRBracket
	tokLParen
	tokRParen
	tokDot
	tokDotDot
	tokAt
	tokComma
	tokAxisSep // ::
	tokPipe
	tokPlus
	tokMinus
	tokEq
	tokNeq
	tokLt
	tokLe
	tokGt
	tokGe
	tokDollar
)

type token struct {
	kind tokenKind
	text string // name text, literal content, or number text
	pos  int    // byte offset in the expression
}

// lexer tokenizes an XPath 1.0 expression. Operator-name disambiguation
// (and/or/div/mod, '*' as multiply) is left to the parser, which knows
// whether an operand or an operator is expected.
type lexer struct {
	input  string
	pos    int
	tokens []token
}

func tokenize(input string) ([]token, error) {
	l := &lexer{input: input}
	if err := l.run(); err != nil {
		return nil, err
	}
	return l.tokens, nil
}

func (l *lexer) errorf(at int, format string, args ...any) error {
	diag := xqerrors.Newf(xqerrors.ErrXPathSyntax, format, args...)
	diag.Column = at + 1
	diag.Line = 1
	end := at + 12
	if end > len(l.input) {
		end = len(l.input)
	}
	return diag.WithFragment(l.input[at:end])
}

func (l *lexer) emit(kind tokenKind, text string, pos int) {
	l.tokens = append(l.tokens, token{kind: kind, text: text, pos: pos})
}

func (l *lexer) run() error {
	for {
		l.skipSpace()
		if l.pos >= len(l.input) {
			l.emit(tokEOF, "", l.pos)
			return nil
		}
		start := l.pos
		c := l.input[l.pos]
		switch {
		case c == '(':
			l.pos++
			l.emit(tokLParen, "(", start)
		case c == ')':
			l.pos++
			l.emit(tokRParen, ")", start)
		case c == '[':
			l.pos++
			l.emit(tokLBracket, "[", start)
		case c == ']':
			l.pos++
			l.emit(tokRBracket, "]", start)
		case c == ',':
			l.pos++
			l.emit(tokComma, ",", start)
		case c == '@':
			l.pos++
			l.emit(tokAt, "@", start)
		case c == '$':
			l.pos++
			l.emit(tokDollar, "$", start)
		case c == '|':
			l.pos++
			l.emit(tokPipe, "|", start)
		case c == '+':
			l.pos++
			l.emit(tokPlus, "+", start)
		case c == '-':
			l.pos++
			l.emit(tokMinus, "-", start)
		case c == '*':
			l.pos++
			l.emit(tokStar, "*", start)
		case c == '/':
			l.pos++
			if l.pos < len(l.input) && l.input[l.pos] == '/' {
				l.pos++
				l.emit(tokDoubleSlash, "//", start)
			} else {
				l.emit(tokSlash, "/", start)
			}
		case c == '=':
			l.pos++
			l.emit(tokEq, "=", start)
		case c == '!':
			if l.pos+1 >= len(l.input) || l.input[l.pos+1] != '=' {
				return l.errorf(start, "expected '=' after '!'")
			}
			l.pos += 2
			l.emit(tokNeq, "!=", start)
		case c == '<':
			l.pos++
			if l.pos < len(l.input) && l.input[l.pos] == '=' {
				l.pos++
				l.emit(tokLe, "<=", start)
			} else {
				l.emit(tokLt, "<", start)
			}
		case c == '>':
			l.pos++
			if l.pos < len(l.input) && l.input[l.pos] == '=' {
				l.pos++
				l.emit(tokGe, ">=", start)
			} else {
				l.emit(tokGt, ">", start)
			}
		case c == ':':
			if l.pos+1 < len(l.input) && l.input[l.pos+1] == ':' {
				l.pos += 2
				l.emit(tokAxisSep, "::", start)
			} else {
				return l.errorf(start, "unexpected ':'")
			}
		case c == '.':
			if l.pos+1 < len(l.input) && l.input[l.pos+1] == '.' {
				l.pos += 2
				l.emit(tokDotDot, "..", start)
			} else if l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1]) {
				l.lexNumber(start)
			} else {
				l.pos++
				l.emit(tokDot, ".", start)
			}
		case c == '"' || c == '\'':
			if err := l.lexLiteral(start, c); err != nil {
				return err
			}
		case isDigit(c):
			l.lexNumber(start)
		default:
			if err := l.lexName(start); err != nil {
				return err
			}
		}
	}
}

func (l *lexer) lexLiteral(start int, quote byte) error {
	l.pos++
	end := strings.IndexByte(l.input[l.pos:], quote)
	if end < 0 {
		return l.errorf(start, "unterminated string literal")
	}
	l.emit(tokLiteral, l.input[l.pos:l.pos+end], start)
	l.pos += end + 1
	return nil
}

// lexNumber scans Digits ('.' Digits?)? or '.' Digits.
func (l *lexer) lexNumber(start int) {
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	if l.pos < len(l.input) && l.input[l.pos] == '.' {
		l.pos++
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}
	l.emit(tokNumber, l.input[start:l.pos], start)
}

// lexName scans an NCName optionally followed by :NCName or :*. A bare
// trailing ':' (axis separator or error) is left for the main loop.
func (l *lexer) lexName(start int) error {
	if !l.scanNCName() {
		r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
		return l.errorf(start, "unexpected character %q", r)
	}
	if l.pos < len(l.input) && l.input[l.pos] == ':' &&
		(l.pos+1 >= len(l.input) || l.input[l.pos+1] != ':') {
		mark := l.pos
		l.pos++
		if l.pos < len(l.input) && l.input[l.pos] == '*' {
			l.pos++
		} else if !l.scanNCName() {
			// Not part of the name after all.
			l.pos = mark
		}
	}
	l.emit(tokName, l.input[start:l.pos], start)
	return nil
}

func (l *lexer) scanNCName() bool {
	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	if !isNameStart(r) {
		return false
	}
	l.pos += size
	for l.pos < len(l.input) {
		r, size = utf8.DecodeRuneInString(l.input[l.pos:])
		if !isNameChar(r) {
			break
		}
		l.pos += size
	}
	return true
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\r', '\n':
			l.pos++
		default:
			return
		}
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isNameStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isNameChar(r rune) bool {
	return isNameStart(r) || r == '-' || r == '.' || unicode.IsDigit(r)
}
