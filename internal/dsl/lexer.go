package dsl

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// TokenKind classifies lexical tokens.
type TokenKind int

const (
	EOF TokenKind = iota
	Ident
	Int
	String
	Colon
	PathSep // ::
	Dot
	Comma
	Pipe
	LBrace
	RBrace
	LParen
	RParen
	LBrack
	RBrack
)

var tokenNames = map[TokenKind]string{
	EOF:     "end of input",
	Ident:   "identifier",
	Int:     "integer literal",
	String:  "string literal",
	Colon:   "':'",
	PathSep: "'::'",
	Dot:     "'.'",
	Comma:   "','",
	Pipe:    "'|'",
	LBrace:  "'{'",
	RBrace:  "'}'",
	LParen:  "'('",
	RParen:  "')'",
	LBrack:  "'['",
	RBrack:  "']'",
}

func (k TokenKind) String() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(k))
}

// Token is a single lexeme. For String tokens Text holds the decoded value.
type Token struct {
	Kind TokenKind
	Text string
	Pos  Pos
}

func (t Token) String() string {
	switch t.Kind {
	case Ident, Int:
		return fmt.Sprintf("%s %q", t.Kind, t.Text)
	case String:
		return fmt.Sprintf("%s %s", t.Kind, strconv.Quote(t.Text))
	default:
		return t.Kind.String()
	}
}

var punctuation = map[byte]TokenKind{
	',': Comma,
	'|': Pipe,
	'.': Dot,
	'{': LBrace,
	'}': RBrace,
	'(': LParen,
	')': RParen,
	'[': LBrack,
	']': RBrack,
}

type lexer struct {
	src  string
	file string
	off  int
	line int
	col  int
}

// Tokenize splits src into tokens. The returned slice always ends with EOF.
func Tokenize(file string, src []byte) ([]Token, error) {
	lx := &lexer{src: string(src), file: file, line: 1, col: 1}
	var tokens []Token
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == EOF {
			return tokens, nil
		}
	}
}

func (lx *lexer) pos() Pos {
	return Pos{File: lx.file, Line: lx.line, Col: lx.col}
}

func (lx *lexer) advance(n int) {
	for i := 0; i < n && lx.off < len(lx.src); i++ {
		if lx.src[lx.off] == '\n' {
			lx.line++
			lx.col = 1
		} else {
			lx.col++
		}
		lx.off++
	}
}

func (lx *lexer) peek(ahead int) byte {
	if lx.off+ahead >= len(lx.src) {
		return 0
	}
	return lx.src[lx.off+ahead]
}

func (lx *lexer) skipSpaceAndComments() error {
	for lx.off < len(lx.src) {
		c := lx.src[lx.off]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			lx.advance(1)
		case c == '/' && lx.peek(1) == '/':
			for lx.off < len(lx.src) && lx.src[lx.off] != '\n' {
				lx.advance(1)
			}
		case c == '/' && lx.peek(1) == '*':
			start := lx.pos()
			end := strings.Index(lx.src[lx.off+2:], "*/")
			if end < 0 {
				return Errorf(start, ErrSyntax, "unterminated block comment")
			}
			lx.advance(end + 4)
		default:
			return nil
		}
	}
	return nil
}

func (lx *lexer) next() (Token, error) {
	if err := lx.skipSpaceAndComments(); err != nil {
		return Token{}, err
	}
	start := lx.pos()
	if lx.off >= len(lx.src) {
		return Token{Kind: EOF, Pos: start}, nil
	}

	c := lx.src[lx.off]
	switch {
	case isIdentStart(c):
		begin := lx.off
		for lx.off < len(lx.src) && isIdentPart(lx.src[lx.off]) {
			lx.advance(1)
		}
		return Token{Kind: Ident, Text: lx.src[begin:lx.off], Pos: start}, nil

	case isDigit(c):
		begin := lx.off
		for lx.off < len(lx.src) && (isIdentPart(lx.src[lx.off])) {
			lx.advance(1)
		}
		text := lx.src[begin:lx.off]
		if _, err := strconv.ParseUint(text, 0, 64); err != nil {
			return Token{}, Errorf(start, ErrSyntax, "invalid integer literal %q", text)
		}
		return Token{Kind: Int, Text: text, Pos: start}, nil

	case c == '"':
		return lx.lexString(start)

	case c == ':':
		if lx.peek(1) == ':' {
			lx.advance(2)
			return Token{Kind: PathSep, Text: "::", Pos: start}, nil
		}
		lx.advance(1)
		return Token{Kind: Colon, Text: ":", Pos: start}, nil
	}

	if kind, ok := punctuation[c]; ok {
		lx.advance(1)
		return Token{Kind: kind, Text: string(c), Pos: start}, nil
	}

	r, _ := utf8.DecodeRuneInString(lx.src[lx.off:])
	return Token{}, Errorf(start, ErrSyntax, "unexpected character %q", r)
}

func (lx *lexer) lexString(start Pos) (Token, error) {
	begin := lx.off
	lx.advance(1)
	for lx.off < len(lx.src) {
		switch lx.src[lx.off] {
		case '\\':
			lx.advance(2)
			continue
		case '\n':
			return Token{}, Errorf(start, ErrSyntax, "newline in string literal")
		case '"':
			lx.advance(1)
			raw := lx.src[begin:lx.off]
			value, err := strconv.Unquote(raw)
			if err != nil {
				return Token{}, Errorf(start, ErrSyntax, "invalid string literal %s: %v", raw, err)
			}
			return Token{Kind: String, Text: value, Pos: start}, nil
		}
		lx.advance(1)
	}
	return Token{}, Errorf(start, ErrSyntax, "unterminated string literal")
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
