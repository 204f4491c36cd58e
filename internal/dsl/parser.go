package dsl

import (
	"strconv"
)

type parser struct {
	toks []Token
	pos  int
}

func newParser(file string, src []byte) (*parser, error) {
	toks, err := Tokenize(file, src)
	if err != nil {
		return nil, err
	}
	return &parser{toks: toks}, nil
}

// ParseRecords parses the nested-record grammar: a comma-separated sequence
// of `name: value` fields terminated by end of input.
func ParseRecords(file string, src []byte) (*Records, error) {
	p, err := newParser(file, src)
	if err != nil {
		return nil, err
	}
	return p.parseFields(p.peek().Pos, EOF)
}

// ParseEntries parses the explicit-entry grammar: a comma-separated list of
// braced field sets.
func ParseEntries(file string, src []byte) ([]*Records, error) {
	p, err := newParser(file, src)
	if err != nil {
		return nil, err
	}

	var entries []*Records
	for p.peek().Kind != EOF {
		open, err := p.expect(LBrace)
		if err != nil {
			return nil, err
		}
		entry, err := p.parseFields(open.Pos, RBrace)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)

		if p.peek().Kind == Comma {
			p.next()
			continue
		}
		if p.peek().Kind != EOF {
			return nil, p.unexpected("',' or end of input")
		}
	}
	return entries, nil
}

// FirstToken returns the first significant token of src.
func FirstToken(file string, src []byte) (Token, error) {
	toks, err := Tokenize(file, src)
	if err != nil {
		return Token{}, err
	}
	return toks[0], nil
}

func (p *parser) peek() Token {
	return p.toks[p.pos]
}

func (p *parser) peekAt(n int) Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) next() Token {
	tok := p.toks[p.pos]
	if tok.Kind != EOF {
		p.pos++
	}
	return tok
}

func (p *parser) expect(kind TokenKind) (Token, error) {
	if p.peek().Kind != kind {
		return Token{}, p.unexpected(kind.String())
	}
	return p.next(), nil
}

func (p *parser) unexpected(want string) error {
	tok := p.peek()
	return Errorf(tok.Pos, ErrSyntax, "expected %s, found %s", want, tok)
}

// parseFields consumes `key: value` pairs up to and including the closing token.
func (p *parser) parseFields(pos Pos, closing TokenKind) (*Records, error) {
	records := NewRecords(pos)
	for p.peek().Kind != closing {
		key, err := p.expect(Ident)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(Colon); err != nil {
			return nil, err
		}
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		if err := records.Add(&Field{Key: key.Text, KeyPos: key.Pos, Value: value}); err != nil {
			return nil, err
		}

		if p.peek().Kind == Comma {
			p.next()
			continue
		}
		if p.peek().Kind != closing {
			return nil, p.unexpected("',' or " + closing.String())
		}
	}
	p.next()
	return records, nil
}

func (p *parser) parseValue() (Value, error) {
	tok := p.peek()
	switch tok.Kind {
	case LBrace:
		p.next()
		// `{}` and `{ key: ...` are records; anything else is a group.
		if p.peek().Kind == RBrace || (p.peek().Kind == Ident && p.peekAt(1).Kind == Colon) {
			records, err := p.parseFields(tok.Pos, RBrace)
			if err != nil {
				return Value{}, err
			}
			return Value{Pos: tok.Pos, Kind: KindRecords, Records: records}, nil
		}
		return p.parseGroup(tok.Pos, RBrace)

	case LParen:
		p.next()
		return p.parseGroup(tok.Pos, RParen)

	case LBrack:
		p.next()
		return p.parseGroup(tok.Pos, RBrack)

	case Int:
		p.next()
		n, err := strconv.ParseUint(tok.Text, 0, 64)
		if err != nil {
			return Value{}, Errorf(tok.Pos, ErrSyntax, "invalid integer literal %q", tok.Text)
		}
		return Value{Pos: tok.Pos, Kind: KindInt, Int: n, Raw: tok.Text}, nil

	case String:
		p.next()
		return Value{Pos: tok.Pos, Kind: KindString, Str: tok.Text}, nil

	case Ident:
		path, err := p.parsePath()
		if err != nil {
			return Value{}, err
		}
		return Value{Pos: tok.Pos, Kind: KindPath, Path: path}, nil
	}
	return Value{}, p.unexpected("a value")
}

func (p *parser) parsePath() (Path, error) {
	first := p.next()
	path := Path{Segments: []string{first.Text}, Text: first.Text}
	for p.peek().Kind == PathSep || p.peek().Kind == Dot {
		sep := p.next()
		seg, err := p.expect(Ident)
		if err != nil {
			return Path{}, err
		}
		path.Segments = append(path.Segments, seg.Text)
		path.Text += sep.Text + seg.Text
	}
	return path, nil
}

// parseGroup reads either pipe-separated flag identifiers or a comma-separated
// byte list. An empty group is an empty flag-set.
func (p *parser) parseGroup(pos Pos, closing TokenKind) (Value, error) {
	if p.peek().Kind == Int {
		return p.parseBytes(pos, closing)
	}

	var flags Flags
	for p.peek().Kind != closing {
		tok, err := p.expect(Ident)
		if err != nil {
			return Value{}, err
		}
		if !flags.Contains(tok.Text) {
			flags = append(flags, tok.Text)
		}
		if p.peek().Kind == Pipe {
			p.next()
			continue
		}
		if p.peek().Kind != closing {
			return Value{}, p.unexpected("'|' or " + closing.String())
		}
	}
	p.next()
	return Value{Pos: pos, Kind: KindFlags, Flags: flags}, nil
}

func (p *parser) parseBytes(pos Pos, closing TokenKind) (Value, error) {
	var out []byte
	for p.peek().Kind != closing {
		tok, err := p.expect(Int)
		if err != nil {
			return Value{}, err
		}
		n, err := strconv.ParseUint(tok.Text, 0, 8)
		if err != nil {
			return Value{}, Errorf(tok.Pos, ErrSyntax, "byte value %s out of range", tok.Text)
		}
		out = append(out, byte(n))
		if p.peek().Kind == Comma {
			p.next()
			continue
		}
		if p.peek().Kind != closing {
			return Value{}, p.unexpected("',' or " + closing.String())
		}
	}
	p.next()
	return Value{Pos: pos, Kind: KindBytes, Bytes: out}, nil
}
