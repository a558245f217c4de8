package vdf

import (
	"errors"
	"fmt"
	"os"
)

// ErrMalformed is matched by every syntax error returned by Parse.
var ErrMalformed = errors.New("malformed config")

// maxDepth bounds block nesting so hostile input cannot exhaust the stack.
const maxDepth = 128

// SyntaxError describes a parse failure at a byte offset of the input.
type SyntaxError struct {
	Msg    string
	Offset int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("vdf: %s at offset %d", e.Msg, e.Offset)
}

// Unwrap lets errors.Is(err, ErrMalformed) match.
func (e *SyntaxError) Unwrap() error {
	return ErrMalformed
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokString
	tokOpen
	tokClose
	tokCond
)

type token struct {
	text   string
	kind   tokenKind
	offset int
}

type parser struct {
	peeked *token
	data   []byte
	pos    int
}

// Parse reads a whole document and returns its root block.
// Top-level entries become children of the returned node.
func Parse(data []byte) (*Node, error) {
	p := &parser{data: data}

	// UTF-8 BOM
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		p.pos = 3
	}

	root := NewBlock()
	if err := p.parseBlock(root, 0, 0); err != nil {
		return nil, err
	}

	return root, nil
}

// ParseFile reads and parses the file at path.
func ParseFile(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	root, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return root, nil
}

// parseBlock consumes entries into block until the closing brace
// (depth > 0) or the end of input (depth == 0).
func (p *parser) parseBlock(block *Node, depth, openedAt int) error {
	if depth > maxDepth {
		return &SyntaxError{Msg: "blocks nested too deeply", Offset: openedAt}
	}

	for {
		tok, err := p.next()
		if err != nil {
			return err
		}

		switch tok.kind {
		case tokEOF:
			if depth > 0 {
				return &SyntaxError{Msg: "unclosed block", Offset: openedAt}
			}
			return nil

		case tokClose:
			if depth == 0 {
				return &SyntaxError{Msg: "unexpected '}'", Offset: tok.offset}
			}
			return nil

		case tokOpen:
			return &SyntaxError{Msg: "block without a key", Offset: tok.offset}

		case tokCond:
			// stray platform conditional
			continue

		case tokString:
			if err := p.parseEntry(block, tok, depth); err != nil {
				return err
			}
		}
	}
}

func (p *parser) parseEntry(block *Node, key token, depth int) error {
	val, err := p.next()
	if err != nil {
		return err
	}

	// "key" [$COND] { ... }
	if val.kind == tokCond {
		if val, err = p.next(); err != nil {
			return err
		}
	}

	switch val.kind {
	case tokString:
		block.SetValue(key.text, val.text)
		return p.skipCond()

	case tokOpen:
		child := NewBlock()
		if err := p.parseBlock(child, depth+1, val.offset); err != nil {
			return err
		}
		block.Set(key.text, child)
		return p.skipCond()

	default:
		return &SyntaxError{Msg: fmt.Sprintf("missing value for key %q", key.text), Offset: key.offset}
	}
}

// skipCond drops a trailing [$PLATFORM] conditional if one follows.
func (p *parser) skipCond() error {
	tok, err := p.peek()
	if err != nil {
		return err
	}
	if tok.kind == tokCond {
		p.peeked = nil
	}

	return nil
}

func (p *parser) peek() (token, error) {
	if p.peeked != nil {
		return *p.peeked, nil
	}

	tok, err := p.lex()
	if err != nil {
		return token{}, err
	}
	p.peeked = &tok

	return tok, nil
}

func (p *parser) next() (token, error) {
	if p.peeked != nil {
		tok := *p.peeked
		p.peeked = nil
		return tok, nil
	}

	return p.lex()
}

func (p *parser) lex() (token, error) {
	p.skipSpace()

	if p.pos >= len(p.data) {
		return token{kind: tokEOF, offset: p.pos}, nil
	}

	start := p.pos
	switch c := p.data[p.pos]; c {
	case '{':
		p.pos++
		return token{kind: tokOpen, offset: start}, nil
	case '}':
		p.pos++
		return token{kind: tokClose, offset: start}, nil
	case '"':
		return p.lexQuoted()
	case '[':
		for p.pos < len(p.data) && p.data[p.pos] != ']' {
			p.pos++
		}
		if p.pos >= len(p.data) {
			return token{}, &SyntaxError{Msg: "unterminated conditional", Offset: start}
		}
		p.pos++
		return token{kind: tokCond, text: string(p.data[start:p.pos]), offset: start}, nil
	default:
		for p.pos < len(p.data) && !isDelim(p.data[p.pos]) {
			p.pos++
		}
		return token{kind: tokString, text: string(p.data[start:p.pos]), offset: start}, nil
	}
}

func (p *parser) lexQuoted() (token, error) {
	start := p.pos
	p.pos++

	buf := make([]byte, 0, 32)
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		switch {
		case c == '"':
			p.pos++
			return token{kind: tokString, text: string(buf), offset: start}, nil
		case c == '\\' && p.pos+1 < len(p.data) && (p.data[p.pos+1] == '"' || p.data[p.pos+1] == '\\'):
			buf = append(buf, p.data[p.pos+1])
			p.pos += 2
		default:
			buf = append(buf, c)
			p.pos++
		}
	}

	return token{}, &SyntaxError{Msg: "unterminated quoted string", Offset: start}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			p.pos++
		case c == '/' && p.pos+1 < len(p.data) && p.data[p.pos+1] == '/':
			for p.pos < len(p.data) && p.data[p.pos] != '\n' {
				p.pos++
			}
		default:
			return
		}
	}
}

func isDelim(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '"', '{', '}':
		return true
	}

	return false
}
