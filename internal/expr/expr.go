package expr

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Error reports a malformed expression and the byte offset it was
// detected at.
type Error struct {
	Pos     int
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("invalid expression at position %d: %s", e.Pos, e.Message)
}

// Evaluate computes an arithmetic expression over decimals. It supports
// + - * /, unary signs and parentheses with the usual precedence, e.g.
// "150 * 1.2" or "(1000 - 250) / 3". Division is exact to the decimal
// package's DivisionPrecision.
func Evaluate(input string) (decimal.Decimal, error) {
	p := &parser{input: input}
	p.next()

	if p.tok.kind == tokenEOF {
		return decimal.Zero, Error{Pos: 0, Message: "expression is empty"}
	}

	out, err := p.expr()
	if err != nil {
		return decimal.Zero, err
	}
	if p.tok.kind != tokenEOF {
		return decimal.Zero, Error{Pos: p.tok.pos, Message: fmt.Sprintf("unexpected %q", p.tok.text)}
	}

	return out, nil
}

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenNumber
	tokenOp
	tokenLParen
	tokenRParen
	tokenInvalid
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type parser struct {
	input  string
	offset int
	tok    token
	depth  int
}

// nesting deeper than this is rejected
const maxDepth = 256

func (p *parser) next() {
	for p.offset < len(p.input) && unicode.IsSpace(rune(p.input[p.offset])) {
		p.offset++
	}
	if p.offset >= len(p.input) {
		p.tok = token{kind: tokenEOF, pos: p.offset}
		return
	}

	start := p.offset
	c := p.input[p.offset]
	switch {
	case c == '+' || c == '-' || c == '*' || c == '/':
		p.offset++
		p.tok = token{kind: tokenOp, text: string(c), pos: start}
	case c == '(':
		p.offset++
		p.tok = token{kind: tokenLParen, text: "(", pos: start}
	case c == ')':
		p.offset++
		p.tok = token{kind: tokenRParen, text: ")", pos: start}
	case isDigit(c) || c == '.':
		seenDot := false
		for p.offset < len(p.input) {
			c = p.input[p.offset]
			if c == '.' {
				if seenDot {
					break
				}
				seenDot = true
			} else if !isDigit(c) {
				break
			}
			p.offset++
		}
		p.tok = token{kind: tokenNumber, text: p.input[start:p.offset], pos: start}
	default:
		p.offset++
		p.tok = token{kind: tokenInvalid, text: string(c), pos: start}
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func (p *parser) expr() (decimal.Decimal, error) {
	left, err := p.term()
	if err != nil {
		return decimal.Zero, err
	}
	for p.tok.kind == tokenOp && (p.tok.text == "+" || p.tok.text == "-") {
		op := p.tok.text
		p.next()
		right, err := p.term()
		if err != nil {
			return decimal.Zero, err
		}
		if op == "+" {
			left = left.Add(right)
		} else {
			left = left.Sub(right)
		}
	}
	return left, nil
}

func (p *parser) term() (decimal.Decimal, error) {
	left, err := p.unary()
	if err != nil {
		return decimal.Zero, err
	}
	for p.tok.kind == tokenOp && (p.tok.text == "*" || p.tok.text == "/") {
		op := p.tok
		p.next()
		right, err := p.unary()
		if err != nil {
			return decimal.Zero, err
		}
		if op.text == "*" {
			left = left.Mul(right)
			continue
		}
		if right.IsZero() {
			return decimal.Zero, Error{Pos: op.pos, Message: "division by zero"}
		}
		left = left.Div(right)
	}
	return left, nil
}

func (p *parser) unary() (decimal.Decimal, error) {
	if p.tok.kind == tokenOp && (p.tok.text == "+" || p.tok.text == "-") {
		op := p.tok.text
		if err := p.enter(); err != nil {
			return decimal.Zero, err
		}
		defer p.leave()

		p.next()
		v, err := p.unary()
		if err != nil {
			return decimal.Zero, err
		}
		if op == "-" {
			return v.Neg(), nil
		}
		return v, nil
	}
	return p.primary()
}

func (p *parser) primary() (decimal.Decimal, error) {
	switch p.tok.kind {
	case tokenNumber:
		text := p.tok.text
		pos := p.tok.pos
		if text == "." {
			return decimal.Zero, Error{Pos: pos, Message: "malformed number"}
		}
		if strings.HasPrefix(text, ".") {
			text = "0" + text
		}
		v, err := decimal.NewFromString(strings.TrimSuffix(text, "."))
		if err != nil {
			return decimal.Zero, Error{Pos: pos, Message: fmt.Sprintf("malformed number %q", p.tok.text)}
		}
		p.next()
		return v, nil
	case tokenLParen:
		open := p.tok.pos
		if err := p.enter(); err != nil {
			return decimal.Zero, err
		}
		defer p.leave()

		p.next()
		v, err := p.expr()
		if err != nil {
			return decimal.Zero, err
		}
		if p.tok.kind != tokenRParen {
			return decimal.Zero, Error{Pos: open, Message: "unclosed parenthesis"}
		}
		p.next()
		return v, nil
	case tokenEOF:
		return decimal.Zero, Error{Pos: p.tok.pos, Message: "unexpected end of expression"}
	default:
		return decimal.Zero, Error{Pos: p.tok.pos, Message: fmt.Sprintf("unexpected %q", p.tok.text)}
	}
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > maxDepth {
		return Error{Pos: p.tok.pos, Message: "expression is nested too deeply"}
	}
	return nil
}

func (p *parser) leave() {
	p.depth--
}
