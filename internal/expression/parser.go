// Package expression implements the selection expression language: a
// tokenizer, a recursive descent parser producing an immutable tree, and an
// evaluator over per-photo numbers.
//
// Precedence, lowest first:
//
//	?:  ||  &&  == !=  < <= > >=  + -  * / %  !  primary
//
// Binary operators are left-associative. The ternary operator is
// right-associative.
package expression

type parser struct {
	tokens []Token
	cur    int
}

// Parse tokenizes and parses src. All failures are *SyntaxError.
func Parse(src string) (Node, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	node, err := p.ternary()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		tok := p.peek()
		return nil, syntaxErrorf(tok.Pos, "unexpected token: %s", tok.Lexeme)
	}
	return node, nil
}

func (p *parser) ternary() (Node, error) {
	cond, err := p.or()
	if err != nil {
		return nil, err
	}
	if !p.match(TokenQuestion) {
		return cond, nil
	}
	at := p.previous().Pos

	then, err := p.ternary()
	if err != nil {
		return nil, err
	}
	if !p.match(TokenColon) {
		return nil, syntaxErrorf(p.peek().Pos, "expected ':' after true value in ternary expression")
	}
	els, err := p.ternary()
	if err != nil {
		return nil, err
	}
	return &Ternary{Cond: cond, Then: then, Else: els, At: at}, nil
}

// binary parses one left-associative precedence level.
func (p *parser) binary(next func() (Node, error), ops ...TokenKind) (Node, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for p.match(ops...) {
		op := p.previous()
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op.Kind, Left: left, Right: right, At: op.Pos}
	}
	return left, nil
}

func (p *parser) or() (Node, error) {
	return p.binary(p.and, TokenOr)
}

func (p *parser) and() (Node, error) {
	return p.binary(p.equality, TokenAnd)
}

func (p *parser) equality() (Node, error) {
	return p.binary(p.comparison, TokenEQ, TokenNE)
}

func (p *parser) comparison() (Node, error) {
	return p.binary(p.additive, TokenLT, TokenLE, TokenGT, TokenGE)
}

func (p *parser) additive() (Node, error) {
	return p.binary(p.multiplicative, TokenPlus, TokenMinus)
}

func (p *parser) multiplicative() (Node, error) {
	return p.binary(p.unary, TokenMultiply, TokenDivide, TokenModulo)
}

func (p *parser) unary() (Node, error) {
	if !p.match(TokenNot) {
		return p.primary()
	}
	op := p.previous()
	operand, err := p.unary()
	if err != nil {
		return nil, err
	}
	return &Unary{Op: op.Kind, Operand: operand, At: op.Pos}, nil
}

func (p *parser) primary() (Node, error) {
	switch {
	case p.match(TokenTrue):
		return &Literal{Value: BoolValue(true), At: p.previous().Pos}, nil
	case p.match(TokenFalse):
		return &Literal{Value: BoolValue(false), At: p.previous().Pos}, nil
	case p.match(TokenNumber):
		tok := p.previous()
		return &Literal{Value: tok.Value, At: tok.Pos}, nil
	case p.match(TokenVariable):
		tok := p.previous()
		return &Variable{Name: tok.Lexeme, At: tok.Pos}, nil
	case p.match(TokenLParen):
		expr, err := p.ternary()
		if err != nil {
			return nil, err
		}
		if !p.match(TokenRParen) {
			return nil, syntaxErrorf(p.peek().Pos, "expected ')' after expression")
		}
		return expr, nil
	}

	if p.atEnd() {
		// Point at the dangling token rather than past the end of input
		if p.cur == 0 {
			return nil, syntaxErrorf(0, "empty expression")
		}
		prev := p.previous()
		return nil, syntaxErrorf(prev.Pos, "unexpected end of expression after '%s'", prev.Lexeme)
	}
	tok := p.peek()
	return nil, syntaxErrorf(tok.Pos, "unexpected token: %s", tok.Lexeme)
}

func (p *parser) match(kinds ...TokenKind) bool {
	if p.atEnd() {
		return false
	}
	for _, k := range kinds {
		if p.peek().Kind == k {
			p.cur++
			return true
		}
	}
	return false
}

func (p *parser) atEnd() bool {
	return p.peek().Kind == TokenEOF
}

func (p *parser) peek() Token {
	return p.tokens[p.cur]
}

func (p *parser) previous() Token {
	return p.tokens[p.cur-1]
}
