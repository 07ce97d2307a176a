package expression

import (
	"fmt"
	"strconv"
)

// Variable names available to selection expressions.
const (
	VarIndex                 = "index"
	VarLength                = "length"
	VarDeltaTime             = "deltaTime"
	VarSimilarity            = "similarity"
	VarMaxGroupSimilarity    = "maxGroupSimilarity"
	VarMinDistanceToSelected = "minDistanceToSelected"
)

// Variables lists every variable name in the order they are documented.
var Variables = []string{
	VarIndex,
	VarLength,
	VarDeltaTime,
	VarSimilarity,
	VarMaxGroupSimilarity,
	VarMinDistanceToSelected,
}

var keywords = map[string]TokenKind{
	"true":                   TokenTrue,
	"false":                  TokenFalse,
	VarIndex:                 TokenVariable,
	VarLength:                TokenVariable,
	VarDeltaTime:             TokenVariable,
	VarSimilarity:            TokenVariable,
	VarMaxGroupSimilarity:    TokenVariable,
	VarMinDistanceToSelected: TokenVariable,
}

type tokenizer struct {
	src    string
	start  int
	cur    int
	tokens []Token
}

// Tokenize splits src into tokens terminated by a TokenEOF. Unknown
// identifiers and stray characters are reported as a *SyntaxError.
func Tokenize(src string) ([]Token, error) {
	t := &tokenizer{src: src}
	for !t.atEnd() {
		t.start = t.cur
		if err := t.scan(); err != nil {
			return nil, err
		}
	}
	t.tokens = append(t.tokens, Token{Kind: TokenEOF, Pos: t.cur})
	return t.tokens, nil
}

func (t *tokenizer) scan() error {
	c := t.advance()

	switch c {
	case ' ', '\t', '\r', '\n':
		return nil
	case '(':
		t.add(TokenLParen)
	case ')':
		t.add(TokenRParen)
	case '+':
		t.add(TokenPlus)
	case '-':
		t.add(TokenMinus)
	case '*':
		t.add(TokenMultiply)
	case '/':
		t.add(TokenDivide)
	case '%':
		t.add(TokenModulo)
	case '?':
		t.add(TokenQuestion)
	case ':':
		t.add(TokenColon)
	case '!':
		t.addEither('=', TokenNE, TokenNot)
	case '<':
		t.addEither('=', TokenLE, TokenLT)
	case '>':
		t.addEither('=', TokenGE, TokenGT)
	case '=':
		return t.double('=', TokenEQ)
	case '&':
		return t.double('&', TokenAnd)
	case '|':
		return t.double('|', TokenOr)
	default:
		switch {
		case isDigit(c):
			return t.number()
		case isAlpha(c):
			return t.identifier()
		default:
			return syntaxErrorf(t.start, "unexpected character '%c'", c)
		}
	}
	return nil
}

// double handles operators that are only valid when doubled, like "==".
func (t *tokenizer) double(c byte, kind TokenKind) error {
	if !t.match(c) {
		return syntaxErrorf(t.start, "unexpected character '%c' (did you mean '%c%c'?)", c, c, c)
	}
	t.add(kind)
	return nil
}

func (t *tokenizer) number() error {
	for isDigit(t.peek()) {
		t.advance()
	}

	if t.peek() == '.' && isDigit(t.peekNext()) {
		t.advance()
		for isDigit(t.peek()) {
			t.advance()
		}
		text := t.src[t.start:t.cur]
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return syntaxErrorf(t.start, "invalid number format: %s", text)
		}
		t.addValue(TokenNumber, FloatValue(f))
		return nil
	}

	text := t.src[t.start:t.cur]
	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return syntaxErrorf(t.start, "invalid number format: %s", text)
	}
	t.addValue(TokenNumber, IntValue(i))
	return nil
}

func (t *tokenizer) identifier() error {
	for isAlphaNumeric(t.peek()) {
		t.advance()
	}
	text := t.src[t.start:t.cur]
	kind, ok := keywords[text]
	if !ok {
		return syntaxErrorf(t.start, "unknown identifier: %s", text)
	}
	t.add(kind)
	return nil
}

func (t *tokenizer) addEither(next byte, ifMatch, otherwise TokenKind) {
	if t.match(next) {
		t.add(ifMatch)
		return
	}
	t.add(otherwise)
}

func (t *tokenizer) add(kind TokenKind) {
	t.addValue(kind, Value{})
}

func (t *tokenizer) addValue(kind TokenKind, v Value) {
	t.tokens = append(t.tokens, Token{
		Kind:   kind,
		Lexeme: t.src[t.start:t.cur],
		Value:  v,
		Pos:    t.start,
	})
}

func (t *tokenizer) match(expected byte) bool {
	if t.atEnd() || t.src[t.cur] != expected {
		return false
	}
	t.cur++
	return true
}

func (t *tokenizer) peek() byte {
	if t.atEnd() {
		return 0
	}
	return t.src[t.cur]
}

func (t *tokenizer) peekNext() byte {
	if t.cur+1 >= len(t.src) {
		return 0
	}
	return t.src[t.cur+1]
}

func (t *tokenizer) advance() byte {
	c := t.src[t.cur]
	t.cur++
	return c
}

func (t *tokenizer) atEnd() bool {
	return t.cur >= len(t.src)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isAlphaNumeric(c byte) bool {
	return isAlpha(c) || isDigit(c)
}

func syntaxErrorf(pos int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Msg: fmt.Sprintf(format, args...), Pos: pos}
}
