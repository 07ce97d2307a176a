package expression

import "fmt"

// TokenKind identifies the lexical class of a token.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenTrue
	TokenFalse
	TokenNumber
	TokenVariable

	TokenLParen
	TokenRParen

	TokenNot

	TokenMultiply
	TokenDivide
	TokenModulo

	TokenPlus
	TokenMinus

	TokenLT
	TokenLE
	TokenGT
	TokenGE

	TokenEQ
	TokenNE

	TokenAnd
	TokenOr

	TokenQuestion
	TokenColon
)

var tokenNames = map[TokenKind]string{
	TokenEOF:      "end of expression",
	TokenTrue:     "true",
	TokenFalse:    "false",
	TokenNumber:   "number",
	TokenVariable: "variable",
	TokenLParen:   "(",
	TokenRParen:   ")",
	TokenNot:      "!",
	TokenMultiply: "*",
	TokenDivide:   "/",
	TokenModulo:   "%",
	TokenPlus:     "+",
	TokenMinus:    "-",
	TokenLT:       "<",
	TokenLE:       "<=",
	TokenGT:       ">",
	TokenGE:       ">=",
	TokenEQ:       "==",
	TokenNE:       "!=",
	TokenAnd:      "&&",
	TokenOr:       "||",
	TokenQuestion: "?",
	TokenColon:    ":",
}

func (k TokenKind) String() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Token is one lexeme of an expression. Pos is the byte offset of its first
// character in the source.
type Token struct {
	Kind   TokenKind
	Lexeme string
	Value  Value // set for TokenNumber
	Pos    int
}
