package expression

import "fmt"

// Node is an immutable expression tree node. A parsed tree can be evaluated
// any number of times with different contexts.
type Node interface {
	// Pos is the byte offset of the token that produced the node.
	Pos() int
	String() string
	node()
}

type Literal struct {
	Value Value
	At    int
}

type Variable struct {
	Name string
	At   int
}

type Unary struct {
	Op      TokenKind
	Operand Node
	At      int
}

type Binary struct {
	Op          TokenKind
	Left, Right Node
	At          int
}

type Ternary struct {
	Cond, Then, Else Node
	At               int
}

func (n *Literal) Pos() int  { return n.At }
func (n *Variable) Pos() int { return n.At }
func (n *Unary) Pos() int    { return n.At }
func (n *Binary) Pos() int   { return n.At }
func (n *Ternary) Pos() int  { return n.At }

func (n *Literal) String() string  { return n.Value.String() }
func (n *Variable) String() string { return n.Name }
func (n *Unary) String() string    { return fmt.Sprintf("%s%s", n.Op, n.Operand) }
func (n *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", n.Left, n.Op, n.Right)
}
func (n *Ternary) String() string {
	return fmt.Sprintf("(%s ? %s : %s)", n.Cond, n.Then, n.Else)
}

func (*Literal) node()  {}
func (*Variable) node() {}
func (*Unary) node()    {}
func (*Binary) node()   {}
func (*Ternary) node()  {}
