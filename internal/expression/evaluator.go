package expression

import (
	"fmt"
)

// Context holds the per-photo values a selection expression can read.
type Context struct {
	Index                 int
	Length                int
	DeltaTime             float64
	Similarity            float64
	MaxGroupSimilarity    float64
	MinDistanceToSelected float64
}

func (c Context) lookup(name string) (Value, bool) {
	switch name {
	case VarIndex:
		return IntValue(int64(c.Index)), true
	case VarLength:
		return IntValue(int64(c.Length)), true
	case VarDeltaTime:
		return FloatValue(c.DeltaTime), true
	case VarSimilarity:
		return FloatValue(c.Similarity), true
	case VarMaxGroupSimilarity:
		return FloatValue(c.MaxGroupSimilarity), true
	case VarMinDistanceToSelected:
		return FloatValue(c.MinDistanceToSelected), true
	}
	return Value{}, false
}

// EvaluateBool evaluates node and requires a boolean result.
func EvaluateBool(node Node, ctx Context) (bool, error) {
	v, err := Evaluate(node, ctx)
	if err != nil {
		return false, err
	}
	b, ok := v.Bool()
	if !ok {
		return false, typeErrorf(node.Pos(), "expression must evaluate to bool, got %s", v.Type())
	}
	return b, nil
}

// Evaluate computes the value of node in ctx.
func Evaluate(node Node, ctx Context) (Value, error) {
	switch n := node.(type) {
	case *Literal:
		return n.Value, nil
	case *Variable:
		v, ok := ctx.lookup(n.Name)
		if !ok {
			return Value{}, typeErrorf(n.At, "unknown variable %s", n.Name)
		}
		return v, nil
	case *Unary:
		return evalUnary(n, ctx)
	case *Binary:
		return evalBinary(n, ctx)
	case *Ternary:
		cond, err := evalBoolOperand(n.Cond, ctx, n.At, "ternary condition")
		if err != nil {
			return Value{}, err
		}
		if cond {
			return Evaluate(n.Then, ctx)
		}
		return Evaluate(n.Else, ctx)
	default:
		return Value{}, fmt.Errorf("unsupported node %T", node)
	}
}

func evalUnary(n *Unary, ctx Context) (Value, error) {
	if n.Op != TokenNot {
		return Value{}, typeErrorf(n.At, "unknown unary operator %s", n.Op)
	}
	b, err := evalBoolOperand(n.Operand, ctx, n.At, "operator !")
	if err != nil {
		return Value{}, err
	}
	return BoolValue(!b), nil
}

func evalBoolOperand(node Node, ctx Context, at int, what string) (bool, error) {
	v, err := Evaluate(node, ctx)
	if err != nil {
		return false, err
	}
	b, ok := v.Bool()
	if !ok {
		return false, typeErrorf(at, "%s requires a bool operand, got %s", what, v.Type())
	}
	return b, nil
}

func evalBinary(n *Binary, ctx Context) (Value, error) {
	switch n.Op {
	case TokenAnd, TokenOr:
		return evalLogical(n, ctx)
	}

	left, err := Evaluate(n.Left, ctx)
	if err != nil {
		return Value{}, err
	}
	right, err := Evaluate(n.Right, ctx)
	if err != nil {
		return Value{}, err
	}

	switch n.Op {
	case TokenEQ:
		return BoolValue(equal(left, right)), nil
	case TokenNE:
		return BoolValue(!equal(left, right)), nil
	}

	if !left.IsNumeric() || !right.IsNumeric() {
		return Value{}, typeErrorf(n.At, "operator %s requires numeric operands, got %s and %s", n.Op, left.Type(), right.Type())
	}

	switch n.Op {
	case TokenPlus, TokenMinus, TokenMultiply:
		return arithmetic(n.Op, left, right), nil
	case TokenDivide:
		if right.Float() == 0 {
			return Value{}, fmt.Errorf("%w at position %d", ErrDivisionByZero, n.At)
		}
		return FloatValue(left.Float() / right.Float()), nil
	case TokenModulo:
		divisor := right.Int()
		if divisor == 0 {
			return Value{}, fmt.Errorf("%w at position %d", ErrModuloByZero, n.At)
		}
		return IntValue(left.Int() % divisor), nil
	case TokenLT:
		return BoolValue(left.Float() < right.Float()), nil
	case TokenLE:
		return BoolValue(left.Float() <= right.Float()), nil
	case TokenGT:
		return BoolValue(left.Float() > right.Float()), nil
	case TokenGE:
		return BoolValue(left.Float() >= right.Float()), nil
	}
	return Value{}, typeErrorf(n.At, "unknown binary operator %s", n.Op)
}

// evalLogical short-circuits: the right operand is only evaluated when the
// left one does not decide the result.
func evalLogical(n *Binary, ctx Context) (Value, error) {
	what := "operator " + n.Op.String()
	left, err := evalBoolOperand(n.Left, ctx, n.At, what)
	if err != nil {
		return Value{}, err
	}
	if n.Op == TokenAnd && !left {
		return BoolValue(false), nil
	}
	if n.Op == TokenOr && left {
		return BoolValue(true), nil
	}
	right, err := evalBoolOperand(n.Right, ctx, n.At, what)
	if err != nil {
		return Value{}, err
	}
	return BoolValue(right), nil
}

// arithmetic keeps int semantics for two ints and promotes to float otherwise.
func arithmetic(op TokenKind, left, right Value) Value {
	if left.Type() == TypeInt && right.Type() == TypeInt {
		a, b := left.Int(), right.Int()
		switch op {
		case TokenPlus:
			return IntValue(a + b)
		case TokenMinus:
			return IntValue(a - b)
		default:
			return IntValue(a * b)
		}
	}
	a, b := left.Float(), right.Float()
	switch op {
	case TokenPlus:
		return FloatValue(a + b)
	case TokenMinus:
		return FloatValue(a - b)
	default:
		return FloatValue(a * b)
	}
}

// equal compares numerics as floats and bools by value. Mixed types are unequal.
func equal(left, right Value) bool {
	switch {
	case left.IsNumeric() && right.IsNumeric():
		return left.Float() == right.Float()
	case left.Type() == TypeBool && right.Type() == TypeBool:
		return left.b == right.b
	default:
		return false
	}
}
