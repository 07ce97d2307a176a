package expression

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tokens, err := Tokenize("index <= 2.5 && !(length != 3)")
	require.NoError(t, err)

	kinds := make([]TokenKind, 0, len(tokens))
	for _, tok := range tokens {
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal(t, []TokenKind{
		TokenVariable, TokenLE, TokenNumber, TokenAnd, TokenNot, TokenLParen,
		TokenVariable, TokenNE, TokenNumber, TokenRParen, TokenEOF,
	}, kinds)

	assert.Equal(t, 6, tokens[1].Pos)
	assert.Equal(t, FloatValue(2.5), tokens[2].Value)
	assert.Equal(t, IntValue(3), tokens[8].Value)
	assert.Equal(t, "length", tokens[6].Lexeme)
}

func TestTokenize_AllVariables(t *testing.T) {
	for _, name := range Variables {
		tokens, err := Tokenize(name)
		require.NoError(t, err, name)
		assert.Equal(t, TokenVariable, tokens[0].Kind)
		assert.Equal(t, name, tokens[0].Lexeme)
	}
}

func TestTokenize_Errors(t *testing.T) {
	tests := []struct {
		src     string
		wantPos int
		wantMsg string
	}{
		{src: "index = 0", wantPos: 6, wantMsg: "unexpected character '=' (did you mean '=='?) at position 6"},
		{src: "true & false", wantPos: 5, wantMsg: "unexpected character '&' (did you mean '&&'?) at position 5"},
		{src: "true | false", wantPos: 5, wantMsg: "unexpected character '|' (did you mean '||'?) at position 5"},
		{src: "foo > 1", wantPos: 0, wantMsg: "unknown identifier: foo at position 0"},
		{src: "index # 2", wantPos: 6, wantMsg: "unexpected character '#' at position 6"},
		{src: "1.", wantPos: 1, wantMsg: "unexpected character '.' at position 1"},
		{src: "99999999999999999999", wantPos: 0, wantMsg: "invalid number format: 99999999999999999999 at position 0"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := Tokenize(tt.src)

			var synErr *SyntaxError
			require.ErrorAs(t, err, &synErr)
			assert.Equal(t, tt.wantPos, synErr.Pos)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestParse_Precedence(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{src: "1 + 2 * 3", want: "(1 + (2 * 3))"},
		{src: "1 - 2 - 3", want: "((1 - 2) - 3)"},
		{src: "(1 + 2) * 3", want: "((1 + 2) * 3)"},
		{src: "!true == false", want: "(!true == false)"},
		{src: "!!true", want: "!!true"},
		{src: "index == 0 || index == length - 1", want: "((index == 0) || (index == (length - 1)))"},
		{src: "true || false && false", want: "(true || (false && false))"},
		{src: "1 < 2 == true", want: "((1 < 2) == true)"},
		{src: "true ? 1 : false ? 2 : 3", want: "(true ? 1 : (false ? 2 : 3))"},
		{src: "index % 2 == 0 ? similarity < 10.5 : true", want: "(((index % 2) == 0) ? (similarity < 10.5) : true)"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			node, err := Parse(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, node.String())
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		src     string
		wantPos int
	}{
		{src: "index ==", wantPos: 6},
		{src: "", wantPos: 0},
		{src: "   ", wantPos: 0},
		{src: "(index", wantPos: 6},
		{src: "index 1", wantPos: 6},
		{src: "true ? 1", wantPos: 8},
		{src: "1 + * 2", wantPos: 4},
		{src: ")", wantPos: 0},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := Parse(tt.src)

			var synErr *SyntaxError
			require.ErrorAs(t, err, &synErr)
			assert.Equal(t, tt.wantPos, synErr.Pos, err.Error())
		})
	}
}

func TestParse_TrailingOperatorMessage(t *testing.T) {
	_, err := Parse("index ==")

	require.Error(t, err)
	assert.Equal(t, "unexpected end of expression after '==' at position 6", err.Error())
}

func TestEvaluate(t *testing.T) {
	ctx := Context{
		Index:                 2,
		Length:                4,
		DeltaTime:             3.5,
		Similarity:            12.5,
		MaxGroupSimilarity:    20,
		MinDistanceToSelected: 100,
	}

	tests := []struct {
		src  string
		want Value
	}{
		{src: "2 + 3", want: IntValue(5)},
		{src: "2 - 5", want: IntValue(-3)},
		{src: "2 * 3", want: IntValue(6)},
		{src: "2 + 0.5", want: FloatValue(2.5)},
		{src: "1.5 * 2", want: FloatValue(3)},
		{src: "7 / 2", want: FloatValue(3.5)},
		{src: "6 / 3", want: FloatValue(2)},
		{src: "7 % 3", want: IntValue(1)},
		{src: "7.9 % 3", want: IntValue(1)},
		{src: "1 == 1.0", want: BoolValue(true)},
		{src: "true == true", want: BoolValue(true)},
		{src: "true == 1", want: BoolValue(false)},
		{src: "true != 1", want: BoolValue(true)},
		{src: "2 <= 2", want: BoolValue(true)},
		{src: "2 < 2", want: BoolValue(false)},
		{src: "3 > 2.5", want: BoolValue(true)},
		{src: "3 >= 3.0", want: BoolValue(true)},
		{src: "!false", want: BoolValue(true)},
		{src: "true ? 1 : 2", want: IntValue(1)},
		{src: "false ? 1 / 0 : 2", want: IntValue(2)},
		{src: "index", want: IntValue(2)},
		{src: "length - 1", want: IntValue(3)},
		{src: "deltaTime", want: FloatValue(3.5)},
		{src: "similarity", want: FloatValue(12.5)},
		{src: "maxGroupSimilarity", want: FloatValue(20)},
		{src: "minDistanceToSelected", want: FloatValue(100)},
		{src: "index == length - 2", want: BoolValue(true)},
		{src: "deltaTime < 5 && similarity <= 12.5", want: BoolValue(true)},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			node, err := Parse(tt.src)
			require.NoError(t, err)

			got, err := Evaluate(node, ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	tests := []struct {
		src      string
		wantErr  error
		wantType bool
	}{
		{src: "1 / 0", wantErr: ErrDivisionByZero},
		{src: "1 / 0.0", wantErr: ErrDivisionByZero},
		{src: "5 % 0", wantErr: ErrModuloByZero},
		{src: "5 % 0.5", wantErr: ErrModuloByZero},
		{src: "1 && true", wantType: true},
		{src: "true || 1", wantType: false, wantErr: nil},
		{src: "false || 1", wantType: true},
		{src: "!1", wantType: true},
		{src: "1 ? 2 : 3", wantType: true},
		{src: "true + 1", wantType: true},
		{src: "1 < true", wantType: true},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			node, err := Parse(tt.src)
			require.NoError(t, err)

			_, err = Evaluate(node, Context{})

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantType:
				var typeErr *TypeError
				assert.ErrorAs(t, err, &typeErr)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestEvaluate_ShortCircuit(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{src: "false && (1/0 == 0)", want: false},
		{src: "true || (1/0 == 0)", want: true},
		{src: "false && 1", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			node, err := Parse(tt.src)
			require.NoError(t, err)

			got, err := EvaluateBool(node, Context{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_RightOperandIsEvaluatedWhenNeeded(t *testing.T) {
	node, err := Parse("true && (1/0 == 0)")
	require.NoError(t, err)

	_, err = EvaluateBool(node, Context{})
	assert.True(t, errors.Is(err, ErrDivisionByZero))
}

func TestEvaluateBool_RequiresBool(t *testing.T) {
	node, err := Parse("1 + 1")
	require.NoError(t, err)

	_, err = EvaluateBool(node, Context{})

	var typeErr *TypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Contains(t, typeErr.Msg, "got int")
}

func TestEvaluate_TreeIsReusable(t *testing.T) {
	node, err := Parse("index == length - 1")
	require.NoError(t, err)

	var selected []int
	for i := range 4 {
		ok, err := EvaluateBool(node, Context{Index: i, Length: 4})
		require.NoError(t, err)
		if ok {
			selected = append(selected, i)
		}
	}
	assert.Equal(t, []int{3}, selected)
}

func TestValue_String(t *testing.T) {
	assert.Equal(t, "true", BoolValue(true).String())
	assert.Equal(t, "42", IntValue(42).String())
	assert.Equal(t, "2.5", FloatValue(2.5).String())
	assert.Equal(t, "<invalid>", Value{}.String())
	assert.Equal(t, "float", FloatValue(1).Type().String())
}
