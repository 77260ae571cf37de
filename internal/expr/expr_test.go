package expr

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	type testCase struct {
		input    string
		expected string
	}
	for _, tc := range []testCase{
		{input: "42", expected: "42"},
		{input: "150 * 1.2", expected: "180"},
		{input: "1 + 2 * 3", expected: "7"},
		{input: "(1 + 2) * 3", expected: "9"},
		{input: "10 - 4 - 3", expected: "3"},
		{input: "100 / 4 / 5", expected: "5"},
		{input: "-5 + 2", expected: "-3"},
		{input: "--5", expected: "5"},
		{input: "2 * -3", expected: "-6"},
		{input: "+.5 + 1.", expected: "1.5"},
		{input: "0.1 + 0.2", expected: "0.3"},
		{input: "  ( (1000 - 250) / 3 ) ", expected: "250"},
		{input: "7 / 2", expected: "3.5"},
	} {
		t.Run(tc.input, func(t *testing.T) {
			got, err := Evaluate(tc.input)
			require.NoError(t, err)
			require.True(t, decimal.RequireFromString(tc.expected).Equal(got), "got %s", got)
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	type testCase struct {
		input string
		pos   int
	}
	for _, tc := range []testCase{
		{input: "", pos: 0},
		{input: "   ", pos: 0},
		{input: "1 +", pos: 3},
		{input: "(1 + 2", pos: 0},
		{input: "1 + 2)", pos: 5},
		{input: "1 / 0", pos: 2},
		{input: "1 / (2 - 2)", pos: 2},
		{input: "2 ^ 3", pos: 2},
		{input: "abc", pos: 0},
		{input: "1.2.3", pos: 3},
		{input: ".", pos: 0},
		{input: "1 2", pos: 2},
	} {
		t.Run(tc.input, func(t *testing.T) {
			_, err := Evaluate(tc.input)
			require.Error(t, err)

			var exprErr Error
			require.ErrorAs(t, err, &exprErr)
			require.Equal(t, tc.pos, exprErr.Pos)
		})
	}

	t.Run("deep nesting", func(t *testing.T) {
		_, err := Evaluate(strings.Repeat("(", 1000) + "1" + strings.Repeat(")", 1000))
		require.ErrorContains(t, err, "nested too deeply")
	})
}
