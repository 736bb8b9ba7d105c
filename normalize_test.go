package computor_test

import (
	"testing"

	computor "github.com/njchilds90/computor"
)

// ============================================================
// Unary minus tests
// ============================================================

func TestNormalize_UnaryMinus(t *testing.T) {
	cases := []struct{ in, want string }{
		{"-2^-3", "-1 * 2 ^ ( -1 * 3 )"},
		{"-x", "-1 * x"},
		{"1 - 2", "1 - 2"},
		{"1 - -2", "1 - -1 * 2"},
		{"2 * -x + 1", "2 * ( -1 * x ) + 1"},
		{"2^-3^2", "2 ^ ( -1 * 3 ^ 2 )"},
		{"2^-3x", "2 ^ ( -1 * 3 * x )"},
		{"(-3)", "( -1 * 3 )"},
		{"2 / -(1 + 1) * 4", "2 / ( -1 * ( 1 + 1 ) ) * 4"},
		{"x = -2", "x = -1 * 2"},
	}
	for _, c := range cases {
		got := computor.TokensString(lexNorm(t, c.in))
		if got != c.want {
			t.Errorf("%s: want %s, got %s", c.in, c.want, got)
		}
	}
}

func TestNormalize_TooManyOperators(t *testing.T) {
	for _, line := range []string{"1 + * 2", "2 * / 3", "1 - * 2"} {
		ts, err := computor.Lex(line)
		if err != nil {
			t.Fatal(err)
		}
		_, err = computor.Normalize(ts)
		wantStage(t, err, computor.StageNormalize, computor.ErrTooManyOperators)
	}
}

func TestNormalize_MissingOperand(t *testing.T) {
	for _, line := range []string{"1 +", "* 2", "()", "(1 +)", "-", "2 + = 3", "1 * ?"} {
		ts, err := computor.Lex(line)
		if err != nil {
			t.Fatal(err)
		}
		_, err = computor.Normalize(ts)
		wantStage(t, err, computor.StageNormalize, computor.ErrMissingOperand)
	}
}

// ============================================================
// Implicit multiplication tests
// ============================================================

func TestNormalize_ImplicitMul(t *testing.T) {
	cases := []struct{ in, want string }{
		{"2x", "2 * x"},
		{"3(x + 1)", "3 * ( x + 1 )"},
		{"(1)(2)", "( 1 ) * ( 2 )"},
		{"(x)2", "( x ) * 2"},
		{"2 [[1]]", "2 * [[1]]"},
		{"x ?", "x ?"},
		{"f(x)", "f * ( x )"},
	}
	for _, c := range cases {
		got := computor.TokensString(lexNorm(t, c.in))
		if got != c.want {
			t.Errorf("%s: want %s, got %s", c.in, c.want, got)
		}
	}
}

func TestNormalize_ImplicitFlag(t *testing.T) {
	ts := lexNorm(t, "2x * 3")
	if !ts[1].Implicit() {
		t.Errorf("inserted Mul must be flagged implicit")
	}
	if ts[3].Implicit() {
		t.Errorf("written Mul must not be flagged implicit")
	}
}

// ============================================================
// Shunting-yard tests
// ============================================================

func TestShuntingYard_Precedence(t *testing.T) {
	cases := []struct{ in, want string }{
		{"1+2*3", "1 2 3 * +"},
		{"(1+2)*3", "1 2 + 3 *"},
		{"2^3^2", "2 3 2 ^ ^"},
		{"8-3-2", "8 3 - 2 -"},
		{"8/4/2", "8 4 / 2 /"},
		{"1 + 2 % 3 ** 4", "1 2 3 % 4 ** +"},
		{"x = 2 + 3", "x = 2 3 +"},
		{"1 + 2 ?", "1 2 + ?"},
		{"1 + 2 = 3 * 4 ?", "1 2 + = 3 4 * ?"},
	}
	for _, c := range cases {
		got := computor.TokensString(postfix(t, c.in))
		if got != c.want {
			t.Errorf("%s: want %s, got %s", c.in, c.want, got)
		}
	}
}

func TestShuntingYard_Unbalanced(t *testing.T) {
	lp, rp := computor.Op(computor.KindLParen), computor.Op(computor.KindRParen)
	one, plus := computor.Num(1), computor.Op(computor.KindAdd)
	bad := [][]computor.Token{
		{lp, one, plus, one},
		{lp, one, plus, one, lp},
		{one, plus, one, rp},
		{lp, one, computor.Op(computor.KindEqual), one, rp},
	}
	for _, ts := range bad {
		_, err := computor.ShuntingYard(ts)
		wantStage(t, err, computor.StageParse, computor.ErrUnbalancedParens)
	}
}

func TestShuntingYard_Deterministic(t *testing.T) {
	a := postfix(t, "3x^2 + 2(x - 1) / 4")
	b := postfix(t, "3x^2 + 2(x - 1) / 4")
	if !computor.TokensEqual(a, b) {
		t.Errorf("want identical output, got %s and %s", computor.TokensString(a), computor.TokensString(b))
	}
}
