package computor_test

import (
	"testing"

	computor "github.com/njchilds90/computor"
)

func num(f float64) *computor.Node { return computor.Leaf(computor.Num(f)) }

var xLeaf = computor.Leaf(computor.Mono(1, 1, 0))

// ============================================================
// Renderer tests
// ============================================================

func TestString_Parens(t *testing.T) {
	cases := []struct {
		n    *computor.Node
		want string
	}{
		{computor.Binary(computor.KindSub, num(1), computor.Binary(computor.KindSub, num(2), num(3))), "1 - (2 - 3)"},
		{computor.Binary(computor.KindSub, computor.Binary(computor.KindSub, num(1), num(2)), num(3)), "1 - 2 - 3"},
		{computor.Binary(computor.KindMul, computor.Binary(computor.KindAdd, num(1), num(2)), num(3)), "(1 + 2) * 3"},
		{computor.Binary(computor.KindAdd, num(1), computor.Binary(computor.KindAdd, num(2), num(3))), "1 + 2 + 3"},
		{computor.Binary(computor.KindPow, num(2), computor.Binary(computor.KindPow, num(3), num(2))), "2^3^2"},
		{computor.Binary(computor.KindPow, computor.Binary(computor.KindPow, num(2), num(3)), num(2)), "(2^3)^2"},
		{computor.Binary(computor.KindPow, num(-2), num(2)), "(-2)^2"},
		{computor.Binary(computor.KindDiv, num(1), computor.Binary(computor.KindMul, num(2), xLeaf)), "1 / (2 * x)"},
		{computor.Binary(computor.KindAdd, xLeaf, num(-3)), "x - 3"},
		{computor.Binary(computor.KindAdd, xLeaf, computor.Binary(computor.KindMul, num(-1), computor.Leaf(computor.Sym("y")))), "x - y"},
		{computor.Binary(computor.KindMatMul, computor.Leaf(computor.MatOf([]float64{1, 2})), computor.Leaf(computor.MatOf([]float64{3}, []float64{4}))), "[[1, 2]] ** [[3]; [4]]"},
	}
	for _, c := range cases {
		if got := computor.String(c.n); got != c.want {
			t.Errorf("want %s, got %s", c.want, got)
		}
	}
}

func TestString_ReparsesToSameTree(t *testing.T) {
	lines := []string{
		"1 - (2 - 3)",
		"(1 + 2) * 3 / 4",
		"2^3^2",
		"(2^3)^2",
		"8 % (3 * y)",
		"2 * (y % 3)",
		"2 * (y / 0)",
		"[[1,2]] * ([[1,2]] ** [[1,2]])",
		"1 + (2 - 3)",
	}
	for _, line := range lines {
		tree, err := computor.BuildTree(postfix(t, line))
		if err != nil {
			t.Fatal(err)
		}
		again, err := computor.BuildTree(postfix(t, computor.String(tree)))
		if err != nil {
			t.Fatal(err)
		}
		if !tree.Equal(again) {
			t.Errorf("%s: rendered as %s", line, computor.String(tree))
		}
	}
}

func TestToInfix(t *testing.T) {
	got := computor.ToInfix(postfix(t, "1 + 2 * 3"))
	if s := computor.TokensString(got); s != "1 + ( 2 * 3 )" {
		t.Errorf("want 1 + ( 2 * 3 ), got %s", s)
	}
	single := computor.ToInfix([]computor.Token{computor.Num(7)})
	if s := computor.TokensString(single); s != "7" {
		t.Errorf("want 7, got %s", s)
	}
}

func TestLaTeX(t *testing.T) {
	cases := []struct {
		n    *computor.Node
		want string
	}{
		{computor.Binary(computor.KindDiv, num(1), num(2)), `\frac{1}{2}`},
		{computor.Binary(computor.KindPow, xLeaf, num(2)), `x^{2}`},
		{computor.Leaf(computor.Mono(3, 2, 0)), `3x^{2}`},
		{computor.Binary(computor.KindMul, computor.Binary(computor.KindAdd, xLeaf, num(1)), num(2)), `\left(x + 1\right) \cdot 2`},
		{computor.Leaf(computor.MatOf([]float64{1, 2}, []float64{3, 4})), `\begin{bmatrix}1 & 2 \\ 3 & 4\end{bmatrix}`},
	}
	for _, c := range cases {
		if got := computor.LaTeX(c.n); got != c.want {
			t.Errorf("want %s, got %s", c.want, got)
		}
	}
}
