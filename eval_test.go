package computor_test

import (
	"math"
	"testing"

	computor "github.com/njchilds90/computor"
)

func evalLine(t *testing.T, line string) *computor.Node {
	t.Helper()
	resolved, err := computor.Resolve(lexNorm(t, line), computor.VarTable{}, "")
	if err != nil {
		t.Fatalf("Resolve(%q): %v", line, err)
	}
	p, err := computor.ShuntingYard(resolved)
	if err != nil {
		t.Fatalf("ShuntingYard(%q): %v", line, err)
	}
	tree, err := computor.BuildTree(p)
	if err != nil {
		t.Fatalf("BuildTree(%q): %v", line, err)
	}
	out, err := computor.Evaluate(tree)
	if err != nil {
		t.Fatalf("Evaluate(%q): %v", line, err)
	}
	return out
}

// ============================================================
// Evaluator tests
// ============================================================

func TestEvaluate_Reduces(t *testing.T) {
	cases := []struct{ in, want string }{
		{"2 + 3 * 4", "14"},
		{"50 - 8", "42"},
		{"8 - 3 - 2", "3"},
		{"-2^2", "-4"},
		{"2^-1", "0.5"},
		{"2x + 3x", "5x"},
		{"x - x", "0"},
		{"i * i", "-1"},
		{"i^2 + 1", "0"},
		{"(x + 1) * (x - 1)", "x^2 - 1"},
		{"(x + 1)^2", "x^2 + 2x + 1"},
		{"(x + 2) * 3", "3x + 6"},
		{"(2x^2 + 4x) / 2", "x^2 + 2x"},
		{"x * x^(-1)", "1"},
		{"3 - (x - 2)", "-x + 5"},
		{"2 * [[1,2];[3,4]]", "[[2, 4]; [6, 8]]"},
		{"[[1,2];[3,4]] ** [[5,6];[7,8]]", "[[19, 22]; [43, 50]]"},
		{"[[1,2];[3,4]] + 1 + [[1,1];[1,1]]", "[[3, 4]; [5, 6]]"},
		{"7 % 4", "3"},
	}
	for _, c := range cases {
		if got := computor.String(evalLine(t, c.in)); got != c.want {
			t.Errorf("%s: want %s, got %s", c.in, c.want, got)
		}
	}
}

func TestEvaluate_StaysSymbolic(t *testing.T) {
	cases := []struct{ in, want string }{
		{"1 / 0", "1 / 0"},
		{"x + 1", "x + 1"},
		{"2 + i", "2 + i"},
		{"2^x", "2^x"},
	}
	for _, c := range cases {
		if got := computor.String(evalLine(t, c.in)); got != c.want {
			t.Errorf("%s: want %s, got %s", c.in, c.want, got)
		}
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	lines := []string{
		"(x + 1)^3 - x",
		"3x^2 + 2(x - 1) / 4",
		"(x + i) * (x - i)",
		"2^x * 3 + 1 / 0",
		"[[1,2];[3,4]] * x",
	}
	for _, line := range lines {
		once := evalLine(t, line)
		twice, err := computor.Evaluate(once)
		if err != nil {
			t.Fatalf("%s: %v", line, err)
		}
		if !once.Equal(twice) {
			t.Errorf("%s: want %s, got %s", line, computor.String(once), computor.String(twice))
		}
	}
}

func TestEvaluate_OrderIndependent(t *testing.T) {
	pairs := [][2]string{
		{"3 + 2 + 1", "1 + 2 + 3"},
		{"3x + 2 + x^2", "x^2 + 2 + 3x"},
		{"3 * 2 * x", "x * 2 * 3"},
		{"2i + 1 + x", "x + 1 + 2i"},
	}
	for _, p := range pairs {
		a, b := evalLine(t, p[0]), evalLine(t, p[1])
		if !a.Equal(b) {
			t.Errorf("want %s and %s to agree, got %s and %s", p[0], p[1], computor.String(a), computor.String(b))
		}
	}
}

func TestEvaluate_InputUntouched(t *testing.T) {
	resolved, err := computor.Resolve(lexNorm(t, "(x + 1) * (x - 1)"), computor.VarTable{}, "")
	if err != nil {
		t.Fatal(err)
	}
	p, err := computor.ShuntingYard(resolved)
	if err != nil {
		t.Fatal(err)
	}
	tree, err := computor.BuildTree(p)
	if err != nil {
		t.Fatal(err)
	}
	before := tree.Clone()
	if _, err := computor.Evaluate(tree); err != nil {
		t.Fatal(err)
	}
	if !tree.Equal(before) {
		t.Errorf("Evaluate must not modify its input")
	}
}

func TestEvaluate_UnresolvedSymbol(t *testing.T) {
	tree := computor.Binary(computor.KindAdd, computor.Leaf(computor.Sym("y")), computor.Leaf(computor.Num(1)))
	_, err := computor.Evaluate(tree)
	wantStage(t, err, computor.StageEval, computor.ErrUnresolvedSymbol)
}

func TestEvaluate_DistributionAborts(t *testing.T) {
	// x times a matrix never reduces, so the product is kept.
	out := evalLine(t, "([[1,2];[3,4]] + 1) * (x + 1)")
	if out.IsLeaf() {
		t.Fatalf("want symbolic product, got %s", computor.String(out))
	}
	if out.Token.Kind != computor.KindMul {
		t.Errorf("want a product at the root, got %s", computor.String(out))
	}
}

func TestEvaluate_LargePowerStaysCollected(t *testing.T) {
	out := evalLine(t, "(x^3 + x^2 + x + 1)^16")
	leaves := out.Leaves()
	if len(leaves) != 49 {
		t.Fatalf("want 49 terms, got %d", len(leaves))
	}
	if first := leaves[0].Mono; first != (computor.Monomial{Coef: 1, X: 48}) {
		t.Errorf("want x^48 first, got %v", first)
	}
	if last := leaves[48].Mono; last != (computor.Monomial{Coef: 1}) {
		t.Errorf("want 1 last, got %v", last)
	}
}

func TestEvaluate_OverflowStaysSymbolic(t *testing.T) {
	cases := []computor.Token{
		computor.Num(math.MaxFloat64),
		computor.Mono(math.MaxFloat64, 1, 0),
	}
	for _, c := range cases {
		tree := computor.Binary(computor.KindAdd, computor.Leaf(c), computor.Leaf(c))
		out, err := computor.Evaluate(tree)
		if err != nil {
			t.Fatal(err)
		}
		if out.Token.Kind != computor.KindAdd || len(out.Leaves()) != 2 {
			t.Errorf("want the overflowing sum kept, got %s", computor.String(out))
		}
	}
}
