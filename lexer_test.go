package computor_test

import (
	"errors"
	"testing"

	computor "github.com/njchilds90/computor"
)

// ============================================================
// Helpers
// ============================================================

func lexNorm(t *testing.T, line string) []computor.Token {
	t.Helper()
	ts, err := computor.Lex(line)
	if err != nil {
		t.Fatalf("Lex(%q): %v", line, err)
	}
	ts, err = computor.Normalize(ts)
	if err != nil {
		t.Fatalf("Normalize(%q): %v", line, err)
	}
	return ts
}

func postfix(t *testing.T, line string) []computor.Token {
	t.Helper()
	p, err := computor.ShuntingYard(lexNorm(t, line))
	if err != nil {
		t.Fatalf("ShuntingYard(%q): %v", line, err)
	}
	return p
}

func wantStage(t *testing.T, err error, stage computor.Stage, kind error) {
	t.Helper()
	if err == nil {
		t.Fatalf("want %s error %v, got nil", stage, kind)
	}
	if !errors.Is(err, kind) {
		t.Fatalf("want %v, got %v", kind, err)
	}
	var ce *computor.Error
	if !errors.As(err, &ce) {
		t.Fatalf("want *computor.Error, got %T", err)
	}
	if ce.Stage != stage {
		t.Errorf("want stage %s, got %s", stage, ce.Stage)
	}
}

// ============================================================
// Lexer tests
// ============================================================

func TestLex_ParenBalance(t *testing.T) {
	for _, line := range []string{"(", ")2+2", "(1+2))", "((1)"} {
		_, err := computor.Lex(line)
		wantStage(t, err, computor.StageLex, computor.ErrUnbalancedParens)
	}
	if _, err := computor.Lex("(1+2)"); err != nil {
		t.Errorf("want (1+2) to lex, got %v", err)
	}
}

func TestLex_Tokens(t *testing.T) {
	ts, err := computor.Lex("3.5 * x ^ 2 + abc")
	if err != nil {
		t.Fatal(err)
	}
	want := []computor.Token{
		computor.Num(3.5), computor.Op(computor.KindMul), computor.Sym("x"),
		computor.Op(computor.KindPow), computor.Num(2), computor.Op(computor.KindAdd),
		computor.Sym("abc"),
	}
	if !computor.TokensEqual(ts, want) {
		t.Errorf("want %s, got %s", computor.TokensString(want), computor.TokensString(ts))
	}
}

func TestLex_MatMulFold(t *testing.T) {
	ts, err := computor.Lex("a**b")
	if err != nil {
		t.Fatal(err)
	}
	if len(ts) != 3 || ts[1].Kind != computor.KindMatMul {
		t.Errorf("want a ** b, got %s", computor.TokensString(ts))
	}
	ts, err = computor.Lex("a* *b")
	if err != nil {
		t.Fatal(err)
	}
	if len(ts) != 4 {
		t.Errorf("separated stars must stay two Mul tokens, got %s", computor.TokensString(ts))
	}
}

func TestLex_Placeholder(t *testing.T) {
	ts, err := computor.Lex("x = 2 ?")
	if err != nil {
		t.Fatal(err)
	}
	if !ts[len(ts)-1].IsPlaceholder() {
		t.Errorf("want trailing placeholder, got %s", computor.TokensString(ts))
	}
}

func TestLex_DigitsThenLetters(t *testing.T) {
	ts, err := computor.Lex("2x")
	if err != nil {
		t.Fatal(err)
	}
	if len(ts) != 2 || ts[0].Kind != computor.KindMonomial || ts[1].Kind != computor.KindSymbol {
		t.Errorf("want number then symbol, got %s", computor.TokensString(ts))
	}
}

func TestLex_InvalidLiteral(t *testing.T) {
	_, err := computor.Lex("1.2.3 + 1")
	wantStage(t, err, computor.StageLex, computor.ErrInvalidLiteral)
}

func TestLex_InvalidIdentifier(t *testing.T) {
	for _, line := range []string{"3 $ 4", "a_b", "x#"} {
		_, err := computor.Lex(line)
		wantStage(t, err, computor.StageLex, computor.ErrInvalidIdentifier)
	}
}

// ============================================================
// Matrix literal tests
// ============================================================

func TestLex_Matrix(t *testing.T) {
	ts, err := computor.Lex("[[1 ,2  ,3   ];[ 1, 2,3 ]]")
	if err != nil {
		t.Fatal(err)
	}
	want := computor.MatOf([]float64{1, 2, 3}, []float64{1, 2, 3})
	if len(ts) != 1 || !ts[0].Equal(want) {
		t.Errorf("want %s, got %s", want, computor.TokensString(ts))
	}
	if r, c := ts[0].Dims(); r != 2 || c != 3 {
		t.Errorf("want 2x3, got %dx%d", r, c)
	}
}

func TestLex_MatrixSymbolCells(t *testing.T) {
	ts, err := computor.Lex("[[a, 1]; [2, i]]")
	if err != nil {
		t.Fatal(err)
	}
	if ts[0].Rows[0][0].Kind != computor.KindSymbol || ts[0].Rows[1][1].Name != "i" {
		t.Errorf("want symbol cells, got %s", ts[0])
	}
}

func TestLex_MatrixRejected(t *testing.T) {
	bad := []string{
		// ragged
		"[[1,2,3];[1,2]]",
		"[[1,2,3];[1,2,3, 4];[1,2, 3]]",
		"[[1,2,3];[];[2,3, 4];[1,2, 3]]",
		"[[1];[2];[3];[4];[]]]",
		"[[1];[2];[3];[4];[5, 6]]]",
		// separators
		"[[1,2,3];;[1,2, 3]]",
		"[;[1,2,3][1,2, 3]]",
		"[[1,2,3][1,2, 3];]",
		"[[2,3,4;][1,2, 3]]",
		"[[3,4,5][;1,2, 3]]",
		"[[1,2,3][1,2, 3]]",
		"[[1,2,3];[1,2,3][1,2, 3]]",
		"[[1,2,3],[2,3, 4],[1,2, 3]]",
		"[[1,2,3];[2;3, 4];[1,2, 3]]",
		"[[1,2,3];[2.3 . 4];[1,2, 3]]",
		"[[1,2,3];[2 \n 3 , 4];[1,2, 3]]",
		// depth
		"[[1,2,3];[[],2,3, 4];[1,2, 3]]",
		"[1,2,3]",
		// operators inside
		"[[1,2,3];[2,3 + 2, 4];[1,2, 3]]",
		"[[1,2,3];[2,3 ^ 2, 4];[1,2, 3]]",
		// empty
		"[]",
		"[[]]",
		"[[];[]]",
		"]",
		"[[1]",
	}
	for _, line := range bad {
		if _, err := computor.Lex(line); err == nil {
			t.Errorf("want %q rejected", line)
		}
	}
}

func TestLex_MatrixErrorKind(t *testing.T) {
	_, err := computor.Lex("[[1,2];[3]]")
	wantStage(t, err, computor.StageLex, computor.ErrInvalidMatrix)
}
