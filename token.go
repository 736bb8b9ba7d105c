package computor

import (
	"math"
	"strconv"
	"strings"
)

// ============================================================
// Kind — token tag
// ============================================================

// Kind tags a Token. Leaves are Symbol, Monomial and Matrix; every other
// kind is either a binary operator or a structural token.
type Kind uint8

const (
	KindSymbol Kind = iota
	KindMonomial
	KindMatrix
	KindAdd
	KindSub
	KindMul
	KindMatMul
	KindMod
	KindPow
	KindDiv
	KindLParen
	KindRParen
	KindEqual
)

var kindNames = [...]string{
	KindSymbol:   "symbol",
	KindMonomial: "monomial",
	KindMatrix:   "matrix",
	KindAdd:      "+",
	KindSub:      "-",
	KindMul:      "*",
	KindMatMul:   "**",
	KindMod:      "%",
	KindPow:      "^",
	KindDiv:      "/",
	KindLParen:   "(",
	KindRParen:   ")",
	KindEqual:    "=",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// IsOperator reports whether k is one of the binary operators.
func (k Kind) IsOperator() bool { return k >= KindAdd && k <= KindDiv }

// IsLeaf reports whether k is an operand.
func (k Kind) IsLeaf() bool { return k <= KindMatrix }

// Precedence follows the shunting-yard table: parentheses 1, additive 2,
// multiplicative 3, power 4. Leaves and Equal have no precedence.
func (k Kind) Precedence() int {
	switch k {
	case KindLParen, KindRParen:
		return 1
	case KindAdd, KindSub:
		return 2
	case KindMul, KindDiv, KindMod, KindMatMul:
		return 3
	case KindPow:
		return 4
	}
	return 0
}

// RightAssoc is true only for Pow.
func (k Kind) RightAssoc() bool { return k == KindPow }

// ============================================================
// Monomial — c·x^X·i^I
// ============================================================

// Monomial is a single algebraic term Coef·x^X·i^I. X is an exact integer
// exponent; I is only meaningful modulo 4.
type Monomial struct {
	Coef float64
	X    int
	I    int
}

func emod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}

// iSign is the sign contributed by i^p: +1 for p ≡ 0,1 (mod 4), -1 otherwise.
func iSign(p int) float64 {
	if emod(p, 4) < 2 {
		return 1
	}
	return -1
}

// Fold moves the sign of i^I into the coefficient and stores I modulo 2.
// A zero coefficient folds to the canonical zero.
func (m Monomial) Fold() Monomial {
	if m.Coef == 0 {
		return Monomial{}
	}
	return Monomial{Coef: m.Coef * iSign(m.I), X: m.X, I: emod(m.I, 2)}
}

func (m Monomial) IsZero() bool { return m.Coef == 0 }

// IsReal reports whether m is a plain real number (no x, even power of i).
func (m Monomial) IsReal() bool { return m.X == 0 && emod(m.I, 2) == 0 }

// Real returns the signed real value of m; only meaningful when IsReal.
func (m Monomial) Real() float64 { return m.Coef * iSign(m.I) }

func (m Monomial) neg() Monomial { return Monomial{Coef: -m.Coef, X: m.X, I: m.I} }

// formatFloat never uses exponent notation: the lexer has no grammar for it.
func formatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// String renders m so that it lexes back to the same term, e.g. "-3x^2*i",
// "2i" or "x^(-1)".
func (m Monomial) String() string {
	f := m.Fold()
	if f.Coef == 0 {
		return "0"
	}
	var sb strings.Builder
	coef := f.Coef
	bare := f.X != 0 || f.I != 0
	switch {
	case bare && coef == 1:
	case bare && coef == -1:
		sb.WriteByte('-')
	default:
		sb.WriteString(formatFloat(coef))
	}
	if f.X != 0 {
		sb.WriteByte('x')
		switch {
		case f.X < 0:
			sb.WriteString("^(" + strconv.Itoa(f.X) + ")")
		case f.X != 1:
			sb.WriteByte('^')
			sb.WriteString(strconv.Itoa(f.X))
		}
	}
	if f.I != 0 {
		if f.X != 0 {
			sb.WriteByte('*')
		}
		sb.WriteByte('i')
	}
	return sb.String()
}

// ============================================================
// Token — tagged value flowing through every stage
// ============================================================

// Token is immutable once produced. Name is set for symbols, Mono for
// monomials and Rows for matrices.
type Token struct {
	Kind Kind
	Name string
	Mono Monomial
	Rows [][]Token

	// implicit marks a Mul inserted between juxtaposed operands; the
	// resolver uses it to recognise function application.
	implicit bool
}

// PlaceholderName marks "solve here".
const PlaceholderName = "?"

func Sym(name string) Token            { return Token{Kind: KindSymbol, Name: name} }
func Mono(coef float64, x, i int) Token { return Token{Kind: KindMonomial, Mono: Monomial{coef, x, i}} }
func Num(coef float64) Token            { return Mono(coef, 0, 0) }
func Op(k Kind) Token                   { return Token{Kind: k} }
func Placeholder() Token                { return Sym(PlaceholderName) }

// Mat builds a matrix token. The caller guarantees a rectangular shape.
func Mat(rows [][]Token) Token { return Token{Kind: KindMatrix, Rows: rows} }

// MatOf builds a matrix of plain real numbers.
func MatOf(rows ...[]float64) Token {
	out := make([][]Token, len(rows))
	for i, r := range rows {
		out[i] = make([]Token, len(r))
		for j, v := range r {
			out[i][j] = Num(v)
		}
	}
	return Mat(out)
}

func implicitMul() Token { return Token{Kind: KindMul, implicit: true} }

func (t Token) IsLeaf() bool        { return t.Kind.IsLeaf() }
func (t Token) IsOperator() bool    { return t.Kind.IsOperator() }
func (t Token) IsPlaceholder() bool { return t.Kind == KindSymbol && t.Name == PlaceholderName }

// Implicit reports whether t is a Mul inserted for juxtaposition.
func (t Token) Implicit() bool { return t.implicit }

// Dims returns the matrix shape, or 0,0 for non-matrices.
func (t Token) Dims() (rows, cols int) {
	if t.Kind != KindMatrix || len(t.Rows) == 0 {
		return 0, 0
	}
	return len(t.Rows), len(t.Rows[0])
}

// Equal compares tokens structurally. The implicit flag is ignored.
func (t Token) Equal(o Token) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindSymbol:
		return t.Name == o.Name
	case KindMonomial:
		return t.Mono.Fold() == o.Mono.Fold()
	case KindMatrix:
		if len(t.Rows) != len(o.Rows) {
			return false
		}
		for i := range t.Rows {
			if len(t.Rows[i]) != len(o.Rows[i]) {
				return false
			}
			for j := range t.Rows[i] {
				if !t.Rows[i][j].Equal(o.Rows[i][j]) {
					return false
				}
			}
		}
	}
	return true
}

// TokensEqual compares two sequences with Token.Equal.
func TokensEqual(a, b []Token) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func (t Token) String() string {
	switch t.Kind {
	case KindSymbol:
		return t.Name
	case KindMonomial:
		return t.Mono.String()
	case KindMatrix:
		var sb strings.Builder
		sb.WriteByte('[')
		for i, row := range t.Rows {
			if i > 0 {
				sb.WriteString("; ")
			}
			sb.WriteByte('[')
			for j, cell := range row {
				if j > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(cell.String())
			}
			sb.WriteByte(']')
		}
		sb.WriteByte(']')
		return sb.String()
	}
	return t.Kind.String()
}

// mapCells returns a matrix of the same shape with f applied to each cell.
// ok is false as soon as f fails.
func (t Token) mapCells(f func(Token) (Token, bool)) (Token, bool) {
	rows := make([][]Token, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = make([]Token, len(row))
		for j, cell := range row {
			v, ok := f(cell)
			if !ok {
				return Token{}, false
			}
			rows[i][j] = v
		}
	}
	return Mat(rows), true
}

// TokensString joins tokens with single spaces, for diagnostics.
func TokensString(ts []Token) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}
