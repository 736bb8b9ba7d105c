package computor

import "math"

// ============================================================
// Operator rules — partial binary operations
// ============================================================

// Apply reduces a op b to a single value. ok is false when the combination
// is not reducible; that is not an error, the caller keeps the subtree
// symbolic. Only monomials and matrices take part; symbols never reduce.
func Apply(op Kind, a, b Token) (Token, bool) {
	switch op {
	case KindAdd:
		return broadcast(addMono, a, b, false)
	case KindSub:
		return broadcast(subMono, a, b, false)
	case KindMul:
		return broadcast(mulMono, a, b, false)
	case KindDiv:
		return broadcast(divMono, a, b, true)
	case KindMod:
		return broadcast(modMono, a, b, true)
	case KindMatMul:
		return matMul(a, b)
	case KindPow:
		return pow(a, b)
	}
	return Token{}, false
}

type monoRule func(a, b Monomial) (Monomial, bool)

func monoToken(m Monomial) Token { return Token{Kind: KindMonomial, Mono: m} }

// broadcast lifts a monomial rule to matrices: matrix⊕matrix needs equal
// shapes, a scalar on the left must be a plain real, and a scalar on the
// right must be a plain real unless anyDivisor is set (÷ and %).
func broadcast(rule monoRule, a, b Token, anyDivisor bool) (Token, bool) {
	switch {
	case a.Kind == KindMonomial && b.Kind == KindMonomial:
		m, ok := rule(a.Mono, b.Mono)
		if !ok {
			return Token{}, false
		}
		return monoToken(m), true

	case a.Kind == KindMatrix && b.Kind == KindMatrix:
		ar, ac := a.Dims()
		br, bc := b.Dims()
		if ar != br || ac != bc {
			return Token{}, false
		}
		rows := make([][]Token, ar)
		for i := range rows {
			rows[i] = make([]Token, ac)
			for j := range rows[i] {
				v, ok := broadcast(rule, a.Rows[i][j], b.Rows[i][j], anyDivisor)
				if !ok || v.Kind != KindMonomial {
					return Token{}, false
				}
				rows[i][j] = v
			}
		}
		return Mat(rows), true

	case a.Kind == KindMatrix && b.Kind == KindMonomial:
		if !anyDivisor && !b.Mono.IsReal() {
			return Token{}, false
		}
		return a.mapCells(func(c Token) (Token, bool) {
			if c.Kind != KindMonomial {
				return Token{}, false
			}
			return broadcast(rule, c, b, anyDivisor)
		})

	case a.Kind == KindMonomial && b.Kind == KindMatrix:
		if !a.Mono.IsReal() {
			return Token{}, false
		}
		return b.mapCells(func(c Token) (Token, bool) {
			if c.Kind != KindMonomial {
				return Token{}, false
			}
			return broadcast(rule, a, c, anyDivisor)
		})
	}
	return Token{}, false
}

// addMono combines like terms: same power of x and same parity of the power
// of i. A zero operand yields the other one unchanged.
func addMono(a, b Monomial) (Monomial, bool) {
	fa, fb := a.Fold(), b.Fold()
	switch {
	case fa.X == fb.X && fa.I == fb.I:
		return checked(Monomial{Coef: fa.Coef + fb.Coef, X: fa.X, I: fa.I})
	case fa.Coef == 0:
		return fb, true
	case fb.Coef == 0:
		return fa, true
	}
	return Monomial{}, false
}

func subMono(a, b Monomial) (Monomial, bool) { return addMono(a, b.neg()) }

func mulMono(a, b Monomial) (Monomial, bool) {
	if a.Coef == 0 || b.Coef == 0 {
		return Monomial{}, true
	}
	return checked(Monomial{Coef: a.Coef * b.Coef, X: a.X + b.X, I: a.I + b.I})
}

// divMono: 0/0 is defined as 0, any other division by zero is not.
func divMono(a, b Monomial) (Monomial, bool) {
	if b.Coef == 0 {
		if a.Coef == 0 {
			return Monomial{}, true
		}
		return Monomial{}, false
	}
	if a.Coef == 0 {
		return Monomial{}, true
	}
	return checked(Monomial{Coef: a.Coef / b.Coef, X: a.X - b.X, I: a.I - b.I})
}

// modMono is the Euclidean remainder of two plain reals.
func modMono(a, b Monomial) (Monomial, bool) {
	if !a.IsReal() || !b.IsReal() {
		return Monomial{}, false
	}
	d := b.Real()
	if d == 0 {
		return Monomial{}, false
	}
	r := math.Mod(a.Real(), d)
	if r < 0 {
		r += math.Abs(d)
	}
	return Monomial{Coef: r}.Fold(), true
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// checked folds m and refuses overflowed coefficients.
func checked(m Monomial) (Monomial, bool) {
	if !finite(m.Coef) {
		return Monomial{}, false
	}
	return m.Fold(), true
}

// powMono raises base to a plain real exponent. Plain real bases take any
// exponent with a finite result; for bases carrying x or i the coefficient
// takes the exponent as is and both powers are multiplied by its rounded
// value.
func powMono(base, exp Monomial) (Monomial, bool) {
	if !exp.IsReal() {
		return Monomial{}, false
	}
	e := exp.Real()
	if e == 0 {
		if base.Coef == 0 {
			return Monomial{}, false
		}
		return Monomial{Coef: 1}, true
	}
	if base.IsReal() {
		v := math.Pow(base.Real(), e)
		if !finite(v) {
			return Monomial{}, false
		}
		return Monomial{Coef: v}.Fold(), true
	}
	if math.Abs(e) > math.MaxInt32 {
		return Monomial{}, false
	}
	if base.Coef == 0 {
		if e < 0 {
			return Monomial{}, false
		}
		return Monomial{}, true
	}
	// Powers of x and i take the exponent rounded to an integer.
	n := int(math.Round(e))
	fb := base.Fold()
	v := math.Pow(fb.Coef, e)
	if !finite(v) {
		return Monomial{}, false
	}
	return Monomial{Coef: v, X: fb.X * n, I: fb.I * n}.Fold(), true
}

// ============================================================
// Matrix products and powers
// ============================================================

// matMul is the row-by-column product; it needs cols(a) == rows(b) and
// every dot product must collapse to one monomial.
func matMul(a, b Token) (Token, bool) {
	if a.Kind != KindMatrix || b.Kind != KindMatrix {
		return Token{}, false
	}
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ac != br {
		return Token{}, false
	}
	rows := make([][]Token, ar)
	for i := 0; i < ar; i++ {
		rows[i] = make([]Token, bc)
		for j := 0; j < bc; j++ {
			acc := Monomial{}
			for k := 0; k < ac; k++ {
				x, y := a.Rows[i][k], b.Rows[k][j]
				if x.Kind != KindMonomial || y.Kind != KindMonomial {
					return Token{}, false
				}
				p, ok := mulMono(x.Mono, y.Mono)
				if !ok {
					return Token{}, false
				}
				s, ok := addMono(acc, p)
				if !ok {
					return Token{}, false
				}
				acc = s
			}
			rows[i][j] = monoToken(acc)
		}
	}
	return Mat(rows), true
}

func identity(n int) Token {
	rows := make([][]Token, n)
	for i := range rows {
		rows[i] = make([]Token, n)
		for j := range rows[i] {
			if i == j {
				rows[i][j] = Num(1)
			} else {
				rows[i][j] = Num(0)
			}
		}
	}
	return Mat(rows)
}

func pow(a, b Token) (Token, bool) {
	switch {
	case a.Kind == KindMonomial && b.Kind == KindMonomial:
		m, ok := powMono(a.Mono, b.Mono)
		if !ok {
			return Token{}, false
		}
		return monoToken(m), true

	case a.Kind == KindMonomial && b.Kind == KindMatrix:
		return b.mapCells(func(c Token) (Token, bool) {
			if c.Kind != KindMonomial {
				return Token{}, false
			}
			return pow(a, c)
		})

	case a.Kind == KindMatrix && b.Kind == KindMonomial:
		return matPow(a, b.Mono)
	}
	return Token{}, false
}

// matPow is repeated MatMul by squaring; the exponent must be a
// non-negative integer and the matrix square unless the exponent is 1.
func matPow(m Token, exp Monomial) (Token, bool) {
	if !exp.IsReal() {
		return Token{}, false
	}
	e := exp.Real()
	if e < 0 || e != math.Trunc(e) || e > math.MaxInt32 {
		return Token{}, false
	}
	n := int(e)
	if n == 1 {
		return m, true
	}
	r, c := m.Dims()
	if r != c {
		return Token{}, false
	}
	result := identity(r)
	base := m
	for n > 0 {
		var ok bool
		if n&1 == 1 {
			if result, ok = matMul(result, base); !ok {
				return Token{}, false
			}
		}
		n >>= 1
		if n > 0 {
			if base, ok = matMul(base, base); !ok {
				return Token{}, false
			}
		}
	}
	return result, true
}
