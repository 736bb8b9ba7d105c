package computor

// ============================================================
// Infix normalizer — unary minus and implicit multiplication
// ============================================================

// Normalize rewrites unary minus into multiplication by -1 and inserts the
// multiplications implied by juxtaposition ("2x", "3(x+1)", "(a)(b)").
func Normalize(ts []Token) ([]Token, error) {
	out, err := rewriteUnaryMinus(ts)
	if err != nil {
		return nil, err
	}
	return insertImplicitMul(out), nil
}

// negWrap is a parenthesis opened around the operand of a unary minus that
// follows a multiplicative or power operator. It closes when an operator
// that binds no tighter than prec shows up at the same nesting level.
type negWrap struct {
	level      int
	prec       int
	rightAssoc bool
}

func (w negWrap) closedBy(k Kind) bool {
	p := k.Precedence()
	return p < w.prec || (p == w.prec && !w.rightAssoc)
}

// operandExpected reports whether the next token must start an operand.
func operandExpected(out []Token) bool {
	if len(out) == 0 {
		return true
	}
	last := out[len(out)-1]
	return last.IsOperator() || last.Kind == KindLParen || last.Kind == KindEqual
}

func rewriteUnaryMinus(ts []Token) ([]Token, error) {
	out := make([]Token, 0, len(ts)+4)
	var wraps []negWrap
	level := 0

	closeWhile := func(keep func(negWrap) bool) {
		for len(wraps) > 0 && keep(wraps[len(wraps)-1]) {
			out = append(out, Op(KindRParen))
			wraps = wraps[:len(wraps)-1]
		}
	}
	all := func(negWrap) bool { return true }

	for idx, t := range ts {
		switch {
		case t.Kind == KindSub && operandExpected(out):
			if idx+1 >= len(ts) {
				return nil, stageErr(StageNormalize, ErrMissingOperand, t.String())
			}
			next := ts[idx+1]
			if next.IsOperator() && next.Kind != KindSub {
				return nil, stageErr(StageNormalize, ErrTooManyOperators, t.String()+next.String())
			}
			if next.Kind == KindRParen || next.Kind == KindEqual || next.IsPlaceholder() {
				return nil, stageErr(StageNormalize, ErrMissingOperand, t.String())
			}
			if len(out) > 0 {
				prev := out[len(out)-1]
				if prev.IsOperator() && prev.Kind.Precedence() >= KindMul.Precedence() {
					out = append(out, Op(KindLParen))
					wraps = append(wraps, negWrap{level: level, prec: prev.Kind.Precedence(), rightAssoc: prev.Kind.RightAssoc()})
				}
			}
			out = append(out, Num(-1), Op(KindMul))

		case t.IsOperator():
			if len(out) > 0 && out[len(out)-1].IsOperator() {
				return nil, stageErr(StageNormalize, ErrTooManyOperators, out[len(out)-1].String()+t.String())
			}
			if operandExpected(out) {
				return nil, stageErr(StageNormalize, ErrMissingOperand, t.String())
			}
			closeWhile(func(w negWrap) bool { return w.level == level && w.closedBy(t.Kind) })
			out = append(out, t)

		case t.Kind == KindLParen:
			level++
			out = append(out, t)

		case t.Kind == KindRParen:
			if operandExpected(out) {
				return nil, stageErr(StageNormalize, ErrMissingOperand, t.String())
			}
			closeWhile(func(w negWrap) bool { return w.level == level })
			level--
			out = append(out, t)

		case t.Kind == KindEqual || t.IsPlaceholder():
			if len(out) > 0 && out[len(out)-1].IsOperator() {
				return nil, stageErr(StageNormalize, ErrMissingOperand, out[len(out)-1].String())
			}
			closeWhile(all)
			out = append(out, t)

		default:
			out = append(out, t)
		}
	}
	if len(out) > 0 && out[len(out)-1].IsOperator() {
		return nil, stageErr(StageNormalize, ErrMissingOperand, out[len(out)-1].String())
	}
	closeWhile(all)
	return out, nil
}

func endsOperand(t Token) bool   { return t.IsLeaf() || t.Kind == KindRParen }
func startsOperand(t Token) bool { return t.IsLeaf() || t.Kind == KindLParen }

func insertImplicitMul(ts []Token) []Token {
	out := make([]Token, 0, len(ts)*2)
	for i, t := range ts {
		if i > 0 {
			prev := ts[i-1]
			if endsOperand(prev) && startsOperand(t) && !prev.IsPlaceholder() && !t.IsPlaceholder() {
				out = append(out, implicitMul())
			}
		}
		out = append(out, t)
	}
	return out
}
