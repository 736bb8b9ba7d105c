package computor

import (
	"strconv"
	"strings"
)

// ============================================================
// Postfix to infix tokens
// ============================================================

// ToInfix turns a postfix sequence into fully parenthesised infix tokens.
// The outermost pair is dropped. Operators missing an operand are skipped.
func ToInfix(postfix []Token) []Token {
	var stack [][]Token
	for _, t := range postfix {
		if !t.IsOperator() {
			stack = append(stack, []Token{t})
			continue
		}
		if len(stack) < 2 {
			continue
		}
		l, r := stack[len(stack)-2], stack[len(stack)-1]
		stack = stack[:len(stack)-2]
		merged := make([]Token, 0, len(l)+len(r)+3)
		merged = append(merged, Op(KindLParen))
		merged = append(merged, l...)
		merged = append(merged, Op(t.Kind))
		merged = append(merged, r...)
		merged = append(merged, Op(KindRParen))
		stack = append(stack, merged)
	}
	var out []Token
	for _, s := range stack {
		out = append(out, s...)
	}
	if len(stack) == 1 && len(out) > 2 {
		out = out[1 : len(out)-1]
	}
	return out
}

// ============================================================
// Human-readable infix
// ============================================================

const precAtom = 5

// leafPrec is the binding strength of a rendered leaf: "3x" reads as a
// product, "x^2" as a power and "-3" as a negation.
func leafPrec(t Token) int {
	if t.Kind != KindMonomial {
		return precAtom
	}
	f := t.Mono.Fold()
	switch {
	case f.Coef < 0:
		return KindAdd.Precedence()
	case f.X == 0 && f.I == 0:
		return precAtom
	case f.Coef != 1 || (f.X != 0 && f.I != 0):
		return KindMul.Precedence()
	case f.X != 0 && f.X != 1:
		return KindPow.Precedence()
	}
	return precAtom
}

func nodePrec(n *Node) int {
	if n.IsLeaf() {
		return leafPrec(n.Token)
	}
	return n.Token.Kind.Precedence()
}

func associative(k Kind) bool { return k == KindAdd || k == KindMul }

// needsParens reports whether child must be bracketed under op.
func needsParens(op Kind, child *Node, right bool) bool {
	p, cp := op.Precedence(), nodePrec(child)
	if !right && op != KindPow && child.IsLeaf() {
		return false
	}
	if cp != p {
		return cp < p
	}
	if right {
		switch {
		case op == KindPow:
			return false
		case associative(op):
			return !child.IsLeaf() && child.Token.Kind != op
		}
		return true
	}
	return op == KindPow
}

// negatedTerm returns -n when n renders with a leading minus sign, so that
// a + (-b) can be shown as a - b.
func negatedTerm(n *Node) (*Node, bool) {
	switch {
	case n.Token.Kind == KindMonomial && n.Token.Mono.Fold().Coef < 0:
		return Leaf(monoToken(n.Token.Mono.Fold().neg())), true
	case n.Token.Kind == KindMul && n.Left.Token.Kind == KindMonomial && n.Left.Token.Mono.Fold().Coef < 0:
		f := n.Left.Token.Mono.Fold()
		if f == (Monomial{Coef: -1}) {
			return n.Right, true
		}
		return Binary(KindMul, Leaf(monoToken(f.neg())), n.Right), true
	}
	return nil, false
}

var infixOps = map[Kind]string{
	KindAdd:    " + ",
	KindSub:    " - ",
	KindMul:    " * ",
	KindMatMul: " ** ",
	KindDiv:    " / ",
	KindMod:    " % ",
	KindPow:    "^",
}

// String renders a tree as infix with the fewest parentheses that keep it
// parsing back to the same tree.
func String(n *Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	writeInfix(&sb, n)
	return sb.String()
}

func writeInfix(sb *strings.Builder, n *Node) {
	if n.IsLeaf() {
		sb.WriteString(n.Token.String())
		return
	}
	op, right := n.Token.Kind, n.Right
	if op == KindAdd {
		if neg, ok := negatedTerm(right); ok {
			op, right = KindSub, neg
		}
	}
	writeOperand(sb, op, n.Left, false)
	sb.WriteString(infixOps[op])
	writeOperand(sb, op, right, true)
}

func writeOperand(sb *strings.Builder, op Kind, child *Node, right bool) {
	if needsParens(op, child, right) {
		sb.WriteByte('(')
		writeInfix(sb, child)
		sb.WriteByte(')')
		return
	}
	writeInfix(sb, child)
}

// ============================================================
// LaTeX
// ============================================================

// LaTeX renders a tree for math display.
func LaTeX(n *Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	writeLaTeX(&sb, n)
	return sb.String()
}

func latexMonomial(m Monomial) string {
	f := m.Fold()
	if f.Coef == 0 {
		return "0"
	}
	var sb strings.Builder
	bare := f.X != 0 || f.I != 0
	switch {
	case bare && f.Coef == 1:
	case bare && f.Coef == -1:
		sb.WriteByte('-')
	default:
		sb.WriteString(formatFloat(f.Coef))
	}
	switch {
	case f.X == 1:
		sb.WriteString("x")
	case f.X != 0:
		sb.WriteString("x^{" + strconv.Itoa(f.X) + "}")
	}
	if f.I != 0 {
		sb.WriteString("i")
	}
	return sb.String()
}

func latexLeaf(t Token) string {
	switch t.Kind {
	case KindMonomial:
		return latexMonomial(t.Mono)
	case KindMatrix:
		var sb strings.Builder
		sb.WriteString(`\begin{bmatrix}`)
		for i, row := range t.Rows {
			if i > 0 {
				sb.WriteString(` \\ `)
			}
			for j, c := range row {
				if j > 0 {
					sb.WriteString(" & ")
				}
				sb.WriteString(latexLeaf(c))
			}
		}
		sb.WriteString(`\end{bmatrix}`)
		return sb.String()
	}
	return t.Name
}

func writeLaTeX(sb *strings.Builder, n *Node) {
	if n.IsLeaf() {
		sb.WriteString(latexLeaf(n.Token))
		return
	}
	op, right := n.Token.Kind, n.Right
	switch op {
	case KindDiv:
		sb.WriteString(`\frac{`)
		writeLaTeX(sb, n.Left)
		sb.WriteString("}{")
		writeLaTeX(sb, right)
		sb.WriteString("}")
		return
	case KindPow:
		writeLaTeXOperand(sb, op, n.Left, false)
		sb.WriteString("^{")
		writeLaTeX(sb, right)
		sb.WriteString("}")
		return
	case KindAdd:
		if neg, ok := negatedTerm(right); ok {
			op, right = KindSub, neg
		}
	}
	writeLaTeXOperand(sb, op, n.Left, false)
	switch op {
	case KindAdd:
		sb.WriteString(" + ")
	case KindSub:
		sb.WriteString(" - ")
	case KindMul:
		sb.WriteString(` \cdot `)
	case KindMatMul:
		sb.WriteString(` \times `)
	case KindMod:
		sb.WriteString(` \bmod `)
	}
	writeLaTeXOperand(sb, op, right, true)
}

func writeLaTeXOperand(sb *strings.Builder, op Kind, child *Node, right bool) {
	if needsParens(op, child, right) {
		sb.WriteString(`\left(`)
		writeLaTeX(sb, child)
		sb.WriteString(`\right)`)
		return
	}
	writeLaTeX(sb, child)
}
