package computor

import "sort"

// ============================================================
// Evaluator — reduce a tree to a fixed point
// ============================================================

// maxPasses bounds the outer loop; every pass either changes the tree or
// ends it, so this is never reached on well-formed trees.
const maxPasses = 256

// maxExpandPower bounds (sum)^n expansion.
const maxExpandPower = 16

// maxDistributeTerms bounds the pairwise products of one distribution.
const maxDistributeTerms = 1 << 16

// Evaluate returns a new reduced tree; root is left untouched. Each pass
// eliminates subtraction, folds constants, collects like terms and
// distributes products over sums, until a pass changes nothing.
func Evaluate(root *Node) (*Node, error) {
	if err := root.Validate(); err != nil {
		return nil, err
	}
	n := root.Clone()
	prev := Flatten(n)
	for pass := 0; pass < maxPasses; pass++ {
		n = eliminateMinus(n)
		var err error
		if n, err = reduce(n); err != nil {
			return nil, err
		}
		n = collect(n)
		n = distribute(n)
		cur := Flatten(n)
		if TokensEqual(cur, prev) {
			break
		}
		prev = cur
	}
	return n, nil
}

// ============================================================
// Minus elimination
// ============================================================

func eliminateMinus(n *Node) *Node {
	if n.IsLeaf() {
		return n
	}
	n.Left = eliminateMinus(n.Left)
	n.Right = eliminateMinus(n.Right)
	if n.Token.Kind == KindSub {
		return Binary(KindAdd, n.Left, negate(n.Right))
	}
	return n
}

// negate pushes a sign change into n: through both sides of a sum, into the
// left factor of a product or quotient, and onto leaf coefficients. Other
// shapes get an explicit -1 factor.
func negate(n *Node) *Node {
	switch n.Token.Kind {
	case KindMonomial:
		return Leaf(monoToken(n.Token.Mono.neg()))
	case KindMatrix:
		m, ok := n.Token.mapCells(func(c Token) (Token, bool) {
			if c.Kind != KindMonomial {
				return Token{}, false
			}
			return monoToken(c.Mono.neg()), true
		})
		if ok {
			return Leaf(m)
		}
	case KindAdd:
		return Binary(KindAdd, negate(n.Left), negate(n.Right))
	case KindMul, KindDiv, KindMatMul:
		return &Node{Token: n.Token, Left: negate(n.Left), Right: n.Right}
	}
	return Binary(KindMul, Leaf(Num(-1)), n)
}

// ============================================================
// Constant folding
// ============================================================

func reduce(n *Node) (*Node, error) {
	if n.IsLeaf() {
		if err := checkResolved(n.Token); err != nil {
			return nil, err
		}
		return n, nil
	}
	l, err := reduce(n.Left)
	if err != nil {
		return nil, err
	}
	r, err := reduce(n.Right)
	if err != nil {
		return nil, err
	}
	n.Left, n.Right = l, r
	if l.IsLeaf() && r.IsLeaf() {
		if v, ok := Apply(n.Token.Kind, l.Token, r.Token); ok {
			return Leaf(v), nil
		}
	}
	return n, nil
}

func checkResolved(t Token) error {
	switch t.Kind {
	case KindSymbol:
		return stageErr(StageEval, ErrUnresolvedSymbol, t.Name)
	case KindMatrix:
		for _, row := range t.Rows {
			for _, c := range row {
				if c.Kind != KindMonomial {
					return stageErr(StageEval, ErrUnresolvedSymbol, c.String())
				}
			}
		}
	}
	return nil
}

// ============================================================
// Like-term collection
// ============================================================

// gatherRun returns the operands of the maximal run of k nodes rooted at n,
// left to right.
func gatherRun(n *Node, k Kind) []*Node {
	if n.Token.Kind != k {
		return []*Node{n}
	}
	return append(gatherRun(n.Left, k), gatherRun(n.Right, k)...)
}

func leftLean(k Kind, terms []*Node) *Node {
	acc := terms[0]
	for _, t := range terms[1:] {
		acc = Binary(k, acc, t)
	}
	return acc
}

func collect(n *Node) *Node {
	if n.IsLeaf() {
		return n
	}
	switch k := n.Token.Kind; k {
	case KindAdd, KindMul:
		operands := gatherRun(n, k)
		for i, op := range operands {
			operands[i] = collect(op)
		}
		if k == KindAdd {
			return collectSum(operands)
		}
		return collectProduct(operands)
	}
	n.Left = collect(n.Left)
	n.Right = collect(n.Right)
	return n
}

type termClass struct{ x, i int }

// collectSum groups monomials by (power of x, parity of i) and orders them
// by descending power of x, so the result does not depend on input order.
func collectSum(operands []*Node) *Node {
	sums := map[termClass]Monomial{}
	var mats []Token
	var others []*Node
	for _, op := range operands {
		switch op.Token.Kind {
		case KindMonomial:
			f := op.Token.Mono.Fold()
			c := termClass{f.X, f.I}
			if acc, ok := sums[c]; ok {
				sum, ok := addMono(acc, f)
				if !ok {
					others = append(others, Leaf(monoToken(f)))
					continue
				}
				f = sum
			}
			sums[c] = f
		case KindMatrix:
			mats = foldInto(KindAdd, mats, op.Token)
		default:
			others = append(others, op)
		}
	}

	classes := make([]termClass, 0, len(sums))
	for c, m := range sums {
		if !m.IsZero() {
			classes = append(classes, c)
		}
	}
	sort.Slice(classes, func(a, b int) bool {
		if classes[a].x != classes[b].x {
			return classes[a].x > classes[b].x
		}
		return classes[a].i < classes[b].i
	})

	var terms []*Node
	for _, c := range classes {
		m := sums[c]
		if len(mats) > 0 && m.IsReal() {
			if v, ok := Apply(KindAdd, mats[0], monoToken(m)); ok {
				mats[0] = v
				continue
			}
		}
		terms = append(terms, Leaf(monoToken(m)))
	}
	for _, m := range mats {
		terms = append(terms, Leaf(m))
	}
	terms = append(terms, others...)
	if len(terms) == 0 {
		return Leaf(Num(0))
	}
	return leftLean(KindAdd, terms)
}

// collectProduct multiplies every monomial together (always defined),
// merges same-shape matrices and keeps the rest in order.
func collectProduct(operands []*Node) *Node {
	product := Monomial{Coef: 1}
	var mats []Token
	var others []*Node
	for _, op := range operands {
		switch op.Token.Kind {
		case KindMonomial:
			if p, ok := mulMono(product, op.Token.Mono); ok {
				product = p
			} else {
				others = append(others, op)
			}
		case KindMatrix:
			mats = foldInto(KindMul, mats, op.Token)
		default:
			others = append(others, op)
		}
	}
	if product.IsZero() && len(mats) == 0 {
		return Leaf(Num(0))
	}

	var terms []*Node
	keepProduct := true
	if len(mats) > 0 {
		if v, ok := Apply(KindMul, monoToken(product), mats[0]); ok {
			mats[0] = v
			keepProduct = false
		}
	}
	if keepProduct && (product != Monomial{Coef: 1} || len(mats)+len(others) == 0) {
		terms = append(terms, Leaf(monoToken(product)))
	}
	for _, m := range mats {
		terms = append(terms, Leaf(m))
	}
	terms = append(terms, others...)
	return leftLean(KindMul, terms)
}

// foldInto combines m with the first matrix it reduces with, or appends it.
func foldInto(k Kind, mats []Token, m Token) []Token {
	for i, existing := range mats {
		if v, ok := Apply(k, existing, m); ok {
			mats[i] = v
			return mats
		}
	}
	return append(mats, m)
}

// ============================================================
// Distribution
// ============================================================

// isSum reports whether n is built only from additions and leaves.
func isSum(n *Node) bool {
	if n.IsLeaf() {
		return true
	}
	return n.Token.Kind == KindAdd && isSum(n.Left) && isSum(n.Right)
}

func distribute(n *Node) *Node {
	if n.IsLeaf() {
		return n
	}
	n.Left = distribute(n.Left)
	n.Right = distribute(n.Right)
	switch n.Token.Kind {
	case KindMul:
		if d := distributeProduct(n); d != nil {
			return d
		}
	case KindDiv:
		if d := distributeQuotient(n); d != nil {
			return d
		}
	case KindPow:
		if d := expandPower(n); d != nil {
			return d
		}
	}
	return n
}

// distributeProduct expands (a+b)*(c+d) into ac+ad+bc+bd and collects the
// result, so a chain of products stays at one term per class. It gives up,
// and returns nil, if any pairwise product does not reduce.
func distributeProduct(n *Node) *Node {
	l, r := n.Left, n.Right
	if !isSum(l) || !isSum(r) || (l.IsLeaf() && r.IsLeaf()) {
		return nil
	}
	ls, rs := l.Leaves(), r.Leaves()
	if len(ls)*len(rs) > maxDistributeTerms {
		return nil
	}
	products := make([]*Node, 0, len(ls)*len(rs))
	for _, a := range ls {
		for _, b := range rs {
			v, ok := Apply(KindMul, a, b)
			if !ok {
				return nil
			}
			products = append(products, Leaf(v))
		}
	}
	return collectSum(products)
}

// distributeQuotient splits (a+b)/c into a/c + b/c when every term divides.
func distributeQuotient(n *Node) *Node {
	if n.Left.IsLeaf() || !isSum(n.Left) || !n.Right.IsLeaf() {
		return nil
	}
	terms := n.Left.Leaves()
	out := make([]*Node, len(terms))
	for i, t := range terms {
		v, ok := Apply(KindDiv, t, n.Right.Token)
		if !ok {
			return nil
		}
		out[i] = Leaf(v)
	}
	return leftLean(KindAdd, out)
}

// expandPower rewrites (sum of monomials)^n, 2 <= n <= maxExpandPower, as a
// product chain that distribution then expands.
func expandPower(n *Node) *Node {
	base, exp := n.Left, n.Right
	if base.IsLeaf() || !isSum(base) || exp.Token.Kind != KindMonomial {
		return nil
	}
	for _, t := range base.Leaves() {
		if t.Kind != KindMonomial {
			return nil
		}
	}
	e := exp.Token.Mono
	if !e.IsReal() {
		return nil
	}
	p := e.Real()
	if p != float64(int(p)) || p < 2 || p > maxExpandPower {
		return nil
	}
	factors := make([]*Node, int(p))
	for i := range factors {
		factors[i] = base.Clone()
	}
	return leftLean(KindMul, factors)
}
