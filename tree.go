package computor

// ============================================================
// Node — binary expression tree
// ============================================================

// Node owns one token and, for operators, exactly two children. Leaves
// (symbols, monomials, matrices) have none.
type Node struct {
	Token       Token
	Left, Right *Node
}

func Leaf(t Token) *Node { return &Node{Token: t} }

// Binary builds an operator node.
func Binary(k Kind, left, right *Node) *Node {
	return &Node{Token: Op(k), Left: left, Right: right}
}

func (n *Node) IsLeaf() bool { return n.Token.IsLeaf() }

func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	return &Node{Token: n.Token, Left: n.Left.Clone(), Right: n.Right.Clone()}
}

// Equal compares trees structurally.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	return n.Token.Equal(o.Token) && n.Left.Equal(o.Left) && n.Right.Equal(o.Right)
}

// Leaves returns the leaf tokens in left-to-right order.
func (n *Node) Leaves() []Token {
	if n == nil {
		return nil
	}
	if n.IsLeaf() {
		return []Token{n.Token}
	}
	return append(n.Left.Leaves(), n.Right.Leaves()...)
}

// ============================================================
// Build / validate / flatten
// ============================================================

// BuildTree consumes a postfix sequence from its tail. The right operand is
// the most recently pushed one, so it is built first.
func BuildTree(postfix []Token) (*Node, error) {
	rest := postfix
	root, err := buildFromTail(&rest)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, stageErr(StageBuild, ErrTrailingTokens, TokensString(rest))
	}
	if err := root.Validate(); err != nil {
		return nil, err
	}
	return root, nil
}

func buildFromTail(ts *[]Token) (*Node, error) {
	if len(*ts) == 0 {
		return nil, stageErr(StageBuild, ErrMissingOperand, "")
	}
	t := (*ts)[len(*ts)-1]
	*ts = (*ts)[:len(*ts)-1]
	switch {
	case t.IsLeaf():
		return Leaf(t), nil
	case !t.IsOperator():
		return nil, stageErr(StageBuild, ErrUnexpectedStructuralToken, t.String())
	}
	right, err := buildFromTail(ts)
	if err != nil {
		return nil, err
	}
	left, err := buildFromTail(ts)
	if err != nil {
		return nil, err
	}
	return &Node{Token: t, Left: left, Right: right}, nil
}

// Validate checks the structural invariants: no parenthesis or Equal node,
// leaves are childless and operators have both children.
func (n *Node) Validate() error {
	if n == nil {
		return stageErr(StageBuild, ErrMissingOperand, "")
	}
	switch {
	case n.IsLeaf():
		if n.Left != nil || n.Right != nil {
			return stageErr(StageBuild, ErrTrailingTokens, n.Token.String())
		}
		return nil
	case !n.Token.IsOperator():
		return stageErr(StageBuild, ErrUnexpectedStructuralToken, n.Token.String())
	case n.Left == nil || n.Right == nil:
		return stageErr(StageBuild, ErrMissingOperand, n.Token.String())
	}
	if err := n.Left.Validate(); err != nil {
		return err
	}
	return n.Right.Validate()
}

// Flatten returns the postfix form of the tree.
func Flatten(n *Node) []Token {
	var out []Token
	var walk func(*Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		walk(n.Left)
		walk(n.Right)
		out = append(out, n.Token)
	}
	walk(n)
	return out
}
