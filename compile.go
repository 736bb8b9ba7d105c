package computor

import "unicode"

// ============================================================
// Statements
// ============================================================

// StatementKind tells what a compiled line asks for.
type StatementKind uint8

const (
	// Calculus evaluates Lhs, or Lhs - (Rhs) when Rhs is set.
	Calculus StatementKind = iota
	// VarAssignment stores the reduced Body under Name.
	VarAssignment
	// FunAssignment stores Body under Name with Param bound.
	FunAssignment
)

func (k StatementKind) String() string {
	switch k {
	case VarAssignment:
		return "variable assignment"
	case FunAssignment:
		return "function assignment"
	}
	return "calculus"
}

// Statement is a compiled line. Token fields hold normalized infix.
type Statement struct {
	Kind  StatementKind
	Name  string
	Param string
	Body  []Token
	Lhs   []Token
	Rhs   []Token
}

// Compile lexes, normalizes and checks a line, then classifies it:
//
//	expr            calculus
//	expr ?          calculus
//	expr = ?        calculus
//	a = b ?         calculus of a - (b), reported as an equation
//	name = expr     variable assignment
//	f(p) = expr     function assignment
func Compile(line string) (*Statement, error) {
	ts, err := Lex(line)
	if err != nil {
		return nil, err
	}
	if ts, err = Normalize(ts); err != nil {
		return nil, err
	}
	if _, err = ShuntingYard(ts); err != nil {
		return nil, err
	}

	solve := false
	for i, t := range ts {
		if !t.IsPlaceholder() {
			continue
		}
		if i != len(ts)-1 {
			return nil, stageErr(StageParse, ErrUnexpectedPlaceholder, TokensString(ts[i:]))
		}
		solve = true
		ts = ts[:i]
	}

	eq := -1
	for i, t := range ts {
		if t.Kind != KindEqual {
			continue
		}
		if eq >= 0 {
			return nil, stageErr(StageParse, ErrInvalidAssignment, TokensString(ts[eq:]))
		}
		eq = i
	}

	if eq < 0 {
		if len(ts) == 0 {
			return nil, stageErr(StageParse, ErrMissingOperand, line)
		}
		return &Statement{Kind: Calculus, Lhs: ts}, nil
	}

	lhs, rhs := ts[:eq], ts[eq+1:]
	if len(lhs) == 0 {
		return nil, stageErr(StageParse, ErrMissingOperand, "=")
	}
	if solve {
		st := &Statement{Kind: Calculus, Lhs: lhs}
		if len(rhs) > 0 {
			st.Rhs = rhs
		}
		return st, nil
	}
	if len(rhs) == 0 {
		return nil, stageErr(StageParse, ErrMissingOperand, "=")
	}
	return assignment(lhs, rhs)
}

func assignment(lhs, rhs []Token) (*Statement, error) {
	switch {
	case len(lhs) == 1 && lhs[0].Kind == KindSymbol:
		name := normName(lhs[0].Name)
		if err := assignable(name); err != nil {
			return nil, err
		}
		return &Statement{Kind: VarAssignment, Name: name, Body: rhs}, nil

	case len(lhs) == 5 &&
		lhs[0].Kind == KindSymbol && lhs[1].Implicit() && lhs[2].Kind == KindLParen &&
		lhs[3].Kind == KindSymbol && lhs[4].Kind == KindRParen:
		name, param := normName(lhs[0].Name), normName(lhs[3].Name)
		if err := assignable(name); err != nil {
			return nil, err
		}
		if err := assignable(param); err != nil {
			return nil, err
		}
		if name == param {
			return nil, stageErr(StageParse, ErrInvalidAssignment, name+"("+param+")")
		}
		return &Statement{Kind: FunAssignment, Name: name, Param: param, Body: rhs}, nil
	}
	return nil, stageErr(StageParse, ErrInvalidAssignment, TokensString(lhs))
}

// assignable accepts plain letter identifiers other than the imaginary unit.
func assignable(name string) error {
	if name == "" || name == "i" {
		return stageErr(StageParse, ErrInvalidAssignment, name)
	}
	for _, r := range name {
		if !unicode.IsLetter(r) {
			return stageErr(StageParse, ErrInvalidAssignment, name)
		}
	}
	return nil
}
