package computor

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ============================================================
// Variable table
// ============================================================

// DefaultMaxDepth bounds nested substitution during resolution.
const DefaultMaxDepth = 64

// maxSuggestions caps the names offered for an unknown variable.
const maxSuggestions = 3

// Variable is a table entry. Constants have an empty Param. Body is a
// postfix sequence: reduced for constants, resolved but unreduced (the
// parameter still a symbol) for functions.
type Variable struct {
	Name  string
	Param string
	Body  []Token
}

func (v Variable) IsFunction() bool { return v.Param != "" }

// VarTable maps lower-cased names to entries.
type VarTable map[string]Variable

func normName(name string) string { return strings.ToLower(name) }

func (t VarTable) Lookup(name string) (Variable, bool) {
	v, ok := t[normName(name)]
	return v, ok
}

// Set stores v under its lower-cased name.
func (t VarTable) Set(v Variable) {
	v.Name = normName(v.Name)
	v.Param = normName(v.Param)
	t[v.Name] = v
}

// Names returns the table keys in sorted order.
func (t VarTable) Names() []string {
	names := make([]string, 0, len(t))
	for n := range t {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Clone returns a shallow copy; bodies are immutable and shared.
func (t VarTable) Clone() VarTable {
	out := make(VarTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// ============================================================
// Resolver
// ============================================================

// Resolve substitutes table entries, the imaginary unit and the free
// variable into an infix sequence. Symbols equal to bound are left in
// place. The result is infix and must go back through ShuntingYard.
func Resolve(ts []Token, table VarTable, bound string) ([]Token, error) {
	r := resolver{table: table, maxDepth: DefaultMaxDepth}
	return r.resolve(ts, normName(bound), 0)
}

type resolver struct {
	table    VarTable
	maxDepth int
}

func (r *resolver) resolve(ts []Token, bound string, depth int) ([]Token, error) {
	if depth > r.maxDepth {
		return nil, stageErr(StageResolve, ErrCyclicDefinition, TokensString(ts))
	}
	out := make([]Token, 0, len(ts))
	for pos := 0; pos < len(ts); pos++ {
		t := ts[pos]
		if t.Kind == KindMatrix {
			m, err := r.resolveMatrix(t, bound, depth)
			if err != nil {
				return nil, err
			}
			out = append(out, m)
			continue
		}
		if t.Kind != KindSymbol || t.IsPlaceholder() {
			out = append(out, t)
			continue
		}

		name := normName(t.Name)
		v, found := r.table[name]
		switch {
		case name == "i":
			out = append(out, Mono(1, 0, 1))

		case bound != "" && name == bound:
			out = append(out, Sym(name))

		case found && !v.IsFunction():
			body, err := r.resolve(ToInfix(v.Body), "", depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, group(body)...)

		case found:
			arg, next, err := argument(ts, pos+1, t.Name)
			if err != nil {
				return nil, err
			}
			call, err := r.call(v, arg, bound, depth)
			if err != nil {
				return nil, err
			}
			out = append(out, call...)
			pos = next - 1

		case name == "x":
			out = append(out, Mono(1, 1, 0))

		default:
			return nil, r.unknown(t.Name)
		}
	}
	return out, nil
}

// call resolves arg, substitutes it for every occurrence of the function's
// parameter and returns the parenthesised result.
func (r *resolver) call(f Variable, arg []Token, bound string, depth int) ([]Token, error) {
	resolvedArg, err := r.resolve(arg, bound, depth+1)
	if err != nil {
		return nil, err
	}
	body := ToInfix(f.Body)
	spliced := make([]Token, 0, len(body)+len(resolvedArg))
	for _, t := range body {
		if t.Kind == KindSymbol && normName(t.Name) == f.Param {
			spliced = append(spliced, group(resolvedArg)...)
			continue
		}
		spliced = append(spliced, t)
	}
	out, err := r.resolve(spliced, bound, depth+1)
	if err != nil {
		return nil, err
	}
	return group(out), nil
}

// argument returns the operand following a function symbol at ts[start]:
// one leaf or a balanced parenthesised group (without its parentheses).
// next is the index just past it. An implicit Mul between the name and the
// operand is skipped.
func argument(ts []Token, start int, fn string) (arg []Token, next int, err error) {
	if start < len(ts) && ts[start].Implicit() {
		start++
	}
	if start >= len(ts) {
		return nil, 0, stageErr(StageResolve, ErrMissingFunctionArgument, fn)
	}
	t := ts[start]
	switch {
	case t.Kind == KindEqual:
		return nil, 0, stageErr(StageResolve, ErrInvalidArgument, fn)
	case t.IsLeaf() && !t.IsPlaceholder():
		return ts[start : start+1], start + 1, nil
	case t.Kind != KindLParen:
		return nil, 0, stageErr(StageResolve, ErrMissingFunctionArgument, fn)
	}
	depth := 0
	for i := start; i < len(ts); i++ {
		switch ts[i].Kind {
		case KindLParen:
			depth++
		case KindRParen:
			depth--
			if depth == 0 {
				inner := ts[start+1 : i]
				if len(inner) == 0 {
					return nil, 0, stageErr(StageResolve, ErrMissingFunctionArgument, fn)
				}
				return inner, i + 1, nil
			}
		case KindEqual:
			return nil, 0, stageErr(StageResolve, ErrInvalidArgument, fn+"("+TokensString(ts[start+1:i+1]))
		}
	}
	return nil, 0, stageErr(StageResolve, ErrUnbalancedParens, "(")
}

// resolveMatrix reduces every symbolic cell to a single monomial.
func (r *resolver) resolveMatrix(m Token, bound string, depth int) (Token, error) {
	var cellErr error
	out, ok := m.mapCells(func(c Token) (Token, bool) {
		if c.Kind != KindSymbol {
			return c, true
		}
		v, err := r.cellValue(c, bound, depth)
		if err != nil {
			cellErr = err
			return Token{}, false
		}
		return v, true
	})
	if !ok {
		return Token{}, cellErr
	}
	return out, nil
}

func (r *resolver) cellValue(c Token, bound string, depth int) (Token, error) {
	infix, err := r.resolve([]Token{c}, bound, depth+1)
	if err != nil {
		return Token{}, err
	}
	postfix, err := ShuntingYard(infix)
	if err != nil {
		return Token{}, err
	}
	tree, err := BuildTree(postfix)
	if err != nil {
		return Token{}, err
	}
	reduced, err := Evaluate(tree)
	if err != nil {
		return Token{}, stageErr(StageResolve, ErrInvalidMatrixCell, c.Name)
	}
	if reduced.Token.Kind != KindMonomial {
		return Token{}, stageErr(StageResolve, ErrInvalidMatrixCell, c.Name)
	}
	return reduced.Token, nil
}

func (r *resolver) unknown(name string) error {
	e := stageErr(StageResolve, ErrUnknownVariable, name)
	ranks := fuzzy.RankFindFold(name, r.table.Names())
	sort.Sort(ranks)
	for i, rk := range ranks {
		if i == maxSuggestions {
			break
		}
		e.Suggestions = append(e.Suggestions, rk.Target)
	}
	return e
}

func group(ts []Token) []Token {
	out := make([]Token, 0, len(ts)+2)
	out = append(out, Op(KindLParen))
	out = append(out, ts...)
	return append(out, Op(KindRParen))
}
