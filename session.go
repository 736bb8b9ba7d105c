package computor

import (
	"context"
	"sort"
	"sync"

	"github.com/segmentio/fasthash/fnv1a"
	"golang.org/x/sync/errgroup"
)

// ============================================================
// Session — owns the variable table
// ============================================================

// compileCacheSize bounds the compiled-line cache; it is reset when full.
const compileCacheSize = 512

// Option configures a Session.
type Option func(*Session)

// WithMaxDepth bounds nested substitution; past it resolution fails with
// ErrCyclicDefinition.
func WithMaxDepth(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxDepth = n
		}
	}
}

// Session evaluates lines against its own variable table. Exec, Define and
// Clear must not run concurrently with anything else on the same Session;
// Evaluate and EvaluateBatch only read the table.
type Session struct {
	vars     VarTable
	maxDepth int

	mu    sync.Mutex
	cache map[uint64]cachedLine
}

type cachedLine struct {
	line string
	st   *Statement
}

func NewSession(opts ...Option) *Session {
	s := &Session{
		vars:     VarTable{},
		maxDepth: DefaultMaxDepth,
		cache:    make(map[uint64]cachedLine),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ResultKind tells how a Result should be displayed.
type ResultKind uint8

const (
	ResultValue ResultKind = iota
	ResultEquation
	ResultVariable
	ResultFunction
)

// Result is what Exec produced. For ResultEquation, Tree is the reduced
// left side of "Tree = 0". For ResultFunction, Tree is the body with the
// parameter replaced by x.
type Result struct {
	Kind  ResultKind
	Name  string
	Param string
	Tree  *Node
}

func (r *Result) String() string {
	if r.Kind == ResultEquation {
		return String(r.Tree) + " = 0"
	}
	return String(r.Tree)
}

func (s *Session) compile(line string) (*Statement, error) {
	key := fnv1a.HashString64(line)
	s.mu.Lock()
	c, ok := s.cache[key]
	s.mu.Unlock()
	if ok && c.line == line {
		return c.st, nil
	}
	st, err := Compile(line)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	if len(s.cache) >= compileCacheSize {
		s.cache = make(map[uint64]cachedLine)
	}
	s.cache[key] = cachedLine{line: line, st: st}
	s.mu.Unlock()
	return st, nil
}

func (s *Session) resolver() *resolver {
	return &resolver{table: s.vars, maxDepth: s.maxDepth}
}

// reduce runs an infix sequence through resolution, parsing, tree building
// and evaluation.
func (s *Session) reduce(infix []Token) (*Node, error) {
	resolved, err := s.resolver().resolve(infix, "", 0)
	if err != nil {
		return nil, err
	}
	postfix, err := ShuntingYard(resolved)
	if err != nil {
		return nil, err
	}
	tree, err := BuildTree(postfix)
	if err != nil {
		return nil, err
	}
	return Evaluate(tree)
}

func (s *Session) calculus(st *Statement) (*Result, error) {
	if len(st.Rhs) == 0 {
		tree, err := s.reduce(st.Lhs)
		if err != nil {
			return nil, err
		}
		return &Result{Kind: ResultValue, Tree: tree}, nil
	}
	diff := make([]Token, 0, len(st.Lhs)+len(st.Rhs)+3)
	diff = append(diff, st.Lhs...)
	diff = append(diff, Op(KindSub))
	diff = append(diff, group(st.Rhs)...)
	tree, err := s.reduce(diff)
	if err != nil {
		return nil, err
	}
	return &Result{Kind: ResultEquation, Tree: tree}, nil
}

// Exec runs one line. Assignments update the table only when the whole
// line succeeded.
func (s *Session) Exec(line string) (*Result, error) {
	st, err := s.compile(line)
	if err != nil {
		return nil, err
	}
	switch st.Kind {
	case VarAssignment:
		tree, err := s.reduce(st.Body)
		if err != nil {
			return nil, err
		}
		s.vars.Set(Variable{Name: st.Name, Body: Flatten(tree)})
		return &Result{Kind: ResultVariable, Name: st.Name, Tree: tree}, nil

	case FunAssignment:
		resolved, err := s.resolver().resolve(st.Body, st.Param, 0)
		if err != nil {
			return nil, err
		}
		postfix, err := ShuntingYard(resolved)
		if err != nil {
			return nil, err
		}
		v := Variable{Name: st.Name, Param: st.Param, Body: postfix}
		display, err := functionDisplay(v)
		if err != nil {
			return nil, err
		}
		s.vars.Set(v)
		return &Result{Kind: ResultFunction, Name: st.Name, Param: st.Param, Tree: display}, nil
	}
	return s.calculus(st)
}

// functionDisplay substitutes the free variable for the parameter and
// reduces the body.
func functionDisplay(v Variable) (*Node, error) {
	body := make([]Token, len(v.Body))
	for i, t := range v.Body {
		if t.Kind == KindSymbol && normName(t.Name) == v.Param {
			t = Mono(1, 1, 0)
		}
		body[i] = t
	}
	tree, err := BuildTree(body)
	if err != nil {
		return nil, err
	}
	return Evaluate(tree)
}

// Evaluate reduces a calculus line without touching the table.
// Assignments are rejected with ErrInvalidAssignment.
func (s *Session) Evaluate(line string) (*Result, error) {
	st, err := s.compile(line)
	if err != nil {
		return nil, err
	}
	if st.Kind != Calculus {
		return nil, stageErr(StageParse, ErrInvalidAssignment, st.Name)
	}
	return s.calculus(st)
}

// EvaluateBatch evaluates lines concurrently. Results keep the input
// order; the first failure cancels the rest and is returned.
func (s *Session) EvaluateBatch(ctx context.Context, lines []string) ([]*Result, error) {
	results := make([]*Result, len(lines))
	g, ctx := errgroup.WithContext(ctx)
	for i, line := range lines {
		i, line := i, line
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := s.Evaluate(line)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ============================================================
// Table access
// ============================================================

// Lookup returns the entry stored under name, case-insensitively.
func (s *Session) Lookup(name string) (Variable, bool) { return s.vars.Lookup(name) }

// Variables returns every entry sorted by name.
func (s *Session) Variables() []Variable {
	out := make([]Variable, 0, len(s.vars))
	for _, name := range s.vars.Names() {
		out = append(out, s.vars[name])
	}
	return out
}

// Define stores an entry after checking that its body resolves against
// the current table. Bodies that still contain other names are resolved
// again on every use.
func (s *Session) Define(v Variable) error {
	name := normName(v.Name)
	if err := assignable(name); err != nil {
		return err
	}
	param := normName(v.Param)
	if param != "" {
		if err := assignable(param); err != nil {
			return err
		}
	}
	resolved, err := s.resolver().resolve(ToInfix(v.Body), param, 0)
	if err != nil {
		return err
	}
	postfix, err := ShuntingYard(resolved)
	if err != nil {
		return err
	}
	if _, err := BuildTree(postfix); err != nil {
		return err
	}
	s.vars.Set(v)
	return nil
}

// Clear removes the named entries, or every entry when names is empty.
// It returns the removed names, sorted.
func (s *Session) Clear(names ...string) []string {
	var removed []string
	if len(names) == 0 {
		removed = s.vars.Names()
		s.vars = VarTable{}
		return removed
	}
	for _, n := range names {
		key := normName(n)
		if _, ok := s.vars[key]; ok {
			delete(s.vars, key)
			removed = append(removed, key)
		}
	}
	sort.Strings(removed)
	return removed
}

// Display returns the reduced form of an entry: its value for constants,
// its body in x for functions.
func Display(v Variable) (*Node, error) {
	if v.IsFunction() {
		return functionDisplay(v)
	}
	tree, err := BuildTree(v.Body)
	if err != nil {
		return nil, err
	}
	return tree, nil
}

// ============================================================
// Classification
// ============================================================

// Category groups entries the way /list shows them.
type Category uint8

const (
	CategoryReal Category = iota
	CategoryImaginary
	CategoryMatrix
	CategoryFunction
)

var categoryNames = [...]string{
	CategoryReal:      "real",
	CategoryImaginary: "imaginary",
	CategoryMatrix:    "matrix",
	CategoryFunction:  "function",
}

func (c Category) String() string { return categoryNames[c] }

// ParseCategory accepts the singular and plural names.
func ParseCategory(s string) (Category, bool) {
	for i, name := range categoryNames {
		if s == name || s == name+"s" {
			return Category(i), true
		}
	}
	return 0, false
}

// Classify returns the category of an entry. Constants whose body holds a
// term with an odd power of i are imaginary.
func Classify(v Variable) Category {
	if v.IsFunction() {
		return CategoryFunction
	}
	if len(v.Body) == 1 && v.Body[0].Kind == KindMatrix {
		return CategoryMatrix
	}
	for _, t := range v.Body {
		if t.Kind == KindMonomial && t.Mono.Fold().I != 0 {
			return CategoryImaginary
		}
	}
	return CategoryReal
}
