// Package computor is the compile-and-reduce core of an interactive
// algebraic calculator.
//
// A line goes through:
//   - Lex: text to tokens (numbers, matrices, symbols, operators)
//   - Normalize: unary minus and implicit multiplication
//   - ShuntingYard: infix to postfix
//   - Resolve: variables, functions, i and the free variable x
//   - BuildTree and Evaluate: constant folding, like-term collection and
//     distribution to a fixed point
//
// Values are monomials c·x^p·i^q over float64 and matrices of monomials.
// Combinations that do not reduce stay symbolic; they are not errors.
// Session ties the stages together and owns the variable table.
package computor

// Calc evaluates a single calculus line in a fresh session.
func Calc(line string) (string, error) {
	r, err := NewSession().Evaluate(line)
	if err != nil {
		return "", err
	}
	return r.String(), nil
}
