package computor

import (
	"errors"
	"fmt"
	"strings"
)

// Stage names the pipeline step that produced an Error.
type Stage string

const (
	StageLex       Stage = "lex"
	StageNormalize Stage = "normalize"
	StageParse     Stage = "parse"
	StageResolve   Stage = "resolve"
	StageBuild     Stage = "build"
	StageEval      Stage = "eval"
)

// Error kinds. Match them with errors.Is.
var (
	ErrUnbalancedParens          = errors.New("unbalanced parentheses")
	ErrInvalidIdentifier         = errors.New("invalid identifier")
	ErrInvalidLiteral            = errors.New("invalid literal")
	ErrInvalidMatrix             = errors.New("invalid matrix")
	ErrTooManyOperators          = errors.New("too many operators adjacent")
	ErrMissingOperand            = errors.New("missing operand")
	ErrUnexpectedPlaceholder     = errors.New("unexpected '?'")
	ErrUnknownVariable           = errors.New("unknown variable")
	ErrMissingFunctionArgument   = errors.New("missing function argument")
	ErrInvalidArgument           = errors.New("invalid argument")
	ErrCyclicDefinition          = errors.New("cyclic definition")
	ErrInvalidAssignment         = errors.New("invalid assignment")
	ErrInvalidMatrixCell         = errors.New("matrix cell does not reduce to a number")
	ErrUnexpectedStructuralToken = errors.New("unexpected structural token")
	ErrTrailingTokens            = errors.New("trailing tokens")
	ErrUnresolvedSymbol          = errors.New("unresolved symbol")
)

// Error is the single error type returned by every stage.
type Error struct {
	Stage    Stage
	Kind     error
	Fragment string

	// Suggestions holds close variable names for ErrUnknownVariable.
	Suggestions []string
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Stage))
	sb.WriteString(": ")
	sb.WriteString(e.Kind.Error())
	if e.Fragment != "" {
		fmt.Fprintf(&sb, " %q", e.Fragment)
	}
	if len(e.Suggestions) > 0 {
		sb.WriteString(" (did you mean ")
		sb.WriteString(strings.Join(e.Suggestions, ", "))
		sb.WriteString("?)")
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Kind }

func stageErr(stage Stage, kind error, fragment string) *Error {
	return &Error{Stage: stage, Kind: kind, Fragment: fragment}
}
