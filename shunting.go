package computor

import (
	"github.com/ahrtr/gocontainer/stack"
	"github.com/edwingeng/deque"
)

// ============================================================
// Shunting-yard — infix to postfix
// ============================================================

// ShuntingYard converts normalized infix tokens to postfix. Equal and the
// "?" placeholder flush the operator stack and are emitted in place, so
// they delimit the sides of a statement in the output.
func ShuntingYard(ts []Token) ([]Token, error) {
	output := deque.NewDeque()
	ops := stack.New()

	flush := func() error {
		for !ops.IsEmpty() {
			top := ops.Pop().(Token)
			if top.Kind == KindLParen || top.Kind == KindRParen {
				return stageErr(StageParse, ErrUnbalancedParens, top.String())
			}
			output.PushBack(top)
		}
		return nil
	}

	for _, t := range ts {
		switch {
		case t.IsPlaceholder(), t.Kind == KindEqual:
			if err := flush(); err != nil {
				return nil, err
			}
			output.PushBack(t)
		case t.IsLeaf():
			output.PushBack(t)
		case t.Kind == KindLParen:
			ops.Push(t)
		case t.Kind == KindRParen:
			matched := false
			for !ops.IsEmpty() {
				top := ops.Pop().(Token)
				if top.Kind == KindLParen {
					matched = true
					break
				}
				output.PushBack(top)
			}
			if !matched {
				return nil, stageErr(StageParse, ErrUnbalancedParens, t.String())
			}
		default:
			p := t.Kind.Precedence()
			for !ops.IsEmpty() {
				top := ops.Peek().(Token)
				tp := top.Kind.Precedence()
				if tp > p || (tp == p && !t.Kind.RightAssoc()) {
					output.PushBack(ops.Pop())
					continue
				}
				break
			}
			ops.Push(t)
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	postfix := make([]Token, 0, output.Len())
	for !output.Empty() {
		postfix = append(postfix, output.PopFront().(Token))
	}
	return postfix, nil
}
