package computor

import (
	"strconv"
	"strings"
	"unicode"
)

// ============================================================
// Lexer — text to tokens
// ============================================================

var operatorKinds = map[rune]Kind{
	'+': KindAdd,
	'-': KindSub,
	'*': KindMul,
	'/': KindDiv,
	'%': KindMod,
	'^': KindPow,
	'(': KindLParen,
	')': KindRParen,
	'=': KindEqual,
}

func isOperatorRune(r rune) bool {
	_, ok := operatorKinds[r]
	return ok || r == '?'
}

func isDigitRune(r rune) bool { return r >= '0' && r <= '9' }

// isNumberRune covers the characters grouped into a candidate literal.
func isNumberRune(r rune) bool { return isDigitRune(r) || r == '.' }

// Lex splits a line into tokens. Numbers become monomials, bracketed
// literals become matrices and runs of letters become symbols. Parenthesis
// balance is checked over the whole line before returning.
func Lex(line string) ([]Token, error) {
	src := []rune(line)
	out := make([]Token, 0, len(src)/2+1)
	for pos := 0; pos < len(src); {
		c := src[pos]
		switch {
		case unicode.IsSpace(c):
			pos++
		case c == '*' && pos+1 < len(src) && src[pos+1] == '*':
			out = append(out, Op(KindMatMul))
			pos += 2
		case c == '?':
			out = append(out, Placeholder())
			pos++
		case isOperatorRune(c):
			out = append(out, Op(operatorKinds[c]))
			pos++
		case c == '[':
			end := matchBracket(src, pos)
			if end < 0 {
				return nil, stageErr(StageLex, ErrInvalidMatrix, string(src[pos:]))
			}
			m, err := parseMatrix(string(src[pos:end]))
			if err != nil {
				return nil, err
			}
			out = append(out, m)
			pos = end
		case c == ']' || c == ';' || c == ',':
			return nil, stageErr(StageLex, ErrInvalidMatrix, string(c))
		case isNumberRune(c):
			start := pos
			for pos < len(src) && isNumberRune(src[pos]) {
				pos++
			}
			lit := string(src[start:pos])
			f, err := strconv.ParseFloat(lit, 64)
			if err != nil {
				return nil, stageErr(StageLex, ErrInvalidLiteral, lit)
			}
			out = append(out, Num(f))
		case unicode.IsLetter(c):
			start := pos
			for pos < len(src) && unicode.IsLetter(src[pos]) {
				pos++
			}
			out = append(out, Sym(string(src[start:pos])))
		default:
			start := pos
			for pos < len(src) && !unicode.IsSpace(src[pos]) && !isOperatorRune(src[pos]) {
				pos++
			}
			return nil, stageErr(StageLex, ErrInvalidIdentifier, string(src[start:pos]))
		}
	}
	if err := checkParens(out); err != nil {
		return nil, err
	}
	return out, nil
}

// checkParens requires the running depth to stay non-negative and end at 0.
func checkParens(ts []Token) error {
	depth := 0
	for _, t := range ts {
		switch t.Kind {
		case KindLParen:
			depth++
		case KindRParen:
			depth--
			if depth < 0 {
				return stageErr(StageLex, ErrUnbalancedParens, ")")
			}
		}
	}
	if depth != 0 {
		return stageErr(StageLex, ErrUnbalancedParens, "(")
	}
	return nil
}

// matchBracket returns the index just past the ']' closing src[start], or
// -1 when the brackets never balance.
func matchBracket(src []rune, start int) int {
	depth := 0
	for i := start; i < len(src); i++ {
		switch src[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}

// ============================================================
// Matrix literal — [[a, b, ...]; [c, d, ...]; ...]
// ============================================================

type matrixParser struct {
	src []rune
	pos int
}

func (p *matrixParser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *matrixParser) peek() rune {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *matrixParser) accept(r rune) bool {
	p.skipSpace()
	if p.peek() == r {
		p.pos++
		return true
	}
	return false
}

// parseMatrix accepts exactly depth-2 literals with rows separated by ';'
// and cells by ','. Cells are numbers or identifiers; every row must have
// the same, non-zero length.
func parseMatrix(text string) (Token, error) {
	fail := func() (Token, error) { return Token{}, stageErr(StageLex, ErrInvalidMatrix, text) }
	p := &matrixParser{src: []rune(text)}
	if !p.accept('[') {
		return fail()
	}
	var rows [][]Token
	for {
		row, ok := p.row()
		if !ok {
			return fail()
		}
		if len(rows) > 0 && len(row) != len(rows[0]) {
			return fail()
		}
		rows = append(rows, row)
		if p.accept(';') {
			continue
		}
		if p.accept(']') {
			break
		}
		return fail()
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return fail()
	}
	return Mat(rows), nil
}

func (p *matrixParser) row() ([]Token, bool) {
	if !p.accept('[') {
		return nil, false
	}
	var cells []Token
	for {
		cell, ok := p.cell()
		if !ok {
			return nil, false
		}
		cells = append(cells, cell)
		if p.accept(',') {
			continue
		}
		if p.accept(']') {
			return cells, true
		}
		return nil, false
	}
}

func (p *matrixParser) cell() (Token, bool) {
	start := p.pos
	for p.pos < len(p.src) {
		r := p.src[p.pos]
		if r == ',' || r == ']' {
			break
		}
		if r == '[' || r == ';' {
			return Token{}, false
		}
		p.pos++
	}
	text := strings.TrimSpace(string(p.src[start:p.pos]))
	if text == "" {
		return Token{}, false
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil && !strings.ContainsAny(text, "eEnNxXpP_") {
		return Num(f), true
	}
	for _, r := range text {
		if !unicode.IsLetter(r) {
			return Token{}, false
		}
	}
	return Sym(text), true
}
