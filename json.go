package computor

import (
	"encoding/json"
	"fmt"
)

// ============================================================
// JSON Serialization
// ============================================================

func tokenJSON(t Token) map[string]interface{} {
	switch t.Kind {
	case KindSymbol:
		return map[string]interface{}{"type": "symbol", "name": t.Name}
	case KindMonomial:
		f := t.Mono.Fold()
		return map[string]interface{}{"type": "monomial", "coef": f.Coef, "x": f.X, "i": f.I}
	case KindMatrix:
		rows := make([]interface{}, len(t.Rows))
		for i, row := range t.Rows {
			cells := make([]interface{}, len(row))
			for j, c := range row {
				cells[j] = tokenJSON(c)
			}
			rows[i] = cells
		}
		return map[string]interface{}{"type": "matrix", "rows": rows}
	}
	return map[string]interface{}{"type": "op", "op": t.Kind.String()}
}

func nodeJSON(n *Node) map[string]interface{} {
	m := tokenJSON(n.Token)
	if !n.IsLeaf() {
		m["left"] = nodeJSON(n.Left)
		m["right"] = nodeJSON(n.Right)
	}
	return m
}

// ToJSON encodes a tree; operator nodes carry "left" and "right".
func ToJSON(n *Node) (string, error) {
	if n == nil {
		return "", fmt.Errorf("nil tree")
	}
	b, err := json.Marshal(nodeJSON(n))
	return string(b), err
}

// TokensToJSON encodes a flat token sequence, typically a stored postfix
// body.
func TokensToJSON(ts []Token) ([]byte, error) {
	out := make([]interface{}, len(ts))
	for i, t := range ts {
		out[i] = tokenJSON(t)
	}
	return json.Marshal(out)
}

// TokensFromJSON decodes what TokensToJSON produced.
func TokensFromJSON(data []byte) ([]Token, error) {
	var raw []map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make([]Token, len(raw))
	for i, m := range raw {
		t, err := TokenFromJSON(m)
		if err != nil {
			return nil, fmt.Errorf("tokens[%d]: %w", i, err)
		}
		out[i] = t
	}
	return out, nil
}

var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = Kind(k)
	}
	return m
}()

// TokenFromJSON decodes one token object.
func TokenFromJSON(data map[string]interface{}) (Token, error) {
	if data == nil {
		return Token{}, fmt.Errorf("token must be an object")
	}
	typ, ok := data["type"].(string)
	if !ok || typ == "" {
		return Token{}, fmt.Errorf("field 'type' must be a non-empty string")
	}

	number := func(field string) (float64, error) {
		v, ok := data[field]
		if !ok {
			return 0, fmt.Errorf("%s: missing %q", typ, field)
		}
		n, ok := v.(float64)
		if !ok {
			return 0, fmt.Errorf("%s: %q must be a number", typ, field)
		}
		return n, nil
	}

	switch typ {
	case "symbol":
		name, ok := data["name"].(string)
		if !ok || name == "" {
			return Token{}, fmt.Errorf("symbol: 'name' must be a non-empty string")
		}
		return Sym(name), nil

	case "monomial":
		coef, err := number("coef")
		if err != nil {
			return Token{}, err
		}
		x, err := number("x")
		if err != nil {
			return Token{}, err
		}
		i, err := number("i")
		if err != nil {
			return Token{}, err
		}
		return Mono(coef, int(x), int(i)), nil

	case "matrix":
		rawRows, ok := data["rows"].([]interface{})
		if !ok || len(rawRows) == 0 {
			return Token{}, fmt.Errorf("matrix: 'rows' must be a non-empty array")
		}
		rows := make([][]Token, len(rawRows))
		for i, rr := range rawRows {
			cells, ok := rr.([]interface{})
			if !ok || len(cells) == 0 || (i > 0 && len(cells) != len(rows[0])) {
				return Token{}, fmt.Errorf("matrix: rows[%d] must be a non-empty array of the first row's length", i)
			}
			rows[i] = make([]Token, len(cells))
			for j, c := range cells {
				cm, ok := c.(map[string]interface{})
				if !ok {
					return Token{}, fmt.Errorf("matrix: rows[%d][%d] must be an object", i, j)
				}
				cell, err := TokenFromJSON(cm)
				if err != nil {
					return Token{}, fmt.Errorf("matrix: rows[%d][%d]: %w", i, j, err)
				}
				if cell.Kind != KindMonomial && cell.Kind != KindSymbol {
					return Token{}, fmt.Errorf("matrix: rows[%d][%d] must be a monomial or symbol", i, j)
				}
				rows[i][j] = cell
			}
		}
		return Mat(rows), nil

	case "op":
		name, _ := data["op"].(string)
		k, ok := kindByName[name]
		if !ok || k.IsLeaf() {
			return Token{}, fmt.Errorf("op: unknown operator %q", name)
		}
		return Op(k), nil
	}
	return Token{}, fmt.Errorf("unknown token type: %s", typ)
}

// NodeFromJSON decodes a tree produced by ToJSON.
func NodeFromJSON(data map[string]interface{}) (*Node, error) {
	t, err := TokenFromJSON(data)
	if err != nil {
		return nil, err
	}
	if t.IsLeaf() {
		return Leaf(t), nil
	}
	child := func(field string) (*Node, error) {
		m, ok := data[field].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an object", t.Kind, field)
		}
		n, err := NodeFromJSON(m)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", t.Kind, field, err)
		}
		return n, nil
	}
	left, err := child("left")
	if err != nil {
		return nil, err
	}
	right, err := child("right")
	if err != nil {
		return nil, err
	}
	n := &Node{Token: t, Left: left, Right: right}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return n, nil
}
