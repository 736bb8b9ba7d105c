package computor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// ============================================================
// MCP Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// HandleToolCall dispatches one tool request against the session. Tools
// that change the table ("exec", "clear") must be serialised by the
// caller.
func (s *Session) HandleToolCall(ctx context.Context, req ToolRequest) ToolResponse {
	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", fmt.Errorf("missing param: %s", key)
		}
		str, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("param %s must be a string", key)
		}
		return str, nil
	}
	getStrings := func(key string, optional bool) ([]string, error) {
		v, ok := req.Params[key]
		if !ok {
			if optional {
				return nil, nil
			}
			return nil, fmt.Errorf("missing param: %s", key)
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("param %s must be array", key)
		}
		result := make([]string, len(raw))
		for i, r := range raw {
			str, ok := r.(string)
			if !ok {
				return nil, fmt.Errorf("param %s[%d] must be string", key, i)
			}
			result[i] = str
		}
		return result, nil
	}
	respond := func(r *Result) ToolResponse {
		return ToolResponse{Result: nodeJSON(r.Tree), LaTeX: LaTeX(r.Tree), String: r.String()}
	}

	switch req.Tool {
	case "exec":
		line, err := getString("line")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		r, err := s.Exec(line)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(r)

	case "evaluate":
		expr, err := getString("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		r, err := s.Evaluate(expr)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(r)

	case "evaluate_batch":
		exprs, err := getStrings("exprs", false)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		rs, err := s.EvaluateBatch(ctx, exprs)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		trees := make([]map[string]interface{}, len(rs))
		strs := make([]string, len(rs))
		latexStrs := make([]string, len(rs))
		for i, r := range rs {
			trees[i] = nodeJSON(r.Tree)
			strs[i] = r.String()
			latexStrs[i] = LaTeX(r.Tree)
		}
		return ToolResponse{
			Result: trees,
			String: strings.Join(strs, "; "),
			LaTeX:  strings.Join(latexStrs, ",\\ "),
		}

	case "compile":
		line, err := getString("line")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		st, err := Compile(line)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		result := map[string]interface{}{"kind": st.Kind.String()}
		switch st.Kind {
		case Calculus:
			result["lhs"] = TokensString(st.Lhs)
			if len(st.Rhs) > 0 {
				result["rhs"] = TokensString(st.Rhs)
			}
		default:
			result["name"] = st.Name
			result["body"] = TokensString(st.Body)
			if st.Param != "" {
				result["param"] = st.Param
			}
		}
		return ToolResponse{Result: result, String: st.Kind.String()}

	case "variables":
		vars := s.Variables()
		entries := make([]map[string]interface{}, 0, len(vars))
		lines := make([]string, 0, len(vars))
		for _, v := range vars {
			tree, err := Display(v)
			if err != nil {
				return ToolResponse{Error: err.Error()}
			}
			e := map[string]interface{}{
				"name":     v.Name,
				"category": Classify(v).String(),
				"value":    String(tree),
			}
			head := v.Name
			if v.IsFunction() {
				e["param"] = v.Param
				head += "(" + v.Param + ")"
			}
			entries = append(entries, e)
			lines = append(lines, head+" = "+String(tree))
		}
		return ToolResponse{Result: entries, String: strings.Join(lines, "\n")}

	case "clear":
		names, err := getStrings("names", true)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		removed := s.Clear(names...)
		return ToolResponse{Result: removed, String: strings.Join(removed, ", ")}

	case "mcp_spec":
		return ToolResponse{Result: MCPToolSpec(), String: "MCP tool specification"}
	}

	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

func MCPToolSpec() string {
	tools := []map[string]interface{}{
		ts("exec", "Run one calculator line: calculus, 'name = expr' or 'f(x) = expr'", []string{"line"}, map[string]string{"line": "string"}),
		ts("evaluate", "Reduce an expression without assigning", []string{"expr"}, map[string]string{"expr": "string"}),
		ts("evaluate_batch", "Reduce several expressions concurrently", []string{"exprs"}, map[string]string{"exprs": "array"}),
		ts("compile", "Classify a line and show its normalized tokens", []string{"line"}, map[string]string{"line": "string"}),
		ts("variables", "List stored variables and functions", []string{}, map[string]string{}),
		ts("clear", "Remove variables by name, or all when names is omitted", []string{}, map[string]string{"names": "array"}),
		ts("mcp_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
