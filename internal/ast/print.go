package ast

import (
	"encoding/json"
	"fmt"
)

// Print produces a deterministic JSON representation of an AST node for
// golden-snapshot testing, omitting byte offsets so the representation is
// stable across re-formatting of the same logical source.
func Print(n Node) string {
	if n == nil {
		return "null"
	}
	data, err := json.MarshalIndent(simplify(n), "", "  ")
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(data)
}

func simplify(n interface{}) interface{} {
	switch v := n.(type) {
	case nil:
		return nil
	case *Module:
		members := make([]interface{}, len(v.Members))
		for i, m := range v.Members {
			members[i] = simplify(m)
		}
		return map[string]interface{}{
			"type":    "Module",
			"name":    v.Name,
			"members": members,
		}
	case *Bnd:
		return map[string]interface{}{"type": "Bnd", "name": v.Name, "value": simplify(v.Value)}
	case *TypeDef:
		return map[string]interface{}{"type": "TypeDef", "name": v.Name}
	case *TypeAlias:
		return map[string]interface{}{"type": "TypeAlias", "name": v.Name}
	case *TypeStruct:
		return map[string]interface{}{"type": "TypeStruct", "name": v.Name}
	case *BinOpDef:
		return map[string]interface{}{"type": "BinOpDef", "name": v.Name, "prec": v.Precedence}
	case *UnaryOpDef:
		return map[string]interface{}{"type": "UnaryOpDef", "name": v.Name, "postfix": v.Postfix}
	case *DuplicateMember:
		return map[string]interface{}{"type": "DuplicateMember"}
	case *InvalidMember:
		return map[string]interface{}{"type": "InvalidMember", "reason": v.Reason}
	case *ParsingMemberError:
		return map[string]interface{}{"type": "ParsingMemberError", "message": v.Message}
	case *ExprList:
		terms := make([]interface{}, len(v.Terms))
		for i, t := range v.Terms {
			terms[i] = simplify(t)
		}
		return map[string]interface{}{"type": "ExprList", "terms": terms}
	case *Literal:
		return map[string]interface{}{"type": "Literal", "value": v.Value}
	case *Ref:
		return map[string]interface{}{"type": "Ref", "name": v.Name, "resolvedId": v.ResolvedID}
	case *App:
		return map[string]interface{}{"type": "App", "fn": simplify(v.Fn), "arg": simplify(v.Arg)}
	case *Lambda:
		params := make([]string, len(v.Params))
		for i, p := range v.Params {
			params[i] = p.Name
		}
		return map[string]interface{}{"type": "Lambda", "params": params, "body": simplify(v.Body)}
	case *Cond:
		return map[string]interface{}{
			"type": "Cond", "cond": simplify(v.CondExpr),
			"then": simplify(v.IfTrue), "else": simplify(v.IfFalse),
		}
	case *Tuple:
		elems := make([]interface{}, len(v.Elems))
		for i, e := range v.Elems {
			elems[i] = simplify(e)
		}
		return map[string]interface{}{"type": "Tuple", "elems": elems}
	case *TermGroup:
		return map[string]interface{}{"type": "TermGroup", "inner": simplify(v.Inner)}
	case *Hole:
		return map[string]interface{}{"type": "Hole"}
	case *Placeholder:
		return map[string]interface{}{"type": "Placeholder"}
	case *NativeImpl:
		return map[string]interface{}{"type": "NativeImpl", "attrs": v.Attrs}
	case *InvalidExpression:
		return map[string]interface{}{"type": "InvalidExpression"}
	case *TermError:
		return map[string]interface{}{"type": "TermError", "message": v.Message}
	default:
		return fmt.Sprintf("%T", v)
	}
}
