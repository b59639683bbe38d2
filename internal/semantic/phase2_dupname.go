package semantic

import (
	"fmt"

	"github.com/minnieml/mmlc/internal/ast"
	"github.com/minnieml/mmlc/internal/errs"
)

const phaseDuplicateName = "semantic.DuplicateNameChecker"

// DuplicateNameChecker is phase 2: groups declarations by (name, kind)
// (kinds: bin|unary|fn|bnd|typedef|typealias|typestruct); a binary and a
// unary operator may share a name, no other pair may. Every occurrence
// after the first survives only as a DuplicateMember wrapper. Duplicate
// parameter names within a single function/operator invalidate that
// member (wrapped as InvalidMember), independent of whether it is itself
// a first or later occurrence.
func DuplicateNameChecker(s State) State {
	type key struct{ name, kind string }

	seen := map[key]ast.Member{}
	groupOccurrences := map[key][]ast.Member{}

	newMembers := make([]ast.Member, len(s.Module.Members))
	for i, m := range s.Module.Members {
		name, kind, ok := memberName(m)
		if !ok {
			newMembers[i] = m
			continue
		}
		k := key{name, kind}
		groupOccurrences[k] = append(groupOccurrences[k], m)
		if first, exists := seen[k]; exists {
			newMembers[i] = &ast.DuplicateMember{Src: m.Origin(), Original: m, FirstOccurrence: first}
		} else {
			seen[k] = m
			newMembers[i] = m
		}
	}

	for k, occurrences := range groupOccurrences {
		if len(occurrences) <= 1 {
			continue
		}
		var spans []string
		for _, occ := range occurrences {
			spans = append(spans, occ.Origin().String())
		}
		r := errs.New(errs.DUP001, phaseDuplicateName,
			fmt.Sprintf("duplicate declaration of %q (%s): %d occurrences", k.name, k.kind, len(occurrences)),
			occurrences[len(occurrences)-1].Origin())
		r.Data = map[string]any{"name": k.name, "kind": k.kind, "occurrences": spans}
		s.Errors = appendError(s.Errors, r)
	}

	for i, m := range newMembers {
		if invalid, reason := checkDuplicateParams(m); invalid {
			s.Errors = appendError(s.Errors, errs.New(errs.DUP002, phaseDuplicateName, reason, m.Origin()))
			newMembers[i] = &ast.InvalidMember{Src: m.Origin(), Original: m, Reason: reason}
		}
	}

	s.Module.Members = newMembers
	s.Index = BuildResolvablesIndex(s.Module)
	return s
}

// checkDuplicateParams reports whether m's parameter list contains a
// repeated name.
func checkDuplicateParams(m ast.Member) (bool, string) {
	var params []*ast.FnParam
	switch v := m.(type) {
	case *ast.Bnd:
		lam, ok := v.Value.(*ast.Lambda)
		if !ok {
			return false, ""
		}
		params = lam.Params
	case *ast.BinOpDef:
		params = []*ast.FnParam{&v.Left, &v.Right}
	case *ast.UnaryOpDef:
		params = []*ast.FnParam{&v.Operand}
	default:
		return false, ""
	}

	names := map[string]bool{}
	for _, p := range params {
		if names[p.Name] {
			return true, fmt.Sprintf("duplicate parameter name %q", p.Name)
		}
		names[p.Name] = true
	}
	return false, ""
}
