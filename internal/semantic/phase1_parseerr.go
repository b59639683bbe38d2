package semantic

import (
	"github.com/minnieml/mmlc/internal/ast"
	"github.com/minnieml/mmlc/internal/errs"
)

const phaseParseErrorChecker = "semantic.ParsingErrorChecker"

// ParsingErrorChecker is phase 1: it walks the module and surfaces a
// SemanticError::ParseErrorFound for every ParsingMemberError substituted
// by the parser. The module is left unchanged.
func ParsingErrorChecker(s State) State {
	for _, m := range s.Module.Members {
		pme, ok := m.(*ast.ParsingMemberError)
		if !ok {
			continue
		}
		s.Errors = appendError(s.Errors, errs.New(errs.PAR001, phaseParseErrorChecker, pme.Message, pme.Src))
	}
	return s
}
