package codegen

import (
	"fmt"
	"strings"
)

// mangle produces the emitted symbol name for a module-level binding:
// <modulePrefix>_<sanitizedName>.<arity>, with operator symbolic
// characters replaced by deterministic lexical names (e.g. `*` → `star`)
// and operator definitions (bin/unary) carrying an extra `op.` kind
// segment ahead of the name so an operator and a same-named plain
// function can never collide on symbol.
func (cg *CodeGenState) mangle(declaredName string, arity int, isOperator bool) string {
	if declaredName == "main" {
		return cg.modulePrefix + "_main"
	}
	name := sanitizeSymbol(declaredName)
	if isOperator {
		name = "op." + name
	}
	return fmt.Sprintf("%s_%s.%d", cg.modulePrefix, name, arity)
}

var symbolNames = map[rune]string{
	'+': "plus", '-': "minus", '*': "star", '/': "slash", '^': "caret",
	'=': "eq", '!': "bang", '<': "lt", '>': "gt", '?': "q", '&': "amp",
	'|': "pipe", '%': "pct", '~': "tilde", '$': "dollar", '#': "hash",
	'\\': "bslash",
}

func sanitizeSymbol(name string) string {
	var b strings.Builder
	for i, r := range name {
		if repl, ok := symbolNames[r]; ok {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteString(repl)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
