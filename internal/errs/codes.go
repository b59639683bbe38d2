// Package errs provides MinnieML's structured diagnostic type and its
// error code taxonomy, organized as Report/ReportError plus codes grouped
// by the phase that raises them.
package errs

// Error codes grouped by the phase that raises them. Each constant is a stable string so downstream tooling
// (LSP, CLI) can match on it without depending on message text.
const (
	// Parser errors (PAR###)
	PAR001 = "PAR001" // unexpected token
	PAR002 = "PAR002" // missing closing delimiter
	PAR003 = "PAR003" // invalid member syntax
	PAR004 = "PAR004" // malformed identifier

	// Duplicate-name errors (DUP###)
	DUP001 = "DUP001" // duplicate top-level name/kind
	DUP002 = "DUP002" // duplicate parameter name within one function/operator

	// Type-resolution errors (TYR###)
	TYR001 = "TYR001" // unresolved type reference
	TYR002 = "TYR002" // cyclic type alias chain

	// Reference-resolution errors (REF###)
	REF001 = "REF001" // unresolved value reference (no candidates)

	// Expression-rewrite errors (REW###)
	REW001 = "REW001" // dangling terms: no operator/operand candidate fits position

	// Type-checking errors (TYC###)
	TYC001 = "TYC001" // missing parameter type annotation
	TYC002 = "TYC002" // type mismatch
	TYC003 = "TYC003" // invalid application (callee not a function)
	TYC004 = "TYC004" // undersaturated application
	TYC005 = "TYC005" // oversaturated application
	TYC006 = "TYC006" // conditional branch type mismatch
	TYC007 = "TYC007" // untyped hole in binding with no expected type

	// Ownership errors (OWN###)
	OWN001 = "OWN001" // use after move
	OWN002 = "OWN002" // double free
	OWN003 = "OWN003" // missing clone at aggregate-copy site

	// Code-gen errors (GEN###)
	GEN001 = "GEN001" // missing type info for a node the emitter must lower
	GEN002 = "GEN002" // unsupported ABI combination
	GEN003 = "GEN003" // native template/attribute mismatch
)
