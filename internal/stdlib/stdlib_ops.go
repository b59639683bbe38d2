package stdlib

import (
	"github.com/minnieml/mmlc/internal/ast"
	"github.com/minnieml/mmlc/internal/source"
)

// binOpSpec describes one injected binary operator.
type binOpSpec struct {
	name       string
	precedence uint8
	assoc      ast.Assoc
	selector   string // native op template selector
	resultBool bool   // comparison operators return Bool instead of Int
}

var binOpTable = []binOpSpec{
	{"+", 60, ast.Left, "add", false},
	{"-", 60, ast.Left, "sub", false},
	{"*", 70, ast.Left, "mul", false},
	{"/", 70, ast.Left, "sdiv", false},
	{"^", 80, ast.Right, "pow", false},
	{"==", 40, ast.Left, "icmp_eq", true},
	{"!=", 40, ast.Left, "icmp_ne", true},
	{"<", 40, ast.Left, "icmp_slt", true},
	{">", 40, ast.Left, "icmp_sgt", true},
	{"<=", 40, ast.Left, "icmp_sle", true},
	{">=", 40, ast.Left, "icmp_sge", true},
	{"and", 30, ast.Left, "and", true},
	{"or", 20, ast.Left, "or", true},
}

// binaryOperators injects the fixed arithmetic/comparison/logic binary
// operator set. Each is an @native[op=<selector>] body
// operating on Int; the emitter's operator templates generalize these
// across any native numeric type the user later composes them with.
func binaryOperators() []ast.Member {
	intT := ref("Int")
	boolT := ref("Bool")
	var out []ast.Member
	for _, s := range binOpTable {
		retType := intT
		if s.resultBool {
			retType = boolT
		}
		out = append(out, &ast.BinOpDef{
			Src:        source.Synth,
			Name:       s.name,
			Precedence: s.precedence,
			Assoc:      s.assoc,
			Left:       ast.FnParam{Src: source.Synth, Name: "a", TypeAsc: intT},
			Right:      ast.FnParam{Src: source.Synth, Name: "b", TypeAsc: intT},
			ReturnType: retType,
			Native: &ast.NativeImpl{
				Src:      source.Synth,
				Attrs:    map[string]string{"mem": "pure", "op": s.selector},
				Selector: s.selector,
			},
		})
	}
	return out
}

// unaryOpSpec describes one injected unary operator.
type unaryOpSpec struct {
	name     string
	postfix  bool
	selector string
}

var unaryOpTable = []unaryOpSpec{
	{"+", false, "nop"},
	{"-", false, "neg"},
	{"not", false, "not"},
	{"!", true, "factorial"},
}

// unaryOperators injects prefix `+ - not` and postfix `!`.
func unaryOperators() []ast.Member {
	intT := ref("Int")
	boolT := ref("Bool")
	var out []ast.Member
	for _, s := range unaryOpTable {
		operandType, retType := intT, intT
		if s.name == "not" {
			operandType, retType = boolT, boolT
		}
		out = append(out, &ast.UnaryOpDef{
			Src:        source.Synth,
			Name:       s.name,
			Postfix:    s.postfix,
			Operand:    ast.FnParam{Src: source.Synth, Name: "a", TypeAsc: operandType},
			ReturnType: retType,
			Native: &ast.NativeImpl{
				Src:      source.Synth,
				Attrs:    map[string]string{"mem": "pure", "op": s.selector},
				Selector: s.selector,
			},
		})
	}
	return out
}
