package codegen

import (
	"fmt"
	"strings"

	"github.com/minnieml/mmlc/internal/ast"
)

// llvmType lowers a resolved TypeSpec to its LLVM type string. Aggregates
// referencing a NativeStruct lower to the named `%struct.NAME`; every
// other recognized form lowers to a scalar.
func (cg *CodeGenState) llvmType(t ast.TypeSpec) string {
	switch v := t.(type) {
	case nil:
		return "void"
	case *ast.NativePrimitive:
		return v.LLVMType
	case *ast.NativePointer:
		return "ptr"
	case *ast.NativeStruct:
		return "%struct." + v.Name
	case *ast.TypeUnit:
		return "void"
	case *ast.TypeRef:
		switch v.Name {
		case "Int":
			return "i64"
		case "Bool":
			return "i1"
		case "Float":
			return "double"
		case "Char":
			return "i8"
		case "Unit":
			return "void"
		}
		res, ok := cg.idx.Lookup(v.ResolvedID)
		if !ok {
			return "ptr"
		}
		switch d := res.(type) {
		case *ast.TypeDef:
			return cg.llvmType(d.TypeSpecField)
		case *ast.TypeAlias:
			return cg.llvmType(d.TypeSpecField)
		case *ast.TypeStruct:
			return "%struct." + d.Name
		}
		return "ptr"
	case *ast.TypeStructRef:
		return "%struct." + v.Name
	case *ast.TypeFn:
		return "ptr"
	case *ast.TypeTuple:
		return "ptr"
	default:
		return "ptr"
	}
}

// isAggregateType reports whether llvmType names a struct type rather
// than a scalar, the split the ABI table (abi.go) keys on.
func isAggregateType(llvmType string) bool {
	return len(llvmType) > 0 && llvmType[0] == '%'
}

// aggregateClass derives the size/HFA bucket abi.go's Lower keys on for a
// registered native struct.
func (cg *CodeGenState) aggregateClass(structName string) AggregateClass {
	fields, ok := cg.structFields[structName]
	if !ok {
		return AggregateClass{SizeBytes: 8}
	}
	sizes := make([]int, len(fields))
	aligns := make([]int, len(fields))
	allFloat := len(fields) > 0
	for i, f := range fields {
		lt := cg.llvmType(f.Type)
		sizes[i], aligns[i] = FieldSizeAlign(lt)
		if lt != "float" && lt != "double" {
			allFloat = false
		}
	}
	layout := ComputeLayout(sizes, aligns)
	return AggregateClass{SizeBytes: layout.Size, IsHFA: allFloat}
}

// paramPassing returns the LLVM parameter type (including a `byval`
// attribute where the target ABI calls for it) a value of type t is
// passed as at a native-call boundary (abi.go's Lower). Calls between
// two MML functions never cross this boundary and keep ordinary
// struct-by-value passing, since no foreign caller needs to agree with
// them on convention.
func (cg *CodeGenState) paramPassing(t ast.TypeSpec) string {
	lt := cg.llvmType(t)
	if !isAggregateType(lt) {
		return lt
	}
	class := cg.aggregateClass(strings.TrimPrefix(lt, "%struct."))
	switch Lower(cg.cfg.TargetABI, class).param {
	case PassByvalPtr:
		return fmt.Sprintf("ptr byval(%s)", lt)
	case PassPlainPtr:
		return "ptr"
	default:
		return lt
	}
}
