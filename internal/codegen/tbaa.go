package codegen

import (
	"fmt"
	"sort"
	"strings"
)

// tbaaRegistry assigns every MML scalar type name and native struct a
// distinct TBAA metadata node id, and records struct field offsets for
// field-specific access tags.
type tbaaRegistry struct {
	nextID      int
	scalarNodes map[string]int // type name -> node id
	structNodes map[string]int // struct name -> node id
	structDefs  map[string]tbaaStructDef
	order       []string // insertion order; emit sorts node names instead
}

type tbaaStructField struct {
	name   string
	offset int
}

type tbaaStructDef struct {
	name   string
	fields []tbaaStructField
}

func newTBAARegistry() *tbaaRegistry {
	return &tbaaRegistry{
		scalarNodes: map[string]int{},
		structNodes: map[string]int{},
		structDefs:  map[string]tbaaStructDef{},
	}
}

// root node is id 0, implicit; all other ids start at 1.
func (r *tbaaRegistry) alloc() int {
	r.nextID++
	return r.nextID
}

func (r *tbaaRegistry) scalarTag(typeName string) string {
	id, ok := r.scalarNodes[typeName]
	if !ok {
		id = r.alloc()
		r.scalarNodes[typeName] = id
		r.order = append(r.order, "scalar:"+typeName)
	}
	return fmt.Sprintf("!%d", id)
}

func (r *tbaaRegistry) structTag(name string, fields []tbaaStructField) string {
	id, ok := r.structNodes[name]
	if !ok {
		id = r.alloc()
		r.structNodes[name] = id
		r.structDefs[name] = tbaaStructDef{name: name, fields: fields}
		r.order = append(r.order, "struct:"+name)
	}
	return fmt.Sprintf("!%d", id)
}

func (r *tbaaRegistry) fieldTag(structName string, fieldIndex int) string {
	def, ok := r.structDefs[structName]
	if !ok || fieldIndex >= len(def.fields) {
		return r.structTag(structName, nil)
	}
	return fmt.Sprintf("!%d", r.structNodes[structName]) // field access reuses the struct's node, offset carried in the access instruction
}

// emit renders every allocated node as LLVM metadata, plus the implicit
// root, in a stable order (scalars before structs, each sorted by name so
// output does not depend on map iteration order).
func (r *tbaaRegistry) emit(sb *strings.Builder) {
	if r.nextID == 0 {
		return
	}
	sb.WriteString("\n!mml.tbaa.root = !{!0}\n")
	sb.WriteString("!0 = !{!\"mml-tbaa-root\"}\n")

	scalarNames := make([]string, 0, len(r.scalarNodes))
	for name := range r.scalarNodes {
		scalarNames = append(scalarNames, name)
	}
	sort.Strings(scalarNames)
	for _, name := range scalarNames {
		fmt.Fprintf(sb, "!%d = !{!\"%s\", !0, i64 0}\n", r.scalarNodes[name], name)
	}

	structNames := make([]string, 0, len(r.structNodes))
	for name := range r.structNodes {
		structNames = append(structNames, name)
	}
	sort.Strings(structNames)
	for _, name := range structNames {
		def := r.structDefs[name]
		fmt.Fprintf(sb, "!%d = !{!\"%s\"", r.structNodes[name], name)
		for _, f := range def.fields {
			fmt.Fprintf(sb, ", !0, i64 %d", f.offset)
			_ = f.name
		}
		sb.WriteString("}\n")
	}
}
