package ownership

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minnieml/mmlc/internal/ast"
	"github.com/minnieml/mmlc/internal/semantic"
	"github.com/minnieml/mmlc/internal/source"
)

func TestRuntimeBindingIDsMapsDeclaredNameToResolvableID(t *testing.T) {
	free := &ast.Bnd{Src: source.Synth, Name: "__free_String"}
	other := &ast.Bnd{Src: source.Synth, Name: "main"}
	mod := &ast.Module{Members: []ast.Member{free, other}}
	semantic.BuildResolvablesIndex(mod) // assigns ResolvableIDs in place

	ids := runtimeBindingIDs(mod)
	assert.Equal(t, free.ResolvableID(), ids["__free_String"])
	assert.Equal(t, other.ResolvableID(), ids["main"])
}

func TestIsHeapTypeRecognizesBuiltinHeapNames(t *testing.T) {
	an := &analyzer{}
	assert.True(t, an.isHeapType(&ast.TypeRef{Name: "String"}))
	assert.True(t, an.isHeapType(&ast.TypeRef{Name: "Buffer"}))
	assert.False(t, an.isHeapType(&ast.TypeRef{Name: "Int"}))
}

func TestIsHeapTypeFollowsAliasToPointerField(t *testing.T) {
	alias := &ast.TypeAlias{
		Src:  source.Synth,
		Name: "MyStr",
		TypeSpecField: &ast.NativeStruct{
			Fields: []ast.NativeField{{Name: "data", Type: &ast.NativePointer{}}},
		},
	}
	mod := &ast.Module{Members: []ast.Member{alias}}
	idx := semantic.BuildResolvablesIndex(mod)

	an := &analyzer{idx: idx}
	ref := &ast.TypeRef{Name: "MyStr", ResolvedID: alias.ResolvableID()}
	assert.True(t, an.isHeapType(ref))
	assert.Equal(t, "MyStr", an.heapTypeName(ref))
}

func TestIsHeapTypeFalseForAliasWithoutPointerField(t *testing.T) {
	alias := &ast.TypeAlias{
		Src:  source.Synth,
		Name: "PlainPair",
		TypeSpecField: &ast.NativeStruct{
			Fields: []ast.NativeField{{Name: "x", Type: &ast.TypeRef{Name: "Int"}}},
		},
	}
	mod := &ast.Module{Members: []ast.Member{alias}}
	idx := semantic.BuildResolvablesIndex(mod)

	an := &analyzer{idx: idx}
	ref := &ast.TypeRef{Name: "PlainPair", ResolvedID: alias.ResolvableID()}
	assert.False(t, an.isHeapType(ref))
}

func TestWalkRefArgDeletesMovedBindingUnlessBorrowed(t *testing.T) {
	an := &analyzer{everOwned: owned{}}
	o := owned{"s#0": true}

	moved := an.walkRefArg(&ast.Ref{Name: "s", ResolvedID: "s#0"}, false, o)
	assert.False(t, moved["s#0"])

	o2 := owned{"s#0": true}
	kept := an.walkRefArg(&ast.Ref{Name: "s", ResolvedID: "s#0"}, true, o2)
	assert.True(t, kept["s#0"])
}

func TestWalkRefArgReportsUseAfterMove(t *testing.T) {
	an := &analyzer{everOwned: owned{"s#0": true}}
	// s#0 was owned at some point this member but is absent from the
	// current owned set, i.e. it was already moved out.
	an.walkRefArg(&ast.Ref{Name: "s", ResolvedID: "s#0", Src: source.Synth}, false, owned{})

	require.Len(t, an.errors, 1)
	assert.Equal(t, "OWN001", an.errors[0].Code)
}

func TestWalkRefArgSilentForNeverOwnedBinding(t *testing.T) {
	// a borrowed parameter is never added to everOwned, so a second use
	// must not be flagged as a use-after-move.
	an := &analyzer{everOwned: owned{}}
	an.walkRefArg(&ast.Ref{Name: "s", ResolvedID: "s#0", Src: source.Synth}, true, owned{})
	assert.Empty(t, an.errors)
}

func TestFreeRemainingOrdersFreesDeterministically(t *testing.T) {
	bndB := &ast.Bnd{Src: source.Synth, Name: "b", TypeAsc: &ast.TypeRef{Name: "String"}}
	bndA := &ast.Bnd{Src: source.Synth, Name: "a", TypeAsc: &ast.TypeRef{Name: "String"}}
	mod := &ast.Module{Members: []ast.Member{bndB, bndA}}
	idx := semantic.BuildResolvablesIndex(mod)

	an := &analyzer{idx: idx, runtimeIDs: runtimeBindingIDs(mod)}
	o := owned{bndB.ResolvableID(): true, bndA.ResolvableID(): true}

	tail := &ast.Literal{Src: source.Synth, Kind: ast.IntLit, Value: "0"}
	wrapped := an.freeRemaining(tail, o, nil)

	// freeRemaining nests App(Lambda(_, inner), __free_String(id)) once
	// per owned id in ascending resolvable-id order, so the last id
	// processed — the lexically greatest of the two — ends up as the
	// outermost App.
	outer, ok := wrapped.(*ast.App)
	require.True(t, ok)
	freeCall, ok := outer.Arg.(*ast.App)
	require.True(t, ok)
	freeRef, ok := freeCall.Fn.(*ast.Ref)
	require.True(t, ok)
	assert.Equal(t, "__free_String", freeRef.Name)

	argRef, ok := freeCall.Arg.(*ast.Ref)
	require.True(t, ok)
	if bndA.ResolvableID() > bndB.ResolvableID() {
		assert.Equal(t, "a", argRef.Name)
	} else {
		assert.Equal(t, "b", argRef.Name)
	}
}
