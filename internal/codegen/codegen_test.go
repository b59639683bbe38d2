package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/minnieml/mmlc/internal/config"
)

func TestMangleMainIsSpecialCased(t *testing.T) {
	cg := newState(nil, config.Default(), "Scenario")
	assert.Equal(t, "Scenario_main", cg.mangle("main", 0, false))
}

func TestMangleOrdinaryBindingIncludesArity(t *testing.T) {
	cg := newState(nil, config.Default(), "Scenario")
	assert.Equal(t, "Scenario_add.2", cg.mangle("add", 2, false))
}

func TestMangleSanitizesOperatorSymbols(t *testing.T) {
	cg := newState(nil, config.Default(), "Scenario")
	assert.Equal(t, "Scenario_op.lt_plus_gt.2", cg.mangle("<+>", 2, true))
}

func TestMangleOperatorAndPlainFunctionNeverCollide(t *testing.T) {
	cg := newState(nil, config.Default(), "Scenario")
	fnSym := cg.mangle("double", 1, false)
	opSym := cg.mangle("double", 1, true)
	assert.NotEqual(t, fnSym, opSym)
}

func TestLowerX86_64SmallAggregatePassedSplit(t *testing.T) {
	rule := Lower(config.ABIX86_64, AggregateClass{SizeBytes: 16})
	assert.Equal(t, PassSplitSmall, rule.param)
	assert.Equal(t, ReturnDirect, rule.result)
}

func TestLowerX86_64LargeAggregatePassedByvalWithSRet(t *testing.T) {
	rule := Lower(config.ABIX86_64, AggregateClass{SizeBytes: 32})
	assert.Equal(t, PassByvalPtr, rule.param)
	assert.Equal(t, ReturnSRet, rule.result)
}

func TestLowerAArch64HFAKeptDirect(t *testing.T) {
	rule := Lower(config.ABIAArch64, AggregateClass{SizeBytes: 16, IsHFA: true})
	assert.Equal(t, PassThrough, rule.param)
	assert.Equal(t, ReturnDirect, rule.result)
}

func TestComputeLayoutAlignsFieldsAndPads(t *testing.T) {
	// { i8, i64 }: the i64 field must start at offset 8, and the total
	// struct size pads up to the 8-byte alignment of its widest field.
	layout := ComputeLayout([]int{1, 8}, []int{1, 8})
	assert.Equal(t, []int{0, 8}, layout.Offsets)
	assert.Equal(t, 16, layout.Size)
	assert.Equal(t, 8, layout.Align)
}
