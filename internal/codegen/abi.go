package codegen

import "github.com/minnieml/mmlc/internal/config"

// ParamPassing describes how one native-boundary aggregate parameter is
// lowered for a given target ABI.
type ParamPassing int

const (
	PassThrough ParamPassing = iota
	PassByvalPtr
	PassPlainPtr
	PassSplitSmall
	PassPackedRegs
)

// ReturnPassing describes how an aggregate return value is lowered.
type ReturnPassing int

const (
	ReturnDirect ReturnPassing = iota
	ReturnSRet
)

// AggregateClass buckets a struct layout the way the ABI table keys on:
// size in bytes plus whether every field is float/double (HFA).
type AggregateClass struct {
	SizeBytes int
	IsHFA     bool
}

// abiRule is the parameter/return passing pair that Lower selects for
// one aggregate.
type abiRule struct {
	param  ParamPassing
	result ReturnPassing
}

// Lower returns the parameter- and return-passing convention for an
// aggregate of class c under abi: a switch over the three supported ABI
// families, each branch testing the size (≤16B, >16B) and HFA buckets.
func Lower(abi config.ABI, c AggregateClass) abiRule {
	switch abi {
	case config.ABIX86_64:
		if c.IsHFA || c.SizeBytes > 16 {
			return abiRule{param: PassByvalPtr, result: ReturnSRet}
		}
		return abiRule{param: PassSplitSmall, result: ReturnDirect}
	case config.ABIAArch64:
		if c.IsHFA {
			return abiRule{param: PassThrough, result: ReturnDirect}
		}
		if c.SizeBytes > 16 {
			return abiRule{param: PassPlainPtr, result: ReturnSRet}
		}
		return abiRule{param: PassPackedRegs, result: ReturnDirect}
	default:
		return abiRule{param: PassThrough, result: ReturnDirect}
	}
}

// StructLayout computes byte size/alignment for a native struct,
// including tail padding, so nested aggregates land on correctly aligned
// offsets.
type StructLayout struct {
	Size      int
	Align     int
	Offsets   []int // per-field byte offset, same order as the struct's fields
}

// FieldSizeAlign returns the size and alignment, in bytes, of a
// primitive LLVM scalar type name used in native struct fields.
func FieldSizeAlign(llvmType string) (size, align int) {
	switch llvmType {
	case "i1", "i8":
		return 1, 1
	case "i16":
		return 2, 2
	case "i32", "float":
		return 4, 4
	case "i64", "double", "ptr":
		return 8, 8
	default:
		return 8, 8
	}
}

// ComputeLayout lays out fields sequentially with C alignment rules: each
// field starts at the next offset divisible by its alignment, and the
// struct's total size is padded up to its own alignment (the largest
// field alignment).
func ComputeLayout(fieldSizes, fieldAligns []int) StructLayout {
	offset := 0
	maxAlign := 1
	offsets := make([]int, len(fieldSizes))
	for i, sz := range fieldSizes {
		al := fieldAligns[i]
		if al > maxAlign {
			maxAlign = al
		}
		offset = alignUp(offset, al)
		offsets[i] = offset
		offset += sz
	}
	total := alignUp(offset, maxAlign)
	return StructLayout{Size: total, Align: maxAlign, Offsets: offsets}
}

func alignUp(v, align int) int {
	if align <= 1 {
		return v
	}
	rem := v % align
	if rem == 0 {
		return v
	}
	return v + (align - rem)
}
