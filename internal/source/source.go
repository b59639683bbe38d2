// Package source provides source-position tracking shared by every later
// compiler stage: byte/line/col points, spans, and the FromSource/Synth
// origin discriminator used to keep compiler-generated nodes out of
// user-facing diagnostics.
package source

import "fmt"

// Point is a single position in a source buffer.
type Point struct {
	Offset int // byte offset from the start of the buffer
	Line   int // 1-based
	Col    int // 1-based
}

func (p Point) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Span is a half-open range [Start,End) within a source buffer.
type Span struct {
	Start Point
	End   Point
}

func (s Span) String() string {
	return fmt.Sprintf("[%s]-[%s]", s.Start, s.End)
}

// Empty reports whether the span covers no bytes.
func (s Span) Empty() bool {
	return s.Start.Offset == s.End.Offset
}

// Contains reports whether s fully contains other.
func (s Span) Contains(other Span) bool {
	return s.Start.Offset <= other.Start.Offset && other.End.Offset <= s.End.Offset
}

// OriginKind discriminates between user-authored and compiler-synthesized
// nodes. Synthetic nodes never appear in diagnostics pointing at user
// positions.
type OriginKind int

const (
	// FromSourceKind marks a node that came from the user's source text.
	FromSourceKind OriginKind = iota
	// SynthKind marks a compiler-generated node (injected stdlib,
	// ownership-inserted calls, eta-expanded lambdas, ...).
	SynthKind
)

// Origin is the sum type `FromSource(Span) | Synth`.
type Origin struct {
	Kind OriginKind
	Span Span // meaningful only when Kind == FromSourceKind
}

// FromSource builds a FromSource origin for the given span.
func FromSource(span Span) Origin {
	return Origin{Kind: FromSourceKind, Span: span}
}

// Synth is the shared synthetic origin value.
var Synth = Origin{Kind: SynthKind}

// IsSynth reports whether the origin is compiler-generated.
func (o Origin) IsSynth() bool { return o.Kind == SynthKind }

func (o Origin) String() string {
	if o.Kind == SynthKind {
		return "<synth>"
	}
	return o.Span.String()
}

// Buffer pairs source text with a filename/module tag used for diagnostics.
type Buffer struct {
	Name string // file or module name, used as Point.File equivalent in messages
	Text string
}

// NewBuffer wraps a source string with its display name.
func NewBuffer(name, text string) *Buffer {
	return &Buffer{Name: name, Text: text}
}
