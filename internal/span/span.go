// Package span defines source location records shared by every pass of
// the compiler core, from the lowering rewrite through code generation.
package span

// File identifies the source file a span was taken from. The tokenizer
// and parser (out of core scope) own the lifetime of File values; the
// core only ever reads File.Name for diagnostics.
type File struct {
	Name string
}

// Span is a half-open byte range [Start, End) within File. A Span may be
// Synthetic, meaning it marks a node invented by the lowering pass rather
// than one that came from source text; synthetic status must survive
// every later pass untouched.
type Span struct {
	File      *File
	Start     int
	End       int
	Synthetic bool
}

// Synth returns a synthetic span carrying no real source location. Use it
// when lowering manufactures a node (a synthesized identifier, an
// inserted call) that has no counterpart in the original source.
func Synth() Span {
	return Span{Synthetic: true}
}

// SynthFrom returns a synthetic span that remembers the file of the node
// it was derived from, which keeps diagnostics anchored to a file even
// for compiler-invented nodes.
func SynthFrom(s Span) Span {
	return Span{File: s.File, Synthetic: true}
}

// String renders the span for diagnostics. Synthetic spans never carry a
// meaningful offset, so they're rendered distinctly rather than as 0:0.
func (s Span) String() string {
	if s.Synthetic {
		if s.File != nil {
			return s.File.Name + ":<synthetic>"
		}
		return "<synthetic>"
	}
	name := "<input>"
	if s.File != nil {
		name = s.File.Name
	}
	return name + ":" + itoa(s.Start) + "-" + itoa(s.End)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
