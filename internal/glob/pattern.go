package glob

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ErrSyntax is wrapped by every SyntaxError.
var ErrSyntax = errors.New("glob syntax error")

// SyntaxError reports an invalid construct in a pattern.
type SyntaxError struct {
	// Pattern is the pattern as given.
	Pattern string
	// Offset is the byte offset of the offending construct.
	Offset int
	// Msg describes the problem.
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid pattern %q at offset %d: %s", e.Pattern, e.Offset, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// Kind classifies a pattern segment.
type Kind int

const (
	// Literal matches one path component exactly.
	Literal Kind = iota
	// Wildcard matches one path component against an embedded sub-glob.
	Wildcard
	// Recursive matches zero or more whole path components.
	Recursive
)

func (k Kind) String() string {
	switch k {
	case Literal:
		return "literal"
	case Wildcard:
		return "wildcard"
	case Recursive:
		return "recursive"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Segment is one path component of a compiled pattern.
type Segment struct {
	// Kind is the segment classification.
	Kind Kind
	// Text is the component as written, unescaped for literals.
	Text string

	elems []elem
}

// Pattern is a compiled glob. It is immutable and safe for concurrent use.
type Pattern struct {
	raw      string
	segments []Segment
	absolute bool
	fold     bool
}

// String returns the pattern as it was given to the compiler.
func (p *Pattern) String() string { return p.raw }

// Absolute reports whether the pattern starts at the filesystem root.
func (p *Pattern) Absolute() bool { return p.absolute }

// Segments returns a copy of the compiled segments.
func (p *Pattern) Segments() []Segment {
	return append([]Segment(nil), p.segments...)
}

// Prefix returns the leading literal components, the static part of the
// pattern that a walk can start from.
func (p *Pattern) Prefix() []string {
	var prefix []string

	for _, seg := range p.segments {
		if seg.Kind != Literal {
			break
		}

		prefix = append(prefix, seg.Text)
	}

	return prefix
}

// IsLiteral reports whether the pattern contains no wildcards at all.
func (p *Pattern) IsLiteral() bool {
	return len(p.Prefix()) == len(p.segments)
}

// WithBase returns an absolute copy of p with the literal components of base
// in front of it. Absolute patterns are returned unchanged.
func (p *Pattern) WithBase(base []string) *Pattern {
	if p.absolute {
		return p
	}

	anchored := &Pattern{
		raw:      p.raw,
		absolute: true,
		fold:     p.fold,
		segments: make([]Segment, 0, len(base)+len(p.segments)),
	}

	for _, name := range base {
		anchored.segments = append(anchored.segments, Segment{Kind: Literal, Text: name})
	}

	anchored.segments = append(anchored.segments, p.segments...)

	return anchored
}

// Compiler turns pattern strings into Patterns. All patterns of one run must
// come from the same Compiler so that case handling is uniform.
type Compiler struct {
	// FoldCase makes every comparison case-insensitive.
	FoldCase bool
	// NoEscape treats '\' as a path separator instead of an escape character.
	NoEscape bool
}

// NewCompiler returns a Compiler for the host: backslash escapes are disabled
// where it is the path separator.
func NewCompiler(foldCase bool) Compiler {
	return Compiler{FoldCase: foldCase, NoEscape: filepath.Separator == '\\'}
}

// Compile compiles raw with a case-sensitive host Compiler.
func Compile(raw string) (*Pattern, error) {
	return NewCompiler(false).Compile(raw)
}

// MustCompile is like Compile but panics on error.
func MustCompile(raw string) *Pattern {
	p, err := Compile(raw)
	if err != nil {
		panic(err)
	}

	return p
}

// component is a raw path component and its offset inside the pattern.
type component struct {
	text   string
	offset int
}

// Compile parses raw into a Pattern.
func (c Compiler) Compile(raw string) (*Pattern, error) {
	if raw == "" {
		return nil, &SyntaxError{Pattern: raw, Msg: "empty pattern"}
	}

	pattern := &Pattern{raw: raw, fold: c.FoldCase}

	components, absolute := c.split(raw)
	pattern.absolute = absolute

	for _, comp := range components {
		seg, err := c.segment(raw, comp)
		if err != nil {
			return nil, err
		}

		last := len(pattern.segments) - 1
		if seg.Kind == Recursive && last >= 0 && pattern.segments[last].Kind == Recursive {
			continue
		}

		pattern.segments = append(pattern.segments, seg)
	}

	if len(pattern.segments) == 0 {
		return nil, &SyntaxError{Pattern: raw, Msg: "pattern names no files"}
	}

	return pattern, nil
}

func (c Compiler) isSeparator(b byte) bool {
	return b == '/' || (c.NoEscape && b == '\\')
}

// split cuts raw at unescaped separators, dropping empty and "." components.
func (c Compiler) split(raw string) ([]component, bool) {
	var (
		components []component
		start      int
	)

	absolute := c.isSeparator(raw[0])

	emit := func(end int) {
		text := raw[start:end]
		if text != "" && text != "." {
			components = append(components, component{text: text, offset: start})
		}
	}

	for i := 0; i < len(raw); i++ {
		switch {
		case raw[i] == '\\' && !c.NoEscape:
			i++
		case c.isSeparator(raw[i]):
			emit(i)
			start = i + 1
		}
	}

	emit(len(raw))

	return components, absolute
}

// segment classifies and parses one component.
func (c Compiler) segment(raw string, comp component) (Segment, error) {
	if comp.text == "**" {
		return Segment{Kind: Recursive, Text: comp.text}, nil
	}

	fail := func(at int, msg string) (Segment, error) {
		return Segment{}, &SyntaxError{Pattern: raw, Offset: comp.offset + at, Msg: msg}
	}

	var (
		elems []elem
		wild  bool
		text  = comp.text
	)

	for i := 0; i < len(text); {
		r, width := utf8.DecodeRuneInString(text[i:])

		switch {
		case r == '\\' && !c.NoEscape:
			if i+width >= len(text) {
				elems = append(elems, elem{kind: elemRune, r: r})
				i += width

				continue
			}

			escaped, escWidth := utf8.DecodeRuneInString(text[i+width:])
			elems = append(elems, elem{kind: elemRune, r: escaped})
			i += width + escWidth
		case r == '*':
			if i+1 < len(text) && text[i+1] == '*' {
				return fail(i, "'**' must be a whole path component")
			}

			wild = true

			if n := len(elems); n == 0 || elems[n-1].kind != elemStar {
				elems = append(elems, elem{kind: elemStar})
			}

			i += width
		case r == '?':
			wild = true
			elems = append(elems, elem{kind: elemAny})
			i += width
		case r == '[':
			class, next, msg := c.parseClass(text, i)
			if msg != "" {
				return fail(i, msg)
			}

			wild = true
			elems = append(elems, class)
			i = next
		default:
			elems = append(elems, elem{kind: elemRune, r: r})
			i += width
		}
	}

	if !wild {
		var literal strings.Builder
		for _, e := range elems {
			literal.WriteRune(e.r)
		}

		return Segment{Kind: Literal, Text: literal.String()}, nil
	}

	return Segment{Kind: Wildcard, Text: text, elems: elems}, nil
}

// parseClass parses the class opening at text[start]. It returns the element,
// the index just past the closing ']', or a non-empty message on failure.
func (c Compiler) parseClass(text string, start int) (elem, int, string) {
	class := elem{kind: elemClass}

	i := start + 1
	if i < len(text) && (text[i] == '!' || text[i] == '^') {
		class.negate = true
		i++
	}

	for first := true; ; first = false {
		if i >= len(text) {
			return elem{}, 0, "unbalanced '['"
		}

		if text[i] == ']' && !first {
			return class, i + 1, ""
		}

		lo, width, ok := c.classRune(text, i)
		if !ok {
			return elem{}, 0, "unbalanced '['"
		}

		i += width
		hi := lo

		if i+1 < len(text) && text[i] == '-' && text[i+1] != ']' {
			hi, width, ok = c.classRune(text, i+1)
			if !ok {
				return elem{}, 0, "unbalanced '['"
			}

			if hi < lo {
				return elem{}, 0, fmt.Sprintf("invalid range %q-%q", lo, hi)
			}

			i += 1 + width
		}

		class.ranges = append(class.ranges, runeRange{lo: lo, hi: hi})
	}
}

// classRune decodes one, possibly escaped, class member.
func (c Compiler) classRune(text string, i int) (rune, int, bool) {
	if text[i] == '\\' && !c.NoEscape {
		if i+1 >= len(text) {
			return 0, 0, false
		}

		r, width := utf8.DecodeRuneInString(text[i+1:])

		return r, 1 + width, true
	}

	r, width := utf8.DecodeRuneInString(text[i:])

	return r, width, true
}
