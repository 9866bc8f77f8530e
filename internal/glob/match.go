package glob

import (
	"strings"
	"unicode"
)

type elemKind uint8

const (
	elemRune elemKind = iota
	elemAny
	elemStar
	elemClass
)

type runeRange struct {
	lo, hi rune
}

// elem is one token of a wildcard component.
type elem struct {
	kind   elemKind
	r      rune
	negate bool
	ranges []runeRange
}

func (e elem) matchRune(r rune, fold bool) bool {
	switch e.kind {
	case elemAny:
		return true
	case elemRune:
		return e.r == r || (fold && unicode.ToLower(e.r) == unicode.ToLower(r))
	case elemClass:
		in := e.inClass(r)
		if !in && fold {
			in = e.inClass(unicode.ToLower(r)) || e.inClass(unicode.ToUpper(r))
		}

		return in != e.negate
	default:
		return false
	}
}

func (e elem) inClass(r rune) bool {
	for _, rr := range e.ranges {
		if rr.lo <= r && r <= rr.hi {
			return true
		}
	}

	return false
}

// matchElems matches a single path component. Stars backtrack to the most
// recent star only, which is sufficient for single-component globs.
func matchElems(elems []elem, name string, fold bool) bool {
	runes := []rune(name)

	ei, ni := 0, 0
	starElem, starName := -1, 0

	for ni < len(runes) {
		if ei < len(elems) {
			e := elems[ei]
			if e.kind == elemStar {
				starElem, starName = ei, ni
				ei++

				continue
			}

			if e.matchRune(runes[ni], fold) {
				ei++
				ni++

				continue
			}
		}

		if starElem < 0 {
			return false
		}

		starName++
		ni = starName
		ei = starElem + 1
	}

	for ei < len(elems) && elems[ei].kind == elemStar {
		ei++
	}

	return ei == len(elems)
}

// MatchComponent reports whether a single path component satisfies seg.
func (p *Pattern) MatchComponent(seg Segment, name string) bool {
	switch seg.Kind {
	case Literal:
		if p.fold {
			return strings.EqualFold(seg.Text, name)
		}

		return seg.Text == name
	case Wildcard:
		return matchElems(seg.elems, name, p.fold)
	default:
		return true
	}
}

// Match reports whether the path made of components matches the whole pattern.
func (p *Pattern) Match(components []string) bool {
	return p.run(components, false)
}

// CanDescend reports whether some path below the directory made of components
// could match the pattern. It never returns false for a directory that holds
// a match.
func (p *Pattern) CanDescend(components []string) bool {
	return p.run(components, true)
}

// MatchPath is Match on a slash-separated path.
func (p *Pattern) MatchPath(path string) bool {
	return p.Match(Split(path))
}

// CanDescendPath is CanDescend on a slash-separated directory path.
func (p *Pattern) CanDescendPath(path string) bool {
	return p.CanDescend(Split(path))
}

// state is a cursor into the segments and the path components.
type state struct {
	seg, comp int
}

// run explores (segment, component) states with an explicit stack. Every
// state is expanded once, so the cost is bounded by segments*components no
// matter how many recursive wildcards the pattern holds.
//
// With descend set, reaching the end of the components with segments left
// over means a child could still match.
func (p *Pattern) run(components []string, descend bool) bool {
	width := len(components) + 1
	seen := make([]bool, (len(p.segments)+1)*width)
	stack := []state{{}}

	for len(stack) > 0 {
		st := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if seen[st.seg*width+st.comp] {
			continue
		}

		seen[st.seg*width+st.comp] = true

		if st.seg == len(p.segments) {
			if !descend && st.comp == len(components) {
				return true
			}

			continue
		}

		if descend && st.comp == len(components) {
			return true
		}

		seg := p.segments[st.seg]

		if seg.Kind == Recursive {
			// '**' can swallow the rest of the directory and keep going.
			if descend {
				return true
			}

			// Either swallow one more component or stop here. Stopping is
			// pushed last so the shortest split is tried first.
			if st.comp < len(components) {
				stack = append(stack, state{seg: st.seg, comp: st.comp + 1})
			}

			stack = append(stack, state{seg: st.seg + 1, comp: st.comp})

			continue
		}

		if st.comp < len(components) && p.MatchComponent(seg, components[st.comp]) {
			stack = append(stack, state{seg: st.seg + 1, comp: st.comp + 1})
		}
	}

	return false
}

// Split breaks a slash-separated path into components, dropping empty and
// "." components.
func Split(path string) []string {
	parts := strings.Split(path, "/")
	components := parts[:0]

	for _, part := range parts {
		if part != "" && part != "." {
			components = append(components, part)
		}
	}

	return components
}
