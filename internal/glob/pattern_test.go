package glob

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(p *Pattern) []Kind {
	var out []Kind
	for _, seg := range p.Segments() {
		out = append(out, seg.Kind)
	}

	return out
}

func TestCompileSegments(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		kinds    []Kind
		absolute bool
		prefix   []string
	}{
		{"plain file", "a/b.txt", []Kind{Literal, Literal}, false, []string{"a", "b.txt"}},
		{"star", "a/*.txt", []Kind{Literal, Wildcard}, false, []string{"a"}},
		{"recursive", "a/**/*.txt", []Kind{Literal, Recursive, Wildcard}, false, []string{"a"}},
		{"collapsed recursive", "a/**/**/**/x", []Kind{Literal, Recursive, Literal}, false, []string{"a"}},
		{"absolute", "/var/log/*.log", []Kind{Literal, Literal, Wildcard}, true, []string{"var", "log"}},
		{"dot components dropped", "./a/./b", []Kind{Literal, Literal}, false, []string{"a", "b"}},
		{"duplicate separators", "a//b", []Kind{Literal, Literal}, false, []string{"a", "b"}},
		{"class", "[abc]/x", []Kind{Wildcard, Literal}, false, nil},
		{"question", "a?c", []Kind{Wildcard}, false, nil},
		{"leading recursive", "**/*.go", []Kind{Recursive, Wildcard}, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.pattern)
			require.NoError(t, err)

			assert.Equal(t, tt.kinds, kinds(p))
			assert.Equal(t, tt.absolute, p.Absolute())
			assert.Equal(t, tt.prefix, p.Prefix())
			assert.Equal(t, tt.pattern, p.String())
		})
	}
}

func TestCompileEscapes(t *testing.T) {
	c := Compiler{}

	p, err := c.Compile(`a/\*.txt`)
	require.NoError(t, err)

	segs := p.Segments()
	require.Len(t, segs, 2)
	assert.Equal(t, Literal, segs[1].Kind)
	assert.Equal(t, "*.txt", segs[1].Text)
	assert.True(t, p.IsLiteral())

	p, err = c.Compile(`\[x\]`)
	require.NoError(t, err)
	assert.True(t, p.MatchPath("[x]"))
	assert.False(t, p.MatchPath("x"))
}

func TestCompileNoEscape(t *testing.T) {
	c := Compiler{NoEscape: true}

	p, err := c.Compile(`dir\sub\*.txt`)
	require.NoError(t, err)

	assert.Equal(t, []string{"dir", "sub"}, p.Prefix())
	assert.True(t, p.MatchPath("dir/sub/a.txt"))
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		offset  int
		msg     string
	}{
		{"empty", "", 0, "empty pattern"},
		{"only separator", "/", 0, "pattern names no files"},
		{"unbalanced bracket", "a/[z", 2, "unbalanced '['"},
		{"unbalanced after negation", "[!", 0, "unbalanced '['"},
		{"bracket closing first is literal", "[]", 0, "unbalanced '['"},
		{"fused recursive prefix", "a/**b/c", 2, "'**' must be a whole path component"},
		{"fused recursive suffix", "x**", 1, "'**' must be a whole path component"},
		{"reversed range", "[z-a]", 0, `invalid range 'z'-'a'`},
		{"class split by separator", "[a/b]", 0, "unbalanced '['"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.pattern)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSyntax))

			var syntaxErr *SyntaxError
			require.ErrorAs(t, err, &syntaxErr)
			assert.Equal(t, tt.offset, syntaxErr.Offset)
			assert.Equal(t, tt.msg, syntaxErr.Msg)
			assert.Equal(t, tt.pattern, syntaxErr.Pattern)
		})
	}
}

func TestWithBase(t *testing.T) {
	p := MustCompile("**/*.txt")
	anchored := p.WithBase([]string{"home", "user"})

	assert.True(t, anchored.Absolute())
	assert.Equal(t, []string{"home", "user"}, anchored.Prefix())
	assert.True(t, anchored.Match([]string{"home", "user", "a", "b.txt"}))
	assert.False(t, anchored.Match([]string{"home", "other", "b.txt"}))

	// p itself is left as it was.
	assert.False(t, p.Absolute())
	assert.Empty(t, p.Prefix())

	abs := MustCompile("/etc/*.conf")
	assert.Same(t, abs, abs.WithBase([]string{"ignored"}))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "literal", Literal.String())
	assert.Equal(t, "wildcard", Wildcard.String())
	assert.Equal(t, "recursive", Recursive.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}
