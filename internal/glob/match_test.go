package glob

import (
	"strings"
	"testing"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchPath(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"a/*.txt", "a/x.txt", true},
		{"a/*.txt", "a/b/y.txt", false},
		{"a/*.txt", "a/.hidden.txt", true},
		{"a/**/*.txt", "a/x.txt", true},
		{"a/**/*.txt", "a/b/y.txt", true},
		{"a/**/*.txt", "a/b/c/d/z.txt", true},
		{"a/**/*.txt", "b/x.txt", false},
		{"**", "anything/at/all", true},
		{"**/x", "x", true},
		{"**/x", "a/b/x", true},
		{"a/**/b/**/c", "a/b/c", true},
		{"a/**/b/**/c", "a/x/b/y/z/c", true},
		{"a/**/b/**/c", "a/x/y/c", false},
		{"?.go", "a.go", true},
		{"?.go", "ab.go", false},
		{"[abc].md", "b.md", true},
		{"[abc].md", "d.md", false},
		{"[!abc].md", "d.md", true},
		{"[^abc].md", "a.md", false},
		{"[a-c]x", "bx", true},
		{"[a-c]x", "dx", false},
		{"[]]", "]", true},
		{"*a*b*c", "xaybzc", true},
		{"*a*b*c", "xaybz", false},
		{"*", "", false},
		{"file.txt", "file.txt", true},
		{"file.txt", "File.txt", false},
		{"日本/*.txt", "日本/語.txt", true},
		{"?", "語", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.path, func(t *testing.T) {
			p := MustCompile(tt.pattern)
			assert.Equal(t, tt.want, p.MatchPath(tt.path))
		})
	}
}

func TestMatchFoldCase(t *testing.T) {
	c := Compiler{FoldCase: true}

	p, err := c.Compile("Docs/*.PNG")
	require.NoError(t, err)

	assert.True(t, p.MatchPath("docs/image.png"))
	assert.True(t, p.MatchPath("DOCS/IMAGE.Png"))
	assert.False(t, p.MatchPath("docs/image.jpg"))

	p, err = c.Compile("[a-c]*")
	require.NoError(t, err)
	assert.True(t, p.MatchPath("B"))
	assert.False(t, p.MatchPath("D"))
}

func TestCanDescend(t *testing.T) {
	tests := []struct {
		pattern string
		dir     string
		want    bool
	}{
		{"a/*.txt", "a", true},
		{"a/*.txt", "a/b", false},
		{"a/*.txt", "b", false},
		{"a/**/*.txt", "a/b/c/d", true},
		{"a/**/*.txt", "b", false},
		{"a/b/*.txt", "a", true},
		{"a/b/*.txt", "a/c", false},
		{"*/src/*.go", "x", true},
		{"*/src/*.go", "x/src", true},
		{"*/src/*.go", "x/lib", false},
		{"*/src/*.go", "x/src/y", false},
		{"**", "deep/down", true},
		{"x", "", true},
		{"x", "x", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.dir, func(t *testing.T) {
			p := MustCompile(tt.pattern)
			assert.Equal(t, tt.want, p.CanDescendPath(tt.dir))
		})
	}
}

// TestCanDescendSound checks pruning against brute force: whenever a
// directory is pruned, no path below it may match.
func TestCanDescendSound(t *testing.T) {
	names := []string{"a", "b", "x.txt", "y.go"}

	var paths [][]string

	var grow func(prefix []string, depth int)
	grow = func(prefix []string, depth int) {
		if depth == 0 {
			return
		}

		for _, name := range names {
			next := append(append([]string(nil), prefix...), name)
			paths = append(paths, next)
			grow(next, depth-1)
		}
	}
	grow(nil, 4)

	patterns := []string{
		"a/*.txt", "a/**/*.txt", "**/b/*.go", "*/a/**", "b/?/x.txt",
		"[ab]/**/[xy].*", "a/**/b/**/y.go", "**", "*", "a/b",
	}

	for _, raw := range patterns {
		p := MustCompile(raw)

		for _, dir := range paths {
			if p.CanDescend(dir) {
				continue
			}

			for _, path := range paths {
				if len(path) <= len(dir) || !hasPrefix(path, dir) {
					continue
				}

				assert.False(t, p.Match(path), "%s pruned %s but matches %s",
					raw, strings.Join(dir, "/"), strings.Join(path, "/"))
			}
		}
	}
}

func hasPrefix(path, prefix []string) bool {
	for i := range prefix {
		if path[i] != prefix[i] {
			return false
		}
	}

	return true
}

// TestMatchAgreesWithDoublestar uses doublestar as an independent oracle for
// the syntax both implementations share.
func TestMatchAgreesWithDoublestar(t *testing.T) {
	patterns := []string{
		"*.txt", "a/*.txt", "a/**/*.txt", "**/*.go", "**/b/*",
		"a/**/b/**/c", "?/?", "[a-c]/*", "[!a]*/**/x*", "**/*_test.go",
		"src/**", "*/*/*",
	}

	paths := []string{
		"x.txt", "a/x.txt", "a/b/y.txt", "a/b/c", "a/x/b/y/c",
		"main.go", "pkg/util/util_test.go", "b/c/d", "src/a/b",
		"c/x", "d/e/xyz", "a", "a/b", ".hidden/x.txt", "a/.b/c.txt",
	}

	for _, raw := range patterns {
		p := MustCompile(raw)

		for _, path := range paths {
			want, err := doublestar.Match(raw, path)
			require.NoError(t, err)

			assert.Equal(t, want, p.MatchPath(path), "pattern %q path %q", raw, path)
		}
	}
}

func TestMatchDeepPath(t *testing.T) {
	components := make([]string, 2000)
	for i := range components {
		components[i] = "d"
	}

	components[len(components)-1] = "leaf.bin"

	p := MustCompile("**/d/**/d/**/*.bin")
	assert.True(t, p.Match(components))

	p = MustCompile("**/d/**/d/**/*.txt")
	assert.False(t, p.Match(components))
}

func TestSplit(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Split("/a//./b/"))
	assert.Empty(t, Split(""))
	assert.Empty(t, Split("/"))
}
