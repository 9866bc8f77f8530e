package weight

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rootPaths(roots []root) []string {
	paths := make([]string, 0, len(roots))
	for _, r := range roots {
		paths = append(paths, r.path)
	}

	return paths
}

func TestPlanRoots(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("paths below are unix-shaped")
	}

	patterns, rejected := compilePatterns(
		[]string{"a/b/**", "a/*.txt", "*.go", "a/*.md", "a/[z", "a/x.txt"},
		"/base",
		false,
	)
	require.Len(t, rejected, 1)
	assert.Equal(t, 4, rejected[0].Index)

	roots := planRoots(patterns, false)

	assert.Equal(t, []string{"/base", "/base/a", "/base/a/b", "/base/a/x.txt"}, rootPaths(roots))
	assert.False(t, roots[2].literal)
	assert.True(t, roots[3].literal)
}

func TestPlanRootsFoldCaseStopsAtBase(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("paths below are unix-shaped")
	}

	patterns, _ := compilePatterns([]string{"A/*.TXT", "a/x.txt", "/abs/*.go"}, "/base", true)

	roots := planRoots(patterns, true)

	assert.Equal(t, []string{"/", "/base"}, rootPaths(roots))

	for _, r := range roots {
		assert.False(t, r.literal, r.path)
	}
}

func TestJoinComponents(t *testing.T) {
	if runtime.GOOS == "windows" {
		assert.Equal(t, `C:\`, joinComponents([]string{"C:"}))
		assert.Equal(t, `C:\a\b`, joinComponents([]string{"C:", "a", "b"}))

		return
	}

	assert.Equal(t, "/", joinComponents(nil))
	assert.Equal(t, "/a/b", joinComponents([]string{"a", "b"}))
	assert.Equal(t, []string{"a", "b"}, splitPath(joinComponents([]string{"a", "b"})))
}

func TestDisplayPath(t *testing.T) {
	base := t.TempDir()
	w := &walker{base: base}

	assert.Equal(t, filepath.Join("a", "x.txt"), w.displayPath(filepath.Join(base, "a", "x.txt")))

	outside := filepath.Join(filepath.Dir(base), "elsewhere", "y.txt")
	assert.Equal(t, outside, w.displayPath(outside))
}
