package weight

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregatorCountsEachFileOnce(t *testing.T) {
	agg := newAggregator([]string{"p1", "p2"}, 10, false)

	x := FileID{Dev: 1, Ino: 10}

	require.NoError(t, agg.record(Candidate{Path: "/a/x.txt", Display: "a/x.txt", Matches: []int{0}}, x, 10))
	// The same file reached again, now matched by the second pattern too.
	require.NoError(t, agg.record(Candidate{Path: "/a/x.txt", Display: "a/x.txt", Matches: []int{0, 1}}, x, 10))

	result := agg.finalize()

	assert.Equal(t, int64(1), result.FileCount)
	assert.Equal(t, int64(10), result.TotalBytes)
	assert.Equal(t, PatternStat{Pattern: "p1", Files: 1, Bytes: 10}, result.Patterns[0])
	assert.Equal(t, PatternStat{Pattern: "p2", Files: 1, Bytes: 10}, result.Patterns[1])
}

func TestAggregatorHardLinkAliases(t *testing.T) {
	agg := newAggregator([]string{"*.bin"}, 10, true)

	id := FileID{Dev: 7, Ino: 42}

	require.NoError(t, agg.record(Candidate{Path: "/d/one.bin", Display: "one.bin", Matches: []int{0}}, id, 100))
	require.NoError(t, agg.record(Candidate{Path: "/d/two.bin", Display: "two.bin", Matches: []int{0}}, id, 100))

	result := agg.finalize()

	assert.Equal(t, int64(100), result.TotalBytes)
	assert.Equal(t, int64(1), result.Patterns[0].Files)
	assert.Len(t, result.Files, 1)
}

func TestAggregatorRecordAfterFinalize(t *testing.T) {
	agg := newAggregator([]string{"p"}, 10, false)
	agg.finalize()

	err := agg.record(Candidate{Path: "/x", Matches: []int{0}}, FileID{Ino: 1}, 1)
	assert.ErrorIs(t, err, ErrFinalized)
}

func TestAggregatorTopFilesAndExtensions(t *testing.T) {
	agg := newAggregator([]string{"**"}, 2, false)

	sizes := map[string]int64{"a.txt": 5, "b.txt": 50, "c.go": 500, "d": 1}

	var ino uint64
	for name, size := range sizes {
		ino++
		require.NoError(t, agg.record(Candidate{Path: "/" + name, Display: "./" + name, Matches: []int{0}}, FileID{Ino: ino}, size))
	}

	result := agg.finalize()

	assert.Equal(t, []FileStat{{Path: "b.txt", Size: 50}, {Path: "c.go", Size: 500}}, result.TopFiles)
	assert.Equal(t, ExtStat{Count: 2, Size: 55}, result.ExtStats[".txt"])
	assert.Equal(t, ExtStat{Count: 1, Size: 500}, result.ExtStats[".go"])
	assert.Equal(t, ExtStat{Count: 1, Size: 1}, result.ExtStats[""])
	assert.Nil(t, result.Files)
}

func TestAggregatorConcurrentRecords(t *testing.T) {
	const (
		workers = 8
		files   = 500
	)

	agg := newAggregator([]string{"p1", "p2"}, 10, false)

	var wg sync.WaitGroup

	for w := range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range files {
				c := Candidate{Path: fmt.Sprintf("/f%d", i), Matches: []int{w % 2}}
				assert.NoError(t, agg.record(c, FileID{Ino: uint64(i)}, 3))
			}
		}()
	}

	wg.Wait()

	result := agg.finalize()

	assert.Equal(t, int64(files), result.FileCount)
	assert.Equal(t, int64(files*3), result.TotalBytes)
	assert.Equal(t, int64(files*3), result.Patterns[0].Bytes)
	assert.Equal(t, int64(files*3), result.Patterns[1].Bytes)
}

func TestAggregatorFailures(t *testing.T) {
	agg := newAggregator([]string{"p"}, 10, false)

	agg.fail(newFailure("/z", FailureSizeLookup, fmt.Errorf("gone")))
	agg.fail(newFailure("/a", FailureTraversal, fmt.Errorf("denied")))

	result := agg.finalize()

	require.Len(t, result.Failures, 2)
	assert.Equal(t, int64(2), result.ErrorCount)
	assert.Equal(t, "/a", result.Failures[0].Path)
	assert.Equal(t, FailureTraversal, result.Failures[0].Kind)
	assert.Equal(t, "/z: gone", result.Failures[1].Error())
}
