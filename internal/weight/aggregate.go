package weight

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bits-and-blooms/bitset"
)

// aggregator owns the seen set and the running totals. Every method is safe
// for concurrent use by the size workers.
type aggregator struct {
	mu         sync.Mutex
	topN       int
	listFiles  bool
	finalized  bool
	seen       map[FileID]*bitset.BitSet
	patterns   []PatternStat
	extStats   map[string]ExtStat
	topFiles   []FileStat
	failures   []Failure
	fileCount  int64
	totalBytes int64
}

// newAggregator creates an aggregator for the given patterns.
func newAggregator(patterns []string, topN int, listFiles bool) *aggregator {
	a := &aggregator{
		topN:      topN,
		listFiles: listFiles,
		seen:      make(map[FileID]*bitset.BitSet),
		patterns:  make([]PatternStat, len(patterns)),
		extStats:  make(map[string]ExtStat),
		topFiles:  make([]FileStat, 0),
	}

	for i, p := range patterns {
		a.patterns[i].Pattern = p
	}

	return a
}

// record counts a sized candidate. A file already seen adds nothing to the
// grand total, but its bytes are still attributed to every matching pattern
// that has not been credited with it yet.
func (a *aggregator) record(c Candidate, id FileID, size int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.finalized {
		return ErrFinalized
	}

	attributed, ok := a.seen[id]
	if !ok {
		attributed = bitset.New(uint(len(a.patterns)))
		a.seen[id] = attributed

		a.fileCount++
		a.totalBytes += size

		ext := filepath.Ext(c.Path)
		stat := a.extStats[ext]
		stat.Count++
		stat.Size += size
		a.extStats[ext] = stat

		// Collect all files, we'll sort and trim later
		a.topFiles = append(a.topFiles, FileStat{Path: c.Display, Size: size})
	}

	for _, i := range c.Matches {
		if attributed.Test(uint(i)) {
			continue
		}

		attributed.Set(uint(i))
		a.patterns[i].Files++
		a.patterns[i].Bytes += size
	}

	return nil
}

// fail records a non-fatal failure.
func (a *aggregator) fail(f Failure) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.failures = append(a.failures, f)
}

// progress returns the running file count and byte total.
func (a *aggregator) progress() (int64, int64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.fileCount, a.totalBytes
}

// finalize produces the final Result. Later calls to record fail.
// It extracts the top N files by size and converts paths to slash format
// for cross-platform consistency.
func (a *aggregator) finalize() *Result {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.finalized = true

	files := make([]FileStat, len(a.topFiles))
	copy(files, a.topFiles)

	for i := range files {
		files[i].Path = filepath.ToSlash(files[i].Path)
		files[i].Path = strings.TrimPrefix(files[i].Path, "./")
	}

	// Sort by size (largest first), ties by path so output is stable
	sort.Slice(files, func(i, j int) bool {
		if files[i].Size != files[j].Size {
			return files[i].Size > files[j].Size
		}

		return files[i].Path < files[j].Path
	})

	top := files
	if len(top) > a.topN {
		top = top[:a.topN]
	}

	// Reverse for display (smallest first, displayed in reverse)
	topFiles := make([]FileStat, len(top))
	for i := range top {
		topFiles[i] = top[len(top)-1-i]
	}

	result := &Result{
		FileCount:  a.fileCount,
		TotalBytes: a.totalBytes,
		Patterns:   append([]PatternStat(nil), a.patterns...),
		ExtStats:   a.extStats,
		TopFiles:   topFiles,
		Failures:   append([]Failure(nil), a.failures...),
		ErrorCount: int64(len(a.failures)),
		TopN:       a.topN,
	}

	if a.listFiles {
		sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
		result.Files = files
	}

	sort.Slice(result.Failures, func(i, j int) bool {
		return result.Failures[i].Path < result.Failures[j].Path
	})

	return result
}
