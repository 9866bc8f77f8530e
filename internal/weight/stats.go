package weight

import (
	"io"
	"runtime"
	"time"
)

// ExtStat represents statistics for a file extension.
type ExtStat struct {
	// Count is the number of files with this extension.
	Count int `json:"count" yaml:"count"`
	// Size is the cumulative size in bytes.
	Size int64 `json:"size" yaml:"size"`
}

// FileStat represents a single file path and size.
type FileStat struct {
	// Path is the file path, relative to the base directory when inside it.
	Path string `json:"path" yaml:"path"`
	// Size is the size in bytes.
	Size int64 `json:"size" yaml:"size"`
}

// PatternStat holds the subtotal of one input pattern.
type PatternStat struct {
	// Pattern is the pattern as given.
	Pattern string `json:"pattern" yaml:"pattern"`
	// Files is the number of distinct files the pattern matched.
	Files int64 `json:"files" yaml:"files"`
	// Bytes is the cumulative size of those files.
	Bytes int64 `json:"bytes" yaml:"bytes"`
	// Error is set when the pattern was rejected.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Result holds the aggregate of a run. It is not modified after Run returns.
type Result struct {
	// FileCount is the number of distinct files counted.
	FileCount int64 `json:"file_count" yaml:"file_count"`
	// TotalBytes is the size of all distinct files, each counted once.
	TotalBytes int64 `json:"total_bytes" yaml:"total_bytes"`
	// Patterns holds one subtotal per input pattern, in input order.
	Patterns []PatternStat `json:"patterns" yaml:"patterns"`
	// ExtStats maps file extensions to their statistics.
	ExtStats map[string]ExtStat `json:"ext_stats" yaml:"ext_stats"`
	// TopFiles contains the N largest files, smallest first.
	TopFiles []FileStat `json:"top_files" yaml:"top_files"`
	// Files lists every counted file when Options.Verbose is set.
	Files []FileStat `json:"files,omitempty" yaml:"files,omitempty"`
	// Failures lists the paths skipped because of errors.
	Failures []Failure `json:"failures,omitempty" yaml:"failures,omitempty"`
	// ErrorCount is the number of failures encountered.
	ErrorCount int64 `json:"error_count" yaml:"error_count"`
	// Rejected holds the patterns that failed to compile.
	Rejected []*PatternError `json:"-" yaml:"-"`
	// Elapsed is the total time taken for the run.
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`
	// TopN is the number of top results tracked.
	TopN int `json:"top_n" yaml:"top_n"`
}

// Options configures a run and the CLI around it.
type Options struct {
	// Patterns are the glob patterns to evaluate.
	Patterns []string
	// Dir is the directory relative patterns are anchored to (default ".").
	Dir string
	// Threads bounds traversal and size lookups (0 = DefaultThreads).
	Threads int
	// FoldCase makes all patterns case-insensitive.
	FoldCase bool
	// NoFollow disables traversal of symlinks to directories.
	NoFollow bool
	// Excludes contains regex patterns to exclude.
	Excludes []string
	// GitIgnore honours the .gitignore file found in Dir.
	GitIgnore bool
	// MinSize is the minimum file size in bytes.
	MinSize int64
	// TopN is the number of top results to track.
	TopN int
	// Verbose lists every counted file in the result.
	Verbose bool
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
	// Debug indicates whether debug output is enabled.
	Debug bool
	// DebugOutput receives debug output (default os.Stderr).
	DebugOutput io.Writer
	// Output represents output format (table, json or yaml).
	Output string
	// NoColor disables colored table output.
	NoColor bool
	// Init names the shell to print the integration snippet for.
	Init string
}

// DefaultThreads is the parallelism used when Options.Threads is not set.
func DefaultThreads() int {
	return runtime.NumCPU()
}

// DefaultFoldCase reports whether the host's usual filesystems compare
// names case-insensitively.
func DefaultFoldCase() bool {
	return runtime.GOOS == "windows" || runtime.GOOS == "darwin"
}
