package weight

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"

	gitignore "github.com/monochromegane/go-gitignore"

	"github.com/idelchi/weight/internal/glob"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 500 * time.Millisecond

// DefaultTopN is the number of largest files tracked when Options.TopN is unset.
const DefaultTopN = 10

// logger provides conditional debug output.
type logger struct {
	enabled bool
	out     io.Writer
}

// printf prints debug output if logging is enabled.
func (l logger) printf(format string, args ...any) {
	if l.enabled {
		fmt.Fprintf(l.out, format, args...)
	}
}

// startProgressReporter invokes hook(files, bytes) on each tick until ctx is done.
func startProgressReporter(ctx context.Context, agg *aggregator, hook func(int64, int64), interval time.Duration) {
	if hook == nil {
		return
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				hook(agg.progress())
			case <-ctx.Done():
				return
			}
		}
	}()
}

// compiled is a pattern anchored to an absolute location.
type compiled struct {
	*glob.Pattern
	// anchor is the number of leading components taken from the base
	// directory rather than from the pattern text.
	anchor int
}

// compilePatterns compiles every pattern with one compiler and anchors the
// relative ones at base. Rejected patterns leave a nil hole so indices keep
// matching Options.Patterns.
func compilePatterns(raw []string, base string, foldCase bool) ([]compiled, []*PatternError) {
	compiler := glob.NewCompiler(foldCase)
	baseComponents := splitPath(base)

	patterns := make([]compiled, len(raw))

	var rejected []*PatternError

	for i, r := range raw {
		p, err := compiler.Compile(r)
		if err != nil {
			rejected = append(rejected, &PatternError{Index: i, Pattern: r, Err: err})

			continue
		}

		anchor := 0
		if !p.Absolute() && !filepath.IsAbs(filepath.FromSlash(r)) {
			p = p.WithBase(baseComponents)
			anchor = len(baseComponents)
		}

		patterns[i] = compiled{Pattern: p, anchor: anchor}
	}

	return patterns, rejected
}

// loadGitIgnore reads the .gitignore in dir, if there is one.
func loadGitIgnore(dir string) (gitignore.IgnoreMatcher, error) {
	path := filepath.Join(dir, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		if isNotExist(err) {
			return nil, nil //nolint:nilnil // No .gitignore means nothing to ignore
		}

		return nil, err
	}

	return gitignore.NewGitIgnore(path, dir)
}

// Run computes the total size of the files matching opt.Patterns.
//
// Every pattern is compiled up front; invalid ones are reported in the
// result and the run continues with the rest. Each file is counted once in
// the grand total, however many patterns or paths reach it, while every
// matching pattern is credited in its own subtotal. Unreadable directories,
// broken symlinks and files that vanish before they are sized are recorded
// as failures and never abort the run.
//
// The walk can be cancelled via ctx. Progress updates are sent to
// progressHook if provided.
//
//nolint:funlen // Linear setup of a single run.
func Run(ctx context.Context, opt Options, progressHook func(int64, int64)) (*Result, error) {
	if opt.DebugOutput == nil {
		opt.DebugOutput = os.Stderr
	}

	log := logger{enabled: opt.Debug, out: opt.DebugOutput}

	if opt.Dir == "" {
		opt.Dir = "."
	}

	base, err := filepath.Abs(opt.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolving base directory: %w", err)
	}

	if opt.Threads < 1 {
		opt.Threads = DefaultThreads()
	}

	if opt.TopN <= 0 {
		opt.TopN = DefaultTopN
	}

	if len(opt.Patterns) == 0 {
		return nil, fmt.Errorf("%w: no patterns given", ErrAllPatternsInvalid)
	}

	patterns, rejected := compilePatterns(opt.Patterns, base, opt.FoldCase)

	for _, r := range rejected {
		log.printf("[debug]: rejected %v\n", r)
	}

	if len(rejected) == len(opt.Patterns) {
		errs := make([]error, 0, len(rejected))
		for _, r := range rejected {
			errs = append(errs, r)
		}

		return nil, fmt.Errorf("%w: %w", ErrAllPatternsInvalid, errors.Join(errs...))
	}

	excludeRegexes := make([]*regexp.Regexp, 0, len(opt.Excludes))

	for _, p := range opt.Excludes {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling exclusion pattern %q: %w", p, err)
		}

		excludeRegexes = append(excludeRegexes, re)
	}

	var ignore gitignore.IgnoreMatcher
	if opt.GitIgnore {
		if ignore, err = loadGitIgnore(base); err != nil {
			return nil, fmt.Errorf("loading .gitignore: %w", err)
		}
	}

	log.printf("[debug]: base directory: %s\n", base)
	log.printf("[debug]: threads: %d, fold case: %t, follow symlinks: %t\n", opt.Threads, opt.FoldCase, !opt.NoFollow)

	agg := newAggregator(opt.Patterns, opt.TopN, opt.Verbose)

	for _, r := range rejected {
		agg.patterns[r.Index].Error = r.Err.Error()
	}

	// Create child context to ensure progress reporter cleanup
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	startProgressReporter(ctx, agg, progressHook, opt.ProgressInterval)

	start := time.Now()

	pool := newPool(opt.Threads, func(c Candidate) {
		id, size, err := identify(c.Path)
		if err != nil {
			log.printf("[debug]: error sizing %s: %v\n", c.Path, err)
			agg.fail(newFailure(c.Path, FailureSizeLookup, err))

			return
		}

		if size < opt.MinSize {
			return
		}

		if err := agg.record(c, id, size); err != nil {
			log.printf("[debug]: dropping %s: %v\n", c.Path, err)
		}
	})

	matchers := make([]*glob.Pattern, len(patterns))
	for i, p := range patterns {
		matchers[i] = p.Pattern
	}

	w := &walker{
		patterns: matchers,
		base:     base,
		threads:  opt.Threads,
		follow:   !opt.NoFollow,
		excludes: excludeRegexes,
		ignore:   ignore,
		log:      log,
		agg:      agg,
		pool:     pool,
		visited:  make(map[string]struct{}),
	}

	resolved := 0

	for _, r := range planRoots(patterns, opt.FoldCase) {
		log.printf("[debug]: root %s (literal: %t)\n", r.path, r.literal)

		if r.literal {
			err = w.resolveLiteral(ctx, r.path)
		} else {
			err = w.walkRoot(ctx, r.path)
		}

		switch {
		case err == nil:
			resolved++
		case ctx.Err() != nil:
			pool.wait()

			return nil, ctx.Err()
		default:
			log.printf("[debug]: cannot resolve root %s: %v\n", r.path, err)
			agg.fail(newFailure(r.path, FailureTraversal, err))
		}
	}

	if err := w.walkLinks(ctx); err != nil {
		pool.wait()

		return nil, err
	}

	pool.wait()

	if resolved == 0 {
		return nil, fmt.Errorf("%w: %w", ErrNoRoots, errors.Join(failureErrors(agg.finalize().Failures)...))
	}

	result := agg.finalize()
	result.Rejected = rejected
	result.Elapsed = time.Since(start)

	return result, nil
}

func failureErrors(failures []Failure) []error {
	errs := make([]error, 0, len(failures))
	for _, f := range failures {
		errs = append(errs, f)
	}

	return errs
}
