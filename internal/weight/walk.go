package weight

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	gitignore "github.com/monochromegane/go-gitignore"

	"github.com/idelchi/weight/internal/glob"
)

// root is a place to start looking: the static prefix of one or more patterns.
type root struct {
	// path is the absolute, host-formatted path.
	path string
	// depth is the number of components in path.
	depth int
	// literal is set when a pattern names this exact file.
	literal bool
}

// planRoots derives the deduplicated walk roots from the anchored patterns,
// shallowest first so an enclosing walk tends to reach nested roots before
// their own walk starts.
//
// When case is folded the pattern's own literal components may not match the
// names on disk, so only the base directory is used as the root and those
// components are matched during the walk.
func planRoots(patterns []compiled, foldCase bool) []root {
	seen := make(map[string]bool)

	var roots []root

	for _, p := range patterns {
		if p.Pattern == nil {
			continue
		}

		prefix := p.Prefix()
		literal := p.IsLiteral()

		if foldCase && len(prefix) > p.anchor {
			prefix = prefix[:p.anchor]
			literal = false
		}

		r := root{path: joinComponents(prefix), depth: len(prefix), literal: literal}

		if seen[r.path] {
			continue
		}

		seen[r.path] = true
		roots = append(roots, r)
	}

	sort.SliceStable(roots, func(i, j int) bool { return roots[i].depth < roots[j].depth })

	return roots
}

// splitPath breaks a host path into the components patterns are matched against.
func splitPath(path string) []string {
	return glob.Split(filepath.ToSlash(path))
}

// joinComponents turns components produced by splitPath back into an
// absolute host path.
func joinComponents(components []string) string {
	joined := strings.Join(components, "/")

	switch {
	case filepath.Separator == '/':
		joined = "/" + joined
	case len(components) == 1:
		// A bare volume name needs its separator to denote the volume root.
		joined += "/"
	}

	return filepath.FromSlash(joined)
}

// traversal is one fastwalk run: a root, or a symlinked directory met while
// walking an earlier traversal.
type traversal struct {
	// path is the directory as the patterns see it.
	path string
	// chain holds the identities of the directories leading to path, path
	// included. A link back into the chain is a cycle.
	chain map[FileID]struct{}
}

// walker is the traversal engine of one run. fastwalk calls into it from
// several goroutines.
//
// Roots are walked first. Symlinked directories, including symlinked roots,
// are queued and walked afterwards under their link path, so a real directory
// is always matched under its real path whatever aliases point at it.
type walker struct {
	patterns []*glob.Pattern
	base     string
	threads  int
	follow   bool
	excludes []*regexp.Regexp
	ignore   gitignore.IgnoreMatcher
	log      logger
	agg      *aggregator
	pool     *pool

	mu      sync.Mutex
	visited map[string]struct{}
	links   []*traversal
}

// markVisited claims the directory path. Matching depends only on the path,
// so a directory reached twice through the same path is read once.
func (w *walker) markVisited(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.visited[path]; ok {
		return false
	}

	w.visited[path] = struct{}{}

	return true
}

// dirID returns the identity of the directory path resolves to.
func dirID(path string) (FileID, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return FileID{}, err
	}

	id, _, err := identify(resolved)

	return id, err
}

// chainTo extends the chain of t down to dir, a directory inside t.
func chainTo(t *traversal, dir string) (map[FileID]struct{}, error) {
	chain := make(map[FileID]struct{}, len(t.chain)+1)
	for id := range t.chain {
		chain[id] = struct{}{}
	}

	cur := t.path

	for _, name := range strings.Split(strings.TrimPrefix(dir, t.path), string(filepath.Separator)) {
		if name == "" {
			continue
		}

		cur += string(filepath.Separator) + name

		id, err := dirID(cur)
		if err != nil {
			return nil, err
		}

		chain[id] = struct{}{}
	}

	return chain, nil
}

// queueLink schedules the symlinked directory at path for a later traversal,
// unless it leads back into a directory on its own chain.
func (w *walker) queueLink(t *traversal, path string) error {
	chain, err := chainTo(t, path[:strings.LastIndexByte(path, filepath.Separator)])
	if err != nil {
		return err
	}

	target, err := dirID(path)
	if err != nil {
		return err
	}

	if _, ok := chain[target]; ok {
		w.log.printf("[debug]: symlink cycle at %s\n", path)

		return nil
	}

	chain[target] = struct{}{}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.links = append(w.links, &traversal{path: path, chain: chain})

	return nil
}

// nextLink pops the oldest queued symlink traversal.
func (w *walker) nextLink() *traversal {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.links) == 0 {
		return nil
	}

	t := w.links[0]
	w.links = w.links[1:]

	return t
}

// canDescend reports whether any pattern could match below the directory.
func (w *walker) canDescend(components []string) bool {
	for _, p := range w.patterns {
		if p != nil && p.CanDescend(components) {
			return true
		}
	}

	return false
}

// matches returns the indices of all patterns matching the file.
func (w *walker) matches(components []string) []int {
	var matched []int

	for i, p := range w.patterns {
		if p != nil && p.Match(components) {
			matched = append(matched, i)
		}
	}

	return matched
}

// excluded checks the path against the exclusion regexes and .gitignore.
func (w *walker) excluded(path string, isDir bool) bool {
	fPath := filepath.ToSlash(path)

	for _, re := range w.excludes {
		if re.MatchString(fPath) {
			w.log.printf("[debug]: excluding %s\n", fPath)
			w.log.printf("	 matched regex: %s\n", re.String())

			return true
		}
	}

	if w.ignore != nil && w.ignore.Match(path, isDir) {
		w.log.printf("[debug]: excluding %s (gitignore)\n", fPath)

		return true
	}

	return false
}

// displayPath makes path relative to the base directory, or leaves it
// absolute when it lies outside.
func (w *walker) displayPath(path string) string {
	rel, err := filepath.Rel(w.base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.Clean(path)
	}

	return rel
}

// offer matches a file against all patterns and queues it for sizing.
func (w *walker) offer(ctx context.Context, path string) error {
	matched := w.matches(splitPath(path))
	if len(matched) == 0 {
		return nil
	}

	if w.excluded(path, false) {
		return nil
	}

	return w.pool.submit(ctx, Candidate{Path: path, Display: w.displayPath(path), Matches: matched})
}

// resolveLiteral handles a pattern that names one exact path.
func (w *walker) resolveLiteral(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if !info.Mode().IsRegular() {
		w.log.printf("[debug]: skipping %s (not a regular file)\n", path)

		return nil
	}

	return w.offer(ctx, path)
}

// walkRoot checks that the root is a directory and walks it. A symlinked
// root is queued with the other symlinked directories.
func (w *walker) walkRoot(ctx context.Context, dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	id, err := dirID(dir)
	if err != nil {
		return err
	}

	t := &traversal{path: dir, chain: map[FileID]struct{}{id: {}}}

	if link, err := os.Lstat(dir); err == nil && link.Mode()&fs.ModeSymlink != 0 {
		if !w.follow {
			w.log.printf("[debug]: not following symlinked root %s\n", dir)

			return nil
		}

		w.mu.Lock()
		w.links = append(w.links, t)
		w.mu.Unlock()

		return nil
	}

	return w.walk(ctx, t)
}

// walkLinks drains the queue of symlinked directories. Walking one may
// queue more.
func (w *walker) walkLinks(ctx context.Context) error {
	for t := w.nextLink(); t != nil; t = w.nextLink() {
		if err := w.walk(ctx, t); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			w.log.printf("[debug]: cannot walk %s: %v\n", t.path, err)
			w.agg.fail(newFailure(t.path, FailureTraversal, err))
		}
	}

	return nil
}

// walk traverses the tree below t.path.
func (w *walker) walk(ctx context.Context, t *traversal) error {
	dir := t.path

	if !w.markVisited(dir) {
		w.log.printf("[debug]: already walked %s\n", dir)

		return nil
	}

	start := dir

	// fastwalk does not descend into a root that is itself a symlink, so walk
	// the target and report paths under the name the pattern used.
	if info, err := os.Lstat(dir); err == nil && info.Mode()&fs.ModeSymlink != 0 {
		target, err := filepath.EvalSymlinks(dir)
		if err != nil {
			return err
		}

		start = target
	}

	conf := &fastwalk.Config{
		Follow:     false, // Symlinked directories are queued as traversals of their own
		NumWorkers: w.threads,
	}

	//nolint:varnamelen // d is standard for DirEntry
	return fastwalk.Walk(conf, start, func(path string, d fs.DirEntry, err error) error {
		if start != dir {
			path = dir + strings.TrimPrefix(path, start)
		}

		if err != nil {
			w.log.printf("[debug]: error accessing path %s: %v\n", path, err)
			w.agg.fail(newFailure(path, FailureTraversal, err))

			return nil
		}

		// Check cancellation periodically
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		switch {
		case d.IsDir():
			if path == dir {
				return nil
			}

			return w.enterDir(path)
		case d.Type()&fs.ModeSymlink != 0:
			return w.followLink(ctx, t, path)
		case d.Type().IsRegular():
			return w.offer(ctx, path)
		default:
			return nil
		}
	})
}

// enterDir decides whether fastwalk reads the directory at path.
func (w *walker) enterDir(path string) error {
	if !w.canDescend(splitPath(path)) {
		w.log.printf("[debug]: pruning %s\n", path)

		return filepath.SkipDir
	}

	if w.excluded(path, true) {
		return filepath.SkipDir
	}

	if !w.markVisited(path) {
		w.log.printf("[debug]: already walked %s\n", path)

		return filepath.SkipDir
	}

	return nil
}

// followLink resolves a symlink met during the walk of t. Links to files are
// sized like files; links to directories are queued.
func (w *walker) followLink(ctx context.Context, t *traversal, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		w.log.printf("[debug]: broken symlink %s: %v\n", path, err)

		// Only links a pattern would have counted are worth reporting.
		if len(w.matches(splitPath(path))) > 0 {
			w.agg.fail(newFailure(path, FailureTraversal, fmt.Errorf("resolving symlink: %w", err)))
		}

		return nil
	}

	if info.Mode().IsRegular() {
		return w.offer(ctx, path)
	}

	if !info.IsDir() || !w.follow {
		return nil
	}

	if !w.canDescend(splitPath(path)) || w.excluded(path, true) {
		return nil
	}

	if err := w.queueLink(t, path); err != nil {
		w.agg.fail(newFailure(path, FailureTraversal, err))
	}

	return nil
}

// isNotExist reports whether err means a path is missing.
func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
