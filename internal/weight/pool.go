package weight

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Candidate is a file selected by the walk, waiting to be sized.
type Candidate struct {
	// Path is the absolute path the file was reached by.
	Path string
	// Display is the path shown to the user.
	Display string
	// Matches holds the indices of the patterns that matched Path.
	Matches []int
}

// pool sizes candidates on a bounded number of goroutines. submit blocks
// while every worker is busy, which keeps a fast walk from queuing an
// unbounded number of files.
type pool struct {
	group errgroup.Group
	size  func(Candidate)
}

// newPool creates a pool running at most workers size calls at once.
func newPool(workers int, size func(Candidate)) *pool {
	p := &pool{size: size}
	p.group.SetLimit(max(workers, 1))

	return p
}

// submit hands c to a worker, waiting for a free one. Candidates still
// waiting when ctx is cancelled are dropped.
func (p *pool) submit(ctx context.Context, c Candidate) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.group.Go(func() error {
		if ctx.Err() != nil {
			return nil
		}

		p.size(c)

		return nil
	})

	return nil
}

// wait blocks until every submitted candidate has been sized.
func (p *pool) wait() {
	_ = p.group.Wait()
}
