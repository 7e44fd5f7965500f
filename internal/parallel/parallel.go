// Package parallel splits row loops of image conversions across goroutines.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Config controls how rows are split.
type Config struct {
	// Workers bounds concurrent chunks; 0 means one per logical CPU.
	Workers int

	// MinRows is the smallest chunk. Loops shorter than this run inline.
	MinRows int
}

// DefaultConfig uses every logical CPU with 32-row chunks.
func DefaultConfig() Config {
	return Config{Workers: runtime.NumCPU(), MinRows: 32}
}

func (c Config) chunk(n int) int {
	workers := c.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return max((n+workers-1)/workers, c.MinRows, 1)
}

// Rows calls f over disjoint [start, end) ranges covering [0, n). f must only write
// state owned by its range.
func Rows(n int, cfg Config, f func(start, end int)) {
	_ = RowsContext(context.Background(), n, cfg, func(start, end int) error {
		f(start, end)
		return nil
	})
}

// RowsContext is Rows with cancellation and error propagation. Chunks not yet started
// when ctx is done or a chunk fails are skipped; the first error is returned.
func RowsContext(ctx context.Context, n int, cfg Config, f func(start, end int) error) error {
	if n <= 0 {
		return ctx.Err()
	}
	size := cfg.chunk(n)
	if size >= n {
		if err := ctx.Err(); err != nil {
			return err
		}
		return f(0, n)
	}

	g, gctx := errgroup.WithContext(ctx)
	if cfg.Workers > 0 {
		g.SetLimit(cfg.Workers)
	}
	for start := 0; start < n; start += size {
		end := min(start+size, n)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return f(start, end)
		})
	}
	return g.Wait()
}
