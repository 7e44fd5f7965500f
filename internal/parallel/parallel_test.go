package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRows_CoversEveryRowOnce(t *testing.T) {
	tests := []struct {
		name string
		n    int
		cfg  Config
	}{
		{name: "inline", n: 10, cfg: Config{Workers: 4, MinRows: 32}},
		{name: "chunked", n: 1000, cfg: Config{Workers: 4, MinRows: 8}},
		{name: "uneven", n: 97, cfg: Config{Workers: 3, MinRows: 1}},
		{name: "default workers", n: 640, cfg: Config{MinRows: 16}},
		{name: "empty", n: 0, cfg: DefaultConfig()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := make([]int32, tt.n)
			Rows(tt.n, tt.cfg, func(start, end int) {
				for y := start; y < end; y++ {
					atomic.AddInt32(&hits[y], 1)
				}
			})
			for y, h := range hits {
				assert.Equal(t, int32(1), h, "row %d", y)
			}
		})
	}
}

func TestRowsContext_FirstErrorWins(t *testing.T) {
	boom := errors.New("boom")
	err := RowsContext(context.Background(), 100, Config{Workers: 2, MinRows: 10}, func(start, _ int) error {
		if start == 50 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestRowsContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	err := RowsContext(ctx, 100, Config{Workers: 2, MinRows: 10}, func(_, _ int) error {
		calls.Add(1)
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls.Load())

	err = RowsContext(ctx, 5, DefaultConfig(), func(_, _ int) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
