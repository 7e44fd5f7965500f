package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoxIoU(t *testing.T) {
	a := Box{XMin: 0, YMin: 0, XMax: 10, YMax: 10}

	tests := []struct {
		name string
		b    Box
		want float64
	}{
		{name: "identical", b: a, want: 1},
		{name: "disjoint", b: Box{XMin: 20, YMin: 20, XMax: 30, YMax: 30}, want: 0},
		{name: "half overlap", b: Box{XMin: 5, YMin: 0, XMax: 15, YMax: 10}, want: 50.0 / 150.0},
		{name: "contained", b: Box{XMin: 0, YMin: 0, XMax: 5, YMax: 5}, want: 0.25},
		{name: "degenerate", b: Box{XMin: 3, YMin: 3, XMax: 3, YMax: 8}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, a.IoU(tt.b), 1e-9)
			assert.InDelta(t, tt.want, tt.b.IoU(a), 1e-9)
		})
	}
}
