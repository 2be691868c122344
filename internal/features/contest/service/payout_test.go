package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	cases := []struct {
		name   string
		votes  []uint32
		prizes []uint32
		net    int64
		want   []int64
	}{
		{
			name:   "distinct ranks",
			votes:  []uint32{2, 1, 0},
			prizes: []uint32{70, 30},
			net:    57300,
			want:   []int64{40110, 17190, 0},
		},
		{
			name:   "tie shares consumed slots",
			votes:  []uint32{1, 1},
			prizes: []uint32{70, 30},
			net:    38200,
			want:   []int64{19100, 19100},
		},
		{
			name:   "tie larger than remaining prizes",
			votes:  []uint32{5, 5, 5},
			prizes: []uint32{60, 30},
			net:    9000,
			want:   []int64{2700, 2700, 2700},
		},
		{
			name:   "tie below the top",
			votes:  []uint32{4, 2, 2, 1},
			prizes: []uint32{50, 30, 20},
			net:    1000,
			want:   []int64{500, 250, 250, 0},
		},
		{
			name:   "fewer entries than prizes",
			votes:  []uint32{3},
			prizes: []uint32{70, 30},
			net:    19100,
			want:   []int64{13370},
		},
		{
			name:   "rounds down",
			votes:  []uint32{1, 1, 1},
			prizes: []uint32{100},
			net:    100,
			want:   []int64{33, 33, 33},
		},
		{
			name:   "empty pool",
			votes:  []uint32{1, 0},
			prizes: []uint32{70, 30},
			net:    0,
			want:   []int64{0, 0},
		},
		{
			name:   "no entries",
			votes:  nil,
			prizes: []uint32{100},
			net:    500,
			want:   []int64{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Split(tc.votes, tc.prizes, tc.net)
			assert.Equal(t, tc.want, got)

			var sum int64
			for _, s := range got {
				sum += s
			}
			assert.LessOrEqual(t, sum, tc.net)
		})
	}
}
