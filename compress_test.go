package fsa

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByteWidth(t *testing.T) {
	assert.Equal(t, 1, ByteWidth(0))
	assert.Equal(t, 1, ByteWidth(256))
	assert.Equal(t, 2, ByteWidth(257))
	assert.Equal(t, 2, ByteWidth(1<<16))
	assert.Equal(t, 3, ByteWidth(1<<16+1))
}

func TestCompressorRoundTrip(t *testing.T) {
	rows := [][]int{
		{0, 0, 0, 0, 0},
		{1, 1, 1, 1, 1},
		{0, 3, 3, 0, 7},
		{299, 0, 299, 299, 5},
		{4, 0, 0, 0, 4},
	}
	c := NewCompressor(5, 300)
	assert.Equal(t, 2, c.Width())
	got := make([]int, 5)
	for _, row := range rows {
		buf := c.Compress(row)
		c.Decompress(buf, got)
		assert.Equal(t, row, got)
		for sym, want := range row {
			assert.Equal(t, want, c.Target(buf, sym), "row %v symbol %d", row, sym)
		}
	}
}

func TestCompressorEmptyRow(t *testing.T) {
	c := NewCompressor(3, 10)
	assert.Empty(t, c.Compress([]int{0, 0, 0}))

	row := []int{9, 9, 9}
	c.Decompress(nil, row)
	assert.Equal(t, []int{0, 0, 0}, row)
	assert.Equal(t, 0, c.Target(nil, 1))
	assert.Equal(t, 0, c.Target([]byte{0xff}, 7))
}

func TestCompressorRowsDecodeInAnyOrder(t *testing.T) {
	rows := [][]int{
		{3, 3, 3, 0},
		{3, 3, 3, 0},
		{0, 2, 2, 2},
	}
	c := NewCompressor(4, 4)
	bufs := make([][]byte, len(rows))
	for i, row := range rows {
		bufs[i] = c.Compress(row)
	}
	got := make([]int, 4)
	for i := len(rows) - 1; i >= 0; i-- {
		c.Decompress(bufs[i], got)
		assert.Equal(t, rows[i], got)
	}
	assert.Equal(t, bufs[0], bufs[1])
}

func TestCompressorRepeatsShrinkRows(t *testing.T) {
	c := NewCompressor(8, 1000)
	same := c.Compress([]int{5, 5, 5, 5, 5, 5, 5, 5})
	mixed := c.Compress([]int{1, 2, 3, 4, 5, 6, 7, 8})
	// two mask bytes, then one or eight explicit targets
	assert.Len(t, same, 2+2)
	assert.Len(t, mixed, 2+16)
}

func TestCompressorRandom(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for _, symbols := range []int{1, 3, 4, 9, 17} {
		c := NewCompressor(symbols, 70000)
		got := make([]int, symbols)
		for i := 0; i < 200; i++ {
			row := make([]int, symbols)
			for j := range row {
				switch r.Intn(3) {
				case 0:
				case 1:
					if j > 0 {
						row[j] = row[j-1]
					}
				default:
					row[j] = r.Intn(70000)
				}
			}
			buf := c.Compress(row)
			c.Decompress(buf, got)
			assert.Equal(t, row, got)
			sym := r.Intn(symbols)
			assert.Equal(t, row[sym], c.Target(buf, sym))
		}
	}
}
