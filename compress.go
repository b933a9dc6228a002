package fsa

import "math/bits"

// Per-symbol codes, two bits each, packed four to a byte.
const (
	codeFailure  = 0
	codeRepeat   = 1
	codeExplicit = 2
)

// ByteWidth returns the number of bytes needed to store any value below n.
func ByteWidth(n int) int {
	w := 1
	for limit := 256; limit < n && w < 8; limit <<= 8 {
		w++
	}
	return w
}

// Compressor encodes transition rows. A row is a full list of targets, one
// per symbol. Each position is coded as failure (target 0), repeat (same
// target as the previous symbol) or explicit; explicit targets follow the
// code bitmask at ByteWidth(capacity) bytes each, little-endian.
// An all-failure row encodes to an empty buffer.
//
// Repeat refers to the previous symbol of the same row, never to another
// row, so every buffer decodes on its own and rows can be read in any order.
//
// Targets must lie in [0, capacity).
type Compressor struct {
	symbols  int
	capacity int
	width    int
	maskLen  int
}

// NewCompressor returns a compressor for rows of the given length whose
// targets are below capacity.
func NewCompressor(symbols, capacity int) *Compressor {
	return &Compressor{
		symbols:  symbols,
		capacity: capacity,
		width:    ByteWidth(capacity),
		maskLen:  (2*symbols + 7) / 8,
	}
}

// Width returns the byte width of explicit targets.
func (c *Compressor) Width() int {
	return c.width
}

// Capacity returns the exclusive upper bound on targets.
func (c *Compressor) Capacity() int {
	return c.capacity
}

func classify(row []int, i int) int {
	v := row[i]
	switch {
	case v == 0:
		return codeFailure
	case i > 0 && row[i-1] == v:
		return codeRepeat
	default:
		return codeExplicit
	}
}

// Compress encodes row and returns a newly allocated buffer.
func (c *Compressor) Compress(row []int) []byte {
	row = row[:c.symbols]
	explicit := 0
	empty := true
	for i := range row {
		switch classify(row, i) {
		case codeExplicit:
			explicit++
			empty = false
		case codeRepeat:
			empty = false
		}
	}
	if empty {
		return nil
	}

	out := make([]byte, c.maskLen+explicit*c.width)
	pos := c.maskLen
	for i, v := range row {
		code := classify(row, i)
		out[i>>2] |= byte(code) << ((i & 3) * 2)
		if code == codeExplicit {
			putUint(out[pos:pos+c.width], uint64(v))
			pos += c.width
		}
	}
	return out
}

// Decompress decodes buf into row, which must hold at least one entry per symbol.
func (c *Compressor) Decompress(buf []byte, row []int) {
	row = row[:c.symbols]
	if len(buf) == 0 {
		clear(row)
		return
	}
	pos := c.maskLen
	for i := range row {
		switch codeAt(buf, i) {
		case codeFailure:
			row[i] = 0
		case codeRepeat:
			row[i] = row[i-1]
		default:
			row[i] = int(getUint(buf[pos : pos+c.width]))
			pos += c.width
		}
	}
}

// Target decodes the target of one symbol without decoding the whole row.
func (c *Compressor) Target(buf []byte, symbol int) int {
	if len(buf) == 0 || symbol < 0 || symbol >= c.symbols {
		return 0
	}
	i := symbol
	for codeAt(buf, i) == codeRepeat {
		i--
	}
	if codeAt(buf, i) == codeFailure {
		return 0
	}
	pos := c.maskLen + explicitBefore(buf, i)*c.width
	return int(getUint(buf[pos : pos+c.width]))
}

func codeAt(buf []byte, i int) int {
	return int(buf[i>>2]>>((i&3)*2)) & 3
}

// explicitBefore counts explicit codes at positions below i. Codes never
// take the value 3, so the high bit of a code marks it as explicit.
func explicitBefore(buf []byte, i int) int {
	n := 0
	full := i >> 2
	for _, b := range buf[:full] {
		n += bits.OnesCount8(b & 0xAA)
	}
	if rest := i & 3; rest > 0 {
		mask := byte(1)<<(2*rest) - 1
		n += bits.OnesCount8(buf[full] & mask & 0xAA)
	}
	return n
}

func putUint(dst []byte, v uint64) {
	for i := range dst {
		dst[i] = byte(v)
		v >>= 8
	}
}

func getUint(src []byte) uint64 {
	var v uint64
	for i := len(src) - 1; i >= 0; i-- {
		v = v<<8 | uint64(src[i])
	}
	return v
}
