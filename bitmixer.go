package fsa

const (
	// Golden ratio bit mixers.
	phiC32 = uint32(0x9e3779b9)
	phiC64 = uint64(0x9e3779b97f4a7c15)
)

// mix32 is the 32-bit finalisation step of MurmurHash3.
func mix32(v int32) uint32 {
	k := uint32(v)
	k = (k ^ (k >> 16)) * 0x85ebca6b
	k = (k ^ (k >> 13)) * 0xc2b2ae35
	return k ^ (k >> 16)
}

func mixPhi(k uint32) uint32 {
	h := k * phiC32
	return h ^ (h >> 16)
}

// hashKey hashes a state key, seeded with its length.
func hashKey(key []int32) uint64 {
	h := phiC64 * uint64(len(key)+1)
	for _, v := range key {
		h = (h ^ uint64(mix32(v))) * phiC64
	}
	return h ^ uint64(mixPhi(uint32(h>>32)))
}
