package fsa

import "slices"

// keyMap numbers variable-length state keys in insertion order. Factory
// operations discover states breadth first, so ids come out in BFS order.
// Keys are copied into one arena; entries are chained per bucket.
type keyMap struct {
	buckets    []int32 // entry id + 1, 0 为空
	next       []int32 // 链表
	hashes     []uint64
	offsets    []int
	arena      []int32
	mask       uint64
	loadFactor float64
}

type keyMapOptions struct {
	capacity   int     // 默认16
	loadFactor float64 // 负载因子，默认0.75
}

type keyMapOption func(*keyMapOptions)

func withCapacity(capacity int) keyMapOption {
	return func(o *keyMapOptions) {
		o.capacity = capacity
	}
}

func withLoadFactor(loadFactor float64) keyMapOption {
	return func(o *keyMapOptions) {
		o.loadFactor = loadFactor
	}
}

func newKeyMap(opts ...keyMapOption) *keyMap {
	o := &keyMapOptions{capacity: 16, loadFactor: 0.75}
	for _, opt := range opts {
		opt(o)
	}
	if o.loadFactor <= 0 {
		o.loadFactor = 0.75
	}
	// 容量自动调整为2的幂
	size := 1
	for float64(size)*o.loadFactor < float64(o.capacity) {
		size <<= 1
	}
	return &keyMap{
		buckets:    make([]int32, size),
		offsets:    []int{0},
		mask:       uint64(size - 1),
		loadFactor: o.loadFactor,
	}
}

// Len returns the number of keys.
func (m *keyMap) Len() int {
	return len(m.hashes)
}

// Key returns the key with the given id. The result must not be modified.
func (m *keyMap) Key(id int) []int32 {
	return m.arena[m.offsets[id]:m.offsets[id+1]]
}

func (m *keyMap) find(key []int32, h uint64) int {
	for e := m.buckets[h&m.mask]; e != 0; e = m.next[e-1] {
		id := int(e - 1)
		if m.hashes[id] == h && slices.Equal(m.Key(id), key) {
			return id
		}
	}
	return -1
}

// Lookup returns the id of key.
func (m *keyMap) Lookup(key []int32) (int, bool) {
	id := m.find(key, hashKey(key))
	return id, id >= 0
}

// Insert returns the id of key, adding it if it is new.
func (m *keyMap) Insert(key []int32) (int, bool) {
	h := hashKey(key)
	if id := m.find(key, h); id >= 0 {
		return id, false
	}
	id := len(m.hashes)
	m.hashes = append(m.hashes, h)
	m.arena = append(m.arena, key...)
	m.offsets = append(m.offsets, len(m.arena))
	b := h & m.mask
	m.next = append(m.next, m.buckets[b])
	m.buckets[b] = int32(id + 1)

	if float64(len(m.hashes)) > float64(len(m.buckets))*m.loadFactor {
		m.resize()
	}
	return id, true
}

// 扩容并重新挂链
func (m *keyMap) resize() {
	size := len(m.buckets) << 1
	m.buckets = make([]int32, size)
	m.mask = uint64(size - 1)
	for id, h := range m.hashes {
		b := h & m.mask
		m.next[id] = m.buckets[b]
		m.buckets[b] = int32(id + 1)
	}
}
