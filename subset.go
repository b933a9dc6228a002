package fsa

import (
	"encoding/binary"
	"iter"
	"slices"
	"sort"

	"github.com/bits-and-blooms/bitset"
)

// SubsetKind names the representation a Subset currently uses.
type SubsetKind int

const (
	KindEmpty SubsetKind = iota
	KindFull
	KindRange
	KindSingleton
	KindList
	KindBitset
	KindBoth
)

var subsetKindNames = [...]string{"empty", "full", "range", "singleton", "list", "bitset", "both"}

func (k SubsetKind) String() string {
	if k < 0 || int(k) >= len(subsetKindNames) {
		return "unknown"
	}
	return subsetKindNames[k]
}

// Subset is a set of ids drawn from 1..n-1, where n is supplied by the
// owner (a state or label count). The representation adapts to the
// contents: empty, full, a contiguous range, a single id, a sorted list,
// a bitset, or a bitset paired with a sorted list for callers that need
// both fast membership tests and ordered iteration.
//
// Ids outside 1..n-1 are never members; passing them to Include is a
// caller error and is ignored.
type Subset struct {
	kind  SubsetKind
	n     int
	count int
	// lo and hi hold the smallest and largest member whenever count > 0.
	lo, hi int
	list   []int
	bits   *bitset.BitSet

	random     bool
	sequential bool
	bigHint    bool
}

// NewSubset returns an empty subset of 1..n-1.
func NewSubset(n int) *Subset {
	return &Subset{n: n}
}

// FullSubset returns the subset containing all of 1..n-1.
func FullSubset(n int) *Subset {
	s := NewSubset(n)
	s.Fill()
	return s
}

// Kind returns the current representation.
func (s *Subset) Kind() SubsetKind {
	return s.kind
}

// Universe returns n: members are drawn from 1..n-1.
func (s *Subset) Universe() int {
	return s.n
}

// Count returns the number of members.
func (s *Subset) Count() int {
	return s.count
}

// Contains reports whether id is a member.
func (s *Subset) Contains(id int) bool {
	if id <= 0 || id >= s.n {
		return false
	}
	switch s.kind {
	case KindFull:
		return true
	case KindRange, KindSingleton:
		return id >= s.lo && id <= s.hi
	case KindList:
		_, found := slices.BinarySearch(s.list, id)
		return found
	case KindBitset, KindBoth:
		return s.bits.Test(uint(id))
	}
	return false
}

// First returns the smallest member.
func (s *Subset) First() (int, bool) {
	if s.count == 0 {
		return 0, false
	}
	return s.lo, true
}

// Last returns the largest member.
func (s *Subset) Last() (int, bool) {
	if s.count == 0 {
		return 0, false
	}
	return s.hi, true
}

// Next returns the smallest member greater than after.
func (s *Subset) Next(after int) (int, bool) {
	if s.count == 0 || after >= s.hi {
		return 0, false
	}
	if after < s.lo {
		return s.lo, true
	}
	switch s.kind {
	case KindFull, KindRange:
		return after + 1, true
	case KindList, KindBoth:
		i := sort.SearchInts(s.list, after+1)
		return s.list[i], true
	case KindBitset:
		v, ok := s.bits.NextSet(uint(after + 1))
		return int(v), ok
	}
	return 0, false
}

// All iterates over the members in ascending order.
func (s *Subset) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		if s.kind == KindList || s.kind == KindBoth {
			for _, v := range s.list {
				if !yield(v) {
					return
				}
			}
			return
		}
		for v, ok := s.First(); ok; v, ok = s.Next(v) {
			if !yield(v) {
				return
			}
		}
	}
}

// Slice returns the members in ascending order.
func (s *Subset) Slice() []int {
	out := make([]int, 0, s.count)
	for v := range s.All() {
		out = append(out, v)
	}
	return out
}

// Assign sets the membership of id.
func (s *Subset) Assign(id int, member bool) {
	if member {
		s.Include(id)
	} else {
		s.Exclude(id)
	}
}

// Include adds id to the subset.
func (s *Subset) Include(id int) {
	if id <= 0 || id >= s.n || s.Contains(id) {
		return
	}
	switch s.kind {
	case KindEmpty:
		if s.bigHint {
			s.kind = s.storageKind(1)
			s.allocate(nil)
			s.insertStored(id)
		} else {
			s.kind = KindSingleton
		}
		s.lo, s.hi = id, id
		s.count = 1
		return
	case KindSingleton, KindRange:
		switch {
		case id == s.hi+1:
			s.hi++
			s.kind = KindRange
		case id == s.lo-1:
			s.lo--
			s.kind = KindRange
		default:
			s.materialize(s.count + 1)
			s.insertStored(id)
		}
	default:
		s.insertStored(id)
	}
	s.count++
	s.lo = min(s.lo, id)
	s.hi = max(s.hi, id)
	if s.count == s.n-1 {
		s.Fill()
	}
}

// Exclude removes id from the subset.
func (s *Subset) Exclude(id int) {
	if !s.Contains(id) {
		return
	}
	if s.count == 1 {
		s.Clear()
		return
	}
	if s.kind == KindFull {
		s.kind = KindRange
	}
	switch s.kind {
	case KindRange:
		switch id {
		case s.lo:
			s.lo++
		case s.hi:
			s.hi--
		default:
			s.materialize(s.count)
			s.removeStored(id)
		}
		if s.kind == KindRange && s.lo == s.hi {
			s.kind = KindSingleton
		}
		s.count--
		return
	default:
		s.removeStored(id)
	}
	s.count--
	switch id {
	case s.lo:
		s.lo = s.nextStored(id)
	case s.hi:
		s.hi = s.prevStored(id)
	}
}

// Clear removes every member. Access hints are kept.
func (s *Subset) Clear() {
	s.kind = KindEmpty
	s.count = 0
	s.lo, s.hi = 0, 0
	s.list = nil
	s.bits = nil
}

// Fill makes every id in 1..n-1 a member.
func (s *Subset) Fill() {
	if s.n <= 1 {
		s.Clear()
		return
	}
	s.kind = KindFull
	s.count = s.n - 1
	s.lo, s.hi = 1, s.n-1
	s.list = nil
	s.bits = nil
}

// Resize changes the universe to 1..n-1. Members at or above n are dropped;
// growing never adds members.
func (s *Subset) Resize(n int) {
	if n == s.n {
		return
	}
	if n > s.n {
		if s.kind == KindFull {
			s.kind = KindRange
			if s.lo == s.hi {
				s.kind = KindSingleton
			}
		}
		s.n = n
		return
	}
	members := s.Slice()
	s.n = n
	s.Clear()
	for _, m := range members {
		if m < n {
			s.Include(m)
		}
	}
}

// Clone returns an independent copy.
func (s *Subset) Clone() *Subset {
	c := *s
	if s.list != nil {
		c.list = slices.Clone(s.list)
	}
	if s.bits != nil {
		c.bits = s.bits.Clone()
	}
	return &c
}

// ExpectBigBitset tells the subset that many members are about to be added,
// so it should switch to a bitset now rather than growing a list.
func (s *Subset) ExpectBigBitset(on bool) {
	s.bigHint = on
	if on && s.kind == KindList {
		s.materialize(s.count)
	}
}

// SetFastRandomAccess biases the representation toward O(1) membership tests.
func (s *Subset) SetFastRandomAccess() {
	s.random = true
	if s.kind == KindList {
		s.materialize(s.count)
	}
}

// SetFastSequentialAccess biases the representation toward ordered iteration.
func (s *Subset) SetFastSequentialAccess() {
	s.sequential = true
	if s.kind == KindBitset {
		s.materialize(s.count)
	}
}

func (s *Subset) listLimit() int {
	return max(16, s.n/64)
}

func (s *Subset) storageKind(size int) SubsetKind {
	wantBits := s.bigHint || s.random || size > s.listLimit()
	switch {
	case wantBits && s.sequential:
		return KindBoth
	case wantBits:
		return KindBitset
	default:
		return KindList
	}
}

// materialize moves the current members into list or bitset storage
// chosen for a set of the given size.
func (s *Subset) materialize(size int) {
	members := s.Slice()
	s.kind = s.storageKind(size)
	s.allocate(members)
}

func (s *Subset) allocate(members []int) {
	s.list, s.bits = nil, nil
	if s.kind == KindList || s.kind == KindBoth {
		s.list = members
		if s.list == nil {
			s.list = make([]int, 0, 4)
		}
	}
	if s.kind == KindBitset || s.kind == KindBoth {
		s.bits = bitset.New(uint(s.n))
		for _, m := range members {
			s.bits.Set(uint(m))
		}
	}
}

func (s *Subset) insertStored(id int) {
	if s.bits != nil {
		s.bits.Set(uint(id))
	}
	if s.list != nil {
		i := sort.SearchInts(s.list, id)
		s.list = slices.Insert(s.list, i, id)
		if s.kind == KindList && len(s.list) > s.listLimit() {
			s.materialize(len(s.list))
		}
	}
}

func (s *Subset) removeStored(id int) {
	if s.bits != nil {
		s.bits.Clear(uint(id))
	}
	if s.list != nil {
		if i, found := slices.BinarySearch(s.list, id); found {
			s.list = slices.Delete(s.list, i, i+1)
		}
	}
}

func (s *Subset) nextStored(after int) int {
	if s.list != nil {
		return s.list[sort.SearchInts(s.list, after+1)]
	}
	v, _ := s.bits.NextSet(uint(after + 1))
	return int(v)
}

func (s *Subset) prevStored(before int) int {
	if s.list != nil {
		return s.list[sort.SearchInts(s.list, before)-1]
	}
	for v := before - 1; v > 0; v-- {
		if s.bits.Test(uint(v)) {
			return v
		}
	}
	return 0
}

// Packed encodings start with one of these tags.
const (
	packEmpty byte = iota
	packFull
	packRange
	packSingleton
	packList
	packBitset
)

// Pack serialises the subset. Stored sets use whichever of a delta-coded
// list or a raw bitset is smaller.
func (s *Subset) Pack() []byte {
	out := binary.AppendUvarint(nil, uint64(s.n))
	switch s.kind {
	case KindEmpty:
		return append(out, packEmpty)
	case KindFull:
		return append(out, packFull)
	case KindRange:
		out = append(out, packRange)
		out = binary.AppendUvarint(out, uint64(s.lo))
		return binary.AppendUvarint(out, uint64(s.hi))
	case KindSingleton:
		out = append(out, packSingleton)
		return binary.AppendUvarint(out, uint64(s.lo))
	}

	list := binary.AppendUvarint(nil, uint64(s.count))
	prev := 0
	for v := range s.All() {
		list = binary.AppendUvarint(list, uint64(v-prev))
		prev = v
	}
	bits := s.bits
	if bits == nil {
		bits = bitset.New(uint(s.n))
		for _, v := range s.list {
			bits.Set(uint(v))
		}
	}
	raw, err := bits.MarshalBinary()
	if err != nil || len(list) <= len(raw) {
		out = append(out, packList)
		return append(out, list...)
	}
	out = append(out, packBitset)
	return append(out, raw...)
}

// UnpackSubset restores a subset written by Pack.
func UnpackSubset(data []byte) (*Subset, error) {
	n, used := binary.Uvarint(data)
	if used <= 0 || used >= len(data) {
		return nil, ErrCorruptSubset
	}
	s := NewSubset(int(n))
	tag := data[used]
	rest := data[used+1:]
	switch tag {
	case packEmpty:
	case packFull:
		s.Fill()
	case packRange, packSingleton:
		lo, k := binary.Uvarint(rest)
		if k <= 0 {
			return nil, ErrCorruptSubset
		}
		hi := lo
		if tag == packRange {
			var k2 int
			hi, k2 = binary.Uvarint(rest[k:])
			if k2 <= 0 {
				return nil, ErrCorruptSubset
			}
		}
		if lo == 0 || hi < lo || hi >= n {
			return nil, ErrCorruptSubset
		}
		s.kind = KindRange
		if lo == hi {
			s.kind = KindSingleton
		}
		s.lo, s.hi = int(lo), int(hi)
		s.count = int(hi - lo + 1)
	case packList:
		count, k := binary.Uvarint(rest)
		if k <= 0 {
			return nil, ErrCorruptSubset
		}
		rest = rest[k:]
		members := make([]int, 0, min(count, uint64(len(rest))))
		prev := 0
		for i := uint64(0); i < count; i++ {
			d, k := binary.Uvarint(rest)
			if k <= 0 || d == 0 {
				return nil, ErrCorruptSubset
			}
			rest = rest[k:]
			prev += int(d)
			if prev >= s.n {
				return nil, ErrCorruptSubset
			}
			members = append(members, prev)
		}
		s.restore(members)
	case packBitset:
		bits := new(bitset.BitSet)
		if err := bits.UnmarshalBinary(rest); err != nil {
			return nil, ErrCorruptSubset
		}
		members := make([]int, 0, bits.Count())
		for v, ok := bits.NextSet(1); ok && int(v) < s.n; v, ok = bits.NextSet(v + 1) {
			members = append(members, int(v))
		}
		s.restore(members)
	default:
		return nil, ErrCorruptSubset
	}
	return s, nil
}

func (s *Subset) restore(members []int) {
	switch {
	case len(members) == 0:
		return
	case len(members) == s.n-1:
		s.Fill()
		return
	}
	s.count = len(members)
	s.lo, s.hi = members[0], members[len(members)-1]
	s.kind = s.storageKind(len(members))
	s.allocate(members)
}
