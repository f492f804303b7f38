// Package uniquerand produces unique random indexes within a range.
package uniquerand

import "math/rand"

// Int hands out every index in the range [0, Range()) exactly once, in
// a random order.
// The zero value has an empty range, so Get always reports ok = false
// until Reset is called.
type Int struct {
	r    int      // the exclusive upper limit of the range
	left int      // how many indexes are still unconsumed
	used []uint64 // bitset of consumed indexes
}

// Reset sets the range of the generator and forgets all previously
// returned indexes. A non-positive range is treated as empty.
func (uri *Int) Reset(r int) {
	if r < 0 {
		r = 0
	}
	uri.r = r
	uri.left = r
	uri.used = make([]uint64, (r+63)/64)
}

// Range returns the exclusive upper limit of the generated indexes.
func (uri *Int) Range() int {
	return uri.r
}

// Get returns an index that hasn't been returned before (or that has
// been returned to the generator through Put), and ok as true.
// If ok is false, all indexes within the range have been consumed.
func (uri *Int) Get() (idx int, ok bool) {
	if uri.left == 0 {
		return 0, false
	}

	// start from a random index, and probe forward (with wrap-around)
	// to the first unconsumed one.
	idx = rand.Intn(uri.r)
	for uri.isUsed(idx) {
		idx++
		if idx == uri.r {
			idx = 0
		}
	}

	uri.used[idx/64] |= 1 << (idx % 64)
	uri.left--
	return idx, true
}

// Put returns a previously consumed index to the generator, so that a
// future Get call can return it again.
// It reports whether the index was actually consumed before.
func (uri *Int) Put(idx int) (ok bool) {
	if idx < 0 || idx >= uri.r || !uri.isUsed(idx) {
		return false
	}
	uri.used[idx/64] &^= 1 << (idx % 64)
	uri.left++
	return true
}

func (uri *Int) isUsed(idx int) bool {
	return uri.used[idx/64]&(1<<(idx%64)) != 0
}
