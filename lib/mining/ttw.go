// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package mining

import "math"

// Granularity indexes one of the five tilted-time-window resolutions,
// finest first.
type Granularity int

const (
	GranularityQuarter Granularity = iota
	GranularityHour
	GranularityDay
	GranularityMonth
	GranularityYear

	numGranularities = 5
	numBuckets       = 72
)

// BucketUnused is the sentinel stored in a bucket that has never been
// written.
const BucketUnused SupportCount = math.MaxUint32

// granularityBucketCount[g] is how many buckets granularity g owns.
var granularityBucketCount = [numGranularities]int{4, 24, 31, 12, 1}

// granularityBucketOffset[g] is the index of granularity g's newest
// (bucket-0) slot within the flat 72-bucket array.
var granularityBucketOffset = [numGranularities]int{0, 4, 28, 59, 71}

// TiltedTimeWindow is a fixed 72-bucket, 5-granularity circular
// summary of support counts: fine-grained near the present, coarser
// further into the past, with automatic cascading rollup as each
// granularity fills.
type TiltedTimeWindow struct {
	buckets            [numBuckets]SupportCount
	capacityUsed       [numGranularities]int
	oldestBucketFilled int // -1 means empty
	lastUpdate         uint32
}

// NewTiltedTimeWindow returns an empty window with every bucket
// BUCKET_UNUSED.
func NewTiltedTimeWindow() *TiltedTimeWindow {
	ttw := &TiltedTimeWindow{oldestBucketFilled: -1}
	for i := range ttw.buckets {
		ttw.buckets[i] = BucketUnused
	}
	return ttw
}

// LastUpdate returns the ID of the batch that most recently wrote to
// this window.
func (w *TiltedTimeWindow) LastUpdate() uint32 {
	return w.lastUpdate
}

// OldestBucketFilled returns the highest filled bucket index, or -1
// if the window is empty.
func (w *TiltedTimeWindow) OldestBucketFilled() int {
	return w.oldestBucketFilled
}

// CapacityUsed returns how many buckets of granularity g are filled.
func (w *TiltedTimeWindow) CapacityUsed(g Granularity) int {
	return w.capacityUsed[g]
}

// Bucket returns the raw value at index i (may be BucketUnused).
func (w *TiltedTimeWindow) Bucket(i int) SupportCount {
	return w.buckets[i]
}

// IsEmpty reports whether the window currently holds no filled
// bucket (never written to, or every filled granularity dropped).
func (w *TiltedTimeWindow) IsEmpty() bool {
	return w.oldestBucketFilled == -1
}

// AppendQuarter stores support as the newest Quarter-granularity
// bucket and records updateID as the window's LastUpdate. If that
// store fills the Quarter granularity, its buckets are summed into
// the next coarser granularity right away (cascading further as each
// coarser level fills in turn).
func (w *TiltedTimeWindow) AppendQuarter(support SupportCount, updateID uint32) {
	w.lastUpdate = updateID
	w.store(GranularityQuarter, support)
}

// SupportForRange sums buckets[from..to] inclusive, skipping
// BUCKET_UNUSED slots and never reading past oldestBucketFilled.
// If from > to or either index is out of range, the query is rejected
// through AssertInvariant: it panics when Debug is set and otherwise
// returns 0.
func (w *TiltedTimeWindow) SupportForRange(from, to int) SupportCount {
	if err := AssertInvariant(from <= to, "SupportForRange: from > to"); err != nil {
		return 0
	}
	if err := AssertInvariant(from >= 0 && to < numBuckets, "SupportForRange: bucket index out of range"); err != nil {
		return 0
	}
	if w.oldestBucketFilled == -1 {
		return 0
	}
	var sum SupportCount
	for i := from; i <= to && i <= w.oldestBucketFilled; i++ {
		if w.buckets[i] != BucketUnused {
			sum += w.buckets[i]
		}
	}
	return sum
}

// DropTail resets every granularity at or above start, in decreasing
// order of granularity index (coarsest first), so that only whole
// granularities are ever dropped.
func (w *TiltedTimeWindow) DropTail(start Granularity) {
	for g := Granularity(numGranularities - 1); g >= start; g-- {
		w.reset(g)
	}
}

func (w *TiltedTimeWindow) reset(g Granularity) {
	offset := granularityBucketOffset[g]
	count := granularityBucketCount[g]

	for i := offset; i < offset+count; i++ {
		w.buckets[i] = BucketUnused
	}
	w.capacityUsed[g] = 0

	if w.oldestBucketFilled > offset-1 && w.oldestBucketFilled < offset+count {
		w.oldestBucketFilled = offset - 1
		for w.oldestBucketFilled >= 0 && w.buckets[w.oldestBucketFilled] == BucketUnused {
			w.oldestBucketFilled--
		}
	}
}

func (w *TiltedTimeWindow) shift(g Granularity) {
	offset := granularityBucketOffset[g]
	count := granularityBucketCount[g]

	var sum SupportCount
	for b := 0; b < count; b++ {
		sum += w.buckets[offset+b]
	}

	w.reset(g)

	if int(g)+1 > numGranularities-1 {
		// Year has nowhere further to cascade into; its contents are
		// simply dropped once it overflows.
		return
	}
	w.store(g+1, sum)
}

// granularityForBucket returns the coarsest granularity g such that
// bucket index i falls within [offset(g), offset(g+1)).
func granularityForBucket(i int) Granularity {
	for g := numGranularities - 1; g >= 0; g-- {
		if i >= granularityBucketOffset[g] {
			return Granularity(g)
		}
	}
	return GranularityQuarter
}

// store inserts support as granularity g's newest bucket, shifting g's
// existing buckets one slot older first. Callers reach store only
// when g has room (capacityUsed[g] < count): a level cascades into
// the next-coarser granularity and resets the instant it fills,
// immediately below, so it is never asked to hold more than count
// entries at once.
func (w *TiltedTimeWindow) store(g Granularity, support SupportCount) {
	offset := granularityBucketOffset[g]
	count := granularityBucketCount[g]
	used := w.capacityUsed[g]

	if used > 0 {
		copy(w.buckets[offset+1:offset+used+1], w.buckets[offset:offset+used])
	}
	w.buckets[offset] = support
	used++
	w.capacityUsed[g] = used

	if w.oldestBucketFilled < offset+used-1 {
		w.oldestBucketFilled = offset + used - 1
	}

	if used == count {
		w.shift(g)
	}
}
