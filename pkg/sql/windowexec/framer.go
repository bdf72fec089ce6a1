// Copyright 2024 The Windowexec Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package windowexec

import (
	"math"

	"github.com/cockroachdb/errors"

	"github.com/colexecdb/windowexec/pkg/col/coldata"
	"github.com/colexecdb/windowexec/pkg/col/colorder"
	"github.com/colexecdb/windowexec/pkg/util/ring"
)

// groupBoundary is one entry of the lazily built peer group cache in GROUPS
// mode: the index of a row belonging to the group and the index of the first
// row after the group. Entries are appended in order, so endIdx increases
// monotonically along the cache.
type groupBoundary struct {
	repIdx int
	endIdx int
}

type groupsState struct {
	// boundaries is only ever appended to while a partition is being
	// processed, never rebuilt: the evaluator feeds rows in order and peer
	// groups of already-seen rows cannot change.
	boundaries ring.Buffer[groupBoundary]
	// currentGroupIdx is the position in boundaries of the group holding the
	// current row. It never moves backwards.
	currentGroupIdx int
}

// Framer turns a row index into its [start, end) frame. One Framer serves
// exactly one (partition, frame spec) pair: GROUPS mode carries a peer group
// cache across calls, and all modes rely on the caller feeding back the
// previously returned range so that boundary searches resume where they left
// off instead of rescanning the partition.
//
// ComputeRange must be called with non-decreasing row indices. The same index
// may be recomputed (the incremental evaluator does this when a frame end was
// still open at a batch boundary), but going backwards is an error.
type Framer struct {
	spec     FrameSpec
	ordering colorder.ColumnOrdering
	lastIdx  int
	groups   groupsState
}

// NewFramer returns a Framer for the given frame spec. The ordering's column
// indices address the ordering column slice later passed to ComputeRange.
// GROUPS mode requires at least one ordering column.
func NewFramer(spec FrameSpec, ordering colorder.ColumnOrdering) (*Framer, error) {
	if spec.Kind == Groups && len(ordering) == 0 {
		return nil, errors.Newf("GROUPS mode requires an ORDER BY clause")
	}
	return &Framer{spec: spec, ordering: ordering, lastIdx: -1}, nil
}

func clampIdx(v int64, n int) int {
	if v < 0 {
		return 0
	}
	if v > int64(n) {
		return n
	}
	return int(v)
}

func boundOffsetInt(b FrameBound) int64 {
	// MakeFrameSpec guarantees the offset is a non-negative DInt.
	return int64(b.Offset.(coldata.DInt))
}

// addIdx adds two int64s, saturating at the int64 extremes rather than
// wrapping. Offsets near MaxInt64 must clamp to the partition edge, not
// overflow past it.
func addIdx(a, b int64) int64 {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		if b > 0 {
			return math.MaxInt64
		}
		return math.MinInt64
	}
	return s
}

// ComputeRange returns the frame of row idx in a partition of n rows.
// lastRange must be the range returned for the previous row, or the zero
// FrameRange for the first row of the partition.
func (f *Framer) ComputeRange(
	cols []*coldata.Vec, n, idx int, lastRange FrameRange,
) (FrameRange, error) {
	if idx < 0 || idx >= n {
		return FrameRange{}, errors.AssertionFailedf(
			"row index %d out of bounds for partition of length %d", idx, n)
	}
	if idx < f.lastIdx {
		return FrameRange{}, errors.AssertionFailedf(
			"frame ranges must be computed for non-decreasing row indices: %d after %d",
			idx, f.lastIdx)
	}
	f.lastIdx = idx

	var r FrameRange
	var err error
	switch f.spec.Kind {
	case Rows:
		r = f.rowsRange(n, idx)
	case Range:
		r, err = f.rangeRange(cols, n, idx, lastRange)
	case Groups:
		r, err = f.groupsRange(cols, n, idx)
	default:
		return FrameRange{}, errors.AssertionFailedf("unknown frame kind %d", f.spec.Kind)
	}
	if err != nil {
		return FrameRange{}, err
	}
	if r.Start > r.End {
		r.Start = r.End
	}
	return r, nil
}

// rowsRange is a pure function of (idx, n, spec): no carried state.
func (f *Framer) rowsRange(n, idx int) FrameRange {
	var start, end int
	switch f.spec.Start.Type {
	case UnboundedPreceding:
		start = 0
	case OffsetPreceding:
		start = clampIdx(int64(idx)-boundOffsetInt(f.spec.Start), n)
	case CurrentRow:
		start = idx
	case OffsetFollowing:
		start = clampIdx(addIdx(int64(idx), boundOffsetInt(f.spec.Start)), n)
	}
	switch f.spec.End.Type {
	case OffsetPreceding:
		end = clampIdx(int64(idx)-boundOffsetInt(f.spec.End)+1, n)
	case CurrentRow:
		end = idx + 1
	case OffsetFollowing:
		end = clampIdx(addIdx(addIdx(int64(idx), boundOffsetInt(f.spec.End)), 1), n)
	case UnboundedFollowing:
		end = n
	}
	return FrameRange{Start: start, End: end}
}

func (f *Framer) rangeRange(
	cols []*coldata.Vec, n, idx int, lastRange FrameRange,
) (FrameRange, error) {
	start, err := f.rangeBound(cols, n, idx, lastRange.Start, f.spec.Start, true /* isStart */)
	if err != nil {
		return FrameRange{}, err
	}
	end, err := f.rangeBound(cols, n, idx, lastRange.End, f.spec.End, false /* isStart */)
	if err != nil {
		return FrameRange{}, err
	}
	return FrameRange{Start: start, End: end}, nil
}

// rangeBound locates one end of a RANGE frame. The search is seeded at the
// corresponding end of the previous row's range: boundaries only move
// forward as idx increases in an ordered partition, which turns each lookup
// into an amortized small scan.
func (f *Framer) rangeBound(
	cols []*coldata.Vec, n, idx, searchStart int, b FrameBound, isStart bool,
) (int, error) {
	switch b.Type {
	case UnboundedPreceding:
		return 0, nil
	case UnboundedFollowing:
		return n, nil
	}
	if len(f.ordering) == 0 {
		// Without ordering columns every row is a peer of every other and the
		// frame is the whole partition. This mirrors the default frame of a
		// window function with no ORDER BY.
		if isStart {
			return 0, nil
		}
		return n, nil
	}
	target := make([]coldata.Datum, len(f.ordering))
	for k, o := range f.ordering {
		vec := cols[o.ColIdx]
		if vec.Nulls().NullAt(idx) {
			// NULL stays NULL under a delta; the bisection then lands on the
			// edge of the NULL peer region chosen by the null ordering.
			target[k] = coldata.DNull
			continue
		}
		cur := vec.DatumAt(idx)
		if b.Type == CurrentRow {
			target[k] = cur
			continue
		}
		// PRECEDING moves toward smaller values on an ascending column and
		// toward larger values on a descending one.
		subtract := (b.Type == OffsetPreceding) != (o.Direction == colorder.Desc)
		var t coldata.Datum
		var err error
		if subtract {
			t, err = coldata.Sub(cur, b.Offset)
		} else {
			t, err = coldata.Add(cur, b.Offset)
		}
		if err != nil {
			return 0, err
		}
		target[k] = t
	}
	// The start bound takes the first row not before the target, the end
	// bound the first row past it, mirroring bisect left/right.
	side := colorder.BisectLeft
	if !isStart {
		side = colorder.BisectRight
	}
	return colorder.SearchInSlice(
		colorder.BisectPredicate(cols, f.ordering, target, side), searchStart, n)
}

// groupsRange resolves a GROUPS frame via the peer group cache, extending it
// forward as needed. Bounds are counted in whole groups: the start of the
// target group for the start bound, its end for the end bound.
func (f *Framer) groupsRange(cols []*coldata.Vec, n, idx int) (FrameRange, error) {
	gs := &f.groups
	if err := f.extendGroupsTo(cols, n, idx); err != nil {
		return FrameRange{}, err
	}
	for gs.boundaries.Get(gs.currentGroupIdx).endIdx <= idx {
		gs.currentGroupIdx++
	}

	var start, end int
	switch f.spec.Start.Type {
	case UnboundedPreceding:
		start = 0
	case OffsetPreceding:
		target := int64(gs.currentGroupIdx) - boundOffsetInt(f.spec.Start)
		if target < 0 {
			start = 0
		} else {
			start = f.groupStart(int(target))
		}
	case CurrentRow:
		start = f.groupStart(gs.currentGroupIdx)
	case OffsetFollowing:
		target, ok, err := f.lookAheadGroup(cols, n, boundOffsetInt(f.spec.Start))
		if err != nil {
			return FrameRange{}, err
		}
		if !ok {
			// The frame starts past the last group of the partition.
			start = n
		} else {
			start = f.groupStart(target)
		}
	}

	switch f.spec.End.Type {
	case OffsetPreceding:
		target := int64(gs.currentGroupIdx) - boundOffsetInt(f.spec.End)
		if target < 0 {
			end = 0
		} else {
			end = gs.boundaries.Get(int(target)).endIdx
		}
	case CurrentRow:
		end = gs.boundaries.Get(gs.currentGroupIdx).endIdx
	case OffsetFollowing:
		target, ok, err := f.lookAheadGroup(cols, n, boundOffsetInt(f.spec.End))
		if err != nil {
			return FrameRange{}, err
		}
		if !ok {
			end = n
		} else {
			end = gs.boundaries.Get(target).endIdx
		}
	case UnboundedFollowing:
		end = n
	}
	return FrameRange{Start: start, End: end}, nil
}

// extendGroupsTo appends group boundaries until the cache covers row idx.
func (f *Framer) extendGroupsTo(cols []*coldata.Vec, n, idx int) error {
	gs := &f.groups
	// A cached group that ended exactly at the buffered row count may have
	// gained peers from a later batch; re-close it before growing the cache.
	if gs.boundaries.Len() > 0 {
		if last := gs.boundaries.GetLast(); last.endIdx < n {
			cmp, err := colorder.CompareRows(cols, f.ordering, last.endIdx, last.repIdx)
			if err != nil {
				return err
			}
			if cmp == 0 {
				end, err := f.groupEnd(cols, n, last.repIdx)
				if err != nil {
					return err
				}
				gs.boundaries.RemoveLast()
				gs.boundaries.AddLast(groupBoundary{repIdx: last.repIdx, endIdx: end})
			}
		}
	}
	for gs.boundaries.Len() == 0 || gs.boundaries.GetLast().endIdx <= idx {
		repIdx := 0
		if gs.boundaries.Len() > 0 {
			repIdx = gs.boundaries.GetLast().endIdx
		}
		end, err := f.groupEnd(cols, n, repIdx)
		if err != nil {
			return err
		}
		gs.boundaries.AddLast(groupBoundary{repIdx: repIdx, endIdx: end})
	}
	return nil
}

// lookAheadGroup resolves currentGroupIdx + delta, scanning further groups
// into the cache if they have not been seen yet. ok is false when the target
// group lies beyond the end of the partition.
func (f *Framer) lookAheadGroup(cols []*coldata.Vec, n int, delta int64) (int, bool, error) {
	gs := &f.groups
	target := addIdx(int64(gs.currentGroupIdx), delta)
	for int64(gs.boundaries.Len()) <= target && gs.boundaries.GetLast().endIdx < n {
		repIdx := gs.boundaries.GetLast().endIdx
		end, err := f.groupEnd(cols, n, repIdx)
		if err != nil {
			return 0, false, err
		}
		gs.boundaries.AddLast(groupBoundary{repIdx: repIdx, endIdx: end})
	}
	if target >= int64(gs.boundaries.Len()) {
		return 0, false, nil
	}
	return int(target), true, nil
}

func (f *Framer) groupStart(group int) int {
	if group == 0 {
		return 0
	}
	return f.groups.boundaries.Get(group - 1).endIdx
}

// groupEnd finds the first row after repIdx's peer group. Rows are sorted,
// so equality with the representative row is a monotone predicate.
func (f *Framer) groupEnd(cols []*coldata.Vec, n, repIdx int) (int, error) {
	return colorder.SearchInSlice(func(i int) (bool, error) {
		cmp, err := colorder.CompareRows(cols, f.ordering, i, repIdx)
		if err != nil {
			return false, err
		}
		return cmp == 0, nil
	}, repIdx+1, n)
}
