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
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"

	"github.com/colexecdb/windowexec/pkg/col/coldata"
)

// FrameKind says what the frame bound offsets count.
type FrameKind int8

const (
	// Rows frames are offset by a number of rows.
	Rows FrameKind = iota
	// Range frames are offset by a delta on the ordering column values.
	Range
	// Groups frames are offset by a number of peer groups.
	Groups
)

func (k FrameKind) String() string {
	switch k {
	case Rows:
		return "ROWS"
	case Range:
		return "RANGE"
	case Groups:
		return "GROUPS"
	default:
		return "UNKNOWN"
	}
}

// SafeValue implements the redact.SafeValue interface.
func (FrameKind) SafeValue() {}

// BoundType is the type of one end of a frame.
type BoundType int8

const (
	// UnboundedPreceding is the start of the partition.
	UnboundedPreceding BoundType = iota
	// OffsetPreceding is an offset before the current row.
	OffsetPreceding
	// CurrentRow is the current row (RANGE and GROUPS extend it to the
	// current row's whole peer group).
	CurrentRow
	// OffsetFollowing is an offset after the current row.
	OffsetFollowing
	// UnboundedFollowing is the end of the partition.
	UnboundedFollowing
)

func (b BoundType) String() string {
	switch b {
	case UnboundedPreceding:
		return "UNBOUNDED PRECEDING"
	case OffsetPreceding:
		return "OFFSET PRECEDING"
	case CurrentRow:
		return "CURRENT ROW"
	case OffsetFollowing:
		return "OFFSET FOLLOWING"
	case UnboundedFollowing:
		return "UNBOUNDED FOLLOWING"
	default:
		return "UNKNOWN"
	}
}

// SafeValue implements the redact.SafeValue interface.
func (BoundType) SafeValue() {}

// FrameBound is one end of a frame. Offset is only set for OffsetPreceding
// and OffsetFollowing: a DInt row or group count for ROWS and GROUPS, a value
// delta of the ordering column's type for RANGE.
type FrameBound struct {
	Type   BoundType
	Offset coldata.Datum
}

// Preceding returns an OffsetPreceding bound.
func Preceding(offset coldata.Datum) FrameBound {
	return FrameBound{Type: OffsetPreceding, Offset: offset}
}

// Following returns an OffsetFollowing bound.
func Following(offset coldata.Datum) FrameBound {
	return FrameBound{Type: OffsetFollowing, Offset: offset}
}

// Bounds without offsets.
var (
	UnboundedPrecedingBound = FrameBound{Type: UnboundedPreceding}
	UnboundedFollowingBound = FrameBound{Type: UnboundedFollowing}
	CurrentRowBound         = FrameBound{Type: CurrentRow}
)

// FrameSpec is a validated window frame description. Construct it with
// MakeFrameSpec.
type FrameSpec struct {
	Kind  FrameKind
	Start FrameBound
	End   FrameBound
}

func (f FrameSpec) String() string {
	return fmt.Sprintf("%s BETWEEN %s AND %s", f.Kind, f.Start.Type, f.End.Type)
}

func checkOffset(kind FrameKind, b FrameBound) error {
	if b.Type != OffsetPreceding && b.Type != OffsetFollowing {
		return nil
	}
	if b.Offset == nil || b.Offset == coldata.DNull {
		return errors.AssertionFailedf("%s %s bound with no offset", kind, b.Type)
	}
	switch kind {
	case Rows, Groups:
		o, ok := b.Offset.(coldata.DInt)
		if !ok {
			return errors.AssertionFailedf(
				"%s bound offset must be an integer, got %s", kind, b.Offset.ResolvedType())
		}
		if o < 0 {
			return errors.AssertionFailedf("%s bound offset is negative: %d", kind, int64(o))
		}
	case Range:
		switch t := b.Offset.(type) {
		case coldata.DInt:
			if t < 0 {
				return errors.AssertionFailedf("RANGE bound offset is negative: %d", int64(t))
			}
		case coldata.DFloat:
			if t < 0 {
				return errors.AssertionFailedf("RANGE bound offset is negative: %g", float64(t))
			}
		case coldata.DDecimal:
			if t.Negative {
				return errors.AssertionFailedf("RANGE bound offset is negative: %s", t.Decimal.String())
			}
		case coldata.DInterval:
			if t < 0 {
				return errors.AssertionFailedf("RANGE bound offset is negative: %s", t.String())
			}
		default:
			return errors.AssertionFailedf(
				"RANGE bound offset must be numeric or an interval, got %s",
				b.Offset.ResolvedType())
		}
	}
	return nil
}

// MakeFrameSpec validates and returns a FrameSpec. A correct planner never
// produces an invalid combination, so violations are assertion failures.
func MakeFrameSpec(kind FrameKind, start, end FrameBound) (FrameSpec, error) {
	if start.Type == UnboundedFollowing {
		return FrameSpec{}, errors.AssertionFailedf(
			"frame start cannot be %s", UnboundedFollowing)
	}
	if end.Type == UnboundedPreceding {
		return FrameSpec{}, errors.AssertionFailedf(
			"frame end cannot be %s", UnboundedPreceding)
	}
	if err := checkOffset(kind, start); err != nil {
		return FrameSpec{}, err
	}
	if err := checkOffset(kind, end); err != nil {
		return FrameSpec{}, err
	}
	return FrameSpec{Kind: kind, Start: start, End: end}, nil
}

// FrameRange is a computed [Start, End) frame within a partition.
// 0 <= Start <= End <= partition length.
type FrameRange struct {
	Start, End int
}

func (r FrameRange) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}

var _ redact.SafeValue = Rows
var _ redact.SafeValue = CurrentRow
