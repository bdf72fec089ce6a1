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
	"context"

	"github.com/cockroachdb/errors"

	"github.com/colexecdb/windowexec/pkg/col/coldata"
	"github.com/colexecdb/windowexec/pkg/col/colorder"
)

// BuiltinFunc enumerates the window functions that are evaluated from
// partition boundaries alone, without a frame.
type BuiltinFunc int8

const (
	// RowNumber numbers rows within the partition from 1.
	RowNumber BuiltinFunc = iota
	// Rank is the number of the first row of the current peer group; ties
	// leave gaps.
	Rank
	// DenseRank is the number of the current peer group; ties leave no gaps.
	DenseRank
	// PercentRank is (rank - 1) / (partition rows - 1).
	PercentRank
	// CumeDist is (rows up to and including the peer group) / partition rows.
	CumeDist
	// Ntile splits the partition into NumTiles buckets as evenly as
	// possible and returns the 1-based bucket of each row.
	Ntile
	// Lead returns the argument evaluated at the row Offset rows after the
	// current one, or Default when that falls outside the partition.
	Lead
	// Lag returns the argument evaluated at the row Offset rows before the
	// current one, or Default when that falls outside the partition.
	Lag
)

func (f BuiltinFunc) String() string {
	switch f {
	case RowNumber:
		return "row_number"
	case Rank:
		return "rank"
	case DenseRank:
		return "dense_rank"
	case PercentRank:
		return "percent_rank"
	case CumeDist:
		return "cume_dist"
	case Ntile:
		return "ntile"
	case Lead:
		return "lead"
	case Lag:
		return "lag"
	default:
		return "unknown"
	}
}

// SafeValue implements the redact.SafeValue interface.
func (BuiltinFunc) SafeValue() {}

// BuiltinWindowDef describes one frameless window function over a batch
// schema.
type BuiltinWindowDef struct {
	Func BuiltinFunc
	// PartitionIdxs are the PARTITION BY columns of the batch.
	PartitionIdxs []int
	// Ordering is the ORDER BY of the window; the rank family derives peer
	// groups from it.
	Ordering colorder.ColumnOrdering
	// ArgIdx is the argument column for Lead and Lag.
	ArgIdx int
	// Offset is the look-ahead (Lead) or look-behind (Lag) distance; a
	// negative value flips the direction.
	Offset int
	// Default fills Lead/Lag slots that fall outside the partition. nil
	// means NULL.
	Default coldata.Datum
	// NumTiles is the bucket count for Ntile.
	NumTiles int
}

// BuiltinWindower evaluates rank, row_number, lead/lag style functions. It
// needs partition boundaries and, for the rank family, peer boundaries, but
// never a frame.
type BuiltinWindower struct {
	def BuiltinWindowDef
}

// NewBuiltinWindower validates def and returns an evaluator.
func NewBuiltinWindower(def BuiltinWindowDef) (*BuiltinWindower, error) {
	switch def.Func {
	case RowNumber, Rank, DenseRank, PercentRank, CumeDist, Ntile, Lead, Lag:
	default:
		return nil, errors.AssertionFailedf("unknown window function %d", def.Func)
	}
	if def.Default == nil {
		def.Default = coldata.DNull
	}
	return &BuiltinWindower{def: def}, nil
}

func (w *BuiltinWindower) resultType(batch *coldata.Batch) coldata.T {
	switch w.def.Func {
	case PercentRank, CumeDist:
		return coldata.Float
	case Lead, Lag:
		return batch.ColAt(w.def.ArgIdx).Type()
	default:
		return coldata.Int
	}
}

// partitionOrdering builds an equality-only ordering over the PARTITION BY
// columns; direction is irrelevant for boundary detection.
func (w *BuiltinWindower) partitionOrdering() colorder.ColumnOrdering {
	ordering := make(colorder.ColumnOrdering, len(w.def.PartitionIdxs))
	for i, idx := range w.def.PartitionIdxs {
		ordering[i] = colorder.ColumnOrderInfo{ColIdx: idx}
	}
	return ordering
}

func batchCols(batch *coldata.Batch) []*coldata.Vec {
	cols := make([]*coldata.Vec, batch.NumCols())
	for i := range cols {
		cols[i] = batch.ColAt(i)
	}
	return cols
}

// Evaluate computes the function over a batch sorted by PARTITION BY and
// then by the window's ORDER BY. An empty batch yields an empty vector of
// the function's result type.
func (w *BuiltinWindower) Evaluate(
	ctx context.Context, batch *coldata.Batch,
) (*coldata.Vec, error) {
	n := batch.Length()
	out := coldata.NewVec(w.resultType(batch), n)
	if n == 0 {
		return out, nil
	}
	cols := batchCols(batch)
	partitions, err := colorder.PartitionRanges(cols, w.partitionOrdering(), 0, n)
	if err != nil {
		return nil, err
	}
	for _, p := range partitions {
		if err := w.evalPartition(cols, p, out); err != nil {
			return nil, errors.WithContextTags(err, ctx)
		}
	}
	return out, nil
}

func (w *BuiltinWindower) evalPartition(
	cols []*coldata.Vec, p colorder.Range, out *coldata.Vec,
) error {
	switch w.def.Func {
	case RowNumber:
		for i := p.Start; i < p.End; i++ {
			if err := out.AppendDatum(coldata.DInt(i - p.Start + 1)); err != nil {
				return err
			}
		}
		return nil
	case Rank, DenseRank, PercentRank, CumeDist:
		return w.evalRankFamily(cols, p, out)
	case Ntile:
		return w.evalNtile(p, out)
	case Lead, Lag:
		return w.evalLeadLag(cols, p, out)
	}
	return errors.AssertionFailedf("unhandled window function %s", w.def.Func)
}

// evalRankFamily derives peer groups by partitioning a second time, over the
// order-by columns only, and spells the rank variants out of the peer
// boundaries.
func (w *BuiltinWindower) evalRankFamily(
	cols []*coldata.Vec, p colorder.Range, out *coldata.Vec,
) error {
	peers, err := colorder.PartitionRanges(cols, w.def.Ordering, p.Start, p.End)
	if err != nil {
		return err
	}
	np := p.End - p.Start
	for groupIdx, g := range peers {
		rank := g.Start - p.Start + 1
		for i := g.Start; i < g.End; i++ {
			var d coldata.Datum
			switch w.def.Func {
			case Rank:
				d = coldata.DInt(rank)
			case DenseRank:
				d = coldata.DInt(groupIdx + 1)
			case PercentRank:
				if np == 1 {
					d = coldata.DFloat(0)
				} else {
					d = coldata.DFloat(float64(rank-1) / float64(np-1))
				}
			case CumeDist:
				d = coldata.DFloat(float64(g.End-p.Start) / float64(np))
			}
			if err := out.AppendDatum(d); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *BuiltinWindower) evalNtile(p colorder.Range, out *coldata.Vec) error {
	k := w.def.NumTiles
	if k <= 0 {
		return errors.Newf("argument of ntile must be greater than zero, got %d", k)
	}
	np := p.End - p.Start
	// The first np%k buckets get one extra row.
	bucketSize := np / k
	remainder := np % k
	bucket, filled, size := 1, 0, bucketSize
	if remainder > 0 {
		size++
	}
	for i := 0; i < np; i++ {
		if size == 0 || filled == size {
			bucket++
			filled = 0
			size = bucketSize
			if bucket <= remainder {
				size++
			}
		}
		filled++
		if err := out.AppendDatum(coldata.DInt(bucket)); err != nil {
			return err
		}
	}
	return nil
}

func (w *BuiltinWindower) evalLeadLag(
	cols []*coldata.Vec, p colorder.Range, out *coldata.Vec,
) error {
	arg := cols[w.def.ArgIdx]
	offset := w.def.Offset
	if w.def.Func == Lag {
		offset = -offset
	}
	for i := p.Start; i < p.End; i++ {
		j := i + offset
		var d coldata.Datum
		if j < p.Start || j >= p.End {
			d = w.def.Default
		} else {
			d = arg.DatumAt(j)
		}
		if err := out.AppendDatum(d); err != nil {
			return err
		}
	}
	return nil
}
