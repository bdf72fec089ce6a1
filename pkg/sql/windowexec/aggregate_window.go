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
	"github.com/cockroachdb/logtags"

	"github.com/colexecdb/windowexec/pkg/col/coldata"
	"github.com/colexecdb/windowexec/pkg/col/colorder"
)

// AggWindowDef describes one window aggregate over a batch schema: which
// columns are the arguments, how the partition is ordered, and the frame.
type AggWindowDef struct {
	Frame FrameSpec
	// Ordering is the ORDER BY of the window, with ColIdx addressing batch
	// columns.
	Ordering colorder.ColumnOrdering
	// ArgIdxs are the batch columns fed to the accumulator.
	ArgIdxs []int
	// ResultType is the declared output type of the aggregate.
	ResultType coldata.T
	// NewAcc produces a fresh accumulator per partition.
	NewAcc AccumulatorFactory
}

// AggregateWindower evaluates one window aggregate. It supports
// whole-partition evaluation over a fully materialized batch and incremental
// evaluation over multiple batches with bounded memory for results.
type AggregateWindower struct {
	def AggWindowDef
	// frameOrdering is def.Ordering reindexed over the extracted ordering
	// column slice.
	frameOrdering colorder.ColumnOrdering
}

// NewAggregateWindower validates def and returns an evaluator.
func NewAggregateWindower(def AggWindowDef) (*AggregateWindower, error) {
	if def.NewAcc == nil {
		return nil, errors.AssertionFailedf("window aggregate without an accumulator factory")
	}
	if _, err := MakeFrameSpec(def.Frame.Kind, def.Frame.Start, def.Frame.End); err != nil {
		return nil, err
	}
	offsetBound := func(b FrameBound) bool {
		return b.Type == OffsetPreceding || b.Type == OffsetFollowing
	}
	if def.Frame.Kind == Range && len(def.Ordering) == 0 &&
		(offsetBound(def.Frame.Start) || offsetBound(def.Frame.End)) {
		return nil, errors.AssertionFailedf(
			"RANGE frame with an offset requires an ORDER BY clause")
	}
	frameOrdering := make(colorder.ColumnOrdering, len(def.Ordering))
	for i, o := range def.Ordering {
		frameOrdering[i] = colorder.ColumnOrderInfo{
			ColIdx:    i,
			Direction: o.Direction,
			NullOrder: o.NullOrder,
		}
	}
	return &AggregateWindower{def: def, frameOrdering: frameOrdering}, nil
}

func (w *AggregateWindower) newState() (*WindowAggState, error) {
	framer, err := NewFramer(w.def.Frame, w.frameOrdering)
	if err != nil {
		return nil, err
	}
	return &WindowAggState{
		framer: framer,
		acc:    w.def.NewAcc(),
		out:    coldata.NewVec(w.def.ResultType, 0),
	}, nil
}

// appendBatch copies the relevant columns of batch into the state's own
// buffers. The state never aliases caller memory: batches may be recycled by
// the caller after the call returns.
func (w *AggregateWindower) appendBatch(st *WindowAggState, batch *coldata.Batch) error {
	if st.orderCols == nil {
		st.orderCols = make([]*coldata.Vec, len(w.def.Ordering))
		for i, o := range w.def.Ordering {
			st.orderCols[i] = coldata.NewVec(batch.ColAt(o.ColIdx).Type(), batch.Length())
		}
		st.argCols = make([]*coldata.Vec, len(w.def.ArgIdxs))
		for i, idx := range w.def.ArgIdxs {
			st.argCols[i] = coldata.NewVec(batch.ColAt(idx).Type(), batch.Length())
		}
	}
	for i, o := range w.def.Ordering {
		if err := st.orderCols[i].Append(batch.ColAt(o.ColIdx)); err != nil {
			return err
		}
	}
	for i, idx := range w.def.ArgIdxs {
		if err := st.argCols[i].Append(batch.ColAt(idx)); err != nil {
			return err
		}
	}
	st.n += batch.Length()
	return nil
}

// accumulate brings the accumulator from covering last to covering cur by
// adding the newly entered rows and removing the newly excluded ones. If the
// accumulator cannot retract, or the frame moved backwards, it starts over
// from a fresh accumulator.
func (w *AggregateWindower) accumulate(st *WindowAggState, cur FrameRange) error {
	last := st.lastRange
	if cur.Start < last.Start || cur.End < last.End {
		return w.rebuild(st, cur)
	}
	if cur.End > last.End {
		from := last.End
		if cur.Start > from {
			from = cur.Start
		}
		if from < cur.End {
			if err := st.acc.AddRange(st.argCols, from, cur.End); err != nil {
				return err
			}
		}
	}
	if cur.Start > last.Start {
		to := cur.Start
		if last.End < to {
			to = last.End
		}
		if last.Start < to {
			err := st.acc.RemoveRange(st.argCols, last.Start, to)
			if errors.Is(err, ErrRetractUnsupported) {
				return w.rebuild(st, cur)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *AggregateWindower) rebuild(st *WindowAggState, cur FrameRange) error {
	st.acc = w.def.NewAcc()
	if cur.Start < cur.End {
		return st.acc.AddRange(st.argCols, cur.Start, cur.End)
	}
	return nil
}

// processRows finalizes rows starting at the state's resume point. While the
// partition is still open, a row whose frame end touches the end of the
// buffered rows is withheld: a later batch could still extend that frame.
func (w *AggregateWindower) processRows(st *WindowAggState) error {
	for idx := st.lastIdx; idx < st.n; idx++ {
		r, err := st.framer.ComputeRange(st.orderCols, st.n, idx, st.lastRange)
		if err != nil {
			return err
		}
		if !st.isEnd && r.End == st.n {
			break
		}
		if err := w.accumulate(st, r); err != nil {
			return err
		}
		val, err := st.acc.Evaluate()
		if err != nil {
			return err
		}
		if val != coldata.DNull && val.ResolvedType() != w.def.ResultType {
			return errors.AssertionFailedf(
				"accumulator produced %s, window function declares %s",
				val.ResolvedType(), w.def.ResultType)
		}
		if err := st.out.AppendDatum(val); err != nil {
			return err
		}
		st.lastRange = r
		st.lastIdx = idx + 1
	}
	st.rowsPending = st.n - st.lastIdx
	return nil
}

// Evaluate computes the aggregate over a fully materialized batch that holds
// exactly one partition. An empty batch yields an empty vector of the
// declared result type.
func (w *AggregateWindower) Evaluate(
	ctx context.Context, batch *coldata.Batch,
) (*coldata.Vec, error) {
	if batch.Length() == 0 {
		return coldata.NewVec(w.def.ResultType, 0), nil
	}
	st, err := w.newState()
	if err != nil {
		return nil, err
	}
	st.isEnd = true
	if err := w.appendBatch(st, batch); err != nil {
		return nil, err
	}
	if err := w.processRows(st); err != nil {
		return nil, errors.WithContextTags(err, ctx)
	}
	return st.out, nil
}

// PartitionBatch is one batch of rows belonging to a single partition in
// incremental evaluation. IsEnd marks the partition as fully delivered.
type PartitionBatch struct {
	Key   []coldata.Datum
	Batch *coldata.Batch
	IsEnd bool
}

// EvaluateStateful folds the given batches into states, finalizing every
// output row whose frame can no longer change. Batches for the same
// partition must arrive in row order, and a partition must not reappear
// after its IsEnd batch. Finalized output and the count of withheld rows are
// left in each partition's WindowAggState.
func (w *AggregateWindower) EvaluateStateful(
	ctx context.Context, batches []PartitionBatch, states *PartitionStates,
) error {
	for i := range batches {
		pb := &batches[i]
		enc := encodePartitionKey(pb.Key)
		ctx := logtags.AddTag(ctx, "partition", enc)
		st := states.get(enc)
		if st == nil {
			var err error
			if st, err = w.newState(); err != nil {
				return errors.WithContextTags(err, ctx)
			}
			states.put(enc, pb.Key, st)
		} else if st.isEnd {
			return errors.WithContextTags(errors.AssertionFailedf(
				"batch for already completed partition"), ctx)
		}
		if err := w.appendBatch(st, pb.Batch); err != nil {
			return errors.WithContextTags(err, ctx)
		}
		st.isEnd = pb.IsEnd
		if err := w.processRows(st); err != nil {
			return errors.WithContextTags(err, ctx)
		}
	}
	return nil
}
