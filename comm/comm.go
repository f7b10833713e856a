// Package comm provides the collectives used by the setup pass.
//
// Every partition runs the same sequence of collective calls (SPMD). A collective blocks until
// all partitions have contributed; no partition proceeds past it without its result.
package comm

import (
	"context"
	"fmt"
)

// Communicator exchanges int64 vectors between the partitions of one setup pass
type Communicator interface {
	Rank() int
	Size() int
	// Gather collects every rank's values at root, indexed by rank. Non-root ranks receive nil.
	Gather(ctx context.Context, root int, values []int64) ([][]int64, error)
	// Scatter sends values[r] from root to rank r. Only root's values are read.
	Scatter(ctx context.Context, root int, values [][]int64) ([]int64, error)
	// AllReduceSum returns the element-wise sum of every rank's values to all ranks
	AllReduceSum(ctx context.Context, values []int64) ([]int64, error)
	// Broadcast sends root's values to every rank
	Broadcast(ctx context.Context, root int, values []int64) ([]int64, error)
}

// Coordinator is the rank that computes id offsets
const Coordinator = 0

// AllocateIDOffset is the two-phase id allocation: every rank reports how many ids it needs,
// the coordinator computes an exclusive prefix sum over the counts and scatters each rank its
// first id. The total number of ids over all ranks is returned as well.
func AllocateIDOffset(ctx context.Context, c Communicator, count int64) (offset, total int64, err error) {
	if count < 0 {
		return 0, 0, fmt.Errorf("rank %d requested a negative id count %d", c.Rank(), count)
	}
	counts, err := c.Gather(ctx, Coordinator, []int64{count})
	if err != nil {
		return 0, 0, fmt.Errorf("gathering id counts: %w", err)
	}
	var offsets [][]int64
	if c.Rank() == Coordinator {
		offsets = make([][]int64, c.Size())
		var sum int64
		for r, cnt := range counts {
			offsets[r] = []int64{sum, 0}
			sum += cnt[0]
		}
		for r := range offsets {
			offsets[r][1] = sum
		}
	}
	mine, err := c.Scatter(ctx, Coordinator, offsets)
	if err != nil {
		return 0, 0, fmt.Errorf("scattering id offsets: %w", err)
	}
	return mine[0], mine[1], nil
}

// Solo is the communicator of a single partition run
type Solo struct{}

func (Solo) Rank() int { return 0 }
func (Solo) Size() int { return 1 }

func (Solo) Gather(_ context.Context, root int, values []int64) ([][]int64, error) {
	if root != 0 {
		return nil, fmt.Errorf("root %d out of range for a single partition", root)
	}
	return [][]int64{append([]int64(nil), values...)}, nil
}

func (Solo) Scatter(_ context.Context, root int, values [][]int64) ([]int64, error) {
	if root != 0 || len(values) != 1 {
		return nil, fmt.Errorf("scatter needs root 0 and one value set, have root %d and %d sets", root, len(values))
	}
	return append([]int64(nil), values[0]...), nil
}

func (Solo) AllReduceSum(_ context.Context, values []int64) ([]int64, error) {
	return append([]int64(nil), values...), nil
}

func (Solo) Broadcast(_ context.Context, root int, values []int64) ([]int64, error) {
	if root != 0 {
		return nil, fmt.Errorf("root %d out of range for a single partition", root)
	}
	return append([]int64(nil), values...), nil
}
