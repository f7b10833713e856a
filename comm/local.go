package comm

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

type message struct {
	round  uint64
	from   int
	values []int64
}

type hub struct {
	size  int
	inbox []chan message
}

// Local is one rank of an in-process world; every rank runs on its own goroutine.
// Messages carry the collective round so a fast rank can run ahead without confusing a slow root.
type Local struct {
	h       *hub
	rank    int
	round   uint64
	pending []message
}

// NewLocalWorld creates size connected in-process ranks
func NewLocalWorld(size int) []*Local {
	if size < 1 {
		panic(fmt.Errorf("world size must be positive, have %d", size))
	}
	h := &hub{size: size, inbox: make([]chan message, size)}
	for r := range h.inbox {
		h.inbox[r] = make(chan message, 2*size+8)
	}
	ranks := make([]*Local, size)
	for r := range ranks {
		ranks[r] = &Local{h: h, rank: r}
	}
	return ranks
}

// RunWorld runs fn once per rank of a new in-process world and waits for all of them.
// The first error cancels the context seen by the other ranks.
func RunWorld(ctx context.Context, size int, fn func(ctx context.Context, c Communicator) error) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, c := range NewLocalWorld(size) {
		c := c
		g.Go(func() error {
			return fn(ctx, c)
		})
	}
	return g.Wait()
}

func (l *Local) Rank() int { return l.rank }
func (l *Local) Size() int { return l.h.size }

// send delivers to another rank. While the target inbox is full the own inbox keeps draining into
// pending, so two ranks sending to each other cannot block for good.
func (l *Local) send(ctx context.Context, to int, round uint64, values []int64) error {
	msg := message{round: round, from: l.rank, values: append([]int64(nil), values...)}
	for {
		select {
		case l.h.inbox[to] <- msg:
			return nil
		case in := <-l.h.inbox[l.rank]:
			l.pending = append(l.pending, in)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (l *Local) recv(ctx context.Context, round uint64, from int) ([]int64, error) {
	for i, msg := range l.pending {
		if msg.round == round && msg.from == from {
			l.pending = append(l.pending[:i], l.pending[i+1:]...)
			return msg.values, nil
		}
	}
	for {
		select {
		case msg := <-l.h.inbox[l.rank]:
			if msg.round == round && msg.from == from {
				return msg.values, nil
			}
			l.pending = append(l.pending, msg)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (l *Local) checkRoot(root int) error {
	if root < 0 || root >= l.h.size {
		return fmt.Errorf("root %d out of range [0,%d)", root, l.h.size)
	}
	return nil
}

func (l *Local) Gather(ctx context.Context, root int, values []int64) ([][]int64, error) {
	if err := l.checkRoot(root); err != nil {
		return nil, err
	}
	round := l.round
	l.round++
	if l.rank != root {
		return nil, l.send(ctx, root, round, values)
	}
	// the root never sends to itself
	all := make([][]int64, l.h.size)
	all[root] = append([]int64(nil), values...)
	for r := range all {
		if r == root {
			continue
		}
		v, err := l.recv(ctx, round, r)
		if err != nil {
			return nil, err
		}
		all[r] = v
	}
	return all, nil
}

func (l *Local) Scatter(ctx context.Context, root int, values [][]int64) ([]int64, error) {
	if err := l.checkRoot(root); err != nil {
		return nil, err
	}
	round := l.round
	l.round++
	if l.rank != root {
		return l.recv(ctx, round, root)
	}
	if len(values) != l.h.size {
		return nil, fmt.Errorf("scatter needs %d value sets, have %d", l.h.size, len(values))
	}
	for r := range values {
		if r == root {
			continue
		}
		if err := l.send(ctx, r, round, values[r]); err != nil {
			return nil, err
		}
	}
	return append([]int64(nil), values[root]...), nil
}

func (l *Local) AllReduceSum(ctx context.Context, values []int64) ([]int64, error) {
	all, err := l.Gather(ctx, Coordinator, values)
	if err != nil {
		return nil, err
	}
	var sums [][]int64
	if l.rank == Coordinator {
		total := make([]int64, len(values))
		for r, v := range all {
			if len(v) != len(total) {
				return nil, fmt.Errorf("rank %d reduced %d values, rank %d reduced %d",
					r, len(v), Coordinator, len(total))
			}
			for i := range v {
				total[i] += v[i]
			}
		}
		sums = make([][]int64, l.h.size)
		for r := range sums {
			sums[r] = total
		}
	}
	return l.Scatter(ctx, Coordinator, sums)
}

func (l *Local) Broadcast(ctx context.Context, root int, values []int64) ([]int64, error) {
	var copies [][]int64
	if l.rank == root {
		copies = make([][]int64, l.h.size)
		for r := range copies {
			copies[r] = values
		}
	}
	return l.Scatter(ctx, root, copies)
}
