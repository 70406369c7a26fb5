package pathfind

import (
	"container/heap"

	"github.com/navzen/navigation/internal/navmap"
)

// node is a frontier entry. The same position may be queued several times
// with different priorities; stale entries are discarded when popped.
type node struct {
	pos navmap.Point
	g   float64
	f   float64
	seq uint64
}

// frontier is a min-heap on f, ties broken by insertion order.
type frontier struct {
	items []node
	next  uint64
}

func (q *frontier) Len() int { return len(q.items) }

func (q *frontier) Less(i, j int) bool {
	if q.items[i].f != q.items[j].f {
		return q.items[i].f < q.items[j].f
	}
	return q.items[i].seq < q.items[j].seq
}

func (q *frontier) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *frontier) Push(x any) { q.items = append(q.items, x.(node)) }

func (q *frontier) Pop() any {
	old := q.items
	n := len(old)
	it := old[n-1]
	q.items = old[:n-1]
	return it
}

func (q *frontier) push(pos navmap.Point, g, f float64) {
	heap.Push(q, node{pos: pos, g: g, f: f, seq: q.next})
	q.next++
}

func (q *frontier) pop() node {
	return heap.Pop(q).(node)
}
