// Package peel implements greedy outlier elimination over a neighbourhood
// "violates" relation, and the position (iQuam) and SST spike checks built on
// top of it.
//
// Each report is compared with up to k neighbours on either side. The report
// involved in the most violations is failed and removed from every other
// report's violation set, and the process repeats until no violations remain.
package peel

import "container/heap"

// Violates reports whether reports i and j are inconsistent with each other.
type Violates func(i, j int) bool

// Result is the outcome of a peeling run.
type Result struct {
	Failed []bool
	// Rounds is the number of reports removed, one per round.
	Rounds int
	// Violations is the number of (i, j) violations found before peeling.
	Violations int
}

// Peel runs greedy violation peeling over n reports, comparing each with at
// most k neighbours on each side.
func Peel(n, k int, violates Violates) Result {
	res := Result{Failed: make([]bool, n)}
	if n == 0 || k < 1 {
		return res
	}

	sets := make([][]int, n)
	q := &countQueue{pos: make([]int, n)}
	for i := 0; i < n; i++ {
		lo, hi := max(0, i-k), min(n-1, i+k)
		for j := lo; j <= hi; j++ {
			if j != i && violates(i, j) {
				sets[i] = append(sets[i], j)
			}
		}
		res.Violations += len(sets[i])
		heap.Push(q, &entry{index: i, count: len(sets[i])})
	}

	for q.Len() > 0 {
		worst := heap.Pop(q).(*entry)
		if worst.count == 0 {
			break
		}
		res.Failed[worst.index] = true
		res.Rounds++
		sets[worst.index] = nil

		lo, hi := max(0, worst.index-k), min(n-1, worst.index+k)
		for j := lo; j <= hi; j++ {
			if res.Failed[j] || !removeFrom(&sets[j], worst.index) {
				continue
			}
			e := q.items[q.pos[j]]
			e.count--
			heap.Fix(q, q.pos[j])
		}
	}
	return res
}

func removeFrom(set *[]int, v int) bool {
	s := *set
	for i, x := range s {
		if x == v {
			*set = append(s[:i], s[i+1:]...)
			return true
		}
	}
	return false
}

type entry struct {
	index int
	count int
}

// countQueue is a max-heap on violation count. Ties go to the earliest report.
type countQueue struct {
	items []*entry
	pos   []int // pos[report index] = position in items
}

func (q *countQueue) Len() int { return len(q.items) }

func (q *countQueue) Less(a, b int) bool {
	if q.items[a].count != q.items[b].count {
		return q.items[a].count > q.items[b].count
	}
	return q.items[a].index < q.items[b].index
}

func (q *countQueue) Swap(a, b int) {
	q.items[a], q.items[b] = q.items[b], q.items[a]
	q.pos[q.items[a].index] = a
	q.pos[q.items[b].index] = b
}

func (q *countQueue) Push(x any) {
	e := x.(*entry)
	q.pos[e.index] = len(q.items)
	q.items = append(q.items, e)
}

func (q *countQueue) Pop() any {
	old := q.items
	e := old[len(old)-1]
	q.items = old[:len(old)-1]
	return e
}
