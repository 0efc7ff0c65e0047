package lock

import "heapstore/pkg/concurrency/transaction"

// DependencyGraph tracks which transactions are waiting on which. An edge
// A -> B means A waits for a lock B holds; a cycle means deadlock.
type DependencyGraph struct {
	edges map[*transaction.TransactionID]map[*transaction.TransactionID]struct{}
}

func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		edges: make(map[*transaction.TransactionID]map[*transaction.TransactionID]struct{}),
	}
}

// AddEdge records that waiter is blocked on holder. Self-edges are ignored.
func (g *DependencyGraph) AddEdge(waiter, holder *transaction.TransactionID) {
	if waiter == holder {
		return
	}
	if g.edges[waiter] == nil {
		g.edges[waiter] = make(map[*transaction.TransactionID]struct{})
	}
	g.edges[waiter][holder] = struct{}{}
}

// RemoveTransaction drops the transaction's outgoing edges and every edge
// pointing at it.
func (g *DependencyGraph) RemoveTransaction(tid *transaction.TransactionID) {
	delete(g.edges, tid)
	for _, targets := range g.edges {
		delete(targets, tid)
	}
}

// HasCycle reports whether the wait-for graph currently contains a cycle.
func (g *DependencyGraph) HasCycle() bool {
	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	state := make(map[*transaction.TransactionID]int, len(g.edges))

	var visit func(tid *transaction.TransactionID) bool
	visit = func(tid *transaction.TransactionID) bool {
		state[tid] = inStack
		for next := range g.edges[tid] {
			switch state[next] {
			case inStack:
				return true
			case unvisited:
				if visit(next) {
					return true
				}
			}
		}
		state[tid] = done
		return false
	}

	for tid := range g.edges {
		if state[tid] == unvisited && visit(tid) {
			return true
		}
	}
	return false
}
