// Copyright 2016 - 2025 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package recalc

// visitState is the three-colour tag of a key during TopologicalSort.
type visitState uint8

const (
	unvisited visitState = iota
	inProgress
	done
)

// AffectedCells returns every cell that reads key directly or transitively,
// in breadth-first order. key itself is never part of the result, even when
// it sits on a cycle.
func (g *Graph) AffectedCells(key Key) []Key {
	visited := keySet{key: {}}
	queue := []Key{key}
	var affected []Key
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, dependent := range g.dependents[current].sorted() {
			if _, seen := visited[dependent]; seen {
				continue
			}
			visited[dependent] = struct{}{}
			affected = append(affected, dependent)
			queue = append(queue, dependent)
		}
	}
	return affected
}

// DetectCycle reports whether adding the edge from -> to would close a cycle,
// that is whether from is already reachable from to along dependency edges.
// The graph is not modified.
func (g *Graph) DetectCycle(from, to Key) bool {
	return g.cyclePath(from, to) != nil
}

// cyclePath returns the cycle from -> to -> ... -> from that the edge from ->
// to would close, or nil.
func (g *Graph) cyclePath(from, to Key) []Key {
	if from == to {
		return []Key{from, from}
	}
	parent := map[Key]Key{to: to}
	queue := []Key{to}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, dep := range g.dependencies[current].sorted() {
			if dep == from {
				var chain []Key
				for k := current; ; k = parent[k] {
					chain = append(chain, k)
					if k == to {
						break
					}
				}
				path := make([]Key, 0, len(chain)+2)
				path = append(path, from)
				for i := len(chain) - 1; i >= 0; i-- {
					path = append(path, chain[i])
				}
				return append(path, from)
			}
			if _, seen := parent[dep]; seen {
				continue
			}
			parent[dep] = current
			queue = append(queue, dep)
		}
	}
	return nil
}

type sortFrame struct {
	key  Key
	deps []Key
	next int
}

// TopologicalSort orders keys so that every dependency precedes its
// dependents. Edges to cells outside keys are ignored.
//
// A cycle aborts the exploration of the root that reached it: the keys on the
// current path stay in progress for the rest of the sort, so they and every
// key depending on them are left out of the order. One *ErrCycleDetected is
// returned per cycle found; sorting always continues with the next root.
func (g *Graph) TopologicalSort(keys []Key) ([]Key, []*ErrCycleDetected) {
	inSet := make(keySet, len(keys))
	for _, key := range keys {
		inSet[key] = struct{}{}
	}
	roots := inSet.sorted()
	state := make(map[Key]visitState, len(roots))
	order := make([]Key, 0, len(roots))
	var (
		cycles []*ErrCycleDetected
		stack  []sortFrame
	)
	for _, root := range roots {
		if state[root] != unvisited {
			continue
		}
		state[root] = inProgress
		stack = append(stack[:0], sortFrame{key: root, deps: g.restrictedDependencies(root, inSet)})
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next == len(top.deps) {
				state[top.key] = done
				order = append(order, top.key)
				stack = stack[:len(stack)-1]
				continue
			}
			dep := top.deps[top.next]
			top.next++
			switch state[dep] {
			case done:
			case unvisited:
				state[dep] = inProgress
				stack = append(stack, sortFrame{key: dep, deps: g.restrictedDependencies(dep, inSet)})
			case inProgress:
				if at := stackIndex(stack, dep); at >= 0 {
					path := make([]Key, len(stack))
					for i := range stack {
						path[i] = stack[i].key
					}
					cycles = append(cycles, cycleError(path, at, dep))
				}
				// Either a new cycle or a key left unresolved by an earlier one.
				stack = stack[:0]
			}
		}
	}
	return order, cycles
}

func (g *Graph) restrictedDependencies(key Key, within keySet) []Key {
	var deps []Key
	for dep := range g.dependencies[key] {
		if _, ok := within[dep]; ok {
			deps = append(deps, dep)
		}
	}
	return sortKeys(deps)
}

func stackIndex(stack []sortFrame, key Key) int {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].key == key {
			return i
		}
	}
	return -1
}
