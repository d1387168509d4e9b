// Copyright 2016 - 2025 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package recalc

import (
	"github.com/tiendc/go-deepcopy"
)

type keySet map[Key]struct{}

// Graph is the dependency graph of a workbook. It owns the forward adjacency
// (dependent -> dependencies), the backward adjacency (dependency ->
// dependents) and the set of volatile cells. Edges are only added and removed
// in pairs, so b is a dependency of a exactly when a is a dependent of b.
//
// Graph is not safe for concurrent use.
type Graph struct {
	dependencies map[Key]keySet
	dependents   map[Key]keySet
	volatile     keySet
}

// GraphSnapshot is a detached copy of the graph state.
type GraphSnapshot struct {
	Dependencies map[Key]map[Key]struct{}
	Dependents   map[Key]map[Key]struct{}
	Volatile     map[Key]struct{}
}

// NewGraph returns an empty dependency graph.
func NewGraph() *Graph {
	return &Graph{
		dependencies: make(map[Key]keySet),
		dependents:   make(map[Key]keySet),
		volatile:     make(keySet),
	}
}

// AddDependency records that from reads to. Adding an existing edge is a
// no-op.
func (g *Graph) AddDependency(from, to Key) {
	deps, ok := g.dependencies[from]
	if !ok {
		deps = make(keySet)
		g.dependencies[from] = deps
	}
	deps[to] = struct{}{}

	readers, ok := g.dependents[to]
	if !ok {
		readers = make(keySet)
		g.dependents[to] = readers
	}
	readers[from] = struct{}{}
}

// RemoveDependency removes the edges from -> to for every given target. With
// no target it removes all outgoing edges of from. Missing edges are ignored.
func (g *Graph) RemoveDependency(from Key, to ...Key) {
	deps, ok := g.dependencies[from]
	if !ok {
		return
	}
	if len(to) == 0 {
		for dep := range deps {
			g.unlinkDependent(dep, from)
		}
		delete(g.dependencies, from)
		return
	}
	for _, dep := range to {
		if _, ok := deps[dep]; !ok {
			continue
		}
		delete(deps, dep)
		g.unlinkDependent(dep, from)
	}
	if len(deps) == 0 {
		delete(g.dependencies, from)
	}
}

func (g *Graph) unlinkDependent(dep, from Key) {
	readers := g.dependents[dep]
	delete(readers, from)
	if len(readers) == 0 {
		delete(g.dependents, dep)
	}
}

// RegisterVolatile adds key to the volatile set.
func (g *Graph) RegisterVolatile(key Key) {
	g.volatile[key] = struct{}{}
}

// UnregisterVolatile removes key from the volatile set.
func (g *Graph) UnregisterVolatile(key Key) {
	delete(g.volatile, key)
}

// IsVolatile reports whether key is in the volatile set.
func (g *Graph) IsVolatile(key Key) bool {
	_, ok := g.volatile[key]
	return ok
}

// VolatileKeys returns the volatile set in sorted order.
func (g *Graph) VolatileKeys() []Key {
	return g.volatile.sorted()
}

// Clear drops every edge and every volatile registration.
func (g *Graph) Clear() {
	g.dependencies = make(map[Key]keySet)
	g.dependents = make(map[Key]keySet)
	g.volatile = make(keySet)
}

// Dependencies returns the cells key reads, sorted.
func (g *Graph) Dependencies(key Key) []Key {
	return g.dependencies[key].sorted()
}

// Dependents returns the cells that read key, sorted.
func (g *Graph) Dependents(key Key) []Key {
	return g.dependents[key].sorted()
}

// HasDependencies reports whether key has at least one outgoing edge.
func (g *Graph) HasDependencies(key Key) bool {
	return len(g.dependencies[key]) > 0
}

// Len returns the number of cells with outgoing edges.
func (g *Graph) Len() int {
	return len(g.dependencies)
}

// EdgeCount returns the number of dependency edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, deps := range g.dependencies {
		n += len(deps)
	}
	return n
}

// Snapshot returns a deep copy of the graph state that later mutations do
// not affect.
func (g *Graph) Snapshot() (GraphSnapshot, error) {
	var snap GraphSnapshot
	src := GraphSnapshot{
		Dependencies: make(map[Key]map[Key]struct{}, len(g.dependencies)),
		Dependents:   make(map[Key]map[Key]struct{}, len(g.dependents)),
		Volatile:     g.volatile,
	}
	for k, v := range g.dependencies {
		src.Dependencies[k] = v
	}
	for k, v := range g.dependents {
		src.Dependents[k] = v
	}
	if err := deepcopy.Copy(&snap, src); err != nil {
		return GraphSnapshot{}, err
	}
	return snap, nil
}

// keysInSheet returns every dependent key that belongs to sheet.
func (g *Graph) keysInSheet(sheet string) []Key {
	var keys []Key
	for key := range g.dependencies {
		if key.Sheet() == sheet {
			keys = append(keys, key)
		}
	}
	return sortKeys(keys)
}

func (s keySet) sorted() []Key {
	if len(s) == 0 {
		return nil
	}
	keys := make([]Key, 0, len(s))
	for key := range s {
		keys = append(keys, key)
	}
	return sortKeys(keys)
}
