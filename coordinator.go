// Copyright 2016 - 2025 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package recalc

import (
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Coordinator drives incremental recalculation for one workbook. It keeps
// the dependency graph in step with formula edits and, when a cell changes,
// invalidates and recomputes exactly the cells that read it, dependencies
// first.
//
// A Coordinator runs on the caller's goroutine and is not safe for concurrent
// use. Multi-cell operations such as fill or paste should wrap their edits in
// StartBatch and EndBatch so the affected cells are recomputed once.
type Coordinator struct {
	id       string
	graph    *Graph
	workbook Workbook
	options  Options
	log      *slog.Logger
	parsed   *formulaCache

	batching bool
	pending  keySet
}

// NewCoordinator returns a coordinator with an empty graph for wb. Call
// RebuildAll once the workbook content is loaded.
func NewCoordinator(wb Workbook, opts ...Options) *Coordinator {
	options := getOptions(opts...)
	id := uuid.NewString()
	return &Coordinator{
		id:       id,
		graph:    NewGraph(),
		workbook: wb,
		options:  options,
		log:      options.Logger.With("coordinator", id),
		parsed:   newFormulaCache(options.FormulaCacheSize),
		pending:  make(keySet),
	}
}

// ID returns the random identifier attached to the coordinator's log lines.
func (c *Coordinator) ID() string { return c.id }

// Graph returns the dependency graph. Hosts may register volatile cells or
// inspect edges through it.
func (c *Coordinator) Graph() *Graph { return c.graph }

// RegisterVolatile marks a cell whose value may change on every pass.
func (c *Coordinator) RegisterVolatile(sheet string, row, col int) error {
	if err := ValidateCoordinates(sheet, row, col); err != nil {
		return err
	}
	c.graph.RegisterVolatile(NewKey(sheet, row, col))
	return nil
}

// UnregisterVolatile removes a cell from the volatile set.
func (c *Coordinator) UnregisterVolatile(sheet string, row, col int) error {
	if err := ValidateCoordinates(sheet, row, col); err != nil {
		return err
	}
	c.graph.UnregisterVolatile(NewKey(sheet, row, col))
	return nil
}

// NotifyChange reports that the value of a cell changed. Every cell reading
// it is invalidated and recomputed in dependency order, or queued when a
// batch is open.
func (c *Coordinator) NotifyChange(sheet string, row, col int) error {
	if err := ValidateCoordinates(sheet, row, col); err != nil {
		return err
	}
	key := NewKey(sheet, row, col)
	affected := c.graph.AffectedCells(key)
	if c.batching {
		c.enqueue(affected)
		return nil
	}
	c.recompute(affected, string(key))
	return nil
}

// ApplyEdit runs the per-edit sequence for a cell whose content was just
// replaced: refresh its edges, recompute its readers and, unless
// Options.ManualCalc is set, refresh volatile cells. A parse failure of the
// new formula is returned after the rest of the sequence ran.
func (c *Coordinator) ApplyEdit(sheet string, row, col int) error {
	updateErr := c.UpdateDependencies(sheet, row, col)
	var malformed ErrMalformedKey
	if errors.As(updateErr, &malformed) {
		return updateErr
	}
	if err := c.NotifyChange(sheet, row, col); err != nil {
		return err
	}
	if !c.options.ManualCalc {
		c.RecalculateVolatile()
	}
	return updateErr
}

// StartBatch opens a batch. Recomputation triggered until EndBatch is
// accumulated instead of performed. Starting a batch while one is open
// discards what the open batch accumulated.
func (c *Coordinator) StartBatch() {
	c.batching = true
	c.pending = make(keySet)
}

// EndBatch closes the batch, whatever the number of StartBatch calls, and
// recomputes the accumulated cells in one pass.
func (c *Coordinator) EndBatch() {
	c.batching = false
	pending := c.pending
	c.pending = make(keySet)
	if len(pending) == 0 {
		return
	}
	c.recompute(pending.sorted(), "batch")
}

// InBatch reports whether a batch is open.
func (c *Coordinator) InBatch() bool { return c.batching }

// Pending returns the cells queued by the open batch, sorted.
func (c *Coordinator) Pending() []Key { return c.pending.sorted() }

// RecalculateVolatile recomputes every volatile cell and every cell reading
// one. Hosts call it after each edit in automatic calculation mode and before
// exporting values.
func (c *Coordinator) RecalculateVolatile() {
	volatile := c.graph.VolatileKeys()
	if len(volatile) == 0 {
		return
	}
	set := make(keySet, len(volatile))
	for _, key := range volatile {
		set[key] = struct{}{}
		for _, affected := range c.graph.AffectedCells(key) {
			set[affected] = struct{}{}
		}
	}
	keys := set.sorted()
	if c.batching {
		c.enqueue(keys)
		return
	}
	c.recompute(keys, "volatile")
}

// RebuildForSheet drops the edges of every formula cell of sheet and scans
// the sheet's formula cells again. Formulas that fail to parse are logged
// and left without edges.
func (c *Coordinator) RebuildForSheet(sheet string) {
	s, ok := c.workbook.Sheet(sheet)
	if ok {
		sheet = s.Name()
	}
	for _, key := range c.graph.keysInSheet(sheet) {
		c.graph.RemoveDependency(key)
	}
	if _, detects := c.options.Formula.(VolatileDetector); detects {
		for _, key := range c.graph.VolatileKeys() {
			if key.Sheet() == sheet {
				c.graph.UnregisterVolatile(key)
			}
		}
	}
	if !ok {
		c.log.Warn("[Recalc] rebuild of unknown sheet, edges cleared", "sheet", sheet)
		return
	}

	start := time.Now()
	cells := s.FormulaCells()
	failed := 0
	for _, ref := range cells {
		if err := c.UpdateDependencies(sheet, ref.Row, ref.Col); err != nil {
			failed++
		}
	}
	c.log.Debug("[Recalc] sheet rebuilt", "sheet", sheet, "formulas", len(cells), "failed", failed, "elapsed", time.Since(start))
}

// RebuildAll clears the graph and rebuilds it from every sheet of the
// workbook. Volatile registrations are cleared too; with a Formula that
// implements VolatileDetector they are derived again from the formulas.
func (c *Coordinator) RebuildAll() {
	start := time.Now()
	c.graph.Clear()
	sheets := c.workbook.Sheets()
	for _, name := range sheets {
		if s, ok := c.workbook.Sheet(name); ok {
			if initializer, ok := s.(SheetInitializer); ok {
				if err := initializer.Init(); err != nil {
					c.log.Warn("[Recalc] sheet initialisation failed", "sheet", name, "error", err)
				}
			}
		}
		c.RebuildForSheet(name)
	}
	c.log.Info("[Recalc] dependency graph rebuilt", "sheets", len(sheets), "cells", c.graph.Len(),
		"edges", c.graph.EdgeCount(), "volatile", len(c.graph.volatile), "elapsed", time.Since(start))
}

// Clear drops the whole graph and any open batch.
func (c *Coordinator) Clear() {
	c.graph.Clear()
	c.parsed.Clear()
	c.batching = false
	c.pending = make(keySet)
}

func (c *Coordinator) enqueue(keys []Key) {
	for _, key := range keys {
		c.pending[key] = struct{}{}
	}
}

// recompute orders keys, then invalidates and recomputes each cell in that
// order. Cells left out of the order by a cycle keep their previous values.
func (c *Coordinator) recompute(keys []Key, trigger string) []Key {
	if len(keys) == 0 {
		return nil
	}
	start := time.Now()
	order, cycles := c.graph.TopologicalSort(keys)
	for _, err := range cycles {
		c.reportCycle(err)
	}
	recomputed := 0
	for _, key := range order {
		sheet, row, col, err := ParseKey(string(key))
		if err != nil {
			c.log.Error("[Recalc] malformed key in graph", "key", key, "error", err)
			continue
		}
		cell, ok := c.workbook.Cell(sheet, row, col)
		if !ok {
			continue
		}
		cell.Invalidate()
		cell.EnsureComputed()
		recomputed++
	}
	c.log.Debug("[Recalc] pass completed", "trigger", trigger, "cells", recomputed,
		"unresolved", len(keys)-len(order), "elapsed", time.Since(start))
	return order
}

func (c *Coordinator) reportCycle(err *ErrCycleDetected) {
	c.log.Warn("[Recalc] circular reference", "error", err)
	if c.options.OnCycle != nil {
		c.options.OnCycle(err)
	}
}
