// Copyright 2016 - 2025 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package memsheet

import "github.com/OmniMCP-AI/recalc"

// Sheet is one worksheet of a Workbook.
type Sheet struct {
	wb    *Workbook
	name  string
	store *cellStore
}

// Name returns the sheet name as it was created.
func (s *Sheet) Name() string { return s.name }

// Init allocates the cell storage of a sheet that has none.
func (s *Sheet) Init() error {
	if s.store == nil {
		s.store = newCellStore()
	}
	return nil
}

// FormulaCells returns the coordinates of every formula cell, in row then
// column order.
func (s *Sheet) FormulaCells() []recalc.CellRef {
	return s.store.refs(func(c *Cell) bool { return c.IsFormula() })
}

// Len returns the number of stored cells.
func (s *Sheet) Len() int { return s.store.len() }

// setRaw replaces the raw text of a cell and invalidates its cached values.
// Empty text deletes the cell.
func (s *Sheet) setRaw(row, col int, raw string) {
	if raw == "" {
		if cell, ok := s.store.get(row, col); ok {
			cell.Invalidate()
			s.store.delete(row, col)
		}
		return
	}
	cell, ok := s.store.get(row, col)
	if !ok {
		cell = &Cell{sheet: s, row: row, col: col}
		s.store.set(row, col, cell)
	}
	cell.raw = raw
	cell.Invalidate()
}
