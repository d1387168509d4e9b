// Copyright 2016 - 2025 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package recalc

import "github.com/xuri/efp"

// Reference is one cell a formula reads, with zero-based coordinates.
type Reference struct {
	Row   int
	Col   int
	Sheet string
	// Resolved is set when the collaborator already decided the sheet: Sheet
	// names it, or "" means the sheet holding the formula. Unresolved
	// references are matched against the qualified tokens of the formula.
	Resolved bool
}

// Formula extracts the references of a formula. Implementations must be
// deterministic: identical text yields identical tokens and references.
type Formula interface {
	Tokenize(text string) ([]efp.Token, error)
	ParseDeps(tokens []efp.Token) ([]Reference, error)
}

// VolatileDetector is implemented by Formula collaborators that can tell
// whether a formula calls a volatile function such as NOW or RAND.
type VolatileDetector interface {
	IsVolatile(tokens []efp.Token) bool
}

// Cell is the host's handle on one stored cell.
type Cell interface {
	IsFormula() bool
	// Formula returns the raw edit text, including the leading "=".
	Formula() string
	// Invalidate sets the computed, display and formatted-result values to
	// unset.
	Invalidate()
	// EnsureComputed recomputes the computed value if it is unset.
	EnsureComputed()
}

// CellRef addresses a cell of a known sheet by zero-based coordinates.
type CellRef struct {
	Row int
	Col int
}

// Sheet enumerates the formula cells of one worksheet.
type Sheet interface {
	Name() string
	FormulaCells() []CellRef
}

// SheetInitializer is implemented by sheets that need structural set-up
// before their edges are rebuilt.
type SheetInitializer interface {
	Init() error
}

// Workbook resolves cells and sheets for the coordinator.
type Workbook interface {
	// Cell returns the stored cell, or false when nothing is stored there.
	Cell(sheet string, row, col int) (Cell, bool)
	Sheet(name string) (Sheet, bool)
	Sheets() []string
}
