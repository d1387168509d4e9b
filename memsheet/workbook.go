// Copyright 2016 - 2025 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package memsheet is an in-memory workbook that hosts the recalculation
// core. It stores raw cell text, evaluates formulas lazily through a
// pluggable Evaluator and reports every edit to a recalc.Coordinator.
package memsheet

import (
	"fmt"
	"strconv"
	"time"

	"github.com/OmniMCP-AI/recalc"
	"golang.org/x/text/cases"
)

// ErrSheetNotExist defines an error of sheet that does not exist.
type ErrSheetNotExist struct {
	SheetName string
}

func (err ErrSheetNotExist) Error() string {
	return fmt.Sprintf("sheet %s does not exist", err.SheetName)
}

// ErrSheetExist defines an error of adding a sheet whose name is taken,
// ignoring case.
type ErrSheetExist struct {
	SheetName string
}

func (err ErrSheetExist) Error() string {
	return fmt.Sprintf("sheet %s already exists", err.SheetName)
}

// ErrCellName defines an error of an invalid A1-style cell name.
type ErrCellName struct {
	Cell string
}

func (err ErrCellName) Error() string {
	return fmt.Sprintf("invalid cell name %q", err.Cell)
}

// Evaluator computes the value of a formula cell. It may read other cells
// through wb; those cells are evaluated on demand.
type Evaluator func(wb *Workbook, sheet string, row, col int, formula string) (string, error)

// Workbook is an ordered set of sheets with a recalculation coordinator.
// Sheet names are matched without regard to case.
type Workbook struct {
	Evaluator Evaluator

	sheets []*Sheet
	byName map[string]*Sheet
	fold   cases.Caser
	calc   *recalc.Coordinator
}

// NewWorkbook returns an empty workbook. opts configure its coordinator.
func NewWorkbook(opts ...recalc.Options) *Workbook {
	wb := &Workbook{
		byName: make(map[string]*Sheet),
		fold:   cases.Fold(),
	}
	wb.calc = recalc.NewCoordinator(wb, opts...)
	return wb
}

// Coordinator returns the recalculation coordinator of the workbook.
func (wb *Workbook) Coordinator() *recalc.Coordinator { return wb.calc }

// NewSheet appends an empty sheet. Formulas written before the sheet existed
// keep edges to the name as they spelled it until the next Reload.
func (wb *Workbook) NewSheet(name string) (*Sheet, error) {
	if name == "" {
		return nil, ErrSheetNotExist{SheetName: name}
	}
	folded := wb.fold.String(name)
	if _, ok := wb.byName[folded]; ok {
		return nil, ErrSheetExist{SheetName: name}
	}
	sheet := &Sheet{wb: wb, name: name}
	_ = sheet.Init()
	wb.sheets = append(wb.sheets, sheet)
	wb.byName[folded] = sheet
	return sheet, nil
}

// DeleteSheet removes a sheet with its cells. Its edges are dropped and every
// formula that read one of its cells is recomputed in one batch.
func (wb *Workbook) DeleteSheet(name string) error {
	sheet, ok := wb.Worksheet(name)
	if !ok {
		return ErrSheetNotExist{SheetName: name}
	}
	refs := sheet.store.refs(nil)
	delete(wb.byName, wb.fold.String(name))
	for i, s := range wb.sheets {
		if s == sheet {
			wb.sheets = append(wb.sheets[:i], wb.sheets[i+1:]...)
			break
		}
	}

	wb.calc.StartBatch()
	defer wb.calc.EndBatch()
	wb.calc.RebuildForSheet(sheet.name)
	for _, ref := range refs {
		if err := wb.calc.NotifyChange(sheet.name, ref.Row, ref.Col); err != nil {
			return err
		}
	}
	return nil
}

// Worksheet returns the named sheet.
func (wb *Workbook) Worksheet(name string) (*Sheet, bool) {
	sheet, ok := wb.byName[wb.fold.String(name)]
	return sheet, ok
}

// Sheet implements recalc.Workbook.
func (wb *Workbook) Sheet(name string) (recalc.Sheet, bool) {
	sheet, ok := wb.Worksheet(name)
	if !ok {
		return nil, false
	}
	return sheet, true
}

// Sheets returns the sheet names in workbook order.
func (wb *Workbook) Sheets() []string {
	names := make([]string, len(wb.sheets))
	for i, sheet := range wb.sheets {
		names[i] = sheet.name
	}
	return names
}

// Cell implements recalc.Workbook.
func (wb *Workbook) Cell(sheet string, row, col int) (recalc.Cell, bool) {
	cell, ok := wb.GetCell(sheet, row, col)
	if !ok {
		return nil, false
	}
	return cell, true
}

// GetCell returns the stored cell at zero-based coordinates.
func (wb *Workbook) GetCell(sheet string, row, col int) (*Cell, bool) {
	ws, ok := wb.Worksheet(sheet)
	if !ok {
		return nil, false
	}
	return ws.store.get(row, col)
}

// SetCellValue stores value in the named cell and recalculates the cells that
// read it. Strings starting with "=" are formulas; an empty value deletes the
// cell. A formula whose references cannot be extracted is stored and an
// *recalc.ErrDependencyParse is returned.
func (wb *Workbook) SetCellValue(sheet, cell string, value interface{}) error {
	ws, ok := wb.Worksheet(sheet)
	if !ok {
		return ErrSheetNotExist{SheetName: sheet}
	}
	col, row, ok := recalc.CellNameToCoordinates(cell)
	if !ok {
		return ErrCellName{Cell: cell}
	}
	ws.setRaw(row-1, col-1, formatValue(value))
	return wb.calc.ApplyEdit(ws.name, row-1, col-1)
}

// GetCellValue returns the computed value of the named cell, evaluating it if
// its cache is unset.
func (wb *Workbook) GetCellValue(sheet, cell string) (string, error) {
	ws, ok := wb.Worksheet(sheet)
	if !ok {
		return "", ErrSheetNotExist{SheetName: sheet}
	}
	col, row, ok := recalc.CellNameToCoordinates(cell)
	if !ok {
		return "", ErrCellName{Cell: cell}
	}
	c, ok := ws.store.get(row-1, col-1)
	if !ok {
		return "", nil
	}
	return c.Value(), nil
}

// Reload rebuilds the dependency graph after the workbook content was
// replaced wholesale and drops every cached value.
func (wb *Workbook) Reload() {
	for _, sheet := range wb.sheets {
		for _, ref := range sheet.store.refs(nil) {
			if c, ok := sheet.store.get(ref.Row, ref.Col); ok {
				c.Invalidate()
			}
		}
	}
	wb.calc.RebuildAll()
}

func formatValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}
