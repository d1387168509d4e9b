// Copyright 2016 - 2025 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package recalc

import (
	"strings"

	"github.com/xuri/efp"
)

// UpdateDependencies recomputes the outgoing edges of one cell from its
// current formula. Existing edges are always detached first; a cell that is
// empty or no longer holds a formula ends with none.
//
// When the formula cannot be parsed the cell is left without edges, loses a
// detected volatile registration, and an *ErrDependencyParse is returned. The graph stays consistent, so callers may
// treat the error as a warning.
func (c *Coordinator) UpdateDependencies(sheet string, row, col int) error {
	if err := ValidateCoordinates(sheet, row, col); err != nil {
		return err
	}
	key := NewKey(sheet, row, col)
	c.graph.RemoveDependency(key)

	cell, ok := c.workbook.Cell(sheet, row, col)
	if !ok || !cell.IsFormula() {
		c.graph.UnregisterVolatile(key)
		return nil
	}
	formula := cell.Formula()
	parsed := c.parse(strings.TrimPrefix(formula, "="))
	_, detects := c.options.Formula.(VolatileDetector)
	if parsed.err != nil {
		if detects {
			c.graph.UnregisterVolatile(key)
		}
		c.log.Warn("[EdgeMaintainer] dependency extraction failed", "key", key, "formula", formula, "error", parsed.err)
		return &ErrDependencyParse{Key: key, Formula: formula, Err: parsed.err}
	}

	if detects {
		if parsed.volatile {
			c.graph.RegisterVolatile(key)
		} else {
			c.graph.UnregisterVolatile(key)
		}
	}
	for _, ref := range parsed.refs {
		target := NewKey(c.resolveSheet(sheet, ref, parsed.tokens), ref.Row, ref.Col)
		if c.options.CheckCycles {
			if path := c.graph.cyclePath(key, target); path != nil {
				c.reportCycle(&ErrCycleDetected{Path: path})
			}
		}
		c.graph.AddDependency(key, target)
	}
	return nil
}

// parse tokenizes and parses formula text through the parse cache.
func (c *Coordinator) parse(text string) *parsedFormula {
	if parsed, ok := c.parsed.Load(text); ok {
		return parsed
	}
	parsed := &parsedFormula{}
	parsed.tokens, parsed.err = c.options.Formula.Tokenize(text)
	if parsed.err == nil {
		parsed.refs, parsed.err = c.options.Formula.ParseDeps(parsed.tokens)
	}
	if detector, ok := c.options.Formula.(VolatileDetector); ok && parsed.err == nil {
		parsed.volatile = detector.IsVolatile(parsed.tokens)
	}
	c.parsed.Store(text, parsed)
	return parsed
}

// resolveSheet picks the sheet a reference points at. Unresolved references
// take the qualifier of the first cross-sheet token covering the same
// coordinates, which is ambiguous when two sheets are referenced at the same
// offset.
func (c *Coordinator) resolveSheet(current string, ref Reference, tokens []efp.Token) string {
	name := current
	if ref.Resolved {
		if ref.Sheet != "" {
			name = ref.Sheet
		}
	} else if qualifier := qualifierFor(ref, tokens); qualifier != "" {
		name = qualifier
	}
	if sheet, ok := c.workbook.Sheet(name); ok {
		return sheet.Name()
	}
	return name
}

func qualifierFor(ref Reference, tokens []efp.Token) string {
	if ref.Sheet != "" {
		return ref.Sheet
	}
	for _, token := range tokens {
		if token.TType != efp.TokenTypeOperand || token.TSubType != efp.TokenSubTypeRange {
			continue
		}
		op, err := parseOperand(token.TValue)
		if err != nil || op.kind != operandCells || op.sheet == "" {
			continue
		}
		if ref.Row >= op.fromRow && ref.Row <= op.toRow && ref.Col >= op.fromCol && ref.Col <= op.toCol {
			return op.sheet
		}
	}
	return ""
}
