// Copyright 2016 - 2025 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package recalc

import "log/slog"

// DefaultFormulaCacheSize is the number of parsed formulas kept when
// Options.FormulaCacheSize is zero.
const DefaultFormulaCacheSize = 4096

// Options define the options for a Coordinator.
//
// Logger specifies the structured logger; slog.Default() is used when nil.
//
// Formula specifies the formula collaborator; ExcelFormula is used when nil.
//
// ManualCalc disables the volatile pass ApplyEdit runs after every edit. The
// host then calls RecalculateVolatile itself, for example before an export.
//
// CheckCycles makes the edge maintainer run DetectCycle for every new edge
// and report circular references as soon as they are created. Edges are
// added either way.
//
// FormulaCacheSize bounds the parse cache. Zero selects
// DefaultFormulaCacheSize, a negative value disables the cache.
//
// MaxRangeCells bounds range expansion of the default ExcelFormula.
//
// OnCycle is called with every *ErrCycleDetected the coordinator absorbs.
type Options struct {
	Logger           *slog.Logger
	Formula          Formula
	ManualCalc       bool
	CheckCycles      bool
	FormulaCacheSize int
	MaxRangeCells    int
	OnCycle          func(err *ErrCycleDetected)
}

// getOptions provides a function to parse the optional settings for a
// coordinator. The last Options wins.
func getOptions(opts ...Options) Options {
	var options Options
	for _, opt := range opts {
		options = opt
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.Formula == nil {
		options.Formula = ExcelFormula{MaxRangeCells: options.MaxRangeCells}
	}
	switch {
	case options.FormulaCacheSize == 0:
		options.FormulaCacheSize = DefaultFormulaCacheSize
	case options.FormulaCacheSize < 0:
		options.FormulaCacheSize = 0
	}
	return options
}
