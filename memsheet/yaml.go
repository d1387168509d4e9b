// Copyright 2016 - 2025 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package memsheet

import (
	"fmt"
	"io"
	"sort"

	"github.com/OmniMCP-AI/recalc"
	"gopkg.in/yaml.v3"
)

// workbookDoc is the YAML layout read by LoadYAML:
//
//	sheets:
//	  - name: Sheet1
//	    cells:
//	      A1: "1"
//	      B1: "=A1+1"
type workbookDoc struct {
	Sheets []struct {
		Name  string            `yaml:"name"`
		Cells map[string]string `yaml:"cells"`
	} `yaml:"sheets"`
}

// LoadYAML builds a workbook from a YAML document and rebuilds its dependency
// graph once all cells are stored.
func LoadYAML(r io.Reader, opts ...recalc.Options) (*Workbook, error) {
	var doc workbookDoc
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode workbook: %w", err)
	}
	wb := NewWorkbook(opts...)
	for _, sd := range doc.Sheets {
		ws, err := wb.NewSheet(sd.Name)
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(sd.Cells))
		for name := range sd.Cells {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			col, row, ok := recalc.CellNameToCoordinates(name)
			if !ok {
				return nil, ErrCellName{Cell: name}
			}
			ws.setRaw(row-1, col-1, sd.Cells[name])
		}
	}
	wb.Reload()
	return wb, nil
}
