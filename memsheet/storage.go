// Copyright 2016 - 2025 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package memsheet

import (
	"sort"

	"github.com/OmniMCP-AI/recalc"
)

// cellStore 按行组织的单元格存储
// map[row]map[col]*Cell，坐标从 0 开始
type cellStore struct {
	rows map[int]map[int]*Cell
}

func newCellStore() *cellStore {
	return &cellStore{rows: make(map[int]map[int]*Cell)}
}

// get 获取单元格，不存在时返回 nil, false
func (cs *cellStore) get(row, col int) (*Cell, bool) {
	if cols, ok := cs.rows[row]; ok {
		cell, exists := cols[col]
		return cell, exists
	}
	return nil, false
}

// set 保存单元格
func (cs *cellStore) set(row, col int, cell *Cell) {
	if _, ok := cs.rows[row]; !ok {
		cs.rows[row] = make(map[int]*Cell)
	}
	cs.rows[row][col] = cell
}

// delete 删除单元格，行为空时一并删除
func (cs *cellStore) delete(row, col int) {
	cols, ok := cs.rows[row]
	if !ok {
		return
	}
	delete(cols, col)
	if len(cols) == 0 {
		delete(cs.rows, row)
	}
}

// refs returns the coordinates of the stored cells accepted by keep, in row
// then column order.
func (cs *cellStore) refs(keep func(*Cell) bool) []recalc.CellRef {
	var refs []recalc.CellRef
	for row, cols := range cs.rows {
		for col, cell := range cols {
			if keep == nil || keep(cell) {
				refs = append(refs, recalc.CellRef{Row: row, Col: col})
			}
		}
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Row != refs[j].Row {
			return refs[i].Row < refs[j].Row
		}
		return refs[i].Col < refs[j].Col
	})
	return refs
}

// len 返回单元格数量
func (cs *cellStore) len() int {
	total := 0
	for _, cols := range cs.rows {
		total += len(cols)
	}
	return total
}
