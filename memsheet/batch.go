package memsheet

import "errors"

// CellUpdate 表示一个单元格更新操作
type CellUpdate struct {
	Sheet string      // 工作表名称
	Cell  string      // 单元格坐标，如 "A1"
	Value interface{} // 单元格值，以 "=" 开头的字符串为公式
}

// BatchSetCellValue 批量设置单元格值，只触发一次重新计算
//
// 所有更新都在同一个批处理中执行：每个单元格的依赖关系立即更新，
// 受影响的公式累积起来，在批处理结束时按拓扑顺序统一重算一次。
// 适用于填充、粘贴等多单元格操作。
//
// 公式解析失败不会中断批处理，所有失败会合并后返回；
// 工作表或单元格名称无效时立即返回，已累积的更新仍会重算。
//
// 示例：
//
//	updates := []memsheet.CellUpdate{
//	    {Sheet: "Sheet1", Cell: "A1", Value: 100},
//	    {Sheet: "Sheet1", Cell: "A2", Value: 200},
//	    {Sheet: "Sheet1", Cell: "A3", Value: "=A1+A2"},
//	}
//	err := wb.BatchSetCellValue(updates)
func (wb *Workbook) BatchSetCellValue(updates []CellUpdate) error {
	wb.calc.StartBatch()
	defer wb.calc.EndBatch()

	var parseErrs []error
	for _, update := range updates {
		err := wb.SetCellValue(update.Sheet, update.Cell, update.Value)
		if err == nil {
			continue
		}
		var sheetErr ErrSheetNotExist
		var cellErr ErrCellName
		if errors.As(err, &sheetErr) || errors.As(err, &cellErr) {
			return err
		}
		parseErrs = append(parseErrs, err)
	}
	return errors.Join(parseErrs...)
}
