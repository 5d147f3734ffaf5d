package excel

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"excelsplit/internal/model"
)

// Workbook Excel 工作簿：读取源表/参考表，并作为结果输出的底稿
type Workbook struct {
	file *excelize.File
	path string
}

// Open 打开工作簿文件
func Open(path string) (*Workbook, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &model.IOError{Op: "open", Path: path, Err: err}
	}
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &model.IOError{Op: "open", Path: path, Err: fmt.Errorf("failed to open excel: %w", err)}
	}
	return &Workbook{file: file, path: path}, nil
}

// OpenReader 从 reader 加载工作簿
func OpenReader(r io.Reader) (*Workbook, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &model.IOError{Op: "read", Err: fmt.Errorf("failed to open excel: %w", err)}
	}
	return &Workbook{file: file}, nil
}

// Close 关闭工作簿
func (w *Workbook) Close() error {
	if w == nil || w.file == nil {
		return nil
	}
	return w.file.Close()
}

// File 返回底层 excelize 文件（只读使用）
func (w *Workbook) File() *excelize.File {
	return w.file
}

// SheetList 工作表名称列表
func (w *Workbook) SheetList() []string {
	return w.file.GetSheetList()
}

// HasSheet 工作表是否存在；与 Excel 一致，名称不区分大小写
func (w *Workbook) HasSheet(name string) bool {
	for _, s := range w.file.GetSheetList() {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}

// GetSheets 获取所有工作表的行数与表头
func (w *Workbook) GetSheets() ([]model.SheetInfo, error) {
	if w == nil || w.file == nil {
		return nil, errors.New("no file loaded")
	}

	sheets := w.file.GetSheetList()
	result := make([]model.SheetInfo, 0, len(sheets))
	for _, name := range sheets {
		rows, err := w.file.GetRows(name)
		if err != nil {
			return nil, &model.IOError{Op: "read", Path: w.path, Err: fmt.Errorf("failed to read sheet %s: %w", name, err)}
		}
		info := model.SheetInfo{Name: name, RowCount: len(rows)}
		if len(rows) > 0 {
			info.Headers = rows[0]
		}
		result = append(result, info)
	}
	return result, nil
}

// ReadTable 读取整张表：第一行为表头，其余为数据行
// 单元格携带类型化的值、样式句柄与公式；同时读取列宽与行高
func (w *Workbook) ReadTable(sheet string) (*model.Table, error) {
	if !w.HasSheet(sheet) {
		return nil, &model.ConfigurationError{Sheet: sheet, Message: "sheet does not exist"}
	}

	rows, err := w.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &model.IOError{Op: "read", Path: w.path, Err: fmt.Errorf("failed to read sheet %s: %w", sheet, err)}
	}

	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}

	table := &model.Table{Sheet: sheet}
	for rowIdx, raw := range rows {
		row, err := w.readRow(sheet, rowIdx+1, raw, width)
		if err != nil {
			return nil, err
		}
		if rowIdx == 0 {
			table.Header = row
			continue
		}
		table.Rows = append(table.Rows, row)
	}

	table.ColWidths = make([]float64, width)
	for col := 1; col <= width; col++ {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return nil, err
		}
		cw, err := w.file.GetColWidth(sheet, name)
		if err != nil {
			return nil, &model.IOError{Op: "read", Path: w.path, Err: fmt.Errorf("failed to read width of column %s: %w", name, err)}
		}
		table.ColWidths[col-1] = cw
	}

	return table, nil
}

// readRow 读取一行；width 之内缺失的单元格仍读取样式
func (w *Workbook) readRow(sheet string, rowNum int, raw []string, width int) (model.Row, error) {
	height, err := w.file.GetRowHeight(sheet, rowNum)
	if err != nil {
		return model.Row{}, &model.IOError{Op: "read", Path: w.path, Err: fmt.Errorf("failed to read height of row %d: %w", rowNum, err)}
	}

	row := model.Row{Number: rowNum, Height: height, Cells: make([]model.Cell, width)}
	for col := 0; col < width; col++ {
		axis, err := excelize.CoordinatesToCellName(col+1, rowNum)
		if err != nil {
			return model.Row{}, err
		}
		value := ""
		if col < len(raw) {
			value = raw[col]
		}
		cell, err := w.readCell(sheet, axis, value)
		if err != nil {
			return model.Row{}, &model.IOError{Op: "read", Path: w.path, Err: fmt.Errorf("failed to read cell %s!%s: %w", sheet, axis, err)}
		}
		row.Cells[col] = cell
	}
	return row, nil
}

func (w *Workbook) readCell(sheet, axis, raw string) (model.Cell, error) {
	styleID, err := w.file.GetCellStyle(sheet, axis)
	if err != nil {
		return model.Cell{}, err
	}
	formula, err := w.file.GetCellFormula(sheet, axis)
	if err != nil {
		return model.Cell{}, err
	}
	typ, err := w.file.GetCellType(sheet, axis)
	if err != nil {
		return model.Cell{}, err
	}
	return model.Cell{
		Value:   decodeValue(typ, raw),
		Style:   model.CellStyle(styleID),
		Formula: formula,
	}, nil
}

// decodeValue 按单元格类型还原原始值
// 未标注类型的单元格在 xlsx 中即为数值
func decodeValue(typ excelize.CellType, raw string) model.Value {
	if raw == "" {
		return model.EmptyValue()
	}
	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula,
		excelize.CellTypeDate, excelize.CellTypeError:
		return model.TextValue(raw)
	case excelize.CellTypeBool:
		return model.BoolValue(raw == "1" || strings.EqualFold(raw, "TRUE"))
	default:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return model.NumberValue(f)
		}
		return model.TextValue(raw)
	}
}
