package excel

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"excelsplit/internal/model"
)

// WriteTable 将结果表写入工作簿：同名 sheet 先删除再重建，其余 sheet 保持不变
// 样式句柄来自同一工作簿，直接复用
func (w *Workbook) WriteTable(t *model.Table) error {
	if w == nil || w.file == nil {
		return errors.New("workbook is nil")
	}
	if t.Sheet == "" {
		return errors.New("result sheet name is empty")
	}

	if w.HasSheet(t.Sheet) {
		if err := w.file.DeleteSheet(t.Sheet); err != nil {
			return fmt.Errorf("failed to remove sheet %s: %w", t.Sheet, err)
		}
	}
	if _, err := w.file.NewSheet(t.Sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", t.Sheet, err)
	}

	defaultHeight, err := w.file.GetRowHeight(t.Sheet, 1)
	if err != nil {
		return err
	}

	if err := w.writeRow(t.Sheet, 1, t.Header, defaultHeight); err != nil {
		return err
	}
	for i, row := range t.Rows {
		if err := w.writeRow(t.Sheet, i+2, row, defaultHeight); err != nil {
			return err
		}
	}

	for i, cw := range t.ColWidths {
		if cw <= 0 {
			continue
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		current, err := w.file.GetColWidth(t.Sheet, name)
		if err != nil {
			return err
		}
		if current == cw {
			continue
		}
		if err := w.file.SetColWidth(t.Sheet, name, name, cw); err != nil {
			return fmt.Errorf("failed to set width of column %s: %w", name, err)
		}
	}
	return nil
}

func (w *Workbook) writeRow(sheet string, rowNum int, row model.Row, defaultHeight float64) error {
	for col, cell := range row.Cells {
		axis, err := excelize.CoordinatesToCellName(col+1, rowNum)
		if err != nil {
			return err
		}
		switch {
		case cell.Formula != "":
			if err := w.file.SetCellFormula(sheet, axis, cell.Formula); err != nil {
				return fmt.Errorf("failed to write formula %s!%s: %w", sheet, axis, err)
			}
		case !cell.Value.IsEmpty():
			if err := w.file.SetCellValue(sheet, axis, cell.Value.Interface()); err != nil {
				return fmt.Errorf("failed to write cell %s!%s: %w", sheet, axis, err)
			}
		}
		if cell.Style != 0 {
			if err := w.file.SetCellStyle(sheet, axis, axis, int(cell.Style)); err != nil {
				return fmt.Errorf("failed to copy style %s!%s: %w", sheet, axis, err)
			}
		}
	}
	if row.Height > 0 && row.Height != defaultHeight {
		if err := w.file.SetRowHeight(sheet, rowNum, row.Height); err != nil {
			return fmt.Errorf("failed to set height of row %d: %w", rowNum, err)
		}
	}
	return nil
}

// SaveAs 保存到目标路径
// 先写入同目录临时文件再重命名，失败时不留下不完整的输出文件
func (w *Workbook) SaveAs(path string) error {
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.NewString()))

	f, err := os.Create(tmp)
	if err != nil {
		return &model.IOError{Op: "write", Path: path, Err: err}
	}
	if _, err := w.file.WriteTo(f); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return &model.IOError{Op: "write", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return &model.IOError{Op: "write", Path: path, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return &model.IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}
