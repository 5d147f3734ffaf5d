package model

// CellStyle 单元格样式句柄
// 对核心逻辑不透明，只随单元格携带并原样交给写入端
type CellStyle int

// Cell 单元格
type Cell struct {
	Value   Value
	Style   CellStyle
	Formula string // 非空表示公式单元格，Value 为缓存值
}

// Row 数据行
type Row struct {
	Number int     // 来源 sheet 中的行号（1-based）
	Height float64 // 行高，0 表示未知
	Cells  []Cell
}

// Cell 按列索引（0-based）取单元格，越界返回空单元格
func (r Row) Cell(idx int) Cell {
	if idx < 0 || idx >= len(r.Cells) {
		return Cell{}
	}
	return r.Cells[idx]
}

// Value 按列索引取值
func (r Row) Value(idx int) Value {
	return r.Cell(idx).Value
}

// Clone 复制行（单元格切片独立，样式句柄按值复制）
func (r Row) Clone() Row {
	cells := make([]Cell, len(r.Cells))
	copy(cells, r.Cells)
	return Row{Number: r.Number, Height: r.Height, Cells: cells}
}

// Set 写入单元格，必要时扩展列数
func (r *Row) Set(idx int, c Cell) {
	if idx < 0 {
		return
	}
	for len(r.Cells) <= idx {
		r.Cells = append(r.Cells, Cell{})
	}
	r.Cells[idx] = c
}

// Table 一张表：表头 + 数据行 + 尺寸信息
type Table struct {
	Sheet     string
	Header    Row
	Rows      []Row
	ColWidths []float64 // 按列索引，0 表示默认宽度
}

// Labels 表头标签
func (t *Table) Labels() []string {
	labels := make([]string, len(t.Header.Cells))
	for i, c := range t.Header.Cells {
		labels[i] = c.Value.String()
	}
	return labels
}

// Width 列数（表头与数据行中的最大列数）
func (t *Table) Width() int {
	w := len(t.Header.Cells)
	for _, r := range t.Rows {
		if len(r.Cells) > w {
			w = len(r.Cells)
		}
	}
	return w
}
