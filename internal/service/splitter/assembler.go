package splitter

import "excelsplit/internal/model"

// RowSplitter 将一行源数据拆为一个拆分组
type RowSplitter interface {
	Split(row model.Row) (Group, error)
}

// Stats 组装统计
type Stats struct {
	SourceRows      int
	ResultRows      int
	SplitRows       int
	PassThroughRows int
}

// Assemble 按源行顺序拼接所有拆分组，生成结果表
// 表头、列宽沿用源表；任一行出错立即返回，不产生部分结果
func Assemble(source *model.Table, resultSheet string, sp RowSplitter) (*model.Table, Stats, error) {
	result := &model.Table{
		Sheet:     resultSheet,
		Header:    source.Header.Clone(),
		Rows:      make([]model.Row, 0, len(source.Rows)),
		ColWidths: append([]float64(nil), source.ColWidths...),
	}
	stats := Stats{SourceRows: len(source.Rows)}

	for _, row := range source.Rows {
		group, err := sp.Split(row)
		if err != nil {
			return nil, Stats{}, err
		}
		if group.PassThrough {
			stats.PassThroughRows++
		} else {
			stats.SplitRows++
		}
		result.Rows = append(result.Rows, group.Rows...)
	}
	stats.ResultRows = len(result.Rows)
	return result, stats, nil
}
