package splitter

import (
	"fmt"

	"excelsplit/internal/model"
	"excelsplit/internal/schema"
)

// Splitter 行拆分器
type Splitter struct {
	layout *schema.Layout
	groups Groups
	policy model.ZeroHoursPolicy
}

// New 创建拆分器；reference 为 nil 时所有源行原样输出
// policy 为 reject 时预先校验参考表中不存在工时为 0 的行
func New(layout *schema.Layout, reference *model.Table, policy model.ZeroHoursPolicy) (*Splitter, error) {
	s := &Splitter{
		layout: layout,
		groups: Groups{},
		policy: policy,
	}
	if reference == nil || !layout.HasReference() {
		return s, nil
	}

	if policy == model.ZeroHoursReject {
		if err := s.rejectZeroHours(reference.Rows); err != nil {
			return nil, err
		}
	}

	s.groups = GroupByKey(reference.Rows, layout.Reference.EmployeeID.Index)
	return s, nil
}

// Groups 返回参考分组（只读）
func (s *Splitter) Groups() Groups {
	return s.groups
}

// Group 一行源数据产生的拆分组
type Group struct {
	Rows        []model.Row
	PassThrough bool // 未拆分，Rows 仅包含源行本身
}

func passThrough(row model.Row) Group {
	return Group{Rows: []model.Row{row}, PassThrough: true}
}

// Split 拆分一行源数据
// 未匹配到参考行或参考组总工时为 0 时原样输出源行
func (s *Splitter) Split(row model.Row) (Group, error) {
	key := row.Value(s.layout.Source.EmployeeID.Index)
	if key.IsEmpty() {
		return passThrough(row), nil
	}
	group := s.groups[key]
	if len(group) == 0 {
		return passThrough(row), nil
	}

	hours := make([]float64, len(group))
	var total float64
	for i, ref := range group {
		h, err := s.hoursOf(ref)
		if err != nil {
			return Group{}, err
		}
		hours[i] = h
		total += h
	}
	if total == 0 {
		return passThrough(row), nil
	}

	out := make([]model.Row, 0, len(group))
	for i, ref := range group {
		ratio := hours[i] / total
		next := row.Clone()

		for _, col := range s.layout.Splitting {
			c := next.Cell(col.Index)
			if c.Formula != "" {
				continue
			}
			if v, ok := c.Value.Float(); ok {
				c.Value = model.NumberValue(v * ratio)
				next.Set(col.Index, c)
			}
		}

		src, refCols := s.layout.Source, s.layout.Reference
		overwrite(&next, src.ProjectID, ref.Value(refCols.ProjectID.Index))
		overwrite(&next, src.ProjectCategory, ref.Value(refCols.ProjectCategory.Index))
		overwrite(&next, src.ProjectHours, ref.Value(refCols.ProjectHours.Index))

		out = append(out, next)
	}
	return Group{Rows: out}, nil
}

// overwrite 用参考行的值覆盖身份列，保留源单元格样式
func overwrite(row *model.Row, col schema.Column, v model.Value) {
	if !col.Present() {
		return
	}
	c := row.Cell(col.Index)
	c.Value = v
	c.Formula = ""
	row.Set(col.Index, c)
}

// hoursOf 读取参考行工时；空单元格按 0 计
func (s *Splitter) hoursOf(ref model.Row) (float64, error) {
	col := s.layout.Reference.ProjectHours
	v := ref.Value(col.Index)
	if v.IsEmpty() {
		return 0, nil
	}
	h, ok := v.Float()
	if !ok {
		return 0, &model.DataError{
			Sheet:   s.layout.ReferenceSheet,
			Row:     ref.Number,
			Column:  col.Label,
			Message: fmt.Sprintf("project hours %q is not numeric", v.String()),
		}
	}
	return h, nil
}

// rejectZeroHours 工时为 0 的参考行使本次运行失败；工时为空的行不视为 0
func (s *Splitter) rejectZeroHours(rows []model.Row) error {
	for _, r := range rows {
		if r.Value(s.layout.Reference.EmployeeID.Index).IsEmpty() {
			continue
		}
		if r.Value(s.layout.Reference.ProjectHours.Index).IsEmpty() {
			continue
		}
		h, err := s.hoursOf(r)
		if err != nil {
			return err
		}
		if h == 0 {
			return &model.DataError{
				Sheet:   s.layout.ReferenceSheet,
				Row:     r.Number,
				Column:  s.layout.Reference.ProjectHours.Label,
				Message: "project hours is zero",
			}
		}
	}
	return nil
}
