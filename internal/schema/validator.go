package schema

import (
	"fmt"

	"excelsplit/internal/model"
)

// Column 已解析的列
type Column struct {
	Label string
	Index int // 0-based，-1 表示该表中不存在
}

// Present 列是否存在
func (c Column) Present() bool {
	return c.Index >= 0
}

// Columns 一张表中四个逻辑列的解析结果
type Columns struct {
	EmployeeID      Column
	ProjectID       Column
	ProjectCategory Column
	ProjectHours    Column
}

// Layout 校验通过后的列布局，注入拆分器使用
type Layout struct {
	SourceSheet    string
	ReferenceSheet string // 为空表示未配置参考表（仅原样输出）
	Source         Columns
	Reference      Columns
	Splitting      []Column // 按配置顺序
}

// HasReference 是否配置了参考表
func (l *Layout) HasReference() bool {
	return l.ReferenceSheet != ""
}

// Validator 表结构校验器
type Validator struct {
	sourceSheet    string
	referenceSheet string
	source         model.ColumnMapping
	reference      model.ColumnMapping
	splitting      []string
}

// NewValidator 创建校验器；referenceSheet 为空时只校验源表
func NewValidator(sourceSheet, referenceSheet string, source, reference model.ColumnMapping, splitting []string) *Validator {
	return &Validator{
		sourceSheet:    sourceSheet,
		referenceSheet: referenceSheet,
		source:         source,
		reference:      reference,
		splitting:      append([]string(nil), splitting...),
	}
}

// ValidateSheets 校验配置的 sheet 在工作簿中存在
func (v *Validator) ValidateSheets(available []string) error {
	exists := make(map[string]bool, len(available))
	for _, name := range available {
		exists[name] = true
	}
	if !exists[v.sourceSheet] {
		return &model.ConfigurationError{
			Field:   "input.sheet.source.name",
			Sheet:   v.sourceSheet,
			Message: "source sheet does not exist",
		}
	}
	if v.referenceSheet != "" && !exists[v.referenceSheet] {
		return &model.ConfigurationError{
			Field:   "input.sheet.reference.name",
			Sheet:   v.referenceSheet,
			Message: "reference sheet does not exist",
		}
	}
	return nil
}

// Resolve 根据两张表的表头解析列布局
// referenceLabels 在未配置参考表时忽略
func (v *Validator) Resolve(sourceLabels, referenceLabels []string) (*Layout, error) {
	layout := &Layout{
		SourceSheet:    v.sourceSheet,
		ReferenceSheet: v.referenceSheet,
	}

	srcIdx := NewHeaderIndex(sourceLabels)

	employee, err := v.require(srcIdx, v.sourceSheet, "input.sheet.source.columns.employee_id", v.source.EmployeeID)
	if err != nil {
		return nil, err
	}
	layout.Source.EmployeeID = employee

	// 源表中的项目列可选：缺失时该列不被覆盖
	if layout.Source.ProjectID, err = v.optional(srcIdx, v.sourceSheet, "input.sheet.source.columns.project_id", v.source.ProjectID); err != nil {
		return nil, err
	}
	if layout.Source.ProjectCategory, err = v.optional(srcIdx, v.sourceSheet, "input.sheet.source.columns.project_category", v.source.ProjectCategory); err != nil {
		return nil, err
	}
	if layout.Source.ProjectHours, err = v.optional(srcIdx, v.sourceSheet, "input.sheet.source.columns.project_hours", v.source.ProjectHours); err != nil {
		return nil, err
	}

	if layout.Splitting, err = v.resolveSplitting(srcIdx, layout.Source); err != nil {
		return nil, err
	}

	if !layout.HasReference() {
		layout.Reference = Columns{
			EmployeeID:      Column{Index: -1},
			ProjectID:       Column{Index: -1},
			ProjectCategory: Column{Index: -1},
			ProjectHours:    Column{Index: -1},
		}
		return layout, nil
	}

	refIdx := NewHeaderIndex(referenceLabels)
	targets := []*Column{
		&layout.Reference.EmployeeID,
		&layout.Reference.ProjectID,
		&layout.Reference.ProjectCategory,
		&layout.Reference.ProjectHours,
	}
	for i, rl := range v.reference.Roles() {
		col, err := v.require(refIdx, v.referenceSheet, "input.sheet.reference.columns."+string(rl.Role), rl.Label)
		if err != nil {
			return nil, err
		}
		*targets[i] = col
	}

	return layout, nil
}

func (v *Validator) resolveSplitting(srcIdx *HeaderIndex, src Columns) ([]Column, error) {
	identity := map[int]model.Role{src.EmployeeID.Index: model.RoleEmployeeID}
	for role, c := range map[model.Role]Column{
		model.RoleProjectID:       src.ProjectID,
		model.RoleProjectCategory: src.ProjectCategory,
		model.RoleProjectHours:    src.ProjectHours,
	} {
		if c.Present() {
			identity[c.Index] = role
		}
	}

	seen := make(map[int]bool, len(v.splitting))
	cols := make([]Column, 0, len(v.splitting))
	for _, label := range v.splitting {
		col, err := v.require(srcIdx, v.sourceSheet, "input.splitting_columns", label)
		if err != nil {
			return nil, err
		}
		if role, ok := identity[col.Index]; ok {
			return nil, &model.ConfigurationError{
				Field:   "input.splitting_columns",
				Sheet:   v.sourceSheet,
				Column:  label,
				Message: fmt.Sprintf("splitting column is mapped as %s", role),
			}
		}
		if seen[col.Index] {
			return nil, &model.ConfigurationError{
				Field:   "input.splitting_columns",
				Sheet:   v.sourceSheet,
				Column:  label,
				Message: "splitting column listed twice",
			}
		}
		seen[col.Index] = true
		cols = append(cols, col)
	}
	return cols, nil
}

func (v *Validator) require(idx *HeaderIndex, sheet, field, label string) (Column, error) {
	if label == "" {
		return Column{}, &model.ConfigurationError{
			Field:   field,
			Sheet:   sheet,
			Message: "column label is not configured",
		}
	}
	i, count := idx.Lookup(label)
	switch {
	case count == 0:
		return Column{}, &model.ConfigurationError{
			Field:   field,
			Sheet:   sheet,
			Column:  label,
			Message: "required column not found in header",
		}
	case count > 1:
		return Column{}, &model.ConfigurationError{
			Field:   field,
			Sheet:   sheet,
			Column:  label,
			Message: fmt.Sprintf("column label appears %d times in header", count),
		}
	}
	return Column{Label: label, Index: i}, nil
}

func (v *Validator) optional(idx *HeaderIndex, sheet, field, label string) (Column, error) {
	if label == "" {
		return Column{Index: -1}, nil
	}
	i, count := idx.Lookup(label)
	if count == 0 {
		return Column{Label: label, Index: -1}, nil
	}
	if count > 1 {
		return Column{}, &model.ConfigurationError{
			Field:   field,
			Sheet:   sheet,
			Column:  label,
			Message: fmt.Sprintf("column label appears %d times in header", count),
		}
	}
	return Column{Label: label, Index: i}, nil
}
