package model

import (
	"fmt"
	"strings"
)

// ConfigurationError 配置错误：配置文件缺失/格式错误、sheet 或列不存在
type ConfigurationError struct {
	Field   string // 配置项路径，如 input.sheet.source.name
	Sheet   string
	Column  string
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	return joinError("configuration error", []string{
		quoted("field", e.Field),
		quoted("sheet", e.Sheet),
		quoted("column", e.Column),
	}, e.Message, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// DataError 数据错误：必需单元格无法按预期解析
type DataError struct {
	Sheet   string
	Row     int
	Column  string
	Message string
	Err     error
}

func (e *DataError) Error() string {
	row := ""
	if e.Row > 0 {
		row = fmt.Sprintf("row %d", e.Row)
	}
	return joinError("data error", []string{
		quoted("sheet", e.Sheet),
		row,
		quoted("column", e.Column),
	}, e.Message, e.Err)
}

func (e *DataError) Unwrap() error { return e.Err }

// IOError 文件读写错误
type IOError struct {
	Op   string // open/read/write
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return joinError("io error", []string{e.Op, quoted("file", e.Path)}, "", e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func quoted(label, v string) string {
	if v == "" {
		return ""
	}
	return fmt.Sprintf("%s %q", label, v)
}

func joinError(kind string, parts []string, msg string, err error) string {
	var b strings.Builder
	b.WriteString(kind)
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(": ")
		b.WriteString(p)
	}
	if msg != "" {
		b.WriteString(": ")
		b.WriteString(msg)
	}
	if err != nil {
		b.WriteString(": ")
		b.WriteString(err.Error())
	}
	return b.String()
}
