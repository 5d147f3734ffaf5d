package model

import (
	"math"
	"strconv"
	"strings"
)

// ValueKind 单元格值类型
type ValueKind uint8

const (
	KindEmpty ValueKind = iota
	KindNumber
	KindText
	KindBool
)

func (k ValueKind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	default:
		return "empty"
	}
}

// Value 单元格标量值
// 可比较，可直接作为 map key；比较区分类型（文本 "001" 与数值 1 不相等）
type Value struct {
	Kind   ValueKind
	Number float64
	Text   string
	Bool   bool
}

// EmptyValue 空值
func EmptyValue() Value {
	return Value{}
}

// NumberValue 数值
func NumberValue(f float64) Value {
	return Value{Kind: KindNumber, Number: f}
}

// TextValue 文本
func TextValue(s string) Value {
	return Value{Kind: KindText, Text: s}
}

// BoolValue 布尔值
func BoolValue(b bool) Value {
	return Value{Kind: KindBool, Bool: b}
}

// IsEmpty 是否为空
func (v Value) IsEmpty() bool {
	return v.Kind == KindEmpty
}

// Float 按数值读取；数值直接返回，文本尝试解析，其余视为非数值
func (v Value) Float() (float64, bool) {
	switch v.Kind {
	case KindNumber:
		return v.Number, true
	case KindText:
		return parseNumber(v.Text)
	default:
		return 0, false
	}
}

// String 文本形式（用于表头标签与错误信息）
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case KindText:
		return v.Text
	case KindBool:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	default:
		return ""
	}
}

// Interface 返回写入工作簿时使用的值
func (v Value) Interface() any {
	switch v.Kind {
	case KindNumber:
		return v.Number
	case KindText:
		return v.Text
	case KindBool:
		return v.Bool
	default:
		return nil
	}
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
