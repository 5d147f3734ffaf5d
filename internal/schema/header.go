package schema

import (
	"regexp"
	"strings"
)

var spaceRun = regexp.MustCompile(`\s+`)

// NormalizeLabel 规范化表头标签：去除首尾空白与换行，压缩连续空白
func NormalizeLabel(label string) string {
	label = strings.ReplaceAll(label, "\r", "")
	label = strings.ReplaceAll(label, "\n", "")
	label = strings.ReplaceAll(label, "\t", " ")
	return strings.TrimSpace(spaceRun.ReplaceAllString(label, " "))
}

// HeaderIndex 表头标签到列索引的映射
type HeaderIndex struct {
	exact      map[string][]int
	normalized map[string][]int
}

// NewHeaderIndex 从表头标签构建索引
func NewHeaderIndex(labels []string) *HeaderIndex {
	h := &HeaderIndex{
		exact:      make(map[string][]int, len(labels)),
		normalized: make(map[string][]int, len(labels)),
	}
	for i, label := range labels {
		if label == "" {
			continue
		}
		h.exact[label] = append(h.exact[label], i)
		n := NormalizeLabel(label)
		h.normalized[n] = append(h.normalized[n], i)
	}
	return h
}

// Lookup 查找标签对应的列索引
// 先精确匹配，未命中时按规范化标签匹配；count 为命中列数（>1 表示标签重复）
func (h *HeaderIndex) Lookup(label string) (idx, count int) {
	if hits := h.exact[label]; len(hits) > 0 {
		return hits[0], len(hits)
	}
	if hits := h.normalized[NormalizeLabel(label)]; len(hits) > 0 {
		return hits[0], len(hits)
	}
	return -1, 0
}
