package splitter

import "excelsplit/internal/model"

// Groups 按工号分组的参考行，组内保持参考表原始顺序
type Groups map[model.Value][]model.Row

// GroupByKey 按 keyCol 列的原始值分组；空值行不参与分组
// 键比较区分类型：文本 "001" 与数值 1 属于不同组
func GroupByKey(rows []model.Row, keyCol int) Groups {
	groups := make(Groups)
	for _, r := range rows {
		key := r.Value(keyCol)
		if key.IsEmpty() {
			continue
		}
		groups[key] = append(groups[key], r)
	}
	return groups
}
