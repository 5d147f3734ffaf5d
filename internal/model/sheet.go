package model

// SheetInfo 工作表信息（check 命令输出）
type SheetInfo struct {
	Name     string   `json:"name"`
	RowCount int      `json:"rowCount"`
	Headers  []string `json:"headers"`
}
