package model

import "time"

// RunReport 一次拆分运行的报告
type RunReport struct {
	RunID          string `json:"runId"`
	InputPath      string `json:"inputPath"`
	OutputPath     string `json:"outputPath"`
	SourceSheet    string `json:"sourceSheet"`
	ReferenceSheet string `json:"referenceSheet"`
	ResultSheet    string `json:"resultSheet"`

	SourceRows      int `json:"sourceRows"`      // 源表数据行数
	ResultRows      int `json:"resultRows"`      // 结果表数据行数
	SplitRows       int `json:"splitRows"`       // 被拆分的源行数
	PassThroughRows int `json:"passThroughRows"` // 原样输出的源行数

	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
}
