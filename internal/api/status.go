package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Version 服务版本
var Version = "1.0.0"

// StatusResponse 服务状态
type StatusResponse struct {
	Version          string   `json:"version"`
	SourceSheet      string   `json:"sourceSheet"`
	ReferenceSheet   string   `json:"referenceSheet"`
	ResultSheet      string   `json:"resultSheet"`
	SplittingColumns []string `json:"splittingColumns"`
	ZeroHoursPolicy  string   `json:"zeroHoursPolicy"`
	HistoryEnabled   bool     `json:"historyEnabled"`
}

// GetStatus 获取服务状态与默认配置
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		Version:          Version,
		SourceSheet:      h.base.Input.Sheet.Source.Name,
		ReferenceSheet:   h.base.Input.Sheet.Reference.Name,
		ResultSheet:      h.base.Output.Sheet.Result.Name,
		SplittingColumns: h.base.Input.SplittingColumns,
		ZeroHoursPolicy:  h.base.Input.ZeroHoursPolicy,
		HistoryEnabled:   h.history != nil,
	})
}
