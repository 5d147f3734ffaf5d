package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"excelsplit/internal/config"
	"excelsplit/internal/model"
	"excelsplit/internal/store"
)

// downloadTTL 拆分结果的下载有效期
const downloadTTL = 10 * time.Minute

// SplitRunner 执行一次拆分
type SplitRunner interface {
	Run(cfg config.AppConfig) (*model.RunReport, error)
}

// Handler API 处理器
type Handler struct {
	base      config.AppConfig
	runner    SplitRunner
	history   *store.Store
	downloads *downloadStore
}

// NewHandler 创建 API 处理器；base 为每次请求的基础配置，history 可为 nil
func NewHandler(base config.AppConfig, runner SplitRunner, history *store.Store) *Handler {
	return &Handler{
		base:      base,
		runner:    runner,
		history:   history,
		downloads: newDownloadStore(),
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 拆分
	router.POST("/split", h.Split)
	router.GET("/split/download/:token", h.Download)

	// 运行记录
	router.GET("/runs", h.ListRuns)
}
