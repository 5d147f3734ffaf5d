package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"excelsplit/internal/config"
	"excelsplit/internal/model"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SplitResponse 拆分结果
type SplitResponse struct {
	Report        *model.RunReport `json:"report"`
	DownloadToken string           `json:"downloadToken"`
	DownloadURL   string           `json:"downloadUrl"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"` // configuration/data/io/request
}

// Split 上传工作簿并按服务配置拆分
// POST /api/split  multipart: file, sourceSheet, referenceSheet, resultSheet, zeroHoursPolicy
func (h *Handler) Split(c *gin.Context) {
	uploaded, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "未找到上传文件", Kind: "request"})
		return
	}

	workDir, err := os.MkdirTemp("", "excelsplit_")
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "创建临时目录失败", Kind: "io"})
		return
	}

	inputPath := filepath.Join(workDir, "input.xlsx")
	if err := c.SaveUploadedFile(uploaded, inputPath); err != nil {
		_ = os.RemoveAll(workDir)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "保存文件失败", Kind: "io"})
		return
	}

	cfg := h.base.WithOverrides(config.Overrides{
		InputPath:       inputPath,
		OutputPath:      filepath.Join(workDir, "result.xlsx"),
		SourceSheet:     c.PostForm("sourceSheet"),
		ReferenceSheet:  c.PostForm("referenceSheet"),
		ResultSheet:     c.PostForm("resultSheet"),
		ZeroHoursPolicy: c.PostForm("zeroHoursPolicy"),
	})

	report, err := h.runner.Run(cfg)
	if err != nil {
		_ = os.RemoveAll(workDir)
		status, kind := classifyError(err)
		c.JSON(status, ErrorResponse{Error: err.Error(), Kind: kind})
		return
	}

	token := h.downloads.put(download{
		filePath: cfg.Output.Path,
		workDir:  workDir,
		filename: resultFilename(uploaded.Filename),
	}, downloadTTL)

	// 临时目录路径不返回给客户端
	public := *report
	public.InputPath, public.OutputPath = "", ""

	c.JSON(http.StatusOK, SplitResponse{
		Report:        &public,
		DownloadToken: token,
		DownloadURL:   "/api/split/download/" + token,
	})
}

// Download 下载拆分结果（一次性）
// GET /api/split/download/:token
func (h *Handler) Download(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "缺少 token", Kind: "request"})
		return
	}

	d, ok := h.downloads.take(token)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "下载链接已失效", Kind: "request"})
		return
	}
	defer os.RemoveAll(d.workDir)

	if _, err := os.Stat(d.filePath); err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "结果文件不存在", Kind: "io"})
		return
	}

	c.Header("Content-Disposition", buildContentDisposition(d.filename))
	c.Header("Content-Type", xlsxContentType)
	c.File(d.filePath)
}

// classifyError 将运行错误映射为 HTTP 状态码与错误类别
func classifyError(err error) (int, string) {
	var (
		cfgErr  *model.ConfigurationError
		dataErr *model.DataError
		ioErr   *model.IOError
	)
	switch {
	case errors.As(err, &cfgErr):
		return http.StatusBadRequest, "configuration"
	case errors.As(err, &dataErr):
		return http.StatusBadRequest, "data"
	case errors.As(err, &ioErr):
		// 上传内容不是合法的 xlsx 也会表现为读取失败
		if ioErr.Op == "open" || ioErr.Op == "read" {
			return http.StatusBadRequest, "io"
		}
		return http.StatusInternalServerError, "io"
	}
	return http.StatusInternalServerError, "internal"
}

// resultFilename 由上传文件名生成结果文件名：工资.xlsx → 工资_拆分.xlsx
func resultFilename(uploaded string) string {
	base := filepath.Base(uploaded)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		stem = "result"
	}
	return stem + "_拆分.xlsx"
}

// buildContentDisposition 同时提供 ASCII 回退文件名与 RFC 5987 编码的原始文件名
func buildContentDisposition(filename string) string {
	fallback := make([]rune, 0, len(filename))
	for _, r := range filename {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			r = '_'
		}
		fallback = append(fallback, r)
	}
	return fmt.Sprintf("attachment; filename=\"%s\"; filename*=UTF-8''%s", string(fallback), url.PathEscape(filename))
}
