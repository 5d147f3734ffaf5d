package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"excelsplit/internal/model"
)

// DefaultConfigPath 默认配置文件
const DefaultConfigPath = "config.yaml"

// AppConfig 应用配置
type AppConfig struct {
	Input   InputConfig   `yaml:"input" toml:"input"`
	Output  OutputConfig  `yaml:"output" toml:"output"`
	History HistoryConfig `yaml:"history" toml:"history"`
	Server  ServerConfig  `yaml:"server" toml:"server"`
}

// InputConfig 输入配置
type InputConfig struct {
	Path             string      `yaml:"path" toml:"path"`
	Sheet            InputSheets `yaml:"sheet" toml:"sheet"`
	SplittingColumns []string    `yaml:"splitting_columns" toml:"splitting_columns"`
	ZeroHoursPolicy  string      `yaml:"zero_hours_policy" toml:"zero_hours_policy"`
}

// InputSheets 源表与参考表
type InputSheets struct {
	Source    SheetConfig `yaml:"source" toml:"source"`
	Reference SheetConfig `yaml:"reference" toml:"reference"`
}

// SheetConfig 单张表配置
type SheetConfig struct {
	Name    string        `yaml:"name" toml:"name"`
	Columns ColumnsConfig `yaml:"columns" toml:"columns"`
}

// ColumnsConfig 逻辑列到表头标签
type ColumnsConfig struct {
	EmployeeID      string `yaml:"employee_id" toml:"employee_id"`
	ProjectID       string `yaml:"project_id" toml:"project_id"`
	ProjectCategory string `yaml:"project_category" toml:"project_category"`
	ProjectHours    string `yaml:"project_hours" toml:"project_hours"`
}

// Mapping 转为领域列映射
func (c ColumnsConfig) Mapping() model.ColumnMapping {
	return model.ColumnMapping{
		EmployeeID:      c.EmployeeID,
		ProjectID:       c.ProjectID,
		ProjectCategory: c.ProjectCategory,
		ProjectHours:    c.ProjectHours,
	}
}

// OutputConfig 输出配置
type OutputConfig struct {
	Path  string       `yaml:"path" toml:"path"`
	Sheet OutputSheets `yaml:"sheet" toml:"sheet"`
}

// OutputSheets 结果表
type OutputSheets struct {
	Result NamedSheet `yaml:"result" toml:"result"`
}

// NamedSheet 只有名称的 sheet 配置
type NamedSheet struct {
	Name string `yaml:"name" toml:"name"`
}

// HistoryConfig 运行记录（SQLite），Path 为空时关闭
type HistoryConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// ServerConfig serve 命令配置
type ServerConfig struct {
	Port    int  `yaml:"port" toml:"port"`
	DevMode bool `yaml:"dev_mode" toml:"dev_mode"`
}

// Overrides 命令行/环境变量覆盖项，空值表示不覆盖
type Overrides struct {
	InputPath       string `env:"EXCELSPLIT_INPUT_PATH"`
	OutputPath      string `env:"EXCELSPLIT_OUTPUT_PATH"`
	SourceSheet     string `env:"EXCELSPLIT_SOURCE_SHEET"`
	ReferenceSheet  string `env:"EXCELSPLIT_REFERENCE_SHEET"`
	ResultSheet     string `env:"EXCELSPLIT_RESULT_SHEET"`
	ZeroHoursPolicy string `env:"EXCELSPLIT_ZERO_HOURS_POLICY"`
	HistoryPath     string `env:"EXCELSPLIT_HISTORY_PATH"`
}

// DefaultConfig 默认配置
func DefaultConfig() AppConfig {
	return AppConfig{
		Input: InputConfig{
			ZeroHoursPolicy: string(model.ZeroHoursPassThrough),
		},
		Server: ServerConfig{
			Port: 20261,
		},
	}
}

// Load 读取配置文件并应用环境变量覆盖
// 扩展名为 .toml 时按 TOML 解析，其余按 YAML 解析
func Load(path string) (AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		msg := "failed to read config file"
		if errors.Is(err, os.ErrNotExist) {
			msg = "config file not found"
		}
		return AppConfig{}, &model.ConfigurationError{Field: path, Message: msg, Err: err}
	}

	cfg, err := Parse(data, strings.EqualFold(filepath.Ext(path), ".toml"))
	if err != nil {
		return AppConfig{}, err
	}

	envOverrides, err := LoadEnvOverrides()
	if err != nil {
		return AppConfig{}, err
	}
	return cfg.WithOverrides(envOverrides), nil
}

// Parse 解析配置内容；未知字段视为配置错误
func Parse(data []byte, isTOML bool) (AppConfig, error) {
	cfg := DefaultConfig()
	if isTOML {
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return AppConfig{}, &model.ConfigurationError{Message: "malformed TOML config", Err: err}
		}
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return AppConfig{}, &model.ConfigurationError{Message: "malformed YAML config", Err: err}
		}
	}
	applyDefaults(&cfg)
	return cfg, nil
}

// LoadEnvOverrides 读取 EXCELSPLIT_* 环境变量
func LoadEnvOverrides() (Overrides, error) {
	var o Overrides
	if err := env.Parse(&o); err != nil {
		return Overrides{}, &model.ConfigurationError{Message: "invalid environment override", Err: fmt.Errorf("parse env: %w", err)}
	}
	return o, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Input.ZeroHoursPolicy == "" {
		cfg.Input.ZeroHoursPolicy = string(model.ZeroHoursPassThrough)
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 20261
	}
}

// WithOverrides 返回应用覆盖项后的配置副本
func (c AppConfig) WithOverrides(o Overrides) AppConfig {
	out := c
	out.Input.SplittingColumns = append([]string(nil), c.Input.SplittingColumns...)
	if o.InputPath != "" {
		out.Input.Path = o.InputPath
	}
	if o.OutputPath != "" {
		out.Output.Path = o.OutputPath
	}
	if o.SourceSheet != "" {
		out.Input.Sheet.Source.Name = o.SourceSheet
	}
	if o.ReferenceSheet != "" {
		out.Input.Sheet.Reference.Name = o.ReferenceSheet
	}
	if o.ResultSheet != "" {
		out.Output.Sheet.Result.Name = o.ResultSheet
	}
	if o.ZeroHoursPolicy != "" {
		out.Input.ZeroHoursPolicy = o.ZeroHoursPolicy
	}
	if o.HistoryPath != "" {
		out.History.Path = o.HistoryPath
	}
	return out
}

// Policy 解析后的零工时策略
func (c AppConfig) Policy() (model.ZeroHoursPolicy, error) {
	p, err := model.ParseZeroHoursPolicy(c.Input.ZeroHoursPolicy)
	if err != nil {
		return "", &model.ConfigurationError{Field: "input.zero_hours_policy", Message: err.Error()}
	}
	return p, nil
}

// PassThroughOnly 未配置参考表：所有源行原样输出
func (c AppConfig) PassThroughOnly() bool {
	return c.Input.Sheet.Reference.Name == ""
}

// Validate 校验必填项，不访问输入文件
func (c AppConfig) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"input.path", c.Input.Path},
		{"input.sheet.source.name", c.Input.Sheet.Source.Name},
		{"input.sheet.source.columns.employee_id", c.Input.Sheet.Source.Columns.EmployeeID},
		{"output.path", c.Output.Path},
		{"output.sheet.result.name", c.Output.Sheet.Result.Name},
	}
	if !c.PassThroughOnly() {
		ref := c.Input.Sheet.Reference.Columns
		required = append(required, []struct {
			field string
			value string
		}{
			{"input.sheet.reference.columns.employee_id", ref.EmployeeID},
			{"input.sheet.reference.columns.project_id", ref.ProjectID},
			{"input.sheet.reference.columns.project_category", ref.ProjectCategory},
			{"input.sheet.reference.columns.project_hours", ref.ProjectHours},
		}...)
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &model.ConfigurationError{Field: r.field, Message: "required field is missing"}
		}
	}

	if !c.PassThroughOnly() && len(c.Input.SplittingColumns) == 0 {
		return &model.ConfigurationError{Field: "input.splitting_columns", Message: "at least one splitting column is required"}
	}

	sheets := []struct {
		field string
		name  string
	}{
		{"input.sheet.source.name", c.Input.Sheet.Source.Name},
		{"input.sheet.reference.name", c.Input.Sheet.Reference.Name},
		{"output.sheet.result.name", c.Output.Sheet.Result.Name},
	}
	for _, s := range sheets {
		if s.name == "" {
			continue
		}
		if msg := checkSheetName(s.name); msg != "" {
			return &model.ConfigurationError{Field: s.field, Sheet: s.name, Message: msg}
		}
	}

	// Excel 的 sheet 名不区分大小写
	result := c.Output.Sheet.Result.Name
	if strings.EqualFold(result, c.Input.Sheet.Source.Name) || strings.EqualFold(result, c.Input.Sheet.Reference.Name) {
		return &model.ConfigurationError{
			Field:   "output.sheet.result.name",
			Sheet:   result,
			Message: "result sheet must differ from the source and reference sheets",
		}
	}

	if _, err := c.Policy(); err != nil {
		return err
	}
	return nil
}

// maxSheetNameLength Excel 限制 sheet 名最多 31 个字符
const maxSheetNameLength = 31

// checkSheetName 按 Excel 的 sheet 命名规则校验，返回空字符串表示合法
func checkSheetName(name string) string {
	if utf8.RuneCountInString(name) > maxSheetNameLength {
		return fmt.Sprintf("sheet name must not exceed %d characters", maxSheetNameLength)
	}
	if strings.ContainsAny(name, `:\/?*[]`) {
		return `sheet name must not contain any of :\/?*[]`
	}
	if strings.HasPrefix(name, "'") || strings.HasSuffix(name, "'") {
		return "sheet name must not begin or end with an apostrophe"
	}
	return ""
}
