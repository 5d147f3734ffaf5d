package runner

import (
	"log"
	"time"

	"github.com/google/uuid"

	"excelsplit/internal/config"
	"excelsplit/internal/model"
	"excelsplit/internal/schema"
	"excelsplit/internal/service/excel"
	"excelsplit/internal/service/splitter"
)

// Journal 运行记录
type Journal interface {
	CreateRunLog(r *model.RunReport) (int64, error)
	FinishRunLog(id int64, r *model.RunReport, runErr error) error
}

// Runner 拆分运行协调器：读取 → 校验 → 分组 → 拆分 → 组装 → 写出
type Runner struct {
	journal Journal
	logger  *log.Logger
}

// New 创建协调器；journal 可为 nil，logger 为 nil 时使用 log.Default()
func New(journal Journal, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{journal: journal, logger: logger}
}

// Run 执行一次拆分
// 只有在结果表完整组装之后才写出文件；任何错误都不会留下部分输出
func (r *Runner) Run(cfg config.AppConfig) (*model.RunReport, error) {
	report := &model.RunReport{
		RunID:          uuid.NewString(),
		InputPath:      cfg.Input.Path,
		OutputPath:     cfg.Output.Path,
		SourceSheet:    cfg.Input.Sheet.Source.Name,
		ReferenceSheet: cfg.Input.Sheet.Reference.Name,
		ResultSheet:    cfg.Output.Sheet.Result.Name,
		StartedAt:      time.Now(),
	}

	logID := r.startLog(report)
	err := r.run(cfg, report)
	report.Duration = time.Since(report.StartedAt)
	r.finishLog(logID, report, err)

	if err != nil {
		return report, err
	}
	r.logger.Printf("[%s] 拆分完成: 源表 %d 行 → 结果表 %d 行（拆分 %d，原样 %d），耗时 %s",
		report.RunID, report.SourceRows, report.ResultRows, report.SplitRows, report.PassThroughRows, report.Duration)
	return report, nil
}

func (r *Runner) run(cfg config.AppConfig, report *model.RunReport) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	policy, err := cfg.Policy()
	if err != nil {
		return err
	}

	wb, err := excel.Open(cfg.Input.Path)
	if err != nil {
		return err
	}
	defer wb.Close()

	srcCfg, refCfg := cfg.Input.Sheet.Source, cfg.Input.Sheet.Reference
	validator := schema.NewValidator(srcCfg.Name, refCfg.Name, srcCfg.Columns.Mapping(), refCfg.Columns.Mapping(), cfg.Input.SplittingColumns)
	if err := validator.ValidateSheets(wb.SheetList()); err != nil {
		return err
	}

	source, err := wb.ReadTable(srcCfg.Name)
	if err != nil {
		return err
	}
	r.logger.Printf("[%s] 读取源表 %s: %d 行", report.RunID, srcCfg.Name, len(source.Rows))

	var (
		reference       *model.Table
		referenceLabels []string
	)
	if !cfg.PassThroughOnly() {
		if reference, err = wb.ReadTable(refCfg.Name); err != nil {
			return err
		}
		referenceLabels = reference.Labels()
		r.logger.Printf("[%s] 读取参考表 %s: %d 行", report.RunID, refCfg.Name, len(reference.Rows))
	} else {
		r.logger.Printf("[%s] 未配置参考表，所有行原样输出", report.RunID)
	}

	layout, err := validator.Resolve(source.Labels(), referenceLabels)
	if err != nil {
		return err
	}

	sp, err := splitter.New(layout, reference, policy)
	if err != nil {
		return err
	}

	result, stats, err := splitter.Assemble(source, cfg.Output.Sheet.Result.Name, sp)
	if err != nil {
		return err
	}
	report.SourceRows = stats.SourceRows
	report.ResultRows = stats.ResultRows
	report.SplitRows = stats.SplitRows
	report.PassThroughRows = stats.PassThroughRows

	if err := wb.WriteTable(result); err != nil {
		return &model.IOError{Op: "write", Path: cfg.Output.Path, Err: err}
	}
	if err := wb.SaveAs(cfg.Output.Path); err != nil {
		return err
	}
	return nil
}

func (r *Runner) startLog(report *model.RunReport) int64 {
	if r.journal == nil {
		return 0
	}
	id, err := r.journal.CreateRunLog(report)
	if err != nil {
		r.logger.Printf("[%s] 写入运行记录失败: %v", report.RunID, err)
		return 0
	}
	return id
}

func (r *Runner) finishLog(id int64, report *model.RunReport, runErr error) {
	if r.journal == nil || id == 0 {
		return
	}
	if err := r.journal.FinishRunLog(id, report, runErr); err != nil {
		r.logger.Printf("[%s] 更新运行记录 %d 失败: %v", report.RunID, id, err)
	}
}
